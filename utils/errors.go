package utils

import "fmt"

// NoTagError indicates that the moov/udta/meta/ilst chain is absent.
// Callers may treat this as an empty tag.
type NoTagError struct {
}

// Error returns the error message for NoTagError.
func (NoTagError) Error() string {
	return "No metadata item list"
}

// UnknownFiletypeError indicates that the ftyp atom is missing or carries
// an unrecognized major brand.
type UnknownFiletypeError struct {
	Brand string
}

// Error returns the error message for UnknownFiletypeError.
func (e UnknownFiletypeError) Error() string {
	if e.Brand == "" {
		return "No filetype atom"
	}
	return fmt.Sprintf("Unknown filetype brand %q", e.Brand)
}

// MalformedMetadataError indicates that an ilst child matches neither the
// fourcc entry nor the freeform entry shape.
type MalformedMetadataError struct {
	Detail string
}

// Error returns the error message for MalformedMetadataError.
func (e MalformedMetadataError) Error() string {
	return "Malformed metadata: " + e.Detail
}

// MalformedDataError indicates that a data atom payload cannot be decoded
// under its declared type.
type MalformedDataError struct {
	Detail string
}

// Error returns the error message for MalformedDataError.
func (e MalformedDataError) Error() string {
	return "Malformed data: " + e.Detail
}

// UnsupportedError indicates a recognized but unhandled encoding, such as
// an integer data payload whose width is outside {1,2,3,4,8} (reported
// while decoding), a chunk offset that no longer fits a 32 bit stco entry
// after relocation, or artwork in an image format that cannot be stored.
type UnsupportedError struct {
	Detail string
}

// Error returns the error message for UnsupportedError.
func (e UnsupportedError) Error() string {
	return "Unsupported: " + e.Detail
}

// WriteError indicates a failure while writing the new metadata. When the
// file is rewritten through a temporary copy the original is left
// untouched; a failed in-place patch may leave the original partly
// overwritten.
type WriteError struct {
	Err error
}

// Error returns the error message for WriteError.
func (e WriteError) Error() string {
	return "Write aborted: " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e WriteError) Unwrap() error {
	return e.Err
}
