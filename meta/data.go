package meta

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/Saecki/mp4ameta/utils"
	"github.com/Saecki/mp4ameta/utils/bits/pio"
)

// DataType is a well-known data type code from the low three bytes of a
// data atom head.
type DataType uint32

const (
	TypeReserved   DataType = 0
	TypeUTF8       DataType = 1
	TypeUTF16      DataType = 2
	TypeJPEG       DataType = 13
	TypePNG        DataType = 14
	TypeBESigned   DataType = 21
	TypeBEUnsigned DataType = 22
	TypeBMP        DataType = 27
)

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

type dataKind uint8

const (
	kindBytes dataKind = iota
	kindString
	kindInt
	kindUint
	// kindVerbatim preserves a non-data child atom of an item verbatim,
	// header included.
	kindVerbatim
)

// Data is one typed value of a metadata item. The zero value is an empty
// reserved-type value.
//
// A value parsed from a file keeps its original payload bytes, so writing
// an unedited value reproduces them exactly, whatever the type code.
type Data struct {
	typ      DataType
	selector uint8
	locale   uint32
	kind     dataKind
	raw      []byte
	str      string
	int_     int64
	uint_    uint64
	width    int
}

// UTF8 returns a UTF-8 string value.
func UTF8(s string) Data {
	return Data{typ: TypeUTF8, kind: kindString, str: s}
}

// UTF16 returns a string value encoded as UTF-16 BE on write.
func UTF16(s string) Data {
	return Data{typ: TypeUTF16, kind: kindString, str: s}
}

// JPEG returns a JPEG image value.
func JPEG(b []byte) Data {
	return Data{typ: TypeJPEG, kind: kindBytes, raw: b}
}

// PNG returns a PNG image value.
func PNG(b []byte) Data {
	return Data{typ: TypePNG, kind: kindBytes, raw: b}
}

// BMP returns a BMP image value.
func BMP(b []byte) Data {
	return Data{typ: TypeBMP, kind: kindBytes, raw: b}
}

// Reserved returns an opaque value of the reserved type.
func Reserved(b []byte) Data {
	return Data{typ: TypeReserved, kind: kindBytes, raw: b}
}

// Signed returns a big-endian signed integer value written at the smallest
// width that fits.
func Signed(v int64) Data {
	return Data{typ: TypeBESigned, kind: kindInt, int_: v, width: signedWidth(v)}
}

// SignedWidth returns a signed integer value with an explicit byte width
// of 1, 2, 3, 4 or 8.
func SignedWidth(v int64, width int) Data {
	if w := signedWidth(v); w > width {
		width = w
	}
	return Data{typ: TypeBESigned, kind: kindInt, int_: v, width: width}
}

// Unsigned returns a big-endian unsigned integer value.
func Unsigned(v uint64) Data {
	return Data{typ: TypeBEUnsigned, kind: kindUint, uint_: v, width: unsignedWidth(v)}
}

// Other returns a value of an arbitrary type code whose payload is kept
// verbatim.
func Other(typ DataType, b []byte) Data {
	return Data{typ: typ, kind: kindBytes, raw: b}
}

// Type returns the data type code.
func (d Data) Type() DataType {
	return d.typ
}

// Locale returns the 4 byte locale indicator, usually zero.
func (d Data) Locale() uint32 {
	return d.locale
}

// Str returns the decoded string and true for UTF-8 and UTF-16 values.
func (d Data) Str() (string, bool) {
	if d.kind != kindString {
		return "", false
	}
	return d.str, true
}

// Int returns the integer and true for signed and unsigned integer values.
// Reserved-type payloads of an integer width, like the gnre genre code,
// decode as big-endian unsigned. Values above the int64 range report
// false.
func (d Data) Int() (int64, bool) {
	switch d.kind {
	case kindInt:
		return d.int_, true
	case kindUint:
		if d.uint_ > 1<<63-1 {
			return 0, false
		}
		return int64(d.uint_), true
	}
	if v, ok := d.implicitUint(); ok && v <= 1<<63-1 {
		return int64(v), true
	}
	return 0, false
}

// Uint returns the integer and true for unsigned and non-negative signed
// integer values, and for reserved-type payloads of an integer width.
func (d Data) Uint() (uint64, bool) {
	switch d.kind {
	case kindUint:
		return d.uint_, true
	case kindInt:
		if d.int_ < 0 {
			return 0, false
		}
		return uint64(d.int_), true
	}
	return d.implicitUint()
}

func (d Data) implicitUint() (uint64, bool) {
	if d.kind != kindBytes || d.typ != TypeReserved || d.selector != 0 {
		return 0, false
	}
	switch len(d.raw) {
	case 1, 2, 3, 4, 8:
		v, err := parseUnsigned(d.raw)
		return v, err == nil
	}
	return 0, false
}

// Image returns the image bytes and true for JPEG, PNG and BMP values.
func (d Data) Image() ([]byte, bool) {
	switch d.typ {
	case TypeJPEG, TypePNG, TypeBMP:
		if d.selector == 0 && d.kind == kindBytes {
			return d.raw, true
		}
	}
	return nil, false
}

// Bytes returns the payload bytes as stored or as they would be encoded.
func (d Data) Bytes() []byte {
	if d.raw != nil || d.kind == kindBytes || d.kind == kindVerbatim {
		return d.raw
	}
	return d.appendPayload(nil)
}

func verbatim(b []byte) Data {
	return Data{kind: kindVerbatim, raw: b}
}

// parseData decodes a data atom payload. head is the 4 byte type field:
// one type-set selector byte followed by a 24 bit type code. Payloads with
// a nonzero selector are preserved opaquely.
func parseData(head, locale uint32, payload []byte) (d Data, err error) {
	d.typ = DataType(head & 0xffffff)
	d.selector = uint8(head >> 24)
	d.locale = locale
	d.raw = payload
	d.kind = kindBytes

	if d.selector != 0 {
		return
	}

	switch d.typ {
	case TypeUTF8:
		if !utf8.Valid(payload) {
			err = utils.MalformedDataError{Detail: "invalid UTF-8 string payload"}
			return
		}
		d.kind = kindString
		d.str = string(payload)
	case TypeUTF16:
		if len(payload)%2 != 0 {
			err = utils.MalformedDataError{Detail: "odd UTF-16 payload length"}
			return
		}
		var decoded []byte
		if decoded, err = utf16be.NewDecoder().Bytes(payload); err != nil {
			err = utils.MalformedDataError{Detail: "invalid UTF-16 string payload"}
			return
		}
		d.kind = kindString
		d.str = string(decoded)
	case TypeBESigned:
		var v int64
		if v, err = parseSigned(payload); err != nil {
			return
		}
		d.kind = kindInt
		d.int_ = v
		d.width = len(payload)
	case TypeBEUnsigned:
		var v uint64
		if v, err = parseUnsigned(payload); err != nil {
			return
		}
		d.kind = kindUint
		d.uint_ = v
		d.width = len(payload)
	}
	return
}

func parseSigned(b []byte) (int64, error) {
	switch len(b) {
	case 1:
		return int64(int8(b[0])), nil
	case 2:
		return int64(pio.I16BE(b)), nil
	case 3:
		return int64(pio.I24BE(b)), nil
	case 4:
		return int64(pio.I32BE(b)), nil
	case 8:
		return pio.I64BE(b), nil
	}
	return 0, utils.UnsupportedError{Detail: "integer width outside {1,2,3,4,8}"}
}

func parseUnsigned(b []byte) (uint64, error) {
	switch len(b) {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(pio.U16BE(b)), nil
	case 3:
		return uint64(pio.U24BE(b)), nil
	case 4:
		return uint64(pio.U32BE(b)), nil
	case 8:
		return pio.U64BE(b), nil
	}
	return 0, utils.UnsupportedError{Detail: "integer width outside {1,2,3,4,8}"}
}

func signedWidth(v int64) int {
	switch {
	case v >= -1<<7 && v < 1<<7:
		return 1
	case v >= -1<<15 && v < 1<<15:
		return 2
	case v >= -1<<23 && v < 1<<23:
		return 3
	case v >= -1<<31 && v < 1<<31:
		return 4
	}
	return 8
}

func unsignedWidth(v uint64) int {
	switch {
	case v < 1<<8:
		return 1
	case v < 1<<16:
		return 2
	case v < 1<<24:
		return 3
	case v < 1<<32:
		return 4
	}
	return 8
}

// head returns the 4 byte type field of the data atom.
func (d Data) head() uint32 {
	return uint32(d.selector)<<24 | uint32(d.typ)&0xffffff
}

// payloadLen returns the encoded payload length in bytes.
func (d Data) payloadLen() int {
	if d.raw != nil {
		return len(d.raw)
	}
	switch d.kind {
	case kindString:
		if d.typ == TypeUTF16 {
			return len(encodeUTF16(d.str))
		}
		return len(d.str)
	case kindInt, kindUint:
		return d.width
	}
	return 0
}

func encodeUTF16(s string) []byte {
	b, err := utf16be.NewEncoder().Bytes([]byte(strings.ToValidUTF8(s, "�")))
	if err != nil {
		return nil
	}
	return b
}

// appendPayload appends the encoded payload. Values parsed from a file and
// left unedited append their original bytes.
func (d Data) appendPayload(dst []byte) []byte {
	if d.raw != nil {
		return append(dst, d.raw...)
	}
	switch d.kind {
	case kindString:
		if d.typ == TypeUTF16 {
			return append(dst, encodeUTF16(d.str)...)
		}
		return append(dst, d.str...)
	case kindInt:
		return appendBE(dst, uint64(d.int_), d.width)
	case kindUint:
		return appendBE(dst, d.uint_, d.width)
	}
	return dst
}

func appendBE(dst []byte, v uint64, width int) []byte {
	for i := width - 1; i >= 0; i-- {
		dst = append(dst, byte(v>>(8*i)))
	}
	return dst
}
