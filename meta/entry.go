package meta

import (
	"github.com/Saecki/mp4ameta/atomio"
	"github.com/Saecki/mp4ameta/utils"
	"github.com/Saecki/mp4ameta/utils/bits/pio"
)

var (
	dataTag = atomio.StringToTag("data")
	meanTag = atomio.StringToTag("mean")
	nameTag = atomio.StringToTag("name")
)

const dataHeadSize = 8

// Entry is one metadata item: an identifier and its ordered values. Items
// may carry more than one value, cover art being the common case.
type Entry struct {
	Ident Ident
	Data  []Data

	// Version and flags of the mean and name atoms of a freeform item,
	// kept so they round-trip.
	meanFlags uint32
	nameFlags uint32
}

// ParseList decodes the payload of an ilst atom. offset is the absolute
// file position of the payload, used in error messages.
func ParseList(b []byte, offset int64) (entries []Entry, err error) {
	n := 0
	for n+atomio.HeaderSize <= len(b) {
		size := int(pio.U32BE(b[n:]))
		tag := atomio.Tag(pio.U32BE(b[n+4:]))
		if size < atomio.HeaderSize || n+size > len(b) {
			err = atomio.ParseErr("ItemSizeInvalid", offset+int64(n), nil)
			return
		}

		var entry Entry
		child := b[n+atomio.HeaderSize : n+size]
		childOffset := offset + int64(n) + atomio.HeaderSize
		if tag == FreeformMarker {
			entry, err = parseFreeform(child, childOffset)
		} else {
			entry, err = parseItem(tag, child, childOffset)
		}
		if err != nil {
			return
		}
		entries = append(entries, entry)
		n += size
	}
	if n != len(b) {
		err = atomio.ParseErr("ItemListTrailingBytes", offset+int64(n), nil)
	}
	return
}

// parseItem decodes a fourcc item: one or more data atoms. Children other
// than data atoms are kept verbatim so the item round-trips.
func parseItem(tag atomio.Tag, b []byte, offset int64) (entry Entry, err error) {
	entry.Ident = FourCCIdent{Code: tag}
	dataCount := 0
	n := 0
	for n+atomio.HeaderSize <= len(b) {
		size := int(pio.U32BE(b[n:]))
		childTag := atomio.Tag(pio.U32BE(b[n+4:]))
		if size < atomio.HeaderSize || n+size > len(b) {
			err = atomio.ParseErr("DataSizeInvalid", offset+int64(n), nil)
			return
		}
		if childTag != dataTag {
			entry.Data = append(entry.Data, verbatim(b[n:n+size]))
			n += size
			continue
		}
		var d Data
		if d, err = parseDataAtom(b[n+atomio.HeaderSize:n+size], offset+int64(n)); err != nil {
			return
		}
		entry.Data = append(entry.Data, d)
		dataCount++
		n += size
	}
	if dataCount == 0 {
		err = utils.MalformedMetadataError{Detail: "item " + tag.String() + " has no data atom"}
	}
	return
}

// parseFreeform decodes a ---- item: exactly one mean, one name, and one
// or more data atoms.
func parseFreeform(b []byte, offset int64) (entry Entry, err error) {
	var mean, name string
	var haveMean, haveName bool
	dataCount := 0

	n := 0
	for n+atomio.HeaderSize <= len(b) {
		size := int(pio.U32BE(b[n:]))
		childTag := atomio.Tag(pio.U32BE(b[n+4:]))
		if size < atomio.HeaderSize || n+size > len(b) {
			err = atomio.ParseErr("FreeformSizeInvalid", offset+int64(n), nil)
			return
		}
		child := b[n+atomio.HeaderSize : n+size]

		switch childTag {
		case meanTag:
			if haveMean || len(child) < 4 {
				err = utils.MalformedMetadataError{Detail: "freeform item mean atom malformed"}
				return
			}
			entry.meanFlags = pio.U32BE(child)
			mean = string(child[4:])
			haveMean = true
		case nameTag:
			if haveName || len(child) < 4 {
				err = utils.MalformedMetadataError{Detail: "freeform item name atom malformed"}
				return
			}
			entry.nameFlags = pio.U32BE(child)
			name = string(child[4:])
			haveName = true
		case dataTag:
			var d Data
			if d, err = parseDataAtom(child, offset+int64(n)); err != nil {
				return
			}
			entry.Data = append(entry.Data, d)
			dataCount++
		default:
			entry.Data = append(entry.Data, verbatim(b[n:n+size]))
		}
		n += size
	}

	if !haveMean || !haveName {
		err = utils.MalformedMetadataError{Detail: "freeform item lacks mean or name atom"}
		return
	}
	if dataCount == 0 {
		err = utils.MalformedMetadataError{Detail: "freeform item has no data atom"}
		return
	}
	entry.Ident = FreeformIdent{Mean: mean, Name: name}
	return
}

// parseDataAtom decodes the payload of a data atom: a 4 byte type field, a
// 4 byte locale, then the value bytes.
func parseDataAtom(b []byte, offset int64) (Data, error) {
	if len(b) < dataHeadSize {
		return Data{}, atomio.ParseErr("DataHeadTruncated", offset, nil)
	}
	head := pio.U32BE(b)
	locale := pio.U32BE(b[4:])
	return parseData(head, locale, b[dataHeadSize:])
}

// Len returns the serialized length of the entry in bytes.
func (e Entry) Len() (n int) {
	n = atomio.HeaderSize
	if f, ok := e.Ident.(FreeformIdent); ok {
		n += 2*(atomio.HeaderSize+4) + len(f.Mean) + len(f.Name)
	}
	for _, d := range e.Data {
		if d.kind == kindVerbatim {
			n += len(d.raw)
			continue
		}
		n += atomio.HeaderSize + dataHeadSize + d.payloadLen()
	}
	return
}

// Append serializes the entry.
func (e Entry) Append(dst []byte) []byte {
	var hdr [atomio.HeaderSize]byte

	switch ident := e.Ident.(type) {
	case FourCCIdent:
		atomio.PutHeader(hdr[:], ident.Code, e.Len())
		dst = append(dst, hdr[:]...)
	case FreeformIdent:
		atomio.PutHeader(hdr[:], FreeformMarker, e.Len())
		dst = append(dst, hdr[:]...)
		dst = appendFlagged(dst, meanTag, e.meanFlags, ident.Mean)
		dst = appendFlagged(dst, nameTag, e.nameFlags, ident.Name)
	}

	for _, d := range e.Data {
		if d.kind == kindVerbatim {
			dst = append(dst, d.raw...)
			continue
		}
		atomio.PutHeader(hdr[:], dataTag, atomio.HeaderSize+dataHeadSize+d.payloadLen())
		dst = append(dst, hdr[:]...)
		var head [dataHeadSize]byte
		pio.PutU32BE(head[:], d.head())
		pio.PutU32BE(head[4:], d.locale)
		dst = append(dst, head[:]...)
		dst = d.appendPayload(dst)
	}
	return dst
}

func appendFlagged(dst []byte, tag atomio.Tag, flags uint32, s string) []byte {
	var buf [atomio.HeaderSize + 4]byte
	atomio.PutHeader(buf[:], tag, atomio.HeaderSize+4+len(s))
	pio.PutU32BE(buf[atomio.HeaderSize:], flags)
	dst = append(dst, buf[:]...)
	return append(dst, s...)
}

// ListLen returns the serialized length of the entries, excluding the ilst
// header itself.
func ListLen(entries []Entry) (n int) {
	for _, e := range entries {
		n += e.Len()
	}
	return
}

// AppendList serializes the entries in order.
func AppendList(dst []byte, entries []Entry) []byte {
	for _, e := range entries {
		dst = e.Append(dst)
	}
	return dst
}
