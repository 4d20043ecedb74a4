// Package atomio reads and writes the length-prefixed, four-character-coded
// boxes that make up ISO base media and QuickTime files.
package atomio

import (
	"io"

	"github.com/Saecki/mp4ameta/utils/bits/pio"
)

const (
	HeaderSize    = 8
	ExtHeaderSize = 16

	// Payloads at or above this need a 64 bit size field.
	maxCompactPayload = 1<<32 - HeaderSize
)

type Tag uint32

func (t Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(t))
	for i := 0; i < 4; i++ {
		if b[i] == 0 {
			b[i] = ' '
		}
	}
	return string(b[:])
}

func StringToTag(tag string) Tag {
	var b [4]byte
	copy(b[:], []byte(tag))
	return Tag(pio.U32BE(b[:]))
}

const (
	FTYP = Tag(0x66747970)
	MOOV = Tag(0x6d6f6f76)
	MDAT = Tag(0x6d646174)
	TRAK = Tag(0x7472616b)
	MDIA = Tag(0x6d646961)
	MINF = Tag(0x6d696e66)
	STBL = Tag(0x7374626c)
	STCO = Tag(0x7374636f)
	CO64 = Tag(0x636f3634)
	UDTA = Tag(0x75647461)
	META = Tag(0x6d657461)
	ILST = Tag(0x696c7374)
	HDLR = Tag(0x68646c72)
	FREE = Tag(0x66726565)
	SKIP = Tag(0x736b6970)
	EDTS = Tag(0x65647473)
	DINF = Tag(0x64696e66)
	UUID = Tag(0x75756964)
)

// containers maps the tags whose payload is a concatenation of child atoms.
// META is irregular and handled separately, see Children.
var containers = map[Tag]bool{
	MOOV: true,
	TRAK: true,
	MDIA: true,
	MINF: true,
	STBL: true,
	UDTA: true,
	ILST: true,
	EDTS: true,
	DINF: true,
}

func IsContainer(tag Tag) bool {
	return containers[tag] || tag == META
}

type AtomPos struct {
	Offset int64
	Size   int64
}

func (p AtomPos) Pos() (int64, int64) {
	return p.Offset, p.Size
}

func (p *AtomPos) setPos(offset, size int64) {
	p.Offset, p.Size = offset, size
}

// Header describes one parsed atom: its tag, absolute position and sizes.
type Header struct {
	Tag        Tag
	Offset     int64
	Size       int64
	HeaderLen  int64
	HasExtType bool
	ExtType    [16]byte
}

func (h Header) PayloadOffset() int64 {
	return h.Offset + h.HeaderLen
}

func (h Header) PayloadLen() int64 {
	return h.Size - h.HeaderLen
}

func (h Header) End() int64 {
	return h.Offset + h.Size
}

// ReadHeaderAt parses the atom header at offset. The atom must end at or
// before end; a zero size field means the atom runs up to end.
func ReadHeaderAt(r io.ReadSeeker, offset, end int64) (h Header, err error) {
	if _, err = r.Seek(offset, io.SeekStart); err != nil {
		return
	}
	var buf [HeaderSize]byte
	if _, err = io.ReadFull(r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = parseErr("TruncatedHeader", offset, nil)
		}
		return
	}

	h.Offset = offset
	h.Tag = Tag(pio.U32BE(buf[4:]))
	h.HeaderLen = HeaderSize
	h.Size = int64(pio.U32BE(buf[:]))

	switch h.Size {
	case 0:
		h.Size = end - offset
	case 1:
		var ext [8]byte
		if _, err = io.ReadFull(r, ext[:]); err != nil {
			if err == io.ErrUnexpectedEOF {
				err = parseErr("TruncatedSize64", offset, nil)
			}
			return
		}
		h.Size = pio.I64BE(ext[:])
		h.HeaderLen = ExtHeaderSize
	}

	if h.Tag == UUID {
		if _, err = io.ReadFull(r, h.ExtType[:]); err != nil {
			if err == io.ErrUnexpectedEOF {
				err = parseErr("TruncatedExtType", offset, nil)
			}
			return
		}
		h.HasExtType = true
		h.HeaderLen += 16
	}

	if h.Size < h.HeaderLen {
		err = parseErr("MalformedSize", offset, nil)
		return
	}
	if offset+h.Size > end {
		err = parseErr("SizeBeyondParent", offset, nil)
		return
	}
	return
}

// Cursor is a lazy traversal over a sequence of sibling atoms in [pos, end).
type Cursor struct {
	r   io.ReadSeeker
	pos int64
	end int64
}

func NewCursor(r io.ReadSeeker, start, end int64) *Cursor {
	return &Cursor{r: r, pos: start, end: end}
}

func FileCursor(r io.ReadSeeker) (*Cursor, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	return NewCursor(r, 0, end), nil
}

// Next parses the header of the next sibling atom and advances past it.
// It returns io.EOF once the cursor range is exhausted.
func (c *Cursor) Next() (h Header, err error) {
	if c.pos >= c.end {
		err = io.EOF
		return
	}
	if c.pos+HeaderSize > c.end {
		err = parseErr("TrailingGarbage", c.pos, nil)
		return
	}
	if h, err = ReadHeaderAt(c.r, c.pos, c.end); err != nil {
		return
	}
	c.pos = h.End()
	return
}

// Children returns a cursor over the child atoms of a container atom.
// For meta atoms the 4 byte version and flags prefix present in ISO BMFF
// files is detected by probing the first child header and skipped.
func (c *Cursor) Children(h Header) (*Cursor, error) {
	start := h.PayloadOffset()
	if h.Tag == META {
		prefix, err := MetaPrefixLen(c.r, h)
		if err != nil {
			return nil, err
		}
		start += prefix
	}
	return NewCursor(c.r, start, h.End()), nil
}

// MetaPrefixLen reports how many prefix bytes precede the children of a
// meta atom: 0 for the raw QuickTime layout, 4 for ISO BMFF version/flags.
func MetaPrefixLen(r io.ReadSeeker, h Header) (int64, error) {
	if h.PayloadLen() < HeaderSize {
		return 0, nil
	}
	if _, err := r.Seek(h.PayloadOffset(), io.SeekStart); err != nil {
		return 0, err
	}
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	if validChildHeader(buf, h.PayloadLen()) {
		return 0, nil
	}
	return 4, nil
}

// validChildHeader reports whether the 8 bytes look like an atom header of
// a child no larger than the remaining payload. A version/flags prefix of
// zero fails the size check and printable tags rule out flag bytes.
func validChildHeader(buf [8]byte, remaining int64) bool {
	size := int64(pio.U32BE(buf[:4]))
	if size < HeaderSize || size > remaining {
		return false
	}
	for _, b := range buf[4:] {
		if !printableTagByte(b) {
			return false
		}
	}
	return true
}

func printableTagByte(b byte) bool {
	return (b >= 0x20 && b <= 0x7e) || b == 0xa9
}

func PutHeader(b []byte, tag Tag, size int) int {
	pio.PutU32BE(b, uint32(size))
	pio.PutU32BE(b[4:], uint32(tag))
	return HeaderSize
}

// AppendAtom appends a complete atom with the minimal-width size encoding.
func AppendAtom(dst []byte, tag Tag, payload []byte) []byte {
	if len(payload) >= maxCompactPayload {
		var hdr [ExtHeaderSize]byte
		pio.PutU32BE(hdr[:], 1)
		pio.PutU32BE(hdr[4:], uint32(tag))
		pio.PutU64BE(hdr[8:], uint64(len(payload))+ExtHeaderSize)
		dst = append(dst, hdr[:]...)
		return append(dst, payload...)
	}
	var hdr [HeaderSize]byte
	PutHeader(hdr[:], tag, len(payload)+HeaderSize)
	dst = append(dst, hdr[:]...)
	return append(dst, payload...)
}
