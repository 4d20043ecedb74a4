package atomio

import "github.com/Saecki/mp4ameta/utils/bits/pio"

// HandlerRefer is the handler reference atom (hdlr). Inside meta it names
// the metadata handler; iTunes requires mdir/appl there.
type HandlerRefer struct {
	Version      uint8
	Flags        uint32
	PreDefined   uint32
	HandlerType  [4]byte
	Manufacturer [4]byte
	Reserved     [2]uint32
	Name         []byte
	AtomPos
}

// NewMetadataHandler returns the hdlr atom written when synthesizing a meta
// atom: handler type mdir, manufacturer appl, empty name.
func NewMetadataHandler() *HandlerRefer {
	return &HandlerRefer{
		HandlerType:  [4]byte([]byte("mdir")),
		Manufacturer: [4]byte([]byte("appl")),
		Name:         []byte{0},
	}
}

func (*HandlerRefer) Tag() Tag {
	return HDLR
}

func (h *HandlerRefer) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(HDLR))
	n += h.marshal(b[HeaderSize:]) + HeaderSize
	pio.PutU32BE(b, uint32(n))
	return
}

func (h *HandlerRefer) marshal(b []byte) (n int) {
	pio.PutU8(b[n:], h.Version)
	n += 1
	pio.PutU24BE(b[n:], h.Flags)
	n += 3
	pio.PutU32BE(b[n:], h.PreDefined)
	n += 4
	copy(b[n:], h.HandlerType[:])
	n += 4
	copy(b[n:], h.Manufacturer[:])
	n += 4
	pio.PutU32BE(b[n:], h.Reserved[0])
	n += 4
	pio.PutU32BE(b[n:], h.Reserved[1])
	n += 4
	copy(b[n:], h.Name)
	n += len(h.Name)
	return
}

func (h *HandlerRefer) Len() (n int) {
	return HeaderSize + 24 + len(h.Name)
}

func (h *HandlerRefer) Unmarshal(b []byte, offset int64) (n int, err error) {
	h.AtomPos.setPos(offset, int64(len(b)))
	n = HeaderSize
	if len(b) < n+24 {
		return 0, parseErr("hdlr", offset, nil)
	}
	h.Version = pio.U8(b[n:])
	n += 1
	h.Flags = pio.U24BE(b[n:])
	n += 3
	h.PreDefined = pio.U32BE(b[n:])
	n += 4
	copy(h.HandlerType[:], b[n:])
	n += 4
	copy(h.Manufacturer[:], b[n:])
	n += 4
	h.Reserved[0] = pio.U32BE(b[n:])
	n += 4
	h.Reserved[1] = pio.U32BE(b[n:])
	n += 4
	h.Name = b[n:]
	n = len(b)
	return
}
