package atomio

import "github.com/Saecki/mp4ameta/utils/bits/pio"

const fullAtomHeadSize = HeaderSize + 4

// ChunkOffset is the 32 bit sample table chunk offset atom (stco).
type ChunkOffset struct {
	Version uint8
	Flags   uint32
	Entries []uint32
	AtomPos
}

func (*ChunkOffset) Tag() Tag {
	return STCO
}

// EntriesOffset returns the absolute offset of the first table entry.
func (c *ChunkOffset) EntriesOffset() int64 {
	return c.Offset + fullAtomHeadSize + 4
}

func (c *ChunkOffset) Len() int {
	return fullAtomHeadSize + 4 + 4*len(c.Entries)
}

func (c *ChunkOffset) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(STCO))
	n = HeaderSize
	pio.PutU8(b[n:], c.Version)
	n += 1
	pio.PutU24BE(b[n:], c.Flags)
	n += 3
	pio.PutU32BE(b[n:], uint32(len(c.Entries)))
	n += 4
	for _, entry := range c.Entries {
		pio.PutU32BE(b[n:], entry)
		n += 4
	}
	pio.PutU32BE(b, uint32(n))
	return
}

func (c *ChunkOffset) Unmarshal(b []byte, offset int64) (n int, err error) {
	c.AtomPos.setPos(offset, int64(len(b)))
	n = HeaderSize
	if len(b) < n+8 {
		return 0, parseErr("stco", offset, nil)
	}
	c.Version = pio.U8(b[n:])
	n += 1
	c.Flags = pio.U24BE(b[n:])
	n += 3
	count := int(pio.U32BE(b[n:]))
	n += 4
	if len(b) < n+4*count {
		return 0, parseErr("stco entries", offset+int64(n), nil)
	}
	c.Entries = make([]uint32, count)
	for i := range c.Entries {
		c.Entries[i] = pio.U32BE(b[n:])
		n += 4
	}
	return
}

// ChunkOffset64 is the 64 bit sample table chunk offset atom (co64).
type ChunkOffset64 struct {
	Version uint8
	Flags   uint32
	Entries []uint64
	AtomPos
}

func (*ChunkOffset64) Tag() Tag {
	return CO64
}

// EntriesOffset returns the absolute offset of the first table entry.
func (c *ChunkOffset64) EntriesOffset() int64 {
	return c.Offset + fullAtomHeadSize + 4
}

func (c *ChunkOffset64) Len() int {
	return fullAtomHeadSize + 4 + 8*len(c.Entries)
}

func (c *ChunkOffset64) Marshal(b []byte) (n int) {
	pio.PutU32BE(b[4:], uint32(CO64))
	n = HeaderSize
	pio.PutU8(b[n:], c.Version)
	n += 1
	pio.PutU24BE(b[n:], c.Flags)
	n += 3
	pio.PutU32BE(b[n:], uint32(len(c.Entries)))
	n += 4
	for _, entry := range c.Entries {
		pio.PutU64BE(b[n:], entry)
		n += 8
	}
	pio.PutU32BE(b, uint32(n))
	return
}

func (c *ChunkOffset64) Unmarshal(b []byte, offset int64) (n int, err error) {
	c.AtomPos.setPos(offset, int64(len(b)))
	n = HeaderSize
	if len(b) < n+8 {
		return 0, parseErr("co64", offset, nil)
	}
	c.Version = pio.U8(b[n:])
	n += 1
	c.Flags = pio.U24BE(b[n:])
	n += 3
	count := int(pio.U32BE(b[n:]))
	n += 4
	if len(b) < n+8*count {
		return 0, parseErr("co64 entries", offset+int64(n), nil)
	}
	c.Entries = make([]uint64, count)
	for i := range c.Entries {
		c.Entries[i] = pio.U64BE(b[n:])
		n += 8
	}
	return
}
