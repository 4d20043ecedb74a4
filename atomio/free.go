package atomio

import "github.com/Saecki/mp4ameta/utils/bits/pio"

// Free is padding. Its size is adjustable so a neighboring atom can grow
// or shrink without moving anything else in the file.
type Free struct {
	Size_ int64
	AtomPos
}

func (*Free) Tag() Tag {
	return FREE
}

func (f *Free) Len() int {
	return int(f.Size_)
}

func (f *Free) Marshal(b []byte) (n int) {
	pio.PutU32BE(b, uint32(f.Size_))
	pio.PutU32BE(b[4:], uint32(FREE))
	for i := HeaderSize; i < int(f.Size_); i++ {
		b[i] = 0
	}
	return int(f.Size_)
}

func (f *Free) Unmarshal(b []byte, offset int64) (n int, err error) {
	if len(b) < HeaderSize {
		return 0, parseErr("free", offset, nil)
	}
	f.Size_ = int64(len(b))
	f.AtomPos.setPos(offset, int64(len(b)))
	return len(b), nil
}
