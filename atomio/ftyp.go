package atomio

import "github.com/Saecki/mp4ameta/utils/bits/pio"

const (
	baseFtypSize  = 16
	bytesPerBrand = 4
)

// recognizedBrands are the major brands this library will write to.
var recognizedBrands = map[string]bool{
	"M4A ": true,
	"M4B ": true,
	"M4P ": true,
	"M4V ": true,
	"mp41": true,
	"mp42": true,
	"isom": true,
	"iso2": true,
	"qt  ": true,
}

type FileType struct {
	MajorBrand       uint32
	MinorVersion     uint32
	CompatibleBrands []uint32
	AtomPos
}

func (*FileType) Tag() Tag {
	return FTYP
}

// Recognized reports whether the major brand belongs to a known MP4 family
// variant.
func (f *FileType) Recognized() bool {
	return recognizedBrands[Tag(f.MajorBrand).String()]
}

// QuickTime reports whether the file declares the QuickTime brand, which
// selects the raw meta layout on write.
func (f *FileType) QuickTime() bool {
	return Tag(f.MajorBrand).String() == "qt  "
}

func (f *FileType) Marshal(b []byte) (n int) {
	l := baseFtypSize + bytesPerBrand*len(f.CompatibleBrands)
	pio.PutU32BE(b, uint32(l))
	pio.PutU32BE(b[4:], uint32(FTYP))
	pio.PutU32BE(b[8:], f.MajorBrand)
	pio.PutU32BE(b[12:], f.MinorVersion)
	for i, v := range f.CompatibleBrands {
		pio.PutU32BE(b[baseFtypSize+bytesPerBrand*i:], v)
	}
	return l
}

func (f *FileType) Len() int {
	return baseFtypSize + bytesPerBrand*len(f.CompatibleBrands)
}

func (f *FileType) Unmarshal(b []byte, offset int64) (n int, err error) {
	f.AtomPos.setPos(offset, int64(len(b)))
	n = HeaderSize
	if len(b) < n+8 {
		return 0, parseErr("MajorBrand", offset+int64(n), nil)
	}
	f.MajorBrand = pio.U32BE(b[n:])
	n += 4
	f.MinorVersion = pio.U32BE(b[n:])
	n += 4
	for n < len(b)-3 {
		f.CompatibleBrands = append(f.CompatibleBrands, pio.U32BE(b[n:]))
		n += 4
	}
	return
}
