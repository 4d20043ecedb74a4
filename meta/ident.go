// Package meta decodes and encodes the iTunes metadata item list (ilst).
package meta

import (
	"fmt"

	"github.com/Saecki/mp4ameta/atomio"
)

// FreeformMarker is the fourcc of freeform item atoms.
var FreeformMarker = atomio.StringToTag("----")

// Ident identifies a metadata item: either a plain fourcc or a freeform
// mean/name pair. Both concrete types are comparable, so idents can be
// compared with == and used as map keys.
type Ident interface {
	fmt.Stringer
	isIdent()
}

// FourCCIdent is a four byte item identifier such as ©ART or trkn.
type FourCCIdent struct {
	Code atomio.Tag
}

// FourCC returns the ident for a four character code.
func FourCC(code string) FourCCIdent {
	return FourCCIdent{Code: atomio.StringToTag(code)}
}

func (FourCCIdent) isIdent() {}

func (f FourCCIdent) String() string {
	return f.Code.String()
}

// FreeformIdent is a freeform item identifier. Mean is the reverse-DNS
// namespace, typically com.apple.iTunes. Both parts compare byte for byte
// and case sensitively.
type FreeformIdent struct {
	Mean string
	Name string
}

// Freeform returns the ident for a mean/name pair.
func Freeform(mean, name string) FreeformIdent {
	return FreeformIdent{Mean: mean, Name: name}
}

// ITunesFreeform returns the ident for a name under the com.apple.iTunes
// namespace.
func ITunesFreeform(name string) FreeformIdent {
	return FreeformIdent{Mean: "com.apple.iTunes", Name: name}
}

func (FreeformIdent) isIdent() {}

func (f FreeformIdent) String() string {
	return "----:" + f.Mean + ":" + f.Name
}
