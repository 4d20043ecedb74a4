package meta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Saecki/mp4ameta/atomio"
	"github.com/Saecki/mp4ameta/utils"
	"github.com/Saecki/mp4ameta/utils/bits/pio"
)

func dataAtom(typ uint32, locale uint32, payload []byte) []byte {
	b := make([]byte, 8)
	pio.PutU32BE(b, typ)
	pio.PutU32BE(b[4:], locale)
	b = append(b, payload...)
	return atomio.AppendAtom(nil, dataTag, b)
}

func itemAtom(ident string, children ...[]byte) []byte {
	var payload []byte
	for _, c := range children {
		payload = append(payload, c...)
	}
	return atomio.AppendAtom(nil, atomio.StringToTag(ident), payload)
}

func flagged(tag atomio.Tag, s string) []byte {
	b := make([]byte, 4, 4+len(s))
	b = append(b, s...)
	return atomio.AppendAtom(nil, tag, b)
}

func TestParseListFourCC(t *testing.T) {
	t.Parallel()

	b := itemAtom("\xa9ART", dataAtom(uint32(TypeUTF8), 0, []byte("Alice")))
	entries, err := ParseList(b, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, FourCC("\xa9ART"), entries[0].Ident)
	require.Len(t, entries[0].Data, 1)
	s, ok := entries[0].Data[0].Str()
	require.True(t, ok)
	require.Equal(t, "Alice", s)
}

func TestParseListMultiValue(t *testing.T) {
	t.Parallel()

	b := itemAtom("covr",
		dataAtom(uint32(TypeJPEG), 0, []byte{0xff, 0xd8}),
		dataAtom(uint32(TypePNG), 0, []byte{0x89, 'P'}),
	)
	entries, err := ParseList(b, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Data, 2)
	require.Equal(t, TypeJPEG, entries[0].Data[0].Type())
	require.Equal(t, TypePNG, entries[0].Data[1].Type())
}

func TestParseListFreeform(t *testing.T) {
	t.Parallel()

	b := itemAtom("----",
		flagged(meanTag, "com.apple.iTunes"),
		flagged(nameTag, "ISRC"),
		dataAtom(uint32(TypeUTF8), 0, []byte("USUM71703692")),
	)
	entries, err := ParseList(b, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, Freeform("com.apple.iTunes", "ISRC"), entries[0].Ident)
	s, ok := entries[0].Data[0].Str()
	require.True(t, ok)
	require.Equal(t, "USUM71703692", s)
}

func TestParseListMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    []byte
	}{
		{name: "item_without_data", b: itemAtom("\xa9ART")},
		{name: "freeform_without_mean", b: itemAtom("----",
			flagged(nameTag, "ISRC"),
			dataAtom(uint32(TypeUTF8), 0, []byte("x")),
		)},
		{name: "freeform_without_data", b: itemAtom("----",
			flagged(meanTag, "com.apple.iTunes"),
			flagged(nameTag, "ISRC"),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseList(tt.b, 0)
			targetError := utils.MalformedMetadataError{}
			require.ErrorAs(t, err, &targetError)
		})
	}
}

func TestParseListTruncated(t *testing.T) {
	t.Parallel()

	b := itemAtom("\xa9ART", dataAtom(uint32(TypeUTF8), 0, []byte("Alice")))
	_, err := ParseList(b[:len(b)-3], 0)
	require.Error(t, err)
}

func TestRoundTripIdentity(t *testing.T) {
	t.Parallel()

	// A list with an unknown fourcc, an unknown data type code, a nonzero
	// locale, and a freeform item re-encodes byte for byte.
	var b []byte
	b = append(b, itemAtom("\xa9ART", dataAtom(uint32(TypeUTF16), 0, []byte{0x00, 'B', 0x00, 'o', 0x00, 'b'}))...)
	b = append(b, itemAtom("xyzw", dataAtom(99, 0, []byte{1, 2, 3}))...)
	b = append(b, itemAtom("gnre", dataAtom(uint32(TypeReserved), 0, []byte{0x00, 0x11}))...)
	b = append(b, itemAtom("\xa9cmt", dataAtom(uint32(TypeUTF8), 0x150c, []byte("hi")))...)
	b = append(b, itemAtom("----",
		flagged(meanTag, "com.apple.iTunes"),
		flagged(nameTag, "ISRC"),
		dataAtom(uint32(TypeUTF8), 0, []byte("USUM71703692")),
	)...)

	entries, err := ParseList(b, 0)
	require.NoError(t, err)
	require.Equal(t, len(b), ListLen(entries))
	require.Equal(t, b, AppendList(nil, entries))
}

func TestVerbatimChildPreserved(t *testing.T) {
	t.Parallel()

	// An itms child next to the data atom is not understood but must
	// survive the round trip.
	odd := atomio.AppendAtom(nil, atomio.StringToTag("itms"), []byte{9, 9})
	b := itemAtom("\xa9ART",
		odd,
		dataAtom(uint32(TypeUTF8), 0, []byte("Alice")),
	)

	entries, err := ParseList(b, 0)
	require.NoError(t, err)
	require.Equal(t, b, AppendList(nil, entries))
}

func TestEntryLen(t *testing.T) {
	t.Parallel()

	e := Entry{
		Ident: FourCC("\xa9nam"),
		Data:  []Data{UTF8("Gute Nacht")},
	}
	require.Equal(t, len(e.Append(nil)), e.Len())

	f := Entry{
		Ident: Freeform("com.apple.iTunes", "LABEL"),
		Data:  []Data{UTF8("Hyperion")},
	}
	require.Equal(t, len(f.Append(nil)), f.Len())
}

func TestIdentEquality(t *testing.T) {
	t.Parallel()

	require.Equal(t, FourCC("trkn"), FourCC("trkn"))
	require.NotEqual(t, FourCC("trkn"), FourCC("disk"))

	// Freeform equality is case sensitive on both parts.
	a := Freeform("com.apple.iTunes", "ISRC")
	b := Freeform("com.apple.itunes", "ISRC")
	require.NotEqual(t, a, b)
	require.Equal(t, a, Freeform("com.apple.iTunes", "ISRC"))
}

func TestInfo(t *testing.T) {
	t.Parallel()

	info, ok := Info(Artist)
	require.True(t, ok)
	require.Equal(t, "artist", info.Name)
	require.Equal(t, TypeUTF8, info.DefaultType)

	info, ok = Info(Artwork)
	require.True(t, ok)
	require.Equal(t, TypeJPEG, info.DefaultType)

	_, ok = Info(FourCC("zzzz"))
	require.False(t, ok)
	_, ok = Info(Freeform("com.apple.iTunes", "ISRC"))
	require.False(t, ok)

	require.Equal(t, TypeUTF8, DefaultType(FourCC("zzzz")))
	require.Equal(t, TypeBESigned, DefaultType(BPM))
}
