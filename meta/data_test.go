package meta

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Saecki/mp4ameta/utils"
)

func TestParseUTF8(t *testing.T) {
	t.Parallel()

	d, err := parseData(uint32(TypeUTF8), 0, []byte("Alice"))
	require.NoError(t, err)
	require.Equal(t, TypeUTF8, d.Type())
	s, ok := d.Str()
	require.True(t, ok)
	require.Equal(t, "Alice", s)
}

func TestParseInvalidUTF8(t *testing.T) {
	t.Parallel()

	_, err := parseData(uint32(TypeUTF8), 0, []byte{0xff, 0xfe, 0xfd})
	targetError := utils.MalformedDataError{}
	require.ErrorAs(t, err, &targetError)
}

func TestParseUTF16(t *testing.T) {
	t.Parallel()

	payload := []byte{0x00, 'B', 0x00, 'o', 0x00, 'b'}
	d, err := parseData(uint32(TypeUTF16), 0, payload)
	require.NoError(t, err)
	s, ok := d.Str()
	require.True(t, ok)
	require.Equal(t, "Bob", s)

	// Unedited values reproduce their original bytes.
	require.Equal(t, payload, d.appendPayload(nil))
}

func TestParseOddUTF16(t *testing.T) {
	t.Parallel()

	_, err := parseData(uint32(TypeUTF16), 0, []byte{0x00, 'B', 0x00})
	targetError := utils.MalformedDataError{}
	require.ErrorAs(t, err, &targetError)
}

func TestEncodeUTF16(t *testing.T) {
	t.Parallel()

	d := UTF16("Bob")
	require.Equal(t, 6, d.payloadLen())
	require.Equal(t, []byte{0x00, 'B', 0x00, 'o', 0x00, 'b'}, d.appendPayload(nil))
}

func TestParseSignedWidths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload []byte
		want    int64
	}{
		{name: "one_byte", payload: []byte{0xff}, want: -1},
		{name: "two_bytes", payload: []byte{0x00, 0x11}, want: 17},
		{name: "three_bytes", payload: []byte{0xff, 0xff, 0xfe}, want: -2},
		{name: "four_bytes", payload: []byte{0x00, 0x01, 0x00, 0x00}, want: 65536},
		{name: "eight_bytes", payload: []byte{0, 0, 0, 1, 0, 0, 0, 0}, want: 1 << 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, err := parseData(uint32(TypeBESigned), 0, tt.payload)
			require.NoError(t, err)
			v, ok := d.Int()
			require.True(t, ok)
			require.Equal(t, tt.want, v)
			require.Equal(t, tt.payload, d.appendPayload(nil))
		})
	}
}

func TestParseUnsupportedWidth(t *testing.T) {
	t.Parallel()

	_, err := parseData(uint32(TypeBESigned), 0, make([]byte, 5))
	targetError := utils.UnsupportedError{}
	require.ErrorAs(t, err, &targetError)

	_, err = parseData(uint32(TypeBEUnsigned), 0, make([]byte, 6))
	require.ErrorAs(t, err, &targetError)
}

func TestIntWidthPreserved(t *testing.T) {
	t.Parallel()

	// A two byte value stays two bytes when the replacement fits.
	d := SignedWidth(18, 2)
	require.Equal(t, []byte{0x00, 0x12}, d.appendPayload(nil))

	// Too large values widen to the smallest compatible width.
	d = SignedWidth(300, 1)
	require.Equal(t, []byte{0x01, 0x2c}, d.appendPayload(nil))
}

func TestSignedWidths(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, signedWidth(127))
	require.Equal(t, 2, signedWidth(128))
	require.Equal(t, 2, signedWidth(-129))
	require.Equal(t, 3, signedWidth(1<<15))
	require.Equal(t, 4, signedWidth(1<<23))
	require.Equal(t, 8, signedWidth(1<<31))
	require.Equal(t, 1, unsignedWidth(255))
	require.Equal(t, 2, unsignedWidth(256))
	require.Equal(t, 8, unsignedWidth(1<<32))
}

func TestUnknownTypePreserved(t *testing.T) {
	t.Parallel()

	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	d, err := parseData(99, 0, payload)
	require.NoError(t, err)
	require.Equal(t, DataType(99), d.Type())
	require.Equal(t, payload, d.appendPayload(nil))
	_, ok := d.Str()
	require.False(t, ok)
}

func TestNonzeroSelectorPreserved(t *testing.T) {
	t.Parallel()

	// With a type-set selector the payload is opaque even for known type
	// codes.
	head := uint32(1)<<24 | uint32(TypeUTF8)
	payload := []byte{0xff, 0xfe}
	d, err := parseData(head, 0, payload)
	require.NoError(t, err)
	_, ok := d.Str()
	require.False(t, ok)
	require.Equal(t, head, d.head())
	require.Equal(t, payload, d.appendPayload(nil))
}

func TestLocalePreserved(t *testing.T) {
	t.Parallel()

	d, err := parseData(uint32(TypeUTF8), 0x150c, []byte("x"))
	require.NoError(t, err)
	require.Equal(t, uint32(0x150c), d.Locale())
}

func TestImplicitInt(t *testing.T) {
	t.Parallel()

	// gnre stores its genre code as a reserved-type big-endian integer.
	d, err := parseData(uint32(TypeReserved), 0, []byte{0x00, 0x11})
	require.NoError(t, err)
	v, ok := d.Int()
	require.True(t, ok)
	require.Equal(t, int64(17), v)
}

func TestImage(t *testing.T) {
	t.Parallel()

	jpg := JPEG([]byte{0xff, 0xd8, 0xff})
	img, ok := jpg.Image()
	require.True(t, ok)
	require.Equal(t, []byte{0xff, 0xd8, 0xff}, img)

	_, ok = UTF8("not an image").Image()
	require.False(t, ok)
}
