package mp4ameta

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Saecki/mp4ameta/meta"
)

func TestSetData(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	tag.SetData(meta.Artist, meta.UTF8("Alice"))
	require.Equal(t, []string{"Alice"}, tag.Strings(meta.Artist))

	tag.SetData(meta.Artist, meta.UTF8("Bob"))
	require.Equal(t, []string{"Bob"}, tag.Strings(meta.Artist))

	tag.SetData(meta.Artist)
	require.Empty(t, tag.Strings(meta.Artist))
	require.Empty(t, tag.Idents())
}

func TestAddData(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	tag.AddData(meta.CustomGenre, meta.UTF8("Folk"))
	tag.AddData(meta.CustomGenre, meta.UTF8("Rock"))
	require.Equal(t, []string{"Folk", "Rock"}, tag.Strings(meta.CustomGenre))
}

func TestOrdering(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	tag.SetData(meta.Title, meta.UTF8("a"))
	tag.SetData(meta.Artist, meta.UTF8("b"))
	tag.SetData(meta.Album, meta.UTF8("c"))

	// Replacing a value keeps the item's position, new idents append.
	tag.SetData(meta.Artist, meta.UTF8("d"))
	tag.SetData(meta.Comment, meta.UTF8("e"))
	require.Equal(t,
		[]meta.Ident{meta.Title, meta.Artist, meta.Album, meta.Comment},
		tag.Idents())
}

func TestRemoveData(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	tag.SetData(meta.Title, meta.UTF8("a"))
	tag.SetData(meta.Artist, meta.UTF8("b"))
	tag.RemoveData(meta.Title)
	require.Equal(t, []meta.Ident{meta.Artist}, tag.Idents())
}

func TestRetain(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	tag.SetData(meta.Title, meta.UTF8("keep"))
	tag.AddData(meta.CustomGenre, meta.UTF8("keep"), meta.UTF8("drop"))

	tag.Retain(func(ident meta.Ident, d meta.Data) bool {
		s, _ := d.Str()
		return s == "keep"
	})
	require.Equal(t, []string{"keep"}, tag.Strings(meta.Title))
	require.Equal(t, []string{"keep"}, tag.Strings(meta.CustomGenre))

	tag.Retain(func(ident meta.Ident, d meta.Data) bool {
		return ident == meta.Title
	})
	require.Equal(t, []meta.Ident{meta.Title}, tag.Idents())
}

func TestFreeformDistinct(t *testing.T) {
	t.Parallel()

	upper := meta.Freeform("com.apple.iTunes", "ISRC")
	lower := meta.Freeform("com.apple.itunes", "ISRC")

	tag := NewTag()
	tag.SetData(upper, meta.UTF8("one"))
	tag.SetData(lower, meta.UTF8("two"))

	require.Equal(t, []string{"one"}, tag.Strings(upper))
	require.Equal(t, []string{"two"}, tag.Strings(lower))

	tag.SetData(upper, meta.UTF8("three"))
	require.Equal(t, []string{"two"}, tag.Strings(lower))
}

func TestMultiValueImages(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	tag.SetData(meta.Artwork, meta.JPEG([]byte{0xff, 0xd8}))
	tag.AddData(meta.Artwork, meta.PNG([]byte{0x89, 0x50}))

	imgs := tag.Images(meta.Artwork)
	require.Len(t, imgs, 2)
	require.Equal(t, meta.TypeJPEG, imgs[0].Type())
	require.Equal(t, meta.TypePNG, imgs[1].Type())
}

func TestProjectionsSkipOtherTypes(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	tag.AddData(meta.Comment, meta.UTF8("text"), meta.Signed(7))
	require.Equal(t, []string{"text"}, tag.Strings(meta.Comment))
	require.Equal(t, []int64{7}, tag.Ints(meta.Comment))
	require.Empty(t, tag.Images(meta.Comment))
}

func TestTrackAndDiscNumber(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	tag.SetTrackNumber(3, 12)
	num, total := tag.TrackNumber()
	require.Equal(t, 3, num)
	require.Equal(t, 12, total)
	require.Len(t, tag.Data(meta.TrackNumber)[0].Bytes(), 8)

	tag.SetDiscNumber(1, 2)
	num, total = tag.DiscNumber()
	require.Equal(t, 1, num)
	require.Equal(t, 2, total)
	require.Len(t, tag.Data(meta.DiscNumber)[0].Bytes(), 6)
}

func TestGenreFallback(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	tag.SetData(meta.StandardGenre, meta.Reserved([]byte{0x00, 0x11}))
	require.Equal(t, "Reggae", tag.Genre())

	tag.SetData(meta.CustomGenre, meta.UTF8("Krautrock"))
	require.Equal(t, "Krautrock", tag.Genre())

	tag.SetGenre("Jazz")
	require.Equal(t, "Jazz", tag.Genre())
	require.Empty(t, tag.Data(meta.StandardGenre))

	require.True(t, tag.SetStandardGenre("Polka"))
	require.Equal(t, "Polka", tag.Genre())
	require.Empty(t, tag.Data(meta.CustomGenre))
	require.False(t, tag.SetStandardGenre("Post-Dubstep"))
}

func TestBoolAccessors(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	require.False(t, tag.Compilation())
	tag.SetCompilation(true)
	require.True(t, tag.Compilation())
	require.Len(t, tag.Data(meta.Compilation)[0].Bytes(), 1)
	tag.SetCompilation(false)
	require.False(t, tag.Compilation())
	require.Empty(t, tag.Data(meta.Compilation))
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	return img
}

func TestAddArtworkSniffing(t *testing.T) {
	t.Parallel()

	var pngBuf, jpgBuf, bmpBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, testImage()))
	require.NoError(t, jpeg.Encode(&jpgBuf, testImage(), nil))
	require.NoError(t, bmp.Encode(&bmpBuf, testImage()))

	tag := NewTag()
	require.NoError(t, tag.AddArtwork(jpgBuf.Bytes()))
	require.NoError(t, tag.AddArtwork(pngBuf.Bytes()))
	require.NoError(t, tag.AddArtwork(bmpBuf.Bytes()))

	imgs := tag.Artworks()
	require.Len(t, imgs, 3)
	require.Equal(t, meta.TypeJPEG, imgs[0].Type())
	require.Equal(t, meta.TypePNG, imgs[1].Type())
	require.Equal(t, meta.TypeBMP, imgs[2].Type())

	require.Error(t, tag.AddArtwork([]byte("not an image at all")))
}

func TestTagString(t *testing.T) {
	t.Parallel()

	tag := NewTag()
	tag.SetArtist("Alice")
	tag.SetBPM(120)
	require.Contains(t, tag.String(), "artist: Alice")
	require.Contains(t, tag.String(), "bpm: 120")
}
