package mp4ameta

import (
	"bytes"
	"image"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/Saecki/mp4ameta/meta"
	"github.com/Saecki/mp4ameta/utils"
	"github.com/Saecki/mp4ameta/utils/bits/pio"
)

func (t *Tag) firstString(ident meta.Ident) string {
	for _, d := range t.Data(ident) {
		if s, ok := d.Str(); ok {
			return s
		}
	}
	return ""
}

func (t *Tag) firstInt(ident meta.Ident) (int64, bool) {
	for _, d := range t.Data(ident) {
		if i, ok := d.Int(); ok {
			return i, true
		}
	}
	return 0, false
}

func (t *Tag) firstBool(ident meta.Ident) bool {
	i, ok := t.firstInt(ident)
	return ok && i != 0
}

func (t *Tag) setBool(ident meta.Ident, v bool) {
	if !v {
		t.RemoveData(ident)
		return
	}
	t.SetData(ident, meta.SignedWidth(1, 1))
}

// pair reads a (number, total) pair out of the reserved payload used by
// trkn and disk.
func (t *Tag) pair(ident meta.Ident) (num, total int) {
	for _, d := range t.Data(ident) {
		b := d.Bytes()
		if len(b) >= 6 {
			return int(pio.U16BE(b[2:])), int(pio.U16BE(b[4:]))
		}
	}
	return 0, 0
}

func (t *Tag) setPair(ident meta.Ident, num, total, size int) {
	b := make([]byte, size)
	pio.PutU16BE(b[2:], uint16(num))
	pio.PutU16BE(b[4:], uint16(total))
	t.SetData(ident, meta.Reserved(b))
}

func (t *Tag) Album() string { return t.firstString(meta.Album) }
func (t *Tag) SetAlbum(v string) { t.SetData(meta.Album, meta.UTF8(v)) }
func (t *Tag) RemoveAlbum() { t.RemoveData(meta.Album) }

func (t *Tag) AlbumArtist() string { return t.firstString(meta.AlbumArtist) }
func (t *Tag) SetAlbumArtist(v string) { t.SetData(meta.AlbumArtist, meta.UTF8(v)) }
func (t *Tag) RemoveAlbumArtist() { t.RemoveData(meta.AlbumArtist) }

func (t *Tag) Artist() string { return t.firstString(meta.Artist) }
func (t *Tag) SetArtist(v string) { t.SetData(meta.Artist, meta.UTF8(v)) }
func (t *Tag) RemoveArtist() { t.RemoveData(meta.Artist) }

func (t *Tag) Title() string { return t.firstString(meta.Title) }
func (t *Tag) SetTitle(v string) { t.SetData(meta.Title, meta.UTF8(v)) }
func (t *Tag) RemoveTitle() { t.RemoveData(meta.Title) }

func (t *Tag) Comment() string { return t.firstString(meta.Comment) }
func (t *Tag) SetComment(v string) { t.SetData(meta.Comment, meta.UTF8(v)) }
func (t *Tag) RemoveComment() { t.RemoveData(meta.Comment) }

func (t *Tag) Composer() string { return t.firstString(meta.Composer) }
func (t *Tag) SetComposer(v string) { t.SetData(meta.Composer, meta.UTF8(v)) }
func (t *Tag) RemoveComposer() { t.RemoveData(meta.Composer) }

func (t *Tag) Copyright() string { return t.firstString(meta.Copyright) }
func (t *Tag) SetCopyright(v string) { t.SetData(meta.Copyright, meta.UTF8(v)) }

func (t *Tag) Encoder() string { return t.firstString(meta.Encoder) }
func (t *Tag) SetEncoder(v string) { t.SetData(meta.Encoder, meta.UTF8(v)) }

func (t *Tag) Grouping() string { return t.firstString(meta.Grouping) }
func (t *Tag) SetGrouping(v string) { t.SetData(meta.Grouping, meta.UTF8(v)) }

func (t *Tag) Lyrics() string { return t.firstString(meta.Lyrics) }
func (t *Tag) SetLyrics(v string) { t.SetData(meta.Lyrics, meta.UTF8(v)) }

func (t *Tag) Description() string { return t.firstString(meta.Description) }
func (t *Tag) SetDescription(v string) { t.SetData(meta.Description, meta.UTF8(v)) }

func (t *Tag) Work() string { return t.firstString(meta.Work) }
func (t *Tag) SetWork(v string) { t.SetData(meta.Work, meta.UTF8(v)) }

func (t *Tag) MovementName() string { return t.firstString(meta.MovementName) }
func (t *Tag) SetMovementName(v string) { t.SetData(meta.MovementName, meta.UTF8(v)) }

func (t *Tag) Category() string { return t.firstString(meta.Category) }
func (t *Tag) SetCategory(v string) { t.SetData(meta.Category, meta.UTF8(v)) }

func (t *Tag) Keyword() string { return t.firstString(meta.Keyword) }
func (t *Tag) SetKeyword(v string) { t.SetData(meta.Keyword, meta.UTF8(v)) }

func (t *Tag) PodcastURL() string { return t.firstString(meta.PodcastURL) }
func (t *Tag) SetPodcastURL(v string) { t.SetData(meta.PodcastURL, meta.UTF8(v)) }

func (t *Tag) PodcastEpisodeID() string { return t.firstString(meta.PodcastEpisodeID) }
func (t *Tag) SetPodcastEpisodeID(v string) { t.SetData(meta.PodcastEpisodeID, meta.UTF8(v)) }

func (t *Tag) PurchaseDate() string { return t.firstString(meta.PurchaseDate) }
func (t *Tag) SetPurchaseDate(v string) { t.SetData(meta.PurchaseDate, meta.UTF8(v)) }

func (t *Tag) TvShowName() string { return t.firstString(meta.TvShowName) }
func (t *Tag) SetTvShowName(v string) { t.SetData(meta.TvShowName, meta.UTF8(v)) }
func (t *Tag) TvNetworkName() string { return t.firstString(meta.TvNetworkName) }
func (t *Tag) SetTvNetworkName(v string) { t.SetData(meta.TvNetworkName, meta.UTF8(v)) }
func (t *Tag) TvEpisodeNumber() string { return t.firstString(meta.TvEpisodeNumber) }
func (t *Tag) SetTvEpisodeNumber(v string) { t.SetData(meta.TvEpisodeNumber, meta.UTF8(v)) }

func (t *Tag) TvSeason() (int64, bool) { return t.firstInt(meta.TvSeason) }
func (t *Tag) SetTvSeason(v int64) { t.SetData(meta.TvSeason, meta.SignedWidth(v, 4)) }
func (t *Tag) TvEpisode() (int64, bool) { return t.firstInt(meta.TvEpisode) }
func (t *Tag) SetTvEpisode(v int64) { t.SetData(meta.TvEpisode, meta.SignedWidth(v, 4)) }

// Year returns the ©day value, which iTunes stores as a string.
func (t *Tag) Year() string { return t.firstString(meta.Year) }
func (t *Tag) SetYear(v string) { t.SetData(meta.Year, meta.UTF8(v)) }
func (t *Tag) RemoveYear() { t.RemoveData(meta.Year) }

// BPM returns the tempo in beats per minute.
func (t *Tag) BPM() (int64, bool) { return t.firstInt(meta.BPM) }
func (t *Tag) SetBPM(v int64) { t.SetData(meta.BPM, meta.SignedWidth(v, 2)) }

func (t *Tag) AdvisoryRating() (int64, bool) { return t.firstInt(meta.AdvisoryRating) }
func (t *Tag) SetAdvisoryRating(v int64) { t.SetData(meta.AdvisoryRating, meta.SignedWidth(v, 1)) }

func (t *Tag) MediaType() (int64, bool) { return t.firstInt(meta.MediaType) }
func (t *Tag) SetMediaType(v int64) { t.SetData(meta.MediaType, meta.SignedWidth(v, 1)) }

func (t *Tag) MovementCount() (int64, bool) { return t.firstInt(meta.MovementCount) }
func (t *Tag) SetMovementCount(v int64) { t.SetData(meta.MovementCount, meta.SignedWidth(v, 2)) }
func (t *Tag) MovementIndex() (int64, bool) { return t.firstInt(meta.MovementIndex) }
func (t *Tag) SetMovementIndex(v int64) { t.SetData(meta.MovementIndex, meta.SignedWidth(v, 2)) }

func (t *Tag) Compilation() bool { return t.firstBool(meta.Compilation) }
func (t *Tag) SetCompilation(v bool) { t.setBool(meta.Compilation, v) }
func (t *Tag) GaplessPlayback() bool { return t.firstBool(meta.GaplessPlayback) }
func (t *Tag) SetGaplessPlayback(v bool) { t.setBool(meta.GaplessPlayback, v) }
func (t *Tag) Podcast() bool { return t.firstBool(meta.Podcast) }
func (t *Tag) SetPodcast(v bool) { t.setBool(meta.Podcast, v) }
func (t *Tag) ShowMovement() bool { return t.firstBool(meta.ShowMovement) }
func (t *Tag) SetShowMovement(v bool) { t.setBool(meta.ShowMovement, v) }

// TrackNumber returns the track number and the total track count.
func (t *Tag) TrackNumber() (num, total int) {
	return t.pair(meta.TrackNumber)
}

// SetTrackNumber stores the track number pair in the usual 8 byte trkn
// payload.
func (t *Tag) SetTrackNumber(num, total int) {
	t.setPair(meta.TrackNumber, num, total, 8)
}

// DiscNumber returns the disc number and the total disc count.
func (t *Tag) DiscNumber() (num, total int) {
	return t.pair(meta.DiscNumber)
}

// SetDiscNumber stores the disc number pair in the usual 6 byte disk
// payload.
func (t *Tag) SetDiscNumber(num, total int) {
	t.setPair(meta.DiscNumber, num, total, 6)
}

// Genre returns the genre, preferring the custom ©gen string and falling
// back to the standard gnre code.
func (t *Tag) Genre() string {
	if s := t.firstString(meta.CustomGenre); s != "" {
		return s
	}
	if code, ok := t.firstInt(meta.StandardGenre); ok {
		if g, ok := genreForCode(code); ok {
			return g
		}
	}
	return ""
}

// SetGenre stores the genre as a custom ©gen string and drops any gnre
// code so the two cannot disagree.
func (t *Tag) SetGenre(v string) {
	t.RemoveData(meta.StandardGenre)
	t.SetData(meta.CustomGenre, meta.UTF8(v))
}

// SetStandardGenre stores the gnre code for a genre from StandardGenres
// and drops any ©gen string.
func (t *Tag) SetStandardGenre(genre string) bool {
	code, ok := genreCode(genre)
	if !ok {
		return false
	}
	var b [2]byte
	pio.PutU16BE(b[:], uint16(code))
	t.RemoveData(meta.CustomGenre)
	t.SetData(meta.StandardGenre, meta.Reserved(b[:]))
	return true
}

// RemoveGenre drops both genre representations.
func (t *Tag) RemoveGenre() {
	t.RemoveData(meta.CustomGenre)
	t.RemoveData(meta.StandardGenre)
}

// Artworks returns the cover images in order.
func (t *Tag) Artworks() []meta.Data {
	return t.Images(meta.Artwork)
}

// SetArtwork replaces all cover images.
func (t *Tag) SetArtwork(data ...meta.Data) {
	t.SetData(meta.Artwork, data...)
}

// AddArtwork appends a cover image, sniffing whether the bytes are JPEG,
// PNG or BMP. Other formats are rejected.
func (t *Tag) AddArtwork(img []byte) error {
	d, err := sniffArtwork(img)
	if err != nil {
		return err
	}
	t.AddData(meta.Artwork, d)
	return nil
}

func sniffArtwork(img []byte) (meta.Data, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return meta.Data{}, utils.UnsupportedError{Detail: "unrecognized image data"}
	}
	switch format {
	case "jpeg":
		return meta.JPEG(img), nil
	case "png":
		return meta.PNG(img), nil
	case "bmp":
		return meta.BMP(img), nil
	}
	return meta.Data{}, utils.UnsupportedError{Detail: "image format " + format + " cannot be stored"}
}
