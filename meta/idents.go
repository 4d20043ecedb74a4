package meta

import "github.com/Saecki/mp4ameta/atomio"

// Well-known item atoms, grouped by the iTunes version that introduced
// them.
var (
	// iTunes 4.0
	Album          = FourCC("\xa9alb")
	AlbumArtist    = FourCC("aART")
	Artist         = FourCC("\xa9ART")
	Artwork        = FourCC("covr")
	BPM            = FourCC("tmpo")
	Comment        = FourCC("\xa9cmt")
	Compilation    = FourCC("cpil")
	Composer       = FourCC("\xa9wrt")
	Copyright      = FourCC("cprt")
	CustomGenre    = FourCC("\xa9gen")
	DiscNumber     = FourCC("disk")
	Encoder        = FourCC("\xa9too")
	AdvisoryRating = FourCC("rtng")
	StandardGenre  = FourCC("gnre")
	Title          = FourCC("\xa9nam")
	TrackNumber    = FourCC("trkn")
	Year           = FourCC("\xa9day")

	// iTunes 4.2
	Grouping  = FourCC("\xa9grp")
	MediaType = FourCC("stik")

	// iTunes 4.9
	Category         = FourCC("catg")
	Keyword          = FourCC("keyw")
	Podcast          = FourCC("pcst")
	PodcastEpisodeID = FourCC("egid")
	PodcastURL       = FourCC("purl")

	// iTunes 5.0
	Description = FourCC("desc")
	Lyrics      = FourCC("\xa9lyr")

	// iTunes 6.0
	TvEpisode       = FourCC("tves")
	TvEpisodeNumber = FourCC("tven")
	TvNetworkName   = FourCC("tvnn")
	TvSeason        = FourCC("tvsn")
	TvShowName      = FourCC("tvsh")

	// iTunes 6.0.2
	PurchaseDate = FourCC("purd")

	// iTunes 7.0
	GaplessPlayback = FourCC("pgap")

	// Work and movement
	MovementName  = FourCC("\xa9mvn")
	MovementCount = FourCC("\xa9mvc")
	MovementIndex = FourCC("\xa9mvi")
	Work          = FourCC("\xa9wrk")
	ShowMovement  = FourCC("shwm")

	// Sorting
	SortAlbum       = FourCC("soal")
	SortAlbumArtist = FourCC("soaa")
	SortArtist      = FourCC("soar")
	SortComposer    = FourCC("soco")
	SortShow        = FourCC("sosn")
	SortTitle       = FourCC("sonm")

	// Store metadata
	AppleID         = FourCC("apID")
	Owner           = FourCC("ownr")
	LongDescription = FourCC("ldes")
	EpisodeSummary  = FourCC("sdes")
	TvEpisodeID     = FourCC("cnID")
)

// IdentInfo describes a well-known item atom: the semantic name and the
// data type the encoder uses for new values.
type IdentInfo struct {
	Name        string
	DefaultType DataType
}

var wellKnown = map[atomio.Tag]IdentInfo{
	Album.Code:            {"album", TypeUTF8},
	AlbumArtist.Code:      {"album artist", TypeUTF8},
	Artist.Code:           {"artist", TypeUTF8},
	Artwork.Code:          {"artwork", TypeJPEG},
	BPM.Code:              {"bpm", TypeBESigned},
	Comment.Code:          {"comment", TypeUTF8},
	Compilation.Code:      {"compilation", TypeBESigned},
	Composer.Code:         {"composer", TypeUTF8},
	Copyright.Code:        {"copyright", TypeUTF8},
	CustomGenre.Code:      {"genre", TypeUTF8},
	DiscNumber.Code:       {"disc number", TypeReserved},
	Encoder.Code:          {"encoder", TypeUTF8},
	AdvisoryRating.Code:   {"advisory rating", TypeBESigned},
	StandardGenre.Code:    {"standard genre", TypeReserved},
	Title.Code:            {"title", TypeUTF8},
	TrackNumber.Code:      {"track number", TypeReserved},
	Year.Code:             {"year", TypeUTF8},
	Grouping.Code:         {"grouping", TypeUTF8},
	MediaType.Code:        {"media type", TypeBESigned},
	Category.Code:         {"category", TypeUTF8},
	Keyword.Code:          {"keyword", TypeUTF8},
	Podcast.Code:          {"podcast", TypeBESigned},
	PodcastEpisodeID.Code: {"podcast episode id", TypeUTF8},
	PodcastURL.Code:       {"podcast url", TypeUTF8},
	Description.Code:      {"description", TypeUTF8},
	Lyrics.Code:           {"lyrics", TypeUTF8},
	TvEpisode.Code:        {"tv episode", TypeBESigned},
	TvEpisodeNumber.Code:  {"tv episode number", TypeUTF8},
	TvNetworkName.Code:    {"tv network name", TypeUTF8},
	TvSeason.Code:         {"tv season", TypeBESigned},
	TvShowName.Code:       {"tv show name", TypeUTF8},
	PurchaseDate.Code:     {"purchase date", TypeUTF8},
	GaplessPlayback.Code:  {"gapless playback", TypeBESigned},
	MovementName.Code:     {"movement name", TypeUTF8},
	MovementCount.Code:    {"movement count", TypeBESigned},
	MovementIndex.Code:    {"movement index", TypeBESigned},
	Work.Code:             {"work", TypeUTF8},
	ShowMovement.Code:     {"show movement", TypeBESigned},
	SortAlbum.Code:        {"sort album", TypeUTF8},
	SortAlbumArtist.Code:  {"sort album artist", TypeUTF8},
	SortArtist.Code:       {"sort artist", TypeUTF8},
	SortComposer.Code:     {"sort composer", TypeUTF8},
	SortShow.Code:         {"sort show", TypeUTF8},
	SortTitle.Code:        {"sort title", TypeUTF8},
	AppleID.Code:          {"apple id", TypeUTF8},
	Owner.Code:            {"owner", TypeUTF8},
	LongDescription.Code:  {"long description", TypeUTF8},
	EpisodeSummary.Code:   {"episode summary", TypeUTF8},
	TvEpisodeID.Code:      {"tv episode id", TypeBESigned},
}

// Info returns the well-known description of an ident. Freeform idents and
// unknown fourcc codes have none.
func Info(ident Ident) (IdentInfo, bool) {
	f, ok := ident.(FourCCIdent)
	if !ok {
		return IdentInfo{}, false
	}
	info, ok := wellKnown[f.Code]
	return info, ok
}

// DefaultType returns the data type the encoder prefers for new values of
// the ident. Unknown and freeform idents default to UTF-8.
func DefaultType(ident Ident) DataType {
	if info, ok := Info(ident); ok {
		return info.DefaultType
	}
	return TypeUTF8
}
