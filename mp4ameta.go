// Package mp4ameta reads and writes iTunes style metadata in MPEG-4 and
// QuickTime container files such as .m4a, .m4b, .m4p, .m4v and .mp4.
//
// The tag of a file is an ordered multimap from item identifiers to typed
// data values. Reading never buffers media data; writing patches the file
// in place when the serialized metadata keeps its length or a neighboring
// free atom can absorb the difference, and otherwise rewrites the file
// atomically while fixing up every stco/co64 chunk offset so the media
// stays addressable.
//
//	tag, err := mp4ameta.Open("song.m4a")
//	if err != nil { ... }
//	tag.SetArtist("Alice")
//	err = tag.WriteToFile("song.m4a")
package mp4ameta

// Open reads the tag of the file at path. A file without metadata yields
// an empty tag.
func Open(path string) (*Tag, error) {
	return ReadFromFile(path)
}
