package mp4ameta

import (
	"io"
	"os"

	"github.com/sunfish-shogi/bufseekio"

	"github.com/Saecki/mp4ameta/atomio"
	"github.com/Saecki/mp4ameta/meta"
	"github.com/Saecki/mp4ameta/utils"
)

const readBufSize = 128 * 1024
const readHistorySize = 4

// chunkTable locates one stco or co64 entry array in the file.
type chunkTable struct {
	entriesPos int64
	count      int
	width      int
}

// fileInfo is the file map gathered during a single descent: everything
// the reader and the rewrite engine need to know about where things are.
type fileInfo struct {
	size int64

	ftyp    *atomio.FileType
	ftypHdr atomio.Header

	moov       atomio.Header
	haveMoov   bool
	udta       atomio.Header
	haveUdta   bool
	meta       atomio.Header
	haveMeta   bool
	metaPrefix int64
	ilst       atomio.Header
	haveIlst   bool

	// free or skip siblings immediately next to ilst under the same parent
	freeBefore atomio.Header
	freeAfter  atomio.Header
	haveBefore bool
	haveAfter  bool

	chunkTables []chunkTable
}

// ReadConfig relaxes where the reader looks for metadata.
type ReadConfig struct {
	// SearchRootMeta also accepts a meta atom at the file root, a layout
	// some writers produce. Such metadata is readable but writes always
	// target the canonical moov/udta/meta chain.
	SearchRootMeta bool
}

// probe walks the atom tree once, gathering the file map. It never buffers
// mdat; apart from the ftyp atom and the stco/co64 tables, which are read
// whole, only atom headers are read.
func probe(r io.ReadSeeker, cfg ReadConfig) (info *fileInfo, err error) {
	info = &fileInfo{}
	var rootMeta atomio.Header
	var haveRootMeta bool

	cursor, err := atomio.FileCursor(r)
	if err != nil {
		return nil, err
	}
	if info.size, err = r.Seek(0, io.SeekEnd); err != nil {
		return nil, err
	}

	for {
		var h atomio.Header
		if h, err = cursor.Next(); err != nil {
			if err == io.EOF {
				err = nil
				break
			}
			return nil, err
		}

		switch h.Tag {
		case atomio.FTYP:
			var ftyp atomio.FileType
			var b []byte
			if b, err = readAtom(r, h); err != nil {
				return nil, err
			}
			if _, err = ftyp.Unmarshal(b, h.Offset); err != nil {
				return nil, err
			}
			info.ftyp = &ftyp
			info.ftypHdr = h
		case atomio.MOOV:
			info.moov = h
			info.haveMoov = true
			var children *atomio.Cursor
			if children, err = cursor.Children(h); err != nil {
				return nil, err
			}
			if err = probeMovie(r, children, info); err != nil {
				return nil, err
			}
		case atomio.META:
			rootMeta = h
			haveRootMeta = true
		}
	}

	if !info.haveMoov {
		return nil, atomio.ParseErr("NoMovieAtom", 0, nil)
	}

	if !info.haveIlst && cfg.SearchRootMeta && haveRootMeta {
		var prefix int64
		if prefix, err = atomio.MetaPrefixLen(r, rootMeta); err != nil {
			return nil, err
		}
		children := atomio.NewCursor(r, rootMeta.PayloadOffset()+prefix, rootMeta.End())
		if err = probeMeta(children, info); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func probeMovie(r io.ReadSeeker, cursor *atomio.Cursor, info *fileInfo) (err error) {
	for {
		var h atomio.Header
		if h, err = cursor.Next(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		switch h.Tag {
		case atomio.UDTA:
			info.udta = h
			info.haveUdta = true
			var children *atomio.Cursor
			if children, err = cursor.Children(h); err != nil {
				return err
			}
			if err = probeUserData(r, children, info); err != nil {
				return err
			}
		case atomio.TRAK:
			var children *atomio.Cursor
			if children, err = cursor.Children(h); err != nil {
				return err
			}
			if err = probeTrack(r, children, info); err != nil {
				return err
			}
		}
	}
}

func probeUserData(r io.ReadSeeker, cursor *atomio.Cursor, info *fileInfo) (err error) {
	for {
		var h atomio.Header
		if h, err = cursor.Next(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if h.Tag != atomio.META {
			continue
		}

		info.meta = h
		info.haveMeta = true
		if info.metaPrefix, err = atomio.MetaPrefixLen(r, h); err != nil {
			return err
		}
		children, err := cursor.Children(h)
		if err != nil {
			return err
		}
		if err = probeMeta(children, info); err != nil {
			return err
		}
	}
}

func probeMeta(cursor *atomio.Cursor, info *fileInfo) (err error) {
	var prev atomio.Header
	var havePrev bool
	for {
		var h atomio.Header
		if h, err = cursor.Next(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		switch h.Tag {
		case atomio.ILST:
			info.ilst = h
			info.haveIlst = true
			if havePrev && (prev.Tag == atomio.FREE || prev.Tag == atomio.SKIP) && prev.End() == h.Offset {
				info.freeBefore = prev
				info.haveBefore = true
			}
		case atomio.FREE, atomio.SKIP:
			if info.haveIlst && info.ilst.End() == h.Offset && !info.haveAfter {
				info.freeAfter = h
				info.haveAfter = true
			}
		}
		prev = h
		havePrev = true
	}
}

func probeTrack(r io.ReadSeeker, cursor *atomio.Cursor, info *fileInfo) (err error) {
	for {
		var h atomio.Header
		if h, err = cursor.Next(); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		switch h.Tag {
		case atomio.MDIA, atomio.MINF, atomio.STBL:
			var children *atomio.Cursor
			if children, err = cursor.Children(h); err != nil {
				return err
			}
			if err = probeTrack(r, children, info); err != nil {
				return err
			}
		case atomio.STCO, atomio.CO64:
			var table chunkTable
			if table, err = readChunkTable(r, h); err != nil {
				return err
			}
			info.chunkTables = append(info.chunkTables, table)
		}
	}
}

func readChunkTable(r io.ReadSeeker, h atomio.Header) (table chunkTable, err error) {
	if h.HeaderLen != atomio.HeaderSize {
		err = atomio.ParseErr("ChunkTableHeader", h.Offset, nil)
		return
	}
	b, err := readAtom(r, h)
	if err != nil {
		return
	}

	if h.Tag == atomio.STCO {
		stco := &atomio.ChunkOffset{}
		if _, err = stco.Unmarshal(b, h.Offset); err != nil {
			return
		}
		table = chunkTable{entriesPos: stco.EntriesOffset(), count: len(stco.Entries), width: 4}
		return
	}
	co64 := &atomio.ChunkOffset64{}
	if _, err = co64.Unmarshal(b, h.Offset); err != nil {
		return
	}
	table = chunkTable{entriesPos: co64.EntriesOffset(), count: len(co64.Entries), width: 8}
	return
}

// readAtom reads a complete atom, header included.
func readAtom(r io.ReadSeeker, h atomio.Header) (b []byte, err error) {
	if _, err = r.Seek(h.Offset, io.SeekStart); err != nil {
		return
	}
	b = make([]byte, h.Size)
	_, err = io.ReadFull(r, b)
	return
}

// ReadFrom reads the tag from a byte source. If the file has no metadata
// item list the returned tag is usable and empty, and the error matches
// utils.NoTagError.
func ReadFrom(r io.ReadSeeker) (*Tag, error) {
	return ReadFromConfig(r, ReadConfig{})
}

// ReadFromConfig reads the tag with relaxed location rules.
func ReadFromConfig(r io.ReadSeeker, cfg ReadConfig) (*Tag, error) {
	info, err := probe(r, cfg)
	if err != nil {
		return nil, err
	}

	tag := &Tag{ftyp: info.ftyp}
	if !info.haveIlst {
		return tag, utils.NoTagError{}
	}

	payload := make([]byte, info.ilst.PayloadLen())
	if _, err = r.Seek(info.ilst.PayloadOffset(), io.SeekStart); err != nil {
		return nil, err
	}
	if _, err = io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	if tag.entries, err = meta.ParseList(payload, info.ilst.PayloadOffset()); err != nil {
		return nil, err
	}
	return tag, nil
}

// ReadFromFile reads the tag from the file at path. A missing metadata
// item list is not reported; the returned tag is simply empty.
func ReadFromFile(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tag, err := ReadFrom(bufseekio.NewReadSeeker(f, readBufSize, readHistorySize))
	if _, noTag := err.(utils.NoTagError); noTag {
		err = nil
	}
	return tag, err
}
