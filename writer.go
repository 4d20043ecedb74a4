package mp4ameta

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sunfish-shogi/bufseekio"

	"github.com/Saecki/mp4ameta/atomio"
	"github.com/Saecki/mp4ameta/meta"
	"github.com/Saecki/mp4ameta/utils"
	"github.com/Saecki/mp4ameta/utils/bits/pio"
	"github.com/Saecki/mp4ameta/utils/logger"
)

const minFreeSize = atomio.HeaderSize

type writeStrategy int

const (
	strategyInPlace writeStrategy = iota
	strategyAbsorbFree
	strategyRelocate
)

func (s writeStrategy) String() string {
	switch s {
	case strategyInPlace:
		return "InPlace"
	case strategyAbsorbFree:
		return "AbsorbFree"
	case strategyRelocate:
		return "Relocate"
	}
	return "Unknown"
}

// patch is a pending overwrite of existing file bytes.
type patch struct {
	off int64
	b   []byte
}

// planWrite picks the cheapest strategy able to persist an item list of
// newLen bytes.
func planWrite(info *fileInfo, newLen int64) writeStrategy {
	if !info.haveIlst {
		return strategyRelocate
	}
	delta := newLen - info.ilst.Size
	if delta == 0 {
		return strategyInPlace
	}
	if info.haveAfter && absorbable(info.freeAfter, delta) {
		return strategyAbsorbFree
	}
	if info.haveBefore && absorbable(info.freeBefore, delta) {
		return strategyAbsorbFree
	}
	return strategyRelocate
}

func absorbable(free atomio.Header, delta int64) bool {
	newSize := free.Size - delta
	return newSize >= minFreeSize && newSize <= 1<<32-1
}

// WriteToFile persists the tag into the file at path.
//
// When the new item list has the old length, or a neighboring free atom
// can absorb the difference, the file is patched in place. Otherwise a
// complete new file is written to a sibling temporary path, synced, and
// renamed over the original, so observers see either the old file or the
// new one.
func (t *Tag) WriteToFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufseekio.NewReadSeeker(f, readBufSize, readHistorySize)
	info, err := probe(r, ReadConfig{})
	if err != nil {
		return err
	}
	if err = checkFiletype(info); err != nil {
		return err
	}
	logger.Debug("mp4ameta", "parsed "+path)

	newIlst := atomio.AppendAtom(nil, atomio.ILST, meta.AppendList(nil, t.entries))
	strategy := planWrite(info, int64(len(newIlst)))
	logger.Debugf("mp4ameta", "sized: delta=%d strategy=%s",
		int64(len(newIlst))-info.ilst.Size, strategy)

	if strategy == strategyRelocate {
		return relocateFile(r, info, newIlst, path)
	}

	patches, err := stagePatches(info, newIlst, strategy)
	if err != nil {
		return err
	}
	for _, p := range patches {
		if _, err = f.WriteAt(p.b, p.off); err != nil {
			return utils.WriteError{Err: err}
		}
	}
	if err = f.Sync(); err != nil {
		return utils.WriteError{Err: err}
	}
	logger.Debug("mp4ameta", "committed in place")
	return nil
}

func checkFiletype(info *fileInfo) error {
	if info.ftyp == nil {
		return utils.UnknownFiletypeError{}
	}
	if !info.ftyp.Recognized() {
		return utils.UnknownFiletypeError{Brand: atomio.Tag(info.ftyp.MajorBrand).String()}
	}
	return nil
}

// stagePatches buffers the overwrites of the in-place strategies. Parent
// container sizes stay valid: either the length is unchanged or the
// difference moves between the item list and its free neighbor.
func stagePatches(info *fileInfo, newIlst []byte, strategy writeStrategy) ([]patch, error) {
	if strategy == strategyInPlace {
		return []patch{{off: info.ilst.Offset, b: newIlst}}, nil
	}

	delta := int64(len(newIlst)) - info.ilst.Size
	var region []byte
	var start int64
	switch {
	case info.haveAfter && absorbable(info.freeAfter, delta):
		free := &atomio.Free{Size_: info.freeAfter.Size - delta}
		region = make([]byte, int64(len(newIlst))+free.Size_)
		copy(region, newIlst)
		free.Marshal(region[len(newIlst):])
		start = info.ilst.Offset
	case info.haveBefore && absorbable(info.freeBefore, delta):
		free := &atomio.Free{Size_: info.freeBefore.Size - delta}
		region = make([]byte, free.Size_+int64(len(newIlst)))
		free.Marshal(region)
		copy(region[free.Size_:], newIlst)
		start = info.freeBefore.Offset
	default:
		return nil, utils.WriteError{Err: fmt.Errorf("free atom can no longer absorb %d bytes", delta)}
	}
	return []patch{{off: start, b: region}}, nil
}

// relocation describes the rebuilt movie atom and where it replaces the
// old one.
type relocation struct {
	moov  []byte
	delta int64
}

// relocate rebuilds the moov atom around the new item list, synthesizing
// missing udta/meta/ilst containers, and patches every chunk offset table
// entry by the shift the referenced media experiences.
func relocate(r io.ReadSeeker, info *fileInfo, newIlst []byte) (rel relocation, err error) {
	moovBuf, err := readAtom(r, info.moov)
	if err != nil {
		return
	}

	// Replacement region [a, b) in absolute offsets, and the ancestor
	// chain whose size fields take the delta.
	var a, b int64
	var repl []byte
	ancestors := []atomio.Header{info.moov}
	quicktime := info.ftyp != nil && info.ftyp.QuickTime()

	switch {
	case info.haveIlst:
		a, b = info.ilst.Offset, info.ilst.End()
		repl = newIlst
		ancestors = append(ancestors, info.udta, info.meta)
	case info.haveMeta:
		a = info.meta.End()
		b = a
		repl = newIlst
		ancestors = append(ancestors, info.udta, info.meta)
	case info.haveUdta:
		a = info.udta.End()
		b = a
		repl = synthMeta(newIlst, quicktime)
		ancestors = append(ancestors, info.udta)
	default:
		a = info.moov.End()
		b = a
		repl = atomio.AppendAtom(nil, atomio.UDTA, synthMeta(newIlst, quicktime))
	}

	rel.delta = int64(len(repl)) - (b - a)

	moovOff := info.moov.Offset
	rel.moov = make([]byte, 0, int64(len(moovBuf))+rel.delta)
	rel.moov = append(rel.moov, moovBuf[:a-moovOff]...)
	rel.moov = append(rel.moov, repl...)
	rel.moov = append(rel.moov, moovBuf[b-moovOff:]...)

	for _, anc := range ancestors {
		if err = bumpSize(rel.moov, anc, moovOff, rel.delta); err != nil {
			return
		}
	}

	if err = patchChunkTables(rel.moov, info, b, rel.delta); err != nil {
		return
	}
	return
}

// synthMeta builds a meta atom holding the item list and the mdir/appl
// handler readers expect. QuickTime files get the raw layout without the
// version/flags prefix.
func synthMeta(ilst []byte, quicktime bool) []byte {
	hdlr := atomio.NewMetadataHandler()
	var payload []byte
	if !quicktime {
		payload = append(payload, 0, 0, 0, 0)
	}
	buf := make([]byte, hdlr.Len())
	hdlr.Marshal(buf)
	payload = append(payload, buf...)
	payload = append(payload, ilst...)
	return atomio.AppendAtom(nil, atomio.META, payload)
}

// bumpSize adds delta to the size field of an ancestor container inside
// the rebuilt moov buffer. Ancestors precede the replacement region, so
// their positions are unshifted.
func bumpSize(moov []byte, h atomio.Header, moovOff, delta int64) error {
	rel := h.Offset - moovOff
	switch h.HeaderLen {
	case atomio.HeaderSize:
		newSize := h.Size + delta
		if newSize > 1<<32-1 {
			return utils.UnsupportedError{Detail: "container size outgrows 32 bit field"}
		}
		pio.PutU32BE(moov[rel:], uint32(newSize))
	case atomio.ExtHeaderSize:
		pio.PutU64BE(moov[rel+8:], uint64(h.Size+delta))
	default:
		return utils.UnsupportedError{Detail: "container with extended type cannot be resized"}
	}
	return nil
}

// patchChunkTables rewrites each stco/co64 entry. The shift of a chunk is
// derived from its old offset: media behind the old end of moov moves by
// delta, media in front of moov stays put.
func patchChunkTables(moov []byte, info *fileInfo, replEnd, delta int64) error {
	moovOff := info.moov.Offset
	oldMoovEnd := info.moov.End()

	for _, table := range info.chunkTables {
		rel := table.entriesPos - moovOff
		if table.entriesPos >= replEnd {
			rel += delta
		}
		for i := 0; i < table.count; i++ {
			switch table.width {
			case 4:
				pos := rel + int64(i)*4
				old := int64(pio.U32BE(moov[pos:]))
				shifted, err := shiftChunk(old, moovOff, oldMoovEnd, delta)
				if err != nil {
					return err
				}
				if shifted > 1<<32-1 {
					return utils.UnsupportedError{Detail: "chunk offset outgrows stco entry"}
				}
				pio.PutU32BE(moov[pos:], uint32(shifted))
			case 8:
				pos := rel + int64(i)*8
				old := int64(pio.U64BE(moov[pos:]))
				shifted, err := shiftChunk(old, moovOff, oldMoovEnd, delta)
				if err != nil {
					return err
				}
				pio.PutU64BE(moov[pos:], uint64(shifted))
			}
		}
	}
	return nil
}

func shiftChunk(offset, moovOff, moovEnd, delta int64) (int64, error) {
	switch {
	case offset >= moovEnd:
		return offset + delta, nil
	case offset < moovOff:
		return offset, nil
	}
	return 0, utils.UnsupportedError{Detail: "chunk offset points inside moov"}
}

// relocateFile serializes the complete new file next to path and renames
// it over the original.
func relocateFile(r io.ReadSeeker, info *fileInfo, newIlst []byte, path string) error {
	rel, err := relocate(r, info, newIlst)
	if err != nil {
		return err
	}

	dir, base := filepath.Split(path)
	tmpPath := filepath.Join(dir, base+"."+uuid.NewString()+".tmp")
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return utils.WriteError{Err: err}
	}
	logger.Debugf("mp4ameta", "staged %s", tmpPath)

	abort := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return utils.WriteError{Err: err}
	}

	if err = writeRelocated(r, info, rel, tmp); err != nil {
		return abort(err)
	}
	if err = tmp.Sync(); err != nil {
		return abort(err)
	}
	if err = tmp.Close(); err != nil {
		return abort(err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return utils.WriteError{Err: err}
	}
	logger.Debug("mp4ameta", "committed by rename")
	return nil
}

// writeRelocated streams the new file: bytes before moov, the rebuilt
// moov, bytes after moov. Media bytes are copied, never buffered whole.
func writeRelocated(r io.ReadSeeker, info *fileInfo, rel relocation, w io.Writer) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.CopyN(w, r, info.moov.Offset); err != nil {
		return err
	}
	if _, err := w.Write(rel.moov); err != nil {
		return err
	}
	if _, err := r.Seek(info.moov.End(), io.SeekStart); err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		return err
	}
	return nil
}

// WriteTo serializes the tagged file from src into dst as a full rewrite.
// Atomicity of the destination is the caller's concern.
func (t *Tag) WriteTo(src io.ReadSeeker, dst io.Writer) error {
	info, err := probe(src, ReadConfig{})
	if err != nil {
		return err
	}
	if err = checkFiletype(info); err != nil {
		return err
	}

	newIlst := atomio.AppendAtom(nil, atomio.ILST, meta.AppendList(nil, t.entries))
	rel, err := relocate(src, info, newIlst)
	if err != nil {
		return err
	}
	if err = writeRelocated(src, info, rel, dst); err != nil {
		return utils.WriteError{Err: err}
	}
	return nil
}
