package mp4ameta

import (
	"fmt"
	"strings"

	"github.com/Saecki/mp4ameta/atomio"
	"github.com/Saecki/mp4ameta/meta"
)

// Tag is the in-memory metadata of one file: an ordered multimap from
// identifier to typed values, plus the filetype context read from ftyp.
//
// A Tag is owned by one caller at a time; it does no locking and holds no
// background work. Independent tags for independent files may be used in
// parallel.
type Tag struct {
	entries []meta.Entry
	ftyp    *atomio.FileType
}

// NewTag returns an empty tag without filetype context. Writing it to a
// file takes the context from the target.
func NewTag() *Tag {
	return &Tag{}
}

// Filetype returns the major brand string of the ftyp atom, or "" if none
// was read.
func (t *Tag) Filetype() string {
	if t.ftyp == nil {
		return ""
	}
	return atomio.Tag(t.ftyp.MajorBrand).String()
}

// FiletypeRecognized reports whether the file declared a major brand this
// library knows how to write.
func (t *Tag) FiletypeRecognized() bool {
	return t.ftyp != nil && t.ftyp.Recognized()
}

// Entries returns a copy of the items in read order.
func (t *Tag) Entries() []meta.Entry {
	entries := make([]meta.Entry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

// Idents returns the identifiers in read order.
func (t *Tag) Idents() []meta.Ident {
	idents := make([]meta.Ident, len(t.entries))
	for i, e := range t.entries {
		idents[i] = e.Ident
	}
	return idents
}

func (t *Tag) entry(ident meta.Ident) *meta.Entry {
	for i := range t.entries {
		if t.entries[i].Ident == ident {
			return &t.entries[i]
		}
	}
	return nil
}

// Data returns all values of the ident, in order. The slice is shared with
// the tag and must not be mutated.
func (t *Tag) Data(ident meta.Ident) []meta.Data {
	if e := t.entry(ident); e != nil {
		return e.Data
	}
	return nil
}

// Strings returns the string values of the ident; values of other types
// are skipped.
func (t *Tag) Strings(ident meta.Ident) (strs []string) {
	for _, d := range t.Data(ident) {
		if s, ok := d.Str(); ok {
			strs = append(strs, s)
		}
	}
	return
}

// Ints returns the integer values of the ident; values of other types are
// skipped.
func (t *Tag) Ints(ident meta.Ident) (ints []int64) {
	for _, d := range t.Data(ident) {
		if i, ok := d.Int(); ok {
			ints = append(ints, i)
		}
	}
	return
}

// Images returns the image values of the ident; values of other types are
// skipped.
func (t *Tag) Images(ident meta.Ident) (imgs []meta.Data) {
	for _, d := range t.Data(ident) {
		if _, ok := d.Image(); ok {
			imgs = append(imgs, d)
		}
	}
	return
}

// SetData replaces all values of the ident with the given ones. With no
// values it removes the item. New identifiers append after existing ones.
func (t *Tag) SetData(ident meta.Ident, data ...meta.Data) {
	if len(data) == 0 {
		t.RemoveData(ident)
		return
	}
	if e := t.entry(ident); e != nil {
		e.Data = data
		return
	}
	t.entries = append(t.entries, meta.Entry{Ident: ident, Data: data})
}

// AddData appends values to the item, creating it if absent.
func (t *Tag) AddData(ident meta.Ident, data ...meta.Data) {
	if len(data) == 0 {
		return
	}
	if e := t.entry(ident); e != nil {
		e.Data = append(e.Data, data...)
		return
	}
	t.entries = append(t.entries, meta.Entry{Ident: ident, Data: data})
}

// RemoveData deletes the item entirely.
func (t *Tag) RemoveData(ident meta.Ident) {
	for i := range t.entries {
		if t.entries[i].Ident == ident {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return
		}
	}
}

// Retain keeps only values for which the predicate holds. Items left with
// no values are removed.
func (t *Tag) Retain(pred func(ident meta.Ident, data meta.Data) bool) {
	kept := t.entries[:0]
	for _, e := range t.entries {
		data := e.Data[:0]
		for _, d := range e.Data {
			if pred(e.Ident, d) {
				data = append(data, d)
			}
		}
		if len(data) > 0 {
			e.Data = data
			kept = append(kept, e)
		}
	}
	t.entries = kept
}

// String lists the items and their values, one per line.
func (t *Tag) String() string {
	var sb strings.Builder
	for _, e := range t.entries {
		name := e.Ident.String()
		if info, ok := meta.Info(e.Ident); ok {
			name = info.Name
		}
		for _, d := range e.Data {
			if s, ok := d.Str(); ok {
				fmt.Fprintf(&sb, "%s: %s\n", name, s)
			} else if i, ok := d.Int(); ok {
				fmt.Fprintf(&sb, "%s: %d\n", name, i)
			} else if img, ok := d.Image(); ok {
				fmt.Fprintf(&sb, "%s: <%d byte image>\n", name, len(img))
			} else {
				fmt.Fprintf(&sb, "%s: <%d bytes>\n", name, len(d.Bytes()))
			}
		}
	}
	return sb.String()
}
