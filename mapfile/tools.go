package mapfile

import (
	"fmt"

	mitab "github.com/tingold/orb-mitab"
)

// maxTools is the number of entries a tool table can index with one byte.
const maxTools = 255

type toolEntry[T any] struct {
	def  T
	refs int
}

// toolTable is one of the file's shared, reference counted definition
// tables. Indices are 1-based; 0 means "no tool".
type toolTable[T any] struct {
	name    string
	entries []toolEntry[T]
	equal   func(a, b T) bool
	dflt    func() T
}

func newToolTable[T any](name string, equal func(a, b T) bool, dflt func() T) *toolTable[T] {
	return &toolTable[T]{name: name, equal: equal, dflt: dflt}
}

// add returns the index of def, appending it when no equal entry exists.
func (t *toolTable[T]) add(def T) (int, error) {
	for i := range t.entries {
		if t.equal(t.entries[i].def, def) {
			t.entries[i].refs++
			return i + 1, nil
		}
	}
	if len(t.entries) >= maxTools {
		return 0, fmt.Errorf("%w: %s table is full", ErrBadIndex, t.name)
	}
	t.entries = append(t.entries, toolEntry[T]{def: def, refs: 1})
	return len(t.entries), nil
}

// get returns the entry at index, or the default definition with a zero
// reference count when the index is 0 or unknown.
func (t *toolTable[T]) get(index int) (T, int) {
	if index < 1 || index > len(t.entries) {
		return t.dflt(), 0
	}
	e := t.entries[index-1]
	return e.def, e.refs
}

func (t *toolTable[T]) len() int { return len(t.entries) }

// RefCount returns the number of references to entry index of the named
// table ("pen", "brush", "font" or "symbol"), 0 for an unknown entry.
func (f *File) RefCount(table string, index int) int {
	switch table {
	case "pen":
		_, n := f.pens.get(index)
		return n
	case "brush":
		_, n := f.brushes.get(index)
		return n
	case "font":
		_, n := f.fonts.get(index)
		return n
	case "symbol":
		_, n := f.symbols.get(index)
		return n
	}
	return 0
}

func (f *File) ReadPenDef(index int, def *mitab.PenDef) error {
	d, refs := f.pens.get(index)
	d.RefCount = refs
	*def = d
	return nil
}

// WritePenDef adds def to the pen table. A pen with pattern 0 is "no pen"
// and is not stored.
func (f *File) WritePenDef(def *mitab.PenDef) (int, error) {
	if def.Pattern == 0 {
		return 0, nil
	}
	i, err := f.pens.add(*def)
	if err != nil {
		return 0, err
	}
	_, def.RefCount = f.pens.get(i)
	return i, nil
}

func (f *File) ReadBrushDef(index int, def *mitab.BrushDef) error {
	d, refs := f.brushes.get(index)
	d.RefCount = refs
	*def = d
	return nil
}

// WriteBrushDef adds def to the brush table. A brush with fill pattern 0 is
// "no brush" and is not stored.
func (f *File) WriteBrushDef(def *mitab.BrushDef) (int, error) {
	if def.FillPattern == 0 {
		return 0, nil
	}
	i, err := f.brushes.add(*def)
	if err != nil {
		return 0, err
	}
	_, def.RefCount = f.brushes.get(i)
	return i, nil
}

func (f *File) ReadFontDef(index int, def *mitab.FontDef) error {
	d, refs := f.fonts.get(index)
	d.RefCount = refs
	*def = d
	return nil
}

func (f *File) WriteFontDef(def *mitab.FontDef) (int, error) {
	i, err := f.fonts.add(*def)
	if err != nil {
		return 0, err
	}
	_, def.RefCount = f.fonts.get(i)
	return i, nil
}

func (f *File) ReadSymbolDef(index int, def *mitab.SymbolDef) error {
	d, refs := f.symbols.get(index)
	d.RefCount = refs
	*def = d
	return nil
}

func (f *File) WriteSymbolDef(def *mitab.SymbolDef) (int, error) {
	i, err := f.symbols.add(*def)
	if err != nil {
		return 0, err
	}
	_, def.RefCount = f.symbols.get(i)
	return i, nil
}
