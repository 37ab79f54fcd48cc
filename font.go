package mitab

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxFontNameLen is the size of the font name field in the font table.
const MaxFontNameLen = 32

// FontDef is a font definition as stored in the map file's tool table.
type FontDef struct {
	RefCount int
	Name     string
}

// DefaultFontDef returns the Arial font.
func DefaultFontDef() FontDef {
	return FontDef{Name: "Arial"}
}

// Equal reports whether d and o name the same font, ignoring RefCount.
func (d FontDef) Equal(o FontDef) bool {
	return d.Name == o.Name
}

// FeatureFont is the font attached to a text or symbol feature. For custom
// symbols the name is the bitmap file name.
type FeatureFont struct {
	Index int
	Def   FontDef
}

func newFeatureFont() FeatureFont {
	return FeatureFont{Index: -1, Def: DefaultFontDef()}
}

func (f *FeatureFont) FontName() string { return f.Def.Name }

// SetFontName sets the font name, truncated to MaxFontNameLen bytes on a
// rune boundary.
func (f *FeatureFont) SetFontName(name string) {
	for len(name) > MaxFontNameLen {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	f.Def.Name = name
}

func (f *FeatureFont) applyFontTool(t *styleTool) {
	if name, ok := t.params["f"]; ok && name != "" {
		f.SetFontName(name)
	}
}

// DumpFontDef writes the font definition as labeled lines.
func (f *FeatureFont) DumpFontDef(w io.Writer) {
	fmt.Fprintf(w, "  FontDefIndex       = %d\n", f.Index)
	fmt.Fprintf(w, "  FontDef.RefCount   = %d\n", f.Def.RefCount)
	fmt.Fprintf(w, "  FontDef.FontName   = '%s'\n", f.Def.Name)
}

func (f *FeatureFont) readFont(s Storage, index int) error {
	f.Index = index
	if err := s.ReadFontDef(index, &f.Def); err != nil {
		return fmt.Errorf("mitab: read font %d: %w", index, err)
	}
	return nil
}

func (f *FeatureFont) writeFont(s Storage) (byte, error) {
	idx, err := s.WriteFontDef(&f.Def)
	if err != nil {
		return 0, fmt.Errorf("mitab: write font: %w", err)
	}
	f.Index = idx
	return byte(idx), nil
}
