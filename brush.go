package mitab

import (
	"fmt"
	"io"
)

// BrushDef is a brush (area fill) definition as stored in the map file's
// tool table.
type BrushDef struct {
	RefCount    int
	FillPattern uint8
	Transparent bool
	FGColor     uint32
	BGColor     uint32
}

// DefaultBrushDef returns MapInfo's default brush: no fill, black on white.
func DefaultBrushDef() BrushDef {
	return BrushDef{FillPattern: 1, BGColor: 0xffffff}
}

// Equal reports whether d and o describe the same brush, ignoring RefCount.
func (d BrushDef) Equal(o BrushDef) bool {
	d.RefCount, o.RefCount = 0, 0
	return d == o
}

// FeatureBrush is the brush attached to an area feature.
type FeatureBrush struct {
	Index int
	Def   BrushDef
}

func newFeatureBrush() FeatureBrush {
	return FeatureBrush{Index: -1, Def: DefaultBrushDef()}
}

func (b *FeatureBrush) BrushPattern() uint8 { return b.Def.FillPattern }
func (b *FeatureBrush) SetBrushPattern(v uint8) { b.Def.FillPattern = v }
func (b *FeatureBrush) BrushFGColor() uint32 { return b.Def.FGColor }
func (b *FeatureBrush) SetBrushFGColor(c uint32) { b.Def.FGColor = c & 0xffffff }
func (b *FeatureBrush) BrushBGColor() uint32 { return b.Def.BGColor }
func (b *FeatureBrush) SetBrushBGColor(c uint32) { b.Def.BGColor = c & 0xffffff }
func (b *FeatureBrush) BrushTransparent() bool { return b.Def.Transparent }
func (b *FeatureBrush) SetBrushTransparent(v bool) { b.Def.Transparent = v }

// brushOGR maps MapInfo fill patterns to OGR brush ids. Unlisted patterns
// render as solid.
var brushOGR = map[uint8]int{
	1: 1, // none
	2: 0, // solid
	3: 2, // horizontal
	4: 3, // vertical
	5: 5, // backward diagonal
	6: 4, // forward diagonal
	7: 6, // cross
	8: 7, // diagonal cross
}

// BrushStyleString renders the brush as an OGR feature style BRUSH tool.
func (b *FeatureBrush) BrushStyleString() string {
	ogr, ok := brushOGR[b.Def.FillPattern]
	if !ok {
		ogr = 0
	}
	if b.Def.Transparent {
		return fmt.Sprintf("BRUSH(fc:#%06x,id:\"mapinfo-brush-%d,ogr-brush-%d\")",
			b.Def.FGColor, b.Def.FillPattern, ogr)
	}
	return fmt.Sprintf("BRUSH(fc:#%06x,bc:#%06x,id:\"mapinfo-brush-%d,ogr-brush-%d\")",
		b.Def.FGColor, b.Def.BGColor, b.Def.FillPattern, ogr)
}

// SetBrushFromStyleString updates the brush from the first BRUSH tool of
// an OGR feature style string. A tool without a background color makes the
// brush transparent.
func (b *FeatureBrush) SetBrushFromStyleString(style string) error {
	tools, err := parseStyle(style)
	if err != nil {
		return err
	}
	t := findTool(tools, "BRUSH")
	if t == nil {
		return nil
	}
	b.applyBrushTool(t)
	return nil
}

func (b *FeatureBrush) applyBrushTool(t *styleTool) {
	if c, ok := t.color("fc"); ok {
		b.SetBrushFGColor(c)
	}
	if c, ok := t.color("bc"); ok {
		b.SetBrushBGColor(c)
		b.Def.Transparent = false
	} else {
		b.Def.Transparent = true
	}

	if n, ok := t.mapinfoID("mapinfo-brush-"); ok {
		b.Def.FillPattern = uint8(n)
		return
	}
	if n, ok := t.mapinfoID("ogr-brush-"); ok {
		b.Def.FillPattern = 2
		for pat, id := range brushOGR {
			if id == n {
				b.Def.FillPattern = pat
				break
			}
		}
	}
}

// DumpBrushDef writes the brush definition as labeled lines.
func (b *FeatureBrush) DumpBrushDef(w io.Writer) {
	fmt.Fprintf(w, "  BrushDefIndex          = %d\n", b.Index)
	fmt.Fprintf(w, "  BrushDef.RefCount      = %d\n", b.Def.RefCount)
	fmt.Fprintf(w, "  BrushDef.FillPattern   = %d\n", b.Def.FillPattern)
	fmt.Fprintf(w, "  BrushDef.Transparent   = %t\n", b.Def.Transparent)
	fmt.Fprintf(w, "  BrushDef.FGColor       = 0x%06x (%d)\n", b.Def.FGColor, b.Def.FGColor)
	fmt.Fprintf(w, "  BrushDef.BGColor       = 0x%06x (%d)\n", b.Def.BGColor, b.Def.BGColor)
}

func (b *FeatureBrush) readBrush(s Storage, index int) error {
	b.Index = index
	if err := s.ReadBrushDef(index, &b.Def); err != nil {
		return fmt.Errorf("mitab: read brush %d: %w", index, err)
	}
	return nil
}

func (b *FeatureBrush) writeBrush(s Storage) (byte, error) {
	idx, err := s.WriteBrushDef(&b.Def)
	if err != nil {
		return 0, fmt.Errorf("mitab: write brush: %w", err)
	}
	b.Index = idx
	return byte(idx), nil
}
