package mitab

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// PenDef is a pen (line style) definition as stored in the map file's
// tool table. Exactly one of PixelWidth and PointWidth is non-zero.
type PenDef struct {
	RefCount   int
	PixelWidth uint8 // 1-7
	PointWidth int   // tenths of a point, 1-2037
	Pattern    uint8
	Style      uint8
	Color      uint32
}

// DefaultPenDef returns MapInfo's default pen: 1 pixel, solid, black.
func DefaultPenDef() PenDef {
	return PenDef{PixelWidth: 1, Pattern: 2}
}

// Equal reports whether d and o describe the same pen, ignoring RefCount.
func (d PenDef) Equal(o PenDef) bool {
	d.RefCount, o.RefCount = 0, 0
	return d == o
}

// FeaturePen is the pen attached to a line or area feature. Index is the
// pen's position in the file's pen table, -1 until it has been read or
// written.
type FeaturePen struct {
	Index int
	Def   PenDef
}

func newFeaturePen() FeaturePen {
	return FeaturePen{Index: -1, Def: DefaultPenDef()}
}

// PenWidthPixel returns the pen width in pixels, 0 when the width is set
// in points.
func (p *FeaturePen) PenWidthPixel() int { return int(p.Def.PixelWidth) }

// SetPenWidthPixel sets the pen width in pixels, clamped to 1-7, and clears
// the point width.
func (p *FeaturePen) SetPenWidthPixel(w int) {
	p.Def.PixelWidth = uint8(min(max(w, 1), 7))
	p.Def.PointWidth = 0
}

// PenWidthPoint returns the pen width in points, 0 when the width is set
// in pixels.
func (p *FeaturePen) PenWidthPoint() float64 { return float64(p.Def.PointWidth) * 0.1 }

// SetPenWidthPoint sets the pen width in points, clamped to 0.1-203.7, and
// clears the pixel width.
func (p *FeaturePen) SetPenWidthPoint(w float64) {
	p.Def.PointWidth = min(max(int(math.Round(w*10)), 1), 2037)
	p.Def.PixelWidth = 0
}

// PenWidthMIF returns the width in MIF encoding: 1-7 for pixels, 11-2047
// for tenths of a point plus 10.
func (p *FeaturePen) PenWidthMIF() int {
	if p.Def.PointWidth > 0 {
		return p.Def.PointWidth + 10
	}
	return int(p.Def.PixelWidth)
}

// SetPenWidthMIF sets the width from its MIF encoding.
func (p *FeaturePen) SetPenWidthMIF(w int) {
	if w > 10 {
		p.Def.PointWidth = min(w-10, 2037)
		p.Def.PixelWidth = 0
		return
	}
	p.SetPenWidthPixel(w)
}

func (p *FeaturePen) PenPattern() uint8 { return p.Def.Pattern }
func (p *FeaturePen) SetPenPattern(v uint8) { p.Def.Pattern = v }
func (p *FeaturePen) PenColor() uint32 { return p.Def.Color }
func (p *FeaturePen) SetPenColor(color uint32) { p.Def.Color = color & 0xffffff }

type penPattern struct {
	ogr  int
	dash string
}

// penPatterns maps MapInfo line patterns to OGR pen ids and dash arrays.
// Patterns 26-31 are drawn with decorations OGR cannot express.
var penPatterns = map[uint8]penPattern{
	1:  {1, ""},
	2:  {0, ""},
	3:  {3, "1 1"},
	4:  {3, "2 1"},
	5:  {3, "3 1"},
	6:  {3, "6 1"},
	7:  {4, "12 2"},
	8:  {4, "24 4"},
	9:  {3, "4 3"},
	10: {5, "1 4"},
	11: {3, "4 6"},
	12: {3, "6 4"},
	13: {4, "12 12"},
	14: {6, "8 2 1 2"},
	15: {6, "12 1 1 1"},
	16: {6, "12 1 3 1"},
	17: {6, "24 6 4 6"},
	18: {7, "24 3 3 3 3 3"},
	19: {7, "24 3 3 3 3 3 3 3"},
	20: {7, "6 3 1 3 1 3"},
	21: {7, "12 2 1 2 1 2"},
	22: {7, "12 2 1 2 1 2 1 2"},
	23: {6, "4 1 1 1"},
	24: {7, "4 1 1 1 1 1"},
	25: {6, "4 1 1 1 2 1 1 1"},
	26: {10, ""},
	27: {10, ""},
	28: {10, ""},
	29: {10, ""},
	30: {10, ""},
	31: {10, ""},
}

// PenStyleString renders the pen as an OGR feature style PEN tool.
func (p *FeaturePen) PenStyleString() string {
	pat, ok := penPatterns[p.Def.Pattern]
	if !ok {
		pat = penPattern{ogr: 0}
	}

	var width string
	if p.Def.PointWidth > 0 {
		width = strconv.FormatFloat(p.PenWidthPoint(), 'g', -1, 64) + "pt"
	} else {
		width = strconv.Itoa(int(p.Def.PixelWidth)) + "px"
	}

	s := fmt.Sprintf("PEN(w:%s,c:#%06x,id:\"mapinfo-pen-%d,ogr-pen-%d\"",
		width, p.Def.Color, p.Def.Pattern, pat.ogr)
	if pat.dash != "" {
		s += fmt.Sprintf(",p:\"%spx\"", pat.dash)
	}
	return s + ")"
}

// SetPenFromStyleString updates the pen from the first PEN tool of an OGR
// feature style string. Parameters the tool does not carry are left
// untouched.
func (p *FeaturePen) SetPenFromStyleString(style string) error {
	tools, err := parseStyle(style)
	if err != nil {
		return err
	}
	t := findTool(tools, "PEN")
	if t == nil {
		return nil
	}
	p.applyPenTool(t)
	return nil
}

func (p *FeaturePen) applyPenTool(t *styleTool) {
	if c, ok := t.color("c"); ok {
		p.SetPenColor(c)
	}
	if v, unit, ok := t.length("w"); ok {
		switch unit {
		case "pt":
			p.SetPenWidthPoint(v)
		case "mm":
			p.SetPenWidthPoint(v * 72 / 25.4)
		case "px", "":
			p.SetPenWidthPixel(int(math.Round(v)))
		}
	}

	if n, ok := t.mapinfoID("mapinfo-pen-"); ok {
		p.Def.Pattern = uint8(n)
		return
	}
	if dash, ok := t.params["p"]; ok {
		dash = strings.TrimSuffix(strings.TrimSpace(dash), "px")
		for no := uint8(3); no <= 25; no++ {
			if penPatterns[no].dash == dash {
				p.Def.Pattern = no
				return
			}
		}
	}
	if n, ok := t.mapinfoID("ogr-pen-"); ok {
		switch n {
		case 1:
			p.Def.Pattern = 1
		case 0:
			p.Def.Pattern = 2
		default:
			for no := uint8(3); no <= 25; no++ {
				if penPatterns[no].ogr == n {
					p.Def.Pattern = no
					return
				}
			}
			p.Def.Pattern = 2
		}
	}
}

// DumpPenDef writes the pen definition as labeled lines.
func (p *FeaturePen) DumpPenDef(w io.Writer) {
	fmt.Fprintf(w, "  PenDefIndex       = %d\n", p.Index)
	fmt.Fprintf(w, "  PenDef.RefCount   = %d\n", p.Def.RefCount)
	fmt.Fprintf(w, "  PenDef.PixelWidth = %d\n", p.Def.PixelWidth)
	fmt.Fprintf(w, "  PenDef.PointWidth = %d\n", p.Def.PointWidth)
	fmt.Fprintf(w, "  PenDef.Pattern    = %d\n", p.Def.Pattern)
	fmt.Fprintf(w, "  PenDef.Style      = %d\n", p.Def.Style)
	fmt.Fprintf(w, "  PenDef.Color      = 0x%06x (%d)\n", p.Def.Color, p.Def.Color)
}

func (p *FeaturePen) readPen(s Storage, index int) error {
	p.Index = index
	if err := s.ReadPenDef(index, &p.Def); err != nil {
		return fmt.Errorf("mitab: read pen %d: %w", index, err)
	}
	return nil
}

func (p *FeaturePen) writePen(s Storage) (byte, error) {
	idx, err := s.WritePenDef(&p.Def)
	if err != nil {
		return 0, fmt.Errorf("mitab: write pen: %w", err)
	}
	p.Index = idx
	return byte(idx), nil
}
