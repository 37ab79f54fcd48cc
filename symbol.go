package mitab

import (
	"fmt"
	"io"
	"math"
)

// SymbolDef is a symbol definition as stored in the map file's tool table.
type SymbolDef struct {
	RefCount  int
	SymbolNo  int16
	PointSize int16
	Unknown   uint8
	Color     uint32
}

// DefaultSymbolDef returns MapInfo's default symbol: a 12pt black star.
func DefaultSymbolDef() SymbolDef {
	return SymbolDef{SymbolNo: 35, PointSize: 12}
}

// Equal reports whether d and o describe the same symbol, ignoring RefCount.
func (d SymbolDef) Equal(o SymbolDef) bool {
	d.RefCount, o.RefCount = 0, 0
	return d == o
}

// FeatureSymbol is the symbol attached to a point feature.
type FeatureSymbol struct {
	Index int
	Def   SymbolDef
}

func newFeatureSymbol() FeatureSymbol {
	return FeatureSymbol{Index: -1, Def: DefaultSymbolDef()}
}

func (y *FeatureSymbol) SymbolNo() int16 { return y.Def.SymbolNo }
func (y *FeatureSymbol) SetSymbolNo(n int16) { y.Def.SymbolNo = n }
func (y *FeatureSymbol) SymbolSize() int16 { return y.Def.PointSize }
func (y *FeatureSymbol) SetSymbolColor(c uint32) { y.Def.Color = c & 0xffffff }
func (y *FeatureSymbol) SymbolColor() uint32 { return y.Def.Color }

// SetSymbolSize sets the point size, clamped to 1-48.
func (y *FeatureSymbol) SetSymbolSize(n int16) {
	y.Def.PointSize = min(max(n, 1), 48)
}

type symbolShape struct {
	ogr   int
	angle int
}

// symbolShapes maps MapInfo 3.0 symbols (31-67) to OGR symbol ids. OGR has
// fewer shapes, so rotated variants carry an angle.
var symbolShapes = map[int16]symbolShape{
	31: {0, 0},  // blank
	32: {5, 0},  // filled square
	33: {5, 45}, // filled diamond
	34: {3, 0},  // filled circle
	35: {9, 0},  // filled star
	36: {7, 0},  // filled triangle
	37: {7, 180},
	38: {4, 0}, // square
	39: {4, 45},
	40: {2, 0}, // circle
	41: {8, 0}, // star
	42: {6, 0}, // triangle
	43: {6, 180},
	44: {5, 0},
	45: {7, 0},
	46: {3, 0},
	49: {0, 0}, // cross
	50: {1, 0}, // x
}

// SymbolStyleString renders the symbol as an OGR feature style SYMBOL tool
// rotated by angle degrees.
func (y *FeatureSymbol) SymbolStyleString(angle float64) string {
	shape, ok := symbolShapes[y.Def.SymbolNo]
	if !ok {
		shape = symbolShape{}
	}
	a := int(math.Round(angle)) + shape.angle
	return fmt.Sprintf("SYMBOL(a:%d,c:#%06x,s:%dpt,id:\"mapinfo-sym-%d,ogr-sym-%d\")",
		a, y.Def.Color, y.Def.PointSize, y.Def.SymbolNo, shape.ogr)
}

// SetSymbolFromStyleString updates the symbol from the first SYMBOL tool of
// an OGR feature style string.
func (y *FeatureSymbol) SetSymbolFromStyleString(style string) error {
	tools, err := parseStyle(style)
	if err != nil {
		return err
	}
	if t := findTool(tools, "SYMBOL"); t != nil {
		y.applySymbolTool(t)
	}
	return nil
}

func (y *FeatureSymbol) applySymbolTool(t *styleTool) {
	if c, ok := t.color("c"); ok {
		y.SetSymbolColor(c)
	}
	if v, unit, ok := t.length("s"); ok {
		y.SetSymbolSize(int16(math.Round(pointSize(v, unit))))
	}

	for _, prefix := range []string{"mapinfo-sym-", "font-sym-"} {
		if n, ok := t.mapinfoID(prefix); ok {
			y.Def.SymbolNo = int16(n)
			return
		}
	}
	if n, ok := t.mapinfoID("ogr-sym-"); ok {
		angle, _ := t.number("a")
		y.Def.SymbolNo = symbolFromOGR(n, int(math.Round(angle)))
	}
}

// symbolFromOGR picks the MapInfo symbol closest to an OGR symbol id,
// preferring the variant whose built-in rotation matches angle.
func symbolFromOGR(id, angle int) int16 {
	best := int16(-1)
	for no := int16(31); no <= 50; no++ {
		s, ok := symbolShapes[no]
		if !ok || s.ogr != id {
			continue
		}
		if s.angle != 0 && s.angle == angle%360 {
			return no
		}
		if best < 0 && s.angle == 0 {
			best = no
		}
	}
	if best < 0 {
		return DefaultSymbolDef().SymbolNo
	}
	return best
}

// DumpSymbolDef writes the symbol definition as labeled lines.
func (y *FeatureSymbol) DumpSymbolDef(w io.Writer) {
	fmt.Fprintf(w, "  SymbolDefIndex       = %d\n", y.Index)
	fmt.Fprintf(w, "  SymbolDef.RefCount   = %d\n", y.Def.RefCount)
	fmt.Fprintf(w, "  SymbolDef.SymbolNo   = %d\n", y.Def.SymbolNo)
	fmt.Fprintf(w, "  SymbolDef.PointSize  = %d\n", y.Def.PointSize)
	fmt.Fprintf(w, "  SymbolDef._unknown_  = %d\n", y.Def.Unknown)
	fmt.Fprintf(w, "  SymbolDef.Color      = 0x%06x (%d)\n", y.Def.Color, y.Def.Color)
}

func (y *FeatureSymbol) readSymbol(s Storage, index int) error {
	y.Index = index
	if err := s.ReadSymbolDef(index, &y.Def); err != nil {
		return fmt.Errorf("mitab: read symbol %d: %w", index, err)
	}
	return nil
}

func (y *FeatureSymbol) writeSymbol(s Storage) (byte, error) {
	idx, err := s.WriteSymbolDef(&y.Def)
	if err != nil {
		return 0, fmt.Errorf("mitab: write symbol %d: %w", y.Def.SymbolNo, err)
	}
	y.Index = idx
	return byte(idx), nil
}
