package mitab

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Point is a point drawn with a symbol from the symbol table.
type Point struct {
	Envelope
	FeatureSymbol
}

// NewPoint returns a point feature at p with the default symbol.
func NewPoint(p orb.Point) *Point {
	return &Point{Envelope: newEnvelope(GeomSymbol, p), FeatureSymbol: newFeatureSymbol()}
}

func newPoint(t GeomType) *Point {
	return &Point{Envelope: newEnvelope(t, nil), FeatureSymbol: newFeatureSymbol()}
}

// validatePoint checks the geometry is a point and selects the compressed or
// uncompressed variant of base.
func (p *Point) validatePoint(s Storage, base GeomType, kind string) GeomType {
	pt, ok := p.geometry.(orb.Point)
	if !ok {
		return p.rejectGeometry(kind)
	}
	p.SetBound(pt, pt)
	p.typ = base
	p.validateCoordType(s)
	return p.typ
}

func (p *Point) ValidateType(s Storage) GeomType {
	return p.validatePoint(s, GeomSymbol, "point")
}

// fixedPoint returns the point geometry in integer space.
func (p *Point) fixedPoint(s Storage) (int32, int32, error) {
	pt, ok := p.geometry.(orb.Point)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s is not a point", ErrInvalidGeometry, geometryName(p.geometry))
	}
	x, y := s.ToFixed(pt[0], pt[1])
	return x, y, nil
}

func (p *Point) setPoint(s Storage, x, y int32) {
	pt := toWorld(s, x, y)
	p.geometry = pt
	p.SetBound(pt, pt)
}

func (p *Point) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomSymbol); err != nil {
		return cur, err
	}
	h, ok := hdr.(*PointHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for point", ErrUnexpectedType, hdr)
	}
	p.setFromRead(hdr)
	if !coordOnly {
		if err := p.readSymbol(s, int(h.SymbolID)); err != nil {
			return cur, err
		}
	}
	p.setPoint(s, h.X, h.Y)
	return cur, nil
}

func (p *Point) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := p.checkWrite(hdr); err != nil {
		return cur, err
	}
	h, ok := hdr.(*PointHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for point", ErrTypeMismatch, hdr)
	}
	x, y, err := p.fixedPoint(s)
	if err != nil {
		return cur, err
	}
	h.X, h.Y = x, y
	h.Bound = IntBound{x, y, x, y}

	h.SymbolID = indexByte(p.FeatureSymbol.Index)
	if !coordOnly {
		if h.SymbolID, err = p.writeSymbol(s); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (p *Point) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	pt, _ := p.geometry.(orb.Point)
	d.printf("POINT %.15g %.15g\n", pt[0], pt[1])
	p.DumpSymbolDef(d)
	return d.err
}

func (p *Point) StyleString() string {
	return p.memoStyle(func() string { return p.SymbolStyleString(0) })
}

func (p *Point) SetStyleString(style string) error {
	p.ResetStyleString()
	return p.SetSymbolFromStyleString(style)
}

// FontPoint is a point drawn with a character of a TrueType symbol font.
// Its symbol fields are stored inline in the object, not in the symbol
// table.
type FontPoint struct {
	Point
	FeatureFont

	angle     float64
	fontStyle int
}

// NewFontPoint returns a font symbol at p.
func NewFontPoint(p orb.Point) *FontPoint {
	f := &FontPoint{Point: *NewPoint(p), FeatureFont: newFeatureFont()}
	f.typ = GeomFontSymbol
	return f
}

func newFontPoint(t GeomType) *FontPoint {
	return &FontPoint{Point: *newPoint(t), FeatureFont: newFeatureFont()}
}

// Angle returns the symbol rotation in degrees, in [0, 360].
func (f *FontPoint) Angle() float64 { return f.angle }

// SetAngle sets the symbol rotation in degrees.
func (f *FontPoint) SetAngle(a float64) { f.angle = normalizeAngle(a) }

func (f *FontPoint) FontStyle() int { return f.fontStyle }
func (f *FontPoint) SetFontStyle(s int) { f.fontStyle = s }

// QueryFontStyle reports whether the style flag is set.
func (f *FontPoint) QueryFontStyle(flag int) bool { return f.fontStyle&flag != 0 }

// ToggleFontStyle turns a style flag on or off.
func (f *FontPoint) ToggleFontStyle(flag int, on bool) {
	if on {
		f.fontStyle |= flag
	} else {
		f.fontStyle &^= flag
	}
}

func (f *FontPoint) FontStyleMIF() int { return FontStyleMIF(f.fontStyle) }
func (f *FontPoint) SetFontStyleMIF(v int) { f.fontStyle = FontStyleFromMIF(v) }

func (f *FontPoint) ValidateType(s Storage) GeomType {
	return f.validatePoint(s, GeomFontSymbol, "font point")
}

func (f *FontPoint) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomFontSymbol); err != nil {
		return cur, err
	}
	h, ok := hdr.(*FontPointHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for font point", ErrUnexpectedType, hdr)
	}
	f.setFromRead(hdr)

	f.FeatureSymbol.Index = -1
	f.FeatureSymbol.Def = SymbolDef{
		SymbolNo:  int16(h.SymbolNo),
		PointSize: int16(h.PointSize),
		Color:     h.Color,
	}
	f.fontStyle = int(uint16(h.FontStyle))
	f.angle = float64(h.Angle) / 10

	if !coordOnly {
		if err := f.readFont(s, int(h.FontID)); err != nil {
			return cur, err
		}
	}
	f.setPoint(s, h.X, h.Y)
	return cur, nil
}

func (f *FontPoint) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := f.checkWrite(hdr); err != nil {
		return cur, err
	}
	h, ok := hdr.(*FontPointHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for font point", ErrTypeMismatch, hdr)
	}
	x, y, err := f.fixedPoint(s)
	if err != nil {
		return cur, err
	}
	h.X, h.Y = x, y
	h.Bound = IntBound{x, y, x, y}
	h.SymbolNo = byte(f.FeatureSymbol.Def.SymbolNo)
	h.PointSize = byte(f.FeatureSymbol.Def.PointSize)
	h.FontStyle = int16(f.fontStyle)
	h.Color = f.FeatureSymbol.Def.Color
	h.Angle = int16(math.Round(f.angle * 10))

	h.FontID = indexByte(f.FeatureFont.Index)
	if !coordOnly {
		if h.FontID, err = f.writeFont(s); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (f *FontPoint) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	pt, _ := f.geometry.(orb.Point)
	d.printf("POINT %.15g %.15g\n", pt[0], pt[1])
	d.printf("  Angle         = %g\n", f.angle)
	d.printf("  FontStyle     = 0x%04x\n", f.fontStyle)
	f.DumpSymbolDef(d)
	f.DumpFontDef(d)
	return d.err
}

func (f *FontPoint) StyleString() string {
	return f.memoStyle(func() string {
		return fmt.Sprintf("SYMBOL(a:%d,c:#%06x,s:%dpt,id:\"font-sym-%d,ogr-sym-9\",f:\"%s\")",
			int(math.Round(f.angle)), f.FeatureSymbol.Def.Color, f.FeatureSymbol.Def.PointSize,
			f.FeatureSymbol.Def.SymbolNo, f.FeatureFont.Def.Name)
	})
}

func (f *FontPoint) SetStyleString(style string) error {
	f.ResetStyleString()
	tools, err := parseStyle(style)
	if err != nil {
		return err
	}
	t := findTool(tools, "SYMBOL")
	if t == nil {
		return nil
	}
	f.applySymbolTool(t)
	f.applyFontTool(t)
	if a, ok := t.number("a"); ok {
		f.SetAngle(a)
	}
	return nil
}

// Custom point style flags.
const (
	CustomShowBackground = 0x01
	CustomApplyColor     = 0x02
)

// CustomPoint is a point drawn with a bitmap. The bitmap file name is held
// in the font table.
type CustomPoint struct {
	Point
	FeatureFont

	CustomStyle byte
	Unknown     byte
}

// NewCustomPoint returns a bitmap symbol at p.
func NewCustomPoint(p orb.Point, bitmap string) *CustomPoint {
	c := &CustomPoint{Point: *NewPoint(p), FeatureFont: newFeatureFont()}
	c.typ = GeomCustomSymbol
	c.SetFontName(bitmap)
	return c
}

func newCustomPoint(t GeomType) *CustomPoint {
	return &CustomPoint{Point: *newPoint(t), FeatureFont: newFeatureFont()}
}

// SymbolName returns the bitmap file name.
func (c *CustomPoint) SymbolName() string { return c.FontName() }

func (c *CustomPoint) ValidateType(s Storage) GeomType {
	return c.validatePoint(s, GeomCustomSymbol, "custom point")
}

func (c *CustomPoint) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomCustomSymbol); err != nil {
		return cur, err
	}
	h, ok := hdr.(*CustomPointHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for custom point", ErrUnexpectedType, hdr)
	}
	c.setFromRead(hdr)
	c.Unknown = h.Unknown
	c.CustomStyle = h.CustomStyle
	if !coordOnly {
		if err := c.readSymbol(s, int(h.SymbolID)); err != nil {
			return cur, err
		}
		if err := c.readFont(s, int(h.FontID)); err != nil {
			return cur, err
		}
	}
	c.setPoint(s, h.X, h.Y)
	return cur, nil
}

func (c *CustomPoint) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := c.checkWrite(hdr); err != nil {
		return cur, err
	}
	h, ok := hdr.(*CustomPointHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for custom point", ErrTypeMismatch, hdr)
	}
	x, y, err := c.fixedPoint(s)
	if err != nil {
		return cur, err
	}
	h.X, h.Y = x, y
	h.Bound = IntBound{x, y, x, y}
	h.Unknown = c.Unknown
	h.CustomStyle = c.CustomStyle

	h.SymbolID = indexByte(c.FeatureSymbol.Index)
	h.FontID = indexByte(c.FeatureFont.Index)
	if !coordOnly {
		if h.SymbolID, err = c.writeSymbol(s); err != nil {
			return cur, err
		}
		if h.FontID, err = c.writeFont(s); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (c *CustomPoint) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	pt, _ := c.geometry.(orb.Point)
	d.printf("POINT %.15g %.15g\n", pt[0], pt[1])
	d.printf("  CustomStyle   = 0x%02x\n", c.CustomStyle)
	c.DumpSymbolDef(d)
	c.DumpFontDef(d)
	return d.err
}

const customSymPrefix = "mapinfo-custom-sym-"

func (c *CustomPoint) StyleString() string {
	return c.memoStyle(func() string {
		return fmt.Sprintf("SYMBOL(c:#%06x,s:%dpt,id:\"%s%d-%s,ogr-sym-9\")",
			c.FeatureSymbol.Def.Color, c.FeatureSymbol.Def.PointSize,
			customSymPrefix, c.CustomStyle, c.FeatureFont.Def.Name)
	})
}

func (c *CustomPoint) SetStyleString(style string) error {
	c.ResetStyleString()
	tools, err := parseStyle(style)
	if err != nil {
		return err
	}
	t := findTool(tools, "SYMBOL")
	if t == nil {
		return nil
	}
	if col, ok := t.color("c"); ok {
		c.SetSymbolColor(col)
	}
	if v, unit, ok := t.length("s"); ok {
		c.SetSymbolSize(int16(math.Round(pointSize(v, unit))))
	}
	for _, id := range strings.Split(t.params["id"], ",") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(id), customSymPrefix)
		if !ok {
			continue
		}
		st, name, _ := strings.Cut(rest, "-")
		if n, err := strconv.Atoi(st); err == nil {
			c.CustomStyle = byte(n)
		}
		if name != "" {
			c.SetFontName(name)
		}
	}
	return nil
}
