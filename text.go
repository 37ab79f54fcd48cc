package mitab

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/paulmach/orb"
)

// TextJust is the horizontal justification of a text object.
type TextJust int

const (
	JustLeft TextJust = iota
	JustCenter
	JustRight
)

// TextSpacing is the line spacing of a multi-line text object.
type TextSpacing int

const (
	SpacingSingle TextSpacing = iota
	SpacingOneAndHalf
	SpacingDouble
)

// TextLineType is the kind of callout line drawn from the text to its line
// end.
type TextLineType int

const (
	LineNone TextLineType = iota
	LineSimple
	LineArrow
)

// Alignment bits of the text object.
const (
	alignCenter  = 0x0200
	alignRight   = 0x0400
	alignSpace15 = 0x0800
	alignSpace2  = 0x1000
	alignLine    = 0x2000
	alignArrow   = 0x4000
)

// Text is a text label. The geometry is the lower-left corner of the text
// box before rotation; MapInfo rotates the box around its upper-left
// corner. The box width is not stored in the file and is derived from the
// rotated MBR when reading.
type Text struct {
	Envelope
	FeatureFont
	FeaturePen

	str        string
	angle      float64
	height     float64
	width      float64
	fontStyle  int
	alignment  int
	fgColor    uint32
	bgColor    uint32
	lineEnd    orb.Point
	lineEndSet bool
}

// NewText returns a text object at p.
func NewText(p orb.Point, s string, height float64) *Text {
	t := newText(GeomText)
	t.SetGeometry(p)
	t.str = s
	t.height = height
	t.UpdateTextMBR()
	return t
}

func newText(typ GeomType) *Text {
	return &Text{
		Envelope:    newEnvelope(typ, nil),
		FeatureFont: newFeatureFont(),
		FeaturePen:  newFeaturePen(),
		bgColor:     0xffffff,
	}
}

func (t *Text) TextString() string { return t.str }

func (t *Text) SetTextString(s string) {
	t.str = s
	t.ResetStyleString()
}

// Angle returns the rotation in degrees, counter-clockwise.
func (t *Text) Angle() float64 { return t.angle }

// SetAngle sets the rotation, folded into [0, 360], and refreshes the MBR.
func (t *Text) SetAngle(a float64) {
	t.angle = normalizeAngle(a)
	t.UpdateTextMBR()
}

// Height returns the height of the text box before rotation, in world
// units.
func (t *Text) Height() float64 { return t.height }

func (t *Text) SetHeight(h float64) {
	t.height = h
	t.UpdateTextMBR()
}

// Width returns the width of the text box before rotation. When it has not
// been set, each character is taken to be 60% as wide as the box is high.
func (t *Text) Width() float64 {
	if t.width == 0 && t.str != "" {
		return 0.6 * t.height * float64(utf8.RuneCountInString(t.str))
	}
	return t.width
}

func (t *Text) SetWidth(w float64) {
	t.width = w
	t.UpdateTextMBR()
}

func (t *Text) FGColor() uint32 { return t.fgColor }
func (t *Text) SetFGColor(c uint32) { t.fgColor = c & 0xffffff }
func (t *Text) BGColor() uint32 { return t.bgColor }
func (t *Text) SetBGColor(c uint32) { t.bgColor = c & 0xffffff }

func (t *Text) Justification() TextJust {
	switch {
	case t.alignment&alignCenter != 0:
		return JustCenter
	case t.alignment&alignRight != 0:
		return JustRight
	}
	return JustLeft
}

func (t *Text) SetJustification(j TextJust) {
	t.alignment &^= alignCenter | alignRight
	switch j {
	case JustCenter:
		t.alignment |= alignCenter
	case JustRight:
		t.alignment |= alignRight
	}
}

func (t *Text) Spacing() TextSpacing {
	switch {
	case t.alignment&alignSpace15 != 0:
		return SpacingOneAndHalf
	case t.alignment&alignSpace2 != 0:
		return SpacingDouble
	}
	return SpacingSingle
}

func (t *Text) SetSpacing(sp TextSpacing) {
	t.alignment &^= alignSpace15 | alignSpace2
	switch sp {
	case SpacingOneAndHalf:
		t.alignment |= alignSpace15
	case SpacingDouble:
		t.alignment |= alignSpace2
	}
}

func (t *Text) LineType() TextLineType {
	switch {
	case t.alignment&alignLine != 0:
		return LineSimple
	case t.alignment&alignArrow != 0:
		return LineArrow
	}
	return LineNone
}

func (t *Text) SetLineType(lt TextLineType) {
	t.alignment &^= alignLine | alignArrow
	switch lt {
	case LineSimple:
		t.alignment |= alignLine
	case LineArrow:
		t.alignment |= alignArrow
	}
}

// LineEnd returns the end of the callout line. Unless set it is the center
// of the MBR.
func (t *Text) LineEnd() orb.Point {
	if t.lineEndSet {
		return t.lineEnd
	}
	return t.bound.Center()
}

func (t *Text) SetLineEnd(p orb.Point) { t.lineEnd, t.lineEndSet = p, true }

func (t *Text) FontStyle() int { return t.fontStyle }
func (t *Text) SetFontStyle(s int) { t.fontStyle = s }

func (t *Text) QueryFontStyle(flag int) bool { return t.fontStyle&flag != 0 }

func (t *Text) ToggleFontStyle(flag int, on bool) {
	if on {
		t.fontStyle |= flag
	} else {
		t.fontStyle &^= flag
	}
}

// FontStyleMIF returns the style in MIF encoding. MIF has no box flag: a
// box is implied by a background color.
func (t *Text) FontStyleMIF() int { return FontStyleMIF(t.fontStyle) }

// SetFontStyleMIF sets the style from its MIF encoding. When the MIF font
// clause had a background color, the box flag is turned on unless the text
// has a halo.
func (t *Text) SetFontStyleMIF(v int, bgColorSet bool) {
	t.fontStyle = FontStyleFromMIF(v)
	if bgColorSet && !t.QueryFontStyle(FontHalo) {
		t.ToggleFontStyle(FontBox, true)
	}
}

// IsFontBGColorUsed reports whether the background color is drawn.
func (t *Text) IsFontBGColorUsed() bool {
	return t.QueryFontStyle(FontBox) || t.QueryFontStyle(FontHalo)
}

// UpdateTextMBR sets the MBR to the text box rotated around the geometry
// point. It does nothing until the geometry is a point.
func (t *Text) UpdateTextMBR() {
	p, ok := t.geometry.(orb.Point)
	if !ok {
		return
	}
	w, h := t.Width(), t.height
	sin, cos := math.Sincos(degToRad(t.angle))

	t.SetBound(p, p)
	for _, c := range [4]orb.Point{{0, 0}, {w, 0}, {w, h}, {0, h}} {
		r := orb.Point{p[0] + c[0]*cos - c[1]*sin, p[1] + c[0]*sin + c[1]*cos}
		t.bound = t.bound.Extend(r)
	}
}

func (t *Text) UpdateBounds(s Storage) error {
	if t.geometry == nil {
		return ErrNilGeometry
	}
	if _, ok := t.geometry.(orb.Point); !ok {
		return fmt.Errorf("%w: %s for text", ErrInvalidGeometry, geometryName(t.geometry))
	}
	t.UpdateTextMBR()
	if s != nil {
		b := t.bound
		t.intBound = fixedBound(s, b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	}
	return nil
}

func (t *Text) ValidateType(s Storage) GeomType {
	if _, ok := t.geometry.(orb.Point); !ok {
		return t.rejectGeometry("text")
	}
	t.typ = GeomText
	t.UpdateTextMBR()
	t.forceUncompressed(s)
	return t.typ
}

// textOrigin returns the lower-left corner of the unrotated box and its
// width, given the rotated MBR b.
func textOrigin(b orb.Bound, angle, height float64) (orb.Point, float64) {
	sin, cos := math.Sincos(degToRad(angle))

	var p orb.Point
	switch {
	case sin > 0 && cos > 0:
		p = orb.Point{b.Min[0] + height*sin, b.Min[1]}
	case sin > 0 && cos < 0:
		p = orb.Point{b.Max[0], b.Min[1] - height*cos}
	case sin < 0 && cos < 0:
		p = orb.Point{b.Max[0] + height*sin, b.Max[1]}
	default:
		p = orb.Point{b.Min[0], b.Max[1] - height*cos}
	}

	sin, cos = math.Abs(sin), math.Abs(cos)
	var w float64
	switch {
	case height == 0:
	case cos > sin:
		w = height * ((b.Max[0] - b.Min[0]) - height*sin) / (height * cos)
	default:
		w = height * ((b.Max[1] - b.Min[1]) - height*cos) / (height * sin)
	}
	return p, math.Abs(w)
}

func (t *Text) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomText); err != nil {
		return cur, err
	}
	h, ok := hdr.(*TextHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for text", ErrUnexpectedType, hdr)
	}
	t.setFromRead(hdr)
	t.comprOrgX, t.comprOrgY = ComprOrigin(h.Bound)

	t.str = ""
	if h.StringLen > 0 {
		if err := checkCount(s, int64(h.StringLen), 1, "text length"); err != nil {
			return cur, err
		}
		var err error
		if cur, err = coordCursor(s, cur, h.CoordBlockPtr); err != nil {
			return cur, err
		}
		raw, err := cur.ReadBytes(int(h.StringLen))
		if err != nil {
			return cur, fmt.Errorf("read text %d at %d: %w", h.ID, h.CoordBlockPtr, err)
		}
		if t.str, err = decodeString(s, raw); err != nil {
			return cur, err
		}
	}

	t.alignment = int(uint16(h.Justification))
	t.angle = float64(h.Angle) / 10
	t.fontStyle = int(uint16(h.FontStyle))
	t.fgColor, t.bgColor = h.FGColor, h.BGColor
	_, t.height = s.ToWorldDist(0, h.Height)
	t.SetLineEnd(toWorld(s, h.LineEndX, h.LineEndY))

	t.setBoundFromInt(s, h.Bound)
	var p orb.Point
	p, t.width = textOrigin(t.bound, t.angle, t.height)
	t.geometry = p

	if !coordOnly {
		if err := t.readFont(s, int(h.FontID)); err != nil {
			return cur, err
		}
		if err := t.readPen(s, int(h.PenID)); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (t *Text) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := t.checkWrite(hdr); err != nil {
		return cur, err
	}
	h, ok := hdr.(*TextHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for text", ErrTypeMismatch, hdr)
	}
	if _, ok := t.geometry.(orb.Point); !ok {
		return cur, fmt.Errorf("%w: %s for text", ErrInvalidGeometry, geometryName(t.geometry))
	}

	raw, err := encodeString(s, t.str)
	if err != nil {
		return cur, err
	}
	if len(raw) > math.MaxInt16 {
		return cur, fmt.Errorf("%w: text of %d bytes is too long", ErrInvalidGeometry, len(raw))
	}
	h.CoordBlockPtr = 0
	if len(raw) > 0 {
		cur = writeCursor(s, cur)
		cur.StartNewFeature()
		h.CoordBlockPtr = int32(cur.Address())
		if err := cur.WriteBytes(raw); err != nil {
			return cur, err
		}
	}
	h.StringLen = int32(len(raw))

	h.Justification = int16(t.alignment)
	h.Angle = int16(math.Round(t.angle * 10))
	h.FontStyle = int16(t.fontStyle)
	h.FGColor, h.BGColor = t.fgColor, t.bgColor

	t.UpdateTextMBR()
	b := t.bound
	t.intBound = fixedBound(s, b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	h.Bound = t.intBound
	if t.lineEndSet {
		h.LineEndX, h.LineEndY = s.ToFixed(t.lineEnd[0], t.lineEnd[1])
	} else {
		h.LineEndX, h.LineEndY = ComprOrigin(h.Bound)
	}
	_, h.Height = s.ToFixedDist(0, t.height)

	h.FontID = indexByte(t.FeatureFont.Index)
	h.PenID = indexByte(t.FeaturePen.Index)
	if !coordOnly {
		if h.FontID, err = t.writeFont(s); err != nil {
			return cur, err
		}
		if h.PenID, err = t.writePen(s); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (t *Text) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	p, _ := t.geometry.(orb.Point)
	d.printf("TEXT \"%s\" %.15g %.15g\n", t.str, p[0], p[1])
	d.printf("  Angle      = %g\n", t.angle)
	d.printf("  Height     = %g\n", t.height)
	d.printf("  Width      = %g\n", t.Width())
	d.printf("  FGColor    = 0x%06x (%d)\n", t.fgColor, t.fgColor)
	d.printf("  BGColor    = 0x%06x (%d)\n", t.bgColor, t.bgColor)
	d.printf("  Alignment  = 0x%04x\n", t.alignment)
	d.printf("  FontStyle  = 0x%04x\n", t.fontStyle)
	t.DumpPenDef(d)
	t.DumpFontDef(d)
	return d.err
}

// labelAnchors maps justification to the OGR anchor on the text baseline.
var labelAnchors = map[TextJust]int{JustLeft: 1, JustCenter: 2, JustRight: 3}

// LabelStyleString renders the text as an OGR feature style LABEL tool.
// The size is the box height in ground units. Double quotes in the text
// become single quotes.
func (t *Text) LabelStyleString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "LABEL(t:\"%s\",a:%g,s:%gg,c:#%06x",
		strings.ReplaceAll(t.str, `"`, `'`), t.angle, t.height, t.fgColor)
	if t.IsFontBGColorUsed() {
		key := "b"
		if t.QueryFontStyle(FontHalo) {
			key = "o"
		}
		fmt.Fprintf(&b, ",%s:#%06x", key, t.bgColor)
	}
	fmt.Fprintf(&b, ",p:%d", labelAnchors[t.Justification()])
	for _, f := range []struct {
		flag int
		key  string
	}{{FontBold, "bo"}, {FontItalic, "it"}, {FontUnderline, "un"}, {FontStrikeout, "st"}} {
		if t.QueryFontStyle(f.flag) {
			fmt.Fprintf(&b, ",%s:1", f.key)
		}
	}
	fmt.Fprintf(&b, ",f:\"%s\")", t.FeatureFont.Def.Name)
	return b.String()
}

func (t *Text) StyleString() string {
	return t.memoStyle(t.LabelStyleString)
}

// SetStyleString applies the LABEL tool of style. A PEN tool sets the
// callout line pen.
func (t *Text) SetStyleString(style string) error {
	t.ResetStyleString()
	tools, err := parseStyle(style)
	if err != nil {
		return err
	}
	if pt := findTool(tools, "PEN"); pt != nil {
		t.applyPenTool(pt)
	}
	lt := findTool(tools, "LABEL")
	if lt == nil {
		return nil
	}
	if s, ok := lt.params["t"]; ok {
		t.str = s
	}
	if a, ok := lt.number("a"); ok {
		t.angle = normalizeAngle(a)
	}
	if v, unit, ok := lt.length("s"); ok && (unit == "g" || unit == "") {
		t.height = v
	}
	if c, ok := lt.color("c"); ok {
		t.SetFGColor(c)
	}
	if c, ok := lt.color("b"); ok {
		t.SetBGColor(c)
		t.ToggleFontStyle(FontBox, true)
	}
	if c, ok := lt.color("o"); ok {
		t.SetBGColor(c)
		t.ToggleFontStyle(FontHalo, true)
	}
	if p, ok := lt.number("p"); ok {
		switch int(p) % 3 {
		case 2:
			t.SetJustification(JustCenter)
		case 0:
			t.SetJustification(JustRight)
		default:
			t.SetJustification(JustLeft)
		}
	}
	for key, flag := range map[string]int{"bo": FontBold, "it": FontItalic, "un": FontUnderline, "st": FontStrikeout} {
		if v, ok := lt.number(key); ok {
			t.ToggleFontStyle(flag, v != 0)
		}
	}
	t.applyFontTool(lt)
	t.UpdateTextMBR()
	return nil
}
