package mitab_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/paulmach/orb"

	mitab "github.com/tingold/orb-mitab"
	"github.com/tingold/orb-mitab/mapfile"
)

// tolerance covers one quantization step of a lon/lat file plus the error
// of shapes regenerated from a quantized center and radii.
var tolerance = cmpopts.EquateApprox(0, 1e-6)

func newFile(t *testing.T, quadrant int) *mapfile.File {
	t.Helper()
	opts := mapfile.DefaultOptions()
	opts.Quadrant = quadrant
	f, err := mapfile.New(opts)
	if err != nil {
		t.Fatalf("mapfile.New failed: %v", err)
	}
	return f
}

func roundTrip(t *testing.T, f *mapfile.File, feat mitab.Feature) mitab.Feature {
	t.Helper()
	id, err := f.Append(feat)
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	got, err := f.Feature(id)
	if err != nil {
		t.Fatalf("Feature failed: %v", err)
	}
	return got
}

func TestRoundTrip_Geometry(t *testing.T) {
	tiny := orb.LineString{{2.35, 48.85}, {2.3505, 48.8503}, {2.351, 48.85}}
	withHole := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{2, 2}, {4, 2}, {4, 4}, {2, 2}},
	}
	twoPolys := orb.MultiPolygon{
		{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		{{{5, 5}, {6, 5}, {6, 6}, {5, 5}}},
	}
	arc := mitab.NewArc(orb.Point{10, 10}, 2, 1, 30, 120)
	ellipse := mitab.NewEllipse(orb.Point{-20, 15}, 3, 1.5)

	tests := []struct {
		name     string
		feat     mitab.Feature
		wantType mitab.GeomType
		want     orb.Geometry
	}{
		{"point", mitab.NewPoint(orb.Point{-122.4194, 37.7749}), mitab.GeomSymbolC, orb.Point{-122.4194, 37.7749}},
		{"line", mitab.NewPolyline(orb.LineString{{0, 0}, {3, 4}}), mitab.GeomLine, orb.LineString{{0, 0}, {3, 4}}},
		{"compressed polyline", mitab.NewPolyline(tiny), mitab.GeomPLineC, tiny},
		{
			"multi line",
			mitab.NewPolyline(orb.MultiLineString{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}, {4, 2}}}),
			mitab.GeomMultiPLine,
			orb.MultiLineString{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}, {4, 2}}},
		},
		{"region with hole", mitab.NewRegion(withHole), mitab.GeomRegion, withHole},
		{"multi region", mitab.NewRegion(twoPolys), mitab.GeomRegion, twoPolys},
		{
			"rectangle",
			mitab.NewRectangle(orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{3, 5}}),
			mitab.GeomRect,
			mitab.NewRectangle(orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{3, 5}}).Geometry(),
		},
		{"ellipse", ellipse, mitab.GeomEllipse, ellipse.Geometry()},
		{"arc", arc, mitab.GeomArc, arc.Geometry()},
		{"multipoint", mitab.NewMultiPoint(orb.MultiPoint{{1, 1}, {-5, 7}, {30, -2}}), mitab.GeomMultiPoint, orb.MultiPoint{{1, 1}, {-5, 7}, {30, -2}}},
		{
			"compressed multipoint",
			mitab.NewMultiPoint(orb.MultiPoint{{1, 1}, {1.001, 1.001}}),
			mitab.GeomMultiPointC,
			orb.MultiPoint{{1, 1}, {1.001, 1.001}},
		},
	}

	f := newFile(t, 1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, f, tt.feat)
			if got.Base().Type() != tt.wantType {
				t.Errorf("type = %s, want %s", got.Base().Type(), tt.wantType)
			}
			if diff := cmp.Diff(tt.want, got.Base().Geometry(), tolerance); diff != "" {
				t.Errorf("geometry mismatch (-want +got):\n%s", diff)
			}
			b := got.Base().Bound()
			if b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] {
				t.Errorf("bound not ordered: %v", b)
			}
			ib := got.Base().IntBound()
			if ib.MinX > ib.MaxX || ib.MinY > ib.MaxY {
				t.Errorf("integer bound not ordered: %+v", ib)
			}
		})
	}
}

func TestRoundTrip_Quadrants(t *testing.T) {
	line := orb.LineString{{-40, -20}, {10, 30}, {60, -5}}
	poly := orb.Polygon{{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}, {-1, -1}}}

	for _, q := range []int{0, 1, 2, 3, 4} {
		f := newFile(t, q)

		got := roundTrip(t, f, mitab.NewPolyline(line))
		if diff := cmp.Diff(line, got.Base().Geometry(), tolerance); diff != "" {
			t.Errorf("quadrant %d polyline mismatch (-want +got):\n%s", q, diff)
		}
		got = roundTrip(t, f, mitab.NewRegion(poly))
		if diff := cmp.Diff(poly, got.Base().Geometry(), tolerance); diff != "" {
			t.Errorf("quadrant %d region mismatch (-want +got):\n%s", q, diff)
		}
		ib := got.Base().IntBound()
		if ib.MinX > ib.MaxX || ib.MinY > ib.MaxY {
			t.Errorf("quadrant %d: integer bound not ordered: %+v", q, ib)
		}

		a := mitab.NewArc(orb.Point{0, 0}, 5, 5, 200, 250)
		got = roundTrip(t, f, a)
		arc := got.(*mitab.Arc)
		if arc.StartAngle != 200 || arc.EndAngle != 250 {
			t.Errorf("quadrant %d: arc angles = (%v, %v), want (200, 250)", q, arc.StartAngle, arc.EndAngle)
		}
	}
}

func TestRoundTrip_PolylineCenter(t *testing.T) {
	f := newFile(t, 1)
	tests := []struct {
		name string
		line orb.LineString
		want orb.Point
	}{
		{"four vertices", orb.LineString{{0, 0}, {2, 0}, {4, 2}, {6, 2}}, orb.Point{3, 1}},
		{"five vertices", orb.LineString{{0, 0}, {1, 1}, {2, 5}, {3, 1}, {4, 0}}, orb.Point{2, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, f, mitab.NewPolyline(tt.line)).(*mitab.Polyline)
			c, ok := got.Center()
			if !ok {
				t.Fatal("no center")
			}
			if diff := cmp.Diff(tt.want, c, tolerance); diff != "" {
				t.Errorf("center mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTrip_Styles(t *testing.T) {
	f := newFile(t, 1)

	r := mitab.NewRegion(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})
	r.SetPenWidthPoint(2.5)
	r.SetPenPattern(5)
	r.SetPenColor(0x336699)
	r.SetBrushPattern(3)
	r.SetBrushFGColor(0xff0000)
	r.SetBrushBGColor(0x00ff00)
	want := r.StyleString()

	got := roundTrip(t, f, r)
	if got.StyleString() != want {
		t.Errorf("StyleString() =\n%s\nwant\n%s", got.StyleString(), want)
	}

	p := mitab.NewPoint(orb.Point{1, 1})
	p.SetSymbolNo(44)
	p.SetSymbolSize(24)
	p.SetSymbolColor(0x0000ff)
	gp := roundTrip(t, f, p).(*mitab.Point)
	if diff := cmp.Diff(p.Def, gp.Def, cmpopts.IgnoreFields(mitab.SymbolDef{}, "RefCount")); diff != "" {
		t.Errorf("symbol mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_FontAndCustomPoints(t *testing.T) {
	f := newFile(t, 1)

	fp := mitab.NewFontPoint(orb.Point{4, 5})
	fp.SetSymbolNo(65)
	fp.SetSymbolSize(20)
	fp.SetSymbolColor(0xff00ff)
	fp.SetAngle(30)
	fp.SetFontStyle(mitab.FontBold)
	fp.SetFontName("Wingdings")

	got := roundTrip(t, f, fp).(*mitab.FontPoint)
	if got.Type() != mitab.GeomFontSymbolC {
		t.Errorf("type = %s, want FONTSYMBOL_C", got.Type())
	}
	if got.SymbolNo() != 65 || got.SymbolSize() != 20 || got.SymbolColor() != 0xff00ff {
		t.Errorf("symbol = %+v", got.FeatureSymbol.Def)
	}
	if got.Angle() != 30 || got.FontStyle() != mitab.FontBold || got.FontName() != "Wingdings" {
		t.Errorf("angle %v, style %#x, font %q", got.Angle(), got.FontStyle(), got.FontName())
	}
	if st := f.Stats(); st.Symbols != 0 {
		t.Errorf("font point must not use the symbol table, got %d symbols", st.Symbols)
	}

	cp := mitab.NewCustomPoint(orb.Point{-3, 8}, "pin.bmp")
	cp.CustomStyle = mitab.CustomApplyColor
	gc := roundTrip(t, f, cp).(*mitab.CustomPoint)
	if gc.SymbolName() != "pin.bmp" || gc.CustomStyle != mitab.CustomApplyColor {
		t.Errorf("custom point = %q, style %d", gc.SymbolName(), gc.CustomStyle)
	}
	if diff := cmp.Diff(orb.Point{-3, 8}, gc.Geometry(), tolerance); diff != "" {
		t.Errorf("geometry mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_Text(t *testing.T) {
	f := newFile(t, 1)

	txt := mitab.NewText(orb.Point{12.5, 41.9}, "Café Roma", 0.5)
	txt.SetAngle(30)
	txt.SetFGColor(0x800000)
	txt.SetJustification(mitab.JustCenter)
	txt.SetLineType(mitab.LineSimple)
	txt.SetFontName("Times New Roman")

	got := roundTrip(t, f, txt).(*mitab.Text)
	if got.TextString() != "Café Roma" {
		t.Errorf("text = %q", got.TextString())
	}
	if got.Angle() != 30 || got.FGColor() != 0x800000 || got.FontName() != "Times New Roman" {
		t.Errorf("angle %v, color %06x, font %q", got.Angle(), got.FGColor(), got.FontName())
	}
	if got.Justification() != mitab.JustCenter || got.LineType() != mitab.LineSimple {
		t.Errorf("justification %v, line %v", got.Justification(), got.LineType())
	}
	approx := cmpopts.EquateApprox(0, 1e-5)
	if diff := cmp.Diff(orb.Point{12.5, 41.9}, got.Geometry(), approx); diff != "" {
		t.Errorf("origin mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(txt.Height(), got.Height(), approx); diff != "" {
		t.Errorf("height mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(txt.Width(), got.Width(), approx); diff != "" {
		t.Errorf("width mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_Collection(t *testing.T) {
	tests := []struct {
		name string
		g    orb.Collection
	}{
		{
			"uncompressed",
			orb.Collection{
				orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}},
				orb.LineString{{20, 20}, {25, 30}, {30, 20}},
				orb.MultiPoint{{-5, -5}, {-6, -7}},
			},
		},
		{
			"compressed",
			orb.Collection{
				orb.Polygon{{{1, 1}, {1.001, 1}, {1.001, 1.001}, {1, 1}}},
				orb.MultiLineString{{{1, 1}, {1.0005, 1.0005}}, {{1.0002, 1}, {1.0004, 1}}},
				orb.MultiPoint{{1.0001, 1.0001}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFile(t, 1)
			feat, err := mitab.FromGeometry(tt.g)
			if err != nil {
				t.Fatalf("FromGeometry failed: %v", err)
			}
			got := roundTrip(t, f, feat).(*mitab.Collection)
			if got.Region() == nil || got.Polyline() == nil || got.MultiPoint() == nil {
				t.Fatalf("missing parts: %v %v %v", got.Region(), got.Polyline(), got.MultiPoint())
			}
			if got.Base().IsCompressed() != (tt.name == "compressed") {
				t.Errorf("type = %s", got.Type())
			}
			if diff := cmp.Diff(tt.g, got.Geometry(), tolerance); diff != "" {
				t.Errorf("geometry mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewFeature_UnsupportedType(t *testing.T) {
	var buf bytes.Buffer
	mitab.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer mitab.SetLogger(nil)

	feat := mitab.NewFeature(mitab.GeomUnknown1)
	if _, ok := feat.(*mitab.NoGeometry); !ok {
		t.Fatalf("got %T, want *mitab.NoGeometry", feat)
	}
	if !strings.Contains(buf.String(), "unsupported object type") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
}

func TestWriteGeometry_TypeMismatch(t *testing.T) {
	f := newFile(t, 1)

	// A feature whose geometry failed validation has no type to write.
	bad := mitab.NewPolyline(orb.Point{1, 1})
	if typ := bad.ValidateType(f); typ != mitab.GeomNone {
		t.Fatalf("ValidateType() = %s, want NONE", typ)
	}
	if _, err := bad.WriteGeometry(f, mitab.NewObjHeader(mitab.GeomLine, 1), false, nil); !errors.Is(err, mitab.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch for an invalid feature, got %v", err)
	}

	p := mitab.NewPoint(orb.Point{1, 1})
	typ := p.ValidateType(f)
	other := mitab.GeomSymbol
	if typ == other {
		other = mitab.GeomSymbolC
	}
	if _, err := p.WriteGeometry(f, mitab.NewObjHeader(other, 1), false, nil); !errors.Is(err, mitab.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch for %s header, got %v", other, err)
	}
}

func TestReadGeometry_CorruptCounts(t *testing.T) {
	f := newFile(t, 1)
	if _, err := f.Append(mitab.NewRegion(orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}})); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	tests := []struct {
		name string
		feat mitab.Feature
		hdr  mitab.ObjHeader
	}{
		{
			"negative point count",
			mitab.NewFeature(mitab.GeomMultiPoint),
			&mitab.MultiPointHeader{ObjBase: mitab.ObjBase{Type: mitab.GeomMultiPoint}, NumPoints: -1},
		},
		{
			"oversized point count",
			mitab.NewFeature(mitab.GeomMultiPoint),
			&mitab.MultiPointHeader{ObjBase: mitab.ObjBase{Type: mitab.GeomMultiPoint}, NumPoints: 1 << 28},
		},
		{
			"oversized section count",
			mitab.NewFeature(mitab.GeomRegion),
			&mitab.PLineHeader{ObjBase: mitab.ObjBase{Type: mitab.GeomRegion}, NumLineSections: 1 << 28, CoordDataSize: 64},
		},
		{
			"negative section count",
			mitab.NewFeature(mitab.GeomMultiPLine),
			&mitab.PLineHeader{ObjBase: mitab.ObjBase{Type: mitab.GeomMultiPLine}, NumLineSections: -4},
		},
		{
			"oversized text length",
			mitab.NewFeature(mitab.GeomText),
			&mitab.TextHeader{ObjBase: mitab.ObjBase{Type: mitab.GeomText}, StringLen: 1 << 30},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.feat.ReadGeometry(f, tt.hdr, false, nil)
			if !errors.Is(err, mitab.ErrCorrupt) {
				t.Errorf("expected ErrCorrupt, got %v", err)
			}
		})
	}
}

func TestReadGeometry_UnexpectedType(t *testing.T) {
	f := newFile(t, 1)
	_, err := mitab.NewPoint(orb.Point{}).ReadGeometry(f, mitab.NewObjHeader(mitab.GeomRegion, 1), false, nil)
	if !errors.Is(err, mitab.ErrUnexpectedType) {
		t.Errorf("expected ErrUnexpectedType, got %v", err)
	}
}

func TestDump(t *testing.T) {
	f := newFile(t, 1)
	got := roundTrip(t, f, mitab.NewMultiPoint(orb.MultiPoint{{1, 2}, {3, 4}}))

	var buf bytes.Buffer
	if err := got.Dump(&buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "MULTIPOINT 2\n") {
		t.Errorf("Dump() = %q", buf.String())
	}
}

// newUnitFile returns a file whose integer coordinates equal world
// coordinates, so large geometries round trip exactly.
func newUnitFile(t *testing.T) *mapfile.File {
	t.Helper()
	opts := mapfile.DefaultOptions()
	opts.Bounds = orb.Bound{Min: orb.Point{-1e9, -1e9}, Max: orb.Point{1e9, 1e9}}
	f, err := mapfile.New(opts)
	if err != nil {
		t.Fatalf("mapfile.New failed: %v", err)
	}
	return f
}

// triangles returns n small disjoint triangles on a 200 column grid.
func triangles(n int) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, n)
	for i := range mp {
		x, y := float64(i%200*3), float64(i/200*3)
		mp[i] = orb.Polygon{{{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y}}}
	}
	return mp
}

func segments(n int) orb.MultiLineString {
	ml := make(orb.MultiLineString, n)
	for i := range ml {
		x, y := float64(i%200*3), float64(i/200*3)
		ml[i] = orb.LineString{{x, y}, {x + 1, y + 1}}
	}
	return ml
}

func TestRoundTrip_LargeFormats(t *testing.T) {
	long := make(orb.Ring, 0, 40001)
	for i := 0; i < 39998; i++ {
		long = append(long, orb.Point{float64(i), 0})
	}
	long = append(long, orb.Point{39997, 5}, orb.Point{0, 5}, orb.Point{0, 0})

	tests := []struct {
		name     string
		feat     mitab.Feature
		wantType mitab.GeomType
		want     orb.Geometry
	}{
		{"v450 region", mitab.NewRegion(orb.Polygon{long}), mitab.GeomV450RegionC, orb.Polygon{long}},
		{"v800 multipline", mitab.NewPolyline(segments(40000)), mitab.GeomV800MultiPLineC, segments(40000)},
		{"v800 region", mitab.NewRegion(triangles(33000)), mitab.GeomV800RegionC, triangles(33000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, newUnitFile(t), tt.feat)
			if got.Base().Type() != tt.wantType {
				t.Errorf("type = %s, want %s", got.Base().Type(), tt.wantType)
			}
			if diff := cmp.Diff(tt.want, got.Base().Geometry()); diff != "" {
				t.Errorf("geometry mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTrip_V800Collection(t *testing.T) {
	tests := []struct {
		name     string
		points   orb.MultiPoint
		wantType mitab.GeomType
	}{
		{"compressed", orb.MultiPoint{{10, 10}, {20, 30}}, mitab.GeomV800CollectionC},
		{"uncompressed", orb.MultiPoint{{10, 10}, {100000, 100000}}, mitab.GeomV800Collection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region := triangles(33000)
			lines := orb.MultiLineString{{{0, 0}, {5, 5}}, {{7, 0}, {9, 3}, {11, 0}}}

			c := mitab.NewCollection()
			c.SetRegion(mitab.NewRegion(region))
			c.SetPolyline(mitab.NewPolyline(lines))
			c.SetMultiPoint(mitab.NewMultiPoint(tt.points))

			got := roundTrip(t, newUnitFile(t), c).(*mitab.Collection)
			if got.Type() != tt.wantType {
				t.Errorf("type = %s, want %s", got.Type(), tt.wantType)
			}
			if got.Region() == nil || got.Polyline() == nil || got.MultiPoint() == nil {
				t.Fatalf("missing parts: %v %v %v", got.Region(), got.Polyline(), got.MultiPoint())
			}
			if diff := cmp.Diff(orb.Geometry(region), got.Region().Geometry()); diff != "" {
				t.Errorf("region mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(orb.Geometry(lines), got.Polyline().Geometry()); diff != "" {
				t.Errorf("polyline mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(orb.Geometry(tt.points), got.MultiPoint().Geometry()); diff != "" {
				t.Errorf("multipoint mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

var errRewrite = errors.New("block is append only")

// appendOnlyBlock fails any write that does not extend the block.
type appendOnlyBlock struct {
	buf []byte
}

func (b *appendOnlyBlock) Size() int64 { return int64(len(b.buf)) }

func (b *appendOnlyBlock) ReadAt(p []byte, off int64) (int, error) {
	return copy(p, b.buf[off:]), nil
}

func (b *appendOnlyBlock) WriteAt(p []byte, off int64) (int, error) {
	if off != int64(len(b.buf)) {
		return 0, errRewrite
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func TestWriteGeometry_CollectionStorageError(t *testing.T) {
	f := newFile(t, 1)
	feat, err := mitab.FromGeometry(orb.Collection{
		orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 0}}},
		orb.LineString{{20, 20}, {25, 30}},
	})
	if err != nil {
		t.Fatalf("FromGeometry failed: %v", err)
	}
	typ := feat.ValidateType(f)
	hdr := mitab.NewObjHeader(typ, 1)

	// Filling in a part's mini-header goes back over reserved bytes.
	cur := mitab.NewCursor(&appendOnlyBlock{}, 0)
	if _, err := feat.WriteGeometry(f, hdr, false, cur); !errors.Is(err, errRewrite) {
		t.Errorf("expected errRewrite, got %v", err)
	}
}
