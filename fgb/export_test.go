package fgb

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	mitab "github.com/tingold/orb-mitab"
)

func exportLayer(t *testing.T, feats []mitab.Feature, opts *Options) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Export(&buf, feats, opts); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	return buf.Bytes()
}

func TestExport_NoFeatures(t *testing.T) {
	tests := []struct {
		name  string
		feats []mitab.Feature
	}{
		{"nil slice", nil},
		{"only empty features", []mitab.Feature{mitab.NewNoGeometry()}},
		{"nil feature", []mitab.Feature{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Export(&buf, tt.feats, nil); !errors.Is(err, ErrNilGeometry) {
				t.Errorf("expected ErrNilGeometry, got %v", err)
			}
		})
	}
}

func TestExportImport(t *testing.T) {
	pt := mitab.NewPoint(orb.Point{-122.42, 37.77})
	pt.SetSymbolNo(44)
	pt.SetSymbolSize(24)
	pt.SetSymbolColor(0x0000ff)
	pt.Properties = geojson.Properties{"name": "San Francisco", "pop": 815201}

	region := mitab.NewRegion(orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{2, 2}, {4, 2}, {4, 4}, {2, 2}},
	})
	region.SetPenColor(0xff0000)
	region.SetPenWidthPoint(2.5)
	region.SetBrushPattern(3)
	region.SetBrushFGColor(0x00ff00)
	region.Properties = geojson.Properties{"name": "block", "area": 96.0}

	line := mitab.NewPolyline(orb.MultiLineString{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}, {4, 2}}})
	line.SetPenPattern(5)

	txt := mitab.NewText(orb.Point{12.5, 41.9}, "Café", 0.5)
	txt.SetAngle(30)
	txt.SetFGColor(0x800000)
	txt.SetFontName("Verdana")

	fp := mitab.NewFontPoint(orb.Point{4, 5})
	fp.SetSymbolNo(65)
	fp.SetSymbolSize(20)
	fp.SetFontName("Wingdings")

	coll, err := mitab.FromGeometry(orb.Collection{
		orb.Polygon{{{20, 20}, {25, 20}, {25, 25}, {20, 20}}},
		orb.LineString{{30, 30}, {31, 32}},
		orb.MultiPoint{{40, 40}, {41, 41}},
	})
	if err != nil {
		t.Fatalf("FromGeometry failed: %v", err)
	}

	feats := []mitab.Feature{
		pt,
		region,
		line,
		txt,
		fp,
		mitab.NewRectangle(orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{3, 5}}),
		mitab.NewEllipse(orb.Point{-20, 15}, 3, 1.5),
		mitab.NewMultiPoint(orb.MultiPoint{{1, 1}, {-5, 7}}),
		coll,
	}

	got, err := Import(exportLayer(t, feats, nil))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(got) != len(feats) {
		t.Fatalf("imported %d features, want %d", len(got), len(feats))
	}

	approx := cmpopts.EquateApprox(0, 1e-9)
	for i, want := range feats {
		g := got[i]
		if wt, gt := typeName(want), typeName(g); wt != gt {
			t.Errorf("feature %d: kind %s, want %s", i, gt, wt)
			continue
		}
		if diff := cmp.Diff(want.Base().Geometry(), g.Base().Geometry(), approx); diff != "" {
			t.Errorf("feature %d geometry mismatch (-want +got):\n%s", i, diff)
		}
		if g.StyleString() != want.StyleString() {
			t.Errorf("feature %d style = %s, want %s", i, g.StyleString(), want.StyleString())
		}
		if g.Base().ID != int32(i+1) {
			t.Errorf("feature %d id = %d", i, g.Base().ID)
		}
	}

	if diff := cmp.Diff(geojson.Properties{"name": "San Francisco", "pop": int32(815201)}, got[0].Base().Properties); diff != "" {
		t.Errorf("point properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(geojson.Properties{"name": "block", "area": 96.0}, got[1].Base().Properties); diff != "" {
		t.Errorf("region properties mismatch (-want +got):\n%s", diff)
	}
	if tx := got[3].(*mitab.Text); tx.TextString() != "Café" || tx.Angle() != 30 {
		t.Errorf("text = %q at %v", tx.TextString(), tx.Angle())
	}
}

func typeName(f mitab.Feature) string {
	switch f.(type) {
	case *mitab.Point:
		return "point"
	case *mitab.FontPoint:
		return "font point"
	case *mitab.Region:
		return "region"
	case *mitab.Polyline:
		return "polyline"
	case *mitab.Text:
		return "text"
	case *mitab.Rectangle:
		return "rectangle"
	case *mitab.Ellipse:
		return "ellipse"
	case *mitab.MultiPoint:
		return "multipoint"
	case *mitab.Collection:
		return "collection"
	}
	return "other"
}

func TestExportImport_ArcOutline(t *testing.T) {
	a := mitab.NewArc(orb.Point{0, 0}, 2, 1, 0, 90)
	feats := []mitab.Feature{a, mitab.NewPoint(orb.Point{5, 5})}

	got, err := Import(exportLayer(t, feats, nil))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	// Arcs come back as their generated outline.
	if _, ok := got[0].(*mitab.Polyline); !ok {
		t.Errorf("arc imported as %T, want *mitab.Polyline", got[0])
	}
	if diff := cmp.Diff(a.Geometry(), got[0].Base().Geometry()); diff != "" {
		t.Errorf("arc outline mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_Header(t *testing.T) {
	feats := []mitab.Feature{
		mitab.NewPoint(orb.Point{1, 2}),
		mitab.NewPoint(orb.Point{3, 4}),
	}
	opts := &Options{Name: "cities", Description: "test layer", IncludeIndex: true, CRS: WGS84()}

	r, err := NewReaderFromData(exportLayer(t, feats, opts))
	if err != nil {
		t.Fatalf("NewReaderFromData failed: %v", err)
	}
	h := r.Header()
	if h.Name != "cities" || h.Description != "test layer" {
		t.Errorf("name %q, description %q", h.Name, h.Description)
	}
	if h.GeometryType != "Point" {
		t.Errorf("geometry type = %q, want Point", h.GeometryType)
	}
	if h.FeaturesCount != 2 || !h.HasIndex {
		t.Errorf("count %d, index %v", h.FeaturesCount, h.HasIndex)
	}
	if h.CRS == nil || h.CRS.Code != 4326 {
		t.Errorf("CRS = %+v", h.CRS)
	}
	for _, name := range []string{StyleColumn, TypeColumn, IDColumn} {
		if _, ok := h.Column(name); !ok {
			t.Errorf("missing column %s", name)
		}
	}
	if c, _ := h.Column(StyleColumn); c.Type != "String" {
		t.Errorf("style column type = %s, want String", c.Type)
	}
}

func TestExport_MixedLayerIsUnknown(t *testing.T) {
	feats := []mitab.Feature{
		mitab.NewPoint(orb.Point{1, 2}),
		mitab.NewPolyline(orb.LineString{{0, 0}, {1, 1}}),
	}
	r, err := NewReaderFromData(exportLayer(t, feats, nil))
	if err != nil {
		t.Fatalf("NewReaderFromData failed: %v", err)
	}
	if got := r.Header().GeometryType; got != "Unknown" {
		t.Errorf("geometry type = %q, want Unknown", got)
	}
}
