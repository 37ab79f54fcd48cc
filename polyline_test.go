package mitab

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestPolyline_Center(t *testing.T) {
	tests := []struct {
		name string
		g    orb.Geometry
		want orb.Point
	}{
		{
			name: "four vertices",
			g:    orb.LineString{{0, 0}, {2, 0}, {4, 2}, {6, 2}},
			want: orb.Point{3, 1},
		},
		{
			name: "five vertices",
			g:    orb.LineString{{0, 0}, {1, 1}, {2, 5}, {3, 1}, {4, 0}},
			want: orb.Point{2, 5},
		},
		{
			name: "first part of multi line",
			g:    orb.MultiLineString{{{0, 0}, {10, 0}}, {{50, 50}, {60, 60}, {70, 70}}},
			want: orb.Point{5, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewPolyline(tt.g).Center()
			if !ok || got != tt.want {
				t.Errorf("Center() = %v, %v, want %v", got, ok, tt.want)
			}
		})
	}
}

func TestPolyline_SetCenterOverrides(t *testing.T) {
	p := NewPolyline(orb.LineString{{0, 0}, {2, 2}})
	p.SetCenter(orb.Point{7, 7})
	if c, _ := p.Center(); c != (orb.Point{7, 7}) {
		t.Errorf("Center() = %v, want (7, 7)", c)
	}
}

func TestPolyline_ValidateType(t *testing.T) {
	long := make(orb.LineString, MaxVertices300+1)
	for i := range long {
		long[i] = orb.Point{float64(i), 0}
	}

	tests := []struct {
		name       string
		g          orb.Geometry
		twoAsPLine bool
		want       GeomType
	}{
		{"two point line", orb.LineString{{0, 0}, {1, 1}}, false, GeomLine},
		{"two point as polyline", orb.LineString{{0, 0}, {1, 1}}, true, GeomPLine},
		{"three points", orb.LineString{{0, 0}, {1, 1}, {2, 0}}, false, GeomPLine},
		{"multi line", orb.MultiLineString{{{0, 0}, {1, 1}}, {{2, 2}, {3, 3}}}, false, GeomMultiPLine},
		{"over v300 vertex limit", long, false, GeomV450MultiPLine},
		{"single point", orb.LineString{{0, 0}}, false, GeomNone},
		{"wrong kind", orb.Point{1, 1}, false, GeomNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPolyline(tt.g)
			p.WriteTwoPointLineAsPolyline = tt.twoAsPLine
			if got := p.ValidateType(nil); got.Uncompressed() != tt.want.Uncompressed() {
				t.Errorf("ValidateType() = %s, want %s", got, tt.want)
			}
		})
	}
}
