package mapfile

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

var lonLat = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

func TestHeader_RoundTrip(t *testing.T) {
	for q := 0; q <= 4; q++ {
		h := NewHeader(lonLat, q)
		rx, ry := h.Resolution()
		for _, p := range []orb.Point{{0, 0}, {-122.4194, 37.7749}, {179.9, -89.9}, {-180, 90}} {
			x, y := h.ToFixed(p[0], p[1])
			wx, wy := h.ToWorld(x, y)
			if math.Abs(wx-p[0]) > rx || math.Abs(wy-p[1]) > ry {
				t.Errorf("quadrant %d: %v round-tripped to (%v, %v)", q, p, wx, wy)
			}
		}
	}
}

func TestHeader_QuadrantFlips(t *testing.T) {
	tests := []struct {
		name         string
		quadrant     int
		wantX, wantY int32
	}{
		{"quadrant 1", 1, 500_000_000, 500_000_000},
		{"quadrant 2", 2, -500_000_000, 500_000_000},
		{"quadrant 3", 3, -500_000_000, -500_000_000},
		{"quadrant 4", 4, 500_000_000, -500_000_000},
		{"quadrant 0", 0, -500_000_000, -500_000_000},
		{"invalid quadrant", 9, 500_000_000, 500_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeader(lonLat, tt.quadrant)
			x, y := h.ToFixed(90, 45)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("ToFixed(90, 45) = (%d, %d), want (%d, %d)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestHeader_Clamp(t *testing.T) {
	h := NewHeader(lonLat, 1)
	x, y := h.ToFixed(1000, -1000)
	if x != maxCoord || y != -maxCoord {
		t.Errorf("ToFixed outside bounds = (%d, %d), want (%d, %d)", x, y, maxCoord, -maxCoord)
	}
}

func TestHeader_Distances(t *testing.T) {
	h := NewHeader(lonLat, 3)
	dx, dy := h.ToFixedDist(1, 1)
	if dx <= 0 || dy <= 0 {
		t.Fatalf("distances must not be flipped, got (%d, %d)", dx, dy)
	}
	wx, wy := h.ToWorldDist(dx, dy)
	if math.Abs(wx-1) > 1e-6 || math.Abs(wy-1) > 1e-6 {
		t.Errorf("ToWorldDist = (%v, %v), want (1, 1)", wx, wy)
	}
}
