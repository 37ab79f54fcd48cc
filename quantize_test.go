package mitab

import (
	"math"
	"testing"
)

func TestDecideCompression(t *testing.T) {
	tests := []struct {
		name string
		b    IntBound
		want bool
	}{
		{"empty", IntBound{}, true},
		{"width 65534", IntBound{0, 0, 65534, 10}, true},
		{"width 65535", IntBound{0, 0, 65535, 10}, false},
		{"height 65534", IntBound{-100, -32767, 100, 32767}, true},
		{"height 65535", IntBound{-100, -32767, 100, 32768}, false},
		{"int32 extremes", IntBound{math.MinInt32, math.MinInt32, math.MaxInt32, math.MaxInt32}, false},
		{"near max", IntBound{math.MaxInt32 - 65534, 0, math.MaxInt32, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideCompression(tt.b); got != tt.want {
				t.Errorf("DecideCompression(%+v) = %v, want %v", tt.b, got, tt.want)
			}
		})
	}
}

func TestComprOrigin(t *testing.T) {
	tests := []struct {
		name         string
		b            IntBound
		wantX, wantY int32
	}{
		{"centered", IntBound{-10, -20, 10, 20}, 0, 0},
		{"odd span", IntBound{0, 0, 3, 5}, 1, 2},
		{"int32 extremes", IntBound{math.MinInt32, math.MinInt32, math.MaxInt32, math.MaxInt32}, 0, 0},
		{"both max", IntBound{math.MaxInt32, math.MaxInt32, math.MaxInt32, math.MaxInt32}, math.MaxInt32, math.MaxInt32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := ComprOrigin(tt.b)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("ComprOrigin(%+v) = (%d, %d), want (%d, %d)", tt.b, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestNewIntBound_Orders(t *testing.T) {
	b := NewIntBound(10, -5, -10, 5)
	want := IntBound{MinX: -10, MinY: -5, MaxX: 10, MaxY: 5}
	if b != want {
		t.Errorf("NewIntBound = %+v, want %+v", b, want)
	}
	if b = b.Extend(20, -30); b != (IntBound{-10, -30, 20, 5}) {
		t.Errorf("Extend = %+v", b)
	}
}

func TestSaturatedAdd(t *testing.T) {
	if got := saturatedAdd(math.MaxInt32-1, 100); got != math.MaxInt32 {
		t.Errorf("saturatedAdd overflow = %d, want MaxInt32", got)
	}
	if got := saturatedAdd(math.MinInt32+1, -100); got != math.MinInt32 {
		t.Errorf("saturatedAdd underflow = %d, want MinInt32", got)
	}
	if got := saturatedAdd(1000, -32768); got != 1000-32768 {
		t.Errorf("saturatedAdd = %d", got)
	}
}
