package mitab

import "math"

// IntBound is a bounding box in the integer coordinate space of a map file.
type IntBound struct {
	MinX, MinY, MaxX, MaxY int32
}

// NewIntBound returns the bound of two corners given in any order.
func NewIntBound(x1, y1, x2, y2 int32) IntBound {
	return IntBound{
		MinX: min(x1, x2),
		MinY: min(y1, y2),
		MaxX: max(x1, x2),
		MaxY: max(y1, y2),
	}
}

// Extend grows b to include (x, y).
func (b IntBound) Extend(x, y int32) IntBound {
	return IntBound{
		MinX: min(b.MinX, x),
		MinY: min(b.MinY, y),
		MaxX: max(b.MaxX, x),
		MaxY: max(b.MaxY, y),
	}
}

// DecideCompression reports whether coordinates inside b can be stored as
// 16-bit deltas from the bound's midpoint. The width and height must both
// be strictly less than 65535 units.
func DecideCompression(b IntBound) bool {
	return int64(b.MaxX)-int64(b.MinX) < 65535 &&
		int64(b.MaxY)-int64(b.MinY) < 65535
}

// ComprOrigin returns the integer midpoint of b, used as the zero point of
// compressed coordinates.
func ComprOrigin(b IntBound) (x, y int32) {
	x = int32((int64(b.MinX) + int64(b.MaxX)) / 2)
	y = int32((int64(b.MinY) + int64(b.MaxY)) / 2)
	return x, y
}

// saturatedAdd adds an int16 delta to an origin without wrapping.
func saturatedAdd(org int32, delta int16) int32 {
	v := int64(org) + int64(delta)
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

// fixedBound converts a float bound to integer space through s.
func fixedBound(s Storage, minX, minY, maxX, maxY float64) IntBound {
	x1, y1 := s.ToFixed(minX, minY)
	x2, y2 := s.ToFixed(maxX, maxY)
	return NewIntBound(x1, y1, x2, y2)
}
