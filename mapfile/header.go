package mapfile

import (
	"math"

	"github.com/paulmach/orb"
)

// maxCoord is the largest absolute integer coordinate a map file holds.
const maxCoord = 1_000_000_000

// Header is the affine transform between world coordinates and the file's
// integer space. The coordinate system bounds map onto [-1e9, 1e9] on both
// axes; the quadrant decides which axes are flipped.
type Header struct {
	Bounds   orb.Bound
	Quadrant int

	xScale, yScale float64
	xDispl, yDispl float64
}

// NewHeader returns the transform for bounds. An invalid quadrant is
// replaced by 1.
func NewHeader(bounds orb.Bound, quadrant int) *Header {
	if quadrant < 0 || quadrant > 4 {
		quadrant = 1
	}
	h := &Header{Bounds: bounds, Quadrant: quadrant}

	w := bounds.Max[0] - bounds.Min[0]
	ht := bounds.Max[1] - bounds.Min[1]
	if w <= 0 {
		w = 1
	}
	if ht <= 0 {
		ht = 1
	}
	h.xScale = 2 * maxCoord / w
	h.yScale = 2 * maxCoord / ht
	h.xDispl = -h.xScale * (bounds.Max[0] + bounds.Min[0]) / 2
	h.yDispl = -h.yScale * (bounds.Max[1] + bounds.Min[1]) / 2
	return h
}

func (h *Header) flipX() bool { return h.Quadrant == 2 || h.Quadrant == 3 || h.Quadrant == 0 }
func (h *Header) flipY() bool { return h.Quadrant == 3 || h.Quadrant == 4 || h.Quadrant == 0 }

func clampCoord(v float64) int32 {
	v = math.Round(v)
	switch {
	case v > maxCoord:
		return maxCoord
	case v < -maxCoord:
		return -maxCoord
	}
	return int32(v)
}

// ToFixed converts world coordinates to integer coordinates, clamped to the
// file's range.
func (h *Header) ToFixed(x, y float64) (int32, int32) {
	fx := x*h.xScale + h.xDispl
	fy := y*h.yScale + h.yDispl
	if h.flipX() {
		fx = -fx
	}
	if h.flipY() {
		fy = -fy
	}
	return clampCoord(fx), clampCoord(fy)
}

// ToWorld converts integer coordinates to world coordinates.
func (h *Header) ToWorld(x, y int32) (float64, float64) {
	fx, fy := float64(x), float64(y)
	if h.flipX() {
		fx = -fx
	}
	if h.flipY() {
		fy = -fy
	}
	return (fx - h.xDispl) / h.xScale, (fy - h.yDispl) / h.yScale
}

// ToFixedDist converts a distance to integer units.
func (h *Header) ToFixedDist(dx, dy float64) (int32, int32) {
	return int32(math.Round(dx * h.xScale)), int32(math.Round(dy * h.yScale))
}

// ToWorldDist converts an integer distance to world units.
func (h *Header) ToWorldDist(dx, dy int32) (float64, float64) {
	return float64(dx) / h.xScale, float64(dy) / h.yScale
}

// Resolution returns the world size of one integer unit on each axis.
func (h *Header) Resolution() (float64, float64) {
	return 1 / h.xScale, 1 / h.yScale
}
