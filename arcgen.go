package mitab

import (
	"math"

	"github.com/paulmach/orb"
)

// GenerateArc appends segments+1 points along the elliptical arc centered on
// center with radii xRadius and yRadius, from angle start to angle end
// (radians). The arc always runs counter-clockwise: when end < start, end is
// moved one turn forward.
func GenerateArc(line orb.LineString, segments int, center orb.Point, xRadius, yRadius, start, end float64) orb.LineString {
	if segments < 1 {
		segments = 1
	}
	if end < start {
		end += 2 * math.Pi
	}

	step := (end - start) / float64(segments)
	for i := 0; i < segments; i++ {
		a := start + float64(i)*step
		line = append(line, orb.Point{
			center[0] + xRadius*math.Cos(a),
			center[1] + yRadius*math.Sin(a),
		})
	}
	line = append(line, orb.Point{
		center[0] + xRadius*math.Cos(end),
		center[1] + yRadius*math.Sin(end),
	})

	return line
}

// CloseRing appends the first point of r when r is not already closed.
func CloseRing(r orb.Ring) orb.Ring {
	if len(r) > 0 && !r[0].Equal(r[len(r)-1]) {
		r = append(r, r[0])
	}
	return r
}

// arcSegments returns the number of 2 degree segments used to draw an arc
// between two angles given in degrees.
func arcSegments(startDeg, endDeg float64) int {
	var n int
	if endDeg < startDeg {
		n = int(math.Abs((endDeg+360-startDeg)/2) + 1)
	} else {
		n = int(math.Abs((endDeg-startDeg)/2) + 1)
	}
	return max(2, n)
}

// normalizeAngle folds an angle in degrees into [0, 360]. Non-finite
// angles become 0.
func normalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	if a < 0 || a > 360 {
		a = math.Mod(a, 360)
		if a < 0 {
			a += 360
		}
	}
	return a
}

func degToRad(a float64) float64 { return a * math.Pi / 180 }
