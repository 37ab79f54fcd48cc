package mitab

import (
	"fmt"
	"io"
	"math"

	"github.com/paulmach/orb"
)

// Arc is a portion of an axis aligned ellipse drawn counter-clockwise from
// StartAngle to EndAngle (degrees). It is read back as a line string with
// one vertex every 2 degrees.
type Arc struct {
	Envelope
	FeaturePen

	StartAngle float64
	EndAngle   float64
	Center     orb.Point
	XRadius    float64
	YRadius    float64
}

// NewArc returns an arc of the ellipse centered on c.
func NewArc(c orb.Point, rx, ry, start, end float64) *Arc {
	a := newArc(GeomArc)
	a.Center, a.XRadius, a.YRadius = c, rx, ry
	a.SetStartAngle(start)
	a.SetEndAngle(end)
	a.SetGeometry(a.generate())
	return a
}

func newArc(t GeomType) *Arc {
	return &Arc{Envelope: newEnvelope(t, nil), FeaturePen: newFeaturePen()}
}

// SetStartAngle sets the start angle in degrees, folded into [0, 360].
func (a *Arc) SetStartAngle(deg float64) { a.StartAngle = normalizeAngle(deg) }

// SetEndAngle sets the end angle in degrees, folded into [0, 360].
func (a *Arc) SetEndAngle(deg float64) { a.EndAngle = normalizeAngle(deg) }

func (a *Arc) generate() orb.LineString {
	return GenerateArc(nil, arcSegments(a.StartAngle, a.EndAngle), a.Center,
		a.XRadius, a.YRadius, degToRad(a.StartAngle), degToRad(a.EndAngle))
}

// UpdateBounds sets the bounds to the envelope of the arc. A point geometry
// is taken as the center of the ellipse.
func (a *Arc) UpdateBounds(s Storage) error {
	var b orb.Bound
	switch g := a.geometry.(type) {
	case nil:
		return ErrNilGeometry
	case orb.LineString:
		b = g.Bound()
	case orb.Point:
		a.Center = g
		b = a.generate().Bound()
	default:
		return fmt.Errorf("%w: %s for arc", ErrInvalidGeometry, geometryName(a.geometry))
	}
	a.SetBound(b.Min, b.Max)
	if s != nil {
		a.intBound = fixedBound(s, b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	}
	return nil
}

func (a *Arc) ValidateType(s Storage) GeomType {
	if err := a.UpdateBounds(nil); err != nil {
		return a.rejectGeometry("arc")
	}
	a.typ = GeomArc
	a.forceUncompressed(s)
	return a.typ
}

// quadrantAngles converts angles stored in the file to angles in world
// space. Files whose coordinate origin is not in quadrant 1 store the arc
// with one or both axes flipped.
func quadrantAngles(quadrant int, start, end float64) (float64, float64) {
	if quadrant == 2 || quadrant == 4 {
		start, end = end, start
	}
	if quadrant == 0 || quadrant == 2 || quadrant == 3 {
		flip := func(a float64) float64 {
			if a <= 180 {
				return 180 - a
			}
			return 540 - a
		}
		start, end = flip(start), flip(end)
	}
	if quadrant == 0 || quadrant == 3 || quadrant == 4 {
		start, end = 360-start, 360-end
	}
	return start, end
}

func (a *Arc) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomArc); err != nil {
		return cur, err
	}
	h, ok := hdr.(*ArcHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for arc", ErrUnexpectedType, hdr)
	}
	a.setFromRead(hdr)
	a.comprOrgX, a.comprOrgY = ComprOrigin(h.Bound)

	a.StartAngle, a.EndAngle = quadrantAngles(s.Quadrant(), float64(h.StartAngle)/10, float64(h.EndAngle)/10)

	p1 := toWorld(s, h.Ellipse.MinX, h.Ellipse.MinY)
	p2 := toWorld(s, h.Ellipse.MaxX, h.Ellipse.MaxY)
	a.Center = orb.Point{(p1[0] + p2[0]) / 2, (p1[1] + p2[1]) / 2}
	a.XRadius = math.Abs(p2[0]-p1[0]) / 2
	a.YRadius = math.Abs(p2[1]-p1[1]) / 2

	a.geometry = a.generate()
	a.setBoundFromInt(s, h.Bound)

	if !coordOnly {
		if err := a.readPen(s, int(h.PenID)); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

// WriteGeometry stores the angles flipped for the file's quadrant. The
// conversion is its own inverse, so reads restore the world angles.
func (a *Arc) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := a.checkWrite(hdr); err != nil {
		return cur, err
	}
	h, ok := hdr.(*ArcHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for arc", ErrTypeMismatch, hdr)
	}
	start, end := quadrantAngles(s.Quadrant(), a.StartAngle, a.EndAngle)
	h.StartAngle = int16(math.Round(start * 10))
	h.EndAngle = int16(math.Round(end * 10))
	h.Ellipse = fixedBound(s,
		a.Center[0]-a.XRadius, a.Center[1]-a.YRadius,
		a.Center[0]+a.XRadius, a.Center[1]+a.YRadius)
	h.Bound = a.intBound

	h.PenID = indexByte(a.FeaturePen.Index)
	if !coordOnly {
		var err error
		if h.PenID, err = a.writePen(s); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (a *Arc) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	d.printf("ARC %.15g %.15g %.15g %.15g\n",
		a.Center[0]-a.XRadius, a.Center[1]-a.YRadius,
		a.Center[0]+a.XRadius, a.Center[1]+a.YRadius)
	d.printf("  %g %g\n", a.StartAngle, a.EndAngle)
	if line, ok := a.geometry.(orb.LineString); ok {
		d.printf("  %d\n", len(line))
		d.points(line)
	}
	a.DumpPenDef(d)
	return d.err
}

func (a *Arc) StyleString() string {
	return a.memoStyle(a.PenStyleString)
}

func (a *Arc) SetStyleString(style string) error {
	a.ResetStyleString()
	return a.SetPenFromStyleString(style)
}
