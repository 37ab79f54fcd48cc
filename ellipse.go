package mitab

import (
	"fmt"
	"io"
	"math"

	"github.com/paulmach/orb"
)

// Ellipse is an axis aligned ellipse. It is stored as its bounding box and
// read back as a 180 segment polygon.
type Ellipse struct {
	Envelope
	FeaturePen
	FeatureBrush

	Center  orb.Point
	XRadius float64
	YRadius float64
}

// NewEllipse returns an ellipse centered on c.
func NewEllipse(c orb.Point, rx, ry float64) *Ellipse {
	e := newEllipse(GeomEllipse)
	e.Center, e.XRadius, e.YRadius = c, rx, ry
	e.SetGeometry(ellipsePolygon(c, rx, ry))
	return e
}

func newEllipse(t GeomType) *Ellipse {
	return &Ellipse{
		Envelope:     newEnvelope(t, nil),
		FeaturePen:   newFeaturePen(),
		FeatureBrush: newFeatureBrush(),
	}
}

func ellipsePolygon(c orb.Point, rx, ry float64) orb.Polygon {
	line := GenerateArc(nil, 180, c, rx, ry, 0, 2*math.Pi)
	return orb.Polygon{CloseRing(orb.Ring(line))}
}

// UpdateBounds sets the bounds to the center plus or minus the radii. Zero
// radii are first taken from the geometry's envelope.
func (e *Ellipse) UpdateBounds(s Storage) error {
	switch e.geometry.(type) {
	case nil:
		return ErrNilGeometry
	case orb.Polygon, orb.Point:
	default:
		return fmt.Errorf("%w: %s for ellipse", ErrInvalidGeometry, geometryName(e.geometry))
	}
	b := e.geometry.Bound()
	e.Center = b.Center()
	if e.XRadius == 0 && e.YRadius == 0 {
		e.XRadius = (b.Max[0] - b.Min[0]) / 2
		e.YRadius = (b.Max[1] - b.Min[1]) / 2
	}
	e.SetBound(
		orb.Point{e.Center[0] - e.XRadius, e.Center[1] - e.YRadius},
		orb.Point{e.Center[0] + e.XRadius, e.Center[1] + e.YRadius},
	)
	if s != nil {
		e.intBound = fixedBound(s, e.bound.Min[0], e.bound.Min[1], e.bound.Max[0], e.bound.Max[1])
	}
	return nil
}

func (e *Ellipse) ValidateType(s Storage) GeomType {
	if err := e.UpdateBounds(nil); err != nil {
		return e.rejectGeometry("ellipse")
	}
	e.typ = GeomEllipse
	e.forceUncompressed(s)
	return e.typ
}

func (e *Ellipse) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomEllipse); err != nil {
		return cur, err
	}
	h, ok := hdr.(*RectHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for ellipse", ErrUnexpectedType, hdr)
	}
	e.setFromRead(hdr)
	e.comprOrgX, e.comprOrgY = ComprOrigin(h.Bound)
	e.setBoundFromInt(s, h.Bound)

	e.Center = e.bound.Center()
	e.XRadius = (e.bound.Max[0] - e.bound.Min[0]) / 2
	e.YRadius = (e.bound.Max[1] - e.bound.Min[1]) / 2
	e.geometry = ellipsePolygon(e.Center, e.XRadius, e.YRadius)

	if !coordOnly {
		if err := e.readPen(s, int(h.PenID)); err != nil {
			return cur, err
		}
		if err := e.readBrush(s, int(h.BrushID)); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (e *Ellipse) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := e.checkWrite(hdr); err != nil {
		return cur, err
	}
	h, ok := hdr.(*RectHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for ellipse", ErrTypeMismatch, hdr)
	}
	h.Bound = e.intBound

	h.PenID = indexByte(e.FeaturePen.Index)
	h.BrushID = indexByte(e.FeatureBrush.Index)
	if !coordOnly {
		var err error
		if h.PenID, err = e.writePen(s); err != nil {
			return cur, err
		}
		if h.BrushID, err = e.writeBrush(s); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (e *Ellipse) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	b := e.bound
	d.printf("ELLIPSE %.15g %.15g %.15g %.15g\n", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	e.DumpPenDef(d)
	e.DumpBrushDef(d)
	return d.err
}

func (e *Ellipse) StyleString() string {
	return e.memoStyle(func() string { return penBrushStyle(&e.FeaturePen, &e.FeatureBrush) })
}

func (e *Ellipse) SetStyleString(style string) error {
	e.ResetStyleString()
	return setPenBrushStyle(style, &e.FeaturePen, &e.FeatureBrush)
}
