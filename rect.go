package mitab

import (
	"fmt"
	"io"
	"math"

	"github.com/paulmach/orb"
)

// Rectangle is an axis aligned box, optionally with rounded corners. Only
// its bound is stored; the polygon is generated when it is read.
type Rectangle struct {
	Envelope
	FeaturePen
	FeatureBrush

	RoundCorners bool
	// Corner radii in world units.
	RoundXRadius float64
	RoundYRadius float64
}

// NewRectangle returns a rectangle covering b.
func NewRectangle(b orb.Bound) *Rectangle {
	r := newRectangle(GeomRect)
	r.SetGeometry(b.ToPolygon())
	return r
}

// NewRoundRectangle returns a rectangle covering b with elliptical corners
// of radii rx and ry.
func NewRoundRectangle(b orb.Bound, rx, ry float64) *Rectangle {
	r := newRectangle(GeomRoundRect)
	r.RoundCorners = true
	r.RoundXRadius, r.RoundYRadius = rx, ry
	r.SetGeometry(orb.Polygon{roundRectRing(b, rx, ry)})
	return r
}

func newRectangle(t GeomType) *Rectangle {
	return &Rectangle{
		Envelope:     newEnvelope(t, nil),
		FeaturePen:   newFeaturePen(),
		FeatureBrush: newFeatureBrush(),
	}
}

// rectRing returns the closed ring of b, starting at its minimum corner.
func rectRing(b orb.Bound) orb.Ring {
	return orb.Ring{
		b.Min,
		{b.Max[0], b.Min[1]},
		b.Max,
		{b.Min[0], b.Max[1]},
		b.Min,
	}
}

// roundRectRing returns the ring of b with each corner replaced by a
// quarter ellipse. Radii are limited to half the box.
func roundRectRing(b orb.Bound, rx, ry float64) orb.Ring {
	rx = min(rx, (b.Max[0]-b.Min[0])/2)
	ry = min(ry, (b.Max[1]-b.Min[1])/2)

	var line orb.LineString
	line = GenerateArc(line, 45, orb.Point{b.Min[0] + rx, b.Min[1] + ry}, rx, ry, math.Pi, 3*math.Pi/2)
	line = GenerateArc(line, 45, orb.Point{b.Max[0] - rx, b.Min[1] + ry}, rx, ry, 3*math.Pi/2, 2*math.Pi)
	line = GenerateArc(line, 45, orb.Point{b.Max[0] - rx, b.Max[1] - ry}, rx, ry, 0, math.Pi/2)
	line = GenerateArc(line, 45, orb.Point{b.Min[0] + rx, b.Max[1] - ry}, rx, ry, math.Pi/2, math.Pi)
	return CloseRing(orb.Ring(line))
}

func (r *Rectangle) ValidateType(s Storage) GeomType {
	if _, ok := r.geometry.(orb.Polygon); !ok {
		return r.rejectGeometry("rectangle")
	}
	r.typ = GeomRect
	if r.RoundCorners {
		r.typ = GeomRoundRect
	}
	b := r.geometry.Bound()
	r.SetBound(b.Min, b.Max)
	r.forceUncompressed(s)
	return r.typ
}

func (r *Rectangle) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomRect, GeomRoundRect); err != nil {
		return cur, err
	}
	h, ok := hdr.(*RectHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for rectangle", ErrUnexpectedType, hdr)
	}
	r.setFromRead(hdr)
	r.comprOrgX, r.comprOrgY = ComprOrigin(h.Bound)
	r.setBoundFromInt(s, h.Bound)

	r.RoundCorners = h.Type.Uncompressed() == GeomRoundRect
	if r.RoundCorners {
		w, ht := s.ToWorldDist(h.CornerWidth, h.CornerHeight)
		r.RoundXRadius, r.RoundYRadius = math.Abs(w)/2, math.Abs(ht)/2
		r.geometry = orb.Polygon{roundRectRing(r.bound, r.RoundXRadius, r.RoundYRadius)}
	} else {
		r.RoundXRadius, r.RoundYRadius = 0, 0
		r.geometry = orb.Polygon{rectRing(r.bound)}
	}

	if !coordOnly {
		if err := r.readPen(s, int(h.PenID)); err != nil {
			return cur, err
		}
		if err := r.readBrush(s, int(h.BrushID)); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (r *Rectangle) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := r.checkWrite(hdr); err != nil {
		return cur, err
	}
	h, ok := hdr.(*RectHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for rectangle", ErrTypeMismatch, hdr)
	}
	h.Bound = r.intBound
	if r.RoundCorners {
		w, ht := s.ToFixedDist(r.RoundXRadius*2, r.RoundYRadius*2)
		h.CornerWidth, h.CornerHeight = abs32(w), abs32(ht)
	}

	h.PenID = indexByte(r.FeaturePen.Index)
	h.BrushID = indexByte(r.FeatureBrush.Index)
	if !coordOnly {
		var err error
		if h.PenID, err = r.writePen(s); err != nil {
			return cur, err
		}
		if h.BrushID, err = r.writeBrush(s); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func (r *Rectangle) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	b := r.bound
	if r.RoundCorners {
		d.printf("ROUNDRECT %.15g %.15g %.15g %.15g %.15g %.15g\n",
			b.Min[0], b.Min[1], b.Max[0], b.Max[1], r.RoundXRadius*2, r.RoundYRadius*2)
	} else {
		d.printf("RECT %.15g %.15g %.15g %.15g\n", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	}
	if poly, ok := r.geometry.(orb.Polygon); ok && len(poly) > 0 {
		d.printf("  %d\n", len(poly[0]))
		d.points(poly[0])
	}
	r.DumpPenDef(d)
	r.DumpBrushDef(d)
	return d.err
}

func (r *Rectangle) StyleString() string {
	return r.memoStyle(func() string { return penBrushStyle(&r.FeaturePen, &r.FeatureBrush) })
}

func (r *Rectangle) SetStyleString(style string) error {
	r.ResetStyleString()
	return setPenBrushStyle(style, &r.FeaturePen, &r.FeatureBrush)
}
