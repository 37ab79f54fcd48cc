package mitab

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature is a map object: a geometry plus the type code, bounds and
// drawing tools it is stored with.
//
// On the write path, ValidateType must be called before WriteGeometry. It
// selects the object type and computes the integer bounds; the header passed
// to WriteGeometry must carry that type.
type Feature interface {
	// Base returns the envelope shared by every kind of feature.
	Base() *Envelope

	// ValidateType inspects the geometry, selects the object type and
	// refreshes both bounds. The integer bounds are only recomputed when s
	// is not nil. It returns GeomNone when the geometry is missing or of
	// the wrong kind.
	ValidateType(s Storage) GeomType

	// ReadGeometry decodes the geometry described by hdr. When coordOnly is
	// set, pen, brush, font and symbol definitions are not resolved. A nil
	// cur makes the codec open a cursor at the header's coordinate pointer.
	// The returned cursor is positioned after the object's coordinate data.
	ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error)

	// WriteGeometry encodes the geometry, filling hdr. When cur is nil the
	// storage's append cursor is used.
	WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error)

	// UpdateBounds recomputes the float bounds from the geometry, and the
	// integer bounds too when s is not nil.
	UpdateBounds(s Storage) error

	// Dump writes a MIF-like text rendering of the feature.
	Dump(w io.Writer) error

	// StyleString returns the OGR feature style string of the feature's
	// drawing tools. It is computed once and cached.
	StyleString() string

	// SetStyleString updates the drawing tools from an OGR feature style
	// string.
	SetStyleString(style string) error
}

// Envelope carries what every feature has in common.
type Envelope struct {
	ID         int32
	Properties geojson.Properties

	geometry  orb.Geometry
	typ       GeomType
	bound     orb.Bound
	intBound  IntBound
	comprOrgX int32
	comprOrgY int32

	style     string
	styleDone bool
}

func newEnvelope(t GeomType, g orb.Geometry) Envelope {
	e := Envelope{typ: t, geometry: g, Properties: geojson.Properties{}}
	if g != nil {
		e.bound = g.Bound()
	}
	return e
}

func (e *Envelope) Base() *Envelope { return e }

// Geometry returns the feature's geometry, nil when it has none.
func (e *Envelope) Geometry() orb.Geometry { return e.geometry }

// SetGeometry replaces the geometry. The object type is only updated by the
// next ValidateType call.
func (e *Envelope) SetGeometry(g orb.Geometry) {
	e.geometry = g
	if g != nil {
		e.bound = g.Bound()
	}
}

// Type returns the object type selected by the last ValidateType or read.
func (e *Envelope) Type() GeomType { return e.typ }

// Bound returns the float bounds.
func (e *Envelope) Bound() orb.Bound { return e.bound }

// SetBound sets the float bounds from two corners in any order.
func (e *Envelope) SetBound(a, b orb.Point) {
	e.bound = orb.Bound{
		Min: orb.Point{min(a[0], b[0]), min(a[1], b[1])},
		Max: orb.Point{max(a[0], b[0]), max(a[1], b[1])},
	}
}

// IntBound returns the bounds in the file's integer space.
func (e *Envelope) IntBound() IntBound { return e.intBound }

// SetIntBound sets the integer bounds. The float bounds are not touched.
func (e *Envelope) SetIntBound(b IntBound) {
	e.intBound = NewIntBound(b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// ComprOrigin returns the origin compressed coordinates are relative to.
func (e *Envelope) ComprOrigin() (x, y int32) { return e.comprOrgX, e.comprOrgY }

// IsCompressed reports whether the selected type stores 16-bit deltas.
func (e *Envelope) IsCompressed() bool { return e.typ.IsCompressed() }

// ForceCoordTypeAndOrigin sets the object type, compression, origin and
// integer bounds at once, without deciding compression from the bounds.
// Collections use it to make their parts agree.
func (e *Envelope) ForceCoordTypeAndOrigin(t GeomType, compressed bool, orgX, orgY int32, b IntBound) {
	e.typ = t.withCompression(compressed)
	e.comprOrgX, e.comprOrgY = orgX, orgY
	e.intBound = b
}

// validateCoordType refreshes the integer bounds when s is set, then picks
// the compressed or uncompressed variant of the current type and the
// matching origin.
func (e *Envelope) validateCoordType(s Storage) bool {
	if s != nil {
		e.intBound = fixedBound(s, e.bound.Min[0], e.bound.Min[1], e.bound.Max[0], e.bound.Max[1])
	}
	compr := DecideCompression(e.intBound)
	e.comprOrgX, e.comprOrgY = ComprOrigin(e.intBound)
	e.typ = e.typ.withCompression(compr)
	return compr
}

// forceUncompressed selects the uncompressed variant for object kinds that
// are always written with absolute coordinates.
func (e *Envelope) forceUncompressed(s Storage) {
	if s != nil {
		e.intBound = fixedBound(s, e.bound.Min[0], e.bound.Min[1], e.bound.Max[0], e.bound.Max[1])
	}
	e.comprOrgX, e.comprOrgY = ComprOrigin(e.intBound)
	e.typ = e.typ.Uncompressed()
}

// UpdateBounds recomputes the float bounds from the geometry's envelope.
func (e *Envelope) UpdateBounds(s Storage) error {
	if e.geometry == nil {
		return ErrNilGeometry
	}
	b := e.geometry.Bound()
	e.SetBound(b.Min, b.Max)
	if s != nil {
		e.intBound = fixedBound(s, b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	}
	return nil
}

// memoStyle returns the cached style string, computing it with f on first
// use.
func (e *Envelope) memoStyle(f func() string) string {
	if !e.styleDone {
		e.style = f()
		e.styleDone = true
	}
	return e.style
}

// ResetStyleString drops the cached style string. Call it after changing a
// drawing tool directly.
func (e *Envelope) ResetStyleString() {
	e.style, e.styleDone = "", false
}

// setFromRead records what is common to every decoded object.
func (e *Envelope) setFromRead(hdr ObjHeader) {
	b := hdr.Common()
	e.typ = b.Type
	e.ID = b.ID
	e.intBound = b.Bound
	e.ResetStyleString()
}

// acceptRead fails with ErrUnexpectedType unless the header's type is one
// of types, compressed or not.
func acceptRead(hdr ObjHeader, types ...GeomType) error {
	t := hdr.Common().Type
	if !t.Uncompressed().oneOf(types...) {
		return fmt.Errorf("%w: %s", ErrUnexpectedType, t)
	}
	return nil
}

// checkWrite fails with ErrTypeMismatch unless hdr carries the type selected
// by the last ValidateType.
func (e *Envelope) checkWrite(hdr ObjHeader) error {
	if e.typ == GeomNone || e.typ == GeomUnset {
		return fmt.Errorf("%w: object %d has no valid type", ErrTypeMismatch, e.ID)
	}
	if t := hdr.Common().Type; t != e.typ {
		return fmt.Errorf("%w: header %s, feature %s", ErrTypeMismatch, t, e.typ)
	}
	return nil
}

// rejectGeometry logs a geometry that the feature kind cannot store and
// resets the type to GeomNone.
func (e *Envelope) rejectGeometry(kind string) GeomType {
	Logger().Warn("geometry does not match object kind",
		slog.String("kind", kind),
		slog.String("geometry", geometryName(e.geometry)),
		slog.Int("id", int(e.ID)))
	e.typ = GeomNone
	return GeomNone
}

func geometryName(g orb.Geometry) string {
	if g == nil {
		return "none"
	}
	return g.GeoJSONType()
}

// toWorld converts an integer coordinate to an orb point.
func toWorld(s Storage, x, y int32) orb.Point {
	wx, wy := s.ToWorld(x, y)
	return orb.Point{wx, wy}
}

// setBoundFromInt sets the float bounds from integer bounds.
func (e *Envelope) setBoundFromInt(s Storage, b IntBound) {
	e.SetBound(toWorld(s, b.MinX, b.MinY), toWorld(s, b.MaxX, b.MaxY))
}

// NoGeometry is a feature without a geometry. It is also what the factory
// returns for object types it has no codec for.
type NoGeometry struct {
	Envelope
}

// NewNoGeometry returns an empty feature.
func NewNoGeometry() *NoGeometry {
	return &NoGeometry{Envelope: newEnvelope(GeomNone, nil)}
}

func (f *NoGeometry) ValidateType(Storage) GeomType {
	f.typ = GeomNone
	return GeomNone
}

func (f *NoGeometry) ReadGeometry(_ Storage, hdr ObjHeader, _ bool, cur *Cursor) (*Cursor, error) {
	f.ID = hdr.Common().ID
	return cur, nil
}

func (f *NoGeometry) WriteGeometry(_ Storage, _ ObjHeader, _ bool, cur *Cursor) (*Cursor, error) {
	return cur, nil
}

func (f *NoGeometry) Dump(w io.Writer) error {
	_, err := fmt.Fprintln(w, "NONE")
	return err
}

func (f *NoGeometry) StyleString() string { return "" }

func (f *NoGeometry) SetStyleString(string) error { return nil }

// NewFeature returns an empty feature of the kind that reads objects of type
// t. Unsupported types yield a *NoGeometry and a warning; they never fail.
func NewFeature(t GeomType) Feature {
	switch u := t.Uncompressed(); {
	case u == GeomSymbol:
		return newPoint(t)
	case u == GeomFontSymbol:
		return newFontPoint(t)
	case u == GeomCustomSymbol:
		return newCustomPoint(t)
	case u == GeomLine || u == GeomPLine || t.isMultiPLine():
		return newPolyline(t, nil)
	case t.isRegion():
		return newRegion(t, nil)
	case u == GeomRect || u == GeomRoundRect:
		return newRectangle(t)
	case u == GeomEllipse:
		return newEllipse(t)
	case u == GeomArc:
		return newArc(t)
	case u == GeomText:
		return newText(t)
	case t.isMultiPoint():
		return newMultiPoint(t, nil)
	case t.isCollection():
		return newCollection(t)
	case t == GeomNone:
		return NewNoGeometry()
	}
	Logger().Warn("unsupported object type, reading it without geometry",
		slog.String("type", t.String()), slog.Int("code", int(t)))
	return NewNoGeometry()
}

// FromGeometry returns a feature for writing g. Rings and bounds become
// regions, and collections are split by geometry kind.
func FromGeometry(g orb.Geometry) (Feature, error) {
	switch g := g.(type) {
	case nil:
		return NewNoGeometry(), nil
	case orb.Point:
		return NewPoint(g), nil
	case orb.LineString:
		return NewPolyline(g), nil
	case orb.MultiLineString:
		return NewPolyline(g), nil
	case orb.Polygon:
		return NewRegion(g), nil
	case orb.MultiPolygon:
		return NewRegion(g), nil
	case orb.Ring:
		return NewRegion(orb.Polygon{g}), nil
	case orb.Bound:
		return NewRegion(g.ToPolygon()), nil
	case orb.MultiPoint:
		return NewMultiPoint(g), nil
	case orb.Collection:
		c := NewCollection()
		if err := c.SetFromGeometry(g); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
}
