package mitab

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
)

// MultiPoint is a set of points sharing one symbol.
type MultiPoint struct {
	Envelope
	FeatureSymbol

	center    orb.Point
	centerSet bool
}

// NewMultiPoint returns a multipoint feature with the default symbol.
func NewMultiPoint(mp orb.MultiPoint) *MultiPoint {
	return newMultiPoint(GeomMultiPoint, mp)
}

func newMultiPoint(t GeomType, mp orb.MultiPoint) *MultiPoint {
	var g orb.Geometry
	if mp != nil {
		g = mp
	}
	return &MultiPoint{Envelope: newEnvelope(t, g), FeatureSymbol: newFeatureSymbol()}
}

func (m *MultiPoint) points() orb.MultiPoint {
	mp, _ := m.geometry.(orb.MultiPoint)
	return mp
}

// NumPoints returns the number of points.
func (m *MultiPoint) NumPoints() int { return len(m.points()) }

// Center returns the label point, the first point unless set explicitly.
func (m *MultiPoint) Center() (orb.Point, bool) {
	if m.centerSet {
		return m.center, true
	}
	if mp := m.points(); len(mp) > 0 {
		return mp[0], true
	}
	return orb.Point{}, false
}

func (m *MultiPoint) SetCenter(c orb.Point) { m.center, m.centerSet = c, true }

func (m *MultiPoint) ValidateType(s Storage) GeomType {
	mp, ok := m.geometry.(orb.MultiPoint)
	if !ok || len(mp) == 0 {
		return m.rejectGeometry("multipoint")
	}
	m.typ = GeomMultiPoint
	if len(mp) > MaxMultiPointVertices650 {
		m.typ = GeomV800MultiPoint
	}
	b := mp.Bound()
	m.SetBound(b.Min, b.Max)
	m.validateCoordType(s)
	return m.typ
}

func (m *MultiPoint) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomMultiPoint, GeomV800MultiPoint); err != nil {
		return cur, err
	}
	h, ok := hdr.(*MultiPointHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for multipoint", ErrUnexpectedType, hdr)
	}
	m.setFromRead(hdr)

	var err error
	if cur, err = coordCursor(s, cur, h.CoordBlockPtr); err != nil {
		return cur, err
	}
	cur.SetComprOrigin(h.ComprOrgX, h.ComprOrgY)
	m.comprOrgX, m.comprOrgY = h.ComprOrgX, h.ComprOrgY

	pts, err := readVertices(s, cur, h.compressed(), int64(h.NumPoints))
	if err != nil {
		return cur, fmt.Errorf("read multipoint %d: %w", h.ID, err)
	}
	m.geometry = orb.MultiPoint(pts)
	m.setBoundFromInt(s, h.Bound)
	m.SetCenter(toWorld(s, h.LabelX, h.LabelY))

	if !coordOnly {
		if err := m.readSymbol(s, int(h.SymbolID)); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (m *MultiPoint) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := m.checkWrite(hdr); err != nil {
		return cur, err
	}
	h, ok := hdr.(*MultiPointHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for multipoint", ErrTypeMismatch, hdr)
	}
	mp, ok := m.geometry.(orb.MultiPoint)
	if !ok {
		return cur, fmt.Errorf("%w: %s for multipoint", ErrInvalidGeometry, geometryName(m.geometry))
	}

	cur = writeCursor(s, cur)
	cur.StartNewFeature()
	h.CoordBlockPtr = int32(cur.Address())
	cur.SetComprOrigin(m.comprOrgX, m.comprOrgY)
	if err := writeVertices(s, cur, m.IsCompressed(), mp); err != nil {
		return cur, err
	}

	h.NumPoints = int32(len(mp))
	h.ComprOrgX, h.ComprOrgY = m.comprOrgX, m.comprOrgY
	h.Bound = m.intBound
	if c, ok := m.Center(); ok {
		h.LabelX, h.LabelY = s.ToFixed(c[0], c[1])
	}

	h.SymbolID = indexByte(m.FeatureSymbol.Index)
	if !coordOnly {
		var err error
		if h.SymbolID, err = m.writeSymbol(s); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (m *MultiPoint) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	mp := m.points()
	d.printf("MULTIPOINT %d\n", len(mp))
	d.points(mp)
	if c, ok := m.Center(); ok {
		d.printf("    CENTER %.15g %.15g\n", c[0], c[1])
	}
	m.DumpSymbolDef(d)
	return d.err
}

func (m *MultiPoint) StyleString() string {
	return m.memoStyle(func() string { return m.SymbolStyleString(0) })
}

func (m *MultiPoint) SetStyleString(style string) error {
	m.ResetStyleString()
	return m.SetSymbolFromStyleString(style)
}
