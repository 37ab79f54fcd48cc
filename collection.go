package mitab

import (
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
)

// Collection holds at most one region, one polyline and one multipoint,
// stored as a single object. Its geometry is an orb.Collection of the
// parts that are set, kept in sync by the Set methods.
//
// All parts share the collection's compression and origin: ValidateType
// forces them after validating each part.
type Collection struct {
	Envelope

	region   *Region
	polyline *Polyline
	mpoint   *MultiPoint
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return newCollection(GeomCollection)
}

func newCollection(t GeomType) *Collection {
	return &Collection{Envelope: newEnvelope(t, orb.Collection{})}
}

func (c *Collection) Region() *Region         { return c.region }
func (c *Collection) Polyline() *Polyline     { return c.polyline }
func (c *Collection) MultiPoint() *MultiPoint { return c.mpoint }

// SetRegion replaces the region part. A nil r removes it.
func (c *Collection) SetRegion(r *Region) {
	c.region = r
	var g orb.Geometry
	if r != nil {
		g = r.Geometry()
	}
	c.syncGeometry(isAreal, g)
}

// SetPolyline replaces the polyline part. A nil p removes it.
func (c *Collection) SetPolyline(p *Polyline) {
	c.polyline = p
	var g orb.Geometry
	if p != nil {
		g = p.Geometry()
	}
	c.syncGeometry(isLineal, g)
}

// SetMultiPoint replaces the multipoint part. A nil m removes it.
func (c *Collection) SetMultiPoint(m *MultiPoint) {
	c.mpoint = m
	var g orb.Geometry
	if m != nil {
		g = m.Geometry()
	}
	c.syncGeometry(isPuntal, g)
}

func isAreal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	}
	return false
}

func isLineal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.LineString, orb.MultiLineString:
		return true
	}
	return false
}

func isPuntal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Point, orb.MultiPoint:
		return true
	}
	return false
}

// syncGeometry removes every member matching kind from the collection
// geometry, then appends g when it is not nil.
func (c *Collection) syncGeometry(kind func(orb.Geometry) bool, g orb.Geometry) {
	old, _ := c.geometry.(orb.Collection)
	coll := make(orb.Collection, 0, len(old)+1)
	for _, m := range old {
		if !kind(m) {
			coll = append(coll, m)
		}
	}
	if g != nil {
		coll = append(coll, g)
	}
	c.geometry = coll
	if len(coll) > 0 {
		c.bound = coll.Bound()
	}
	c.ResetStyleString()
}

// SetFromGeometry replaces all three parts from g. Polygons are merged into
// one region, lines into one polyline and points into one multipoint.
// Nested collections are flattened.
func (c *Collection) SetFromGeometry(g orb.Collection) error {
	var (
		polys  orb.MultiPolygon
		lines  orb.MultiLineString
		points orb.MultiPoint
	)
	var walk func(orb.Collection) error
	walk = func(coll orb.Collection) error {
		for _, m := range coll {
			switch m := m.(type) {
			case orb.Point:
				points = append(points, m)
			case orb.MultiPoint:
				points = append(points, m...)
			case orb.LineString:
				lines = append(lines, m)
			case orb.MultiLineString:
				lines = append(lines, m...)
			case orb.Polygon:
				polys = append(polys, m)
			case orb.MultiPolygon:
				polys = append(polys, m...)
			case orb.Ring:
				polys = append(polys, orb.Polygon{m})
			case orb.Bound:
				polys = append(polys, m.ToPolygon())
			case orb.Collection:
				if err := walk(m); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: %T in collection", ErrUnsupportedGeometry, m)
			}
		}
		return nil
	}
	if err := walk(g); err != nil {
		return err
	}

	c.geometry = orb.Collection{}
	switch len(polys) {
	case 0:
		c.SetRegion(nil)
	case 1:
		c.SetRegion(NewRegion(polys[0]))
	default:
		c.SetRegion(NewRegion(polys))
	}
	switch len(lines) {
	case 0:
		c.SetPolyline(nil)
	case 1:
		c.SetPolyline(NewPolyline(lines[0]))
	default:
		c.SetPolyline(NewPolyline(lines))
	}
	if len(points) == 0 {
		c.SetMultiPoint(nil)
	} else {
		c.SetMultiPoint(NewMultiPoint(points))
	}
	return nil
}

// parts returns the parts that are set, in storage order.
func (c *Collection) parts() []Feature {
	var out []Feature
	if c.region != nil {
		out = append(out, c.region)
	}
	if c.polyline != nil {
		out = append(out, c.polyline)
	}
	if c.mpoint != nil {
		out = append(out, c.mpoint)
	}
	return out
}

func (c *Collection) UpdateBounds(s Storage) error {
	coll, _ := c.geometry.(orb.Collection)
	if len(coll) == 0 {
		return ErrNilGeometry
	}
	b := coll.Bound()
	c.SetBound(b.Min, b.Max)
	if s != nil {
		c.intBound = fixedBound(s, b.Min[0], b.Min[1], b.Max[0], b.Max[1])
	}
	return nil
}

func (c *Collection) ValidateType(s Storage) GeomType {
	parts := c.parts()
	if len(parts) == 0 {
		return c.rejectGeometry("collection")
	}
	if err := c.UpdateBounds(nil); err != nil {
		return c.rejectGeometry("collection")
	}

	c.typ = GeomCollection
	compr := c.validateCoordType(s)

	version := 650
	for _, p := range parts {
		t := p.ValidateType(s)
		if t == GeomNone {
			return c.rejectGeometry("collection")
		}
		version = max(version, t.Version())
	}
	if version >= 800 {
		c.typ = GeomV800Collection.withCompression(compr)
	}

	v800 := version >= 800
	if r := c.region; r != nil {
		t := GeomV450Region
		if v800 {
			t = GeomV800Region
		}
		r.ForceCoordTypeAndOrigin(t, compr, c.comprOrgX, c.comprOrgY, r.intBound)
	}
	if p := c.polyline; p != nil {
		t := GeomV450MultiPLine
		if v800 {
			t = GeomV800MultiPLine
		}
		p.ForceCoordTypeAndOrigin(t, compr, c.comprOrgX, c.comprOrgY, p.intBound)
	}
	if m := c.mpoint; m != nil {
		t := GeomMultiPoint
		if v800 {
			t = GeomV800MultiPoint
		}
		m.ForceCoordTypeAndOrigin(t, compr, c.comprOrgX, c.comprOrgY, m.intBound)
	}
	return c.typ
}

// readMiniHeader reads the label and MBR that precede a part's coordinate
// data. At v800 region and polyline parts repeat their section count first.
func readMiniHeader(c *Cursor, compressed, withCount bool) (count, lx, ly int32, b IntBound, err error) {
	if withCount {
		count, _ = c.ReadInt32()
	}
	lx, ly, _ = c.ReadIntCoord(compressed)
	b = c.readIntBound(compressed)
	return count, lx, ly, b, c.Err()
}

func writeMiniHeader(c *Cursor, compressed, withCount bool, count, lx, ly int32, b IntBound) error {
	if withCount {
		c.WriteInt32(count)
	}
	c.WriteIntCoord(lx, ly, compressed)
	return c.writeIntBound(b, compressed)
}

func (c *Collection) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomCollection, GeomV800Collection); err != nil {
		return cur, err
	}
	h, ok := hdr.(*CollectionHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for collection", ErrUnexpectedType, hdr)
	}
	c.setFromRead(hdr)
	compr := h.compressed()
	v800 := h.Type.Version() >= 800
	c.comprOrgX, c.comprOrgY = h.ComprOrgX, h.ComprOrgY
	c.region, c.polyline, c.mpoint = nil, nil, nil
	c.geometry = orb.Collection{}

	var err error
	if cur, err = coordCursor(s, cur, h.CoordBlockPtr); err != nil {
		return cur, err
	}
	cur.SetComprOrigin(h.ComprOrgX, h.ComprOrgY)

	// readPart reads one part's mini-header and hands the rest of its data
	// to the part's codec, leaving the cursor at the end of the part.
	readPart := func(f Feature, sub ObjHeader, sections int32, dataSize int32, sectioned bool) error {
		n, lx, ly, b, err := readMiniHeader(cur, compr, v800 && sectioned)
		if err != nil {
			return err
		}
		if v800 && sectioned && n != sections {
			return fmt.Errorf("%w: collection %d part has %d sections, header says %d",
				ErrCorrupt, h.ID, n, sections)
		}
		base := sub.Common()
		base.Bound = b
		switch sh := sub.(type) {
		case *PLineHeader:
			sh.LabelX, sh.LabelY = lx, ly
			sh.ComprOrgX, sh.ComprOrgY = h.ComprOrgX, h.ComprOrgY
		case *MultiPointHeader:
			sh.LabelX, sh.LabelY = lx, ly
			sh.ComprOrgX, sh.ComprOrgY = h.ComprOrgX, h.ComprOrgY
		}
		start := cur.Address()
		if cur, err = f.ReadGeometry(s, sub, coordOnly, cur); err != nil {
			return err
		}
		return cur.Seek(start + int64(dataSize))
	}

	if h.NumRegSections > 0 {
		t := GeomV450Region
		if v800 {
			t = GeomV800Region
		}
		t = t.withCompression(compr)
		r := newRegion(t, nil)
		sub := &PLineHeader{
			ObjBase:         ObjBase{Type: t, ID: h.ID},
			CoordDataSize:   h.RegionDataSize,
			NumLineSections: h.NumRegSections,
			PenID:           h.RegionPenID,
			BrushID:         h.RegionBrushID,
		}
		if err := readPart(r, sub, h.NumRegSections, h.RegionDataSize, true); err != nil {
			return cur, fmt.Errorf("read collection %d region: %w", h.ID, err)
		}
		c.SetRegion(r)
	}
	if h.NumPLineSections > 0 {
		t := GeomV450MultiPLine
		if v800 {
			t = GeomV800MultiPLine
		}
		t = t.withCompression(compr)
		p := newPolyline(t, nil)
		sub := &PLineHeader{
			ObjBase:         ObjBase{Type: t, ID: h.ID},
			CoordDataSize:   h.PolylineDataSize,
			NumLineSections: h.NumPLineSections,
			PenID:           h.PolylinePenID,
		}
		if err := readPart(p, sub, h.NumPLineSections, h.PolylineDataSize, true); err != nil {
			return cur, fmt.Errorf("read collection %d polyline: %w", h.ID, err)
		}
		c.SetPolyline(p)
	}
	if h.NumMultiPoints > 0 {
		t := GeomMultiPoint
		if v800 {
			t = GeomV800MultiPoint
		}
		t = t.withCompression(compr)
		m := newMultiPoint(t, nil)
		sub := &MultiPointHeader{
			ObjBase:   ObjBase{Type: t, ID: h.ID},
			NumPoints: h.NumMultiPoints,
			SymbolID:  h.MPointSymbolID,
		}
		if err := readPart(m, sub, 0, h.NumMultiPoints*sub.pointSize(), false); err != nil {
			return cur, fmt.Errorf("read collection %d multipoint: %w", h.ID, err)
		}
		c.SetMultiPoint(m)
	}

	c.setBoundFromInt(s, h.Bound)
	c.ResetStyleString()
	return cur, nil
}

func (c *Collection) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := c.checkWrite(hdr); err != nil {
		return cur, err
	}
	h, ok := hdr.(*CollectionHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for collection", ErrTypeMismatch, hdr)
	}
	compr := c.IsCompressed()
	v800 := c.typ.Version() >= 800

	cur = writeCursor(s, cur)
	h.CoordBlockPtr = int32(cur.Address())
	cur.SetComprOrigin(c.comprOrgX, c.comprOrgY)

	// writePart reserves the mini-header, lets the part's codec write its
	// data, then goes back to fill the mini-header in.
	writePart := func(f Feature, sectioned bool) (ObjHeader, error) {
		mini := cur.Address()
		if err := cur.WriteZeros(int(collectionMiniHeaderSize(compr, v800, sectioned))); err != nil {
			return nil, err
		}
		sub := NewObjHeader(f.Base().Type(), c.ID)
		var err error
		if cur, err = f.WriteGeometry(s, sub, coordOnly, cur); err != nil {
			return nil, err
		}
		end := cur.Address()

		var count, lx, ly int32
		switch sh := sub.(type) {
		case *PLineHeader:
			count, lx, ly = sh.NumLineSections, sh.LabelX, sh.LabelY
		case *MultiPointHeader:
			lx, ly = sh.LabelX, sh.LabelY
		}
		if err := cur.Seek(mini); err != nil {
			return nil, err
		}
		if err := writeMiniHeader(cur, compr, v800 && sectioned, count, lx, ly, sub.Common().Bound); err != nil {
			return nil, err
		}
		if err := cur.Seek(end); err != nil {
			return nil, err
		}
		return sub, nil
	}

	*h = CollectionHeader{ObjBase: h.ObjBase, CoordBlockPtr: h.CoordBlockPtr}
	if c.region != nil {
		sub, err := writePart(c.region, true)
		if err != nil {
			return cur, fmt.Errorf("write collection %d region: %w", c.ID, err)
		}
		ph := sub.(*PLineHeader)
		h.NumRegSections = ph.NumLineSections
		h.RegionDataSize = ph.CoordDataSize
		h.RegionPenID, h.RegionBrushID = ph.PenID, ph.BrushID
	}
	if c.polyline != nil {
		sub, err := writePart(c.polyline, true)
		if err != nil {
			return cur, fmt.Errorf("write collection %d polyline: %w", c.ID, err)
		}
		ph := sub.(*PLineHeader)
		h.NumPLineSections = ph.NumLineSections
		h.PolylineDataSize = ph.CoordDataSize
		h.PolylinePenID = ph.PenID
	}
	if c.mpoint != nil {
		sub, err := writePart(c.mpoint, false)
		if err != nil {
			return cur, fmt.Errorf("write collection %d multipoint: %w", c.ID, err)
		}
		mh := sub.(*MultiPointHeader)
		h.NumMultiPoints = mh.NumPoints
		h.MPointSymbolID = mh.SymbolID
	}

	h.ComprOrgX, h.ComprOrgY = c.comprOrgX, c.comprOrgY
	h.Bound = c.intBound
	h.computeCoordDataSize()
	return cur, cur.Err()
}

func (c *Collection) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	parts := c.parts()
	d.printf("COLLECTION %d\n", len(parts))
	for _, p := range parts {
		if err := p.Dump(d); err != nil {
			return err
		}
	}
	return d.err
}

// StyleString joins the styles of the parts: the region's pen and brush,
// the polyline's pen and the multipoint's symbol.
func (c *Collection) StyleString() string {
	return c.memoStyle(func() string {
		var tools []string
		for _, p := range c.parts() {
			if s := p.StyleString(); s != "" {
				tools = append(tools, s)
			}
		}
		return strings.Join(tools, ";")
	})
}

// SetStyleString applies style to every part. Each part picks the tools it
// uses.
func (c *Collection) SetStyleString(style string) error {
	c.ResetStyleString()
	for _, p := range c.parts() {
		if err := p.SetStyleString(style); err != nil {
			return err
		}
	}
	return nil
}
