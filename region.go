package mitab

import (
	"fmt"
	"io"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Region is a polygon or multi-polygon with a pen for its outline and a
// brush for its fill.
//
// Rings are stored as a flat list of sections. An outer ring records how
// many of the sections following it are its holes. Only one level of
// nesting is represented: islands inside holes are read back as separate
// polygons.
type Region struct {
	Envelope
	FeaturePen
	FeatureBrush

	Smooth bool

	center    orb.Point
	centerSet bool
}

// NewRegion returns a region feature for an orb.Polygon or orb.MultiPolygon.
func NewRegion(g orb.Geometry) *Region {
	return newRegion(GeomRegion, g)
}

func newRegion(t GeomType, g orb.Geometry) *Region {
	return &Region{
		Envelope:     newEnvelope(t, g),
		FeaturePen:   newFeaturePen(),
		FeatureBrush: newFeatureBrush(),
	}
}

func (r *Region) polygons() ([]orb.Polygon, bool) {
	switch g := r.geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}, true
	case orb.MultiPolygon:
		return g, true
	}
	return nil, false
}

// NumRings returns the total number of rings, outer and inner.
func (r *Region) NumRings() int {
	polys, _ := r.polygons()
	var n int
	for _, p := range polys {
		n += len(p)
	}
	return n
}

// Center returns the label point: an interior point of the first polygon
// unless one was set explicitly.
func (r *Region) Center() (orb.Point, bool) {
	if r.centerSet {
		return r.center, true
	}
	polys, _ := r.polygons()
	if len(polys) == 0 || len(polys[0]) == 0 || len(polys[0][0]) == 0 {
		return orb.Point{}, false
	}
	return labelPoint(polys[0]), true
}

// SetCenter overrides the label point.
func (r *Region) SetCenter(c orb.Point) {
	r.center, r.centerSet = c, true
}

// labelPoint returns the middle of the widest span of poly along the
// horizontal line through its centroid, or the center of its bound when
// that line misses the interior.
func labelPoint(poly orb.Polygon) orb.Point {
	c, _ := planar.CentroidArea(poly)
	y := c[1]

	var xs []float64
	for _, ring := range poly {
		for i := range ring {
			a, b := ring[i], ring[(i+1)%len(ring)]
			if (a[1] <= y && b[1] > y) || (b[1] <= y && a[1] > y) {
				xs = append(xs, a[0]+(y-a[1])*(b[0]-a[0])/(b[1]-a[1]))
			}
		}
	}
	slices.Sort(xs)

	best := -1.0
	var pt orb.Point
	for i := 0; i+1 < len(xs); i += 2 {
		if w := xs[i+1] - xs[i]; w > best {
			best = w
			pt = orb.Point{(xs[i] + xs[i+1]) / 2, y}
		}
	}
	if best >= 0 && planar.PolygonContains(poly, pt) {
		return pt
	}
	return poly.Bound().Center()
}

func (r *Region) ValidateType(s Storage) GeomType {
	polys, ok := r.polygons()
	if !ok || len(polys) == 0 {
		return r.rejectGeometry("region")
	}
	var rings, points int
	for _, p := range polys {
		rings += len(p)
		for _, ring := range p {
			points += len(ring)
		}
	}
	switch {
	case RequiresV800(rings, points):
		r.typ = GeomV800Region
	case points > MaxVertices300 || rings > MaxSegments450:
		r.typ = GeomV450Region
	default:
		r.typ = GeomRegion
	}

	b := r.geometry.Bound()
	r.SetBound(b.Min, b.Max)
	r.validateCoordType(s)
	return r.typ
}

func (r *Region) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomRegion, GeomV450Region, GeomV800Region); err != nil {
		return cur, err
	}
	h, ok := hdr.(*PLineHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for region", ErrUnexpectedType, hdr)
	}
	r.setFromRead(hdr)

	var err error
	if cur, err = coordCursor(s, cur, h.CoordBlockPtr); err != nil {
		return cur, err
	}
	compr := h.compressed()
	cur.SetComprOrigin(h.ComprOrgX, h.ComprOrgY)
	r.comprOrgX, r.comprOrgY = h.ComprOrgX, h.ComprOrgY
	r.Smooth = h.Smooth

	secs, parts, err := readSections(s, cur, h.Type.Version(), compr, h.NumLineSections, h.CoordDataSize)
	if err != nil {
		return cur, fmt.Errorf("read region %d: %w", h.ID, err)
	}
	polys := assemblePolygons(secs, parts)
	switch len(polys) {
	case 0:
		r.geometry = orb.Polygon{}
	case 1:
		r.geometry = polys[0]
	default:
		r.geometry = orb.MultiPolygon(polys)
	}

	r.setBoundFromInt(s, h.Bound)
	r.SetCenter(toWorld(s, h.LabelX, h.LabelY))

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

// assemblePolygons groups sections into polygons: each outer ring is
// followed by the number of holes its header declares.
func assemblePolygons(secs []SectionHeader, parts [][]orb.Point) []orb.Polygon {
	var (
		polys     []orb.Polygon
		poly      orb.Polygon
		holesLeft int32
	)
	for i, sec := range secs {
		if holesLeft < 1 {
			holesLeft = sec.NumHoles
		} else {
			holesLeft--
		}
		poly = append(poly, orb.Ring(parts[i]))
		if holesLeft < 1 {
			polys = append(polys, poly)
			poly = nil
		}
	}
	if len(poly) > 0 {
		polys = append(polys, poly)
	}
	return polys
}

func (r *Region) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := r.checkWrite(hdr); err != nil {
		return cur, err
	}
	h, ok := hdr.(*PLineHeader)
	if !ok {
		return cur, fmt.Errorf("%w: %T for region", ErrTypeMismatch, hdr)
	}
	polys, ok := r.polygons()
	if !ok {
		return cur, fmt.Errorf("%w: %s for region", ErrInvalidGeometry, geometryName(r.geometry))
	}

	var (
		rings [][]orb.Point
		holes []int32
	)
	for _, p := range polys {
		for i, ring := range p {
			rings = append(rings, ring)
			if i == 0 {
				holes = append(holes, int32(len(p)-1))
			} else {
				holes = append(holes, 0)
			}
		}
	}

	cur = writeCursor(s, cur)
	cur.StartNewFeature()
	h.CoordBlockPtr = int32(cur.Address())
	cur.SetComprOrigin(r.comprOrgX, r.comprOrgY)
	if err := writeSections(s, cur, r.typ.Version(), r.IsCompressed(), rings, holes); err != nil {
		return cur, err
	}

	h.NumLineSections = int32(len(rings))
	h.CoordDataSize = cur.FeatureDataSize()
	h.Smooth = r.Smooth
	h.ComprOrgX, h.ComprOrgY = r.comprOrgX, r.comprOrgY
	h.Bound = r.intBound
	if c, ok := r.Center(); ok {
		h.LabelX, h.LabelY = s.ToFixed(c[0], c[1])
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

func (r *Region) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	polys, _ := r.polygons()
	d.printf("REGION %d\n", r.NumRings())
	for _, p := range polys {
		for _, ring := range p {
			d.printf("  %d\n", len(ring))
			d.points(ring)
		}
	}
	if c, ok := r.Center(); ok {
		d.printf("    CENTER %.15g %.15g\n", c[0], c[1])
	}
	r.DumpPenDef(d)
	r.DumpBrushDef(d)
	return d.err
}

func (r *Region) StyleString() string {
	return r.memoStyle(func() string { return penBrushStyle(&r.FeaturePen, &r.FeatureBrush) })
}

func (r *Region) SetStyleString(style string) error {
	r.ResetStyleString()
	return setPenBrushStyle(style, &r.FeaturePen, &r.FeatureBrush)
}
