package mitab

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
)

// Polyline is a line or multi-line drawn with a pen. Two point lines are
// stored as LINE objects unless WriteTwoPointLineAsPolyline is set.
type Polyline struct {
	Envelope
	FeaturePen

	Smooth                      bool
	WriteTwoPointLineAsPolyline bool

	center    orb.Point
	centerSet bool
}

// NewPolyline returns a polyline feature for an orb.LineString or
// orb.MultiLineString.
func NewPolyline(g orb.Geometry) *Polyline {
	return newPolyline(GeomPLine, g)
}

func newPolyline(t GeomType, g orb.Geometry) *Polyline {
	return &Polyline{Envelope: newEnvelope(t, g), FeaturePen: newFeaturePen()}
}

// parts returns the lines of the geometry.
func (p *Polyline) parts() ([]orb.LineString, bool) {
	switch g := p.geometry.(type) {
	case orb.LineString:
		return []orb.LineString{g}, true
	case orb.MultiLineString:
		return g, true
	}
	return nil, false
}

// NumParts returns the number of lines in the geometry.
func (p *Polyline) NumParts() int {
	parts, _ := p.parts()
	return len(parts)
}

// Center returns the label point. Unless set explicitly it is the middle of
// the first line: the middle vertex for an odd vertex count, otherwise the
// midpoint of the two central vertices.
func (p *Polyline) Center() (orb.Point, bool) {
	if p.centerSet {
		return p.center, true
	}
	parts, _ := p.parts()
	if len(parts) == 0 || len(parts[0]) == 0 {
		return orb.Point{}, false
	}
	line := parts[0]
	i := len(line) / 2
	if len(line)%2 == 0 {
		return orb.Point{(line[i-1][0] + line[i][0]) / 2, (line[i-1][1] + line[i][1]) / 2}, true
	}
	return line[i], true
}

// SetCenter overrides the label point.
func (p *Polyline) SetCenter(c orb.Point) {
	p.center, p.centerSet = c, true
}

func (p *Polyline) ValidateType(s Storage) GeomType {
	switch g := p.geometry.(type) {
	case orb.LineString:
		n := len(g)
		switch {
		case n < 2:
			return p.rejectGeometry("polyline")
		case n == 2 && !p.WriteTwoPointLineAsPolyline:
			p.typ = GeomLine
		case RequiresV800(1, n):
			p.typ = GeomV800MultiPLine
		case n > MaxVertices300:
			p.typ = GeomV450MultiPLine
		default:
			p.typ = GeomPLine
		}
	case orb.MultiLineString:
		if len(g) == 0 {
			return p.rejectGeometry("polyline")
		}
		var total int
		for _, l := range g {
			if len(l) < 2 {
				return p.rejectGeometry("polyline")
			}
			total += len(l)
		}
		switch {
		case RequiresV800(len(g), total):
			p.typ = GeomV800MultiPLine
		case total > MaxVertices300:
			p.typ = GeomV450MultiPLine
		default:
			p.typ = GeomMultiPLine
		}
	default:
		return p.rejectGeometry("polyline")
	}

	b := p.geometry.Bound()
	p.SetBound(b.Min, b.Max)
	p.validateCoordType(s)
	return p.typ
}

func (p *Polyline) ReadGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := acceptRead(hdr, GeomLine, GeomPLine, GeomMultiPLine, GeomV450MultiPLine, GeomV800MultiPLine); err != nil {
		return cur, err
	}
	p.setFromRead(hdr)
	p.centerSet = false

	var penID byte
	switch h := hdr.(type) {
	case *LineHeader:
		line := orb.LineString{toWorld(s, h.X1, h.Y1), toWorld(s, h.X2, h.Y2)}
		p.geometry = line
		p.comprOrgX, p.comprOrgY = ComprOrigin(h.Bound)
		b := line.Bound()
		p.SetBound(b.Min, b.Max)
		penID = h.PenID

	case *PLineHeader:
		var err error
		if cur, err = coordCursor(s, cur, h.CoordBlockPtr); err != nil {
			return cur, err
		}
		compr := h.compressed()
		cur.SetComprOrigin(h.ComprOrgX, h.ComprOrgY)
		p.comprOrgX, p.comprOrgY = h.ComprOrgX, h.ComprOrgY
		p.Smooth = h.Smooth

		if h.Type.Uncompressed() == GeomPLine {
			pts, err := readVertices(s, cur, compr, int64(h.CoordDataSize/pointSizeFor(compr)))
			if err != nil {
				return cur, fmt.Errorf("read polyline %d: %w", h.ID, err)
			}
			p.geometry = orb.LineString(pts)
		} else {
			_, parts, err := readSections(s, cur, h.Type.Version(), compr, h.NumLineSections, h.CoordDataSize)
			if err != nil {
				return cur, fmt.Errorf("read polyline %d: %w", h.ID, err)
			}
			if len(parts) == 1 {
				p.geometry = orb.LineString(parts[0])
			} else {
				ml := make(orb.MultiLineString, len(parts))
				for i, part := range parts {
					ml[i] = part
				}
				p.geometry = ml
			}
		}
		p.setBoundFromInt(s, h.Bound)
		p.SetCenter(toWorld(s, h.LabelX, h.LabelY))
		penID = h.PenID

	default:
		return cur, fmt.Errorf("%w: %T for polyline", ErrUnexpectedType, hdr)
	}

	if !coordOnly {
		if err := p.readPen(s, int(penID)); err != nil {
			return cur, err
		}
	}
	return cur, nil
}

func (p *Polyline) WriteGeometry(s Storage, hdr ObjHeader, coordOnly bool, cur *Cursor) (*Cursor, error) {
	if err := p.checkWrite(hdr); err != nil {
		return cur, err
	}
	parts, ok := p.parts()
	if !ok || len(parts) == 0 {
		return cur, fmt.Errorf("%w: %s for polyline", ErrInvalidGeometry, geometryName(p.geometry))
	}

	var penID *byte
	switch h := hdr.(type) {
	case *LineHeader:
		if len(parts) != 1 || len(parts[0]) != 2 {
			return cur, fmt.Errorf("%w: LINE needs exactly 2 points", ErrInvalidGeometry)
		}
		h.X1, h.Y1 = s.ToFixed(parts[0][0][0], parts[0][0][1])
		h.X2, h.Y2 = s.ToFixed(parts[0][1][0], parts[0][1][1])
		h.Bound = NewIntBound(h.X1, h.Y1, h.X2, h.Y2)
		penID = &h.PenID

	case *PLineHeader:
		cur = writeCursor(s, cur)
		cur.StartNewFeature()
		h.CoordBlockPtr = int32(cur.Address())
		cur.SetComprOrigin(p.comprOrgX, p.comprOrgY)
		compr := p.IsCompressed()

		if p.typ.Uncompressed() == GeomPLine {
			if len(parts) != 1 {
				return cur, fmt.Errorf("%w: PLINE holds a single line", ErrInvalidGeometry)
			}
			if err := writeVertices(s, cur, compr, parts[0]); err != nil {
				return cur, err
			}
			h.NumLineSections = 1
		} else {
			sections := make([][]orb.Point, len(parts))
			for i, l := range parts {
				sections[i] = l
			}
			if err := writeSections(s, cur, p.typ.Version(), compr, sections, nil); err != nil {
				return cur, err
			}
			h.NumLineSections = int32(len(parts))
		}

		h.CoordDataSize = cur.FeatureDataSize()
		h.Smooth = p.Smooth
		h.ComprOrgX, h.ComprOrgY = p.comprOrgX, p.comprOrgY
		h.Bound = p.intBound
		if c, ok := p.Center(); ok {
			h.LabelX, h.LabelY = s.ToFixed(c[0], c[1])
		}
		penID = &h.PenID

	default:
		return cur, fmt.Errorf("%w: %T for polyline", ErrTypeMismatch, hdr)
	}

	*penID = indexByte(p.FeaturePen.Index)
	if !coordOnly {
		id, err := p.writePen(s)
		if err != nil {
			return cur, err
		}
		*penID = id
	}
	return cur, nil
}

func (p *Polyline) Dump(w io.Writer) error {
	d := newDumpWriter(w)
	switch g := p.geometry.(type) {
	case orb.LineString:
		if len(g) == 2 && p.typ.Uncompressed() == GeomLine {
			d.printf("LINE %.15g %.15g %.15g %.15g\n", g[0][0], g[0][1], g[1][0], g[1][1])
		} else {
			d.printf("PLINE %d\n", len(g))
			d.points(g)
		}
	case orb.MultiLineString:
		d.printf("PLINE MULTIPLE %d\n", len(g))
		for _, l := range g {
			d.printf("  %d\n", len(l))
			d.points(l)
		}
	default:
		d.printf("NONE\n")
	}
	if p.Smooth {
		d.printf("    SMOOTH\n")
	}
	p.DumpPenDef(d)
	return d.err
}

func (p *Polyline) StyleString() string {
	return p.memoStyle(p.PenStyleString)
}

func (p *Polyline) SetStyleString(style string) error {
	p.ResetStyleString()
	return p.SetPenFromStyleString(style)
}
