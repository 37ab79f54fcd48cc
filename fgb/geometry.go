package fgb

import (
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb"
)

// geometryType returns the FlatGeobuf type of g. Rings and bounds are
// written as polygons.
func geometryType(g orb.Geometry) flattypes.GeometryType {
	switch g.(type) {
	case orb.Point:
		return flattypes.GeometryTypePoint
	case orb.MultiPoint:
		return flattypes.GeometryTypeMultiPoint
	case orb.LineString:
		return flattypes.GeometryTypeLineString
	case orb.MultiLineString:
		return flattypes.GeometryTypeMultiLineString
	case orb.Polygon, orb.Ring, orb.Bound:
		return flattypes.GeometryTypePolygon
	case orb.MultiPolygon:
		return flattypes.GeometryTypeMultiPolygon
	case orb.Collection:
		return flattypes.GeometryTypeGeometryCollection
	}
	return flattypes.GeometryTypeUnknown
}

// layerType returns the type shared by every geometry, or Unknown for a
// mixed layer.
func layerType(gs []orb.Geometry) flattypes.GeometryType {
	if len(gs) == 0 {
		return flattypes.GeometryTypeUnknown
	}
	t := geometryType(gs[0])
	for _, g := range gs[1:] {
		if geometryType(g) != t {
			return flattypes.GeometryTypeUnknown
		}
	}
	return t
}

// flatten lays the parts out as one xy array and returns the running
// vertex count at the end of each part.
func flatten(parts ...[]orb.Point) ([]float64, []uint32) {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	xy := make([]float64, 0, 2*n)
	ends := make([]uint32, 0, len(parts))
	for _, p := range parts {
		for _, pt := range p {
			xy = append(xy, pt[0], pt[1])
		}
		ends = append(ends, uint32(len(xy)/2))
	}
	return xy, ends
}

func lineParts(ml orb.MultiLineString) [][]orb.Point {
	parts := make([][]orb.Point, len(ml))
	for i, ls := range ml {
		parts[i] = ls
	}
	return parts
}

func ringParts(p orb.Polygon) [][]orb.Point {
	parts := make([][]orb.Point, len(p))
	for i, r := range p {
		parts[i] = r
	}
	return parts
}

// encodeGeometry builds g into b. It returns nil for nil and unsupported
// geometries.
func encodeGeometry(b *flatbuffers.Builder, g orb.Geometry) *writer.Geometry {
	switch g := g.(type) {
	case orb.Ring:
		return encodeGeometry(b, orb.Polygon{g})
	case orb.Bound:
		return encodeGeometry(b, g.ToPolygon())
	}

	out := writer.NewGeometry(b)
	out.SetType(geometryType(g))
	switch g := g.(type) {
	case orb.Point:
		out.SetXY([]float64{g[0], g[1]})
	case orb.MultiPoint:
		xy, _ := flatten(g)
		out.SetXY(xy)
	case orb.LineString:
		xy, _ := flatten(g)
		out.SetXY(xy)
	case orb.MultiLineString:
		xy, ends := flatten(lineParts(g)...)
		out.SetXY(xy)
		out.SetEnds(ends)
	case orb.Polygon:
		xy, ends := flatten(ringParts(g)...)
		out.SetXY(xy)
		out.SetEnds(ends)
	case orb.MultiPolygon:
		parts := make([]writer.Geometry, 0, len(g))
		for _, p := range g {
			parts = append(parts, *encodeGeometry(b, p))
		}
		out.SetParts(parts)
	case orb.Collection:
		parts := make([]writer.Geometry, 0, len(g))
		for _, m := range g {
			if pg := encodeGeometry(b, m); pg != nil {
				parts = append(parts, *pg)
			}
		}
		out.SetParts(parts)
	default:
		return nil
	}
	return out
}

// decodeGeometry converts a stored geometry back to orb. Unknown types
// yield nil.
func decodeGeometry(g *flattypes.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	switch g.Type() {
	case flattypes.GeometryTypePoint:
		if pts := points(g); len(pts) > 0 {
			return pts[0]
		}
		return orb.Point{}
	case flattypes.GeometryTypeMultiPoint:
		return orb.MultiPoint(points(g))
	case flattypes.GeometryTypeLineString:
		return orb.LineString(points(g))
	case flattypes.GeometryTypeMultiLineString:
		ml := orb.MultiLineString{}
		for _, p := range split(g) {
			ml = append(ml, p)
		}
		return ml
	case flattypes.GeometryTypePolygon:
		return decodePolygon(g)
	case flattypes.GeometryTypeMultiPolygon:
		if g.PartsLength() == 0 {
			if poly := decodePolygon(g); len(poly) > 0 {
				return orb.MultiPolygon{poly}
			}
			return orb.MultiPolygon{}
		}
		mp := orb.MultiPolygon{}
		eachPart(g, func(part *flattypes.Geometry) {
			if poly := decodePolygon(part); len(poly) > 0 {
				mp = append(mp, poly)
			}
		})
		return mp
	case flattypes.GeometryTypeGeometryCollection:
		c := orb.Collection{}
		eachPart(g, func(part *flattypes.Geometry) {
			if m := decodeGeometry(part); m != nil {
				c = append(c, m)
			}
		})
		return c
	}
	return nil
}

func decodePolygon(g *flattypes.Geometry) orb.Polygon {
	poly := orb.Polygon{}
	for _, p := range split(g) {
		poly = append(poly, p)
	}
	return poly
}

func eachPart(g *flattypes.Geometry, fn func(*flattypes.Geometry)) {
	for i := 0; i < g.PartsLength(); i++ {
		var part flattypes.Geometry
		if g.Parts(&part, i) {
			fn(&part)
		}
	}
}

// points returns the vertices of g. A trailing odd value is ignored.
func points(g *flattypes.Geometry) []orb.Point {
	pts := make([]orb.Point, g.XyLength()/2)
	for i := range pts {
		pts[i] = orb.Point{g.Xy(2 * i), g.Xy(2*i + 1)}
	}
	return pts
}

// split cuts the vertices of g at its part ends. Without ends the vertices
// form a single part. Ends past the vertex count are clamped.
func split(g *flattypes.Geometry) [][]orb.Point {
	pts := points(g)
	n := g.EndsLength()
	if n == 0 {
		if len(pts) == 0 {
			return nil
		}
		return [][]orb.Point{pts}
	}
	parts := make([][]orb.Point, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		end := min(int(g.Ends(i)), len(pts))
		end = max(end, start)
		parts = append(parts, pts[start:end:end])
		start = end
	}
	return parts
}
