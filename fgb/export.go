package fgb

import (
	"fmt"
	"io"
	"maps"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/flatgeobuf/flatgeobuf/src/go/writer"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	mitab "github.com/tingold/orb-mitab"
)

// record is one feature as it is laid out in the layer.
type record struct {
	geom  orb.Geometry
	props geojson.Properties
}

func newRecord(pos int, f mitab.Feature) record {
	e := f.Base()
	props := maps.Clone(e.Properties)
	if props == nil {
		props = geojson.Properties{}
	}
	props[IDColumn] = pos
	props[TypeColumn] = int(e.Type())
	if s := f.StyleString(); s != "" {
		props[StyleColumn] = s
	}
	return record{geom: e.Geometry(), props: props}
}

// Export writes feats as one FlatGeobuf layer. Features without geometry
// are skipped. Attributes become columns, next to the StyleColumn,
// TypeColumn and IDColumn that Import reads back.
func Export(w io.Writer, feats []mitab.Feature, opts *Options) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	recs := make([]record, 0, len(feats))
	geoms := make([]orb.Geometry, 0, len(feats))
	for i, f := range feats {
		if f == nil {
			return fmt.Errorf("%w: feature %d", ErrNilGeometry, i)
		}
		g := f.Base().Geometry()
		if g == nil {
			continue
		}
		if geometryType(g) == flattypes.GeometryTypeUnknown {
			return fmt.Errorf("%w: %T", ErrUnsupportedType, g)
		}
		recs = append(recs, newRecord(i+1, f))
		geoms = append(geoms, g)
	}
	if len(recs) == 0 {
		return ErrNilGeometry
	}

	props := make([]geojson.Properties, len(recs))
	for i, r := range recs {
		props[i] = r.props
	}
	s := inferSchema(props)

	mitab.Logger().Debug("exporting flatgeobuf layer",
		"features", len(recs), "columns", len(s.names), "index", opts.IncludeIndex)
	return writeLayer(w, &recordGenerator{recs: recs, schema: s}, layerType(geoms), s, opts)
}

func writeLayer(w io.Writer, gen *recordGenerator, geomType flattypes.GeometryType, s *schema, opts *Options) error {
	b := flatbuffers.NewBuilder(4096)

	header := writer.NewHeader(b)
	header.SetGeometryType(geomType)
	if opts.Name != "" {
		header.SetName(opts.Name)
	}
	if opts.Description != "" {
		header.SetDescription(opts.Description)
	}
	if len(s.names) > 0 {
		header.SetColumns(s.columns(b))
	}

	if c := opts.CRS; c != nil {
		crs := writer.NewCrs(b)
		crs.SetOrg("EPSG")
		if c.Code > 0 {
			crs.SetCode(int32(c.Code))
		}
		if c.Name != "" {
			crs.SetName(c.Name)
		}
		switch {
		case c.Description != "":
			crs.SetDescription(c.Description)
		case c.WKT != "":
			crs.SetDescription(c.WKT)
		}
		header.SetCrs(crs)
	}

	_, err := writer.NewWriter(header, opts.IncludeIndex, gen, nil).Write(w)
	if err != nil {
		return fmt.Errorf("write flatgeobuf layer: %w", err)
	}
	return nil
}

// recordGenerator feeds records to the FlatGeobuf writer.
type recordGenerator struct {
	recs   []record
	schema *schema
	next   int
}

func (g *recordGenerator) Generate() *writer.Feature {
	if g.next >= len(g.recs) {
		return nil
	}
	r := g.recs[g.next]
	g.next++

	b := flatbuffers.NewBuilder(1024)
	feat := writer.NewFeature(b)
	feat.SetGeometry(encodeGeometry(b, r.geom))
	if props := g.schema.encode(r.props); len(props) > 0 {
		feat.SetProperties(props)
	}
	return feat
}
