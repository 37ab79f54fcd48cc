package fgb

import (
	"fmt"

	flatgeobuf "github.com/flatgeobuf/flatgeobuf/src/go"
	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Reader reads an indexed FlatGeobuf layer.
type Reader struct {
	fgb *flatgeobuf.FlatGeoBuf
}

// NewReader opens the file at path. The file is memory-mapped.
func NewReader(path string) (*Reader, error) {
	f, err := flatgeobuf.New(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Reader{fgb: f}, nil
}

// NewReaderFromData reads a layer held in memory.
func NewReaderFromData(data []byte) (*Reader, error) {
	f, err := flatgeobuf.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return &Reader{fgb: f}, nil
}

// Header returns the layer metadata.
func (r *Reader) Header() *Header {
	h := r.fgb.Header()
	if h == nil {
		return nil
	}

	out := &Header{
		Name:          string(h.Name()),
		Description:   string(h.Description()),
		GeometryType:  flattypes.EnumNamesGeometryType[h.GeometryType()],
		FeaturesCount: h.FeaturesCount(),
		HasIndex:      h.IndexNodeSize() > 0,
	}
	if h.EnvelopeLength() >= 4 {
		out.Envelope = [4]float64{h.Envelope(0), h.Envelope(1), h.Envelope(2), h.Envelope(3)}
	}

	var crs flattypes.Crs
	if h.Crs(&crs) != nil {
		out.CRS = &CRS{
			Code:        int(crs.Code()),
			Name:        string(crs.Name()),
			Description: string(crs.Description()),
		}
	}

	for i := 0; i < h.ColumnsLength(); i++ {
		var col flattypes.Column
		if !h.Columns(&col, i) {
			continue
		}
		out.Columns = append(out.Columns, ColumnInfo{
			Name:        string(col.Name()),
			Type:        flattypes.EnumNamesColumnType[col.Type()],
			Title:       string(col.Title()),
			Description: string(col.Description()),
			Nullable:    col.Nullable(),
		})
	}
	return out
}

// ReadAll returns every feature of the layer in index order. Only indexed
// layers can be iterated.
func (r *Reader) ReadAll() (*geojson.FeatureCollection, error) {
	h := r.fgb.Header()
	if h.FeaturesCount() == 0 {
		return geojson.NewFeatureCollection(), nil
	}
	if h.IndexNodeSize() == 0 || h.EnvelopeLength() < 4 {
		return nil, ErrNoIndex
	}
	return r.search(h, h.Envelope(0), h.Envelope(1), h.Envelope(2), h.Envelope(3))
}

// Search returns the features whose bounding boxes intersect bounds.
func (r *Reader) Search(bounds orb.Bound) (*geojson.FeatureCollection, error) {
	h := r.fgb.Header()
	if h.IndexNodeSize() == 0 {
		return nil, ErrNoIndex
	}
	return r.search(h, bounds.Min[0], bounds.Min[1], bounds.Max[0], bounds.Max[1])
}

func (r *Reader) search(h *flattypes.Header, minX, minY, maxX, maxY float64) (*geojson.FeatureCollection, error) {
	found, err := r.fgb.Search(minX, minY, maxX, maxY)
	if err != nil {
		return nil, fmt.Errorf("search flatgeobuf index: %w", err)
	}

	fc := geojson.NewFeatureCollection()
	for i, f := range found {
		gf, err := convertFeature(f, h)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if gf != nil {
			fc.Append(gf)
		}
	}
	return fc, nil
}

// Close drops the reader's reference to the mapped data.
func (r *Reader) Close() error {
	r.fgb = nil
	return nil
}

// convertFeature returns nil for features without a readable geometry.
func convertFeature(f *flattypes.Feature, h *flattypes.Header) (*geojson.Feature, error) {
	if f == nil {
		return nil, nil
	}
	var fg flattypes.Geometry
	g := decodeGeometry(f.Geometry(&fg))
	if g == nil {
		return nil, nil
	}

	out := geojson.NewFeature(g)
	if n := f.PropertiesLength(); n > 0 && h.ColumnsLength() > 0 {
		raw := make([]byte, n)
		for i := range raw {
			raw[i] = byte(f.Properties(i))
		}
		props, err := decodeProperties(raw, h)
		if err != nil {
			return nil, err
		}
		out.Properties = props
	}
	return out, nil
}
