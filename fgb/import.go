package fgb

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	mitab "github.com/tingold/orb-mitab"
)

// Import reads an indexed FlatGeobuf layer into map features. Layers
// written by Export come back in their original order, with the object
// kind and style they were exported with; other layers map each geometry
// through mitab.FromGeometry.
func Import(data []byte) ([]mitab.Feature, error) {
	r, err := NewReaderFromData(data)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	fc, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	type entry struct {
		pos  int64
		feat mitab.Feature
	}
	entries := make([]entry, 0, len(fc.Features))
	for i, gf := range fc.Features {
		feat, pos, err := importFeature(gf)
		if err != nil {
			return nil, fmt.Errorf("import feature %d: %w", i, err)
		}
		entries = append(entries, entry{pos: pos, feat: feat})
	}
	slices.SortStableFunc(entries, func(a, b entry) int { return cmp.Compare(a.pos, b.pos) })

	feats := make([]mitab.Feature, len(entries))
	for i, e := range entries {
		feats[i] = e.feat
	}
	mitab.Logger().Debug("imported flatgeobuf layer", "features", len(feats))
	return feats, nil
}

// importFeature rebuilds one feature and returns its export position, or
// MaxInt64 when the layer has none.
func importFeature(gf *geojson.Feature) (mitab.Feature, int64, error) {
	props := maps.Clone(gf.Properties)
	if props == nil {
		props = geojson.Properties{}
	}

	typ := mitab.GeomUnset
	if v, ok := asInt64(props[TypeColumn]); ok {
		typ = mitab.GeomType(v)
	}
	pos := int64(math.MaxInt64)
	if v, ok := asInt64(props[IDColumn]); ok {
		pos = v
	}
	style, _ := props[StyleColumn].(string)
	delete(props, TypeColumn)
	delete(props, IDColumn)
	delete(props, StyleColumn)

	feat, err := featureFor(typ, gf.Geometry)
	if err != nil {
		return nil, 0, err
	}
	if style != "" {
		if err := feat.SetStyleString(style); err != nil {
			return nil, 0, err
		}
	}
	e := feat.Base()
	e.Properties = props
	if pos != math.MaxInt64 {
		e.ID = int32(pos)
	}
	return feat, pos, nil
}

// featureFor picks the feature kind recorded in the type column when the
// geometry still fits it. Arcs and rounded rectangles cannot be recovered
// from their generated outlines and come back as polylines and regions.
func featureFor(t mitab.GeomType, g orb.Geometry) (mitab.Feature, error) {
	p, isPoint := g.(orb.Point)
	_, isPoly := g.(orb.Polygon)

	switch t.Uncompressed() {
	case mitab.GeomFontSymbol:
		if isPoint {
			return mitab.NewFontPoint(p), nil
		}
	case mitab.GeomCustomSymbol:
		if isPoint {
			return mitab.NewCustomPoint(p, ""), nil
		}
	case mitab.GeomText:
		if isPoint {
			return mitab.NewText(p, "", 1), nil
		}
	case mitab.GeomRect:
		if isPoly {
			return mitab.NewRectangle(g.Bound()), nil
		}
	case mitab.GeomEllipse:
		if isPoly {
			b := g.Bound()
			return mitab.NewEllipse(b.Center(), (b.Max[0]-b.Min[0])/2, (b.Max[1]-b.Min[1])/2), nil
		}
	}
	return mitab.FromGeometry(g)
}
