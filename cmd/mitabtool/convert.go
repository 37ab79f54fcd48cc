package main

import (
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/paulmach/orb/geojson"

	mitab "github.com/tingold/orb-mitab"
	"github.com/tingold/orb-mitab/fgb"
	"github.com/tingold/orb-mitab/mapfile"
)

func readGeoJSON(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// toFeatures maps GeoJSON features to map objects. A string OGR_STYLE
// property is applied as the feature style and removed from the
// properties.
func toFeatures(fc *geojson.FeatureCollection, cfg *Config) ([]mitab.Feature, error) {
	feats := make([]mitab.Feature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		feat, err := mitab.FromGeometry(gf.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		props := maps.Clone(gf.Properties)
		if style, ok := props[fgb.StyleColumn].(string); ok {
			delete(props, fgb.StyleColumn)
			if err := feat.SetStyleString(style); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
		}
		if pl, ok := feat.(*mitab.Polyline); ok {
			pl.WriteTwoPointLineAsPolyline = cfg.TwoPointLineAsPolyline
		}
		feat.Base().Properties = props
		feats = append(feats, feat)
	}
	return feats, nil
}

// encode stores feats in a new map file and reads them back, so the result
// carries the file's quantization and tool table resolution.
func encode(feats []mitab.Feature, opts *mapfile.Options) ([]mitab.Feature, *mapfile.File, error) {
	mf, err := mapfile.New(opts)
	if err != nil {
		return nil, nil, err
	}
	for i, feat := range feats {
		if _, err := mf.Append(feat); err != nil {
			return nil, nil, fmt.Errorf("feature %d: %w", i, err)
		}
	}
	out, err := mf.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return out, mf, nil
}

func dumpFeatures(w io.Writer, feats []mitab.Feature) error {
	for _, feat := range feats {
		e := feat.Base()
		if _, err := fmt.Fprintf(w, "# %d %s\n", e.ID, e.Type()); err != nil {
			return err
		}
		if err := feat.Dump(w); err != nil {
			return err
		}
		if style := feat.StyleString(); style != "" {
			if _, err := fmt.Fprintf(w, "STYLE %s\n", style); err != nil {
				return err
			}
		}
	}
	return nil
}
