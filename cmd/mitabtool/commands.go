package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tingold/orb-mitab/fgb"
)

func newDumpCmd(a *app) *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "dump <in.geojson>",
		Short: "Encode GeoJSON features as map objects and print them back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := readGeoJSON(args[0])
			if err != nil {
				return err
			}
			feats, err := toFeatures(fc, a.cfg)
			if err != nil {
				return err
			}
			decoded, mf, err := encode(feats, a.cfg.mapfileOptions())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := dumpFeatures(out, decoded); err != nil {
				return err
			}
			if stats {
				st := mf.Stats()
				fmt.Fprintf(out, "# objects=%d pens=%d brushes=%d fonts=%d symbols=%d size=%d\n",
					st.Objects, st.Pens, st.Brushes, st.Fonts, st.Symbols, mf.FileSize())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "print map file statistics")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var quantize bool
	cmd := &cobra.Command{
		Use:   "export <in.geojson> <out.fgb>",
		Short: "Convert GeoJSON features to map objects and write them as FlatGeobuf",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := readGeoJSON(args[0])
			if err != nil {
				return err
			}
			feats, err := toFeatures(fc, a.cfg)
			if err != nil {
				return err
			}
			if quantize {
				if feats, _, err = encode(feats, a.cfg.mapfileOptions()); err != nil {
					return err
				}
			}

			var buf bytes.Buffer
			if err := fgb.Export(&buf, feats, a.cfg.fgbOptions()); err != nil {
				return err
			}
			if err := os.WriteFile(args[1], buf.Bytes(), 0o644); err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{
				"features": len(feats),
				"bytes":    buf.Len(),
				"out":      args[1],
			}).Info("layer exported")
			return nil
		},
	}
	cmd.Flags().BoolVar(&quantize, "quantize", false, "round trip the features through a map file before export")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <in.fgb>",
		Short: "Read a FlatGeobuf layer as map objects and print them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			feats, err := fgb.Import(data)
			if err != nil {
				return err
			}
			a.log.WithField("features", len(feats)).Debug("layer imported")
			return dumpFeatures(cmd.OutOrStdout(), feats)
		},
	}
}
