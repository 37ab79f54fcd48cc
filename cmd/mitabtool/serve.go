package main

import (
	"bytes"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tingold/orb-mitab/fgb"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, clientDir string
	cmd := &cobra.Command{
		Use:   "serve <in.geojson>",
		Short: "Serve GeoJSON features as a FlatGeobuf layer at /data.fgb",
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
			var buf bytes.Buffer
			if err := fgb.Export(&buf, feats, a.cfg.fgbOptions()); err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           newLayerHandler(buf.Bytes(), clientDir, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}
			a.log.WithFields(logrus.Fields{
				"addr":     addr,
				"client":   clientDir,
				"features": len(feats),
			}).Info("server starting")
			return srv.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&clientDir, "client", "", "directory of static client files to serve at /")
	return cmd
}

// newLayerHandler serves the layer at /data.fgb and, when clientDir is
// set, static files for every other path.
func newLayerHandler(layer []byte, clientDir string, log logrus.FieldLogger) http.Handler {
	var files http.Handler = http.NotFoundHandler()
	if clientDir != "" {
		files = http.FileServer(http.Dir(clientDir))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/data.fgb" {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("Access-Control-Allow-Origin", "*")
			if _, err := w.Write(layer); err != nil {
				log.WithError(err).Warn("write layer")
			}
			return
		}
		files.ServeHTTP(w, r)
	})
}
