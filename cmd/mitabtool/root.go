package main

import (
	"log/slog"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	mitab "github.com/tingold/orb-mitab"
)

// app is the state shared by the subcommands once the configuration has
// been read.
type app struct {
	configFile string
	verbose    bool
	quadrant   int
	charset    string

	cfg *Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}

	root := &cobra.Command{
		Use:   "mitabtool",
		Short: "Convert between GeoJSON, FlatGeobuf and MapInfo map objects.",
		Long: `mitabtool encodes GeoJSON features as MapInfo TAB/MAP binary objects,
decodes them back, and moves them to and from FlatGeobuf layers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.startup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "TOML configuration file location")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")
	flags.IntVar(&a.quadrant, "quadrant", 1, "coordinate origin quadrant (overrides the config file)")
	flags.StringVar(&a.charset, "charset", "", "MapInfo charset of stored strings (overrides the config file)")

	root.AddCommand(
		newDumpCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newServeCmd(a),
	)
	return root
}

// startup reads the configuration, applies flag overrides and routes the
// library diagnostics to logrus.
func (a *app) startup(cmd *cobra.Command) error {
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	a.log.SetLevel(logrus.InfoLevel)
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}
	mitab.SetLogger(slog.New(newLogrusHandler(a.log)))

	cfg, err := readConfig(a.configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("quadrant") {
		cfg.Quadrant = a.quadrant
	}
	if flags.Changed("charset") {
		cfg.Charset = a.charset
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log.WithFields(logrus.Fields{
		"config":   a.configFile,
		"quadrant": cfg.Quadrant,
		"charset":  cfg.Charset,
	}).Debug("configuration loaded")
	return nil
}
