package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"scene-importer/internal/config"
	"scene-importer/internal/container"
	"scene-importer/internal/importer"
	"scene-importer/internal/logging"
	"scene-importer/internal/names"
	"scene-importer/internal/preview"
)

var (
	// Global flags
	configFile string
	logLevel   string
	nameDB     string
	workers    int
	jsonOut    bool
)

var rootCmd = &cobra.Command{
	Use:   "sceneimport",
	Short: "Import binary scene files into mesh, skeleton and material data",
	Long: `sceneimport decodes SCNB scene containers (bone table, material table,
LOD submeshes, collision) into a normalized scene description and writes it as
JSON for the host editor, optionally with a WebP preview thumbnail.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a .json or .toml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default: info)")
	rootCmd.PersistentFlags().StringVar(&nameDB, "names-db", "", "SQLite asset name database")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "Worker goroutines (default: NumCPU)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies global and extra flags.
func loadConfig(extra config.Flags) (config.Config, error) {
	var cfg config.Config
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return cfg, err
		}
	}
	extra.NameDB = nameDB
	extra.Workers = workers
	extra.LogLevel = logLevel
	cfg.Resolve(extra)
	return cfg, nil
}

// session is an importer plus the resources it holds open.
type session struct {
	log      *log.Logger
	importer *importer.Importer
	db       *names.SQLiteLookup
}

func openSession(cfg config.Config) (*session, error) {
	l, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	s := &session{log: l}

	opts := importer.Options{
		Logger:     l,
		Workers:    cfg.Workers,
		Limits:     container.Limits{MaxChunkBytes: cfg.MaxChunkBytes()},
		Epsilon:    cfg.WeightEpsilon,
		MaxWeights: cfg.MaxWeights,
	}
	if cfg.NameDB != "" {
		if s.db, err = names.OpenSQLite(cfg.NameDB); err != nil {
			return nil, err
		}
		opts.Lookup = s.db
	}
	s.importer = importer.New(opts)
	return s, nil
}

func (s *session) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func previewOptions(cfg config.Config) preview.Options {
	opts := preview.DefaultOptions()
	opts.Size = cfg.PreviewSize
	opts.Supersample = cfg.Supersample
	return opts
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
