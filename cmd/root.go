// Package cmd implements the brainmap command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"brainmap/internal/applog"
	"brainmap/internal/config"
	"brainmap/internal/model"
	"brainmap/internal/store"
)

var version = "0.3.0"

// app carries what the subcommands share once the root has parsed its
// flags.
type app struct {
	cfgFile string
	dbPath  string

	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
}

func (a *app) setup() error {
	path := a.cfgFile
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Storage.Database = config.ExpandHome(a.dbPath)
	}
	a.cfg = cfg

	logger, closer, err := applog.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	a.log, a.logCloser = logger, closer
	return nil
}

func (a *app) teardown() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// withStore opens the configured database for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(st *store.Store) error) error {
	path := a.cfg.Storage.Database
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	st, err := store.Open(ctx, path, a.log)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// findMap resolves a map reference (id, title or id prefix).
func findMap(ctx context.Context, st *store.Store, ref string) (*model.BrainMap, error) {
	m, err := st.FindMap(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("brain map %q: %w", ref, err)
	}
	return m, nil
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "brainmap",
		Short: "brainmap: spatial mind maps in the terminal",
		Long: Brand.Sprint("brainmap") + ": pan, zoom and arrange mind maps on an infinite canvas\n" +
			Subtle.Sprint("Maps live in a local SQLite database and export to PNG, SVG, text, JSON and YAML"),
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.teardown()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("brainmap {{ .Version }}\n")

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/brainmap/config.toml)")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (overrides [storage] database)")

	rootCmd.AddCommand(
		openCmd(a),
		newCmd(a),
		listCmd(a),
		deleteCmd(a),
		nodesCmd(a),
		addCmd(a),
		exportCmd(a),
		importCmd(a),
	)
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		Bad.Fprintf(os.Stderr, "brainmap: %v\n", err)
		os.Exit(1)
	}
}
