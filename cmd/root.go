// =============================================================================
// Kardex Extract - Root Command
// =============================================================================
//
// The root command carries the flags shared by every report and builds the
// session (configuration + logger) once per invocation.
//
// COBRA CLI STRUCTURE:
//   kardex
//   ├── saida    (incremental movement report)
//   ├── estoque  (stock by grade)
//   ├── dump     (table to CSV + XLSX sample)
//   ├── upload   (publish a saved CSV)
//   └── version
//
// CONFIGURATION:
//   1. --env-file is loaded into the environment (missing file is fine)
//   2. --config is read (missing file is fine)
//   3. Environment variables override the file
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/kardex-extract/internal/config"
	"github.com/ginjaninja78/kardex-extract/internal/logging"
	"github.com/ginjaninja78/kardex-extract/internal/pipeline"
	"github.com/ginjaninja78/kardex-extract/internal/publish"
	"github.com/ginjaninja78/kardex-extract/internal/refcache"
	"github.com/ginjaninja78/kardex-extract/internal/source"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

// cfgFile is the YAML configuration file.
var cfgFile string

// envFile is loaded into the environment before the configuration.
var envFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "kardex",
	Short: "Kardex Extract - batch reports from the store inventory database",
	Long: `Kardex Extract connects to the store's inventory/point-of-sale database,
runs the report queries and writes CSV and XLSX files, optionally publishing
them to a Google spreadsheet or a Cloud Storage bucket.

Example Usage:
  kardex saida                 # incremental movement report
  kardex saida --full          # rebuild the movement report from scratch
  kardex saida --days 7        # re-extract the last 7 days
  kardex estoque --upload      # stock by grade, then publish
  kardex produtos              # products with derived stock quantity
  kardex periodo --start 2025-01-01 --end 2025-01-31
                               # period sales report and fact files
  kardex dump PRODUTOS         # dump a table`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI with ctx as the root context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file with connection settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// =============================================================================
// SESSION
// =============================================================================

// session is what a command needs once flags are parsed.
type session struct {
	cfg *config.Config
	log *logrus.Logger
	src *source.Source
}

// db returns the session's database source, creating it on first use.
func (s *session) db() *source.Source {
	if s.src == nil {
		s.src = source.New(s.cfg.Database, s.log)
	}
	return s.src
}

// loadSession reads the env file and configuration and builds the logger.
func loadSession(cmd *cobra.Command) (*session, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logging.New(level, cfg.LogFormat, os.Stderr)
	log.WithFields(logrus.Fields{
		"command": cmd.Name(),
		"config":  cfgFile,
		"output":  cfg.OutputDir,
	}).Debug("configuration loaded")

	return &session{cfg: cfg, log: log}, nil
}

// publishers builds the configured publishers. The returned function
// releases them.
func (s *session) publishers(ctx context.Context) ([]publish.Publisher, func(), error) {
	pubs, err := publish.FromConfig(ctx, s.cfg, s.log)
	if err != nil {
		return nil, nil, err
	}
	if len(pubs) == 0 {
		s.log.Warn("upload requested but neither sheets nor gcs is configured")
	}
	return pubs, func() { publish.CloseAll(pubs) }, nil
}

// env wires the report dependencies. Publishers are only created when an
// upload is requested.
func (s *session) env(ctx context.Context, upload bool) (*pipeline.Env, func(), error) {
	env := &pipeline.Env{
		Config: s.cfg,
		Source: s.db(),
		Cache:  refcache.NewFileStore(s.cfg.CachePath()),
		Files:  utils.NewFileManager(s.cfg.OutputDir, s.cfg.ArchivePath(), s.cfg.CachePath()),
		Log:    s.log,
	}
	env.Files.UseTimestampSubdirs = s.cfg.ArchiveByDate
	if err := env.Files.EnsureDirectories(); err != nil {
		return nil, nil, err
	}

	release := func() {}
	if upload {
		pubs, closeAll, err := s.publishers(ctx)
		if err != nil {
			return nil, nil, err
		}
		env.Publishers = pubs
		release = closeAll
	}
	return env, release, nil
}
