package main

import (
	"github.com/monsterinc/jshunter/internal/config"
	"github.com/monsterinc/jshunter/internal/datastore"
	"github.com/monsterinc/jshunter/internal/logger"
	"github.com/monsterinc/jshunter/internal/rslimiter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds what every pipeline command needs
type app struct {
	cfg     *config.GlobalConfig
	log     *logger.Logger
	limiter *rslimiter.ResourceLimiter
	history *datastore.HistoryStore
}

// loadConfig reads the config file, applies flag overrides and validates
// the result.
func loadConfig(cmd *cobra.Command) (*config.GlobalConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadGlobalConfig(path, zerolog.Nop())
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd, cfg)

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Only flags set on the command line override the file.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.GlobalConfig) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.PipelineConfig.InputFile, _ = flags.GetString("input")
	}
	if flags.Changed("output") {
		cfg.PipelineConfig.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("concurrency") {
		cfg.PipelineConfig.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("log-level") {
		cfg.LogConfig.LogLevel, _ = flags.GetString("log-level")
	}
	if noHistory, _ := flags.GetBool("no-history"); noHistory {
		cfg.HistoryConfig.Enabled = false
	}
}

func newLogger(cmd *cobra.Command, cfg *config.GlobalConfig, runID string) (*logger.Logger, error) {
	return logger.NewLoggerBuilder().
		WithRunID(runID).
		WithConfig(cfg.LogConfig).
		WithConsoleOutput(cmd.ErrOrStderr()).
		Build()
}

// newApp wires logging, the resource limiter and the history store. A
// history database that cannot be opened is logged and skipped.
func newApp(cmd *cobra.Command, runID string) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cmd, cfg, runID)
	if err != nil {
		return nil, err
	}
	zl := log.GetZerolog().With().Str("run_id", runID).Logger()
	if path := config.GetConfigPath(mustString(cmd, "config")); path != "" {
		zl.Debug().Str("path", path).Msg("Using config file")
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		limiter: rslimiter.NewResourceLimiter(cfg.ResourceLimiterConfig, zl),
	}

	if cfg.HistoryConfig.Enabled {
		store, err := datastore.NewHistoryStore(cfg.HistoryConfig.DBPath, zl)
		if err != nil {
			zl.Warn().Err(err).Str("path", cfg.HistoryConfig.DBPath).Msg("History disabled for this run")
		} else {
			a.history = store
		}
	}
	return a, nil
}

func (a *app) logger() zerolog.Logger {
	return *a.log.GetZerolog()
}

// Close releases the history database and log files
func (a *app) Close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.GetZerolog().Warn().Err(err).Msg("Failed to close history store")
		}
	}
	_ = a.log.Close()
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
