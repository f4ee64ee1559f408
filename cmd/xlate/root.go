package main

import (
	"xlate/internal/config"
	"xlate/internal/logging"
	"xlate/internal/oracle"
	"xlate/internal/storage"
	"xlate/internal/version"

	"github.com/spf13/cobra"
)

var (
	// configDir is the CLI --config flag value
	configDir string
	// logFormatFlag and logLevelFlag override the configured logging sink
	logFormatFlag string
	logLevelFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "xlate",
	Short: "xlate - repository comprehension and Go-to-Rust translation",
	Long: `xlate parses a repository into a unified symbol graph, compresses it into
natural-language summaries with an LLM oracle, and translates Go repositories
into buildable Rust crates. All stages checkpoint through the cache so
interrupted runs resume where they stopped.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("xlate version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".",
		"Directory containing xlate.yaml (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn or error (overrides config)")
}

// loadConfig reads the configuration and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if logFormatFlag != "" {
		cfg.Logging.Format = logFormatFlag
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.LogLevel(cfg.Logging.Level),
	})
}

// openStack builds the shared cache and oracle used by every stage.
func openStack(cfg *config.Config, log *logging.Logger) (storage.Engine, oracle.Oracle, error) {
	cache, err := storage.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	o, err := oracle.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return cache, o, nil
}
