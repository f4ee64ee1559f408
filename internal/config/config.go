// Package config loads and validates the xlate configuration from
// xlate.yaml plus environment overrides. The config is an explicit struct
// constructed once in cmd and passed down; no package reads settings on
// its own.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete xlate configuration
type Config struct {
	// WorkDir is the root for repos, caches and generated output.
	WorkDir   string `yaml:"workDir" mapstructure:"workDir"`
	ParserDir string `yaml:"parserDir" mapstructure:"parserDir"`
	Language  string `yaml:"language" mapstructure:"language"`

	// ExcludeDirs are path fragments skipped by both the parser and the
	// compression gate.
	ExcludeDirs []string `yaml:"excludeDirs" mapstructure:"excludeDirs"`

	Oracle     OracleConfig     `yaml:"oracle" mapstructure:"oracle"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Supervisor SupervisorConfig `yaml:"supervisor" mapstructure:"supervisor"`
	Translate  TranslateConfig  `yaml:"translate" mapstructure:"translate"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// OracleConfig selects and parameterizes the oracle transport
type OracleConfig struct {
	// Type is one of "chat", "http", "subprocess".
	Type       string `yaml:"type" mapstructure:"type"`
	Model      string `yaml:"model" mapstructure:"model"`
	URL        string `yaml:"url" mapstructure:"url"`
	Token      string `yaml:"token" mapstructure:"token"`
	BotID      string `yaml:"botId" mapstructure:"botId"`
	ScriptPath string `yaml:"scriptPath" mapstructure:"scriptPath"`
	TimeoutSec int    `yaml:"timeoutSec" mapstructure:"timeoutSec"`
}

// StorageConfig selects the persistent cache tier
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend       string `yaml:"backend" mapstructure:"backend"`
	Compress      bool   `yaml:"compress" mapstructure:"compress"`
	MemoryEntries int    `yaml:"memoryEntries" mapstructure:"memoryEntries"`
}

// SupervisorConfig bounds the restart loop
type SupervisorConfig struct {
	// MaxAttempts of 0 retries forever.
	MaxAttempts     int `yaml:"maxAttempts" mapstructure:"maxAttempts"`
	CooldownSeconds int `yaml:"cooldownSeconds" mapstructure:"cooldownSeconds"`
}

// TranslateConfig parameterizes the translation engine
type TranslateConfig struct {
	MaxFmtRetries int    `yaml:"maxFmtRetries" mapstructure:"maxFmtRetries"`
	OutputDir     string `yaml:"outputDir" mapstructure:"outputDir"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
	Level  string `yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		WorkDir:     ".xlate",
		ParserDir:   "",
		Language:    "go",
		ExcludeDirs: []string{"vendor", "node_modules", "testdata"},
		Oracle: OracleConfig{
			Type:       "http",
			Model:      "default",
			TimeoutSec: 600,
		},
		Storage: StorageConfig{
			Backend:       "file",
			Compress:      false,
			MemoryEntries: 4096,
		},
		Supervisor: SupervisorConfig{
			MaxAttempts:     10,
			CooldownSeconds: 60,
		},
		Translate: TranslateConfig{
			MaxFmtRetries: 3,
			OutputDir:     "go2rust",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// RepoDir is where repositories are cloned or linked.
func (c *Config) RepoDir() string { return filepath.Join(c.WorkDir, "repo") }

// CacheDir is the root of the persistent cache tier.
func (c *Config) CacheDir() string { return filepath.Join(c.WorkDir, "cache") }

// OutDir is the root of generated translation output.
func (c *Config) OutDir() string { return filepath.Join(c.WorkDir, c.Translate.OutputDir) }

// Load reads xlate.yaml from dir (falling back to defaults when absent) and
// applies XLATE_* environment overrides. A .env file in the working directory
// is loaded first so local setups can keep tokens out of the shell.
func Load(dir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("xlate")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("XLATE")
	v.AutomaticEnv()

	bindEnv(v)

	cfg := DefaultConfig()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnv maps the flat environment names the original tooling used onto the
// nested keys, so e.g. XLATE_ORACLE_TOKEN works without a config file.
func bindEnv(v *viper.Viper) {
	for key, env := range map[string]string{
		"workDir":           "XLATE_WORK_DIR",
		"parserDir":         "XLATE_PARSER_DIR",
		"language":          "XLATE_LANGUAGE",
		"oracle.type":       "XLATE_ORACLE_TYPE",
		"oracle.model":      "XLATE_ORACLE_MODEL",
		"oracle.url":        "XLATE_ORACLE_URL",
		"oracle.token":      "XLATE_ORACLE_TOKEN",
		"oracle.botId":      "XLATE_ORACLE_BOT_ID",
		"oracle.scriptPath": "XLATE_ORACLE_SCRIPT",
		"storage.backend":   "XLATE_STORAGE_BACKEND",
	} {
		_ = v.BindEnv(key, env)
	}
}

// Save writes the configuration to xlate.yaml in dir
func (c *Config) Save(dir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "xlate.yaml"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Oracle.Type {
	case "chat", "http", "subprocess":
	default:
		return &ConfigError{Field: "oracle.type", Message: "must be chat, http or subprocess"}
	}
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return &ConfigError{Field: "storage.backend", Message: "must be file or sqlite"}
	}
	if c.Storage.MemoryEntries <= 0 {
		return &ConfigError{Field: "storage.memoryEntries", Message: "must be positive"}
	}
	if c.Supervisor.MaxAttempts < 0 {
		return &ConfigError{Field: "supervisor.maxAttempts", Message: "must be >= 0 (0 retries forever)"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
