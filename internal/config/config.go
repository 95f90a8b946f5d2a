// Package config loads ts-fixer settings.
//
// Precedence (highest to lowest):
//  1. Environment variables (TS_FIXER_PACKAGE_MANAGER, TS_FIXER_DRY_RUN, ...)
//  2. YAML file (.ts-fixer.yaml in the working directory)
//  3. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
)

const (
	EnvPrefix   = "TS_FIXER_"
	DefaultFile = ".ts-fixer.yaml"

	maxConfigFileSize = 1024 * 1024
)

type Config struct {
	WorkDir        string `koanf:"work_dir"`
	LogFile        string `koanf:"log_file"`
	TSConfig       string `koanf:"tsconfig"`
	ReportFile     string `koanf:"report_file"`
	DiagnosticLog  string `koanf:"diagnostic_log"`
	PackageManager string `koanf:"package_manager"` // "auto" detects from the lockfile
	HistoryDB      string `koanf:"history_db"`
	LogLevel       string `koanf:"log_level"`
	DryRun         bool   `koanf:"dry_run"`
	NoHistory      bool   `koanf:"no_history"`
}

// Load reads path (DefaultFile when empty; a missing file is fine), then the
// environment, then fills defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = DefaultFile
	}

	if info, err := os.Stat(path); err == nil {
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// TS_FIXER_PACKAGE_MANAGER -> package_manager
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	if cfg.LogFile == "" {
		cfg.LogFile = "ts_errors.log"
	}
	if cfg.TSConfig == "" {
		cfg.TSConfig = "tsconfig.json"
	}
	if cfg.ReportFile == "" {
		cfg.ReportFile = "error_report.txt"
	}
	if cfg.DiagnosticLog == "" {
		cfg.DiagnosticLog = "error_fixer.log"
	}
	if cfg.PackageManager == "" {
		cfg.PackageManager = "npm"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.HistoryDB == "" && !cfg.NoHistory {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.HistoryDB = filepath.Join(home, ".ts-fixer", "history.db")
		}
	}
}

func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	if strings.ContainsAny(c.PackageManager, " \t") {
		return fmt.Errorf("package_manager must be a single executable name, got %q", c.PackageManager)
	}
	return nil
}

// Level returns the parsed log level; Validate guarantees it parses.
func (c *Config) Level() zapcore.Level {
	l, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.DebugLevel
	}
	return l
}

// Path resolves p against WorkDir unless it is already absolute.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}

// HistoryEnabled reports whether runs should be recorded.
func (c *Config) HistoryEnabled() bool {
	return !c.NoHistory && c.HistoryDB != ""
}
