package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPrefix      = "Import"
	DefaultDestination = "world"
	DefaultDataRoot    = "./data"
	DefaultPublicURL   = "http://localhost:30000"
	DefaultDSN         = "sqlite://./encounterport.db"

	DefaultManifestDepth = 2
	DefaultIndexDepth    = 4
	DefaultRepairDepth   = 6
	DefaultMaxFiles      = 25000
)

type ProjectConfig struct {
	Version       int            `yaml:"version"`
	SourcePath    string         `yaml:"source_path" env:"ENCOUNTERPORT_SOURCE_PATH"`
	Prefix        string         `yaml:"prefix" env:"ENCOUNTERPORT_PREFIX"`
	Destination   string         `yaml:"destination"`
	DataRoot      string         `yaml:"data_root" env:"ENCOUNTERPORT_DATA_ROOT"`
	PublicURL     string         `yaml:"public_url" env:"ENCOUNTERPORT_PUBLIC_URL"`
	RoutePrefix   string         `yaml:"route_prefix" env:"ENCOUNTERPORT_ROUTE_PREFIX"`
	UserDataRoots []string       `yaml:"user_data_roots"`
	IconRules     string         `yaml:"icon_rules"`
	Database      DatabaseConfig `yaml:"database"`
	Scan          ScanConfig     `yaml:"scan"`
	Logging       LoggingConfig  `yaml:"logging"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"ENCOUNTERPORT_DATABASE_DSN"`
}

// ScanConfig depths are pointers so an explicit 0 (root directory only) is kept.
type ScanConfig struct {
	ManifestDepth *int `yaml:"manifest_depth"`
	IndexDepth    *int `yaml:"index_depth"`
	RepairDepth   *int `yaml:"repair_depth"`
	MaxFiles      int  `yaml:"max_files"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"ENCOUNTERPORT_LOG_LEVEL"`
	Format string `yaml:"format" env:"ENCOUNTERPORT_LOG_FORMAT"`
}

// Default returns a config populated with every default value.
func Default() *ProjectConfig {
	cfg := &ProjectConfig{Version: 1}
	applyDefaults(cfg)
	return cfg
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: parse env: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// Depth returns a pointer to d, for setting scan depths.
func Depth(d int) *int {
	return &d
}

func applyDefaults(cfg *ProjectConfig) {
	if strings.TrimSpace(cfg.Prefix) == "" {
		cfg.Prefix = DefaultPrefix
	}
	if strings.TrimSpace(cfg.Destination) == "" {
		cfg.Destination = DefaultDestination
	}
	if strings.TrimSpace(cfg.DataRoot) == "" {
		cfg.DataRoot = DefaultDataRoot
	}
	if strings.TrimSpace(cfg.PublicURL) == "" {
		cfg.PublicURL = DefaultPublicURL
	}
	if cfg.UserDataRoots == nil {
		cfg.UserDataRoots = []string{"encounter-source"}
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		cfg.Database.DSN = DefaultDSN
	}
	if cfg.Scan.ManifestDepth == nil {
		cfg.Scan.ManifestDepth = Depth(DefaultManifestDepth)
	}
	if cfg.Scan.IndexDepth == nil {
		cfg.Scan.IndexDepth = Depth(DefaultIndexDepth)
	}
	if cfg.Scan.RepairDepth == nil {
		cfg.Scan.RepairDepth = Depth(DefaultRepairDepth)
	}
	if cfg.Scan.MaxFiles == 0 {
		cfg.Scan.MaxFiles = DefaultMaxFiles
	}
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "info"
	}
	if strings.TrimSpace(cfg.Logging.Format) == "" {
		cfg.Logging.Format = "console"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if !strings.EqualFold(cfg.Destination, DefaultDestination) {
		return fmt.Errorf("unsupported destination: %s", cfg.Destination)
	}
	if *cfg.Scan.ManifestDepth < 0 || *cfg.Scan.IndexDepth < 0 || *cfg.Scan.RepairDepth < 0 {
		return fmt.Errorf("scan depths must not be negative")
	}
	if cfg.Scan.MaxFiles < 0 {
		return fmt.Errorf("scan max_files must be positive")
	}

	dsn := strings.ToLower(cfg.Database.DSN)
	if !strings.HasPrefix(dsn, "sqlite://") && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return fmt.Errorf("unsupported database dsn scheme: %s", cfg.Database.DSN)
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Logging.Format)
	}

	seen := make(map[string]struct{})
	for i, root := range cfg.UserDataRoots {
		trimmed := strings.Trim(strings.TrimSpace(root), "/")
		if trimmed == "" {
			return fmt.Errorf("user data root %d is empty", i)
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("duplicate user data root: %s", root)
		}
		seen[key] = struct{}{}
	}

	return nil
}
