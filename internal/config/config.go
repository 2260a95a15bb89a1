package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "entitysync.yaml"

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Root     string         `yaml:"root"`
	Template string         `yaml:"template"`
	Export   ExportConfig   `yaml:"export"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Watch    WatchConfig    `yaml:"watch"`
	Ingest   IngestConfig   `yaml:"ingest"`
}

type ExportConfig struct {
	Path   string `yaml:"path"`
	OnSave bool   `yaml:"on_save"`
	Indent int    `yaml:"indent"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

type IngestConfig struct {
	Paths   []string `yaml:"paths"`
	Exclude []string `yaml:"exclude"`
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

	applyDefaults(&cfg, filepath.Dir(path))

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset fields. A relative root is taken relative to the
// directory holding the config file.
func applyDefaults(cfg *ProjectConfig, configDir string) {
	if strings.TrimSpace(cfg.Root) == "" {
		cfg.Root = configDir
	} else if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(configDir, cfg.Root)
	}
	if cfg.Export.Indent == 0 {
		cfg.Export.Indent = 4
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "sqlite://" + filepath.Join(cfg.Root, ".entitysync.db")
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 250 * time.Millisecond
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Template) == "" {
		return fmt.Errorf("template path is required")
	}
	if strings.TrimSpace(cfg.Export.Path) == "" {
		return fmt.Errorf("export path is required")
	}
	if cfg.Export.Indent < 0 {
		return fmt.Errorf("export indent must not be negative: %d", cfg.Export.Indent)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", cfg.Log.Format)
	}
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}

	for i, path := range cfg.Ingest.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("ingest path %d is empty", i)
		}
	}

	return nil
}
