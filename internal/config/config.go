package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/reforma-dev/reforma/internal/imagecodec"
)

// FileName is the project config file inside the data dir.
const FileName = "reforma.yaml"

// Environment variables read by the CLI.
const (
	EnvDir      = "REFORMA_DIR"
	EnvLogLevel = "REFORMA_LOG_LEVEL"
)

// Config represents the top-level reforma.yaml configuration.
type Config struct {
	Project ProjectConfig `yaml:"project"`
	Images  ImagesConfig  `yaml:"images"`
	Log     LogConfig     `yaml:"log"`
	Git     GitConfig     `yaml:"git"`
}

// ProjectConfig identifies the renovation.
type ProjectConfig struct {
	Name     string `yaml:"name"`
	Language string `yaml:"language"` // BCP 47 tag used by reports, e.g. "pt-BR"
	Currency string `yaml:"currency"`
}

// ImagesConfig holds the compression preset per asset kind.
type ImagesConfig struct {
	Plan    imagecodec.Preset `yaml:"plan"`
	Photo   imagecodec.Preset `yaml:"photo"`
	Receipt imagecodec.Preset `yaml:"receipt"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// GitConfig controls snapshots of the data dir.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a reforma.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadDir reads <dir>/reforma.yaml, falling back to defaults when the file
// does not exist. A .env file in dir is loaded into the environment first.
func LoadDir(dir string) (*Config, error) {
	if err := LoadEnv(dir); err != nil {
		return nil, err
	}
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = Default(filepath.Base(dir))
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

// LoadEnv loads <dir>/.env without overriding variables already set.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(projectName string) *Config {
	return &Config{
		Project: ProjectConfig{
			Name:     projectName,
			Language: "pt-BR",
			Currency: "R$",
		},
		Images: ImagesConfig{
			Plan:    imagecodec.Plan,
			Photo:   imagecodec.Photo,
			Receipt: imagecodec.Receipt,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Reforma",
			AuthorEmail: "reforma@localhost",
		},
	}
}

// NewLogger builds a logrus logger writing to w.
func NewLogger(c LogConfig, w io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)

	level := logrus.InfoLevel
	if c.Level != "" {
		l, err := logrus.ParseLevel(c.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}
	log.SetLevel(level)

	switch c.Format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
	return log, nil
}
