// Package config loads the dvt configuration: built-in defaults, then an
// optional YAML file, then DEVTRACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file read when no path is given.
const DefaultFile = "devtrack.yaml"

// Config is the dvt configuration.
type Config struct {
	Data     DataConfig   `yaml:"data"`
	S3       S3Config     `yaml:"s3"`
	Currency string       `yaml:"currency"`
	Server   ServerConfig `yaml:"server"`
	Assist   AssistConfig `yaml:"assist"`
}

type DataConfig struct {
	Backend string `yaml:"backend"` // "file" or "s3".
	Path    string `yaml:"path"`
	Atomic  bool   `yaml:"atomic"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Key       string `yaml:"key"`
	PathStyle bool   `yaml:"path_style"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type AssistConfig struct {
	Model string `yaml:"model"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: DataConfig{
			Backend: "file",
			Path:    "projects.json",
			Atomic:  true,
		},
		S3: S3Config{
			Region: "us-east-1",
			Key:    "projects.json",
		},
		Currency: "MYR",
		Server:   ServerConfig{Addr: ":8080"},
		Assist:   AssistConfig{Model: "gemini-2.5-flash"},
	}
}

// Load returns the configuration.
//
// path is the YAML file to read. When empty, DEVTRACK_CONFIG is used, and
// then DefaultFile, which may be missing. A file given explicitly must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv("DEVTRACK_CONFIG")
	}
	if path == "" {
		path, explicit = DefaultFile, false
	}
	if err := loadFromFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides cfg with the DEVTRACK_* variables that are set.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DEVTRACK_DATA_BACKEND": &cfg.Data.Backend,
		"DEVTRACK_DATA_PATH":    &cfg.Data.Path,
		"DEVTRACK_S3_BUCKET":    &cfg.S3.Bucket,
		"DEVTRACK_S3_REGION":    &cfg.S3.Region,
		"DEVTRACK_S3_ENDPOINT":  &cfg.S3.Endpoint,
		"DEVTRACK_S3_KEY":       &cfg.S3.Key,
		"DEVTRACK_CURRENCY":     &cfg.Currency,
		"DEVTRACK_SERVER_ADDR":  &cfg.Server.Addr,
		"DEVTRACK_ASSIST_MODEL": &cfg.Assist.Model,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	bools := map[string]*bool{
		"DEVTRACK_DATA_ATOMIC":   &cfg.Data.Atomic,
		"DEVTRACK_S3_PATH_STYLE": &cfg.S3.PathStyle,
	}
	for name, dst := range bools {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		*dst = b
	}
	return nil
}

// Validate checks that the selected backend is fully configured and that the
// currency is known.
func (c Config) Validate() error {
	switch strings.ToLower(c.Data.Backend) {
	case "file":
		if c.Data.Path == "" {
			return fmt.Errorf("data.path is required for the file backend")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unknown data.backend %q: must be file or s3", c.Data.Backend)
	}
	if money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("unknown currency %q: must be an ISO 4217 code like MYR", c.Currency)
	}
	return nil
}
