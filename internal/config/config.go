// Package config loads hdlorder settings from an optional YAML file and the
// environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hdlorder/internal/logging"
)

// DefaultPath is read when no config file is named explicitly.
const DefaultPath = "hdlorder.yaml"

// Config holds the settings shared by all commands.
type Config struct {
	DumpDir     string `yaml:"dump_dir"`
	Report      bool   `yaml:"report"`
	DumpGraph   bool   `yaml:"dump_graph"`
	Database    string `yaml:"database"`
	MetricsFile string `yaml:"metrics_file"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DumpDir:  ".",
		LogLevel: "info",
	}
}

// Load returns the defaults overlaid with the file at path and then with
// HDLORDER_* environment variables. An empty path means DefaultPath, which
// may be absent; an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// no config file
	default:
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var err error
	cfg.DumpDir = envString("HDLORDER_DUMP_DIR", cfg.DumpDir)
	if cfg.Report, err = envBool("HDLORDER_REPORT", cfg.Report); err != nil {
		return err
	}
	if cfg.DumpGraph, err = envBool("HDLORDER_DUMP_GRAPH", cfg.DumpGraph); err != nil {
		return err
	}
	cfg.Database = envString("HDLORDER_DB", cfg.Database)
	cfg.MetricsFile = envString("HDLORDER_METRICS_FILE", cfg.MetricsFile)
	cfg.LogLevel = envString("HDLORDER_LOG_LEVEL", cfg.LogLevel)
	return nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c Config) Validate() error {
	if c.DumpDir == "" {
		return fmt.Errorf("dump_dir must not be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

func envString(name, fallback string) string {
	if raw, ok := os.LookupEnv(name); ok && raw != "" {
		return raw
	}
	return fallback
}

func envBool(name string, fallback bool) (bool, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", name, raw)
	}
	return v, nil
}
