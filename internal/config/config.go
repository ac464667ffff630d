// Package config holds the runtime settings of the stop link extractor.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Felipe408821/GeoJsonMapGenerator/internal/extractor"
)

// Source names accepted by Config.Source.
const (
	SourceBrowser = "browser"
	SourceHTTP    = "http"
)

// Config is the merged result of defaults, the optional YAML file and flags.
type Config struct {
	URL         string        `yaml:"url"`
	File        string        `yaml:"file"`
	Source      string        `yaml:"source"`
	Tag         string        `yaml:"tag"`
	Class       string        `yaml:"class"`
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
	OutDir      string        `yaml:"out_dir"`
	OutName     string        `yaml:"out_name"`
	StopsCSV    string        `yaml:"stops_csv"`
	Headless    bool          `yaml:"headless"`
	UserAgent   string        `yaml:"user_agent"`
	LogFile     string        `yaml:"log_file"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Source:   SourceBrowser,
		Tag:      extractor.DefaultTag,
		Class:    extractor.DefaultClass,
		Interval: extractor.DefaultInterval,
		OutDir:   ".",
		OutName:  extractor.DefaultOutName,
		Headless: true,
	}
}

// Load reads a YAML file on top of Default. Keys absent from the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Selector returns the CSS selector built from Tag and Class.
func (c Config) Selector() (string, error) {
	return extractor.ClassSelector(c.Tag, c.Class)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.URL == "" && c.File == "":
		return errors.New("one of url or file is required")
	case c.URL != "" && c.File != "":
		return errors.New("url and file are mutually exclusive")
	case c.File == "" && c.Source != SourceBrowser && c.Source != SourceHTTP:
		return fmt.Errorf("unknown source %q (want %s or %s)", c.Source, SourceBrowser, SourceHTTP)
	case c.Interval <= 0:
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	case c.MaxAttempts < 0:
		return fmt.Errorf("max_attempts must not be negative, got %d", c.MaxAttempts)
	case c.Timeout < 0:
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	case c.OutName == "":
		return errors.New("out_name must not be empty")
	}
	if _, err := c.Selector(); err != nil {
		return err
	}
	return nil
}
