// Package config manages application configuration.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration.
type Config struct {
	Export ExportConfig `yaml:"export"`
	PDF    PDFConfig    `yaml:"pdf"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Log    LogConfig    `yaml:"log"`
}

// ExportConfig is the default render profile.
type ExportConfig struct {
	Template string       `yaml:"template"`
	Colors   *BrandColors `yaml:"colors,omitempty"`
}

// BrandColors override the template colors.
type BrandColors struct {
	Primary   string `yaml:"primary,omitempty"`
	Secondary string `yaml:"secondary,omitempty"`
	Accent    string `yaml:"accent,omitempty"`
}

// PDFConfig contains rasterizer options.
type PDFConfig struct {
	PageFormat    string `yaml:"page_format"`
	Orientation   string `yaml:"orientation"`
	Timeout       string `yaml:"timeout"`
	ViewportWidth int    `yaml:"viewport_width"`
	SecondaryFont string `yaml:"secondary_font,omitempty"` // TTF path for right-to-left text
}

// TimeoutDuration parses Timeout, falling back to 30s when blank.
func (p PDFConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(p.Timeout) == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("pdf.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("pdf.timeout must be positive: %s", p.Timeout)
	}
	return d, nil
}

// ServerConfig contains preview server options.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// StoreConfig selects the publication store.
type StoreConfig struct {
	Backend string `yaml:"backend"` // file or postgres
	Dir     string `yaml:"dir,omitempty"`
	DSN     string `yaml:"dsn,omitempty"`
}

// LogConfig contains logging options.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Export: ExportConfig{Template: "professional"},
		PDF: PDFConfig{
			PageFormat:    "a4",
			Orientation:   "portrait",
			Timeout:       "30s",
			ViewportWidth: 794,
		},
		Server: ServerConfig{Address: ":8080"},
		Store: StoreConfig{
			Backend: "file",
			Dir:     "./data",
			DSN:     "${PUBRENDER_DATABASE_URL}",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Keys lists the keys accepted by Set.
var Keys = []string{
	"export.template",
	"export.colors.primary",
	"export.colors.secondary",
	"export.colors.accent",
	"pdf.page_format",
	"pdf.orientation",
	"pdf.timeout",
	"pdf.viewport_width",
	"pdf.secondary_font",
	"server.address",
	"store.backend",
	"store.dir",
	"store.dsn",
	"log.level",
	"log.file",
}

// Set updates a single key. Values are checked for the keys with a closed
// set of options.
func (c *Config) Set(key, value string) error {
	oneOf := func(valid ...string) error {
		for _, v := range valid {
			if v == value {
				return nil
			}
		}
		return fmt.Errorf("invalid value for %s: %s (valid: %s)", key, value, strings.Join(valid, ", "))
	}
	colors := func() *BrandColors {
		if c.Export.Colors == nil {
			c.Export.Colors = &BrandColors{}
		}
		return c.Export.Colors
	}

	switch key {
	case "export.template":
		if err := oneOf("professional", "minimal", "branded"); err != nil {
			return err
		}
		c.Export.Template = value
	case "export.colors.primary":
		colors().Primary = value
	case "export.colors.secondary":
		colors().Secondary = value
	case "export.colors.accent":
		colors().Accent = value
	case "pdf.page_format":
		if err := oneOf("a4", "letter", "a5"); err != nil {
			return err
		}
		c.PDF.PageFormat = value
	case "pdf.orientation":
		if err := oneOf("portrait", "landscape"); err != nil {
			return err
		}
		c.PDF.Orientation = value
	case "pdf.timeout":
		if _, err := (PDFConfig{Timeout: value}).TimeoutDuration(); err != nil {
			return err
		}
		c.PDF.Timeout = value
	case "pdf.viewport_width":
		w, err := strconv.Atoi(value)
		if err != nil || w < 320 {
			return fmt.Errorf("invalid value for %s: %s (want an integer >= 320)", key, value)
		}
		c.PDF.ViewportWidth = w
	case "pdf.secondary_font":
		c.PDF.SecondaryFont = value
	case "server.address":
		c.Server.Address = value
	case "store.backend":
		if err := oneOf("file", "postgres"); err != nil {
			return err
		}
		c.Store.Backend = value
	case "store.dir":
		c.Store.Dir = value
	case "store.dsn":
		c.Store.DSN = value
	case "log.level":
		if err := oneOf("debug", "info", "warn", "error"); err != nil {
			return err
		}
		c.Log.Level = value
	case "log.file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown config key: %s\nsupported keys: %s", key, strings.Join(Keys, ", "))
	}
	return nil
}
