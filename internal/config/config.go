// Package config defines all configuration structures for the
// MedCode-Intelligence platform.  No I/O or parsing logic lives here, only
// plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// TaggerConfig holds the connection parameters for the external NER tagging
// service that produces disease-mention entities.
type TaggerConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Model    string        `mapstructure:"model"`
	Label    string        `mapstructure:"label"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DictionaryConfig holds the location of the prepared terminology assets
// (term-to-concept and concept-to-code JSON files).
type DictionaryConfig struct {
	AssetsDir string `mapstructure:"assets_dir"`
}

// MatchingConfig holds the fuzzy-matching tunables used when an extracted
// mention has no exact dictionary entry.
type MatchingConfig struct {
	FuzzyLimit     int     `mapstructure:"fuzzy_limit"`
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"`
}

// PDFConfig holds tunables for the poppler-based text extraction tools.
type PDFConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// OCRConfig holds tunables for the ocrmypdf-based image-text recovery pass.
type OCRConfig struct {
	Languages string        `mapstructure:"languages"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.
// Every infrastructure component and application service reads its settings
// from the relevant sub-struct.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Tagger     TaggerConfig     `mapstructure:"tagger"`
	Dictionary DictionaryConfig `mapstructure:"dictionary"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	PDF        PDFConfig        `mapstructure:"pdf"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	// Tagger
	if c.Tagger.Endpoint == "" {
		return fmt.Errorf("config: tagger.endpoint is required")
	}
	if c.Tagger.Model == "" {
		return fmt.Errorf("config: tagger.model is required")
	}
	if c.Tagger.Label == "" {
		return fmt.Errorf("config: tagger.label is required")
	}
	if c.Tagger.Timeout <= 0 {
		return fmt.Errorf("config: tagger.timeout must be positive, got %s", c.Tagger.Timeout)
	}

	// Dictionary
	if c.Dictionary.AssetsDir == "" {
		return fmt.Errorf("config: dictionary.assets_dir is required")
	}

	// Matching
	if c.Matching.FuzzyLimit < 1 {
		return fmt.Errorf("config: matching.fuzzy_limit must be ≥ 1, got %d", c.Matching.FuzzyLimit)
	}
	if c.Matching.FuzzyThreshold < 0 || c.Matching.FuzzyThreshold > 100 {
		return fmt.Errorf("config: matching.fuzzy_threshold %g is out of range [0, 100]", c.Matching.FuzzyThreshold)
	}

	// PDF / OCR
	if c.PDF.Timeout <= 0 {
		return fmt.Errorf("config: pdf.timeout must be positive, got %s", c.PDF.Timeout)
	}
	if c.OCR.Languages == "" {
		return fmt.Errorf("config: ocr.languages is required")
	}
	if c.OCR.Timeout <= 0 {
		return fmt.Errorf("config: ocr.timeout must be positive, got %s", c.OCR.Timeout)
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
