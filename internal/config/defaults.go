// Package config provides configuration loading, defaults, and validation for
// the MedCode-Intelligence platform.
package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodySize     = 4 << 20 // 4 MiB

	DefaultTaggerEndpoint = "http://localhost:8000"
	DefaultTaggerModel    = "en_ner_bc5cdr_md"
	DefaultTaggerLabel    = "DISEASE"
	DefaultTaggerTimeout  = 30 * time.Second

	DefaultAssetsDir = "assets"

	DefaultFuzzyLimit     = 3
	DefaultFuzzyThreshold = 85.0

	DefaultPDFTimeout   = 180 * time.Second
	DefaultOCRLanguages = "eng"
	DefaultOCRTimeout   = 600 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "medcode"
)

// ApplyDefaults fills every zero-value field in cfg with the platform default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate() so that
// optional-but-defaulted fields are never seen as missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}

	// ── Tagger ────────────────────────────────────────────────────────────────
	if cfg.Tagger.Endpoint == "" {
		cfg.Tagger.Endpoint = DefaultTaggerEndpoint
	}
	if cfg.Tagger.Model == "" {
		cfg.Tagger.Model = DefaultTaggerModel
	}
	if cfg.Tagger.Label == "" {
		cfg.Tagger.Label = DefaultTaggerLabel
	}
	if cfg.Tagger.Timeout == 0 {
		cfg.Tagger.Timeout = DefaultTaggerTimeout
	}

	// ── Dictionary ────────────────────────────────────────────────────────────
	if cfg.Dictionary.AssetsDir == "" {
		cfg.Dictionary.AssetsDir = DefaultAssetsDir
	}

	// ── Matching ──────────────────────────────────────────────────────────────
	if cfg.Matching.FuzzyLimit == 0 {
		cfg.Matching.FuzzyLimit = DefaultFuzzyLimit
	}
	if cfg.Matching.FuzzyThreshold == 0 {
		cfg.Matching.FuzzyThreshold = DefaultFuzzyThreshold
	}

	// ── PDF / OCR ─────────────────────────────────────────────────────────────
	if cfg.PDF.Timeout == 0 {
		cfg.PDF.Timeout = DefaultPDFTimeout
	}
	if cfg.OCR.Languages == "" {
		cfg.OCR.Languages = DefaultOCRLanguages
	}
	if cfg.OCR.Timeout == 0 {
		cfg.OCR.Timeout = DefaultOCRTimeout
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// NewDefaultConfig returns a Config populated entirely with platform defaults.
// It always passes Validate and is the fallback used by entry points when no
// config file is present.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
