package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerHost, cfg.Server.Host)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultTaggerEndpoint, cfg.Tagger.Endpoint)
	assert.Equal(t, DefaultTaggerModel, cfg.Tagger.Model)
	assert.Equal(t, DefaultTaggerLabel, cfg.Tagger.Label)
	assert.Equal(t, DefaultAssetsDir, cfg.Dictionary.AssetsDir)
	assert.Equal(t, DefaultFuzzyLimit, cfg.Matching.FuzzyLimit)
	assert.Equal(t, DefaultFuzzyThreshold, cfg.Matching.FuzzyThreshold)
	assert.Equal(t, DefaultPDFTimeout, cfg.PDF.Timeout)
	assert.Equal(t, DefaultOCRLanguages, cfg.OCR.Languages)
	assert.Equal(t, DefaultOCRTimeout, cfg.OCR.Timeout)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Tagger.Endpoint = "http://tagger.internal:9000"
	cfg.Matching.FuzzyThreshold = 70
	cfg.OCR.Timeout = 5 * time.Minute
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "http://tagger.internal:9000", cfg.Tagger.Endpoint)
	assert.Equal(t, float64(70), cfg.Matching.FuzzyThreshold)
	assert.Equal(t, 5*time.Minute, cfg.OCR.Timeout)
}

func TestApplyDefaults_NilConfig(t *testing.T) {
	assert.NotPanics(t, func() {
		ApplyDefaults(nil)
	})
}

func TestNewDefaultConfig_PassesValidation(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.NoError(t, cfg.Validate())
}
