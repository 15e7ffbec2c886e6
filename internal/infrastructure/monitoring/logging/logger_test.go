package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newObservedLogger returns a Logger whose entries are captured for
// inspection.
func newObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_DefaultsApplied(t *testing.T) {
	// Empty config must still build: info level, json, stdout/stderr.
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"bogus", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseLevel(tc.in), "level %q", tc.in)
	}
}

func TestSetLevel_ChangesSharedHandle(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)

	require.True(t, SetLevel(l, "error"))

	zl, ok := l.(*zapLogger)
	require.True(t, ok)
	assert.Equal(t, zapcore.ErrorLevel, zl.lvl.Level())

	// Named and With children share the handle in both directions.
	child, ok := l.Named("pipeline").(*zapLogger)
	require.True(t, ok)
	assert.Equal(t, zapcore.ErrorLevel, child.lvl.Level())

	SetLevel(child, "debug")
	assert.Equal(t, zapcore.DebugLevel, zl.lvl.Level())
}

func TestSetLevel_UnsupportedLogger(t *testing.T) {
	assert.False(t, SetLevel(NewNopLogger(), "debug"))
}

func TestSetLevel_CoreBackedLoggerIsNoOp(t *testing.T) {
	l, _ := newObservedLogger()
	// Built from a raw core, so there is no level handle to adjust; the call
	// must still be safe.
	assert.True(t, SetLevel(l, "debug"))
}

func TestLogger_EmitsMessageAndFields(t *testing.T) {
	l, logs := newObservedLogger()

	l.Info("document coded",
		String("run_id", "abc-123"),
		Int("mentions", 7),
		Float64("duration_s", 1.25),
		Bool("ocr", true),
		Duration("pdf_extract", 500*time.Millisecond),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "document coded", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "abc-123", fields["run_id"])
	assert.EqualValues(t, 7, fields["mentions"])
	assert.Equal(t, 1.25, fields["duration_s"])
	assert.Equal(t, true, fields["ocr"])
}

func TestLogger_ErrField(t *testing.T) {
	l, logs := newObservedLogger()

	l.Error("extraction failed", Err(errors.New("pdftotext: exit status 1")))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "pdftotext: exit status 1", fields["error"])
}

func TestLogger_ErrFieldNil(t *testing.T) {
	l, logs := newObservedLogger()

	l.Warn("odd state", Err(nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "<nil>", fields["error"])
}

func TestLogger_StringsField(t *testing.T) {
	l, logs := newObservedLogger()

	l.Debug("mentions", Strings("terms", []string{"htn", "copd"}))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, []interface{}{"htn", "copd"}, fields["terms"])
}

func TestLogger_WithAttachesFields(t *testing.T) {
	l, logs := newObservedLogger()

	child := l.With(String("component", "resolver"))
	child.Info("cache hit")
	child.Info("cache miss")

	require.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "resolver", entry.ContextMap()["component"])
	}
}

func TestLogger_NamedAppendsName(t *testing.T) {
	l, logs := newObservedLogger()

	l.Named("pipeline").Info("started")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "pipeline", logs.All()[0].LoggerName)
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	assert.NotNil(t, l)
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("x"))
}

func TestDefault_StartsAsNop(t *testing.T) {
	assert.NotNil(t, Default())
}

func TestSetDefault_ReplacesAndIgnoresNil(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l, _ := newObservedLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())

	SetDefault(nil)
	assert.Equal(t, l, Default(), "SetDefault(nil) must be a no-op")
}
