package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/polyreg/pkg/errors"
)

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", ErrorCodeKey, ErrorUnderdetermined)
	testLogger.Error("error message", fmt.Errorf("boom"), ErrorCodeKey, ErrorNotFitted)

	require.NotEmpty(t, buffer.String())

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		assert.True(t, testLogger.ContainsMessage(msg), "missing %q", msg)
	}
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0)) // JSON numbers decode as float64
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "boom"))

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestTestLoggerLevelFilter(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelWarn)

	testLogger.Debug("hidden")
	testLogger.Info("hidden too")
	testLogger.Warn("shown")

	assert.False(t, testLogger.ContainsMessage("hidden"))
	assert.True(t, testLogger.ContainsMessage("shown"))
	assert.False(t, testLogger.Enabled(context.Background(), LevelInfo))
	assert.True(t, testLogger.Enabled(context.Background(), LevelError))

	testLogger.SetLevel(LevelDebug)
	assert.True(t, testLogger.Enabled(context.Background(), LevelDebug))
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "PolynomialRegression",
		ComponentKey, "linear",
	)
	contextLogger.Info("contextual message", OperationKey, OperationPredict)

	assert.True(t, testLogger.ContainsField(ModelNameKey, "PolynomialRegression"))
	assert.True(t, testLogger.ContainsField(ComponentKey, "linear"))
	assert.True(t, testLogger.ContainsField(OperationKey, OperationPredict))

	testLogger.Clear()
	assert.False(t, testLogger.ContainsMessage("contextual message"))
}

func TestTestLoggerProvider(t *testing.T) {
	provider, buffer := NewTestLoggerProvider(LevelInfo)

	provider.GetLoggerWithName("metrics").Info("scored")
	assert.Contains(t, buffer.String(), `"ml.component":"metrics"`)

	provider.SetLevel(LevelError)
	provider.GetLogger().Info("dropped")
	assert.NotContains(t, buffer.String(), "dropped")
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("not emitted")
	logger.With(ModelNameKey, "PolynomialFeatures").Info("transformed", SamplesKey, 3, FeaturesKey, 2)

	out := buf.String()
	assert.NotContains(t, out, "not emitted")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "transformed", entry["message"])
	assert.Equal(t, "PolynomialFeatures", entry[ModelNameKey])
	assert.Equal(t, 3.0, entry[SamplesKey])

	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), LevelWarn))
}

func TestZerologLoggerErrorDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug)

	err := errors.NewDimensionError("RMSE", 3, 2, 0)
	logger.Error("metric failed", err, OperationKey, OperationScore)

	out := buf.String()
	assert.Contains(t, out, `"error":"polyreg: RMSE: dimension mismatch`)
	assert.Contains(t, out, `"type":"DimensionError"`)
	assert.Contains(t, out, `"ml.operation":"score"`)
}

func TestSetLoggerRoutesWarnings(t *testing.T) {
	previous := GetLogger()
	t.Cleanup(func() { SetLogger(previous) })

	var buf bytes.Buffer
	SetLogger(NewZerologLogger(&buf, LevelWarn))

	errors.Warn(errors.NewRankWarning("polyfit", 2, 3, 1e-15))

	assert.Contains(t, buf.String(), `"type":"RankWarning"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestGetLoggerWithName(t *testing.T) {
	previous := GetLogger()
	t.Cleanup(func() { SetLogger(previous) })

	testLogger, _ := NewTestLogger(LevelDebug)
	SetLogger(testLogger)

	GetLoggerWithName("preprocessing").Debug("hello")
	assert.True(t, testLogger.ContainsField(ComponentKey, "preprocessing"))
}

func TestSlogLoggerWithErrFmtHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger := NewSlogLogger(slog.New(handler)).With(ComponentKey, "linear")

	logger.Error("fit failed", errors.NewModelError("ComputeWeights", "underdetermined fit", errors.ErrUnderdetermined))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "linear", entry[ComponentKey])
	assert.Contains(t, entry, ErrAttrKey)
	assert.NotEmpty(t, entry[StacktraceAttrKey])
	assert.True(t, logger.Enabled(context.Background(), LevelDebug))
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToLogLevel(tt.in)
			if tt.wantErr {
				var ve *errors.ValidationError
				assert.True(t, errors.As(err, &ve))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(99).String())
}

func TestSetupLogger(t *testing.T) {
	previous := GetLogger()
	previousDefault := slog.Default()
	t.Cleanup(func() {
		SetLogger(previous)
		slog.SetDefault(previousDefault)
	})

	var buf bytes.Buffer
	require.NoError(t, setupLogger(&buf, "info"))

	_, ok := GetLogger().(*SlogLogger)
	require.True(t, ok, "SetupLogger should install a slog-backed logger")

	GetLogger().Debug("not emitted")
	GetLogger().Info("ready", SamplesKey, 3)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "INFO", entry["severity"])
	assert.Equal(t, "ready", entry["message"])
	assert.Equal(t, 3.0, entry[SamplesKey])
	assert.Contains(t, entry, "logging.googleapis.com/sourceLocation")
	assert.NotContains(t, buf.String(), "not emitted")
}

func TestSetupLoggerInvalidLevel(t *testing.T) {
	previous := GetLogger()
	t.Cleanup(func() { SetLogger(previous) })

	err := SetupLogger("verbose")
	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "loglevel", ve.ParamName)
	assert.Same(t, previous, GetLogger())
}
