package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerLevels(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger("bogus")
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.DebugLevel))
	require.True(t, logger.Core().Enabled(zap.InfoLevel))
}

func TestNewLoggerConsoleFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.txt")
	logger, err := NewLogger("info", WithFormat("console"), WithOutput(out))
	require.NoError(t, err)
	logger.Info("catalog loaded", zap.Int("posts", 3))
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(raw), "catalog loaded")
	require.NotContains(t, string(raw), `"message"`)
}

func TestNewLoggerJSONFieldNames(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log.json")
	logger, err := NewLogger("", WithOutput(out))
	require.NoError(t, err)
	logger.Warn("catalog load failed")
	require.NoError(t, logger.Sync())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"severity":"WARN"`)
	require.Contains(t, string(raw), `"message":"catalog load failed"`)
}

func TestLoggerContext(t *testing.T) {
	require.Equal(t, noopLogger, FromContext(context.Background()))

	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	require.Equal(t, logger, FromContext(ctx))
}

func TestParseCloudTraceContext(t *testing.T) {
	sc, ok := parseCloudTraceContext("105445aa7843bc8bf206b12000100000/1;o=1")
	require.True(t, ok)
	require.Equal(t, "105445aa7843bc8bf206b12000100000", sc.TraceID().String())
	require.Equal(t, "0000000000000001", sc.SpanID().String())
	require.True(t, sc.IsSampled())

	_, ok = parseCloudTraceContext("nope")
	require.False(t, ok)
	_, ok = parseCloudTraceContext("105445aa7843bc8bf206b12000100000/x")
	require.False(t, ok)
}

func TestTraceMiddlewarePassesThrough(t *testing.T) {
	h := Trace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
}
