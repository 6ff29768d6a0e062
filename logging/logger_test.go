package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal(line, &rec))
		out = append(out, rec)
	}
	return out
}

func TestLoggerWritesServiceAndTraceFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromConfig(Config{Service: "prodplan", Module: "planning", Level: "info", Output: &buf})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	l.InfoContext(ctx, "plan solved", "products", 2)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "prodplan", rec["service"])
	assert.Equal(t, "planning", rec["module"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rec["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", rec["span_id"])
	assert.Contains(t, rec, "timestamp")
	assert.EqualValues(t, 2, rec["products"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromConfig(Config{Service: "s", Module: "m", Level: "warn", Output: &buf})
	defer SetLevel("info")

	l.Info("hidden")
	assert.Empty(t, decodeLines(t, &buf))

	SetLevel("debug")
	l.Debug("visible")
	assert.Len(t, decodeLines(t, &buf), 1)
}

func TestFileOutputFansOut(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "prodplan.log")
	l := NewFromConfig(Config{Service: "s", Module: "m", Level: "info", File: path, MaxSize: 1, Output: &buf})

	l.Named("export").Info("written")

	assert.Len(t, decodeLines(t, &buf), 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"export"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("DEBUG").String())
	assert.Equal(t, "WARN", ParseLevel("warning").String())
	assert.Equal(t, "ERROR", ParseLevel("error").String())
	assert.Equal(t, "INFO", ParseLevel("bogus").String())
}

func TestDefaultIsSharedAcrossGoroutines(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{Service: "prodplan", Module: "cli", Level: "debug", Output: &buf}
	defer SetLevel("info")

	got := make([]*Logger, 8)
	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			InitLogger(cfg)
			got[i] = Default()
		}()
	}
	wg.Wait()
	for _, l := range got {
		require.Same(t, got[0], l)
	}

	var other bytes.Buffer
	replaced := NewFromConfig(Config{Service: "prodplan", Module: "cli", Level: "debug", Output: &other})
	SetDefault(replaced)
	SetDefault(nil)
	require.Same(t, replaced, Default())
	SetDefault(got[0])

	SetLevel("debug")
	ctx := context.Background()
	Debug(ctx, "loaded")
	Info(ctx, "watching")
	Warn(ctx, "watcher error")
	Error(ctx, "export failed")
	LogDuration(ctx, "capacity sweep", "points", 3)()

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 5)
	assert.Equal(t, "DEBUG", recs[0]["level"])
	assert.Equal(t, "ERROR", recs[3]["level"])
	assert.Equal(t, "capacity sweep finished", recs[4]["msg"])
	assert.EqualValues(t, 3, recs[4]["points"])
	assert.Contains(t, recs[4], "duration")
}
