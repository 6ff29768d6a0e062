package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prodplan.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
version = "1.2.0"

[log]
level = "debug"
`)
	conf, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, "1.2.0", conf.Version)
	assert.Equal(t, "debug", conf.Log.Level)
	assert.Equal(t, int32(2), conf.Solver.Precision)
	assert.Equal(t, 1e-10, conf.Solver.Tolerance)
	assert.Equal(t, "prodplan", conf.Metrics.Namespace)
}

func TestReadSolverSection(t *testing.T) {
	path := writeConfig(t, `
[solver]
precision = 3
tolerance = 1e-9
binding_tolerance = 1e-4
`)
	conf, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, int32(3), conf.Solver.Precision)
	assert.Equal(t, 1e-9, conf.Solver.Tolerance)
	assert.Equal(t, 1e-4, conf.Solver.BindingTolerance)
}

func TestReadEnvOverride(t *testing.T) {
	t.Setenv("APP_SOLVER_PRECISION", "4")
	path := writeConfig(t, "[solver]\nprecision = 1\n")

	conf, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, int32(4), conf.Solver.Precision)
}

func TestReadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "precision too large", body: "[solver]\nprecision = 9\n"},
		{name: "zero tolerance", body: "[solver]\ntolerance = 0.0\n"},
		{name: "unknown log level", body: "[log]\nlevel = \"loud\"\n"},
		{name: "tracing without endpoint", body: "[tracing]\nenabled = true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config error")
}

func TestMask(t *testing.T) {
	m := map[string]any{
		"tracing": map[string]any{"otlp_endpoint": "collector:4317", "enabled": true},
		"version": "1",
	}
	mask(m)

	assert.Equal(t, "******", m["tracing"].(map[string]any)["otlp_endpoint"])
	assert.Equal(t, true, m["tracing"].(map[string]any)["enabled"])
	assert.Equal(t, "1", m["version"])
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, validate.Struct(Default()))
}

func TestPrintWithMaskHidesEndpoint(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	conf := Default()
	conf.Tracing.OTLPEndpoint = "collector:4317"

	PrintWithMask(logger, conf)

	out := buf.String()
	assert.Contains(t, out, "current effective configuration")
	assert.Contains(t, out, "******")
	assert.NotContains(t, out, "collector:4317")
	assert.Contains(t, out, `\"Precision\":2`)
}
