package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-jdsl/internal/log"
	"github.com/goliatone/go-jdsl/pkg/diag"
	"github.com/goliatone/go-jdsl/pkg/interp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jdsl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
templates: views
renderer: xml
engine:
  prefix: x
  max_call_depth: 16
  loop_counter: legacy
log:
  debug: true
watch:
  debounce: 1s
`)
	cfg, err := Load(New(), path)
	require.NoError(t, err)
	require.Equal(t, "views", cfg.Templates)
	require.Equal(t, "xml", cfg.Renderer)
	require.Equal(t, "x", cfg.Engine.Prefix)
	require.Equal(t, 16, cfg.Engine.MaxCallDepth)
	require.Equal(t, "legacy", cfg.Engine.LoopCounter)
	require.Equal(t, interp.DefaultNamespaceURI, cfg.Engine.NamespaceURI)
	require.Equal(t, time.Second, cfg.Watch.Debounce)
	require.Equal(t, log.LevelDebug, cfg.LogLevel())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JDSL_RENDERER", "text")
	t.Setenv("JDSL_ENGINE_DEFAULT_DATA_TYPE", "json")

	cfg, err := Load(New(), writeConfig(t, "renderer: html\n"))
	require.NoError(t, err)
	require.Equal(t, "text", cfg.Renderer)
	require.Equal(t, "json", cfg.Engine.DefaultDataType)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"renderer":     "renderer: pdf\n",
		"loop counter": "engine:\n  loop_counter: one-based\n",
		"prefix":       "engine:\n  prefix: \"\"\n",
		"depth":        "engine:\n  max_call_depth: -1\n",
	}
	for name, body := range cases {
		_, err := Load(New(), writeConfig(t, body))
		require.Error(t, err, name)
	}

	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestEngineOptionsBuildEngine(t *testing.T) {
	t.Parallel()

	cfg := Defaults()
	cfg.Engine.Prefix = "x"
	cfg.Engine.LoopCounter = "legacy"
	cfg.Engine.DefaultDataType = "json"

	engine, err := interp.New(append(cfg.EngineOptions(), interp.WithSink(diag.Discard))...)
	require.NoError(t, err)

	got := engine.Config()
	require.Equal(t, "x", got.Prefix)
	require.Equal(t, interp.LoopCounterLegacy, got.LoopCounter)
	require.Equal(t, "json", got.DefaultDataType)
	require.Equal(t, "x", got.PreserveText[0].Space)
}
