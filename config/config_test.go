package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfmerge/config"
)

// chdir changes the working directory for the duration of the test,
// equivalent to t.Chdir (which requires Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "1.7", cfg.Version)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.MaxStreamLength)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"version: \"1.5\"\nlog_level: debug\nmax_stream_length: 1024\n",
	), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.5", cfg.Version)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.EqualValues(t, 1024, cfg.MaxStreamLength)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1.5\"\n"), 0o644))
	t.Setenv("PDFMERGE_VERSION", "2.0")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2.0", cfg.Version)
}

func TestDotenvLocal(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"),
		[]byte("PDFMERGE_LOG_LEVEL=warn\n"), 0o644))

	// godotenv never overrides an already-set variable
	if old, had := os.LookupEnv("PDFMERGE_LOG_LEVEL"); had {
		os.Unsetenv("PDFMERGE_LOG_LEVEL")
		t.Cleanup(func() { os.Setenv("PDFMERGE_LOG_LEVEL", old) })
	}
	t.Cleanup(func() { os.Unsetenv("PDFMERGE_LOG_LEVEL") })

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
