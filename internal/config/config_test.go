package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"boundre"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boundre.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, boundre.DefaultRatio, cfg.Guard.Ratio)
	assert.Equal(t, boundre.DefaultMaxErrors, cfg.Guard.MaxErrors)
	assert.Equal(t, boundre.DefaultMaxDepth, cfg.Guard.MaxDepth)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPathAndMissingFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
guard:
  ratio: 50
  max_errors: 3
logging:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Guard.Ratio)
	assert.Equal(t, 3, cfg.Guard.MaxErrors)
	assert.Equal(t, boundre.DefaultMaxDepth, cfg.Guard.MaxDepth, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	_, err := Load(writeConfig(t, "guard: [not, a, map]"))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = Load(writeConfig(t, "guard:\n  ratio: 0\n"))
	assert.ErrorContains(t, err, "guard.ratio")

	_, err = Load(t.TempDir())
	assert.ErrorContains(t, err, "failed to read config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BOUNDRE_RATIO", "20")
	t.Setenv("BOUNDRE_MAX_ERRORS", "0")
	t.Setenv("BOUNDRE_MAX_DEPTH", "4096")
	t.Setenv("BOUNDRE_LOG_LEVEL", "error")

	cfg, err := Load(writeConfig(t, "guard:\n  ratio: 50\n"))
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Guard.Ratio)
	assert.Equal(t, 0, cfg.Guard.MaxErrors)
	assert.Equal(t, 4096, cfg.Guard.MaxDepth)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestEnvOverrideMustBeNumeric(t *testing.T) {
	t.Setenv("BOUNDRE_MAX_ERRORS", "many")
	_, err := Load("")
	assert.ErrorContains(t, err, "BOUNDRE_MAX_ERRORS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"negative max errors", func(c *Config) { c.Guard.MaxErrors = -1 }, "guard.max_errors"},
		{"zero depth", func(c *Config) { c.Guard.MaxDepth = 0 }, "guard.max_depth"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}
}

func TestGuardOptions(t *testing.T) {
	cfg := Default()
	cfg.Guard.Ratio = 7
	cfg.Guard.MaxErrors = 2

	p, err := boundre.NewPattern(`(a+)+b`, 0, cfg.GuardOptions(zap.NewNop())...)
	require.NoError(t, err)
	assert.Equal(t, 7, p.Ratio())
	assert.Equal(t, 2, p.MaxErrors())
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "debug"
	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	cfg.Logging.Level = "nope"
	_, err = cfg.NewLogger()
	assert.Error(t, err)
}
