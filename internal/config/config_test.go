package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helioscope/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HELIOSCOPE_DATA_DIR", "")
	t.Setenv("MISSING_THRESHOLD", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, 0.05, cfg.Data.MissingThreshold)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("HELIOSCOPE_DATA_DIR", "/srv/solar")
	t.Setenv("MISSING_THRESHOLD", "0.2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Server.Port)
	assert.Equal(t, "/srv/solar", cfg.Data.Dir)
	assert.Equal(t, 0.2, cfg.Data.MissingThreshold)
}

func TestLoadRejectsNonNumericThreshold(t *testing.T) {
	t.Setenv("MISSING_THRESHOLD", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadRejectsOutOfRangeThreshold(t *testing.T) {
	for _, raw := range []string{"-0.1", "1.5"} {
		t.Setenv("MISSING_THRESHOLD", raw)
		_, err := Load()
		require.Error(t, err, "threshold %s", raw)
		assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	}
}
