package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPlaywright, cfg.Driver)
	assert.Equal(t, 6*time.Second, cfg.Timeout)
	assert.Equal(t, 10*time.Second, cfg.ExtendedTimeout)
	assert.Equal(t, 2*time.Second, cfg.ReducedTimeout)
	assert.Equal(t, "%d %B %Y", cfg.DateFormat)
	assert.True(t, cfg.JavaScript)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("SNAP_DRIVER", "selenium")
	t.Setenv("SNAP_BASE_URL", "http://moodle.test")
	t.Setenv("SNAP_TIMEOUT", "3s")
	t.Setenv("SNAP_JAVASCRIPT", "false")
	t.Setenv("SNAP_TIMEZONE", "Australia/Perth")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSelenium, cfg.Driver)
	assert.Equal(t, "http://moodle.test", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeouts().Default)
	assert.False(t, cfg.JavaScript)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Australia/Perth", loc.String())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	cfg := valid()
	cfg.Driver = "lynx"
	assert.ErrorContains(t, cfg.Validate(), "unknown driver")

	cfg = valid()
	cfg.ReducedTimeout = 0
	assert.ErrorContains(t, cfg.Validate(), "reduced timeout must be positive")

	cfg = valid()
	cfg.TimeZone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "unknown time zone")

	cfg = valid()
	cfg.LogLevel = "chatty"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")
}
