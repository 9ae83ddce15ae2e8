package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snap_behat/infrastructure/config"
)

func TestNewSession_UnknownDriver(t *testing.T) {
	logger, _ := test.NewNullLogger()

	_, err := NewSession(Options{Driver: "lynx"}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "lynx"`)
}

func TestOptionsFrom(t *testing.T) {
	opts := OptionsFrom(&config.Config{
		Driver:     config.DriverChromedp,
		Browser:    "chrome",
		Headless:   true,
		JavaScript: false,
	})

	assert.Equal(t, config.DriverChromedp, opts.Driver)
	assert.True(t, opts.Headless)
	assert.False(t, opts.JavaScript)
	assert.Positive(t, opts.Width)
	assert.Positive(t, opts.Height)
}

func TestChromiumArgs(t *testing.T) {
	assert.Contains(t, chromiumArgs("chromium"), "--no-sandbox")
	assert.Contains(t, chromiumArgs(""), "--no-sandbox")
	assert.Nil(t, chromiumArgs("firefox"))
}

func TestScriptHelpers(t *testing.T) {
	assert.Equal(t, `() => { location.hash = "section-1"; }`, asFunction(` location.hash = "section-1"; `))
	assert.Equal(t, `"a \"b\" c"`, jsString(`a "b" c`))

	assert.Equal(t, 12.0, toFloat(12))
	assert.Equal(t, 1.5, toFloat(1.5))
	assert.Zero(t, toFloat("12"))
	assert.Equal(t, "x", toString("x"))
	assert.Empty(t, toString(nil))
}

func TestStartsLocalDriver(t *testing.T) {
	assert.True(t, startsLocalDriver(Options{}))
	assert.True(t, startsLocalDriver(Options{SeleniumURL: SeleniumAuto}))
	assert.True(t, startsLocalDriver(Options{SeleniumURL: "http://grid:4444/wd/hub", ChromeDriverPath: "/opt/chromedriver"}))
	assert.False(t, startsLocalDriver(Options{SeleniumURL: "http://grid:4444/wd/hub"}))
}

func TestFindChromeDriver(t *testing.T) {
	dir := t.TempDir()
	driver := filepath.Join(dir, "chromedriver")
	require.NoError(t, os.WriteFile(driver, []byte("#!/bin/sh\n"), 0o755))

	got, err := findChromeDriver(driver)
	require.NoError(t, err)
	assert.Equal(t, driver, got)

	_, err = findChromeDriver(filepath.Join(dir, "missing"))
	require.Error(t, err)

	t.Setenv("PATH", dir)
	got, err = findChromeDriver("")
	require.NoError(t, err)
	assert.FileExists(t, got)
}
