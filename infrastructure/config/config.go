// Package config loads run settings from the environment. A .env file in the
// working directory is read first when present; every variable carries the
// SNAP_ prefix, e.g. SNAP_BASE_URL or SNAP_DRIVER.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"snap_behat/application/resolver"
)

// Supported session drivers.
const (
	DriverPlaywright = "playwright"
	DriverSelenium   = "selenium"
	DriverChromedp   = "chromedp"
)

// Config holds every setting of a run.
type Config struct {
	Driver  string `envconfig:"DRIVER" default:"playwright"`
	Browser string `envconfig:"BROWSER" default:"chromium"`
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost"`

	Headless   bool `envconfig:"HEADLESS" default:"true"`
	JavaScript bool `envconfig:"JAVASCRIPT" default:"true"`

	Timeout         time.Duration `envconfig:"TIMEOUT" default:"6s"`
	ExtendedTimeout time.Duration `envconfig:"EXTENDED_TIMEOUT" default:"10s"`
	ReducedTimeout  time.Duration `envconfig:"REDUCED_TIMEOUT" default:"2s"`
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"100ms"`

	TimeZone   string `envconfig:"TIMEZONE" default:"UTC"`
	DateFormat string `envconfig:"DATE_FORMAT" default:"%d %B %Y"`

	FixturesDir string `envconfig:"FIXTURES_DIR" default:"tests/fixtures"`
	FailDumpDir string `envconfig:"FAIL_DUMP_DIR"`

	// SeleniumURL set to "auto" or left empty starts a local chromedriver.
	SeleniumURL      string `envconfig:"SELENIUM_URL" default:"http://localhost:4444/wd/hub"`
	ChromeDriverPath string `envconfig:"CHROMEDRIVER_PATH"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the optional .env file and decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("snap", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings no session could run with.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPlaywright, DriverSelenium, DriverChromedp:
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	for name, d := range map[string]time.Duration{
		"timeout":          c.Timeout,
		"extended timeout": c.ExtendedTimeout,
		"reduced timeout":  c.ReducedTimeout,
		"poll interval":    c.PollInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Timeouts returns the probe bounds.
func (c *Config) Timeouts() resolver.Timeouts {
	return resolver.Timeouts{
		Default:  c.Timeout,
		Extended: c.ExtendedTimeout,
		Reduced:  c.ReducedTimeout,
	}
}

// NewLogger builds the run logger at the configured level.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger
}
