// Package browser implements interfaces.Session over playwright, WebDriver
// and the Chrome DevTools protocol.
package browser

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"snap_behat/domain/interfaces"
	"snap_behat/infrastructure/config"
)

// Options configures a browser launch.
type Options struct {
	Driver           string
	Browser          string
	Headless         bool
	JavaScript       bool
	Width            int
	Height           int
	SeleniumURL      string
	ChromeDriverPath string
}

// OptionsFrom - derives launch options from the run config
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Driver:           cfg.Driver,
		Browser:          cfg.Browser,
		Headless:         cfg.Headless,
		JavaScript:       cfg.JavaScript,
		Width:            1366,
		Height:           768,
		SeleniumURL:      cfg.SeleniumURL,
		ChromeDriverPath: cfg.ChromeDriverPath,
	}
}

// NewSession - starts the configured driver
func NewSession(opts Options, logger *logrus.Logger) (interfaces.Session, error) {
	logger.Infof("starting %s session (browser=%s headless=%t javascript=%t)",
		opts.Driver, opts.Browser, opts.Headless, opts.JavaScript)

	switch opts.Driver {
	case config.DriverPlaywright:
		return NewPlaywrightSession(opts, logger)
	case config.DriverSelenium:
		return NewSeleniumSession(opts, logger)
	case config.DriverChromedp:
		return NewChromedpSession(opts, logger)
	}
	return nil, fmt.Errorf("unknown driver %q", opts.Driver)
}

func chromiumArgs(browser string) []string {
	if browser != "" && browser != "chromium" && browser != "chrome" {
		return nil
	}
	return []string{
		"--disable-dev-shm-usage",
		"--no-sandbox",
		"--disable-popup-blocking",
		"--disable-notifications",
	}
}

// asFunction wraps a JS statement so drivers that evaluate expressions can run it.
func asFunction(script string) string {
	return "() => { " + strings.TrimSpace(script) + " }"
}

// toFloat - extracts a number from a decoded JS value
func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	}
	return 0
}

// toString - extracts a string from a decoded JS value
func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
