package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"snap_behat/application/phrases"
	"snap_behat/application/steps"
	"snap_behat/domain/interfaces"
	"snap_behat/infrastructure/browser"
	"snap_behat/infrastructure/config"
)

// sessionFlags are the settings every browser command can override.
type sessionFlags struct {
	driver       string
	baseURL      string
	headless     bool
	noJavaScript bool
	logLevel     string
}

func (f *sessionFlags) bind(flags *pflag.FlagSet) {
	flags.StringVar(&f.driver, "driver", "", "session driver: playwright, selenium or chromedp")
	flags.StringVar(&f.baseURL, "base-url", "", "wwwroot of the site under test")
	flags.BoolVar(&f.headless, "headless", true, "run the browser without a window")
	flags.BoolVar(&f.noJavaScript, "no-javascript", false, "disable JavaScript in the browser")
	flags.StringVar(&f.logLevel, "log-level", "", "logrus level")
}

// apply overrides cfg with the flags set on the command line only.
func (f *sessionFlags) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("driver") {
		cfg.Driver = f.driver
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if flags.Changed("headless") {
		cfg.Headless = f.headless
	}
	if flags.Changed("no-javascript") {
		cfg.JavaScript = !f.noJavaScript
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

// loadConfig reads the environment, applies overrides and validates the result.
func loadConfig(flags *pflag.FlagSet, overrides ...func(*pflag.FlagSet, *config.Config)) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	for _, apply := range overrides {
		apply(flags, cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newComposer builds the phrase composer for the configured zone and date format.
func newComposer(cfg *config.Config) (*phrases.Composer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return phrases.NewComposer(
		phrases.WithLocation(loc),
		phrases.WithDateFormat(cfg.DateFormat),
	), nil
}

func stepsConfig(cfg *config.Config) steps.Config {
	return steps.Config{
		BaseURL:     cfg.BaseURL,
		FixturesDir: cfg.FixturesDir,
		Interval:    cfg.PollInterval,
		Timeouts:    cfg.Timeouts(),
	}
}

// newRegistry wires every step around session.
func newRegistry(session interfaces.Session, cfg *config.Config, logger *logrus.Logger) (*steps.Registry, error) {
	composer, err := newComposer(cfg)
	if err != nil {
		return nil, err
	}
	return steps.New(session, composer, stepsConfig(cfg), logger).NewRegistry(), nil
}

// openSession starts the browser and the registry bound to it. The caller closes the session.
func openSession(cfg *config.Config, logger *logrus.Logger) (interfaces.Session, *steps.Registry, error) {
	session, err := browser.NewSession(browser.OptionsFrom(cfg), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize browser: %w", err)
	}
	registry, err := newRegistry(session, cfg, logger)
	if err != nil {
		_ = session.Close()
		return nil, nil, err
	}
	return session, registry, nil
}
