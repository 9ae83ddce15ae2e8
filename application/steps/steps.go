package steps

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"snap_behat/application/phrases"
	"snap_behat/application/resolver"
	"snap_behat/domain/errs"
	"snap_behat/domain/interfaces"
	"snap_behat/domain/selectors"
)

// Arg matches one double-quoted step argument, allowing escaped quotes.
const Arg = `"((?:[^"]|\\")*)"`

// Config holds what the steps need to know about the site under test.
type Config struct {
	BaseURL     string
	FixturesDir string
	Interval    time.Duration
	Timeouts    resolver.Timeouts
}

// Steps implements the theme and generic step definitions against one session.
type Steps struct {
	session  interfaces.Session
	composer *phrases.Composer
	prober   *resolver.Prober
	scroller *resolver.Scroller
	scanner  *resolver.Scanner
	cfg      Config
	logger   *logrus.Logger
}

// New - wires the resolver components around session
func New(session interfaces.Session, composer *phrases.Composer, cfg Config, logger *logrus.Logger) *Steps {
	prober := resolver.NewProber(cfg.Interval, logger)
	scroller := resolver.NewScroller(session, logger)
	return &Steps{
		session:  session,
		composer: composer,
		prober:   prober,
		scroller: scroller,
		scanner:  resolver.NewScanner(session, prober, scroller, cfg.Timeouts, logger),
		cfg:      cfg,
		logger:   logger,
	}
}

// Register adds every step to r, theme steps first.
func (s *Steps) Register(r *Registry) {
	s.RegisterTheme(r)
	s.RegisterGeneral(r)
}

// NewRegistry - returns a registry holding every step of s
func (s *Steps) NewRegistry() *Registry {
	r := NewRegistry(s.logger)
	s.Register(r)
	return r
}

// locate resolves a selector pair to its first match in the document.
func (s *Steps) locate(ctx context.Context, locator, selectorType string) (interfaces.Element, error) {
	loc, err := selectors.Transform(selectorType, locator)
	if err != nil {
		return nil, err
	}
	return resolver.Find(ctx, s.session, loc)
}

// locateIn resolves a selector pair below container.
func (s *Steps) locateIn(ctx context.Context, container interfaces.Element, locator, selectorType string) (interfaces.Element, error) {
	loc, err := selectors.Transform(selectorType, locator)
	if err != nil {
		return nil, err
	}
	return resolver.Find(ctx, container, loc)
}

// awaitVisible waits until a selector pair matches a visible node.
func (s *Steps) awaitVisible(ctx context.Context, locator, selectorType string, timeout time.Duration) (interfaces.Element, error) {
	var found interfaces.Element
	err := resolver.Eventually(ctx, s.cfg.Interval, timeout, func(ctx context.Context) error {
		el, err := s.locate(ctx, locator, selectorType)
		if err != nil {
			return err
		}
		visible, err := el.IsVisible(ctx)
		if err != nil {
			return err
		}
		if !visible {
			return errs.Newf(errs.ExpectationFailed, "%q %q is not visible", locator, selectorType)
		}
		found = el
		return nil
	})
	if err != nil {
		if errs.Is(err, errs.MalformedInput) {
			return nil, err
		}
		return nil, errs.Wrap(errs.ExpectationFailed,
			"\""+locator+"\" \""+selectorType+"\" did not become visible after "+timeout.String(), err)
	}
	return found, nil
}

// waitPageReady blocks until the page's pending scripts settle. Sessions
// without JavaScript have nothing to wait for.
func (s *Steps) waitPageReady(ctx context.Context) error {
	if !s.session.JavaScriptEnabled() {
		return nil
	}
	ready, err := s.session.WaitFor(ctx, PageReadyJS, s.cfg.Timeouts.Extended)
	if err != nil {
		return errs.Wrap(errs.Internal, "failed to evaluate page readiness", err)
	}
	if !ready {
		return errs.Newf(errs.ExpectationFailed, "page was not ready after %s", s.cfg.Timeouts.Extended)
	}
	return nil
}
