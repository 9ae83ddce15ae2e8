package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"snap_behat/domain/entities"
	"snap_behat/domain/errs"
	"snap_behat/domain/interfaces"
)

// Timeouts bounds the visibility probes. Extended applies to the direct
// match, Reduced to each sibling candidate.
type Timeouts struct {
	Default  time.Duration
	Extended time.Duration
	Reduced  time.Duration
}

// Scanner resolves a locator to its first visible match.
type Scanner struct {
	session  interfaces.Session
	prober   *Prober
	scroller *Scroller
	timeouts Timeouts
	logger   *logrus.Logger
}

// NewScanner - creates a scanner over session
func NewScanner(session interfaces.Session, prober *Prober, scroller *Scroller, timeouts Timeouts, logger *logrus.Logger) *Scanner {
	return &Scanner{
		session:  session,
		prober:   prober,
		scroller: scroller,
		timeouts: timeouts,
		logger:   logger,
	}
}

// FindFirstVisible - returns the direct match when visible, otherwise the first
// visible sibling sharing its broadened XPath, scrolled into view
func (s *Scanner) FindFirstVisible(ctx context.Context, loc entities.Locator) (interfaces.Element, error) {
	first, err := Find(ctx, s.session, loc)
	if err != nil {
		return nil, err
	}
	if s.prober.Visible(ctx, first, s.timeouts.Extended) {
		return first, nil
	}

	rel, err := BroadenXPath(first.XPath())
	if err != nil {
		return nil, err
	}
	all, err := s.session.FindAll(ctx, entities.XPath(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate candidates of %q: %w", rel, err)
	}

	candidates := make([]interfaces.Element, 0, len(all))
	for _, el := range all {
		if el.XPath() == first.XPath() {
			continue
		}
		candidates = append(candidates, el)
	}
	s.logger.Debugf("first match of %s is hidden, scanning %d more candidates", loc, len(candidates))

	return s.pick(ctx, candidates, rel)
}

// FirstVisible - returns the first visible node among all matches of an XPath, scrolled into view
func (s *Scanner) FirstVisible(ctx context.Context, rel string) (interfaces.Element, error) {
	all, err := s.session.FindAll(ctx, entities.XPath(rel))
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate candidates of %q: %w", rel, err)
	}
	return s.pick(ctx, all, rel)
}

func (s *Scanner) pick(ctx context.Context, candidates []interfaces.Element, rel string) (interfaces.Element, error) {
	for _, el := range candidates {
		if !s.prober.Visible(ctx, el, s.timeouts.Reduced) {
			continue
		}
		if err := s.scroller.ScrollIntoView(ctx, el); err != nil {
			return nil, err
		}
		return el, nil
	}
	return nil, errs.Newf(errs.NotFound, "at least one node should be visible for the xpath %q", entities.DocumentXPath(rel))
}
