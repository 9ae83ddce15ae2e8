package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"snap_behat/domain/errs"
	"snap_behat/domain/interfaces"
)

var errNotVisible = errors.New("element is not visible")

// Prober polls an element's visibility until it holds or a timeout elapses.
type Prober struct {
	interval time.Duration
	logger   *logrus.Logger
}

// NewProber - creates a prober polling every interval
func NewProber(interval time.Duration, logger *logrus.Logger) *Prober {
	return &Prober{interval: interval, logger: logger}
}

// Visible - reports whether el became visible within timeout; evaluation errors count as not visible
func (p *Prober) Visible(ctx context.Context, el interfaces.Element, timeout time.Duration) bool {
	visible, _ := p.poll(ctx, el, timeout)
	return visible
}

// RequireVisible - like Visible but fails when el never became visible
func (p *Prober) RequireVisible(ctx context.Context, el interfaces.Element, timeout time.Duration) error {
	visible, lastErr := p.poll(ctx, el, timeout)
	if visible {
		return nil
	}
	if lastErr != nil {
		return errs.Wrap(errs.ExpectationFailed, "something went wrong whilst checking visibility of "+describe(el), lastErr)
	}
	return errs.Newf(errs.ExpectationFailed, "%s is not visible after %s", describe(el), timeout)
}

// poll returns whether el was seen visible and the last evaluation error, if any
func (p *Prober) poll(ctx context.Context, el interfaces.Element, timeout time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	operation := func() error {
		visible, err := el.IsVisible(ctx)
		if err != nil {
			lastErr = err
			p.logger.Debugf("visibility check of %s failed: %v", describe(el), err)
			return err
		}
		lastErr = nil
		if !visible {
			return errNotVisible
		}
		return nil
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(p.interval), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return false, lastErr
	}
	return true, nil
}

func describe(el interfaces.Element) string {
	if xp := el.XPath(); xp != "" {
		return "node " + xp
	}
	return "node"
}
