package resolver

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"snap_behat/domain/entities"
	"snap_behat/domain/interfaces"
)

// Viewport is the part of a session the scroller drives.
type Viewport interface {
	ScrollOffset(ctx context.Context) (float64, error)
	ScrollTo(ctx context.Context, x, y float64) error
}

// Scroller brings elements into the viewport.
type Scroller struct {
	viewport Viewport
	logger   *logrus.Logger
}

// NewScroller - creates a scroller for the given viewport
func NewScroller(viewport Viewport, logger *logrus.Logger) *Scroller {
	return &Scroller{viewport: viewport, logger: logger}
}

// ScrollIntoView - scrolls so el sits half its height below the top edge
func (s *Scroller) ScrollIntoView(ctx context.Context, el interfaces.Element) error {
	rect, err := el.BoundingRect(ctx)
	if err != nil {
		return fmt.Errorf("failed to measure %s: %w", describe(el), err)
	}
	offset, err := s.viewport.ScrollOffset(ctx)
	if err != nil {
		return fmt.Errorf("failed to read scroll offset: %w", err)
	}

	target := ScrollTarget(rect, offset)
	s.logger.Debugf("scrolling %s to y=%.0f", describe(el), target)
	if err := s.viewport.ScrollTo(ctx, 0, target); err != nil {
		return fmt.Errorf("failed to scroll to %s: %w", describe(el), err)
	}
	return nil
}

// ScrollTarget computes the scroll position for rect given the current offset.
// The result depends only on the element's document position, so applying it
// twice lands on the same offset.
func ScrollTarget(rect entities.Rect, offset float64) float64 {
	y := offset + rect.Top - rect.Height()/2
	if y < 0 {
		return 0
	}
	return y
}
