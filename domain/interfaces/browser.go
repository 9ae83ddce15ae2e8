package interfaces

import (
	"context"
	"time"

	"snap_behat/domain/entities"
)

// Finder locates nodes. Sessions search the whole document, elements search below themselves.
type Finder interface {
	// FindAll returns every match in document order; no match is not an error
	FindAll(ctx context.Context, loc entities.Locator) ([]Element, error)
}

// Session drives one browser tab for the length of a scenario
type Session interface {
	Finder

	// Visit navigates to an absolute URL
	Visit(ctx context.Context, url string) error

	// Reset clears cookies and storage so the next scenario starts logged out
	Reset(ctx context.Context) error

	// CurrentURL returns the URL of the current page
	CurrentURL(ctx context.Context) (string, error)

	// ExecuteScript runs a JS statement and discards the result
	ExecuteScript(ctx context.Context, script string) error

	// WaitFor polls a JS boolean expression until it holds or timeout elapses
	WaitFor(ctx context.Context, condition string, timeout time.Duration) (bool, error)

	// ScrollOffset returns the vertical scroll offset of the viewport
	ScrollOffset(ctx context.Context) (float64, error)

	// ScrollTo scrolls the viewport to an absolute position
	ScrollTo(ctx context.Context, x, y float64) error

	// Screenshot captures the current viewport as PNG
	Screenshot(ctx context.Context) ([]byte, error)

	// Content returns the current page HTML
	Content(ctx context.Context) (string, error)

	// JavaScriptEnabled reports whether scripts run in this session
	JavaScriptEnabled() bool

	// Close releases the browser
	Close() error
}

// Element is a node borrowed from the session for one step
type Element interface {
	Finder

	// XPath returns the positional XPath the element was found with, or "" for CSS matches
	XPath() string

	// IsVisible evaluates the driver's visibility predicate
	IsVisible(ctx context.Context) (bool, error)

	// Click clicks the element
	Click(ctx context.Context) error

	// SetValue fills an input or picks a select option by value or label
	SetValue(ctx context.Context, value string) error

	// AttachFile sets a local file on a file input
	AttachFile(ctx context.Context, path string) error

	// Attribute returns an attribute value, "" when absent
	Attribute(ctx context.Context, name string) (string, error)

	// Text returns the rendered text of the element
	Text(ctx context.Context) (string, error)

	// BoundingRect returns the element's extent relative to the viewport
	BoundingRect(ctx context.Context) (entities.Rect, error)
}
