// Package browsertest provides an in-memory Session for step and resolver tests.
package browsertest

import (
	"context"
	"errors"
	"sync"
	"time"

	"snap_behat/domain/entities"
	"snap_behat/domain/interfaces"
)

// Session is a scripted, single-page fake browser.
type Session struct {
	mu sync.Mutex

	URL        string
	Visited    []string
	Scripts    []string
	Conditions []string
	Offset     float64
	ScrollLog  []float64
	Ready      bool
	JavaScript bool
	PNG        []byte
	HTML       string
	Closed     bool
	Resets     int
	Queries    []entities.Locator

	matches map[entities.Locator][]*Element
}

var _ interfaces.Session = (*Session)(nil)

// NewSession returns a ready page with JavaScript enabled.
func NewSession(url string) *Session {
	return &Session{
		URL:        url,
		Ready:      true,
		JavaScript: true,
		PNG:        []byte("png"),
		HTML:       "<html></html>",
		matches:    make(map[entities.Locator][]*Element),
	}
}

// Add registers the nodes a locator matches, in document order.
func (s *Session) Add(loc entities.Locator, els ...*Element) []*Element {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, el := range els {
		el.session = s
		if loc.Kind == entities.SelectorXPath {
			el.xpath = entities.PositionalXPath(loc.Value, i+1)
		}
	}
	s.matches[loc] = append(s.matches[loc], els...)
	return els
}

func (s *Session) FindAll(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Queries = append(s.Queries, loc)
	return toElements(s.matches[loc]), nil
}

func (s *Session) Visit(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Visited = append(s.Visited, url)
	s.URL = url
	return nil
}

func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Resets++
	return nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.URL, nil
}

func (s *Session) ExecuteScript(ctx context.Context, script string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Scripts = append(s.Scripts, script)
	return nil
}

func (s *Session) WaitFor(ctx context.Context, condition string, timeout time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Conditions = append(s.Conditions, condition)
	return s.Ready, nil
}

func (s *Session) ScrollOffset(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Offset, nil
}

func (s *Session) ScrollTo(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if y < 0 {
		y = 0
	}
	s.Offset = y
	s.ScrollLog = append(s.ScrollLog, y)
	return nil
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	return s.PNG, nil
}

func (s *Session) Content(ctx context.Context) (string, error) {
	return s.HTML, nil
}

func (s *Session) JavaScriptEnabled() bool {
	return s.JavaScript
}

func (s *Session) Close() error {
	s.Closed = true
	return nil
}

// Element is a fake node positioned in document coordinates.
type Element struct {
	Name string

	// Visible is the steady-state answer of IsVisible.
	Visible bool
	// HiddenFor makes the first n IsVisible calls report false.
	HiddenFor int
	// FailFor makes the first n IsVisible calls return an error.
	FailFor int

	DocTop float64
	Height float64

	Attrs  map[string]string
	Label  string
	Value  string
	Files  []string
	Clicks int
	Checks int

	session  *Session
	xpath    string
	children map[entities.Locator][]*Element
}

var _ interfaces.Element = (*Element)(nil)

// ErrStale is returned by IsVisible while FailFor is positive.
var ErrStale = errors.New("stale element reference")

// AddChild registers nodes matched by loc below e.
func (e *Element) AddChild(loc entities.Locator, els ...*Element) []*Element {
	if e.children == nil {
		e.children = make(map[entities.Locator][]*Element)
	}
	for i, el := range els {
		el.session = e.session
		if loc.Kind == entities.SelectorXPath && e.xpath != "" {
			el.xpath = entities.ScopedXPath(e.xpath, loc.Value, i+1)
		}
	}
	e.children[loc] = append(e.children[loc], els...)
	return els
}

func (e *Element) FindAll(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	return toElements(e.children[loc]), nil
}

func (e *Element) XPath() string {
	return e.xpath
}

func (e *Element) IsVisible(ctx context.Context) (bool, error) {
	e.Checks++
	if e.FailFor > 0 {
		e.FailFor--
		return false, ErrStale
	}
	if e.HiddenFor > 0 {
		e.HiddenFor--
		return false, nil
	}
	return e.Visible, nil
}

func (e *Element) Click(ctx context.Context) error {
	e.Clicks++
	return nil
}

func (e *Element) SetValue(ctx context.Context, value string) error {
	e.Value = value
	return nil
}

func (e *Element) AttachFile(ctx context.Context, path string) error {
	e.Files = append(e.Files, path)
	return nil
}

func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	return e.Attrs[name], nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.Label, nil
}

func (e *Element) BoundingRect(ctx context.Context) (entities.Rect, error) {
	offset := 0.0
	if e.session != nil {
		offset, _ = e.session.ScrollOffset(ctx)
	}
	top := e.DocTop - offset
	return entities.Rect{Top: top, Bottom: top + e.Height}, nil
}

func toElements(els []*Element) []interfaces.Element {
	out := make([]interfaces.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}
