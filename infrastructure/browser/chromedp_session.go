package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"snap_behat/domain/entities"
	"snap_behat/domain/interfaces"
)

// chromedpSession drives Chrome over the DevTools protocol. Elements are kept
// as JS expressions that re-resolve the node on every call.
type chromedpSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	javascript  bool
	logger      *logrus.Logger
}

// NewChromedpSession - launches a local Chrome and attaches to its first tab
func NewChromedpSession(opts Options, logger *logrus.Logger) (interfaces.Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Debugf))

	setup := []chromedp.Action{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
	}
	if !opts.JavaScript {
		setup = append(setup, emulation.SetScriptExecutionDisabled(true))
	}
	if err := chromedp.Run(ctx, setup...); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return &chromedpSession{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		javascript:  opts.JavaScript,
		logger:      logger,
	}, nil
}

// run executes actions on the tab, bounded by the caller's deadline when it has one
func (s *chromedpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (s *chromedpSession) eval(ctx context.Context, expression string, res interface{}) error {
	return s.run(ctx, chromedp.Evaluate(expression, res))
}

func (s *chromedpSession) Visit(ctx context.Context, url string) error {
	s.logger.Debugf("visiting %s", url)
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *chromedpSession) Reset(ctx context.Context) error {
	if err := s.run(ctx, network.ClearBrowserCookies()); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	if err := s.eval(ctx, "("+clearStorageJS+")()", nil); err != nil {
		s.logger.Debugf("failed to clear storage: %v", err)
	}
	return nil
}

func (s *chromedpSession) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := s.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (s *chromedpSession) ExecuteScript(ctx context.Context, script string) error {
	if err := s.eval(ctx, "("+asFunction(script)+")()", nil); err != nil {
		return fmt.Errorf("failed to execute script: %w", err)
	}
	return nil
}

// WaitFor - polls condition in the page; a timeout is reported as false
func (s *chromedpSession) WaitFor(ctx context.Context, condition string, timeout time.Duration) (bool, error) {
	var ok bool
	err := s.run(ctx, chromedp.Poll("Boolean("+condition+")", &ok,
		chromedp.WithPollingTimeout(timeout),
		chromedp.WithPollingInterval(100*time.Millisecond),
	))
	if err != nil {
		if errors.Is(err, chromedp.ErrPollingTimeout) {
			return false, nil
		}
		return false, fmt.Errorf("failed to wait for condition: %w", err)
	}
	return ok, nil
}

func (s *chromedpSession) ScrollOffset(ctx context.Context) (float64, error) {
	var offset float64
	if err := s.eval(ctx, "("+scrollOffsetJS+")()", &offset); err != nil {
		return 0, fmt.Errorf("failed to read scroll offset: %w", err)
	}
	return offset, nil
}

func (s *chromedpSession) ScrollTo(ctx context.Context, x, y float64) error {
	if err := s.eval(ctx, fmt.Sprintf("window.scrollTo(%f, %f)", x, y), nil); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

func (s *chromedpSession) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *chromedpSession) Content(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (s *chromedpSession) JavaScriptEnabled() bool {
	return s.javascript
}

func (s *chromedpSession) FindAll(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	return s.findAll(ctx, "document", "", loc)
}

// findAll counts the matches below scope and returns one reference expression per match.
func (s *chromedpSession) findAll(ctx context.Context, scope, scopeXPath string, loc entities.Locator) ([]interfaces.Element, error) {
	var count string
	var nth, xpathOf func(i int) string

	switch {
	case loc.Kind == entities.SelectorXPath && scope == "document":
		all := jsString(entities.DocumentXPath(loc.Value))
		count = fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null).snapshotLength", all)
		xpathOf = func(i int) string { return entities.PositionalXPath(loc.Value, i+1) }
		nth = func(i int) string {
			return fmt.Sprintf("document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue", jsString(xpathOf(i)))
		}
	case loc.Kind == entities.SelectorXPath:
		snapshot := fmt.Sprintf("document.evaluate(%s, %s, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null)", jsString(loc.Value), scope)
		count = snapshot + ".snapshotLength"
		nth = func(i int) string { return fmt.Sprintf("%s.snapshotItem(%d)", snapshot, i) }
		if scopeXPath != "" {
			xpathOf = func(i int) string { return entities.ScopedXPath(scopeXPath, loc.Value, i+1) }
		}
	default:
		all := fmt.Sprintf("%s.querySelectorAll(%s)", scope, jsString(loc.Value))
		count = all + ".length"
		nth = func(i int) string { return fmt.Sprintf("%s[%d]", all, i) }
	}

	var n int
	if err := s.eval(ctx, count, &n); err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", loc, err)
	}
	out := make([]interfaces.Element, n)
	for i := 0; i < n; i++ {
		el := &chromedpElement{session: s, ref: "(" + nth(i) + ")"}
		if xpathOf != nil {
			el.xpath = xpathOf(i)
		}
		out[i] = el
	}
	return out, nil
}

func (s *chromedpSession) Close() error {
	s.cancel()
	s.allocCancel()
	return nil
}

type chromedpElement struct {
	session *chromedpSession
	ref     string
	xpath   string
}

// call evaluates body with the node bound to el and the optional argument bound to value.
func (e *chromedpElement) call(ctx context.Context, body string, res interface{}, value ...string) error {
	arg := "undefined"
	if len(value) > 0 {
		arg = jsString(value[0])
	}
	expr := fmt.Sprintf("(function (el, value) { if (!el) { throw new Error('node is no longer attached'); } %s })(%s, %s)",
		body, e.ref, arg)
	return e.session.eval(ctx, expr, res)
}

func (e *chromedpElement) FindAll(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	return e.session.findAll(ctx, e.ref, e.xpath, loc)
}

func (e *chromedpElement) XPath() string {
	return e.xpath
}

func (e *chromedpElement) IsVisible(ctx context.Context) (bool, error) {
	var visible bool
	err := e.call(ctx, visibleBody, &visible)
	return visible, err
}

func (e *chromedpElement) Click(ctx context.Context) error {
	return e.session.run(ctx, chromedp.Click(e.ref, chromedp.ByJSPath))
}

func (e *chromedpElement) SetValue(ctx context.Context, value string) error {
	return e.call(ctx, setValueBody, nil, value)
}

func (e *chromedpElement) AttachFile(ctx context.Context, path string) error {
	return e.session.run(ctx, chromedp.SetUploadFiles(e.ref, []string{path}, chromedp.ByJSPath))
}

func (e *chromedpElement) Attribute(ctx context.Context, name string) (string, error) {
	var v string
	err := e.call(ctx, "var name = value;"+attributeBody, &v, name)
	return v, err
}

func (e *chromedpElement) Text(ctx context.Context) (string, error) {
	var v string
	err := e.call(ctx, textBody, &v)
	return v, err
}

func (e *chromedpElement) BoundingRect(ctx context.Context) (entities.Rect, error) {
	var pair []float64
	if err := e.call(ctx, rectBody, &pair); err != nil {
		return entities.Rect{}, err
	}
	if len(pair) != 2 {
		return entities.Rect{}, fmt.Errorf("unexpected bounding rect %v", pair)
	}
	return entities.Rect{Top: pair[0], Bottom: pair[1]}, nil
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
