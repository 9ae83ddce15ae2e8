package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"snap_behat/domain/entities"
	"snap_behat/domain/interfaces"
)

type playwrightSession struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
	pageMutex  sync.Mutex
	javascript bool
	logger     *logrus.Logger
}

// NewPlaywrightSession - launches a browser through playwright and opens one page
func NewPlaywrightSession(opts Options, logger *logrus.Logger) (interfaces.Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	var browserType playwright.BrowserType
	switch opts.Browser {
	case "firefox":
		browserType = pw.Firefox
	case "webkit":
		browserType = pw.WebKit
	default:
		browserType = pw.Chromium
	}

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     chromiumArgs(opts.Browser),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Width,
			Height: opts.Height,
		},
		JavaScriptEnabled: playwright.Bool(opts.JavaScript),
		IgnoreHttpsErrors: playwright.Bool(true),
		AcceptDownloads:   playwright.Bool(true),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	s := &playwrightSession{
		pw:         pw,
		browser:    browser,
		context:    bctx,
		page:       page,
		javascript: opts.JavaScript,
		logger:     logger,
	}
	s.watch(page)

	bctx.OnPage(func(newPage playwright.Page) {
		s.pageMutex.Lock()
		defer s.pageMutex.Unlock()

		s.page = newPage
		s.watch(newPage)
	})

	return s, nil
}

// watch accepts confirmation dialogs and falls back to the first page when the active one closes
func (s *playwrightSession) watch(page playwright.Page) {
	page.OnDialog(func(dialog playwright.Dialog) {
		s.logger.Debugf("accepting %s dialog: %s", dialog.Type(), dialog.Message())
		_ = dialog.Accept()
	})
	page.OnClose(func(closed playwright.Page) {
		s.pageMutex.Lock()
		defer s.pageMutex.Unlock()

		if s.page == closed {
			if pages := s.context.Pages(); len(pages) > 0 {
				s.page = pages[0]
			}
		}
	})
}

func (s *playwrightSession) current() playwright.Page {
	s.pageMutex.Lock()
	defer s.pageMutex.Unlock()
	return s.page
}

// Visit - navigates to url and waits for the load event
func (s *playwrightSession) Visit(ctx context.Context, url string) error {
	s.logger.Debugf("visiting %s", url)
	_, err := s.current().Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Reset - clears cookies and web storage
func (s *playwrightSession) Reset(ctx context.Context) error {
	if err := s.context.ClearCookies(); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	if s.javascript {
		if _, err := s.current().Evaluate(clearStorageJS); err != nil {
			s.logger.Debugf("failed to clear storage: %v", err)
		}
	}
	return nil
}

func (s *playwrightSession) CurrentURL(ctx context.Context) (string, error) {
	return s.current().URL(), nil
}

func (s *playwrightSession) ExecuteScript(ctx context.Context, script string) error {
	if _, err := s.current().Evaluate(asFunction(script)); err != nil {
		return fmt.Errorf("failed to execute script: %w", err)
	}
	return nil
}

// WaitFor - polls condition in the page; a timeout is reported as false, not as an error
func (s *playwrightSession) WaitFor(ctx context.Context, condition string, timeout time.Duration) (bool, error) {
	_, err := s.current().WaitForFunction("() => ("+condition+")", nil, playwright.PageWaitForFunctionOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return false, nil
		}
		return false, fmt.Errorf("failed to wait for condition: %w", err)
	}
	return true, nil
}

func (s *playwrightSession) ScrollOffset(ctx context.Context) (float64, error) {
	v, err := s.current().Evaluate(scrollOffsetJS)
	if err != nil {
		return 0, fmt.Errorf("failed to read scroll offset: %w", err)
	}
	return toFloat(v), nil
}

func (s *playwrightSession) ScrollTo(ctx context.Context, x, y float64) error {
	if _, err := s.current().Evaluate(`([x, y]) => window.scrollTo(x, y)`, []float64{x, y}); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

func (s *playwrightSession) Screenshot(ctx context.Context) ([]byte, error) {
	return s.current().Screenshot()
}

func (s *playwrightSession) Content(ctx context.Context) (string, error) {
	return s.current().Content()
}

func (s *playwrightSession) JavaScriptEnabled() bool {
	return s.javascript
}

// FindAll - returns every node matching loc in the document
func (s *playwrightSession) FindAll(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	page := s.current()
	query := func(selector string) playwright.Locator { return page.Locator(selector) }

	if loc.Kind == entities.SelectorXPath {
		return collect(query("xpath="+entities.DocumentXPath(loc.Value)), func(i int) string {
			return entities.PositionalXPath(loc.Value, i+1)
		})
	}
	return collect(query("css="+loc.Value), nil)
}

// Close - closes the context, the browser and the playwright driver
func (s *playwrightSession) Close() error {
	var closeErr error
	if s.context != nil {
		if err := s.context.Close(); err != nil && !isClosedErr(err) {
			closeErr = fmt.Errorf("failed to close context: %w", err)
		}
		s.context = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && !isClosedErr(err) && closeErr == nil {
			closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		s.browser = nil
	}
	if err := s.pw.Stop(); err != nil && closeErr == nil {
		closeErr = fmt.Errorf("failed to stop playwright: %w", err)
	}
	return closeErr
}

type playwrightElement struct {
	locator playwright.Locator
	xpath   string
}

// collect materialises a locator into one element per match. xpathOf names
// the positional XPath of match i; nil leaves it empty.
func collect(all playwright.Locator, xpathOf func(i int) string) ([]interfaces.Element, error) {
	n, err := all.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	out := make([]interfaces.Element, n)
	for i := 0; i < n; i++ {
		el := &playwrightElement{locator: all.Nth(i)}
		if xpathOf != nil {
			el.xpath = xpathOf(i)
		}
		out[i] = el
	}
	return out, nil
}

func (e *playwrightElement) FindAll(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	if loc.Kind == entities.SelectorXPath {
		var xpathOf func(int) string
		if e.xpath != "" {
			xpathOf = func(i int) string { return entities.ScopedXPath(e.xpath, loc.Value, i+1) }
		}
		return collect(e.locator.Locator("xpath="+loc.Value), xpathOf)
	}
	return collect(e.locator.Locator("css="+loc.Value), nil)
}

func (e *playwrightElement) XPath() string {
	return e.xpath
}

func (e *playwrightElement) IsVisible(ctx context.Context) (bool, error) {
	return e.locator.IsVisible()
}

func (e *playwrightElement) Click(ctx context.Context) error {
	return e.locator.Click()
}

// SetValue - fills text inputs; selects pick the option by value, then by label
func (e *playwrightElement) SetValue(ctx context.Context, value string) error {
	tag, err := e.locator.Evaluate(`el => el.tagName.toLowerCase()`, nil)
	if err != nil {
		return fmt.Errorf("failed to inspect field: %w", err)
	}
	if tag != "select" {
		return e.locator.Fill(value)
	}
	if _, err := e.locator.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}}); err == nil {
		return nil
	}
	_, err = e.locator.SelectOption(playwright.SelectOptionValues{Labels: &[]string{value}})
	return err
}

func (e *playwrightElement) AttachFile(ctx context.Context, path string) error {
	return e.locator.SetInputFiles(path)
}

func (e *playwrightElement) Attribute(ctx context.Context, name string) (string, error) {
	return e.locator.GetAttribute(name)
}

func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	return e.locator.InnerText()
}

func (e *playwrightElement) BoundingRect(ctx context.Context) (entities.Rect, error) {
	box, err := e.locator.BoundingBox()
	if err != nil {
		return entities.Rect{}, err
	}
	if box == nil {
		return entities.Rect{}, fmt.Errorf("node %s has no layout box", e.xpath)
	}
	return entities.Rect{Top: box.Y, Bottom: box.Y + box.Height}, nil
}

// isClosedErr - reports errors from closing something that is already gone
func isClosedErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "closed") || strings.Contains(msg, "target closed")
}
