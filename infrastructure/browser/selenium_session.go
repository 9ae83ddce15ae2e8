package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"snap_behat/domain/entities"
	"snap_behat/domain/interfaces"
	"snap_behat/domain/selectors"
)

const chromeDriverPort = 9515

type seleniumSession struct {
	wd         selenium.WebDriver
	service    *selenium.Service
	javascript bool
	logger     *logrus.Logger
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured, nil
		}
		return "", fmt.Errorf("chromedriver not found at %s", configured)
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("chromedriver not found, install it, set SNAP_CHROMEDRIVER_PATH or point SNAP_SELENIUM_URL at a selenium server")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary() string {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	for _, path := range []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// SeleniumAuto as the selenium URL asks for a local chromedriver found on the machine.
const SeleniumAuto = "auto"

// startsLocalDriver reports whether the session runs its own chromedriver
// instead of connecting to a remote selenium endpoint
func startsLocalDriver(opts Options) bool {
	return opts.ChromeDriverPath != "" || opts.SeleniumURL == "" || opts.SeleniumURL == SeleniumAuto
}

// NewSeleniumSession - connects to a WebDriver endpoint. A local chromedriver
// is started when a driver path is configured or the selenium URL is empty or
// "auto"; otherwise SeleniumURL is used.
func NewSeleniumSession(opts Options, logger *logrus.Logger) (interfaces.Session, error) {
	s := &seleniumSession{javascript: opts.JavaScript, logger: logger}
	endpoint := opts.SeleniumURL

	if startsLocalDriver(opts) {
		driverPath, err := findChromeDriver(opts.ChromeDriverPath)
		if err != nil {
			return nil, err
		}
		logger.Infof("using chromedriver at %s", driverPath)

		service, err := selenium.NewChromeDriverService(driverPath, chromeDriverPort)
		if err != nil {
			return nil, fmt.Errorf("failed to start chromedriver: %w", err)
		}
		s.service = service
		endpoint = fmt.Sprintf("http://localhost:%d/wd/hub", chromeDriverPort)
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	chromeCaps := chrome.Capabilities{
		Args: append(chromiumArgs("chrome"), fmt.Sprintf("--window-size=%d,%d", opts.Width, opts.Height)),
	}
	if opts.Headless {
		chromeCaps.Args = append(chromeCaps.Args, "--headless=new")
	}
	if !opts.JavaScript {
		chromeCaps.Prefs = map[string]interface{}{
			"profile.managed_default_content_settings.javascript": 2,
		}
	}
	if binary := findChromeBinary(); binary != "" && s.service != nil {
		logger.Infof("using chrome binary at %s", binary)
		chromeCaps.Path = binary
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, endpoint)
	if err != nil {
		if s.service != nil {
			_ = s.service.Stop()
		}
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: chrome not found: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}
	s.wd = wd
	return s, nil
}

func (s *seleniumSession) Visit(ctx context.Context, url string) error {
	s.logger.Debugf("visiting %s", url)
	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *seleniumSession) Reset(ctx context.Context) error {
	if err := s.wd.DeleteAllCookies(); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	if s.javascript {
		if _, err := s.wd.ExecuteScript("try { window.localStorage.clear(); window.sessionStorage.clear(); } catch (e) {}", nil); err != nil {
			s.logger.Debugf("failed to clear storage: %v", err)
		}
	}
	return nil
}

func (s *seleniumSession) CurrentURL(ctx context.Context) (string, error) {
	return s.wd.CurrentURL()
}

func (s *seleniumSession) ExecuteScript(ctx context.Context, script string) error {
	if _, err := s.wd.ExecuteScript(script, nil); err != nil {
		return fmt.Errorf("failed to execute script: %w", err)
	}
	return nil
}

// WaitFor - polls condition every 100ms; a timeout is reported as false
func (s *seleniumSession) WaitFor(ctx context.Context, condition string, timeout time.Duration) (bool, error) {
	var evalErr error
	err := s.wd.WaitWithTimeoutAndInterval(func(wd selenium.WebDriver) (bool, error) {
		v, err := wd.ExecuteScript("return Boolean("+condition+");", nil)
		if err != nil {
			evalErr = err
			return false, nil
		}
		ok, _ := v.(bool)
		return ok, nil
	}, timeout, 100*time.Millisecond)
	if err == nil {
		return true, nil
	}
	if evalErr != nil {
		return false, fmt.Errorf("failed to evaluate condition: %w", evalErr)
	}
	return false, nil
}

func (s *seleniumSession) ScrollOffset(ctx context.Context) (float64, error) {
	v, err := s.wd.ExecuteScript("return window.pageYOffset || document.documentElement.scrollTop || 0;", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to read scroll offset: %w", err)
	}
	return toFloat(v), nil
}

func (s *seleniumSession) ScrollTo(ctx context.Context, x, y float64) error {
	if _, err := s.wd.ExecuteScript("window.scrollTo(arguments[0], arguments[1]);", []interface{}{x, y}); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

func (s *seleniumSession) Screenshot(ctx context.Context) ([]byte, error) {
	return s.wd.Screenshot()
}

func (s *seleniumSession) Content(ctx context.Context) (string, error) {
	return s.wd.PageSource()
}

func (s *seleniumSession) JavaScriptEnabled() bool {
	return s.javascript
}

func (s *seleniumSession) FindAll(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	if loc.Kind == entities.SelectorXPath {
		found, err := s.wd.FindElements(selenium.ByXPATH, entities.DocumentXPath(loc.Value))
		if err != nil {
			return nil, err
		}
		return s.wrap(found, func(i int) string { return entities.PositionalXPath(loc.Value, i+1) }), nil
	}
	found, err := s.wd.FindElements(selenium.ByCSSSelector, loc.Value)
	if err != nil {
		return nil, err
	}
	return s.wrap(found, nil), nil
}

func (s *seleniumSession) wrap(found []selenium.WebElement, xpathOf func(i int) string) []interfaces.Element {
	out := make([]interfaces.Element, len(found))
	for i, we := range found {
		el := &seleniumElement{session: s, we: we}
		if xpathOf != nil {
			el.xpath = xpathOf(i)
		}
		out[i] = el
	}
	return out
}

// Close - quits the browser and stops the local driver service
func (s *seleniumSession) Close() error {
	var closeErr error
	if s.wd != nil {
		if err := s.wd.Quit(); err != nil {
			closeErr = fmt.Errorf("failed to quit webdriver: %w", err)
		}
	}
	if s.service != nil {
		if err := s.service.Stop(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("failed to stop chromedriver: %w", err)
		}
	}
	return closeErr
}

type seleniumElement struct {
	session *seleniumSession
	we      selenium.WebElement
	xpath   string
}

func (e *seleniumElement) FindAll(ctx context.Context, loc entities.Locator) ([]interfaces.Element, error) {
	if loc.Kind == entities.SelectorXPath {
		found, err := e.we.FindElements(selenium.ByXPATH, loc.Value)
		if err != nil {
			return nil, err
		}
		var xpathOf func(int) string
		if e.xpath != "" {
			xpathOf = func(i int) string { return entities.ScopedXPath(e.xpath, loc.Value, i+1) }
		}
		return e.session.wrap(found, xpathOf), nil
	}
	found, err := e.we.FindElements(selenium.ByCSSSelector, loc.Value)
	if err != nil {
		return nil, err
	}
	return e.session.wrap(found, nil), nil
}

func (e *seleniumElement) XPath() string {
	return e.xpath
}

func (e *seleniumElement) IsVisible(ctx context.Context) (bool, error) {
	return e.we.IsDisplayed()
}

func (e *seleniumElement) Click(ctx context.Context) error {
	return e.we.Click()
}

// SetValue - types into text inputs; selects click the option matching by value, then by label
func (e *seleniumElement) SetValue(ctx context.Context, value string) error {
	tag, err := e.we.TagName()
	if err != nil {
		return err
	}
	if !strings.EqualFold(tag, "select") {
		if err := e.we.Clear(); err != nil {
			return err
		}
		return e.we.SendKeys(value)
	}

	lit := selectors.Literal(value)
	for _, xpath := range []string{
		fmt.Sprintf("./option[@value = %s]", lit),
		fmt.Sprintf("./option[normalize-space(.) = normalize-space(%s)]", lit),
	} {
		options, err := e.we.FindElements(selenium.ByXPATH, xpath)
		if err != nil {
			return err
		}
		if len(options) > 0 {
			return options[0].Click()
		}
	}
	return fmt.Errorf("option %q not found", value)
}

func (e *seleniumElement) AttachFile(ctx context.Context, path string) error {
	return e.we.SendKeys(path)
}

func (e *seleniumElement) Attribute(ctx context.Context, name string) (string, error) {
	v, err := e.session.wd.ExecuteScript("var el = arguments[0], name = arguments[1];"+attributeBody, []interface{}{e.we, name})
	if err != nil {
		return "", err
	}
	return toString(v), nil
}

func (e *seleniumElement) Text(ctx context.Context) (string, error) {
	return e.we.Text()
}

func (e *seleniumElement) BoundingRect(ctx context.Context) (entities.Rect, error) {
	v, err := e.session.wd.ExecuteScript("var el = arguments[0];"+rectBody, []interface{}{e.we})
	if err != nil {
		return entities.Rect{}, err
	}
	pair, ok := v.([]interface{})
	if !ok || len(pair) != 2 {
		return entities.Rect{}, fmt.Errorf("unexpected bounding rect %v", v)
	}
	return entities.Rect{Top: toFloat(pair[0]), Bottom: toFloat(pair[1])}, nil
}
