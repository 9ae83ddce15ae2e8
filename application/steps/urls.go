package steps

import (
	"net/url"
	"strconv"
	"strings"

	"snap_behat/domain/errs"
)

const courseViewPath = "course/view.php"

// IsCoursePage reports whether raw points at the course view page.
func IsCoursePage(raw string) bool {
	return strings.Contains(strings.ToLower(raw), courseViewPath)
}

// SectionURL sets the section query parameter on a course page URL.
func SectionURL(raw string, section int) (string, error) {
	if !IsCoursePage(raw) {
		return "", errs.Newf(errs.NotOnExpectedPage, "current page is not a course page: %s", raw)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", errs.Wrap(errs.MalformedInput, "invalid page url "+strconv.Quote(raw), err)
	}
	q := u.Query()
	q.Set("section", strconv.Itoa(section))
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// ResolveHref resolves a link target against the page it was found on.
func ResolveHref(page, href string) (string, error) {
	base, err := url.Parse(page)
	if err != nil {
		return "", errs.Wrap(errs.MalformedInput, "invalid page url "+strconv.Quote(page), err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", errs.Wrap(errs.MalformedInput, "invalid link target "+strconv.Quote(href), err)
	}
	return base.ResolveReference(ref).String(), nil
}

// SiteURL joins the site root and a path.
func SiteURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
