package resolver

import (
	"context"
	"fmt"
	"regexp"

	"snap_behat/domain/entities"
	"snap_behat/domain/errs"
	"snap_behat/domain/interfaces"
)

var positionalXPath = regexp.MustCompile(`(?s)^\(//html/(.*)\)\[\d+\]$`)

// BroadenXPath strips the document anchor and position from a positional
// XPath, yielding an expression that matches every same-named candidate.
func BroadenXPath(xpath string) (string, error) {
	m := positionalXPath.FindStringSubmatch(xpath)
	if m == nil {
		return "", errs.Newf(errs.MalformedInput, "failed to extract xpath from %q", xpath)
	}
	return m[1], nil
}

// Find returns the first node matching loc.
func Find(ctx context.Context, finder interfaces.Finder, loc entities.Locator) (interfaces.Element, error) {
	all, err := finder.FindAll(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", loc, err)
	}
	if len(all) == 0 {
		return nil, errs.Newf(errs.NotFound, "%s could not be found", loc)
	}
	return all[0], nil
}
