package steps

import (
	"context"
	"fmt"
	"strings"

	"snap_behat/application/resolver"
	"snap_behat/domain/entities"
	"snap_behat/domain/errs"
	"snap_behat/domain/interfaces"
	"snap_behat/domain/selectors"
)

// RegisterGeneral adds the site-independent steps the theme steps expand into.
func (s *Steps) RegisterGeneral(r *Registry) {
	r.Define(`^I am on site homepage$`, s.siteHomepage)
	r.Define(`^I click on `+Arg+` `+selectorArg+`$`, s.clickOn)
	r.Define(`^I click on `+Arg+` `+selectorArg+` in the `+Arg+` `+selectorArg+`$`, s.clickOnWithin)
	r.Define(`^I should `+negation+`see `+Arg+`$`, s.seeText)
	r.Define(`^I should `+negation+`see `+Arg+` in the `+Arg+` `+selectorArg+`$`, s.seeTextIn)
	r.Define(`^I set the field `+Arg+` to `+Arg+`$`, s.setField)
	r.Define(`^I press `+Arg+`$`, s.press)
	r.Define(`^I follow `+Arg+`$`, s.follow)
	r.Define(`^I wait until the page is ready$`, s.pageReady)
	r.Define(`^`+Arg+` `+selectorArg+` should `+negation+`exist$`, s.shouldExist)
	r.Define(`^`+Arg+` `+selectorArg+` should be visible$`, s.shouldBeVisible)
	r.Define(`^I expand all fieldsets$`, s.expandFieldsets)
	r.Define(`^I navigate to `+Arg+` node in `+Arg+`$`, s.navigateTo)
}

func (s *Steps) siteHomepage(ctx context.Context, args Args) (entities.Sequence, error) {
	return nil, s.session.Visit(ctx, SiteURL(s.cfg.BaseURL, "/"))
}

func (s *Steps) clickOn(ctx context.Context, args Args) (entities.Sequence, error) {
	el, err := s.locate(ctx, args[0], args[1])
	if err != nil {
		return nil, err
	}
	return nil, s.clickVisible(ctx, el)
}

func (s *Steps) clickOnWithin(ctx context.Context, args Args) (entities.Sequence, error) {
	container, err := s.locate(ctx, args[2], args[3])
	if err != nil {
		return nil, err
	}
	el, err := s.locateIn(ctx, container, args[0], args[1])
	if err != nil {
		return nil, err
	}
	return nil, s.clickVisible(ctx, el)
}

func (s *Steps) clickVisible(ctx context.Context, el interfaces.Element) error {
	if err := s.prober.RequireVisible(ctx, el, s.cfg.Timeouts.Default); err != nil {
		return err
	}
	return el.Click(ctx)
}

func (s *Steps) seeText(ctx context.Context, args Args) (entities.Sequence, error) {
	return nil, s.expectText(ctx, "body", selectors.TypeCSS, args[1], args.Negated(0))
}

func (s *Steps) seeTextIn(ctx context.Context, args Args) (entities.Sequence, error) {
	return nil, s.expectText(ctx, args[2], args[3], args[1], args.Negated(0))
}

// expectText polls the rendered text of the container until it does (or,
// negated, does not) contain text.
func (s *Steps) expectText(ctx context.Context, container, selectorType, text string, negate bool) error {
	return resolver.Eventually(ctx, s.cfg.Interval, s.cfg.Timeouts.Default, func(ctx context.Context) error {
		el, err := s.locate(ctx, container, selectorType)
		if err != nil {
			return err
		}
		rendered, err := el.Text(ctx)
		if err != nil {
			return errs.Wrap(errs.Internal, "failed to read text of "+container, err)
		}
		found := strings.Contains(normalizeSpace(rendered), normalizeSpace(text))
		switch {
		case found && negate:
			return errs.Newf(errs.ExpectationFailed, "%q was found in %q %q", text, container, selectorType)
		case !found && !negate:
			return errs.Newf(errs.ExpectationFailed, "%q was not found in %q %q", text, container, selectorType)
		}
		return nil
	})
}

func (s *Steps) setField(ctx context.Context, args Args) (entities.Sequence, error) {
	field, err := s.locate(ctx, args[0], selectors.TypeField)
	if err != nil {
		return nil, err
	}
	if err := field.SetValue(ctx, args[1]); err != nil {
		return nil, errs.Wrap(errs.Internal, fmt.Sprintf("failed to set field %q", args[0]), err)
	}
	return nil, nil
}

func (s *Steps) press(ctx context.Context, args Args) (entities.Sequence, error) {
	button, err := s.locate(ctx, args[0], selectors.TypeButton)
	if err != nil {
		return nil, err
	}
	return nil, s.clickVisible(ctx, button)
}

func (s *Steps) follow(ctx context.Context, args Args) (entities.Sequence, error) {
	link, err := s.locate(ctx, args[0], selectors.TypeLink)
	if err != nil {
		return nil, err
	}
	return nil, s.clickVisible(ctx, link)
}

func (s *Steps) pageReady(ctx context.Context, args Args) (entities.Sequence, error) {
	return nil, s.waitPageReady(ctx)
}

func (s *Steps) shouldExist(ctx context.Context, args Args) (entities.Sequence, error) {
	loc, err := selectors.Transform(args[1], args[0])
	if err != nil {
		return nil, err
	}
	negate := args.Negated(2)
	return nil, resolver.Eventually(ctx, s.cfg.Interval, s.cfg.Timeouts.Default, func(ctx context.Context) error {
		all, err := s.session.FindAll(ctx, loc)
		if err != nil {
			return errs.Wrap(errs.Internal, "failed to find "+loc.String(), err)
		}
		switch {
		case len(all) > 0 && negate:
			return errs.Newf(errs.ExpectationFailed, "%q %q exists", args[0], args[1])
		case len(all) == 0 && !negate:
			return errs.Newf(errs.NotFound, "%q %q does not exist", args[0], args[1])
		}
		return nil
	})
}

func (s *Steps) shouldBeVisible(ctx context.Context, args Args) (entities.Sequence, error) {
	_, err := s.awaitVisible(ctx, args[0], args[1], s.cfg.Timeouts.Default)
	return nil, err
}

// expandFieldsets only matters when scripts collapse the form sections.
func (s *Steps) expandFieldsets(ctx context.Context, args Args) (entities.Sequence, error) {
	if !s.session.JavaScriptEnabled() {
		return nil, nil
	}
	return nil, s.session.ExecuteScript(ctx, expandFieldsetsJS)
}

// navigateTo follows a node of the settings block below the named branch.
func (s *Steps) navigateTo(ctx context.Context, args Args) (entities.Sequence, error) {
	branch := entities.XPath(fmt.Sprintf(
		"descendant::*[contains(concat(' ', normalize-space(@class), ' '), ' block_settings ')]//li[contains(normalize-space(string(.)), %s)]",
		selectors.Literal(args[1])))
	container, err := resolver.Find(ctx, s.session, branch)
	if err != nil {
		return nil, err
	}
	link, err := resolver.Find(ctx, container, selectors.Link(args[0]))
	if err != nil {
		return nil, err
	}
	return nil, s.clickVisible(ctx, link)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
