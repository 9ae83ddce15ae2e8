package steps

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"snap_behat/application/phrases"
	"snap_behat/domain/entities"
	"snap_behat/domain/errs"
	"snap_behat/domain/selectors"
)

const (
	ordinal     = `(\d+(?:st|nd|rd|th))`
	number      = `(\d+)`
	negation    = `(not )?`
	selectorArg = `"([^"]*)"`
)

// RegisterTheme adds the theme specific steps.
func (s *Steps) RegisterTheme(r *Registry) {
	r.Define(`^I wait until `+Arg+` `+selectorArg+` is visible$`, s.waitUntilVisible)
	r.Define(`^I log in with snap as `+Arg+`$`, s.logIn)
	r.Define(`^I upload file `+Arg+` to section `+Arg+`$`, s.uploadFile)
	r.Define(`^Snap I follow link `+Arg+`$`, s.followHref)
	r.Define(`^I go to single course section `+number+`$`, s.goToSingleSection)
	r.Define(`^I go to course section `+number+`$`, s.goToSection)
	r.Define(`^I can see course `+Arg+` in all sections mode$`, s.allSectionsMode)
	r.Define(`^Snap I log out$`, s.logOut)
	r.Define(`^I create a new section in course `+Arg+`$`, s.createSection)
	r.Define(`^I create a new section in weekly course `+Arg+`$`, s.createWeeklySection)
	r.Define(`^I open the personal menu$`, s.openPersonalMenu)
	r.Define(`^I follow visible link `+Arg+`$`, s.followVisibleLink)
	r.Define(`^I scroll until `+Arg+` `+selectorArg+` is visible$`, s.scrollUntilVisible)
	r.Define(`^I press `+Arg+` \(theme_snap\)$`, s.pressButton)
	r.Define(`^I restrict course section `+number+` by date to `+Arg+`$`, s.restrictSection)
	r.Define(`^I restrict course asset `+Arg+` by date to `+Arg+`$`, s.restrictAsset)
	r.Define(`^I should `+negation+`see available from date of `+Arg+` in `+Arg+` `+Arg+`$`, s.availableFrom)
	r.Define(`^I should `+negation+`see available from date of `+Arg+` in the `+ordinal+` asset within section `+number+`$`, s.availableFromInAsset)
	r.Define(`^I should `+negation+`see available from date of `+Arg+` in section `+number+`$`, s.availableFromInSection)
	r.Define(`^I should `+negation+`see `+Arg+` in TOC item `+number+`$`, s.tocItem)
	r.Define(`^I follow asset link `+Arg+`$`, s.followAssetLink)
}

func (s *Steps) waitUntilVisible(ctx context.Context, args Args) (entities.Sequence, error) {
	_, err := s.awaitVisible(ctx, args[0], args[1], s.cfg.Timeouts.Default)
	return nil, err
}

func (s *Steps) logIn(ctx context.Context, args Args) (entities.Sequence, error) {
	if err := s.session.Visit(ctx, SiteURL(s.cfg.BaseURL, "/")); err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to open the site", err)
	}
	return s.composer.LogIn(args[0], s.session.JavaScriptEnabled()), nil
}

func (s *Steps) uploadFile(ctx context.Context, args Args) (entities.Sequence, error) {
	name := filepath.Base(filepath.Clean("/" + args[0]))
	if name == "/" || name == "." {
		return nil, errs.Newf(errs.MalformedInput, "invalid fixture file name %q", args[0])
	}
	input, err := s.locate(ctx, phrases.UploadInputSelector(args[1]), selectors.TypeCSS)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(s.cfg.FixturesDir, name)
	s.logger.Debugf("uploading %s to section %s", path, args[1])
	if err := input.AttachFile(ctx, path); err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to attach "+path, err)
	}
	return nil, nil
}

func (s *Steps) followHref(ctx context.Context, args Args) (entities.Sequence, error) {
	link, err := s.locate(ctx, args[0], selectors.TypeLink)
	if err != nil {
		return nil, err
	}
	href, err := link.Attribute(ctx, "href")
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to read link target", err)
	}
	if strings.TrimSpace(href) == "" {
		return nil, errs.Newf(errs.NotFound, "link %q has no target", args[0])
	}
	current, err := s.session.CurrentURL(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to read current url", err)
	}
	target, err := ResolveHref(current, href)
	if err != nil {
		return nil, err
	}
	return nil, s.session.Visit(ctx, target)
}

func (s *Steps) goToSingleSection(ctx context.Context, args Args) (entities.Sequence, error) {
	section, err := args.Int(0)
	if err != nil {
		return nil, err
	}
	if err := s.waitPageReady(ctx); err != nil {
		return nil, err
	}
	current, err := s.session.CurrentURL(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to read current url", err)
	}
	target, err := SectionURL(current, section)
	if err != nil {
		return nil, err
	}
	return nil, s.session.Visit(ctx, target)
}

func (s *Steps) goToSection(ctx context.Context, args Args) (entities.Sequence, error) {
	section, err := args.Int(0)
	if err != nil {
		return nil, err
	}
	if err := s.waitPageReady(ctx); err != nil {
		return nil, err
	}
	current, err := s.session.CurrentURL(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to read current url", err)
	}
	if !IsCoursePage(current) {
		return nil, errs.Newf(errs.NotOnExpectedPage, "current page is not a course page: %s", current)
	}
	if err := s.session.ExecuteScript(ctx, hashScript(section)); err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to jump to section", err)
	}
	return s.composer.CourseSection(section), nil
}

func (s *Steps) allSectionsMode(ctx context.Context, args Args) (entities.Sequence, error) {
	return s.composer.AllSectionsMode(args[0]), nil
}

func (s *Steps) logOut(ctx context.Context, args Args) (entities.Sequence, error) {
	if err := s.session.ScrollTo(ctx, 0, 0); err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to scroll to top", err)
	}
	return s.composer.LogOut(), nil
}

func (s *Steps) createSection(ctx context.Context, args Args) (entities.Sequence, error) {
	return s.composer.CreateSection(args[0]), nil
}

func (s *Steps) createWeeklySection(ctx context.Context, args Args) (entities.Sequence, error) {
	return s.composer.CreateWeeklySection(args[0]), nil
}

// openPersonalMenu clicks the trigger unless the primary navigation is already showing.
func (s *Steps) openPersonalMenu(ctx context.Context, args Args) (entities.Sequence, error) {
	nav, err := s.locate(ctx, "#primary-nav", selectors.TypeCSS)
	if err != nil {
		return nil, err
	}
	if err := s.session.ScrollTo(ctx, 0, 0); err != nil {
		return nil, errs.Wrap(errs.Internal, "failed to scroll to top", err)
	}
	if visible, err := nav.IsVisible(ctx); err == nil && visible {
		return nil, nil
	}
	return s.composer.OpenPersonalMenu(), nil
}

func (s *Steps) followVisibleLink(ctx context.Context, args Args) (entities.Sequence, error) {
	link, err := s.scanner.FindFirstVisible(ctx, selectors.Link(args[0]))
	if err != nil {
		return nil, err
	}
	return nil, link.Click(ctx)
}

func (s *Steps) scrollUntilVisible(ctx context.Context, args Args) (entities.Sequence, error) {
	el, err := s.locate(ctx, args[0], args[1])
	if err != nil {
		return nil, err
	}
	return nil, s.scroller.ScrollIntoView(ctx, el)
}

func (s *Steps) pressButton(ctx context.Context, args Args) (entities.Sequence, error) {
	button, err := s.locate(ctx, args[0], selectors.TypeButton)
	if err != nil {
		return nil, err
	}
	if err := s.scroller.ScrollIntoView(ctx, button); err != nil {
		return nil, err
	}
	if err := s.prober.RequireVisible(ctx, button, s.cfg.Timeouts.Default); err != nil {
		return nil, err
	}
	return nil, button.Click(ctx)
}

func (s *Steps) restrictSection(ctx context.Context, args Args) (entities.Sequence, error) {
	section, err := args.Int(0)
	if err != nil {
		return nil, err
	}
	return s.composer.RestrictSectionByDate(section, args[1])
}

func (s *Steps) restrictAsset(ctx context.Context, args Args) (entities.Sequence, error) {
	return s.composer.RestrictAssetByDate(args[0], args[1])
}

func (s *Steps) availableFrom(ctx context.Context, args Args) (entities.Sequence, error) {
	return s.composer.AvailableFrom(args[1], args[2], args[3], args.Negated(0))
}

func (s *Steps) availableFromInAsset(ctx context.Context, args Args) (entities.Sequence, error) {
	nth, err := args.Ordinal(2)
	if err != nil {
		return nil, err
	}
	section, err := args.Int(3)
	if err != nil {
		return nil, err
	}
	return s.composer.AvailableFromInAsset(args[1], nth, section, args.Negated(0))
}

func (s *Steps) availableFromInSection(ctx context.Context, args Args) (entities.Sequence, error) {
	section, err := args.Int(2)
	if err != nil {
		return nil, err
	}
	return s.composer.AvailableFromInSection(args[1], section, args.Negated(0))
}

func (s *Steps) tocItem(ctx context.Context, args Args) (entities.Sequence, error) {
	item, err := args.Int(2)
	if err != nil {
		return nil, err
	}
	return s.composer.TOCItem(args[1], item, args.Negated(0)), nil
}

// followAssetLink clicks the first visible asset whose title span contains the text.
func (s *Steps) followAssetLink(ctx context.Context, args Args) (entities.Sequence, error) {
	rel := fmt.Sprintf("descendant::a/span[contains(., %s)]", selectors.Literal(args[0]))
	link, err := s.scanner.FirstVisible(ctx, rel)
	if err != nil {
		return nil, err
	}
	return nil, link.Click(ctx)
}
