// Package phrases builds the step sequences that higher-level theme steps
// hand back to the registry. Every free-text argument goes through
// entities.Phrasef so that quotes in course names, titles or dates cannot
// break the quoted arguments of the generated phrases.
package phrases

import (
	"time"

	"snap_behat/domain/entities"
)

// PageReady is the phrase that waits for the page's scripts to settle.
const PageReady entities.Phrase = "I wait until the page is ready"

// Strings holds the interface strings the login flow clicks and types into.
type Strings struct {
	Login    string
	Username string
	Password string
	LogOut   string
}

// DefaultStrings are the English interface strings.
var DefaultStrings = Strings{
	Login:    "Log in",
	Username: "Username",
	Password: "Password",
	LogOut:   "Log out",
}

// Composer builds phrase sequences for the theme steps.
type Composer struct {
	location   *time.Location
	dateFormat string
	strings    Strings
	now        func() time.Time
}

// Option configures a Composer.
type Option func(*Composer)

// WithLocation sets the time zone used to split and print dates.
func WithLocation(loc *time.Location) Option {
	return func(c *Composer) { c.location = loc }
}

// WithDateFormat sets the strftime pattern used for "available from" dates.
func WithDateFormat(pattern string) Option {
	return func(c *Composer) { c.dateFormat = pattern }
}

// WithStrings overrides the interface strings.
func WithStrings(s Strings) Option {
	return func(c *Composer) { c.strings = s }
}

// WithClock sets the reference time for relative dates.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// NewComposer returns a composer using UTC and the "%d %B %Y" date format by default.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		location:   time.UTC,
		dateFormat: "%d %B %Y",
		strings:    DefaultStrings,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LogIn fills the login form with username as both user name and password.
// With scripts running, the freshly visited front page has to be ready before
// the login link is clicked.
func (c *Composer) LogIn(username string, javascript bool) entities.Sequence {
	var seq entities.Sequence
	if javascript {
		seq = append(seq, PageReady)
	}
	return seq.Then(
		entities.Phrasef(`I click on "%s" "link"`, c.strings.Login),
		entities.Phrasef(`I should not see "%s"`, c.strings.LogOut),
		`I wait until "#loginbtn" "css_element" is visible`,
		entities.Phrasef(`I set the field "%s" to "%s"`, c.strings.Username, username),
		entities.Phrasef(`I set the field "%s" to "%s"`, c.strings.Password, username),
		entities.Phrasef(`I press "%s"`, c.strings.Login),
	)
}

// LogOut opens the personal menu and follows the log out link.
func (c *Composer) LogOut() entities.Sequence {
	return entities.Sequence{
		`I follow "Menu"`,
		`I wait until ".btn.logout" "css_element" is visible`,
		entities.Phrasef(`I follow "%s"`, c.strings.LogOut),
		PageReady,
	}
}

// CourseSection waits for a section reached through the location hash.
func (c *Composer) CourseSection(section int) entities.Sequence {
	return entities.Sequence{
		PageReady,
		entities.Phrasef(`I wait until "#section-%d" "css_element" is visible`, section),
	}
}

// AllSectionsMode opens course and checks the single-section navigation is absent.
func (c *Composer) AllSectionsMode(course string) entities.Sequence {
	return entities.Sequence{
		`I follow "Menu"`,
		entities.Phrasef(`Snap I follow link "%s"`, course),
		PageReady,
		"I go to single course section 1",
		`".section-navigation.navigationtitle" "css_element" should not exist`,
	}
}

// CreateSection adds a titled section to a topics course.
func (c *Composer) CreateSection(course string) entities.Sequence {
	return entities.Sequence{
		"I open the personal menu",
		entities.Phrasef(`Snap I follow link "%s"`, course),
		`I follow "Create a new section"`,
		`I set the field "Title" to "New section title"`,
		`I click on "Create section" "button"`,
	}
}

// CreateWeeklySection adds the next week to a weekly course.
func (c *Composer) CreateWeeklySection(course string) entities.Sequence {
	return entities.Sequence{
		"I open the personal menu",
		entities.Phrasef(`Snap I follow link "%s"`, course),
		`I follow "Create a new section"`,
		`I should see "Title: 8 April-14 April"`,
		`I click on "Create section" "button"`,
	}
}

// OpenPersonalMenu clicks the personal menu trigger.
func (c *Composer) OpenPersonalMenu() entities.Sequence {
	return entities.Sequence{`I click on "#js-personal-menu-trigger" "css_element"`}
}

// RestrictSectionByDate edits section and adds a date restriction.
func (c *Composer) RestrictSectionByDate(section int, date string) (entities.Sequence, error) {
	t, err := ParseDate(date, c.now(), c.location)
	if err != nil {
		return nil, err
	}
	seq := entities.Sequence{
		entities.Phrasef("I go to course section %d", section),
		`I follow visible link "Edit Topic"`,
		`I wait until ".snap-form-advanced" "css_element" is visible`,
		entities.Phrasef(`I set the field "name" to "Topic %s %d"`, date, section),
	}
	return seq.Then(c.dateRestriction(t, "Save changes")...), nil
}

// RestrictAssetByDate opens an asset's settings and adds a date restriction.
func (c *Composer) RestrictAssetByDate(title, date string) (entities.Sequence, error) {
	t, err := ParseDate(date, c.now(), c.location)
	if err != nil {
		return nil, err
	}
	seq := entities.Sequence{
		entities.Phrasef(`I follow asset link "%s"`, title),
		`I click on "#admin-menu-trigger" "css_element"`,
		`I wait until ".block_settings.state-visible" "css_element" is visible`,
		`I navigate to "Edit settings" node in "Assignment administration"`,
	}
	return seq.Then(c.dateRestriction(t, "Save and return to course")...), nil
}

func (c *Composer) dateRestriction(t time.Time, save string) entities.Sequence {
	parts := Split(t, c.location)
	return entities.Sequence{
		"I expand all fieldsets",
		`I click on "Add restriction..." "button"`,
		`"Add restriction..." "dialogue" should be visible`,
		`I click on "Date" "button" in the "Add restriction..." "dialogue"`,
		entities.Phrasef(`I set the field "day" to "%d"`, parts.Day),
		entities.Phrasef(`I set the field "Month" to "%d"`, parts.Month),
		entities.Phrasef(`I set the field "year" to "%d"`, parts.Year),
		entities.Phrasef(`I press "%s" (theme_snap)`, save),
		PageReady,
	}
}

// AvailableFrom checks the conditional "Available from" message in an element.
func (c *Composer) AvailableFrom(date, element, selectorType string, negate bool) (entities.Sequence, error) {
	t, err := ParseDate(date, c.now(), c.location)
	if err != nil {
		return nil, err
	}
	printed, err := FormatDate(t, c.location, c.dateFormat)
	if err != nil {
		return nil, err
	}
	verb := see(negate)
	return entities.Sequence{
		entities.Phrasef(`I should %s "Available from" in the "%s" "%s"`, verb, element, selectorType),
		entities.Phrasef(`I should %s "%s" in the "%s" "%s"`, verb, printed, element, selectorType),
	}, nil
}

// AvailableFromInAsset checks the message on the nth asset of a section.
func (c *Composer) AvailableFromInAsset(date string, nth, section int, negate bool) (entities.Sequence, error) {
	return c.AvailableFrom(date, AssetSelector(section, nth), "css_element", negate)
}

// AvailableFromInSection checks the message on a section's restriction summary.
func (c *Composer) AvailableFromInSection(date string, section int, negate bool) (entities.Sequence, error) {
	return c.AvailableFrom(date, SectionRestrictionSelector(section), "css_element", negate)
}

// TOCItem checks the text of a table of contents entry. Item 0 is the
// introduction, so item n is the (n+1)th list entry.
func (c *Composer) TOCItem(text string, item int, negate bool) entities.Sequence {
	return entities.Sequence{
		entities.Phrasef(`I should %s "%s" in the "#chapters li:nth-of-type(%d)" "css_element"`, see(negate), text, item+1),
	}
}

func see(negate bool) entities.Phrase {
	if negate {
		return "not see"
	}
	return "see"
}
