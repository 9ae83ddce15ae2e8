package steps

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snap_behat/application/phrases"
	"snap_behat/application/resolver"
	"snap_behat/domain/entities"
	"snap_behat/domain/errs"
	"snap_behat/domain/selectors"
	"snap_behat/infrastructure/browser/browsertest"
)

var testConfig = Config{
	BaseURL:     "http://site",
	FixturesDir: "/fixtures",
	Interval:    time.Millisecond,
	Timeouts: resolver.Timeouts{
		Default:  40 * time.Millisecond,
		Extended: 30 * time.Millisecond,
		Reduced:  10 * time.Millisecond,
	},
}

func newTestRegistry(session *browsertest.Session) *Registry {
	composer := phrases.NewComposer(phrases.WithClock(func() time.Time {
		return time.Date(2024, time.April, 8, 12, 0, 0, 0, time.UTC)
	}))
	return New(session, composer, testConfig, quietLogger()).NewRegistry()
}

func visible(name string) *browsertest.Element {
	return &browsertest.Element{Name: name, Visible: true, Height: 20}
}

func TestLogIn_FillsFormAndWaitsForPage(t *testing.T) {
	session := browsertest.NewSession("about:blank")
	link := session.Add(selectors.Link("Log in"), visible("login link"))[0]
	session.Add(entities.CSS("body"), &browsertest.Element{Visible: true, Label: "Welcome to the site"})
	session.Add(entities.CSS("#loginbtn"), visible("login button"))
	username := session.Add(selectors.Field("Username"), visible("username"))[0]
	password := session.Add(selectors.Field("Password"), visible("password"))[0]
	submit := session.Add(selectors.Button("Log in"), visible("submit"))[0]

	r := newTestRegistry(session)
	require.NoError(t, r.Dispatch(context.Background(), `I log in with snap as "teacher1"`))

	assert.Equal(t, []string{"http://site/"}, session.Visited)
	assert.Equal(t, 1, link.Clicks)
	assert.Equal(t, "teacher1", username.Value)
	assert.Equal(t, "teacher1", password.Value)
	assert.Equal(t, 1, submit.Clicks)
	assert.Equal(t, []string{PageReadyJS}, session.Conditions)
}

func TestLogIn_WaitsForFrontPageBeforeClicking(t *testing.T) {
	session := browsertest.NewSession("about:blank")
	session.Ready = false
	link := session.Add(selectors.Link("Log in"), visible("login link"))[0]

	r := newTestRegistry(session)
	err := r.Dispatch(context.Background(), `I log in with snap as "teacher1"`)

	assert.True(t, errs.Is(err, errs.ExpectationFailed))
	assert.Equal(t, 0, link.Clicks)
	assert.Equal(t, []string{PageReadyJS}, session.Conditions)
}

func TestLogIn_WithoutJavaScriptSkipsReadyWait(t *testing.T) {
	session := browsertest.NewSession("about:blank")
	session.JavaScript = false

	r := newTestRegistry(session)
	def, args, err := r.Match(`I log in with snap as "teacher1"`)
	require.NoError(t, err)

	seq, err := def.Handler(context.Background(), args)
	require.NoError(t, err)
	assert.NotContains(t, seq, phrases.PageReady)
}

func TestGoToSingleCourseSection(t *testing.T) {
	session := browsertest.NewSession("http://site/course/view.php?id=4")
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), "I go to single course section 2"))
	assert.Equal(t, []string{"http://site/course/view.php?id=4&section=2"}, session.Visited)
}

func TestGoToSingleCourseSection_RequiresCoursePage(t *testing.T) {
	session := browsertest.NewSession("http://site/my/")
	r := newTestRegistry(session)

	err := r.Dispatch(context.Background(), "I go to single course section 2")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.NotOnExpectedPage))
	assert.Empty(t, session.Visited)
}

func TestGoToCourseSection_JumpsByHash(t *testing.T) {
	session := browsertest.NewSession("http://site/Course/View.php?id=4")
	session.Add(entities.CSS("#section-3"), visible("section 3"))
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), "I go to course section 3"))
	assert.Equal(t, []string{`location.hash = "section-3";`}, session.Scripts)
}

func TestSnapFollowLink_VisitsResolvedHref(t *testing.T) {
	session := browsertest.NewSession("http://site/my/index.php")
	course := visible("course")
	course.Attrs = map[string]string{"href": "../course/view.php?id=4"}
	session.Add(selectors.Link(`Course "A"`), course)
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `Snap I follow link "Course \"A\""`))
	assert.Equal(t, []string{"http://site/course/view.php?id=4"}, session.Visited)
	assert.Zero(t, course.Clicks)
}

func TestUploadFile_UsesFixtureBaseName(t *testing.T) {
	session := browsertest.NewSession("http://site/course/view.php?id=4")
	input := session.Add(entities.CSS("#snap-drop-file-1"), visible("drop"))[0]
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `I upload file "../../secret/test_text_file.txt" to section "1"`))
	assert.Equal(t, []string{filepath.Join("/fixtures", "test_text_file.txt")}, input.Files)
}

func TestOpenPersonalMenu(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	nav := session.Add(entities.CSS("#primary-nav"), &browsertest.Element{Visible: true})[0]
	trigger := session.Add(entities.CSS("#js-personal-menu-trigger"), visible("trigger"))[0]
	session.Offset = 300
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), "I open the personal menu"))
	assert.Zero(t, trigger.Clicks)
	assert.Zero(t, session.Offset)

	nav.Visible = false
	require.NoError(t, r.Dispatch(context.Background(), "I open the personal menu"))
	assert.Equal(t, 1, trigger.Clicks)
}

func TestFollowVisibleLink_ClicksLaterSibling(t *testing.T) {
	session := browsertest.NewSession("http://site/course/view.php?id=4")
	loc := selectors.Link("Edit Topic")
	els := session.Add(loc,
		&browsertest.Element{Name: "hidden", DocTop: 100, Height: 20},
		&browsertest.Element{Name: "shown", Visible: true, DocTop: 900, Height: 20},
	)
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `I follow visible link "Edit Topic"`))
	assert.Zero(t, els[0].Clicks)
	assert.Equal(t, 1, els[1].Clicks)
	assert.Equal(t, 890.0, session.Offset)
}

func TestPressThemeButton_ScrollsThenClicks(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	button := session.Add(selectors.Button("Save changes"), &browsertest.Element{Visible: true, DocTop: 1200, Height: 40})[0]
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `I press "Save changes" (theme_snap)`))
	assert.Equal(t, 1, button.Clicks)
	assert.Equal(t, []float64{1180}, session.ScrollLog)
}

func TestPressThemeButton_HiddenButtonFails(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	button := session.Add(selectors.Button("Save changes"), &browsertest.Element{Height: 40})[0]
	r := newTestRegistry(session)

	err := r.Dispatch(context.Background(), `I press "Save changes" (theme_snap)`)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ExpectationFailed))
	assert.Zero(t, button.Clicks)
}

func TestShouldSeeText(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	session.Add(entities.CSS("body"), &browsertest.Element{Visible: true, Label: "Available   from\n1 April 2024"})
	r := newTestRegistry(session)
	ctx := context.Background()

	require.NoError(t, r.Dispatch(ctx, `I should see "Available from"`))
	require.NoError(t, r.Dispatch(ctx, `I should not see "Log out"`))

	err := r.Dispatch(ctx, `I should see "Log out"`)
	assert.True(t, errs.Is(err, errs.ExpectationFailed))
	err = r.Dispatch(ctx, `I should not see "1 April"`)
	assert.True(t, errs.Is(err, errs.ExpectationFailed))
}

func TestAvailableFromInSection_ExpandsToTextChecks(t *testing.T) {
	session := browsertest.NewSession("http://site/course/view.php?id=4")
	session.Add(entities.CSS(phrases.SectionRestrictionSelector(1)),
		&browsertest.Element{Visible: true, Label: "Available from 10 April 2024"})
	r := newTestRegistry(session)
	ctx := context.Background()

	require.NoError(t, r.Dispatch(ctx, `I should see available from date of "2024-04-10" in section 1`))
	err := r.Dispatch(ctx, `I should not see available from date of "2024-04-10" in section 1`)
	assert.True(t, errs.Is(err, errs.ExpectationFailed))
}

func TestAvailableFromInAsset_ParsesOrdinal(t *testing.T) {
	session := browsertest.NewSession("http://site/course/view.php?id=4")
	session.Add(entities.CSS(phrases.AssetSelector(2, 3)),
		&browsertest.Element{Visible: true, Label: "Available from 9 April 2024"})
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `I should see available from date of "tomorrow" in the 3rd asset within section 2`))
}

func TestTOCItem(t *testing.T) {
	session := browsertest.NewSession("http://site/course/view.php?id=4")
	session.Add(entities.CSS("#chapters li:nth-of-type(2)"), &browsertest.Element{Visible: true, Label: "Topic 1"})
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `I should see "Topic 1" in TOC item 1`))
	require.NoError(t, r.Dispatch(context.Background(), `I should not see "Topic 2" in TOC item 1`))
}

func TestShouldExist(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	session.Add(entities.CSS(".section-navigation"), visible("nav"))
	r := newTestRegistry(session)
	ctx := context.Background()

	require.NoError(t, r.Dispatch(ctx, `".section-navigation" "css_element" should exist`))
	require.NoError(t, r.Dispatch(ctx, `".missing" "css_element" should not exist`))

	err := r.Dispatch(ctx, `".section-navigation" "css_element" should not exist`)
	assert.True(t, errs.Is(err, errs.ExpectationFailed))
	err = r.Dispatch(ctx, `".missing" "css_element" should exist`)
	assert.True(t, errs.Is(err, errs.NotFound))
}

func TestWaitUntilVisible_UnknownSelectorType(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	r := newTestRegistry(session)

	err := r.Dispatch(context.Background(), `I wait until "x" "widget" is visible`)
	assert.True(t, errs.Is(err, errs.MalformedInput))
}

func TestUnknownSelectorType_FailsWithoutWaiting(t *testing.T) {
	cfg := testConfig
	cfg.Timeouts = resolver.Timeouts{Default: 2 * time.Second, Extended: 2 * time.Second, Reduced: time.Second}
	session := browsertest.NewSession("http://site/")
	r := New(session, phrases.NewComposer(), cfg, quietLogger()).NewRegistry()

	for _, phrase := range []entities.Phrase{
		`I wait until "x" "widget" is visible`,
		`I should see "x" in the "y" "widget"`,
		`"x" "widget" should exist`,
	} {
		start := time.Now()
		err := r.Dispatch(context.Background(), phrase)
		assert.True(t, errs.Is(err, errs.MalformedInput), phrase)
		assert.Less(t, time.Since(start), 500*time.Millisecond, phrase)
	}
}

func TestWaitUntilVisible_ElementAppearsLate(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	el := session.Add(entities.CSS(".late"), &browsertest.Element{Visible: true, HiddenFor: 3})[0]
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `I wait until ".late" "css_element" is visible`))
	assert.Equal(t, 4, el.Checks)
}

func TestClickOnWithinContainer(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	dialogue := session.Add(selectors.Dialogue("Add restriction..."), visible("dialogue"))[0]
	date := dialogue.AddChild(selectors.Button("Date"), visible("date"))[0]
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `I click on "Date" "button" in the "Add restriction..." "dialogue"`))
	assert.Equal(t, 1, date.Clicks)
}

func TestSnapLogOut_ScrollsToTopFirst(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	session.Offset = 500
	menu := session.Add(selectors.Link("Menu"), visible("menu"))[0]
	session.Add(entities.CSS(".btn.logout"), visible("logout button"))
	logout := session.Add(selectors.Link("Log out"), visible("logout"))[0]
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), "Snap I log out"))
	assert.Equal(t, []float64{0}, session.ScrollLog)
	assert.Equal(t, 1, menu.Clicks)
	assert.Equal(t, 1, logout.Clicks)
}

func TestExpandFieldsets_SkippedWithoutJavaScript(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	session.JavaScript = false
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), "I expand all fieldsets"))
	assert.Empty(t, session.Scripts)
}

func TestSectionURL(t *testing.T) {
	got, err := SectionURL("http://site/course/view.php?id=4#section-1", 3)
	require.NoError(t, err)
	assert.Equal(t, "http://site/course/view.php?id=4&section=3", got)

	got, err = SectionURL("http://site/course/view.php?id=4&section=1", 2)
	require.NoError(t, err)
	assert.Equal(t, "http://site/course/view.php?id=4&section=2", got)

	_, err = SectionURL("http://site/my/", 1)
	assert.True(t, errs.Is(err, errs.NotOnExpectedPage))
}

func TestEveryStepPatternCompilesOnce(t *testing.T) {
	r := newTestRegistry(browsertest.NewSession("http://site/"))
	seen := map[string]bool{}
	for _, p := range r.Patterns() {
		assert.False(t, seen[p], "duplicate pattern %s", p)
		seen[p] = true
	}
	assert.Len(t, seen, 34)
}

func TestScrollUntilVisible_CentresElement(t *testing.T) {
	session := browsertest.NewSession("http://site/")
	session.Add(entities.CSS("#target"), &browsertest.Element{Visible: true, DocTop: 1000, Height: 40})
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `I scroll until "#target" "css_element" is visible`))
	assert.Equal(t, []float64{980}, session.ScrollLog)
}

func TestFollowAssetLink_SkipsHiddenTitles(t *testing.T) {
	session := browsertest.NewSession("http://site/course/view.php?id=4")
	rel := "descendant::a/span[contains(., " + selectors.Literal("Quiz one") + ")]"
	els := session.Add(entities.XPath(rel),
		&browsertest.Element{Name: "collapsed"},
		&browsertest.Element{Name: "shown", Visible: true, DocTop: 600, Height: 20},
	)
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `I follow asset link "Quiz one"`))
	assert.Equal(t, 0, els[0].Clicks)
	assert.Equal(t, 1, els[1].Clicks)
}

func TestCreateSection_RunsComposedSteps(t *testing.T) {
	session := browsertest.NewSession("http://site/my/")
	session.Add(entities.CSS("#primary-nav"), visible("nav"))
	course := visible("course")
	course.Attrs = map[string]string{"href": "/course/view.php?id=4"}
	session.Add(selectors.Link("Maths"), course)
	create := session.Add(selectors.Link("Create a new section"), visible("create"))[0]
	title := session.Add(selectors.Field("Title"), visible("title"))[0]
	submit := session.Add(selectors.Button("Create section"), visible("submit"))[0]
	r := newTestRegistry(session)

	require.NoError(t, r.Dispatch(context.Background(), `I create a new section in course "Maths"`))

	assert.Equal(t, []string{"http://site/course/view.php?id=4"}, session.Visited)
	assert.Equal(t, 1, create.Clicks)
	assert.Equal(t, "New section title", title.Value)
	assert.Equal(t, 1, submit.Clicks)
}

func TestRestrictSection_RejectsBadDate(t *testing.T) {
	session := browsertest.NewSession("http://site/course/view.php?id=4")
	r := newTestRegistry(session)

	err := r.Dispatch(context.Background(), `I restrict course section 1 by date to "not a date at all"`)
	assert.True(t, errs.Is(err, errs.MalformedInput))
	assert.Empty(t, session.Queries)
}
