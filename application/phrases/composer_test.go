package phrases

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"snap_behat/domain/entities"
	"snap_behat/domain/errs"
)

var fixedNow = time.Date(2024, time.April, 8, 15, 30, 0, 0, time.UTC)

func newTestComposer(opts ...Option) *Composer {
	return NewComposer(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestLogIn_PageReadyOnlyWithJavaScript(t *testing.T) {
	c := newTestComposer()

	withJS := c.LogIn("teacher1", true)
	withoutJS := c.LogIn("teacher1", false)

	assert.Equal(t, PageReady, withJS[0])
	assert.NotContains(t, withoutJS, PageReady)
	assert.Equal(t, withJS[1:], withoutJS)
	assert.Equal(t, entities.Phrase(`I click on "Log in" "link"`), withoutJS[0])
	assert.Equal(t, entities.Phrase(`I set the field "Username" to "teacher1"`), withoutJS[3])
	assert.Equal(t, entities.Phrase(`I set the field "Password" to "teacher1"`), withoutJS[4])
	assert.Equal(t, entities.Phrase(`I press "Log in"`), withoutJS[5])
}

func TestLogIn_EscapesUsername(t *testing.T) {
	c := newTestComposer()

	seq := c.LogIn(`o"brien`, false)
	assert.Equal(t, entities.Phrase(`I set the field "Username" to "o\"brien"`), seq[3])
}

func TestRestrictSectionByDate_SplitsDate(t *testing.T) {
	c := newTestComposer()

	seq, err := c.RestrictSectionByDate(2, "2024-04-10")
	require.NoError(t, err)

	assert.Equal(t, entities.Phrase("I go to course section 2"), seq[0])
	assert.Contains(t, seq, entities.Phrase(`I set the field "name" to "Topic 2024-04-10 2"`))
	assert.Contains(t, seq, entities.Phrase(`I set the field "day" to "10"`))
	assert.Contains(t, seq, entities.Phrase(`I set the field "Month" to "4"`))
	assert.Contains(t, seq, entities.Phrase(`I set the field "year" to "2024"`))
	assert.Contains(t, seq, entities.Phrase(`I press "Save changes" (theme_snap)`))
	assert.Equal(t, PageReady, seq[len(seq)-1])
}

func TestRestrictAssetByDate(t *testing.T) {
	c := newTestComposer()

	seq, err := c.RestrictAssetByDate(`Essay "one"`, "tomorrow")
	require.NoError(t, err)

	assert.Equal(t, entities.Phrase(`I follow asset link "Essay \"one\""`), seq[0])
	assert.Contains(t, seq, entities.Phrase(`I set the field "day" to "9"`))
	assert.Contains(t, seq, entities.Phrase(`I press "Save and return to course" (theme_snap)`))
}

func TestRestrict_RejectsBadDate(t *testing.T) {
	c := newTestComposer()

	_, err := c.RestrictSectionByDate(1, "not a date at all")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.MalformedInput))
}

func TestSplit_UsesConfiguredZone(t *testing.T) {
	zone := time.FixedZone("UTC+10", 10*60*60)
	instant := time.Date(2024, time.April, 9, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, DateParts{Day: 9, Month: 4, Year: 2024}, Split(instant, time.UTC))
	assert.Equal(t, DateParts{Day: 10, Month: 4, Year: 2024}, Split(instant, zone))
}

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2024-04-10": time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
		"today":      time.Date(2024, time.April, 8, 0, 0, 0, 0, time.UTC),
		"Tomorrow":   time.Date(2024, time.April, 9, 0, 0, 0, 0, time.UTC),
		"yesterday":  time.Date(2024, time.April, 7, 0, 0, 0, 0, time.UTC),
		"+2 days":    fixedNow.AddDate(0, 0, 2),
		"-1 week":    fixedNow.AddDate(0, 0, -7),
		"now":        fixedNow,
	}
	for in, want := range cases {
		got, err := ParseDate(in, fixedNow, time.UTC)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s: got %s want %s", in, got, want)
	}

	_, err := ParseDate("  ", fixedNow, time.UTC)
	assert.True(t, errs.Is(err, errs.MalformedInput))
}

func TestAvailableFrom(t *testing.T) {
	c := newTestComposer()

	seq, err := c.AvailableFromInSection("2024-04-01", 3, false)
	require.NoError(t, err)
	assert.Equal(t, entities.Sequence{
		`I should see "Available from" in the "#section-3 > div.content > div.snap-restrictions-meta" "css_element"`,
		`I should see "1 April 2024" in the "#section-3 > div.content > div.snap-restrictions-meta" "css_element"`,
	}, seq)

	seq, err = c.AvailableFromInAsset("2024-04-10", 2, 1, true)
	require.NoError(t, err)
	assert.Equal(t, entities.Sequence{
		`I should not see "Available from" in the "#section-1 li.snap-asset:nth-of-type(2)" "css_element"`,
		`I should not see "10 April 2024" in the "#section-1 li.snap-asset:nth-of-type(2)" "css_element"`,
	}, seq)
}

func TestFormatDate_CustomPattern(t *testing.T) {
	got, err := FormatDate(time.Date(2024, time.April, 5, 0, 0, 0, 0, time.UTC), time.UTC, "%A, %d %B %Y")
	require.NoError(t, err)
	assert.Equal(t, "Friday, 5 April 2024", got)
}

func TestTOCItem_SkipsIntroduction(t *testing.T) {
	c := newTestComposer()

	assert.Equal(t, entities.Sequence{
		`I should see "Topic 1" in the "#chapters li:nth-of-type(2)" "css_element"`,
	}, c.TOCItem("Topic 1", 1, false))
	assert.Equal(t, entities.Sequence{
		`I should not see "Topic 1" in the "#chapters li:nth-of-type(4)" "css_element"`,
	}, c.TOCItem("Topic 1", 3, true))
}

var quotedArg = regexp.MustCompile(`"((?:[^"]|\\")*)"`)

func TestComposedPhrasesKeepArgumentsIntact(t *testing.T) {
	c := newTestComposer()

	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[A-Za-z0-9 "'&-]{1,30}`).Draw(t, "name")

		seq := c.CreateSection(name).Then(c.AllSectionsMode(name)...)
		for _, p := range seq {
			args := quotedArg.FindAllStringSubmatch(string(p), -1)
			for _, a := range args {
				if entities.Escape(entities.Unescape(a[1])) != a[1] {
					t.Fatalf("argument %q of %q is not a single escaped string", a[1], p)
				}
			}
		}
		want := entities.Phrasef(`Snap I follow link "%s"`, name)
		found := false
		for _, p := range seq {
			if p == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing %q", want)
		}
	})
}
