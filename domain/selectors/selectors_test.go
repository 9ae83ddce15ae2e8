package selectors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snap_behat/domain/entities"
	"snap_behat/domain/errs"
)

func TestLiteral(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`Log in`:     `'Log in'`,
		`Ann's`:      `"Ann's"`,
		`say "hi"`:   `'say "hi"'`,
		`Ann's "hi"`: `concat('Ann', "'", 's "hi"')`,
		`'"`:         `concat("'", '"')`,
		`a''b"`:      `concat('a', "'", "'", 'b"')`,
	}
	for in, want := range cases {
		assert.Equal(t, want, Literal(in), "input %q", in)
	}
}

func TestTransform(t *testing.T) {
	t.Parallel()

	loc, err := Transform(TypeCSS, "#loginbtn")
	require.NoError(t, err)
	assert.Equal(t, entities.CSS("#loginbtn"), loc)

	loc, err = Transform(TypeXPath, "//div[@id='x']")
	require.NoError(t, err)
	assert.Equal(t, entities.XPath("/div[@id='x']"), loc)
	assert.Equal(t, "//html//div[@id='x']", entities.DocumentXPath(loc.Value))

	loc, err = Transform(TypeXPath, "/html/body/div")
	require.NoError(t, err)
	assert.Equal(t, "//html/body/div", entities.DocumentXPath(loc.Value))

	loc, err = Transform(TypeLink, "Log out")
	require.NoError(t, err)
	assert.Equal(t, entities.SelectorXPath, loc.Kind)
	assert.True(t, strings.HasPrefix(loc.Value, "descendant-or-self::a[@href]"))
	assert.Contains(t, loc.Value, "'Log out'")

	_, err = Transform("nonsense", "x")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.MalformedInput))
}

func TestTransform_XPathAnchoring(t *testing.T) {
	t.Parallel()

	for expr, want := range map[string]string{
		"//html/body//a":  "//html/body//a",
		"/html/body/div":  "//html/body/div",
		"//div[@id='x']":  "//html//div[@id='x']",
		"./div/span":      "//html/div/span",
		"body/div":        "//html/body/div",
		" //html/body/p ": "//html/body/p",
	} {
		loc, err := Transform(TypeXPath, expr)
		require.NoError(t, err, expr)
		assert.Equal(t, want, entities.DocumentXPath(loc.Value), expr)
	}

	_, err := Transform(TypeXPath, "(//a)[2]")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.MalformedInput))
}

func TestNamedSelectorsQuoteInput(t *testing.T) {
	t.Parallel()

	for _, typ := range []string{TypeLink, TypeButton, TypeField, TypeText, TypeDialogue, TypeRegion} {
		loc, err := Transform(typ, `it's`)
		require.NoError(t, err)
		assert.Contains(t, loc.Value, `"it's"`, typ)
		assert.NotContains(t, loc.Value, `'it's'`, typ)
	}
}
