// Package selectors turns step-level selector types ("link", "button",
// "css_element", ...) into low-level locators. Named selectors are built as
// XPath expressions relative to the root element so that a match can later be
// re-addressed positionally and its siblings enumerated.
package selectors

import (
	"fmt"
	"strings"

	"snap_behat/domain/entities"
	"snap_behat/domain/errs"
)

// Selector types accepted by steps.
const (
	TypeCSS      = "css_element"
	TypeXPath    = "xpath_element"
	TypeLink     = "link"
	TypeButton   = "button"
	TypeField    = "field"
	TypeText     = "text"
	TypeDialogue = "dialogue"
	TypeRegion   = "region"
)

var named = map[string]func(string) entities.Locator{
	TypeLink:     Link,
	TypeButton:   Button,
	TypeField:    Field,
	TypeText:     Text,
	TypeDialogue: Dialogue,
	TypeRegion:   Region,
}

// Types lists every accepted selector type.
func Types() []string {
	return []string{TypeCSS, TypeXPath, TypeLink, TypeButton, TypeField, TypeText, TypeDialogue, TypeRegion}
}

// Transform maps a selector type and locator onto a Locator.
func Transform(selectorType, locator string) (entities.Locator, error) {
	switch selectorType {
	case TypeCSS:
		return entities.CSS(locator), nil
	case TypeXPath:
		rel, err := relativeXPath(locator)
		if err != nil {
			return entities.Locator{}, err
		}
		return entities.XPath(rel), nil
	}
	if build, ok := named[selectorType]; ok {
		return build(locator), nil
	}
	return entities.Locator{}, errs.Newf(errs.MalformedInput,
		"unknown selector type %q (expected one of %s)", selectorType, strings.Join(Types(), ", "))
}

// Link matches anchors by id, text, title or image alt.
func Link(locator string) entities.Locator {
	l := Literal(locator)
	return entities.XPath(fmt.Sprintf(
		"descendant-or-self::a[@href][@id = %[1]s or contains(normalize-space(string(.)), %[1]s) or contains(@title, %[1]s) or .//img[contains(@alt, %[1]s)]]",
		l))
}

// Button matches buttons and submit-like inputs by id, name, value, title or text.
func Button(locator string) entities.Locator {
	l := Literal(locator)
	return entities.XPath(fmt.Sprintf(
		"descendant-or-self::*[self::button or self::input[@type = 'submit' or @type = 'button' or @type = 'reset' or @type = 'image']]"+
			"[@id = %[1]s or @name = %[1]s or contains(@value, %[1]s) or contains(@title, %[1]s) or contains(normalize-space(string(.)), %[1]s)]",
		l))
}

// Field matches form controls by id, name, placeholder or label text.
func Field(locator string) entities.Locator {
	l := Literal(locator)
	return entities.XPath(fmt.Sprintf(
		"descendant-or-self::*[self::input[not(@type = 'submit' or @type = 'button' or @type = 'reset' or @type = 'image' or @type = 'hidden')] or self::textarea or self::select]"+
			"[@id = %[1]s or @name = %[1]s or @placeholder = %[1]s or @id = //label[normalize-space(string(.)) = %[1]s]/@for or ancestor::label[normalize-space(string(.)) = %[1]s]]",
		l))
}

// Text matches the innermost nodes containing the text.
func Text(locator string) entities.Locator {
	l := Literal(locator)
	return entities.XPath(fmt.Sprintf(
		"descendant-or-self::*[contains(normalize-space(string(.)), %[1]s)][not(descendant::*[contains(normalize-space(string(.)), %[1]s)])]",
		l))
}

// Dialogue matches modal dialogues whose content mentions the title.
func Dialogue(locator string) entities.Locator {
	l := Literal(locator)
	return entities.XPath(fmt.Sprintf(
		"descendant-or-self::*[@role = 'dialog' or contains(concat(' ', normalize-space(@class), ' '), ' moodle-dialogue ')][contains(normalize-space(string(.)), %s)]",
		l))
}

// Region matches a page region by id.
func Region(locator string) entities.Locator {
	l := Literal(locator)
	return entities.XPath(fmt.Sprintf("descendant-or-self::*[@id = %[1]s or (@role = 'region' and @aria-label = %[1]s)]", l))
}

// Literal quotes s as an XPath string literal.
func Literal(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// relativeXPath rewrites a user supplied expression so it can be anchored at
// //html/. Parenthesized expressions have no relative form and are rejected.
func relativeXPath(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	switch {
	case strings.HasPrefix(expr, "("):
		return "", errs.Newf(errs.MalformedInput,
			"xpath %q cannot be anchored at the document root, write it as a path", expr)
	case strings.HasPrefix(expr, "//html/"):
		return strings.TrimPrefix(expr, "//html/"), nil
	case strings.HasPrefix(expr, "/html/"):
		return strings.TrimPrefix(expr, "/html/"), nil
	case strings.HasPrefix(expr, "//"):
		return expr[1:], nil
	case strings.HasPrefix(expr, "./"):
		return expr[2:], nil
	}
	return expr, nil
}
