package entities

import (
	"fmt"
	"strconv"
)

// SelectorKind is the low-level selector language of a Locator.
type SelectorKind string

const (
	SelectorCSS   SelectorKind = "css"
	SelectorXPath SelectorKind = "xpath"
)

// Locator identifies zero or more nodes. XPath values are relative to the
// document root element, e.g. `descendant-or-self::a[@href]`.
type Locator struct {
	Kind  SelectorKind
	Value string
}

// CSS returns a CSS locator.
func CSS(selector string) Locator {
	return Locator{Kind: SelectorCSS, Value: selector}
}

// XPath returns an XPath locator relative to the root element.
func XPath(expr string) Locator {
	return Locator{Kind: SelectorXPath, Value: expr}
}

func (l Locator) String() string {
	return string(l.Kind) + " " + strconv.Quote(l.Value)
}

// DocumentXPath anchors a relative expression at the root element.
func DocumentXPath(rel string) string {
	return "//html/" + rel
}

// PositionalXPath addresses the index-th (1-based) match of rel in the document.
func PositionalXPath(rel string, index int) string {
	return fmt.Sprintf("(%s)[%d]", DocumentXPath(rel), index)
}

// ScopedXPath addresses the index-th (1-based) match of rel below parent.
func ScopedXPath(parent, rel string, index int) string {
	return fmt.Sprintf("(%s/%s)[%d]", parent, rel, index)
}
