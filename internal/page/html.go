package page

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/KirkDiggler/dice-bridge/internal/errors"
)

// Selector is a compiled CSS selector, e.g. "span.die-value.hunger" or
// ".dice-history > .dice-history-item:first-child".
type Selector struct {
	sel cascadia.Sel
}

// ParseSelector compiles a CSS selector
func ParseSelector(sel string) (Selector, error) {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		return Selector{}, errors.InvalidArgument("selector is required")
	}

	compiled, err := cascadia.Parse(sel)
	if err != nil {
		return Selector{}, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid selector")
	}
	return Selector{sel: compiled}, nil
}

// MustParseSelector is ParseSelector for selectors fixed at compile time
func MustParseSelector(sel string) Selector {
	s, err := ParseSelector(sel)
	if err != nil {
		panic(err)
	}
	return s
}

// IsEmpty reports whether the selector matches nothing
func (s Selector) IsEmpty() bool {
	return s.sel == nil
}

// Matches reports whether n is an element satisfying the selector
func (s Selector) Matches(n *html.Node) bool {
	if n == nil || s.IsEmpty() {
		return false
	}
	return s.sel.Match(n)
}

// Parse parses an HTML document or fragment
func Parse(doc string) (*html.Node, error) {
	return html.Parse(strings.NewReader(doc))
}

// FindAll returns every descendant of root matching sel in document order
func FindAll(root *html.Node, sel Selector) []*html.Node {
	if root == nil || sel.IsEmpty() {
		return nil
	}
	return cascadia.QueryAll(root, sel.sel)
}

// FindFirst returns the first descendant of root matching sel
func FindFirst(root *html.Node, sel Selector) *html.Node {
	if root == nil || sel.IsEmpty() {
		return nil
	}
	return cascadia.Query(root, sel.sel)
}

// HasClass reports whether n carries class
func HasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// Text returns the whitespace-collapsed text content of n
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// TextOf parses doc and returns the text of the first element matching sel
func TextOf(doc, sel string) (string, bool) {
	if doc == "" {
		return "", false
	}
	selector, err := ParseSelector(sel)
	if err != nil {
		return "", false
	}

	root, err := Parse(doc)
	if err != nil {
		return "", false
	}

	n := FindFirst(root, selector)
	if n == nil {
		return "", false
	}
	text := Text(n)
	return text, text != ""
}
