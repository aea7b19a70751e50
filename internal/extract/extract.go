package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/admitscan/internal/rules"
)

const (
	// DefaultMaxSnippets caps the snippets taken from one page when the caller
	// passes a non-positive limit.
	DefaultMaxSnippets = 20
	// MaxContextChars bounds the sibling text appended after a selected block.
	MaxContextChars = 1000
)

var blockTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "li": true, "td": true, "th": true, "dt": true, "dd": true,
}

// Snippets scans the block elements of an HTML page in document order and
// returns the texts that mention an admission keyword or match a requirement
// rule. A selected block may pull in its next sibling as context.
func Snippets(input string, max int) []string {
	if max <= 0 {
		max = DefaultMaxSnippets
	}
	if strings.TrimSpace(input) == "" {
		return nil
	}
	root, err := html.Parse(strings.NewReader(input))
	if err != nil || root == nil {
		return nil
	}
	s := &scanner{max: max, seen: map[string]struct{}{}}
	s.walk(root)
	return s.out
}

type scanner struct {
	max  int
	out  []string
	seen map[string]struct{}
}

func (s *scanner) full() bool { return len(s.out) >= s.max }

func (s *scanner) add(text string) {
	if text == "" || s.full() {
		return
	}
	if _, ok := s.seen[text]; ok {
		return
	}
	s.seen[text] = struct{}{}
	s.out = append(s.out, text)
}

func (s *scanner) walk(n *html.Node) {
	if s.full() {
		return
	}
	if n.Type == html.ElementNode {
		if skipped(n) {
			return
		}
		if blockTags[strings.ToLower(n.Data)] {
			s.visit(n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.walk(c)
		if s.full() {
			return
		}
	}
}

func (s *scanner) visit(n *html.Node) {
	text := visibleText(n)
	if text == "" || !rules.Relevant(text) {
		return
	}
	s.add(text)
	if sib := nextElement(n); sib != nil && !skipped(sib) {
		if ctx := visibleText(sib); len(ctx) < MaxContextChars {
			s.add(ctx)
		}
	}
}

func nextElement(n *html.Node) *html.Node {
	for c := n.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func skipped(n *html.Node) bool {
	switch strings.ToLower(n.Data) {
	case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "template":
		return true
	}
	return isBoilerplateContainer(n)
}

// visibleText flattens the text below n, skipping hidden containers, and
// collapses whitespace runs to single spaces.
func visibleText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		switch cur.Type {
		case html.TextNode:
			b.WriteString(cur.Data)
			return
		case html.ElementNode:
			if cur != n && skipped(cur) {
				return
			}
			switch strings.ToLower(cur.Data) {
			case "br", "hr":
				b.WriteByte(' ')
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if cur.Type == html.ElementNode && cur != n && blockTags[strings.ToLower(cur.Data)] {
			b.WriteByte(' ')
		}
	}
	walk(n)
	return collapseSpaces(strings.TrimSpace(b.String()))
}

// isBoilerplateContainer returns true if the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		if containsAny(strings.ToLower(attr.Val), []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\u00a0' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}
