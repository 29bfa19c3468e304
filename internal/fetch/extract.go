package fetch

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jonathan/competitor-discovery/internal/types"
)

// invisible elements whose text never counts as list-item content
var invisible = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// ListItems returns the visible text of up to max <li> elements in document
// order. Text nodes are joined with single spaces and whitespace is
// collapsed; items of types.MinEvidenceTextLength runes or fewer are skipped.
// Nested lists yield both the outer and the inner item.
func ListItems(htmlContent string, max int) []string {
	if max <= 0 || strings.TrimSpace(htmlContent) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	var items []string
	doc.Find("li").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := visibleText(s.Get(0))
		if utf8.RuneCountInString(text) > types.MinEvidenceTextLength {
			items = append(items, text)
		}
		return len(items) < max
	})

	return items
}

// visibleText joins the non-empty text nodes under n with single spaces.
func visibleText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && invisible[node.Data] {
			return
		}
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
