package rendering

import (
	"regexp"
	"strings"
)

// markdownLink matches [label](http...) with no nested brackets.
var markdownLink = regexp.MustCompile(`\[([^\[\]]+)\]\((https?://[^)\s]+)\)`)

// StripInlineMarkdown removes inline markup the PDF cannot show: strong and
// code markers disappear and links become "label (url)". Block structure
// (headings, bullets, tables) is left alone.
func StripInlineMarkdown(text string) string {
	if text == "" {
		return ""
	}

	text = markdownLink.ReplaceAllString(text, "$1 ($2)")

	var result strings.Builder
	result.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '`':
			// code spans render as plain text
		case '*', '_':
			if i+1 < len(runes) && runes[i+1] == r {
				i++ // drop "**" and "__"
				continue
			}
			result.WriteRune(r)
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// headingText returns the text of a markdown ATX heading ("## Title") and
// whether block is one.
func headingText(block string) (string, bool) {
	if !strings.HasPrefix(block, "#") || strings.Contains(block, "\n") {
		return "", false
	}
	text := strings.TrimLeft(block, "#")
	if level := len(block) - len(text); level > 6 {
		return "", false
	}
	if text != "" && text[0] != ' ' && text[0] != '\t' {
		return "", false // "#hashtag" is not a heading
	}
	return strings.TrimSpace(text), true
}
