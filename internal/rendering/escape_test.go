package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripInlineMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "plain", input: "Nothing to strip here.", expected: "Nothing to strip here."},
		{name: "strong", input: "No recent updates found for **Acme**.", expected: "No recent updates found for Acme."},
		{name: "underscore strong", input: "__Pricing__ is higher", expected: "Pricing is higher"},
		{name: "single markers kept", input: "snake_case and 2*3", expected: "snake_case and 2*3"},
		{name: "bullet kept", input: "* item one\n- item two", expected: "* item one\n- item two"},
		{name: "code span", input: "run `make build` first", expected: "run make build first"},
		{name: "link", input: "See [the changelog](https://acme.io/changelog).", expected: "See the changelog (https://acme.io/changelog)."},
		{name: "non-http link kept", input: "[x](mailto:a@b.c)", expected: "[x](mailto:a@b.c)"},
		{name: "table row", input: "| **Notion** | $8 |", expected: "| Notion | $8 |"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripInlineMarkdown(tt.input))
		})
	}
}

func TestHeadingText(t *testing.T) {
	tests := []struct {
		input string
		text  string
		ok    bool
	}{
		{"## Acme", "Acme", true},
		{"# Report", "Report", true},
		{"###### Deep", "Deep", true},
		{"####### Too deep", "", false},
		{"#hashtag", "", false},
		{"#", "", true},
		{"## Title\nbody", "", false},
		{"Plain", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			text, ok := headingText(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.text, text)
		})
	}
}
