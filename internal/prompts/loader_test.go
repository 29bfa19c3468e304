package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	clearCache()

	prompt, err := Get("analysis.json", "system")
	require.NoError(t, err)
	assert.Equal(t, "You are an expert SaaS product analyst.", prompt)
}

func TestGet_InvalidFile(t *testing.T) {
	clearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	clearCache()

	_, err := Get("tracking.json", "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	clearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", Format(template, data))
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"

	assert.Equal(t, template, Format(template, nil)) // Placeholder remains
}

func TestFormat_ValuesAreNotReexpanded(t *testing.T) {
	got := Format("{{.A}} and {{.B}}", map[string]string{"A": "{{.B}}", "B": "bee"})
	assert.Equal(t, "{{.B}} and bee", got)
}

func TestRender_AnalysisPrompt(t *testing.T) {
	clearCache()

	prompt, err := Render("analysis.json", "analyze-competitors", map[string]string{
		"Product":     "Notion",
		"Description": "An all-in-one workspace.",
		"Aspects":     "Pricing, Features",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "Product: Notion\nDescription: An all-in-one workspace.\nAspects to compare: Pricing, Features")
	assert.Contains(t, prompt, "1. Identify 6 direct competitors.")
	assert.Contains(t, prompt, "2. Compare all 7 products on these aspects: Pricing, Features.")
	assert.Contains(t, prompt, "6. Improvements needed for the product.")
	assert.NotContains(t, prompt, "{{.")
}

func TestMustRender_TrackingTemplates(t *testing.T) {
	clearCache()

	line := MustRender("tracking.json", "update-line", map[string]string{"Text": "Added SSO", "Source": "https://acme.io/changelog"})
	assert.Equal(t, "- Added SSO (Source: https://acme.io/changelog)", line)

	none := MustRender("tracking.json", "no-updates", map[string]string{"Name": "Acme"})
	assert.Equal(t, "No recent updates found for **Acme**.", none)
}

func TestList(t *testing.T) {
	clearCache()

	keys, err := list("tracking.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"no-updates", "section", "summarize-updates", "update-line"}, keys)
}

func TestCaching(t *testing.T) {
	clearCache()

	// First call loads from file
	prompt1, err := Get("analysis.json", "system")
	require.NoError(t, err)

	// Second call should use cache
	prompt2, err := Get("analysis.json", "system")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
