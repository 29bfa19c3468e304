package llm

import "strings"

// StripCodeFence removes a fence wrapping the whole reply. Models sometimes
// return a markdown report inside ```markdown ... ``` even when asked not
// to, which would render as a literal code block.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return text
	}

	body := strings.TrimPrefix(trimmed, "```")
	body = strings.TrimSuffix(body, "```")

	// Skip a language identifier on the opening line.
	if idx := strings.Index(body, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(body[:idx])
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") {
			body = body[idx+1:]
		}
	}
	// An inner fence means the reply contains code blocks rather than being one.
	if strings.Contains(body, "```") {
		return text
	}
	return strings.TrimSpace(body)
}
