// Package search provides a SerpAPI web search client whose failures are
// carried in the response value instead of being returned as errors.
package search

import (
	"context"
	"net/url"
	"strings"
)

// Searcher is what the discoverer and the product lookup depend on.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) Response
}

// Request is a single search call.
type Request struct {
	Query  string
	Engine string // empty means the configured engine
	Limit  int    // zero or negative means the configured limit
}

// Response is the outcome of a search. An empty OrganicResults is a normal
// outcome; Err says why, when the emptiness was caused by a failure.
type Response struct {
	OrganicResults []Result `json:"organic_results"`
	Err            error    `json:"-"`
}

// Empty reports whether the response has no organic results.
func (r Response) Empty() bool {
	return len(r.OrganicResults) == 0
}

// Failed reports whether the search failed.
func (r Response) Failed() bool {
	return r.Err != nil
}

// FirstSnippet returns the first non-empty snippet, or "".
func (r Response) FirstSnippet() string {
	for _, result := range r.OrganicResults {
		if s := strings.TrimSpace(result.Snippet); s != "" {
			return s
		}
	}
	return ""
}

// Result is one organic search result. Every field may be empty.
type Result struct {
	Position int    `json:"position,omitempty"`
	Title    string `json:"title,omitempty"`
	Link     string `json:"link,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
}

// ValidLink reports whether Link is an absolute http or https URL with a host.
func (r Result) ValidLink() bool {
	return r.Host() != ""
}

// Host returns the host (with port, if any) of Link when Link is a valid
// absolute http(s) URL, and "" otherwise.
func (r Result) Host() string {
	link := strings.TrimSpace(r.Link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.Host
}
