package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/competitor-discovery/internal/config"
	"github.com/jonathan/competitor-discovery/internal/observability"
)

func testConfig(baseURL string) config.SearchConfig {
	return config.SearchConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Engine:  "google",
		Limit:   10,
		Timeout: 5 * time.Second,
	}
}

func TestSearch_Success(t *testing.T) {
	seen := make(chan *url.URL, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.URL
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"search_metadata": {"status": "Success"},
			"organic_results": [
				{"position": 1, "title": "Linear Changelog", "link": "https://linear.app/changelog", "snippet": "Project updates are here"},
				{"position": 2, "title": "Linear", "link": "https://linear.app"}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), observability.NopLogger())
	resp := client.Search(context.Background(), "Linear changelog", 0)

	require.NoError(t, resp.Err)
	require.Len(t, resp.OrganicResults, 2)
	assert.Equal(t, "https://linear.app/changelog", resp.OrganicResults[0].Link)
	assert.Equal(t, "Project updates are here", resp.OrganicResults[0].Snippet)
	assert.Empty(t, resp.OrganicResults[1].Snippet)
	assert.Equal(t, "Project updates are here", resp.FirstSnippet())

	got := <-seen
	assert.Equal(t, "/search.json", got.Path)
	assert.Equal(t, "google", got.Query().Get("engine"))
	assert.Equal(t, "Linear changelog", got.Query().Get("q"))
	assert.Equal(t, "10", got.Query().Get("num"))
	assert.Equal(t, "test-key", got.Query().Get("api_key"))
}

func TestDo_EngineAndLimitOverride(t *testing.T) {
	seen := make(chan *url.URL, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.URL
		_, _ = w.Write([]byte(`{"organic_results": []}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), observability.NopLogger())
	resp := client.Do(context.Background(), Request{Query: "Acme", Engine: "bing", Limit: 3})

	assert.NoError(t, resp.Err)
	assert.True(t, resp.Empty())
	got := <-seen
	assert.Equal(t, "bing", got.Query().Get("engine"))
	assert.Equal(t, "3", got.Query().Get("num"))
}

func TestSearch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "Invalid API key."}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), observability.NopLogger())
	resp := client.Search(context.Background(), "Acme", 0)

	assert.True(t, resp.Empty())
	require.Error(t, resp.Err)

	var searchErr *Error
	require.ErrorAs(t, resp.Err, &searchErr)
	assert.Equal(t, http.StatusUnauthorized, searchErr.StatusCode)
	assert.Contains(t, resp.Err.Error(), "Invalid API key")
}

func TestSearch_UnexpectedShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"organic_results": "nope"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), observability.NopLogger())
	resp := client.Search(context.Background(), "Acme", 0)

	assert.True(t, resp.Empty())
	require.Error(t, resp.Err)
	assert.Contains(t, resp.Err.Error(), "unexpected response shape")
}

func TestSearch_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), observability.NopLogger())
	resp := client.Search(context.Background(), "Acme", 0)

	assert.True(t, resp.Empty())
	assert.Error(t, resp.Err)
}

func TestSearch_NoResultsIsNotAFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": "Google hasn't returned any results for this query."}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), observability.NopLogger())
	resp := client.Search(context.Background(), "zzzz-no-such-product", 0)

	assert.True(t, resp.Empty())
	assert.False(t, resp.Failed())
}

func TestSearch_MissingAPIKey(t *testing.T) {
	calls := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		calls <- struct{}{}
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.APIKey = ""
	resp := NewClient(cfg, observability.NopLogger()).Search(context.Background(), "Acme", 0)

	assert.Len(t, calls, 0)
	assert.True(t, resp.Empty())
	assert.True(t, errors.Is(resp.Err, ErrMissingAPIKey))
}

func TestSearch_TransportErrorRedactsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	closedURL := server.URL
	server.Close()

	resp := NewClient(testConfig(closedURL), observability.NopLogger()).Search(context.Background(), "Acme", 0)

	assert.True(t, resp.Empty())
	require.Error(t, resp.Err)
	assert.NotContains(t, resp.Err.Error(), "test-key")
	assert.Contains(t, resp.Err.Error(), "REDACTED")
}

func TestSearch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 20 * time.Millisecond
	resp := NewClient(cfg, observability.NopLogger()).Search(context.Background(), "Acme", 0)

	assert.True(t, resp.Empty())
	assert.Error(t, resp.Err)
}

func TestResult_Host(t *testing.T) {
	tests := []struct {
		link string
		host string
	}{
		{"https://linear.app/changelog", "linear.app"},
		{"http://acme.io", "acme.io"},
		{"http://localhost:8080/x", "localhost:8080"},
		{"  https://padded.io/  ", "padded.io"},
		{"", ""},
		{"linear.app/changelog", ""},
		{"ftp://files.acme.io", ""},
		{"mailto:team@acme.io", ""},
		{"https://", ""},
		{"://bad", ""},
	}

	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			r := Result{Link: tt.link}
			assert.Equal(t, tt.host, r.Host())
			assert.Equal(t, tt.host != "", r.ValidLink())
		})
	}
}
