package fetch

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/competitor-discovery/internal/config"
	"github.com/jonathan/competitor-discovery/internal/metrics"
)

// Page is the soft-fail outcome of fetching one page. HTML is empty whenever Err is set.
type Page struct {
	URL        string
	HTML       string
	StatusCode int
	Err        error
}

// OK reports whether content was retrieved.
func (p Page) OK() bool {
	return p.Err == nil && p.HTML != ""
}

// Fetcher retrieves pages and never returns errors to its caller.
type Fetcher struct {
	opts *Options
	log  logrus.FieldLogger
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// WithClient makes the Fetcher use hc for every request.
func WithClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.opts.Client = hc
	}
}

// NewFetcher creates a Fetcher from configuration.
func NewFetcher(cfg config.FetchConfig, log logrus.FieldLogger, opts ...FetcherOption) *Fetcher {
	o := DefaultOptions()
	if cfg.Timeout > 0 {
		o.Timeout = cfg.Timeout
	}
	if cfg.UserAgent != "" {
		o.UserAgent = cfg.UserAgent
	}
	f := &Fetcher{opts: o, log: log}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves urlStr. Network errors, timeouts and non-200 statuses are
// logged and returned in Page.Err with no HTML.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) Page {
	result, err := URL(ctx, urlStr, f.opts)
	metrics.RecordFetch(err)
	if err != nil {
		f.log.WithField("url", urlStr).WithError(err).Info("fetch failed")
		page := Page{URL: urlStr, Err: err}
		if result != nil {
			page.StatusCode = result.StatusCode
		}
		return page
	}
	return Page{URL: urlStr, HTML: result.HTML, StatusCode: result.StatusCode}
}
