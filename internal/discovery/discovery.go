// Package discovery assembles evidence of recent competitor updates from
// search snippets and, when those run short, from list items on guessed
// changelog pages.
package discovery

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/competitor-discovery/internal/config"
	"github.com/jonathan/competitor-discovery/internal/fetch"
	"github.com/jonathan/competitor-discovery/internal/metrics"
	"github.com/jonathan/competitor-discovery/internal/search"
	"github.com/jonathan/competitor-discovery/internal/types"
)

// PageFetcher retrieves a page without failing; see fetch.Fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) fetch.Page
}

// Discoverer finds update evidence for named competitors.
type Discoverer struct {
	paths    []string
	parallel bool
	dedupe   bool
	searcher search.Searcher
	fetcher  PageFetcher
	log      logrus.FieldLogger
}

// New creates a Discoverer. An empty cfg.Paths uses config.DefaultChangelogPaths.
func New(cfg config.DiscoveryConfig, searcher search.Searcher, fetcher PageFetcher, log logrus.FieldLogger) *Discoverer {
	paths := cfg.Paths
	if len(paths) == 0 {
		paths = config.DefaultChangelogPaths
	}
	return &Discoverer{
		paths:    paths,
		parallel: cfg.Parallel,
		dedupe:   cfg.Dedupe,
		searcher: searcher,
		fetcher:  fetcher,
		log:      log,
	}
}

// Discover returns at most maxItems evidence items for name, in discovery order.
//
// Search snippets for "{name} changelog" come first. Only if they fall short
// is the competitor's domain guessed from a search for the bare name, and the
// changelog paths probed on it in order. Every failure along the way is
// absorbed: the worst outcome is an empty slice.
func (d *Discoverer) Discover(ctx context.Context, name string, maxItems int) []types.UpdateEvidence {
	if maxItems <= 0 {
		return []types.UpdateEvidence{}
	}

	log := d.log.WithField("competitor", name)
	acc := newAccumulator(maxItems, d.dedupe)

	resp := d.searcher.Search(ctx, name+" changelog", 0)
	if resp.Failed() {
		log.WithError(resp.Err).Warn("changelog search failed")
	}
	for _, result := range resp.OrganicResults {
		snippet := strings.TrimSpace(result.Snippet)
		if snippet == "" {
			continue
		}
		if acc.add(types.UpdateEvidence{Source: result.Link, Text: snippet}) {
			break
		}
	}

	if acc.full() {
		log.WithField("items", acc.count()).Debug("search snippets were sufficient")
		return d.finish(acc)
	}

	domain := d.guessDomain(ctx, name)
	if domain == "" {
		log.Debug("no domain could be guessed")
		return d.finish(acc)
	}
	log = log.WithField("domain", domain)

	if d.parallel {
		d.probeParallel(ctx, domain, acc)
	} else {
		d.probeSequential(ctx, domain, acc)
	}

	log.WithField("items", acc.count()).Debug("discovery finished")
	return d.finish(acc)
}

// guessDomain returns the host of the first search result for name whose link
// is an absolute http(s) URL.
func (d *Discoverer) guessDomain(ctx context.Context, name string) string {
	resp := d.searcher.Search(ctx, name, 0)
	for _, result := range resp.OrganicResults {
		if result.ValidLink() {
			return result.Host()
		}
	}
	return ""
}

// probeSequential fetches each path in order and stops as soon as acc is full.
func (d *Discoverer) probeSequential(ctx context.Context, domain string, acc *accumulator) {
	for _, path := range d.paths {
		if acc.full() || ctx.Err() != nil {
			return
		}
		pageURL := changelogURL(domain, path)
		page := d.fetcher.Fetch(ctx, pageURL)
		if acc.addItems(pageURL, d.items(page, acc.max)) {
			return
		}
	}
}

// probeParallel fetches every path at once, then merges in path order so the
// result matches probeSequential.
func (d *Discoverer) probeParallel(ctx context.Context, domain string, acc *accumulator) {
	found := make([][]string, len(d.paths))
	urls := make([]string, len(d.paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range d.paths {
		urls[i] = changelogURL(domain, path)
		g.Go(func() error {
			found[i] = d.items(d.fetcher.Fetch(gctx, urls[i]), acc.max)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		d.log.WithError(err).WithField("domain", domain).Debug("changelog probing interrupted")
		return
	}

	for i := range urls {
		if acc.addItems(urls[i], found[i]) {
			return
		}
	}
}

// items extracts list items from a fetched page; failed pages contribute nothing.
func (d *Discoverer) items(page fetch.Page, max int) []string {
	if !page.OK() {
		return nil
	}
	return fetch.ListItems(page.HTML, max)
}

func (d *Discoverer) finish(acc *accumulator) []types.UpdateEvidence {
	metrics.RecordDiscovery(acc.count())
	return acc.items
}

func changelogURL(domain, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "https://" + domain + path
}
