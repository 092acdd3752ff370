// Package fetcher retrieves page content for candidate sources. A failed
// fetch is data, not an error: the pipeline records the failure per source
// and moves on, so Fetch returns a Result with Err set instead of failing.
package fetcher

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/lotleads/enrich-cli/internal/config"
	"github.com/lotleads/enrich-cli/pkg/firecrawl"
	"github.com/lotleads/enrich-cli/pkg/jina"
)

// Result is the outcome of fetching one URL.
type Result struct {
	URL     string
	Title   string
	Content string // markdown
	Tokens  int    // provider-reported token count, 0 when unknown
	Cached  bool   // served from the page cache
	Err     error  // non-nil when the fetch failed
}

// Succeeded reports whether usable content came back.
func (r Result) Succeeded() bool {
	return r.Err == nil && r.Content != ""
}

// PageFetcher fetches a single page as markdown.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) Result
}

// New constructs the configured fetch backend with rate limiting applied.
func New(cfg *config.Config, jc jina.Client, fc firecrawl.Client) (PageFetcher, error) {
	rps := cfg.Fetcher.RatePerSecond
	if rps <= 0 {
		rps = 2
	}
	limiter := rate.NewLimiter(rate.Limit(rps), rps)

	switch cfg.Fetcher.Backend {
	case "jina":
		return &jinaFetcher{client: jc, limiter: limiter}, nil
	case "firecrawl":
		return &firecrawlFetcher{
			client:    fc,
			limiter:   limiter,
			timeoutMS: int(cfg.Enrich.FetchTimeout().Milliseconds()),
		}, nil
	default:
		return nil, eris.Errorf("fetcher: unknown backend %q", cfg.Fetcher.Backend)
	}
}
