package fetcher

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lotleads/enrich-cli/pkg/firecrawl"
)

// firecrawlFetcher fetches pages through the Firecrawl scrape API.
type firecrawlFetcher struct {
	client    firecrawl.Client
	limiter   *rate.Limiter
	timeoutMS int
}

func (f *firecrawlFetcher) Fetch(ctx context.Context, url string) Result {
	if err := f.limiter.Wait(ctx); err != nil {
		return Result{URL: url, Err: err}
	}

	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
		Timeout:         f.timeoutMS,
	})
	if err != nil {
		zap.L().Debug("fetcher: firecrawl scrape failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return Result{URL: url, Err: err}
	}
	if !resp.Success {
		return Result{URL: url, Err: eris.Errorf("fetcher: scrape of %s unsuccessful", url)}
	}

	return Result{
		URL:     url,
		Title:   resp.Data.Metadata.Title,
		Content: resp.Data.Markdown,
	}
}
