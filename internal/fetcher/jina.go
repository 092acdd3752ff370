package fetcher

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lotleads/enrich-cli/pkg/jina"
)

// jinaFetcher fetches pages through the Jina AI Reader.
type jinaFetcher struct {
	client  jina.Client
	limiter *rate.Limiter
}

func (f *jinaFetcher) Fetch(ctx context.Context, url string) Result {
	if err := f.limiter.Wait(ctx); err != nil {
		return Result{URL: url, Err: err}
	}

	resp, err := f.client.Read(ctx, url)
	if err != nil {
		zap.L().Debug("fetcher: jina read failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return Result{URL: url, Err: err}
	}

	return Result{
		URL:     url,
		Title:   resp.Data.Title,
		Content: resp.Data.Content,
		Tokens:  resp.Data.Usage.Tokens,
	}
}
