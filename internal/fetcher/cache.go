package fetcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lotleads/enrich-cli/internal/store"
)

// cachedFetcher consults the store's page cache before hitting the backend.
// Cache write failures are logged and ignored; the fetch already succeeded.
type cachedFetcher struct {
	inner PageFetcher
	store store.Store
	ttl   time.Duration
}

// WithCache wraps a fetcher with store-backed page caching.
func WithCache(inner PageFetcher, st store.Store, ttl time.Duration) PageFetcher {
	return &cachedFetcher{inner: inner, store: st, ttl: ttl}
}

func (f *cachedFetcher) Fetch(ctx context.Context, url string) Result {
	page, err := f.store.GetCachedPage(ctx, url)
	if err != nil {
		zap.L().Warn("fetcher: page cache lookup failed",
			zap.String("url", url),
			zap.Error(err),
		)
	} else if page != nil {
		return Result{
			URL:     url,
			Title:   page.Title,
			Content: page.Content,
			Cached:  true,
		}
	}

	res := f.inner.Fetch(ctx, url)
	if res.Succeeded() {
		if err := f.store.SetCachedPage(ctx, url, res.Title, res.Content, f.ttl); err != nil {
			zap.L().Warn("fetcher: page cache write failed",
				zap.String("url", url),
				zap.Error(err),
			)
		}
	}
	return res
}
