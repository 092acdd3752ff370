package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lotleads/enrich-cli/internal/fetcher"
	"github.com/lotleads/enrich-cli/internal/pipeline"
	"github.com/lotleads/enrich-cli/internal/store"
	anthropicpkg "github.com/lotleads/enrich-cli/pkg/anthropic"
	"github.com/lotleads/enrich-cli/pkg/firecrawl"
	"github.com/lotleads/enrich-cli/pkg/jina"
	"github.com/lotleads/enrich-cli/pkg/serper"
)

// pipelineEnv holds the initialized store, clients, and pipeline needed by
// the run/enrich/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, API clients, and the pipeline. With
// --offline the live clients are replaced by canned stubs so the full flow
// can run without credentials or network. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if !offline {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	if n, err := st.DeleteExpiredPages(ctx); err != nil {
		zap.L().Warn("page cache sweep failed", zap.Error(err))
	} else if n > 0 {
		zap.L().Info("page cache swept", zap.Int("expired_pages", n))
	}

	var (
		jinaClient      jina.Client
		serperClient    serper.Client
		firecrawlClient firecrawl.Client
		aiClient        anthropicpkg.Client
	)

	if offline {
		zap.L().Info("offline mode: using stub providers")
		jinaClient = &pipeline.StubJinaClient{}
		serperClient = &pipeline.StubSerperClient{}
		firecrawlClient = &pipeline.StubFirecrawlClient{}
		aiClient = &pipeline.StubAnthropicClient{}
	} else {
		jinaOpts := []jina.Option{jina.WithBaseURL(cfg.Jina.BaseURL)}
		if cfg.Jina.SearchBaseURL != "" {
			jinaOpts = append(jinaOpts, jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL))
		}
		jinaClient = jina.NewClient(cfg.Jina.Key, jinaOpts...)
		serperClient = serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
		firecrawlClient = firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		aiClient = anthropicpkg.NewClient(cfg.Anthropic.Key)
	}

	if cfg.Anthropic.CacheSize > 0 {
		cache := anthropicpkg.NewResponseCache(cfg.Anthropic.CacheSize, time.Duration(cfg.Anthropic.CacheTTLMins)*time.Minute)
		aiClient = anthropicpkg.WithCache(aiClient, cache)
	}

	pageFetcher, err := fetcher.New(cfg, jinaClient, firecrawlClient)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if cfg.Fetcher.CacheTTLHours > 0 {
		pageFetcher = fetcher.WithCache(pageFetcher, st, time.Duration(cfg.Fetcher.CacheTTLHours)*time.Hour)
	}

	searcher, err := pipeline.NewSearcher(cfg, serperClient, jinaClient)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(cfg, st, searcher, pageFetcher, aiClient),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "enrich.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
