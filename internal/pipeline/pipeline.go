// Package pipeline implements the multi-source evidence pipeline: discover
// candidate URLs, classify and select them under a fetch budget, fetch and
// mine facts, merge them into one profile, assemble a bounded LLM context,
// and generate personalized outreach copy.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lotleads/enrich-cli/internal/config"
	"github.com/lotleads/enrich-cli/internal/cost"
	"github.com/lotleads/enrich-cli/internal/fetcher"
	"github.com/lotleads/enrich-cli/internal/model"
	"github.com/lotleads/enrich-cli/internal/store"
	"github.com/lotleads/enrich-cli/pkg/anthropic"
)

// Pipeline orchestrates enrichment per record. One Pipeline serves many
// concurrent records; all per-record state lives in the Run call.
type Pipeline struct {
	cfg        *config.Config
	store      store.Store
	searcher   Searcher
	fetcher    fetcher.PageFetcher
	classifier *Classifier
	extractor  *Extractor
	generator  *Generator
	costCalc   *cost.Calculator
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	searcher Searcher,
	pageFetcher fetcher.PageFetcher,
	aiClient anthropic.Client,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		store:      st,
		searcher:   searcher,
		fetcher:    pageFetcher,
		classifier: NewClassifier(cfg.Enrich.CampaignFocus),
		extractor:  NewExtractor(),
		generator:  NewGenerator(aiClient, cfg),
		costCalc:   cost.NewCalculator(cost.DefaultRates()),
	}
}

// Run enriches a single record. It always returns a result, even in total
// failure; the error return is reserved for context cancellation.
func (p *Pipeline) Run(ctx context.Context, record model.Record) (*model.EnrichmentResult, error) {
	log := zap.L().With(zap.String("record_id", record.ID), zap.String("company", record.CompanyName))
	log.Info("pipeline: starting enrichment")

	result := &model.EnrichmentResult{
		RecordID:  record.ID,
		Record:    record,
		Status:    model.RecordStatusPending,
		StartedAt: time.Now(),
	}

	setStatus := func(status model.RecordStatus) {
		result.Status = status
		log.Debug("pipeline: status", zap.String("status", string(status)))
	}

	trackPhase := func(name string, fn func() error) error {
		start := time.Now()
		err := fn()
		if err != nil {
			log.Warn("pipeline: phase failed",
				zap.String("phase", name),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
		} else {
			log.Debug("pipeline: phase complete",
				zap.String("phase", name),
				zap.Duration("duration", time.Since(start)),
			)
		}
		return err
	}

	// ===== Search =====
	var candidates []model.CandidateSource
	searchErr := trackPhase("search", func() error {
		hits, err := p.searcher.Discover(ctx, record)
		for i, h := range hits {
			candidates = append(candidates, p.classifier.Classify(h.URL, h.Title, h.Snippet, record.CompanyName, i))
		}
		return err
	})
	if searchErr != nil && ctx.Err() != nil {
		return p.finish(ctx, result, searchErr)
	}
	result.SourcesFound = len(candidates)
	p.addSearchCost(result)
	setStatus(model.RecordStatusSearched)

	// ===== Select =====
	selected := SelectSources(candidates, p.cfg.Enrich.MaxFetchPerRecord)
	result.SourcesSelected = len(selected)
	setStatus(model.RecordStatusSelected)

	// ===== Fetch fan-out with a hard join =====
	fetched, fetchCost := p.fetchAll(ctx, selected)
	for _, f := range fetched {
		if f.Succeeded {
			result.SourcesFetched++
		}
	}
	result.CostUSD += fetchCost
	setStatus(model.RecordStatusFetched)

	// ===== Merge =====
	profile := Merge(fetched)
	result.Profile = profile
	setStatus(model.RecordStatusMerged)

	// ===== Context =====
	var pctx model.PrioritizedContext
	_ = trackPhase("context", func() error {
		pctx = BuildContext(record, profile, fetched, p.cfg.Enrich.MaxContextChars)
		return nil
	})
	result.ContextChars = pctx.TotalChars
	setStatus(model.RecordStatusContextualized)

	// ===== Generate =====
	// With nothing fetched there is no evidence to personalize from; the
	// template path is used directly instead of burning an LLM call.
	if result.SourcesFetched == 0 {
		result.Content = p.generator.Fallback(record, profile)
		setStatus(model.RecordStatusGenerated)
		return p.finish(ctx, result, nil)
	}

	genErr := trackPhase("generate", func() error {
		genCtx, cancel := context.WithTimeout(ctx, p.cfg.Enrich.LLMTimeout())
		defer cancel()

		content, usage, err := p.generator.Generate(genCtx, record, pctx)
		result.TokensUsed += usage.Total()
		result.CostUSD += p.costCalc.Claude(
			p.cfg.Anthropic.Model,
			int(usage.InputTokens), int(usage.OutputTokens),
			int(usage.CacheCreationInputTokens), int(usage.CacheReadInputTokens),
		)
		if err != nil {
			return err
		}
		result.Content = content
		return nil
	})
	if genErr != nil {
		// The template path keeps the record alive; the error is recorded
		// for the output dataset, not propagated.
		result.Content = p.generator.Fallback(record, profile)
		result.Error = genErr.Error()
	}
	setStatus(model.RecordStatusGenerated)

	return p.finish(ctx, result, nil)
}

func (p *Pipeline) finish(ctx context.Context, result *model.EnrichmentResult, runErr error) (*model.EnrichmentResult, error) {
	result.Confidence = Confidence(result.Profile, result.SourcesFetched, result.Content)
	result.FinishedAt = time.Now()

	if runErr != nil {
		result.Status = model.RecordStatusFailed
		result.Error = runErr.Error()
	} else {
		result.Status = model.RecordStatusDone
	}

	// Persist with a fresh context so cancellation doesn't lose the result.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := p.store.SaveResult(saveCtx, result); err != nil {
		zap.L().Warn("pipeline: failed to save result",
			zap.String("record_id", result.RecordID), zap.Error(err))
	}

	zap.L().Info("pipeline: record complete",
		zap.String("record_id", result.RecordID),
		zap.String("status", string(result.Status)),
		zap.Float64("confidence", result.Confidence),
		zap.Int("sources_fetched", result.SourcesFetched),
		zap.Float64("cost_usd", result.CostUSD),
	)
	return result, runErr
}

// fetchAll fetches every selected source with bounded parallelism and a
// per-fetch timeout. It never fails: a timed-out or errored fetch becomes a
// FetchedContent with Succeeded=false. The returned slice is indexed to
// match the selection order, making downstream merge input deterministic.
// The second return value is the fetch spend in USD.
func (p *Pipeline) fetchAll(ctx context.Context, selected []model.CandidateSource) ([]model.FetchedContent, float64) {
	fetched := make([]model.FetchedContent, len(selected))
	results := make([]fetcher.Result, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	parallel := p.cfg.Enrich.FetchParallelism
	if parallel <= 0 {
		parallel = 1
	}
	g.SetLimit(parallel)

	for i, src := range selected {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, p.cfg.Enrich.FetchTimeout())
			defer cancel()

			res := p.fetcher.Fetch(fetchCtx, src.URL)
			results[i] = res

			fc := model.FetchedContent{Source: src}
			if res.Succeeded() {
				fc.Succeeded = true
				fc.RawText = res.Content
				fc.Facts = p.extractor.Extract(src, res.Content)
			} else if res.Err != nil {
				fc.Error = res.Err.Error()
			}
			fetched[i] = fc
			return nil
		})
	}
	// Hard join: merge never starts before every fetch settled.
	_ = g.Wait()

	var spend float64
	for _, res := range results {
		if !res.Succeeded() || res.Cached {
			continue
		}
		switch p.cfg.Fetcher.Backend {
		case "firecrawl":
			spend += p.costCalc.FirecrawlScrape()
		default:
			spend += p.costCalc.Jina(res.Tokens)
		}
	}
	return fetched, spend
}

func (p *Pipeline) addSearchCost(result *model.EnrichmentResult) {
	if p.cfg.Search.Backend == "serper" {
		result.CostUSD += p.costCalc.SerperQuery() * float64(p.searcher.Queries())
	}
}

// RunBatch enriches records with bounded cross-record concurrency. Results
// are returned in input order regardless of completion order. Processing
// stops early only on context cancellation; per-record failures are carried
// in the corresponding result.
func (p *Pipeline) RunBatch(ctx context.Context, records []model.Record) ([]*model.EnrichmentResult, error) {
	results := make([]*model.EnrichmentResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	limit := p.cfg.Enrich.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, rec := range records {
		g.Go(func() error {
			res, err := p.Run(gctx, rec)
			results[i] = res
			if err != nil && gctx.Err() != nil {
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	return results, err
}
