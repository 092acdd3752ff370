package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lotleads/enrich-cli/internal/config"
	"github.com/lotleads/enrich-cli/internal/model"
	"github.com/lotleads/enrich-cli/pkg/jina"
	"github.com/lotleads/enrich-cli/pkg/serper"
)

// Hit is one raw search result before classification.
type Hit struct {
	URL     string
	Title   string
	Snippet string
}

// Searcher discovers candidate URLs for a record. Implementations return
// hits in engine ranking order; queries that fail are logged and skipped so
// one bad query never sinks the whole record.
type Searcher interface {
	Discover(ctx context.Context, record model.Record) ([]Hit, error)
	// Queries reports how many billable queries Discover issues per record.
	Queries() int
}

// NewSearcher builds the configured search backend.
func NewSearcher(cfg *config.Config, sc serper.Client, jc jina.Client) (Searcher, error) {
	switch cfg.Search.Backend {
	case "serper":
		return &serperSearcher{client: sc, country: cfg.Serper.Country, num: cfg.Serper.MaxHits}, nil
	case "jina":
		return &jinaSearcher{client: jc}, nil
	default:
		return nil, eris.Errorf("searcher: unknown backend %q", cfg.Search.Backend)
	}
}

// buildQueries returns the search queries issued per record: general
// discovery, owner discovery, the state business registry, and reviews.
func buildQueries(record model.Record) []string {
	company := strings.TrimSpace(record.CompanyName)
	loc := record.Location()

	base := company
	if loc != "" {
		base = fmt.Sprintf("%q %s", company, loc)
	} else {
		base = fmt.Sprintf("%q", company)
	}

	queries := []string{
		base,
		base + " owner president founder",
	}

	if strings.EqualFold(record.State, "FL") {
		queries = append(queries, fmt.Sprintf("%q sunbiz", company))
	} else {
		queries = append(queries, fmt.Sprintf("%q %s secretary of state business registration", company, record.State))
	}

	queries = append(queries, base+" reviews")
	return queries
}

type serperSearcher struct {
	client  serper.Client
	country string
	num     int
}

// Queries includes the final places lookup.
func (s *serperSearcher) Queries() int { return len(buildQueries(model.Record{})) + 1 }

func (s *serperSearcher) Discover(ctx context.Context, record model.Record) ([]Hit, error) {
	log := zap.L().With(zap.String("company", record.CompanyName))

	var hits []Hit
	seen := make(map[string]bool)
	for _, q := range buildQueries(record) {
		resp, err := s.client.Search(ctx, serper.SearchRequest{
			Query:    q,
			Num:      s.num,
			Location: record.Location(),
			Country:  s.country,
		})
		if err != nil {
			if ctx.Err() != nil {
				return hits, eris.Wrap(err, "searcher: serper")
			}
			log.Warn("searcher: query failed", zap.String("query", q), zap.Error(err))
			continue
		}
		for _, r := range resp.Organic {
			if r.Link == "" || seen[r.Link] {
				continue
			}
			seen[r.Link] = true
			hits = append(hits, Hit{URL: r.Link, Title: r.Title, Snippet: r.Snippet})
		}
		if kg := resp.KnowledgeGraph; kg != nil && kg.Website != "" && !seen[kg.Website] {
			seen[kg.Website] = true
			hits = append(hits, Hit{URL: kg.Website, Title: kg.Title, Snippet: kg.Description})
		}
	}

	// A places lookup catches the business listing when organic results
	// miss the official website entirely.
	places, err := s.client.Places(ctx, serper.SearchRequest{
		Query:    strings.TrimSpace(record.CompanyName + " " + record.Location()),
		Location: record.Location(),
		Country:  s.country,
	})
	if err != nil {
		if ctx.Err() != nil {
			return hits, eris.Wrap(err, "searcher: serper places")
		}
		log.Warn("searcher: places lookup failed", zap.Error(err))
	} else {
		for _, p := range places.Places {
			if p.Website == "" || seen[p.Website] {
				continue
			}
			seen[p.Website] = true
			hits = append(hits, Hit{URL: p.Website, Title: p.Title, Snippet: p.Address})
		}
	}

	if len(hits) == 0 {
		log.Info("searcher: no results for record")
	}
	return hits, nil
}

type jinaSearcher struct {
	client jina.Client
}

func (s *jinaSearcher) Queries() int { return len(buildQueries(model.Record{})) }

func (s *jinaSearcher) Discover(ctx context.Context, record model.Record) ([]Hit, error) {
	log := zap.L().With(zap.String("company", record.CompanyName))

	var hits []Hit
	seen := make(map[string]bool)
	for _, q := range buildQueries(record) {
		resp, err := s.client.Search(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return hits, eris.Wrap(err, "searcher: jina")
			}
			log.Warn("searcher: query failed", zap.String("query", q), zap.Error(err))
			continue
		}
		for _, r := range resp.Data {
			if r.URL == "" || seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			hits = append(hits, Hit{URL: r.URL, Title: r.Title, Snippet: r.Description})
		}
	}
	return hits, nil
}
