package store

import (
	"context"
	"time"

	"github.com/lotleads/enrich-cli/internal/model"
)

// ResultFilter specifies criteria for listing enrichment results.
type ResultFilter struct {
	Status model.RecordStatus `json:"status,omitempty"`
	Limit  int                `json:"limit,omitempty"`
	Offset int                `json:"offset,omitempty"`
}

// Store defines the persistence interface for the enrichment pipeline.
type Store interface {
	// Results
	SaveResult(ctx context.Context, result *model.EnrichmentResult) error
	SaveResults(ctx context.Context, results []model.EnrichmentResult) error
	GetResult(ctx context.Context, recordID string) (*model.EnrichmentResult, error)
	ListResults(ctx context.Context, filter ResultFilter) ([]model.EnrichmentResult, error)

	// Page cache
	GetCachedPage(ctx context.Context, url string) (*model.CachedPage, error)
	SetCachedPage(ctx context.Context, url, title, content string, ttl time.Duration) error
	DeleteExpiredPages(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
