package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotleads/enrich-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleResult(recordID, company string, status model.RecordStatus) model.EnrichmentResult {
	return model.EnrichmentResult{
		RecordID: recordID,
		Record: model.Record{
			ID:          recordID,
			CompanyName: company,
			City:        "Tampa",
			State:       "FL",
		},
		Profile: model.MergedProfile{
			OwnerName: "Mike Rivera",
			Website:   "https://sunriseautosales.com",
		},
		Content: model.GeneratedContent{
			Subject:    "Quick question about your Tampa lot",
			Icebreaker: "Saw the write-up on your community sponsorship.",
		},
		Confidence: 0.82,
		Status:     status,
		CostUSD:    0.021,
		StartedAt:  time.Now().UTC().Add(-time.Minute),
		FinishedAt: time.Now().UTC(),
	}
}

// --- Results ---

func TestSQLite_SaveAndGetResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	want := sampleResult("rec-1", "Sunrise Auto Sales", model.RecordStatusDone)
	require.NoError(t, st.SaveResult(ctx, &want))

	got, err := st.GetResult(ctx, "rec-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.RecordID, got.RecordID)
	assert.Equal(t, want.Record.CompanyName, got.Record.CompanyName)
	assert.Equal(t, want.Profile.OwnerName, got.Profile.OwnerName)
	assert.Equal(t, want.Content.Subject, got.Content.Subject)
	assert.InDelta(t, want.Confidence, got.Confidence, 1e-9)
	assert.Equal(t, model.RecordStatusDone, got.Status)
}

func TestSQLite_GetResult_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetResult(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_SaveResult_Upsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first := sampleResult("rec-1", "Sunrise Auto Sales", model.RecordStatusFailed)
	require.NoError(t, st.SaveResult(ctx, &first))

	second := sampleResult("rec-1", "Sunrise Auto Sales", model.RecordStatusDone)
	second.Confidence = 0.9
	require.NoError(t, st.SaveResult(ctx, &second))

	got, err := st.GetResult(ctx, "rec-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.RecordStatusDone, got.Status)
	assert.InDelta(t, 0.9, got.Confidence, 1e-9)
}

func TestSQLite_SaveResults_Batch(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	batch := []model.EnrichmentResult{
		sampleResult("rec-1", "Sunrise Auto Sales", model.RecordStatusDone),
		sampleResult("rec-2", "Bayview Motors", model.RecordStatusDone),
		sampleResult("rec-3", "Gulf Coast Cars", model.RecordStatusFailed),
	}
	require.NoError(t, st.SaveResults(ctx, batch))

	got, err := st.GetResult(ctx, "rec-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Bayview Motors", got.Record.CompanyName)
}

func TestSQLite_SaveResults_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.SaveResults(context.Background(), nil))
}

func TestSQLite_ListResults_FilterByStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveResults(ctx, []model.EnrichmentResult{
		sampleResult("rec-1", "Sunrise Auto Sales", model.RecordStatusDone),
		sampleResult("rec-2", "Bayview Motors", model.RecordStatusFailed),
		sampleResult("rec-3", "Gulf Coast Cars", model.RecordStatusDone),
	}))

	done, err := st.ListResults(ctx, ResultFilter{Status: model.RecordStatusDone})
	require.NoError(t, err)
	assert.Len(t, done, 2)

	failed, err := st.ListResults(ctx, ResultFilter{Status: model.RecordStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "rec-2", failed[0].RecordID)
}

func TestSQLite_ListResults_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveResults(ctx, []model.EnrichmentResult{
		sampleResult("rec-1", "A", model.RecordStatusDone),
		sampleResult("rec-2", "B", model.RecordStatusDone),
		sampleResult("rec-3", "C", model.RecordStatusDone),
	}))

	got, err := st.ListResults(ctx, ResultFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

// --- Page cache ---

func TestSQLite_PageCache_SetAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.SetCachedPage(ctx, "https://sunriseautosales.com/about", "About Us", "page content", time.Hour)
	require.NoError(t, err)

	p, err := st.GetCachedPage(ctx, "https://sunriseautosales.com/about")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "About Us", p.Title)
	assert.Equal(t, "page content", p.Content)
}

func TestSQLite_PageCache_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	p, err := st.GetCachedPage(context.Background(), "https://never-fetched.com")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSQLite_PageCache_Expired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.SetCachedPage(ctx, "https://stale.com", "Stale", "old content", -time.Hour)
	require.NoError(t, err)

	p, err := st.GetCachedPage(ctx, "https://stale.com")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSQLite_PageCache_Overwrite(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedPage(ctx, "https://example.com", "v1", "original", time.Hour))
	require.NoError(t, st.SetCachedPage(ctx, "https://example.com", "v2", "updated", time.Hour))

	p, err := st.GetCachedPage(ctx, "https://example.com")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "v2", p.Title)
	assert.Equal(t, "updated", p.Content)
}

func TestSQLite_DeleteExpiredPages(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedPage(ctx, "https://fresh.com", "", "fresh", time.Hour))
	require.NoError(t, st.SetCachedPage(ctx, "https://stale1.com", "", "stale", -time.Hour))
	require.NoError(t, st.SetCachedPage(ctx, "https://stale2.com", "", "stale", -time.Minute))

	n, err := st.DeleteExpiredPages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	p, err := st.GetCachedPage(ctx, "https://fresh.com")
	require.NoError(t, err)
	assert.NotNil(t, p)
}
