package fetcher

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotleads/enrich-cli/internal/config"
	"github.com/lotleads/enrich-cli/internal/store"
	"github.com/lotleads/enrich-cli/pkg/firecrawl"
	"github.com/lotleads/enrich-cli/pkg/jina"
)

type stubJina struct {
	readResp *jina.ReadResponse
	readErr  error
	calls    int
}

func (s *stubJina) Read(ctx context.Context, url string) (*jina.ReadResponse, error) {
	s.calls++
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.readResp, nil
}

func (s *stubJina) Search(ctx context.Context, query string, opts ...jina.SearchOption) (*jina.SearchResponse, error) {
	return &jina.SearchResponse{}, nil
}

type stubFirecrawl struct {
	resp *firecrawl.ScrapeResponse
	err  error
}

func (s *stubFirecrawl) Scrape(ctx context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func testConfig(backend string) *config.Config {
	return &config.Config{
		Fetcher: config.FetcherConfig{
			Backend:       backend,
			RatePerSecond: 100,
		},
		Enrich: config.EnrichConfig{PerFetchTimeoutSecs: 20},
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(testConfig("scrapy"), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestJinaFetcher_Success(t *testing.T) {
	stub := &stubJina{readResp: &jina.ReadResponse{
		Code: 200,
		Data: jina.ReadData{
			Title:   "About Us",
			Content: "# About\n\nFamily owned since 1998.",
			Usage:   jina.ReadUsage{Tokens: 412},
		},
	}}

	f, err := New(testConfig("jina"), stub, nil)
	require.NoError(t, err)

	res := f.Fetch(context.Background(), "https://sunriseautosales.com/about")
	assert.True(t, res.Succeeded())
	assert.Equal(t, "About Us", res.Title)
	assert.Equal(t, 412, res.Tokens)
	assert.False(t, res.Cached)
}

func TestJinaFetcher_FailureIsData(t *testing.T) {
	stub := &stubJina{readErr: assert.AnError}

	f, err := New(testConfig("jina"), stub, nil)
	require.NoError(t, err)

	res := f.Fetch(context.Background(), "https://unreachable.example.com")
	assert.False(t, res.Succeeded())
	assert.Error(t, res.Err)
	assert.Equal(t, "https://unreachable.example.com", res.URL)
}

func TestFirecrawlFetcher_Success(t *testing.T) {
	stub := &stubFirecrawl{resp: &firecrawl.ScrapeResponse{
		Success: true,
		Data: firecrawl.PageData{
			Markdown: "# Inventory",
			Metadata: firecrawl.Metadata{Title: "Inventory"},
		},
	}}

	f, err := New(testConfig("firecrawl"), nil, stub)
	require.NoError(t, err)

	res := f.Fetch(context.Background(), "https://sunriseautosales.com/inventory")
	assert.True(t, res.Succeeded())
	assert.Equal(t, "Inventory", res.Title)
}

func TestFirecrawlFetcher_Unsuccessful(t *testing.T) {
	stub := &stubFirecrawl{resp: &firecrawl.ScrapeResponse{Success: false}}

	f, err := New(testConfig("firecrawl"), nil, stub)
	require.NoError(t, err)

	res := f.Fetch(context.Background(), "https://blocked.example.com")
	assert.False(t, res.Succeeded())
	assert.Error(t, res.Err)
}

func TestFetcher_EmptyContentNotSucceeded(t *testing.T) {
	stub := &stubJina{readResp: &jina.ReadResponse{Code: 200}}

	f, err := New(testConfig("jina"), stub, nil)
	require.NoError(t, err)

	res := f.Fetch(context.Background(), "https://empty.example.com")
	assert.NoError(t, res.Err)
	assert.False(t, res.Succeeded())
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestWithCache_SecondFetchServedLocally(t *testing.T) {
	stub := &stubJina{readResp: &jina.ReadResponse{
		Code: 200,
		Data: jina.ReadData{Title: "Home", Content: "content"},
	}}
	inner, err := New(testConfig("jina"), stub, nil)
	require.NoError(t, err)

	f := WithCache(inner, newTestStore(t), time.Hour)

	first := f.Fetch(context.Background(), "https://sunriseautosales.com")
	require.True(t, first.Succeeded())
	assert.False(t, first.Cached)

	second := f.Fetch(context.Background(), "https://sunriseautosales.com")
	require.True(t, second.Succeeded())
	assert.True(t, second.Cached)
	assert.Equal(t, "content", second.Content)
	assert.Equal(t, 1, stub.calls)
}

func TestWithCache_FailuresNotCached(t *testing.T) {
	stub := &stubJina{readErr: assert.AnError}
	inner, err := New(testConfig("jina"), stub, nil)
	require.NoError(t, err)

	f := WithCache(inner, newTestStore(t), time.Hour)

	_ = f.Fetch(context.Background(), "https://down.example.com")
	_ = f.Fetch(context.Background(), "https://down.example.com")
	assert.Equal(t, 2, stub.calls)
}
