package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotleads/enrich-cli/internal/model"
)

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServe_Healthz(t *testing.T) {
	env := newOfflineEnv(t)
	router := newRouter(context.Background(), env)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServe_EnrichRejectsBadBody(t *testing.T) {
	env := newOfflineEnv(t)
	router := newRouter(context.Background(), env)

	rec := doRequest(t, router, http.MethodPost, "/v1/enrich", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/v1/enrich", `{"city":"Tampa"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "company_name is required")
}

func TestServe_EnrichAcceptsAndRuns(t *testing.T) {
	env := newOfflineEnv(t)
	router := newRouter(context.Background(), env)

	body := `{"id":"rec-42","company_name":"Sunrise Auto Sales","city":"Tampa","state":"FL"}`
	rec := doRequest(t, router, http.MethodPost, "/v1/enrich", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp["status"])
	assert.Equal(t, "rec-42", resp["record_id"])

	// The stub-backed run completes quickly; poll the store for the result.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		result, err := env.Store.GetResult(context.Background(), "rec-42")
		require.NoError(t, err)
		if result != nil {
			assert.Equal(t, model.RecordStatusDone, result.Status)
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("async enrichment never persisted a result")
}

func TestServe_EnrichGeneratesRecordID(t *testing.T) {
	env := newOfflineEnv(t)
	router := newRouter(context.Background(), env)

	rec := doRequest(t, router, http.MethodPost, "/v1/enrich", `{"company_name":"Bayview Motors"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["record_id"])
}

func TestServe_GracefulShutdownDrains(t *testing.T) {
	env := newOfflineEnv(t)
	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: newRouter(context.Background(), env),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe() }()
	go gracefulShutdown(ctx, srv)

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		// A drained shutdown surfaces as ErrServerClosed, not a hard close.
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_GetResultNotFound(t *testing.T) {
	env := newOfflineEnv(t)
	router := newRouter(context.Background(), env)

	rec := doRequest(t, router, http.MethodGet, "/v1/results/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServe_ListResults(t *testing.T) {
	env := newOfflineEnv(t)
	router := newRouter(context.Background(), env)

	saved := &model.EnrichmentResult{
		RecordID: "rec-list-1",
		Record:   model.Record{ID: "rec-list-1", CompanyName: "Sunrise Auto Sales"},
		Status:   model.RecordStatusDone,
	}
	require.NoError(t, env.Store.SaveResult(context.Background(), saved))

	rec := doRequest(t, router, http.MethodGet, "/v1/results?status=done&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count   int                      `json:"count"`
		Results []model.EnrichmentResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "rec-list-1", resp.Results[0].RecordID)
}
