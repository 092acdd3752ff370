package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lotleads/enrich-cli/internal/model"
	"github.com/lotleads/enrich-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for enrichment requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		router := newRouter(ctx, env)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		go gracefulShutdown(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

const shutdownTimeout = 10 * time.Second

// gracefulShutdown drains the server once ctx is cancelled. The signal
// context is already done at that point, so the drain gets its own deadline.
func gracefulShutdown(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// newRouter builds the API routes. The parent context outlives individual
// requests so async enrichments survive the response being written.
func newRouter(ctx context.Context, env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/v1/enrich", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			ID          string `json:"id"`
			CompanyName string `json:"company_name"`
			City        string `json:"city"`
			State       string `json:"state"`
			Website     string `json:"website"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.CompanyName == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "company_name is required"})
			return
		}

		record := model.Record{
			ID:          body.ID,
			CompanyName: body.CompanyName,
			City:        body.City,
			State:       body.State,
			Website:     body.Website,
		}
		if record.ID == "" {
			record.ID = uuid.NewString()
		}

		go func() {
			result, err := env.Pipeline.Run(ctx, record)
			if err != nil {
				zap.L().Error("async enrichment failed",
					zap.String("record_id", record.ID),
					zap.Error(err),
				)
				return
			}
			zap.L().Info("async enrichment complete",
				zap.String("record_id", record.ID),
				zap.String("status", string(result.Status)),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":    "accepted",
			"record_id": record.ID,
		})
	})

	r.Get("/v1/results/{recordID}", func(w http.ResponseWriter, req *http.Request) {
		recordID := chi.URLParam(req, "recordID")
		result, err := env.Store.GetResult(req.Context(), recordID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
			return
		}
		if result == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "result not found"})
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/v1/results", func(w http.ResponseWriter, req *http.Request) {
		filter := store.ResultFilter{
			Status: model.RecordStatus(req.URL.Query().Get("status")),
			Limit:  100,
		}
		if s := req.URL.Query().Get("limit"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 {
				filter.Limit = n
			}
		}
		results, err := env.Store.ListResults(req.Context(), filter)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(results),
			"results": results,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
