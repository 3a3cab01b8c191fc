package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/recaudo/evidence-cli/internal/evidence"
	"github.com/recaudo/evidence-cli/internal/model"
	"github.com/recaudo/evidence-cli/internal/schema"
	"github.com/recaudo/evidence-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the evidence batch HTTP API",
	Long: "Starts an HTTP server that accepts batch requests, runs them in the " +
		"background, and exposes run history for polling.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		mapping, err := loadMapping()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		if st != nil {
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		s := &server{
			ctx:         ctx,
			store:       st,
			mapping:     mapping,
			concurrency: cfg.Batch.Concurrency,
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           s.newRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("server listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (defaults to server.port from config)")
	rootCmd.AddCommand(serveCmd)
}

// server carries the shared dependencies of the HTTP handlers. ctx is the
// serve lifetime: background batches are bound to it, not to the request.
type server struct {
	ctx         context.Context
	store       store.Store
	mapping     schema.Mapping
	concurrency int
}

func (s *server) newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/runs", s.handleCreateRun)
	r.Get("/runs", s.handleListRuns)
	r.Get("/runs/{id}", s.handleGetRun)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateRun validates the request inputs up front, then hands the batch
// to a background goroutine and answers 202 immediately.
func (s *server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var params model.BatchParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if params.OutputRoot == "" || params.Folder == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "output_root and folder are required"})
		return
	}

	inputs, err := evidence.LoadInputs(evidence.InputPaths{
		Source:       params.SourceFile,
		NewRecords:   params.NewRecordsFile,
		SMS:          params.SMSFile,
		Consolidated: params.ConsolidatedFile,
		IVRAudio:     params.IVRAudioFile,
	}, s.mapping)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if params.Concurrency == 0 {
		params.Concurrency = s.concurrency
	}

	opts := evidence.Options{
		OutputRoot:  params.OutputRoot,
		Folder:      params.Folder,
		AccountID:   params.AccountID,
		Concurrency: params.Concurrency,
		Store:       s.store,
		Logger:      zap.L(),
	}

	var runID string
	if s.store != nil {
		run, err := s.store.CreateRun(r.Context(), params)
		if err != nil {
			zap.L().Error("create run record", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record run"})
			return
		}
		runID = run.ID
		opts.RunID = runID
	}

	go func() {
		runner := evidence.NewRunner(inputs, opts)
		result, err := runner.Run(s.ctx)
		if err != nil {
			zap.L().Error("background batch failed", zap.String("run_id", runID), zap.Error(err))
			return
		}
		zap.L().Info("background batch complete",
			zap.String("run_id", runID),
			zap.Int("customers", result.Customers),
			zap.Int("artifacts", result.Artifacts),
		)
	}()

	resp := map[string]string{"status": "accepted"}
	if runID != "" {
		resp["run_id"] = runID
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "run history is disabled"})
		return
	}

	filter := store.RunFilter{
		Status: model.RunStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	runs, err := s.store.ListRuns(r.Context(), filter)
	if err != nil {
		zap.L().Error("list runs", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list runs"})
		return
	}
	if runs == nil {
		runs = []model.BatchRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "run history is disabled"})
		return
	}

	id := chi.URLParam(r, "id")
	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
			return
		}
		zap.L().Error("get run", zap.String("run_id", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get run"})
		return
	}

	if run.Result != nil {
		outcomes, err := s.store.ListRunCustomers(r.Context(), run.ID)
		if err != nil {
			zap.L().Error("list run customers", zap.String("run_id", id), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get run"})
			return
		}
		run.Result.Outcomes = outcomes
	}

	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

// requestLogger logs one line per request with the final status code.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
