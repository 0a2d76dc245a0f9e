package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/sales-analyzer/internal/config"
	"github.com/sells-group/sales-analyzer/internal/export"
	"github.com/sells-group/sales-analyzer/internal/model"
	"github.com/sells-group/sales-analyzer/internal/pipeline"
	"github.com/sells-group/sales-analyzer/internal/store"
)

var servePort int

// multipartSlack covers multipart headers and boundaries on top of the file.
const multipartSlack = 1 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildMux(env, cfg.Server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// server holds the dependencies of the HTTP handlers.
type server struct {
	pipeline  *pipeline.Pipeline
	store     store.Store // nil when the run log is disabled
	maxUpload int64
}

// buildMux wires the API routes and middleware.
func buildMux(env *pipelineEnv, sc config.ServerConfig) http.Handler {
	s := &server{
		pipeline:  env.Pipeline,
		store:     env.Store,
		maxUpload: int64(sc.MaxUploadMB) << 20,
	}

	origins := sc.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(rateLimit(sc.RateLimit, sc.RateBurst))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/categories", s.handleCategories)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/stats", s.handleRunStats)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

// rateLimit rejects requests beyond a global token bucket. A non-positive
// limit disables it.
func rateLimit(limit float64, burst int) func(http.Handler) http.Handler {
	lim := rate.Limit(limit)
	if limit <= 0 {
		lim = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(lim, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				zap.L().Warn("rate limit exceeded",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr),
				)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded", "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok", "store": "disabled"}
	status := http.StatusOK
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			zap.L().Warn("health: store ping failed", zap.Error(err))
			body["status"] = "degraded"
			body["store"] = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			body["store"] = "ok"
		}
	}
	writeJSON(w, status, body)
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	top, err := parseNonNegative(q.Get("top"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "top must be a non-negative integer", "")
		return
	}

	res, ok := s.analyzeUpload(w, r, q.Get("category"), top)
	if !ok {
		return
	}

	report := analysisReport{
		Source:    res.Source,
		RunID:     res.RunID,
		Stats:     &res.Stats,
		Dashboard: &res.Dashboard,
	}
	if q.Get("records") == "true" {
		report.Records = res.Records
	}

	if format == export.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		if err := export.Encode(w, format, report); err != nil {
			zap.L().Error("analyze: encode response", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	res, ok := s.analyzeUpload(w, r, "", 0)
	if !ok {
		return
	}
	categories := make([]string, 0, len(res.Dashboard.Categories)+1)
	categories = append(categories, model.OverallCategory)
	categories = append(categories, res.Dashboard.Categories...)
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// analyzeUpload runs the pipeline on the multipart "file" field. On failure
// it writes the error response and returns false.
func (s *server) analyzeUpload(w http.ResponseWriter, r *http.Request, category string, top int) (*pipeline.Result, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+multipartSlack)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload too large (max %d MB)", s.maxUpload>>20), model.ErrorKindTooLarge)
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form", "")
		return nil, false
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll() //nolint:errcheck
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required", "")
		return nil, false
	}
	defer file.Close() //nolint:errcheck

	if header.Size > s.maxUpload {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("upload too large (max %d MB)", s.maxUpload>>20), model.ErrorKindTooLarge)
		return nil, false
	}

	res, err := s.pipeline.RunReader(r.Context(), header.Filename, file, s.pipeline.DashboardOptions(category, top))
	if err != nil {
		kind := pipeline.Classify(err)
		writeError(w, statusForKind(kind), err.Error(), kind)
		return nil, false
	}
	return res, true
}

func (s *server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run log is disabled", "")
		return
	}
	q := r.URL.Query()
	limit, err := parseNonNegative(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer", "")
		return
	}
	offset, err := parseNonNegative(q.Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer", "")
		return
	}

	runs, err := s.store.ListRuns(r.Context(), store.RunFilter{
		Status: model.RunStatus(q.Get("status")),
		Source: q.Get("source"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		zap.L().Error("list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list runs", "")
		return
	}
	if runs == nil {
		runs = []model.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *server) handleRunStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run log is disabled", "")
		return
	}
	sum, err := s.store.Summarize(r.Context())
	if err != nil {
		zap.L().Error("summarize runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to summarize runs", "")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run log is disabled", "")
		return
	}
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "run not found", "")
			return
		}
		zap.L().Error("get run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get run", "")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// statusForKind maps a failure kind to its HTTP status.
func statusForKind(kind model.ErrorKind) int {
	switch kind {
	case model.ErrorKindSchema:
		return http.StatusUnprocessableEntity
	case model.ErrorKindParse:
		return http.StatusBadRequest
	case model.ErrorKindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func parseNonNegative(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, eris.Errorf("invalid non-negative integer %q", s)
	}
	return n, nil
}
