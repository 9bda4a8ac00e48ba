// Package server exposes the processing engine over HTTP: upload a file, get
// back a report ID, fetch the report while it lives in the cache.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fjurado/filerep/internal/cache"
	"github.com/fjurado/filerep/internal/engine"
	"github.com/fjurado/filerep/internal/types"
)

// maxUploadBytes caps multipart uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// Server wires the engine and the report cache behind a chi router.
type Server struct {
	eng     *engine.Engine
	reports *cache.ReportCache
	log     *zap.Logger
	router  chi.Router

	uploadsTotal *prometheus.CounterVec
	reportReads  *prometheus.CounterVec
}

// New builds a server. The caller owns the cache lifecycle (Close).
func New(eng *engine.Engine, reports *cache.ReportCache, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		eng:     eng,
		reports: reports,
		log:     log,
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filerep_uploads_total",
			Help: "Uploads received, by outcome.",
		}, []string{"outcome"}),
		reportReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filerep_report_reads_total",
			Help: "Report lookups, by outcome.",
		}, []string{"outcome"}),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(s.uploadsTotal, s.reportReads)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post("/upload", s.handleUpload)
	r.Get("/reports/{id}", s.handleGetReport)
	r.Get("/cache/stats", s.handleCacheStats)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.router = r
	return s
}

// Handler returns the router for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleUpload accepts a multipart form with a "file" field, processes it,
// caches the report, and returns its ID.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.uploadsTotal.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "missing multipart field \"file\"")
		return
	}
	defer file.Close()

	if _, ok := types.TypeForPath(header.Filename); !ok {
		s.uploadsTotal.WithLabelValues("unsupported").Inc()
		writeError(w, http.StatusUnsupportedMediaType, "unsupported file type")
		return
	}

	// The parsers work on paths, so spool the upload to a temp file keeping
	// the original extension.
	tmpDir, err := os.MkdirTemp("", "filerep-upload-*")
	if err != nil {
		s.uploadsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, filepath.Base(header.Filename))
	dst, err := os.Create(tmpPath)
	if err != nil {
		s.uploadsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		s.uploadsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	dst.Close()

	report, err := s.eng.ProcessFile(r.Context(), tmpPath)
	if err != nil {
		s.uploadsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id := cache.NewID()
	s.reports.Put(id, report)
	s.uploadsTotal.WithLabelValues("ok").Inc()

	s.log.Info("upload processed",
		zap.String("filename", header.Filename),
		zap.String("report_id", id))
	writeJSON(w, http.StatusCreated, map[string]string{"report_id": id})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, ok := s.reports.Get(id)
	if !ok {
		s.reportReads.WithLabelValues("miss").Inc()
		writeError(w, http.StatusNotFound, "report not found or expired")
		return
	}
	s.reportReads.WithLabelValues("hit").Inc()
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reports.Stats())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
