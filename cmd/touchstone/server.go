package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/taoensso/touchstone"
	"github.com/taoensso/touchstone/config"
	"github.com/taoensso/touchstone/internal/metrics"
	"github.com/taoensso/touchstone/scoring"
	"github.com/taoensso/touchstone/store"
	"github.com/taoensso/touchstone/types"
	"github.com/taoensso/touchstone/web"
)

// Server is the demo HTTP surface over the engine: selection and commit
// endpoints behind the participant-tracking middleware, plus health and
// Prometheus metrics.
type Server struct {
	cfg      *config.Config
	engine   *touchstone.Engine
	strategy scoring.Strategy
	logger   *zap.Logger
	registry *prometheus.Registry

	httpServer  *http.Server
	cancelLimit context.CancelFunc
}

func NewServer(cfg *config.Config, st store.Store, logger *zap.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector("touchstone", registry)

	engine := touchstone.New(st, config.NewResolver(cfg),
		touchstone.WithLogger(logger),
		touchstone.WithMetrics(collector),
	)
	strategy := scoring.NewUCB1(st,
		scoring.WithLogger(logger),
		scoring.WithMetrics(collector),
	)

	return &Server{
		cfg:      cfg,
		engine:   engine,
		strategy: strategy,
		logger:   logger,
		registry: registry,
	}
}

// buildHandler assembles the route mux behind the middleware chain. ctx
// bounds the rate limiter's cleanup goroutine.
func (s *Server) buildHandler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /select", s.handleSelect)
	mux.HandleFunc("POST /commit", s.handleCommit)
	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return web.Chain(mux,
		web.Recovery(s.logger),
		web.RequestLogger(s.logger),
		web.RateLimiter(ctx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
		web.ParticipantTracker(s.logger),
	)
}

// Start begins listening. Non-blocking; pair with WaitForShutdown.
func (s *Server) Start() error {
	limitCtx, cancel := context.WithCancel(context.Background())
	s.cancelLimit = cancel
	handler := s.buildHandler(limitCtx)

	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Server.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
	return nil
}

// WaitForShutdown blocks until SIGINT/SIGTERM, then drains within the
// configured shutdown timeout.
func (s *Server) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.logger.Info("Starting graceful shutdown...")
	s.cancelLimit()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}
}

// handleSelect allocates a form for the tracked participant.
//
//	GET /select?test=landing:signup&forms=red,green,blue
//
// The demo serves the form id itself as the form value; a real deployment
// registers producers for its own content.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	testID := r.URL.Query().Get("test")
	rawForms := r.URL.Query().Get("forms")
	if testID == "" || rawForms == "" {
		writeError(w, http.StatusBadRequest, "test and forms query parameters are required")
		return
	}

	forms := make(map[string]touchstone.FormFn)
	for _, id := range strings.Split(rawForms, ",") {
		id := strings.TrimSpace(id)
		if id == "" {
			continue
		}
		forms[id] = func() any { return id }
	}

	participant := web.ParticipantID(r.Context())
	v, err := s.engine.Select(r.Context(), s.strategy, participant, testID, forms)
	if err != nil {
		s.logger.Error("selection failed", zap.String("test", testID), zap.Error(err))
		writeError(w, statusFor(err), "selection failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"test":        testID,
		"form":        v,
		"participant": participant,
	})
}

// handleCommit attributes an outcome value to the participant's selection.
//
//	POST /commit?test=landing:signup&value=1
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	testID := r.URL.Query().Get("test")
	if testID == "" {
		writeError(w, http.StatusBadRequest, "test query parameter is required")
		return
	}
	value, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "value must be a number in [-1, 1]")
		return
	}

	participant := web.ParticipantID(r.Context())
	if err := s.engine.Commit(r.Context(), participant, testID, value); err != nil {
		if types.HasCode(err, types.CodeInvalidCommitValue) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("commit failed", zap.String("test", testID), zap.Error(err))
		writeError(w, statusFor(err), "commit failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"test": testID, "committed": true})
}

// handleReport returns the ranked snapshot for a test.
//
//	GET /report?test=landing:signup
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	testID := r.URL.Query().Get("test")
	if testID == "" {
		writeError(w, http.StatusBadRequest, "test query parameter is required")
		return
	}

	snap, err := s.engine.Snapshot(r.Context(), testID)
	if err != nil {
		s.logger.Error("report failed", zap.String("test", testID), zap.Error(err))
		writeError(w, statusFor(err), "report failed")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statusFor(err error) int {
	if types.IsStoreUnavailable(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
