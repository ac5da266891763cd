// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"tally/internal/cache"
	"tally/internal/export"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/report"
	"tally/internal/trend"
)

// Server wires the ledger store and its read models behind HTTP
// handlers, with rate limiting on mutations and response caching on
// reports.
type Server struct {
	http.Server

	store     *ledger.Store
	agg       *report.Aggregator
	analyzer  *trend.Analyzer
	formatter *export.Formatter
	logger    *log.Logger

	rateLimiter *rateLimiter

	summaryCache  *cache.LRUCache[report.Summary]
	analysisCache *cache.LRUCache[trend.Analysis]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

func NewServer(addr string, store *ledger.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		store:         store,
		agg:           report.NewAggregator(store),
		analyzer:      trend.NewAnalyzer(store),
		formatter:     export.NewFormatter(store),
		logger:        logger.WithComponent(log.ComponentHTTP),
		rateLimiter:   newRateLimiter(),
		summaryCache:  cache.NewLRUCache[report.Summary](100, 5*time.Minute),
		analysisCache: cache.NewLRUCache[trend.Analysis](100, 5*time.Minute),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.analysisCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", s.with(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.with(s.handleCreateTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.with(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.with(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budgets", s.with(s.handleListBudgets))
	mux.HandleFunc("PUT /api/budgets/{category}", s.with(s.handleSetBudget))
	mux.HandleFunc("DELETE /api/budgets/{category}", s.with(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/reports/monthly", s.with(s.handleMonthlySummary))
	mux.HandleFunc("GET /api/reports/budgets", s.with(s.handleBudgetSummary))
	mux.HandleFunc("GET /api/reports/series", s.with(s.handleMonthlySeries))

	mux.HandleFunc("GET /api/trends/categories", s.with(s.handleCategoryAnalysis))
	mux.HandleFunc("GET /api/trends/category", s.with(s.handleCategoryTrend))

	mux.HandleFunc("GET /api/export", s.with(s.handleExport))

	mux.HandleFunc("GET /api/settings", s.with(s.handleGetSettings))
	mux.HandleFunc("PUT /api/settings", s.with(s.handleUpdateSettings))

	return s
}

// with adds security headers, rate limiting on mutations, a request ID
// and request logging around a handler.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldRequestID, requestID,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			newResponse().status(http.StatusTooManyRequests).
				fail("rate limit exceeded, try again later").write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

type requestIDKey struct{}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// Shutdown stops the cache sweeper, the rate limiter and the HTTP
// server, in that order.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}
