package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"flowbarber/internal/cache"
	"flowbarber/internal/report"
	"flowbarber/internal/services"
)

// Options tunes the server's rate limiting and report caching.
type Options struct {
	RateLimitPerMinute int
	CacheSize          int
	CacheTTL           time.Duration
}

// DefaultOptions returns the limits used when none are configured.
func DefaultOptions() Options {
	return Options{
		RateLimitPerMinute: 60,
		CacheSize:          100,
		CacheTTL:           5 * time.Minute,
	}
}

type Server struct {
	http.Server
	services    *services.ServiceStore
	plans       *services.PlanStore
	rateLimiter *rateLimiter

	// Report aggregations are cached per range key and purged on every
	// mutation.
	summaryCache *cache.LRU[rangeSummary]
	dayCache     *cache.LRU[[]report.DayBucket]
	monthCache   *cache.LRU[[]report.MonthBucket]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	perMinute    int
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
		perMinute:   perMinute,
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{
			lastRequest: now,
			requests:    1,
		}
		return true
	}

	// Reset counter if more than 1 minute has passed
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now

	return client.requests <= rl.perMinute
}

// startCleanup runs periodic cleanup to remove stale client entries
func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, opts Options, svc *services.ServiceStore, plans *services.PlanStore) *Server {
	if opts.CacheSize <= 0 || opts.CacheTTL <= 0 {
		opts = DefaultOptions()
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		services:     svc,
		plans:        plans,
		rateLimiter:  newRateLimiter(opts.RateLimitPerMinute),
		summaryCache: cache.NewLRU[rangeSummary](opts.CacheSize, opts.CacheTTL),
		dayCache:     cache.NewLRU[[]report.DayBucket](opts.CacheSize, opts.CacheTTL),
		monthCache:   cache.NewLRU[[]report.MonthBucket](opts.CacheSize, opts.CacheTTL),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.dayCache)
	s.cacheManager.Register(s.monthCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	mux.HandleFunc("/services", s.withSecurityHeaders(s.handleServices))
	mux.HandleFunc("/services/update", s.withSecurityHeaders(s.handleUpdateService))
	mux.HandleFunc("/services/delete", s.withSecurityHeaders(s.handleDeleteService))
	mux.HandleFunc("/services/clear-today", s.withSecurityHeaders(s.handleClearToday))
	mux.HandleFunc("/catalog", s.withSecurityHeaders(s.handleCatalog))

	mux.HandleFunc("/plans", s.withSecurityHeaders(s.handlePlans))
	mux.HandleFunc("/plans/update", s.withSecurityHeaders(s.handleUpdatePlan))
	mux.HandleFunc("/plans/delete", s.withSecurityHeaders(s.handleDeletePlan))
	mux.HandleFunc("/plans/consume", s.withSecurityHeaders(s.handleConsumeCredit))
	mux.HandleFunc("/plans/renew", s.withSecurityHeaders(s.handleRenewPlan))

	mux.HandleFunc("/report/summary", s.withSecurityHeaders(s.handleReportSummary))
	mux.HandleFunc("/report/series", s.withSecurityHeaders(s.handleReportSeries))
	mux.HandleFunc("/report/daily", s.withSecurityHeaders(s.handleReportDaily))
	mux.HandleFunc("/report/table", s.withSecurityHeaders(s.handleReportTable))
	mux.HandleFunc("/import", s.withSecurityHeaders(s.handleImport))

	return s
}

// invalidateReports drops every cached aggregation after a mutation.
func (s *Server) invalidateReports() {
	s.summaryCache.Purge()
	s.dayCache.Purge()
	s.monthCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", ip,
			"user_agent", r.Header.Get("User-Agent"))

		// Apply rate limiting to mutating requests
		if r.Method == http.MethodPost && !s.rateLimiter.allow(ip) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", ip, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", ip)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.services.Loaded() || !s.plans.Loaded() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
