// Package http exposes the tracker over a JSON API: transaction CRUD,
// the dashboard summary, the windowed reports and the notification
// banner state. It is presentation glue; all invariants live in the
// store and core packages.
package http

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"masroofy/internal/cache"
	"masroofy/internal/core"
	"masroofy/internal/notify"
	"masroofy/internal/store"
)

// Options tune the presentation layer; zero values pick the defaults.
type Options struct {
	RateLimitPerMinute int
	ReportCacheSize    int
	ReportCacheTTL     time.Duration
	Logger             *slog.Logger
}

type Server struct {
	http.Server

	store    *store.Store
	notifier *notify.Notifier
	logger   *slog.Logger

	reportCache *cache.LRU[reportResponse]
	reportGen   atomic.Uint64
	limiter     *rateLimiter
	started     time.Time
}

// NewServer wires routes and middleware, returning a ready-to-run
// server. The report cache is flushed whenever the store commits a
// mutation.
func NewServer(addr string, st *store.Store, notifier *notify.Notifier, opts Options) *Server {
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 120
	}
	if opts.ReportCacheSize <= 0 {
		opts.ReportCacheSize = 16
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		store:       st,
		notifier:    notifier,
		logger:      opts.Logger,
		reportCache: cache.NewLRU[reportResponse](opts.ReportCacheSize, opts.ReportCacheTTL),
		limiter:     newRateLimiter(opts.RateLimitPerMinute),
		started:     time.Now(),
	}
	st.OnChange(func() {
		s.reportGen.Add(1)
		s.reportCache.InvalidateAll()
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/", s.handleTransactionByID)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/notification", s.handleNotification)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.withTrace(s.withRateLimit(mux)),
	}
	return s
}

// Close releases the limiter's cleanup goroutine in addition to the
// usual server shutdown.
func (s *Server) Close() error {
	s.limiter.stop()
	return s.Server.Close()
}

// snapshot is a convenience for handlers that need the current
// collection exactly once.
func (s *Server) snapshot() []core.Transaction {
	return s.store.List()
}
