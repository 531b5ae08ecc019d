package httpapi

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/halim/toolbridge/internal/metrics"
	"github.com/halim/toolbridge/pkg/gateway"
)

// ServerOptions configures the HTTP binding of the gateway.
type ServerOptions struct {
	Host               string
	Port               int
	APIKeyHeader       string // header carrying the API key
	APIKeyQuery        string // query parameter carrying the API key
	RateLimitPerMinute int
}

// Server exposes the gateway over HTTP: tool listing, tool detail, schema
// retrieval, tool invocation, the dispatch event stream, metrics and
// health.
type Server struct {
	options     ServerOptions
	dispatcher  *gateway.Dispatcher
	registry    *gateway.Registry
	auth        *gateway.Authenticator
	metrics     *metrics.Metrics
	broadcaster *Broadcaster
	rateLimiter *RateLimiter
	logger      zerolog.Logger
	server      *http.Server
	startTime   time.Time
}

// NewServer creates the HTTP server. The metrics collector and broadcaster
// are optional.
func NewServer(options ServerOptions, dispatcher *gateway.Dispatcher, registry *gateway.Registry,
	auth *gateway.Authenticator, m *metrics.Metrics, broadcaster *Broadcaster, logger zerolog.Logger) *Server {

	if options.Port == 0 {
		options.Port = 3001
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if options.APIKeyHeader == "" {
		options.APIKeyHeader = "X-API-Key"
	}
	if options.APIKeyQuery == "" {
		options.APIKeyQuery = "apikey"
	}
	if options.RateLimitPerMinute == 0 {
		options.RateLimitPerMinute = 100
	}

	return &Server{
		options:     options,
		dispatcher:  dispatcher,
		registry:    registry,
		auth:        auth,
		metrics:     m,
		broadcaster: broadcaster,
		rateLimiter: NewRateLimiter(options.RateLimitPerMinute),
		logger:      logger,
		startTime:   time.Now(),
	}
}

// Routes builds the handler tree. Exposed separately so tests can mount it
// on httptest servers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /tools", s.handleListTools)
	mux.HandleFunc("POST /tools/call", s.handleCallTool)
	mux.HandleFunc("GET /tools/{tool}", s.handleToolDetail)
	mux.HandleFunc("GET /tools/{tool}/schema", s.handleToolSchema)
	mux.HandleFunc("GET /events", s.handleEvents)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	return s.middleware(mux)
}

// Start runs the server until Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.options.Host, s.options.Port),
		Handler: s.Routes(),
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting gateway HTTP server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start gateway server: %w", err)
	}

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	s.logger.Info().Msg("Shutting down gateway HTTP server")

	s.rateLimiter.Stop()
	if s.broadcaster != nil {
		s.broadcaster.Close()
	}

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown gateway server: %w", err)
	}

	s.logger.Info().Msg("Gateway HTTP server stopped")
	return nil
}

// middleware applies request id tagging, rate limiting, request logging and
// request metrics around the whole route tree.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID, _ := gonanoid.New()
		ip := s.clientIP(r)

		if r.URL.Path != "/health" && r.URL.Path != "/metrics" {
			if !s.rateLimiter.Allow(ip) {
				retryAfter := s.rateLimiter.RetryAfter(ip)
				s.logger.Warn().
					Str("request_id", requestID).
					Str("ip", ip).
					Str("path", r.URL.Path).
					Int("retry_after", retryAfter).
					Msg("Rate limit exceeded")
				if s.metrics != nil {
					s.metrics.RateLimitedTotal.Inc()
				}
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		if s.metrics != nil {
			s.metrics.RequestsTotal.WithLabelValues(r.URL.Path, fmt.Sprintf("%d", rec.status)).Inc()
		}

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("ip", ip).
			Int("status", rec.status).
			Dur("duration", duration).
			Msg("Request completed")
	})
}

// clientIP extracts the caller address, honoring proxy headers.
func (s *Server) clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// statusRecorder captures the response status for logging and metrics. It
// passes hijacking through so the websocket upgrade on /events still works.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rec.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}
