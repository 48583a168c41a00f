// Package api serves the records HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/internal/api/handlers"
	"github.com/danghamo/peoplerecords/internal/api/middleware"
	"github.com/danghamo/peoplerecords/pkg/logger"
	"github.com/danghamo/peoplerecords/pkg/sse"

	// Registers the OpenAPI document served under /swagger/
	_ "github.com/danghamo/peoplerecords/docs"
)

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	logger          *logger.Logger
	mux             *http.ServeMux
	recordsHandler  *handlers.RecordsHandler
	healthHandler   *handlers.HealthHandler
	sseBroadcaster  *sse.Broadcaster
	shutdownTimeout time.Duration
	rateLimit       *middleware.RateLimitConfig
	// stops background middleware goroutines
	cancel context.CancelFunc
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `json:"port"`
	Host            string        `json:"host"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	// RateLimit enables per-client rate limiting when set
	RateLimit *middleware.RateLimitConfig `json:"rate_limit,omitempty"`
}

// Dependencies are the components the server routes to
type Dependencies struct {
	Records     handlers.RecordsService
	Counter     handlers.Counter
	Broadcaster *sse.Broadcaster
	// Redis is checked by /health when set
	Redis handlers.HealthChecker
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, logger *logger.Logger, deps Dependencies) *Server {
	mux := http.NewServeMux()
	apiLogger := logger.WithComponent("api")

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}

	server := &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(config.Host, fmt.Sprint(config.Port)),
			Handler:      mux,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger:          apiLogger,
		mux:             mux,
		recordsHandler:  handlers.NewRecordsHandler(apiLogger, deps.Records),
		healthHandler:   handlers.NewHealthHandler(apiLogger, deps.Counter, deps.Redis),
		sseBroadcaster:  deps.Broadcaster,
		shutdownTimeout: shutdownTimeout,
		rateLimit:       config.RateLimit,
	}

	server.setupRoutes()
	server.setupMiddleware()

	return server
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)

	// Swagger documentation endpoint
	s.mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	s.mux.HandleFunc("GET /records", s.recordsHandler.HandleList)
	s.mux.HandleFunc("POST /records", s.recordsHandler.HandleCreateLines)
	s.mux.HandleFunc("POST /records/json", s.recordsHandler.HandleCreateJSON)
	s.mux.HandleFunc("GET /records/{key}", s.recordsHandler.HandleGet)
	s.mux.HandleFunc("PUT /records/{id}", s.recordsHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /records/{id}", s.recordsHandler.HandleDelete)

	// The literal segment wins over GET /records/{key}
	if s.sseBroadcaster != nil {
		s.mux.HandleFunc("GET /records/stream", s.sseBroadcaster.HandleSSE)
	}
}

// setupMiddleware applies middleware to all routes
func (s *Server) setupMiddleware() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// ErrorAdapter sits inside Logging so the access log sees the error
	// status and the adapter sees the request id
	chain := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.CORS(),
		middleware.RequestID(),
		middleware.Logging(s.logger),
		middleware.ErrorAdapter(s.logger),
	}
	if s.rateLimit != nil {
		chain = append(chain, middleware.RateLimit(ctx, s.logger, *s.rateLimit))
	}

	s.httpServer.Handler = middleware.Chain(chain...)(s.mux)
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves HTTP until ctx is cancelled, then shuts down
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.httpServer.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.logger.Error("HTTP server error", zap.Error(err))
			s.cancel()
			return err
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.logger.Info("Shutting down HTTP server")
	defer s.cancel()

	// Shutdown SSE broadcaster first to close client connections
	if s.sseBroadcaster != nil {
		s.logger.Debug("Closing SSE broadcaster")
		s.sseBroadcaster.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// GetAddr returns the server address
func (s *Server) GetAddr() string {
	return s.httpServer.Addr
}
