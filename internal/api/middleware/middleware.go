package middleware

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/danghamo/peoplerecords/internal/api/restx"
	"github.com/danghamo/peoplerecords/pkg/logger"
)

// RequestIDHeader carries the request id in requests and responses
const RequestIDHeader = "X-Request-ID"

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in order (last applied, first executed)
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// RequestID middleware reuses the caller's X-Request-ID or generates one
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, id)

			next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
		})
	}
}

// Logging middleware
func Logging(logger *logger.Logger) Middleware {
	l := logger.WithComponent("logging-middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer that captures status code
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			l.FromContext(r.Context()).Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("status_code", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// CORS middleware
func CORS() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			w.Header().Set("Access-Control-Max-Age", "86400")

			// Handle preflight request
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Recovery middleware turns handler panics into a 500 response
func Recovery(logger *logger.Logger) Middleware {
	l := logger.WithComponent("recovery-middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					l.Error("HTTP handler panic",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					restx.SendError(w, fmt.Errorf("panic: %v", err))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// ErrorAdapter middleware writes the error a handler attached with
// restx.WithError as a JSON error body
func ErrorAdapter(logger *logger.Logger) Middleware {
	l := logger.WithComponent("error-adapter-middleware")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := restx.ContextWithErrorHolder(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))

			err := restx.ErrorFromContext(ctx)
			if err == nil {
				return
			}

			status := restx.StatusFor(err)
			if status >= http.StatusInternalServerError {
				l.FromContext(ctx).Error("Error encountered", zap.String("path", r.URL.Path), zap.Error(err))
			} else {
				l.FromContext(ctx).Debug("Request rejected",
					zap.String("path", r.URL.Path),
					zap.Int("status_code", status),
					zap.Error(err))
			}
			restx.SendError(w, err)
		})
	}
}

// RateLimitConfig sets the per-client token bucket
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// RateLimit middleware limits each client IP to a token bucket. Idle clients
// are forgotten after three minutes; the sweeper stops with ctx.
func RateLimit(ctx context.Context, logger *logger.Logger, cfg RateLimitConfig) Middleware {
	l := logger.WithComponent("ratelimit-middleware")

	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	// Cleanup old clients every minute
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mu.Lock()
				for ip, client := range clients {
					if time.Since(client.lastSeen) > 3*time.Minute {
						delete(clients, ip)
					}
				}
				mu.Unlock()
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)

			mu.Lock()
			if _, exists := clients[ip]; !exists {
				clients[ip] = &client{
					limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
				}
			}
			clients[ip].lastSeen = time.Now()
			limiter := clients[ip].limiter
			mu.Unlock()

			if !limiter.Allow() {
				l.Warn("Rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path),
				)

				restx.WriteJSON(w, http.StatusTooManyRequests, restx.ErrorResponse{
					Error:   "RATE_LIMITED",
					Message: "Rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code while preserving interfaces
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher interface for SSE support
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements http.Hijacker interface if the underlying ResponseWriter supports it
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, errors.New("responseWriter does not implement http.Hijacker")
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
