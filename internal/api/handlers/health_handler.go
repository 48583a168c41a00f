package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/internal/api/restx"
	"github.com/danghamo/peoplerecords/pkg/logger"
)

// Counter reports how many records are stored
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// HealthChecker probes a dependency
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler reports service health
type HealthHandler struct {
	logger  *logger.Logger
	counter Counter
	redis   HealthChecker
}

// NewHealthHandler creates a health handler. redis may be nil when the
// service runs without Redis.
func NewHealthHandler(logger *logger.Logger, counter Counter, redis HealthChecker) *HealthHandler {
	return &HealthHandler{
		logger:  logger.WithComponent("health-handler"),
		counter: counter,
		redis:   redis,
	}
}

// CheckStatus is the state of one dependency
type CheckStatus struct {
	Status string `json:"status" example:"up"`
	Error  string `json:"error,omitempty"`
}

// HealthResponse represents service health
type HealthResponse struct {
	Status  string                 `json:"status" example:"healthy"`
	Records int                    `json:"records"`
	Checks  map[string]CheckStatus `json:"checks,omitempty"`
}

// HandleHealth handles GET /health
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse "Healthy"
// @Failure 503 {object} HealthResponse "A dependency is down"
// @Router /health [get]
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{Status: "healthy", Checks: map[string]CheckStatus{}}
	status := http.StatusOK

	if h.redis != nil {
		if err := h.redis.HealthCheck(r.Context()); err != nil {
			h.logger.Error("Redis health check failed", zap.Error(err))
			response.Checks["redis"] = CheckStatus{Status: "down", Error: err.Error()}
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			response.Checks["redis"] = CheckStatus{Status: "up"}
		}
	}

	if status == http.StatusOK {
		count, err := h.counter.Count(r.Context())
		if err != nil {
			h.logger.Error("Record count failed", zap.Error(err))
			response.Checks["store"] = CheckStatus{Status: "down", Error: err.Error()}
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
		response.Records = count
	}

	restx.WriteJSON(w, status, response)
}
