// Package restx writes JSON responses and carries handler errors to the
// ErrorAdapter middleware.
package restx

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/internal/domain/shared"
	"github.com/danghamo/peoplerecords/pkg/logger"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error" example:"NOT_FOUND"`
	Message string `json:"message" example:"record 3 not found"`
}

// StatusFor maps a domain error code to its HTTP status
func StatusFor(err error) int {
	switch shared.CodeOf(err) {
	case "":
		return http.StatusOK
	case shared.CodeInvalidArgument:
		return http.StatusBadRequest
	case shared.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON sends v as a JSON body with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// The status is already sent, so an encode failure can only be logged
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// SendError writes the error body for err. Internal errors never leak their
// message.
func SendError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	code := shared.CodeOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		code = shared.CodeInternal
		message = "Internal server error"
	}
	WriteJSON(w, status, ErrorResponse{Error: code, Message: message})
}

type errorHolderKey struct{}

type errorHolder struct {
	err error
}

// ContextWithErrorHolder prepares ctx to receive a handler error
func ContextWithErrorHolder(ctx context.Context) context.Context {
	return context.WithValue(ctx, errorHolderKey{}, &errorHolder{})
}

// ErrorFromContext returns the error a handler attached, if any
func ErrorFromContext(ctx context.Context) error {
	if holder, ok := ctx.Value(errorHolderKey{}).(*errorHolder); ok {
		return holder.err
	}
	return nil
}

// WithError hands err to the ErrorAdapter middleware. Without the middleware
// in the chain the error response is written immediately.
func WithError(w http.ResponseWriter, r *http.Request, err error) {
	if holder, ok := r.Context().Value(errorHolderKey{}).(*errorHolder); ok {
		holder.err = err
		return
	}
	SendError(w, err)
}
