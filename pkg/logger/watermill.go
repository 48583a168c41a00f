package logger

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// WatermillAdapter routes Watermill router and pub/sub logs into zap
type WatermillAdapter struct {
	logger *Logger
}

// NewWatermillAdapter creates a watermill.LoggerAdapter backed by l
func NewWatermillAdapter(l *Logger) *WatermillAdapter {
	return &WatermillAdapter{logger: l.WithComponent("watermill")}
}

func toZapFields(fields watermill.LogFields) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}

// Error implements watermill.LoggerAdapter
func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(toZapFields(fields), zap.Error(err))...)
}

// Info implements watermill.LoggerAdapter
func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, toZapFields(fields)...)
}

// Debug implements watermill.LoggerAdapter
func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, toZapFields(fields)...)
}

// Trace implements watermill.LoggerAdapter. Zap has no trace level.
func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, toZapFields(fields)...)
}

// With implements watermill.LoggerAdapter
func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{logger: &Logger{Logger: a.logger.Logger.With(toZapFields(fields)...)}}
}

// Ensure WatermillAdapter implements watermill.LoggerAdapter.
var _ watermill.LoggerAdapter = (*WatermillAdapter)(nil)
