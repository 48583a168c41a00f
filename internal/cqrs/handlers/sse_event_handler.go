// Package handlers turns record change events into stream notifications.
package handlers

import (
	"context"

	wcqrs "github.com/ThreeDotsLabs/watermill/components/cqrs"
	"go.uber.org/zap"

	cqrsevents "github.com/danghamo/peoplerecords/internal/cqrs"
	"github.com/danghamo/peoplerecords/pkg/logger"
	"github.com/danghamo/peoplerecords/pkg/sse"
)

// SSEBroadcaster interface for broadcasting SSE messages
type SSEBroadcaster interface {
	BroadcastToAll(notification sse.Notification)
}

// SSEEventHandler handles events and converts them to SSE notifications
type SSEEventHandler struct {
	sseBroadcaster SSEBroadcaster
	logger         *logger.Logger
}

// NewSSEEventHandler creates a new SSE event handler
func NewSSEEventHandler(sseBroadcaster SSEBroadcaster, logger *logger.Logger) *SSEEventHandler {
	return &SSEEventHandler{
		sseBroadcaster: sseBroadcaster,
		logger:         logger.WithComponent("sse-event-handler"),
	}
}

// EventHandlers returns the Watermill handlers to register on the event bus
func (h *SSEEventHandler) EventHandlers() []wcqrs.EventHandler {
	return []wcqrs.EventHandler{
		wcqrs.NewEventHandler("SSERecordCreated", h.HandleRecordCreatedEvent),
		wcqrs.NewEventHandler("SSERecordUpdated", h.HandleRecordUpdatedEvent),
		wcqrs.NewEventHandler("SSERecordDeleted", h.HandleRecordDeletedEvent),
	}
}

// HandleRecordCreatedEvent broadcasts the full new record
func (h *SSEEventHandler) HandleRecordCreatedEvent(ctx context.Context, event *cqrsevents.RecordCreatedEvent) error {
	h.logger.Debug("Handling record created event",
		zap.Int("recordId", event.RecordID),
		zap.String("requestId", event.RequestID))

	h.sseBroadcaster.BroadcastToAll(sse.Notification{
		Event: cqrsevents.NotificationRecordCreated,
		Data: map[string]interface{}{
			"record_id":  event.RecordID,
			"record":     event.Record,
			"request_id": event.RequestID,
		},
		Timestamp: event.Timestamp,
	})
	return nil
}

// HandleRecordUpdatedEvent broadcasts the record and its changed fields
func (h *SSEEventHandler) HandleRecordUpdatedEvent(ctx context.Context, event *cqrsevents.RecordUpdatedEvent) error {
	h.logger.Debug("Handling record updated event",
		zap.Int("recordId", event.RecordID),
		zap.String("requestId", event.RequestID))

	h.sseBroadcaster.BroadcastToAll(sse.Notification{
		Event: cqrsevents.NotificationRecordUpdated,
		Data: map[string]interface{}{
			"record_id":  event.RecordID,
			"record":     event.Record,
			"changes":    event.Changes,
			"request_id": event.RequestID,
		},
		Timestamp: event.Timestamp,
	})
	return nil
}

// HandleRecordDeletedEvent broadcasts the removed id
func (h *SSEEventHandler) HandleRecordDeletedEvent(ctx context.Context, event *cqrsevents.RecordDeletedEvent) error {
	h.logger.Debug("Handling record deleted event",
		zap.Int("recordId", event.RecordID),
		zap.String("requestId", event.RequestID))

	h.sseBroadcaster.BroadcastToAll(sse.Notification{
		Event: cqrsevents.NotificationRecordDeleted,
		Data: map[string]interface{}{
			"record_id":  event.RecordID,
			"request_id": event.RequestID,
		},
		Timestamp: event.Timestamp,
	})
	return nil
}
