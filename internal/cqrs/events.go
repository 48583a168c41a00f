// Package cqrs defines the record change events and the Watermill bus that
// carries them.
package cqrs

import (
	"context"
	"time"

	"github.com/danghamo/peoplerecords/internal/domain/person"
)

// RecordCreatedEvent is published after a record is stored
type RecordCreatedEvent struct {
	RecordID  int           `json:"record_id"`
	Record    person.Person `json:"record"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id"`
}

// RecordUpdatedEvent is published after a record is replaced. Changes is a
// JSON merge patch from the previous to the new record.
type RecordUpdatedEvent struct {
	RecordID  int                    `json:"record_id"`
	Record    person.Person          `json:"record"`
	Changes   map[string]interface{} `json:"changes,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id"`
}

// RecordDeletedEvent is published after a record is removed
type RecordDeletedEvent struct {
	RecordID  int       `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Notification event names sent to stream clients
const (
	NotificationRecordCreated = "record.created"
	NotificationRecordUpdated = "record.updated"
	NotificationRecordDeleted = "record.deleted"
)

// EventPublisher interface for publishing events
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}
