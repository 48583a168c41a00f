// Package service holds the records application layer shared by the HTTP
// API and the console.
package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/internal/cqrs"
	"github.com/danghamo/peoplerecords/internal/domain/person"
	"github.com/danghamo/peoplerecords/internal/domain/shared"
	"github.com/danghamo/peoplerecords/internal/lineparser"
	"github.com/danghamo/peoplerecords/pkg/logger"
)

// RecordsService wraps a person repository and publishes a change event
// after every successful mutation
type RecordsService struct {
	repo      person.Repository
	publisher cqrs.EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

// NewRecordsService creates a records service. publisher may be nil, in
// which case no events are published.
func NewRecordsService(repo person.Repository, publisher cqrs.EventPublisher, log *logger.Logger) *RecordsService {
	return &RecordsService{
		repo:      repo,
		publisher: publisher,
		logger:    log.WithComponent("records-service"),
		now:       time.Now,
	}
}

// Create stores a new record
func (s *RecordsService) Create(ctx context.Context, p person.Person) (person.Person, error) {
	stored, err := s.repo.Create(ctx, p)
	if err != nil {
		return person.Person{}, err
	}

	s.logger.FromContext(ctx).WithRecordID(int(stored.ID)).Debug("Record created")
	s.publish(ctx, &cqrs.RecordCreatedEvent{
		RecordID:  int(stored.ID),
		Record:    stored,
		Timestamp: s.now(),
		RequestID: logger.RequestIDFromContext(ctx),
	})
	return stored, nil
}

// Get retrieves one record
func (s *RecordsService) Get(ctx context.Context, id person.ID) (person.Person, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves every record, unordered
func (s *RecordsService) List(ctx context.Context) ([]person.Person, error) {
	return s.repo.List(ctx)
}

// ListOrdered retrieves every record sorted by order
func (s *RecordsService) ListOrdered(ctx context.Context, order person.Order) ([]person.Person, error) {
	return s.repo.ListOrdered(ctx, order)
}

// Count returns the number of stored records
func (s *RecordsService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Update replaces a stored record wholesale
func (s *RecordsService) Update(ctx context.Context, p person.Person) (person.Person, error) {
	previous, err := s.repo.Get(ctx, p.ID)
	if err != nil {
		return person.Person{}, err
	}

	stored, err := s.repo.Update(ctx, p)
	if err != nil {
		return person.Person{}, err
	}

	changes, err := mergePatch(previous, stored)
	if err != nil {
		s.logger.FromContext(ctx).Warn("Failed to compute record changes",
			zap.Int("record_id", int(stored.ID)),
			zap.Error(err))
	}

	s.logger.FromContext(ctx).WithRecordID(int(stored.ID)).Debug("Record updated")
	s.publish(ctx, &cqrs.RecordUpdatedEvent{
		RecordID:  int(stored.ID),
		Record:    stored,
		Changes:   changes,
		Timestamp: s.now(),
		RequestID: logger.RequestIDFromContext(ctx),
	})
	return stored, nil
}

// UpdateAt replaces the record addressed by pathID. The body id must match.
func (s *RecordsService) UpdateAt(ctx context.Context, pathID person.ID, p person.Person) (person.Person, error) {
	if p.ID != pathID {
		return person.Person{}, shared.ErrInvalidArgumentf("record id %d does not match path id %d", p.ID, pathID)
	}
	return s.Update(ctx, p)
}

// Delete removes a record
func (s *RecordsService) Delete(ctx context.Context, id person.ID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.FromContext(ctx).WithRecordID(int(id)).Debug("Record deleted")
	s.publish(ctx, &cqrs.RecordDeletedEvent{
		RecordID:  int(id),
		Timestamp: s.now(),
		RequestID: logger.RequestIDFromContext(ctx),
	})
	return nil
}

// ImportLines parses and creates each line in order, stopping at the first
// failure. Records created before the failure stay stored.
func (s *RecordsService) ImportLines(ctx context.Context, lines []string) ([]person.Person, error) {
	created, err := lineparser.Import(ctx, lines, s)
	s.logImport(ctx, len(created), err)
	return created, err
}

// ImportReader imports every non-blank line read from r
func (s *RecordsService) ImportReader(ctx context.Context, r io.Reader) ([]person.Person, error) {
	created, err := lineparser.ImportReader(ctx, r, s)
	s.logImport(ctx, len(created), err)
	return created, err
}

func (s *RecordsService) logImport(ctx context.Context, created int, err error) {
	l := s.logger.FromContext(ctx)
	if err != nil {
		l.Warn("Import stopped", zap.Int("created", created), zap.Error(err))
		return
	}
	l.Debug("Import finished", zap.Int("created", created))
}

// publish sends event on the bus. Failures are logged, never returned.
func (s *RecordsService) publish(ctx context.Context, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.FromContext(ctx).Error("Failed to publish record event", zap.Error(err))
	}
}

// mergePatch returns the RFC 7386 merge patch turning previous into current
func mergePatch(previous, current person.Person) (map[string]interface{}, error) {
	before, err := json.Marshal(previous)
	if err != nil {
		return nil, err
	}
	after, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}

	patch, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		return nil, err
	}

	var changes map[string]interface{}
	if err := json.Unmarshal(patch, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// Ensure RecordsService can feed the line parser.
var _ lineparser.Creator = (*RecordsService)(nil)
