// Package handlers implements the records HTTP endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/internal/api/restx"
	"github.com/danghamo/peoplerecords/internal/domain/person"
	"github.com/danghamo/peoplerecords/internal/domain/shared"
	"github.com/danghamo/peoplerecords/pkg/logger"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// RecordsService is the application layer the handler drives
type RecordsService interface {
	Create(ctx context.Context, p person.Person) (person.Person, error)
	Get(ctx context.Context, id person.ID) (person.Person, error)
	List(ctx context.Context) ([]person.Person, error)
	ListOrdered(ctx context.Context, order person.Order) ([]person.Person, error)
	UpdateAt(ctx context.Context, pathID person.ID, p person.Person) (person.Person, error)
	Delete(ctx context.Context, id person.ID) error
	ImportReader(ctx context.Context, r io.Reader) ([]person.Person, error)
}

// RecordsHandler handles /records requests
type RecordsHandler struct {
	logger  *logger.Logger
	service RecordsService
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(logger *logger.Logger, service RecordsService) *RecordsHandler {
	return &RecordsHandler{
		logger:  logger.WithComponent("records-handler"),
		service: service,
	}
}

// RecordResponse documents the record JSON shape for Swagger
type RecordResponse = person.Person

// HandleList returns every record in no particular order
// @Summary List records
// @Description Return every stored record, unordered
// @Tags records
// @Produce json
// @Success 200 {array} RecordResponse "All records"
// @Failure 500 {object} restx.ErrorResponse "Internal server error"
// @Router /records [get]
func (h *RecordsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	people, err := h.service.List(r.Context())
	if err != nil {
		restx.WithError(w, r, err)
		return
	}
	restx.WriteJSON(w, http.StatusOK, nonNil(people))
}

// HandleGet returns records sorted by an order keyword, or one record by id
// @Summary Get ordered records or one record
// @Description key is one of name, birthdate, gender, or an integer record id
// @Tags records
// @Produce json
// @Param key path string true "Order keyword or record id"
// @Success 200 {array} RecordResponse "Ordered records, or a single record object when key is an id"
// @Failure 400 {object} restx.ErrorResponse "Neither an order nor an id"
// @Failure 404 {object} restx.ErrorResponse "Record not found"
// @Router /records/{key} [get]
func (h *RecordsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if order, err := person.ParseOrder(key); err == nil {
		people, err := h.service.ListOrdered(r.Context(), order)
		if err != nil {
			restx.WithError(w, r, err)
			return
		}
		restx.WriteJSON(w, http.StatusOK, nonNil(people))
		return
	}

	id, err := strconv.Atoi(key)
	if err != nil {
		restx.WithError(w, r, shared.ErrInvalidArgumentf("%q is neither an order (%s) nor a record id", key, orderList()))
		return
	}

	p, err := h.service.Get(r.Context(), person.ID(id))
	if err != nil {
		restx.WithError(w, r, err)
		return
	}
	restx.WriteJSON(w, http.StatusOK, p)
}

// HandleCreateJSON stores a record given as JSON
// @Summary Create a record from JSON
// @Tags records
// @Accept json
// @Produce json
// @Param record body RecordResponse true "Record with id 0 or omitted"
// @Success 201 {object} RecordResponse "Created record"
// @Failure 400 {object} restx.ErrorResponse "Malformed body or non-zero id"
// @Router /records/json [post]
func (h *RecordsHandler) HandleCreateJSON(w http.ResponseWriter, r *http.Request) {
	p, err := decodeRecord(r)
	if err != nil {
		restx.WithError(w, r, err)
		return
	}

	stored, err := h.service.Create(r.Context(), p)
	if err != nil {
		restx.WithError(w, r, err)
		return
	}
	restx.WriteJSON(w, http.StatusCreated, stored)
}

// HandleCreateLines imports delimited text lines and returns the last
// record created
// @Summary Create records from delimited lines
// @Description Body is plain text, or a JSON string with Content-Type application/json. Each line holds last name, first name, gender, favorite color and date of birth separated by commas, pipes or spaces.
// @Tags records
// @Accept plain
// @Accept json
// @Produce json
// @Param line body string true "Delimited record line(s)"
// @Success 201 {object} RecordResponse "Last created record"
// @Failure 400 {object} restx.ErrorResponse "Malformed line"
// @Router /records [post]
func (h *RecordsHandler) HandleCreateLines(w http.ResponseWriter, r *http.Request) {
	body, err := readLineBody(r)
	if err != nil {
		restx.WithError(w, r, err)
		return
	}

	created, err := h.service.ImportReader(r.Context(), strings.NewReader(body))
	if err != nil {
		if len(created) > 0 {
			h.logger.FromContext(r.Context()).Info("Partial import",
				zap.Int("created", len(created)),
				zap.Error(err))
		}
		restx.WithError(w, r, err)
		return
	}
	if len(created) == 0 {
		restx.WithError(w, r, shared.ErrInvalidArgument("body holds no record lines"))
		return
	}

	restx.WriteJSON(w, http.StatusCreated, created[len(created)-1])
}

// HandleUpdate replaces a record wholesale
// @Summary Replace a record
// @Tags records
// @Accept json
// @Produce json
// @Param id path int true "Record id"
// @Param record body RecordResponse true "Full record; id must match the path"
// @Success 200 {object} RecordResponse "Updated record"
// @Failure 400 {object} restx.ErrorResponse "Malformed body or id mismatch"
// @Failure 404 {object} restx.ErrorResponse "Record not found"
// @Router /records/{id} [put]
func (h *RecordsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		restx.WithError(w, r, err)
		return
	}

	p, err := decodeRecord(r)
	if err != nil {
		restx.WithError(w, r, err)
		return
	}

	stored, err := h.service.UpdateAt(r.Context(), id, p)
	if err != nil {
		restx.WithError(w, r, err)
		return
	}
	restx.WriteJSON(w, http.StatusOK, stored)
}

// HandleDelete removes a record
// @Summary Delete a record
// @Tags records
// @Param id path int true "Record id"
// @Success 204 "Deleted"
// @Failure 400 {object} restx.ErrorResponse "Malformed id"
// @Failure 404 {object} restx.ErrorResponse "Record not found"
// @Router /records/{id} [delete]
func (h *RecordsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		restx.WithError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		restx.WithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (person.ID, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, shared.ErrInvalidArgumentf("record id %q is not an integer", raw)
	}
	return person.ID(id), nil
}

func decodeRecord(r *http.Request) (person.Person, error) {
	var p person.Person
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&p); err != nil {
		return person.Person{}, shared.ErrInvalidArgumentf("invalid record body: %v", err)
	}
	return p, nil
}

// readLineBody returns the raw text of the body, unwrapping a JSON string
// when the request is sent as application/json
func readLineBody(r *http.Request) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return "", shared.ErrInvalidArgumentf("read body: %v", err)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return string(data), nil
	}

	var line string
	if err := json.Unmarshal(data, &line); err != nil {
		return "", shared.ErrInvalidArgumentf("JSON body must be a string: %v", err)
	}
	return line, nil
}

func orderList() string {
	names := make([]string, 0, len(person.Orders))
	for _, o := range person.Orders {
		names = append(names, string(o))
	}
	return strings.Join(names, ", ")
}

// nonNil keeps empty results encoding as [] rather than null
func nonNil(people []person.Person) []person.Person {
	if people == nil {
		return []person.Person{}
	}
	return people
}
