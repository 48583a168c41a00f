package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danghamo/peoplerecords/internal/api/restx"
	"github.com/danghamo/peoplerecords/internal/app/service"
	"github.com/danghamo/peoplerecords/internal/domain/person"
	"github.com/danghamo/peoplerecords/pkg/logger"
)

type recordsFixture struct {
	handler *RecordsHandler
	service *service.RecordsService
}

func newRecordsFixture(t *testing.T) recordsFixture {
	t.Helper()
	svc := service.NewRecordsService(person.NewMemoryRepository(), nil, logger.NewNop())
	return recordsFixture{
		handler: NewRecordsHandler(logger.NewNop(), svc),
		service: svc,
	}
}

func (f recordsFixture) seed(t *testing.T, lines ...string) []person.Person {
	t.Helper()
	created, err := f.service.ImportLines(context.Background(), lines)
	require.NoError(t, err)
	return created
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) restx.ErrorResponse {
	t.Helper()
	var body restx.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRecordsHandler_List(t *testing.T) {
	f := newRecordsFixture(t)

	rec := httptest.NewRecorder()
	f.handler.HandleList(rec, httptest.NewRequest(http.MethodGet, "/records", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	f.seed(t, "Smith,Ann,female,red,1990-03-04", "Jones,Bob,male,blue,1985-07-01")

	rec = httptest.NewRecorder()
	f.handler.HandleList(rec, httptest.NewRequest(http.MethodGet, "/records", nil))
	var people []person.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &people))
	assert.Len(t, people, 2)
}

func TestRecordsHandler_Get(t *testing.T) {
	f := newRecordsFixture(t)
	f.seed(t,
		"Smith,Ann,female,red,1990-03-04",
		"Jones,Bob,male,blue,1985-07-01",
		"Adams,Cat,female,green,2000-01-01",
	)

	get := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/records/"+key, nil)
		req.SetPathValue("key", key)
		rec := httptest.NewRecorder()
		f.handler.HandleGet(rec, req)
		return rec
	}

	lastNames := func(rec *httptest.ResponseRecorder) []string {
		var people []person.Person
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &people))
		names := make([]string, 0, len(people))
		for _, p := range people {
			names = append(names, p.LastName)
		}
		return names
	}

	t.Run("orders", func(t *testing.T) {
		assert.Equal(t, []string{"Smith", "Jones", "Adams"}, lastNames(get("name")))
		assert.Equal(t, []string{"Jones", "Smith", "Adams"}, lastNames(get("birthdate")))
		assert.Equal(t, []string{"Adams", "Smith", "Jones"}, lastNames(get("gender")))
	})

	t.Run("by id", func(t *testing.T) {
		rec := get("1")
		require.Equal(t, http.StatusOK, rec.Code)
		var p person.Person
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, person.ID(1), p.ID)
		assert.Equal(t, "Jones", p.LastName)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := get("99")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Error)
	})

	t.Run("neither order nor id", func(t *testing.T) {
		rec := get("age")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ARGUMENT", decodeError(t, rec).Error)
	})
}

func TestRecordsHandler_CreateJSON(t *testing.T) {
	f := newRecordsFixture(t)

	t.Run("creates record", func(t *testing.T) {
		body := `{"lastName":"Smith","firstName":"Ann","gender":"female","dateOfBirth":"1990-03-04T00:00:00-05:00","favoriteColor":"red"}`
		rec := httptest.NewRecorder()
		f.handler.HandleCreateJSON(rec, httptest.NewRequest(http.MethodPost, "/records/json", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		var p person.Person
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, person.ID(0), p.ID)
		assert.True(t, p.DateOfBirth.Equal(time.Date(1990, 3, 4, 5, 0, 0, 0, time.UTC)))
	})

	t.Run("rejects assigned id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleCreateJSON(rec, httptest.NewRequest(http.MethodPost, "/records/json",
			strings.NewReader(`{"id":4,"lastName":"Smith","dateOfBirth":"1990-03-04T00:00:00Z"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		f.handler.HandleCreateJSON(rec, httptest.NewRequest(http.MethodPost, "/records/json", strings.NewReader(`{"lastName":`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecordsHandler_CreateLines(t *testing.T) {
	post := func(f recordsFixture, contentType, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/records", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rec := httptest.NewRecorder()
		f.handler.HandleCreateLines(rec, req)
		return rec
	}

	t.Run("plain text line", func(t *testing.T) {
		f := newRecordsFixture(t)
		rec := post(f, "text/plain", "Smith | Ann | female | red | 1990-03-04")

		require.Equal(t, http.StatusCreated, rec.Code)
		var p person.Person
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, "Smith", p.LastName)
	})

	t.Run("JSON string line", func(t *testing.T) {
		f := newRecordsFixture(t)
		rec := post(f, "application/json; charset=utf-8", `"Smith Ann female red 1990-03-04"`)

		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("multiple lines return the last", func(t *testing.T) {
		f := newRecordsFixture(t)
		rec := post(f, "", "Smith,Ann,female,red,1990-03-04\nJones,Bob,male,blue,1985-07-01\n")

		require.Equal(t, http.StatusCreated, rec.Code)
		var p person.Person
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, person.ID(1), p.ID)
		assert.Equal(t, "Jones", p.LastName)
	})

	t.Run("malformed line keeps earlier lines", func(t *testing.T) {
		f := newRecordsFixture(t)
		rec := post(f, "", "Smith,Ann,female,red,1990-03-04\nlast-first-gender-color-1990-03-04")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "line 2")
		count, err := f.service.Count(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("empty body", func(t *testing.T) {
		f := newRecordsFixture(t)
		assert.Equal(t, http.StatusBadRequest, post(f, "", "  \n").Code)
	})

	t.Run("JSON body that is not a string", func(t *testing.T) {
		f := newRecordsFixture(t)
		assert.Equal(t, http.StatusBadRequest, post(f, "application/json", `{"line":"x"}`).Code)
	})
}

func TestRecordsHandler_Update(t *testing.T) {
	f := newRecordsFixture(t)
	f.seed(t, "Smith,Ann,female,red,1990-03-04")

	put := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/records/"+id, strings.NewReader(body))
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		f.handler.HandleUpdate(rec, req)
		return rec
	}

	t.Run("replaces record", func(t *testing.T) {
		rec := put("0", `{"id":0,"lastName":"Smythe","firstName":"Ann","gender":"female","dateOfBirth":"1990-03-04T00:00:00Z","favoriteColor":"blue"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		got, err := f.service.Get(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, "Smythe", got.LastName)
		assert.Equal(t, "blue", got.FavoriteColor)
	})

	t.Run("id mismatch", func(t *testing.T) {
		rec := put("0", `{"id":3,"lastName":"Smythe","dateOfBirth":"1990-03-04T00:00:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := put("8", `{"id":8,"lastName":"Smythe","dateOfBirth":"1990-03-04T00:00:00Z"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-integer id", func(t *testing.T) {
		rec := put("abc", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecordsHandler_Delete(t *testing.T) {
	f := newRecordsFixture(t)
	f.seed(t, "Smith,Ann,female,red,1990-03-04")

	del := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/records/"+id, nil)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()
		f.handler.HandleDelete(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, del("0").Code)
	assert.Equal(t, http.StatusNotFound, del("0").Code)
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	f := newRecordsFixture(t)
	f.seed(t, "Smith,Ann,female,red,1990-03-04")

	t.Run("memory store", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(logger.NewNop(), f.service, nil).HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"healthy","records":1}`, rec.Body.String())
	})

	t.Run("redis down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(logger.NewNop(), f.service, stubChecker{err: errors.New("dial tcp: refused")}).
			HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "down", body.Checks["redis"].Status)
	})
}
