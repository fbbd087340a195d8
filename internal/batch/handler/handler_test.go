package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agriqcert/internal/batch/service"
	"agriqcert/internal/batch/store"
	"agriqcert/pkg/domain"
	platformsync "agriqcert/pkg/platform/sync"
	"agriqcert/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	router   chi.Router
	exporter domain.Actor
	qa       domain.Actor
	admin    domain.Actor
}

func (s *HandlerSuite) SetupTest() {
	st := store.NewInMemoryStore()
	svc := service.New(st, service.NewShardedTx(platformsync.NewShardedMutex(), st, nil))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(svc, logger).Register(s.router)

	s.exporter = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleExporter}
	s.qa = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleQA}
	s.admin = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleAdmin}
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(actor *domain.Actor, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if actor != nil {
		req = req.WithContext(requestcontext.WithActor(context.Background(), *actor))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v))
}

func (s *HandlerSuite) createBatch() BatchResponse {
	w := s.do(&s.exporter, http.MethodPost, "/api/batches",
		`{"productType":"Coffee","quantity":"120.5","unit":"kg","harvestDate":"2025-04-01","organicStatus":"organic","originCountry":"Kenya","destinationCountry":"Germany"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp BatchResponse
	s.decode(w, &resp)
	return resp
}

func (s *HandlerSuite) TestCreate() {
	s.Run("returns the submitted batch", func() {
		resp := s.createBatch()
		s.Equal("SUBMITTED", resp.Status)
		s.Equal("120.5", resp.Quantity.String())
		s.Equal("ORGANIC", resp.OrganicStatus)
		s.Equal("2025-04-01", resp.HarvestDate)
		s.Len(resp.History, 1)
	})

	s.Run("missing productType is a validation error", func() {
		w := s.do(&s.exporter, http.MethodPost, "/api/batches", `{"quantity":1,"unit":"kg"}`)
		s.Equal(http.StatusBadRequest, w.Code)
		var body map[string]string
		s.decode(w, &body)
		s.Equal("VALIDATION_ERROR", body["error"])
	})

	s.Run("zero quantity is rejected", func() {
		w := s.do(&s.exporter, http.MethodPost, "/api/batches", `{"productType":"Tea","quantity":0,"unit":"kg"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("QA cannot submit", func() {
		w := s.do(&s.qa, http.MethodPost, "/api/batches", `{"productType":"Tea","quantity":1,"unit":"kg"}`)
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("missing actor is an internal wiring error", func() {
		w := s.do(nil, http.MethodGet, "/api/batches", "")
		s.Equal(http.StatusInternalServerError, w.Code)
	})
}

func (s *HandlerSuite) TestLifecycle() {
	b := s.createBatch()
	base := "/api/batches/" + b.ID

	w := s.do(&s.admin, http.MethodPost, base+"/assign", `{"agency":"acme"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(&s.qa, http.MethodPost, base+"/schedule", `{"scheduledAt":"2025-07-01T09:00:00Z"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var scheduled BatchResponse
	s.decode(w, &scheduled)
	s.Equal("INSPECTION_SCHEDULED", scheduled.Status)
	s.Equal("2025-07-01T09:00:00.000Z", scheduled.ScheduledAt)

	w = s.do(&s.qa, http.MethodPost, base+"/inspection",
		`{"moisturePercent":11.2,"pesticidePPM":0.02,"isoCode":"ISO-22000","result":"pass"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var inspected BatchResponse
	s.decode(w, &inspected)
	s.Equal("INSPECTED", inspected.Status)
	s.Require().NotNil(inspected.Inspection)
	s.Equal("PASS", inspected.Inspection.Result)

	w = s.do(&s.exporter, http.MethodPost, base+"/documents",
		`{"documents":[{"category":"labReports","fileName":"lab.pdf","sizeBytes":10}]}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var withDocs BatchResponse
	s.decode(w, &withDocs)
	s.Len(withDocs.Documents, 1)
	s.Equal("New supporting documents uploaded", withDocs.History[len(withDocs.History)-1].Message)

	w = s.do(&s.exporter, http.MethodGet, base, "")
	s.Equal(http.StatusOK, w.Code)

	w = s.do(&s.exporter, http.MethodGet, "/api/batches", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var list ListResponse
	s.decode(w, &list)
	s.Len(list.Batches, 1)
}

func (s *HandlerSuite) TestInspectionErrors() {
	b := s.createBatch()
	path := "/api/batches/" + b.ID + "/inspection"

	s.Run("missing moisture is a validation error", func() {
		w := s.do(&s.qa, http.MethodPost, path, `{"pesticidePPM":0.1,"result":"PASS"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("pesticide above range is a validation error", func() {
		w := s.do(&s.qa, http.MethodPost, path, `{"moisturePercent":10,"pesticidePPM":11,"result":"PASS"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("malformed batch id is a bad request", func() {
		w := s.do(&s.qa, http.MethodPost, "/api/batches/nope/inspection", `{"moisturePercent":10,"pesticidePPM":1,"result":"PASS"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("unknown batch is not found", func() {
		w := s.do(&s.qa, http.MethodPost, "/api/batches/"+uuid.NewString()+"/inspection", `{"moisturePercent":10,"pesticidePPM":1,"result":"PASS"}`)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("second inspection after rejection is an invalid transition", func() {
		w := s.do(&s.qa, http.MethodPost, path, `{"moisturePercent":10,"pesticidePPM":1,"result":"FAIL"}`)
		s.Require().Equal(http.StatusOK, w.Code)
		w = s.do(&s.qa, http.MethodPost, path, `{"moisturePercent":10,"pesticidePPM":1,"result":"PASS"}`)
		s.Equal(http.StatusConflict, w.Code)
		var body map[string]string
		s.decode(w, &body)
		s.Equal("INVALID_TRANSITION", body["error"])
	})
}
