package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	credmodels "agriqcert/internal/credential/models"
	"agriqcert/internal/credential/signing"
	credstore "agriqcert/internal/credential/store"
	"agriqcert/internal/verification/models"
	"agriqcert/internal/verification/service"
	"agriqcert/internal/verification/store"
	"agriqcert/pkg/domain"
	"agriqcert/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	router      chi.Router
	credentials *credstore.InMemoryStore
	importer    domain.Actor
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.credentials = credstore.NewInMemoryStore()
	svc := service.New(s.credentials, signing.NewStrategy(signing.WithLogger(logger)), store.NewInMemoryStore(),
		service.WithLogger(logger))

	h := New(svc, logger)
	s.router = chi.NewRouter()
	h.RegisterAuthenticated(s.router)
	h.RegisterPublic(s.router)

	s.importer = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleImporter}
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

func (s *HandlerSuite) seedCredential() *credmodels.Credential {
	issued := time.Now().UTC().Truncate(time.Millisecond)
	id := domain.NewCredentialID()
	doc := credmodels.Document{
		ID:             id.String(),
		Issuer:         "did:example:acme",
		IssuanceDate:   domain.FormatTimestamp(issued),
		ExpirationDate: domain.FormatTimestamp(issued.AddDate(1, 0, 0)),
		CredentialSubject: credmodels.Subject{
			ID:      "did:example:batch-1",
			Product: credmodels.Product{Name: "Tea", Quantity: "10 kg", Origin: "Sri Lanka"},
		},
	}
	s.Require().NoError(signing.SignLocal(&doc))
	raw, err := json.Marshal(doc)
	s.Require().NoError(err)
	cred := &credmodels.Credential{
		ID:        id,
		BatchID:   domain.NewBatchID(),
		Issuer:    "did:example:acme",
		IssuedAt:  issued,
		ExpiresAt: issued.AddDate(1, 0, 0),
		Status:    credmodels.StatusActive,
		Document:  raw,
	}
	s.Require().NoError(s.credentials.Create(context.Background(), cred))
	return cred
}

func (s *HandlerSuite) TestVerifyByID() {
	cred := s.seedCredential()

	w := s.do(nil, http.MethodGet, "/api/verify/"+cred.ID.String(), "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var eval models.Evaluation
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &eval))
	s.Equal(models.VerdictValid, eval.Verdict)
	s.Require().NotNil(eval.Summary)
	s.Equal("Sri Lanka → N/A", *eval.Summary.Route)

	w = s.do(nil, http.MethodGet, "/api/verify/nope", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"verdict":"NOT_FOUND"`)
	s.Contains(w.Body.String(), `"summary":null`)
}

func (s *HandlerSuite) TestVerifyUpload() {
	cred := s.seedCredential()

	s.Run("bare document", func() {
		w := s.do(nil, http.MethodPost, "/api/verify/upload", string(cred.Document))
		s.Require().Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"verdict":"VALID_OFFLINE"`)
	})

	s.Run("enveloped document", func() {
		w := s.do(&s.importer, http.MethodPost, "/api/verify/upload", `{"credential":`+string(cred.Document)+`}`)
		s.Require().Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"verdict":"VALID_OFFLINE"`)
	})

	s.Run("not an object", func() {
		w := s.do(nil, http.MethodPost, "/api/verify/upload", `"hello"`)
		s.Require().Equal(http.StatusOK, w.Code)
		s.Contains(w.Body.String(), `"verdict":"INVALID_SCHEMA"`)
	})

	s.Run("too large", func() {
		big := `{"id":"` + strings.Repeat("x", maxUploadBytes) + `"}`
		w := s.do(nil, http.MethodPost, "/api/verify/upload", big)
		s.Equal(http.StatusRequestEntityTooLarge, w.Code)
	})
}

func (s *HandlerSuite) TestActivity() {
	cred := s.seedCredential()
	for range 3 {
		s.do(&s.importer, http.MethodGet, "/api/verify/"+cred.ID.String(), "")
	}

	s.Run("requires an actor", func() {
		w := s.do(nil, http.MethodGet, "/api/verify/activity", "")
		s.Equal(http.StatusInternalServerError, w.Code)
	})

	s.Run("limited and newest first", func() {
		w := s.do(&s.importer, http.MethodGet, "/api/verify/activity?limit=2", "")
		s.Require().Equal(http.StatusOK, w.Code)
		var resp ActivityResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Len(resp.Entries, 2)
		s.Equal("IMPORTER", resp.Entries[0].Actor)
	})

	s.Run("bad limit", func() {
		w := s.do(&s.importer, http.MethodGet, "/api/verify/activity?limit=abc", "")
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func TestUnwrapCredential(t *testing.T) {
	assert.Equal(t, `{"id":"a"}`, string(unwrapCredential([]byte(`{"credential":{"id":"a"}}`))))
	assert.Equal(t, `{"credential":"a"}`, string(unwrapCredential([]byte(`{"credential":"a"}`))))
	assert.Equal(t, `{"id":"a"}`, string(unwrapCredential([]byte(`{"id":"a"}`))))
	assert.Equal(t, `[1]`, string(unwrapCredential([]byte(`[1]`))))
}
