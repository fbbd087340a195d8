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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	batchmodels "agriqcert/internal/batch/models"
	batchservice "agriqcert/internal/batch/service"
	batchstore "agriqcert/internal/batch/store"
	"agriqcert/internal/credential/service"
	"agriqcert/internal/credential/signing"
	"agriqcert/internal/credential/store"
	"agriqcert/internal/qrcode"
	"agriqcert/pkg/domain"
	platformsync "agriqcert/pkg/platform/sync"
	"agriqcert/pkg/requestcontext"
)

type HandlerSuite struct {
	suite.Suite
	router  chi.Router
	batches *batchservice.Service

	exporter domain.Actor
	qa       domain.Actor
	admin    domain.Actor
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mu := platformsync.NewShardedMutex()
	bs := batchstore.NewInMemoryStore()
	cs := store.NewInMemoryStore()

	s.batches = batchservice.New(bs, batchservice.NewShardedTx(mu, bs, nil))
	creds := service.New(bs, cs,
		service.NewShardedTx(mu, bs, cs, nil),
		signing.NewStrategy(signing.WithLogger(logger)),
		qrcode.New(),
		service.Config{PublicBaseURL: "https://agriqcert.test"},
		service.WithLogger(logger),
	)

	s.router = chi.NewRouter()
	New(creds, logger).Register(s.router)

	s.exporter = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleExporter}
	s.qa = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleQA, Organization: "Acme"}
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

func (s *HandlerSuite) inspectedBatch(result batchmodels.InspectionResult) string {
	ctx := context.Background()
	b, err := s.batches.CreateBatch(ctx, s.exporter, batchmodels.NewBatchInput{
		ProductType:        "Cocoa",
		Quantity:           decimal.NewFromInt(40),
		Unit:               "bags",
		OriginCountry:      "Ghana",
		DestinationCountry: "Belgium",
	})
	s.Require().NoError(err)
	_, err = s.batches.RecordInspection(ctx, s.qa, b.ID, batchmodels.InspectionInput{
		MoisturePercent: 7,
		PesticidePPM:    0,
		Result:          result,
	})
	s.Require().NoError(err)
	return b.ID.String()
}

func (s *HandlerSuite) TestIssueAndRevoke() {
	id := s.inspectedBatch(batchmodels.ResultPass)
	path := "/api/batches/" + id + "/credential"

	w := s.do(&s.qa, http.MethodPost, path, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var issued IssueResponse
	s.decode(w, &issued)
	s.Equal("ACTIVE", issued.Status)
	s.Equal(id, issued.BatchID)
	s.Equal("local_fallback", issued.IssuancePath)
	s.Equal("https://agriqcert.test/verify/"+issued.ID, issued.VerificationURL)
	s.NotEmpty(issued.Document)
	s.False(issued.WalletShared)

	w = s.do(&s.qa, http.MethodPost, path, "")
	s.Equal(http.StatusConflict, w.Code)
	s.Contains(w.Body.String(), "CREDENTIAL_ALREADY_ISSUED")

	w = s.do(&s.exporter, http.MethodGet, path, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var got CredentialResponse
	s.decode(w, &got)
	s.Equal(issued.ID, got.ID)

	w = s.do(&s.qa, http.MethodPost, path+"/revoke", "")
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(&s.admin, http.MethodPost, path+"/revoke", `{"reason":"Contaminated shipment"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var revoked CredentialResponse
	s.decode(w, &revoked)
	s.Equal("REVOKED", revoked.Status)
	s.Equal("Contaminated shipment", revoked.RevocationReason)
	s.NotEmpty(revoked.RevokedAt)

	w = s.do(&s.admin, http.MethodPost, path+"/revoke", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), "CREDENTIAL_NOT_FOUND")
}

func (s *HandlerSuite) TestIssueErrors() {
	s.Run("failed inspection", func() {
		id := s.inspectedBatch(batchmodels.ResultFail)
		w := s.do(&s.qa, http.MethodPost, "/api/batches/"+id+"/credential", "")
		s.Equal(http.StatusConflict, w.Code)
		s.Contains(w.Body.String(), "BATCH_REJECTED")
	})

	s.Run("exporter cannot issue", func() {
		id := s.inspectedBatch(batchmodels.ResultPass)
		w := s.do(&s.exporter, http.MethodPost, "/api/batches/"+id+"/credential", "")
		s.Equal(http.StatusForbidden, w.Code)
	})

	s.Run("malformed id", func() {
		w := s.do(&s.qa, http.MethodPost, "/api/batches/not-a-uuid/credential", "")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("no credential yet", func() {
		id := s.inspectedBatch(batchmodels.ResultPass)
		w := s.do(&s.admin, http.MethodGet, "/api/batches/"+id+"/credential", "")
		s.Equal(http.StatusNotFound, w.Code)
	})
}
