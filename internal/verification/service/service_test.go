package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"agriqcert/internal/audit"
	credmodels "agriqcert/internal/credential/models"
	"agriqcert/internal/credential/signing"
	signingmocks "agriqcert/internal/credential/signing/mocks"
	credstore "agriqcert/internal/credential/store"
	"agriqcert/internal/verification/models"
	"agriqcert/internal/verification/service/mocks"
	"agriqcert/internal/verification/store"
	"agriqcert/pkg/domain"
	dErrors "agriqcert/pkg/domain-errors"
	"agriqcert/pkg/platform/middleware/requesttime"
)

var issuedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestStoredVerdictPriority(t *testing.T) {
	cases := []struct {
		checks models.Checks
		want   models.Verdict
	}{
		{models.Checks{Signature: true, Expiry: true, Revocation: true}, models.VerdictValid},
		{models.Checks{Signature: false, Expiry: false, Revocation: false}, models.VerdictTampered},
		{models.Checks{Signature: false, Expiry: true, Revocation: true}, models.VerdictTampered},
		{models.Checks{Signature: true, Expiry: false, Revocation: false}, models.VerdictRevoked},
		{models.Checks{Signature: true, Expiry: true, Revocation: false}, models.VerdictRevoked},
		{models.Checks{Signature: true, Expiry: false, Revocation: true}, models.VerdictExpired},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, storedVerdict(tc.checks), "%+v", tc.checks)
	}
}

func TestUploadVerdictPriority(t *testing.T) {
	assert.Equal(t, models.VerdictValidOffline, uploadVerdict(models.Checks{Signature: true, Expiry: true, Revocation: true}))
	assert.Equal(t, models.VerdictInvalidSignature, uploadVerdict(models.Checks{Signature: false, Expiry: false, Revocation: true}))
	assert.Equal(t, models.VerdictExpired, uploadVerdict(models.Checks{Signature: true, Expiry: false, Revocation: true}))
}

func TestExpiryBoundary(t *testing.T) {
	expiresAt := issuedAt.AddDate(1, 0, 0)
	assert.True(t, notExpired(expiresAt.Add(-time.Microsecond), expiresAt))
	assert.True(t, notExpired(expiresAt, expiresAt))
	assert.False(t, notExpired(expiresAt.Add(time.Microsecond), expiresAt))
}

type ServiceSuite struct {
	suite.Suite
	ctx         context.Context
	credentials *credstore.InMemoryStore
	activity    *store.InMemoryStore
	auditStore  *audit.InMemoryStore
	logger      *slog.Logger
	service     *Service
	customs     domain.Actor
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requesttime.WithTime(context.Background(), issuedAt.Add(24*time.Hour))
	s.credentials = credstore.NewInMemoryStore()
	s.activity = store.NewInMemoryStore()
	s.auditStore = audit.NewInMemoryStore()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = s.newService(signing.NewStrategy(signing.WithLogger(s.logger)))
	s.customs = domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleCustoms}
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) newService(checker SignatureChecker) *Service {
	return New(s.credentials, checker, s.activity,
		WithLogger(s.logger),
		WithAuditor(audit.NewPublisher(s.auditStore)),
	)
}

// issueLocal stores an ACTIVE credential signed on the local path.
func (s *ServiceSuite) issueLocal() *credmodels.Credential {
	id := domain.NewCredentialID()
	batchID := domain.NewBatchID()
	doc := credmodels.Document{
		Context:        credmodels.DocumentContext,
		ID:             id.String(),
		Type:           credmodels.DocumentType,
		Issuer:         "did:example:acme",
		IssuanceDate:   domain.FormatTimestamp(issuedAt),
		ExpirationDate: domain.FormatTimestamp(issuedAt.AddDate(1, 0, 0)),
		CredentialSubject: credmodels.Subject{
			ID: "did:example:batch-" + batchID.String(),
			Product: credmodels.Product{
				Name:        "Basmati Rice",
				BatchNumber: "ABCD1234",
				Quantity:    "500 kg",
				Origin:      "India",
				Destination: "Netherlands",
			},
			Inspection: &credmodels.InspectionClaims{MoisturePercent: 12.5, PesticidePPM: 0.01, Result: "PASS"},
		},
	}
	s.Require().NoError(signing.SignLocal(&doc))
	raw, err := json.Marshal(doc)
	s.Require().NoError(err)

	cred := &credmodels.Credential{
		ID:           id,
		BatchID:      batchID,
		Issuer:       "did:example:acme",
		IssuedBy:     domain.UserID(uuid.New()),
		IssuedAt:     issuedAt,
		ExpiresAt:    issuedAt.AddDate(1, 0, 0),
		Status:       credmodels.StatusActive,
		Document:     raw,
		IssuancePath: credmodels.PathLocalFallback,
	}
	s.Require().NoError(s.credentials.Create(s.ctx, cred))
	return cred
}

// mutate decodes raw, applies fn, and re-encodes.
func (s *ServiceSuite) mutate(raw []byte, fn func(doc map[string]any)) []byte {
	var doc map[string]any
	s.Require().NoError(json.Unmarshal(raw, &doc))
	fn(doc)
	out, err := json.Marshal(doc)
	s.Require().NoError(err)
	return out
}

// Invariant: a locally issued, unmodified credential verifies as VALID.
func (s *ServiceSuite) TestVerifyByID_LocalRoundTrip() {
	cred := s.issueLocal()

	eval, err := s.service.VerifyByID(s.ctx, s.customs, cred.ID.String(), "")
	s.Require().NoError(err)
	s.Equal(models.VerdictValid, eval.Verdict)
	s.Equal(models.Checks{Signature: true, Expiry: true, Revocation: true}, eval.Checks)
	s.Equal(credmodels.PathLocalFallback, eval.Path)
	s.JSONEq(string(cred.Document), string(eval.Credential))

	s.Require().NotNil(eval.Summary)
	s.Equal("did:example:acme", eval.Summary.Issuer)
	s.Equal(cred.BatchID.String(), eval.Summary.BatchID)
	s.Equal(cred.ID.String(), eval.Summary.CredentialID)
	s.Equal("Basmati Rice", eval.Summary.ProductName)
	s.Equal("500 kg", eval.Summary.Quantity)
	s.Require().NotNil(eval.Summary.Route)
	s.Equal("India → Netherlands", *eval.Summary.Route)
	s.Require().NotNil(eval.Summary.Inspection)
	s.Equal("PASS", eval.Summary.Inspection.Result)
	s.Equal("2025-06-01T12:00:00.000Z", eval.Summary.IssuedAt)
	s.Equal("2026-06-01T12:00:00.000Z", eval.Summary.ExpiresAt)

	rows, err := s.service.RecentActivity(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(cred.ID.String(), rows[0].CredentialID)
	s.Equal(models.VerdictValid, rows[0].Verdict)
	s.Equal("CUSTOMS", rows[0].Actor)
	s.Require().NotNil(rows[0].Product)
	s.Equal("Basmati Rice", *rows[0].Product)

	events, err := s.auditStore.ListByEntity(s.ctx, cred.ID.String())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionVerificationPerformed, events[0].Action)
	s.Equal("VALID", events[0].Metadata["verdict"])
}

func (s *ServiceSuite) TestVerifyByID_NotFound() {
	for _, id := range []string{uuid.NewString(), "not-a-credential", ""} {
		eval, err := s.service.VerifyByID(s.ctx, domain.Actor{}, id, "")
		s.Require().NoError(err)
		s.Equal(models.VerdictNotFound, eval.Verdict)
		s.Equal(models.Checks{}, eval.Checks)
		s.Nil(eval.Summary)
		s.Nil(eval.Credential)
	}

	rows, err := s.service.RecentActivity(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal(models.AnonymousActor, rows[0].Actor)
	s.Nil(rows[0].Product)
	s.Nil(rows[0].Route)
}

func (s *ServiceSuite) TestVerifyByID_Revoked() {
	cred := s.issueLocal()
	_, err := s.credentials.RevokeActive(s.ctx, cred.BatchID, credmodels.Revocation{
		At:     issuedAt.Add(time.Hour),
		By:     domain.UserID(uuid.New()),
		Reason: "fraud",
	})
	s.Require().NoError(err)

	eval, err := s.service.VerifyByID(s.ctx, s.customs, cred.ID.String(), "")
	s.Require().NoError(err)
	s.Equal(models.VerdictRevoked, eval.Verdict)
	s.False(eval.Checks.Revocation)
	s.True(eval.Checks.Signature)
	s.True(eval.Checks.Expiry)
}

func (s *ServiceSuite) TestVerifyByID_ExpiryBoundary() {
	cred := s.issueLocal()

	atExpiry := requesttime.WithTime(context.Background(), cred.ExpiresAt)
	eval, err := s.service.VerifyByID(atExpiry, s.customs, cred.ID.String(), "")
	s.Require().NoError(err)
	s.Equal(models.VerdictValid, eval.Verdict)

	after := requesttime.WithTime(context.Background(), cred.ExpiresAt.Add(time.Microsecond))
	eval, err = s.service.VerifyByID(after, s.customs, cred.ID.String(), "")
	s.Require().NoError(err)
	s.Equal(models.VerdictExpired, eval.Verdict)
	s.False(eval.Checks.Expiry)
	s.True(eval.Checks.Signature)
}

// Invariant: a bad signature outranks revocation and expiry.
func (s *ServiceSuite) TestVerifyByID_TamperedOutranksRevoked() {
	cred := s.issueLocal()
	stored, err := s.credentials.Get(s.ctx, cred.ID)
	s.Require().NoError(err)

	tampered := s.mutate(stored.Document, func(doc map[string]any) {
		doc["proof"].(map[string]any)["jws"] = "forged"
	})
	forged := *cred
	forged.ID = domain.NewCredentialID()
	forged.BatchID = domain.NewBatchID()
	forged.Document = tampered
	forged.Status = credmodels.StatusRevoked
	s.Require().NoError(s.credentials.Create(s.ctx, &forged))

	expired := requesttime.WithTime(context.Background(), cred.ExpiresAt.AddDate(1, 0, 0))
	eval, err := s.service.VerifyByID(expired, s.customs, forged.ID.String(), "")
	s.Require().NoError(err)
	s.Equal(models.VerdictTampered, eval.Verdict)
	s.Equal(models.Checks{}, eval.Checks)
	s.NotNil(eval.Summary)
}

func (s *ServiceSuite) TestVerifyByID_Delegated() {
	ctrl := gomock.NewController(s.T())
	verifier := signingmocks.NewMockDelegatedVerifier(ctrl)
	svc := s.newService(signing.NewStrategy(signing.WithVerifier(verifier), signing.WithLogger(s.logger)))
	cred := s.issueLocal()

	s.Run("authority failure falls back to local recomputation", func() {
		verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), "token-1").
			Return(false, dErrors.New(dErrors.CodeExternalService, "verify call failed"))

		eval, err := svc.VerifyByID(s.ctx, s.customs, cred.ID.String(), "token-1")
		s.Require().NoError(err)
		s.Equal(models.VerdictValid, eval.Verdict)
		s.Equal(credmodels.PathLocalFallback, eval.Path)
	})

	s.Run("authority rejection is final", func() {
		verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), "token-1").Return(false, nil)

		eval, err := svc.VerifyByID(s.ctx, s.customs, cred.ID.String(), "token-1")
		s.Require().NoError(err)
		s.Equal(models.VerdictTampered, eval.Verdict)
		s.Equal(credmodels.PathDelegated, eval.Path)
	})

	s.Run("authority acceptance", func() {
		verifier.EXPECT().Verify(gomock.Any(), gomock.Any(), "token-1").Return(true, nil)

		eval, err := svc.VerifyByID(s.ctx, s.customs, cred.ID.String(), "token-1")
		s.Require().NoError(err)
		s.Equal(models.VerdictValid, eval.Verdict)
		s.Equal(credmodels.PathDelegated, eval.Path)
	})
}

func (s *ServiceSuite) TestVerifyByUpload() {
	cred := s.issueLocal()

	s.Run("untouched document verifies offline", func() {
		eval, err := s.service.VerifyByUpload(s.ctx, domain.Actor{}, cred.Document, "")
		s.Require().NoError(err)
		s.Equal(models.VerdictValidOffline, eval.Verdict)
		s.Equal(models.Checks{Signature: true, Expiry: true, Revocation: true}, eval.Checks)
		s.Require().NotNil(eval.Summary)
		s.Equal("did:example:batch-"+cred.BatchID.String(), eval.Summary.BatchID)
		s.Equal("India → Netherlands", *eval.Summary.Route)
	})

	s.Run("tampered subject fails the content digest", func() {
		raw := s.mutate(cred.Document, func(doc map[string]any) {
			doc["credentialSubject"].(map[string]any)["product"].(map[string]any)["quantity"] = "900 kg"
		})
		eval, err := s.service.VerifyByUpload(s.ctx, domain.Actor{}, raw, "")
		s.Require().NoError(err)
		s.Equal(models.VerdictInvalidSignature, eval.Verdict)
		s.Equal("900 kg", eval.Summary.Quantity)
	})

	s.Run("seed alone does not cover the subject", func() {
		raw := s.mutate(cred.Document, func(doc map[string]any) {
			delete(doc["proof"].(map[string]any), "contentDigest")
			doc["credentialSubject"].(map[string]any)["product"].(map[string]any)["quantity"] = "900 kg"
		})
		eval, err := s.service.VerifyByUpload(s.ctx, domain.Actor{}, raw, "")
		s.Require().NoError(err)
		s.Equal(models.VerdictValidOffline, eval.Verdict)
	})

	s.Run("changed issuance date breaks the seed", func() {
		raw := s.mutate(cred.Document, func(doc map[string]any) {
			doc["issuanceDate"] = "2025-06-02T12:00:00.000Z"
		})
		eval, err := s.service.VerifyByUpload(s.ctx, domain.Actor{}, raw, "")
		s.Require().NoError(err)
		s.Equal(models.VerdictInvalidSignature, eval.Verdict)
	})

	s.Run("expired upload", func() {
		later := requesttime.WithTime(context.Background(), cred.ExpiresAt.Add(time.Millisecond))
		eval, err := s.service.VerifyByUpload(later, domain.Actor{}, cred.Document, "")
		s.Require().NoError(err)
		s.Equal(models.VerdictExpired, eval.Verdict)
		s.True(eval.Checks.Revocation)
	})

	s.Run("missing expiration never expires", func() {
		raw := s.mutate(cred.Document, func(doc map[string]any) {
			delete(doc, "expirationDate")
			delete(doc["credentialSubject"].(map[string]any)["product"].(map[string]any), "destination")
		})
		far := requesttime.WithTime(context.Background(), issuedAt.AddDate(10, 0, 0))
		eval, err := s.service.VerifyByUpload(far, domain.Actor{}, raw, "")
		s.Require().NoError(err)
		s.Equal(models.VerdictValidOffline, eval.Verdict)
		s.Nil(eval.Summary.Route)
	})

	s.Run("missing id fails the signature", func() {
		raw := s.mutate(cred.Document, func(doc map[string]any) {
			delete(doc, "id")
		})
		eval, err := s.service.VerifyByUpload(s.ctx, domain.Actor{}, raw, "")
		s.Require().NoError(err)
		s.Equal(models.VerdictInvalidSignature, eval.Verdict)
	})

	s.Run("uploads leave no activity row", func() {
		rows, err := s.service.RecentActivity(s.ctx, 100)
		s.Require().NoError(err)
		s.Empty(rows)

		events, err := s.auditStore.ListByEntity(s.ctx, cred.ID.String())
		s.Require().NoError(err)
		s.NotEmpty(events)
		s.Equal(audit.ActionVerificationUpload, events[0].Action)
	})
}

func (s *ServiceSuite) TestVerifyByUpload_InvalidSchema() {
	inputs := map[string]string{
		"array":          `[1,2]`,
		"string":         `"credential"`,
		"number":         `42`,
		"malformed":      `{"id":`,
		"mistyped id":    `{"id":12,"issuanceDate":"2025-06-01T12:00:00.000Z"}`,
		"mistyped proof": `{"id":"x","proof":"abc"}`,
		"bad date":       `{"id":"x","issuanceDate":"yesterday"}`,
		"bad expiry":     `{"id":"x","issuanceDate":"2025-06-01T12:00:00.000Z","expirationDate":"soon"}`,
	}
	for name, in := range inputs {
		s.Run(name, func() {
			eval, err := s.service.VerifyByUpload(s.ctx, domain.Actor{}, []byte(in), "")
			s.Require().NoError(err)
			s.Equal(models.VerdictInvalidSchema, eval.Verdict)
			s.Equal(models.Checks{}, eval.Checks)
			s.Nil(eval.Summary)
		})
	}
}

func (s *ServiceSuite) TestRecentActivityLimits() {
	for range models.ActivityCapacity + 10 {
		_, err := s.service.VerifyByID(s.ctx, s.customs, uuid.NewString(), "")
		s.Require().NoError(err)
	}

	rows, err := s.service.RecentActivity(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(rows, models.DefaultActivityLimit)

	rows, err = s.service.RecentActivity(s.ctx, 5)
	s.Require().NoError(err)
	s.Len(rows, 5)

	rows, err = s.service.RecentActivity(s.ctx, 1000)
	s.Require().NoError(err)
	s.Len(rows, models.ActivityCapacity)
}

func TestService_Failures(t *testing.T) {
	ctx := requesttime.WithTime(context.Background(), issuedAt)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("activity write failure does not fail verification", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		activity := mocks.NewMockActivityStore(ctrl)
		activity.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
		svc := New(credstore.NewInMemoryStore(), signing.NewStrategy(), activity, WithLogger(logger))

		eval, err := svc.VerifyByID(ctx, domain.Actor{}, uuid.NewString(), "")
		require.NoError(t, err)
		assert.Equal(t, models.VerdictNotFound, eval.Verdict)
	})

	t.Run("credential store failure is internal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		reader := mocks.NewMockCredentialReader(ctrl)
		reader.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
		svc := New(reader, signing.NewStrategy(), store.NewInMemoryStore(), WithLogger(logger))

		_, err := svc.VerifyByID(ctx, domain.Actor{}, uuid.NewString(), "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("activity read failure is internal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		activity := mocks.NewMockActivityStore(ctrl)
		activity.EXPECT().Recent(gomock.Any(), 20).Return(nil, errors.New("redis down"))
		svc := New(credstore.NewInMemoryStore(), signing.NewStrategy(), activity)

		_, err := svc.RecentActivity(ctx, 0)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
