// Package service evaluates presented credentials and keeps the recent
// verification activity log.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"agriqcert/internal/audit"
	credmodels "agriqcert/internal/credential/models"
	"agriqcert/internal/credential/signing"
	"agriqcert/internal/platform/metrics"
	"agriqcert/internal/platform/tracer"
	"agriqcert/internal/verification/models"
	"agriqcert/pkg/domain"
	dErrors "agriqcert/pkg/domain-errors"
	"agriqcert/pkg/platform/sentinel"
	"agriqcert/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks CredentialReader,SignatureChecker,ActivityStore,AuditEmitter

// CredentialReader looks up stored credentials, returning sentinel.ErrNotFound when absent.
type CredentialReader interface {
	Get(ctx context.Context, id domain.CredentialID) (*credmodels.Credential, error)
}

// SignatureChecker checks a proof, delegating when it can and recomputing otherwise.
type SignatureChecker interface {
	Verify(ctx context.Context, raw json.RawMessage, doc *credmodels.Document, id, issuanceDate, token string) signing.VerifyOutcome
}

// ActivityStore is the bounded recent-verifications log.
type ActivityStore interface {
	Append(ctx context.Context, a models.Activity) error
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
}

type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditor(a AuditEmitter) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

type Service struct {
	credentials CredentialReader
	checker     SignatureChecker
	activity    ActivityStore
	auditor     AuditEmitter
	metrics     *metrics.Metrics
	tracer      tracer.Tracer
	logger      *slog.Logger
}

func New(credentials CredentialReader, checker SignatureChecker, activity ActivityStore, opts ...Option) *Service {
	s := &Service{
		credentials: credentials,
		checker:     checker,
		activity:    activity,
		tracer:      tracer.NewNoop(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyByID evaluates a stored credential. An unknown or malformed ID is a
// NOT_FOUND verdict, not an error. Every call is logged as activity.
func (s *Service) VerifyByID(ctx context.Context, actor domain.Actor, rawID, token string) (eval models.Evaluation, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanEvaluate, tracer.String(tracer.AttrCredentialID, rawID))
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrVerdict, string(eval.Verdict)))
		span.End(err)
	}()

	cred, err := s.lookup(ctx, rawID)
	if err != nil {
		return models.Evaluation{}, err
	}
	if cred == nil {
		eval = notFound()
	} else {
		eval = s.evaluateStored(ctx, cred, token)
	}

	s.record(ctx, actor, rawID, eval)
	s.metrics.IncVerification(string(eval.Verdict))
	s.emit(ctx, actor, audit.ActionVerificationPerformed, rawID, eval.Verdict)
	return eval, nil
}

func (s *Service) lookup(ctx context.Context, rawID string) (*credmodels.Credential, error) {
	id, err := domain.ParseCredentialID(strings.TrimPrefix(strings.TrimSpace(rawID), "urn:uuid:"))
	if err != nil {
		return nil, nil
	}
	cred, err := s.credentials.Get(ctx, id)
	switch {
	case err == nil:
		return cred, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return nil, nil
	}
	return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
}

func (s *Service) evaluateStored(ctx context.Context, cred *credmodels.Credential, token string) models.Evaluation {
	doc, err := credmodels.ParseDocument(cred.Document)
	if err != nil {
		s.logger.WarnContext(ctx, "stored credential document does not decode",
			"credential_id", cred.ID.String(),
			"error", err,
		)
		doc = nil
	}

	sig := s.checker.Verify(ctx, cred.Document, doc, cred.ID.String(), domain.FormatTimestamp(cred.IssuedAt), token)
	checks := models.Checks{
		Signature:  sig.Valid,
		Expiry:     notExpired(requestcontext.Now(ctx), cred.ExpiresAt),
		Revocation: !cred.Revoked(),
	}
	return models.Evaluation{
		Verdict:    storedVerdict(checks),
		Checks:     checks,
		Summary:    storedSummary(cred, doc),
		Credential: cred.Document,
		Path:       sig.Path,
	}
}

// VerifyByUpload evaluates an untrusted document. Revocation cannot be
// consulted and is reported as passed. Uploads are audited but not logged
// as activity.
func (s *Service) VerifyByUpload(ctx context.Context, actor domain.Actor, raw []byte, token string) (eval models.Evaluation, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanEvaluate)
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrVerdict, string(eval.Verdict)))
		span.End(err)
	}()

	var entityID string
	doc, expiresAt, perr := parseUpload(raw)
	if perr != nil {
		eval = invalidSchema()
	} else {
		entityID = doc.ID
		checks := models.Checks{
			Signature:  s.checker.Verify(ctx, raw, doc, doc.ID, doc.IssuanceDate, token).Valid,
			Expiry:     expiresAt == nil || notExpired(requestcontext.Now(ctx), *expiresAt),
			Revocation: true,
		}
		eval = models.Evaluation{
			Verdict:    uploadVerdict(checks),
			Checks:     checks,
			Summary:    uploadSummary(doc),
			Credential: json.RawMessage(raw),
		}
	}

	s.metrics.IncVerification(string(eval.Verdict))
	s.emit(ctx, actor, audit.ActionVerificationUpload, entityID, eval.Verdict)
	return eval, nil
}

// RecentActivity returns up to limit rows, most recent first. limit
// defaults to 20 and is capped at the retained capacity.
func (s *Service) RecentActivity(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = models.DefaultActivityLimit
	}
	limit = min(limit, models.ActivityCapacity)
	entries, err := s.activity.Recent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read verification activity")
	}
	return entries, nil
}

// record appends an activity row. The log is observability only, so a
// failed write is logged and dropped.
func (s *Service) record(ctx context.Context, actor domain.Actor, rawID string, eval models.Evaluation) {
	a := models.Activity{
		ID:           uuid.NewString(),
		CredentialID: rawID,
		Verdict:      eval.Verdict,
		CheckedAt:    requestcontext.Now(ctx).UTC().Truncate(time.Millisecond),
		Actor:        actorRole(actor),
	}
	if eval.Summary != nil {
		if eval.Summary.ProductName != "" {
			product := eval.Summary.ProductName
			a.Product = &product
		}
		a.Route = eval.Summary.Route
	}
	if err := s.activity.Append(ctx, a); err != nil {
		s.logger.WarnContext(ctx, "failed to record verification activity",
			"credential_id", rawID,
			"error", err,
		)
	}
}

func (s *Service) emit(ctx context.Context, actor domain.Actor, action audit.Action, entityID string, verdict models.Verdict) {
	if s.auditor == nil {
		return
	}
	var actorID string
	if !actor.Anonymous() {
		actorID = actor.ID.String()
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:     action,
		ActorID:    actorID,
		Role:       actorRole(actor),
		EntityType: audit.EntityCredential,
		EntityID:   entityID,
		Metadata:   map[string]string{"verdict": string(verdict)},
	})
}

func actorRole(actor domain.Actor) string {
	if actor.Anonymous() || actor.Role == "" {
		return models.AnonymousActor
	}
	return string(actor.Role)
}
