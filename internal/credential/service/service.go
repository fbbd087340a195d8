// Package service issues, revokes and reads Digital Product Passport credentials.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agriqcert/internal/audit"
	"agriqcert/internal/authority"
	batchmodels "agriqcert/internal/batch/models"
	"agriqcert/internal/credential/models"
	"agriqcert/internal/credential/signing"
	"agriqcert/internal/platform/metrics"
	"agriqcert/internal/platform/tracer"
	"agriqcert/pkg/domain"
	dErrors "agriqcert/pkg/domain-errors"
	"agriqcert/pkg/platform/sentinel"
	"agriqcert/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks BatchStore,Store,Signer,QREncoder,WalletSharer,AuditEmitter

// BatchStore is the slice of the batch store that issuance needs.
type BatchStore interface {
	Get(ctx context.Context, id domain.BatchID) (*batchmodels.Batch, error)
	Update(ctx context.Context, b *batchmodels.Batch) error
	AppendHistory(ctx context.Context, id domain.BatchID, entry batchmodels.HistoryEntry) error
}

// Store persists credentials.
// Error contract: Create returns sentinel.ErrConflict when the batch already
// has an ACTIVE credential; lookups and RevokeActive return sentinel.ErrNotFound.
type Store interface {
	Create(ctx context.Context, c *models.Credential) error
	Get(ctx context.Context, id domain.CredentialID) (*models.Credential, error)
	FindActiveByBatch(ctx context.Context, batchID domain.BatchID) (*models.Credential, error)
	LatestByBatch(ctx context.Context, batchID domain.BatchID) (*models.Credential, error)
	RevokeActive(ctx context.Context, batchID domain.BatchID, rev models.Revocation) (*models.Credential, error)
}

// Signer produces the issued document for a draft.
type Signer interface {
	Sign(ctx context.Context, draft models.Document, token string) (signing.Outcome, error)
}

// QREncoder renders a URL as an image data URI.
type QREncoder interface {
	Encode(content string) (string, error)
}

// WalletSharer delivers an issued document to the holder's wallet.
type WalletSharer interface {
	Share(ctx context.Context, document json.RawMessage, email, token string) (*authority.ShareResult, error)
}

// AuditEmitter records audit events. Implementations must not fail the caller.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event)
}

// Config holds the issuance settings that end up inside issued documents.
type Config struct {
	// IssuerDID overrides the organization-derived issuer.
	IssuerDID string
	// PublicBaseURL prefixes the verification URL: <base>/verify/<id>.
	PublicBaseURL string
	// PortalURL is the verification portal: <portal>?credential=<id>.
	PortalURL string
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

// WithWallet enables the best-effort post-issuance wallet share.
func WithWallet(w WalletSharer) Option {
	return func(s *Service) {
		s.wallet = w
	}
}

func WithAgencyEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforceAgency = enabled
	}
}

type Service struct {
	batches       BatchStore
	credentials   Store
	tx            TxRunner
	signer        Signer
	qr            QREncoder
	wallet        WalletSharer
	auditor       AuditEmitter
	metrics       *metrics.Metrics
	tracer        tracer.Tracer
	logger        *slog.Logger
	cfg           Config
	enforceAgency bool
}

func New(batches BatchStore, credentials Store, tx TxRunner, signer Signer, qr QREncoder, cfg Config, opts ...Option) *Service {
	s := &Service{
		batches:     batches,
		credentials: credentials,
		tx:          tx,
		signer:      signer,
		qr:          qr,
		cfg:         cfg,
		tracer:      tracer.NewNoop(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg.PublicBaseURL = strings.TrimRight(s.cfg.PublicBaseURL, "/")
	return s
}

// IssueResult is an issued credential plus the outcome of the wallet share.
type IssueResult struct {
	Credential          *models.Credential
	WalletShared        bool
	WalletTransactionID string
}

// IssueCredential certifies an inspected batch. Signing happens before the
// transaction; the guards are re-checked inside it against fresh state.
func (s *Service) IssueCredential(ctx context.Context, actor domain.Actor, batchID domain.BatchID, token string) (result *IssueResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssue, tracer.String(tracer.AttrBatchID, batchID.String()))
	defer func() { span.End(err) }()

	if !actor.HasRole(domain.RoleQA, domain.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only QA can issue credentials")
	}

	b, err := s.visibleBatch(ctx, s.batches, actor, batchID)
	if err != nil {
		return nil, err
	}
	hasActive, err := s.hasActive(ctx, s.credentials, batchID)
	if err != nil {
		return nil, err
	}
	if err := checkIssuable(b, hasActive); err != nil {
		return nil, err
	}

	cred, err := s.prepare(ctx, actor, *b, token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		tracer.String(tracer.AttrCredentialID, cred.ID.String()),
		tracer.String(tracer.AttrSigningPath, string(cred.IssuancePath)),
	)

	var exporterEmail string
	err = s.tx.RunInTx(ctx, batchID.String(), func(ctx context.Context, st Stores) error {
		fresh, err := s.visibleBatch(ctx, st.Batches(), actor, batchID)
		if err != nil {
			return err
		}
		active, err := s.hasActive(ctx, st.Credentials(), batchID)
		if err != nil {
			return err
		}
		if err := checkIssuable(fresh, active); err != nil {
			return err
		}
		// The document was signed from b; it must still describe the latest inspection.
		if inspectionID(fresh) != inspectionID(b) {
			return errInspectionChanged
		}

		if err := st.Credentials().Create(ctx, cred); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return errAlreadyIssued
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store credential")
		}

		now := cred.IssuedAt
		fresh.Status = batchmodels.StatusCertified
		fresh.UpdatedAt = now
		if err := st.Batches().Update(ctx, fresh); err != nil {
			return translateBatchErr(err, "failed to certify batch")
		}
		entry := batchmodels.HistoryEntry{
			Status:    batchmodels.StatusCertified,
			Message:   "Credential issued by " + issuedByName(actor),
			CreatedAt: now,
		}
		if err := st.Batches().AppendHistory(ctx, batchID, entry); err != nil {
			return translateBatchErr(err, "failed to append history")
		}
		exporterEmail = fresh.ExporterEmail
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &IssueResult{Credential: cred}
	s.runPostCommit(ctx, postCommitHook{
		name: "wallet_share",
		fn: func(ctx context.Context) error {
			return s.shareToWallet(ctx, result, exporterEmail, token)
		},
	})

	s.metrics.IncCredentialIssued(string(cred.IssuancePath))
	s.emit(ctx, actor, audit.ActionCredentialIssued, cred.ID.String(), map[string]string{
		"batchId":      batchID.String(),
		"issuancePath": string(cred.IssuancePath),
		"walletShared": fmt.Sprint(result.WalletShared),
	})
	return result, nil
}

// prepare builds, signs and renders the credential record outside any transaction.
func (s *Service) prepare(ctx context.Context, actor domain.Actor, snapshot batchmodels.Batch, token string) (*models.Credential, error) {
	issuedAt := requestcontext.Now(ctx).UTC().Truncate(time.Millisecond)
	expiresAt := issuedAt.AddDate(1, 0, 0)
	id := domain.NewCredentialID()
	issuer := issuerDID(s.cfg.IssuerDID, actor.Organization)

	outcome, err := s.signer.Sign(ctx, buildDocument(snapshot, id, issuer, issuedAt, expiresAt), token)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign credential")
	}

	cred := &models.Credential{
		ID:           id,
		BatchID:      snapshot.ID,
		Issuer:       issuer,
		IssuedBy:     actor.ID,
		IssuedAt:     issuedAt,
		ExpiresAt:    expiresAt,
		Status:       models.StatusActive,
		Document:     outcome.Document,
		IssuancePath: outcome.Path,
	}
	if outcome.Path == models.PathDelegated && outcome.Parsed != nil {
		adoptDelegated(cred, outcome.Parsed)
	}

	cred.VerificationURL = s.cfg.PublicBaseURL + "/verify/" + cred.ID.String()
	if s.cfg.PortalURL != "" {
		cred.PortalURL = s.cfg.PortalURL + "?credential=" + cred.ID.String()
	}
	qr, err := s.qr.Encode(cred.VerificationURL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render QR code")
	}
	cred.QRCode = qr
	return cred, nil
}

// adoptDelegated takes the id, issuer and dates of an authority-signed
// document when they parse; otherwise the locally chosen values stay.
func adoptDelegated(cred *models.Credential, doc *models.Document) {
	if id, err := domain.ParseCredentialID(strings.TrimPrefix(doc.ID, "urn:uuid:")); err == nil {
		cred.ID = id
	}
	if doc.Issuer != "" {
		cred.Issuer = string(doc.Issuer)
	}
	if t, err := domain.ParseTimestamp(doc.IssuanceDate); err == nil {
		cred.IssuedAt = t.UTC()
	}
	if t, err := domain.ParseTimestamp(doc.ExpirationDate); err == nil {
		cred.ExpiresAt = t.UTC()
	}
}

func (s *Service) shareToWallet(ctx context.Context, result *IssueResult, email, token string) error {
	if s.wallet == nil || email == "" || token == "" {
		return nil
	}
	res, err := s.wallet.Share(ctx, result.Credential.Document, email, token)
	if err != nil {
		return err
	}
	result.WalletShared = res.Shared
	result.WalletTransactionID = res.TransactionID
	return nil
}

// RevokeCredential revokes the batch's ACTIVE credential. With nothing
// active it returns CodeCredentialNotFound and changes nothing. The batch
// stays CERTIFIED.
func (s *Service) RevokeCredential(ctx context.Context, actor domain.Actor, batchID domain.BatchID, reason string) (*models.Credential, error) {
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can revoke credentials")
	}
	if _, err := s.visibleBatch(ctx, s.batches, actor, batchID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = models.DefaultRevocationReason
	}

	cred, err := s.credentials.RevokeActive(ctx, batchID, models.Revocation{
		At:     requestcontext.Now(ctx).UTC().Truncate(time.Millisecond),
		By:     actor.ID,
		Reason: reason,
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errCredentialNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke credential")
	}

	s.metrics.IncCredentialRevoked()
	s.emit(ctx, actor, audit.ActionCredentialRevoked, cred.ID.String(), map[string]string{
		"batchId": batchID.String(),
		"reason":  reason,
	})
	return cred, nil
}

// GetCredential looks a credential up by ID with no visibility rule; the
// verification URL is public.
func (s *Service) GetCredential(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	cred, err := s.credentials.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errCredentialNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}
	return cred, nil
}

// CredentialForBatch returns the batch's most recent credential in any status.
func (s *Service) CredentialForBatch(ctx context.Context, actor domain.Actor, batchID domain.BatchID) (*models.Credential, error) {
	if _, err := s.visibleBatch(ctx, s.batches, actor, batchID); err != nil {
		return nil, err
	}
	cred, err := s.credentials.LatestByBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errCredentialNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load credential")
	}
	return cred, nil
}

func (s *Service) visibleBatch(ctx context.Context, st BatchStore, actor domain.Actor, id domain.BatchID) (*batchmodels.Batch, error) {
	b, err := st.Get(ctx, id)
	if err != nil {
		return nil, translateBatchErr(err, "failed to load batch")
	}
	if !b.VisibleTo(actor, s.enforceAgency) {
		return nil, errBatchNotFound
	}
	return b, nil
}

func (s *Service) hasActive(ctx context.Context, st Store, batchID domain.BatchID) (bool, error) {
	_, err := st.FindActiveByBatch(ctx, batchID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return false, nil
	}
	return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check active credential")
}

func (s *Service) emit(ctx context.Context, actor domain.Actor, action audit.Action, entityID string, metadata map[string]string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:     action,
		ActorID:    actor.ID.String(),
		Role:       string(actor.Role),
		EntityType: audit.EntityCredential,
		EntityID:   entityID,
		Metadata:   metadata,
	})
}

func translateBatchErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return errBatchNotFound
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func issuedByName(actor domain.Actor) string {
	if actor.Organization != "" {
		return actor.Organization
	}
	return "QA Team"
}
