package signing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"agriqcert/internal/authority"
	"agriqcert/internal/credential/models"
)

//go:generate mockgen -source=strategy.go -destination=mocks/mocks.go -package=mocks DelegatedIssuer,DelegatedVerifier

// DelegatedIssuer signs credentials at an external authority.
type DelegatedIssuer interface {
	Issue(ctx context.Context, req authority.IssueRequest, token string) (json.RawMessage, error)
}

// DelegatedVerifier checks proofs at an external authority.
type DelegatedVerifier interface {
	Verify(ctx context.Context, document json.RawMessage, token string) (bool, error)
}

// Outcome is the tagged result of signing: which path ran and the document it produced.
type Outcome struct {
	Path     models.IssuancePath
	Document json.RawMessage
	// Parsed is the decoded Document, nil when a delegated document did not decode.
	Parsed *models.Document
	// DelegateErr is the delegated failure that forced the local path, if any.
	DelegateErr error
}

// VerifyOutcome is the tagged result of a signature check.
type VerifyOutcome struct {
	Path        models.IssuancePath
	Valid       bool
	DelegateErr error
}

type Option func(*Strategy)

func WithIssuer(i DelegatedIssuer) Option {
	return func(s *Strategy) {
		s.issuer = i
	}
}

func WithVerifier(v DelegatedVerifier) Option {
	return func(s *Strategy) {
		s.verifier = v
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Strategy) {
		s.logger = logger
	}
}

// Strategy chooses between delegated and local proofs. Delegation runs only
// when a client is configured and the caller supplied a token; any delegated
// failure falls back to the local path.
type Strategy struct {
	issuer   DelegatedIssuer
	verifier DelegatedVerifier
	logger   *slog.Logger
}

func NewStrategy(opts ...Option) *Strategy {
	s := &Strategy{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign produces the issued document for an unsigned draft.
func (s *Strategy) Sign(ctx context.Context, draft models.Document, token string) (Outcome, error) {
	var delegateErr error
	if s.issuer != nil && token != "" {
		out, err := s.signDelegated(ctx, draft, token)
		if err == nil {
			return out, nil
		}
		delegateErr = err
		s.logger.WarnContext(ctx, "delegated signing failed, using local placeholder proof",
			"credential_id", draft.ID,
			"error", err,
		)
	}

	doc := draft
	if err := SignLocal(&doc); err != nil {
		return Outcome{}, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal credential document: %w", err)
	}
	return Outcome{
		Path:        models.PathLocalFallback,
		Document:    raw,
		Parsed:      &doc,
		DelegateErr: delegateErr,
	}, nil
}

func (s *Strategy) signDelegated(ctx context.Context, draft models.Document, token string) (Outcome, error) {
	draft.Proof = nil
	unsigned, err := json.Marshal(draft)
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal credential draft: %w", err)
	}
	signed, err := s.issuer.Issue(ctx, authority.IssueRequest{
		Credential:         unsigned,
		ProofPurpose:       models.ProofPurpose,
		VerificationMethod: models.VerificationMethod(string(draft.Issuer)),
	}, token)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Path: models.PathDelegated, Document: signed}
	if parsed, perr := models.ParseDocument(signed); perr == nil {
		out.Parsed = parsed
	}
	return out, nil
}

// Verify checks the proof on raw. id and issuanceDate feed the local
// recomputation. A delegated verified=false is final; a delegated error
// falls back to the local check.
func (s *Strategy) Verify(ctx context.Context, raw json.RawMessage, doc *models.Document, id, issuanceDate, token string) VerifyOutcome {
	var delegateErr error
	if s.verifier != nil && token != "" {
		ok, err := s.verifier.Verify(ctx, raw, token)
		if err == nil {
			return VerifyOutcome{Path: models.PathDelegated, Valid: ok}
		}
		delegateErr = err
		s.logger.WarnContext(ctx, "delegated verification failed, recomputing locally",
			"credential_id", id,
			"error", err,
		)
	}
	return VerifyOutcome{
		Path:        models.PathLocalFallback,
		Valid:       VerifyLocal(doc, id, issuanceDate),
		DelegateErr: delegateErr,
	}
}
