package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"agriqcert/internal/credential/models"
	"agriqcert/pkg/domain"
	"agriqcert/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists credentials. The document column is JSON, not
// JSONB, so the issued text is kept byte for byte. The partial unique index
// idx_credentials_one_active backs the one-ACTIVE-per-batch rule.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx binds the store to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

const credentialColumns = `
	id, batch_id, issuer, issued_by, issued_at, expires_at, status, document,
	verification_url, portal_url, qr_code, issuance_path,
	revoked_at, revoked_by, revocation_reason`

func (s *PostgresStore) Create(ctx context.Context, c *models.Credential) error {
	query := `INSERT INTO credentials (` + credentialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	var revokedBy *uuid.UUID
	if c.RevokedBy != nil {
		u := uuid.UUID(*c.RevokedBy)
		revokedBy = &u
	}
	_, err := s.execer().ExecContext(ctx, query,
		uuid.UUID(c.ID),
		uuid.UUID(c.BatchID),
		c.Issuer,
		uuid.UUID(c.IssuedBy),
		c.IssuedAt,
		c.ExpiresAt,
		string(c.Status),
		[]byte(c.Document),
		c.VerificationURL,
		c.PortalURL,
		c.QRCode,
		string(c.IssuancePath),
		c.RevokedAt,
		revokedBy,
		c.RevocationReason,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.CredentialID) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = $1`
	return s.queryOne(ctx, "find credential by id", query, uuid.UUID(id))
}

func (s *PostgresStore) FindActiveByBatch(ctx context.Context, batchID domain.BatchID) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE batch_id = $1 AND status = 'ACTIVE'`
	return s.queryOne(ctx, "find active credential", query, uuid.UUID(batchID))
}

func (s *PostgresStore) LatestByBatch(ctx context.Context, batchID domain.BatchID) (*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials
		WHERE batch_id = $1
		ORDER BY issued_at DESC
		LIMIT 1`
	return s.queryOne(ctx, "find latest credential", query, uuid.UUID(batchID))
}

// RevokeActive is a single conditional update guarded by status = 'ACTIVE'.
func (s *PostgresStore) RevokeActive(ctx context.Context, batchID domain.BatchID, rev models.Revocation) (*models.Credential, error) {
	query := `UPDATE credentials
		SET status = 'REVOKED', revoked_at = $2, revoked_by = $3, revocation_reason = $4
		WHERE batch_id = $1 AND status = 'ACTIVE'
		RETURNING ` + credentialColumns
	return s.queryOne(ctx, "revoke credential", query,
		uuid.UUID(batchID), rev.At, uuid.UUID(rev.By), rev.Reason)
}

func (s *PostgresStore) queryOne(ctx context.Context, op, query string, args ...any) (*models.Credential, error) {
	c, err := scanCredential(s.execer().QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

type credentialRow interface {
	Scan(dest ...any) error
}

func scanCredential(row credentialRow) (*models.Credential, error) {
	var (
		c         models.Credential
		id        uuid.UUID
		batchID   uuid.UUID
		issuedBy  uuid.UUID
		status    string
		document  []byte
		path      string
		revokedAt sql.NullTime
		revokedBy uuid.NullUUID
	)
	if err := row.Scan(&id, &batchID, &c.Issuer, &issuedBy, &c.IssuedAt, &c.ExpiresAt, &status, &document,
		&c.VerificationURL, &c.PortalURL, &c.QRCode, &path,
		&revokedAt, &revokedBy, &c.RevocationReason); err != nil {
		return nil, err
	}
	c.ID = domain.CredentialID(id)
	c.BatchID = domain.BatchID(batchID)
	c.IssuedBy = domain.UserID(issuedBy)
	c.IssuedAt = c.IssuedAt.UTC()
	c.ExpiresAt = c.ExpiresAt.UTC()
	c.Status = models.Status(status)
	c.Document = document
	c.IssuancePath = models.IssuancePath(path)
	if revokedAt.Valid {
		t := revokedAt.Time.UTC()
		c.RevokedAt = &t
	}
	if revokedBy.Valid {
		u := domain.UserID(revokedBy.UUID)
		c.RevokedBy = &u
	}
	return &c, nil
}
