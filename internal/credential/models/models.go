package models

import (
	"encoding/json"
	"time"

	"agriqcert/pkg/domain"
)

// Status is the lifecycle state of an issued credential.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusRevoked Status = "REVOKED"
)

// IssuancePath records which branch produced the credential's proof.
type IssuancePath string

const (
	PathDelegated     IssuancePath = "delegated"
	PathLocalFallback IssuancePath = "local_fallback"
)

// DefaultRevocationReason is used when an admin revokes without giving a reason.
const DefaultRevocationReason = "Revoked by admin"

// Credential is an issued Digital Product Passport bound to one batch.
// Document holds the credential JSON exactly as issued.
type Credential struct {
	ID               domain.CredentialID
	BatchID          domain.BatchID
	Issuer           string
	IssuedBy         domain.UserID
	IssuedAt         time.Time
	ExpiresAt        time.Time
	Status           Status
	Document         json.RawMessage
	VerificationURL  string
	PortalURL        string
	QRCode           string
	IssuancePath     IssuancePath
	RevokedAt        *time.Time
	RevokedBy        *domain.UserID
	RevocationReason string
}

// Revocation is the metadata applied by a revoke.
type Revocation struct {
	At     time.Time
	By     domain.UserID
	Reason string
}

func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	out := *c
	out.Document = append(json.RawMessage(nil), c.Document...)
	if c.RevokedAt != nil {
		t := *c.RevokedAt
		out.RevokedAt = &t
	}
	if c.RevokedBy != nil {
		u := *c.RevokedBy
		out.RevokedBy = &u
	}
	return &out
}

// Revoked reports whether the credential has been revoked.
func (c *Credential) Revoked() bool {
	return c.Status == StatusRevoked
}
