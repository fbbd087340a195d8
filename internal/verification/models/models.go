// Package models defines verification verdicts, evaluations and the activity log entry.
package models

import (
	"encoding/json"
	"time"

	credmodels "agriqcert/internal/credential/models"
)

type Verdict string

const (
	// Stored-record vocabulary.
	VerdictValid    Verdict = "VALID"
	VerdictTampered Verdict = "TAMPERED"
	VerdictRevoked  Verdict = "REVOKED"
	VerdictExpired  Verdict = "EXPIRED"
	VerdictNotFound Verdict = "NOT_FOUND"

	// Upload vocabulary. EXPIRED is shared.
	VerdictValidOffline     Verdict = "VALID_OFFLINE"
	VerdictInvalidSignature Verdict = "INVALID_SIGNATURE"
	VerdictInvalidSchema    Verdict = "INVALID_SCHEMA"
)

// Checks holds the individual check results. Each is true when the check passed.
type Checks struct {
	Signature  bool `json:"signature"`
	Expiry     bool `json:"expiry"`
	Revocation bool `json:"revocation"`
}

// Summary is the display projection of a credential's subject.
type Summary struct {
	Issuer       string                       `json:"issuer"`
	BatchID      string                       `json:"batchId"`
	CredentialID string                       `json:"credentialId"`
	ProductName  string                       `json:"productName"`
	Quantity     string                       `json:"quantity"`
	Route        *string                      `json:"route"`
	Inspection   *credmodels.InspectionClaims `json:"inspection"`
	IssuedAt     string                       `json:"issuedAt"`
	ExpiresAt    string                       `json:"expiresAt"`
}

// Evaluation is the outcome of one verification. Summary is nil for
// NOT_FOUND and INVALID_SCHEMA.
type Evaluation struct {
	Verdict    Verdict                 `json:"verdict"`
	Checks     Checks                  `json:"checks"`
	Summary    *Summary                `json:"summary"`
	Credential json.RawMessage         `json:"credential"`
	Path       credmodels.IssuancePath `json:"signaturePath,omitempty"`
}

// AnonymousActor is recorded for unauthenticated verifications.
const AnonymousActor = "ANON"

// Activity is one append-only verification log row.
type Activity struct {
	ID           string    `json:"id"`
	CredentialID string    `json:"credentialId"`
	Verdict      Verdict   `json:"verdict"`
	CheckedAt    time.Time `json:"checkedAt"`
	Actor        string    `json:"actor"`
	Product      *string   `json:"product"`
	Route        *string   `json:"route"`
}

const (
	// ActivityCapacity is how many activity rows are retained.
	ActivityCapacity     = 100
	DefaultActivityLimit = 20
)
