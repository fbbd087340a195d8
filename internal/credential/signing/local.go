// Package signing produces and checks credential proofs. The local proof is
// a placeholder: jws is a reversible encoding of id and issuance date, not a
// signature, and only contentDigest detects subject tampering.
package signing

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"agriqcert/internal/credential/models"
)

// Seed is base64url (unpadded) of "<id>:<issuanceDate>".
func Seed(id, issuanceDate string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id + ":" + issuanceDate))
}

// ContentDigest is the hex BLAKE2b-256 of the subject's JSON encoding.
func ContentDigest(subject models.Subject) (string, error) {
	raw, err := json.Marshal(subject)
	if err != nil {
		return "", fmt.Errorf("marshal credential subject: %w", err)
	}
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// SignLocal attaches a placeholder proof to doc.
func SignLocal(doc *models.Document) error {
	digest, err := ContentDigest(doc.CredentialSubject)
	if err != nil {
		return err
	}
	doc.Proof = &models.Proof{
		Type:               models.ProofType,
		Created:            doc.IssuanceDate,
		ProofPurpose:       models.ProofPurpose,
		VerificationMethod: models.VerificationMethod(string(doc.Issuer)),
		JWS:                Seed(doc.ID, doc.IssuanceDate),
		ContentDigest:      digest,
	}
	return nil
}

// VerifyLocal recomputes the placeholder proof. id and issuanceDate are the
// values the proof must bind; a missing one fails the check. When the proof
// carries a content digest, the presented subject must match it.
func VerifyLocal(doc *models.Document, id, issuanceDate string) bool {
	if doc == nil || doc.Proof == nil || id == "" || issuanceDate == "" {
		return false
	}
	if doc.Proof.JWS != Seed(id, issuanceDate) {
		return false
	}
	if doc.Proof.ContentDigest == "" {
		return true
	}
	digest, err := ContentDigest(doc.CredentialSubject)
	return err == nil && digest == doc.Proof.ContentDigest
}
