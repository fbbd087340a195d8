package handler

import (
	"encoding/json"

	"agriqcert/internal/credential/models"
	"agriqcert/internal/credential/service"
	"agriqcert/pkg/domain"
)

type CredentialResponse struct {
	ID               string          `json:"id"`
	BatchID          string          `json:"batchId"`
	Issuer           string          `json:"issuer"`
	IssuedAt         string          `json:"issuedAt"`
	ExpiresAt        string          `json:"expiresAt"`
	Status           string          `json:"status"`
	IssuancePath     string          `json:"issuancePath"`
	VerificationURL  string          `json:"verificationUrl"`
	PortalURL        string          `json:"portalUrl,omitempty"`
	QRCode           string          `json:"qrCode"`
	Document         json.RawMessage `json:"vcJson"`
	RevokedAt        string          `json:"revokedAt,omitempty"`
	RevocationReason string          `json:"revocationReason,omitempty"`
}

// IssueResponse adds the wallet share outcome to the issued credential.
type IssueResponse struct {
	CredentialResponse
	WalletShared        bool   `json:"walletShared"`
	WalletTransactionID string `json:"walletTransactionId,omitempty"`
}

type RevokeRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func toCredentialResponse(c *models.Credential) CredentialResponse {
	resp := CredentialResponse{
		ID:               c.ID.String(),
		BatchID:          c.BatchID.String(),
		Issuer:           c.Issuer,
		IssuedAt:         domain.FormatTimestamp(c.IssuedAt),
		ExpiresAt:        domain.FormatTimestamp(c.ExpiresAt),
		Status:           string(c.Status),
		IssuancePath:     string(c.IssuancePath),
		VerificationURL:  c.VerificationURL,
		PortalURL:        c.PortalURL,
		QRCode:           c.QRCode,
		Document:         c.Document,
		RevocationReason: c.RevocationReason,
	}
	if c.RevokedAt != nil {
		resp.RevokedAt = domain.FormatTimestamp(*c.RevokedAt)
	}
	return resp
}

func toIssueResponse(res *service.IssueResult) IssueResponse {
	return IssueResponse{
		CredentialResponse:  toCredentialResponse(res.Credential),
		WalletShared:        res.WalletShared,
		WalletTransactionID: res.WalletTransactionID,
	}
}
