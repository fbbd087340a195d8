package service

import (
	"regexp"
	"strings"
	"time"

	batchmodels "agriqcert/internal/batch/models"
	"agriqcert/internal/credential/models"
	"agriqcert/pkg/domain"
)

const fallbackIssuerName = "qa-agency"

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// issuerDID returns configured when set, else did:example:<sanitized organization>.
func issuerDID(configured, organization string) string {
	if configured != "" {
		return configured
	}
	name := strings.Trim(nonAlphanumeric.ReplaceAllString(strings.ToLower(organization), "-"), "-")
	if name == "" {
		name = fallbackIssuerName
	}
	return "did:example:" + name
}

// buildDocument snapshots b into an unsigned credential document. b must
// carry its latest inspection.
func buildDocument(b batchmodels.Batch, id domain.CredentialID, issuer string, issuedAt, expiresAt time.Time) models.Document {
	subject := models.Subject{
		ID: "did:example:batch-" + b.ID.String(),
		Product: models.Product{
			Name:        b.ProductType,
			Variety:     b.Variety,
			BatchNumber: strings.ToUpper(b.ID.String()[:8]),
			Quantity:    b.Quantity.String() + " " + b.Unit,
			Origin:      b.OriginCountry,
			Destination: b.DestinationCountry,
		},
	}
	if insp := b.Inspection; insp != nil {
		subject.Inspection = &models.InspectionClaims{
			MoisturePercent: insp.MoisturePercent,
			PesticidePPM:    insp.PesticidePPM,
			OrganicStatus:   insp.OrganicStatus,
			ISOCode:         insp.ISOCode,
			Result:          string(insp.Result),
		}
	}
	return models.Document{
		Context:           models.DocumentContext,
		ID:                id.String(),
		Type:              models.DocumentType,
		Issuer:            models.Issuer(issuer),
		IssuanceDate:      domain.FormatTimestamp(issuedAt),
		ExpirationDate:    domain.FormatTimestamp(expiresAt),
		CredentialSubject: subject,
	}
}

// checkIssuable applies the issuance guards in order; the first failure wins.
// A CERTIFIED batch that still holds an ACTIVE credential reports the
// duplicate rather than the status.
func checkIssuable(b *batchmodels.Batch, hasActive bool) error {
	switch {
	case b.Status == batchmodels.StatusRejected:
		return errBatchRejected
	case b.Status == batchmodels.StatusCertified && hasActive:
		return errAlreadyIssued
	case b.Status != batchmodels.StatusInspected:
		return errBatchNotInspected
	case b.Inspection == nil || b.Inspection.Result != batchmodels.ResultPass:
		return errInspectionNotPassed
	case hasActive:
		return errAlreadyIssued
	}
	return nil
}

func inspectionID(b *batchmodels.Batch) domain.InspectionID {
	if b.Inspection == nil {
		return domain.InspectionID{}
	}
	return b.Inspection.ID
}
