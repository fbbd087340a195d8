package service

import (
	"time"

	credmodels "agriqcert/internal/credential/models"
	"agriqcert/internal/verification/models"
	"agriqcert/pkg/domain"
)

const unknownPlace = "N/A"

// notExpired is true while now has not passed expiresAt; the boundary
// instant itself is still valid.
func notExpired(now, expiresAt time.Time) bool {
	return !now.After(expiresAt)
}

// storedVerdict applies TAMPERED > REVOKED > EXPIRED > VALID.
func storedVerdict(c models.Checks) models.Verdict {
	switch {
	case !c.Signature:
		return models.VerdictTampered
	case !c.Revocation:
		return models.VerdictRevoked
	case !c.Expiry:
		return models.VerdictExpired
	}
	return models.VerdictValid
}

// uploadVerdict applies INVALID_SIGNATURE > EXPIRED > VALID_OFFLINE.
func uploadVerdict(c models.Checks) models.Verdict {
	switch {
	case !c.Signature:
		return models.VerdictInvalidSignature
	case !c.Expiry:
		return models.VerdictExpired
	}
	return models.VerdictValidOffline
}

func notFound() models.Evaluation {
	return models.Evaluation{Verdict: models.VerdictNotFound}
}

func invalidSchema() models.Evaluation {
	return models.Evaluation{Verdict: models.VerdictInvalidSchema}
}

// storedSummary projects a stored credential. Missing route ends become "N/A".
func storedSummary(c *credmodels.Credential, doc *credmodels.Document) *models.Summary {
	var subject credmodels.Subject
	if doc != nil {
		subject = doc.CredentialSubject
	}
	origin, destination := subject.Product.Origin, subject.Product.Destination
	if origin == "" {
		origin = unknownPlace
	}
	if destination == "" {
		destination = unknownPlace
	}
	route := origin + " → " + destination
	return &models.Summary{
		Issuer:       c.Issuer,
		BatchID:      c.BatchID.String(),
		CredentialID: c.ID.String(),
		ProductName:  subject.Product.Name,
		Quantity:     subject.Product.Quantity,
		Route:        &route,
		Inspection:   subject.Inspection,
		IssuedAt:     domain.FormatTimestamp(c.IssuedAt),
		ExpiresAt:    domain.FormatTimestamp(c.ExpiresAt),
	}
}

// uploadSummary projects an uploaded document. The route is nil without a
// destination; the batch reference is the subject id.
func uploadSummary(doc *credmodels.Document) *models.Summary {
	product := doc.CredentialSubject.Product
	var route *string
	if product.Destination != "" {
		origin := product.Origin
		if origin == "" {
			origin = unknownPlace
		}
		r := origin + " → " + product.Destination
		route = &r
	}
	return &models.Summary{
		Issuer:       string(doc.Issuer),
		BatchID:      doc.CredentialSubject.ID,
		CredentialID: doc.ID,
		ProductName:  product.Name,
		Quantity:     product.Quantity,
		Route:        route,
		Inspection:   doc.CredentialSubject.Inspection,
		IssuedAt:     doc.IssuanceDate,
		ExpiresAt:    doc.ExpirationDate,
	}
}

// parseUpload decodes an untrusted document. It fails on anything that is
// not a JSON object, on mistyped fields and on unparseable dates. A missing
// expirationDate yields a nil expiry.
func parseUpload(raw []byte) (*credmodels.Document, *time.Time, error) {
	doc, err := credmodels.ParseDocument(raw)
	if err != nil {
		return nil, nil, err
	}
	if doc.IssuanceDate != "" {
		if _, err := domain.ParseTimestamp(doc.IssuanceDate); err != nil {
			return nil, nil, err
		}
	}
	if doc.ExpirationDate == "" {
		return doc, nil, nil
	}
	exp, err := domain.ParseTimestamp(doc.ExpirationDate)
	if err != nil {
		return nil, nil, err
	}
	return doc, &exp, nil
}
