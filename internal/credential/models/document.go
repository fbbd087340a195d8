package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

var (
	DocumentContext = []string{
		"https://www.w3.org/2018/credentials/v1",
		"https://schema.org",
		"https://mosip.io/dpp/v1",
	}
	DocumentType = []string{"VerifiableCredential", "DigitalProductPassport"}
)

const (
	ProofType          = "Ed25519Signature2020"
	ProofPurpose       = "assertionMethod"
	verificationSuffix = "#key-1"
)

// Document is the credential JSON layout. Field order is the wire order.
type Document struct {
	Context           []string `json:"@context"`
	ID                string   `json:"id"`
	Type              []string `json:"type"`
	Issuer            Issuer   `json:"issuer"`
	IssuanceDate      string   `json:"issuanceDate"`
	ExpirationDate    string   `json:"expirationDate,omitempty"`
	CredentialSubject Subject  `json:"credentialSubject"`
	Proof             *Proof   `json:"proof,omitempty"`
}

type Subject struct {
	ID         string            `json:"id"`
	Product    Product           `json:"product"`
	Inspection *InspectionClaims `json:"inspection,omitempty"`
}

type Product struct {
	Name        string `json:"name"`
	Variety     string `json:"variety,omitempty"`
	BatchNumber string `json:"batchNumber"`
	Quantity    string `json:"quantity"`
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// InspectionClaims is the inspection snapshot embedded in the subject.
type InspectionClaims struct {
	MoisturePercent float64 `json:"moisturePercent"`
	PesticidePPM    float64 `json:"pesticidePPM"`
	OrganicStatus   string  `json:"organicStatus,omitempty"`
	ISOCode         string  `json:"isoCode,omitempty"`
	Result          string  `json:"result"`
}

// Proof carries the signature. JWS is a placeholder encoding on the local
// path; ContentDigest binds the subject content.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	ProofPurpose       string `json:"proofPurpose"`
	VerificationMethod string `json:"verificationMethod"`
	JWS                string `json:"jws"`
	ContentDigest      string `json:"contentDigest,omitempty"`
}

// VerificationMethod returns the key reference for an issuer DID.
func VerificationMethod(issuer string) string {
	return issuer + verificationSuffix
}

// Issuer accepts either a bare DID string or an object with an id, and
// always marshals as a string.
type Issuer string

func (i Issuer) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(i))
}

func (i *Issuer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*i = Issuer(obj.ID)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("issuer must be a string or an object with an id")
	}
	*i = Issuer(s)
	return nil
}

// ParseDocument decodes a credential document. The input must be a JSON object.
func ParseDocument(raw []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errors.New("credential document must be a JSON object")
	}
	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
