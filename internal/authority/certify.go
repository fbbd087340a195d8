package authority

import (
	"context"
	"encoding/json"

	"agriqcert/internal/platform/tracer"
)

const (
	issuePath  = "/api/v1/credentials/issue"
	verifyPath = "/api/v1/credentials/verify"
)

// IssueRequest asks the signing authority to sign an unsigned credential.
type IssueRequest struct {
	Credential         json.RawMessage
	ProofPurpose       string
	VerificationMethod string
}

type issueBody struct {
	Credential json.RawMessage `json:"credential"`
	Options    issueOptions    `json:"options"`
}

type issueOptions struct {
	ProofPurpose       string `json:"proofPurpose"`
	VerificationMethod string `json:"verificationMethod"`
}

type issueResponse struct {
	VerifiableCredential json.RawMessage `json:"verifiableCredential"`
	Data                 *struct {
		VerifiableCredential json.RawMessage `json:"verifiableCredential"`
	} `json:"data"`
}

type verifyBody struct {
	VerifiableCredential json.RawMessage `json:"verifiableCredential"`
}

type verifyResponse struct {
	Verified *bool `json:"verified"`
}

// CertifyClient calls the external signing and verification authority.
type CertifyClient struct {
	c *client
}

func NewCertifyClient(cfg Config, opts ...Option) *CertifyClient {
	return &CertifyClient{c: newClient("certify", cfg, opts...)}
}

// Issue returns the signed credential document exactly as the authority produced it.
func (a *CertifyClient) Issue(ctx context.Context, req IssueRequest, token string) (json.RawMessage, error) {
	var resp issueResponse
	err := a.c.post(ctx, tracer.SpanCertifyIssue, issuePath, token, issueBody{
		Credential: req.Credential,
		Options: issueOptions{
			ProofPurpose:       req.ProofPurpose,
			VerificationMethod: req.VerificationMethod,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	doc := resp.VerifiableCredential
	if len(doc) == 0 && resp.Data != nil {
		doc = resp.Data.VerifiableCredential
	}
	if len(doc) == 0 || string(doc) == "null" {
		return nil, a.c.badResponse("response missing verifiableCredential")
	}
	return doc, nil
}

// Verify asks the authority whether document carries a valid proof.
func (a *CertifyClient) Verify(ctx context.Context, document json.RawMessage, token string) (bool, error) {
	var resp verifyResponse
	if err := a.c.post(ctx, tracer.SpanVerifyDelegate, verifyPath, token, verifyBody{VerifiableCredential: document}, &resp); err != nil {
		return false, err
	}
	if resp.Verified == nil {
		return false, a.c.badResponse("response missing verified")
	}
	return *resp.Verified, nil
}
