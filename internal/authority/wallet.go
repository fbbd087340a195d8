package authority

import (
	"context"
	"encoding/json"

	"agriqcert/internal/platform/tracer"
)

const (
	sharePath = "/api/v1/credentials/share"

	// ShareNotification is the message the wallet sends to the recipient.
	ShareNotification = "Your Digital Product Passport has been issued"
)

type shareBody struct {
	Credential   json.RawMessage   `json:"credential"`
	Recipient    shareRecipient    `json:"recipient"`
	Notification shareNotification `json:"notification"`
}

type shareRecipient struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type shareNotification struct {
	Method  string `json:"method"`
	Message string `json:"message"`
}

type shareResponse struct {
	TransactionID string `json:"transactionId"`
	Message       string `json:"message"`
}

// ShareResult is the wallet's acknowledgement.
type ShareResult struct {
	Shared        bool
	TransactionID string
	Message       string
}

// WalletClient delivers issued credentials to a holder's wallet.
type WalletClient struct {
	c *client
}

func NewWalletClient(cfg Config, opts ...Option) *WalletClient {
	return &WalletClient{c: newClient("wallet", cfg, opts...)}
}

// Share sends document to the wallet of the holder identified by email.
func (w *WalletClient) Share(ctx context.Context, document json.RawMessage, email, token string) (*ShareResult, error) {
	var resp shareResponse
	err := w.c.post(ctx, tracer.SpanWalletSave, sharePath, token, shareBody{
		Credential: document,
		Recipient:  shareRecipient{Type: "email", Value: email},
		Notification: shareNotification{
			Method:  "email",
			Message: ShareNotification,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &ShareResult{Shared: true, TransactionID: resp.TransactionID, Message: resp.Message}, nil
}
