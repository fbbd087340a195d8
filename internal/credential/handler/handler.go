// Package handler exposes credential issuance and revocation under the batch routes.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agriqcert/internal/credential/models"
	"agriqcert/internal/credential/service"
	"agriqcert/pkg/domain"
	"agriqcert/pkg/platform/httputil"
	"agriqcert/pkg/requestcontext"
)

type Service interface {
	IssueCredential(ctx context.Context, actor domain.Actor, batchID domain.BatchID, token string) (*service.IssueResult, error)
	RevokeCredential(ctx context.Context, actor domain.Actor, batchID domain.BatchID, reason string) (*models.Credential, error)
	CredentialForBatch(ctx context.Context, actor domain.Actor, batchID domain.BatchID) (*models.Credential, error)
}

// Handler serves the credential endpoints. Routes expect RequireAuth upstream;
// the external signing token, if any, is read from the request context.
type Handler struct {
	credentials Service
	logger      *slog.Logger
}

func New(credentials Service, logger *slog.Logger) *Handler {
	return &Handler{credentials: credentials, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/batches/{id}/credential", h.handleIssue)
	r.Get("/api/batches/{id}/credential", h.handleGet)
	r.Post("/api/batches/{id}/credential/revoke", h.handleRevoke)
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, id, ok := h.actorAndBatch(w, r)
	if !ok {
		return
	}

	res, err := h.credentials.IssueCredential(ctx, actor, id, requestcontext.SigningToken(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "credential issuance failed",
			"request_id", requestcontext.RequestID(ctx),
			"batch_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "credential issued",
		"request_id", requestcontext.RequestID(ctx),
		"batch_id", id.String(),
		"credential_id", res.Credential.ID.String(),
		"issuance_path", res.Credential.IssuancePath,
	)
	httputil.WriteJSON(w, http.StatusCreated, toIssueResponse(res))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, id, ok := h.actorAndBatch(w, r)
	if !ok {
		return
	}
	cred, err := h.credentials.CredentialForBatch(ctx, actor, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(cred))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, id, ok := h.actorAndBatch(w, r)
	if !ok {
		return
	}

	var reason string
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[RevokeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}
		reason = req.Reason
	}

	cred, err := h.credentials.RevokeCredential(ctx, actor, id, reason)
	if err != nil {
		h.logger.WarnContext(ctx, "credential revocation failed",
			"request_id", requestcontext.RequestID(ctx),
			"batch_id", id.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCredentialResponse(cred))
}

func (h *Handler) actorAndBatch(w http.ResponseWriter, r *http.Request) (domain.Actor, domain.BatchID, bool) {
	actor, err := httputil.RequireActor(r.Context(), h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return domain.Actor{}, domain.BatchID{}, false
	}
	id, err := domain.ParseBatchID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return domain.Actor{}, domain.BatchID{}, false
	}
	return actor, id, true
}
