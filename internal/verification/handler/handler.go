// Package handler serves the public verification endpoints and the activity feed.
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agriqcert/internal/verification/models"
	"agriqcert/pkg/domain"
	dErrors "agriqcert/pkg/domain-errors"
	"agriqcert/pkg/platform/httputil"
	"agriqcert/pkg/requestcontext"
)

const maxUploadBytes = 1 << 20

type Service interface {
	VerifyByID(ctx context.Context, actor domain.Actor, rawID, token string) (models.Evaluation, error)
	VerifyByUpload(ctx context.Context, actor domain.Actor, raw []byte, token string) (models.Evaluation, error)
	RecentActivity(ctx context.Context, limit int) ([]models.Activity, error)
}

type Handler struct {
	verifier Service
	logger   *slog.Logger
}

func New(verifier Service, logger *slog.Logger) *Handler {
	return &Handler{verifier: verifier, logger: logger}
}

// RegisterPublic mounts the verification routes. They expect OptionalAuth upstream.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/api/verify/{credentialId}", h.handleVerifyByID)
	r.Post("/api/verify/upload", h.handleVerifyUpload)
}

// RegisterAuthenticated mounts the activity feed. It expects RequireAuth upstream.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/api/verify/activity", h.handleActivity)
}

func (h *Handler) handleVerifyByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := requestcontext.Actor(ctx)

	eval, err := h.verifier.VerifyByID(ctx, actor, chi.URLParam(r, "credentialId"), requestcontext.SigningToken(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eval)
}

func (h *Handler) handleVerifyUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := requestcontext.Actor(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error":             "PAYLOAD_TOO_LARGE",
				"error_description": "credential document too large",
			})
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "failed to read request body"))
		return
	}

	eval, err := h.verifier.VerifyByUpload(ctx, actor, unwrapCredential(body), requestcontext.SigningToken(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eval)
}

func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := httputil.RequireActor(ctx, h.logger); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.verifier.RecentActivity(ctx, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ActivityResponse{Entries: entries})
}

type ActivityResponse struct {
	Entries []models.Activity `json:"entries"`
}

// unwrapCredential accepts either a bare document or {"credential": {...}}.
func unwrapCredential(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return body
	}
	var envelope struct {
		Credential json.RawMessage `json:"credential"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return body
	}
	inner := bytes.TrimSpace(envelope.Credential)
	if len(inner) > 0 && inner[0] == '{' {
		return inner
	}
	return body
}
