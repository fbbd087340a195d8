package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"agriqcert/internal/batch/models"
	"agriqcert/pkg/domain"
	"agriqcert/pkg/platform/httputil"
	"agriqcert/pkg/requestcontext"
)

// Service defines the batch lifecycle operations exposed over HTTP.
type Service interface {
	CreateBatch(ctx context.Context, actor domain.Actor, in models.NewBatchInput) (*models.Batch, error)
	GetBatch(ctx context.Context, actor domain.Actor, id domain.BatchID) (*models.Batch, error)
	ListBatches(ctx context.Context, actor domain.Actor) ([]*models.Batch, error)
	AssignAgency(ctx context.Context, actor domain.Actor, id domain.BatchID, agency string) (*models.Batch, error)
	ScheduleInspection(ctx context.Context, actor domain.Actor, id domain.BatchID, at time.Time) (*models.Batch, error)
	RecordInspection(ctx context.Context, actor domain.Actor, id domain.BatchID, in models.InspectionInput) (*models.Batch, error)
	AppendDocuments(ctx context.Context, actor domain.Actor, id domain.BatchID, docs []models.DocumentInput) (*models.Batch, error)
}

// Handler serves the batch endpoints. Routes expect RequireAuth upstream.
type Handler struct {
	batches Service
	logger  *slog.Logger
}

func New(batches Service, logger *slog.Logger) *Handler {
	return &Handler{batches: batches, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/batches", h.handleCreate)
	r.Get("/api/batches", h.handleList)
	r.Get("/api/batches/{id}", h.handleGet)
	r.Post("/api/batches/{id}/documents", h.handleDocuments)
	r.Post("/api/batches/{id}/assign", h.handleAssign)
	r.Post("/api/batches/{id}/schedule", h.handleSchedule)
	r.Post("/api/batches/{id}/inspection", h.handleInspection)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, err := httputil.RequireActor(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateBatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	b, err := h.batches.CreateBatch(ctx, actor, req.ToInput())
	if err != nil {
		h.logFailure(ctx, "failed to create batch", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toBatchResponse(b))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := httputil.RequireActor(ctx, h.logger)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	batches, err := h.batches.ListBatches(ctx, actor)
	if err != nil {
		h.logFailure(ctx, "failed to list batches", err)
		httputil.WriteError(w, err)
		return
	}
	resp := ListResponse{Batches: make([]BatchResponse, 0, len(batches))}
	for _, b := range batches {
		resp.Batches = append(resp.Batches, toBatchResponse(b))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, id, ok := h.actorAndBatch(w, r)
	if !ok {
		return
	}
	b, err := h.batches.GetBatch(ctx, actor, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBatchResponse(b))
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, id, ok := h.actorAndBatch(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DocumentsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	b, err := h.batches.AppendDocuments(ctx, actor, id, req.ToInput())
	if err != nil {
		h.logFailure(ctx, "failed to append documents", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBatchResponse(b))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, id, ok := h.actorAndBatch(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	b, err := h.batches.AssignAgency(ctx, actor, id, req.Agency)
	if err != nil {
		h.logFailure(ctx, "failed to assign agency", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBatchResponse(b))
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, id, ok := h.actorAndBatch(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ScheduleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	b, err := h.batches.ScheduleInspection(ctx, actor, id, req.at)
	if err != nil {
		h.logFailure(ctx, "failed to schedule inspection", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBatchResponse(b))
}

func (h *Handler) handleInspection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, id, ok := h.actorAndBatch(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[InspectionRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	b, err := h.batches.RecordInspection(ctx, actor, id, req.ToInput())
	if err != nil {
		h.logFailure(ctx, "failed to record inspection", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toBatchResponse(b))
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

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
