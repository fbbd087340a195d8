// Package service implements the batch lifecycle: submission, agency
// assignment, scheduling, inspection recording and document uploads.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"agriqcert/internal/audit"
	"agriqcert/internal/batch/models"
	"agriqcert/internal/platform/metrics"
	"agriqcert/pkg/domain"
	dErrors "agriqcert/pkg/domain-errors"
	"agriqcert/pkg/platform/sentinel"
	"agriqcert/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditEmitter

// Store persists batches.
// Error contract: Get, Update and the child-record methods return
// sentinel.ErrNotFound for an unknown batch; Create returns sentinel.ErrConflict
// for a duplicate ID.
type Store interface {
	Create(ctx context.Context, b *models.Batch) error
	Get(ctx context.Context, id domain.BatchID) (*models.Batch, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Batch, error)
	Update(ctx context.Context, b *models.Batch) error
	AddInspection(ctx context.Context, insp *models.Inspection) error
	AppendHistory(ctx context.Context, id domain.BatchID, entry models.HistoryEntry) error
	AddDocuments(ctx context.Context, id domain.BatchID, docs []models.Document) error
}

// AuditEmitter records audit events. Implementations must not fail the caller.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditor(a AuditEmitter) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAgencyEnforcement limits QA actors to batches assigned to their agency.
func WithAgencyEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforceAgency = enabled
	}
}

type Service struct {
	store         Store
	tx            TxRunner
	auditor       AuditEmitter
	metrics       *metrics.Metrics
	logger        *slog.Logger
	enforceAgency bool
}

func New(store Store, tx TxRunner, opts ...Option) *Service {
	s := &Service{store: store, tx: tx, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnforcesAgency reports whether QA visibility is limited to assigned batches.
func (s *Service) EnforcesAgency() bool {
	return s.enforceAgency
}

// CreateBatch registers a new SUBMITTED batch owned by the calling exporter.
func (s *Service) CreateBatch(ctx context.Context, actor domain.Actor, in models.NewBatchInput) (*models.Batch, error) {
	if !actor.HasRole(domain.RoleExporter, domain.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only exporters can submit batches")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if in.OrganicStatus == "" {
		in.OrganicStatus = models.NonOrganic
	}

	now := timestamp(ctx)
	b := &models.Batch{
		ID:                 domain.NewBatchID(),
		ExporterID:         actor.ID,
		ExporterEmail:      actor.Email,
		ProductType:        in.ProductType,
		Grade:              in.Grade,
		Variety:            in.Variety,
		Quantity:           in.Quantity,
		Unit:               in.Unit,
		Weight:             in.Weight,
		WeightUnit:         in.WeightUnit,
		FarmAddress:        in.FarmAddress,
		FarmerDetails:      in.FarmerDetails,
		HarvestDate:        in.HarvestDate,
		OrganicStatus:      in.OrganicStatus,
		ContainerDetails:   in.ContainerDetails,
		OriginCountry:      in.OriginCountry,
		DestinationCountry: in.DestinationCountry,
		Notes:              in.Notes,
		Status:             models.StatusSubmitted,
		CreatedAt:          now,
		UpdatedAt:          now,
		History: []models.HistoryEntry{{
			Status:    models.StatusSubmitted,
			Message:   "Batch submitted by exporter",
			CreatedAt: now,
		}},
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, s.translate(err, "failed to create batch")
	}

	s.metrics.IncBatchSubmitted()
	s.emit(ctx, actor, audit.ActionBatchSubmitted, b.ID, map[string]string{
		"productType": b.ProductType,
	})
	return b, nil
}

// GetBatch returns the batch if the actor may see it. Missing and invisible
// batches are indistinguishable.
func (s *Service) GetBatch(ctx context.Context, actor domain.Actor, id domain.BatchID) (*models.Batch, error) {
	return s.loadVisible(ctx, s.store, actor, id)
}

// ListBatches returns the batches visible to actor, newest first.
func (s *Service) ListBatches(ctx context.Context, actor domain.Actor) ([]*models.Batch, error) {
	var filter models.ListFilter
	switch actor.Role {
	case domain.RoleExporter:
		filter.ExporterID = &actor.ID
	case domain.RoleQA:
		if s.enforceAgency {
			if actor.AgencyID == "" {
				return []*models.Batch{}, nil
			}
			filter.Agency = actor.AgencyID
		}
	case domain.RoleAdmin, domain.RoleCustoms, domain.RoleImporter:
	default:
		return nil, dErrors.New(dErrors.CodeForbidden, "role cannot list batches")
	}

	batches, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, s.translate(err, "failed to list batches")
	}
	if batches == nil {
		batches = []*models.Batch{}
	}
	return batches, nil
}

// AssignAgency hands a submitted batch to a QA agency. Reassigning a batch
// that is already QA_ASSIGNED keeps its status.
func (s *Service) AssignAgency(ctx context.Context, actor domain.Actor, id domain.BatchID, agency string) (*models.Batch, error) {
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can assign QA agencies")
	}
	if agency == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "agency is required")
	}

	var result *models.Batch
	err := s.tx.RunInTx(ctx, id.String(), func(ctx context.Context, st Store) error {
		b, err := s.loadVisible(ctx, st, actor, id)
		if err != nil {
			return err
		}
		if b.Status != models.StatusQAAssigned && !models.CanTransition(b.Status, models.StatusQAAssigned) {
			return invalidTransition(b.Status, models.StatusQAAssigned)
		}
		b.AssignedAgency = agency
		result, err = s.advance(ctx, st, b, models.StatusQAAssigned, "Assigned to QA agency "+agency)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, actor, audit.ActionBatchAssigned, id, map[string]string{"agency": agency})
	return result, nil
}

// ScheduleInspection records the planned inspection time. A scheduled batch may be rescheduled.
func (s *Service) ScheduleInspection(ctx context.Context, actor domain.Actor, id domain.BatchID, at time.Time) (*models.Batch, error) {
	if !actor.HasRole(domain.RoleQA, domain.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only QA can schedule inspections")
	}
	if at.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "scheduledAt is required")
	}
	at = at.UTC().Truncate(time.Millisecond)

	var result *models.Batch
	err := s.tx.RunInTx(ctx, id.String(), func(ctx context.Context, st Store) error {
		b, err := s.loadVisible(ctx, st, actor, id)
		if err != nil {
			return err
		}
		if b.Status != models.StatusInspectionScheduled && !models.CanTransition(b.Status, models.StatusInspectionScheduled) {
			return invalidTransition(b.Status, models.StatusInspectionScheduled)
		}
		b.ScheduledAt = &at
		result, err = s.advance(ctx, st, b, models.StatusInspectionScheduled,
			"Inspection scheduled for "+domain.FormatTimestamp(at))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, actor, audit.ActionInspectionScheduled, id, map[string]string{
		"scheduledAt": domain.FormatTimestamp(at),
	})
	return result, nil
}

// RecordInspection stores the inspection and moves the batch to INSPECTED on
// PASS or REJECTED on FAIL. Inspection, status and history are written in one transaction.
func (s *Service) RecordInspection(ctx context.Context, actor domain.Actor, id domain.BatchID, in models.InspectionInput) (*models.Batch, error) {
	if !actor.HasRole(domain.RoleQA, domain.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only QA can record inspections")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	target := models.StatusInspected
	if in.Result == models.ResultFail {
		target = models.StatusRejected
	}

	var result *models.Batch
	err := s.tx.RunInTx(ctx, id.String(), func(ctx context.Context, st Store) error {
		b, err := s.loadVisible(ctx, st, actor, id)
		if err != nil {
			return err
		}
		if !models.CanTransition(b.Status, target) {
			return invalidTransition(b.Status, target)
		}

		insp := &models.Inspection{
			ID:              domain.NewInspectionID(),
			BatchID:         b.ID,
			MoisturePercent: in.MoisturePercent,
			PesticidePPM:    in.PesticidePPM,
			OrganicStatus:   in.OrganicStatus,
			ISOCode:         in.ISOCode,
			Result:          in.Result,
			Notes:           in.Notes,
			InspectorID:     actor.ID,
			InspectorOrg:    actor.Organization,
			RecordedAt:      timestamp(ctx),
		}
		if err := st.AddInspection(ctx, insp); err != nil {
			return s.translate(err, "failed to record inspection")
		}
		b.Inspection = insp
		result, err = s.advance(ctx, st, b, target, fmt.Sprintf("Inspection recorded (%s)", in.Result))
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncInspection(string(in.Result))
	s.emit(ctx, actor, audit.ActionInspectionRecorded, id, map[string]string{
		"result": string(in.Result),
		"status": string(target),
	})
	return result, nil
}

// AppendDocuments attaches supporting documents. Only the owning exporter or an
// admin may upload; the status is unchanged but a history entry is appended.
func (s *Service) AppendDocuments(ctx context.Context, actor domain.Actor, id domain.BatchID, docs []models.DocumentInput) (*models.Batch, error) {
	if !actor.HasRole(domain.RoleExporter, domain.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the exporter can upload documents")
	}
	if len(docs) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one document is required")
	}

	var result *models.Batch
	err := s.tx.RunInTx(ctx, id.String(), func(ctx context.Context, st Store) error {
		b, err := s.loadVisible(ctx, st, actor, id)
		if err != nil {
			return err
		}
		if actor.Role == domain.RoleExporter && !b.OwnedBy(actor) {
			return dErrors.New(dErrors.CodeNotFound, "batch not found")
		}

		now := timestamp(ctx)
		stored := make([]models.Document, 0, len(docs))
		for _, d := range docs {
			stored = append(stored, models.Document{
				ID:         domain.NewDocumentID(),
				Category:   models.ParseDocumentCategory(d.Category),
				FileName:   d.FileName,
				MimeType:   d.MimeType,
				SizeBytes:  d.SizeBytes,
				URL:        d.URL,
				UploadedAt: now,
			})
		}
		if err := st.AddDocuments(ctx, b.ID, stored); err != nil {
			return s.translate(err, "failed to store documents")
		}
		b.Documents = append(b.Documents, stored...)
		result, err = s.advance(ctx, st, b, b.Status, "New supporting documents uploaded")
		return err
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, actor, audit.ActionBatchDocumentsUploaded, id, map[string]string{
		"count": fmt.Sprint(len(docs)),
	})
	return result, nil
}

// advance sets the status, persists the header and appends a history entry.
func (s *Service) advance(ctx context.Context, st Store, b *models.Batch, to models.Status, message string) (*models.Batch, error) {
	now := timestamp(ctx)
	b.Status = to
	b.UpdatedAt = now
	if err := st.Update(ctx, b); err != nil {
		return nil, s.translate(err, "failed to update batch")
	}
	entry := models.HistoryEntry{Status: to, Message: message, CreatedAt: now}
	if err := st.AppendHistory(ctx, b.ID, entry); err != nil {
		return nil, s.translate(err, "failed to append history")
	}
	b.History = append(b.History, entry)
	return b, nil
}

func (s *Service) loadVisible(ctx context.Context, st Store, actor domain.Actor, id domain.BatchID) (*models.Batch, error) {
	b, err := st.Get(ctx, id)
	if err != nil {
		return nil, s.translate(err, "failed to load batch")
	}
	if !b.VisibleTo(actor, s.enforceAgency) {
		return nil, dErrors.New(dErrors.CodeNotFound, "batch not found")
	}
	return b, nil
}

func (s *Service) translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "batch not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "batch already exists")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) emit(ctx context.Context, actor domain.Actor, action audit.Action, id domain.BatchID, metadata map[string]string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:     action,
		ActorID:    actor.ID.String(),
		Role:       string(actor.Role),
		EntityType: audit.EntityBatch,
		EntityID:   id.String(),
		Metadata:   metadata,
	})
}

func invalidTransition(from, to models.Status) error {
	return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("cannot move batch from %s to %s", from, to))
}

func timestamp(ctx context.Context) time.Time {
	return requestcontext.Now(ctx).UTC().Truncate(time.Millisecond)
}
