package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"agriqcert/internal/batch/models"
	"agriqcert/pkg/domain"
	"agriqcert/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists batches and their inspections, history and documents.
type PostgresStore struct {
	db *sql.DB
	tx *sql.Tx
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresTx binds the store to an open transaction.
func NewPostgresTx(tx *sql.Tx) *PostgresStore {
	return &PostgresStore{tx: tx}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer() dbExecutor {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

const batchColumns = `
	id, exporter_id, exporter_email, product_type, grade, variety,
	quantity, unit, weight, weight_unit, farm_address, farmer_details,
	harvest_date, organic_status, container_details, origin_country,
	destination_country, notes, status, assigned_agency, scheduled_at,
	created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, b *models.Batch) error {
	query := `INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`
	_, err := s.execer().ExecContext(ctx, query,
		uuid.UUID(b.ID),
		uuid.UUID(b.ExporterID),
		b.ExporterEmail,
		b.ProductType,
		b.Grade,
		b.Variety,
		b.Quantity,
		b.Unit,
		b.Weight,
		b.WeightUnit,
		b.FarmAddress,
		b.FarmerDetails,
		b.HarvestDate,
		string(b.OrganicStatus),
		b.ContainerDetails,
		b.OriginCountry,
		b.DestinationCountry,
		b.Notes,
		string(b.Status),
		b.AssignedAgency,
		b.ScheduledAt,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	for _, h := range b.History {
		if err := s.AppendHistory(ctx, b.ID, h); err != nil {
			return err
		}
	}
	return nil
}

// Get loads the batch with its latest inspection, full history and documents.
func (s *PostgresStore) Get(ctx context.Context, id domain.BatchID) (*models.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	b, err := scanBatch(s.execer().QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find batch: %w", err)
	}
	if b.Inspection, err = s.latestInspection(ctx, id); err != nil {
		return nil, err
	}
	if b.History, err = s.history(ctx, id); err != nil {
		return nil, err
	}
	if b.Documents, err = s.documents(ctx, id); err != nil {
		return nil, err
	}
	return b, nil
}

// List returns batch headers, newest first. Inspection, history and documents are not loaded.
func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Batch, error) {
	var (
		where []string
		args  []any
	)
	if filter.ExporterID != nil {
		args = append(args, uuid.UUID(*filter.ExporterID))
		where = append(where, fmt.Sprintf("exporter_id = $%d", len(args)))
	}
	if filter.Agency != "" {
		args = append(args, filter.Agency)
		where = append(where, fmt.Sprintf("assigned_agency = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + batchColumns + ` FROM batches`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.execer().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []*models.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

// Update persists the mutable header fields.
func (s *PostgresStore) Update(ctx context.Context, b *models.Batch) error {
	query := `
		UPDATE batches
		SET status = $2, assigned_agency = $3, scheduled_at = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.execer().ExecContext(ctx, query,
		uuid.UUID(b.ID),
		string(b.Status),
		b.AssignedAgency,
		b.ScheduledAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) AddInspection(ctx context.Context, insp *models.Inspection) error {
	query := `
		INSERT INTO inspections (
			id, batch_id, moisture_percent, pesticide_ppm, organic_status,
			iso_code, result, notes, inspector_id, inspector_org, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer().ExecContext(ctx, query,
		uuid.UUID(insp.ID),
		uuid.UUID(insp.BatchID),
		insp.MoisturePercent,
		insp.PesticidePPM,
		insp.OrganicStatus,
		insp.ISOCode,
		string(insp.Result),
		insp.Notes,
		uuid.UUID(insp.InspectorID),
		insp.InspectorOrg,
		insp.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inspection: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendHistory(ctx context.Context, id domain.BatchID, entry models.HistoryEntry) error {
	query := `INSERT INTO batch_history (batch_id, status, message, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.execer().ExecContext(ctx, query, uuid.UUID(id), string(entry.Status), entry.Message, entry.CreatedAt); err != nil {
		return fmt.Errorf("append batch history: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddDocuments(ctx context.Context, id domain.BatchID, docs []models.Document) error {
	query := `
		INSERT INTO batch_documents (id, batch_id, category, file_name, mime_type, size_bytes, url, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, d := range docs {
		_, err := s.execer().ExecContext(ctx, query,
			uuid.UUID(d.ID),
			uuid.UUID(id),
			string(d.Category),
			d.FileName,
			d.MimeType,
			d.SizeBytes,
			d.URL,
			d.UploadedAt,
		)
		if err != nil {
			return fmt.Errorf("insert batch document: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) latestInspection(ctx context.Context, id domain.BatchID) (*models.Inspection, error) {
	query := `
		SELECT id, batch_id, moisture_percent, pesticide_ppm, organic_status,
			iso_code, result, notes, inspector_id, inspector_org, recorded_at
		FROM inspections
		WHERE batch_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	var (
		insp                       models.Inspection
		inspID, batchID, inspector uuid.UUID
		result                     string
	)
	err := s.execer().QueryRowContext(ctx, query, uuid.UUID(id)).Scan(
		&inspID,
		&batchID,
		&insp.MoisturePercent,
		&insp.PesticidePPM,
		&insp.OrganicStatus,
		&insp.ISOCode,
		&result,
		&insp.Notes,
		&inspector,
		&insp.InspectorOrg,
		&insp.RecordedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find inspection: %w", err)
	}
	insp.ID = domain.InspectionID(inspID)
	insp.BatchID = domain.BatchID(batchID)
	insp.InspectorID = domain.UserID(inspector)
	insp.Result = models.InspectionResult(result)
	insp.RecordedAt = insp.RecordedAt.UTC()
	return &insp, nil
}

func (s *PostgresStore) history(ctx context.Context, id domain.BatchID) ([]models.HistoryEntry, error) {
	rows, err := s.execer().QueryContext(ctx,
		`SELECT status, message, created_at FROM batch_history WHERE batch_id = $1 ORDER BY id`,
		uuid.UUID(id),
	)
	if err != nil {
		return nil, fmt.Errorf("list batch history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var (
			e      models.HistoryEntry
			status string
		)
		if err := rows.Scan(&status, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch history: %w", err)
		}
		e.Status = models.Status(status)
		e.CreatedAt = e.CreatedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch history: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) documents(ctx context.Context, id domain.BatchID) ([]models.Document, error) {
	rows, err := s.execer().QueryContext(ctx, `
		SELECT id, category, file_name, mime_type, size_bytes, url, uploaded_at
		FROM batch_documents
		WHERE batch_id = $1
		ORDER BY uploaded_at, id
	`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list batch documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var (
			d        models.Document
			docID    uuid.UUID
			category string
		)
		if err := rows.Scan(&docID, &category, &d.FileName, &d.MimeType, &d.SizeBytes, &d.URL, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan batch document: %w", err)
		}
		d.ID = domain.DocumentID(docID)
		d.Category = models.DocumentCategory(category)
		d.UploadedAt = d.UploadedAt.UTC()
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch documents: %w", err)
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*models.Batch, error) {
	var (
		b                    models.Batch
		id, exporterID       uuid.UUID
		organic, status      string
		harvest, scheduledAt sql.NullTime
	)
	err := row.Scan(
		&id,
		&exporterID,
		&b.ExporterEmail,
		&b.ProductType,
		&b.Grade,
		&b.Variety,
		&b.Quantity,
		&b.Unit,
		&b.Weight,
		&b.WeightUnit,
		&b.FarmAddress,
		&b.FarmerDetails,
		&harvest,
		&organic,
		&b.ContainerDetails,
		&b.OriginCountry,
		&b.DestinationCountry,
		&b.Notes,
		&status,
		&b.AssignedAgency,
		&scheduledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.ID = domain.BatchID(id)
	b.ExporterID = domain.UserID(exporterID)
	b.OrganicStatus = models.OrganicStatus(organic)
	b.Status = models.Status(status)
	b.HarvestDate = utcPtr(harvest)
	b.ScheduledAt = utcPtr(scheduledAt)
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return &b, nil
}

func utcPtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
