//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"agriqcert/internal/batch/models"
	"agriqcert/internal/batch/store"
	"agriqcert/pkg/domain"
	"agriqcert/pkg/platform/sentinel"
	"agriqcert/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(s.ctx))
}

func (s *PostgresStoreSuite) newBatch() *models.Batch {
	now := time.Now().UTC().Truncate(time.Millisecond)
	harvest := now.AddDate(0, -1, 0)
	return &models.Batch{
		ID:                 domain.NewBatchID(),
		ExporterID:         domain.UserID(uuid.New()),
		ExporterEmail:      "exporter@example.com",
		ProductType:        "Turmeric",
		Variety:            "Lakadong",
		Quantity:           decimal.RequireFromString("1250.500"),
		Unit:               "kg",
		Weight:             decimal.RequireFromString("1300"),
		WeightUnit:         "kg",
		HarvestDate:        &harvest,
		OrganicStatus:      models.Organic,
		OriginCountry:      "India",
		DestinationCountry: "Germany",
		Status:             models.StatusSubmitted,
		CreatedAt:          now,
		UpdatedAt:          now,
		History:            []models.HistoryEntry{{Status: models.StatusSubmitted, Message: "Batch submitted by exporter", CreatedAt: now}},
	}
}

func (s *PostgresStoreSuite) TestRoundTripAggregate() {
	b := s.newBatch()
	s.Require().NoError(s.store.Create(s.ctx, b))
	s.ErrorIs(s.store.Create(s.ctx, b), sentinel.ErrConflict)

	insp := &models.Inspection{
		ID:              domain.NewInspectionID(),
		BatchID:         b.ID,
		MoisturePercent: 10.5,
		PesticidePPM:    0.02,
		OrganicStatus:   "India Organic Certified",
		ISOCode:         "ISO 22000",
		Result:          models.ResultPass,
		InspectorID:     domain.UserID(uuid.New()),
		InspectorOrg:    "Spice Board Lab",
		RecordedAt:      b.CreatedAt.Add(time.Hour),
	}
	s.Require().NoError(s.store.AddInspection(s.ctx, insp))
	s.Require().NoError(s.store.AppendHistory(s.ctx, b.ID, models.HistoryEntry{
		Status: models.StatusInspected, Message: "Inspection recorded (PASS)", CreatedAt: insp.RecordedAt,
	}))
	s.Require().NoError(s.store.AddDocuments(s.ctx, b.ID, []models.Document{{
		ID: domain.NewDocumentID(), Category: models.CategoryLabReports, FileName: "lab.pdf",
		MimeType: "application/pdf", SizeBytes: 2048, UploadedAt: insp.RecordedAt,
	}}))

	b.Status = models.StatusInspected
	b.UpdatedAt = insp.RecordedAt
	s.Require().NoError(s.store.Update(s.ctx, b))

	got, err := s.store.Get(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusInspected, got.Status)
	s.True(b.Quantity.Equal(got.Quantity))
	s.Require().NotNil(got.HarvestDate)
	s.True(b.HarvestDate.Equal(*got.HarvestDate))
	s.Require().NotNil(got.Inspection)
	s.Equal(models.ResultPass, got.Inspection.Result)
	s.Equal("Spice Board Lab", got.Inspection.InspectorOrg)
	s.Require().Len(got.History, 2)
	s.Equal("Inspection recorded (PASS)", got.History[1].Message)
	s.Require().Len(got.Documents, 1)
	s.Equal(models.CategoryLabReports, got.Documents[0].Category)
}

func (s *PostgresStoreSuite) TestListFilters() {
	a := s.newBatch()
	b := s.newBatch()
	b.AssignedAgency = "agency-1"
	b.CreatedAt = a.CreatedAt.Add(time.Minute)
	s.Require().NoError(s.store.Create(s.ctx, a))
	s.Require().NoError(s.store.Create(s.ctx, b))

	all, err := s.store.List(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(b.ID, all[0].ID)

	mine, err := s.store.List(s.ctx, models.ListFilter{ExporterID: &a.ExporterID, Status: models.StatusSubmitted})
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(a.ID, mine[0].ID)

	agency, err := s.store.List(s.ctx, models.ListFilter{Agency: "agency-1"})
	s.Require().NoError(err)
	s.Len(agency, 1)
}

func (s *PostgresStoreSuite) TestMissingBatch() {
	_, err := s.store.Get(s.ctx, domain.NewBatchID())
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Update(s.ctx, s.newBatch()), sentinel.ErrNotFound)
}
