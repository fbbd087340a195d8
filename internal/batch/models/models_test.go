package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriqcert/pkg/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusSubmitted, StatusQAAssigned, true},
		{StatusSubmitted, StatusInspectionScheduled, true},
		{StatusQAAssigned, StatusInspectionScheduled, true},
		{StatusSubmitted, StatusInspected, true},
		{StatusInspectionScheduled, StatusRejected, true},
		{StatusInspected, StatusInspected, true},
		{StatusInspected, StatusCertified, true},
		{StatusSubmitted, StatusCertified, false},
		{StatusRejected, StatusCertified, false},
		{StatusRejected, StatusInspected, false},
		{StatusCertified, StatusInspected, false},
		{StatusCertified, StatusRejected, false},
		{StatusInspectionScheduled, StatusQAAssigned, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusCertified.IsValid())
	assert.False(t, Status("ARCHIVED").IsValid())
}

func TestCloneIsDeep(t *testing.T) {
	harvest := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := &Batch{
		ID:          domain.NewBatchID(),
		Quantity:    decimal.RequireFromString("120.5"),
		HarvestDate: &harvest,
		Inspection:  &Inspection{Result: ResultPass, MoisturePercent: 11.2},
		History:     []HistoryEntry{{Status: StatusSubmitted, Message: "Batch submitted by exporter"}},
		Documents:   []Document{{FileName: "lab.pdf"}},
	}

	c := b.Clone()
	c.Inspection.Result = ResultFail
	c.History[0].Message = "changed"
	c.Documents[0].FileName = "other.pdf"
	*c.HarvestDate = harvest.AddDate(1, 0, 0)

	assert.Equal(t, ResultPass, b.Inspection.Result)
	assert.Equal(t, "Batch submitted by exporter", b.History[0].Message)
	assert.Equal(t, "lab.pdf", b.Documents[0].FileName)
	assert.Equal(t, harvest, *b.HarvestDate)
	assert.Nil(t, (*Batch)(nil).Clone())
}

func TestVisibleTo(t *testing.T) {
	owner := domain.UserID(uuid.New())
	b := &Batch{ExporterID: owner, AssignedAgency: "agency-1"}

	tests := []struct {
		name    string
		actor   domain.Actor
		enforce bool
		want    bool
	}{
		{"admin sees all", domain.Actor{Role: domain.RoleAdmin}, true, true},
		{"customs sees all", domain.Actor{Role: domain.RoleCustoms}, false, true},
		{"importer sees all", domain.Actor{Role: domain.RoleImporter}, false, true},
		{"owner exporter", domain.Actor{ID: owner, Role: domain.RoleExporter}, false, true},
		{"other exporter", domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleExporter}, false, false},
		{"qa without enforcement", domain.Actor{Role: domain.RoleQA, AgencyID: "agency-2"}, false, true},
		{"qa assigned agency", domain.Actor{Role: domain.RoleQA, AgencyID: "agency-1"}, true, true},
		{"qa other agency", domain.Actor{Role: domain.RoleQA, AgencyID: "agency-2"}, true, false},
		{"unknown role", domain.Actor{Role: "GUEST"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.VisibleTo(tt.actor, tt.enforce))
		})
	}

	unassigned := &Batch{}
	require.False(t, unassigned.VisibleTo(domain.Actor{Role: domain.RoleQA}, true))
}

func TestParseDocumentCategory(t *testing.T) {
	assert.Equal(t, CategoryLabReports, ParseDocumentCategory("labReports"))
	assert.Equal(t, CategoryLabReports, ParseDocumentCategory(" LABREPORTS "))
	assert.Equal(t, CategoryPackagingPhotos, ParseDocumentCategory("packagingPhotos"))
	assert.Equal(t, CategoryGeneral, ParseDocumentCategory("invoices"))
	assert.Equal(t, CategoryGeneral, ParseDocumentCategory(""))
}
