package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"agriqcert/pkg/domain"
)

// Status is the certification lifecycle state of a batch.
type Status string

const (
	StatusSubmitted           Status = "SUBMITTED"
	StatusQAAssigned          Status = "QA_ASSIGNED"
	StatusInspectionScheduled Status = "INSPECTION_SCHEDULED"
	StatusInspected           Status = "INSPECTED"
	StatusRejected            Status = "REJECTED"
	StatusCertified           Status = "CERTIFIED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusQAAssigned, StatusInspectionScheduled,
		StatusInspected, StatusRejected, StatusCertified:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// transitions lists the states each status may move to. REJECTED and
// CERTIFIED have no outgoing edges.
var transitions = map[Status][]Status{
	StatusSubmitted:           {StatusQAAssigned, StatusInspectionScheduled, StatusInspected, StatusRejected},
	StatusQAAssigned:          {StatusInspectionScheduled, StatusInspected, StatusRejected},
	StatusInspectionScheduled: {StatusInspected, StatusRejected},
	StatusInspected:           {StatusInspected, StatusRejected, StatusCertified},
}

// CanTransition reports whether from → to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

type OrganicStatus string

const (
	Organic    OrganicStatus = "ORGANIC"
	NonOrganic OrganicStatus = "NON_ORGANIC"
)

type InspectionResult string

const (
	ResultPass InspectionResult = "PASS"
	ResultFail InspectionResult = "FAIL"
)

// Batch is one exporter's shipment lot. Batches are never deleted.
type Batch struct {
	ID                 domain.BatchID
	ExporterID         domain.UserID
	ExporterEmail      string
	ProductType        string
	Grade              string
	Variety            string
	Quantity           decimal.Decimal
	Unit               string
	Weight             decimal.Decimal
	WeightUnit         string
	FarmAddress        string
	FarmerDetails      string
	HarvestDate        *time.Time
	OrganicStatus      OrganicStatus
	ContainerDetails   string
	OriginCountry      string
	DestinationCountry string
	Notes              string
	Status             Status
	AssignedAgency     string
	ScheduledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Inspection *Inspection
	History    []HistoryEntry
	Documents  []Document
}

// Inspection is a QA actor's recorded findings. Immutable after creation.
type Inspection struct {
	ID              domain.InspectionID
	BatchID         domain.BatchID
	MoisturePercent float64
	PesticidePPM    float64
	OrganicStatus   string
	ISOCode         string
	Result          InspectionResult
	Notes           string
	InspectorID     domain.UserID
	InspectorOrg    string
	RecordedAt      time.Time
}

// HistoryEntry is one append-only line of the batch's status log.
type HistoryEntry struct {
	Status    Status
	Message   string
	CreatedAt time.Time
}

type Document struct {
	ID         domain.DocumentID
	Category   DocumentCategory
	FileName   string
	MimeType   string
	SizeBytes  int64
	URL        string
	UploadedAt time.Time
}

// Clone returns a deep copy so callers can snapshot a batch without sharing slices.
func (b *Batch) Clone() *Batch {
	if b == nil {
		return nil
	}
	c := *b
	if b.Inspection != nil {
		insp := *b.Inspection
		c.Inspection = &insp
	}
	if b.HarvestDate != nil {
		t := *b.HarvestDate
		c.HarvestDate = &t
	}
	if b.ScheduledAt != nil {
		t := *b.ScheduledAt
		c.ScheduledAt = &t
	}
	c.History = slices.Clone(b.History)
	c.Documents = slices.Clone(b.Documents)
	return &c
}

// VisibleTo applies the read-visibility rule. Exporters see their own batches;
// QA actors are limited to their agency when enforceAgency is set.
func (b *Batch) VisibleTo(actor domain.Actor, enforceAgency bool) bool {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleCustoms, domain.RoleImporter:
		return true
	case domain.RoleQA:
		return !enforceAgency || (b.AssignedAgency != "" && b.AssignedAgency == actor.AgencyID)
	case domain.RoleExporter:
		return b.ExporterID == actor.ID
	}
	return false
}

// OwnedBy reports whether actor submitted the batch.
func (b *Batch) OwnedBy(actor domain.Actor) bool {
	return b.ExporterID == actor.ID
}

// ListFilter narrows ListBatches. Zero values match everything.
type ListFilter struct {
	ExporterID *domain.UserID
	Agency     string
	Status     Status
}
