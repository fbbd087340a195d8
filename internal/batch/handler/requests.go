package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"agriqcert/internal/batch/models"
	"agriqcert/pkg/domain"
	dErrors "agriqcert/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// CreateBatchRequest is the exporter's batch submission.
type CreateBatchRequest struct {
	ProductType        string          `json:"productType" validate:"required,max=200"`
	Grade              string          `json:"grade" validate:"max=100"`
	Variety            string          `json:"variety" validate:"max=100"`
	Quantity           decimal.Decimal `json:"quantity"`
	Unit               string          `json:"unit" validate:"required,max=20"`
	Weight             decimal.Decimal `json:"weight"`
	WeightUnit         string          `json:"weightUnit" validate:"max=20"`
	FarmAddress        string          `json:"farmAddress" validate:"max=500"`
	FarmerDetails      string          `json:"farmerDetails" validate:"max=500"`
	HarvestDate        string          `json:"harvestDate"`
	OrganicStatus      string          `json:"organicStatus" validate:"omitempty,oneof=ORGANIC NON_ORGANIC"`
	ContainerDetails   string          `json:"containerDetails" validate:"max=500"`
	OriginCountry      string          `json:"originCountry" validate:"max=100"`
	DestinationCountry string          `json:"destinationCountry" validate:"max=100"`
	Notes              string          `json:"notes" validate:"max=2000"`

	harvestDate *time.Time
}

func (r *CreateBatchRequest) Sanitize() {
	r.ProductType = strings.TrimSpace(r.ProductType)
	r.Grade = strings.TrimSpace(r.Grade)
	r.Variety = strings.TrimSpace(r.Variety)
	r.Unit = strings.TrimSpace(r.Unit)
	r.WeightUnit = strings.TrimSpace(r.WeightUnit)
	r.HarvestDate = strings.TrimSpace(r.HarvestDate)
	r.OriginCountry = strings.TrimSpace(r.OriginCountry)
	r.DestinationCountry = strings.TrimSpace(r.DestinationCountry)
}

func (r *CreateBatchRequest) Normalize() {
	r.OrganicStatus = strings.ToUpper(strings.TrimSpace(r.OrganicStatus))
}

func (r *CreateBatchRequest) Validate() error {
	if !r.Quantity.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "quantity must be greater than zero")
	}
	if r.HarvestDate != "" {
		t, err := parseDate(r.HarvestDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "harvestDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
		}
		r.harvestDate = &t
	}
	return nil
}

func (r *CreateBatchRequest) ToInput() models.NewBatchInput {
	return models.NewBatchInput{
		ProductType:        r.ProductType,
		Grade:              r.Grade,
		Variety:            r.Variety,
		Quantity:           r.Quantity,
		Unit:               r.Unit,
		Weight:             r.Weight,
		WeightUnit:         r.WeightUnit,
		FarmAddress:        r.FarmAddress,
		FarmerDetails:      r.FarmerDetails,
		HarvestDate:        r.harvestDate,
		OrganicStatus:      models.OrganicStatus(r.OrganicStatus),
		ContainerDetails:   r.ContainerDetails,
		OriginCountry:      r.OriginCountry,
		DestinationCountry: r.DestinationCountry,
		Notes:              r.Notes,
	}
}

// InspectionRequest carries a QA inspection result.
type InspectionRequest struct {
	MoisturePercent *float64 `json:"moisturePercent" validate:"required"`
	PesticidePPM    *float64 `json:"pesticidePPM" validate:"required"`
	OrganicStatus   string   `json:"organicStatus" validate:"max=50"`
	ISOCode         string   `json:"isoCode" validate:"max=100"`
	Result          string   `json:"result" validate:"required"`
	Notes           string   `json:"notes" validate:"max=2000"`
}

func (r *InspectionRequest) Normalize() {
	r.Result = strings.ToUpper(strings.TrimSpace(r.Result))
	r.ISOCode = strings.TrimSpace(r.ISOCode)
}

func (r *InspectionRequest) ToInput() models.InspectionInput {
	return models.InspectionInput{
		MoisturePercent: *r.MoisturePercent,
		PesticidePPM:    *r.PesticidePPM,
		OrganicStatus:   r.OrganicStatus,
		ISOCode:         r.ISOCode,
		Result:          models.InspectionResult(r.Result),
		Notes:           r.Notes,
	}
}

type DocumentRequest struct {
	Category  string `json:"category"`
	FileName  string `json:"fileName" validate:"required,max=255"`
	MimeType  string `json:"mimeType" validate:"max=100"`
	SizeBytes int64  `json:"sizeBytes" validate:"gte=0"`
	URL       string `json:"url" validate:"omitempty,url"`
}

// DocumentsRequest attaches metadata for files already uploaded elsewhere.
type DocumentsRequest struct {
	Documents []DocumentRequest `json:"documents" validate:"required,min=1,max=50,dive"`
}

func (r *DocumentsRequest) Sanitize() {
	for i := range r.Documents {
		r.Documents[i].FileName = strings.TrimSpace(r.Documents[i].FileName)
		r.Documents[i].Category = strings.TrimSpace(r.Documents[i].Category)
	}
}

func (r *DocumentsRequest) ToInput() []models.DocumentInput {
	out := make([]models.DocumentInput, 0, len(r.Documents))
	for _, d := range r.Documents {
		out = append(out, models.DocumentInput{
			Category:  d.Category,
			FileName:  d.FileName,
			MimeType:  d.MimeType,
			SizeBytes: d.SizeBytes,
			URL:       d.URL,
		})
	}
	return out
}

type AssignRequest struct {
	Agency string `json:"agency" validate:"required,max=100"`
}

func (r *AssignRequest) Sanitize() {
	r.Agency = strings.TrimSpace(r.Agency)
}

type ScheduleRequest struct {
	ScheduledAt string `json:"scheduledAt" validate:"required"`

	at time.Time
}

func (r *ScheduleRequest) Validate() error {
	t, err := domain.ParseTimestamp(strings.TrimSpace(r.ScheduledAt))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "scheduledAt must be an RFC 3339 timestamp")
	}
	r.at = t
	return nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return domain.ParseTimestamp(s)
}
