package models

import (
	"time"

	"github.com/shopspring/decimal"

	dErrors "agriqcert/pkg/domain-errors"
)

// NewBatchInput carries exporter-submitted batch attributes.
type NewBatchInput struct {
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
}

func (in NewBatchInput) Validate() error {
	if in.ProductType == "" {
		return dErrors.New(dErrors.CodeValidation, "productType is required")
	}
	if !in.Quantity.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, "quantity must be greater than zero")
	}
	if in.Unit == "" {
		return dErrors.New(dErrors.CodeValidation, "unit is required")
	}
	if in.Weight.IsNegative() {
		return dErrors.New(dErrors.CodeValidation, "weight must not be negative")
	}
	switch in.OrganicStatus {
	case Organic, NonOrganic, "":
	default:
		return dErrors.New(dErrors.CodeValidation, "organicStatus must be ORGANIC or NON_ORGANIC")
	}
	return nil
}

// InspectionInput is a QA actor's findings. Ranges are rejected, never clamped.
type InspectionInput struct {
	MoisturePercent float64
	PesticidePPM    float64
	OrganicStatus   string
	ISOCode         string
	Result          InspectionResult
	Notes           string
}

func (in InspectionInput) Validate() error {
	if in.MoisturePercent < 0 || in.MoisturePercent > 100 {
		return dErrors.New(dErrors.CodeValidation, "moisturePercent must be between 0 and 100")
	}
	if in.PesticidePPM < 0 || in.PesticidePPM > 10 {
		return dErrors.New(dErrors.CodeValidation, "pesticidePPM must be between 0 and 10")
	}
	if in.Result != ResultPass && in.Result != ResultFail {
		return dErrors.New(dErrors.CodeValidation, "result must be PASS or FAIL")
	}
	return nil
}

// DocumentInput is metadata for an already-uploaded file.
type DocumentInput struct {
	Category  string
	FileName  string
	MimeType  string
	SizeBytes int64
	URL       string
}
