package handler

import (
	"github.com/shopspring/decimal"

	"agriqcert/internal/batch/models"
	"agriqcert/pkg/domain"
)

type InspectionResponse struct {
	ID              string  `json:"id"`
	MoisturePercent float64 `json:"moisturePercent"`
	PesticidePPM    float64 `json:"pesticidePPM"`
	OrganicStatus   string  `json:"organicStatus,omitempty"`
	ISOCode         string  `json:"isoCode,omitempty"`
	Result          string  `json:"result"`
	Notes           string  `json:"notes,omitempty"`
	InspectorID     string  `json:"inspectorId"`
	InspectorOrg    string  `json:"inspectorOrg,omitempty"`
	RecordedAt      string  `json:"recordedAt"`
}

type HistoryResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

type DocumentResponse struct {
	ID         string `json:"id"`
	Category   string `json:"category"`
	FileName   string `json:"fileName"`
	MimeType   string `json:"mimeType,omitempty"`
	SizeBytes  int64  `json:"sizeBytes"`
	URL        string `json:"url,omitempty"`
	UploadedAt string `json:"uploadedAt"`
}

// BatchResponse is the wire shape of a batch. Quantities serialize as decimal strings.
type BatchResponse struct {
	ID                 string              `json:"id"`
	ExporterID         string              `json:"exporterId"`
	ProductType        string              `json:"productType"`
	Grade              string              `json:"grade,omitempty"`
	Variety            string              `json:"variety,omitempty"`
	Quantity           decimal.Decimal     `json:"quantity"`
	Unit               string              `json:"unit"`
	Weight             *decimal.Decimal    `json:"weight,omitempty"`
	WeightUnit         string              `json:"weightUnit,omitempty"`
	FarmAddress        string              `json:"farmAddress,omitempty"`
	FarmerDetails      string              `json:"farmerDetails,omitempty"`
	HarvestDate        string              `json:"harvestDate,omitempty"`
	OrganicStatus      string              `json:"organicStatus"`
	ContainerDetails   string              `json:"containerDetails,omitempty"`
	OriginCountry      string              `json:"originCountry,omitempty"`
	DestinationCountry string              `json:"destinationCountry,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	Status             string              `json:"status"`
	AssignedAgency     string              `json:"assignedAgency,omitempty"`
	ScheduledAt        string              `json:"scheduledAt,omitempty"`
	CreatedAt          string              `json:"createdAt"`
	UpdatedAt          string              `json:"updatedAt"`
	Inspection         *InspectionResponse `json:"inspection,omitempty"`
	History            []HistoryResponse   `json:"history"`
	Documents          []DocumentResponse  `json:"documents"`
}

type ListResponse struct {
	Batches []BatchResponse `json:"batches"`
}

func toBatchResponse(b *models.Batch) BatchResponse {
	resp := BatchResponse{
		ID:                 b.ID.String(),
		ExporterID:         b.ExporterID.String(),
		ProductType:        b.ProductType,
		Grade:              b.Grade,
		Variety:            b.Variety,
		Quantity:           b.Quantity,
		Unit:               b.Unit,
		WeightUnit:         b.WeightUnit,
		FarmAddress:        b.FarmAddress,
		FarmerDetails:      b.FarmerDetails,
		OrganicStatus:      string(b.OrganicStatus),
		ContainerDetails:   b.ContainerDetails,
		OriginCountry:      b.OriginCountry,
		DestinationCountry: b.DestinationCountry,
		Notes:              b.Notes,
		Status:             string(b.Status),
		AssignedAgency:     b.AssignedAgency,
		CreatedAt:          domain.FormatTimestamp(b.CreatedAt),
		UpdatedAt:          domain.FormatTimestamp(b.UpdatedAt),
		History:            make([]HistoryResponse, 0, len(b.History)),
		Documents:          make([]DocumentResponse, 0, len(b.Documents)),
	}
	if !b.Weight.IsZero() {
		w := b.Weight
		resp.Weight = &w
	}
	if b.HarvestDate != nil {
		resp.HarvestDate = b.HarvestDate.Format(dateLayout)
	}
	if b.ScheduledAt != nil {
		resp.ScheduledAt = domain.FormatTimestamp(*b.ScheduledAt)
	}
	if insp := b.Inspection; insp != nil {
		resp.Inspection = &InspectionResponse{
			ID:              insp.ID.String(),
			MoisturePercent: insp.MoisturePercent,
			PesticidePPM:    insp.PesticidePPM,
			OrganicStatus:   insp.OrganicStatus,
			ISOCode:         insp.ISOCode,
			Result:          string(insp.Result),
			Notes:           insp.Notes,
			InspectorID:     insp.InspectorID.String(),
			InspectorOrg:    insp.InspectorOrg,
			RecordedAt:      domain.FormatTimestamp(insp.RecordedAt),
		}
	}
	for _, h := range b.History {
		resp.History = append(resp.History, HistoryResponse{
			Status:    string(h.Status),
			Message:   h.Message,
			CreatedAt: domain.FormatTimestamp(h.CreatedAt),
		})
	}
	for _, d := range b.Documents {
		resp.Documents = append(resp.Documents, DocumentResponse{
			ID:         d.ID.String(),
			Category:   string(d.Category),
			FileName:   d.FileName,
			MimeType:   d.MimeType,
			SizeBytes:  d.SizeBytes,
			URL:        d.URL,
			UploadedAt: domain.FormatTimestamp(d.UploadedAt),
		})
	}
	return resp
}
