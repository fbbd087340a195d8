package models

import "strings"

// DocumentCategory is the closed set of supporting-document buckets.
type DocumentCategory string

const (
	CategoryProductDocuments DocumentCategory = "productDocuments"
	CategoryLabReports       DocumentCategory = "labReports"
	CategoryCertifications   DocumentCategory = "certifications"
	CategoryComplianceDocs   DocumentCategory = "complianceDocs"
	CategoryPackagingPhotos  DocumentCategory = "packagingPhotos"
	CategoryGeneral          DocumentCategory = "general"
)

var knownCategories = map[string]DocumentCategory{
	"productdocuments": CategoryProductDocuments,
	"labreports":       CategoryLabReports,
	"certifications":   CategoryCertifications,
	"compliancedocs":   CategoryComplianceDocs,
	"packagingphotos":  CategoryPackagingPhotos,
	"general":          CategoryGeneral,
}

// ParseDocumentCategory maps input case-insensitively; anything unknown is general.
func ParseDocumentCategory(s string) DocumentCategory {
	if c, ok := knownCategories[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return CategoryGeneral
}
