// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "agriqcert/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a BatchID where a CredentialID is expected.
type (
	UserID       uuid.UUID
	BatchID      uuid.UUID
	CredentialID uuid.UUID
	InspectionID uuid.UUID
	DocumentID   uuid.UUID
	ActivityID   uuid.UUID
)

// Constructors.

func NewBatchID() BatchID           { return BatchID(uuid.New()) }
func NewCredentialID() CredentialID { return CredentialID(uuid.New()) }
func NewInspectionID() InspectionID { return InspectionID(uuid.New()) }
func NewDocumentID() DocumentID     { return DocumentID(uuid.New()) }
func NewActivityID() ActivityID     { return ActivityID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, API inputs, uploaded documents).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseBatchID(s string) (BatchID, error) {
	id, err := parseUUID(s, "batch ID")
	return BatchID(id), err
}

func ParseCredentialID(s string) (CredentialID, error) {
	id, err := parseUUID(s, "credential ID")
	return CredentialID(id), err
}

// String methods - for logging and persistence.

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id BatchID) String() string      { return uuid.UUID(id).String() }
func (id CredentialID) String() string { return uuid.UUID(id).String() }
func (id InspectionID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string   { return uuid.UUID(id).String() }
func (id ActivityID) String() string   { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id BatchID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id CredentialID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
