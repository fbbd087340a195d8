package audit

import "time"

// Action names a recorded domain action.
type Action string

const (
	ActionBatchSubmitted         Action = "batch.submitted"
	ActionBatchDocumentsUploaded Action = "batch.documents_uploaded"
	ActionBatchAssigned          Action = "batch.assigned"
	ActionInspectionScheduled    Action = "inspection.scheduled"
	ActionInspectionRecorded     Action = "inspection.recorded"
	ActionCredentialIssued       Action = "credential.issued"
	ActionCredentialRevoked      Action = "credential.revoked"
	ActionVerificationPerformed  Action = "verification.performed"
	ActionVerificationUpload     Action = "verification.upload"
)

// Entity types referenced by events.
const (
	EntityBatch      = "batch"
	EntityCredential = "credential"
)

// Event is emitted from domain services after the primary write committed.
// It is transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action     Action            `json:"action"`
	ActorID    string            `json:"actorId,omitempty"`
	Role       string            `json:"role,omitempty"`
	EntityType string            `json:"entityType"`
	EntityID   string            `json:"entityId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	RequestID  string            `json:"requestId,omitempty"`
}
