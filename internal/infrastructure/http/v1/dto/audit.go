package dto

import (
	"encoding/json"
	"time"

	"warebase/internal/infrastructure/storage/postgres"
)

// AuditRecordResponse is one audit trail entry, newest first.
type AuditRecordResponse struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Action     string          `json:"action"`
	UserID     string          `json:"userId,omitempty"`
	UserEmail  string          `json:"userEmail,omitempty"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// FromAuditRecord creates response DTO from a stored record.
func FromAuditRecord(r postgres.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		ID:         r.ID.String(),
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Action:     r.Action,
		UserID:     r.UserID,
		UserEmail:  r.UserEmail,
		Changes:    r.Changes,
		CreatedAt:  r.CreatedAt,
	}
}

// FromAuditRecords maps a record slice.
func FromAuditRecords(records []postgres.AuditRecord) []AuditRecordResponse {
	out := make([]AuditRecordResponse, len(records))
	for i, r := range records {
		out[i] = FromAuditRecord(r)
	}
	return out
}
