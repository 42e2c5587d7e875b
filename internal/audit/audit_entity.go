package audit

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one lifecycle event in a request's history. Entries are
// immutable once appended; there is no update or delete path.
type AuditEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entries_request;uniqueIndex:idx_audit_entries_dedup"`
	Action    string    `gorm:"type:varchar(40);not null;uniqueIndex:idx_audit_entries_dedup"`
	Actor     string    `gorm:"type:varchar(160);not null"`
	Note      string    `gorm:"type:text"`
	Timestamp time.Time `gorm:"not null"`
	// Bucket coarsens the timestamp so a retried network call cannot
	// append the same event twice. Part of the dedup unique index.
	Bucket string `gorm:"type:varchar(20);not null;uniqueIndex:idx_audit_entries_dedup"`

	CreatedAt time.Time
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}

// BucketFor truncates a timestamp to the idempotency bucket used by the
// dedup index.
func BucketFor(ts time.Time) string {
	return ts.UTC().Truncate(time.Minute).Format("2006-01-02T15:04")
}

type AuditEntryResponse struct {
	Action    string `json:"action"`
	Actor     string `json:"actor"`
	Note      string `json:"note,omitempty"`
	Timestamp string `json:"timestamp"`
}

func MapToResponse(e AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		Action:    e.Action,
		Actor:     e.Actor,
		Note:      e.Note,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
	}
}

func MapToListResponse(entries []AuditEntry) []AuditEntryResponse {
	resp := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = MapToResponse(e)
	}
	return resp
}
