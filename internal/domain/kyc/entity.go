package kyc

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents a verification submission's state
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Submission represents an identity verification request
type Submission struct {
	ID           uuid.UUID      `db:"id"`
	UserID       uuid.UUID      `db:"user_id"`
	DocumentType string         `db:"document_type"`
	DocumentRef  string         `db:"document_ref"`
	Status       Status         `db:"status"`
	Note         sql.NullString `db:"note"`
	ReviewedBy   uuid.NullUUID  `db:"reviewed_by"`
	ReviewedAt   sql.NullTime   `db:"reviewed_at"`
	CreatedAt    time.Time      `db:"created_at"`
}
