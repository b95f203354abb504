package profile

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Profile represents a seeker's candidate profile
type Profile struct {
	ID           uuid.UUID      `db:"id"`
	UserID       uuid.UUID      `db:"user_id"`
	Headline     string         `db:"headline"`
	Summary      sql.NullString `db:"summary"`
	Skills       pq.StringArray `db:"skills"`
	ExperienceYr int            `db:"experience_years"`
	Phone        sql.NullString `db:"phone"`
	ResumeURL    sql.NullString `db:"resume_url"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Unlock records that an employer paid for access to a profile's contacts
type Unlock struct {
	ID            int64     `db:"id"`
	ProfileID     uuid.UUID `db:"profile_id"`
	EmployerID    uuid.UUID `db:"employer_id"`
	TransactionID uuid.UUID `db:"transaction_id"`
	CreatedAt     time.Time `db:"created_at"`
}
