package job

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents job posting status
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Job represents a job posting
type Job struct {
	ID          uuid.UUID      `db:"id"`
	EmployerID  uuid.UUID      `db:"employer_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Location    sql.NullString `db:"location"`
	SalaryMin   sql.NullInt64  `db:"salary_min"`
	SalaryMax   sql.NullInt64  `db:"salary_max"`
	Status      Status         `db:"status"`
	IsPromoted  bool           `db:"is_promoted"`
	PromotedAt  sql.NullTime   `db:"promoted_at"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// IsOpen returns true if the job accepts applications
func (j *Job) IsOpen() bool {
	return j.Status == StatusOpen
}
