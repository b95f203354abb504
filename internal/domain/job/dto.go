package job

import (
	"time"

	"github.com/google/uuid"

	"github.com/hireon/hireon-api/internal/domain/wallet"
)

// CreateRequest for POST /jobs
type CreateRequest struct {
	Title       string `json:"title" validate:"required,max=160"`
	Description string `json:"description" validate:"required,max=8000"`
	Location    string `json:"location,omitempty" validate:"max=120"`
	SalaryMin   *int64 `json:"salary_min,omitempty" validate:"omitempty,gte=0"`
	SalaryMax   *int64 `json:"salary_max,omitempty" validate:"omitempty,gte=0"`
}

// Response represents a job in the API
type Response struct {
	ID          uuid.UUID  `json:"id"`
	EmployerID  uuid.UUID  `json:"employer_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	SalaryMin   *int64     `json:"salary_min,omitempty"`
	SalaryMax   *int64     `json:"salary_max,omitempty"`
	Status      Status     `json:"status"`
	IsPromoted  bool       `json:"is_promoted"`
	PromotedAt  *time.Time `json:"promoted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToResponse converts the entity to its API shape
func (j *Job) ToResponse() *Response {
	resp := &Response{
		ID:          j.ID,
		EmployerID:  j.EmployerID,
		Title:       j.Title,
		Description: j.Description,
		Status:      j.Status,
		IsPromoted:  j.IsPromoted,
		CreatedAt:   j.CreatedAt,
	}
	if j.Location.Valid {
		resp.Location = j.Location.String
	}
	if j.SalaryMin.Valid {
		v := j.SalaryMin.Int64
		resp.SalaryMin = &v
	}
	if j.SalaryMax.Valid {
		v := j.SalaryMax.Int64
		resp.SalaryMax = &v
	}
	if j.PromotedAt.Valid {
		t := j.PromotedAt.Time
		resp.PromotedAt = &t
	}
	return resp
}

// PromoteResult couples the promoted job with the wallet charge
type PromoteResult struct {
	Job    *Response                 `json:"job"`
	Charge *wallet.TransactionResult `json:"charge"`
}
