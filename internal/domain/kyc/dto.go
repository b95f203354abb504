package kyc

import (
	"time"

	"github.com/google/uuid"
)

// SubmitRequest for POST /kyc
type SubmitRequest struct {
	DocumentType string `json:"document_type" validate:"required,oneof=passport national_id driving_license"`
	DocumentRef  string `json:"document_ref" validate:"required,max=200"`
}

// ReviewRequest for POST /admin/kyc/{submissionID}/review
type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty" validate:"max=1000"`
}

// Response represents a submission in the API
type Response struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	DocumentType string     `json:"document_type"`
	DocumentRef  string     `json:"document_ref"`
	Status       Status     `json:"status"`
	Note         string     `json:"note,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (s *Submission) toResponse() *Response {
	resp := &Response{
		ID:           s.ID,
		UserID:       s.UserID,
		DocumentType: s.DocumentType,
		DocumentRef:  s.DocumentRef,
		Status:       s.Status,
		CreatedAt:    s.CreatedAt,
	}
	if s.Note.Valid {
		resp.Note = s.Note.String
	}
	if s.ReviewedAt.Valid {
		t := s.ReviewedAt.Time
		resp.ReviewedAt = &t
	}
	return resp
}
