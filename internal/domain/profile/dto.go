package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/hireon/hireon-api/internal/domain/wallet"
)

// UpsertRequest for PUT /profiles/me
type UpsertRequest struct {
	Headline     string   `json:"headline" validate:"required,max=160"`
	Summary      string   `json:"summary,omitempty" validate:"max=4000"`
	Skills       []string `json:"skills,omitempty" validate:"max=30,dive,max=60"`
	ExperienceYr int      `json:"experience_years" validate:"gte=0,lte=60"`
	Phone        string   `json:"phone,omitempty" validate:"omitempty,e164"`
	ResumeURL    string   `json:"resume_url,omitempty" validate:"omitempty,url,max=500"`
}

// Response represents a profile in the API. Phone and ResumeURL are
// redacted unless the viewer owns the profile or has unlocked it.
type Response struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Headline     string    `json:"headline"`
	Summary      string    `json:"summary,omitempty"`
	Skills       []string  `json:"skills"`
	ExperienceYr int       `json:"experience_years"`
	Phone        string    `json:"phone,omitempty"`
	ResumeURL    string    `json:"resume_url,omitempty"`
	Unlocked     bool      `json:"unlocked"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Profile) toResponse(unlocked bool) *Response {
	resp := &Response{
		ID:           p.ID,
		UserID:       p.UserID,
		Headline:     p.Headline,
		Skills:       []string(p.Skills),
		ExperienceYr: p.ExperienceYr,
		Unlocked:     unlocked,
		UpdatedAt:    p.UpdatedAt,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if p.Summary.Valid {
		resp.Summary = p.Summary.String
	}
	if unlocked {
		if p.Phone.Valid {
			resp.Phone = p.Phone.String
		}
		if p.ResumeURL.Valid {
			resp.ResumeURL = p.ResumeURL.String
		}
	}
	return resp
}

// UnlockResult couples the unlocked profile with the wallet charge.
// Charge is nil when the viewer had already unlocked the profile.
type UnlockResult struct {
	Profile *Response                 `json:"profile"`
	Charge  *wallet.TransactionResult `json:"charge,omitempty"`
}
