package profile

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/hireon/hireon-api/internal/domain/wallet"
)

type walletCharger interface {
	Deduct(ctx context.Context, userID uuid.UUID, amount int64, category wallet.Category, opts wallet.DeductOptions) (*wallet.TransactionResult, error)
}

type Service struct {
	repo        Repository
	charger     walletCharger
	unlockPrice int64
}

func NewService(repo Repository, charger walletCharger, unlockPrice int64) *Service {
	return &Service{repo: repo, charger: charger, unlockPrice: unlockPrice}
}

func (s *Service) Upsert(ctx context.Context, userID uuid.UUID, req *UpsertRequest) (*Response, error) {
	p := &Profile{
		ID:           uuid.New(),
		UserID:       userID,
		Headline:     req.Headline,
		Skills:       pq.StringArray(req.Skills),
		ExperienceYr: req.ExperienceYr,
	}
	if req.Summary != "" {
		p.Summary = sql.NullString{String: req.Summary, Valid: true}
	}
	if req.Phone != "" {
		p.Phone = sql.NullString{String: req.Phone, Valid: true}
	}
	if req.ResumeURL != "" {
		p.ResumeURL = sql.NullString{String: req.ResumeURL, Valid: true}
	}

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p.toResponse(true), nil
}

// GetMine returns the viewer's own profile with contacts visible
func (s *Service) GetMine(ctx context.Context, userID uuid.UUID) (*Response, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.toResponse(true), nil
}

// Get returns a profile with contacts redacted unless the viewer owns
// the profile or has paid to unlock it.
func (s *Service) Get(ctx context.Context, viewerID, profileID uuid.UUID) (*Response, error) {
	p, err := s.repo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.UserID == viewerID {
		return p.toResponse(true), nil
	}

	unlocked, err := s.repo.HasUnlock(ctx, profileID, viewerID)
	if err != nil {
		return nil, err
	}
	return p.toResponse(unlocked), nil
}

// Unlock charges the employer's wallet once per profile and reveals
// contact details. A repeat unlock is free and returns no charge.
func (s *Service) Unlock(ctx context.Context, employerID, profileID uuid.UUID) (*UnlockResult, error) {
	p, err := s.repo.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if p.UserID == employerID {
		return nil, ErrOwnProfile
	}

	unlocked, err := s.repo.HasUnlock(ctx, profileID, employerID)
	if err != nil {
		return nil, err
	}
	if unlocked {
		return &UnlockResult{Profile: p.toResponse(true)}, nil
	}

	charge, err := s.charger.Deduct(ctx, employerID, s.unlockPrice, wallet.CategoryResumeUnlock, wallet.DeductOptions{
		IdempotencyKey:    "resume_unlock_" + employerID.String() + "_" + profileID.String(),
		Description:       "resume unlock",
		RelatedEntityType: "profile",
		RelatedEntityID:   profileID.String(),
	})
	if err != nil {
		return nil, err
	}

	unlock := &Unlock{ProfileID: profileID, EmployerID: employerID, TransactionID: charge.TransactionID}
	if err := s.repo.CreateUnlock(ctx, unlock); err != nil {
		// Charge is committed; the stable key keeps a retry free.
		log.Error().Err(err).
			Str("profile_id", profileID.String()).
			Str("transaction_id", charge.TransactionID.String()).
			Msg("charged unlock but failed to record it")
		return nil, err
	}

	log.Info().
		Str("profile_id", profileID.String()).
		Str("employer_id", employerID.String()).
		Int64("amount", charge.Amount).
		Bool("duplicate", charge.IsDuplicate).
		Msg("resume unlocked")

	return &UnlockResult{Profile: p.toResponse(true), Charge: charge}, nil
}
