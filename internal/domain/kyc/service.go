package kyc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit files a verification request. Only one pending submission per
// user at a time; a rejected user may resubmit.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, req *SubmitRequest) (*Response, error) {
	latest, err := s.repo.GetLatestByUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrSubmissionNotFound) {
		return nil, err
	}
	if latest != nil && latest.Status == StatusPending {
		return nil, ErrPendingExists
	}

	sub := &Submission{
		ID:           uuid.New(),
		UserID:       userID,
		DocumentType: req.DocumentType,
		DocumentRef:  req.DocumentRef,
		Status:       StatusPending,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	log.Info().
		Str("submission_id", sub.ID.String()).
		Str("user_id", userID.String()).
		Msg("kyc submission filed")

	return sub.toResponse(), nil
}

func (s *Service) GetMine(ctx context.Context, userID uuid.UUID) (*Response, error) {
	sub, err := s.repo.GetLatestByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sub.toResponse(), nil
}

func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*Response, int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	subs, total, err := s.repo.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*Response, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.toResponse())
	}
	return out, total, nil
}

func (s *Service) Review(ctx context.Context, reviewerID, submissionID uuid.UUID, req *ReviewRequest) (*Response, error) {
	sub, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	sub.Status = StatusRejected
	if req.Approve {
		sub.Status = StatusApproved
	}
	if req.Note != "" {
		sub.Note = sql.NullString{String: req.Note, Valid: true}
	}
	sub.ReviewedBy = uuid.NullUUID{UUID: reviewerID, Valid: true}

	if err := s.repo.Review(ctx, sub); err != nil {
		return nil, err
	}

	log.Info().
		Str("submission_id", submissionID.String()).
		Str("reviewer_id", reviewerID.String()).
		Str("status", string(sub.Status)).
		Msg("kyc submission reviewed")

	sub, err = s.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	return sub.toResponse(), nil
}
