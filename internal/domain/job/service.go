package job

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hireon/hireon-api/internal/domain/wallet"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// walletCharger is the slice of the wallet service promotions need
type walletCharger interface {
	Deduct(ctx context.Context, userID uuid.UUID, amount int64, category wallet.Category, opts wallet.DeductOptions) (*wallet.TransactionResult, error)
}

type Service struct {
	repo           Repository
	charger        walletCharger
	promotionPrice int64
}

func NewService(repo Repository, charger walletCharger, promotionPrice int64) *Service {
	return &Service{repo: repo, charger: charger, promotionPrice: promotionPrice}
}

func (s *Service) Create(ctx context.Context, employerID uuid.UUID, req *CreateRequest) (*Response, error) {
	j := &Job{
		ID:          uuid.New(),
		EmployerID:  employerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusOpen,
	}
	if req.Location != "" {
		j.Location = sql.NullString{String: req.Location, Valid: true}
	}
	if req.SalaryMin != nil {
		j.SalaryMin = sql.NullInt64{Int64: *req.SalaryMin, Valid: true}
	}
	if req.SalaryMax != nil {
		j.SalaryMax = sql.NullInt64{Int64: *req.SalaryMax, Valid: true}
	}

	if err := s.repo.Create(ctx, j); err != nil {
		return nil, err
	}

	log.Info().
		Str("job_id", j.ID.String()).
		Str("employer_id", employerID.String()).
		Msg("job created")

	return j.ToResponse(), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Response, error) {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return j.ToResponse(), nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Response, int, error) {
	limit, offset = clampPage(limit, offset)
	jobs, total, err := s.repo.ListOpen(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(jobs), total, nil
}

func (s *Service) ListMine(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]*Response, int, error) {
	limit, offset = clampPage(limit, offset)
	jobs, total, err := s.repo.ListByEmployer(ctx, employerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return toResponses(jobs), total, nil
}

// Close marks an open job closed. Only the owning employer may close it.
func (s *Service) Close(ctx context.Context, employerID, jobID uuid.UUID) error {
	j, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if j.EmployerID != employerID {
		return ErrNotJobOwner
	}
	if j.Status == StatusClosed {
		return ErrJobClosed
	}
	return s.repo.UpdateStatus(ctx, jobID, StatusClosed)
}

// Promote charges the employer's wallet and flags the job as promoted.
// The idempotency key is derived from the job id, so a retried call after
// a partial failure settles on a single charge.
func (s *Service) Promote(ctx context.Context, employerID, jobID uuid.UUID) (*PromoteResult, error) {
	j, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.EmployerID != employerID {
		return nil, ErrNotJobOwner
	}
	if !j.IsOpen() {
		return nil, ErrJobClosed
	}
	if j.IsPromoted {
		return nil, ErrAlreadyPromoted
	}

	charge, err := s.charger.Deduct(ctx, employerID, s.promotionPrice, wallet.CategoryJobPromotion, wallet.DeductOptions{
		IdempotencyKey:    "job_promo_" + jobID.String(),
		Description:       "job promotion: " + j.Title,
		RelatedEntityType: "job",
		RelatedEntityID:   jobID.String(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkPromoted(ctx, jobID); err != nil {
		// Charge is committed but the flag is not. The stable key above
		// makes the charge free on retry, so surface the error as-is.
		log.Error().Err(err).
			Str("job_id", jobID.String()).
			Str("transaction_id", charge.TransactionID.String()).
			Msg("charged promotion but failed to flag job")
		return nil, err
	}

	log.Info().
		Str("job_id", jobID.String()).
		Str("employer_id", employerID.String()).
		Int64("amount", charge.Amount).
		Bool("duplicate", charge.IsDuplicate).
		Msg("job promoted")

	j, err = s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &PromoteResult{Job: j.ToResponse(), Charge: charge}, nil
}

func toResponses(jobs []*Job) []*Response {
	out := make([]*Response, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.ToResponse())
	}
	return out
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
