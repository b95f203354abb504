package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hireon/hireon-api/internal/domain/wallet"
)

type repoStub struct {
	jobs        map[uuid.UUID]*Job
	promoted    map[uuid.UUID]bool
	promotedErr error
}

func newRepoStub() *repoStub {
	return &repoStub{jobs: map[uuid.UUID]*Job{}, promoted: map[uuid.UUID]bool{}}
}

func (r *repoStub) Create(_ context.Context, j *Job) error {
	j.CreatedAt = time.Now()
	j.UpdatedAt = j.CreatedAt
	r.jobs[j.ID] = j
	return nil
}

func (r *repoStub) GetByID(_ context.Context, id uuid.UUID) (*Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	cp := *j
	cp.IsPromoted = j.IsPromoted || r.promoted[id]
	return &cp, nil
}

func (r *repoStub) ListOpen(context.Context, int, int) ([]*Job, int, error) {
	return nil, 0, nil
}

func (r *repoStub) ListByEmployer(context.Context, uuid.UUID, int, int) ([]*Job, int, error) {
	return nil, 0, nil
}

func (r *repoStub) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	j, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	j.Status = status
	return nil
}

func (r *repoStub) MarkPromoted(_ context.Context, id uuid.UUID) error {
	if r.promotedErr != nil {
		return r.promotedErr
	}
	if _, ok := r.jobs[id]; !ok {
		return ErrJobNotFound
	}
	r.promoted[id] = true
	return nil
}

type chargerStub struct {
	calls   int
	lastKey string
	err     error
}

func (c *chargerStub) Deduct(_ context.Context, _ uuid.UUID, amount int64, _ wallet.Category, opts wallet.DeductOptions) (*wallet.TransactionResult, error) {
	c.calls++
	c.lastKey = opts.IdempotencyKey
	if c.err != nil {
		return nil, c.err
	}
	return &wallet.TransactionResult{
		TransactionID: uuid.New(),
		Type:          wallet.TypeDebit,
		Category:      wallet.CategoryJobPromotion,
		Amount:        amount,
		Status:        wallet.TxStatusCompleted,
	}, nil
}

func seedJob(repo *repoStub, employerID uuid.UUID) *Job {
	j := &Job{ID: uuid.New(), EmployerID: employerID, Title: "Backend Engineer", Description: "Go services", Status: StatusOpen}
	repo.jobs[j.ID] = j
	return j
}

func TestPromoteChargesOnce(t *testing.T) {
	repo := newRepoStub()
	charger := &chargerStub{}
	svc := NewService(repo, charger, 19900)

	employerID := uuid.New()
	j := seedJob(repo, employerID)

	result, err := svc.Promote(context.Background(), employerID, j.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if charger.calls != 1 {
		t.Fatalf("expected 1 charge, got %d", charger.calls)
	}
	if want := "job_promo_" + j.ID.String(); charger.lastKey != want {
		t.Fatalf("expected idempotency key %q, got %q", want, charger.lastKey)
	}
	if !result.Job.IsPromoted {
		t.Fatal("expected job to be flagged promoted")
	}
}

func TestPromoteAlreadyPromotedDoesNotCharge(t *testing.T) {
	repo := newRepoStub()
	charger := &chargerStub{}
	svc := NewService(repo, charger, 19900)

	employerID := uuid.New()
	j := seedJob(repo, employerID)
	j.IsPromoted = true

	_, err := svc.Promote(context.Background(), employerID, j.ID)
	if !errors.Is(err, ErrAlreadyPromoted) {
		t.Fatalf("expected ErrAlreadyPromoted, got %v", err)
	}
	if charger.calls != 0 {
		t.Fatalf("expected no charge, got %d", charger.calls)
	}
}

func TestPromoteRejectsForeignJob(t *testing.T) {
	repo := newRepoStub()
	charger := &chargerStub{}
	svc := NewService(repo, charger, 19900)

	j := seedJob(repo, uuid.New())

	_, err := svc.Promote(context.Background(), uuid.New(), j.ID)
	if !errors.Is(err, ErrNotJobOwner) {
		t.Fatalf("expected ErrNotJobOwner, got %v", err)
	}
	if charger.calls != 0 {
		t.Fatalf("expected no charge, got %d", charger.calls)
	}
}

func TestPromoteInsufficientBalancePropagates(t *testing.T) {
	repo := newRepoStub()
	charger := &chargerStub{err: &wallet.InsufficientBalanceError{Required: 19900, Available: 500}}
	svc := NewService(repo, charger, 19900)

	employerID := uuid.New()
	j := seedJob(repo, employerID)

	_, err := svc.Promote(context.Background(), employerID, j.ID)
	if _, ok := wallet.IsInsufficientBalance(err); !ok {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
	if repo.promoted[j.ID] {
		t.Fatal("job must not be flagged promoted after a failed charge")
	}
}

func TestPromoteClosedJobRejected(t *testing.T) {
	repo := newRepoStub()
	charger := &chargerStub{}
	svc := NewService(repo, charger, 19900)

	employerID := uuid.New()
	j := seedJob(repo, employerID)
	j.Status = StatusClosed

	_, err := svc.Promote(context.Background(), employerID, j.ID)
	if !errors.Is(err, ErrJobClosed) {
		t.Fatalf("expected ErrJobClosed, got %v", err)
	}
	if charger.calls != 0 {
		t.Fatalf("expected no charge, got %d", charger.calls)
	}
}
