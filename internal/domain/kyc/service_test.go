package kyc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type repoStub struct {
	subs map[uuid.UUID]*Submission
}

func newRepoStub() *repoStub {
	return &repoStub{subs: map[uuid.UUID]*Submission{}}
}

func (r *repoStub) Create(_ context.Context, s *Submission) error {
	s.CreatedAt = time.Now()
	r.subs[s.ID] = s
	return nil
}

func (r *repoStub) GetByID(_ context.Context, id uuid.UUID) (*Submission, error) {
	if s, ok := r.subs[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, ErrSubmissionNotFound
}

func (r *repoStub) GetLatestByUser(_ context.Context, userID uuid.UUID) (*Submission, error) {
	var latest *Submission
	for _, s := range r.subs {
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, ErrSubmissionNotFound
	}
	return latest, nil
}

func (r *repoStub) ListPending(context.Context, int, int) ([]*Submission, int, error) {
	return nil, 0, nil
}

func (r *repoStub) Review(_ context.Context, s *Submission) error {
	stored, ok := r.subs[s.ID]
	if !ok {
		return ErrSubmissionNotFound
	}
	if stored.Status != StatusPending {
		return ErrAlreadyReviewed
	}
	*stored = *s
	return nil
}

func TestSubmitRejectsSecondPending(t *testing.T) {
	repo := newRepoStub()
	svc := NewService(repo)
	userID := uuid.New()

	if _, err := svc.Submit(context.Background(), userID, &SubmitRequest{DocumentType: "passport", DocumentRef: "P1234567"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	_, err := svc.Submit(context.Background(), userID, &SubmitRequest{DocumentType: "passport", DocumentRef: "P7654321"})
	if !errors.Is(err, ErrPendingExists) {
		t.Fatalf("expected ErrPendingExists, got %v", err)
	}
}

func TestResubmitAfterRejection(t *testing.T) {
	repo := newRepoStub()
	svc := NewService(repo)
	userID := uuid.New()

	first, err := svc.Submit(context.Background(), userID, &SubmitRequest{DocumentType: "passport", DocumentRef: "P1234567"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := svc.Review(context.Background(), uuid.New(), first.ID, &ReviewRequest{Approve: false, Note: "blurry scan"}); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	if _, err := svc.Submit(context.Background(), userID, &SubmitRequest{DocumentType: "passport", DocumentRef: "P7654321"}); err != nil {
		t.Fatalf("expected resubmission to succeed, got %v", err)
	}
}

func TestReviewIsFirstWins(t *testing.T) {
	repo := newRepoStub()
	svc := NewService(repo)

	sub, err := svc.Submit(context.Background(), uuid.New(), &SubmitRequest{DocumentType: "national_id", DocumentRef: "N99"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	result, err := svc.Review(context.Background(), uuid.New(), sub.ID, &ReviewRequest{Approve: true})
	if err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if result.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", result.Status)
	}

	_, err = svc.Review(context.Background(), uuid.New(), sub.ID, &ReviewRequest{Approve: false})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}
