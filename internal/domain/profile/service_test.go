package profile

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/hireon/hireon-api/internal/domain/wallet"
)

type repoStub struct {
	profiles map[uuid.UUID]*Profile
	unlocks  map[string]bool
}

func newRepoStub() *repoStub {
	return &repoStub{profiles: map[uuid.UUID]*Profile{}, unlocks: map[string]bool{}}
}

func unlockKey(profileID, employerID uuid.UUID) string {
	return profileID.String() + "/" + employerID.String()
}

func (r *repoStub) Upsert(_ context.Context, p *Profile) error {
	r.profiles[p.ID] = p
	return nil
}

func (r *repoStub) GetByID(_ context.Context, id uuid.UUID) (*Profile, error) {
	if p, ok := r.profiles[id]; ok {
		return p, nil
	}
	return nil, ErrProfileNotFound
}

func (r *repoStub) GetByUserID(_ context.Context, userID uuid.UUID) (*Profile, error) {
	for _, p := range r.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, ErrProfileNotFound
}

func (r *repoStub) HasUnlock(_ context.Context, profileID, employerID uuid.UUID) (bool, error) {
	return r.unlocks[unlockKey(profileID, employerID)], nil
}

func (r *repoStub) CreateUnlock(_ context.Context, u *Unlock) error {
	r.unlocks[unlockKey(u.ProfileID, u.EmployerID)] = true
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
		Category:      wallet.CategoryResumeUnlock,
		Amount:        amount,
		Status:        wallet.TxStatusCompleted,
	}, nil
}

func seedProfile(repo *repoStub) *Profile {
	p := &Profile{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Headline: "Senior Go Developer",
		Phone:    sql.NullString{String: "+919876543210", Valid: true},
	}
	repo.profiles[p.ID] = p
	return p
}

func TestGetRedactsContactsForStrangers(t *testing.T) {
	repo := newRepoStub()
	svc := NewService(repo, &chargerStub{}, 4900)
	p := seedProfile(repo)

	resp, err := svc.Get(context.Background(), uuid.New(), p.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.Phone != "" {
		t.Fatalf("expected redacted phone, got %q", resp.Phone)
	}
	if resp.Unlocked {
		t.Fatal("expected unlocked=false")
	}
}

func TestGetShowsContactsToOwner(t *testing.T) {
	repo := newRepoStub()
	svc := NewService(repo, &chargerStub{}, 4900)
	p := seedProfile(repo)

	resp, err := svc.Get(context.Background(), p.UserID, p.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.Phone == "" {
		t.Fatal("expected owner to see phone")
	}
}

func TestUnlockChargesOnceThenFree(t *testing.T) {
	repo := newRepoStub()
	charger := &chargerStub{}
	svc := NewService(repo, charger, 4900)
	p := seedProfile(repo)
	employerID := uuid.New()

	first, err := svc.Unlock(context.Background(), employerID, p.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if first.Charge == nil {
		t.Fatal("expected charge on first unlock")
	}
	if want := "resume_unlock_" + employerID.String() + "_" + p.ID.String(); charger.lastKey != want {
		t.Fatalf("expected idempotency key %q, got %q", want, charger.lastKey)
	}

	second, err := svc.Unlock(context.Background(), employerID, p.ID)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if second.Charge != nil {
		t.Fatal("expected repeat unlock to be free")
	}
	if charger.calls != 1 {
		t.Fatalf("expected exactly 1 charge, got %d", charger.calls)
	}
	if second.Profile.Phone == "" {
		t.Fatal("expected contacts visible after unlock")
	}
}

func TestUnlockOwnProfileRejected(t *testing.T) {
	repo := newRepoStub()
	charger := &chargerStub{}
	svc := NewService(repo, charger, 4900)
	p := seedProfile(repo)

	_, err := svc.Unlock(context.Background(), p.UserID, p.ID)
	if !errors.Is(err, ErrOwnProfile) {
		t.Fatalf("expected ErrOwnProfile, got %v", err)
	}
	if charger.calls != 0 {
		t.Fatalf("expected no charge, got %d", charger.calls)
	}
}

func TestUnlockInsufficientBalanceLeavesNoUnlock(t *testing.T) {
	repo := newRepoStub()
	charger := &chargerStub{err: &wallet.InsufficientBalanceError{Required: 4900, Available: 100}}
	svc := NewService(repo, charger, 4900)
	p := seedProfile(repo)
	employerID := uuid.New()

	_, err := svc.Unlock(context.Background(), employerID, p.ID)
	if _, ok := wallet.IsInsufficientBalance(err); !ok {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
	if repo.unlocks[unlockKey(p.ID, employerID)] {
		t.Fatal("unlock must not be recorded after a failed charge")
	}
}
