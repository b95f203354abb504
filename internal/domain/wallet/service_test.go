package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type repoStub struct {
	wallet      *Wallet
	byRef       map[string]*Transaction
	creditCalls int
	debitCalls  int
	debitErr    error
	lastParams  ApplyParams
	lastLimit   int
	lastOffset  int
	status      Status
}

func newRepoStub(balance int64) *repoStub {
	return &repoStub{
		wallet: &Wallet{
			ID:       uuid.New(),
			UserID:   uuid.New(),
			Balance:  balance,
			Currency: DefaultCurrency,
			Status:   StatusActive,
		},
		byRef: map[string]*Transaction{},
	}
}

func (r *repoStub) GetOrCreate(context.Context, uuid.UUID) (*Wallet, error) {
	return r.wallet, nil
}

func (r *repoStub) FindByReference(_ context.Context, referenceID string) (*Transaction, error) {
	return r.byRef[referenceID], nil
}

func (r *repoStub) Credit(_ context.Context, p ApplyParams) (*Transaction, bool, error) {
	r.creditCalls++
	r.lastParams = p
	return r.applyStub(p, TypeCredit), false, nil
}

func (r *repoStub) Debit(_ context.Context, p ApplyParams) (*Transaction, bool, error) {
	r.debitCalls++
	r.lastParams = p
	if r.debitErr != nil {
		return nil, false, r.debitErr
	}
	return r.applyStub(p, TypeDebit), false, nil
}

func (r *repoStub) History(_ context.Context, _ uuid.UUID, limit, offset int) ([]Transaction, int, error) {
	r.lastLimit = limit
	r.lastOffset = offset
	return nil, 0, nil
}

func (r *repoStub) UpdateStatus(_ context.Context, _ uuid.UUID, status Status) error {
	r.status = status
	return nil
}

func (r *repoStub) Search(context.Context, SearchFilters) ([]Transaction, error) {
	return nil, nil
}

func (r *repoStub) applyStub(p ApplyParams, txType TransactionType) *Transaction {
	before := r.wallet.Balance
	after := before + p.Amount
	if txType == TypeDebit {
		after = before - p.Amount
	}
	r.wallet.Balance = after
	t := &Transaction{
		UUID:          uuid.New(),
		WalletID:      r.wallet.ID,
		Type:          txType,
		Category:      p.Category,
		Amount:        p.Amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Status:        TxStatusCompleted,
		ReferenceID:   p.ReferenceID,
		CreatedAt:     time.Now(),
	}
	if p.ReferenceID != nil {
		r.byRef[*p.ReferenceID] = t
	}
	return t
}

func TestTopUpValidation(t *testing.T) {
	svc := NewService(newRepoStub(0), nil)

	if _, err := svc.TopUp(context.Background(), uuid.New(), 0, "key", nil); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.TopUp(context.Background(), uuid.New(), 100, "  ", nil); !errors.Is(err, ErrReferenceRequired) {
		t.Fatalf("expected ErrReferenceRequired, got %v", err)
	}
}

func TestTopUpDuplicateShortCircuits(t *testing.T) {
	repo := newRepoStub(10000)
	repo.byRef["key1"] = &Transaction{
		UUID:          uuid.New(),
		Type:          TypeCredit,
		Category:      CategoryDeposit,
		Amount:        10000,
		BalanceBefore: 0,
		BalanceAfter:  10000,
		Status:        TxStatusCompleted,
	}
	svc := NewService(repo, nil)

	result, err := svc.TopUp(context.Background(), uuid.New(), 10000, "key1", nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !result.IsDuplicate {
		t.Fatal("expected duplicate result")
	}
	if result.BalanceAfter != 10000 {
		t.Fatalf("expected original balance_after 10000, got %d", result.BalanceAfter)
	}
	if repo.creditCalls != 0 {
		t.Fatalf("duplicate must not mutate, credit called %d times", repo.creditCalls)
	}
}

func TestDeductValidation(t *testing.T) {
	svc := NewService(newRepoStub(10000), nil)

	if _, err := svc.Deduct(context.Background(), uuid.New(), -5, CategoryResumeUnlock, DeductOptions{Description: "x"}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Deduct(context.Background(), uuid.New(), 100, CategoryResumeUnlock, DeductOptions{}); !errors.Is(err, ErrDescriptionRequired) {
		t.Fatalf("expected ErrDescriptionRequired, got %v", err)
	}
	if _, err := svc.Deduct(context.Background(), uuid.New(), 100, "", DeductOptions{Description: "x"}); !errors.Is(err, ErrCategoryRequired) {
		t.Fatalf("expected ErrCategoryRequired, got %v", err)
	}
}

func TestDeductInsufficientBalancePropagates(t *testing.T) {
	repo := newRepoStub(5000)
	repo.debitErr = &InsufficientBalanceError{Required: 6000, Available: 5000}
	svc := NewService(repo, nil)

	_, err := svc.Deduct(context.Background(), uuid.New(), 6000, CategoryResumeUnlock, DeductOptions{Description: "unlock"})
	ibe, ok := IsInsufficientBalance(err)
	if !ok {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if ibe.Required != 6000 || ibe.Available != 5000 {
		t.Fatalf("unexpected amounts: %+v", ibe)
	}
}

func TestDeductWithoutKeyIsAtMostOnce(t *testing.T) {
	repo := newRepoStub(10000)
	svc := NewService(repo, nil)

	result, err := svc.Deduct(context.Background(), uuid.New(), 5000, CategoryJobPromotion, DeductOptions{Description: "promo"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if result.IsDuplicate {
		t.Fatal("fresh deduct must not be a duplicate")
	}
	if repo.lastParams.ReferenceID != nil {
		t.Fatal("no idempotency key supplied, none may be generated")
	}
}

type failingEmitter struct {
	called chan struct{}
}

func (e *failingEmitter) Emit(context.Context, AuditEvent) error {
	close(e.called)
	return errors.New("audit sink down")
}

func TestAuditFailureDoesNotFailMutation(t *testing.T) {
	emitter := &failingEmitter{called: make(chan struct{})}
	svc := NewService(newRepoStub(0), emitter)

	result, err := svc.TopUp(context.Background(), uuid.New(), 10000, "key-audit", nil)
	if err != nil {
		t.Fatalf("mutation must not fail on audit error: %v", err)
	}
	if result.BalanceAfter != 10000 {
		t.Fatalf("expected balance_after 10000, got %d", result.BalanceAfter)
	}

	select {
	case <-emitter.called:
	case <-time.After(time.Second):
		t.Fatal("audit emitter was never called")
	}
}

func TestHistoryClampsPagination(t *testing.T) {
	repo := newRepoStub(0)
	svc := NewService(repo, nil)

	resp, err := svc.GetTransactionHistory(context.Background(), uuid.New(), 1000, -5)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.lastLimit != maxHistoryLimit {
		t.Fatalf("expected limit clamped to %d, got %d", maxHistoryLimit, repo.lastLimit)
	}
	if repo.lastOffset != 0 {
		t.Fatalf("expected offset clamped to 0, got %d", repo.lastOffset)
	}
	if resp.Limit != maxHistoryLimit || resp.Offset != 0 {
		t.Fatalf("response must echo effective values, got limit %d offset %d", resp.Limit, resp.Offset)
	}

	resp, err = svc.GetTransactionHistory(context.Background(), uuid.New(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if repo.lastLimit != defaultHistoryLimit {
		t.Fatalf("expected default limit %d, got %d", defaultHistoryLimit, repo.lastLimit)
	}
	if resp.Limit != defaultHistoryLimit {
		t.Fatalf("response must echo the default limit, got %d", resp.Limit)
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newRepoStub(0), nil)

	if err := svc.SetStatus(context.Background(), uuid.New(), Status("suspended")); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestGrantUsesAdminGrantCategory(t *testing.T) {
	repo := newRepoStub(0)
	svc := NewService(repo, nil)

	result, err := svc.Grant(context.Background(), uuid.New(), 5000, "grant-1", "goodwill credit")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if result.IsDuplicate {
		t.Fatal("fresh grant must not be a duplicate")
	}
	if repo.lastParams.Category != CategoryAdminGrant {
		t.Fatalf("expected category admin_grant, got %s", repo.lastParams.Category)
	}
}
