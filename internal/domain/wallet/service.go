package wallet

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service is the ledger engine's public surface. Feature code (job
// promotion, resume unlock, top-up) and the admin panel go through it;
// nothing else writes wallet rows.
type Service struct {
	repo  Repository
	audit AuditEmitter
}

func NewService(repo Repository, audit AuditEmitter) *Service {
	if audit == nil {
		audit = NopAuditEmitter{}
	}
	return &Service{repo: repo, audit: audit}
}

// GetOrCreateWallet returns the user's wallet, creating it lazily
func (s *Service) GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

// GetBalance returns the current balance and currency
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (*BalanceResponse, error) {
	w, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &BalanceResponse{Balance: w.Balance, Currency: w.Currency}, nil
}

// TopUp credits the wallet. The idempotency key is required: top-up
// requests are retried by clients and must not double-apply.
func (s *Service) TopUp(ctx context.Context, userID uuid.UUID, amount int64, idempotencyKey string, metadata map[string]interface{}) (*TransactionResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		return nil, ErrReferenceRequired
	}

	// Lock-free duplicate check; a true duplicate never touches the lock.
	if existing, err := s.repo.FindByReference(ctx, key); err != nil {
		return nil, err
	} else if existing != nil {
		return resultFromTransaction(existing, true), nil
	}

	meta, err := marshalMetadata(metadata)
	if err != nil {
		return nil, err
	}

	t, duplicate, err := s.repo.Credit(ctx, ApplyParams{
		UserID:      userID,
		Category:    CategoryDeposit,
		Amount:      amount,
		ReferenceID: &key,
		Description: "wallet top-up",
		Metadata:    meta,
	})
	if err != nil {
		return nil, err
	}

	if !duplicate {
		log.Info().
			Str("user_id", userID.String()).
			Str("transaction_id", t.UUID.String()).
			Int64("amount", amount).
			Int64("balance_after", t.BalanceAfter).
			Msg("wallet topup applied")
		s.emitAudit(userID, t)
	}
	return resultFromTransaction(t, duplicate), nil
}

// Deduct debits the wallet for a paid feature. Description is required;
// the idempotency key is optional but without one a retry is a new charge.
func (s *Service) Deduct(ctx context.Context, userID uuid.UUID, amount int64, category Category, opts DeductOptions) (*TransactionResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(string(category)) == "" {
		return nil, ErrCategoryRequired
	}
	if strings.TrimSpace(opts.Description) == "" {
		return nil, ErrDescriptionRequired
	}

	var ref *string
	if key := strings.TrimSpace(opts.IdempotencyKey); key != "" {
		if existing, err := s.repo.FindByReference(ctx, key); err != nil {
			return nil, err
		} else if existing != nil {
			return resultFromTransaction(existing, true), nil
		}
		ref = &key
	}

	meta, err := marshalMetadata(opts.Metadata)
	if err != nil {
		return nil, err
	}

	t, duplicate, err := s.repo.Debit(ctx, ApplyParams{
		UserID:            userID,
		Category:          category,
		Amount:            amount,
		ReferenceID:       ref,
		RelatedEntityType: nullString(opts.RelatedEntityType),
		RelatedEntityID:   nullString(opts.RelatedEntityID),
		Description:       opts.Description,
		Metadata:          meta,
	})
	if err != nil {
		return nil, err
	}

	if !duplicate {
		log.Info().
			Str("user_id", userID.String()).
			Str("transaction_id", t.UUID.String()).
			Str("category", string(category)).
			Int64("amount", amount).
			Int64("balance_after", t.BalanceAfter).
			Msg("wallet debit applied")
		s.emitAudit(userID, t)
	}
	return resultFromTransaction(t, duplicate), nil
}

// Grant credits a wallet on behalf of an admin
func (s *Service) Grant(ctx context.Context, userID uuid.UUID, amount int64, idempotencyKey, description string) (*TransactionResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		return nil, ErrReferenceRequired
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrDescriptionRequired
	}

	if existing, err := s.repo.FindByReference(ctx, key); err != nil {
		return nil, err
	} else if existing != nil {
		return resultFromTransaction(existing, true), nil
	}

	t, duplicate, err := s.repo.Credit(ctx, ApplyParams{
		UserID:      userID,
		Category:    CategoryAdminGrant,
		Amount:      amount,
		ReferenceID: &key,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	if !duplicate {
		log.Info().
			Str("user_id", userID.String()).
			Str("transaction_id", t.UUID.String()).
			Int64("amount", amount).
			Msg("wallet admin grant applied")
		s.emitAudit(userID, t)
	}
	return resultFromTransaction(t, duplicate), nil
}

// SetStatus transitions a wallet between active, frozen and closed
func (s *Service) SetStatus(ctx context.Context, userID uuid.UUID, status Status) error {
	switch status {
	case StatusActive, StatusFrozen, StatusClosed:
	default:
		return ErrInvalidStatus
	}

	// Lazily create so an admin can freeze a wallet never touched before
	if _, err := s.repo.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("status", string(status)).
		Msg("wallet status updated")
	return nil
}

// GetTransactionHistory returns the ledger newest-first with a total count
func (s *Service) GetTransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) (*HistoryResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	transactions, total, err := s.repo.History(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]*TransactionItem, 0, len(transactions))
	for i := range transactions {
		items = append(items, itemFromTransaction(&transactions[i]))
	}
	return &HistoryResponse{Transactions: items, Total: total, Limit: limit, Offset: offset}, nil
}

// SearchTransactions returns filtered ledger entries for the admin panel
func (s *Service) SearchTransactions(ctx context.Context, f SearchFilters) ([]*TransactionItem, error) {
	transactions, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]*TransactionItem, 0, len(transactions))
	for i := range transactions {
		items = append(items, itemFromTransaction(&transactions[i]))
	}
	return items, nil
}

// emitAudit notifies the audit emitter off the request path. Failures are
// logged and never propagate: the mutation is already committed.
func (s *Service) emitAudit(userID uuid.UUID, t *Transaction) {
	event := AuditEvent{
		TransactionID: t.UUID,
		UserID:        userID,
		WalletID:      t.WalletID,
		Type:          t.Type,
		Category:      t.Category,
		Amount:        t.Amount,
		BalanceAfter:  t.BalanceAfter,
		Status:        t.Status,
		OccurredAt:    t.CreatedAt,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.audit.Emit(ctx, event); err != nil {
			log.Warn().
				Err(err).
				Str("transaction_id", event.TransactionID.String()).
				Msg("wallet audit emit failed")
		}
	}()
}

func marshalMetadata(metadata map[string]interface{}) (types.JSONText, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	return types.JSONText(raw), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
