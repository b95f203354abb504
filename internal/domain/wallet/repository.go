package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// errDuplicateReference signals a unique-index hit on reference_id. It is
// resolved inside the repository by surfacing the winning entry.
var errDuplicateReference = errors.New("duplicate reference")

// ApplyParams carries one balance mutation. Amount is always positive;
// the operation (Credit/Debit) determines the sign.
type ApplyParams struct {
	UserID            uuid.UUID
	Category          Category
	Amount            int64
	ReferenceID       *string
	RelatedEntityType sql.NullString
	RelatedEntityID   sql.NullString
	Description       string
	Metadata          types.JSONText
}

// SearchFilters provides admin-facing ledger filtering
type SearchFilters struct {
	UserID   *uuid.UUID
	Type     *TransactionType
	Category *Category
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// Repository defines wallet and ledger data access. Credit and Debit run
// the whole mutation in one database transaction holding a row lock on
// the wallet, so correctness holds across independent processes.
type Repository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Wallet, error)
	FindByReference(ctx context.Context, referenceID string) (*Transaction, error)
	Credit(ctx context.Context, p ApplyParams) (*Transaction, bool, error)
	Debit(ctx context.Context, p ApplyParams) (*Transaction, bool, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, int, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, status Status) error
	Search(ctx context.Context, f SearchFilters) ([]Transaction, error)
}

const txColumns = `id, uuid, wallet_id, type, category, amount, balance_before, balance_after,
	status, reference_id, related_entity_type, related_entity_id, description, metadata,
	processed_at, created_at, updated_at`

const txColumnsPrefixed = `t.id, t.uuid, t.wallet_id, t.type, t.category, t.amount, t.balance_before,
	t.balance_after, t.status, t.reference_id, t.related_entity_type, t.related_entity_id,
	t.description, t.metadata, t.processed_at, t.created_at, t.updated_at`

const walletColumns = `id, user_id, balance, currency, status, created_at, updated_at`

// PostgresRepository implements Repository on top of sqlx/Postgres
type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate returns the user's wallet, creating it with a zero balance
// on first reference. The unique constraint on user_id makes concurrent
// first access safe: only one row can ever be created.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	if err := ensureWallet(ctx, r.db, userID); err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}

	var w Wallet
	err := r.db.GetContext(ctx, &w, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// FindByReference is the lock-free idempotency lookup. It returns nil
// when no entry carries the reference, so a genuine duplicate request
// never contends for the wallet lock.
func (r *PostgresRepository) FindByReference(ctx context.Context, referenceID string) (*Transaction, error) {
	return findTransactionByReference(ctx, r.db, referenceID)
}

// Credit applies a positive balance change atomically
func (r *PostgresRepository) Credit(ctx context.Context, p ApplyParams) (*Transaction, bool, error) {
	return r.apply(ctx, TypeCredit, p)
}

// Debit applies a negative balance change atomically. It fails with
// ErrWalletNotActive or InsufficientBalanceError without writing anything.
func (r *PostgresRepository) Debit(ctx context.Context, p ApplyParams) (*Transaction, bool, error) {
	return r.apply(ctx, TypeDebit, p)
}

// apply is the transaction coordinator: lock the wallet row, re-check the
// idempotency key under the lock, validate, then write the new balance and
// the ledger row in the same database transaction. All three commit
// together or not at all.
func (r *PostgresRepository) apply(ctx context.Context, txType TransactionType, p ApplyParams) (*Transaction, bool, error) {
	dbtx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer dbtx.Rollback()

	w, err := r.lockWallet(ctx, dbtx, p.UserID)
	if err != nil {
		return nil, false, err
	}

	// A concurrent retry may have committed between the caller's lock-free
	// lookup and our lock. The re-check under the lock catches it.
	if p.ReferenceID != nil {
		existing, err := findTransactionByReference(ctx, dbtx, *p.ReferenceID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, true, nil
		}
	}

	if txType == TypeDebit {
		if !w.IsActive() {
			return nil, false, ErrWalletNotActive
		}
		if w.Balance < p.Amount {
			return nil, false, &InsufficientBalanceError{Required: p.Amount, Available: w.Balance}
		}
	}

	after := w.Balance + p.Amount
	if txType == TypeDebit {
		after = w.Balance - p.Amount
	}

	now := time.Now()
	t := &Transaction{
		UUID:              uuid.New(),
		WalletID:          w.ID,
		Type:              txType,
		Category:          p.Category,
		Amount:            p.Amount,
		BalanceBefore:     w.Balance,
		BalanceAfter:      after,
		Status:            TxStatusCompleted,
		ReferenceID:       p.ReferenceID,
		RelatedEntityType: p.RelatedEntityType,
		RelatedEntityID:   p.RelatedEntityID,
		Description:       p.Description,
		Metadata:          p.Metadata,
		ProcessedAt:       sql.NullTime{Time: now, Valid: true},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := updateBalance(ctx, dbtx, w.ID, after); err != nil {
		return nil, false, err
	}

	if err := insertTransaction(ctx, dbtx, t); err != nil {
		if errors.Is(err, errDuplicateReference) && p.ReferenceID != nil {
			// Lost the unique-index race to another process. The aborted
			// transaction wrote nothing; surface the winner's entry.
			dbtx.Rollback()
			existing, ferr := r.FindByReference(ctx, *p.ReferenceID)
			if ferr != nil {
				return nil, false, ferr
			}
			if existing != nil {
				return existing, true, nil
			}
		}
		return nil, false, err
	}

	if err := dbtx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit tx: %w", err)
	}
	return t, false, nil
}

// History returns the user's ledger newest-first along with the total count
func (r *PostgresRepository) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, int, error) {
	transactions := make([]Transaction, 0)
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT `+txColumnsPrefixed+`
		FROM transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE w.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.db.GetContext(ctx, &total, `
		SELECT COUNT(*)
		FROM transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE w.user_id = $1
	`, userID)
	if err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}

// UpdateStatus transitions a wallet between active, frozen and closed.
// Wallets are never deleted.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE wallets SET status = $2, updated_at = now() WHERE user_id = $1`,
		userID, status)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrWalletNotFound
	}
	return nil
}

// Search returns filtered ledger entries for admin use
func (r *PostgresRepository) Search(ctx context.Context, f SearchFilters) ([]Transaction, error) {
	query := `
		SELECT ` + txColumnsPrefixed + `
		FROM transactions t
		JOIN wallets w ON w.id = t.wallet_id
		WHERE 1=1`
	args := make([]interface{}, 0, 8)
	idx := 1

	if f.UserID != nil {
		query += fmt.Sprintf(" AND w.user_id = $%d", idx)
		args = append(args, *f.UserID)
		idx++
	}
	if f.Type != nil && *f.Type != "" {
		query += fmt.Sprintf(" AND t.type = $%d", idx)
		args = append(args, *f.Type)
		idx++
	}
	if f.Category != nil && *f.Category != "" {
		query += fmt.Sprintf(" AND t.category = $%d", idx)
		args = append(args, *f.Category)
		idx++
	}
	if f.DateFrom != nil {
		query += fmt.Sprintf(" AND t.created_at >= $%d", idx)
		args = append(args, *f.DateFrom)
		idx++
	}
	if f.DateTo != nil {
		query += fmt.Sprintf(" AND t.created_at <= $%d", idx)
		args = append(args, *f.DateTo)
		idx++
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	transactions := make([]Transaction, 0)
	if err := r.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, err
	}
	return transactions, nil
}

// lockWallet ensures the row exists, then acquires the exclusive row lock
// that serializes mutations against this wallet.
func (r *PostgresRepository) lockWallet(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*Wallet, error) {
	if err := ensureWallet(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}

	var w Wallet
	err := tx.GetContext(ctx, &w, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func ensureWallet(ctx context.Context, q sqlx.ExtContext, userID uuid.UUID) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, balance, currency, status)
		VALUES ($1, $2, 0, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.New(), userID, DefaultCurrency, StatusActive)
	return err
}

func findTransactionByReference(ctx context.Context, q sqlx.QueryerContext, referenceID string) (*Transaction, error) {
	var t Transaction
	err := sqlx.GetContext(ctx, q, &t, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE reference_id = $1
		LIMIT 1
	`, referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func updateBalance(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID, balance int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = now() WHERE id = $2`,
		balance, walletID)
	return err
}

func insertTransaction(ctx context.Context, tx *sqlx.Tx, t *Transaction) error {
	var metadata interface{}
	if len(t.Metadata) > 0 {
		metadata = t.Metadata
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO transactions (
			uuid, wallet_id, type, category, amount, balance_before, balance_after,
			status, reference_id, related_entity_type, related_entity_id,
			description, metadata, processed_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING id
	`,
		t.UUID, t.WalletID, t.Type, t.Category, t.Amount, t.BalanceBefore, t.BalanceAfter,
		t.Status, t.ReferenceID, t.RelatedEntityType, t.RelatedEntityID,
		t.Description, metadata, t.ProcessedAt, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return errDuplicateReference
		}
		return err
	}
	return nil
}
