package wallet

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// DefaultCurrency is fixed for a wallet's lifetime.
const DefaultCurrency = "INR"

// Status represents wallet status
type Status string

const (
	StatusActive Status = "active"
	StatusFrozen Status = "frozen"
	StatusClosed Status = "closed"
)

// TransactionType represents the direction of a ledger entry
type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

// TransactionStatus represents ledger entry status. Only completed is
// produced by the synchronous flow; pending, failed and reversed are
// reserved for an asynchronous settlement path.
type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusCompleted TransactionStatus = "completed"
	TxStatusFailed    TransactionStatus = "failed"
	TxStatusReversed  TransactionStatus = "reversed"
)

// Category is the caller-supplied reason for a balance change
type Category string

const (
	CategoryDeposit         Category = "deposit"
	CategoryResumeUnlock    Category = "resume_unlock"
	CategoryJobPromotion    Category = "job_promotion"
	CategoryRegistrationFee Category = "registration_fee"
	CategoryAdminGrant      Category = "admin_grant"
	CategoryRefund          Category = "refund"
)

// Wallet is the single mutable balance record per user. Balance is a
// non-negative integer in minor currency units (paise). The row is only
// ever written through the repository's locked transaction.
type Wallet struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	Currency  string    `db:"currency" json:"currency"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsActive returns true if the wallet can be debited
func (w *Wallet) IsActive() bool {
	return w.Status == StatusActive
}

// Transaction is an append-only ledger row. balance_before/balance_after
// snapshot the wallet exactly around this entry; the wallet's current
// balance always equals the balance_after of its newest completed row.
type Transaction struct {
	ID                int64             `db:"id" json:"-"`
	UUID              uuid.UUID         `db:"uuid" json:"id"`
	WalletID          uuid.UUID         `db:"wallet_id" json:"wallet_id"`
	Type              TransactionType   `db:"type" json:"type"`
	Category          Category          `db:"category" json:"category"`
	Amount            int64             `db:"amount" json:"amount"`
	BalanceBefore     int64             `db:"balance_before" json:"balance_before"`
	BalanceAfter      int64             `db:"balance_after" json:"balance_after"`
	Status            TransactionStatus `db:"status" json:"status"`
	ReferenceID       *string           `db:"reference_id" json:"reference_id,omitempty"`
	RelatedEntityType sql.NullString    `db:"related_entity_type" json:"-"`
	RelatedEntityID   sql.NullString    `db:"related_entity_id" json:"-"`
	Description       string            `db:"description" json:"description"`
	Metadata          types.JSONText    `db:"metadata" json:"metadata,omitempty"`
	ProcessedAt       sql.NullTime      `db:"processed_at" json:"-"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"-"`
}
