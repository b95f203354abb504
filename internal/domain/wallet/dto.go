package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionResult is what every mutation returns. For a deduplicated
// retry it carries the original entry's snapshot with IsDuplicate set.
type TransactionResult struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	Type          TransactionType   `json:"type"`
	Category      Category          `json:"category"`
	Amount        int64             `json:"amount"`
	BalanceBefore int64             `json:"balance_before"`
	BalanceAfter  int64             `json:"balance_after"`
	Status        TransactionStatus `json:"status"`
	IsDuplicate   bool              `json:"is_duplicate"`
}

func resultFromTransaction(t *Transaction, duplicate bool) *TransactionResult {
	return &TransactionResult{
		TransactionID: t.UUID,
		Type:          t.Type,
		Category:      t.Category,
		Amount:        t.Amount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Status:        t.Status,
		IsDuplicate:   duplicate,
	}
}

// DeductOptions carries per-call debit parameters. IdempotencyKey is
// optional; without it the call is at most once and retries are unsafe.
type DeductOptions struct {
	IdempotencyKey    string
	Description       string
	RelatedEntityType string
	RelatedEntityID   string
	Metadata          map[string]interface{}
}

// BalanceResponse for GET /wallet/balance
type BalanceResponse struct {
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}

// TopUpRequest for POST /wallet/topup
type TopUpRequest struct {
	Amount         int64                  `json:"amount" validate:"required,gt=0"`
	IdempotencyKey string                 `json:"idempotency_key" validate:"required,max=128"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// TransactionItem is a history row shaped for display. AmountMajor is the
// amount converted from minor units (paise to rupees) as a decimal string.
type TransactionItem struct {
	ID            uuid.UUID         `json:"id"`
	Type          TransactionType   `json:"type"`
	Category      Category          `json:"category"`
	Amount        int64             `json:"amount"`
	AmountMajor   string            `json:"amount_major"`
	BalanceBefore int64             `json:"balance_before"`
	BalanceAfter  int64             `json:"balance_after"`
	Status        TransactionStatus `json:"status"`
	Description   string            `json:"description"`
	ReferenceID   *string           `json:"reference_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

func itemFromTransaction(t *Transaction) *TransactionItem {
	return &TransactionItem{
		ID:            t.UUID,
		Type:          t.Type,
		Category:      t.Category,
		Amount:        t.Amount,
		AmountMajor:   decimal.New(t.Amount, -2).StringFixed(2),
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Status:        t.Status,
		Description:   t.Description,
		ReferenceID:   t.ReferenceID,
		CreatedAt:     t.CreatedAt,
	}
}

// HistoryResponse for GET /wallet/transactions. Limit and Offset are the
// effective values after clamping, not what the caller asked for.
type HistoryResponse struct {
	Transactions []*TransactionItem `json:"transactions"`
	Total        int                `json:"total"`
	Limit        int                `json:"limit"`
	Offset       int                `json:"offset"`
}
