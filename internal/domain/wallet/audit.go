package wallet

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// AuditEvent describes one committed balance mutation. Events are
// best-effort: a lost event never undoes the mutation it describes.
type AuditEvent struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	UserID        uuid.UUID         `json:"user_id"`
	WalletID      uuid.UUID         `json:"wallet_id"`
	Type          TransactionType   `json:"type"`
	Category      Category          `json:"category"`
	Amount        int64             `json:"amount"`
	BalanceAfter  int64             `json:"balance_after"`
	Status        TransactionStatus `json:"status"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// AuditEmitter receives post-commit notifications of balance mutations
type AuditEmitter interface {
	Emit(ctx context.Context, event AuditEvent) error
}

// RedisAuditEmitter publishes audit events to a Redis channel
type RedisAuditEmitter struct {
	client  *redis.Client
	channel string
}

func NewRedisAuditEmitter(client *redis.Client, channel string) *RedisAuditEmitter {
	return &RedisAuditEmitter{client: client, channel: channel}
}

func (e *RedisAuditEmitter) Emit(ctx context.Context, event AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return e.client.Publish(ctx, e.channel, payload).Err()
}

// NopAuditEmitter discards events; used when Redis is not configured
type NopAuditEmitter struct{}

func (NopAuditEmitter) Emit(context.Context, AuditEvent) error { return nil }
