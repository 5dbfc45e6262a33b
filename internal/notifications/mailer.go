package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jobboard/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// OutboxKey is the Redis list an external mail worker drains.
const OutboxKey = "mail:outbox"

// Message is one notification. Recipient is an email address; UserID, when
// set, also receives a realtime event of type Kind.
type Message struct {
	Recipient string `json:"to"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	UserID    uint   `json:"user_id,omitempty"`
	Kind      string `json:"kind,omitempty"`
}

// Mailer delivers a message by email.
type Mailer interface {
	Deliver(ctx context.Context, msg Message) error
}

// OutboxMailer queues mail as JSON on the Redis outbox list.
type OutboxMailer struct {
	rdb  *redis.Client
	from string
}

type outboxEntry struct {
	From     string    `json:"from"`
	To       string    `json:"to"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	QueuedAt time.Time `json:"queued_at"`
}

// NewOutboxMailer returns a Mailer writing to OutboxKey.
func NewOutboxMailer(rdb *redis.Client, from string) *OutboxMailer {
	return &OutboxMailer{rdb: rdb, from: from}
}

func (m *OutboxMailer) Deliver(ctx context.Context, msg Message) error {
	raw, err := json.Marshal(outboxEntry{
		From:     m.from,
		To:       msg.Recipient,
		Subject:  msg.Subject,
		Body:     msg.Body,
		QueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal mail: %w", err)
	}
	return m.rdb.RPush(ctx, OutboxKey, raw).Err()
}

// LogMailer only logs mail; used when Redis is not configured.
type LogMailer struct{}

func (LogMailer) Deliver(ctx context.Context, msg Message) error {
	middleware.Logger.InfoContext(ctx, "mail not queued, no outbox configured",
		"to", msg.Recipient,
		"subject", msg.Subject,
	)
	return nil
}

// NewMailer picks the outbox when a Redis client is available.
func NewMailer(rdb *redis.Client, from string) Mailer {
	if rdb == nil {
		return LogMailer{}
	}
	return NewOutboxMailer(rdb, from)
}
