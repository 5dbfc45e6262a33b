package notifications

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"jobboard/internal/observability"
)

const defaultSendTimeout = 10 * time.Second

// UserPublisher pushes a realtime payload to one user.
type UserPublisher interface {
	PublishUser(ctx context.Context, userID uint, payload string) error
}

// Dispatcher sends notifications in the background. Callers dispatch after
// their database write has committed; delivery failures are logged and
// counted, never returned.
type Dispatcher struct {
	mailer    Mailer
	publisher UserPublisher
	timeout   time.Duration
	realtime  func(userID uint) bool

	wg sync.WaitGroup
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout bounds each delivery.
func WithTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithRealtimeGate decides per user whether realtime events are published.
func WithRealtimeGate(enabled func(userID uint) bool) DispatcherOption {
	return func(disp *Dispatcher) { disp.realtime = enabled }
}

// NewDispatcher returns a Dispatcher. publisher may be nil.
func NewDispatcher(mailer Mailer, publisher UserPublisher, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		mailer:    mailer,
		publisher: publisher,
		timeout:   defaultSendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type realtimeEvent struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Dispatch sends msg asynchronously. The send outlives ctx's cancellation
// but keeps its values for logging.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) {
	if d == nil {
		return
	}
	base := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()

		op := observability.StartAsync(sendCtx, "notification.dispatch", "kind", msg.Kind, "user_id", msg.UserID)
		defer op.Done()
		defer func() { op.Recover(recover()) }()
		d.send(sendCtx, op, msg)
	}()
}

func (d *Dispatcher) send(ctx context.Context, op *observability.AsyncOp, msg Message) {
	if msg.Recipient != "" && d.mailer != nil {
		err := d.mailer.Deliver(ctx, msg)
		observability.Notifications.WithLabelValues("email", observability.Result(err)).Inc()
		op.Fail("email", err)
	}

	if msg.UserID != 0 && d.publisher != nil && (d.realtime == nil || d.realtime(msg.UserID)) {
		err := d.publishRealtime(ctx, msg)
		observability.Notifications.WithLabelValues("realtime", observability.Result(err)).Inc()
		op.Fail("realtime", err)
	}
}

func (d *Dispatcher) publishRealtime(ctx context.Context, msg Message) error {
	raw, err := json.Marshal(realtimeEvent{
		Type: msg.Kind,
		Payload: map[string]any{
			"subject": msg.Subject,
			"body":    msg.Body,
		},
	})
	if err != nil {
		return err
	}
	return d.publisher.PublishUser(ctx, msg.UserID, string(raw))
}

// Wait blocks until every dispatched send has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
