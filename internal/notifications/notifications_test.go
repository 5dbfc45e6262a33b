package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

type mailerFunc func(ctx context.Context, msg Message) error

func (f mailerFunc) Deliver(ctx context.Context, msg Message) error { return f(ctx, msg) }

type publisherFunc func(ctx context.Context, userID uint, payload string) error

func (f publisherFunc) PublishUser(ctx context.Context, userID uint, payload string) error {
	return f(ctx, userID, payload)
}

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "x"))
	assert.NoError(t, n.PublishBroadcast(context.Background(), "x"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestNotifier_PatternSubscriberReceivesUserEvents(t *testing.T) {
	rdb := newRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	got := map[string]string{}
	require.NoError(t, n.StartPatternSubscriber(ctx, func(channel, payload string) {
		mu.Lock()
		got[channel] = payload
		mu.Unlock()
	}))

	require.NoError(t, n.PublishUser(context.Background(), 42, "hello"))
	require.NoError(t, n.PublishBroadcast(context.Background(), "everyone"))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got["notifications:user:42"] == "hello" && got[broadcastChannel] == "everyone"
	}, testEventuallyTimeout, testPollInterval)
}

func TestOutboxMailer_QueuesJSON(t *testing.T) {
	rdb := newRedis(t)
	m := NewMailer(rdb, "jobs@example.com")

	require.NoError(t, m.Deliver(context.Background(), Message{
		Recipient: "tariro@example.com",
		Subject:   "Application update",
		Body:      "You have been shortlisted",
	}))

	raw, err := rdb.LPop(context.Background(), OutboxKey).Result()
	require.NoError(t, err)

	var entry outboxEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	assert.Equal(t, "jobs@example.com", entry.From)
	assert.Equal(t, "tariro@example.com", entry.To)
	assert.Equal(t, "Application update", entry.Subject)
	assert.False(t, entry.QueuedAt.IsZero())

	assert.IsType(t, LogMailer{}, NewMailer(nil, "x"))
	assert.NoError(t, LogMailer{}.Deliver(context.Background(), Message{Recipient: "a@b.co"}))
}

func TestDispatcher_DeliversMailAndRealtime(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var mailed, published atomic.Int32
	var payload atomic.Value
	d := NewDispatcher(
		mailerFunc(func(_ context.Context, msg Message) error {
			assert.Equal(t, "tariro@example.com", msg.Recipient)
			mailed.Add(1)
			return nil
		}),
		publisherFunc(func(_ context.Context, userID uint, p string) error {
			assert.Equal(t, uint(9), userID)
			payload.Store(p)
			published.Add(1)
			return nil
		}),
	)

	d.Dispatch(context.Background(), Message{
		Recipient: "tariro@example.com", Subject: "s", Body: "b", UserID: 9, Kind: "application_status",
	})
	d.Wait()

	assert.Equal(t, int32(1), mailed.Load())
	assert.Equal(t, int32(1), published.Load())

	var ev realtimeEvent
	require.NoError(t, json.Unmarshal([]byte(payload.Load().(string)), &ev))
	assert.Equal(t, "application_status", ev.Type)
	assert.Equal(t, "s", ev.Payload["subject"])
}

func TestDispatcher_FailuresAreSwallowed(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var published atomic.Int32
	d := NewDispatcher(
		mailerFunc(func(context.Context, Message) error { return errors.New("smtp down") }),
		publisherFunc(func(context.Context, uint, string) error {
			published.Add(1)
			return errors.New("redis down")
		}),
	)

	for i := 0; i < 5; i++ {
		d.Dispatch(context.Background(), Message{Recipient: "a@example.com", UserID: 1})
	}
	d.Wait()
	assert.Equal(t, int32(5), published.Load(), "mail failure must not stop the realtime event")
}

func TestDispatcher_OutlivesRequestContextButHonoursTimeout(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var sawDeadline atomic.Bool
	d := NewDispatcher(
		mailerFunc(func(ctx context.Context, _ Message) error {
			if _, ok := ctx.Deadline(); ok {
				sawDeadline.Store(true)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return nil
			}
		}),
		nil,
		WithTimeout(50*time.Millisecond),
	)

	reqCtx, cancel := context.WithCancel(context.Background())
	d.Dispatch(reqCtx, Message{Recipient: "a@example.com"})
	cancel()

	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not finish after its timeout")
	}
	assert.True(t, sawDeadline.Load())
}

func TestDispatcher_RealtimeGate(t *testing.T) {
	var published atomic.Int32
	d := NewDispatcher(nil,
		publisherFunc(func(context.Context, uint, string) error {
			published.Add(1)
			return nil
		}),
		WithRealtimeGate(func(userID uint) bool { return userID == 2 }),
	)

	d.Dispatch(context.Background(), Message{UserID: 1})
	d.Dispatch(context.Background(), Message{UserID: 2})
	d.Wait()
	assert.Equal(t, int32(1), published.Load())

	var nilDispatcher *Dispatcher
	nilDispatcher.Dispatch(context.Background(), Message{})
	nilDispatcher.Wait()
}

func TestHub_RegisterRouteAndUnregister(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(7, nil)
	require.NoError(t, err)
	b, err := hub.Register(7, nil)
	require.NoError(t, err)
	other, err := hub.Register(8, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Connections(7))

	hub.route(UserChannel(7), "for seven")
	assert.Equal(t, "for seven", string(<-a.Send))
	assert.Equal(t, "for seven", string(<-b.Send))
	assert.Empty(t, other.Send)

	hub.route(broadcastChannel, "all")
	assert.Equal(t, "all", string(<-other.Send))

	hub.route("notifications:user:abc", "ignored")
	hub.route("elsewhere", "ignored")
	assert.Empty(t, other.Send)

	hub.UnregisterClient(a)
	hub.UnregisterClient(a)
	assert.Equal(t, 1, hub.Connections(7))
	_, open := <-a.Send
	assert.False(t, open)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.Connections(7))
	hub.UnregisterClient(b)
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(1, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrUserFull)

	_, err = hub.Register(2, nil)
	assert.NoError(t, err)
	require.NoError(t, hub.Shutdown(context.Background()))
}

func TestHub_FullBufferDrops(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		hub.Broadcast(3, "x")
	}
	assert.Len(t, c.Send, sendBuffer)
	require.NoError(t, hub.Shutdown(context.Background()))
}

func TestHub_WiringDeliversPublishedEvents(t *testing.T) {
	rdb := newRedis(t)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := hub.Register(5, nil)
	require.NoError(t, err)
	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	require.NoError(t, n.PublishUser(context.Background(), 5, `{"type":"application_status"}`))

	select {
	case msg := <-c.Send:
		assert.JSONEq(t, `{"type":"application_status"}`, string(msg))
	case <-time.After(testEventuallyTimeout):
		t.Fatal("event was not delivered")
	}
	require.NoError(t, hub.Shutdown(context.Background()))
}
