package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "jobboard-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	span, ctx := NewSpan(context.Background(), "test.op", attribute.Int("job_id", 1))
	span.SetError(errors.New("boom"))
	span.End()
	assert.NotNil(t, ctx)
}

func TestAsyncOp_LogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	op := StartAsync(context.Background(), "notification.dispatch", "kind", "status_change")
	op.Fail("email", nil)
	op.Fail("email", errors.New("smtp down"))
	op.Recover("kaboom")
	op.Done()

	out := buf.String()
	assert.Contains(t, out, "async operation started")
	assert.Contains(t, out, "step=email")
	assert.Contains(t, out, "smtp down")
	assert.Contains(t, out, "panic: kaboom")
	assert.Contains(t, out, "failed_steps=2")
	assert.Contains(t, out, "kind=status_change")
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "ok", Result(nil))
	assert.Equal(t, "error", Result(errors.New("x")))
}

func TestTrackQuery_Observes(t *testing.T) {
	done := TrackQuery("select", "jobs_track_test")
	done()
	assert.GreaterOrEqual(t, testutil.CollectAndCount(DatabaseQueryLatency), 1)
}

func TestCounters_Increment(t *testing.T) {
	before := testutil.ToFloat64(Uploads.WithLabelValues("cv", "ok"))
	Uploads.WithLabelValues("cv", Result(nil)).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Uploads.WithLabelValues("cv", "ok")))
}
