// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

var asyncLogger atomic.Pointer[slog.Logger]

// SetLogger routes async operation logs through l. Until it is called they
// go to slog.Default().
func SetLogger(l *slog.Logger) {
	asyncLogger.Store(l)
}

func logger() *slog.Logger {
	if l := asyncLogger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// AsyncOp logs the lifetime of work that runs after the request returned.
// The context keeps the request's values, so the request ID survives.
type AsyncOp struct {
	ctx      context.Context
	name     string
	started  time.Time
	attrs    []any
	failures int
}

// StartAsync logs the start of name at debug level.
func StartAsync(ctx context.Context, name string, attrs ...any) *AsyncOp {
	op := &AsyncOp{ctx: ctx, name: name, started: time.Now(), attrs: append([]any{"operation", name}, attrs...)}
	logger().DebugContext(ctx, "async operation started", op.attrs...)
	return op
}

// Fail logs one failed step. The operation carries on; Done reports the count.
func (o *AsyncOp) Fail(step string, err error) {
	if err == nil {
		return
	}
	o.failures++
	args := append(append([]any{}, o.attrs...), "step", step, "error", err.Error())
	logger().ErrorContext(o.ctx, "async operation failed", args...)
}

// Recover turns a panic value into a failure. Call it from a deferred func.
func (o *AsyncOp) Recover(r any) {
	if r != nil {
		o.Fail("panic", fmt.Errorf("panic: %v", r))
	}
}

// Done logs completion with the elapsed time and failed step count.
func (o *AsyncOp) Done() {
	args := append(append([]any{}, o.attrs...),
		"duration", time.Since(o.started),
		"failed_steps", o.failures,
	)
	logger().InfoContext(o.ctx, "async operation completed", args...)
}
