// Package aggregate is the remote aggregate adapter for shared counters:
// a value many clients increment concurrently, with push notification of
// changes. Increments are commutative, so no coordination beyond the
// backend's atomic add is needed.
package aggregate

import (
	"context"
	"time"
)

// Counter is an atomically incrementable shared value with change
// subscription. Implementations are best-effort collaborators: callers
// log failures and keep playing.
type Counter interface {
	// Increment atomically adds amount to the counter at key.
	Increment(ctx context.Context, key string, amount int64) error
	// Value reads the current counter value; a missing key reads as 0.
	Value(ctx context.Context, key string) (int64, error)
	// Subscribe invokes onChange with the new value after each change.
	// The returned handle must be called on teardown.
	Subscribe(ctx context.Context, key string, onChange func(int64)) (func(), error)
}

// DayKey returns the per-day global click counter key for t, in UTC, so
// every client worldwide lands on the same daily bucket.
func DayKey(t time.Time) string {
	return "clicks:" + t.UTC().Format("2006-01-02")
}
