package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/playgrove/clickportal/internal/aggregate"
)

func TestLivePushesCounterUpdates(t *testing.T) {
	e := newTestEnv(t)
	live := NewLive(e.counter, e.deps.Store, e.broker, e.clock, e.deps.Logger, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		live.Run(ctx)
		close(done)
	}()

	ch := e.broker.Subscribe(portalTopic)
	defer e.broker.Unsubscribe(portalTopic, ch)

	// Run subscribes before entering its loop; give it a moment.
	key := aggregate.DayKey(e.clock.Now())
	waitFor(t, func() bool {
		e.counter.Increment(context.Background(), key, 1)
		select {
		case data := <-ch:
			var ev Event
			json.Unmarshal(data, &ev)
			return ev.Type == "counter" && ev.Total > 0
		default:
			return false
		}
	})

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}

func TestLivePollsLeaderboard(t *testing.T) {
	e := newTestEnv(t)
	sess := e.signIn(t, "Maria")
	if _, err := e.deps.Store.AddToScore(context.Background(), sess.UserID, 12); err != nil {
		t.Fatalf("add score: %v", err)
	}

	live := NewLive(e.counter, e.deps.Store, e.broker, e.clock, e.deps.Logger, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go live.Run(ctx)

	ch := e.broker.Subscribe(portalTopic)
	defer e.broker.Unsubscribe(portalTopic, ch)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case data := <-ch:
			var ev Event
			json.Unmarshal(data, &ev)
			if ev.Type == "leaderboard" && len(ev.Entries) == 1 && ev.Entries[0].Score == 12 {
				return
			}
		case <-deadline:
			t.Fatal("no leaderboard event")
		}
	}
}
