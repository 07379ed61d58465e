package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/playgrove/clickportal/internal/aggregate"
	"github.com/playgrove/clickportal/internal/game"
)

// Live bridges the shared-state backends to event-stream subscribers:
// it subscribes to the day counter for push updates and polls the
// leaderboard on a fixed interval, publishing both through the broker.
type Live struct {
	counter aggregate.Counter
	store   Store
	broker  *Broker
	clock   game.Clock
	logger  *slog.Logger
	refresh time.Duration
}

func NewLive(counter aggregate.Counter, store Store, broker *Broker, clock game.Clock, logger *slog.Logger, refresh time.Duration) *Live {
	return &Live{
		counter: counter,
		store:   store,
		broker:  broker,
		clock:   clock,
		logger:  logger,
		refresh: refresh,
	}
}

// Run blocks until ctx is done. Counter subscriptions roll over at
// midnight UTC along with the day key.
func (l *Live) Run(ctx context.Context) error {
	day := aggregate.DayKey(l.clock.Now())
	unsub := l.subscribeCounter(ctx, day)

	poll := time.NewTicker(l.refresh)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			if unsub != nil {
				unsub()
			}
			return nil
		case <-poll.C:
			if today := aggregate.DayKey(l.clock.Now()); today != day {
				if unsub != nil {
					unsub()
				}
				day = today
				unsub = l.subscribeCounter(ctx, day)
			}
			l.publishLeaderboard(ctx)
		}
	}
}

func (l *Live) subscribeCounter(ctx context.Context, day string) func() {
	unsub, err := l.counter.Subscribe(ctx, day, func(total int64) {
		l.broker.Publish(portalTopic, Event{Type: "counter", Date: day, Total: total})
	})
	if err != nil {
		// Degrades to poll-only operation; gameplay is unaffected.
		l.logger.Warn("counter subscription failed", "key", day, "error", err)
		return nil
	}
	return unsub
}

func (l *Live) publishLeaderboard(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	entries, err := l.store.TopN(ctx, 10)
	if err != nil {
		l.logger.Warn("leaderboard refresh failed", "error", err)
		return
	}
	l.broker.Publish(portalTopic, Event{Type: "leaderboard", Entries: entries})
}
