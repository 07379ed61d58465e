package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/playgrove/clickportal/internal/aggregate"
	"github.com/playgrove/clickportal/internal/game"
	"github.com/playgrove/clickportal/internal/progress"
)

// arenaProgress is the durable per-player arena blob.
type arenaProgress struct {
	BestScore             int64     `json:"bestScore"`
	CumulativeRemoteScore int64     `json:"cumulativeRemoteScore"`
	LastSavedAt           time.Time `json:"lastSavedAt"`
}

type arenaEntry struct {
	runner    *game.Runner
	user      *UserSession // nil for anonymous play
	lastTouch time.Time
}

// Arenas tracks the live arena sessions, one runner per arena ID, and
// owns session finalization: best-score persistence, the remote score
// merge, and the leaderboard push. Remote failures are logged and
// swallowed; local finalization always completes.
type Arenas struct {
	mu sync.Mutex
	m  map[string]*arenaEntry

	rules    game.Rules
	clock    game.Clock
	logger   *slog.Logger
	store    Store
	counter  aggregate.Counter
	progress progress.Store
	broker   *Broker
}

func NewArenas(rules game.Rules, clock game.Clock, logger *slog.Logger, store Store, counter aggregate.Counter, prog progress.Store, broker *Broker) *Arenas {
	return &Arenas{
		m:        make(map[string]*arenaEntry),
		rules:    rules,
		clock:    clock,
		logger:   logger,
		store:    store,
		counter:  counter,
		progress: prog,
		broker:   broker,
	}
}

// Create starts a new arena session and returns its ID and runner.
func (a *Arenas) Create(user *UserSession) (string, *game.Runner) {
	id := newArenaID()

	sink := &counterSink{counter: a.counter, clock: a.clock, logger: a.logger}
	runner := game.NewRunner(a.rules, a.clock, a.logger, sink, func(score int64) {
		a.finalize(user, score)
	})

	a.mu.Lock()
	a.m[id] = &arenaEntry{runner: runner, user: user, lastTouch: a.clock.Now()}
	a.mu.Unlock()
	return id, runner
}

// Get returns the runner for an arena ID and refreshes its idle clock.
func (a *Arenas) Get(id string) (*game.Runner, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.m[id]
	if !ok {
		return nil, false
	}
	e.lastTouch = a.clock.Now()
	return e.runner, true
}

// Sweep tears down sessions untouched for longer than timeout. Runs
// until ctx is done.
func (a *Arenas) Sweep(ctx context.Context, timeout time.Duration) error {
	t := time.NewTicker(time.Minute)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			a.closeAll()
			return nil
		case <-t.C:
			cutoff := a.clock.Now().Add(-timeout)
			a.mu.Lock()
			for id, e := range a.m {
				if e.lastTouch.Before(cutoff) {
					e.runner.Close()
					delete(a.m, id)
				}
			}
			a.mu.Unlock()
		}
	}
}

func (a *Arenas) closeAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, e := range a.m {
		e.runner.Close()
		delete(a.m, id)
	}
}

// finalize runs after a session ends: local best score first, then the
// best-effort remote merge, then a leaderboard push.
func (a *Arenas) finalize(user *UserSession, score int64) {
	if user == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := "arena:" + user.UserID
	var prog arenaProgress
	progress.LoadJSON(a.progress, key, &prog)
	if score > prog.BestScore {
		prog.BestScore = score
	}

	total, err := a.store.AddToScore(ctx, user.UserID, score)
	if err != nil {
		a.logger.Warn("remote score merge failed", "user", user.UserID, "error", err)
	} else {
		prog.CumulativeRemoteScore = total
		fields := map[string]any{
			"displayName": user.DisplayName,
			"bestScore":   prog.BestScore,
			"updatedAt":   a.clock.Now().UTC().Format(time.RFC3339),
		}
		if err := a.store.SetUserRecord(ctx, user.UserID, fields); err != nil {
			a.logger.Warn("user record merge failed", "user", user.UserID, "error", err)
		}
	}

	prog.LastSavedAt = a.clock.Now()
	if err := progress.SaveJSON(a.progress, key, prog); err != nil {
		a.logger.Warn("saving arena progress failed", "user", user.UserID, "error", err)
	}

	if entries, err := a.store.TopN(ctx, 10); err == nil {
		a.broker.Publish(portalTopic, Event{Type: "leaderboard", Entries: entries})
	}
}

// counterSink feeds score gains into the shared day counter,
// fire-and-forget.
type counterSink struct {
	counter aggregate.Counter
	clock   game.Clock
	logger  *slog.Logger
}

func (s *counterSink) RecordGain(amount int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	key := aggregate.DayKey(s.clock.Now())
	if err := s.counter.Increment(ctx, key, amount); err != nil {
		s.logger.Warn("counter increment failed", "key", key, "error", err)
	}
}

func newArenaID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
