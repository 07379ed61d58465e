package game

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// ScoreSink receives score gains as they happen. Implementations are
// expected to be fire-and-forget: a slow or failing sink never blocks the
// click path.
type ScoreSink interface {
	RecordGain(amount int64)
}

// Runner drives a Session in real time. It owns the countdown, stamina
// regen and bonus-spawn timers, serializes every event under one mutex,
// and pushes score gains to the sink through a buffered queue drained by
// a single goroutine, so remote reporting can never feed back into
// session state.
type Runner struct {
	mu      sync.Mutex
	session *Session
	rules   Rules

	logger *slog.Logger
	sink   ScoreSink
	onEnd  func(finalScore int64)

	stop        chan struct{} // armed-timer group; nil when no timers run
	bonusHide   *time.Timer
	endReported bool

	gains     chan int64
	done      chan struct{}
	closeOnce sync.Once
}

// NewRunner creates a runner for a fresh session. onEnd, if non-nil, is
// invoked asynchronously with the final score when the session ends.
func NewRunner(rules Rules, clock Clock, logger *slog.Logger, sink ScoreSink, onEnd func(int64)) *Runner {
	r := &Runner{
		session: NewSession(rules, clock),
		rules:   rules,
		logger:  logger,
		sink:    sink,
		onEnd:   onEnd,
		gains:   make(chan int64, 64),
		done:    make(chan struct{}),
	}
	go r.drainGains()
	return r
}

// Start begins (or restarts) the session and arms the timers.
func (r *Runner) Start() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.haltTimersLocked()
	r.session.Start()
	r.endReported = false
	r.armTimersLocked()
	return r.session.Snapshot()
}

// Pause suspends the session and cancels all armed timers. No-op unless
// playing.
func (r *Runner) Pause() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session.Pause() {
		r.haltTimersLocked()
	}
	return r.session.Snapshot()
}

// Resume re-arms the timers from the remaining time. No-op unless paused.
func (r *Runner) Resume() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session.Resume() {
		r.armTimersLocked()
	}
	return r.session.Snapshot()
}

// Click registers a regular click and reports any gain to the sink.
func (r *Runner) Click(baseGain int64) (int64, Snapshot) {
	r.mu.Lock()
	gain := r.session.Click(baseGain)
	snap := r.session.Snapshot()
	r.mu.Unlock()
	r.report(gain)
	return gain, snap
}

// ClickBonus collects the bonus target if one is visible.
func (r *Runner) ClickBonus() (int64, Snapshot) {
	r.mu.Lock()
	gain := r.session.ClickBonus()
	snap := r.session.Snapshot()
	r.mu.Unlock()
	r.report(gain)
	return gain, snap
}

// End forces the session to its ended phase and finalizes it.
func (r *Runner) End() Snapshot {
	r.mu.Lock()
	r.session.End()
	finalize, score := r.finishLocked()
	snap := r.session.Snapshot()
	r.mu.Unlock()
	if finalize && r.onEnd != nil {
		go r.onEnd(score)
	}
	return snap
}

// State returns the current session snapshot.
func (r *Runner) State() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Snapshot()
}

// Close tears the runner down: timers cancelled, gain queue stopped. A
// session interrupted by teardown is not finalized.
func (r *Runner) Close() {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.session.End()
		r.haltTimersLocked()
		r.mu.Unlock()
		close(r.done)
	})
}

func (r *Runner) armTimersLocked() {
	stop := make(chan struct{})
	r.stop = stop
	go r.countdownLoop(stop)
	go r.regenLoop(stop)
	go r.bonusLoop(stop)
}

func (r *Runner) haltTimersLocked() {
	if r.stop != nil {
		close(r.stop)
		r.stop = nil
	}
	if r.bonusHide != nil {
		r.bonusHide.Stop()
		r.bonusHide = nil
	}
}

// finishLocked marks the end of the session exactly once, returning
// whether the caller should run finalization and the final score.
func (r *Runner) finishLocked() (bool, int64) {
	r.haltTimersLocked()
	if r.endReported {
		return false, 0
	}
	r.endReported = true
	return true, r.session.Score()
}

func (r *Runner) countdownLoop(stop chan struct{}) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			r.mu.Lock()
			ended := r.session.Tick()
			var finalize bool
			var score int64
			if ended {
				finalize, score = r.finishLocked()
			}
			r.mu.Unlock()
			if ended {
				if finalize && r.onEnd != nil {
					go r.onEnd(score)
				}
				return
			}
		}
	}
}

func (r *Runner) regenLoop(stop chan struct{}) {
	t := time.NewTicker(r.rules.RegenInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			r.mu.Lock()
			r.session.Regen()
			r.mu.Unlock()
		}
	}
}

func (r *Runner) bonusLoop(stop chan struct{}) {
	t := time.NewTicker(r.rules.BonusInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			r.mu.Lock()
			x := 10 + rand.Float64()*80
			y := 20 + rand.Float64()*60
			r.session.SpawnBonus(x, y)
			if r.bonusHide != nil {
				r.bonusHide.Stop()
			}
			r.bonusHide = time.AfterFunc(r.rules.BonusVisible, func() {
				r.mu.Lock()
				r.session.ExpireBonus()
				r.mu.Unlock()
			})
			r.mu.Unlock()
		}
	}
}

func (r *Runner) report(gain int64) {
	if gain <= 0 || r.sink == nil {
		return
	}
	select {
	case r.gains <- gain:
	default:
		if r.logger != nil {
			r.logger.Warn("gain queue full, dropping report", "gain", gain)
		}
	}
}

func (r *Runner) drainGains() {
	for {
		select {
		case <-r.done:
			return
		case g := <-r.gains:
			r.sink.RecordGain(g)
		}
	}
}
