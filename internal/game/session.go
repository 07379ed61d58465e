// Package game implements the arena session engine: score, combo and
// multiplier streaks, stamina with a cooling state, the session countdown
// and bonus targets. A Session is a plain state machine with no timers of
// its own; events are applied by the caller (normally a Runner), one at a
// time. All wall-clock access goes through an injected Clock.
package game

import "time"

// Phase is the lifecycle state of a session.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhasePlaying Phase = "playing"
	PhasePaused  Phase = "paused"
	PhaseEnded   Phase = "ended"
)

// Session holds the mutable state of one play session. Not safe for
// concurrent use; the caller serializes events.
type Session struct {
	rules Rules
	clock Clock

	phase      Phase
	score      int64
	combo      int
	multiplier int64
	stamina    float64
	cooling    bool
	timeLeft   int

	lastClick  time.Time
	hasClicked bool

	bonusVisible bool
	bonusX       float64
	bonusY       float64
}

func NewSession(rules Rules, clock Clock) *Session {
	if clock == nil {
		clock = SystemClock
	}
	return &Session{
		rules:      rules,
		clock:      clock,
		phase:      PhaseIdle,
		multiplier: 1,
		stamina:    rules.MaxStamina,
		timeLeft:   int(rules.SessionDuration / time.Second),
	}
}

// Start begins a fresh session from any phase. Score, combo, multiplier,
// stamina, cooling and the countdown are all reset.
func (s *Session) Start() {
	s.phase = PhasePlaying
	s.score = 0
	s.combo = 0
	s.multiplier = 1
	s.stamina = s.rules.MaxStamina
	s.cooling = false
	s.timeLeft = int(s.rules.SessionDuration / time.Second)
	s.hasClicked = false
	s.bonusVisible = false
}

// Pause suspends a playing session. No-op in any other phase.
func (s *Session) Pause() bool {
	if s.phase != PhasePlaying {
		return false
	}
	s.phase = PhasePaused
	return true
}

// Resume continues a paused session from its remaining time. No-op unless
// paused.
func (s *Session) Resume() bool {
	if s.phase != PhasePaused {
		return false
	}
	s.phase = PhasePlaying
	return true
}

// Tick advances the countdown by one second. Returns true when this tick
// ended the session.
func (s *Session) Tick() bool {
	if s.phase != PhasePlaying {
		return false
	}
	s.timeLeft--
	if s.timeLeft <= 0 {
		s.timeLeft = 0
		s.End()
		return true
	}
	return false
}

// End forces the session into the ended phase. Idempotent.
func (s *Session) End() {
	s.phase = PhaseEnded
	s.bonusVisible = false
}

// Click registers a click worth baseGain points and returns the gain
// actually scored, zero when the click was rejected. Rejections: wrong
// phase, cooling, or exhausted stamina (which flips cooling on).
func (s *Session) Click(baseGain int64) int64 {
	if s.phase != PhasePlaying {
		return 0
	}
	if s.cooling {
		return 0
	}
	if s.stamina <= 0 {
		s.cooling = true
		return 0
	}

	now := s.clock.Now()
	if s.hasClicked && now.Sub(s.lastClick) < s.rules.ComboWindow {
		s.combo++
	} else {
		s.combo = 1
	}
	s.lastClick = now
	s.hasClicked = true

	s.multiplier = s.rules.Multiplier(s.combo)
	gain := baseGain * s.multiplier
	s.score += gain

	s.stamina -= s.rules.BaseDrain + float64(s.multiplier)
	if s.stamina <= 0 {
		s.stamina = 0
		s.cooling = true
	}
	return gain
}

// Regen applies one stamina regeneration tick. Cooling clears here, and
// only here, once stamina passes the recovery threshold.
func (s *Session) Regen() {
	if s.phase != PhasePlaying {
		return
	}
	s.stamina += s.rules.RegenStep
	if s.stamina > s.rules.MaxStamina {
		s.stamina = s.rules.MaxStamina
	}
	if s.cooling && s.stamina > s.rules.CoolingRecovery {
		s.cooling = false
	}
}

// SpawnBonus reveals a bonus target at the given position. No-op unless
// playing.
func (s *Session) SpawnBonus(x, y float64) {
	if s.phase != PhasePlaying {
		return
	}
	s.bonusVisible = true
	s.bonusX, s.bonusY = x, y
}

// ExpireBonus hides the bonus target, collected or not.
func (s *Session) ExpireBonus() {
	s.bonusVisible = false
}

// ClickBonus collects a visible bonus target through the regular click
// path and hides it so it cannot be collected twice.
func (s *Session) ClickBonus() int64 {
	if !s.bonusVisible {
		return 0
	}
	gain := s.Click(s.rules.BonusGain)
	s.bonusVisible = false
	return gain
}

// Snapshot is an immutable view of session state for rendering.
type Snapshot struct {
	Phase        Phase   `json:"phase"`
	Score        int64   `json:"score"`
	Combo        int     `json:"combo"`
	Multiplier   int64   `json:"multiplier"`
	Stamina      float64 `json:"stamina"`
	Cooling      bool    `json:"cooling"`
	TimeLeft     int     `json:"timeLeft"`
	BonusVisible bool    `json:"bonusVisible"`
	BonusX       float64 `json:"bonusX,omitempty"`
	BonusY       float64 `json:"bonusY,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Phase:        s.phase,
		Score:        s.score,
		Combo:        s.combo,
		Multiplier:   s.multiplier,
		Stamina:      s.stamina,
		Cooling:      s.cooling,
		TimeLeft:     s.timeLeft,
		BonusVisible: s.bonusVisible,
		BonusX:       s.bonusX,
		BonusY:       s.bonusY,
	}
}

func (s *Session) Phase() Phase { return s.phase }
func (s *Session) Score() int64 { return s.score }
