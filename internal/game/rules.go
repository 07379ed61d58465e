package game

import "time"

// Rules holds the tunable gameplay constants for an arena session.
// The values in DefaultRules are policy, not contract: snapshots of the
// portal shipped with slightly different tables, and these are the ones
// we settled on.
type Rules struct {
	// SessionDuration is the countdown length of one play session.
	SessionDuration time.Duration
	// ComboWindow is the maximum gap between clicks that extends a combo.
	ComboWindow time.Duration
	// BaseDrain is the stamina cost of a click before the multiplier
	// surcharge is added.
	BaseDrain float64
	// RegenStep is how much stamina one regen tick restores.
	RegenStep float64
	// RegenInterval is how often the regen tick fires while playing.
	RegenInterval time.Duration
	// CoolingRecovery is the stamina level above which the cooling
	// state clears. Cleared on the regen tick only, so recovery and
	// cooldown release cannot oscillate.
	CoolingRecovery float64
	// MaxStamina is the stamina ceiling.
	MaxStamina float64
	// BonusInterval is how often a bonus target spawns.
	BonusInterval time.Duration
	// BonusVisible is how long a spawned bonus target stays clickable.
	BonusVisible time.Duration
	// BonusGain is the base gain of a bonus target click.
	BonusGain int64
}

func DefaultRules() Rules {
	return Rules{
		SessionDuration: 60 * time.Second,
		ComboWindow:     450 * time.Millisecond,
		BaseDrain:       1.8,
		RegenStep:       2,
		RegenInterval:   150 * time.Millisecond,
		CoolingRecovery: 60,
		MaxStamina:      100,
		BonusInterval:   4500 * time.Millisecond,
		BonusVisible:    2000 * time.Millisecond,
		BonusGain:       10,
	}
}

// Multiplier maps a combo count to its score multiplier. Non-decreasing
// step function: 10 clicks double the gain, 40 cap it at six times.
func (r Rules) Multiplier(combo int) int64 {
	switch {
	case combo >= 40:
		return 6
	case combo >= 30:
		return 4
	case combo >= 20:
		return 3
	case combo >= 10:
		return 2
	default:
		return 1
	}
}
