// Package idle implements the incremental-clicker economy: a resource
// count grown by clicks and by an automatic per-second rate, upgrade
// purchases, and offline-earnings reconciliation against the last save
// timestamp.
package idle

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/playgrove/clickportal/internal/game"
)

// ErrInsufficient is returned when an upgrade costs more than the
// current resource balance. No partial debit happens.
var ErrInsufficient = errors.New("insufficient resources")

// Cost bases for the two upgrade tracks. Policy constants.
const (
	clickCostBase = 50
	autoCostBase  = 100
)

// State is the durable progress blob. Zero values are replaced with
// defaults on load (click power starts at 1).
type State struct {
	Resources   int64     `json:"resources"`
	ClickPower  int64     `json:"clickPower"`
	AutoRate    int64     `json:"autoRatePerSecond"`
	LastSavedAt time.Time `json:"lastSavedAt"`
}

// Game wraps a State with the accrual and purchase rules.
type Game struct {
	clock      game.Clock
	st         State
	reconciled bool
}

// Load builds a Game from a persisted blob. A nil or unparseable blob
// falls back to defaults rather than failing.
func Load(blob []byte, clock game.Clock) *Game {
	if clock == nil {
		clock = game.SystemClock
	}
	g := &Game{clock: clock}
	if blob != nil {
		if err := json.Unmarshal(blob, &g.st); err != nil {
			g.st = State{}
		}
	}
	if g.st.ClickPower < 1 {
		g.st.ClickPower = 1
	}
	if g.st.Resources < 0 {
		g.st.Resources = 0
	}
	if g.st.AutoRate < 0 {
		g.st.AutoRate = 0
	}
	if g.st.LastSavedAt.IsZero() {
		g.st.LastSavedAt = clock.Now()
	}
	return g
}

// Reconcile grants earnings accrued since the last save and returns the
// amount granted, for a one-time notification. It runs at most once per
// load; further calls grant nothing.
func (g *Game) Reconcile() int64 {
	if g.reconciled {
		return 0
	}
	g.reconciled = true
	return g.accrue()
}

// Accrue folds elapsed auto-earnings into the balance. Equivalent to the
// per-second accrual tick, applied lazily for however many whole seconds
// have passed.
func (g *Game) Accrue() int64 {
	g.reconciled = true
	return g.accrue()
}

func (g *Game) accrue() int64 {
	now := g.clock.Now()
	elapsed := int64(now.Sub(g.st.LastSavedAt) / time.Second)
	if elapsed <= 0 {
		return 0
	}
	g.st.LastSavedAt = g.st.LastSavedAt.Add(time.Duration(elapsed) * time.Second)
	if g.st.AutoRate <= 0 {
		return 0
	}
	earned := elapsed * g.st.AutoRate
	g.st.Resources += earned
	return earned
}

// Tick applies one second of automatic accrual.
func (g *Game) Tick() {
	if g.st.AutoRate > 0 {
		g.st.Resources += g.st.AutoRate
	}
}

// Click adds one click's worth of resources and returns the gain.
func (g *Game) Click() int64 {
	g.st.Resources += g.st.ClickPower
	return g.st.ClickPower
}

// NextClickCost is the price of the next click-power upgrade.
func (g *Game) NextClickCost() int64 { return clickCostBase * g.st.ClickPower }

// NextAutoCost is the price of the next auto-rate upgrade.
func (g *Game) NextAutoCost() int64 { return autoCostBase * (g.st.AutoRate + 1) }

// BuyClickUpgrade debits the upgrade cost and raises click power by one.
func (g *Game) BuyClickUpgrade() error {
	cost := g.NextClickCost()
	if g.st.Resources < cost {
		return ErrInsufficient
	}
	g.st.Resources -= cost
	g.st.ClickPower++
	return nil
}

// BuyAutoUpgrade debits the upgrade cost and raises the auto rate by one.
func (g *Game) BuyAutoUpgrade() error {
	cost := g.NextAutoCost()
	if g.st.Resources < cost {
		return ErrInsufficient
	}
	g.st.Resources -= cost
	g.st.AutoRate++
	return nil
}

// State returns a copy of the current progress.
func (g *Game) State() State { return g.st }

// Save marshals the progress with a fresh save timestamp.
func (g *Game) Save() []byte {
	g.st.LastSavedAt = g.clock.Now()
	blob, _ := json.Marshal(g.st)
	return blob
}
