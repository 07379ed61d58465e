package idle

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestLoadDefaults(t *testing.T) {
	clock := &fakeClock{now: time.Now()}

	for name, blob := range map[string][]byte{
		"nil":     nil,
		"corrupt": []byte("{not json"),
		"empty":   []byte("{}"),
	} {
		g := Load(blob, clock)
		st := g.State()
		if st.Resources != 0 {
			t.Errorf("%s: resources = %d, want 0", name, st.Resources)
		}
		if st.ClickPower != 1 {
			t.Errorf("%s: clickPower = %d, want 1", name, st.ClickPower)
		}
		if st.AutoRate != 0 {
			t.Errorf("%s: autoRate = %d, want 0", name, st.AutoRate)
		}
	}
}

func TestReconcileGrantsOfflineEarnings(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	blob, _ := json.Marshal(State{
		Resources:   10,
		ClickPower:  1,
		AutoRate:    5,
		LastSavedAt: now.Add(-120 * time.Second),
	})

	g := Load(blob, &fakeClock{now: now})
	granted := g.Reconcile()
	if granted != 600 {
		t.Errorf("granted = %d, want 600", granted)
	}
	if got := g.State().Resources; got != 610 {
		t.Errorf("resources = %d, want 610", got)
	}
}

func TestReconcileRunsOnce(t *testing.T) {
	now := time.Now()
	blob, _ := json.Marshal(State{
		ClickPower:  1,
		AutoRate:    5,
		LastSavedAt: now.Add(-2 * time.Minute),
	})

	g := Load(blob, &fakeClock{now: now})
	first := g.Reconcile()
	second := g.Reconcile()
	if first == 0 {
		t.Fatal("first reconcile granted nothing")
	}
	if second != 0 {
		t.Errorf("second reconcile granted %d, want 0", second)
	}
}

func TestReconcileWithoutAutoRate(t *testing.T) {
	now := time.Now()
	blob, _ := json.Marshal(State{
		ClickPower:  1,
		LastSavedAt: now.Add(-time.Hour),
	})

	g := Load(blob, &fakeClock{now: now})
	if granted := g.Reconcile(); granted != 0 {
		t.Errorf("granted = %d, want 0 with zero auto rate", granted)
	}
}

func TestAccruePartialSeconds(t *testing.T) {
	now := time.Now()
	blob, _ := json.Marshal(State{
		ClickPower:  1,
		AutoRate:    3,
		LastSavedAt: now.Add(-2500 * time.Millisecond),
	})

	clock := &fakeClock{now: now}
	g := Load(blob, clock)
	// Only whole seconds count.
	if granted := g.Accrue(); granted != 6 {
		t.Errorf("granted = %d, want 6", granted)
	}
	// The leftover half second carries into the next accrual.
	clock.now = clock.now.Add(600 * time.Millisecond)
	if granted := g.Accrue(); granted != 3 {
		t.Errorf("second accrual = %d, want 3", granted)
	}
}

func TestClickAddsClickPower(t *testing.T) {
	g := Load(nil, &fakeClock{now: time.Now()})
	if gain := g.Click(); gain != 1 {
		t.Errorf("gain = %d, want 1", gain)
	}
	if got := g.State().Resources; got != 1 {
		t.Errorf("resources = %d, want 1", got)
	}
}

func TestBuyClickUpgrade(t *testing.T) {
	g := Load(nil, &fakeClock{now: time.Now()})

	if err := g.BuyClickUpgrade(); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("err = %v, want ErrInsufficient", err)
	}
	if st := g.State(); st.Resources != 0 || st.ClickPower != 1 {
		t.Errorf("state changed on rejected purchase: %+v", st)
	}

	for i := 0; i < 50; i++ {
		g.Click()
	}
	if err := g.BuyClickUpgrade(); err != nil {
		t.Fatalf("upgrade failed: %v", err)
	}
	st := g.State()
	if st.ClickPower != 2 {
		t.Errorf("clickPower = %d, want 2", st.ClickPower)
	}
	if st.Resources != 0 {
		t.Errorf("resources = %d, want 0 after spending 50", st.Resources)
	}
	if got := g.NextClickCost(); got != 100 {
		t.Errorf("next cost = %d, want 100", got)
	}
}

func TestBuyAutoUpgrade(t *testing.T) {
	now := time.Now()
	blob, _ := json.Marshal(State{Resources: 100, ClickPower: 1, LastSavedAt: now})
	clock := &fakeClock{now: now}
	g := Load(blob, clock)

	if err := g.BuyAutoUpgrade(); err != nil {
		t.Fatalf("upgrade failed: %v", err)
	}
	st := g.State()
	if st.AutoRate != 1 {
		t.Errorf("autoRate = %d, want 1", st.AutoRate)
	}
	if st.Resources != 0 {
		t.Errorf("resources = %d, want 0", st.Resources)
	}
	if got := g.NextAutoCost(); got != 200 {
		t.Errorf("next auto cost = %d, want 200", got)
	}

	g.Tick()
	if got := g.State().Resources; got != 1 {
		t.Errorf("resources after tick = %d, want 1", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	now := time.Now()
	clock := &fakeClock{now: now}
	g := Load(nil, clock)
	g.Click()
	blob := g.Save()

	g2 := Load(blob, clock)
	if got := g2.State().Resources; got != 1 {
		t.Errorf("resources = %d, want 1 after reload", got)
	}
	// Fresh save timestamp means an immediate reconcile grants nothing.
	if granted := g2.Reconcile(); granted != 0 {
		t.Errorf("reconcile after fresh save granted %d", granted)
	}
}
