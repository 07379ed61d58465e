package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playgrove/clickportal/internal/aggregate"
	"github.com/playgrove/clickportal/internal/database"
	"github.com/playgrove/clickportal/internal/game"
	"github.com/playgrove/clickportal/internal/migrations"
	"github.com/playgrove/clickportal/internal/progress"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testEnv struct {
	router  *chi.Mux
	deps    Deps
	clock   *fakeClock
	counter *aggregate.MemoryCounter
	broker  *Broker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	prog, err := progress.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("open progress store: %v", err)
	}

	clock := newFakeClock()
	counter := aggregate.NewMemoryCounter()

	d := Deps{
		Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:              NewSQLiteStore(db),
		Counter:            counter,
		Progress:           prog,
		Clock:              clock,
		Rules:              game.DefaultRules(),
		LeaderboardRefresh: time.Minute,
	}

	broker := NewBroker()
	arenas := NewArenas(d.Rules, d.Clock, d.Logger, d.Store, d.Counter, d.Progress, broker)
	r := chi.NewRouter()
	addRoutes(r, d, broker, arenas)

	return &testEnv{router: r, deps: d, clock: clock, counter: counter, broker: broker}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) signIn(t *testing.T, name string) SignInResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/signin", "", SignInRequest{DisplayName: name})
	if w.Code != http.StatusOK {
		t.Fatalf("signin: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp SignInResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

// waitFor polls cond until it holds; finalization and counter reporting
// run on background goroutines.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
