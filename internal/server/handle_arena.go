package server

import (
	"net/http"

	"github.com/playgrove/clickportal/internal/game"
)

// Arena handlers forward user events into the session runner. The arena
// ID is the handle to a server-side session; anonymous play is allowed,
// identity only matters at finalization time.

type ArenaStartResponse struct {
	ArenaID string        `json:"arenaId"`
	State   game.Snapshot `json:"state"`
}

type ArenaRequest struct {
	ArenaID string `json:"arenaId"`
}

type ArenaStateResponse struct {
	State game.Snapshot `json:"state"`
}

type ArenaClickResponse struct {
	Gain  int64         `json:"gain"`
	State game.Snapshot `json:"state"`
}

func handleArenaStart(arenas *Arenas, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var user *UserSession
		if sess, err := userFromRequest(r, store); err == nil {
			user = &sess
		}

		id, runner := arenas.Create(user)
		state := runner.Start()
		writeJSON(w, http.StatusOK, ArenaStartResponse{ArenaID: id, State: state})
	}
}

// arenaEvent wraps the shared decode-lookup-act shape of the arena
// event handlers.
func arenaEvent(arenas *Arenas, act func(*game.Runner) game.Snapshot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ArenaRequest
		if err := readJSON(r, &req); err != nil || req.ArenaID == "" {
			writeError(w, http.StatusBadRequest, "arenaId is required")
			return
		}
		runner, ok := arenas.Get(req.ArenaID)
		if !ok {
			writeError(w, http.StatusNotFound, "arena session not found")
			return
		}
		writeJSON(w, http.StatusOK, ArenaStateResponse{State: act(runner)})
	}
}

func handleArenaPause(arenas *Arenas) http.HandlerFunc {
	return arenaEvent(arenas, func(run *game.Runner) game.Snapshot { return run.Pause() })
}

func handleArenaResume(arenas *Arenas) http.HandlerFunc {
	return arenaEvent(arenas, func(run *game.Runner) game.Snapshot { return run.Resume() })
}

func handleArenaEnd(arenas *Arenas) http.HandlerFunc {
	return arenaEvent(arenas, func(run *game.Runner) game.Snapshot { return run.End() })
}

func handleArenaClick(arenas *Arenas) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ArenaRequest
		if err := readJSON(r, &req); err != nil || req.ArenaID == "" {
			writeError(w, http.StatusBadRequest, "arenaId is required")
			return
		}
		runner, ok := arenas.Get(req.ArenaID)
		if !ok {
			writeError(w, http.StatusNotFound, "arena session not found")
			return
		}
		gain, state := runner.Click(1)
		writeJSON(w, http.StatusOK, ArenaClickResponse{Gain: gain, State: state})
	}
}

func handleArenaBonus(arenas *Arenas) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ArenaRequest
		if err := readJSON(r, &req); err != nil || req.ArenaID == "" {
			writeError(w, http.StatusBadRequest, "arenaId is required")
			return
		}
		runner, ok := arenas.Get(req.ArenaID)
		if !ok {
			writeError(w, http.StatusNotFound, "arena session not found")
			return
		}
		gain, state := runner.ClickBonus()
		writeJSON(w, http.StatusOK, ArenaClickResponse{Gain: gain, State: state})
	}
}

func handleArenaState(arenas *Arenas) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("arenaId")
		if id == "" {
			writeError(w, http.StatusBadRequest, "arenaId query parameter required")
			return
		}
		runner, ok := arenas.Get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "arena session not found")
			return
		}
		writeJSON(w, http.StatusOK, ArenaStateResponse{State: runner.State()})
	}
}
