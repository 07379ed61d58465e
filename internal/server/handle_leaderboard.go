package server

import (
	"log/slog"
	"net/http"

	"github.com/playgrove/clickportal/internal/aggregate"
	"github.com/playgrove/clickportal/internal/game"
)

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}

func handleLeaderboard(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.TopN(r.Context(), 10)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, LeaderboardResponse{Entries: entries})
	}
}

type CounterResponse struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

// handleCounter returns today's global click total. A counter backend
// failure degrades to zero rather than an error; the portal keeps
// working without its social numbers.
func handleCounter(counter aggregate.Counter, clock game.Clock, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := aggregate.DayKey(clock.Now())
		total, err := counter.Value(r.Context(), day)
		if err != nil {
			logger.Warn("counter read failed", "key", day, "error", err)
			total = 0
		}
		writeJSON(w, http.StatusOK, CounterResponse{Date: day, Total: total})
	}
}
