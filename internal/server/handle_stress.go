package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/playgrove/clickportal/internal/aggregate"
	"github.com/playgrove/clickportal/internal/game"
	"github.com/playgrove/clickportal/internal/progress"
)

// Weapon point values for the stress-relief clicker. Policy constants.
var stressPoints = map[string]int64{
	"fist": 1,
	"gun":  5,
}

type StressClickRequest struct {
	Weapon string `json:"weapon"`
}

type StressClickResponse struct {
	Points int64 `json:"points"`
	Score  int64 `json:"score"`
}

type stressProgress struct {
	Score     int64     `json:"score"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// handleStressClick scores a free-play click. Local state is updated
// synchronously and is authoritative; the remote record merge and the
// global counter increment are dispatched fire-and-forget and never
// touch the response.
func handleStressClick(store Store, counter aggregate.Counter, prog progress.Store, clock game.Clock, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StressClickRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		points, ok := stressPoints[req.Weapon]
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown weapon")
			return
		}

		resp := StressClickResponse{Points: points, Score: points}

		sess, err := userFromRequest(r, store)
		if err != nil {
			// Anonymous play: score only lives in the response.
			writeJSON(w, http.StatusOK, resp)
			return
		}

		key := "stress:" + sess.UserID
		var st stressProgress
		progress.LoadJSON(prog, key, &st)
		st.Score += points
		st.UpdatedAt = clock.Now()
		if err := progress.SaveJSON(prog, key, st); err != nil {
			logger.Warn("saving stress progress failed", "user", sess.UserID, "error", err)
		}
		resp.Score = st.Score

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if _, err := store.AddToScore(ctx, sess.UserID, points); err != nil {
				logger.Warn("remote score merge failed", "user", sess.UserID, "error", err)
			} else if err := store.SetUserRecord(ctx, sess.UserID, map[string]any{
				"displayName": sess.DisplayName,
				"updatedAt":   clock.Now().UTC().Format(time.RFC3339),
			}); err != nil {
				logger.Warn("user record merge failed", "user", sess.UserID, "error", err)
			}

			day := aggregate.DayKey(clock.Now())
			if err := counter.Increment(ctx, day, points); err != nil {
				logger.Warn("counter increment failed", "key", day, "error", err)
			}
		}()

		writeJSON(w, http.StatusOK, resp)
	}
}
