package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/playgrove/clickportal/internal/game"
	"github.com/playgrove/clickportal/internal/idle"
	"github.com/playgrove/clickportal/internal/progress"
)

// The idle game continues across sessions, so it requires an identity;
// its progress blob is keyed by user ID.

type IdleStateResponse struct {
	Resources       int64 `json:"resources"`
	ClickPower      int64 `json:"clickPower"`
	AutoRate        int64 `json:"autoRatePerSecond"`
	NextClickCost   int64 `json:"nextClickCost"`
	NextAutoCost    int64 `json:"nextAutoCost"`
	OfflineEarnings int64 `json:"offlineEarnings,omitempty"`
	Gain            int64 `json:"gain,omitempty"`
}

type IdleUpgradeRequest struct {
	Track string `json:"track"`
}

type idleHandlers struct {
	store  Store
	prog   progress.Store
	clock  game.Clock
	logger *slog.Logger
}

func (h *idleHandlers) key(sess UserSession) string { return "idle:" + sess.UserID }

func (h *idleHandlers) load(sess UserSession) *idle.Game {
	blob, _ := h.prog.Load(h.key(sess))
	return idle.Load(blob, h.clock)
}

func (h *idleHandlers) save(sess UserSession, g *idle.Game) {
	if err := h.prog.Save(h.key(sess), g.Save()); err != nil {
		h.logger.Warn("saving idle progress failed", "user", sess.UserID, "error", err)
	}
}

func (h *idleHandlers) respond(w http.ResponseWriter, g *idle.Game, resp IdleStateResponse) {
	st := g.State()
	resp.Resources = st.Resources
	resp.ClickPower = st.ClickPower
	resp.AutoRate = st.AutoRate
	resp.NextClickCost = g.NextClickCost()
	resp.NextAutoCost = g.NextAutoCost()
	writeJSON(w, http.StatusOK, resp)
}

// handleIdleLoad reconciles offline earnings exactly once and returns
// the state plus the granted amount for a one-time notification.
func (h *idleHandlers) handleIdleLoad(w http.ResponseWriter, r *http.Request) {
	sess, err := userFromRequest(r, h.store)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or missing session token")
		return
	}

	g := h.load(sess)
	granted := g.Reconcile()
	h.save(sess, g)
	h.respond(w, g, IdleStateResponse{OfflineEarnings: granted})
}

func (h *idleHandlers) handleIdleState(w http.ResponseWriter, r *http.Request) {
	sess, err := userFromRequest(r, h.store)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or missing session token")
		return
	}

	g := h.load(sess)
	g.Accrue()
	h.save(sess, g)
	h.respond(w, g, IdleStateResponse{})
}

func (h *idleHandlers) handleIdleClick(w http.ResponseWriter, r *http.Request) {
	sess, err := userFromRequest(r, h.store)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or missing session token")
		return
	}

	g := h.load(sess)
	g.Accrue()
	gain := g.Click()
	h.save(sess, g)
	h.respond(w, g, IdleStateResponse{Gain: gain})
}

func (h *idleHandlers) handleIdleUpgrade(w http.ResponseWriter, r *http.Request) {
	sess, err := userFromRequest(r, h.store)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or missing session token")
		return
	}

	var req IdleUpgradeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g := h.load(sess)
	g.Accrue()

	switch req.Track {
	case "click":
		err = g.BuyClickUpgrade()
	case "auto":
		err = g.BuyAutoUpgrade()
	default:
		writeError(w, http.StatusBadRequest, "track must be click or auto")
		return
	}

	if errors.Is(err, idle.ErrInsufficient) {
		// No partial debit happened; state is saved anyway so the
		// accrual above isn't lost.
		h.save(sess, g)
		writeError(w, http.StatusConflict, "insufficient resources")
		return
	}
	h.save(sess, g)
	h.respond(w, g, IdleStateResponse{})
}

// handleIdleReset is the explicit user reset: the progress blob is
// deleted and the next load starts from defaults.
func (h *idleHandlers) handleIdleReset(w http.ResponseWriter, r *http.Request) {
	sess, err := userFromRequest(r, h.store)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or missing session token")
		return
	}

	if err := h.prog.Delete(h.key(sess)); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respond(w, idle.Load(nil, h.clock), IdleStateResponse{})
}
