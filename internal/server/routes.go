package server

import (
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, d Deps, broker *Broker, arenas *Arenas) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Click Portal API", "/openapi.json", "/docs"))

	// Identity.
	r.Post("/api/auth/signin", handleSignIn(d.Store))
	r.Post("/api/auth/signout", handleSignOut(d.Store))
	r.Get("/api/auth/me", handleMe(d.Store))
	r.Put("/api/auth/name", handleRename(d.Store))

	// Timed arena sessions.
	r.Route("/api/arena", func(r chi.Router) {
		r.Post("/start", handleArenaStart(arenas, d.Store))
		r.Post("/pause", handleArenaPause(arenas))
		r.Post("/resume", handleArenaResume(arenas))
		r.Post("/end", handleArenaEnd(arenas))
		r.Post("/click", handleArenaClick(arenas))
		r.Post("/bonus", handleArenaBonus(arenas))
		r.Get("/state", handleArenaState(arenas))
	})

	// Free-play stress clicker.
	r.Post("/api/stress/click", handleStressClick(d.Store, d.Counter, d.Progress, d.Clock, d.Logger))

	// Idle game.
	idle := &idleHandlers{store: d.Store, prog: d.Progress, clock: d.Clock, logger: d.Logger}
	r.Route("/api/idle", func(r chi.Router) {
		r.Post("/load", idle.handleIdleLoad)
		r.Get("/state", idle.handleIdleState)
		r.Post("/click", idle.handleIdleClick)
		r.Post("/upgrade", idle.handleIdleUpgrade)
		r.Post("/reset", idle.handleIdleReset)
	})

	// Shared stats.
	r.Get("/api/leaderboard", handleLeaderboard(d.Store))
	r.Get("/api/counter", handleCounter(d.Counter, d.Clock, d.Logger))
	r.Get("/api/events", handleEvents(broker))

	// Admin.
	r.Post("/api/admin/login", handleAdminLogin(d.Store))
	r.Post("/api/admin/logout", handleAdminLogout(d.Store))
	r.Group(func(r chi.Router) {
		r.Use(adminAuthMiddleware(d.Store))
		r.Get("/api/admin/me", handleAdminMe())
		r.Delete("/api/admin/users/{userID}", handleAdminDeleteUser(d.Store))
	})

	if d.SPADir != "" {
		if info, err := os.Stat(d.SPADir); err == nil && info.IsDir() {
			d.Logger.Info("serving SPA", "dir", d.SPADir)
			r.NotFound(handleSPA(d.SPADir))
		}
	}
}
