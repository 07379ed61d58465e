package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Click Portal API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the click game portal.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("application/json"))
	getHealthz.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusServiceUnavailable),
		openapi.WithContentType("application/json"))
	_ = r.AddOperation(getHealthz)

	// POST /api/auth/signin
	postSignIn, _ := r.NewOperationContext(http.MethodPost, "/api/auth/signin")
	postSignIn.SetSummary("Sign in")
	postSignIn.SetDescription("Creates a guest identity and returns a session token.")
	postSignIn.AddReqStructure(SignInRequest{})
	postSignIn.AddRespStructure(SignInResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSignIn.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postSignIn)

	// POST /api/auth/signout
	postSignOut, _ := r.NewOperationContext(http.MethodPost, "/api/auth/signout")
	postSignOut.SetSummary("Sign out")
	postSignOut.SetDescription("Invalidates the session token. Requires Bearer token.")
	postSignOut.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	postSignOut.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postSignOut)

	// GET /api/auth/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/auth/me")
	getMe.SetSummary("Current user")
	getMe.SetDescription("Returns the signed-in user. Requires Bearer token.")
	getMe.AddRespStructure(MeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// PUT /api/auth/name
	putName, _ := r.NewOperationContext(http.MethodPut, "/api/auth/name")
	putName.SetSummary("Rename user")
	putName.SetDescription("Changes the display name, also in the score record. Requires Bearer token.")
	putName.AddReqStructure(RenameRequest{})
	putName.AddRespStructure(MeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putName.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	putName.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(putName)

	// POST /api/arena/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/arena/start")
	postStart.SetSummary("Start arena session")
	postStart.SetDescription("Starts a timed session and returns its ID. Bearer token optional; anonymous runs are not persisted.")
	postStart.AddRespStructure(ArenaStartResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postStart)

	// POST /api/arena/click
	postClick, _ := r.NewOperationContext(http.MethodPost, "/api/arena/click")
	postClick.SetSummary("Arena click")
	postClick.SetDescription("Registers a click and returns the gain with the new state.")
	postClick.AddReqStructure(ArenaRequest{})
	postClick.AddRespStructure(ArenaClickResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postClick.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postClick)

	// POST /api/arena/bonus
	postBonus, _ := r.NewOperationContext(http.MethodPost, "/api/arena/bonus")
	postBonus.SetSummary("Collect bonus target")
	postBonus.SetDescription("Collects the visible bonus target, if any.")
	postBonus.AddReqStructure(ArenaRequest{})
	postBonus.AddRespStructure(ArenaClickResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postBonus.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postBonus)

	// POST /api/arena/pause
	postPause, _ := r.NewOperationContext(http.MethodPost, "/api/arena/pause")
	postPause.SetSummary("Pause arena session")
	postPause.AddReqStructure(ArenaRequest{})
	postPause.AddRespStructure(ArenaStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postPause.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postPause)

	// POST /api/arena/resume
	postResume, _ := r.NewOperationContext(http.MethodPost, "/api/arena/resume")
	postResume.SetSummary("Resume arena session")
	postResume.AddReqStructure(ArenaRequest{})
	postResume.AddRespStructure(ArenaStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postResume.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postResume)

	// POST /api/arena/end
	postEnd, _ := r.NewOperationContext(http.MethodPost, "/api/arena/end")
	postEnd.SetSummary("End arena session")
	postEnd.SetDescription("Ends the session early and finalizes the score.")
	postEnd.AddReqStructure(ArenaRequest{})
	postEnd.AddRespStructure(ArenaStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postEnd.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postEnd)

	// GET /api/arena/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/arena/state")
	getState.SetSummary("Arena state")
	getState.SetDescription("Returns the session snapshot. Pass arenaId as query parameter.")
	getState.AddRespStructure(ArenaStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getState)

	// POST /api/stress/click
	postStress, _ := r.NewOperationContext(http.MethodPost, "/api/stress/click")
	postStress.SetSummary("Stress clicker hit")
	postStress.SetDescription("Scores a free-play click. Bearer token optional; anonymous scores are not persisted.")
	postStress.AddReqStructure(StressClickRequest{})
	postStress.AddRespStructure(StressClickResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postStress.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postStress)

	// POST /api/idle/load
	postIdleLoad, _ := r.NewOperationContext(http.MethodPost, "/api/idle/load")
	postIdleLoad.SetSummary("Load idle game")
	postIdleLoad.SetDescription("Loads idle state and reconciles offline earnings once. Requires Bearer token.")
	postIdleLoad.AddRespStructure(IdleStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postIdleLoad.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postIdleLoad)

	// GET /api/idle/state
	getIdleState, _ := r.NewOperationContext(http.MethodGet, "/api/idle/state")
	getIdleState.SetSummary("Idle state")
	getIdleState.SetDescription("Returns the idle state with passive income accrued. Requires Bearer token.")
	getIdleState.AddRespStructure(IdleStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getIdleState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getIdleState)

	// POST /api/idle/click
	postIdleClick, _ := r.NewOperationContext(http.MethodPost, "/api/idle/click")
	postIdleClick.SetSummary("Idle click")
	postIdleClick.SetDescription("Manual click worth the current click power. Requires Bearer token.")
	postIdleClick.AddRespStructure(IdleStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postIdleClick.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postIdleClick)

	// POST /api/idle/upgrade
	postIdleUpgrade, _ := r.NewOperationContext(http.MethodPost, "/api/idle/upgrade")
	postIdleUpgrade.SetSummary("Buy idle upgrade")
	postIdleUpgrade.SetDescription("Buys a click or auto upgrade. Requires Bearer token.")
	postIdleUpgrade.AddReqStructure(IdleUpgradeRequest{})
	postIdleUpgrade.AddRespStructure(IdleStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postIdleUpgrade.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postIdleUpgrade.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postIdleUpgrade)

	// POST /api/idle/reset
	postIdleReset, _ := r.NewOperationContext(http.MethodPost, "/api/idle/reset")
	postIdleReset.SetSummary("Reset idle progress")
	postIdleReset.SetDescription("Deletes the saved idle progress. Requires Bearer token.")
	postIdleReset.AddRespStructure(IdleStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postIdleReset.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postIdleReset)

	// GET /api/leaderboard
	getLeaderboard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getLeaderboard.SetSummary("Leaderboard")
	getLeaderboard.SetDescription("Returns the top ten players by accumulated score.")
	getLeaderboard.AddRespStructure(LeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getLeaderboard)

	// GET /api/counter
	getCounter, _ := r.NewOperationContext(http.MethodGet, "/api/counter")
	getCounter.SetSummary("Global click counter")
	getCounter.SetDescription("Returns today's portal-wide click total.")
	getCounter.AddRespStructure(CounterResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getCounter)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of counter and leaderboard updates.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /ws/counter
	getWSCounter, _ := r.NewOperationContext(http.MethodGet, "/ws/counter")
	getWSCounter.SetSummary("WebSocket counter feed")
	getWSCounter.SetDescription("Upgrades to a WebSocket pushing live counter totals.")
	getWSCounter.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSCounter)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getAdminMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getAdminMe.SetSummary("Current admin")
	getAdminMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getAdminMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getAdminMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getAdminMe)

	// DELETE /api/admin/users/{userID}
	deleteUser, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/users/{userID}")
	deleteUser.SetSummary("Delete user")
	deleteUser.SetDescription("Deletes a user and their score record. Requires admin_session cookie.")
	deleteUser.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteUser.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteUser.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteUser)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
