package server

import (
	"errors"
	"net/http"
	"strings"
)

var (
	errNoSession      = errors.New("no valid session")
	errNoAdminSession = errors.New("no valid admin session")
)

const adminCookieName = "admin_session"

// userFromRequest resolves the player identity from the Bearer token, if
// any. Most of the portal works without one; handlers that tolerate
// anonymous play treat errNoSession as "no identity", not a failure.
func userFromRequest(r *http.Request, store Store) (UserSession, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		return UserSession{}, errNoSession
	}
	return store.UserFromToken(r.Context(), token)
}

// tokenFromRequest returns the raw bearer token, empty when absent.
func tokenFromRequest(r *http.Request) string {
	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return token
}

func adminFromRequest(r *http.Request, store Store) (adminSession, error) {
	cookie, err := r.Cookie(adminCookieName)
	if err != nil || cookie.Value == "" {
		return adminSession{}, errNoAdminSession
	}
	return store.AdminFromSession(r.Context(), cookie.Value)
}
