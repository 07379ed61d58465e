package server

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSignInSignOutFlow(t *testing.T) {
	e := newTestEnv(t)

	sess := e.signIn(t, "Maria")
	if sess.Token == "" {
		t.Fatal("expected a session token")
	}
	if sess.DisplayName != "Maria" {
		t.Errorf("expected display name Maria, got %q", sess.DisplayName)
	}

	w := e.do(t, http.MethodGet, "/api/auth/me", sess.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var me MeResponse
	json.NewDecoder(w.Body).Decode(&me)
	if me.UserID != sess.UserID {
		t.Errorf("me: expected user %q, got %q", sess.UserID, me.UserID)
	}

	w = e.do(t, http.MethodPost, "/api/auth/signout", sess.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signout: expected 200, got %d", w.Code)
	}

	w = e.do(t, http.MethodGet, "/api/auth/me", sess.Token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("me after signout: expected 401, got %d", w.Code)
	}
}

func TestSignInEmptyNameDefaultsToAnonymous(t *testing.T) {
	e := newTestEnv(t)

	sess := e.signIn(t, "  ")
	if sess.DisplayName != "Anonymous" {
		t.Errorf("expected Anonymous, got %q", sess.DisplayName)
	}
}

func TestSignInCreatesDistinctUsers(t *testing.T) {
	e := newTestEnv(t)

	a := e.signIn(t, "Maria")
	b := e.signIn(t, "Maria")
	if a.UserID == b.UserID {
		t.Error("expected each sign-in to create a fresh guest identity")
	}
}

func TestRename(t *testing.T) {
	e := newTestEnv(t)
	sess := e.signIn(t, "Maria")

	w := e.do(t, http.MethodPut, "/api/auth/name", sess.Token, RenameRequest{DisplayName: "Maria la Grande"})
	if w.Code != http.StatusOK {
		t.Fatalf("rename: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodGet, "/api/auth/me", sess.Token, nil)
	var me MeResponse
	json.NewDecoder(w.Body).Decode(&me)
	if me.DisplayName != "Maria la Grande" {
		t.Errorf("expected renamed user, got %q", me.DisplayName)
	}

	w = e.do(t, http.MethodPut, "/api/auth/name", sess.Token, RenameRequest{DisplayName: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank rename: expected 400, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/api/auth/me", "/api/idle/state"} {
		w := e.do(t, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: expected 401, got %d", path, w.Code)
		}

		w = e.do(t, http.MethodGet, path, "bogus", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s with bad token: expected 401, got %d", path, w.Code)
		}
	}
}
