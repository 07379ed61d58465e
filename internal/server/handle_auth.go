package server

import (
	"errors"
	"net/http"
	"strings"
)

type SignInRequest struct {
	DisplayName string `json:"displayName"`
}

type SignInResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

func handleSignIn(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignInRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.DisplayName = strings.TrimSpace(req.DisplayName)
		if req.DisplayName == "" {
			req.DisplayName = "Anonymous"
		}

		sess, token, err := store.SignIn(r.Context(), req.DisplayName)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, SignInResponse{
			Token:       token,
			UserID:      sess.UserID,
			DisplayName: sess.DisplayName,
		})
	}
}

func handleSignOut(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing session token")
			return
		}
		if err := store.SignOut(r.Context(), token); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

type MeResponse struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

func handleMe(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		writeJSON(w, http.StatusOK, MeResponse{UserID: sess.UserID, DisplayName: sess.DisplayName})
	}
}

type RenameRequest struct {
	DisplayName string `json:"displayName"`
}

func handleRename(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := userFromRequest(r, store)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		var req RenameRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.DisplayName = strings.TrimSpace(req.DisplayName)
		if req.DisplayName == "" {
			writeError(w, http.StatusBadRequest, "displayName is required")
			return
		}

		if err := store.RenameUser(r.Context(), sess.UserID, req.DisplayName); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "user not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, MeResponse{UserID: sess.UserID, DisplayName: req.DisplayName})
	}
}
