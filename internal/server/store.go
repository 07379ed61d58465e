package server

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// UserSession identifies an authenticated player.
type UserSession struct {
	UserID      string
	DisplayName string
}

type adminSession struct {
	AdminID string
	Email   string
}

// UserRecord is the per-user score document.
type UserRecord struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int64  `json:"score"`
	BestScore   int64  `json:"bestScore"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// LeaderboardEntry is one row of the top-N ranking.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int64  `json:"score"`
}

type Store interface {
	// Identity.
	SignIn(ctx context.Context, displayName string) (UserSession, string, error)
	UserFromToken(ctx context.Context, token string) (UserSession, error)
	SignOut(ctx context.Context, token string) error
	RenameUser(ctx context.Context, userID, displayName string) error

	// Score documents. SetUserRecord merges: fields absent from a
	// write are preserved, never blanked.
	SetUserRecord(ctx context.Context, userID string, fields map[string]any) error
	AddToScore(ctx context.Context, userID string, delta int64) (int64, error)
	UserRecord(ctx context.Context, userID string) (UserRecord, error)
	TopN(ctx context.Context, n int) ([]LeaderboardEntry, error)
	DeleteUser(ctx context.Context, userID string) error

	// Admin accounts and sessions.
	AdminByEmail(ctx context.Context, email string) (id, passwordHash string, err error)
	CreateAdmin(ctx context.Context, email, passwordHash string) error
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
}
