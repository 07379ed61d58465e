package server

import (
	"context"
	"database/sql"
	"errors"
)

// SQLiteStore implements Store. Identity and admin rows are plain
// tables; score documents live in store_docs.go.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) SignIn(ctx context.Context, displayName string) (UserSession, string, error) {
	var sess UserSession
	sess.DisplayName = displayName

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (display_name) VALUES (?)
		RETURNING id
	`, displayName).Scan(&sess.UserID)
	if err != nil {
		return sess, "", err
	}

	var token string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO auth_sessions (user_id) VALUES (?)
		RETURNING id
	`, sess.UserID).Scan(&token)
	return sess, token, err
}

func (s *SQLiteStore) UserFromToken(ctx context.Context, token string) (UserSession, error) {
	var sess UserSession
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.display_name
		FROM auth_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ?
	`, token).Scan(&sess.UserID, &sess.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, errNoSession
	}
	return sess, err
}

func (s *SQLiteStore) SignOut(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = ?`, token)
	return err
}

func (s *SQLiteStore) RenameUser(ctx context.Context, userID, displayName string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET display_name = ? WHERE id = ?
	`, displayName, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	// Keep the score document's copy in step.
	return s.SetUserRecord(ctx, userID, map[string]any{"displayName": displayName})
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_scores WHERE id = ?`, userID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admins WHERE email = ?
	`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return id, hash, err
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (email, password_hash) VALUES (?, ?)
	`, email, passwordHash)
	return err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admin_sessions (admin_id) VALUES (?)
		RETURNING id
	`, adminID).Scan(&sessionID)
	return sessionID, err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}
