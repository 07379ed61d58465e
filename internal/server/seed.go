package server

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the bootstrap admin account on first run.
// Idempotent: does nothing when the email is unset or already exists.
func SeedAdmin(ctx context.Context, logger *slog.Logger, store Store, email, password string) error {
	if email == "" {
		return nil
	}

	_, _, err := store.AdminByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := store.CreateAdmin(ctx, email, string(hash)); err != nil {
		return err
	}

	logger.Info("admin account seeded", "email", email)
	return nil
}
