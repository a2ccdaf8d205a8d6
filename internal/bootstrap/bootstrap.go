// Package bootstrap prepares a fresh database: it creates the schema and the example accounts.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bookshelf/internal/config"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/internal/password"
)

const (
	// MemberEmail is the example account without roles.
	MemberEmail = "member@example.com"
	// AdminEmail is the example account holding the Admin and Agent roles.
	AdminEmail = "admin@example.com"
)

// Run migrates the schema and, if enabled, seeds the example users.
func Run(ctx context.Context, db database.DB, hasher password.Hasher, cfg *config.SeedConfig) error {
	if err := db.Migrate(); err != nil {
		return err
	}
	if cfg == nil || !cfg.Enabled {
		log.Debug("seeding disabled, skipping example users")
		return nil
	}
	return SeedUsers(ctx, db, hasher, cfg.Password)
}

// SeedUsers creates the member and admin example users unless they already exist.
// Calling it repeatedly never creates additional users or roles.
func SeedUsers(ctx context.Context, db database.DB, hasher password.Hasher, plain string) error {
	if err := ensureUser(ctx, db, hasher, MemberEmail, plain); err != nil {
		return err
	}
	return ensureUser(ctx, db, hasher, AdminEmail, plain, database.RoleAdmin, database.RoleAgent)
}

func ensureUser(ctx context.Context, db database.DB, hasher password.Hasher, email, plain string, roles ...string) error {
	_, err := db.GetUserByEmail(ctx, email)
	if err == nil {
		log.Debug("example user already exists", "email", email)
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("failed to look up %s: %w", email, err)
	}

	digest, err := hasher.Hash(plain)
	if err != nil {
		return err
	}
	now := time.Now()
	user := &database.User{
		Email:            email,
		Active:           true,
		EmailConfirmedAt: &now,
		Password:         digest,
	}
	if err := db.CreateUser(ctx, user, roles...); err != nil {
		// another process created it in the meantime
		if errors.Is(err, database.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("failed to create %s: %w", email, err)
	}
	log.Info("created example user", "email", email, "roles", roles)
	return nil
}

// SampleBooks returns the fixed catalog installed by SeedBooks.
func SampleBooks() []database.Book {
	return []database.Book{
		{Author: "Mary Shelly", Title: "Frankenstein", Description: "A horror story written by a romantic."},
		{Author: "Henry James", Title: "The Turn of the Screw", Description: "Another British horror story"},
		{Author: "Max Weber", Title: "The Protestant Work Ethic and The Spirit", Description: "A classic early 20th Century sociology text"},
		{Author: "Robert Putnam", Title: "Bowling Alone", Description: "A classic late 20th Century sociology text"},
	}
}

// SeedBooks replaces the catalog with the sample books in a single transaction.
func SeedBooks(ctx context.Context, db database.BookDB) error {
	if err := db.ReplaceBooks(ctx, SampleBooks()); err != nil {
		return fmt.Errorf("failed to seed books: %w", err)
	}
	return nil
}
