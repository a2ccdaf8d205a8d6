package bootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jon4hz/bookshelf/internal/config"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/internal/database/mock"
	"github.com/jon4hz/bookshelf/internal/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *database.Client {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "bootstrap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	hasher := password.NewBcrypt(bcrypt.MinCost)
	cfg := &config.SeedConfig{Enabled: true, Password: "Password1"}

	require.NoError(t, Run(ctx, db, hasher, cfg))
	require.NoError(t, Run(ctx, db, hasher, cfg))

	users, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	roles, err := db.GetAllRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 2)

	member, err := db.GetUserByEmail(ctx, MemberEmail)
	require.NoError(t, err)
	assert.True(t, member.Active)
	assert.NotNil(t, member.EmailConfirmedAt)
	assert.Empty(t, member.Roles)
	assert.True(t, hasher.Verify(member.Password, "Password1"))

	admin, err := db.GetUserByEmail(ctx, AdminEmail)
	require.NoError(t, err)
	assert.True(t, admin.HasRole(database.RoleAdmin))
	assert.True(t, admin.HasRole(database.RoleAgent))
}

func TestRun_SeedDisabled(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	require.NoError(t, Run(ctx, db, password.NewBcrypt(bcrypt.MinCost), &config.SeedConfig{Enabled: false}))

	users, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRun_MigrateError(t *testing.T) {
	db := mock.NewMockDB()
	db.MigrateError = errors.New("disk full")

	err := Run(context.Background(), db, password.NewBcrypt(bcrypt.MinCost), &config.SeedConfig{Enabled: true, Password: "x"})
	assert.EqualError(t, err, "disk full")
}

func TestSeedUsers_LookupError(t *testing.T) {
	db := mock.NewMockDB()
	db.GetUserByEmailError = errors.New("connection reset")

	err := SeedUsers(context.Background(), db, password.NewBcrypt(bcrypt.MinCost), "Password1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestSeedBooks(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.Migrate())

	require.NoError(t, db.CreateBook(ctx, &database.Book{Author: "Someone", Title: "Something", Description: "Else"}))
	require.NoError(t, SeedBooks(ctx, db))
	require.NoError(t, SeedBooks(ctx, db))

	books, err := db.GetBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 4)
	for i, want := range SampleBooks() {
		assert.Equal(t, want.Author, books[i].Author)
		assert.Equal(t, want.Title, books[i].Title)
		assert.Equal(t, want.Description, books[i].Description)
	}
}
