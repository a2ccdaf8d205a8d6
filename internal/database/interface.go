package database

import "context"

// DB defines the storage operations used by the web application.
type DB interface {
	UserDB
	BookDB

	Migrate() error
	Close() error
}

// UserDB groups the user and role operations.
type UserDB interface {
	// CreateUser inserts the user and attaches the named roles, creating missing roles.
	// Returns ErrDuplicate if the email is already taken.
	CreateUser(ctx context.Context, user *User, roles ...string) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	UpdateUserProfile(ctx context.Context, id uint, firstName, lastName string) error
	UpdateUserPassword(ctx context.Context, id uint, digest string) error

	GetOrCreateRole(ctx context.Context, name string) (*Role, error)
	AssignRoles(ctx context.Context, userID uint, roles ...string) error
	GetAllRoles(ctx context.Context) ([]Role, error)
}

// BookDB groups the book catalog operations.
type BookDB interface {
	GetBooks(ctx context.Context) ([]Book, error)
	GetBookByID(ctx context.Context, id uint) (*Book, error)
	CreateBook(ctx context.Context, book *Book) error
	UpdateBook(ctx context.Context, book *Book) error
	CountBooks(ctx context.Context) (int64, error)
	// DeleteAllBooks removes every book and returns the number of removed rows.
	DeleteAllBooks(ctx context.Context) (int64, error)
	// ReplaceBooks atomically replaces the whole catalog.
	ReplaceBooks(ctx context.Context, books []Book) error
}
