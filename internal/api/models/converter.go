package models

import (
	"slices"
	"strings"

	"github.com/jon4hz/bookshelf/internal/config"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/internal/gravatar"
	"github.com/samber/lo"
)

// ToUser converts a database.User to a User for display.
func ToUser(u *database.User, cfg *config.GravatarConfig) *User {
	if u == nil {
		return nil
	}
	roles := lo.Map(u.Roles, func(r database.Role, _ int) string { return r.Name })
	slices.Sort(roles)
	return &User{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Roles:            roles,
		IsAdmin:          lo.Contains(roles, database.RoleAdmin),
		GravatarURL:      gravatar.URL(u.Email, cfg),
		EmailConfirmedAt: u.EmailConfirmedAt,
		CreatedAt:        u.CreatedAt,
	}
}

// ToUsers converts a slice of database.User.
func ToUsers(users []database.User, cfg *config.GravatarConfig) []User {
	return lo.Map(users, func(u database.User, _ int) User { return *ToUser(&u, cfg) })
}

// ToBook converts a database.Book to a Book for display.
func ToBook(b database.Book) Book {
	return Book{
		ID:          b.ID,
		Author:      b.Author,
		Title:       b.Title,
		Description: b.Description,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ToBooks converts a slice of database.Book.
func ToBooks(books []database.Book) []Book {
	return lo.Map(books, func(b database.Book, _ int) Book { return ToBook(b) })
}

// BookFormFrom pre-fills the book form from a stored book.
func BookFormFrom(b *database.Book) BookForm {
	if b == nil {
		return BookForm{}
	}
	return BookForm{Author: b.Author, Title: b.Title, Description: b.Description}
}

// Validate returns a message for the first blank field, or an empty string.
// Values are stored exactly as submitted.
func (f *BookForm) Validate() string {
	switch {
	case isBlank(f.Author):
		return "Author is required."
	case isBlank(f.Title):
		return "Title is required."
	case isBlank(f.Description):
		return "Description is required."
	}
	return ""
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Apply copies the form fields onto the book.
func (f *BookForm) Apply(b *database.Book) {
	b.Author = f.Author
	b.Title = f.Title
	b.Description = f.Description
}
