package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// User represents an account in the database.
// Emails are stored lower-cased, which makes them unique regardless of case.
type User struct {
	ID               uint       `gorm:"primaryKey"`
	Active           bool       `gorm:"column:is_active;not null"` // no column default, callers set it
	Email            string     `gorm:"size:255;not null;uniqueIndex"`
	EmailConfirmedAt *time.Time `gorm:"column:email_confirmed_at"`
	Password         string     `gorm:"size:255;not null;default:''"` // bcrypt digest, never plaintext
	FirstName        string     `gorm:"size:100;not null;default:''"`
	LastName         string     `gorm:"size:100;not null;default:''"`
	Roles            []Role     `gorm:"many2many:user_roles;constraint:OnDelete:CASCADE;"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasRole reports whether the user holds a role with exactly the given name.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c *Client) CreateUser(ctx context.Context, user *User, roles ...string) error {
	user.Email = NormalizeEmail(user.Email)
	if user.Email == "" {
		return fmt.Errorf("email is required")
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}

		if err := tx.Omit("Roles").Create(user).Error; err != nil {
			return translateError(err)
		}

		return assignRoles(tx, user, roles)
	})
	if err != nil && !errors.Is(err, ErrDuplicate) {
		log.Error("failed to create user", "email", user.Email, "error", err)
	}
	return err
}

func (c *Client) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Preload("Roles").First(&user, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by ID", "error", err)
		}
		return nil, translateError(err)
	}
	return &user, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Preload("Roles").Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by email", "error", err)
		}
		return nil, translateError(err)
	}
	return &user, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.db.WithContext(ctx).Preload("Roles").Order("id").Find(&users).Error; err != nil {
		log.Error("failed to get all users", "error", err)
		return nil, err
	}
	return users, nil
}

func (c *Client) UpdateUserProfile(ctx context.Context, id uint, firstName, lastName string) error {
	return c.updateUser(ctx, id, map[string]any{
		"first_name": strings.TrimSpace(firstName),
		"last_name":  strings.TrimSpace(lastName),
	})
}

func (c *Client) UpdateUserPassword(ctx context.Context, id uint, digest string) error {
	if digest == "" {
		return fmt.Errorf("password digest is required")
	}
	return c.updateUser(ctx, id, map[string]any{"password": digest})
}

func (c *Client) updateUser(ctx context.Context, id uint, values map[string]any) error {
	result := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		log.Error("failed to update user", "id", id, "error", result.Error)
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
