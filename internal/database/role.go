package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

const (
	// RoleAdmin grants access to the admin pages and the catalog utilities.
	RoleAdmin = "Admin"
	// RoleAgent is an example role without special permissions.
	RoleAgent = "Agent"
)

// Role is a named permission group.
type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:50;not null;uniqueIndex"`
}

// UserRole is the membership of a user in a role.
// Rows are removed together with either the user or the role.
type UserRole struct {
	UserID uint `gorm:"primaryKey"`
	RoleID uint `gorm:"primaryKey"`
}

func (c *Client) GetOrCreateRole(ctx context.Context, name string) (*Role, error) {
	role, err := getOrCreateRole(c.db.WithContext(ctx), name)
	if err != nil {
		log.Error("failed to get or create role", "role", name, "error", err)
		return nil, err
	}
	return role, nil
}

func (c *Client) AssignRoles(ctx context.Context, userID uint, roles ...string) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Preload("Roles").First(&user, userID).Error; err != nil {
			return translateError(err)
		}
		return assignRoles(tx, &user, roles)
	})
}

func (c *Client) GetAllRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := c.db.WithContext(ctx).Order("name").Find(&roles).Error; err != nil {
		log.Error("failed to get roles", "error", err)
		return nil, err
	}
	return roles, nil
}

// getOrCreateRole looks the role up by its unique name and creates it only if missing.
func getOrCreateRole(tx *gorm.DB, name string) (*Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("role name is required")
	}
	var role Role
	if err := tx.Where(Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		return nil, translateError(err)
	}
	return &role, nil
}

func assignRoles(tx *gorm.DB, user *User, roles []string) error {
	for _, name := range roles {
		if user.HasRole(name) {
			continue
		}
		role, err := getOrCreateRole(tx, name)
		if err != nil {
			return err
		}
		if err := tx.Model(user).Association("Roles").Append(role); err != nil {
			return fmt.Errorf("failed to assign role %q: %w", name, err)
		}
	}
	return nil
}
