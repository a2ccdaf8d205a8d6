package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ DB = (*Client)(nil) // Ensure Client implements DB

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// New opens the database. The schema is created by Migrate.
func New(dbpath string) (*Client, error) {
	dsn := dbpath
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.SetupJoinTable(&User{}, "Roles", &UserRole{}); err != nil {
		return nil, fmt.Errorf("failed to setup user roles join table: %w", err)
	}

	return &Client{db: db}, nil
}

// Migrate creates or updates all tables. It is safe to call on every start.
func (c *Client) Migrate() error {
	if err := c.db.AutoMigrate(
		&User{},
		&Role{},
		&UserRole{},
		&Book{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
