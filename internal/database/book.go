package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Book is an entry of the catalog. Author, title and description are each unique.
type Book struct {
	ID          uint   `gorm:"primaryKey"`
	Author      string `gorm:"size:100;not null;uniqueIndex"`
	Title       string `gorm:"size:200;not null;uniqueIndex"`
	Description string `gorm:"size:500;not null;uniqueIndex"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Client) GetBooks(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := c.db.WithContext(ctx).Order("id").Find(&books).Error; err != nil {
		log.Error("failed to get books", "error", err)
		return nil, err
	}
	return books, nil
}

func (c *Client) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	var book Book
	if err := c.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get book by ID", "id", id, "error", err)
		}
		return nil, translateError(err)
	}
	return &book, nil
}

func (c *Client) CreateBook(ctx context.Context, book *Book) error {
	book.ID = 0
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkBookConflict(tx, book); err != nil {
			return err
		}
		if err := tx.Create(book).Error; err != nil {
			log.Error("failed to create book", "error", err)
			return translateError(err)
		}
		return nil
	})
}

func (c *Client) UpdateBook(ctx context.Context, book *Book) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Book
		if err := tx.First(&existing, book.ID).Error; err != nil {
			return translateError(err)
		}
		if err := checkBookConflict(tx, book); err != nil {
			return err
		}
		if err := tx.Model(&existing).Updates(map[string]any{
			"author":      book.Author,
			"title":       book.Title,
			"description": book.Description,
		}).Error; err != nil {
			log.Error("failed to update book", "id", book.ID, "error", err)
			return translateError(err)
		}
		book.CreatedAt = existing.CreatedAt
		book.UpdatedAt = existing.UpdatedAt
		return nil
	})
}

func (c *Client) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&Book{}).Count(&count).Error; err != nil {
		log.Error("failed to count books", "error", err)
		return 0, err
	}
	return count, nil
}

func (c *Client) DeleteAllBooks(ctx context.Context) (int64, error) {
	result := c.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Book{})
	if result.Error != nil {
		log.Error("failed to delete books", "error", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (c *Client) ReplaceBooks(ctx context.Context, books []Book) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Book{}).Error; err != nil {
			return err
		}
		if len(books) == 0 {
			return nil
		}
		for i := range books {
			books[i].ID = 0
		}
		if err := tx.Create(&books).Error; err != nil {
			log.Error("failed to insert books", "error", err)
			return translateError(err)
		}
		return nil
	})
}

// checkBookConflict returns ErrDuplicate if another book already uses one of the unique fields.
func checkBookConflict(tx *gorm.DB, book *Book) error {
	var others []Book
	q := tx.Where("(author = ? OR title = ? OR description = ?)", book.Author, book.Title, book.Description)
	if book.ID != 0 {
		q = q.Where("id <> ?", book.ID)
	}
	if err := q.Find(&others).Error; err != nil {
		return err
	}
	for _, other := range others {
		switch {
		case other.Author == book.Author:
			return fmt.Errorf("%w: author %q is already in the catalog", ErrDuplicate, book.Author)
		case other.Title == book.Title:
			return fmt.Errorf("%w: title %q is already in the catalog", ErrDuplicate, book.Title)
		case other.Description == book.Description:
			return fmt.Errorf("%w: this description is already used by %q", ErrDuplicate, other.Title)
		}
	}
	return nil
}
