package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bookshelf/internal/api/auth"
	"github.com/jon4hz/bookshelf/internal/api/models"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/web/templates/pages"
)

const bookNotFound = "The requested book does not exist."

// AllBooks lists the catalog.
func (h *Handler) AllBooks(c *gin.Context) {
	books, err := h.db.GetBooks(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	auth.Render(c, http.StatusOK, pages.AllBooks(h.auth.PageLayout(c), models.ToBooks(books)))
}

// NewBook renders an empty book form.
func (h *Handler) NewBook(c *gin.Context) {
	auth.Render(c, http.StatusOK, pages.BookForm(h.auth.PageLayout(c), pages.BookFormData{}))
}

// CreateBook adds a book to the catalog.
func (h *Handler) CreateBook(c *gin.Context) {
	var form models.BookForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderBookForm(c, http.StatusBadRequest, 0, form, "Invalid form submission.")
		return
	}
	if msg := form.Validate(); msg != "" {
		h.renderBookForm(c, http.StatusBadRequest, 0, form, msg)
		return
	}

	var book database.Book
	form.Apply(&book)
	if err := h.db.CreateBook(c.Request.Context(), &book); err != nil {
		h.bookWriteFailed(c, 0, form, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// EditBook renders the form pre-filled with the stored book.
func (h *Handler) EditBook(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		h.auth.RenderError(c, http.StatusBadRequest, "Invalid book id.")
		return
	}

	book, err := h.db.GetBookByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, bookNotFound)
		return
	}
	h.renderBookForm(c, http.StatusOK, id, models.BookFormFrom(book), "")
}

// UpdateBook overwrites the stored book with the submitted fields.
func (h *Handler) UpdateBook(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		h.auth.RenderError(c, http.StatusBadRequest, "Invalid book id.")
		return
	}

	// the book has to exist before the form is validated
	if _, err := h.db.GetBookByID(c.Request.Context(), id); err != nil {
		h.fail(c, err, bookNotFound)
		return
	}

	var form models.BookForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderBookForm(c, http.StatusBadRequest, id, form, "Invalid form submission.")
		return
	}
	if msg := form.Validate(); msg != "" {
		h.renderBookForm(c, http.StatusBadRequest, id, form, msg)
		return
	}

	book := database.Book{ID: id}
	form.Apply(&book)
	if err := h.db.UpdateBook(c.Request.Context(), &book); err != nil {
		h.bookWriteFailed(c, id, form, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) bookWriteFailed(c *gin.Context, id uint, form models.BookForm, err error) {
	if errors.Is(err, database.ErrDuplicate) {
		msg := strings.TrimPrefix(err.Error(), database.ErrDuplicate.Error()+": ")
		if msg == database.ErrDuplicate.Error() {
			msg = "A book with the same author, title or description already exists."
		}
		h.renderBookForm(c, http.StatusConflict, id, form, capitalize(msg)+".")
		return
	}
	h.fail(c, err, bookNotFound)
}

func (h *Handler) renderBookForm(c *gin.Context, status int, id uint, form models.BookForm, msg string) {
	auth.Render(c, status, pages.BookForm(h.auth.PageLayout(c), pages.BookFormData{
		ID:    id,
		Form:  form,
		Error: msg,
	}))
}

func capitalize(s string) string {
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
