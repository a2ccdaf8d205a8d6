package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bookshelf/internal/api/auth"
	"github.com/jon4hz/bookshelf/internal/config"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/web/templates/pages"
)

type Handler struct {
	db     database.DB
	auth   *auth.Provider
	config *config.Config
}

func New(cfg *config.Config, db database.DB, authProvider *auth.Provider) *Handler {
	return &Handler{
		db:     db,
		auth:   authProvider,
		config: cfg,
	}
}

// Home renders the landing page. It is public.
func (h *Handler) Home(c *gin.Context) {
	auth.Render(c, http.StatusOK, pages.Home(h.auth.PageLayout(c)))
}

// Contact renders the static contact page.
func (h *Handler) Contact(c *gin.Context) {
	auth.Render(c, http.StatusOK, pages.Contact(h.auth.PageLayout(c)))
}

// NotFound renders the 404 page for unknown routes.
func (h *Handler) NotFound(c *gin.Context) {
	h.auth.RenderError(c, http.StatusNotFound, "The page you requested does not exist.")
}

// fail maps a storage error to an error page.
func (h *Handler) fail(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		if notFound == "" {
			notFound = "The requested resource does not exist."
		}
		h.auth.RenderError(c, http.StatusNotFound, notFound)
	case errors.Is(err, database.ErrDuplicate):
		h.auth.RenderError(c, http.StatusConflict, "This record already exists.")
	default:
		log.Error("request failed", "path", c.Request.URL.Path, "error", err)
		h.auth.RenderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	}
}

func html(c *gin.Context, body string) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
}

func parseUintParam(param string) (uint, error) {
	var id uint64
	var err error
	if id, err = strconv.ParseUint(param, 10, 0); err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, strconv.ErrRange
	}
	return uint(id), nil
}
