package handler

import (
	"net/http"

	"github.com/ccoveille/go-safecast"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bookshelf/internal/api/auth"
	"github.com/jon4hz/bookshelf/internal/api/models"
	"github.com/jon4hz/bookshelf/internal/bootstrap"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/web/templates/pages"
	"golang.org/x/sync/errgroup"
)

// Admin shows the users and the size of the catalog.
func (h *Handler) Admin(c *gin.Context) {
	var (
		users []database.User
		count int64
	)

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		users, err = h.db.GetAllUsers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = h.db.CountBooks(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.fail(c, err, "")
		return
	}

	bookCount, err := safecast.Convert[int](count)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	auth.Render(c, http.StatusOK, pages.Admin(h.auth.PageLayout(c), pages.AdminData{
		Users:     models.ToUsers(users, h.config.Gravatar),
		BookCount: bookCount,
	}))
}

// EraseDB deletes every book.
func (h *Handler) EraseDB(c *gin.Context) {
	n, err := h.db.DeleteAllBooks(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	log.Info("erased catalog", "books", n, "user_id", auth.GetUser(c).ID)
	html(c, "<h1>Erased!</h1>")
}

// SeedDB replaces the catalog with the sample books.
func (h *Handler) SeedDB(c *gin.Context) {
	if err := bootstrap.SeedBooks(c.Request.Context(), h.db); err != nil {
		h.fail(c, err, "")
		return
	}
	log.Info("seeded catalog", "user_id", auth.GetUser(c).ID)
	html(c, "<h1>DB Seeded!</h1>")
}
