package auth

import (
	"github.com/a-h/templ"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bookshelf/web/templates/pages"
)

// Render writes the component as an HTML response with the given status.
func Render(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		log.Error("Failed to render page", "path", c.Request.URL.Path, "error", err)
	}
}

// RenderError renders the error page.
func (p *Provider) RenderError(c *gin.Context, status int, message string) {
	Render(c, status, pages.Error(p.PageLayout(c), pages.ErrorData{Code: status, Message: message}))
}
