package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bookshelf/internal/api/models"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/web/templates/pages"
	"github.com/samber/lo"
)

// CurrentUser loads the signed-in user from the session into the context.
// Requests without a valid session continue anonymously.
func (p *Provider) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserID).(uint)
		if !ok {
			c.Next()
			return
		}

		user, err := p.db.GetUserByID(c.Request.Context(), userID)
		switch {
		case err == nil && user.Active:
			c.Set("user", models.ToUser(user, p.cfg.Gravatar))
		case err == nil || errors.Is(err, database.ErrNotFound):
			// stale session: the account is gone or disabled
			session.Delete(sessionUserID)
			if err := session.Save(); err != nil {
				log.Error("failed to clear session", "error", err)
			}
		default:
			log.Error("failed to load session user", "user_id", userID, "error", err)
		}
		c.Next()
	}
}

// GetUser returns the signed-in user or nil.
func GetUser(c *gin.Context) *models.User {
	v, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// RequireAuth redirects anonymous users to the sign in page.
func (p *Provider) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUser(c) == nil {
			c.Redirect(http.StatusFound, SignInPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole denies access to users without the named role. Role names are case sensitive.
// It must run after RequireAuth.
func (p *Provider) RequireRole(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c)
		if user == nil {
			c.Redirect(http.StatusFound, SignInPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		if !lo.Contains(user.Roles, name) {
			log.Warn("access denied", "user_id", user.ID, "role", name, "path", c.Request.URL.Path)
			p.RenderError(c, http.StatusForbidden, "You do not have permission to access this page.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SafeNext returns target if it is a local path, otherwise "/".
func SafeNext(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

// PageLayout returns the layout values for the current request.
func (p *Provider) PageLayout(c *gin.Context) pages.Layout {
	return pages.Layout{
		AppName:        p.cfg.AppName,
		User:           GetUser(c),
		CSRFToken:      CSRFToken(c),
		EnableRegister: p.cfg.Auth.EnableRegister,
	}
}
