package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CSRFToken returns the token of the session, creating one if needed.
func CSRFToken(c *gin.Context) string {
	session := sessions.Default(c)
	if token, ok := session.Get(sessionCSRF).(string); ok && token != "" {
		return token
	}
	token := uuid.NewString()
	session.Set(sessionCSRF, token)
	if err := session.Save(); err != nil {
		log.Error("failed to save csrf token", "error", err)
	}
	return token
}

// CSRF rejects state changing requests whose csrf_token form field
// (or X-CSRF-Token header) does not match the session token.
func (p *Provider) CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		expected, _ := sessions.Default(c).Get(sessionCSRF).(string)
		got := c.PostForm("csrf_token")
		if got == "" {
			got = c.GetHeader("X-CSRF-Token")
		}
		if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
			log.Warn("csrf token mismatch", "path", c.Request.URL.Path)
			p.RenderError(c, http.StatusForbidden, "The form has expired. Please go back, reload the page and try again.")
			c.Abort()
			return
		}
		c.Next()
	}
}
