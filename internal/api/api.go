package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bookshelf/internal/api/auth"
	"github.com/jon4hz/bookshelf/internal/api/handler"
	"github.com/jon4hz/bookshelf/internal/config"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/internal/gravatar"
	"github.com/jon4hz/bookshelf/internal/mailer"
	"github.com/jon4hz/bookshelf/internal/password"
	"github.com/jon4hz/bookshelf/internal/static"
)

// Server is the web application. It owns every collaborator needed to serve requests.
type Server struct {
	cfg          *config.Config
	ginEngine    *gin.Engine
	db           database.DB
	authProvider *auth.Provider
	httpServer   *http.Server
}

func New(cfg *config.Config, db database.DB, hasher password.Hasher, m mailer.Mailer, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if err := gravatar.Check(cfg.Gravatar); err != nil {
		log.Warn("gravatar config is invalid, avatars may not load", "error", err)
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:          cfg,
		ginEngine:    gin.New(),
		db:           db,
		authProvider: auth.New(cfg, db, hasher, m),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) setupMiddleware() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   s.cfg.IsSecure(),
		SameSite: http.SameSiteLaxMode,
	})

	s.ginEngine.Use(
		requestLogger(),
		gin.Recovery(),
		gzip.Gzip(gzip.DefaultCompression),
		sessions.Sessions("bookshelf_session", store),
		s.authProvider.CurrentUser(),
		s.authProvider.CSRF(),
	)
}

func (s *Server) setupRoutes() {
	h := handler.New(s.cfg, s.db, s.authProvider)

	s.ginEngine.NoRoute(h.NotFound)
	s.ginEngine.StaticFS("/static", static.FS())

	s.ginEngine.GET("/", h.Home)
	s.ginEngine.GET("/contact", h.Contact)
	s.ginEngine.GET("/all_books", h.AllBooks)

	user := s.ginEngine.Group("/user")
	user.GET("/sign-in", h.SignIn)
	user.POST("/sign-in", h.SignInPost)
	user.POST("/sign-out", h.SignOut)
	user.GET("/register", h.Register)
	user.POST("/register", h.RegisterPost)

	account := user.Group("/", s.authProvider.RequireAuth())
	account.GET("/edit_user_profile", h.EditProfile)
	account.POST("/edit_user_profile", h.EditProfilePost)
	account.GET("/change-password", h.ChangePassword)
	account.POST("/change-password", h.ChangePasswordPost)

	protected := s.ginEngine.Group("/", s.authProvider.RequireAuth())
	protected.GET("/add_book", h.NewBook)
	protected.POST("/add_book", h.CreateBook)
	protected.GET("/add_book/:id", h.EditBook)
	protected.POST("/add_book/:id", h.UpdateBook)

	admin := protected.Group("/", s.authProvider.RequireRole(database.RoleAdmin))
	admin.GET("/admin", h.Admin)
	admin.GET("/erase_DB", h.EraseDB)
	admin.GET("/seed_DB", h.SeedDB)
	admin.GET("/seedDB", h.SeedDB)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves HTTP until Shutdown is called.
func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Debug("request", fields...)
		}
	}
}
