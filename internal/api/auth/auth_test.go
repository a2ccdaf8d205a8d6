package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bookshelf/internal/api/models"
	"github.com/jon4hz/bookshelf/internal/config"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/internal/database/mock"
	"github.com/jon4hz/bookshelf/internal/mailer"
	"github.com/jon4hz/bookshelf/internal/password"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type fakeMailer struct {
	sent []mailer.Registration
	err  error
}

func (f *fakeMailer) SendRegistration(msg mailer.Registration) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type AuthTestSuite struct {
	suite.Suite
	db       *mock.MockDB
	hasher   password.Hasher
	mailer   *fakeMailer
	cfg      *config.Config
	provider *Provider
	router   *gin.Engine
	cookies  map[string]*http.Cookie
}

func (s *AuthTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.db = mock.NewMockDB()
	s.hasher = password.NewBcrypt(bcrypt.MinCost)
	s.mailer = &fakeMailer{}
	s.cfg = &config.Config{
		AppName:   "Bookshelf",
		ServerURL: "http://localhost:5000",
		Auth:      &config.AuthConfig{EnableEmail: true, EnableRegister: true},
		Gravatar:  &config.GravatarConfig{},
	}
	s.provider = New(s.cfg, s.db, s.hasher, s.mailer)
	s.cookies = map[string]*http.Cookie{}

	s.router = gin.New()
	s.router.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	s.router.Use(s.provider.CurrentUser(), s.provider.CSRF())

	s.router.GET("/whoami", func(c *gin.Context) {
		if user := GetUser(c); user != nil {
			c.String(http.StatusOK, user.Email)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	s.router.GET("/token", func(c *gin.Context) {
		c.String(http.StatusOK, CSRFToken(c))
	})
	s.router.POST("/login", func(c *gin.Context) {
		user, err := s.provider.Authenticate(c.Request.Context(), c.PostForm("email"), c.PostForm("password"))
		if err != nil {
			c.String(http.StatusUnauthorized, err.Error())
			return
		}
		if err := s.provider.Login(c, user); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.String(http.StatusOK, "ok")
	})
	s.router.POST("/logout", func(c *gin.Context) {
		if err := s.provider.Logout(c); err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.String(http.StatusOK, "bye")
	})
	s.router.GET("/private", s.provider.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "private")
	})
	s.router.GET("/admin", s.provider.RequireAuth(), s.provider.RequireRole(database.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "admin content")
	})
	s.router.POST("/form", func(c *gin.Context) {
		c.String(http.StatusOK, "accepted")
	})
}

func (s *AuthTestSuite) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		s.cookies[c.Name] = c
	}
	return w
}

func (s *AuthTestSuite) createUser(email, plain string, roles ...string) *database.User {
	digest, err := s.hasher.Hash(plain)
	s.Require().NoError(err)
	user := &database.User{Email: email, Password: digest, Active: true}
	s.Require().NoError(s.db.CreateUser(context.Background(), user, roles...))
	return user
}

func (s *AuthTestSuite) token() string {
	w := s.do(http.MethodGet, "/token", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	return w.Body.String()
}

func (s *AuthTestSuite) signIn(email, plain string) {
	w := s.do(http.MethodPost, "/login", url.Values{"email": {email}, "password": {plain}, "csrf_token": {s.token()}})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *AuthTestSuite) TestAnonymous() {
	w := s.do(http.MethodGet, "/whoami", nil)
	s.Equal("anonymous", w.Body.String())
}

func (s *AuthTestSuite) TestSignInAndOut() {
	s.createUser("member@example.com", "Password1")

	s.signIn("MEMBER@example.com", "Password1")
	s.Equal("member@example.com", s.do(http.MethodGet, "/whoami", nil).Body.String())

	w := s.do(http.MethodPost, "/logout", url.Values{"csrf_token": {s.token()}})
	s.Equal(http.StatusOK, w.Code)
	s.Equal("anonymous", s.do(http.MethodGet, "/whoami", nil).Body.String())
}

func (s *AuthTestSuite) TestSignInRotatesCSRFToken() {
	s.createUser("member@example.com", "Password1")

	before := s.token()
	s.signIn("member@example.com", "Password1")
	s.NotEqual(before, s.token())
}

func (s *AuthTestSuite) TestDisabledUserIsSignedOut() {
	user := s.createUser("member@example.com", "Password1")
	s.signIn("member@example.com", "Password1")

	s.db.SetUserActive(user.ID, false)
	s.Equal("anonymous", s.do(http.MethodGet, "/whoami", nil).Body.String())
}

func (s *AuthTestSuite) TestDeletedUserIsSignedOut() {
	s.createUser("member@example.com", "Password1")
	s.signIn("member@example.com", "Password1")

	s.db.Reset()
	s.Equal("anonymous", s.do(http.MethodGet, "/whoami", nil).Body.String())
}

func (s *AuthTestSuite) TestRequireAuth_Redirects() {
	w := s.do(http.MethodGet, "/private?page=2", nil)

	s.Equal(http.StatusFound, w.Code)
	s.Equal("/user/sign-in?next="+url.QueryEscape("/private?page=2"), w.Header().Get("Location"))
	s.NotContains(w.Body.String(), "private")
}

func (s *AuthTestSuite) TestRequireRole_Denied() {
	s.createUser("member@example.com", "Password1")
	s.createUser("agent@example.com", "Password1", database.RoleAgent, "admin")

	for _, email := range []string{"member@example.com", "agent@example.com"} {
		s.signIn(email, "Password1")
		w := s.do(http.MethodGet, "/admin", nil)
		s.Equal(http.StatusForbidden, w.Code, email)
		s.Contains(w.Body.String(), "403 Forbidden")
		s.NotContains(w.Body.String(), "admin content")
	}
}

func (s *AuthTestSuite) TestRequireRole_Allowed() {
	s.createUser("admin@example.com", "Password1", database.RoleAgent, database.RoleAdmin)
	s.signIn("admin@example.com", "Password1")

	w := s.do(http.MethodGet, "/admin", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("admin content", w.Body.String())
}

func (s *AuthTestSuite) TestRequireRole_Anonymous() {
	w := s.do(http.MethodGet, "/admin", nil)
	s.Equal(http.StatusFound, w.Code)
}

func (s *AuthTestSuite) TestCSRF() {
	w := s.do(http.MethodPost, "/form", url.Values{"x": {"1"}})
	s.Equal(http.StatusForbidden, w.Code)

	token := s.token()
	s.Equal(token, s.token(), "token is stable within a session")

	w = s.do(http.MethodPost, "/form", url.Values{"csrf_token": {"wrong"}})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/form", url.Values{"csrf_token": {token}})
	s.Equal(http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/form", nil)
	req.Header.Set("X-CSRF-Token", token)
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *AuthTestSuite) TestAuthenticate() {
	user := s.createUser("member@example.com", "Password1")
	ctx := context.Background()

	_, err := s.provider.Authenticate(ctx, "member@example.com", "password1")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.provider.Authenticate(ctx, "nobody@example.com", "Password1")
	s.ErrorIs(err, ErrInvalidCredentials)

	s.db.SetUserActive(user.ID, false)
	_, err = s.provider.Authenticate(ctx, "member@example.com", "Password1")
	s.ErrorIs(err, ErrInactive)

	s.db.GetUserByEmailError = errors.New("database is locked")
	_, err = s.provider.Authenticate(ctx, "member@example.com", "Password1")
	s.EqualError(err, "database is locked")
}

func (s *AuthTestSuite) TestRegister() {
	ctx := context.Background()
	form := models.RegisterForm{
		Email:           "New@Example.com",
		Password:        "Secret12",
		ConfirmPassword: "Secret12",
		FirstName:       "Ada",
	}

	user, err := s.provider.Register(ctx, form)
	s.Require().NoError(err)
	s.Equal("new@example.com", user.Email)
	s.True(user.Active)
	s.Empty(user.Roles)
	s.True(s.hasher.Verify(user.Password, "Secret12"))

	s.Require().Len(s.mailer.sent, 1)
	s.Equal("new@example.com", s.mailer.sent[0].Email)
	s.Equal("http://localhost:5000/user/sign-in", s.mailer.sent[0].SignInURL)

	form.Email = "NEW@example.COM"
	_, err = s.provider.Register(ctx, form)
	s.ErrorIs(err, database.ErrDuplicate)
	s.Len(s.mailer.sent, 1)
}

func (s *AuthTestSuite) TestRegister_MailFailureIsNotFatal() {
	s.mailer.err = errors.New("smtp down")

	_, err := s.provider.Register(context.Background(), models.RegisterForm{
		Email: "a@example.com", Password: "Secret12", ConfirmPassword: "Secret12",
	})
	s.NoError(err)
}

func (s *AuthTestSuite) TestRegister_Validation() {
	ctx := context.Background()
	var verr *ValidationError

	_, err := s.provider.Register(ctx, models.RegisterForm{Email: "a@example.com", Password: "weak", ConfirmPassword: "weak"})
	s.ErrorAs(err, &verr)

	_, err = s.provider.Register(ctx, models.RegisterForm{Email: "a@example.com", Password: "Secret12", ConfirmPassword: "Secret13"})
	s.ErrorAs(err, &verr)
	s.Contains(verr.Message, "did not match")

	_, err = s.provider.Register(ctx, models.RegisterForm{Email: " ", Password: "Secret12", ConfirmPassword: "Secret12"})
	s.ErrorAs(err, &verr)

	s.cfg.Auth.EnableRegister = false
	_, err = s.provider.Register(ctx, models.RegisterForm{Email: "a@example.com", Password: "Secret12", ConfirmPassword: "Secret12"})
	s.ErrorIs(err, ErrRegistrationDisabled)
}

func (s *AuthTestSuite) TestChangePassword() {
	ctx := context.Background()
	user := s.createUser("member@example.com", "Password1")
	var verr *ValidationError

	err := s.provider.ChangePassword(ctx, user.ID, models.ChangePasswordForm{OldPassword: "wrong", NewPassword: "Secret12", ConfirmPassword: "Secret12"})
	s.ErrorAs(err, &verr)

	err = s.provider.ChangePassword(ctx, user.ID, models.ChangePasswordForm{OldPassword: "Password1", NewPassword: "Secret12", ConfirmPassword: "Secret12"})
	s.Require().NoError(err)

	_, err = s.provider.Authenticate(ctx, "member@example.com", "Secret12")
	s.NoError(err)

	err = s.provider.ChangePassword(ctx, 999, models.ChangePasswordForm{})
	s.ErrorIs(err, database.ErrNotFound)
}

func (s *AuthTestSuite) TestSafeNext() {
	cases := map[string]string{
		"":                     "/",
		"/admin":               "/admin",
		"/add_book/3?x=1":      "/add_book/3?x=1",
		"//evil.example.com":   "/",
		"/\\evil.example.com":  "/",
		"https://example.com/": "/",
	}
	for in, want := range cases {
		s.Equal(want, SafeNext(in), in)
	}
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}
