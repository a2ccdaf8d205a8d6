package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bookshelf/internal/api/models"
	"github.com/jon4hz/bookshelf/internal/config"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/internal/mailer"
	"github.com/jon4hz/bookshelf/internal/password"
)

const (
	sessionUserID = "user_id"
	sessionCSRF   = "csrf_token"

	// SignInPath is where anonymous users are sent by RequireAuth.
	SignInPath = "/user/sign-in"
)

var (
	// ErrInvalidCredentials is returned when the email is unknown or the password does not match.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrInactive is returned when a disabled account tries to sign in.
	ErrInactive = errors.New("account is disabled")
	// ErrRegistrationDisabled is returned by Register when sign up is turned off.
	ErrRegistrationDisabled = errors.New("registration is disabled")
)

// ValidationError describes a form value that was rejected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Provider authenticates users against the database and keeps them in the session.
type Provider struct {
	db     database.UserDB
	hasher password.Hasher
	mailer mailer.Mailer
	cfg    *config.Config
}

// New creates a new auth provider.
func New(cfg *config.Config, db database.UserDB, hasher password.Hasher, m mailer.Mailer) *Provider {
	return &Provider{
		db:     db,
		hasher: hasher,
		mailer: m,
		cfg:    cfg,
	}
}

// Authenticate returns the active user matching the credentials.
func (p *Provider) Authenticate(ctx context.Context, email, plain string) (*database.User, error) {
	user, err := p.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !p.hasher.Verify(user.Password, plain) {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInactive
	}
	return user, nil
}

// Login stores the user in the session. The CSRF token is rotated.
func (p *Provider) Login(c *gin.Context, user *database.User) error {
	session := sessions.Default(c)
	session.Set(sessionUserID, user.ID)
	session.Delete(sessionCSRF)
	if err := session.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.Set("user", models.ToUser(user, p.cfg.Gravatar))
	log.Info("user signed in", "user_id", user.ID)
	return nil
}

// Logout removes everything from the session.
func (p *Provider) Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// Register validates the form and creates a new account without roles.
// A taken email yields an error wrapping database.ErrDuplicate.
func (p *Provider) Register(ctx context.Context, form models.RegisterForm) (*database.User, error) {
	if !p.cfg.Auth.EnableRegister {
		return nil, ErrRegistrationDisabled
	}

	email := database.NormalizeEmail(form.Email)
	if email == "" {
		return nil, &ValidationError{Message: "Email is required."}
	}
	if err := password.Validate(form.Password); err != nil {
		return nil, passwordError(err)
	}
	if form.Password != form.ConfirmPassword {
		return nil, &ValidationError{Message: "Password and Retype Password did not match."}
	}

	digest, err := p.hasher.Hash(form.Password)
	if err != nil {
		return nil, err
	}
	user := &database.User{
		Email:     email,
		Active:    true,
		Password:  digest,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	}
	if err := p.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s is already registered", database.ErrDuplicate, email)
		}
		return nil, err
	}
	log.Info("registered new user", "user_id", user.ID)

	if err := p.mailer.SendRegistration(mailer.Registration{
		Email:     user.Email,
		FirstName: user.FirstName,
		AppName:   p.cfg.AppName,
		SignInURL: p.cfg.ServerURL + SignInPath,
	}); err != nil {
		log.Error("failed to send registration email", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the old one.
func (p *Provider) ChangePassword(ctx context.Context, userID uint, form models.ChangePasswordForm) error {
	user, err := p.db.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !p.hasher.Verify(user.Password, form.OldPassword) {
		return &ValidationError{Message: "Old Password is incorrect."}
	}
	if err := password.Validate(form.NewPassword); err != nil {
		return passwordError(err)
	}
	if form.NewPassword != form.ConfirmPassword {
		return &ValidationError{Message: "New Password and Retype Password did not match."}
	}
	digest, err := p.hasher.Hash(form.NewPassword)
	if err != nil {
		return err
	}
	return p.db.UpdateUserPassword(ctx, userID, digest)
}

func passwordError(err error) *ValidationError {
	if errors.Is(err, password.ErrTooLong) {
		return &ValidationError{Message: "Password must not be longer than 72 bytes."}
	}
	return &ValidationError{Message: "Password must have at least 6 characters with one lowercase letter, one uppercase letter and one number."}
}
