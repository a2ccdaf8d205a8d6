package handler

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bookshelf/internal/api/auth"
	"github.com/jon4hz/bookshelf/internal/api/models"
	"github.com/jon4hz/bookshelf/internal/database"
	"github.com/jon4hz/bookshelf/web/templates/pages"
)

// SignIn renders the sign in form. Signed in users are sent on.
func (h *Handler) SignIn(c *gin.Context) {
	next := auth.SafeNext(c.Query("next"))
	if auth.GetUser(c) != nil {
		c.Redirect(http.StatusFound, next)
		return
	}
	auth.Render(c, http.StatusOK, pages.SignIn(h.auth.PageLayout(c), pages.SignInData{
		Form: models.SignInForm{Next: next},
	}))
}

func (h *Handler) SignInPost(c *gin.Context) {
	var form models.SignInForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderSignIn(c, http.StatusBadRequest, form, "Email and password are required.")
		return
	}
	form.Next = auth.SafeNext(form.Next)

	user, err := h.auth.Authenticate(c.Request.Context(), form.Email, form.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInactive):
		log.Warn("failed sign in attempt", "error", err)
		h.renderSignIn(c, http.StatusUnauthorized, form, "Incorrect Email and/or Password.")
		return
	case err != nil:
		h.fail(c, err, "")
		return
	}

	if err := h.auth.Login(c, user); err != nil {
		h.fail(c, err, "")
		return
	}
	c.Redirect(http.StatusFound, form.Next)
}

func (h *Handler) renderSignIn(c *gin.Context, status int, form models.SignInForm, msg string) {
	form.Password = ""
	auth.Render(c, status, pages.SignIn(h.auth.PageLayout(c), pages.SignInData{Form: form, Error: msg}))
}

// SignOut clears the session.
func (h *Handler) SignOut(c *gin.Context) {
	if err := h.auth.Logout(c); err != nil {
		h.fail(c, err, "")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Register renders the registration form.
func (h *Handler) Register(c *gin.Context) {
	if !h.config.Auth.EnableRegister {
		h.NotFound(c)
		return
	}
	auth.Render(c, http.StatusOK, pages.Register(h.auth.PageLayout(c), pages.RegisterData{}))
}

func (h *Handler) RegisterPost(c *gin.Context) {
	if !h.config.Auth.EnableRegister {
		h.NotFound(c)
		return
	}

	var form models.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderRegister(c, http.StatusBadRequest, form, "Please enter a valid email address and password.")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), form)
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		h.renderRegister(c, http.StatusBadRequest, form, verr.Message)
		return
	case errors.Is(err, database.ErrDuplicate):
		h.renderRegister(c, http.StatusConflict, form, "This Email is already in use. Please try another one.")
		return
	case err != nil:
		h.fail(c, err, "")
		return
	}

	if err := h.auth.Login(c, user); err != nil {
		h.fail(c, err, "")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) renderRegister(c *gin.Context, status int, form models.RegisterForm, msg string) {
	form.Password = ""
	form.ConfirmPassword = ""
	auth.Render(c, status, pages.Register(h.auth.PageLayout(c), pages.RegisterData{Form: form, Error: msg}))
}

// EditProfile renders the profile form of the signed in user.
func (h *Handler) EditProfile(c *gin.Context) {
	user := auth.GetUser(c)
	auth.Render(c, http.StatusOK, pages.EditProfile(h.auth.PageLayout(c), pages.ProfileData{
		Form: models.ProfileForm{FirstName: user.FirstName, LastName: user.LastName},
	}))
}

func (h *Handler) EditProfilePost(c *gin.Context) {
	user := auth.GetUser(c)

	var form models.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		auth.Render(c, http.StatusBadRequest, pages.EditProfile(h.auth.PageLayout(c), pages.ProfileData{
			Form:  form,
			Error: "Invalid form submission.",
		}))
		return
	}

	if err := h.db.UpdateUserProfile(c.Request.Context(), user.ID, form.FirstName, form.LastName); err != nil {
		h.fail(c, err, "")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// ChangePassword renders the change password form.
func (h *Handler) ChangePassword(c *gin.Context) {
	auth.Render(c, http.StatusOK, pages.ChangePassword(h.auth.PageLayout(c), pages.ChangePasswordData{}))
}

func (h *Handler) ChangePasswordPost(c *gin.Context) {
	user := auth.GetUser(c)

	var form models.ChangePasswordForm
	if err := c.ShouldBind(&form); err != nil {
		auth.Render(c, http.StatusBadRequest, pages.ChangePassword(h.auth.PageLayout(c), pages.ChangePasswordData{
			Error: "All fields are required.",
		}))
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), user.ID, form)
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		auth.Render(c, http.StatusBadRequest, pages.ChangePassword(h.auth.PageLayout(c), pages.ChangePasswordData{
			Error: verr.Message,
		}))
		return
	case err != nil:
		h.fail(c, err, "")
		return
	}
	log.Info("password changed", "user_id", user.ID)
	c.Redirect(http.StatusFound, "/")
}
