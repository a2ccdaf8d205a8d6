package models

import "time"

// User represents the signed-in user for display in the UI.
type User struct {
	ID               uint
	Email            string
	FirstName        string
	LastName         string
	Roles            []string
	IsAdmin          bool
	GravatarURL      string // URL to the user's Gravatar image, empty if not available
	EmailConfirmedAt *time.Time
	CreatedAt        time.Time
}

// DisplayName returns the full name of the user, or the email if no name is set.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}

// Book represents a catalog entry for display in the UI.
type Book struct {
	ID          uint
	Author      string
	Title       string
	Description string
	UpdatedAt   time.Time
}

// BookForm holds the submitted fields of the book form.
type BookForm struct {
	Author      string `form:"author"`
	Title       string `form:"title"`
	Description string `form:"description"`
}

// SignInForm holds the submitted fields of the sign-in form.
type SignInForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// RegisterForm holds the submitted fields of the registration form.
type RegisterForm struct {
	Email           string `form:"email" binding:"required,email"`
	Password        string `form:"password" binding:"required"`
	ConfirmPassword string `form:"retype_password" binding:"required"`
	FirstName       string `form:"first_name"`
	LastName        string `form:"last_name"`
}

// ProfileForm holds the submitted fields of the edit profile form.
type ProfileForm struct {
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
}

// ChangePasswordForm holds the submitted fields of the change password form.
type ChangePasswordForm struct {
	OldPassword     string `form:"old_password" binding:"required"`
	NewPassword     string `form:"new_password" binding:"required"`
	ConfirmPassword string `form:"retype_password" binding:"required"`
}
