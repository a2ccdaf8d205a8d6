// Package pages renders the HTML pages of the web interface.
package pages

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"
	"github.com/jon4hz/bookshelf/internal/api/models"
	"github.com/mergestat/timediff"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Layout holds the values shared by every page.
type Layout struct {
	AppName        string
	Title          string
	User           *models.User
	CSRFToken      string
	EnableRegister bool
	Year           int
}

// AdminData is the content of the admin page.
type AdminData struct {
	Users     []models.User
	BookCount int
}

// BookFormData is the content of the add and edit book page.
// ID is zero when a new book is created.
type BookFormData struct {
	ID    uint
	Form  models.BookForm
	Error string
}

type SignInData struct {
	Form  models.SignInForm
	Error string
}

type RegisterData struct {
	Form  models.RegisterForm
	Error string
}

type ProfileData struct {
	Form  models.ProfileForm
	Error string
}

type ChangePasswordData struct {
	Error string
}

// ErrorData is the content of the error page.
type ErrorData struct {
	Code    int
	Message string
}

// Status returns the HTTP status text of the error code.
func (e ErrorData) Status() string {
	return http.StatusText(e.Code)
}

type page struct {
	Layout  Layout
	Content any
}

var funcs = template.FuncMap{
	"since": FormatRelativeTime,
	"comma": FormatCount,
	"join":  strings.Join,
}

var (
	homeTmpl           = parse("home.html")
	adminTmpl          = parse("admin.html")
	contactTmpl        = parse("contact.html")
	allBooksTmpl       = parse("all_books.html")
	bookFormTmpl       = parse("book_form.html")
	signInTmpl         = parse("sign_in.html")
	registerTmpl       = parse("register.html")
	editProfileTmpl    = parse("edit_profile.html")
	changePasswordTmpl = parse("change_password.html")
	errorTmpl          = parse("error.html")
)

// parse combines the layout with the content template of one page.
func parse(name string) *template.Template {
	return template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name))
}

func render(t *template.Template, l Layout, content any) templ.Component {
	if l.Year == 0 {
		l.Year = time.Now().Year()
	}
	return templ.FromGoHTML(t, page{Layout: l, Content: content})
}

func Home(l Layout) templ.Component {
	return render(homeTmpl, l, nil)
}

func Admin(l Layout, data AdminData) templ.Component {
	l.Title = "Admin"
	return render(adminTmpl, l, data)
}

func Contact(l Layout) templ.Component {
	l.Title = "Contact"
	return render(contactTmpl, l, nil)
}

func AllBooks(l Layout, books []models.Book) templ.Component {
	l.Title = "All books"
	return render(allBooksTmpl, l, books)
}

func BookForm(l Layout, data BookFormData) templ.Component {
	l.Title = "Add book"
	if data.ID != 0 {
		l.Title = "Edit book"
	}
	return render(bookFormTmpl, l, data)
}

func SignIn(l Layout, data SignInData) templ.Component {
	l.Title = "Sign in"
	return render(signInTmpl, l, data)
}

func Register(l Layout, data RegisterData) templ.Component {
	l.Title = "Register"
	return render(registerTmpl, l, data)
}

func EditProfile(l Layout, data ProfileData) templ.Component {
	l.Title = "Edit profile"
	return render(editProfileTmpl, l, data)
}

func ChangePassword(l Layout, data ChangePasswordData) templ.Component {
	l.Title = "Change password"
	return render(changePasswordTmpl, l, data)
}

func Error(l Layout, data ErrorData) templ.Component {
	l.Title = data.Status()
	return render(errorTmpl, l, data)
}

// FormatRelativeTime formats a time.Time as a relative time string like "3 days ago".
func FormatRelativeTime(v any) string {
	switch t := v.(type) {
	case time.Time:
		return timediff.TimeDiff(t)
	case *time.Time:
		if t == nil {
			return ""
		}
		return timediff.TimeDiff(*t)
	default:
		return ""
	}
}

// FormatCount formats a count with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}
