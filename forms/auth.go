package forms

import (
	"net/http"
	"regexp"
	"strings"

	"blogicum/constants"
	"blogicum/database"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

type SignupForm struct {
	FirstName       string
	LastName        string
	Username        string
	Email           string
	Password        string
	PasswordConfirm string

	Errors Errors
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: Errors{}}
}

func ParseSignup(r *http.Request) *SignupForm {
	return &SignupForm{
		FirstName:       strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:        strings.TrimSpace(r.PostFormValue("last_name")),
		Username:        strings.TrimSpace(r.PostFormValue("username")),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password1"),
		PasswordConfirm: r.PostFormValue("password2"),
		Errors:          Errors{},
	}
}

// Validate checks everything that does not need the database. Username
// uniqueness is checked by the caller and reported with UsernameTaken.
func (f *SignupForm) Validate() bool {
	if required(f.Errors, "username", f.Username) {
		maxLength(f.Errors, "username", f.Username, constants.MAX_USERNAME_LENGTH)
		if !usernamePattern.MatchString(f.Username) {
			f.Errors.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		}
	}
	maxLength(f.Errors, "first_name", f.FirstName, 150)
	maxLength(f.Errors, "last_name", f.LastName, 150)
	maxLength(f.Errors, "email", f.Email, 254)
	validEmail(f.Errors, "email", f.Email)

	if required(f.Errors, "password1", f.Password) {
		validatePassword(f.Errors, "password1", f.Password)
	}
	if required(f.Errors, "password2", f.PasswordConfirm) && f.Password != f.PasswordConfirm {
		f.Errors.Add("password2", "The two password fields didn't match.")
	}
	return !f.Errors.Any()
}

func (f *SignupForm) UsernameTaken() {
	f.Errors.Add("username", "A user with that username already exists.")
}

// User builds the account to create; the password still has to be set.
func (f *SignupForm) User() *database.User {
	return &database.User{
		Username:  f.Username,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
	}
}

func validatePassword(errs Errors, field, password string) {
	if len([]rune(password)) < constants.MIN_PASSWORD_LENGTH {
		errs.Add(field, "This password is too short. It must contain at least 8 characters.")
		return
	}
	if strings.Trim(password, "0123456789") == "" {
		errs.Add(field, "This password is entirely numeric.")
	}
}

type SigninForm struct {
	Username string
	Password string
	// Next is where to go after signing in, only ever a local path.
	Next string

	Errors Errors
}

func NewSigninForm(next string) *SigninForm {
	return &SigninForm{Next: SafeNext(next), Errors: Errors{}}
}

func ParseSignin(r *http.Request) *SigninForm {
	return &SigninForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		Next:     SafeNext(r.PostFormValue("next")),
		Errors:   Errors{},
	}
}

func (f *SigninForm) Validate() bool {
	required(f.Errors, "username", f.Username)
	required(f.Errors, "password", f.Password)
	return !f.Errors.Any()
}

func (f *SigninForm) InvalidCredentials() {
	f.Errors.Add(NonFieldErrors, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
}

// SafeNext drops redirect targets that would leave the site.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

type ProfileForm struct {
	// Username is shown but never read back from the request.
	Username  string
	FirstName string
	LastName  string
	Email     string

	Errors Errors
}

const UsernameHelpText = "Username cannot be changed"

func ProfileFormFor(user *database.User) *ProfileForm {
	return &ProfileForm{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Errors:    Errors{},
	}
}

func ParseProfile(r *http.Request, user *database.User) *ProfileForm {
	return &ProfileForm{
		Username:  user.Username,
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Errors:    Errors{},
	}
}

func (f *ProfileForm) Validate() bool {
	maxLength(f.Errors, "first_name", f.FirstName, 150)
	maxLength(f.Errors, "last_name", f.LastName, 150)
	maxLength(f.Errors, "email", f.Email, 254)
	validEmail(f.Errors, "email", f.Email)
	return !f.Errors.Any()
}

func (f *ProfileForm) Apply(user *database.User) {
	user.FirstName = f.FirstName
	user.LastName = f.LastName
	user.Email = f.Email
}
