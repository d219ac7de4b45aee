package site

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"net/url"

	"blogicum/database"
	"blogicum/forms"
)

type contextKey string

const authenticatedUserContextKey = contextKey("authenticated_user")

const SessionCookieName = "blogicum_session"

func getSignedInUserOrNil(r *http.Request) *database.User {
	user, _ := r.Context().Value(authenticatedUserContextKey).(*database.User)
	return user
}

// getSignedInUser is for handlers behind AuthProtectedMiddleware.
func getSignedInUser(r *http.Request) *database.User {
	user := getSignedInUserOrNil(r)
	if user == nil {
		panic("handler requires a signed in user")
	}
	return user
}

func generateAuthToken() (string, error) {
	const tokenLength = 32
	tokenBytes := make([]byte, tokenLength)
	_, err := rand.Read(tokenBytes)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

func (s *Site) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Site) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// signIn issues a fresh session token for user and sets the cookie.
func (s *Site) signIn(w http.ResponseWriter, r *http.Request, user *database.User) error {
	token, err := generateAuthToken()
	if err != nil {
		return err
	}
	if err := database.SetSessionToken(s.dbFor(r), user, &token); err != nil {
		return err
	}
	s.setSessionCookie(w, token)
	return nil
}

func (s *Site) TryPutUserInContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := database.GetUserBySessionToken(s.dbFor(r), cookie.Value)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.Printf("Look up session: %v", err)
			}
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), authenticatedUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthProtectedMiddleware sends anonymous visitors to the login page and
// brings them back afterwards.
func AuthProtectedMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if getSignedInUserOrNil(r) == nil {
			http.Redirect(w, r, "/auth/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GuestOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := getSignedInUserOrNil(r); user != nil {
			http.Redirect(w, r, profileURL(user.Username), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Site) UserSignIn(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.RenderTemplate(w, r, "signin", forms.NewSigninForm(r.URL.Query().Get("next")))

	case "POST":
		form := forms.ParseSignin(r)
		if !form.Validate() {
			s.RenderTemplate(w, r, "signin", form)
			return
		}

		user, err := database.GetUserByUsername(s.dbFor(r), form.Username)
		if errors.Is(err, database.ErrNotFound) || (err == nil && !user.CheckPassword(form.Password)) {
			form.InvalidCredentials()
			s.RenderTemplate(w, r, "signin", form)
			return
		}
		if err != nil {
			s.serverError(w, r, err)
			return
		}

		if err := s.signIn(w, r, user); err != nil {
			s.serverError(w, r, err)
			return
		}

		next := form.Next
		if next == "" {
			next = profileURL(user.Username)
		}
		http.Redirect(w, r, next, http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}

func (s *Site) UserSignUp(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.RenderTemplate(w, r, "signup", forms.NewSignupForm())

	case "POST":
		form := forms.ParseSignup(r)
		if !form.Validate() {
			s.RenderTemplate(w, r, "signup", form)
			return
		}

		user := form.User()
		if err := user.SetPassword(form.Password); err != nil {
			s.serverError(w, r, err)
			return
		}

		err := database.CreateUser(s.dbFor(r), user)
		if errors.Is(err, database.ErrUsernameTaken) {
			form.UsernameTaken()
			s.RenderTemplate(w, r, "signup", form)
			return
		}
		if err != nil {
			s.serverError(w, r, err)
			return
		}
		s.metrics.Signups.Inc()

		if err := s.signIn(w, r, user); err != nil {
			s.serverError(w, r, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)

	default:
		methodNotAllowed(w)
	}
}

func (s *Site) UserLogout(w http.ResponseWriter, r *http.Request) {
	if user := getSignedInUserOrNil(r); user != nil {
		if err := database.SetSessionToken(s.dbFor(r), user, nil); err != nil {
			s.serverError(w, r, err)
			return
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
