package site

import (
	"net/http"
	"net/url"
	"testing"

	"blogicum/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countUsers(t *testing.T, env *testEnv) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&database.User{}).Count(&n).Error)
	return n
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	env := newTestEnv(t)
	author := env.user("leo")
	post := env.post(author, "War", env.site.now())
	c := env.client()

	for _, path := range []string{
		"/posts/create",
		"/edit_profile",
		postURL(post.ID) + "/edit",
		postURL(post.ID) + "/delete",
	} {
		resp, _ := c.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, path)
		assert.Equal(t, "/auth/login?next="+url.QueryEscape(path), resp.Header.Get("Location"), path)
	}

	resp, _ := c.postForm(postURL(post.ID)+"/comment", url.Values{"text": {"hi"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	n, err := database.CountComments(env.db, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSessionCookieIsSameSiteLax(t *testing.T) {
	env := newTestEnv(t)
	author := env.user("leo")
	post := env.post(author, "War", env.site.now())

	c := env.client()
	resp, _ := c.postForm("/auth/login", url.Values{"username": {"leo"}, "password": {testPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var session *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == SessionCookieName {
			session = cookie
		}
	}
	require.NotNil(t, session)
	assert.Equal(t, http.SameSiteLaxMode, session.SameSite)
	assert.True(t, session.HttpOnly)

	// A cross-site form post arrives without the Lax cookie.
	foreign := env.client()
	resp, _ = foreign.postForm(postURL(post.ID)+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/auth/login")
	_, err := database.GetPost(env.db, post.ID)
	require.NoError(t, err)
}

func TestSignupRejectsMismatchedPasswords(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	resp, body := c.postForm("/auth/registration", url.Values{
		"username":  {"anna"},
		"password1": {"train-station"},
		"password2": {"train-statio"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "password fields didn")
	assert.Contains(t, body, `value="anna"`)
	assert.Zero(t, countUsers(t, env))
}

func TestSignupRejectsTakenUsername(t *testing.T) {
	env := newTestEnv(t)
	env.user("anna")
	c := env.client()

	resp, body := c.postForm("/auth/registration", url.Values{
		"username":  {"anna"},
		"password1": {"train-station"},
		"password2": {"train-station"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "A user with that username already exists.")
	assert.EqualValues(t, 1, countUsers(t, env))
}

func TestSignupSignsIn(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	resp, _ := c.postForm("/auth/registration", url.Values{
		"username":   {"anna"},
		"first_name": {"Anna"},
		"email":      {"anna@example.com"},
		"password1":  {"train-station"},
		"password2":  {"train-station"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	user, err := database.GetUserByUsername(env.db, "anna")
	require.NoError(t, err)
	assert.Equal(t, "Anna", user.FirstName)
	assert.True(t, user.CheckPassword("train-station"))

	resp, body := c.get("/edit_profile")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Username cannot be changed")

	resp, _ = c.get("/auth/registration")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "signed in users skip the signup page")
}

func TestLoginHonoursNextAndLogout(t *testing.T) {
	env := newTestEnv(t)
	env.user("leo")
	c := env.client()

	resp, body := c.postForm("/auth/login", url.Values{"username": {"leo"}, "password": {"wrong-password"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Please enter a correct username and password.")

	resp, _ = c.postForm("/auth/login", url.Values{
		"username": {"leo"},
		"password": {testPassword},
		"next":     {"/posts/create"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/posts/create", resp.Header.Get("Location"))

	resp, _ = c.get("/posts/create")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = c.postForm("/auth/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	user, err := database.GetUserByUsername(env.db, "leo")
	require.NoError(t, err)
	assert.Nil(t, user.SessionToken)

	resp, _ = c.get("/posts/create")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLoginIgnoresOffsiteNext(t *testing.T) {
	env := newTestEnv(t)
	env.user("leo")

	resp, _ := env.client().postForm("/auth/login", url.Values{
		"username": {"leo"},
		"password": {testPassword},
		"next":     {"https://evil.example/"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile/leo", resp.Header.Get("Location"))
}

func TestEditProfileKeepsUsername(t *testing.T) {
	env := newTestEnv(t)
	env.user("leo")
	c := env.client()
	c.login("leo")

	resp, _ := c.postForm("/edit_profile", url.Values{
		"username":   {"tolstoy"},
		"first_name": {"Lev"},
		"last_name":  {"Tolstoy"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile/leo", resp.Header.Get("Location"))

	user, err := database.GetUserByUsername(env.db, "leo")
	require.NoError(t, err)
	assert.Equal(t, "Lev Tolstoy", user.FullName())

	resp, body := c.postForm("/edit_profile", url.Values{"email": {"not an email"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Enter a valid email address.")
}
