package api_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/testhelpers"
)

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	app := setupApp(t)

	w := app.get("/saved", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?next=%2Fsaved", w.Header().Get("Location"))

	w = app.postForm("/post/1/like", url.Values{}, "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRegister(t *testing.T) {
	app := setupApp(t)

	w := app.get("/register", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.postForm("/register", url.Values{
		"username":  {"alice"},
		"email":     {"alice@example.com"},
		"password1": {"s3cret-password"},
		"password2": {"s3cret-password"},
	}, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	var profiles int64
	app.db.Model(&models.Profile{}).Count(&profiles)
	assert.Equal(t, int64(1), profiles)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w = app.serve(req, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome, alice!")
}

func TestRegisterValidation(t *testing.T) {
	app := setupApp(t)
	testhelpers.CreateUser(t, app.db, "taken")

	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{
			name:    "password mismatch",
			form:    url.Values{"username": {"bob"}, "password1": {"long-enough-1"}, "password2": {"long-enough-2"}},
			message: "The two password fields didn&#39;t match.",
		},
		{
			name:    "invalid username",
			form:    url.Values{"username": {"bad name"}, "password1": {"long-enough-1"}, "password2": {"long-enough-1"}},
			message: "Enter a valid username.",
		},
		{
			name:    "duplicate username",
			form:    url.Values{"username": {"taken"}, "password1": {"long-enough-1"}, "password2": {"long-enough-1"}},
			message: "a user with that username already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.postForm("/register", tt.form, "")
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Nil(t, sessionCookie(w))
		})
	}
}

func TestLogin(t *testing.T) {
	app := setupApp(t)
	testhelpers.CreateUser(t, app.db, "alice")

	w := app.postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a correct username and password.")

	w = app.postForm("/login", url.Values{
		"username": {"alice"},
		"password": {testhelpers.TestPassword},
		"next":     {"/saved"},
	}, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/saved", w.Header().Get("Location"))
	assert.NotNil(t, sessionCookie(w))

	w = app.postForm("/login", url.Values{
		"username": {"alice"},
		"password": {testhelpers.TestPassword},
		"next":     {"//evil.example.com/"},
	}, "")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestLogoutRevokesSession(t *testing.T) {
	app := setupApp(t)
	alice := testhelpers.CreateUser(t, app.db, "alice")
	token := app.login(t, alice)

	assert.Equal(t, http.StatusOK, app.get("/", token).Code)

	w := app.postForm("/logout", url.Values{}, token)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)

	w = app.get("/", token)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}
