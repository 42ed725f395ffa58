package api_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/snapfeed/backend/internal/api"
	"github.com/pageza/snapfeed/backend/internal/middleware"
	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/testhelpers"
)

const testSecret = "api-test-secret-0123456789"

// testApp wires every handler to real services over an in-memory database.
type testApp struct {
	db     *gorm.DB
	engine *gin.Engine
	auth   *service.AuthService
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api.RegisterValidators()

	db := testhelpers.SetupTestDB(t)
	images := service.NewImageService(service.NewDBStore(db), 1<<20)
	auth := service.NewAuthService(db, testSecret, bcrypt.MinCost, nil)
	posts := service.NewPostService(db, images)

	engine := gin.New()
	engine.SetHTMLTemplate(api.Templates())
	engine.Use(middleware.ErrorHandler(), middleware.LoadPrincipal(auth))

	group := &engine.RouterGroup
	api.NewHealthHandler(db, nil).RegisterRoutes(group)
	api.NewAuthHandler(auth, nil, false).RegisterRoutes(group)
	api.NewFeedHandler(posts, service.NewCommentService(db)).RegisterRoutes(group)
	api.NewPostHandler(posts, nil, images.MaxBytes()).RegisterRoutes(group)
	api.NewProfileHandler(service.NewProfileService(db, images), images.MaxBytes()).RegisterRoutes(group)
	api.NewSearchHandler(service.NewSearchService(db)).RegisterRoutes(group)
	api.NewMediaHandler(images).RegisterRoutes(group)

	return &testApp{db: db, engine: engine, auth: auth}
}

// login returns a session token for a user made by testhelpers.CreateUser.
func (a *testApp) login(t *testing.T, user *models.User) string {
	t.Helper()
	_, token, err := a.auth.Login(context.Background(), user.Username, testhelpers.TestPassword)
	require.NoError(t, err)
	return token
}

func (a *testApp) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path, token string) *httptest.ResponseRecorder {
	return a.serve(httptest.NewRequest(http.MethodGet, path, nil), token)
}

func (a *testApp) postForm(path string, form url.Values, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.serve(req, token)
}

// postMultipart submits fields plus an optional file under fileField.
func (a *testApp) postMultipart(t *testing.T, path string, fields map[string]string, fileField string, file []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		fw, err := mw.CreateFormFile(fileField, "upload.bin")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.serve(req, token)
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}
