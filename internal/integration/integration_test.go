package integration

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/snapfeed/backend/config"
	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/server"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/testhelpers"
)

// stack runs the whole application against Postgres and Redis containers.
type stack struct {
	db    *gorm.DB
	redis *redis.Client
	url   string
}

func setupStack(t *testing.T) *stack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupPostgresDB(t)
	redisClient := testhelpers.SetupRedis(t)

	cfg := &config.Config{
		JWTSecret:      "integration-secret-0123456789abcdef",
		BcryptCost:     4,
		MaxUploadBytes: 1 << 20,
	}
	srv := server.New(cfg, db, redisClient, service.NewDBStore(db))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &stack{db: db, redis: redisClient, url: ts.URL}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func drain(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPostWithImageAndLogout(t *testing.T) {
	s := setupStack(t)
	client := newClient(t)

	resp, err := client.PostForm(s.url+"/register", url.Values{
		"username":  {"alice"},
		"password1": {"s3cret-password"},
		"password2": {"s3cret-password"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drain(t, resp)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("content", "harbour at dawn"))
	fw, err := mw.CreateFormFile("image", "dawn.png")
	require.NoError(t, err)
	_, err = fw.Write(testhelpers.PNGData)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err = client.Post(s.url+"/post/create", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, drain(t, resp), "harbour at dawn")

	var post models.Post
	require.NoError(t, s.db.Where("content = ?", "harbour at dawn").First(&post).Error)
	require.NotEmpty(t, post.ImageKey)

	resp, err = client.Get(s.url + "/media/" + post.ImageKey)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, string(testhelpers.PNGData), drain(t, resp))

	resp, err = client.PostForm(s.url+"/logout", nil)
	require.NoError(t, err)
	drain(t, resp)

	keys, err := s.redis.Keys(context.Background(), "session:revoked:*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	resp, err = client.Get(s.url + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, drain(t, resp), `"redis":"ok"`)
}

func TestLoginRateLimit(t *testing.T) {
	s := setupStack(t)
	testhelpers.CreateUser(t, s.db, "alice")
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	form := url.Values{"username": {"alice"}, "password": {"wrong-password"}}
	for i := 0; i < 20; i++ {
		resp, err := client.PostForm(s.url+"/login", form)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		drain(t, resp)
	}

	resp, err := client.PostForm(s.url+"/login", form)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	drain(t, resp)

	// Viewing the login page is not counted.
	resp, err = client.Get(s.url + "/login")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	drain(t, resp)
}
