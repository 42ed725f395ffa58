package middleware

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pageza/snapfeed/backend/internal/service"
)

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New(ErrorPage).Parse(`{{.Status}} {{.Message}}`)))
	r.Use(ErrorHandler())

	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("loading post: %w", service.ErrNotFound))
	})
	r.GET("/forbidden", func(c *gin.Context) {
		_ = c.Error(service.ErrForbidden)
	})
	r.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errors.New("database on fire"))
	})
	r.GET("/handled", func(c *gin.Context) {
		_ = c.Error(service.ErrNotFound)
		c.String(http.StatusTeapot, "handled")
	})

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/missing", http.StatusNotFound, "404 Not Found"},
		{"/forbidden", http.StatusForbidden, "403 Forbidden"},
		{"/broken", http.StatusInternalServerError, "500 Internal Server Error"},
		{"/handled", http.StatusTeapot, "handled"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}
