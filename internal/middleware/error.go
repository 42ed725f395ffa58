package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/snapfeed/backend/internal/service"
)

// ErrorPage is the template rendered for request errors.
const ErrorPage = "error.html"

// StatusFor maps a service error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders the error page for the last error a handler attached
// with c.Error, unless the handler already wrote a response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			log.Printf("[ErrorHandler] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}

		c.HTML(status, ErrorPage, gin.H{
			"Title":    http.StatusText(status),
			"Username": Username(c),
			"Status":   status,
			"Message":  http.StatusText(status),
		})
	}
}
