package api

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pageza/snapfeed/backend/internal/middleware"
	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookie = "snapfeed_flash"

var templateFuncs = template.FuncMap{
	"mediaURL": func(key string) string {
		return "/media/" + key
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	},
}

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}

var registerOnce sync.Once

// RegisterValidators installs the custom "username" tag on gin's validator
// and makes validation errors report form field names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return types.ValidUsername(fl.Field().String())
		})
	})
}

// render writes a page with the data every layout needs.
func render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Username"] = middleware.Username(c)
	data["Flash"] = takeFlash(c)
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	c.HTML(status, page, data)
}

func setFlash(c *gin.Context, message string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, url.QueryEscape(message), 60, "/", "", false, true)
}

func takeFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	message, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return message
}

// formErrors turns binding and service validation errors into a map of form
// field name to message. ok is false for any other error.
func formErrors(err error) (map[string]string, bool) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			if _, seen := out[fe.Field()]; !seen {
				out[fe.Field()] = fieldMessage(fe)
			}
		}
		return out, true
	}
	return nil, false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return "Enter a valid value."
}

// readUpload loads an optional uploaded file, refusing files over max bytes.
func readUpload(fh *multipart.FileHeader, field string, max int64) (*types.ImageUpload, error) {
	if fh == nil {
		return nil, nil
	}
	if fh.Size > max {
		return nil, &service.ValidationError{Fields: map[string]string{
			field: fmt.Sprintf("Images may be at most %.1f MB.", float64(max)/(1<<20)),
		}}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return &types.ImageUpload{Filename: fh.Filename, Data: data}, nil
}

// principal returns the authenticated user's ID. Routes using it sit behind
// RequireAuth.
func principal(c *gin.Context) uint {
	id, _ := middleware.UserID(c)
	return id
}

// idParam parses a numeric path parameter. Malformed IDs are reported as
// missing.
func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, service.ErrNotFound
	}
	return uint(id), nil
}

// redirectBack sends the client to the same-origin Referer, or fallback.
func redirectBack(c *gin.Context, fallback string) {
	target := fallback
	if ref, err := url.Parse(c.Request.Referer()); err == nil && ref.Path != "" {
		if ref.Host == "" || ref.Host == c.Request.Host {
			target = ref.RequestURI()
		}
	}
	c.Redirect(http.StatusSeeOther, target)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}

// PostCard is a post with the viewer's relation to it.
type PostCard struct {
	models.Post
	Liked        bool
	Saved        bool
	Owned        bool
	CommentError string
}

func postCards(posts []models.Post, viewerID uint) []PostCard {
	cards := make([]PostCard, len(posts))
	for i := range posts {
		p := &posts[i]
		cards[i] = PostCard{
			Post:  *p,
			Liked: p.LikedBy(viewerID),
			Saved: p.SavedByUser(viewerID),
			Owned: p.UserID == viewerID,
		}
	}
	return cards
}
