package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/snapfeed/backend/internal/middleware"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/types"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	authService  service.IAuthService
	loginLimiter *middleware.RateLimiter
	cookieSecure bool
}

func NewAuthHandler(authService service.IAuthService, loginLimiter *middleware.RateLimiter, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
		cookieSecure: cookieSecure,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/register", h.RegisterPage)
	router.POST("/register", h.loginLimiter.Middleware(), h.Register)
	router.GET("/login", h.LoginPage)
	router.POST("/login", h.loginLimiter.Middleware(), h.Login)

	authed := router.Group("", middleware.RequireAuth())
	authed.POST("/logout", h.Logout)
}

func (h *AuthHandler) startSession(c *gin.Context, token string) {
	middleware.SetSessionCookie(c, token, int(service.SessionTTL.Seconds()), h.cookieSecure)
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if _, ok := middleware.UserID(c); ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	render(c, http.StatusOK, "register.html", gin.H{"Title": "Register", "Form": &types.RegisterForm{}})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var form types.RegisterForm
	fail := func(status int, errs map[string]string) {
		form.Password, form.PasswordConfirm = "", ""
		render(c, status, "register.html", gin.H{"Title": "Register", "Form": &form, "Errors": errs})
	}

	if err := c.ShouldBind(&form); err != nil {
		errs, ok := formErrors(err)
		if !ok {
			errs = map[string]string{"__all__": "The form could not be read."}
		}
		fail(http.StatusUnprocessableEntity, errs)
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), &form)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			fail(http.StatusUnprocessableEntity, map[string]string{"username": err.Error()})
			return
		}
		if errs, ok := formErrors(err); ok {
			fail(http.StatusUnprocessableEntity, errs)
			return
		}
		_ = c.Error(err)
		return
	}

	h.startSession(c, token)
	setFlash(c, "Welcome, "+user.Username+"!")
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.UserID(c); ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Log in",
		"Form":  &types.LoginForm{Next: safeNext(c.Query("next"))},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form types.LoginForm
	fail := func(status int, errs map[string]string) {
		form.Password = ""
		render(c, status, "login.html", gin.H{"Title": "Log in", "Form": &form, "Errors": errs})
	}

	if err := c.ShouldBind(&form); err != nil {
		errs, _ := formErrors(err)
		fail(http.StatusUnprocessableEntity, errs)
		return
	}

	_, token, err := h.authService.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Printf("[AuthHandler] Failed login for %q from %s", form.Username, c.ClientIP())
			fail(http.StatusUnauthorized, map[string]string{
				"__all__": "Please enter a correct username and password. Note that both fields may be case-sensitive.",
			})
			return
		}
		_ = c.Error(err)
		return
	}

	h.startSession(c, token)
	c.Redirect(http.StatusSeeOther, safeNext(form.Next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		log.Printf("[AuthHandler] Failed to revoke session: %v", err)
	}
	middleware.ClearSessionCookie(c, h.cookieSecure)
	setFlash(c, "You have been logged out.")
	c.Redirect(http.StatusSeeOther, "/login")
}
