package api

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/pageza/snapfeed/backend/internal/middleware"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/types"
)

// ProfileHandler serves profile pages, profile edits and the follow relation.
type ProfileHandler struct {
	profileService service.IProfileService
	maxUpload      int64
}

func NewProfileHandler(profileService service.IProfileService, maxUpload int64) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		maxUpload:      maxUpload,
	}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := router.Group("", middleware.RequireAuth())
	{
		authed.GET("/profile/:username", h.GetProfile)
		authed.POST("/profile/:username", h.UpdateProfile)
		authed.GET("/profile/:username/followers", h.Followers)
		authed.GET("/profile/:username/following", h.Following)
		authed.POST("/follow/:username", h.ToggleFollow)
	}
}

func (h *ProfileHandler) renderProfile(c *gin.Context, status int, bio string, errs map[string]string) {
	view, err := h.profileService.ViewProfile(c.Request.Context(), principal(c), c.Param("username"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if errs == nil {
		bio = view.Profile.Bio
	}
	render(c, status, "profile.html", gin.H{
		"Title":  view.User.Username,
		"View":   view,
		"Posts":  postCards(view.Posts, principal(c)),
		"Bio":    bio,
		"Errors": errs,
	})
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	h.renderProfile(c, http.StatusOK, "", nil)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	username := c.Param("username")

	var form types.ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		errs, ok := formErrors(err)
		if !ok {
			errs = map[string]string{"__all__": "The form could not be read."}
		}
		h.renderProfile(c, http.StatusUnprocessableEntity, form.Bio, errs)
		return
	}

	picture, err := readUpload(form.Picture, "picture", h.maxUpload)
	if err != nil {
		if errs, ok := formErrors(err); ok {
			h.renderProfile(c, http.StatusUnprocessableEntity, form.Bio, errs)
			return
		}
		_ = c.Error(err)
		return
	}

	_, err = h.profileService.UpdateProfile(c.Request.Context(), principal(c), username, &types.ProfileUpdate{
		Bio:     form.Bio,
		Picture: picture,
	})
	if err != nil {
		if errs, ok := formErrors(err); ok {
			h.renderProfile(c, http.StatusUnprocessableEntity, form.Bio, errs)
			return
		}
		_ = c.Error(err)
		return
	}

	setFlash(c, "Your profile has been updated.")
	c.Redirect(http.StatusSeeOther, "/profile/"+url.PathEscape(username))
}

func (h *ProfileHandler) ToggleFollow(c *gin.Context) {
	if _, err := h.profileService.ToggleFollow(c.Request.Context(), principal(c), c.Param("username")); err != nil {
		_ = c.Error(err)
		return
	}
	redirectBack(c, "/")
}

func (h *ProfileHandler) Followers(c *gin.Context) {
	username := c.Param("username")
	users, err := h.profileService.ListFollowers(c.Request.Context(), username)
	if err != nil {
		_ = c.Error(err)
		return
	}
	render(c, http.StatusOK, "follow_list.html", gin.H{
		"Title":   "Followers of " + username,
		"Owner":   username,
		"Users":   users,
		"Heading": "Followers",
	})
}

func (h *ProfileHandler) Following(c *gin.Context) {
	username := c.Param("username")
	users, err := h.profileService.ListFollowing(c.Request.Context(), username)
	if err != nil {
		_ = c.Error(err)
		return
	}
	render(c, http.StatusOK, "follow_list.html", gin.H{
		"Title":   username + " follows",
		"Owner":   username,
		"Users":   users,
		"Heading": "Following",
	})
}
