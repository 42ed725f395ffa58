package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/snapfeed/backend/internal/middleware"
	"github.com/pageza/snapfeed/backend/internal/models"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/types"
)

// PostHandler serves post creation, editing, deletion and the like and save
// toggles.
type PostHandler struct {
	postService   service.IPostService
	createLimiter *middleware.RateLimiter
	maxUpload     int64
}

func NewPostHandler(postService service.IPostService, createLimiter *middleware.RateLimiter, maxUpload int64) *PostHandler {
	return &PostHandler{
		postService:   postService,
		createLimiter: createLimiter,
		maxUpload:     maxUpload,
	}
}

func (h *PostHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := router.Group("", middleware.RequireAuth())
	{
		authed.GET("/post/create", h.NewPost)
		authed.POST("/post/create", h.createLimiter.Middleware(), h.CreatePost)
		authed.POST("/post/delete/:postId", h.DeletePost)
		authed.GET("/post/:postId/edit", h.EditPage)
		authed.POST("/post/:postId/edit", h.EditPost)
		authed.POST("/post/:postId/like", h.ToggleLike)
		authed.POST("/post/:postId/save", h.ToggleSave)
		authed.GET("/saved", h.SavedPosts)
	}
}

func (h *PostHandler) renderForm(c *gin.Context, status int, post *models.Post, content string, errs map[string]string) {
	title := "New post"
	if post != nil {
		title = "Edit post"
	}
	render(c, status, "post_form.html", gin.H{
		"Title":   title,
		"Post":    post,
		"Content": content,
		"Errors":  errs,
	})
}

// bindPost reads the post form. It returns nil input after rendering the
// form again when the submission is invalid.
func (h *PostHandler) bindPost(c *gin.Context, post *models.Post) *types.PostInput {
	var form types.PostForm
	if err := c.ShouldBind(&form); err != nil {
		errs, ok := formErrors(err)
		if !ok {
			errs = map[string]string{"__all__": "The form could not be read."}
		}
		h.renderForm(c, http.StatusUnprocessableEntity, post, form.Content, errs)
		return nil
	}

	image, err := readUpload(form.Image, "image", h.maxUpload)
	if err != nil {
		if errs, ok := formErrors(err); ok {
			h.renderForm(c, http.StatusUnprocessableEntity, post, form.Content, errs)
			return nil
		}
		_ = c.Error(err)
		return nil
	}
	return &types.PostInput{Content: form.Content, Image: image}
}

func (h *PostHandler) NewPost(c *gin.Context) {
	h.renderForm(c, http.StatusOK, nil, "", nil)
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	input := h.bindPost(c, nil)
	if input == nil {
		return
	}

	if _, err := h.postService.CreatePost(c.Request.Context(), principal(c), input); err != nil {
		if errs, ok := formErrors(err); ok {
			h.renderForm(c, http.StatusUnprocessableEntity, nil, input.Content, errs)
			return
		}
		_ = c.Error(err)
		return
	}

	setFlash(c, "Your post has been published.")
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PostHandler) EditPage(c *gin.Context) {
	postID, err := idParam(c, "postId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	post, err := h.postService.GetEditablePost(c.Request.Context(), principal(c), postID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderForm(c, http.StatusOK, post, post.Content, nil)
}

func (h *PostHandler) EditPost(c *gin.Context) {
	postID, err := idParam(c, "postId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	post, err := h.postService.GetEditablePost(c.Request.Context(), principal(c), postID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	input := h.bindPost(c, post)
	if input == nil {
		return
	}

	if _, err := h.postService.EditPost(c.Request.Context(), principal(c), postID, input); err != nil {
		if errs, ok := formErrors(err); ok {
			h.renderForm(c, http.StatusUnprocessableEntity, post, input.Content, errs)
			return
		}
		_ = c.Error(err)
		return
	}

	setFlash(c, "Your post has been updated.")
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, err := idParam(c, "postId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	deleted, err := h.postService.DeletePost(c.Request.Context(), principal(c), postID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if deleted {
		setFlash(c, "Your post has been deleted.")
	} else {
		log.Printf("[PostHandler] Ignored delete of post %d by non-owner %d", postID, principal(c))
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PostHandler) ToggleLike(c *gin.Context) {
	postID, err := idParam(c, "postId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if _, err := h.postService.ToggleLike(c.Request.Context(), principal(c), postID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PostHandler) ToggleSave(c *gin.Context) {
	postID, err := idParam(c, "postId")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if _, err := h.postService.ToggleSave(c.Request.Context(), principal(c), postID); err != nil {
		_ = c.Error(err)
		return
	}
	redirectBack(c, "/")
}

func (h *PostHandler) SavedPosts(c *gin.Context) {
	viewer := principal(c)
	posts, err := h.postService.SavedPosts(c.Request.Context(), viewer)
	if err != nil {
		_ = c.Error(err)
		return
	}
	render(c, http.StatusOK, "saved.html", gin.H{
		"Title": "Saved posts",
		"Posts": postCards(posts, viewer),
	})
}
