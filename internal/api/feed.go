package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/snapfeed/backend/internal/middleware"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/types"
)

// FeedHandler serves the home feed and the comment box under each post.
type FeedHandler struct {
	postService    service.IPostService
	commentService service.ICommentService
}

func NewFeedHandler(postService service.IPostService, commentService service.ICommentService) *FeedHandler {
	return &FeedHandler{
		postService:    postService,
		commentService: commentService,
	}
}

func (h *FeedHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := router.Group("", middleware.RequireAuth())
	authed.GET("/", h.Feed)
	authed.POST("/", h.AddComment)
}

func (h *FeedHandler) renderFeed(c *gin.Context, status int, filter string, commentErrors map[uint]string) {
	viewer := principal(c)
	posts, err := h.postService.Feed(c.Request.Context(), viewer, filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	cards := postCards(posts, viewer)
	for i := range cards {
		cards[i].CommentError = commentErrors[cards[i].ID]
	}

	render(c, status, "feed.html", gin.H{
		"Title":  "Feed",
		"Filter": filter,
		"Posts":  cards,
	})
}

func (h *FeedHandler) Feed(c *gin.Context) {
	var q types.FeedQuery
	_ = c.ShouldBindQuery(&q)
	h.renderFeed(c, http.StatusOK, q.Filter, nil)
}

func (h *FeedHandler) AddComment(c *gin.Context) {
	var form types.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		errs, _ := formErrors(err)
		if form.PostID == 0 {
			_ = c.Error(service.ErrNotFound)
			return
		}
		h.renderFeed(c, http.StatusUnprocessableEntity, "", map[uint]string{form.PostID: errs["text"]})
		return
	}

	_, err := h.commentService.AddComment(c.Request.Context(), principal(c), form.PostID, form.Text)
	if err != nil {
		if errs, ok := formErrors(err); ok {
			h.renderFeed(c, http.StatusUnprocessableEntity, "", map[uint]string{form.PostID: errs["text"]})
			return
		}
		_ = c.Error(err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}
