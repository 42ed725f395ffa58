package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/snapfeed/backend/internal/middleware"
	"github.com/pageza/snapfeed/backend/internal/service"
	"github.com/pageza/snapfeed/backend/internal/types"
)

type SearchHandler struct {
	searchService service.ISearchService
}

func NewSearchHandler(searchService service.ISearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

func (h *SearchHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/search", middleware.RequireAuth(), h.Search)
}

func (h *SearchHandler) Search(c *gin.Context) {
	var q types.SearchQuery
	_ = c.ShouldBindQuery(&q)

	results, err := h.searchService.Search(c.Request.Context(), q.Q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	render(c, http.StatusOK, "search.html", gin.H{
		"Title":   "Search",
		"Results": results,
		"Posts":   postCards(results.Posts, principal(c)),
	})
}
