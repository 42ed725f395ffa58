package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/snapfeed/backend/config"
	"github.com/pageza/snapfeed/backend/internal/api"
	"github.com/pageza/snapfeed/backend/internal/middleware"
	"github.com/pageza/snapfeed/backend/internal/service"
)

// Services bundles what the handlers depend on. Redis may be nil.
type Services struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Auth     service.IAuthService
	Profiles service.IProfileService
	Posts    service.IPostService
	Comments service.ICommentService
	Search   service.ISearchService
	Images   service.IImageService
}

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, svc *Services) *gin.Engine {
	api.RegisterValidators()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	router.SetHTMLTemplate(api.Templates())

	router.Use(middleware.ErrorHandler())
	router.Use(middleware.LoadPrincipal(svc.Auth))

	// Media and health may be fetched cross-origin
	public := router.Group("", middleware.CORS(cfg.CORSOrigins))
	api.NewHealthHandler(svc.DB, svc.Redis).RegisterRoutes(public)
	api.NewMediaHandler(svc.Images).RegisterRoutes(public)

	pages := &router.RouterGroup
	api.NewAuthHandler(svc.Auth, middleware.NewLoginRateLimiter(svc.Redis), cfg.CookieSecure).RegisterRoutes(pages)
	api.NewFeedHandler(svc.Posts, svc.Comments).RegisterRoutes(pages)
	api.NewPostHandler(svc.Posts, middleware.NewPostCreationRateLimiter(svc.Redis), cfg.MaxUploadBytes).RegisterRoutes(pages)
	api.NewProfileHandler(svc.Profiles, cfg.MaxUploadBytes).RegisterRoutes(pages)
	api.NewSearchHandler(svc.Search).RegisterRoutes(pages)

	return router
}
