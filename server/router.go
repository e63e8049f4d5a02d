package server

import (
	"time"

	"clipcast/infrastructure/metrics"
	httpHandler "clipcast/interfaces/http"
	"clipcast/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the route table needs. A nil Stream disables the SSE route.
type Handlers struct {
	Campaign httpHandler.ICampaignHandler
	Catalog  httpHandler.ICatalogHandler
	Dispatch httpHandler.IDispatchHandler
	Health   httpHandler.IHealthHandler
	Stream   gin.HandlerFunc
}

func InitiateRouter(allowOrigins []string, anonymousUserID string, collector *metrics.Collector, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-User-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if collector != nil {
		router.Use(collector.Middleware())
		router.GET("/metrics", collector.Handler())
	}

	router.GET("/healthz", h.Health.Healthz)

	api := router.Group("api")
	api.Use(middleware.Identity(anonymousUserID))

	api.GET("/platforms", h.Catalog.GetPlatforms)

	content := api.Group("/content")
	{
		content.GET("", h.Catalog.ListContent)
		content.POST("", h.Catalog.RegisterContent)
		content.POST("/:contentId/clips", h.Catalog.GenerateClips)
	}

	accounts := api.Group("/accounts")
	{
		accounts.GET("", h.Catalog.ListAccounts)
		accounts.POST("", h.Catalog.ConnectAccount)
		accounts.PATCH("/:accountId", h.Catalog.UpdateAccount)
	}

	campaigns := api.Group("/campaigns")
	{
		campaigns.GET("", h.Campaign.ListCampaigns)
		campaigns.POST("", h.Campaign.CreateCampaign)
		campaigns.GET("/:campaignId", h.Campaign.GetCampaign)
		campaigns.GET("/:campaignId/posts", h.Campaign.ListPosts)
		campaigns.GET("/:campaignId/audit", h.Campaign.ListAudit)
	}

	api.POST("/posts/dispatch", h.Dispatch.ProcessDuePosts)
	if h.Stream != nil {
		api.GET("/posts/stream", h.Stream)
	}

	return router
}
