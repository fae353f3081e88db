package server

import (
	"time"

	httpHandler "yt-channel-report/interfaces/http"
	"yt-channel-report/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{"http://localhost:4200", "http://localhost:3000"}

func InitiateRouter(
	reportHandler httpHandler.IReportHandler,
	healthHandler httpHandler.IHealthHandler,
	youtubeAuthHandler httpHandler.IYouTubeAuthHandler,
	secretKey string,
	allowOrigins []string,
) *gin.Engine {
	if len(allowOrigins) == 0 {
		allowOrigins = defaultOrigins
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler.Healthz)

	// YouTube OAuth consent flow
	if youtubeAuthHandler != nil {
		auth := router.Group("/auth/youtube")
		{
			auth.GET("", youtubeAuthHandler.GetAuthURL)
			auth.GET("/callback", youtubeAuthHandler.HandleCallback)
		}
	}

	// Report routes need YouTube credentials
	if reportHandler != nil {
		api := router.Group("api")
		api.Use(middleware.Auth(secretKey))

		reports := api.Group("/reports")
		{
			reports.POST("", reportHandler.Generate)
			reports.GET("", reportHandler.ListReports)
			reports.GET("/:id", reportHandler.GetReport)
			reports.GET("/:id/download", reportHandler.Download)
		}
	}

	return router
}
