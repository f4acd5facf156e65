package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/api/handlers"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/api/middleware"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/config"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/functions"
	"github.com/muthumaran333/AI-Powered-Mail-Dashboard/internal/services"
	"gorm.io/gorm"
)

// Deps carries the shared components the router wires into handlers
type Deps struct {
	DB         *gorm.DB
	Config     *config.Config
	Sync       *services.SyncService
	Scheduler  *services.SyncScheduler
	Analyzer   *functions.Analyzer
	Summarizer *functions.Summarizer
	Replier    *functions.Replier
}

// SetupRouter initializes the Gin router with all routes configured
func SetupRouter(deps Deps) *gin.Engine {
	router := gin.Default()

	origins := strings.Split(deps.Config.CORSOrigins, ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	logService := services.NewLogServiceWithLevel(deps.DB, deps.Config.LogLevel)
	emailService := services.NewEmailService(deps.DB)

	emailHandler := handlers.NewEmailHandler(emailService)
	syncHandler := handlers.NewSyncHandler(deps.Sync, deps.Scheduler)
	enrichHandler := handlers.NewEnrichHandler(deps.Analyzer, deps.Summarizer, deps.Replier)
	logHandler := handlers.NewLogHandler(logService)

	// Health check endpoint (no auth required)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.Use(middleware.APIKeyMiddleware(deps.Config.APIKey))
		api.Use(middleware.RequestLogger(logService))

		emails := api.Group("/emails")
		{
			emails.GET("", emailHandler.ListEmails)
			emails.GET("/stats", emailHandler.GetStats)
			emails.GET("/senders", emailHandler.GetSenders)
			emails.GET("/:id", emailHandler.GetEmail)
			emails.PUT("/:id/read", emailHandler.MarkAsRead)
			emails.DELETE("/:id", emailHandler.DeleteEmail)

			emails.POST("/:id/analyze", enrichHandler.AnalyzeEmail)
			emails.POST("/:id/summarize", enrichHandler.SummarizeEmail)
			emails.GET("/:id/summaries", enrichHandler.GetSummaries)
			emails.POST("/:id/reply", enrichHandler.ReplyToEmail)
			emails.GET("/:id/replies", enrichHandler.GetReplies)
		}

		api.POST("/analyze/batch", enrichHandler.BatchAnalyze)
		api.POST("/summarize/batch", enrichHandler.BatchSummarize)

		sync := api.Group("/sync")
		{
			sync.POST("", syncHandler.TriggerSync)
			sync.GET("/status", syncHandler.GetStatus)
		}

		api.GET("/logs", logHandler.QueryLogs)
	}

	return router
}
