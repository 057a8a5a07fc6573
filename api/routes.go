package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/middleware"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/ratelimit"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/storage"
)

type RouterConfig struct {
	MaxRequestsPerMinute float64
	MaxUploadBytes       int64
	AllowedHosts         []string
	// FunctionLimiter guards the notification and sheet functions.
	FunctionLimiter *ratelimit.Limiter
	// FilesDir is served under /files when documents are stored locally.
	FilesDir string
}

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(h *Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS())
	router.MaxMultipartMemory = 8 << 20 // 8 MiB, larger parts spill to disk

	if cfg.MaxRequestsPerMinute > 0 {
		router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMinute))
	}

	router.GET("/health", h.HealthCheck)

	site := router.Group("/api")
	site.POST("/inquiries", h.SubmitInquiry)
	uploads := site.Group("")
	if cfg.MaxUploadBytes > 0 {
		uploads.Use(middleware.MaxBodySize(cfg.MaxUploadBytes))
	}
	uploads.POST("/course-applications", h.SubmitCourseApplication)
	uploads.POST("/uploads", h.UploadDocument)

	functions := router.Group("/functions")
	if cfg.FunctionLimiter != nil {
		functions.Use(middleware.FixedWindow(cfg.FunctionLimiter))
	}
	functions.POST("/send-notification-email", h.SendNotificationEmail)
	functions.POST("/sync-google-sheets", h.SyncGoogleSheets)

	admin := router.Group("/admin", middleware.DomainWhitelistMiddleware(cfg.AllowedHosts))
	admin.POST("/resync/:table/:id", h.Resync)

	if cfg.FilesDir != "" {
		router.Static(storage.FilesRoute, cfg.FilesDir)
	}

	return router
}
