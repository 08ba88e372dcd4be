package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/fileupload/config"
	"github.com/cppla/fileupload/controllers"
	"github.com/cppla/fileupload/middleware"
	"github.com/cppla/fileupload/static"
	"github.com/cppla/fileupload/storage"
	"github.com/cppla/fileupload/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, store storage.Store, journal storage.Journal) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID())

	// Access log goes to its own rolling file; without one it shares the app logger
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		if gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg); err == nil {
			accessLog = gl
		} else {
			utils.Sugar.Warnf("gin log %s unavailable, using app logger: %v", cfg.GinPath, err)
		}
	}
	r.Use(utils.Ginzap(accessLog, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(accessLog, true))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	var maxUpload int64
	if cfg.MaxUploadSizeMB > 0 {
		maxUpload = int64(cfg.MaxUploadSizeMB) << 20
	}
	fileController := controllers.NewFileController(store, journal, maxUpload)
	healthController := controllers.NewHealthController(store)

	// Mutating routes share one limiter
	limit := middleware.RateLimit(cfg.RateLimitPerMinute)
	safeName := middleware.SafeFilename("filename")

	r.GET("/", fileController.Banner)
	r.GET("/health", healthController.GetHealth)

	r.POST("/upload", limit, fileController.Upload)
	r.GET("/files", fileController.List)
	r.GET("/download/:filename", safeName, fileController.Download)
	r.DELETE("/delete/:filename", limit, safeName, fileController.Delete)
	r.GET("/uploads/:filename", safeName, fileController.Serve)

	r.StaticFS("/ui", http.FS(static.FS))

	r.NoRoute(func(ctx *gin.Context) {
		utils.Fail(ctx, http.StatusNotFound, "route not found", nil)
	})

	return r
}
