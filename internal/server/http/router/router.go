package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/returnearn/internal/domain/model"
	"github.com/polkiloo/returnearn/internal/metrics"
	"github.com/polkiloo/returnearn/internal/server/http/dto"
	"github.com/polkiloo/returnearn/internal/server/http/handlers"
	"github.com/polkiloo/returnearn/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.PortalFacade, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.Metrics(m))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	authHandler := handlers.NewAuthHandler(facade)
	returnHandler := handlers.NewReturnHandler(facade)
	adminHandler := handlers.NewAdminHandler(facade)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok"})
	})
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	api := engine.Group("/api")
	api.GET("/leaderboard", returnHandler.Leaderboard)

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	userAuth := user.Group("")
	userAuth.Use(middleware.AuthRequired(facade, model.RoleUser))
	userAuth.POST("/logout", authHandler.Logout)
	userAuth.POST("/returns", returnHandler.Submit)
	userAuth.GET("/returns", returnHandler.List)
	userAuth.GET("/profile", returnHandler.Profile)

	admin := api.Group("/admin")
	admin.POST("/login", adminHandler.Login)

	adminAuth := admin.Group("")
	adminAuth.Use(middleware.AuthRequired(facade, model.RoleAdmin))
	adminAuth.POST("/logout", authHandler.Logout)
	adminAuth.GET("/returns", adminHandler.Returns)
	adminAuth.GET("/returns/summary", adminHandler.Summary)
	adminAuth.GET("/returns/export", adminHandler.Export)
	adminAuth.GET("/policy", adminHandler.Policy)
	adminAuth.PUT("/policy", adminHandler.UpdatePolicy)
	adminAuth.POST("/admins", adminHandler.CreateAdmin)

	return engine
}
