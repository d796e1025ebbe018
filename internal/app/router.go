package app

import (
	"faang_prep_backend/docs"
	"faang_prep_backend/internal/config"
	"faang_prep_backend/internal/middleware"
	"faang_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c, cfg)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.RequireUser(repos.user))
	{
		a.registerUserRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		if cfg.Auth.DemoLogin {
			public.POST("/auth/demo", c.auth.DemoLogin)
		}
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/auth/user", c.auth.CurrentUser)
	rg.GET("/user/stats", c.stats.UserStats)

	// 题库
	rg.GET("/topics", c.catalog.Topics)
	rg.GET("/topics/:topicId/subtopics", c.catalog.Subtopics)
	rg.GET("/problems", c.catalog.Problems)
	rg.GET("/problems/recommended", c.catalog.Recommended)
	rg.GET("/patterns", c.catalog.Patterns)
	rg.GET("/patterns/:patternId/problems", c.catalog.PatternProblems)

	// 进度与徽章
	rg.POST("/progress/:problemId", c.progress.Toggle)
	rg.GET("/badges", c.stats.Badges)
	rg.GET("/activity", c.stats.Activity)
}
