package controller

import (
	"faang_prep_backend/internal/repository"
	"faang_prep_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Cache *repository.StatsCache
}

func NewHealthController(db *gorm.DB, cache *repository.StatsCache) *HealthController {
	return &HealthController{DB: db, Cache: cache}
}

// @Summary 健康检查
// @Description 检查数据库与缓存状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.PingContext(ctx.Request.Context()); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	cache := "disabled"
	if c.Cache != nil && c.Cache.Enabled() {
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			util.Error(ctx, http.StatusServiceUnavailable, "Cache unavailable")
			return
		}
		cache = "up"
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
			"cache":    cache,
		},
	})
}
