package controller

import (
	"faang_prep_backend/internal/service"
	"faang_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	Stats *service.StatsService
}

func NewStatsController(stats *service.StatsService) *StatsController {
	return &StatsController{Stats: stats}
}

// UserStats godoc
// @Summary 用户统计
// @Description 已解题数、连续打卡、经验等级、分类与套路进度、近期活动及徽章
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.UserStats}
// @Router /user/stats [get]
func (c *StatsController) UserStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	stats, err := c.Stats.UserStats(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// Badges godoc
// @Summary 徽章列表
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.BadgeWithStatus}
// @Router /badges [get]
func (c *StatsController) Badges(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	badges, err := c.Stats.BadgesWithStatus(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}

// Activity godoc
// @Summary 每日活动
// @Tags 统计
// @Produce json
// @Security ApiKeyAuth
// @Param days query int false "天数，默认 91"
// @Success 200 {object} util.Response{data=[]model.DailyActivity}
// @Router /activity [get]
func (c *StatsController) Activity(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	days := util.QueryPositiveInt(ctx, "days", c.Stats.Rules.ActivityDays)

	activity, err := c.Stats.DailyActivity(ctx.Request.Context(), claims.UserID, days)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, activity)
}
