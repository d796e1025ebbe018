package controller

import (
	"errors"
	"faang_prep_backend/internal/service"
	"faang_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	Gamification *service.GamificationService
}

func NewProgressController(gamification *service.GamificationService) *ProgressController {
	return &ProgressController{Gamification: gamification}
}

// ToggleRequest completed 必填，缺省不视为 false
type ToggleRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// Toggle godoc
// @Summary 标记题目完成状态
// @Description 标记完成时发放经验、更新连续打卡并结算徽章
// @Tags 进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param problemId path string true "题目ID"
// @Param body body ToggleRequest true "完成状态"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /progress/{problemId} [post]
func (c *ProgressController) Toggle(ctx *gin.Context) {
	var req ToggleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	err := c.Gamification.ToggleProblemCompletion(ctx.Request.Context(), claims.UserID, ctx.Param("problemId"), *req.Completed)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrProblemNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrUserNotFound):
			util.Unauthorized(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"success": true})
}
