package controller

import (
	"faang_prep_backend/internal/service"
	"faang_prep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogController 题库浏览，所有结果均附带当前用户的完成情况
type CatalogController struct {
	Progress *service.ProgressService
}

func NewCatalogController(progress *service.ProgressService) *CatalogController {
	return &CatalogController{Progress: progress}
}

// Topics godoc
// @Summary 分类列表及完成进度
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.TopicWithProgress}
// @Router /topics [get]
func (c *CatalogController) Topics(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	topics, err := c.Progress.TopicsWithProgress(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, topics)
}

// Subtopics godoc
// @Summary 分类下的子分类
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param topicId path string true "分类ID"
// @Success 200 {object} util.Response{data=[]model.Subtopic}
// @Router /topics/{topicId}/subtopics [get]
func (c *CatalogController) Subtopics(ctx *gin.Context) {
	subs, err := c.Progress.Subtopics(ctx.Request.Context(), ctx.Param("topicId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, subs)
}

// Problems godoc
// @Summary 全部题目及完成状态
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.ProblemWithDetails}
// @Router /problems [get]
func (c *CatalogController) Problems(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	problems, err := c.Progress.ProblemsWithDetails(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, problems)
}

// Recommended godoc
// @Summary 推荐题目
// @Description 未完成题目按难度从易到难排序
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "返回数量"
// @Success 200 {object} util.Response{data=[]model.ProblemWithDetails}
// @Router /problems/recommended [get]
func (c *CatalogController) Recommended(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	limit := util.QueryPositiveInt(ctx, "limit", c.Progress.Rules.RecommendLimit)

	problems, err := c.Progress.RecommendProblems(ctx.Request.Context(), claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, problems)
}

// Patterns godoc
// @Summary 解题套路及掌握度
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.PatternWithProgress}
// @Router /patterns [get]
func (c *CatalogController) Patterns(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	patterns, err := c.Progress.PatternsWithProgress(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, patterns)
}

// PatternProblems godoc
// @Summary 套路下的题目
// @Tags 题库
// @Produce json
// @Security ApiKeyAuth
// @Param patternId path string true "套路ID"
// @Success 200 {object} util.Response{data=[]model.ProblemWithDetails}
// @Router /patterns/{patternId}/problems [get]
func (c *CatalogController) PatternProblems(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	problems, err := c.Progress.ProblemsByPattern(ctx.Request.Context(), ctx.Param("patternId"), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, problems)
}
