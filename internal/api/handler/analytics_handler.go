package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/carmarket/pkg/response"
)

type compareRequest struct {
	CarIDs []string `json:"carIds" binding:"required,min=2,max=4"`
}

// CompareCars 车源对比：落对比日志并返回镜像表规格行。
// @Summary 车源对比
// @Tags 分析
// @Accept json
// @Produce json
// @Param request body compareRequest true "对比的车源ID"
// @Success 200 {object} response.Response
// @Router /api/v1/compare [post]
func (h *Handler) CompareCars(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	var userID string
	if session := h.currentSession(c); session != nil {
		userID = session.UserID
	}
	h.analytics.LogComparison(userID, req.CarIDs)
	specs, err := h.analytics.CompareSpecs(c.Request.Context(), req.CarIDs)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"specs": specs})
}

// PopularQueries 热门搜索词
// @Summary 热门搜索词
// @Tags 分析
// @Param limit query int false "数量" default(10)
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/analytics/popular-queries [get]
func (h *Handler) PopularQueries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.analytics.PopularQueries(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": rows})
}

// PopularFeatures 热门过滤条件
// @Summary 热门过滤条件
// @Tags 分析
// @Param limit query int false "数量" default(10)
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/analytics/popular-features [get]
func (h *Handler) PopularFeatures(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.analytics.PopularFeatures(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": rows})
}

// ViewTrends 按日浏览趋势
// @Summary 浏览趋势
// @Tags 分析
// @Param days query int false "天数" default(30)
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/analytics/view-trends [get]
func (h *Handler) ViewTrends(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	rows, err := h.analytics.ViewTrends(c.Request.Context(), days)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": rows})
}

// MostViewedFromLogs 浏览日志口径的热门车源（区别于 Redis 热度榜）
// @Summary 热门车源（日志口径）
// @Tags 分析
// @Param limit query int false "数量" default(10)
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/analytics/most-viewed [get]
func (h *Handler) MostViewedFromLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.analytics.MostViewedFromLogs(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": rows})
}

// PriceHistory 价格走势
// @Summary 价格走势
// @Tags 分析
// @Param make query string true "品牌"
// @Param model query string true "车型"
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/analytics/price-history [get]
func (h *Handler) PriceHistory(c *gin.Context) {
	carMake := c.Query("make")
	carModel := c.Query("model")
	if carMake == "" || carModel == "" {
		response.BadRequest(c, "make and model are required")
		return
	}
	series := h.analytics.PriceHistory(c.Request.Context(), carMake, carModel)
	response.Success(c, gin.H{"list": series})
}

// SyncAll 全量重镜像（运维接口，顺序执行不重试）
// @Summary 全量同步镜像
// @Tags 分析
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/analytics/sync [post]
func (h *Handler) SyncAll(c *gin.Context) {
	res, err := h.mirror.SyncAll(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, res)
}

// Health 健康检查 + 异步队列计数
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status": "ok",
		"async":  h.runner.Counters(),
		"queue":  h.runner.QueueLen(),
	})
}
