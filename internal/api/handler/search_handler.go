package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/carmarket/internal/repository"
	"github.com/d60-Lab/carmarket/internal/service"
	"github.com/d60-Lab/carmarket/pkg/response"
)

// SearchCars 搜索车源（仅 active 可见）
// @Summary 搜索车源
// @Tags 车源
// @Param query query string false "关键词"
// @Param make query string false "品牌"
// @Param category query string false "车身类型"
// @Param minPrice query int false "最低价"
// @Param maxPrice query int false "最高价"
// @Param minYear query int false "最早年份"
// @Param maxYear query int false "最晚年份"
// @Param makes query string false "品牌列表，逗号分隔"
// @Param bodyTypes query string false "车身类型列表，逗号分隔"
// @Param fuelTypes query string false "燃料类型列表，逗号分隔"
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/cars/search [get]
func (h *Handler) SearchCars(c *gin.Context) {
	q := repository.CarQuery{
		Query:    c.Query("query"),
		Make:     c.Query("make"),
		Category: c.Query("category"),
	}
	q.MinPrice, _ = strconv.Atoi(c.Query("minPrice"))
	q.MaxPrice, _ = strconv.Atoi(c.Query("maxPrice"))
	q.MinYear, _ = strconv.Atoi(c.Query("minYear"))
	q.MaxYear, _ = strconv.Atoi(c.Query("maxYear"))
	q.Makes = splitList(c.Query("makes"))
	q.BodyTypes = splitList(c.Query("bodyTypes"))
	q.FuelTypes = splitList(c.Query("fuelTypes"))

	var userID string
	if session := h.currentSession(c); session != nil {
		userID = session.UserID
	}
	cars, err := h.search.Search(c.Request.Context(), q, userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": cars, "count": len(cars)})
}

// SimilarCars 同类推荐
// @Summary 同类车源推荐
// @Tags 车源
// @Param id path string true "车源ID"
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/cars/{id}/similar [get]
func (h *Handler) SimilarCars(c *gin.Context) {
	cars, err := h.search.Similar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "car ad not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": cars})
}

// FeaturedCars 首页精选（active 按浏览量倒序）
// @Summary 精选车源
// @Tags 车源
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/cars/featured [get]
func (h *Handler) FeaturedCars(c *gin.Context) {
	cars, err := h.search.Featured(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": cars})
}

// RecentSearches 最近搜索
// @Summary 我的最近搜索
// @Tags 车源
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/cars/searches/recent [get]
func (h *Handler) RecentSearches(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "not logged in")
		return
	}
	response.Success(c, gin.H{"list": h.search.RecentSearches(c.Request.Context(), session.UserID)})
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
