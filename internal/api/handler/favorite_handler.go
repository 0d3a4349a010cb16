package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/carmarket/internal/service"
	"github.com/d60-Lab/carmarket/pkg/response"
)

type favoriteRequest struct {
	CarID string `json:"carId" binding:"required"`
}

// AddFavorite 收藏车源（重复收藏为无操作）
// @Summary 加入收藏
// @Tags 收藏
// @Accept json
// @Produce json
// @Param request body favoriteRequest true "车源"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/favorites [post]
func (h *Handler) AddFavorite(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "you must be logged in to add to favorites")
		return
	}
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	added, err := h.favorites.Add(c.Request.Context(), session.UserID, req.CarID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "car ad not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"added": added})
}

// RemoveFavorite 取消收藏
// @Summary 取消收藏
// @Tags 收藏
// @Param carId path string true "车源ID"
// @Produce json
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/favorites/{carId} [delete]
func (h *Handler) RemoveFavorite(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "you must be logged in to remove from favorites")
		return
	}
	if err := h.favorites.Remove(c.Request.Context(), session.UserID, c.Param("carId")); err != nil {
		if errors.Is(err, service.ErrNotFavorite) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// CheckFavorite 是否已收藏
// @Summary 收藏状态
// @Tags 收藏
// @Param carId path string true "车源ID"
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/favorites/{carId} [get]
func (h *Handler) CheckFavorite(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Success(c, gin.H{"isFavorite": false})
		return
	}
	isFav, err := h.favorites.IsFavorite(c.Request.Context(), session.UserID, c.Param("carId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"isFavorite": isFav})
}

// ListFavorites 我的收藏
// @Summary 我的收藏列表
// @Tags 收藏
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/favorites [get]
func (h *Handler) ListFavorites(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "not logged in")
		return
	}
	cars, err := h.favorites.ListByUser(c.Request.Context(), session.UserID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": cars})
}
