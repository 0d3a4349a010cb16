package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/carmarket/internal/service"
	"github.com/d60-Lab/carmarket/pkg/response"
)

// GetProfile 当前用户资料
// @Summary 我的资料
// @Tags 用户
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/user/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "not logged in")
		return
	}
	user, err := h.auth.Profile(c.Request.Context(), session.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}

type updateProfileRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// UpdateProfile 更新当前用户资料（仅姓名和电话）
// @Summary 更新我的资料
// @Tags 用户
// @Accept json
// @Produce json
// @Param request body updateProfileRequest true "资料字段"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/user/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "not logged in")
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.auth.UpdateProfile(c.Request.Context(), session.UserID, req.FullName, req.PhoneNumber)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
