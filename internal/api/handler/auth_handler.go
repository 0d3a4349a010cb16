package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/carmarket/internal/service"
	"github.com/d60-Lab/carmarket/pkg/response"
)

type signupRequest struct {
	FullName    string `json:"fullName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// Signup 注册
// @Summary 用户注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body signupRequest true "注册信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id, err := h.auth.Signup(c.Request.Context(), service.SignupInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"userId": id})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 登录，成功后同时下发会话 Cookie 与令牌。
// @Summary 用户登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, 7*24*3600, "/", "", false, true)
	response.Success(c, gin.H{"sessionToken": token, "user": user})
}

// Logout 登出
// @Summary 退出登录
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	token := sessionToken(c)
	if token != "" {
		h.auth.Logout(c.Request.Context(), token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	response.Success(c, nil)
}

// GetSession 查询当前会话
// @Summary 当前会话信息
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/session [get]
func (h *Handler) GetSession(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "not logged in")
		return
	}
	response.Success(c, session)
}
