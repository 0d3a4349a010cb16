package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/carmarket/internal/service"
	"github.com/d60-Lab/carmarket/pkg/response"
)

// GetCar 车源详情（读穿缓存）
// @Summary 车源详情
// @Tags 车源
// @Param id path string true "车源ID"
// @Produce json
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/cars/{id} [get]
func (h *Handler) GetCar(c *gin.Context) {
	meta := service.ViewMeta{
		SessionID:  sessionToken(c),
		DeviceType: deviceType(c),
		Referrer:   c.GetHeader("Referer"),
	}
	if session := h.currentSession(c); session != nil {
		meta.UserID = session.UserID
	}
	details, fromCache, err := h.listings.Get(c.Request.Context(), c.Param("id"), meta)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "car ad not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"listing": details, "fromCache": fromCache})
}

type createCarRequest struct {
	Title         string   `json:"title" binding:"required"`
	Make          string   `json:"make" binding:"required"`
	Model         string   `json:"model" binding:"required"`
	Year          int      `json:"year" binding:"required,gte=1900,lte=2100"`
	Price         int      `json:"price" binding:"required,gt=0"`
	Mileage       int      `json:"mileage" binding:"gte=0"`
	Description   string   `json:"description" binding:"required"`
	BodyType      string   `json:"bodyType" binding:"required,bodytype"`
	FuelType      string   `json:"fuelType" binding:"required,fueltype"`
	Transmission  string   `json:"transmission" binding:"required,transmission"`
	Features      []string `json:"features"`
	Location      string   `json:"location" binding:"required"`
	Images        []string `json:"images"`
	ExteriorColor string   `json:"exteriorColor"`
	InteriorColor string   `json:"interiorColor"`
	VIN           string   `json:"vin"`
	Doors         string   `json:"doors"`
	Condition     string   `json:"condition"`
}

// CreateCar 发布车源
// @Summary 发布车源
// @Tags 车源
// @Accept json
// @Produce json
// @Param request body createCarRequest true "车源信息"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/cars [post]
func (h *Handler) CreateCar(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "you must be logged in to post an ad")
		return
	}
	var req createCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	id, err := h.listings.Create(c.Request.Context(), session.UserID, service.CreateListingInput{
		Title:         req.Title,
		Make:          req.Make,
		Model:         req.Model,
		Year:          req.Year,
		Price:         req.Price,
		Mileage:       req.Mileage,
		Description:   req.Description,
		BodyType:      req.BodyType,
		FuelType:      req.FuelType,
		Transmission:  req.Transmission,
		Features:      req.Features,
		Location:      req.Location,
		Images:        req.Images,
		ExteriorColor: req.ExteriorColor,
		InteriorColor: req.InteriorColor,
		VIN:           req.VIN,
		Doors:         req.Doors,
		Condition:     req.Condition,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.BadRequest(c, "user not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

type updateCarRequest struct {
	Title         *string   `json:"title"`
	Make          *string   `json:"make"`
	Model         *string   `json:"model"`
	Year          *int      `json:"year" binding:"omitempty,gte=1900,lte=2100"`
	Price         *int      `json:"price" binding:"omitempty,gt=0"`
	Mileage       *int      `json:"mileage" binding:"omitempty,gte=0"`
	Description   *string   `json:"description"`
	BodyType      *string   `json:"bodyType" binding:"omitempty,bodytype"`
	FuelType      *string   `json:"fuelType" binding:"omitempty,fueltype"`
	Transmission  *string   `json:"transmission" binding:"omitempty,transmission"`
	Features      *[]string `json:"features"`
	Location      *string   `json:"location"`
	ExteriorColor *string   `json:"exteriorColor"`
	InteriorColor *string   `json:"interiorColor"`
	VIN           *string   `json:"vin"`
	Doors         *string   `json:"doors"`
	Condition     *string   `json:"condition"`
}

// UpdateCar 编辑车源（仅属主；只更新提交字段）
// @Summary 编辑车源
// @Tags 车源
// @Accept json
// @Produce json
// @Param id path string true "车源ID"
// @Param request body updateCarRequest true "变更字段"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/cars/{id} [put]
func (h *Handler) UpdateCar(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "you must be logged in to update an ad")
		return
	}
	var req updateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.listings.Update(c.Request.Context(), c.Param("id"), session.UserID, service.UpdateListingInput{
		Title:         req.Title,
		Make:          req.Make,
		Model:         req.Model,
		Year:          req.Year,
		Price:         req.Price,
		Mileage:       req.Mileage,
		Description:   req.Description,
		BodyType:      req.BodyType,
		FuelType:      req.FuelType,
		Transmission:  req.Transmission,
		Features:      req.Features,
		Location:      req.Location,
		ExteriorColor: req.ExteriorColor,
		InteriorColor: req.InteriorColor,
		VIN:           req.VIN,
		Doors:         req.Doors,
		Condition:     req.Condition,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "car ad not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "you do not have permission to update this ad")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, nil)
}

// DeleteCar 删除车源（仅属主；级联清收藏）
// @Summary 删除车源
// @Tags 车源
// @Param id path string true "车源ID"
// @Produce json
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/cars/{id} [delete]
func (h *Handler) DeleteCar(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "you must be logged in to delete an ad")
		return
	}
	err := h.listings.Delete(c.Request.Context(), c.Param("id"), session.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.NotFound(c, "car ad not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "you do not have permission to delete this ad")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, nil)
}

// PopularCars 最多浏览排行（Redis 热度榜）
// @Summary 热门车源ID列表
// @Tags 车源
// @Param limit query int false "数量" default(10)
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/cars/popular [get]
func (h *Handler) PopularCars(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	ids := h.listings.MostViewed(c.Request.Context(), limit)
	response.Success(c, gin.H{"ids": ids})
}

// MyCars 我的发布
// @Summary 我发布的车源
// @Tags 车源
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/cars/mine [get]
func (h *Handler) MyCars(c *gin.Context) {
	session := h.currentSession(c)
	if session == nil {
		response.Unauthorized(c, "not logged in")
		return
	}
	cars, err := h.listings.ByOwner(c.Request.Context(), session.UserID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"list": cars})
}

// deviceType 粗粒度设备分类，进浏览日志。
func deviceType(c *gin.Context) string {
	ua := c.GetHeader("User-Agent")
	switch {
	case ua == "":
		return ""
	case containsAny(ua, "Mobile", "Android", "iPhone"):
		return "mobile"
	case containsAny(ua, "iPad", "Tablet"):
		return "tablet"
	default:
		return "desktop"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
