package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/urbandrives/storefront/internal/application"
	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/middleware"
	"github.com/urbandrives/storefront/internal/platform/response"
)

// VehicleHandler handles HTTP requests for the vehicle catalog.
type VehicleHandler struct {
	service *application.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(service *application.VehicleService) *VehicleHandler {
	return &VehicleHandler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *VehicleHandler) RegisterRoutes(r *gin.RouterGroup) {
	cars := r.Group("/api/cars")
	cars.Use(middleware.RequireSession())
	{
		cars.GET("", middleware.RequireRole(session.RoleAdmin), h.ListAll)
		cars.GET("/available", h.ListAvailable)
		cars.GET("/available/dates", h.ListAvailable)
		cars.GET("/:id", h.GetVehicle)
		cars.GET("/:id/quote", h.Quote)
	}

	admin := r.Group("/api/admin/cars")
	admin.Use(middleware.RequireSession(), middleware.RequireRole(session.RoleAdmin))
	{
		admin.PUT("/:id/status", h.UpdateStatus)
	}
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetVehicle handles GET /api/cars/:id.
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	id, ok := parseID(c, "Car", "/cars")
	if !ok {
		return
	}
	result, err := h.service.GetVehicle(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListAvailable handles GET /api/cars/available and /api/cars/available/dates.
func (h *VehicleHandler) ListAvailable(c *gin.Context) {
	result, err := h.service.ListAvailable(c.Request.Context(), c.Query("location"), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, result, len(result))
}

// ListAll handles GET /api/cars (admin).
func (h *VehicleHandler) ListAll(c *gin.Context) {
	result, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, result, len(result))
}

// Quote handles GET /api/cars/:id/quote.
func (h *VehicleHandler) Quote(c *gin.Context) {
	id, ok := parseID(c, "Car", "/cars")
	if !ok {
		return
	}
	result, err := h.service.Quote(c.Request.Context(), id, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateStatus handles PUT /api/admin/cars/:id/status.
func (h *VehicleHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "Car", "/admin/cars")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
