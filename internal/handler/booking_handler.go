package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/urbandrives/storefront/internal/application"
	"github.com/urbandrives/storefront/internal/platform/middleware"
	"github.com/urbandrives/storefront/internal/platform/response"
)

// BookingHandler handles HTTP requests for customer bookings.
type BookingHandler struct {
	service     *application.BookingService
	idempotency gin.HandlerFunc
}

// NewBookingHandler creates a new BookingHandler. idempotency guards booking
// submission against double posts.
func NewBookingHandler(service *application.BookingService, idempotency gin.HandlerFunc) *BookingHandler {
	return &BookingHandler{service: service, idempotency: idempotency}
}

// RegisterRoutes registers the booking routes.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/api/bookings")
	bookings.Use(middleware.RequireSession())
	{
		if h.idempotency != nil {
			bookings.POST("", h.idempotency, h.CreateBooking)
		} else {
			bookings.POST("", h.CreateBooking)
		}
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.DELETE("/:id", h.CancelBooking)
	}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	cur, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "Booking", "/booking")
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), cur, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBookings handles GET /api/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	cur, ok := currentSession(c)
	if !ok {
		return
	}

	result, err := h.service.ListBookings(c.Request.Context(), cur)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, result, len(result))
}

// CancelBooking handles DELETE /api/bookings/:id.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	cur, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "Booking", "/booking")
	if !ok {
		return
	}

	result, err := h.service.CancelOwnBooking(c.Request.Context(), cur, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
