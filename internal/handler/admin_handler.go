package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/urbandrives/storefront/internal/application"
	"github.com/urbandrives/storefront/internal/domain/session"
	"github.com/urbandrives/storefront/internal/platform/middleware"
	"github.com/urbandrives/storefront/internal/platform/response"
)

// AdminHandler handles back-office requests.
type AdminHandler struct {
	bookings *application.BookingService
	reports  *application.ReportService
	payments *application.PaymentService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	bookings *application.BookingService,
	reports *application.ReportService,
	payments *application.PaymentService,
) *AdminHandler {
	return &AdminHandler{bookings: bookings, reports: reports, payments: payments}
}

// RegisterRoutes registers the admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/api/admin")
	admin.Use(middleware.RequireSession(), middleware.RequireRole(session.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/stats", h.BookingStats)
		admin.GET("/bookings/:id/payments", h.BookingPayments)
		admin.DELETE("/bookings/:id", h.CancelBooking)
		admin.GET("/reports/sales/summary", h.SalesSummary)
	}
}

// ListBookings handles GET /api/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	cur, ok := currentSession(c)
	if !ok {
		return
	}
	result, err := h.bookings.ListBookings(c.Request.Context(), cur)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, result, len(result))
}

// BookingStats handles GET /api/admin/bookings/stats.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	result, err := h.reports.BookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// BookingPayments handles GET /api/admin/bookings/:id/payments.
func (h *AdminHandler) BookingPayments(c *gin.Context) {
	id, ok := parseID(c, "Booking", "/admin/bookings")
	if !ok {
		return
	}
	result, err := h.payments.ListBookingPayments(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, result, len(result))
}

// CancelBooking handles DELETE /api/admin/bookings/:id.
func (h *AdminHandler) CancelBooking(c *gin.Context) {
	cur, ok := currentSession(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "Booking", "/admin/bookings")
	if !ok {
		return
	}
	result, err := h.bookings.CancelOwnBooking(c.Request.Context(), cur, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// SalesSummary handles GET /api/admin/reports/sales/summary.
func (h *AdminHandler) SalesSummary(c *gin.Context) {
	result, err := h.reports.SalesSummary(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
