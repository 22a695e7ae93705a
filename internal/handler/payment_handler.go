package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/application"
	"github.com/urbandrives/storefront/internal/checkout"
	"github.com/urbandrives/storefront/internal/platform/apperror"
	"github.com/urbandrives/storefront/internal/platform/middleware"
	"github.com/urbandrives/storefront/internal/platform/response"
)

const maxWebhookBody = 64 << 10

// PaymentHandler handles checkout, the provider webhook and payment history.
type PaymentHandler struct {
	service       *application.PaymentService
	webhookSecret string
	logger        *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService, webhookSecret string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{service: service, webhookSecret: webhookSecret, logger: logger}
}

// RegisterRoutes registers the payment routes. The webhook is authenticated by
// its signature, not by a session.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/api/payments")
	{
		payments.POST("/webhook", h.Webhook)
		payments.POST("/checkout/:bookingId", middleware.RequireSession(), h.StartCheckout)
		payments.GET("", middleware.RequireSession(), h.ListMyPayments)
	}
}

// StartCheckout handles POST /api/payments/checkout/:bookingId.
func (h *PaymentHandler) StartCheckout(c *gin.Context) {
	cur, ok := currentSession(c)
	if !ok {
		return
	}
	raw := c.Param("bookingId")
	bookingID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || bookingID <= 0 {
		response.Error(c, apperror.NewNotFoundError("Booking", raw).WithRedirect("/booking"))
		return
	}

	result, err := h.service.StartCheckout(c.Request.Context(), cur, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListMyPayments handles GET /api/payments.
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	cur, ok := currentSession(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, total, err := h.service.ListMyPayments(c.Request.Context(), cur, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, result, int(total))
}

// Webhook handles POST /api/payments/webhook.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, "unreadable body")
		return
	}

	evt, err := checkout.ParseWebhook(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if errors.Is(err, checkout.ErrIgnoredEvent) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		h.logger.Warn("rejected checkout webhook", zap.Error(err))
		response.BadRequest(c, "invalid webhook")
		return
	}

	if err := h.service.PublishSucceeded(c.Request.Context(), *evt); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
