package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vietvisa/internal/service"
)

type PaymentHandler struct {
	payments *service.PaymentService
	log      *zap.Logger
}

func NewPaymentHandler(payments *service.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, log: log}
}

// CreateIntent returns a provider client secret for the application's stored
// amount.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var in service.CreateIntentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	result, err := h.payments.CreateIntent(c.Request.Context(), in)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, result)
}

// Webhook receives provider events. The raw body is read before any binding
// because signature verification runs over the exact bytes sent.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		fail(c, http.StatusBadRequest, "failed to read request body")
		return
	}
	sig := c.GetHeader("Stripe-Signature")
	if err := h.payments.HandleEvent(payload, sig); err != nil {
		h.log.Warn("webhook rejected", zap.Error(err))
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"received": true})
}
