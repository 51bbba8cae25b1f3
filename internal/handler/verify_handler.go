package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vietvisa/pkg/messaging"
)

type VerifyHandler struct {
	verifier messaging.Verifier
	log      *zap.Logger
}

func NewVerifyHandler(verifier messaging.Verifier, log *zap.Logger) *VerifyHandler {
	return &VerifyHandler{verifier: verifier, log: log}
}

type sendCodeRequest struct {
	Phone   string `json:"phone" binding:"required"`
	Channel string `json:"channel"` // sms (default) or whatsapp
}

func (h *VerifyHandler) SendCode(c *gin.Context) {
	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "phone is required")
		return
	}
	phone := strings.TrimSpace(req.Phone)
	if !strings.HasPrefix(phone, "+") {
		fail(c, http.StatusBadRequest, "Invalid phone number format. Please use international format (e.g. +1234567890).")
		return
	}
	channel := req.Channel
	if channel == "" {
		channel = "sms"
	}
	if channel != "sms" && channel != "whatsapp" {
		fail(c, http.StatusBadRequest, "channel must be sms or whatsapp")
		return
	}
	status, err := h.verifier.SendCode(c.Request.Context(), phone, channel)
	if err != nil {
		code, msg := messaging.MapVerifyError(err)
		if code == http.StatusInternalServerError {
			h.log.Error("verification send failed", zap.Error(err))
		}
		fail(c, code, msg)
		return
	}
	ok(c, http.StatusOK, gin.H{"status": status})
}

type checkCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

func (h *VerifyHandler) CheckCode(c *gin.Context) {
	var req checkCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "phone and code are required")
		return
	}
	status, err := h.verifier.CheckCode(c.Request.Context(), strings.TrimSpace(req.Phone), strings.TrimSpace(req.Code))
	if err != nil {
		code, msg := messaging.MapVerifyError(err)
		if code == http.StatusInternalServerError {
			h.log.Error("verification check failed", zap.Error(err))
		}
		fail(c, code, msg)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"status":   status,
		"verified": status == "approved",
	})
}
