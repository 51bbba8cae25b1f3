package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vietvisa/internal/service"
)

type ContactHandler struct {
	inquiries *service.InquiryService
}

func NewContactHandler(inquiries *service.InquiryService) *ContactHandler {
	return &ContactHandler{inquiries: inquiries}
}

func (h *ContactHandler) SubmitInquiry(c *gin.Context) {
	var in service.InquiryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "email and message are required")
		return
	}
	inquiry, err := h.inquiries.Submit(c.Request.Context(), in)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"id": inquiry.ID, "status": inquiry.Status})
}
