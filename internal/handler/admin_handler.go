package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vietvisa/internal/models"
	"vietvisa/internal/repository"
	"vietvisa/internal/service"
)

type AdminHandler struct {
	admin      *service.AdminService
	apps       *repository.ApplicationRepository
	applicants *repository.ApplicantRepository
	inquiries  *repository.InquiryRepository
}

func NewAdminHandler(admin *service.AdminService, apps *repository.ApplicationRepository, applicants *repository.ApplicantRepository, inquiries *repository.InquiryRepository) *AdminHandler {
	return &AdminHandler{admin: admin, apps: apps, applicants: applicants, inquiries: inquiries}
}

func (h *AdminHandler) ListApplications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	apps, total, err := h.apps.List(repository.ListFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		VisaSpeed:     c.Query("visa_speed"),
		Search:        c.Query("search"),
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"applications": apps,
		"total":        total,
		"page":         page,
		"limit":        limit,
	})
}

func (h *AdminHandler) GetApplication(c *gin.Context) {
	app, err := h.apps.GetDetail(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "application not found")
			return
		}
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, app)
}

func (h *AdminHandler) UpdateApplication(c *gin.Context) {
	var upd service.ApplicationUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	app, err := h.admin.UpdateApplication(c.Param("id"), upd)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, app)
}

// UpdateApplicant applies allow-listed field edits; unknown fields in the
// body are silently ignored by the typed binding.
func (h *AdminHandler) UpdateApplicant(c *gin.Context) {
	var upd models.ApplicantUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	applicant, err := h.applicants.Update(c.Param("id"), &upd)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "applicant not found")
			return
		}
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, applicant)
}

func (h *AdminHandler) ListInquiries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, total, err := h.inquiries.List(c.Query("status"), page, limit)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"inquiries": items,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

func (h *AdminHandler) UpdateInquiry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid inquiry id")
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	switch body.Status {
	case "new", "replied", "closed":
	default:
		fail(c, http.StatusBadRequest, "status must be one of new, replied, closed")
		return
	}
	if err := h.inquiries.SetStatus(uint(id), body.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "inquiry not found")
			return
		}
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id, "status": body.Status})
}
