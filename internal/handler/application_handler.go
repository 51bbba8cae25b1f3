package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"vietvisa/internal/repository"
	"vietvisa/internal/service"
)

type ApplicationHandler struct {
	intake *service.IntakeService
	apps   *repository.ApplicationRepository
}

func NewApplicationHandler(intake *service.IntakeService, apps *repository.ApplicationRepository) *ApplicationHandler {
	return &ApplicationHandler{intake: intake, apps: apps}
}

// Create handles the public application form submission.
func (h *ApplicationHandler) Create(c *gin.Context) {
	var in service.IntakeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	result, err := h.intake.Create(c.Request.Context(), in)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, result)
}

// Lookup lets an applicant check their order with reference number plus the
// contact email used on the application. No authentication involved, so both
// must match.
func (h *ApplicationHandler) Lookup(c *gin.Context) {
	ref := strings.ToUpper(strings.TrimSpace(c.Query("ref")))
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if ref == "" || email == "" {
		fail(c, http.StatusBadRequest, "ref and email query parameters are required")
		return
	}
	app, err := h.apps.GetByReference(ref, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "no application found for that reference and email")
			return
		}
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, app)
}
