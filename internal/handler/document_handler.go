package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vietvisa/internal/middleware"
	"vietvisa/internal/models"
	"vietvisa/internal/repository"
	"vietvisa/internal/service"
	"vietvisa/pkg/cloudinary"
)

const maxUploadSize = 10 << 20 // 10 MB

type DocumentHandler struct {
	docs       *repository.DocumentRepository
	applicants *repository.ApplicantRepository
	dispatch   *service.DispatchService
	storage    cloudinary.Client
	log        *zap.Logger
}

func NewDocumentHandler(docs *repository.DocumentRepository, applicants *repository.ApplicantRepository, dispatch *service.DispatchService, storage cloudinary.Client, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{docs: docs, applicants: applicants, dispatch: dispatch, storage: storage, log: log}
}

// UploadArtifact stores an applicant's passport scan or portrait photo. The
// kind path segment selects the target column.
func (h *DocumentHandler) UploadArtifact(c *gin.Context) {
	applicantID := c.Param("id")
	kind := c.Param("kind")
	var column string
	switch kind {
	case "passport":
		column = "passport_scan_url"
	case "portrait":
		column = "portrait_url"
	default:
		fail(c, http.StatusBadRequest, "upload kind must be passport or portrait")
		return
	}
	if _, err := h.applicants.GetByID(applicantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "applicant not found")
			return
		}
		failFromErr(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		fail(c, http.StatusBadRequest, "file exceeds the 10MB limit")
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		fail(c, http.StatusBadRequest, "only jpg, png or webp images are accepted")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		failFromErr(c, err)
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("%s-%s-%s", applicantID, kind, uuid.NewString()[:8])
	url, err := h.storage.UploadImage(c.Request.Context(), file, "applicant-uploads", publicID)
	if err != nil {
		h.log.Error("artifact upload failed",
			zap.String("applicant_id", applicantID), zap.String("kind", kind), zap.Error(err))
		fail(c, http.StatusInternalServerError, "upload failed")
		return
	}
	if err := h.applicants.SetArtifact(applicantID, column, url); err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"url": url})
}

// UploadVisaDocument stores the issued visa PDF for an applicant and records
// it, ready for dispatch.
func (h *DocumentHandler) UploadVisaDocument(c *gin.Context) {
	applicantID := c.Param("id")
	applicant, err := h.applicants.GetByID(applicantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "applicant not found")
			return
		}
		failFromErr(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		fail(c, http.StatusBadRequest, "file exceeds the 10MB limit")
		return
	}
	if strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".pdf" {
		fail(c, http.StatusBadRequest, "visa documents must be PDF files")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		failFromErr(c, err)
		return
	}
	defer file.Close()

	publicID := fmt.Sprintf("visa-%s-%s", applicantID, uuid.NewString()[:8])
	url, err := h.storage.UploadDocument(c.Request.Context(), file, "visa-documents", publicID)
	if err != nil {
		h.log.Error("visa document upload failed",
			zap.String("applicant_id", applicantID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "upload failed")
		return
	}

	doc := &models.VisaDocument{
		ApplicantID:   applicant.ID,
		ApplicationID: applicant.ApplicationID,
		DocumentURL:   url,
		UploadedBy:    middleware.StaffEmail(c),
	}
	if err := h.docs.Create(doc); err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusCreated, doc)
}

type dispatchRequest struct {
	ApplicantID string `json:"applicant_id" binding:"required"`
	DocumentID  string `json:"document_id" binding:"required"`
}

// Dispatch sends an uploaded visa document to the customer over WhatsApp and
// email.
func (h *DocumentHandler) Dispatch(c *gin.Context) {
	var req dispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	result, err := h.dispatch.Dispatch(c.Request.Context(), c.Param("id"), req.ApplicantID, req.DocumentID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	ok(c, http.StatusOK, result)
}
