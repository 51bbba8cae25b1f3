package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vietvisa/internal/domain"
	"vietvisa/internal/repository"
	"vietvisa/internal/service"
)

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// failFromErr maps service failure classes onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message so internals never leak.
func failFromErr(c *gin.Context, err error) {
	var vErr *service.ValidationError
	var tErr *domain.InvalidTransitionError
	switch {
	case errors.As(err, &vErr):
		fail(c, http.StatusBadRequest, vErr.Msg)
	case errors.As(err, &tErr):
		fail(c, http.StatusBadRequest, tErr.Error())
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrAlreadyPaid):
		fail(c, http.StatusConflict, "application has already been paid")
	case errors.Is(err, service.ErrStaleStatus):
		fail(c, http.StatusConflict, "application was updated by someone else, reload and retry")
	case errors.Is(err, service.ErrDispatchOnly):
		fail(c, http.StatusBadRequest, "delivered status is set automatically when the visa document is dispatched")
	case errors.Is(err, service.ErrInconsistentReference):
		fail(c, http.StatusBadRequest, "document, applicant and application do not belong together")
	case errors.Is(err, service.ErrInvalidSignature):
		fail(c, http.StatusBadRequest, "invalid signature")
	case errors.Is(err, service.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrNotStaff):
		fail(c, http.StatusForbidden, "account is not authorized for the back office")
	case errors.Is(err, repository.ErrNoFields):
		fail(c, http.StatusBadRequest, "no valid fields to update")
	default:
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}
