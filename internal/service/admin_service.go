package service

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"vietvisa/internal/domain"
	"vietvisa/internal/models"
)

type AdminService struct {
	apps ApplicationStore
	log  *zap.Logger
}

func NewAdminService(apps ApplicationStore, log *zap.Logger) *AdminService {
	return &AdminService{apps: apps, log: log}
}

// ApplicationUpdate is the typed staff edit; each field is optional.
type ApplicationUpdate struct {
	Status    *domain.Status `json:"status"`
	Notes     *string        `json:"notes"`
	VisaSpeed *string        `json:"visa_speed"`
}

// UpdateApplication applies staff edits. Status moves are validated against
// the persisted status, not anything the client saw, and timestamps are set
// by the transition that first enters the state.
func (s *AdminService) UpdateApplication(id string, upd ApplicationUpdate) (*models.Application, error) {
	app, err := s.apps.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if upd.Status != nil {
		requested := *upd.Status
		if !domain.ValidStatus(requested) {
			return nil, &domain.InvalidTransitionError{From: app.Status, To: requested}
		}
		if requested == domain.StatusDelivered {
			return nil, ErrDispatchOnly
		}
		if !domain.CanTransition(app.Status, requested) {
			return nil, &domain.InvalidTransitionError{From: app.Status, To: requested}
		}
		extra := map[string]interface{}{}
		if requested == domain.StatusProcessing && app.ProcessedAt == nil {
			extra["processed_at"] = time.Now()
		}
		ok, err := s.apps.TransitionStatus(id, app.Status, requested, extra)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Another staff session moved the row between our read and write.
			return nil, ErrStaleStatus
		}
		s.log.Info("application status changed",
			zap.String("application_id", id),
			zap.String("from", string(app.Status)),
			zap.String("to", string(requested)))
	}

	fields := map[string]interface{}{}
	if upd.Notes != nil {
		fields["notes"] = *upd.Notes
	}
	if upd.VisaSpeed != nil {
		if *upd.VisaSpeed != domain.SpeedStandard && *upd.VisaSpeed != domain.SpeedUrgent {
			return nil, validationErr("visa_speed must be \"standard\" or \"urgent\"")
		}
		fields["visa_speed"] = *upd.VisaSpeed
	}
	if len(fields) > 0 {
		if err := s.apps.UpdateFields(id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	return s.apps.GetDetail(id)
}
