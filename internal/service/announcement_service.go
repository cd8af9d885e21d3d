package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-agenda-api/internal/access"
	"github.com/noah-isme/sma-agenda-api/internal/models"
	appErrors "github.com/noah-isme/sma-agenda-api/pkg/errors"
)

type announcementRepository interface {
	List(ctx context.Context) ([]models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

// AnnouncementService handles announcement workflows. There is no update
// use-case; an announcement is corrected by delete + create.
type AnnouncementService struct {
	repo      announcementRepository
	gate      *access.Gate
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, gate *access.Gate, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = access.NewGate()
	}
	return &AnnouncementService{repo: repo, gate: gate, validator: validate, logger: logger}
}

// CreateAnnouncementRequest describes the create payload.
type CreateAnnouncementRequest struct {
	Date        string `json:"date" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// List returns all announcements in insertion order.
func (s *AnnouncementService) List(ctx context.Context, role models.UserRole) ([]models.Announcement, error) {
	if err := s.gate.Authorize(role, access.OpAnnouncementRead); err != nil {
		return nil, err
	}
	announcements, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, nil
}

// Create posts a new announcement.
func (s *AnnouncementService) Create(ctx context.Context, role models.UserRole, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.gate.Authorize(role, access.OpAnnouncementCreate); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	date, err := parseDateField(req.Date, "date")
	if err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		Date:        date,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	return announcement, nil
}

// Delete removes an announcement by id.
func (s *AnnouncementService) Delete(ctx context.Context, role models.UserRole, id string) error {
	if err := s.gate.Authorize(role, access.OpAnnouncementDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("announcement %s not found", id))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	return nil
}
