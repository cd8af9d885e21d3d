package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-agenda-api/internal/access"
	"github.com/noah-isme/sma-agenda-api/internal/models"
	appErrors "github.com/noah-isme/sma-agenda-api/pkg/errors"
)

const activityListCacheKey = "activities:list"

type activityRepository interface {
	List(ctx context.Context) ([]models.Activity, error)
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
}

// ActivityService implements the activity use-cases: every call authorizes the
// role first, validates the full record, and only then touches the store.
type ActivityService struct {
	repo      activityRepository
	gate      *access.Gate
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService constructs the service.
func NewActivityService(repo activityRepository, gate *access.Gate, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gate == nil {
		gate = access.NewGate()
	}
	return &ActivityService{repo: repo, gate: gate, cache: cache, validator: validate, logger: logger}
}

// CreateActivityRequest describes the create payload. Dates use YYYY-MM-DD and
// times HH:MM, the formats the dashboard forms submit.
type CreateActivityRequest struct {
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// UpdateActivityRequest describes a partial update; nil fields keep their
// prior values.
type UpdateActivityRequest struct {
	Name      *string `json:"name"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// List returns all activities in insertion order, readable by both roles.
func (s *ActivityService) List(ctx context.Context, role models.UserRole) ([]models.Activity, error) {
	if err := s.gate.Authorize(role, access.OpActivityRead); err != nil {
		return nil, err
	}
	var cached []models.Activity
	if hit, _ := s.cache.Get(ctx, activityListCacheKey, &cached); hit {
		return cached, nil
	}
	activities, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	_ = s.cache.Set(ctx, activityListCacheKey, activities)
	return activities, nil
}

// Get returns a single activity by id.
func (s *ActivityService) Get(ctx context.Context, role models.UserRole, id string) (*models.Activity, error) {
	if err := s.gate.Authorize(role, access.OpActivityRead); err != nil {
		return nil, err
	}
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get activity")
	}
	return activity, nil
}

// Create validates and stores a new activity.
func (s *ActivityService) Create(ctx context.Context, role models.UserRole, req CreateActivityRequest) (*models.Activity, error) {
	if err := s.gate.Authorize(role, access.OpActivityCreate); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}

	startDate, err := parseDateField(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDateField(req.EndDate, "end_date")
	if err != nil {
		return nil, err
	}
	startTime, err := parseClockField(req.StartTime, "start_time")
	if err != nil {
		return nil, err
	}
	endTime, err := parseClockField(req.EndTime, "end_time")
	if err != nil {
		return nil, err
	}

	activity := &models.Activity{
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		StartTime: startTime,
		EndTime:   endTime,
	}
	if err := validateOrdering(activity); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	s.cache.Invalidate(ctx, activityListCacheKey)
	return activity, nil
}

// Update applies a partial revision. The merged record is validated in full
// before any write, so an invalid revision leaves the stored row untouched.
func (s *ActivityService) Update(ctx context.Context, role models.UserRole, id string, req UpdateActivityRequest) (*models.Activity, error) {
	if err := s.gate.Authorize(role, access.OpActivityUpdate); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
		}
		existing.Name = *req.Name
	}
	if req.StartDate != nil {
		startDate, err := parseDateField(*req.StartDate, "start_date")
		if err != nil {
			return nil, err
		}
		existing.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDateField(*req.EndDate, "end_date")
		if err != nil {
			return nil, err
		}
		existing.EndDate = endDate
	}
	if req.StartTime != nil {
		startTime, err := parseClockField(*req.StartTime, "start_time")
		if err != nil {
			return nil, err
		}
		existing.StartTime = startTime
	}
	if req.EndTime != nil {
		endTime, err := parseClockField(*req.EndTime, "end_time")
		if err != nil {
			return nil, err
		}
		existing.EndTime = endTime
	}

	if err := validateOrdering(existing); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}
	s.cache.Invalidate(ctx, activityListCacheKey)
	return existing, nil
}

// Delete removes an activity by id.
func (s *ActivityService) Delete(ctx context.Context, role models.UserRole, id string) error {
	if err := s.gate.Authorize(role, access.OpActivityDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("activity %s not found", id))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}
	s.cache.Invalidate(ctx, activityListCacheKey)
	return nil
}

func validateOrdering(activity *models.Activity) error {
	if activity.StartDate.After(activity.EndDate) {
		return appErrors.Clone(appErrors.ErrValidation, "start_date must not be after end_date")
	}
	start, err := time.Parse("15:04", activity.StartTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be formatted as HH:MM")
	}
	end, err := time.Parse("15:04", activity.EndTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be formatted as HH:MM")
	}
	if start.After(end) {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must not be after end_time")
	}
	return nil
}

func parseDateField(value, field string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be formatted as YYYY-MM-DD", field))
	}
	return parsed.UTC(), nil
}

func parseClockField(value, field string) (string, error) {
	if _, err := time.Parse("15:04", value); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be formatted as HH:MM", field))
	}
	return value, nil
}
