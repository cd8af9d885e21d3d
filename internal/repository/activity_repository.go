package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-agenda-api/internal/models"
)

// ActivityRepository provides persistence for scheduled activities.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns all activities in insertion order.
func (r *ActivityRepository) List(ctx context.Context) ([]models.Activity, error) {
	const query = `SELECT id, name, start_date, end_date, start_time, end_time, created_at, updated_at
FROM activities ORDER BY created_at ASC, id ASC`
	activities := []models.Activity{}
	if err := r.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// GetByID returns an activity by identifier.
func (r *ActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	const query = `SELECT id, name, start_date, end_date, start_time, end_time, created_at, updated_at
FROM activities WHERE id = $1`
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Create inserts a new activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = now
	}
	activity.UpdatedAt = now
	const query = `INSERT INTO activities (id, name, start_date, end_date, start_time, end_time, created_at, updated_at)
VALUES (:id, :name, :start_date, :end_date, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// Update rewrites an existing activity in a single statement so concurrent
// updates to the same id serialize at the row level.
func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	activity.UpdatedAt = time.Now().UTC()
	const query = `UPDATE activities SET name = :name, start_date = :start_date, end_date = :end_date,
start_time = :start_time, end_time = :end_time, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, activity)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update activity rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an activity, reporting sql.ErrNoRows for unknown ids.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete activity rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
