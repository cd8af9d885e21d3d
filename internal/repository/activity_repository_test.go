package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-agenda-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestActivityRepositoryList(t *testing.T) {
	db, mock := newMock(t)
	repo := NewActivityRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "start_date", "end_date", "start_time", "end_time", "created_at", "updated_at"}).
		AddRow("a1", "Rapat Guru", now, now, "08:00", "10:00", now, now).
		AddRow("a2", "Upacara", now, now, "07:00", "08:00", now, now)
	mock.ExpectQuery("SELECT id, name, start_date, end_date, start_time, end_time, created_at, updated_at").
		WillReturnRows(rows)

	activities, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "Rapat Guru", activities[0].Name)
	assert.Equal(t, "Upacara", activities[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewActivityRepository(db)

	mock.ExpectQuery("SELECT id, name, start_date").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryCreateAssignsID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewActivityRepository(db)

	mock.ExpectExec("INSERT INTO activities").
		WillReturnResult(sqlmock.NewResult(0, 1))

	activity := &models.Activity{
		Name:      "Rapat Guru",
		StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "08:00",
		EndTime:   "10:00",
	}
	require.NoError(t, repo.Create(context.Background(), activity))
	assert.NotEmpty(t, activity.ID)
	assert.False(t, activity.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryUpdateUnknownID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewActivityRepository(db)

	mock.ExpectExec("UPDATE activities SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	activity := &models.Activity{ID: "missing", Name: "X"}
	err := repo.Update(context.Background(), activity)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewActivityRepository(db)

	mock.ExpectExec("DELETE FROM activities WHERE id").
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryDeleteUnknownID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewActivityRepository(db)

	mock.ExpectExec("DELETE FROM activities WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
