package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-agenda-api/internal/models"
	appErrors "github.com/noah-isme/sma-agenda-api/pkg/errors"
)

type announcementRepoStub struct {
	items []models.Announcement
	seq   int
}

func (r *announcementRepoStub) List(ctx context.Context) ([]models.Announcement, error) {
	return r.items, nil
}

func (r *announcementRepoStub) Create(ctx context.Context, announcement *models.Announcement) error {
	r.seq++
	if announcement.ID == "" {
		announcement.ID = fmt.Sprintf("ann-%d", r.seq)
	}
	r.items = append(r.items, *announcement)
	return nil
}

func (r *announcementRepoStub) Delete(ctx context.Context, id string) error {
	for i, item := range r.items {
		if item.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func TestAnnouncementServiceCreateAndList(t *testing.T) {
	repo := &announcementRepoStub{}
	svc := NewAnnouncementService(repo, nil, nil, nil)

	created, err := svc.Create(context.Background(), models.RoleAdmin, CreateAnnouncementRequest{
		Date:        "2024-05-02",
		Description: "Libur nasional",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), created.Date)

	announcements, err := svc.List(context.Background(), models.RoleUser)
	require.NoError(t, err)
	require.Len(t, announcements, 1)
	assert.Equal(t, "Libur nasional", announcements[0].Description)
}

func TestAnnouncementServiceCreateRejectsEmptyDescription(t *testing.T) {
	repo := &announcementRepoStub{}
	svc := NewAnnouncementService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.RoleAdmin, CreateAnnouncementRequest{
		Date: "2024-05-02",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestAnnouncementServiceCreateRejectsMalformedDate(t *testing.T) {
	svc := NewAnnouncementService(&announcementRepoStub{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.RoleAdmin, CreateAnnouncementRequest{
		Date:        "02-05-2024",
		Description: "Libur",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAnnouncementServiceCreateForbiddenForUserRole(t *testing.T) {
	repo := &announcementRepoStub{}
	svc := NewAnnouncementService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.RoleUser, CreateAnnouncementRequest{
		Date:        "2024-05-02",
		Description: "Libur",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestAnnouncementServiceDeleteNotFound(t *testing.T) {
	svc := NewAnnouncementService(&announcementRepoStub{}, nil, nil, nil)

	err := svc.Delete(context.Background(), models.RoleAdmin, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAnnouncementServiceDeleteForbiddenForUserRole(t *testing.T) {
	repo := &announcementRepoStub{items: []models.Announcement{{ID: "ann-1"}}}
	svc := NewAnnouncementService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), models.RoleUser, "ann-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.items, 1)
}
