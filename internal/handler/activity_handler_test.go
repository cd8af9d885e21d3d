package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-agenda-api/internal/middleware"
	"github.com/noah-isme/sma-agenda-api/internal/models"
	"github.com/noah-isme/sma-agenda-api/internal/service"
	"github.com/noah-isme/sma-agenda-api/pkg/response"
)

type memActivityRepo struct {
	items map[string]models.Activity
	order []string
	seq   int
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{items: map[string]models.Activity{}}
}

func (r *memActivityRepo) List(ctx context.Context) ([]models.Activity, error) {
	out := make([]models.Activity, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *memActivityRepo) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (r *memActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	r.seq++
	if activity.ID == "" {
		activity.ID = fmt.Sprintf("act-%d", r.seq)
	}
	r.items[activity.ID] = *activity
	r.order = append(r.order, activity.ID)
	return nil
}

func (r *memActivityRepo) Update(ctx context.Context, activity *models.Activity) error {
	if _, ok := r.items[activity.ID]; !ok {
		return sql.ErrNoRows
	}
	r.items[activity.ID] = *activity
	return nil
}

func (r *memActivityRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// asRole injects claims the way the JWT middleware would after verification.
func asRole(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{
			UserID:           "user-1",
			Username:         "tester",
			Role:             role,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
		})
		c.Next()
	}
}

func newActivityRouter(repo *memActivityRepo, role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewActivityService(repo, nil, nil, nil, nil)
	h := NewActivityHandler(svc)

	r := gin.New()
	r.Use(asRole(role))
	r.GET("/api/activities", h.List)
	r.GET("/api/activities/:id", h.Get)
	r.POST("/api/activities", h.Create)
	r.PUT("/api/activities/:id", h.Update)
	r.DELETE("/api/activities/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestActivityHandlerCreateAsAdmin(t *testing.T) {
	repo := newMemActivityRepo()
	r := newActivityRouter(repo, models.RoleAdmin)

	w := doJSON(t, r, http.MethodPost, "/api/activities", gin.H{
		"name":       "Rapat Guru",
		"start_date": "2024-05-01",
		"end_date":   "2024-05-01",
		"start_time": "08:00",
		"end_time":   "10:00",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Nil(t, envelope.Error)
	require.Len(t, repo.order, 1)
}

func TestActivityHandlerCreateForbiddenForUser(t *testing.T) {
	repo := newMemActivityRepo()
	r := newActivityRouter(repo, models.RoleUser)

	w := doJSON(t, r, http.MethodPost, "/api/activities", gin.H{
		"name":       "Rapat Guru",
		"start_date": "2024-05-01",
		"end_date":   "2024-05-01",
		"start_time": "08:00",
		"end_time":   "10:00",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "FORBIDDEN", envelope.Error.Code)
	assert.Empty(t, repo.order)
}

func TestActivityHandlerCreateValidationError(t *testing.T) {
	r := newActivityRouter(newMemActivityRepo(), models.RoleAdmin)

	w := doJSON(t, r, http.MethodPost, "/api/activities", gin.H{
		"name":       "Rapat Guru",
		"start_date": "2024-05-02",
		"end_date":   "2024-05-01",
		"start_time": "08:00",
		"end_time":   "10:00",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestActivityHandlerListAsUser(t *testing.T) {
	repo := newMemActivityRepo()
	adminRouter := newActivityRouter(repo, models.RoleAdmin)
	doJSON(t, adminRouter, http.MethodPost, "/api/activities", gin.H{
		"name":       "Rapat Guru",
		"start_date": "2024-05-01",
		"end_date":   "2024-05-01",
		"start_time": "08:00",
		"end_time":   "10:00",
	})

	userRouter := newActivityRouter(repo, models.RoleUser)
	w := doJSON(t, userRouter, http.MethodGet, "/api/activities", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data []models.Activity `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Rapat Guru", envelope.Data[0].Name)
}

func TestActivityHandlerGetNotFound(t *testing.T) {
	r := newActivityRouter(newMemActivityRepo(), models.RoleAdmin)

	w := doJSON(t, r, http.MethodGet, "/api/activities/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestActivityHandlerDelete(t *testing.T) {
	repo := newMemActivityRepo()
	r := newActivityRouter(repo, models.RoleAdmin)
	doJSON(t, r, http.MethodPost, "/api/activities", gin.H{
		"name":       "Rapat Guru",
		"start_date": "2024-05-01",
		"end_date":   "2024-05-01",
		"start_time": "08:00",
		"end_time":   "10:00",
	})
	require.Len(t, repo.order, 1)
	id := repo.order[0]

	w := doJSON(t, r, http.MethodDelete, "/api/activities/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.order)
}
