package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-agenda-api/internal/models"
	"github.com/noah-isme/sma-agenda-api/internal/service"
)

type memUserRepo struct {
	users map[string]*models.User
}

func (r *memUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia-sekali"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &memUserRepo{users: map[string]*models.User{
		"admin": {
			ID:           "user-1",
			Username:     "admin",
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			Active:       true,
		},
	}}
	svc := service.NewAuthService(repo, nil, nil, service.AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
	})
	h := NewAuthHandler(svc)

	r := gin.New()
	r.POST("/api/auth/login", h.Login)
	return r
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "admin",
		"password": "rahasia-sekali",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Token)
	assert.Equal(t, models.RoleAdmin, envelope.Data.Role)
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"username": "admin",
		"password": "salah-semua",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error.Code)
}

func TestAuthHandlerLoginMissingFields(t *testing.T) {
	r := newAuthRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{"username": "admin"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}
