package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-agenda-api/internal/models"
	"github.com/noah-isme/sma-agenda-api/internal/service"
)

type staticActivityLister struct {
	activities []models.Activity
}

func (l *staticActivityLister) List(ctx context.Context) ([]models.Activity, error) {
	return l.activities, nil
}

func reportFixtures() []models.Activity {
	return []models.Activity{
		{
			ID:        "a1",
			Name:      "Rapat A",
			StartDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			StartTime: "08:00",
			EndTime:   "10:00",
		},
		{
			ID:        "a2",
			Name:      "Rapat B",
			StartDate: time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 4, 16, 0, 0, 0, 0, time.UTC),
			StartTime: "09:00",
			EndTime:   "11:00",
		},
	}
}

func newReportRouter(activities []models.Activity, role models.UserRole, cfg service.ReportConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewReportService(&staticActivityLister{activities: activities}, nil, cfg, nil, nil, nil)
	h := NewReportHandler(svc, cfg)

	r := gin.New()
	r.Use(asRole(role))
	r.GET("/api/reports/recent", h.Recent)
	r.GET("/api/reports/download/:format", h.Download)
	return r
}

func TestReportHandlerDownloadCSV(t *testing.T) {
	r := newReportRouter(reportFixtures(), models.RoleUser, service.ReportConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/reports/download/csv?month=2024-05", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "laporan-2024-05.csv")

	records, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Rapat A", records[1][0])
}

func TestReportHandlerDownloadPDF(t *testing.T) {
	r := newReportRouter(reportFixtures(), models.RoleAdmin, service.ReportConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/reports/download/pdf?month=2024-04", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestReportHandlerDownloadUnsupportedFormat(t *testing.T) {
	r := newReportRouter(reportFixtures(), models.RoleAdmin, service.ReportConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/reports/download/xlsx?month=2024-05", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UNSUPPORTED_FORMAT", envelope.Error.Code)
}

func TestReportHandlerDownloadBadMonth(t *testing.T) {
	r := newReportRouter(reportFixtures(), models.RoleAdmin, service.ReportConfig{})

	w := doJSON(t, r, http.MethodGet, "/api/reports/download/csv?month=05-2024", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
}

func TestReportHandlerRecentReportsLookbackDays(t *testing.T) {
	cfg := service.ReportConfig{
		AdminLookback: 7 * 24 * time.Hour,
		UserLookback:  30 * 24 * time.Hour,
	}
	r := newReportRouter(nil, models.RoleAdmin, cfg)

	w := doJSON(t, r, http.MethodGet, "/api/reports/recent", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data struct {
			Activities   []models.Activity `json:"activities"`
			LookbackDays int               `json:"lookback_days"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 7, envelope.Data.LookbackDays)
	assert.Empty(t, envelope.Data.Activities)
}
