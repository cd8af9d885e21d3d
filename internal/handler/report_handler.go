package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-agenda-api/internal/dto"
	"github.com/noah-isme/sma-agenda-api/internal/models"
	"github.com/noah-isme/sma-agenda-api/internal/service"
	"github.com/noah-isme/sma-agenda-api/pkg/response"
)

// ReportHandler serves the recency view and report downloads.
type ReportHandler struct {
	service *service.ReportService
	cfg     service.ReportConfig
}

// NewReportHandler constructs handler.
func NewReportHandler(svc *service.ReportService, cfg service.ReportConfig) *ReportHandler {
	return &ReportHandler{service: svc, cfg: cfg}
}

// Recent godoc
// @Summary Recent activities for the caller's cadence
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/recent [get]
func (h *ReportHandler) Recent(c *gin.Context) {
	role := roleFromContext(c)
	activities, err := h.service.Recent(c.Request.Context(), role)
	if err != nil {
		response.Error(c, err)
		return
	}
	lookback := h.cfg.UserLookback
	if role == models.RoleAdmin {
		lookback = h.cfg.AdminLookback
	}
	response.JSON(c, http.StatusOK, dto.RecentReportResponse{
		Activities:   activities,
		LookbackDays: int(lookback / (24 * time.Hour)),
	})
}

// Download godoc
// @Summary Download monthly report
// @Tags Reports
// @Produce application/octet-stream
// @Param format path string true "Report format (csv or pdf)"
// @Param month query string true "Month as YYYY-MM"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/download/{format} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}

	artifact, err := h.service.Download(c.Request.Context(), roleFromContext(c), c.Param("format"), month)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
