package dto

import "github.com/noah-isme/sma-agenda-api/internal/models"

// RecentReportResponse wraps the recency view with its cadence metadata.
type RecentReportResponse struct {
	Activities   []models.Activity `json:"activities"`
	LookbackDays int               `json:"lookback_days"`
}
