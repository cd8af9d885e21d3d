package service

import (
	"time"

	"github.com/noah-isme/sma-agenda-api/internal/models"
)

// RecentSince returns the activities whose start date falls strictly after
// ref minus lookback, preserving the input order. An activity starting exactly
// at the cutoff is excluded; that boundary decides what a weekly versus a
// monthly report view surfaces, so it must stay strict.
func RecentSince(activities []models.Activity, ref time.Time, lookback time.Duration) []models.Activity {
	cutoff := ref.Add(-lookback)
	recent := make([]models.Activity, 0, len(activities))
	for _, activity := range activities {
		if activity.StartDate.After(cutoff) {
			recent = append(recent, activity)
		}
	}
	return recent
}
