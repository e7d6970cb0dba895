package feature

import (
	"math"

	"github.com/teamboard/teamboard/pkg/models"
)

// Aggregate reduces a feature list into per-project counters. Only the
// open and closed states are recognized; features in any other state
// count toward Total but neither bucket, so Completed+InProgress may be
// less than Total.
func Aggregate(features []models.FeatureRecord) models.ProjectStats {
	stats := models.ProjectStats{Total: len(features)}
	for _, f := range features {
		switch f.Status {
		case models.StateClosed:
			stats.Completed++
		case models.StateOpen:
			stats.InProgress++
		}
	}
	stats.ProgressPct = progressPct(stats.Completed, stats.Total)
	return stats
}

// Summarize folds per-project stats into overall totals. Degraded
// projects contribute zeroes, which is what their stats already hold.
func Summarize(projects []models.ProjectEntry) *models.Summary {
	summary := &models.Summary{Projects: len(projects)}
	for _, p := range projects {
		summary.TotalFeatures += p.Stats.Total
		summary.Completed += p.Stats.Completed
		summary.InProgress += p.Stats.InProgress
	}
	summary.ProgressPct = progressPct(summary.Completed, summary.TotalFeatures)
	return summary
}

// progressPct is round-half-up of completed/total as a percentage, 0 when
// total is zero. Always within [0, 100].
func progressPct(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
