package services

import (
	"math"

	"social-analytics/models"
)

// Summarize reduces flat metrics to total interactions and an engagement rate
// in percent. Followers below 1 are treated as 1. The rate is rounded to two
// decimals, half away from zero.
func Summarize(m models.RawMetrics) models.EngagementSummary {
	total := nonNegative(m.Likes) + nonNegative(m.Comments) + nonNegative(m.Shares)
	rate := float64(total) / float64(followerFloor(m.Followers)) * 100

	return models.EngagementSummary{
		TotalInteractions: total,
		EngagementRate:    round2(rate),
	}
}

// SummarizeResult folds an aggregator result into the same summary shape.
// Retweets count as shares.
func SummarizeResult(r *models.MetricsResult) models.EngagementSummary {
	if r == nil {
		return Summarize(models.RawMetrics{})
	}
	return Summarize(models.RawMetrics{
		Followers: r.Followers,
		Likes:     r.Likes,
		Shares:    r.Retweets,
	})
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
