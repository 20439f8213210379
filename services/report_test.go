package services

import (
	"bytes"
	"strings"
	"testing"

	"social-analytics/models"
)

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, models.AccountAnalytics{
		Platform: models.Twitter,
		Handle:   "gopher",
		Source:   models.SourceAPI,
		Metrics:  models.EngagementSummary{TotalInteractions: 20, EngagementRate: 20},
		Details: &models.MetricsResult{
			Followers:   100,
			TopHashtags: []models.TokenCount{{Token: "golang", Count: 3}},
		},
	})

	out := buf.String()
	for _, want := range []string{"TWITTER @gopher", "20.00%", "#golang", "Top Mentions", "None"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestPrintReportWithoutDetails(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, models.AccountAnalytics{
		Platform: models.LinkedIn,
		Handle:   "someone",
		Source:   models.SourceUnavailable,
		Error:    "unsupported platform",
	})

	out := buf.String()
	if !strings.Contains(out, "No post-level data available") {
		t.Errorf("expected placeholder for missing details:\n%s", out)
	}
	if !strings.Contains(out, "unsupported platform") {
		t.Errorf("expected error line:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("truncate = %q; want %q", got, "abcde...")
	}
}
