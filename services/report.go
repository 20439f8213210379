package services

import (
	"fmt"
	"io"
	"strings"

	"social-analytics/models"
)

// PrintReport writes a human-readable analytics report for one account.
func PrintReport(w io.Writer, a models.AccountAnalytics) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 %s @%s\033[0m\n", strings.ToUpper(a.Platform.String()), a.Handle)
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Engagement\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Source             : %s\n", a.Source)
	if a.Error != "" {
		fmt.Fprintf(w, "  Error              : \033[1;31m%s\033[0m\n", a.Error)
	}
	fmt.Fprintf(w, "  Total interactions : \033[1m%d\033[0m\n", a.Metrics.TotalInteractions)
	fmt.Fprintf(w, "  Engagement rate    : \033[1;32m%.2f%%\033[0m\n", a.Metrics.EngagementRate)
	fmt.Fprintln(w)

	d := a.Details
	if d == nil {
		fmt.Fprintf(w, "  No post-level data available\n")
		fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}

	fmt.Fprintf(w, "\033[1;33m  Posts\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Followers          : %d\n", d.Followers)
	fmt.Fprintf(w, "  Likes / retweets   : %d / %d\n", d.Likes, d.Retweets)
	fmt.Fprintf(w, "  Sentiment          : %.3f (σ %.3f)\n", d.AvgSentiment, d.SentimentStd)
	fmt.Fprintf(w, "  Posts per day      : %.2f\n", d.PostFrequency)
	fmt.Fprintf(w, "  Best posting hour  : %02d:00 UTC\n", d.BestPostingTime)
	fmt.Fprintf(w, "  Avg post rate      : %.2f%%\n", d.EngagementRate)
	fmt.Fprintf(w, "  Trend              : %+.3f pp/post\n", d.EngagementTrend)
	fmt.Fprintln(w)

	printTokens(w, "Top Hashtags", "#", d.TopHashtags, thin)
	printTokens(w, "Top Mentions", "@", d.TopMentions, thin)

	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)
}

func printTokens(w io.Writer, title, prefix string, tokens []models.TokenCount, thin string) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(tokens) == 0 {
		fmt.Fprintf(w, "  None\n\n")
		return
	}
	for i, tc := range tokens {
		bar := strings.Repeat("█", min(tc.Count, 30))
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-28s %s (%d)\n", i+1, truncate(prefix+tc.Token, 26), bar, tc.Count)
	}
	fmt.Fprintln(w)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
