package models

// TokenCount pairs a hashtag or mention with its number of posts.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// MetricsResult holds the analytics computed over one AccountSnapshot.
type MetricsResult struct {
	Followers       int          `json:"followers"`
	Likes           int          `json:"likes"`
	Retweets        int          `json:"retweets"`
	AvgSentiment    float64      `json:"avg_sentiment"`
	SentimentStd    float64      `json:"sentiment_std"`
	TopHashtags     []TokenCount `json:"top_hashtags"`
	TopMentions     []TokenCount `json:"top_mentions"`
	PostFrequency   float64      `json:"post_frequency"`
	BestPostingTime int          `json:"best_posting_time"`
	EngagementTrend float64      `json:"engagement_trend"`
	EngagementRate  float64      `json:"engagement_rate"`
}

// RawMetrics is the flat followers/likes/comments/shares mapping every source
// is reduced to. Absent values are zero.
type RawMetrics struct {
	Followers int `json:"followers"`
	Likes     int `json:"likes"`
	Comments  int `json:"comments"`
	Shares    int `json:"shares"`
}

// EngagementSummary is the normalized engagement view of RawMetrics.
type EngagementSummary struct {
	TotalInteractions int     `json:"total_interactions"`
	EngagementRate    float64 `json:"engagement_rate"`
}

// MetricsSource tells where an account's numbers came from.
type MetricsSource string

const (
	SourceAPI         MetricsSource = "api"
	SourceScraper     MetricsSource = "scraper"
	SourceUnavailable MetricsSource = "unavailable"
)

// AccountAnalytics is one entry of the analytics read path output.
type AccountAnalytics struct {
	Platform Platform          `json:"platform"`
	Handle   string            `json:"handle"`
	Source   MetricsSource     `json:"source"`
	Metrics  EngagementSummary `json:"metrics"`
	Details  *MetricsResult    `json:"details,omitempty"`
	Error    string            `json:"error,omitempty"`
}
