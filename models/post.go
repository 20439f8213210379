package models

import "time"

// RawPost holds an unvalidated post exactly as a platform client produced it.
// Timestamps stay as strings until the cleaner parses them.
type RawPost struct {
	ID            string
	CreatedAt     string
	Text          string
	FavoriteCount int
	RetweetCount  int
	Hashtags      []string
	Mentions      []string
}

// PostRecord is a cleaned post ready for aggregation. It is never mutated
// after the cleaner produces it.
type PostRecord struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Text          string    `json:"text"`
	FavoriteCount int       `json:"favorite_count"`
	RetweetCount  int       `json:"retweet_count"`
	Hashtags      []string  `json:"hashtags"`
	Mentions      []string  `json:"mentions"`
}

// AccountSnapshot is the aggregator's input: one handle's follower count and
// its posts in the order the source returned them.
type AccountSnapshot struct {
	Platform  Platform     `json:"platform"`
	Handle    string       `json:"handle"`
	Followers int          `json:"followers"`
	Posts     []PostRecord `json:"posts"`
}

// PlatformData is what a platform client or the profile scraper returns for
// one handle. Posts is empty for sources that only expose totals.
type PlatformData struct {
	Source  MetricsSource
	Metrics RawMetrics
	Posts   []RawPost
}
