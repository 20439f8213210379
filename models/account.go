package models

import "time"

// Account is a tracked social media handle.
type Account struct {
	ID        int64     `json:"id"`
	Platform  Platform  `json:"platform"`
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"created_at"`
}

// AnalyticsData is one daily snapshot of an account's raw metrics.
type AnalyticsData struct {
	AccountID int64     `json:"account_id"`
	Date      time.Time `json:"date"`
	Followers int       `json:"followers"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	Shares    int       `json:"shares"`
}
