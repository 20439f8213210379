package storage

import (
	"context"

	"social-analytics/models"
)

// AccountStore is the interface any account/analytics backend must satisfy.
type AccountStore interface {
	AddAccount(ctx context.Context, platform models.Platform, handle string) (models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	Account(ctx context.Context, id int64) (models.Account, error)
	SaveAnalytics(ctx context.Context, data models.AnalyticsData) error
	History(ctx context.Context, accountID int64) ([]models.AnalyticsData, error)
	Close() error
}

// AnalyticsWriter exports collected analytics.
type AnalyticsWriter interface {
	Write(results map[int64]models.AccountAnalytics) error
}
