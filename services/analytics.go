package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"social-analytics/models"
	"social-analytics/utils"
)

// AnalyticsRecorder persists daily metric snapshots.
type AnalyticsRecorder interface {
	SaveAnalytics(ctx context.Context, data models.AnalyticsData) error
}

// AnalyticsService is the read path: it fetches each account's data from its
// platform client, aggregates posts and summarises engagement.
type AnalyticsService struct {
	clients     ClientSource
	cleaner     *Cleaner
	aggregator  *Aggregator
	recorder    AnalyticsRecorder
	logger      *utils.Logger
	concurrency int
	rateLimitMs int
	now         func() time.Time
}

// NewAnalyticsService wires the read path. recorder may be nil.
func NewAnalyticsService(clients ClientSource, aggregator *Aggregator, recorder AnalyticsRecorder,
	logger *utils.Logger, concurrency, rateLimitMs int) *AnalyticsService {
	return &AnalyticsService{
		clients:     clients,
		cleaner:     NewCleaner(logger),
		aggregator:  aggregator,
		recorder:    recorder,
		logger:      logger,
		concurrency: concurrency,
		rateLimitMs: rateLimitMs,
		now:         time.Now,
	}
}

// Collect gathers analytics for every account, keyed by account id. A
// failing account yields a zero summary with its error; it never fails the
// whole call.
func (s *AnalyticsService) Collect(ctx context.Context, accounts []models.Account) map[int64]models.AccountAnalytics {
	out := make(map[int64]models.AccountAnalytics, len(accounts))
	var mu sync.Mutex

	pool := utils.NewWorkerPool(s.concurrency, s.rateLimitMs)
	for _, acc := range accounts {
		acc := acc
		pool.Submit(ctx, func() {
			res := s.collectOne(ctx, acc)
			mu.Lock()
			out[acc.ID] = res
			mu.Unlock()
		})
	}
	pool.Wait()

	s.logger.Info("[analytics] Collected analytics for %d accounts", len(accounts))
	return out
}

// Account collects analytics for a single handle without persisting them.
func (s *AnalyticsService) Account(ctx context.Context, platform models.Platform, handle string) models.AccountAnalytics {
	return s.analyse(ctx, platform, handle, nil)
}

func (s *AnalyticsService) collectOne(ctx context.Context, acc models.Account) models.AccountAnalytics {
	return s.analyse(ctx, acc.Platform, acc.Handle, func(m models.RawMetrics) {
		if s.recorder == nil {
			return
		}
		y, mo, d := s.now().UTC().Date()
		err := s.recorder.SaveAnalytics(ctx, models.AnalyticsData{
			AccountID: acc.ID,
			Date:      time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
			Followers: m.Followers,
			Likes:     m.Likes,
			Comments:  m.Comments,
			Shares:    m.Shares,
		})
		if err != nil {
			s.logger.Warn("[analytics] Could not store snapshot for account %d: %v", acc.ID, err)
		}
	})
}

func (s *AnalyticsService) analyse(ctx context.Context, platform models.Platform, handle string,
	onSuccess func(models.RawMetrics)) models.AccountAnalytics {
	res := models.AccountAnalytics{Platform: platform, Handle: handle}

	data, err := s.fetch(ctx, platform, handle)
	if err != nil {
		s.logger.Warn("[analytics] No metrics for %s/%s: %v", platform, handle, err)
		analyticsCollected.WithLabelValues(platform.String(), string(models.SourceUnavailable)).Inc()
		res.Source = models.SourceUnavailable
		res.Metrics = Summarize(models.RawMetrics{})
		res.Error = err.Error()
		return res
	}

	res.Source = data.Source
	res.Metrics = Summarize(data.Metrics)
	if len(data.Posts) > 0 {
		res.Details = s.aggregator.Compute(models.AccountSnapshot{
			Platform:  platform,
			Handle:    handle,
			Followers: data.Metrics.Followers,
			Posts:     s.cleaner.Clean(data.Posts),
		})
	}

	analyticsCollected.WithLabelValues(platform.String(), string(res.Source)).Inc()
	if onSuccess != nil {
		onSuccess(data.Metrics)
	}
	return res
}

// fetch calls the platform client and turns panics into errors.
func (s *AnalyticsService) fetch(ctx context.Context, platform models.Platform, handle string) (data *models.PlatformData, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = fmt.Errorf("%w: metrics source panic: %v", models.ErrExternalService, r)
		}
	}()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	client := s.clients.Client(platform)
	if client == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedPlatform, platform)
	}

	data, err = client.FetchMetrics(ctx, handle)
	if err == nil && data == nil {
		err = fmt.Errorf("%w: empty response", models.ErrExternalService)
	}
	return data, err
}
