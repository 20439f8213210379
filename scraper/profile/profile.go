package profile

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"social-analytics/config"
	"social-analytics/models"
	"social-analytics/utils"
)

// ErrExtractionUnsupported means the page loaded but exposed no follower
// counter. It is "no data available", not zero engagement.
var ErrExtractionUnsupported = errors.New("profile counters not extractable")

// PageFetcher returns the rendered HTML of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Scraper reads public profile counters for platforms without an API client.
type Scraper struct {
	logger  *utils.Logger
	retry   *utils.RetryConfig
	fetcher PageFetcher
	visited *utils.KeySet
}

// New creates a Scraper backed by headless Chrome.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return NewWithFetcher(NewChromeFetcher(cfg.ChromeBin, logger), cfg.MaxRetries, logger)
}

// NewWithFetcher creates a Scraper that loads pages through fetcher.
func NewWithFetcher(fetcher PageFetcher, maxRetries int, logger *utils.Logger) *Scraper {
	return &Scraper{
		logger:  logger,
		fetcher: fetcher,
		visited: utils.NewKeySet(),
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Scrape loads the profile page for handle and extracts its counters.
func (s *Scraper) Scrape(ctx context.Context, platform models.Platform, handle string) (models.RawMetrics, error) {
	profileURL, err := ProfileURL(platform, handle)
	if err != nil {
		return models.RawMetrics{}, err
	}

	if s.visited.Add(profileURL) {
		s.logger.Info("[scraper] First visit to %s", profileURL)
	}

	var html string
	err = s.retry.Do(ctx, "scrape-"+string(platform), func() error {
		var fetchErr error
		html, fetchErr = s.fetcher.Fetch(ctx, profileURL)
		return fetchErr
	})
	if err != nil {
		return models.RawMetrics{}, fmt.Errorf("%w: %v", models.ErrExternalService, err)
	}

	metrics, err := ExtractMetrics(html)
	if err != nil {
		s.logger.Warn("[scraper] %s: %v", profileURL, err)
		return models.RawMetrics{}, err
	}

	s.logger.Debug("[scraper] %s: followers=%d likes=%d comments=%d",
		profileURL, metrics.Followers, metrics.Likes, metrics.Comments)
	return metrics, nil
}

// ProfileURL returns the public profile page for handle.
func ProfileURL(platform models.Platform, handle string) (string, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return "", fmt.Errorf("%w: empty handle", models.ErrMalformedInput)
	}

	escaped := url.PathEscape(handle)
	switch platform {
	case models.TikTok:
		return "https://www.tiktok.com/@" + escaped, nil
	case models.Instagram:
		return "https://www.instagram.com/" + escaped + "/", nil
	default:
		return "", fmt.Errorf("%w: no scraper for %s", models.ErrUnsupportedPlatform, platform)
	}
}
