package platforms

import (
	"context"
	"fmt"

	"social-analytics/models"
)

// Client is the per-platform capability to read account metrics and to
// publish a post.
type Client interface {
	Platform() models.Platform
	FetchMetrics(ctx context.Context, handle string) (*models.PlatformData, error)
	Post(ctx context.Context, message string) error
}

// ProfileScraper reads public profile counters when no API client exists.
type ProfileScraper interface {
	Scrape(ctx context.Context, platform models.Platform, handle string) (models.RawMetrics, error)
}

// Unsupported is the client for platforms without a working integration.
// Every call fails with models.ErrUnsupportedPlatform.
type Unsupported struct {
	platform models.Platform
	reason   string
}

func NewUnsupported(platform models.Platform, reason string) *Unsupported {
	return &Unsupported{platform: platform, reason: reason}
}

func (u *Unsupported) Platform() models.Platform { return u.platform }

func (u *Unsupported) FetchMetrics(context.Context, string) (*models.PlatformData, error) {
	return nil, u.err()
}

func (u *Unsupported) Post(context.Context, string) error {
	return u.err()
}

func (u *Unsupported) err() error {
	return fmt.Errorf("%w: %s (%s)", models.ErrUnsupportedPlatform, u.platform, u.reason)
}

// Scraped reads metrics from the public profile page and cannot post.
type Scraped struct {
	platform models.Platform
	scraper  ProfileScraper
}

// NewInstagram returns the Instagram client. Posting is not available.
func NewInstagram(scraper ProfileScraper) *Scraped {
	return &Scraped{platform: models.Instagram, scraper: scraper}
}

// NewTikTok returns the TikTok client. Posting is not available.
func NewTikTok(scraper ProfileScraper) *Scraped {
	return &Scraped{platform: models.TikTok, scraper: scraper}
}

// NewLinkedIn returns the LinkedIn client, which supports neither metrics
// nor posting.
func NewLinkedIn() *Unsupported {
	return NewUnsupported(models.LinkedIn, "no public metrics or posting integration")
}

func (s *Scraped) Platform() models.Platform { return s.platform }

func (s *Scraped) FetchMetrics(ctx context.Context, handle string) (*models.PlatformData, error) {
	metrics, err := s.scraper.Scrape(ctx, s.platform, handle)
	if err != nil {
		return nil, err
	}
	return &models.PlatformData{Source: models.SourceScraper, Metrics: metrics}, nil
}

func (s *Scraped) Post(context.Context, string) error {
	return fmt.Errorf("%w: posting to %s", models.ErrUnsupportedPlatform, s.platform)
}
