package platforms

import (
	"net/http"

	"social-analytics/config"
	"social-analytics/models"
	"social-analytics/utils"
)

// Registry maps every known platform to its client. It is built once at
// startup and never returns a nil client.
type Registry struct {
	clients map[models.Platform]Client
}

// NewRegistry builds the clients described by creds. Platforms with missing
// credentials get an Unsupported client; Instagram and TikTok read metrics
// through scraper.
func NewRegistry(creds config.PlatformCredentials, httpClient *http.Client, scraper ProfileScraper, logger *utils.Logger) *Registry {
	r := &Registry{clients: make(map[models.Platform]Client, len(models.AllPlatforms))}

	if creds.Twitter.Complete() {
		r.clients[models.Twitter] = NewTwitter(creds.Twitter.BaseURL, creds.Twitter.AccessToken, httpClient)
	} else {
		logger.Warn("[platforms] Twitter credentials are missing, twitter is unsupported")
		r.clients[models.Twitter] = NewUnsupported(models.Twitter, "credentials missing")
	}

	if creds.Facebook.Complete() {
		r.clients[models.Facebook] = NewFacebook(creds.Facebook.BaseURL, creds.Facebook.AccessToken, httpClient)
	} else {
		logger.Warn("[platforms] Facebook access token is missing, facebook is unsupported")
		r.clients[models.Facebook] = NewUnsupported(models.Facebook, "credentials missing")
	}

	if scraper != nil {
		r.clients[models.Instagram] = NewInstagram(scraper)
		r.clients[models.TikTok] = NewTikTok(scraper)
	} else {
		r.clients[models.Instagram] = NewUnsupported(models.Instagram, "scraper disabled")
		r.clients[models.TikTok] = NewUnsupported(models.TikTok, "scraper disabled")
	}

	r.clients[models.LinkedIn] = NewLinkedIn()

	return r
}

// Client returns the client for p, or an Unsupported client for unknown
// platforms.
func (r *Registry) Client(p models.Platform) Client {
	if c, ok := r.clients[p]; ok {
		return c
	}
	return NewUnsupported(p, "unknown platform")
}

// Active lists the platforms backed by a real integration, in
// models.AllPlatforms order.
func (r *Registry) Active() []models.Platform {
	var active []models.Platform
	for _, p := range models.AllPlatforms {
		if _, unsupported := r.clients[p].(*Unsupported); !unsupported {
			active = append(active, p)
		}
	}
	return active
}
