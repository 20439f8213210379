package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-analytics/config"
	"social-analytics/models"
	"social-analytics/utils"
)

func testHTTPClient() *http.Client {
	return NewHTTPClient(0, 5*time.Second, utils.NewNopLogger())
}

func TestTwitterFetchMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/2/users/by/username/nasa":
			_, _ = io.WriteString(w, `{"data":{"id":"11","username":"nasa","public_metrics":{"followers_count":1000}}}`)
		case "/2/users/11/tweets":
			assert.Equal(t, "100", r.URL.Query().Get("max_results"))
			_, _ = io.WriteString(w, `{"data":[
				{"id":"1","text":"Launch day #space","created_at":"2024-05-01T09:00:00Z",
				 "public_metrics":{"like_count":10,"retweet_count":4,"reply_count":2},
				 "entities":{"hashtags":[{"tag":"space"}],"mentions":[{"username":"esa"}]}},
				{"id":"2","text":"Quiet day","created_at":"2024-05-02T14:00:00Z",
				 "public_metrics":{"like_count":5,"retweet_count":1,"reply_count":0}}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tw := NewTwitter(srv.URL, "tok", testHTTPClient())
	data, err := tw.FetchMetrics(context.Background(), "@nasa")
	require.NoError(t, err)

	assert.Equal(t, models.SourceAPI, data.Source)
	assert.Equal(t, models.RawMetrics{Followers: 1000, Likes: 15, Comments: 2, Shares: 5}, data.Metrics)
	require.Len(t, data.Posts, 2)
	assert.Equal(t, []string{"space"}, data.Posts[0].Hashtags)
	assert.Equal(t, []string{"esa"}, data.Posts[0].Mentions)
	assert.Equal(t, "2024-05-02T14:00:00Z", data.Posts[1].CreatedAt)
}

func TestTwitterPost(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":"99","text":"hello"}}`)
	}))
	defer srv.Close()

	tw := NewTwitter(srv.URL, "tok", testHTTPClient())
	require.NoError(t, tw.Post(context.Background(), "hello"))
	assert.Equal(t, "hello", got["text"])
}

func TestTwitterPostRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"title":"Forbidden"}`)
	}))
	defer srv.Close()

	tw := NewTwitter(srv.URL, "tok", testHTTPClient())
	err := tw.Post(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrExternalService)
	assert.Contains(t, err.Error(), "403")
}

func TestFacebookFetchMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/acme":
			_, _ = io.WriteString(w, `{"id":"acme","followers_count":0,"fan_count":250}`)
		case "/acme/posts":
			_, _ = io.WriteString(w, `{"data":[
				{"id":"p1","message":"New store #opening with @bob","created_time":"2024-03-01T10:00:00+0000",
				 "likes":{"summary":{"total_count":20}},"comments":{"summary":{"total_count":3}},"shares":{"count":2}}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fb := NewFacebook(srv.URL, "tok", testHTTPClient())
	data, err := fb.FetchMetrics(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, models.RawMetrics{Followers: 250, Likes: 20, Comments: 3, Shares: 2}, data.Metrics)
	require.Len(t, data.Posts, 1)
	assert.Equal(t, []string{"opening"}, data.Posts[0].Hashtags)
	assert.Equal(t, []string{"bob"}, data.Posts[0].Mentions)
}

func TestFacebookPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me/feed", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "hi there", r.PostForm.Get("message"))
		_, _ = io.WriteString(w, `{"id":"1_2"}`)
	}))
	defer srv.Close()

	fb := NewFacebook(srv.URL, "tok", testHTTPClient())
	require.NoError(t, fb.Post(context.Background(), "hi there"))
}

type stubScraper struct {
	metrics models.RawMetrics
	err     error
}

func (s stubScraper) Scrape(context.Context, models.Platform, string) (models.RawMetrics, error) {
	return s.metrics, s.err
}

func TestRegistryWithoutCredentials(t *testing.T) {
	reg := NewRegistry(config.PlatformCredentials{}, testHTTPClient(), stubScraper{}, utils.NewNopLogger())

	for _, p := range []models.Platform{models.Twitter, models.Facebook, models.LinkedIn, "myspace"} {
		err := reg.Client(p).Post(context.Background(), "hello")
		assert.ErrorIs(t, err, models.ErrUnsupportedPlatform, p)
	}

	assert.Equal(t, []models.Platform{models.Instagram, models.TikTok}, reg.Active())
}

func TestRegistryWithCredentials(t *testing.T) {
	creds := config.PlatformCredentials{
		Twitter:  config.TwitterCredentials{AccessToken: "t", BaseURL: "http://x"},
		Facebook: config.FacebookCredentials{AccessToken: "f", BaseURL: "http://y"},
	}
	reg := NewRegistry(creds, testHTTPClient(), nil, utils.NewNopLogger())

	assert.IsType(t, &Twitter{}, reg.Client(models.Twitter))
	assert.IsType(t, &Facebook{}, reg.Client(models.Facebook))
	assert.IsType(t, &Unsupported{}, reg.Client(models.Instagram))
	assert.Equal(t, []models.Platform{models.Twitter, models.Facebook}, reg.Active())
}

func TestScrapedClient(t *testing.T) {
	ig := NewInstagram(stubScraper{metrics: models.RawMetrics{Followers: 42}})

	data, err := ig.FetchMetrics(context.Background(), "someone")
	require.NoError(t, err)
	assert.Equal(t, models.SourceScraper, data.Source)
	assert.Equal(t, 42, data.Metrics.Followers)

	err = ig.Post(context.Background(), "hello")
	assert.True(t, errors.Is(err, models.ErrUnsupportedPlatform))
}
