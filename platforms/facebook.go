package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"social-analytics/models"
)

var (
	hashtagRegexp = regexp.MustCompile(`#(\w+)`)
	mentionRegexp = regexp.MustCompile(`@(\w+)`)
)

// Facebook talks to the Graph API with a page access token.
type Facebook struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewFacebook(baseURL, token string, client *http.Client) *Facebook {
	return &Facebook{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    client,
	}
}

func (f *Facebook) Platform() models.Platform { return models.Facebook }

type facebookPageResponse struct {
	ID             string `json:"id"`
	FollowersCount int    `json:"followers_count"`
	FanCount       int    `json:"fan_count"`
}

type facebookSummary struct {
	Summary struct {
		TotalCount int `json:"total_count"`
	} `json:"summary"`
}

type facebookPostsResponse struct {
	Data []struct {
		ID          string          `json:"id"`
		Message     string          `json:"message"`
		CreatedTime string          `json:"created_time"`
		Likes       facebookSummary `json:"likes"`
		Comments    facebookSummary `json:"comments"`
		Shares      struct {
			Count int `json:"count"`
		} `json:"shares"`
	} `json:"data"`
}

// FetchMetrics reads the page follower count and its recent posts. Hashtags
// and mentions are taken from the post text.
func (f *Facebook) FetchMetrics(ctx context.Context, handle string) (*models.PlatformData, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, fmt.Errorf("%w: empty facebook page", models.ErrMalformedInput)
	}

	var page facebookPageResponse
	pageURL := fmt.Sprintf("%s/%s?fields=id,followers_count,fan_count", f.baseURL, url.PathEscape(handle))
	if err := apiRequest(ctx, f.http, http.MethodGet, pageURL, f.token, nil, "", &page); err != nil {
		return nil, fmt.Errorf("facebook page %s: %w", handle, err)
	}

	q := url.Values{}
	q.Set("fields", "id,message,created_time,likes.summary(true).limit(0),comments.summary(true).limit(0),shares")
	q.Set("limit", "100")
	var posts facebookPostsResponse
	postsURL := fmt.Sprintf("%s/%s/posts?%s", f.baseURL, url.PathEscape(handle), q.Encode())
	if err := apiRequest(ctx, f.http, http.MethodGet, postsURL, f.token, nil, "", &posts); err != nil {
		return nil, fmt.Errorf("facebook posts %s: %w", handle, err)
	}

	followers := page.FollowersCount
	if followers == 0 {
		followers = page.FanCount
	}

	data := &models.PlatformData{
		Source:  models.SourceAPI,
		Metrics: models.RawMetrics{Followers: followers},
		Posts:   make([]models.RawPost, 0, len(posts.Data)),
	}
	for _, p := range posts.Data {
		data.Posts = append(data.Posts, models.RawPost{
			ID:            p.ID,
			CreatedAt:     p.CreatedTime,
			Text:          p.Message,
			FavoriteCount: p.Likes.Summary.TotalCount,
			RetweetCount:  p.Shares.Count,
			Hashtags:      submatches(hashtagRegexp, p.Message),
			Mentions:      submatches(mentionRegexp, p.Message),
		})
		data.Metrics.Likes += p.Likes.Summary.TotalCount
		data.Metrics.Comments += p.Comments.Summary.TotalCount
		data.Metrics.Shares += p.Shares.Count
	}
	return data, nil
}

// Post publishes to the token owner's feed.
func (f *Facebook) Post(ctx context.Context, message string) error {
	form := url.Values{}
	form.Set("message", message)
	err := apiRequest(ctx, f.http, http.MethodPost, f.baseURL+"/me/feed", f.token,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil)
	if err != nil {
		return fmt.Errorf("facebook post: %w", err)
	}
	return nil
}

func submatches(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
