package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"social-analytics/models"
)

const twitterTimelineSize = 100

// Twitter talks to the X API v2 with an OAuth 2.0 user-context token.
type Twitter struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewTwitter(baseURL, token string, client *http.Client) *Twitter {
	return &Twitter{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    client,
	}
}

func (t *Twitter) Platform() models.Platform { return models.Twitter }

type twitterUserResponse struct {
	Data struct {
		ID            string `json:"id"`
		Username      string `json:"username"`
		PublicMetrics struct {
			FollowersCount int `json:"followers_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

type twitterTimelineResponse struct {
	Data []struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
			LikeCount    int `json:"like_count"`
		} `json:"public_metrics"`
		Entities struct {
			Hashtags []struct {
				Tag string `json:"tag"`
			} `json:"hashtags"`
			Mentions []struct {
				Username string `json:"username"`
			} `json:"mentions"`
		} `json:"entities"`
	} `json:"data"`
}

// FetchMetrics reads the follower count and the latest timeline page.
// Retweets are reported as shares and replies as comments.
func (t *Twitter) FetchMetrics(ctx context.Context, handle string) (*models.PlatformData, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return nil, fmt.Errorf("%w: empty twitter handle", models.ErrMalformedInput)
	}

	var user twitterUserResponse
	userURL := fmt.Sprintf("%s/2/users/by/username/%s?user.fields=public_metrics", t.baseURL, url.PathEscape(handle))
	if err := apiRequest(ctx, t.http, http.MethodGet, userURL, t.token, nil, "", &user); err != nil {
		return nil, fmt.Errorf("twitter user %s: %w", handle, err)
	}
	if user.Data.ID == "" {
		return nil, fmt.Errorf("twitter user %s: %w", handle, models.ErrNotFound)
	}

	var timeline twitterTimelineResponse
	q := url.Values{}
	q.Set("max_results", fmt.Sprint(twitterTimelineSize))
	q.Set("tweet.fields", "created_at,public_metrics,entities")
	timelineURL := fmt.Sprintf("%s/2/users/%s/tweets?%s", t.baseURL, url.PathEscape(user.Data.ID), q.Encode())
	if err := apiRequest(ctx, t.http, http.MethodGet, timelineURL, t.token, nil, "", &timeline); err != nil {
		return nil, fmt.Errorf("twitter timeline %s: %w", handle, err)
	}

	data := &models.PlatformData{
		Source:  models.SourceAPI,
		Metrics: models.RawMetrics{Followers: user.Data.PublicMetrics.FollowersCount},
		Posts:   make([]models.RawPost, 0, len(timeline.Data)),
	}
	for _, tw := range timeline.Data {
		post := models.RawPost{
			ID:            tw.ID,
			CreatedAt:     tw.CreatedAt,
			Text:          tw.Text,
			FavoriteCount: tw.PublicMetrics.LikeCount,
			RetweetCount:  tw.PublicMetrics.RetweetCount,
		}
		for _, h := range tw.Entities.Hashtags {
			post.Hashtags = append(post.Hashtags, h.Tag)
		}
		for _, m := range tw.Entities.Mentions {
			post.Mentions = append(post.Mentions, m.Username)
		}
		data.Posts = append(data.Posts, post)

		data.Metrics.Likes += tw.PublicMetrics.LikeCount
		data.Metrics.Comments += tw.PublicMetrics.ReplyCount
		data.Metrics.Shares += tw.PublicMetrics.RetweetCount
	}
	return data, nil
}

// Post publishes a tweet.
func (t *Twitter) Post(ctx context.Context, message string) error {
	body, err := jsonBody(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("twitter post: %w", err)
	}
	if err := apiRequest(ctx, t.http, http.MethodPost, t.baseURL+"/2/tweets", t.token, body, "application/json", nil); err != nil {
		return fmt.Errorf("twitter post: %w", err)
	}
	return nil
}
