package services

import (
	"math"
	"sort"

	"social-analytics/models"
	"social-analytics/utils"
)

const topK = 5

// Aggregator computes MetricsResults from account snapshots. It holds no
// mutable state and is safe for concurrent use.
type Aggregator struct {
	scorer SentimentScorer
	logger *utils.Logger
}

// NewAggregator creates an Aggregator. A nil logger discards output.
func NewAggregator(scorer SentimentScorer, logger *utils.Logger) *Aggregator {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Aggregator{scorer: scorer, logger: logger}
}

// Compute summarises snap. It never fails: an empty post list yields a
// neutral result that still carries the raw follower count.
func (a *Aggregator) Compute(snap models.AccountSnapshot) *models.MetricsResult {
	result := &models.MetricsResult{
		Followers:   snap.Followers,
		TopHashtags: []models.TokenCount{},
		TopMentions: []models.TokenCount{},
	}

	posts := snap.Posts
	if len(posts) == 0 {
		return result
	}

	sentiments := make([]float64, len(posts))
	for i, p := range posts {
		sentiments[i] = a.score(p)
		result.Likes += nonNegative(p.FavoriteCount)
		result.Retweets += nonNegative(p.RetweetCount)
	}
	result.AvgSentiment, result.SentimentStd = meanStd(sentiments)

	result.TopHashtags = topTokens(posts, func(p models.PostRecord) []string { return p.Hashtags })
	result.TopMentions = topTokens(posts, func(p models.PostRecord) []string { return p.Mentions })

	result.PostFrequency = postFrequency(posts)
	result.BestPostingTime = bestPostingHour(posts)

	rates := engagementSeries(posts, snap.Followers)
	result.EngagementRate, _ = meanStd(rates)
	result.EngagementTrend = slope(rates)

	return result
}

// score returns 0 for a post the scorer rejects; the post still counts
// toward N when averaging.
func (a *Aggregator) score(p models.PostRecord) (polarity float64) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("[aggregator] Sentiment scorer panicked on post %q: %v", p.ID, r)
			polarity = 0
		}
	}()

	s, err := a.scorer.Score(p.Text)
	if err != nil || math.IsNaN(s) {
		a.logger.Debug("[aggregator] Post %q scored neutral: %v", p.ID, err)
		return 0
	}
	return clamp(s, -1, 1)
}

// meanStd returns the arithmetic mean and the population standard deviation.
func meanStd(xs []float64) (float64, float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}

// topTokens counts each token once per post and returns the topK most
// frequent, ties broken by first appearance.
func topTokens(posts []models.PostRecord, tokens func(models.PostRecord) []string) []models.TokenCount {
	counts := make(map[string]int)
	var order []string

	for _, p := range posts {
		inPost := make(map[string]struct{})
		for _, tok := range tokens(p) {
			if tok == "" {
				continue
			}
			if _, dup := inPost[tok]; dup {
				continue
			}
			inPost[tok] = struct{}{}
			if _, known := counts[tok]; !known {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	out := make([]models.TokenCount, 0, len(order))
	for _, tok := range order {
		out = append(out, models.TokenCount{Token: tok, Count: counts[tok]})
	}
	// Stable over first-appearance order, so equal counts keep that order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}

// postFrequency is posts per day over the observed window, N / (span_days + 1).
func postFrequency(posts []models.PostRecord) float64 {
	var first, last int64
	var found bool
	for _, p := range posts {
		if p.CreatedAt.IsZero() {
			continue
		}
		ts := p.CreatedAt.Unix()
		if !found || ts < first {
			first = ts
		}
		if !found || ts > last {
			last = ts
		}
		found = true
	}

	var spanDays int64
	if found {
		spanDays = (last - first) / int64(24*60*60)
	}
	return float64(len(posts)) / float64(spanDays+1)
}

// bestPostingHour is the modal UTC hour of day, smallest hour on ties.
func bestPostingHour(posts []models.PostRecord) int {
	var hours [24]int
	for _, p := range posts {
		if p.CreatedAt.IsZero() {
			continue
		}
		hours[p.CreatedAt.UTC().Hour()]++
	}

	best := 0
	for h := 1; h < len(hours); h++ {
		if hours[h] > hours[best] {
			best = h
		}
	}
	return best
}

// engagementSeries is the per-post engagement rate in percent, in input order.
func engagementSeries(posts []models.PostRecord, followers int) []float64 {
	denom := float64(followerFloor(followers))
	rates := make([]float64, len(posts))
	for i, p := range posts {
		interactions := nonNegative(p.FavoriteCount) + nonNegative(p.RetweetCount)
		rates[i] = float64(interactions) / denom * 100
	}
	return rates
}

// slope fits y = m*x + b by least squares against x = 0..n-1 and returns m.
func slope(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}

	meanX := float64(n-1) / 2
	meanY, _ := meanStd(ys)

	var num, den float64
	for i, y := range ys {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	return num / den
}

func followerFloor(followers int) int {
	if followers < 1 {
		return 1
	}
	return followers
}
