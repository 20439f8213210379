package services

import (
	"strings"
	"time"
	"unicode"

	"social-analytics/models"
	"social-analytics/utils"
)

// timestampLayouts are tried in order when parsing a RawPost's CreatedAt.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700", // Graph API created_time
	time.RubyDate,              // legacy Twitter created_at
	"2006-01-02 15:04:05",
}

// Cleaner transforms RawPosts into validated PostRecords.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean normalises raw posts, keeping source order. Posts repeating an
// earlier ID are dropped. Posts with an unparsable timestamp are kept with a
// zero CreatedAt so they still count toward totals and sentiment.
func (c *Cleaner) Clean(raw []models.RawPost) []models.PostRecord {
	seen := utils.NewKeySet()
	result := make([]models.PostRecord, 0, len(raw))

	for _, r := range raw {
		id := strings.TrimSpace(r.ID)
		if id != "" && !seen.Add(id) {
			c.logger.Debug("[cleaner] Duplicate post skipped: %s", id)
			continue
		}

		createdAt, ok := parseTimestamp(r.CreatedAt)
		if !ok {
			c.logger.Warn("[cleaner] Post %q has malformed timestamp %q, timing fields ignored", id, r.CreatedAt)
		}

		result = append(result, models.PostRecord{
			ID:            id,
			CreatedAt:     createdAt,
			Text:          normaliseText(r.Text),
			FavoriteCount: nonNegative(r.FavoriteCount),
			RetweetCount:  nonNegative(r.RetweetCount),
			Hashtags:      normaliseTokens(r.Hashtags, "#"),
			Mentions:      normaliseTokens(r.Mentions, "@"),
		})
	}

	c.logger.Debug("[cleaner] Cleaned %d → %d posts (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// normaliseTokens lowercases, strips the prefix and removes repeats within a
// single post, keeping first-occurrence order.
func normaliseTokens(tokens []string, prefix string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tok), prefix))
		if tok == "" {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
