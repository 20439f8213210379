package profile

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"social-analytics/models"
)

// counterRegexp matches "1,234 Followers", "1.2M Likes", "56 Following" ...
var counterRegexp = regexp.MustCompile(`(?i)(\d[\d.,]*)\s*([kmb])?\s+(followers|following|likes|comments|posts)\b`)

// ExtractMetrics reads follower, like and comment counters from a rendered
// profile page. It returns ErrExtractionUnsupported when no follower count
// is present.
func ExtractMetrics(html string) (models.RawMetrics, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.RawMetrics{}, fmt.Errorf("parse html: %w", err)
	}

	counters := make(map[string]int)

	// TikTok renders its counters in tagged elements.
	for label, selector := range map[string]string{
		"followers": `[data-e2e="followers-count"]`,
		"likes":     `[data-e2e="likes-count"]`,
	} {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			if n, ok := parseCount(text, ""); ok {
				counters[label] = n
			}
		}
	}

	// Instagram and TikTok both summarise counters in meta descriptions.
	for _, selector := range []string{
		`meta[property="og:description"]`,
		`meta[name="description"]`,
		`meta[name="twitter:description"]`,
	} {
		content, exists := doc.Find(selector).Attr("content")
		if !exists {
			continue
		}
		for _, m := range counterRegexp.FindAllStringSubmatch(content, -1) {
			label := strings.ToLower(m[3])
			if _, seen := counters[label]; seen {
				continue
			}
			if n, ok := parseCount(m[1], m[2]); ok {
				counters[label] = n
			}
		}
	}

	followers, ok := counters["followers"]
	if !ok {
		return models.RawMetrics{}, ErrExtractionUnsupported
	}
	return models.RawMetrics{
		Followers: followers,
		Likes:     counters["likes"],
		Comments:  counters["comments"],
	}, nil
}

// parseCount turns "1,234", "1.2" + "M" or "25.6K" into an integer.
func parseCount(number, suffix string) (int, bool) {
	number = strings.TrimSpace(number)
	if suffix == "" && number != "" {
		last := number[len(number)-1]
		if strings.ContainsRune("kKmMbB", rune(last)) {
			suffix = string(last)
			number = number[:len(number)-1]
		}
	}

	number = strings.ReplaceAll(number, ",", "")
	v, err := strconv.ParseFloat(number, 64)
	if err != nil || v < 0 {
		return 0, false
	}

	switch strings.ToLower(suffix) {
	case "k":
		v *= 1e3
	case "m":
		v *= 1e6
	case "b":
		v *= 1e9
	}
	return int(math.Round(v)), true
}
