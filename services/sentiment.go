package services

import (
	"fmt"
	"strings"
	"unicode"

	"social-analytics/models"
)

// SentimentScorer turns a post's text into a polarity in [-1, 1].
type SentimentScorer interface {
	Score(text string) (float64, error)
}

// LexiconScorer is a word-list polarity scorer. Each known word carries a
// valence; a preceding negator flips and dampens it, a preceding intensifier
// scales it. The polarity is the mean valence of the scored words.
type LexiconScorer struct {
	lexicon      map[string]float64
	negators     map[string]struct{}
	intensifiers map[string]float64
}

// NewLexiconScorer returns a scorer loaded with the built-in English lexicon.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{
		lexicon:      defaultLexicon,
		negators:     defaultNegators,
		intensifiers: defaultIntensifiers,
	}
}

// Score returns ErrMalformedInput for text with no words.
func (s *LexiconScorer) Score(text string) (float64, error) {
	words := tokenize(text)
	if len(words) == 0 {
		return 0, fmt.Errorf("%w: empty text", models.ErrMalformedInput)
	}

	var sum float64
	var scored int
	for i, w := range words {
		valence, ok := s.lexicon[w]
		if !ok {
			continue
		}
		if i > 0 {
			prev := words[i-1]
			if mult, ok := s.intensifiers[prev]; ok {
				valence *= mult
				if i > 1 {
					prev = words[i-2]
				}
			}
			if _, ok := s.negators[prev]; ok {
				valence *= -0.5
			}
		}
		sum += valence
		scored++
	}

	if scored == 0 {
		return 0, nil
	}
	return clamp(sum/float64(scored), -1, 1), nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var defaultNegators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "don't": {}, "doesn't": {}, "didn't": {},
	"isn't": {}, "wasn't": {}, "aren't": {}, "can't": {}, "won't": {}, "nothing": {},
}

var defaultIntensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "so": 1.2, "extremely": 1.5, "super": 1.3,
	"incredibly": 1.5, "totally": 1.2, "slightly": 0.6, "somewhat": 0.7,
}

var defaultLexicon = map[string]float64{
	// positive
	"good": 0.7, "great": 0.8, "excellent": 1.0, "amazing": 0.6, "awesome": 1.0,
	"love": 0.5, "loved": 0.7, "loving": 0.6, "like": 0.2, "liked": 0.3,
	"happy": 0.8, "glad": 0.5, "excited": 0.4, "exciting": 0.3, "best": 1.0,
	"better": 0.5, "nice": 0.6, "fantastic": 0.4, "wonderful": 1.0, "beautiful": 0.85,
	"fun": 0.3, "cool": 0.35, "win": 0.8, "winning": 0.5, "success": 0.3,
	"successful": 0.75, "thanks": 0.2, "thank": 0.2, "grateful": 0.6, "proud": 0.8,
	"perfect": 1.0, "brilliant": 0.9, "enjoy": 0.4, "enjoyed": 0.4, "positive": 0.23,
	"fresh": 0.3, "easy": 0.43, "incredible": 0.9, "congrats": 0.6, "congratulations": 0.6,
	// negative
	"bad": -0.7, "terrible": -1.0, "awful": -1.0, "horrible": -1.0, "worst": -1.0,
	"worse": -0.4, "hate": -0.8, "hated": -0.9, "sad": -0.5, "angry": -0.5,
	"poor": -0.4, "disappointing": -0.6, "disappointed": -0.75, "fail": -0.5, "failed": -0.5,
	"failure": -0.3, "broken": -0.4, "ugly": -0.7, "boring": -1.0, "annoying": -0.8,
	"wrong": -0.5, "problem": -0.2, "issue": -0.1, "slow": -0.3, "lost": -0.2,
	"lose": -0.2, "sorry": -0.5, "stupid": -0.8, "useless": -0.5, "negative": -0.3,
	"difficult": -0.5, "hard": -0.3, "pain": -0.6, "scary": -0.5, "crash": -0.4,
}
