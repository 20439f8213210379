package models

import (
	"fmt"
	"strings"
)

// Platform identifies a social network.
type Platform string

const (
	Twitter   Platform = "twitter"
	Facebook  Platform = "facebook"
	Instagram Platform = "instagram"
	LinkedIn  Platform = "linkedin"
	TikTok    Platform = "tiktok"
)

// AllPlatforms lists every platform the service knows about.
var AllPlatforms = []Platform{Twitter, Facebook, Instagram, LinkedIn, TikTok}

// ParsePlatform normalises s and returns the matching Platform.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPlatforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, s)
}

func (p Platform) String() string {
	return string(p)
}
