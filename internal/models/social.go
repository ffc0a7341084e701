package models

import (
	"fmt"
	"strings"
)

// Platform is a social network a post can be generated for.
type Platform string

const (
	Instagram Platform = "instagram"
	Facebook  Platform = "facebook"
	LinkedIn  Platform = "linkedin"
	Twitter   Platform = "twitter"
)

// PlatformInfo is static display metadata. MaxLength is informational only.
type PlatformInfo struct {
	Name        string
	Icon        string
	Description string
	MaxLength   int
	MaxHashtags int
	Color       string
}

var platformInfo = map[Platform]PlatformInfo{
	Instagram: {Name: "Instagram", Icon: "📸", Description: "Visual posts with hashtags", MaxLength: 2200, MaxHashtags: 30, Color: "#C13584"},
	Facebook:  {Name: "Facebook", Icon: "👥", Description: "Longer, conversational posts", MaxLength: 63206, MaxHashtags: 50, Color: "#2563EB"},
	LinkedIn:  {Name: "LinkedIn", Icon: "💼", Description: "Professional tone", MaxLength: 3000, MaxHashtags: 30, Color: "#1D4ED8"},
	Twitter:   {Name: "Twitter/X", Icon: "🐦", Description: "Short and punchy", MaxLength: 280, MaxHashtags: 10, Color: "#000000"},
}

// Platforms returns every platform in display order.
func Platforms() []Platform {
	return []Platform{Instagram, Facebook, LinkedIn, Twitter}
}

// DefaultPlatforms is the initial selection.
func DefaultPlatforms() []Platform {
	return []Platform{Instagram, Facebook}
}

// ParsePlatform accepts a platform tag in any case; "x" is an alias for twitter.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if p == "x" {
		p = Twitter
	}
	if _, ok := platformInfo[p]; !ok {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// Info returns the static metadata of p.
func (p Platform) Info() PlatformInfo {
	return platformInfo[p]
}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	_, ok := platformInfo[p]
	return ok
}

// SocialStatus is the lifecycle state of a social post generation job.
type SocialStatus string

const (
	SocialProcessing SocialStatus = "processing"
	SocialCompleted  SocialStatus = "completed"
	SocialFailed     SocialStatus = "failed"
)

// Terminal reports whether polling can stop.
func (s SocialStatus) Terminal() bool {
	return s == SocialCompleted || s == SocialFailed
}

// SocialPost is the generated content for one platform.
type SocialPost struct {
	Platform       Platform `json:"platform"`
	Caption        string   `json:"caption"`
	Hashtags       []string `json:"hashtags"`
	CallToAction   string   `json:"call_to_action"`
	ImagePath      string   `json:"image_path,omitempty"`
	CharacterCount int      `json:"character_count"`
	HashtagCount   int      `json:"hashtag_count"`
	Timestamp      float64  `json:"timestamp,omitempty"`
}

// FullText joins caption, call to action and hashtags the way it would be pasted.
func (p SocialPost) FullText() string {
	var b strings.Builder
	b.WriteString(p.Caption)
	if p.CallToAction != "" {
		b.WriteString("\n\n")
		b.WriteString(p.CallToAction)
	}
	if len(p.Hashtags) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(p.Hashtags, " "))
	}
	return b.String()
}

// OverLimit reports whether the caption exceeds the platform's display limit.
func (p SocialPost) OverLimit() bool {
	limit := p.Platform.Info().MaxLength
	return limit > 0 && len([]rune(p.Caption)) > limit
}
