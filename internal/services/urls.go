package services

import (
	"fmt"
	"strings"
)

// StaticBaseURL strips a trailing "/api" from the API root. Generated media is served beside it.
func StaticBaseURL(apiURL string) string {
	base := strings.TrimRight(apiURL, "/")
	return strings.TrimSuffix(base, "/api")
}

// StaticImageURL resolves a bullet point image path.
//
// Absolute URLs are kept, rooted paths are joined to static, and bare file names live under /static/img/.
func StaticImageURL(static, imagePath string) string {
	switch {
	case imagePath == "":
		return ""
	case strings.HasPrefix(imagePath, "http://"), strings.HasPrefix(imagePath, "https://"):
		return imagePath
	case strings.HasPrefix(imagePath, "/"):
		return static + imagePath
	default:
		return static + "/static/img/" + imagePath
	}
}

// ResolveImageURL joins a backend relative image_url to static.
func ResolveImageURL(static, imageURL string) string {
	if strings.HasPrefix(imageURL, "http://") || strings.HasPrefix(imageURL, "https://") {
		return imageURL
	}
	if !strings.HasPrefix(imageURL, "/") {
		imageURL = "/" + imageURL
	}
	return static + imageURL
}

// FallbackImageURL is the placeholder used when image generation fails for a slide.
func FallbackImageURL(index int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%d/800/450", index)
}

// CacheBust appends a t= query parameter so clients refetch a rewritten file.
func CacheBust(url string, version int64) string {
	if url == "" || version == 0 {
		return url
	}
	if i := strings.Index(url, "?t="); i >= 0 {
		url = url[:i]
	} else if i := strings.Index(url, "&t="); i >= 0 {
		url = url[:i]
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%st=%d", url, sep, version)
}
