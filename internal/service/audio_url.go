package service

import (
	"fmt"
	"regexp"
	"strings"
)

// Accepted source shapes: YouTube watch/short/shortlink with an 11-character
// video id, or a SoundCloud user/track page.
var (
	youtubeRe    = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/shorts/)([a-zA-Z0-9_-]{11})`)
	soundcloudRe = regexp.MustCompile(`^(?:https?://)?(?:www\.)?soundcloud\.com/[\w-]+/[\w-]+/?$`)
)

// NormalizeAudioURL validates a source URL and returns its canonical form.
//
// YouTube URLs collapse to https://www.youtube.com/watch?v=<id>, dropping
// every tracking parameter, so lookups are plain equality instead of the
// prefix matching the stored-URL-varies problem would otherwise need.
// SoundCloud URLs keep their exact form minus a trailing slash.
func NormalizeAudioURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("audio url is required")
	}

	if m := youtubeRe.FindStringSubmatch(trimmed); m != nil {
		return "https://www.youtube.com/watch?v=" + m[1], nil
	}

	if soundcloudRe.MatchString(trimmed) {
		return strings.TrimSuffix(trimmed, "/"), nil
	}

	return "", fmt.Errorf("only YouTube and SoundCloud URLs are accepted")
}

// IsYouTubeURL reports whether the raw URL matches the YouTube shape. YouTube
// jobs ride the low priority queue.
func IsYouTubeURL(raw string) bool {
	return youtubeRe.MatchString(strings.TrimSpace(raw))
}
