package organizer

import (
	"net/url"
	"regexp"
	"strings"
)

// Embed types.
const (
	EmbedYouTube = "youtube"
	EmbedFile    = "file"
)

// Embed describes how a link can be played inline.
type Embed struct {
	Type string `json:"type"`
	Src  string `json:"src"`
}

var videoFileRe = regexp.MustCompile(`(?i)\.(mp4|webm)$`)

// EmbedInfo returns the inline player for rawURL: a privacy-enhanced
// YouTube embed or the video file itself.
func EmbedInfo(rawURL string) (Embed, bool) {
	if v := youTubeID(rawURL); v != "" {
		return Embed{Type: EmbedYouTube, Src: "https://www.youtube-nocookie.com/embed/" + v}, true
	}
	if videoFileRe.MatchString(rawURL) {
		return Embed{Type: EmbedFile, Src: rawURL}, true
	}
	return Embed{}, false
}

func youTubeID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	switch {
	case strings.Contains(u.Hostname(), "youtu.be"):
		return strings.TrimPrefix(u.Path, "/")
	case strings.Contains(u.Hostname(), "youtube.com"):
		return u.Query().Get("v")
	}
	return ""
}
