package snapshot

import "strings"

// LinkType is a best-effort classification of a URL.
type LinkType string

const (
	LinkVideo      LinkType = "video"
	LinkRepository LinkType = "repository"
	LinkArticle    LinkType = "article"
	LinkReference  LinkType = "reference"
	LinkOther      LinkType = "other"
)

var classes = []struct {
	typ      LinkType
	patterns []string
}{
	{LinkVideo, []string{"youtube.com/watch", "youtu.be/", "vimeo.com/"}},
	{LinkRepository, []string{"github.com/", "gitlab.com/", "bitbucket.org/"}},
	{LinkArticle, []string{"medium.com/", "dev.to/", "blog", "article"}},
	{LinkReference, []string{"docs.", "documentation", "wiki", "reference"}},
}

// Classify matches url against known patterns in order; the first class
// with a matching pattern wins.
func Classify(url string) LinkType {
	u := strings.ToLower(url)
	if u == "" {
		return LinkOther
	}
	for _, c := range classes {
		for _, p := range c.patterns {
			if strings.Contains(u, p) {
				return c.typ
			}
		}
	}
	return LinkOther
}
