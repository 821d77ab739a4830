package resolver

import (
	"net/url"
	"regexp"
	"strings"

	"cracktunes-go/music/types"
)

var playlistLinkPattern = regexp.MustCompile(`[?&]list=[a-zA-Z0-9_-]+`)

// ParseQuery classifies raw user input into a types.Query, detecting
// whether it names a playlist link, a plain video/file URL, or free-text
// keywords to search.
func ParseQuery(raw string) types.Query {
	raw = strings.TrimSpace(raw)
	if !looksLikeURL(raw) {
		return types.Query{Tag: types.QueryKeywords, Text: raw}
	}
	if playlistLinkPattern.MatchString(raw) {
		return types.Query{Tag: types.QueryPlaylistLink, URL: raw}
	}
	return types.Query{Tag: types.QueryVideoLink, URL: raw}
}

func looksLikeURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
