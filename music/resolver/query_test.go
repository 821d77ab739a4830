package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cracktunes-go/music/types"
)

func TestParseQueryKeywords(t *testing.T) {
	q := ParseQuery("  never gonna give you up  ")
	assert.Equal(t, types.QueryKeywords, q.Tag)
	assert.Equal(t, "never gonna give you up", q.Text)
}

func TestParseQueryVideoLink(t *testing.T) {
	q := ParseQuery("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.Equal(t, types.QueryVideoLink, q.Tag)
}

func TestParseQueryPlaylistLink(t *testing.T) {
	q := ParseQuery("https://www.youtube.com/playlist?list=PL1234567890")
	assert.Equal(t, types.QueryPlaylistLink, q.Tag)
}
