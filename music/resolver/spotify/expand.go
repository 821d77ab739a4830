// Package spotify expands a Spotify track/album/playlist URL into one or
// more YouTube-searchable queries (design §4.1 "Spotify URL expansion").
// Spotify streams are DRM-protected and never played directly; this package
// only turns a Spotify link into "artist - title" search text.
package spotify

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"cracktunes-go/music/types"
)

var linkPattern = regexp.MustCompile(`spotify\.link/|open\.spotify\.com/(track|album|playlist)/([a-zA-Z0-9]+)`)

// Expander turns a Spotify URL into a types.Query (Keywords for a single
// track, KeywordList for an album or playlist) using a client-credentials
// token — no user auth is ever required since only public catalog reads are
// performed.
type Expander struct {
	clientID     string
	clientSecret string

	mu     sync.Mutex
	client *spotify.Client
}

// NewExpander builds an Expander. Credentials are validated lazily on the
// first Expand call so a bot with no Spotify configuration can still start.
func NewExpander(clientID, clientSecret string) *Expander {
	return &Expander{clientID: clientID, clientSecret: clientSecret}
}

// Matches reports whether rawURL looks like a Spotify link. spotify.link
// short links also match, but Expand rejects them as invalid.
func Matches(rawURL string) bool {
	return linkPattern.MatchString(rawURL)
}

func (e *Expander) authedClient(ctx context.Context) (*spotify.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client, nil
	}
	if e.clientID == "" || e.clientSecret == "" {
		return nil, types.New(types.ErrSpotifyAuthFailed, "")
	}
	cfg := &clientcredentials.Config{
		ClientID:     e.clientID,
		ClientSecret: e.clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	token, err := cfg.Token(ctx)
	if err != nil {
		return nil, types.Wrap(types.ErrSpotifyAuthFailed, "", err)
	}
	httpClient := spotifyauth.New().Client(ctx, token)
	e.client = spotify.New(httpClient)
	return e.client, nil
}

// Expand resolves rawURL into the Query the main resolver chain should run
// next.
func (e *Expander) Expand(ctx context.Context, rawURL string) (types.Query, error) {
	kind, id, err := parseSpotifyURL(rawURL)
	if err != nil {
		return types.Query{}, types.New(types.ErrSpotifyInvalidQuery, rawURL)
	}

	client, err := e.authedClient(ctx)
	if err != nil {
		return types.Query{}, err
	}

	switch kind {
	case "track":
		track, err := client.GetTrack(ctx, spotify.ID(id))
		if err != nil {
			return types.Query{}, types.Wrap(types.ErrPlaylistFail, rawURL, err)
		}
		ref := trackRef(track.SimpleTrack)
		return types.Query{Tag: types.QueryKeywords, Text: ref.SearchText()}, nil

	case "album":
		album, err := client.GetAlbum(ctx, spotify.ID(id))
		if err != nil {
			return types.Query{}, types.Wrap(types.ErrPlaylistFail, rawURL, err)
		}
		texts := make([]string, 0, len(album.Tracks.Tracks))
		for _, t := range album.Tracks.Tracks {
			texts = append(texts, trackRef(t).SearchText())
		}
		if len(texts) == 0 {
			return types.Query{}, types.New(types.ErrEmptySearchResult, rawURL)
		}
		return types.Query{Tag: types.QueryKeywordList, Texts: texts}, nil

	case "playlist":
		playlist, err := client.GetPlaylist(ctx, spotify.ID(id))
		if err != nil {
			return types.Query{}, types.Wrap(types.ErrPlaylistFail, rawURL, err)
		}
		var texts []string
		for _, item := range playlist.Tracks.Tracks {
			if item.Track.Track == nil {
				// Non-track playlist entries (podcast episodes) are skipped.
				continue
			}
			texts = append(texts, trackRef(item.Track.Track.SimpleTrack).SearchText())
		}
		if len(texts) == 0 {
			return types.Query{}, types.New(types.ErrEmptySearchResult, rawURL)
		}
		return types.Query{Tag: types.QueryKeywordList, Texts: texts}, nil

	default:
		return types.Query{}, types.New(types.ErrSpotifyInvalidQuery, rawURL)
	}
}

func trackRef(t spotify.SimpleTrack) types.SpotifyTrackRef {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}
	return types.SpotifyTrackRef{Title: t.Name, Artists: artists}
}

func parseSpotifyURL(rawURL string) (kind, id string, err error) {
	m := linkPattern.FindStringSubmatch(rawURL)
	if m == nil || m[1] == "" || m[2] == "" {
		return "", "", fmt.Errorf("not a recognized spotify URL: %s", rawURL)
	}
	return m[1], m[2], nil
}
