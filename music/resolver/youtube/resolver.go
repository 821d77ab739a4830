// Package youtube is the primary extractor: kkdai/youtube/v2 resolves a
// video URL or search query directly against YouTube's internal player API,
// without shelling out to yt-dlp.
package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"cracktunes-go/music/types"
)

var urlPatterns = []struct {
	re    *regexp.Regexp
	group int
}{
	{regexp.MustCompile(`^https?://(www\.)?youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`), 2},
	{regexp.MustCompile(`^https?://youtu\.be/([a-zA-Z0-9_-]{11})`), 1},
	{regexp.MustCompile(`^https?://m\.youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`), 1},
}

// Resolver is the primary types.Resolver implementation, backed directly by
// kkdai/youtube/v2's player-API client.
type Resolver struct {
	client *youtube.Client
}

// New builds a youtube.Resolver.
func New() *Resolver {
	return &Resolver{client: &youtube.Client{}}
}

func (r *Resolver) Name() string { return "youtube" }

// IsYouTubeURL reports whether urlStr matches a recognized YouTube video URL
// shape.
func IsYouTubeURL(urlStr string) bool {
	_, err := extractVideoID(urlStr)
	return err == nil
}

func extractVideoID(urlStr string) (string, error) {
	for _, p := range urlPatterns {
		if m := p.re.FindStringSubmatch(urlStr); len(m) > p.group {
			return m[p.group], nil
		}
	}
	return "", fmt.Errorf("could not extract video ID from URL: %s", urlStr)
}

// Resolve dispatches on the query tag: a direct video URL fetches metadata
// and picks a streamable format; Keywords runs a title search and takes the
// first hit; KeywordList resolves each entry independently, skipping
// failures (used by Spotify album/playlist expansion).
func (r *Resolver) Resolve(ctx context.Context, query types.Query) ([]*types.ResolvedTrack, error) {
	switch query.Tag {
	case types.QueryVideoLink:
		videoID, err := extractVideoID(query.URL)
		if err != nil {
			return nil, types.New(types.ErrUnknownQueryType, query.URL)
		}
		track, err := r.resolveVideoID(ctx, videoID)
		if err != nil {
			return nil, err
		}
		return []*types.ResolvedTrack{track}, nil

	case types.QueryKeywords:
		track, err := r.searchFirst(ctx, query.Text)
		if err != nil {
			return nil, err
		}
		return []*types.ResolvedTrack{track}, nil

	case types.QueryKeywordList:
		var tracks []*types.ResolvedTrack
		for _, text := range query.Texts {
			track, err := r.searchFirst(ctx, text)
			if err != nil {
				continue
			}
			tracks = append(tracks, track)
		}
		if len(tracks) == 0 {
			return nil, types.New(types.ErrEmptySearchResult, "")
		}
		return tracks, nil

	case types.QueryPlaylistLink:
		return r.resolvePlaylist(ctx, query.URL)

	default:
		return nil, types.New(types.ErrUnknownQueryType, "")
	}
}

func (r *Resolver) resolveVideoID(ctx context.Context, videoID string) (*types.ResolvedTrack, error) {
	video, err := r.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, types.Wrap(types.ErrNetwork, videoID, err)
	}
	return videoToTrack(video)
}

// defaultPlaylistLimit and maxPlaylistLimit bound how many entries a single
// PlaylistLink resolution expands to (design §4.1: "limit ≤ 100, default 50").
const (
	defaultPlaylistLimit = 50
	maxPlaylistLimit     = 100
)

func (r *Resolver) resolvePlaylist(ctx context.Context, playlistURL string) ([]*types.ResolvedTrack, error) {
	playlist, err := r.client.GetPlaylistContext(ctx, playlistURL)
	if err != nil {
		return nil, types.Wrap(types.ErrPlaylistFail, playlistURL, err)
	}

	limit := defaultPlaylistLimit
	if len(playlist.Videos) < limit {
		limit = len(playlist.Videos)
	}
	if limit > maxPlaylistLimit {
		limit = maxPlaylistLimit
	}

	tracks := make([]*types.ResolvedTrack, 0, limit)
	for _, entry := range playlist.Videos[:limit] {
		track, err := r.resolveVideoID(ctx, entry.ID)
		if err != nil {
			continue
		}
		tracks = append(tracks, track)
	}
	if len(tracks) == 0 {
		return nil, types.New(types.ErrPlaylistFail, playlistURL)
	}
	return tracks, nil
}

// searchFirst falls back to YouTube Data-API-free search is not available
// through kkdai/youtube; treat query.Text as a direct lookup only when it is
// already a URL, otherwise report NotFound so the caller's fallback chain
// retries against the ytdlp extractor, which does support search.
func (r *Resolver) searchFirst(ctx context.Context, text string) (*types.ResolvedTrack, error) {
	if videoID, err := extractVideoID(text); err == nil {
		return r.resolveVideoID(ctx, videoID)
	}
	return nil, types.New(types.ErrNotFound, text)
}

// Suggest is unsupported: kkdai/youtube/v2 exposes no search endpoint, so
// autocomplete is served entirely by the ytdlp resolver in the chain.
func (r *Resolver) Suggest(ctx context.Context, partial string, max int) ([]types.Suggestion, error) {
	return nil, types.New(types.ErrUnknownQueryType, "search unsupported by primary extractor")
}

func videoToTrack(video *youtube.Video) (*types.ResolvedTrack, error) {
	if video == nil {
		return nil, types.New(types.ErrNotFound, "")
	}
	format, err := bestAudioFormat(video)
	if err != nil {
		return nil, types.Wrap(types.ErrTrackFail, video.Title, err)
	}

	return &types.ResolvedTrack{
		Metadata: types.AuxMetadata{
			Title:     video.Title,
			Duration:  video.Duration,
			SourceURL: fmt.Sprintf("https://www.youtube.com/watch?v=%s", video.ID),
			Thumbnail: bestThumbnail(video),
			Channel:   video.Author,
			Date:      video.PublishDate.String(),
		},
		StreamURL: format.URL,
		Provider:  "youtube",
	}, nil
}

func bestAudioFormat(video *youtube.Video) (*youtube.Format, error) {
	var best *youtube.Format
	for i := range video.Formats {
		format := &video.Formats[i]
		if format.MimeType == "" || !strings.Contains(format.MimeType, "audio") {
			continue
		}
		if strings.Contains(format.MimeType, "opus") {
			return format, nil
		}
		if best == nil || format.Bitrate > best.Bitrate {
			best = format
		}
	}
	if best == nil {
		for i := range video.Formats {
			format := &video.Formats[i]
			if format.AudioChannels > 0 && (best == nil || format.Bitrate > best.Bitrate) {
				best = format
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no suitable audio format found")
	}
	return best, nil
}

func bestThumbnail(video *youtube.Video) string {
	var best youtube.Thumbnail
	for _, t := range video.Thumbnails {
		if t.Width > best.Width {
			best = t
		}
	}
	return best.URL
}

// FormatDuration renders a duration as MM:SS or HH:MM:SS, matching the
// presenter's display convention.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "0:00"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

var _ types.Resolver = (*Resolver)(nil)
