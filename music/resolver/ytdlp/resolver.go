package ytdlp

import (
	"context"
	"fmt"
	"time"

	"cracktunes-go/music/types"
)

// Resolver adapts the yt-dlp sidecar Client to types.Resolver, used as the
// secondary extractor in the fallback chain (design §4.1: retried once
// after a NetworkError from the primary kkdai/youtube resolver, or after a
// not-found/empty result for a keyword search), and for autocomplete.
type Resolver struct {
	client *Client
}

// NewResolver builds a Resolver backed by a yt-dlp service Client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

func (r *Resolver) Name() string { return "youtube-ytdlp" }

// Resolve extracts or searches via the yt-dlp sidecar depending on the
// query's tag.
func (r *Resolver) Resolve(ctx context.Context, query types.Query) ([]*types.ResolvedTrack, error) {
	switch query.Tag {
	case types.QueryVideoLink, types.QueryPlaylistLink:
		info, err := r.client.ExtractInfo(ctx, query.URL)
		if err != nil {
			return nil, wrapErr(err)
		}
		track, err := videoInfoToTrack(info)
		if err != nil {
			return nil, err
		}
		return []*types.ResolvedTrack{track}, nil
	case types.QueryKeywords:
		result, err := r.client.Search(ctx, query.Text, 1)
		if err != nil {
			return nil, wrapErr(err)
		}
		if len(result.Videos) == 0 {
			return nil, types.New(types.ErrEmptySearchResult, query.Text)
		}
		track, err := videoInfoToTrack(&result.Videos[0])
		if err != nil {
			return nil, err
		}
		return []*types.ResolvedTrack{track}, nil
	case types.QueryKeywordList:
		tracks := make([]*types.ResolvedTrack, 0, len(query.Texts))
		for _, text := range query.Texts {
			result, err := r.client.Search(ctx, text, 1)
			if err != nil || len(result.Videos) == 0 {
				continue
			}
			track, err := videoInfoToTrack(&result.Videos[0])
			if err != nil {
				continue
			}
			tracks = append(tracks, track)
		}
		if len(tracks) == 0 {
			return nil, types.New(types.ErrEmptySearchResult, "")
		}
		return tracks, nil
	default:
		return nil, types.New(types.ErrUnknownQueryType, "")
	}
}

// Suggest returns up to max autocomplete candidates for a partial query.
func (r *Resolver) Suggest(ctx context.Context, partial string, max int) ([]types.Suggestion, error) {
	result, err := r.client.Search(ctx, partial, max)
	if err != nil {
		return nil, wrapErr(err)
	}
	out := make([]types.Suggestion, 0, len(result.Videos))
	for _, v := range result.Videos {
		out = append(out, types.Suggestion{
			Label: fmt.Sprintf("%s (%s)", v.Title, formatSeconds(v.Duration)),
			Value: v.URL,
		})
	}
	return out, nil
}

func videoInfoToTrack(v *VideoInfo) (*types.ResolvedTrack, error) {
	if v == nil || !v.Available {
		return nil, types.New(types.ErrNotFound, "")
	}
	streamURL := ""
	var best FormatInfo
	for _, f := range v.Formats {
		if f.ACodec == "" || f.ACodec == "none" {
			continue
		}
		if best.URL == "" || f.ABR > best.ABR {
			best = f
		}
	}
	streamURL = best.URL
	if streamURL == "" && len(v.Formats) > 0 {
		streamURL = v.Formats[len(v.Formats)-1].URL
	}

	return &types.ResolvedTrack{
		Metadata: types.AuxMetadata{
			Title:     v.Title,
			Duration:  time.Duration(v.Duration * float64(time.Second)),
			SourceURL: v.URL,
			Thumbnail: v.Thumbnail,
			Channel:   v.Uploader,
			Date:      v.UploadDate,
		},
		StreamURL: streamURL,
		Provider:  "youtube-ytdlp",
	}, nil
}

func formatSeconds(total float64) string {
	d := time.Duration(total * float64(time.Second))
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

func wrapErr(err error) error {
	if svcErr, ok := err.(*ServiceError); ok {
		return types.Wrap(types.ErrNetwork, svcErr.Message, err)
	}
	return types.Wrap(types.ErrNetwork, "", err)
}

var _ types.Resolver = (*Resolver)(nil)
