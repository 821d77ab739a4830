// Package resolver dispatches a types.Query to the right extractor, applies
// guild domain policy ahead of resolution, and retries NetworkError once
// against the fallback extractor (design §4.1).
package resolver

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"cracktunes-go/music/resolver/spotify"
	"cracktunes-go/music/types"
)

// DomainPolicy is the subset of a guild's settings the resolver needs to
// evaluate whether a host is allowed to be played.
type DomainPolicy struct {
	AllowAllDomains bool
	AllowedDomains  []string
	BannedDomains   []string
}

// Allows reports whether host may be resolved under this policy (design
// §4.1 domain policy: case-insensitive suffix match).
func (p DomainPolicy) Allows(host string) bool {
	host = strings.ToLower(host)
	for _, banned := range p.BannedDomains {
		if hasSuffixFold(host, banned) {
			return false
		}
	}
	if p.AllowAllDomains {
		return true
	}
	for _, allowed := range p.AllowedDomains {
		if hasSuffixFold(host, allowed) {
			return true
		}
	}
	return len(p.AllowedDomains) == 0
}

func hasSuffixFold(host, domain string) bool {
	return strings.HasSuffix(host, strings.ToLower(domain))
}

// Resolver is the pipeline orchestrator: primary extractor, secondary
// (fallback) extractor, and the Spotify URL expansion pre-resolver.
type Resolver struct {
	primary   types.Resolver
	secondary types.Resolver
	spotify   *spotify.Expander
}

// New builds a Resolver. spotifyExpander may be nil when Spotify
// credentials are not configured; Spotify links then fail with
// ErrSpotifyAuthFailed instead of silently falling through.
func New(primary, secondary types.Resolver, spotifyExpander *spotify.Expander) *Resolver {
	return &Resolver{primary: primary, secondary: secondary, spotify: spotifyExpander}
}

// Resolve applies domain policy (when the query carries a URL), expands
// Spotify links into a searchable query, then dispatches by tag with a
// single NetworkError retry against the secondary extractor.
func (r *Resolver) Resolve(ctx context.Context, query types.Query, policy DomainPolicy) ([]*types.ResolvedTrack, error) {
	if query.URL != "" {
		if spotify.Matches(query.URL) {
			expanded, err := r.expandSpotify(ctx, query.URL)
			if err != nil {
				return nil, err
			}
			query = expanded
		} else if err := checkDomain(query.URL, policy); err != nil {
			return nil, err
		}
	}

	if query.Tag == types.QueryNewYoutubeDL {
		if query.Passthrough == nil {
			return nil, types.New(types.ErrUnknownQueryType, "")
		}
		return []*types.ResolvedTrack{query.Passthrough}, nil
	}

	// File attachments are played directly over HTTP; no extractor involved
	// and metadata stays empty beyond the source URL itself.
	if query.Tag == types.QueryFile {
		if query.URL == "" {
			return nil, types.New(types.ErrUnknownQueryType, "")
		}
		return []*types.ResolvedTrack{{
			Query:     query,
			Metadata:  types.AuxMetadata{SourceURL: query.URL},
			StreamURL: query.URL,
			Provider:  "file",
		}}, nil
	}

	tracks, err := r.primary.Resolve(ctx, query)
	if err == nil {
		return tracks, nil
	}
	if isNetworkError(err) && r.secondary != nil {
		return r.secondary.Resolve(ctx, query)
	}
	if isEmptyOrNotFound(err) && r.secondary != nil {
		// Keywords queries also retry against the fallback extractor when
		// the primary has no search capability (design §4.1: "on empty or
		// error, fall back to secondary extractor's ytsearch: prefix").
		if query.Tag == types.QueryKeywords || query.Tag == types.QueryKeywordList {
			return r.secondary.Resolve(ctx, query)
		}
	}
	return nil, err
}

func (r *Resolver) expandSpotify(ctx context.Context, rawURL string) (types.Query, error) {
	if r.spotify == nil {
		return types.Query{}, types.New(types.ErrSpotifyAuthFailed, "")
	}
	return r.spotify.Expand(ctx, rawURL)
}

func checkDomain(rawURL string, policy DomainPolicy) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	if !policy.Allows(u.Hostname()) {
		return types.New(types.ErrPlayDomainBanned, u.Hostname())
	}
	return nil
}

func isNetworkError(err error) bool {
	var playErr *types.PlayError
	if errors.As(err, &playErr) {
		return playErr.Kind == types.ErrNetwork
	}
	return false
}

func isEmptyOrNotFound(err error) bool {
	var playErr *types.PlayError
	if errors.As(err, &playErr) {
		return playErr.Kind == types.ErrEmptySearchResult || playErr.Kind == types.ErrNotFound || playErr.Kind == types.ErrUnknownQueryType
	}
	return false
}

// Suggest delegates autocomplete to the secondary extractor, since the
// primary kkdai/youtube client has no search endpoint.
func (r *Resolver) Suggest(ctx context.Context, partial string, max int) ([]types.Suggestion, error) {
	if r.secondary != nil {
		return r.secondary.Suggest(ctx, partial, max)
	}
	return r.primary.Suggest(ctx, partial, max)
}
