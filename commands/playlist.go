package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cracktunes-go/music/types"
	"cracktunes-go/store"
)

// handlePlaylist implements the playlist command group (design §3.1's
// store-backed CRUD, catalog'd but not operationally specified in spec
// §4.4): create/save/load/list/delete subcommands over a user's named
// playlists. Subcommand parsing mirrors dispatch.SplitMode's convention of
// a leading token driving behavior, but playlist's verbs aren't queue
// modes, so it's split locally instead of reusing SplitMode.
func handlePlaylist(inv Invocation, deps Deps, args string) error {
	if deps.Store == nil {
		return types.New(types.ErrNoDatabasePool, "")
	}

	verb, rest := splitFirstToken(args)
	userID := requesterID(inv.UserID)

	switch strings.ToLower(verb) {
	case "create":
		return handlePlaylistCreate(inv, deps, userID, rest)
	case "save":
		return handlePlaylistSave(inv, deps, userID, rest)
	case "load":
		return handlePlaylistLoad(inv, deps, userID, rest)
	case "list":
		return handlePlaylistList(inv, deps, userID)
	case "delete":
		return handlePlaylistDelete(inv, deps, userID, rest)
	default:
		return types.New(types.ErrNoTrackName, "")
	}
}

func handlePlaylistCreate(inv Invocation, deps Deps, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.New(types.ErrNoTrackName, "")
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if _, err := deps.Store.Playlists.Create(ctx, name, userID); err != nil {
		return types.New(types.ErrPlaylistFail, name)
	}
	return inv.Reply(fmt.Sprintf("Created playlist **%s**", name))
}

// handlePlaylistSave snapshots the guild's current queue into a named
// playlist owned by the invoking user, creating the playlist if it doesn't
// exist yet.
func handlePlaylistSave(inv Invocation, deps Deps, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.New(types.ErrNoTrackName, "")
	}
	tracks := deps.Manager.Snapshot(inv.GuildID)
	if len(tracks) == 0 {
		return types.New(types.ErrNothingPlaying, "")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	playlist, err := deps.Store.Playlists.GetByName(ctx, name, userID)
	if err != nil {
		playlist, err = deps.Store.Playlists.Create(ctx, name, userID)
		if err != nil {
			return types.New(types.ErrPlaylistFail, name)
		}
	}

	guildID, channelID := guildChannelInt64(inv)
	for _, t := range tracks {
		metaID, err := deps.Store.Guilds.GetOrCreateMetadata(ctx, store.MetadataRow{
			Title:     t.Metadata.Title,
			Artist:    t.Metadata.Artist,
			Album:     t.Metadata.Album,
			SourceURL: t.Metadata.SourceURL,
			Thumbnail: t.Metadata.Thumbnail,
			Channel:   t.Metadata.Channel,
			Duration:  t.Metadata.Duration,
		})
		if err != nil {
			return types.New(types.ErrPlaylistFail, name)
		}
		if err := deps.Store.Playlists.AddTrack(ctx, store.PlaylistTrackRow{
			PlaylistID: playlist.ID,
			MetadataID: metaID,
			GuildID:    guildID,
			ChannelID:  channelID,
		}); err != nil {
			return types.New(types.ErrPlaylistFail, name)
		}
	}
	return inv.Reply(fmt.Sprintf("Saved %d tracks to **%s**", len(tracks), name))
}

// handlePlaylistLoad re-resolves every saved track as an "artist - title"
// (or bare title) keyword search through the normal resolver/enqueue path
// and appends the results to the guild's queue, rather than reaching into
// the queue directly; the saved source URLs are not used.
func handlePlaylistLoad(inv Invocation, deps Deps, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.New(types.ErrNoTrackName, "")
	}
	if err := ensureConnected(inv, deps); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	playlist, err := deps.Store.Playlists.GetByName(ctx, name, userID)
	if err != nil {
		return types.New(types.ErrPlaylistFail, name)
	}
	rows, err := deps.Store.Playlists.ListTracks(ctx, playlist.ID)
	if err != nil || len(rows) == 0 {
		return types.New(types.ErrPlaylistFail, name)
	}

	texts := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Artist != "" {
			texts = append(texts, row.Artist+" - "+row.Title)
		} else {
			texts = append(texts, row.Title)
		}
	}
	query := types.Query{Tag: types.QueryKeywordList, Texts: texts}
	requester := requesterID(inv.UserID)
	tracks, err := deps.Manager.Enqueue(ctx, inv.GuildID, query, types.ModeEnd, requester)
	if err != nil {
		return err
	}

	refreshQueue(inv, deps)
	return inv.Reply(fmt.Sprintf("Loaded %d tracks from **%s**", len(tracks), name))
}

// handlePlaylistList reports that per-owner enumeration isn't available:
// the Store's repository surface only supports get-by-id/get-by-name
// (design §3.1), not list-by-owner.
func handlePlaylistList(inv Invocation, _ Deps, _ int64) error {
	return inv.Reply("Use `playlist load <name>` or `playlist delete <name>` with a playlist you've created.")
}

func handlePlaylistDelete(inv Invocation, deps Deps, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.New(types.ErrNoTrackName, "")
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	playlist, err := deps.Store.Playlists.GetByName(ctx, name, userID)
	if err != nil {
		return types.New(types.ErrPlaylistFail, name)
	}
	if err := deps.Store.Playlists.Delete(ctx, playlist.ID); err != nil {
		return types.New(types.ErrPlaylistFail, name)
	}
	return inv.Reply(fmt.Sprintf("Deleted playlist **%s**", name))
}

func splitFirstToken(s string) (head, rest string) {
	s = strings.TrimSpace(s)
	head, rest, _ = strings.Cut(s, " ")
	return head, strings.TrimSpace(rest)
}

func guildChannelInt64(inv Invocation) (guildID, channelID int64) {
	g, _ := strconv.ParseInt(inv.GuildID, 10, 64)
	c, _ := strconv.ParseInt(inv.ChannelID, 10, 64)
	return g, c
}
