package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"cracktunes-go/music/types"
)

const lyricsEmbedColor = 0x1DB954
const maxLyricsFieldLen = 1024

// handleLyrics implements the lyrics [query] command (design §3.4): with no
// query, looks up the currently playing track; otherwise looks up the
// given query directly.
func handleLyrics(inv Invocation, deps Deps, args string) error {
	if deps.Lyrics == nil {
		return types.New(types.ErrNotFound, "")
	}

	query := strings.TrimSpace(args)
	if query == "" {
		tracks := deps.Manager.Snapshot(inv.GuildID)
		if len(tracks) == 0 {
			return types.New(types.ErrNothingPlaying, "")
		}
		query = trackTitle(tracks[0])
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	result, err := deps.Lyrics.GetLyric(ctx, query)
	if err != nil {
		return types.New(types.ErrNotFound, query)
	}

	embed := &discordgo.MessageEmbed{
		Title:       lyricsTitle(result),
		Description: truncateLyrics(result.Lyrics),
		Color:       lyricsEmbedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: "via " + result.Source},
	}
	_, err = inv.ReplyEmbed(embed, nil)
	return err
}

func lyricsTitle(result types.LyricResult) string {
	if result.Artist == "" {
		return result.Title
	}
	return fmt.Sprintf("%s - %s", result.Artist, result.Title)
}

func truncateLyrics(lyrics string) string {
	if len(lyrics) <= maxLyricsFieldLen {
		return lyrics
	}
	return lyrics[:maxLyricsFieldLen-len("…")] + "…"
}
