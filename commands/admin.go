package commands

import (
	"context"
	"fmt"
	"strings"

	"cracktunes-go/music/types"
	"cracktunes-go/settings"
)

// handleAdmin implements the admin command group: guild-administrator-only
// configuration (music channel, log channel, per-user authorization) that
// doesn't fit the generic /settings form. dispatch classifies "admin" as
// CategoryOther (design §4.4), so it's gated on the ADMINISTRATOR/bot-owner
// branch of CheckACL rather than the music-channel restriction.
func handleAdmin(inv Invocation, deps Deps, args string) error {
	verb, rest := splitFirstToken(args)
	switch strings.ToLower(verb) {
	case "musicchannel":
		return handleAdminMusicChannel(inv, deps, rest)
	case "logchannel":
		return handleAdminLogChannel(inv, deps, rest)
	case "authorize":
		return handleAdminAuthorize(inv, deps, rest)
	default:
		return types.New(types.ErrNoTrackName, "")
	}
}

func handleAdminMusicChannel(inv Invocation, deps Deps, arg string) error {
	channelID := strings.TrimSpace(strings.Trim(arg, "<#>"))
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	gs := deps.Settings.Get(ctx, inv.GuildID, inv.GuildName)
	gs.Update(func(d *settings.Data) { d.MusicChannel = channelID })
	_ = deps.Settings.Save(ctx, inv.GuildID)

	if channelID == "" {
		return inv.Reply("Music channel restriction cleared.")
	}
	return inv.Reply(fmt.Sprintf("Music commands now restricted to <#%s>.", channelID))
}

func handleAdminLogChannel(inv Invocation, deps Deps, arg string) error {
	channelID := strings.TrimSpace(strings.Trim(arg, "<#>"))
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	gs := deps.Settings.Get(ctx, inv.GuildID, inv.GuildName)
	gs.Update(func(d *settings.Data) { d.Log.AllLogChannel = channelID })
	_ = deps.Settings.Save(ctx, inv.GuildID)
	return inv.Reply(fmt.Sprintf("Log channel set to <#%s>.", channelID))
}

func handleAdminAuthorize(inv Invocation, deps Deps, arg string) error {
	userID := strings.TrimSpace(strings.Trim(arg, "<@!>"))
	if userID == "" {
		return types.New(types.ErrAuthorNotFound, "")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	gs := deps.Settings.Get(ctx, inv.GuildID, inv.GuildName)
	gs.Update(func(d *settings.Data) {
		if d.AuthorizedUsers == nil {
			d.AuthorizedUsers = make(map[string]int64)
		}
		d.AuthorizedUsers[userID] = 1
	})
	_ = deps.Settings.Save(ctx, inv.GuildID)
	return inv.Reply(fmt.Sprintf("Authorized <@%s>.", userID))
}
