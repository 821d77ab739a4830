package commands

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"cracktunes-go/music/presenter"
	"cracktunes-go/music/types"
	"cracktunes-go/settings"
)

// HandleSettingsSlash applies a `/settings` interaction's options (design
// §3.2) to the guild's settings.Data. Text-prefix invocation has no
// equivalent form of structured key=value options, so settings is
// slash-only, unlike the rest of the catalog - bot/ calls this directly
// instead of going through a dispatch.Registry.
func HandleSettingsSlash(inv Invocation, deps Deps, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	form, err := presenter.DecodeSettingsForm(options)
	if err != nil {
		return types.New(types.ErrUnknown, err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	gs := deps.Settings.Get(ctx, inv.GuildID, inv.GuildName)
	applied := applySettingsForm(gs, options, form)
	if err := deps.Settings.Save(ctx, inv.GuildID); err != nil {
		deps.Log.Warn().Err(err).Str("guild_id", inv.GuildID).Msg("failed to persist settings after /settings")
	}
	if len(applied) == 0 {
		return inv.Reply("No settings were changed.")
	}
	return inv.Reply("Updated: " + strings.Join(applied, ", "))
}

// applySettingsForm copies only the options the caller actually supplied
// (gorilla/schema zero-fills absent fields, so presence is tracked
// separately via the raw option list) into the guild's settings.Data,
// returning the human-readable names of what changed.
func applySettingsForm(gs *settings.GuildSettings, options []*discordgo.ApplicationCommandInteractionDataOption, form presenter.SettingsForm) []string {
	present := make(map[string]struct{}, len(options))
	for _, opt := range options {
		present[opt.Name] = struct{}{}
	}

	var applied []string
	gs.Update(func(d *settings.Data) {
		if _, ok := present["prefix"]; ok {
			d.Prefix = form.Prefix
			applied = append(applied, "prefix")
		}
		if _, ok := present["volume"]; ok {
			d.Volume = form.Volume
			applied = append(applied, "volume")
		}
		if _, ok := present["autopause"]; ok {
			d.Autopause = form.Autopause
			applied = append(applied, "autopause")
		}
		if _, ok := present["autoplay"]; ok {
			d.Autoplay = form.Autoplay
			applied = append(applied, "autoplay")
		}
		if _, ok := present["self_deafen"]; ok {
			d.SelfDeafen = form.SelfDeafen
			applied = append(applied, "self_deafen")
		}
		if _, ok := present["timeout_seconds"]; ok {
			d.TimeoutSeconds = form.TimeoutSeconds
			applied = append(applied, "timeout_seconds")
		}
		if _, ok := present["allow_all_domains"]; ok {
			d.AllowAllDomains = form.AllowAllDomain
			applied = append(applied, "allow_all_domains")
		}
		if _, ok := present["music_channel"]; ok {
			d.MusicChannel = form.MusicChannel
			applied = append(applied, "music_channel")
		}
	})
	return applied
}
