// Package commands wires the design §4.4 command catalog to the
// manager/settings/presenter/store packages and registers every handler
// into a dispatch.Registry, giving the prefix and slash paths parity by
// construction.
package commands

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"cracktunes-go/music/manager"
	"cracktunes-go/music/presenter"
	"cracktunes-go/music/resolver"
	"cracktunes-go/settings"
	"cracktunes-go/store"
)

// Invocation is the per-message/per-interaction facts a handler needs that
// aren't already folded into dispatch's ACL check: who to reply to, which
// guild/channel/voice-channel this is, and who invoked it.
type Invocation struct {
	GuildID        string
	GuildName      string // used only to materialize defaults on first settings access
	ChannelID      string
	VoiceChannelID string // the invoking user's current voice channel, "" if none
	UserID         string
	Username       string

	Reply      func(content string) error
	ReplyEmbed func(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (*discordgo.Message, error)
	DM         func(content string) error
}

// Deps bundles everything a handler needs to actually do work, built once
// at bot startup and shared across every guild.
type Deps struct {
	Manager     *manager.Manager
	Resolver    *resolver.Resolver
	Settings    *settings.Cache
	Presenter   *presenter.GuildCache
	PresenterEd presenter.Editor // edits a live queue message; used by Refresh fan-out
	Lyrics      *presenter.LyricsProvider
	Store       *store.Store
	BotOwnerIDs map[string]struct{}
	Log         zerolog.Logger
}

// IsOwner reports whether userID is a configured bot owner (bot/ uses it to
// fill dispatch.MessageContext.IsBotOwner for the ACL's bot-owner bypass).
func (d Deps) IsOwner(userID string) bool {
	_, ok := d.BotOwnerIDs[userID]
	return ok
}
