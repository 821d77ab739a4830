package presenter

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bwmarrin/discordgo"

	"cracktunes-go/music/types"
)

// maxLiveMessagesPerGuild bounds how many queue embeds a guild can have
// live at once before the oldest stops being refreshed. A guild that keeps
// re-running /queue in busy channels shouldn't grow this list without
// bound (design §5 "Guild cache mutex: protects the live-message list").
const maxLiveMessagesPerGuild = 32

// pageRef is one live queue message: where it lives and which page it's
// currently showing.
type pageRef struct {
	ChannelID string
	Page      int
}

// GuildCache tracks every live (message, page) pair per guild so a queue
// mutation can fan out and refresh all of them (design §4.7 "Live message
// fan-out"). One hashicorp/golang-lru cache per guild bounds how many
// messages are tracked; eviction just means the oldest message stops
// receiving refreshes; it is never deleted from Discord.
type GuildCache struct {
	mu     sync.Mutex
	guilds map[string]*lru.Cache[string, *pageRef]
}

// NewGuildCache builds an empty cache.
func NewGuildCache() *GuildCache {
	return &GuildCache{guilds: make(map[string]*lru.Cache[string, *pageRef])}
}

func (c *GuildCache) guildCache(guildID string) *lru.Cache[string, *pageRef] {
	c.mu.Lock()
	defer c.mu.Unlock()
	cache, ok := c.guilds[guildID]
	if !ok {
		cache, _ = lru.New[string, *pageRef](maxLiveMessagesPerGuild)
		c.guilds[guildID] = cache
	}
	return cache
}

// Register starts tracking a newly-sent queue message at page 0.
func (c *GuildCache) Register(guildID, channelID, messageID string) {
	c.guildCache(guildID).Add(messageID, &pageRef{ChannelID: channelID})
}

// SetPage records a nav-button click's resulting page for a tracked
// message. A no-op if the message isn't tracked (e.g. it aged out).
func (c *GuildCache) SetPage(guildID, messageID string, page int) {
	cache := c.guildCache(guildID)
	if ref, ok := cache.Get(messageID); ok {
		ref.Page = page
	}
}

// Forget stops tracking a message (design §4.7: "if the edit fails,
// forget the entry").
func (c *GuildCache) Forget(guildID, messageID string) {
	c.guildCache(guildID).Remove(messageID)
}

// Editor edits a live queue message's embed and nav-button row; returns an
// error (deleted/expired message, etc.) that triggers Forget.
type Editor func(channelID, messageID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error

// Refresh implements manager.RefreshFunc: rebuild and re-send every live
// queue message for guildID against its current track snapshot.
func (c *GuildCache) Refresh(guildID string, tracks []*types.ResolvedTrack, edit Editor) {
	cache := c.guildCache(guildID)
	for _, messageID := range cache.Keys() {
		ref, ok := cache.Peek(messageID)
		if !ok {
			continue
		}
		page := ClampPage(ref.Page, len(tracks))
		embed := BuildQueueEmbed(tracks, page)
		components := NavButtons(page, NumPages(len(tracks)))

		if err := edit(ref.ChannelID, messageID, embed, components); err != nil {
			cache.Remove(messageID)
			continue
		}
		ref.Page = page
	}
}
