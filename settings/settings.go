// Package settings is the per-guild configuration cache: lazily
// materialized defaults, an in-memory read-mostly cache, and DB-backed
// load/flush through store.GuildRepository (design §4.6).
package settings

import (
	"sync"

	"cracktunes-go/music/manager"
	"cracktunes-go/music/resolver"
)

// Data is the plain-value snapshot of a guild's settings (design §3
// GuildSettings). GuildSettings wraps Data behind a per-guild lock; callers
// never hold a Data past the Snapshot/Update call that produced it.
type Data struct {
	GuildName          string
	Prefix             string
	AdditionalPrefixes []string
	Premium            bool
	Autopause          bool
	Autoplay           bool
	AllowAllDomains    bool
	AllowedDomains     []string
	BannedDomains      []string
	IgnoredChannels    map[string]struct{}
	SelfDeafen         bool
	Volume             float64
	OldVolume          float64
	TimeoutSeconds     int
	AuthorizedUsers    map[string]int64 // user id -> permission bits
	Welcome            WelcomeSettings
	Log                LogSettings
	MusicChannel       string // command_channels.music_channel
	CommandACL         map[string]GenericPermissionSettings // "" key = guild-wide default
}

// WelcomeSettings mirrors the `welcome_settings` table.
type WelcomeSettings struct {
	AutoRoleID string
	ChannelID  string
	Message    string
}

// LogSettings mirrors the `log_settings` table.
type LogSettings struct {
	AllLogChannel       string
	RawEventLogChannel  string
	ServerLogChannel    string
	MemberLogChannel    string
	JoinLeaveLogChannel string
	VoiceLogChannel     string
}

// DefaultPrefix is used when a guild has never set one (design §3).
const DefaultPrefix = "!"

// DefaultData returns the materialized-on-first-use defaults for a guild
// that has no persisted row yet.
func DefaultData(guildName string) Data {
	return Data{
		GuildName:       guildName,
		Prefix:          DefaultPrefix,
		Volume:          1.0,
		OldVolume:       1.0,
		IgnoredChannels: make(map[string]struct{}),
		AuthorizedUsers: make(map[string]int64),
		CommandACL:      make(map[string]GenericPermissionSettings),
	}
}

// GuildSettings is one guild's settings behind a read-mostly RW-lock
// (design §5 "Guild settings RW-lock"). Reads take the read half; mutations
// take the write half only for the in-memory update, with DB persistence
// happening after release (see Cache.Save).
type GuildSettings struct {
	guildID string

	mu    sync.RWMutex
	data  Data
	dirty bool
}

func newGuildSettings(guildID string, data Data) *GuildSettings {
	return &GuildSettings{guildID: guildID, data: data}
}

// GuildID returns the guild this settings object belongs to.
func (g *GuildSettings) GuildID() string { return g.guildID }

// Snapshot returns a copy of the current settings for display/read paths.
func (g *GuildSettings) Snapshot() Data {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.data
}

// Update mutates the settings under the write lock and marks the guild
// dirty for the next flush. fn must not retain the *Data it's given.
func (g *GuildSettings) Update(fn func(*Data)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.data)
	g.dirty = true
}

// takeDirty reports whether the guild has unflushed changes and clears the
// flag, used by Cache.Save/FlushAll to avoid redundant writes.
func (g *GuildSettings) takeDirty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	dirty := g.dirty
	g.dirty = false
	return dirty
}

// MusicConfig projects the settings slice music/manager needs, satisfying
// manager.SettingsProvider's contract when wrapped by a Cache.
func (g *GuildSettings) MusicConfig() manager.GuildMusicConfig {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return manager.GuildMusicConfig{
		AutoPause:      g.data.Autopause,
		Autoplay:       g.data.Autoplay,
		Volume:         g.data.Volume,
		TimeoutSeconds: g.data.TimeoutSeconds,
		DomainPolicy: resolver.DomainPolicy{
			AllowAllDomains: g.data.AllowAllDomains,
			AllowedDomains:  g.data.AllowedDomains,
			BannedDomains:   g.data.BannedDomains,
		},
	}
}
