package settings

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"cracktunes-go/music/manager"
	"cracktunes-go/store"
)

// musicChannelKind is the command_channel.kind value for the music command
// category's restriction channel (design §4.6 command_channels.music_channel).
const musicChannelKind = "music"

// Cache is the in-memory guild settings cache (design §4.6): read path
// checks the cache, falls back to the DB, materializes defaults on a full
// miss; write path mutates the cached copy then schedules persistence.
// repo may be nil, in which case the cache runs in memory-only mode (no
// persistence, no cross-process durability) - used by tests and by a
// database-less local run.
type Cache struct {
	mu     sync.RWMutex
	guilds map[string]*GuildSettings
	repo   *store.GuildRepository
	log    zerolog.Logger
}

// NewCache builds an empty guild settings cache backed by repo.
func NewCache(repo *store.GuildRepository, log zerolog.Logger) *Cache {
	return &Cache{
		guilds: make(map[string]*GuildSettings),
		repo:   repo,
		log:    log,
	}
}

func (c *Cache) peek(guildID string) (*GuildSettings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.guilds[guildID]
	return g, ok
}

// Get returns the guild's settings, lazily loading from the DB (or
// materializing defaults) on first access. guildName seeds a fresh
// default's GuildName; it's ignored once the guild is cached. A DB read
// failure degrades to defaults (logged in load) rather than surfacing an
// error - a guild with a temporarily unreachable settings row should still
// be able to play music.
func (c *Cache) Get(ctx context.Context, guildID, guildName string) *GuildSettings {
	if g, ok := c.peek(guildID); ok {
		return g
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.guilds[guildID]; ok {
		return g
	}

	data := c.load(ctx, guildID, guildName)
	g := newGuildSettings(guildID, data)
	c.guilds[guildID] = g
	return g
}

// load reads every persisted table a guild's settings draw from, falling
// back to field-by-field defaults for anything absent or unreadable (a
// guild's first command ever, or a non-numeric guildID in tests).
func (c *Cache) load(ctx context.Context, guildID, guildName string) Data {
	data := DefaultData(guildName)
	if c.repo == nil {
		return data
	}
	gid, err := parseSnowflake(guildID)
	if err != nil {
		c.log.Debug().Str("guild_id", guildID).Msg("non-numeric guild id; running settings in memory-only mode for it")
		return data
	}

	if row, err := c.repo.LoadSettings(ctx, gid); err == nil {
		data.GuildName = row.GuildName
		data.Prefix = row.Prefix
		data.AdditionalPrefixes = row.AdditionalPrefixes
		data.Premium = row.Premium
		data.Autopause = row.Autopause
		data.Autoplay = row.Autoplay
		data.AllowAllDomains = row.AllowAllDomains
		data.AllowedDomains = row.AllowedDomains
		data.BannedDomains = row.BannedDomains
		data.IgnoredChannels = snowflakeSliceToSet(row.IgnoredChannels)
		data.SelfDeafen = row.SelfDeafen
		data.Volume = row.Volume
		data.OldVolume = row.OldVolume
		data.TimeoutSeconds = row.TimeoutSeconds
	} else {
		c.log.Debug().Str("guild_id", guildID).Msg("no persisted guild_settings row; materializing defaults")
	}

	if welcome, err := c.repo.LoadWelcomeSettings(ctx, gid); err == nil && welcome != nil {
		data.Welcome = WelcomeSettings{
			AutoRoleID: int64PtrToSnowflake(welcome.AutoRole),
			ChannelID:  int64PtrToSnowflake(welcome.ChannelID),
			Message:    stringPtrOr(welcome.Message, ""),
		}
	}

	if logSettings, err := c.repo.LoadLogSettings(ctx, gid); err == nil && logSettings != nil {
		data.Log = LogSettings{
			AllLogChannel:       int64PtrToSnowflake(logSettings.AllLogChannel),
			RawEventLogChannel:  int64PtrToSnowflake(logSettings.RawEventLogChannel),
			ServerLogChannel:    int64PtrToSnowflake(logSettings.ServerLogChannel),
			MemberLogChannel:    int64PtrToSnowflake(logSettings.MemberLogChannel),
			JoinLeaveLogChannel: int64PtrToSnowflake(logSettings.JoinLeaveLogChannel),
			VoiceLogChannel:     int64PtrToSnowflake(logSettings.VoiceLogChannel),
		}
	}

	if perms, err := c.repo.LoadPermissionSettings(ctx, gid); err == nil {
		for _, p := range perms {
			data.CommandACL[p.Command] = GenericPermissionSettings{
				DefaultAllowAllCommands: p.DefaultAllowAll,
				DefaultAllowAllRoles:    true,
				DefaultAllowAllUsers:    true,
				AllowedCommands:         stringSliceToSet(p.Allowed),
				DeniedCommands:          stringSliceToSet(p.Denied),
				AllowedRoles:            make(map[string]struct{}),
				DeniedRoles:             make(map[string]struct{}),
				AllowedUsers:            make(map[string]struct{}),
				DeniedUsers:             make(map[string]struct{}),
			}
		}
	}

	if channelID, err := c.repo.LoadCommandChannel(ctx, gid, musicChannelKind); err == nil && channelID != 0 {
		data.MusicChannel = formatSnowflake(channelID)
	}

	if users, err := c.repo.LoadAuthorizedUsers(ctx, gid); err == nil {
		for _, u := range users {
			data.AuthorizedUsers[formatSnowflake(u.UserID)] = u.Bits
		}
	}

	return data
}

// Save flushes one guild's cached settings to the DB if it has unflushed
// changes. A no-op in memory-only mode or for a guild that was never
// mutated.
func (c *Cache) Save(ctx context.Context, guildID string) error {
	g, ok := c.peek(guildID)
	if !ok || c.repo == nil {
		return nil
	}
	if !g.takeDirty() {
		return nil
	}

	gid, err := parseSnowflake(guildID)
	if err != nil {
		return nil
	}
	data := g.Snapshot()

	if err := c.repo.SaveSettings(ctx, &store.GuildSettingsRow{
		GuildID:            gid,
		GuildName:          data.GuildName,
		Prefix:             data.Prefix,
		AdditionalPrefixes: data.AdditionalPrefixes,
		Premium:            data.Premium,
		Autopause:          data.Autopause,
		Autoplay:           data.Autoplay,
		AllowAllDomains:    data.AllowAllDomains,
		AllowedDomains:     data.AllowedDomains,
		BannedDomains:      data.BannedDomains,
		IgnoredChannels:    setToSnowflakeSlice(data.IgnoredChannels),
		OldVolume:          data.OldVolume,
		Volume:             data.Volume,
		SelfDeafen:         data.SelfDeafen,
		TimeoutSeconds:     data.TimeoutSeconds,
	}); err != nil {
		return err
	}

	if err := c.repo.SaveWelcomeSettings(ctx, &store.WelcomeSettingsRow{
		GuildID:   gid,
		AutoRole:  snowflakeToInt64Ptr(data.Welcome.AutoRoleID),
		ChannelID: snowflakeToInt64Ptr(data.Welcome.ChannelID),
		Message:   stringOrNilPtr(data.Welcome.Message),
	}); err != nil {
		return err
	}

	if err := c.repo.SaveLogSettings(ctx, &store.LogSettingsRow{
		GuildID:             gid,
		AllLogChannel:       snowflakeToInt64Ptr(data.Log.AllLogChannel),
		RawEventLogChannel:  snowflakeToInt64Ptr(data.Log.RawEventLogChannel),
		ServerLogChannel:    snowflakeToInt64Ptr(data.Log.ServerLogChannel),
		MemberLogChannel:    snowflakeToInt64Ptr(data.Log.MemberLogChannel),
		JoinLeaveLogChannel: snowflakeToInt64Ptr(data.Log.JoinLeaveLogChannel),
		VoiceLogChannel:     snowflakeToInt64Ptr(data.Log.VoiceLogChannel),
	}); err != nil {
		return err
	}

	for command, acl := range data.CommandACL {
		if err := c.repo.SavePermissionSettings(ctx, store.PermissionSettingsRow{
			GuildID:         gid,
			Command:         command,
			DefaultAllowAll: acl.DefaultAllowAllCommands,
			Allowed:         setToStringSlice(acl.AllowedCommands),
			Denied:          setToStringSlice(acl.DeniedCommands),
		}); err != nil {
			return err
		}
	}

	if data.MusicChannel != "" {
		if channelID, err := parseSnowflake(data.MusicChannel); err == nil {
			if err := c.repo.SaveCommandChannel(ctx, store.CommandChannelRow{
				GuildID: gid, Kind: musicChannelKind, ChannelID: channelID,
			}); err != nil {
				return err
			}
		}
	}

	for userID, bits := range data.AuthorizedUsers {
		uid, err := parseSnowflake(userID)
		if err != nil {
			continue
		}
		if err := c.repo.SaveAuthorizedUser(ctx, store.AuthorizedUserRow{
			GuildID: gid, UserID: uid, Bits: bits,
		}); err != nil {
			return err
		}
	}

	return nil
}

// FlushAll saves every cached guild's unflushed changes, logging (but not
// aborting on) a per-guild failure. Called from the signal handler (design
// §4.8) before the process exits.
func (c *Cache) FlushAll(ctx context.Context) {
	c.mu.RLock()
	guildIDs := make([]string, 0, len(c.guilds))
	for id := range c.guilds {
		guildIDs = append(guildIDs, id)
	}
	c.mu.RUnlock()

	for _, id := range guildIDs {
		if err := c.Save(ctx, id); err != nil {
			c.log.Error().Err(err).Str("guild_id", id).Msg("flushing guild settings failed")
		}
	}
}

// MusicConfig satisfies manager.SettingsProvider, lazily materializing the
// guild's settings on first use.
func (c *Cache) MusicConfig(guildID string) manager.GuildMusicConfig {
	return c.Get(context.Background(), guildID, "").MusicConfig()
}

var _ manager.SettingsProvider = (*Cache)(nil)
