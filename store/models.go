package store

import "time"

// GuildRow mirrors the `guild` table: the bare guild identity row every
// other guild-scoped table hangs off of.
type GuildRow struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GuildSettingsRow mirrors `guild_settings`, the bulk of GuildSettings
// (design §3) that lives in one table.
type GuildSettingsRow struct {
	GuildID            int64
	GuildName          string
	Prefix             string
	AdditionalPrefixes []string
	Premium            bool
	Autopause          bool
	Autoplay           bool
	AllowAllDomains    bool
	AllowedDomains     []string
	BannedDomains      []string
	IgnoredChannels    []int64
	OldVolume          float64
	Volume             float64
	SelfDeafen         bool
	TimeoutSeconds     int
}

// WelcomeSettingsRow mirrors `welcome_settings`.
type WelcomeSettingsRow struct {
	GuildID   int64
	AutoRole  *int64
	ChannelID *int64
	Message   *string
}

// LogSettingsRow mirrors `log_settings`.
type LogSettingsRow struct {
	GuildID              int64
	AllLogChannel        *int64
	RawEventLogChannel   *int64
	ServerLogChannel     *int64
	MemberLogChannel     *int64
	JoinLeaveLogChannel  *int64
	VoiceLogChannel      *int64
}

// PermissionSettingsRow mirrors `permission_settings`: the serialized form
// of GenericPermissionSettings (design §4.6), one row per guild+command (or
// guild-wide when Command is empty).
type PermissionSettingsRow struct {
	GuildID              int64
	Command              string
	DefaultAllowAll      bool
	Allowed              []string
	Denied               []string
}

// CommandChannelRow mirrors `command_channel`: the per-guild music_channel
// restriction used by the dispatcher's ACL.
type CommandChannelRow struct {
	GuildID     int64
	Kind        string // "music", etc.
	ChannelID   int64
}

// AuthorizedUserRow mirrors `authorized_users`: a per-guild user's
// permission bitmask.
type AuthorizedUserRow struct {
	GuildID int64
	UserID  int64
	Bits    int64
}

// MetadataRow mirrors `metadata`, keyed by source URL.
type MetadataRow struct {
	ID        int64
	Title     string
	Artist    string
	Album     string
	SourceURL string
	Thumbnail string
	Channel   string
	Duration  time.Duration
	GuildID   int64
	ChannelID int64
}

// PlaylistRow mirrors `playlist`.
type PlaylistRow struct {
	ID     int64
	Name   string
	UserID int64
}

// PlaylistTrackRow mirrors `playlist_track`.
type PlaylistTrackRow struct {
	PlaylistID int64
	MetadataID int64
	GuildID    int64
	ChannelID  int64
}

// PlayLogRow mirrors `play_log`.
type PlayLogRow struct {
	ID         int64
	UserID     int64
	GuildID    int64
	MetadataID int64
	CreatedAt  time.Time
}

// TrackReactionRow mirrors `track_reaction`.
type TrackReactionRow struct {
	PlayLogID int64
	Likes     int
	Dislikes  int
	SkipVotes int
	CreatedAt time.Time
}
