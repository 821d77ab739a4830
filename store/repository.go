package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GuildRepository covers `guild`, `guild_settings`, `welcome_settings`,
// `log_settings`, `permission_settings`, `command_channel`,
// `authorized_users`, and `metadata` - everything settings.Cache needs to
// load and flush a guild's cached configuration (design §4.6).
type GuildRepository struct {
	pool *pgxpool.Pool
}

// EnsureGuild inserts the guild row if it doesn't already exist, returning
// the current name on conflict.
func (r *GuildRepository) EnsureGuild(ctx context.Context, guildID int64, name string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO guild (id, name, created_at, updated_at)
		 VALUES ($1, $2, now(), now())
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = now()`,
		guildID, name,
	)
	if err != nil {
		return fmt.Errorf("ensuring guild %d: %w", guildID, err)
	}
	return nil
}

// LoadSettings reads one guild's guild_settings row (welcome_settings and
// log_settings have their own Load methods). Returns pgx.ErrNoRows (wrapped) if the guild has never been
// persisted; the caller materializes defaults in that case.
func (r *GuildRepository) LoadSettings(ctx context.Context, guildID int64) (*GuildSettingsRow, error) {
	row := &GuildSettingsRow{GuildID: guildID}
	err := r.pool.QueryRow(ctx,
		`SELECT guild_name, prefix, additional_prefixes, premium, autopause, autoplay,
		        allow_all_domains, allowed_domains, banned_domains, ignored_channels,
		        old_volume, volume, self_deafen, timeout_seconds
		 FROM guild_settings WHERE guild_id = $1`, guildID,
	).Scan(&row.GuildName, &row.Prefix, &row.AdditionalPrefixes, &row.Premium, &row.Autopause,
		&row.Autoplay, &row.AllowAllDomains, &row.AllowedDomains, &row.BannedDomains,
		&row.IgnoredChannels, &row.OldVolume, &row.Volume, &row.SelfDeafen, &row.TimeoutSeconds)
	if err != nil {
		return nil, fmt.Errorf("loading guild_settings for %d: %w", guildID, err)
	}
	return row, nil
}

// SaveSettings upserts a guild's full settings row.
func (r *GuildRepository) SaveSettings(ctx context.Context, row *GuildSettingsRow) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO guild_settings (guild_id, guild_name, prefix, additional_prefixes, premium,
		    autopause, autoplay, allow_all_domains, allowed_domains, banned_domains,
		    ignored_channels, old_volume, volume, self_deafen, timeout_seconds)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (guild_id) DO UPDATE SET
		    guild_name = EXCLUDED.guild_name, prefix = EXCLUDED.prefix,
		    additional_prefixes = EXCLUDED.additional_prefixes, premium = EXCLUDED.premium,
		    autopause = EXCLUDED.autopause, autoplay = EXCLUDED.autoplay,
		    allow_all_domains = EXCLUDED.allow_all_domains, allowed_domains = EXCLUDED.allowed_domains,
		    banned_domains = EXCLUDED.banned_domains, ignored_channels = EXCLUDED.ignored_channels,
		    old_volume = EXCLUDED.old_volume, volume = EXCLUDED.volume,
		    self_deafen = EXCLUDED.self_deafen, timeout_seconds = EXCLUDED.timeout_seconds`,
		row.GuildID, row.GuildName, row.Prefix, row.AdditionalPrefixes, row.Premium,
		row.Autopause, row.Autoplay, row.AllowAllDomains, row.AllowedDomains, row.BannedDomains,
		row.IgnoredChannels, row.OldVolume, row.Volume, row.SelfDeafen, row.TimeoutSeconds,
	)
	if err != nil {
		return fmt.Errorf("saving guild_settings for %d: %w", row.GuildID, err)
	}
	return nil
}

// LoadWelcomeSettings returns nil, nil if the guild has no welcome_settings
// row (a guild without that feature configured is the common case).
func (r *GuildRepository) LoadWelcomeSettings(ctx context.Context, guildID int64) (*WelcomeSettingsRow, error) {
	row := &WelcomeSettingsRow{GuildID: guildID}
	err := r.pool.QueryRow(ctx,
		`SELECT auto_role, channel_id, message FROM welcome_settings WHERE guild_id = $1`, guildID,
	).Scan(&row.AutoRole, &row.ChannelID, &row.Message)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading welcome_settings for %d: %w", guildID, err)
	}
	return row, nil
}

// SaveWelcomeSettings upserts a guild's welcome_settings row.
func (r *GuildRepository) SaveWelcomeSettings(ctx context.Context, row *WelcomeSettingsRow) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO welcome_settings (guild_id, auto_role, channel_id, message)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (guild_id) DO UPDATE SET
		    auto_role = EXCLUDED.auto_role, channel_id = EXCLUDED.channel_id, message = EXCLUDED.message`,
		row.GuildID, row.AutoRole, row.ChannelID, row.Message,
	)
	if err != nil {
		return fmt.Errorf("saving welcome_settings for %d: %w", row.GuildID, err)
	}
	return nil
}

// LoadLogSettings returns nil, nil if the guild has no log_settings row.
func (r *GuildRepository) LoadLogSettings(ctx context.Context, guildID int64) (*LogSettingsRow, error) {
	row := &LogSettingsRow{GuildID: guildID}
	err := r.pool.QueryRow(ctx,
		`SELECT all_log_channel, raw_event_log_channel, server_log_channel,
		        member_log_channel, join_leave_log_channel, voice_log_channel
		 FROM log_settings WHERE guild_id = $1`, guildID,
	).Scan(&row.AllLogChannel, &row.RawEventLogChannel, &row.ServerLogChannel,
		&row.MemberLogChannel, &row.JoinLeaveLogChannel, &row.VoiceLogChannel)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading log_settings for %d: %w", guildID, err)
	}
	return row, nil
}

// SaveLogSettings upserts a guild's log_settings row.
func (r *GuildRepository) SaveLogSettings(ctx context.Context, row *LogSettingsRow) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO log_settings (guild_id, all_log_channel, raw_event_log_channel,
		    server_log_channel, member_log_channel, join_leave_log_channel, voice_log_channel)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (guild_id) DO UPDATE SET
		    all_log_channel = EXCLUDED.all_log_channel,
		    raw_event_log_channel = EXCLUDED.raw_event_log_channel,
		    server_log_channel = EXCLUDED.server_log_channel,
		    member_log_channel = EXCLUDED.member_log_channel,
		    join_leave_log_channel = EXCLUDED.join_leave_log_channel,
		    voice_log_channel = EXCLUDED.voice_log_channel`,
		row.GuildID, row.AllLogChannel, row.RawEventLogChannel, row.ServerLogChannel,
		row.MemberLogChannel, row.JoinLeaveLogChannel, row.VoiceLogChannel,
	)
	if err != nil {
		return fmt.Errorf("saving log_settings for %d: %w", row.GuildID, err)
	}
	return nil
}

// LoadPermissionSettings returns every command-scoped ACL row for a guild;
// a row with an empty Command is the guild-wide default.
func (r *GuildRepository) LoadPermissionSettings(ctx context.Context, guildID int64) ([]PermissionSettingsRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT command, default_allow_all, allowed, denied
		 FROM permission_settings WHERE guild_id = $1`, guildID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading permission_settings for %d: %w", guildID, err)
	}
	defer rows.Close()

	var out []PermissionSettingsRow
	for rows.Next() {
		row := PermissionSettingsRow{GuildID: guildID}
		if err := rows.Scan(&row.Command, &row.DefaultAllowAll, &row.Allowed, &row.Denied); err != nil {
			return nil, fmt.Errorf("scanning permission_settings for %d: %w", guildID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SavePermissionSettings upserts one command-scoped ACL row.
func (r *GuildRepository) SavePermissionSettings(ctx context.Context, row PermissionSettingsRow) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO permission_settings (guild_id, command, default_allow_all, allowed, denied)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (guild_id, command) DO UPDATE SET
		    default_allow_all = EXCLUDED.default_allow_all,
		    allowed = EXCLUDED.allowed, denied = EXCLUDED.denied`,
		row.GuildID, row.Command, row.DefaultAllowAll, row.Allowed, row.Denied,
	)
	if err != nil {
		return fmt.Errorf("saving permission_settings %s/%d: %w", row.Command, row.GuildID, err)
	}
	return nil
}

// LoadCommandChannel returns the channel ID restricting a command category
// (e.g. "music"), or 0 if unset.
func (r *GuildRepository) LoadCommandChannel(ctx context.Context, guildID int64, kind string) (int64, error) {
	var channelID int64
	err := r.pool.QueryRow(ctx,
		`SELECT channel_id FROM command_channel WHERE guild_id = $1 AND kind = $2`, guildID, kind,
	).Scan(&channelID)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("loading command_channel %s/%d: %w", kind, guildID, err)
	}
	return channelID, nil
}

// SaveCommandChannel upserts a command category's restriction channel.
func (r *GuildRepository) SaveCommandChannel(ctx context.Context, row CommandChannelRow) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO command_channel (guild_id, kind, channel_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (guild_id, kind) DO UPDATE SET channel_id = EXCLUDED.channel_id`,
		row.GuildID, row.Kind, row.ChannelID,
	)
	if err != nil {
		return fmt.Errorf("saving command_channel %s/%d: %w", row.Kind, row.GuildID, err)
	}
	return nil
}

// LoadAuthorizedUsers returns every per-user permission bitmask for a guild.
func (r *GuildRepository) LoadAuthorizedUsers(ctx context.Context, guildID int64) ([]AuthorizedUserRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, bits FROM authorized_users WHERE guild_id = $1`, guildID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading authorized_users for %d: %w", guildID, err)
	}
	defer rows.Close()

	var out []AuthorizedUserRow
	for rows.Next() {
		row := AuthorizedUserRow{GuildID: guildID}
		if err := rows.Scan(&row.UserID, &row.Bits); err != nil {
			return nil, fmt.Errorf("scanning authorized_users for %d: %w", guildID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SaveAuthorizedUser upserts one user's permission bitmask.
func (r *GuildRepository) SaveAuthorizedUser(ctx context.Context, row AuthorizedUserRow) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO authorized_users (guild_id, user_id, bits)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (guild_id, user_id) DO UPDATE SET bits = EXCLUDED.bits`,
		row.GuildID, row.UserID, row.Bits,
	)
	if err != nil {
		return fmt.Errorf("saving authorized_users %d/%d: %w", row.GuildID, row.UserID, err)
	}
	return nil
}

// GetOrCreateMetadata fetches the metadata row for sourceURL, inserting one
// from row if absent (insert-or-fetch, keyed by source_url per design §4.5).
func (r *GuildRepository) GetOrCreateMetadata(ctx context.Context, row MetadataRow) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM metadata WHERE source_url = $1`, row.SourceURL,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != pgx.ErrNoRows {
		return 0, fmt.Errorf("looking up metadata %q: %w", row.SourceURL, err)
	}

	err = r.pool.QueryRow(ctx,
		`INSERT INTO metadata (title, artist, album, source_url, thumbnail, channel, duration_ms, guild_id, channel_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (source_url) DO UPDATE SET title = EXCLUDED.title
		 RETURNING id`,
		row.Title, row.Artist, row.Album, row.SourceURL, row.Thumbnail, row.Channel,
		row.Duration.Milliseconds(), row.GuildID, row.ChannelID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting metadata %q: %w", row.SourceURL, err)
	}
	return id, nil
}

// InsertOrUpdateUser upserts the `user` table row referenced by play_log.
func (r *GuildRepository) InsertOrUpdateUser(ctx context.Context, userID int64, username string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO "user" (id, username, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, updated_at = now()`,
		userID, username,
	)
	if err != nil {
		return fmt.Errorf("upserting user %d: %w", userID, err)
	}
	return nil
}

// PlayLogRepository covers `play_log`.
type PlayLogRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new play_log row and returns its ID.
func (r *PlayLogRepository) Create(ctx context.Context, userID, guildID, metadataID int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO play_log (user_id, guild_id, metadata_id, created_at)
		 VALUES ($1, $2, $3, now()) RETURNING id`,
		userID, guildID, metadataID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting play_log: %w", err)
	}
	return id, nil
}

// LastPlayedByGuild returns the most recent play_log rows for a guild,
// newest first, limited to n.
func (r *PlayLogRepository) LastPlayedByGuild(ctx context.Context, guildID int64, n int) ([]PlayLogRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, guild_id, metadata_id, created_at
		 FROM play_log WHERE guild_id = $1 ORDER BY created_at DESC LIMIT $2`,
		guildID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying play_log for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var out []PlayLogRow
	for rows.Next() {
		var row PlayLogRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.GuildID, &row.MetadataID, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning play_log for guild %d: %w", guildID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TrackReactionRepository covers `track_reaction`.
type TrackReactionRepository struct {
	pool *pgxpool.Pool
}

// Ensure creates the reaction row for a play_log entry if it doesn't exist.
func (r *TrackReactionRepository) Ensure(ctx context.Context, playLogID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO track_reaction (play_log_id, likes, dislikes, skip_votes, created_at)
		 VALUES ($1, 0, 0, 0, now())
		 ON CONFLICT (play_log_id) DO NOTHING`, playLogID,
	)
	if err != nil {
		return fmt.Errorf("ensuring track_reaction for %d: %w", playLogID, err)
	}
	return nil
}

// AddLike increments the like counter.
func (r *TrackReactionRepository) AddLike(ctx context.Context, playLogID int64) error {
	return r.increment(ctx, playLogID, "likes")
}

// AddDislike increments the dislike counter.
func (r *TrackReactionRepository) AddDislike(ctx context.Context, playLogID int64) error {
	return r.increment(ctx, playLogID, "dislikes")
}

// AddSkipVote increments the skip-vote counter (§4.2 skip votes persisted
// for later like/dislike-ratio queries).
func (r *TrackReactionRepository) AddSkipVote(ctx context.Context, playLogID int64) error {
	return r.increment(ctx, playLogID, "skip_votes")
}

func (r *TrackReactionRepository) increment(ctx context.Context, playLogID int64, column string) error {
	if err := r.Ensure(ctx, playLogID); err != nil {
		return err
	}
	// column is one of a fixed internal set (never user input), so this
	// isn't building a query out of untrusted data.
	_, err := r.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE track_reaction SET %s = %s + 1 WHERE play_log_id = $1`, column, column),
		playLogID,
	)
	if err != nil {
		return fmt.Errorf("incrementing track_reaction.%s for %d: %w", column, playLogID, err)
	}
	return nil
}

// Get returns the reaction counters for a play_log entry.
func (r *TrackReactionRepository) Get(ctx context.Context, playLogID int64) (*TrackReactionRow, error) {
	row := &TrackReactionRow{PlayLogID: playLogID}
	err := r.pool.QueryRow(ctx,
		`SELECT likes, dislikes, skip_votes, created_at FROM track_reaction WHERE play_log_id = $1`,
		playLogID,
	).Scan(&row.Likes, &row.Dislikes, &row.SkipVotes, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("loading track_reaction for %d: %w", playLogID, err)
	}
	return row, nil
}

// PlaylistRepository covers `playlist` and `playlist_track` (create/
// get-by-id/get-by-name/rename/delete/list-tracks/add-track, design §3).
type PlaylistRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new named playlist owned by userID.
func (r *PlaylistRepository) Create(ctx context.Context, name string, userID int64) (*PlaylistRow, error) {
	row := &PlaylistRow{Name: name, UserID: userID}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO playlist (name, user_id) VALUES ($1, $2) RETURNING id`,
		name, userID,
	).Scan(&row.ID)
	if err != nil {
		return nil, fmt.Errorf("creating playlist %q: %w", name, err)
	}
	return row, nil
}

// GetByID fetches a playlist by its primary key.
func (r *PlaylistRepository) GetByID(ctx context.Context, id int64) (*PlaylistRow, error) {
	row := &PlaylistRow{ID: id}
	err := r.pool.QueryRow(ctx, `SELECT name, user_id FROM playlist WHERE id = $1`, id).
		Scan(&row.Name, &row.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading playlist %d: %w", id, err)
	}
	return row, nil
}

// GetByName fetches a playlist owned by userID with the given name.
func (r *PlaylistRepository) GetByName(ctx context.Context, name string, userID int64) (*PlaylistRow, error) {
	row := &PlaylistRow{Name: name, UserID: userID}
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM playlist WHERE name = $1 AND user_id = $2`, name, userID,
	).Scan(&row.ID)
	if err != nil {
		return nil, fmt.Errorf("loading playlist %q for user %d: %w", name, userID, err)
	}
	return row, nil
}

// Rename updates a playlist's name.
func (r *PlaylistRepository) Rename(ctx context.Context, id int64, newName string) error {
	_, err := r.pool.Exec(ctx, `UPDATE playlist SET name = $1 WHERE id = $2`, newName, id)
	if err != nil {
		return fmt.Errorf("renaming playlist %d: %w", id, err)
	}
	return nil
}

// Delete removes a playlist and its track links.
func (r *PlaylistRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM playlist_track WHERE playlist_id = $1`, id); err != nil {
		return fmt.Errorf("deleting playlist_track for %d: %w", id, err)
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM playlist WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting playlist %d: %w", id, err)
	}
	return nil
}

// AddTrack links a metadata row into a playlist.
func (r *PlaylistRepository) AddTrack(ctx context.Context, row PlaylistTrackRow) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO playlist_track (playlist_id, metadata_id, guild_id, channel_id)
		 VALUES ($1, $2, $3, $4)`,
		row.PlaylistID, row.MetadataID, row.GuildID, row.ChannelID,
	)
	if err != nil {
		return fmt.Errorf("adding track to playlist %d: %w", row.PlaylistID, err)
	}
	return nil
}

// ListTracks returns every metadata row linked into a playlist, ordered by
// metadata id; this is not necessarily the order the tracks were added.
func (r *PlaylistRepository) ListTracks(ctx context.Context, playlistID int64) ([]MetadataRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.title, m.artist, m.album, m.source_url, m.thumbnail, m.channel
		 FROM playlist_track pt JOIN metadata m ON m.id = pt.metadata_id
		 WHERE pt.playlist_id = $1 ORDER BY pt.metadata_id ASC`, playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tracks for playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	var out []MetadataRow
	for rows.Next() {
		var m MetadataRow
		if err := rows.Scan(&m.ID, &m.Title, &m.Artist, &m.Album, &m.SourceURL, &m.Thumbnail, &m.Channel); err != nil {
			return nil, fmt.Errorf("scanning playlist track for %d: %w", playlistID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
