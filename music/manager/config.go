package manager

import "cracktunes-go/music/resolver"

// GuildMusicConfig is the slice of a guild's settings the voice session and
// queue engine need on every track-end and idle tick (spec §4.2/§4.6):
// autopause/autoplay toggles, the stored volume, the idle timeout, and the
// resolver's domain policy. Supplied through SettingsProvider (satisfied by
// the settings package's guild cache), a narrow interface kept here so
// music/manager never imports settings
// directly (settings, in turn, depends on this package's Session for nothing
// - the dependency only runs one way).
type GuildMusicConfig struct {
	AutoPause      bool
	Autoplay       bool
	Volume         float64
	TimeoutSeconds int
	DomainPolicy   resolver.DomainPolicy
}

// SettingsProvider reads the current config for a guild. Implementations
// must be safe for concurrent use.
type SettingsProvider interface {
	MusicConfig(guildID string) GuildMusicConfig
}

// StaticSettingsProvider is a fixed-config SettingsProvider, useful for
// tests and for running without a settings store wired up.
type StaticSettingsProvider struct {
	Config GuildMusicConfig
}

func (s StaticSettingsProvider) MusicConfig(guildID string) GuildMusicConfig {
	return s.Config
}

var _ SettingsProvider = StaticSettingsProvider{}
