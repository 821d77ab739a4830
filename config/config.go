// Package config loads cracktunes.toml plus environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// CamKickRule mirrors one entry of the cam_kick TOML array: a per-channel
// policy that mutes/deafens users whose camera stays off past a timeout
// (users are not disconnected).
type CamKickRule struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	GuildID      int64         `mapstructure:"guild_id"`
	ChannelID    int64         `mapstructure:"chan_id"`
	DCMessage    string        `mapstructure:"dc_msg"`
	MsgOnDeafen  string        `mapstructure:"msg_on_deafen"`
	MsgOnMute    string        `mapstructure:"msg_on_mute"`
	MsgOnDisconn string        `mapstructure:"msg_on_dc"`
}

// Config is the fully-resolved configuration: cracktunes.toml merged with
// environment variable overrides required at startup.
type Config struct {
	DiscordToken  string
	DiscordAppID  string
	SpotifyID     string
	SpotifySecret string
	OpenAIKey     string
	VirusTotalKey string

	VideoStatusPollInterval time.Duration `mapstructure:"video_status_poll_interval"`
	Owners                  []int64       `mapstructure:"owners"`
	CamKick                 []CamKickRule `mapstructure:"cam_kick"`
	SysLogChannelID         int64         `mapstructure:"sys_log_channel_id"`
	SelfDeafen              bool          `mapstructure:"self_deafen"`
	Volume                  float32       `mapstructure:"volume"`
	Prefix                  string        `mapstructure:"prefix"`
	DatabaseURL             string        `mapstructure:"database_url"`
	LogPrefix               string        `mapstructure:"log_prefix"`
}

// Load reads ./cracktunes.toml (if present), layers in environment
// variables, and validates the variables the spec marks required.
func Load() (*Config, error) {
	// Best-effort .env load ahead of the env binding below, same order the
	// teacher's main.go used godotenv in.
	if err := godotenv.Load(); err != nil {
		// No .env file is not fatal; viper's AutomaticEnv still works.
	}

	v := viper.New()
	v.SetConfigName("cracktunes")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.SetDefault("prefix", "!")
	v.SetDefault("self_deafen", false)
	v.SetDefault("volume", float32(1.0))
	v.SetDefault("log_prefix", "./logs")
	v.SetDefault("video_status_poll_interval", 60)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading cracktunes.toml: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.DiscordToken = v.GetString("DISCORD_TOKEN")
	cfg.DiscordAppID = v.GetString("DISCORD_APP_ID")
	cfg.SpotifyID = v.GetString("SPOTIFY_CLIENT_ID")
	cfg.SpotifySecret = v.GetString("SPOTIFY_CLIENT_SECRET")
	cfg.OpenAIKey = v.GetString("OPENAI_API_KEY")
	cfg.VirusTotalKey = v.GetString("VIRUSTOTAL_API_KEY")

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable is required")
	}
	if cfg.DiscordAppID == "" {
		return nil, fmt.Errorf("DISCORD_APP_ID environment variable is required")
	}

	return cfg, nil
}

// HasSpotifyCredentials reports whether client-credentials Spotify auth can
// be attempted.
func (c *Config) HasSpotifyCredentials() bool {
	return c.SpotifyID != "" && c.SpotifySecret != ""
}
