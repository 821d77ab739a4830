package types

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// SessionInterface defines the subset of a Discord session the music
// subsystem needs, kept narrow so tests can substitute a fake.
type SessionInterface interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelVoiceJoin(guildID, channelID string, mute, deaf bool) (*discordgo.VoiceConnection, error)
	GetVoiceConnection(guildID string) *discordgo.VoiceConnection
	State() *discordgo.State
}

// EnqueueMode selects how a batch of tracks is merged into a guild's queue
// for a single play invocation.
type EnqueueMode int

const (
	ModeEnd EnqueueMode = iota
	ModeNext
	ModeAll
	ModeReverse
	ModeShuffle
	ModeJump
	ModeSearch
	ModeDownloadMKV
	ModeDownloadMP3
)

// ParseMode maps a leading free-form token to an EnqueueMode, defaulting to
// End when nothing matches.
func ParseMode(token string) EnqueueMode {
	switch token {
	case "next":
		return ModeNext
	case "all":
		return ModeAll
	case "reverse":
		return ModeReverse
	case "shuffle":
		return ModeShuffle
	case "jump":
		return ModeJump
	case "search":
		return ModeSearch
	case "downloadmkv":
		return ModeDownloadMKV
	case "downloadmp3":
		return ModeDownloadMP3
	default:
		return ModeEnd
	}
}

// PlayerStatus is the coarse-grained state of a guild's voice player.
type PlayerStatus int

const (
	StatusIdle PlayerStatus = iota
	StatusPlaying
	StatusPaused
	StatusStopped
	StatusBuffering
	StatusError
)

func (s PlayerStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	case StatusBuffering:
		return "buffering"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// AudioPlayer plays a single guild's active track over a voice connection.
// It owns exactly one track at a time; advancing to the next track is the
// caller's (Queue engine's) job.
type AudioPlayer interface {
	Play(ctx context.Context, track *ResolvedTrack) error
	Pause() error
	Resume() error
	Stop() error
	Seek(ctx context.Context, position int64) error
	SetVolume(volume float64) error
	GetVolume() float64
	IsPlaying() bool
	IsPaused() bool
	CurrentTrack() *ResolvedTrack
	// Done returns a channel that receives the terminal TrackState once
	// the current track stops (Ended/Cancelled/Failed). One value per
	// Play() call.
	Done() <-chan TrackState
}

// Resolver turns an opaque Query into one or more playable tracks plus
// normalized metadata.
type Resolver interface {
	Resolve(ctx context.Context, query Query) ([]*ResolvedTrack, error)
	Suggest(ctx context.Context, partial string, max int) ([]Suggestion, error)
	Name() string
}

// Suggestion is one autocomplete candidate: a human label and the canonical
// value to submit if chosen.
type Suggestion struct {
	Label string
	Value string
}

// LyricFinder is the single-method capability trait for lyric lookups: a
// primary API-backed implementation and a scrape-fallback implementation
// both satisfy it, and callers chain them without knowing which answered.
type LyricFinder interface {
	GetLyric(ctx context.Context, query string) (LyricResult, error)
}

// LyricResult is a found lyric plus attribution.
type LyricResult struct {
	Title  string
	Artist string
	Lyrics string
	Source string
}

// VoiceChannelError mirrors the teacher's typed voice error, kept for
// call sites that want to assert on a voice-specific type rather than the
// general PlayError taxonomy.
type VoiceChannelError struct {
	Type    string
	Message string
	GuildID string
}

func (e *VoiceChannelError) Error() string { return e.Message }
