package manager

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"cracktunes-go/music/types"
)

// fakePlayer is a minimal, fully in-memory types.AudioPlayer stand-in. Each
// Play() call allocates a fresh done channel, mirroring the real player's
// resetChannels behavior, so tests can exercise the watcher-rearming logic
// without a live voice connection.
type fakePlayer struct {
	mu       sync.Mutex
	track    *types.ResolvedTrack
	playing  bool
	paused   bool
	volume   float64
	done     chan types.TrackState
	playErr  error
	seekErr  error
	playCall int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{volume: 1.0}
}

func (p *fakePlayer) Play(ctx context.Context, track *types.ResolvedTrack) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		return p.playErr
	}
	p.track = track
	p.playing = true
	p.paused = false
	p.done = make(chan types.TrackState, 1)
	p.playCall++
	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = true
	return nil
}

func (p *fakePlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paused = false
	return nil
}

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	d := p.done
	p.playing = false
	p.paused = false
	p.mu.Unlock()
	if d != nil {
		select {
		case d <- types.TrackCancelled:
		default:
		}
	}
	return nil
}

func (p *fakePlayer) Seek(ctx context.Context, position int64) error {
	p.mu.Lock()
	if p.seekErr != nil {
		defer p.mu.Unlock()
		return p.seekErr
	}
	oldDone := p.done
	p.mu.Unlock()
	if oldDone != nil {
		select {
		case oldDone <- types.TrackEnded:
		default:
		}
	}
	return p.Play(context.Background(), p.track)
}

func (p *fakePlayer) SetVolume(volume float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	return nil
}

func (p *fakePlayer) GetVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

func (p *fakePlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.paused
}

func (p *fakePlayer) IsPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *fakePlayer) CurrentTrack() *types.ResolvedTrack {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.track
}

func (p *fakePlayer) Done() <-chan types.TrackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// finish delivers a terminal state on the channel returned by the most
// recent Play() call.
func (p *fakePlayer) finish(state types.TrackState) {
	p.mu.Lock()
	d := p.done
	p.mu.Unlock()
	if d != nil {
		d <- state
	}
}

var _ types.AudioPlayer = (*fakePlayer)(nil)

// fakeSession implements types.SessionInterface with just enough behavior
// for manager/session tests: a configurable voice-join result and roster.
type fakeSession struct {
	mu         sync.Mutex
	joinErr    error
	guild      *discordgo.Guild
	guildErr   error
}

func (f *fakeSession) InteractionRespond(*discordgo.Interaction, *discordgo.InteractionResponse, ...discordgo.RequestOption) error {
	return nil
}

func (f *fakeSession) InteractionResponseEdit(*discordgo.Interaction, *discordgo.WebhookEdit, ...discordgo.RequestOption) (*discordgo.Message, error) {
	return nil, nil
}

func (f *fakeSession) FollowupMessageCreate(*discordgo.Interaction, bool, *discordgo.WebhookParams, ...discordgo.RequestOption) (*discordgo.Message, error) {
	return nil, nil
}

func (f *fakeSession) ChannelMessageSend(string, string, ...discordgo.RequestOption) (*discordgo.Message, error) {
	return nil, nil
}

func (f *fakeSession) ChannelMessageSendEmbed(string, *discordgo.MessageEmbed, ...discordgo.RequestOption) (*discordgo.Message, error) {
	return nil, nil
}

func (f *fakeSession) ChannelMessageEditEmbed(string, string, *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return nil, nil
}

func (f *fakeSession) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.guildErr != nil {
		return nil, f.guildErr
	}
	if f.guild == nil {
		return &discordgo.Guild{ID: guildID}, nil
	}
	return f.guild, nil
}

func (f *fakeSession) Channel(string, ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return nil, nil
}

// ChannelVoiceJoin returns a zero-value *discordgo.VoiceConnection: enough
// for Session to treat the guild as connected (voiceConn != nil) without
// ever calling a method on it. Tests must never invoke Session.Leave/
// Manager.Leave on a session joined this way, since the real
// VoiceConnection.Disconnect is unverified against a zero-value receiver
// with no local discordgo source available to inspect - see DESIGN.md.
func (f *fakeSession) ChannelVoiceJoin(guildID, channelID string, mute, deaf bool) (*discordgo.VoiceConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	return &discordgo.VoiceConnection{GuildID: guildID, ChannelID: channelID}, nil
}

func (f *fakeSession) GetVoiceConnection(string) *discordgo.VoiceConnection {
	return nil
}

func (f *fakeSession) State() *discordgo.State {
	return nil
}

var _ types.SessionInterface = (*fakeSession)(nil)

func testTrack(title string) *types.ResolvedTrack {
	return &types.ResolvedTrack{
		Metadata:  types.AuxMetadata{Title: title, SourceURL: "https://example.com/" + title},
		StreamURL: "https://example.com/stream/" + title,
		Provider:  "test",
	}
}

// fakePlayerFactory always returns the same pre-built fakePlayer, letting a
// test keep a handle to it across a real Session.Join call.
func fakePlayerFactory(p *fakePlayer) PlayerFactory {
	return func(guildID string, vc *discordgo.VoiceConnection, log zerolog.Logger) types.AudioPlayer {
		return p
	}
}

// fakeQueryResolver is a minimal types.Resolver test double for wiring a
// real *resolver.Resolver into Manager tests without touching the network.
// byText lets a test give distinct results per query.Text; results is the
// fallback when no byText entry matches.
type fakeQueryResolver struct {
	name    string
	results []*types.ResolvedTrack
	byText  map[string][]*types.ResolvedTrack
	err     error
}

func (r *fakeQueryResolver) Resolve(ctx context.Context, query types.Query) ([]*types.ResolvedTrack, error) {
	if r.err != nil {
		return nil, r.err
	}
	if tracks, ok := r.byText[query.Text]; ok {
		return tracks, nil
	}
	return r.results, nil
}

func (r *fakeQueryResolver) Suggest(ctx context.Context, partial string, max int) ([]types.Suggestion, error) {
	return nil, nil
}

func (r *fakeQueryResolver) Name() string { return r.name }

var _ types.Resolver = (*fakeQueryResolver)(nil)
