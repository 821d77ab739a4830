package commands

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"cracktunes-go/music/manager"
	"cracktunes-go/music/resolver"
	"cracktunes-go/music/types"
	"cracktunes-go/settings"
)

// The fakes below mirror music/manager/manager_helpers_test.go's
// fakePlayer/fakeSession/fakeQueryResolver: a minimal in-memory
// types.AudioPlayer/types.SessionInterface/types.Resolver trio, duplicated
// here (rather than exported from manager) so this package's tests can wire
// a real *manager.Manager without a live voice connection or network call.

type fakePlayer struct {
	mu      sync.Mutex
	track   *types.ResolvedTrack
	playing bool
	paused  bool
	volume  float64
	done    chan types.TrackState
}

func newFakePlayer() *fakePlayer { return &fakePlayer{volume: 1.0} }

func (p *fakePlayer) Play(ctx context.Context, track *types.ResolvedTrack) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.track = track
	p.playing = true
	p.paused = false
	p.done = make(chan types.TrackState, 1)
	return nil
}

func (p *fakePlayer) Pause() error  { p.mu.Lock(); defer p.mu.Unlock(); p.paused = true; return nil }
func (p *fakePlayer) Resume() error { p.mu.Lock(); defer p.mu.Unlock(); p.paused = false; return nil }

func (p *fakePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.paused = false
	return nil
}

func (p *fakePlayer) Seek(ctx context.Context, position int64) error { return nil }

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

var _ types.AudioPlayer = (*fakePlayer)(nil)

type fakeSession struct{}

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
	return &discordgo.Guild{ID: guildID}, nil
}

func (f *fakeSession) Channel(string, ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return nil, nil
}

func (f *fakeSession) ChannelVoiceJoin(guildID, channelID string, mute, deaf bool) (*discordgo.VoiceConnection, error) {
	return &discordgo.VoiceConnection{GuildID: guildID, ChannelID: channelID}, nil
}

func (f *fakeSession) GetVoiceConnection(string) *discordgo.VoiceConnection { return nil }
func (f *fakeSession) State() *discordgo.State                             { return nil }

var _ types.SessionInterface = (*fakeSession)(nil)

type fakeQueryResolver struct {
	name    string
	results []*types.ResolvedTrack
}

func (r *fakeQueryResolver) Resolve(ctx context.Context, query types.Query) ([]*types.ResolvedTrack, error) {
	return r.results, nil
}

func (r *fakeQueryResolver) Suggest(ctx context.Context, partial string, max int) ([]types.Suggestion, error) {
	return nil, nil
}

func (r *fakeQueryResolver) Name() string { return r.name }

var _ types.Resolver = (*fakeQueryResolver)(nil)

func testTrack(title string) *types.ResolvedTrack {
	return &types.ResolvedTrack{
		Metadata:  types.AuxMetadata{Title: title, SourceURL: "https://example.com/" + title},
		StreamURL: "https://example.com/stream/" + title,
		Provider:  "test",
	}
}

func fakePlayerFactory(p *fakePlayer) manager.PlayerFactory {
	return func(guildID string, vc *discordgo.VoiceConnection, log zerolog.Logger) types.AudioPlayer {
		return p
	}
}

// testHarness bundles everything a handler test needs: a real Manager wired
// to fakes, a memory-only settings cache, and captured reply/DM output.
type testHarness struct {
	Deps    Deps
	replies []string
	dms     []string
	embeds  []*discordgo.MessageEmbed
}

func newTestHarness(results []*types.ResolvedTrack, p *fakePlayer) *testHarness {
	res := resolver.New(&fakeQueryResolver{name: "primary", results: results}, &fakeQueryResolver{name: "secondary"}, nil)
	cache := settings.NewCache(nil, zerolog.Nop())
	m := manager.New(&fakeSession{}, cache, res, nil, zerolog.Nop(), manager.WithPlayerFactory(fakePlayerFactory(p)))
	return &testHarness{
		Deps: Deps{
			Manager:  m,
			Resolver: res,
			Settings: cache,
			Log:      zerolog.Nop(),
		},
	}
}

func (h *testHarness) invocation(guildID string) Invocation {
	return Invocation{
		GuildID:        guildID,
		GuildName:      "test-guild",
		ChannelID:      "chan-1",
		VoiceChannelID: "voice-1",
		UserID:         "1001",
		Username:       "tester",
		Reply: func(content string) error {
			h.replies = append(h.replies, content)
			return nil
		},
		ReplyEmbed: func(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (*discordgo.Message, error) {
			h.embeds = append(h.embeds, embed)
			return &discordgo.Message{ID: "msg-1"}, nil
		},
		DM: func(content string) error {
			h.dms = append(h.dms, content)
			return nil
		},
	}
}

func (h *testHarness) lastReply() string {
	if len(h.replies) == 0 {
		return ""
	}
	return h.replies[len(h.replies)-1]
}
