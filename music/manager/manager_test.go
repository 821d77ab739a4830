package manager

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cracktunes-go/music/queue"
	"cracktunes-go/music/resolver"
	"cracktunes-go/music/types"
)

// newTestManager wires a Manager against a fake resolver and fake Discord
// session, using playerFactory to hand every Session the given fakePlayer so
// the test can observe what the player was told to do.
func newTestManager(t *testing.T, cfg GuildMusicConfig, results []*types.ResolvedTrack, p *fakePlayer) (*Manager, *fakeSession) {
	t.Helper()
	fs := &fakeSession{}
	res := resolver.New(&fakeQueryResolver{name: "primary", results: results}, &fakeQueryResolver{name: "secondary"}, nil)
	m := New(fs, staticSettings(cfg), res, nil, zerolog.Nop(), WithPlayerFactory(fakePlayerFactory(p)))
	return m, fs
}

func joinGuild(t *testing.T, m *Manager, guildID string) {
	t.Helper()
	require.NoError(t, m.Join(context.Background(), guildID, "voice-1"))
}

func TestManagerEnqueueRequiresConnection(t *testing.T) {
	m, _ := newTestManager(t, GuildMusicConfig{}, []*types.ResolvedTrack{testTrack("x")}, newFakePlayer())
	_, err := m.Enqueue(context.Background(), "guild-1", types.Query{Tag: types.QueryKeywords, Text: "x"}, types.ModeEnd, 1)
	require.Error(t, err)
	var playErr *types.PlayError
	require.ErrorAs(t, err, &playErr)
	assert.Equal(t, types.ErrNotConnected, playErr.Kind)
}

func TestManagerEnqueueStartsPlaybackWhenQueueWasEmpty(t *testing.T) {
	p := newFakePlayer()
	m, _ := newTestManager(t, GuildMusicConfig{Volume: 1.0}, []*types.ResolvedTrack{testTrack("a")}, p)
	joinGuild(t, m, "guild-1")

	tracks, err := m.Enqueue(context.Background(), "guild-1", types.Query{Tag: types.QueryKeywords, Text: "a"}, types.ModeEnd, 42)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, int64(42), tracks[0].Requester)

	time.Sleep(20 * time.Millisecond)
	require.NotNil(t, p.CurrentTrack())
	assert.Equal(t, "a", p.CurrentTrack().Metadata.Title)
}

func TestManagerEnqueueDoesNotRestartWhenAlreadyPlaying(t *testing.T) {
	p := newFakePlayer()
	m, _ := newTestManager(t, GuildMusicConfig{Volume: 1.0}, []*types.ResolvedTrack{testTrack("a")}, p)
	joinGuild(t, m, "guild-1")

	_, err := m.Enqueue(context.Background(), "guild-1", types.Query{Tag: types.QueryKeywords, Text: "a"}, types.ModeEnd, 1)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	firstPlayCalls := p.playCall

	_, err = m.Enqueue(context.Background(), "guild-1", types.Query{Tag: types.QueryKeywords, Text: "b"}, types.ModeEnd, 1)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, firstPlayCalls, p.playCall)
	assert.Equal(t, "a", p.CurrentTrack().Metadata.Title)
}

func TestManagerEnqueueJumpForceRestartsOverCurrentTrack(t *testing.T) {
	p := newFakePlayer()
	fs := &fakeSession{}
	res := resolver.New(&fakeQueryResolver{
		name: "primary",
		byText: map[string][]*types.ResolvedTrack{
			"a": {testTrack("a")},
			"b": {testTrack("jumped")},
		},
	}, &fakeQueryResolver{name: "secondary"}, nil)
	m := New(fs, staticSettings(GuildMusicConfig{Volume: 1.0}), res, nil, zerolog.Nop(), WithPlayerFactory(fakePlayerFactory(p)))
	joinGuild(t, m, "guild-1")

	_, err := m.Enqueue(context.Background(), "guild-1", types.Query{Tag: types.QueryKeywords, Text: "a"}, types.ModeEnd, 1)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, "a", p.CurrentTrack().Metadata.Title)

	_, err = m.Enqueue(context.Background(), "guild-1", types.Query{Tag: types.QueryKeywords, Text: "b"}, types.ModeJump, 1)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, "jumped", p.CurrentTrack().Metadata.Title)
	snap := m.Snapshot("guild-1")
	require.Len(t, snap, 1)
	assert.Equal(t, "jumped", snap[0].Metadata.Title)
}

func TestManagerSkipForceRestartsWithoutDoublePop(t *testing.T) {
	p := newFakePlayer()
	fs := &fakeSession{}
	res := resolver.New(&fakeQueryResolver{name: "primary"}, &fakeQueryResolver{name: "secondary"}, nil)
	m := New(fs, staticSettings(GuildMusicConfig{Volume: 1.0}), res, nil, zerolog.Nop(), WithPlayerFactory(fakePlayerFactory(p)))
	joinGuild(t, m, "guild-1")

	s, ok := m.Lookup("guild-1")
	require.True(t, ok)
	require.NoError(t, s.Handle(func(q *queue.Queue, player types.AudioPlayer) error {
		q.EnqueueBack(testTrack("one"))
		q.EnqueueBack(testTrack("two"))
		q.EnqueueBack(testTrack("three"))
		return nil
	}))
	s.EnsurePlaying(context.Background())
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, "one", p.CurrentTrack().Metadata.Title)

	require.NoError(t, m.Skip(context.Background(), "guild-1", 2))
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, "three", p.CurrentTrack().Metadata.Title)
	snap := m.Snapshot("guild-1")
	require.Len(t, snap, 1)
	assert.Equal(t, "three", snap[0].Metadata.Title)
}

func TestManagerPauseResume(t *testing.T) {
	p := newFakePlayer()
	m, _ := newTestManager(t, GuildMusicConfig{Volume: 1.0}, []*types.ResolvedTrack{testTrack("a")}, p)
	joinGuild(t, m, "guild-1")
	_, err := m.Enqueue(context.Background(), "guild-1", types.Query{Tag: types.QueryKeywords, Text: "a"}, types.ModeEnd, 1)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, m.Pause("guild-1"))
	assert.True(t, p.IsPaused())
	require.NoError(t, m.Resume("guild-1"))
	assert.False(t, p.IsPaused())
}

func TestManagerPauseWithoutSessionErrors(t *testing.T) {
	m, _ := newTestManager(t, GuildMusicConfig{}, nil, newFakePlayer())
	err := m.Pause("unknown-guild")
	require.Error(t, err)
	var playErr *types.PlayError
	require.ErrorAs(t, err, &playErr)
	assert.Equal(t, types.ErrNothingPlaying, playErr.Kind)
}

func TestManagerStopClearsQueueAndPlayer(t *testing.T) {
	p := newFakePlayer()
	m, _ := newTestManager(t, GuildMusicConfig{Volume: 1.0}, []*types.ResolvedTrack{testTrack("a")}, p)
	joinGuild(t, m, "guild-1")
	_, err := m.Enqueue(context.Background(), "guild-1", types.Query{Tag: types.QueryKeywords, Text: "a"}, types.ModeAll, 1)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, m.Stop("guild-1"))
	assert.False(t, p.IsPlaying())
	assert.Empty(t, m.Snapshot("guild-1"))
}

func TestManagerSetVolumeAppliesToQueueAndPlayer(t *testing.T) {
	p := newFakePlayer()
	m, _ := newTestManager(t, GuildMusicConfig{Volume: 1.0}, []*types.ResolvedTrack{testTrack("a")}, p)
	joinGuild(t, m, "guild-1")
	_, err := m.Enqueue(context.Background(), "guild-1", types.Query{Tag: types.QueryKeywords, Text: "a"}, types.ModeEnd, 1)
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, m.SetVolume("guild-1", 0.3))
	assert.InDelta(t, 0.3, p.GetVolume(), 0.0001)
}

func TestManagerSnapshotUnknownGuildReturnsNil(t *testing.T) {
	m, _ := newTestManager(t, GuildMusicConfig{}, nil, newFakePlayer())
	assert.Nil(t, m.Snapshot("no-such-guild"))
}
