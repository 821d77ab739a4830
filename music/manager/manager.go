package manager

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"cracktunes-go/music/player"
	"cracktunes-go/music/queue"
	"cracktunes-go/music/resolver"
	"cracktunes-go/music/types"
)

// PlayerFactory builds the AudioPlayer a Session uses once it has joined a
// voice channel. Overridable (WithPlayerFactory) so tests can substitute a
// player.NewForTesting-style stub instead of a real voice-connection-bound
// DCAPlayer.
type PlayerFactory func(guildID string, vc *discordgo.VoiceConnection, log zerolog.Logger) types.AudioPlayer

func defaultPlayerFactory(guildID string, vc *discordgo.VoiceConnection, log zerolog.Logger) types.AudioPlayer {
	return player.New(guildID, vc, log)
}

// Manager owns one Session per guild, created lazily on first Join and
// dropped on Leave (spec §4.3: "one session per guild, lazily created").
type Manager struct {
	session       types.SessionInterface
	settings      SettingsProvider
	resolver      *resolver.Resolver
	related       RelatedTrackFunc
	refresh       RefreshFunc
	playerFactory PlayerFactory
	log           zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Option configures optional Manager behavior.
type Option func(*Manager)

// WithPlayerFactory overrides how a Session builds its AudioPlayer once
// joined, used by tests to avoid a real voice connection.
func WithPlayerFactory(factory PlayerFactory) Option {
	return func(m *Manager) { m.playerFactory = factory }
}

// New builds a Manager. settings may be a StaticSettingsProvider until the
// settings package is wired in; refresh may be nil until the presenter is.
func New(sess types.SessionInterface, settings SettingsProvider, res *resolver.Resolver, refresh RefreshFunc, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		session:       sess,
		settings:      settings,
		resolver:      res,
		refresh:       refresh,
		playerFactory: defaultPlayerFactory,
		log:           log,
		sessions:      make(map[string]*Session),
	}
	m.related = m.resolveRelatedTrack
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// sessionFor returns the guild's Session, creating it if absent.
func (m *Manager) sessionFor(guildID string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[guildID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[guildID]; ok {
		return s
	}
	s = newSession(guildID, m.session, m.settings, m.related, m.refresh, m.playerFactory, m.log)
	m.sessions[guildID] = s
	return s
}

// Lookup returns the guild's Session without creating one, and whether it
// exists.
func (m *Manager) Lookup(guildID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[guildID]
	return s, ok
}

// Join connects to a voice channel for the guild, creating the session if
// needed.
func (m *Manager) Join(ctx context.Context, guildID, channelID string) error {
	return m.sessionFor(guildID).Join(ctx, channelID)
}

// Leave disconnects and drops the guild's session entirely.
func (m *Manager) Leave(guildID string) error {
	m.mu.Lock()
	s, ok := m.sessions[guildID]
	if ok {
		delete(m.sessions, guildID)
	}
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Leave()
}

// Enqueue resolves query through the resolver chain (applying the guild's
// domain policy) and enqueues the results per mode, starting playback if the
// queue was empty. Returns the resolved tracks for the caller to render.
func (m *Manager) Enqueue(ctx context.Context, guildID string, query types.Query, mode types.EnqueueMode, requester int64) ([]*types.ResolvedTrack, error) {
	s := m.sessionFor(guildID)
	if !s.Connected() {
		return nil, types.New(types.ErrNotConnected, "")
	}

	policy := s.ResolvePolicy()
	tracks, err := m.resolver.Resolve(ctx, query, policy)
	if err != nil {
		return nil, err
	}
	for _, t := range tracks {
		t.Requester = requester
	}

	wasEmpty, wasPlaying := false, false
	err = s.Handle(func(q *queue.Queue, p types.AudioPlayer) error {
		wasEmpty = q.Len() == 0
		wasPlaying = p != nil && (p.IsPlaying() || p.IsPaused())
		// EnqueueMany(mode=Jump) inserts the new tracks at position 0 (the
		// queue engine's half of jump); the old position-0 track, now right
		// behind the inserted batch, is dropped here so it ends rather than
		// playing again, and the player is force-restarted below once the
		// handle is released.
		q.EnqueueMany(tracks, mode)
		if mode == types.ModeJump && wasPlaying {
			_, _ = q.Remove(len(tracks))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case mode == types.ModeJump && wasPlaying:
		s.ForceRestart(ctx)
	case wasEmpty:
		s.EnsurePlaying(ctx)
	}
	return tracks, nil
}

// Skip ends the current track, optionally dropping the leading to-1 entries
// first (spec §4.2 skip([to])).
func (m *Manager) Skip(ctx context.Context, guildID string, to int) error {
	s, ok := m.Lookup(guildID)
	if !ok {
		return types.New(types.ErrNothingPlaying, "")
	}
	hadPlayer := false
	err := s.Handle(func(q *queue.Queue, p types.AudioPlayer) error {
		if _, err := q.Skip(to); err != nil {
			return err
		}
		hadPlayer = p != nil
		return nil
	})
	if err != nil {
		return err
	}
	if hadPlayer {
		s.ForceRestart(ctx)
	}
	return nil
}

// Pause pauses the current track.
func (m *Manager) Pause(guildID string) error {
	s, ok := m.Lookup(guildID)
	if !ok {
		return types.New(types.ErrNothingPlaying, "")
	}
	return s.Handle(func(q *queue.Queue, p types.AudioPlayer) error {
		if p == nil {
			return types.New(types.ErrNothingPlaying, "")
		}
		return p.Pause()
	})
}

// Resume resumes the current track.
func (m *Manager) Resume(guildID string) error {
	s, ok := m.Lookup(guildID)
	if !ok {
		return types.New(types.ErrNothingPlaying, "")
	}
	return s.Handle(func(q *queue.Queue, p types.AudioPlayer) error {
		if p == nil {
			return types.New(types.ErrNothingPlaying, "")
		}
		return p.Resume()
	})
}

// Stop stops playback and clears the queue down to nothing.
func (m *Manager) Stop(guildID string) error {
	s, ok := m.Lookup(guildID)
	if !ok {
		return nil
	}
	return s.Handle(func(q *queue.Queue, p types.AudioPlayer) error {
		q.Clear()
		_, _ = q.PopFront()
		if p != nil {
			return p.Stop()
		}
		return nil
	})
}

// SetVolume applies a new volume to the current and future tracks.
func (m *Manager) SetVolume(guildID string, volume float64) error {
	s, ok := m.Lookup(guildID)
	if !ok {
		return types.New(types.ErrNotConnected, "")
	}
	return s.Handle(func(q *queue.Queue, p types.AudioPlayer) error {
		q.SetVolume(volume)
		if p != nil {
			return p.SetVolume(volume)
		}
		return nil
	})
}

// Seek restarts the current track through the player's Seek; the DCAPlayer
// restarts from the beginning and does not apply position.
func (m *Manager) Seek(ctx context.Context, guildID string, position int64) error {
	s, ok := m.Lookup(guildID)
	if !ok {
		return types.New(types.ErrNothingPlaying, "")
	}
	return s.Seek(ctx, position)
}

// Snapshot returns the guild's current queue contents for display.
func (m *Manager) Snapshot(guildID string) []*types.ResolvedTrack {
	s, ok := m.Lookup(guildID)
	if !ok {
		return nil
	}
	var out []*types.ResolvedTrack
	_ = s.Handle(func(q *queue.Queue, p types.AudioPlayer) error {
		out = q.Snapshot()
		return nil
	})
	return out
}

// resolveRelatedTrack is the default autoplay hook (spec §4.2 step 4):
// search for more of the same using the finished track's title, relying on
// the resolver's own fallback chain. A thin heuristic, not a recommendation
// engine - good enough to keep a channel from going silent.
func (m *Manager) resolveRelatedTrack(ctx context.Context, last *types.ResolvedTrack) (*types.ResolvedTrack, error) {
	if last == nil || m.resolver == nil {
		return nil, types.New(types.ErrEmptySearchResult, "")
	}
	seed := last.Metadata.Channel
	if seed == "" {
		seed = last.Metadata.Title
	}
	tracks, err := m.resolver.Resolve(ctx, types.Query{Tag: types.QueryKeywords, Text: seed}, resolver.DomainPolicy{AllowAllDomains: true})
	if err != nil || len(tracks) == 0 {
		return nil, types.New(types.ErrEmptySearchResult, seed)
	}
	return tracks[0], nil
}
