// Package manager owns the one-session-per-guild voice/queue/player wiring
// (spec §4.3): a per-guild join mutex serializing connect attempts, a
// voice-handle lock guarding the queue engine, a background idle ticker, and
// the on_track_end hook that reacts to the player's terminal track states.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"cracktunes-go/music/queue"
	"cracktunes-go/music/resolver"
	"cracktunes-go/music/types"
)

const idleTickInterval = 60 * time.Second

// RelatedTrackFunc resolves a followup track when autoplay is enabled and
// the queue runs dry. Injected so Session never imports a concrete resolver
// implementation directly.
type RelatedTrackFunc func(ctx context.Context, last *types.ResolvedTrack) (*types.ResolvedTrack, error)

// RefreshFunc fans out a queue-display refresh to every live message for a
// guild (spec §4.2 on_track_end step 5, implemented by the presenter).
type RefreshFunc func(guildID string)

// Session is one guild's voice connection plus its queue engine and player.
// Created lazily on Join, torn down on Leave (explicit or idle).
type Session struct {
	guildID string
	session types.SessionInterface
	log     zerolog.Logger

	settings      SettingsProvider
	related       RelatedTrackFunc
	refresh       RefreshFunc
	playerFactory PlayerFactory

	joinMu sync.Mutex // serializes concurrent Join calls for this guild

	mu         sync.Mutex // the voice-handle lock: guards everything below
	voiceConn  *discordgo.VoiceConnection
	queue      *queue.Queue
	player     types.AudioPlayer
	channelID  string
	skipVotes  map[string]struct{}
	idleTicks  int
	stopIdle   chan struct{}
	idleDone   chan struct{}
	trackEndWG sync.WaitGroup

	// transition suppresses the normal on_track_end reaction for a pending
	// watcher whose terminal state was provoked internally rather than by
	// the track actually finishing: transitionForceRestart means "play
	// whatever is now at position 0" (the queue was already rearranged by the
	// jump or skip), and transitionSeekRestart means "do nothing, a replacement Play() is already under
	// way" (player.Seek() re-invokes Play() synchronously itself).
	transition transitionKind
}

type transitionKind int

const (
	transitionNone transitionKind = iota
	transitionForceRestart
	transitionSeekRestart
)

func newSession(guildID string, sess types.SessionInterface, settings SettingsProvider, related RelatedTrackFunc, refresh RefreshFunc, playerFactory PlayerFactory, log zerolog.Logger) *Session {
	return &Session{
		guildID:       guildID,
		session:       sess,
		settings:      settings,
		related:       related,
		refresh:       refresh,
		playerFactory: playerFactory,
		log:           log.With().Str("guild_id", guildID).Logger(),
		queue:         queue.New(1.0),
		skipVotes:     make(map[string]struct{}),
	}
}

// Join connects to channelID, serialized per-guild by joinMu. Fails with
// AlreadyConnected if already connected to a *different* channel; joining
// the same channel again is a no-op.
func (s *Session) Join(ctx context.Context, channelID string) error {
	s.joinMu.Lock()
	defer s.joinMu.Unlock()

	s.mu.Lock()
	if s.voiceConn != nil {
		current := s.channelID
		s.mu.Unlock()
		if current == channelID {
			return nil
		}
		return types.New(types.ErrAlreadyConnected, fmt.Sprintf("<#%s>", current))
	}
	s.mu.Unlock()

	vc, err := s.session.ChannelVoiceJoin(s.guildID, channelID, false, true)
	if err != nil {
		return types.Wrap(types.ErrJoinChannel, channelID, err)
	}

	s.mu.Lock()
	s.voiceConn = vc
	s.channelID = channelID
	s.player = s.playerFactory(s.guildID, vc, s.log)
	s.mu.Unlock()

	s.startIdleLoop()

	s.log.Info().Str("channel_id", channelID).Msg("joined voice channel")
	return nil
}

// Leave tears down the session: stops the idle loop, stops playback, clears
// the queue, and disconnects.
func (s *Session) Leave() error {
	s.mu.Lock()
	vc := s.voiceConn
	p := s.player
	s.mu.Unlock()

	if vc == nil {
		return nil
	}

	s.stopIdleLoop()

	if p != nil {
		_ = p.Stop()
	}

	s.mu.Lock()
	s.queue.Clear()
	_, _ = s.queue.PopFront()
	s.voiceConn = nil
	s.player = nil
	s.channelID = ""
	s.mu.Unlock()

	s.trackEndWG.Wait()
	err := vc.Disconnect()
	s.log.Info().Msg("left voice channel")
	return err
}

// Handle runs fn with the voice-handle lock held, the single entry point the
// command dispatcher uses to touch the queue or player for this guild.
func (s *Session) Handle(fn func(q *queue.Queue, p types.AudioPlayer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.queue, s.player)
}

// Connected reports whether the session currently holds a voice connection.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceConn != nil
}

// ChannelID returns the currently joined voice channel, or "" if none.
func (s *Session) ChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID
}

// AddSkipVote records userID's vote to skip the current track and returns
// the current vote count. Votes are cleared on every track end (spec §4.2
// on_track_end step 1).
func (s *Session) AddSkipVote(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipVotes[userID] = struct{}{}
	return len(s.skipVotes)
}

// SkipVoteCount returns the number of distinct users who have voted to skip
// the current track.
func (s *Session) SkipVoteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.skipVotes)
}

// playFront starts the player on the queue's current track, used after any
// operation that changes position 0 (enqueue-to-empty, skip, jump). Each
// call spawns a fresh watcher on the player's Done() channel: Play()
// allocates a new channel per track (player.resetChannels), so a watcher
// must be rearmed after every Play rather than ranging over a channel
// reference taken once.
func (s *Session) playFront(ctx context.Context) {
	s.mu.Lock()
	track, ok := s.queue.Current()
	p := s.player
	s.mu.Unlock()
	if !ok || p == nil {
		return
	}
	if err := p.Play(ctx, track); err != nil {
		s.log.Error().Err(err).Str("track", track.Metadata.Title).Msg("play failed")
		return
	}
	s.armTrackEndWatcher(ctx, p)
}

// armTrackEndWatcher waits for the next terminal state from p's current
// Done() channel and runs the on_track_end hook when it arrives.
func (s *Session) armTrackEndWatcher(ctx context.Context, p types.AudioPlayer) {
	done := p.Done()
	s.trackEndWG.Add(1)
	go func() {
		defer s.trackEndWG.Done()
		state, ok := <-done
		if !ok || !state.Terminal() {
			return
		}
		s.onTrackEnd(ctx)
	}()
}

// ForceRestart interrupts whatever is currently playing and starts whatever
// is now at position 0, without running the normal on_track_end pop - used
// when the caller has already rearranged or trimmed the queue itself (Jump's
// "insert at front, then force-skip", and skip([to])'s "remove first, then
// play the new position 0").
func (s *Session) ForceRestart(ctx context.Context) {
	s.mu.Lock()
	s.transition = transitionForceRestart
	p := s.player
	s.mu.Unlock()
	if p != nil {
		_ = p.Stop()
	}
}

// Seek seeks the current track, which restarts its encode under the hood
// (player.Seek re-invokes Play). The watcher armed for the pre-seek Play
// call will still observe that restart as a terminal state on the old
// Done() channel; mark it so on_track_end ignores it entirely, since the
// new Play() call arms its own watcher.
func (s *Session) Seek(ctx context.Context, position int64) error {
	s.mu.Lock()
	p := s.player
	if p == nil {
		s.mu.Unlock()
		return types.New(types.ErrNothingPlaying, "")
	}
	s.transition = transitionSeekRestart
	s.mu.Unlock()

	if err := p.Seek(ctx, position); err != nil {
		s.mu.Lock()
		s.transition = transitionNone
		s.mu.Unlock()
		return err
	}
	s.armTrackEndWatcher(ctx, p)
	return nil
}

// EnsurePlaying starts playback of position 0 if nothing is currently
// playing (used right after Join + first enqueue).
func (s *Session) EnsurePlaying(ctx context.Context) {
	s.mu.Lock()
	p := s.player
	playing := p != nil && (p.IsPlaying() || p.IsPaused())
	s.mu.Unlock()
	if !playing {
		s.playFront(ctx)
	}
}

func (s *Session) startIdleLoop() {
	s.stopIdle = make(chan struct{})
	s.idleDone = make(chan struct{})
	go func() {
		defer close(s.idleDone)
		ticker := time.NewTicker(idleTickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopIdle:
				return
			case <-ticker.C:
				s.idleTick()
			}
		}
	}()
}

func (s *Session) stopIdleLoop() {
	if s.stopIdle == nil {
		return
	}
	close(s.stopIdle)
	<-s.idleDone
	s.stopIdle = nil
	s.idleDone = nil
}

// idleTick implements spec §4.2's idle handler: every 60s, if nothing is
// playing and the bot is alone in the voice channel, increment an in-memory
// counter; once it reaches timeout_seconds worth of ticks, disconnect and
// clear the queue. Any positive signal (someone present, or music playing)
// resets the counter to zero.
func (s *Session) idleTick() {
	s.mu.Lock()
	p := s.player
	channelID := s.channelID
	s.mu.Unlock()
	if p == nil {
		return
	}

	alone := s.isAlone(channelID)
	idle := !p.IsPlaying() && !p.IsPaused() && alone

	cfg := s.settings.MusicConfig(s.guildID)
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 300
	}

	if !idle {
		s.mu.Lock()
		s.idleTicks = 0
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.idleTicks++
	ticks := s.idleTicks
	s.mu.Unlock()

	if ticks*int(idleTickInterval.Seconds()) >= timeout {
		s.log.Info().Msg("idle timeout reached, disconnecting")
		_ = s.Leave()
	}
}

func (s *Session) isAlone(channelID string) bool {
	if channelID == "" {
		return false
	}
	guild, err := s.session.Guild(s.guildID)
	if err != nil {
		return false
	}
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		if vs.Member != nil && vs.Member.User != nil && !vs.Member.User.Bot {
			return false
		}
	}
	return true
}

// onTrackEnd runs the five on_track_end steps in order (spec §4.2).
// transitionForceRestart skips the pop and plays whatever ForceRestart left
// at position 0 (the jump already rearranged the queue). transitionSeekRestart
// ignores the event entirely: it is the pre-seek stream's terminal state
// surfacing after player.Seek() already started a replacement Play() with
// its own watcher.
func (s *Session) onTrackEnd(ctx context.Context) {
	s.mu.Lock()
	switch s.transition {
	case transitionForceRestart:
		s.transition = transitionNone
		s.mu.Unlock()
		s.playFront(ctx)
		if s.refresh != nil {
			s.refresh(s.guildID)
		}
		return
	case transitionSeekRestart:
		s.transition = transitionNone
		s.mu.Unlock()
		return
	}
	s.skipVotes = make(map[string]struct{})
	finished, ok := s.queue.PopFront()
	s.mu.Unlock()
	if !ok {
		return
	}

	cfg := s.settings.MusicConfig(s.guildID)

	s.mu.Lock()
	_, hasNext := s.queue.Current()
	s.queue.SetVolume(cfg.Volume)
	s.mu.Unlock()

	if !hasNext && cfg.Autoplay && s.related != nil {
		if followup, err := s.related(ctx, finished); err == nil && followup != nil {
			s.mu.Lock()
			s.queue.EnqueueBack(followup)
			_, hasNext = s.queue.Current()
			s.mu.Unlock()
		}
	}

	if hasNext {
		s.playFront(ctx)
		if cfg.AutoPause {
			s.mu.Lock()
			p := s.player
			s.mu.Unlock()
			if p != nil {
				_ = p.Pause()
			}
		}
	}

	if s.refresh != nil {
		s.refresh(s.guildID)
	}
}

// ResolvePolicy exposes the guild's domain policy for the dispatcher to pass
// into the resolver chain.
func (s *Session) ResolvePolicy() resolver.DomainPolicy {
	return s.settings.MusicConfig(s.guildID).DomainPolicy
}
