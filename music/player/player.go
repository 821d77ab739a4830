// Package player streams a single ResolvedTrack to a Discord voice
// connection via DCA/Opus, one track at a time.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonas747/dca"
	"github.com/rs/zerolog"

	"cracktunes-go/music/types"
)

// DCAPlayer implements types.AudioPlayer for a single guild's voice
// connection, encoding whatever ResolvedTrack it is handed through FFmpeg
// via DCA and streaming Opus frames to Discord.
type DCAPlayer struct {
	guildID   string
	voiceConn *discordgo.VoiceConnection
	log       zerolog.Logger

	current atomic.Pointer[types.ResolvedTrack]
	volume  atomic.Int64 // stored as volume*1000 for integer atomics
	playing atomic.Bool
	paused  atomic.Bool

	stopChan   chan struct{}
	pauseChan  chan struct{}
	resumeChan chan struct{}
	doneChan   chan types.TrackState

	mu            sync.Mutex
	encoder       *dca.EncodeSession
	streamSession *dca.StreamingSession
	testMode      bool
}

// New creates a player bound to a guild's voice connection.
func New(guildID string, voiceConn *discordgo.VoiceConnection, log zerolog.Logger) *DCAPlayer {
	p := &DCAPlayer{
		guildID:   guildID,
		voiceConn: voiceConn,
		log:       log.With().Str("guild_id", guildID).Logger(),
	}
	p.volume.Store(1000)
	p.resetChannels()
	return p
}

// NewForTesting creates a player that simulates playback without touching
// FFmpeg or a real voice connection.
func NewForTesting(guildID string, log zerolog.Logger) *DCAPlayer {
	p := New(guildID, nil, log)
	p.testMode = true
	return p
}

func (p *DCAPlayer) resetChannels() {
	p.stopChan = make(chan struct{})
	p.pauseChan = make(chan struct{})
	p.resumeChan = make(chan struct{})
	p.doneChan = make(chan types.TrackState, 1)
}

// Play begins streaming track, stopping whatever was previously playing.
func (p *DCAPlayer) Play(ctx context.Context, track *types.ResolvedTrack) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Info().Str("title", track.Metadata.Title).Msg("starting playback")

	if !p.testMode {
		if err := p.validateVoiceConnection(); err != nil {
			return fmt.Errorf("voice connection validation failed: %w", err)
		}
	}

	p.stopLocked()
	time.Sleep(10 * time.Millisecond)
	p.resetChannels()

	p.current.Store(track)
	p.playing.Store(true)
	p.paused.Store(false)

	go p.playbackLoop(ctx, track)
	return nil
}

func (p *DCAPlayer) playbackLoop(ctx context.Context, track *types.ResolvedTrack) {
	final := types.TrackEnded
	defer func() {
		p.playing.Store(false)
		p.paused.Store(false)
		p.current.Store(nil)
		p.cleanupEncoder()
		select {
		case p.doneChan <- final:
		default:
		}
	}()

	if p.testMode {
		final = p.testModePlayback(ctx)
		return
	}

	encoder, err := p.createEncoder(track)
	if err != nil {
		p.log.Error().Err(err).Msg("encoder creation failed")
		final = types.TrackFailed
		return
	}
	defer encoder.Cleanup()
	p.encoder = encoder

	streamDone := make(chan error, 1)
	go func() { streamDone <- p.streamToVoice(encoder) }()

	for {
		select {
		case <-ctx.Done():
			final = types.TrackCancelled
			return
		case <-p.stopChan:
			final = types.TrackCancelled
			return
		case err := <-streamDone:
			if err != nil {
				p.log.Error().Err(err).Msg("streaming error")
				final = types.TrackFailed
			}
			return
		case <-p.pauseChan:
			p.paused.Store(true)
			if p.voiceConn != nil {
				p.voiceConn.Speaking(false)
			}
			select {
			case <-p.resumeChan:
				p.paused.Store(false)
				if p.voiceConn != nil {
					p.voiceConn.Speaking(true)
				}
				continue
			case <-p.stopChan:
				final = types.TrackCancelled
				return
			case <-ctx.Done():
				final = types.TrackCancelled
				return
			}
		}
	}
}

func (p *DCAPlayer) testModePlayback(ctx context.Context) types.TrackState {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return types.TrackCancelled
		case <-p.stopChan:
			return types.TrackCancelled
		case <-p.pauseChan:
			p.paused.Store(true)
			select {
			case <-p.resumeChan:
				p.paused.Store(false)
				continue
			case <-p.stopChan:
				return types.TrackCancelled
			case <-ctx.Done():
				return types.TrackCancelled
			}
		case <-ticker.C:
			if !p.playing.Load() {
				return types.TrackEnded
			}
		}
	}
}

// Pause signals the playback loop to pause.
func (p *DCAPlayer) Pause() error {
	if !p.IsPlaying() {
		return types.New(types.ErrNothingPlaying, "")
	}
	if p.IsPaused() {
		return nil
	}
	select {
	case p.pauseChan <- struct{}{}:
		return nil
	default:
		return fmt.Errorf("failed to pause audio")
	}
}

// Resume signals the playback loop to resume.
func (p *DCAPlayer) Resume() error {
	if !p.IsPlaying() {
		return types.New(types.ErrNothingPlaying, "")
	}
	if !p.IsPaused() {
		return nil
	}
	select {
	case p.resumeChan <- struct{}{}:
		return nil
	default:
		return fmt.Errorf("failed to resume audio")
	}
}

// Stop halts the current playback, if any.
func (p *DCAPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *DCAPlayer) stopLocked() {
	if !p.playing.Load() {
		return
	}
	p.playing.Store(false)
	p.paused.Store(false)
	select {
	case p.stopChan <- struct{}{}:
	default:
	}
	p.current.Store(nil)
	p.cleanupEncoder()
}

// Seek restarts the current track's encode from the beginning via Play;
// position is not applied (this FFmpeg pipeline has no mid-stream seek and
// its StartTime stays 0).
func (p *DCAPlayer) Seek(ctx context.Context, position int64) error {
	p.mu.Lock()
	track := p.current.Load()
	p.mu.Unlock()
	if track == nil {
		return types.New(types.ErrNothingPlaying, "")
	}
	return p.Play(ctx, track)
}

// SetVolume sets the volume (0.0-1.0+) applied on the next encoder creation.
// DCA bakes volume into the FFmpeg filter graph at encode time, so an
// in-flight track only picks up the new volume on its next Play.
func (p *DCAPlayer) SetVolume(volume float64) error {
	if volume < 0 {
		return types.NotInRange("volume", 0, 100)
	}
	p.volume.Store(int64(volume * 1000))
	return nil
}

// GetVolume returns the current volume setting.
func (p *DCAPlayer) GetVolume() float64 {
	return float64(p.volume.Load()) / 1000.0
}

func (p *DCAPlayer) IsPlaying() bool { return p.playing.Load() }
func (p *DCAPlayer) IsPaused() bool  { return p.paused.Load() }

// CurrentTrack returns the track currently bound to this player, if any.
func (p *DCAPlayer) CurrentTrack() *types.ResolvedTrack { return p.current.Load() }

// Done returns a channel receiving the terminal state of the current Play call.
func (p *DCAPlayer) Done() <-chan types.TrackState { return p.doneChan }

func (p *DCAPlayer) cleanupEncoder() {
	if p.encoder != nil {
		p.encoder.Cleanup()
		p.encoder = nil
	}
	p.streamSession = nil
}

func (p *DCAPlayer) createEncoder(track *types.ResolvedTrack) (*dca.EncodeSession, error) {
	if track.StreamURL == "" {
		return nil, fmt.Errorf("stream URL is empty")
	}

	if err := p.validateStreamURL(track.StreamURL); err != nil {
		return nil, fmt.Errorf("stream URL validation failed: %w", err)
	}

	options := dca.StdEncodeOptions
	options.Volume = int(p.GetVolume() * 256)
	options.Channels = 2
	options.FrameRate = 48000
	options.FrameDuration = 20
	options.Bitrate = 96
	options.Application = "audio"
	options.CompressionLevel = 3
	options.PacketLoss = 1
	options.BufferedFrames = 200
	options.VBR = false
	options.RawOutput = false
	options.Threads = 2
	options.StartTime = 0
	options.AudioFilter = "aformat=sample_fmts=s16:channel_layouts=stereo:sample_rates=48000,aresample=48000"

	encoder, err := dca.EncodeFile(track.StreamURL, options)
	if err != nil {
		if encoder != nil {
			encoder.Cleanup()
		}
		errorMsg := err.Error()
		switch {
		case containsFold(errorMsg, "no such file or directory"):
			return nil, fmt.Errorf("audio stream URL is not accessible: %w", err)
		case containsFold(errorMsg, "invalid data found"):
			return nil, fmt.Errorf("invalid or corrupted audio format: %w", err)
		case containsFold(errorMsg, "connection refused") || containsFold(errorMsg, "timeout"):
			return nil, fmt.Errorf("network connection failed: %w", err)
		case containsFold(errorMsg, "403") || containsFold(errorMsg, "forbidden"):
			return nil, fmt.Errorf("access denied to audio stream: %w", err)
		case containsFold(errorMsg, "404") || containsFold(errorMsg, "not found"):
			return nil, fmt.Errorf("audio stream not found: %w", err)
		case containsFold(errorMsg, "429") || containsFold(errorMsg, "too many requests"):
			return nil, fmt.Errorf("rate limited by video provider: %w", err)
		default:
			return nil, fmt.Errorf("failed to create audio encoder: %w", err)
		}
	}
	if encoder == nil {
		return nil, fmt.Errorf("encoder is nil despite successful creation")
	}
	return encoder, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (p *DCAPlayer) validateStreamURL(url string) error {
	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequest("HEAD", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; cracktunes)")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to access stream URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("stream URL returned non-success status: %s", resp.Status)
	}
	return nil
}

func (p *DCAPlayer) streamToVoice(encoder *dca.EncodeSession) error {
	if err := p.streamToVoiceRobust(encoder); err != nil {
		p.log.Warn().Err(err).Msg("robust streaming failed, falling back to basic")
		return p.streamToVoiceBasic(encoder)
	}
	return nil
}

func (p *DCAPlayer) streamToVoiceRobust(encoder *dca.EncodeSession) error {
	if err := p.validateVoiceConnectionWithRetry(3); err != nil {
		return err
	}
	if err := p.voiceConn.Speaking(true); err != nil {
		return fmt.Errorf("failed to start speaking: %w", err)
	}
	defer func() {
		if p.voiceConn != nil {
			_ = p.voiceConn.Speaking(false)
		}
	}()
	return p.streamFrameByFrame(encoder)
}

func (p *DCAPlayer) streamFrameByFrame(encoder *dca.EncodeSession) error {
	frameCount := 0
	consecutiveErrors := 0
	const maxConsecutiveErrors = 5

	for {
		select {
		case <-p.stopChan:
			return nil
		default:
		}

		if p.paused.Load() {
			for p.paused.Load() {
				select {
				case <-p.stopChan:
					return nil
				case <-time.After(50 * time.Millisecond):
				}
			}
		}

		if frameCount%100 == 0 {
			if !encoder.Running() {
				return nil
			}
			if err := encoder.Error(); err != nil {
				return fmt.Errorf("encoder error: %w", err)
			}
			if err := p.validateVoiceConnection(); err != nil {
				return fmt.Errorf("voice connection lost: %w", err)
			}
		}

		frame, err := encoder.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				return fmt.Errorf("too many consecutive frame read errors: %w", err)
			}
			time.Sleep(time.Duration(consecutiveErrors*consecutiveErrors) * 100 * time.Millisecond)
			continue
		}
		consecutiveErrors = 0

		if err := p.sendFrameWithRetry(frame, 3); err != nil {
			return fmt.Errorf("frame send failed: %w", err)
		}
		frameCount++
	}
}

func (p *DCAPlayer) sendFrameWithRetry(frame []byte, maxRetries int) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case p.voiceConn.OpusSend <- frame:
			return nil
		case <-time.After(time.Second):
			lastErr = fmt.Errorf("frame send timeout on attempt %d", attempt)
			if err := p.validateVoiceConnection(); err != nil {
				return fmt.Errorf("voice connection lost during frame send: %w", err)
			}
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
			}
		}
	}
	return fmt.Errorf("failed to send frame after %d attempts: %w", maxRetries, lastErr)
}

func (p *DCAPlayer) streamToVoiceBasic(encoder *dca.EncodeSession) error {
	if err := p.validateVoiceConnection(); err != nil {
		return err
	}
	if err := p.voiceConn.Speaking(true); err != nil {
		return fmt.Errorf("failed to start speaking: %w", err)
	}
	defer func() {
		if p.voiceConn != nil {
			_ = p.voiceConn.Speaking(false)
		}
	}()

	done := make(chan error, 1)
	streamSession := dca.NewStream(encoder, p.voiceConn, done)
	p.streamSession = streamSession

	for {
		select {
		case err := <-done:
			if err != nil {
				errorMsg := err.Error()
				switch {
				case containsFold(errorMsg, "connection reset") || containsFold(errorMsg, "broken pipe"):
					return fmt.Errorf("network connection interrupted: %w", err)
				case containsFold(errorMsg, "eof"):
					return nil
				default:
					return fmt.Errorf("streaming error: %w", err)
				}
			}
			return nil
		case <-p.stopChan:
			return nil
		default:
			if p.paused.Load() {
				streamSession.SetPaused(true)
				for p.paused.Load() {
					select {
					case <-p.stopChan:
						return nil
					case <-time.After(50 * time.Millisecond):
					}
				}
				streamSession.SetPaused(false)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (p *DCAPlayer) validateVoiceConnection() error {
	return p.validateVoiceConnectionWithRetry(1)
}

func (p *DCAPlayer) validateVoiceConnectionWithRetry(maxRetries int) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if p.voiceConn == nil {
			lastErr = fmt.Errorf("voice connection is nil")
			continue
		}
		if !p.voiceConn.Ready {
			lastErr = fmt.Errorf("voice connection is not ready")
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt) * time.Second)
			}
			continue
		}
		if p.voiceConn.OpusSend == nil {
			lastErr = fmt.Errorf("voice connection OpusSend channel is nil")
			continue
		}
		return nil
	}
	return fmt.Errorf("voice connection validation failed after %d attempts: %w", maxRetries, lastErr)
}

// Cleanup releases all player resources, stopping playback first.
func (p *DCAPlayer) Cleanup() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	time.Sleep(20 * time.Millisecond)
	p.voiceConn = nil
	return nil
}

var _ types.AudioPlayer = (*DCAPlayer)(nil)
