// Package background owns the bot's long-running loops that aren't tied to
// a single guild session: camera-policy enforcement and the shutdown signal
// handler. The per-guild idle-disconnect loop lives with the session it
// disconnects (music/manager/session.go), since it already holds the lock
// that loop needs.
package background

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"cracktunes-go/config"
)

const defaultCamPollInterval = 30 * time.Second

// CameraPolicy enforces the cam_kick config (spec §3.3/§4.8): a member
// sitting in a configured channel with their camera off past the
// configured timeout gets muted and deafened, each with its own optional
// notice message.
type CameraPolicy struct {
	session *discordgo.Session
	rules   map[string]config.CamKickRule // keyed by channel ID
	log     zerolog.Logger

	offSince map[camKey]time.Time
}

type camKey struct {
	channelID string
	userID    string
}

// NewCameraPolicy indexes rules by channel ID, the key voice states are
// checked against. A config with no cam_kick entries yields a CameraPolicy
// whose Run is a no-op, matching spec §4.8's "disabled unless cam_kick
// config is present."
func NewCameraPolicy(session *discordgo.Session, rules []config.CamKickRule, log zerolog.Logger) *CameraPolicy {
	byChannel := make(map[string]config.CamKickRule, len(rules))
	for _, rule := range rules {
		byChannel[strconv.FormatInt(rule.ChannelID, 10)] = rule
	}
	return &CameraPolicy{
		session:  session,
		rules:    byChannel,
		log:      log.With().Str("component", "camera_policy").Logger(),
		offSince: make(map[camKey]time.Time),
	}
}

// Run polls every configured channel on its own ticker, one errgroup
// goroutine per rule, until ctx is canceled.
func (p *CameraPolicy) Run(ctx context.Context) error {
	if len(p.rules) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for channelID, rule := range p.rules {
		channelID, rule := channelID, rule
		g.Go(func() error {
			return p.watch(gctx, channelID, rule)
		})
	}
	return g.Wait()
}

func (p *CameraPolicy) watch(ctx context.Context, channelID string, rule config.CamKickRule) error {
	interval := rule.Timeout
	if interval <= 0 {
		interval = defaultCamPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	guildID := strconv.FormatInt(rule.GuildID, 10)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.sweep(guildID, channelID, rule)
		}
	}
}

func (p *CameraPolicy) sweep(guildID, channelID string, rule config.CamKickRule) {
	guild, err := p.session.State.Guild(guildID)
	if err != nil {
		p.log.Debug().Err(err).Str("guild_id", guildID).Msg("guild not in state cache, skipping sweep")
		return
	}

	for _, userID := range p.evaluate(guild.VoiceStates, channelID, rule, time.Now()) {
		p.enforce(guildID, userID, rule)
	}
}

// evaluate is sweep's pure half: it updates offSince bookkeeping from the
// current voice states and returns the user IDs that have now been
// cammed-down past rule.Timeout. Kept free of any *discordgo.Session calls
// so it can run against hand-built voice states in a test.
func (p *CameraPolicy) evaluate(voiceStates []*discordgo.VoiceState, channelID string, rule config.CamKickRule, now time.Time) []string {
	seen := make(map[camKey]struct{}, len(voiceStates))
	var toEnforce []string

	for _, vs := range voiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		key := camKey{channelID: channelID, userID: vs.UserID}
		seen[key] = struct{}{}

		if vs.SelfVideo {
			delete(p.offSince, key)
			continue
		}

		since, tracked := p.offSince[key]
		if !tracked {
			p.offSince[key] = now
			continue
		}
		if now.Sub(since) < rule.Timeout {
			continue
		}

		toEnforce = append(toEnforce, key.userID)
		delete(p.offSince, key)
	}

	// Drop tracking for users who left the channel entirely.
	for key := range p.offSince {
		if key.channelID != channelID {
			continue
		}
		if _, ok := seen[key]; !ok {
			delete(p.offSince, key)
		}
	}

	return toEnforce
}

func (p *CameraPolicy) enforce(guildID, userID string, rule config.CamKickRule) {
	if err := p.session.GuildMemberDeafen(guildID, userID, true); err != nil {
		p.log.Error().Err(err).Str("user_id", userID).Msg("failed to deafen cammed-down member")
	} else {
		p.notify(rule, rule.MsgOnDeafen, userID, "deafened")
	}

	if err := p.session.GuildMemberMute(guildID, userID, true); err != nil {
		p.log.Error().Err(err).Str("user_id", userID).Msg("failed to mute cammed-down member")
	} else {
		p.notify(rule, rule.MsgOnMute, userID, "muted")
	}
}

func (p *CameraPolicy) notify(rule config.CamKickRule, message, userID, action string) {
	if message == "" {
		return
	}
	channelID := strconv.FormatInt(rule.ChannelID, 10)
	content := fmt.Sprintf("<@%s> %s: %s", userID, message, action)
	if _, err := p.session.ChannelMessageSend(channelID, content); err != nil {
		p.log.Warn().Err(err).Str("user_id", userID).Msg("failed to send camera-policy notice")
	}
}
