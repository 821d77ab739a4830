package background

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"cracktunes-go/config"
)

func newTestPolicy() *CameraPolicy {
	return NewCameraPolicy(nil, nil, zerolog.Nop())
}

func voiceState(channelID, userID string, selfVideo bool) *discordgo.VoiceState {
	return &discordgo.VoiceState{ChannelID: channelID, UserID: userID, SelfVideo: selfVideo}
}

func TestEvaluateDoesNotEnforceOnFirstSighting(t *testing.T) {
	p := newTestPolicy()
	rule := config.CamKickRule{Timeout: time.Minute}

	got := p.evaluate([]*discordgo.VoiceState{voiceState("chan-1", "user-1", false)}, "chan-1", rule, time.Now())
	if len(got) != 0 {
		t.Fatalf("expected no enforcement on first sighting, got %v", got)
	}
	if _, tracked := p.offSince[camKey{"chan-1", "user-1"}]; !tracked {
		t.Fatal("expected offSince to start tracking the user")
	}
}

func TestEvaluateEnforcesAfterTimeoutElapses(t *testing.T) {
	p := newTestPolicy()
	rule := config.CamKickRule{Timeout: time.Minute}
	key := camKey{"chan-1", "user-1"}
	p.offSince[key] = time.Now().Add(-2 * time.Minute)

	got := p.evaluate([]*discordgo.VoiceState{voiceState("chan-1", "user-1", false)}, "chan-1", rule, time.Now())
	if len(got) != 1 || got[0] != "user-1" {
		t.Fatalf("expected user-1 to be enforced, got %v", got)
	}
	if _, tracked := p.offSince[key]; tracked {
		t.Fatal("expected offSince entry to be cleared after enforcement")
	}
}

func TestEvaluateResetsWhenCameraComesBackOn(t *testing.T) {
	p := newTestPolicy()
	rule := config.CamKickRule{Timeout: time.Minute}
	key := camKey{"chan-1", "user-1"}
	p.offSince[key] = time.Now().Add(-2 * time.Minute)

	got := p.evaluate([]*discordgo.VoiceState{voiceState("chan-1", "user-1", true)}, "chan-1", rule, time.Now())
	if len(got) != 0 {
		t.Fatalf("expected no enforcement once camera is back on, got %v", got)
	}
	if _, tracked := p.offSince[key]; tracked {
		t.Fatal("expected offSince entry to be cleared when camera turns back on")
	}
}

func TestEvaluateForgetsUsersWhoLeftChannel(t *testing.T) {
	p := newTestPolicy()
	rule := config.CamKickRule{Timeout: time.Minute}
	key := camKey{"chan-1", "user-1"}
	p.offSince[key] = time.Now().Add(-30 * time.Second)

	p.evaluate(nil, "chan-1", rule, time.Now())

	if _, tracked := p.offSince[key]; tracked {
		t.Fatal("expected offSince entry to be dropped once the user left the watched channel")
	}
}

func TestEvaluateIgnoresOtherChannels(t *testing.T) {
	p := newTestPolicy()
	rule := config.CamKickRule{Timeout: time.Minute}

	got := p.evaluate([]*discordgo.VoiceState{voiceState("other-chan", "user-1", false)}, "chan-1", rule, time.Now())
	if len(got) != 0 {
		t.Fatalf("expected no tracking for a different channel's voice state, got %v", got)
	}
	if len(p.offSince) != 0 {
		t.Fatalf("expected no offSince entries, got %v", p.offSince)
	}
}

func TestNewCameraPolicyIndexesRulesByChannel(t *testing.T) {
	p := NewCameraPolicy(nil, []config.CamKickRule{{ChannelID: 42, GuildID: 7, Timeout: time.Second}}, zerolog.Nop())
	if _, ok := p.rules["42"]; !ok {
		t.Fatalf("expected rule indexed under channel ID \"42\", got %v", p.rules)
	}
}

func TestRunIsNoOpWithoutRules(t *testing.T) {
	p := newTestPolicy()
	if err := p.Run(nil); err != nil { //nolint:staticcheck // nil context is fine: the no-rules path never reads it
		t.Fatalf("expected nil error for a policy with no rules, got %v", err)
	}
}
