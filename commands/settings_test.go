package commands

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"

	"cracktunes-go/music/presenter"
)

func optString(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Value: value}
}

func TestApplySettingsFormOnlyTouchesPresentOptions(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	gs := h.Deps.Settings.Get(context.Background(), "guild-1", "test-guild")
	before := gs.Snapshot()

	options := []*discordgo.ApplicationCommandInteractionDataOption{optString("prefix", "?")}
	form, err := presenter.DecodeSettingsForm(options)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	applied := applySettingsForm(gs, options, form)

	after := gs.Snapshot()
	if after.Prefix != "?" {
		t.Fatalf("expected prefix to update, got %q", after.Prefix)
	}
	if after.Volume != before.Volume {
		t.Fatalf("expected volume to stay untouched, got %v", after.Volume)
	}
	if len(applied) != 1 || applied[0] != "prefix" {
		t.Fatalf("unexpected applied list: %v", applied)
	}
}

func TestApplySettingsFormWithNoOptionsAppliesNothing(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	gs := h.Deps.Settings.Get(context.Background(), "guild-1", "test-guild")

	form, err := presenter.DecodeSettingsForm(nil)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	applied := applySettingsForm(gs, nil, form)
	if len(applied) != 0 {
		t.Fatalf("expected nothing applied, got %v", applied)
	}
}
