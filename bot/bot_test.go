package bot

import (
	"testing"

	"github.com/rs/zerolog"

	"cracktunes-go/config"
	"cracktunes-go/store"
)

func TestNewWiresADeps(t *testing.T) {
	cfg := &config.Config{DiscordToken: "test.token", DiscordAppID: "123"}
	b, err := New(cfg, &store.Store{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Session == nil {
		t.Fatal("expected a discordgo session")
	}
	if b.deps.Manager == nil || b.deps.Resolver == nil || b.deps.Settings == nil {
		t.Fatal("expected New to wire manager/resolver/settings")
	}
	if b.deps.Presenter == nil || b.deps.PresenterEd == nil || b.deps.Lyrics == nil {
		t.Fatal("expected New to wire the presenter cache/editor/lyrics provider")
	}
	if b.cameras == nil {
		t.Fatal("expected New to build a camera policy")
	}
}

func TestNewIndexesBotOwners(t *testing.T) {
	cfg := &config.Config{DiscordToken: "test.token", DiscordAppID: "123", Owners: []int64{42, 7}}
	b, err := New(cfg, &store.Store{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.deps.IsOwner("42") || !b.deps.IsOwner("7") {
		t.Fatal("expected configured owner IDs to be recognized")
	}
	if b.deps.IsOwner("999") {
		t.Fatal("expected an unconfigured ID to not be recognized as owner")
	}
}

func TestPageFromFooterDefaultsToZero(t *testing.T) {
	if got := pageFromFooter(nil); got != 0 {
		t.Fatalf("expected page 0, got %d", got)
	}
}
