package commands

import (
	"testing"

	"cracktunes-go/music/types"
	"cracktunes-go/store"
)

// nonNilStore is enough to pass handlePlaylist's "deps.Store == nil" guard.
// Every test below returns before touching any of its nil sub-repositories.
func nonNilStore() *store.Store { return &store.Store{} }

func TestHandlePlaylistRequiresStore(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-1")
	err := handlePlaylist(inv, h.Deps, "create my-mix")
	assertKind(t, err, types.ErrNoDatabasePool)
}

func TestHandlePlaylistUnknownVerb(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	h.Deps.Store = nonNilStore()
	inv := h.invocation("guild-1")
	err := handlePlaylist(inv, h.Deps, "frobnicate")
	assertKind(t, err, types.ErrNoTrackName)
}

func TestHandlePlaylistCreateRequiresName(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	h.Deps.Store = nonNilStore()
	inv := h.invocation("guild-1")
	err := handlePlaylist(inv, h.Deps, "create   ")
	assertKind(t, err, types.ErrNoTrackName)
}

func TestHandlePlaylistSaveRequiresCurrentQueue(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	h.Deps.Store = nonNilStore()
	inv := h.invocation("guild-1")
	err := handlePlaylist(inv, h.Deps, "save my-mix")
	assertKind(t, err, types.ErrNothingPlaying)
}

func TestSplitFirstToken(t *testing.T) {
	head, rest := splitFirstToken("  create   my mix  ")
	if head != "create" {
		t.Fatalf("unexpected head: %q", head)
	}
	if rest != "my mix" {
		t.Fatalf("unexpected rest: %q", rest)
	}
}

func TestGuildChannelInt64(t *testing.T) {
	inv := Invocation{GuildID: "42", ChannelID: "7"}
	g, c := guildChannelInt64(inv)
	if g != 42 || c != 7 {
		t.Fatalf("unexpected guildChannelInt64: %d, %d", g, c)
	}
}
