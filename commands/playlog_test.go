package commands

import (
	"testing"

	"cracktunes-go/music/types"
)

func TestHandlePlaylogRequiresStore(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-1")
	err := handlePlaylog(inv, h.Deps, "")
	assertKind(t, err, types.ErrNoDatabasePool)
}

func TestHandlePlaylogRequiresNumericGuildID(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	h.Deps.Store = nonNilStore()
	inv := h.invocation("not-a-number")
	err := handlePlaylog(inv, h.Deps, "")
	assertKind(t, err, types.ErrNoGuildID)
}
