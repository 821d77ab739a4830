package commands

import (
	"testing"

	"cracktunes-go/music/types"
)

func TestHandlePlayRequiresNonEmptyArgs(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-1")

	err := handlePlay(inv, h.Deps, "   ", types.ModeEnd, false)
	assertKind(t, err, types.ErrNoTrackName)
}

func TestHandlePlayJoinsThenEnqueues(t *testing.T) {
	h := newTestHarness([]*types.ResolvedTrack{testTrack("song a")}, newFakePlayer())
	inv := h.invocation("guild-1")

	if err := handlePlay(inv, h.Deps, "song a", types.ModeEnd, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.lastReply(); got != "Queued **song a**" {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestHandleSearchRequiresArgs(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-1")
	err := handleSearch(inv, h.Deps, "")
	assertKind(t, err, types.ErrNoTrackName)
}

func TestHandleStopWithoutSessionIsANoOp(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-never-joined")
	if err := handleStop(inv, h.Deps, ""); err != nil {
		t.Fatalf("Stop on a guild with no session should be a no-op, got: %v", err)
	}
	if got := h.lastReply(); got != "⏹️ Stopped and cleared the queue." {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestHandleVolumeReportsCurrentWithNoArgs(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-1")
	if err := handleVolume(inv, h.Deps, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.lastReply(); got == "" {
		t.Fatal("expected a volume reply")
	}
}

func TestHandleVolumeRejectsOutOfRange(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-1")
	err := handleVolume(inv, h.Deps, "500")
	assertKind(t, err, types.ErrNotInRange)
}

func TestHandleQueueReportsEmpty(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-1")
	if err := handleQueue(inv, h.Deps, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.lastReply(); got != "The queue is empty." {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestHandleGrabRequiresCurrentTrack(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-1")
	err := handleGrab(inv, h.Deps, "")
	assertKind(t, err, types.ErrNothingPlaying)
}

func TestHandleAutopauseTogglesAndPersists(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-1")

	if err := handleAutopause(inv, h.Deps, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.lastReply(); got != "Autopause is now **on**." {
		t.Fatalf("unexpected reply: %q", got)
	}
	if err := handleAutopause(inv, h.Deps, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := h.lastReply(); got != "Autopause is now **off**." {
		t.Fatalf("unexpected reply: %q", got)
	}
}

func TestHandleSummonRequiresAChannel(t *testing.T) {
	h := newTestHarness(nil, newFakePlayer())
	inv := h.invocation("guild-1")
	inv.VoiceChannelID = ""
	err := handleSummon(inv, h.Deps, "")
	assertKind(t, err, types.ErrAuthorDisconnected)
}

func TestParseTimestampAcceptsMultipleFormats(t *testing.T) {
	cases := map[string]int64{
		"90":      90,
		"1:30":    90,
		"1:01:05": 3665,
	}
	for input, want := range cases {
		got, err := parseTimestamp(input)
		if err != nil {
			t.Fatalf("parseTimestamp(%q): unexpected error: %v", input, err)
		}
		if got != want {
			t.Fatalf("parseTimestamp(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	_, err := parseTimestamp("not-a-time")
	assertKind(t, err, types.ErrParseTimeFail)
}

func TestFormatTimestamp(t *testing.T) {
	if got := formatTimestamp(65); got != "1:05" {
		t.Fatalf("formatTimestamp(65) = %q", got)
	}
	if got := formatTimestamp(3665); got != "1:01:05" {
		t.Fatalf("formatTimestamp(3665) = %q", got)
	}
}

func TestEnqueuedReply(t *testing.T) {
	if got := enqueuedReply(nil); got != "Nothing resolved for that query." {
		t.Fatalf("unexpected reply for empty tracks: %q", got)
	}
	one := []*types.ResolvedTrack{testTrack("solo")}
	if got := enqueuedReply(one); got != "Queued **solo**" {
		t.Fatalf("unexpected single-track reply: %q", got)
	}
	many := []*types.ResolvedTrack{testTrack("first"), testTrack("second")}
	if got := enqueuedReply(many); got != "Queued 2 tracks, starting with **first**" {
		t.Fatalf("unexpected multi-track reply: %q", got)
	}
}

func TestOnOff(t *testing.T) {
	if onOff(true) != "on" || onOff(false) != "off" {
		t.Fatal("onOff mismatch")
	}
}

func assertKind(t *testing.T, err error, want types.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %v, got nil", want)
	}
	playErr, ok := err.(*types.PlayError)
	if !ok {
		t.Fatalf("expected *types.PlayError, got %T", err)
	}
	if playErr.Kind != want {
		t.Fatalf("expected kind %v, got %v", want, playErr.Kind)
	}
}
