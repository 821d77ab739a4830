package presenter

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"cracktunes-go/music/types"
)

func track(title string, d time.Duration) *types.ResolvedTrack {
	return &types.ResolvedTrack{
		Metadata: types.AuxMetadata{Title: title, SourceURL: "https://example.com/" + title, Duration: d},
	}
}

func TestNumPagesMinimumOne(t *testing.T) {
	if NumPages(0) != 1 {
		t.Fatalf("expected 1 page for an empty queue, got %d", NumPages(0))
	}
	if NumPages(1) != 1 {
		t.Fatalf("expected 1 page for just the current track, got %d", NumPages(1))
	}
}

func TestNumPagesCeilsOverUpcomingTracks(t *testing.T) {
	// 1 current + 6 upcoming = exactly one page of upcoming tracks.
	if got := NumPages(7); got != 1 {
		t.Fatalf("expected 1 page for 6 upcoming tracks, got %d", got)
	}
	// 1 current + 7 upcoming must spill onto a second page.
	if got := NumPages(8); got != 2 {
		t.Fatalf("expected 2 pages for 7 upcoming tracks, got %d", got)
	}
}

func TestClampPageBounds(t *testing.T) {
	if got := ClampPage(-1, 8); got != 0 {
		t.Fatalf("expected negative page clamped to 0, got %d", got)
	}
	if got := ClampPage(99, 8); got != NumPages(8)-1 {
		t.Fatalf("expected overflowing page clamped to the last page, got %d", got)
	}
}

func TestBuildQueueEmbedEmptyQueue(t *testing.T) {
	embed := BuildQueueEmbed(nil, 0)
	if embed.Description == "" {
		t.Fatal("expected a description for an empty queue")
	}
	if len(embed.Fields) != 0 {
		t.Fatal("expected no fields for an empty queue")
	}
}

func TestBuildQueueEmbedShowsCurrentTrack(t *testing.T) {
	tracks := []*types.ResolvedTrack{track("current", time.Minute)}
	embed := BuildQueueEmbed(tracks, 0)

	if len(embed.Fields) != 1 || embed.Fields[0].Name != "Now Playing" {
		t.Fatalf("expected a single Now Playing field, got %+v", embed.Fields)
	}
}

func TestBuildQueueEmbedPaginatesUpcomingTracks(t *testing.T) {
	tracks := []*types.ResolvedTrack{track("current", time.Minute)}
	for i := 0; i < 10; i++ {
		tracks = append(tracks, track("upcoming", time.Minute))
	}

	first := BuildQueueEmbed(tracks, 0)
	if len(first.Fields) != 2 || first.Fields[1].Name != "Up Next" {
		t.Fatalf("expected a Now Playing + Up Next field, got %+v", first.Fields)
	}

	second := BuildQueueEmbed(tracks, 1)
	if second.Fields[1].Value == first.Fields[1].Value {
		t.Fatal("expected page 1 to show a different set of tracks than page 0")
	}
}

func TestBuildQueueEmbedClampsOutOfRangePage(t *testing.T) {
	tracks := []*types.ResolvedTrack{track("current", time.Minute), track("only-upcoming", time.Minute)}
	embed := BuildQueueEmbed(tracks, 50)
	if embed.Fields[1].Value == "" {
		t.Fatal("expected the clamped page to still render upcoming tracks")
	}
}

func TestNavButtonsDisablesAtBoundaries(t *testing.T) {
	row := NavButtons(0, 3)[0].(discordgo.ActionsRow)
	first := row.Components[0].(discordgo.Button)
	last := row.Components[len(row.Components)-1].(discordgo.Button)
	if !first.Disabled {
		t.Fatal("expected the back button disabled on the first page")
	}
	if last.Disabled {
		t.Fatal("expected the forward button enabled when more pages remain")
	}

	row = NavButtons(2, 3)[0].(discordgo.ActionsRow)
	first = row.Components[0].(discordgo.Button)
	last = row.Components[len(row.Components)-1].(discordgo.Button)
	if first.Disabled {
		t.Fatal("expected the back button enabled on a later page")
	}
	if !last.Disabled {
		t.Fatal("expected the forward button disabled on the last page")
	}
}

func TestParseNavCustomIDRecognizesOwnButtons(t *testing.T) {
	row := NavButtons(1, 3)[0].(discordgo.ActionsRow)
	for _, want := range []string{"first", "prev", "next", "last"} {
		var found bool
		for _, comp := range row.Components {
			btn := comp.(discordgo.Button)
			if action, ok := ParseNavCustomID(btn.CustomID); ok && action == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected a button whose customID parses to %q", want)
		}
	}

	if _, ok := ParseNavCustomID("something_else"); ok {
		t.Fatal("expected an unrelated customID to not parse as a nav button")
	}
}

func TestTargetPageMovesWithinBounds(t *testing.T) {
	if got := TargetPage("first", 2, 30); got != 0 {
		t.Fatalf("expected first to jump to page 0, got %d", got)
	}
	if got := TargetPage("prev", 1, 30); got != 0 {
		t.Fatalf("expected prev to move back one page, got %d", got)
	}
	if got := TargetPage("next", 0, 30); got != 1 {
		t.Fatalf("expected next to move forward one page, got %d", got)
	}
	if got := TargetPage("last", 0, 30); got != NumPages(30)-1 {
		t.Fatalf("expected last to jump to the final page, got %d", got)
	}
	if got := TargetPage("bogus", 2, 30); got != 2 {
		t.Fatalf("expected an unrecognized action to leave the page unchanged, got %d", got)
	}
}

func TestFormatDurationRendersHoursWhenPresent(t *testing.T) {
	if got := formatDuration(90 * time.Minute); got != "1:30:00" {
		t.Fatalf("expected 1:30:00, got %q", got)
	}
	if got := formatDuration(45 * time.Second); got != "0:45" {
		t.Fatalf("expected 0:45, got %q", got)
	}
	if got := formatDuration(0); got != "live" {
		t.Fatalf("expected live for a zero duration, got %q", got)
	}
}
