// Package presenter renders queue state into Discord embeds/components,
// drives autocomplete suggestions, and fans out live queue-message edits
// when a guild's queue changes (design §4.7).
package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cracktunes-go/music/types"
)

// titleCaser renders a track's Provider field ("youtube", "ytdlp", "file")
// for display, e.g. in the queue embed footer.
var titleCaser = cases.Title(language.English)

// PageSize is the number of upcoming tracks shown per queue embed page.
const PageSize = 6

const colorBlurple = 0x5865F2

// NumPages returns the page count for a queue of trackCount tracks (design
// §4.7: "ceil((len-1)/6), minimum 1" - the "-1" excludes the currently
// playing track at position 0 from pagination).
func NumPages(trackCount int) int {
	upcoming := trackCount - 1
	if upcoming <= 0 {
		return 1
	}
	pages := (upcoming + PageSize - 1) / PageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// ClampPage clamps page into [0, NumPages(trackCount)-1].
func ClampPage(page, trackCount int) int {
	max := NumPages(trackCount) - 1
	if page < 0 {
		return 0
	}
	if page > max {
		return max
	}
	return page
}

// BuildQueueEmbed renders the current track plus one page of upcoming
// tracks (design §4.7). page is clamped internally, so callers don't need
// to call ClampPage first.
func BuildQueueEmbed(tracks []*types.ResolvedTrack, page int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎶 Queue",
		Color: colorBlurple,
	}

	if len(tracks) == 0 {
		embed.Description = "The queue is empty."
		return embed
	}

	current := tracks[0]
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Now Playing",
		Value: trackLine(current, 0),
	})
	if current.Metadata.Thumbnail != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: current.Metadata.Thumbnail}
	}

	footer := providerFooter(current.Provider)

	upcoming := tracks[1:]
	if len(upcoming) == 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
		return embed
	}

	page = ClampPage(page, len(tracks))
	start := page * PageSize
	if start > len(upcoming) {
		start = len(upcoming)
	}
	end := start + PageSize
	if end > len(upcoming) {
		end = len(upcoming)
	}

	lines := ""
	for i, t := range upcoming[start:end] {
		lines += trackLine(t, start+i+1) + "\n"
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "Up Next",
		Value: lines,
	})
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Page %d/%d · %s", page+1, NumPages(len(tracks)), footer),
	}
	return embed
}

// providerFooter renders the currently playing track's resolving provider
// for display (e.g. "via Youtube").
func providerFooter(provider string) string {
	if provider == "" {
		return ""
	}
	return "via " + titleCaser.String(provider)
}

// trackLine renders one queue row: "N. [title](url) - duration".
func trackLine(t *types.ResolvedTrack, position int) string {
	title := t.Metadata.Title
	if title == "" {
		title = t.Metadata.SourceURL
	}
	url := t.Metadata.SourceURL
	duration := formatDuration(t.Metadata.Duration)

	if position == 0 {
		if url == "" {
			return fmt.Sprintf("%s - %s", title, duration)
		}
		return fmt.Sprintf("[%s](%s) - %s", title, url, duration)
	}
	if url == "" {
		return fmt.Sprintf("%d. %s - %s", position, title, duration)
	}
	return fmt.Sprintf("%d. [%s](%s) - %s", position, title, url, duration)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "live"
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// navCustomID namespaces nav-button custom IDs so the interaction handler
// can recognize and route them.
const navCustomID = "queue_nav"

// NavButtons builds the <<,<,>,>> pagination row, disabling buttons that
// would move outside [0, numPages-1].
func NavButtons(page, numPages int) []discordgo.MessageComponent {
	disableBack := page <= 0
	disableForward := page >= numPages-1

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "<<", Style: discordgo.SecondaryButton, CustomID: navCustomID + ":first", Disabled: disableBack},
				discordgo.Button{Label: "<", Style: discordgo.SecondaryButton, CustomID: navCustomID + ":prev", Disabled: disableBack},
				discordgo.Button{Label: ">", Style: discordgo.SecondaryButton, CustomID: navCustomID + ":next", Disabled: disableForward},
				discordgo.Button{Label: ">>", Style: discordgo.SecondaryButton, CustomID: navCustomID + ":last", Disabled: disableForward},
			},
		},
	}
}

// ParseNavCustomID recognizes a button customID built by NavButtons and
// reports which direction it moves the page (one of "first", "prev",
// "next", "last").
func ParseNavCustomID(customID string) (action string, ok bool) {
	action, ok = strings.CutPrefix(customID, navCustomID+":")
	return action, ok
}

// TargetPage applies a ParseNavCustomID action to the current page.
func TargetPage(action string, page, trackCount int) int {
	switch action {
	case "first":
		return 0
	case "prev":
		return ClampPage(page-1, trackCount)
	case "next":
		return ClampPage(page+1, trackCount)
	case "last":
		return NumPages(trackCount) - 1
	default:
		return page
	}
}
