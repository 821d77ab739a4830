package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cracktunes-go/dispatch"
	"cracktunes-go/music/presenter"
	"cracktunes-go/music/queue"
	"cracktunes-go/music/resolver"
	"cracktunes-go/music/types"
	"cracktunes-go/settings"
)

const commandTimeout = 30 * time.Second

// handlePlay implements play/playnext (design §4.2): resolve args through
// the mode-token parser, then through resolver.ParseQuery, and enqueue.
func handlePlay(inv Invocation, deps Deps, args string, forceMode types.EnqueueMode, forced bool) error {
	mode, rest := dispatch.SplitMode(args)
	if forced {
		mode = forceMode
	}
	if strings.TrimSpace(rest) == "" {
		return types.New(types.ErrNoTrackName, "")
	}

	if err := ensureConnected(inv, deps); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	query := resolver.ParseQuery(rest)
	requester := requesterID(inv.UserID)
	tracks, err := deps.Manager.Enqueue(ctx, inv.GuildID, query, mode, requester)
	if err != nil {
		return err
	}

	refreshQueue(inv, deps)
	return inv.Reply(enqueuedReply(tracks))
}

func enqueuedReply(tracks []*types.ResolvedTrack) string {
	if len(tracks) == 0 {
		return "Nothing resolved for that query."
	}
	if len(tracks) == 1 {
		return fmt.Sprintf("Queued **%s**", trackTitle(tracks[0]))
	}
	return fmt.Sprintf("Queued %d tracks, starting with **%s**", len(tracks), trackTitle(tracks[0]))
}

func trackTitle(t *types.ResolvedTrack) string {
	if t.Metadata.Title != "" {
		return t.Metadata.Title
	}
	return t.Metadata.SourceURL
}

// handleSearch resolves args as free-text keywords regardless of any
// leading mode token, since "search" names the query strategy itself.
func handleSearch(inv Invocation, deps Deps, args string) error {
	if strings.TrimSpace(args) == "" {
		return types.New(types.ErrNoTrackName, "")
	}
	if err := ensureConnected(inv, deps); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	query := types.Query{Tag: types.QueryKeywords, Text: strings.TrimSpace(args)}
	tracks, err := deps.Manager.Enqueue(ctx, inv.GuildID, query, types.ModeEnd, requesterID(inv.UserID))
	if err != nil {
		return err
	}
	refreshQueue(inv, deps)
	return inv.Reply(enqueuedReply(tracks))
}

func handleSkip(inv Invocation, deps Deps, args string) error {
	to := 1
	if arg := strings.TrimSpace(args); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return types.NotInRange("position", 1, 9999)
		}
		to = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := deps.Manager.Skip(ctx, inv.GuildID, to); err != nil {
		return err
	}
	refreshQueue(inv, deps)
	return inv.Reply("⏭️ Skipped.")
}

func handleStop(inv Invocation, deps Deps, _ string) error {
	if err := deps.Manager.Stop(inv.GuildID); err != nil {
		return err
	}
	refreshQueue(inv, deps)
	return inv.Reply("⏹️ Stopped and cleared the queue.")
}

func handlePause(inv Invocation, deps Deps, _ string) error {
	if err := deps.Manager.Pause(inv.GuildID); err != nil {
		return err
	}
	return inv.Reply("⏸️ Paused.")
}

func handleResume(inv Invocation, deps Deps, _ string) error {
	if err := deps.Manager.Resume(inv.GuildID); err != nil {
		return err
	}
	return inv.Reply("▶️ Resumed.")
}

func handleSeek(inv Invocation, deps Deps, args string) error {
	seconds, err := parseTimestamp(strings.TrimSpace(args))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := deps.Manager.Seek(ctx, inv.GuildID, seconds); err != nil {
		return err
	}
	return inv.Reply(fmt.Sprintf("⏩ Seeked to %s.", formatTimestamp(seconds)))
}

// parseTimestamp accepts plain seconds, "mm:ss", or "hh:mm:ss".
func parseTimestamp(ts string) (int64, error) {
	if ts == "" {
		return 0, types.New(types.ErrParseTimeFail, ts)
	}
	parts := strings.Split(ts, ":")
	var seconds int64
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, types.New(types.ErrParseTimeFail, ts)
		}
		seconds = seconds*60 + int64(n)
	}
	return seconds, nil
}

func formatTimestamp(seconds int64) string {
	d := time.Duration(seconds) * time.Second
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

func handleVolume(inv Invocation, deps Deps, args string) error {
	arg := strings.TrimSpace(args)
	if arg == "" {
		cfg := deps.Settings.MusicConfig(inv.GuildID)
		return inv.Reply(fmt.Sprintf("🔊 Volume is %d%%.", int(cfg.Volume*100)))
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(arg, "%"))
	if err != nil || pct < 0 || pct > 200 {
		return types.NotInRange("volume", 0, 200)
	}
	if err := deps.Manager.SetVolume(inv.GuildID, float64(pct)/100); err != nil {
		return err
	}
	return inv.Reply(fmt.Sprintf("🔊 Volume set to %d%%.", pct))
}

func handleQueue(inv Invocation, deps Deps, args string) error {
	page := 0
	if arg := strings.TrimSpace(args); arg != "" {
		if n, err := strconv.Atoi(arg); err == nil {
			page = n - 1
		}
	}
	tracks := deps.Manager.Snapshot(inv.GuildID)
	if len(tracks) == 0 {
		return inv.Reply("The queue is empty.")
	}

	embed := presenter.BuildQueueEmbed(tracks, page)
	nav := presenter.NavButtons(presenter.ClampPage(page, len(tracks)), presenter.NumPages(len(tracks)))
	msg, err := inv.ReplyEmbed(embed, nav)
	if err != nil {
		return err
	}
	if msg != nil && deps.Presenter != nil {
		deps.Presenter.Register(inv.GuildID, inv.ChannelID, msg.ID)
		deps.Presenter.SetPage(inv.GuildID, msg.ID, page)
	}
	return nil
}

func handleNowPlaying(inv Invocation, deps Deps, _ string) error {
	tracks := deps.Manager.Snapshot(inv.GuildID)
	if len(tracks) == 0 {
		return inv.Reply("Nothing is currently playing.")
	}
	_, err := inv.ReplyEmbed(presenter.BuildQueueEmbed(tracks[:1], 0), nil)
	return err
}

func handleShuffle(inv Invocation, deps Deps, _ string) error {
	s, ok := deps.Manager.Lookup(inv.GuildID)
	if !ok {
		return types.New(types.ErrNothingPlaying, "")
	}
	if err := s.Handle(func(q *queue.Queue, _ types.AudioPlayer) error {
		q.Shuffle()
		return nil
	}); err != nil {
		return err
	}
	refreshQueue(inv, deps)
	return inv.Reply("🔀 Shuffled the queue.")
}

// handleRepeat re-queues the currently playing track to play again once the
// rest of the queue finishes (no standing "loop mode" exists in the queue
// engine, so repeat is a one-shot re-enqueue rather than an infinite loop).
func handleRepeat(inv Invocation, deps Deps, _ string) error {
	s, ok := deps.Manager.Lookup(inv.GuildID)
	if !ok {
		return types.New(types.ErrNothingPlaying, "")
	}
	var repeated *types.ResolvedTrack
	err := s.Handle(func(q *queue.Queue, _ types.AudioPlayer) error {
		current, ok := q.Current()
		if !ok {
			return types.New(types.ErrNothingPlaying, "")
		}
		again := *current
		q.EnqueueBack(&again)
		repeated = &again
		return nil
	})
	if err != nil {
		return err
	}
	return inv.Reply(fmt.Sprintf("🔁 **%s** will play again.", trackTitle(repeated)))
}

func handleRemove(inv Invocation, deps Deps, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return types.NotInRange("index", 1, 9999)
	}
	from, err := strconv.Atoi(fields[0])
	if err != nil || from < 1 {
		return types.NotInRange("index", 1, 9999)
	}
	to := from
	if len(fields) > 1 {
		to, err = strconv.Atoi(fields[1])
		if err != nil || to < from {
			return types.NotInRange("until", from, 9999)
		}
	}

	s, ok := deps.Manager.Lookup(inv.GuildID)
	if !ok {
		return types.New(types.ErrQueueEmpty, "")
	}
	var removed []*types.ResolvedTrack
	err = s.Handle(func(q *queue.Queue, _ types.AudioPlayer) error {
		out, err := q.RemoveRange(from, to)
		removed = out
		return err
	})
	if err != nil {
		return err
	}
	refreshQueue(inv, deps)
	return inv.Reply(fmt.Sprintf("🗑️ Removed %d track(s).", len(removed)))
}

func handleClear(inv Invocation, deps Deps, _ string) error {
	s, ok := deps.Manager.Lookup(inv.GuildID)
	if !ok {
		return inv.Reply("The queue is already empty.")
	}
	if err := s.Handle(func(q *queue.Queue, _ types.AudioPlayer) error {
		for q.Len() > 1 {
			if _, err := q.Remove(1); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}
	refreshQueue(inv, deps)
	return inv.Reply("🧹 Cleared the upcoming queue.")
}

// handleGrab DMs the requesting user the currently playing track, a common
// crack-bot convenience for saving what's playing without disturbing chat.
func handleGrab(inv Invocation, deps Deps, _ string) error {
	tracks := deps.Manager.Snapshot(inv.GuildID)
	if len(tracks) == 0 {
		return types.New(types.ErrNothingPlaying, "")
	}
	current := tracks[0]
	content := fmt.Sprintf("🎶 **%s**\n%s", trackTitle(current), current.Metadata.SourceURL)
	if inv.DM != nil {
		if err := inv.DM(content); err != nil {
			return inv.Reply("Couldn't DM you - check your privacy settings.")
		}
	}
	return inv.Reply("📬 Sent you the current track.")
}

func handleLeave(inv Invocation, deps Deps, _ string) error {
	if err := deps.Manager.Leave(inv.GuildID); err != nil {
		return err
	}
	return inv.Reply("👋 Left the voice channel.")
}

func handleSummon(inv Invocation, deps Deps, args string) error {
	channelID := strings.TrimSpace(args)
	if channelID == "" {
		channelID = inv.VoiceChannelID
	}
	if channelID == "" {
		return types.New(types.ErrAuthorDisconnected, "")
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := deps.Manager.Join(ctx, inv.GuildID, channelID); err != nil {
		return err
	}
	return inv.Reply(fmt.Sprintf("✅ Joined <#%s>.", channelID))
}

func handleAutopause(inv Invocation, deps Deps, _ string) error {
	toggled := toggleGuildFlag(inv, deps, func(d *settings.Data) *bool { return &d.Autopause })
	return inv.Reply(fmt.Sprintf("Autopause is now **%s**.", onOff(toggled)))
}

func handleAutoplay(inv Invocation, deps Deps, _ string) error {
	toggled := toggleGuildFlag(inv, deps, func(d *settings.Data) *bool { return &d.Autoplay })
	return inv.Reply(fmt.Sprintf("Autoplay is now **%s**.", onOff(toggled)))
}

// toggleGuildFlag flips one boolean settings field and persists it
// best-effort; pick must return a pointer into the *settings.Data it was
// given (never a copy) so the flip actually lands.
func toggleGuildFlag(inv Invocation, deps Deps, pick func(*settings.Data) *bool) bool {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	gs := deps.Settings.Get(ctx, inv.GuildID, inv.GuildName)
	var toggled bool
	gs.Update(func(d *settings.Data) {
		flag := pick(d)
		*flag = !*flag
		toggled = *flag
	})
	_ = deps.Settings.Save(ctx, inv.GuildID)
	return toggled
}

func handleVoteskip(inv Invocation, deps Deps, _ string) error {
	s, ok := deps.Manager.Lookup(inv.GuildID)
	if !ok {
		return types.New(types.ErrNothingPlaying, "")
	}
	votes := s.AddSkipVote(inv.UserID)
	needed := voteskipThreshold(inv, deps)
	if votes < needed {
		return inv.Reply(fmt.Sprintf("🗳️ Vote to skip: %d/%d.", votes, needed))
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := deps.Manager.Skip(ctx, inv.GuildID, 1); err != nil {
		return err
	}
	refreshQueue(inv, deps)
	return inv.Reply("⏭️ Vote to skip passed.")
}

// voteskipThreshold always returns 1: no live voice-channel member count is
// wired to this package, so a single vote is enough to skip.
func voteskipThreshold(inv Invocation, deps Deps) int {
	return 1
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func ensureConnected(inv Invocation, deps Deps) error {
	if s, ok := deps.Manager.Lookup(inv.GuildID); ok && s.Connected() {
		return nil
	}
	if inv.VoiceChannelID == "" {
		return types.New(types.ErrAuthorDisconnected, "")
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return deps.Manager.Join(ctx, inv.GuildID, inv.VoiceChannelID)
}

func refreshQueue(inv Invocation, deps Deps) {
	if deps.Presenter == nil || deps.PresenterEd == nil {
		return
	}
	tracks := deps.Manager.Snapshot(inv.GuildID)
	deps.Presenter.Refresh(inv.GuildID, tracks, deps.PresenterEd)
}

func requesterID(userID string) int64 {
	n, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return types.DefaultRequester
	}
	return n
}
