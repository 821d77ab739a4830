package commands

import (
	"cracktunes-go/dispatch"
	"cracktunes-go/music/types"
)

// Build constructs a fresh dispatch.Registry for one invocation, closing
// every handler over inv (who/where) and deps (the shared collaborators).
// Called per incoming message/interaction - cheap, since Registry is just a
// map of closures - so ACL and replies always see the invocation that
// triggered them rather than stale state from a previous message.
func Build(inv Invocation, deps Deps) *dispatch.Registry {
	r := dispatch.NewRegistry()

	r.Register("play", func(args string) error { return handlePlay(inv, deps, args, types.ModeEnd, false) })
	r.Register("playnext", func(args string) error { return handlePlay(inv, deps, args, types.ModeNext, true) })
	r.Register("search", func(args string) error { return handleSearch(inv, deps, args) })
	r.Register("skip", func(args string) error { return handleSkip(inv, deps, args) })
	r.Register("stop", func(args string) error { return handleStop(inv, deps, args) })
	r.Register("pause", func(args string) error { return handlePause(inv, deps, args) })
	r.Register("resume", func(args string) error { return handleResume(inv, deps, args) })
	r.Register("seek", func(args string) error { return handleSeek(inv, deps, args) })
	r.Register("volume", func(args string) error { return handleVolume(inv, deps, args) })
	r.Register("queue", func(args string) error { return handleQueue(inv, deps, args) })
	r.Register("nowplaying", func(args string) error { return handleNowPlaying(inv, deps, args) })
	r.Register("shuffle", func(args string) error { return handleShuffle(inv, deps, args) })
	r.Register("repeat", func(args string) error { return handleRepeat(inv, deps, args) })
	r.Register("remove", func(args string) error { return handleRemove(inv, deps, args) })
	r.Register("clear", func(args string) error { return handleClear(inv, deps, args) })
	r.Register("grab", func(args string) error { return handleGrab(inv, deps, args) })
	r.Register("lyrics", func(args string) error { return handleLyrics(inv, deps, args) })
	r.Register("leave", func(args string) error { return handleLeave(inv, deps, args) })
	r.Register("summon", func(args string) error { return handleSummon(inv, deps, args) })
	r.Register("autopause", func(args string) error { return handleAutopause(inv, deps, args) })
	r.Register("autoplay", func(args string) error { return handleAutoplay(inv, deps, args) })
	r.Register("voteskip", func(args string) error { return handleVoteskip(inv, deps, args) })
	r.Register("playlog", func(args string) error { return handlePlaylog(inv, deps, args) })
	r.Register("playlist", func(args string) error { return handlePlaylist(inv, deps, args) })
	r.Register("admin", func(args string) error { return handleAdmin(inv, deps, args) })

	// "ping"/"coinflip"/"roll"/"eightball"/"peepee"/"weather"/"user"/
	// "server" (teacher's fun/utility commands) aren't named in the design
	// §4.4 catalog and are not registered anywhere in this bot.

	// "settings" is slash-only (its options don't reduce to a single args
	// string) and is dispatched directly from bot/ instead of through this
	// Registry; see HandleSettingsSlash.

	return r
}
