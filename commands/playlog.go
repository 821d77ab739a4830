package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cracktunes-go/music/types"
)

const playlogDefaultCount = 10
const playlogMaxCount = 25

// handlePlaylog implements the playlog catalog command: the n most recent
// play_log rows for the guild, newest first (design §3.1's PlayLogs repo).
func handlePlaylog(inv Invocation, deps Deps, args string) error {
	if deps.Store == nil {
		return types.New(types.ErrNoDatabasePool, "")
	}
	guildID, _ := strconv.ParseInt(inv.GuildID, 10, 64)
	if guildID == 0 {
		return types.New(types.ErrNoGuildID, "")
	}

	n := playlogDefaultCount
	if arg := strings.TrimSpace(args); arg != "" {
		if parsed, err := strconv.Atoi(arg); err == nil && parsed > 0 {
			n = parsed
		}
	}
	if n > playlogMaxCount {
		n = playlogMaxCount
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	rows, err := deps.Store.PlayLogs.LastPlayedByGuild(ctx, guildID, n)
	if err != nil {
		return types.New(types.ErrNoDatabasePool, "")
	}
	if len(rows) == 0 {
		return inv.Reply("No play history recorded yet.")
	}

	var b strings.Builder
	b.WriteString("**Recent plays:**\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "<@%d> — track #%d — <t:%d:R>\n", row.UserID, row.MetadataID, row.CreatedAt.Unix())
	}
	return inv.Reply(b.String())
}
