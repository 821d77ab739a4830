package dispatch

import (
	"fmt"

	"cracktunes-go/music/types"
	"cracktunes-go/settings"
)

// Category classifies a command for the design §4.4 ACL rule. Only the
// music category is restricted by the guild's music_channel; everything
// else falls through to the generic "no restrictions configured" allowance.
type Category int

const (
	CategoryOther Category = iota
	CategoryMusic
)

// Invocation is everything CheckACL needs to evaluate one command call.
// ACL is the merged GenericPermissionSettings for Command - callers look up
// data.CommandACL[Command], falling back to data.CommandACL[""] (the
// guild-wide default) when no command-specific entry exists.
type Invocation struct {
	Command         string
	Category        Category
	IsBotOwner      bool
	IsAdministrator bool
	ChannelID       string
	MusicChannelID  string // "" if the guild hasn't configured one
	AuthorUserID    string
	AuthorRoleIDs   []string
	ACL             settings.GenericPermissionSettings
	HasRestrictions bool // whether ACL reflects an explicitly configured entry
}

// CheckACL evaluates the design §4.4 rule: a command passes iff the author
// is a configured bot owner, OR has ADMINISTRATOR in the guild, OR the
// command is in the music category and the channel/user checks pass, OR no
// restrictions are configured for the command at all. It returns nil on
// success or the taxonomy error to reply with.
func CheckACL(in Invocation) error {
	if in.IsBotOwner || in.IsAdministrator {
		return nil
	}

	if in.Category == CategoryMusic {
		if in.MusicChannelID != "" && in.ChannelID != in.MusicChannelID {
			return types.New(types.ErrNotInMusicChannel, fmt.Sprintf("<#%s>", in.MusicChannelID))
		}
		if musicAllowed(in) {
			return nil
		}
		return types.New(types.ErrUnauthorizedUser, "")
	}

	if !in.HasRestrictions {
		return nil
	}
	return types.New(types.ErrUnauthorizedUser, "")
}

func musicAllowed(in Invocation) bool {
	if !in.ACL.IsUserAllowed(in.AuthorUserID) {
		return false
	}
	if !in.ACL.IsCommandAllowed(in.Command) {
		return false
	}
	for _, role := range in.AuthorRoleIDs {
		if !in.ACL.IsRoleAllowed(role) {
			return false
		}
	}
	return true
}

// musicCommands is the design §4.4 command catalog's "music" category,
// used by callers to build an Invocation's Category.
var musicCommands = map[string]struct{}{
	"play": {}, "playnext": {}, "search": {}, "skip": {}, "stop": {},
	"pause": {}, "resume": {}, "seek": {}, "volume": {}, "queue": {},
	"nowplaying": {}, "shuffle": {}, "repeat": {}, "remove": {}, "clear": {},
	"grab": {}, "lyrics": {}, "leave": {}, "summon": {}, "autopause": {},
	"autoplay": {}, "voteskip": {}, "playlog": {}, "playlist": {},
}

// CategoryFor classifies command by the design §4.4 catalog.
func CategoryFor(command string) Category {
	if _, ok := musicCommands[command]; ok {
		return CategoryMusic
	}
	return CategoryOther
}
