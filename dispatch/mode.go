package dispatch

import (
	"strings"

	"cracktunes-go/music/types"
)

// modeTokens is the design §4.4 mode-token vocabulary: optional first-word
// tokens that select an EnqueueMode ahead of the query/argument string.
var modeTokens = map[string]struct{}{
	"next": {}, "all": {}, "reverse": {}, "shuffle": {}, "jump": {},
	"search": {}, "downloadmkv": {}, "downloadmp3": {},
}

// SplitMode implements the shared mode-parsing routine: the first
// whitespace-delimited token of a prefix command's argument string is
// checked against modeTokens; if it matches, it is consumed and the
// remainder becomes the query. If it doesn't match, Mode is End and the
// entire input is left as the query.
func SplitMode(args string) (mode types.EnqueueMode, rest string) {
	args = strings.TrimSpace(args)
	token, remainder, _ := strings.Cut(args, " ")

	if _, ok := modeTokens[token]; !ok {
		return types.ModeEnd, args
	}
	return types.ParseMode(token), strings.TrimSpace(remainder)
}
