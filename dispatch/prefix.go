// Package dispatch resolves a raw guild message or interaction into a
// command invocation: prefix matching, mode-token parsing, and the ACL
// check a command must pass before it runs (design §4.4).
package dispatch

import "strings"

// Resolve implements the design §4.4 prefix resolution algorithm for one
// guild message. content is the raw message content; mention is the bot's
// mention form(s) as they can appear in content (<@id> and <@!id>).
//
// Matching is literal and case-sensitive for the main prefix, except that
// an all-uppercase variant of the prefix is also accepted (e.g. "!" and
// the prefix itself are the same string here, but "rc!" also matches
// "RC!"). additionalPrefixes are matched literally, first match wins, with
// no case variant.
func Resolve(content string, isAuthorBot, isDesignatedTestBot bool, prefix string, additionalPrefixes []string, mentions []string) (rest string, ok bool) {
	if isAuthorBot && !isDesignatedTestBot {
		return "", false
	}

	if prefix != "" {
		if rest, ok := cutPrefix(content, prefix); ok {
			return rest, true
		}
		if upper := strings.ToUpper(prefix); upper != prefix {
			if rest, ok := cutPrefix(content, upper); ok {
				return rest, true
			}
		}
	}

	for _, additional := range additionalPrefixes {
		if additional == "" {
			continue
		}
		if rest, ok := cutPrefix(content, additional); ok {
			return rest, true
		}
	}

	for _, mention := range mentions {
		if mention == "" {
			continue
		}
		if rest, ok := cutPrefix(content, mention); ok {
			return strings.TrimPrefix(rest, " "), true
		}
	}

	return "", false
}

func cutPrefix(content, prefix string) (string, bool) {
	if !strings.HasPrefix(content, prefix) {
		return "", false
	}
	return content[len(prefix):], true
}
