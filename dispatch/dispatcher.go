package dispatch

import (
	"strings"

	"cracktunes-go/music/types"
	"cracktunes-go/settings"
)

// Handler runs one command invocation. args is the text left after prefix
// and command-name removal (e.g. "next https://youtu.be/..." for
// "!play next https://youtu.be/...").
type Handler func(args string) error

// Registry maps a command name (design §4.4 catalog, lowercased) to its
// handler and category. A single Registry backs both the prefix and slash
// dispatch paths, giving them parity by construction.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds an empty command registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds (or replaces) the handler for command.
func (r *Registry) Register(command string, h Handler) {
	r.handlers[strings.ToLower(command)] = h
}

// MessageContext carries the per-message facts DispatchMessage needs that
// Resolve/CheckACL can't derive themselves (who sent it, where, with what
// permissions) - the caller (bot/) fills this in from discordgo state.
type MessageContext struct {
	Content         string
	ChannelID       string
	AuthorUserID    string
	AuthorRoleIDs   []string
	IsAuthorBot     bool
	IsDesignatedBot bool
	IsBotOwner      bool
	IsAdministrator bool
	BotMentions     []string
}

// DispatchMessage runs the full design §4.4 pipeline for one guild text
// message: prefix resolution, command-name/argument split, ACL check, and
// (on success) invoking the registered handler. It returns (false, nil)
// when the message didn't resolve to any command (no prefix/mention match,
// or an unknown command name) - those are silently ignored per the design,
// not errors.
func (r *Registry) DispatchMessage(msg MessageContext, data settings.Data) (dispatched bool, err error) {
	rest, ok := Resolve(msg.Content, msg.IsAuthorBot, msg.IsDesignatedBot, data.Prefix, data.AdditionalPrefixes, msg.BotMentions)
	if !ok {
		return false, nil
	}

	command, args, _ := strings.Cut(strings.TrimSpace(rest), " ")
	return r.dispatch(command, strings.TrimSpace(args), msg, data)
}

// DispatchSlash runs the same ACL check and handler lookup as
// DispatchMessage for one slash-command interaction. Discord's options
// schema already splits the command name from its arguments, so there is
// no prefix/mention resolution step here - everything downstream (ACL,
// handler invocation) is identical, giving the two entry points parity by
// construction. command and args come from the interaction data; the rest
// of msg carries the same per-invocation facts DispatchMessage needs.
func (r *Registry) DispatchSlash(command, args string, msg MessageContext, data settings.Data) (dispatched bool, err error) {
	return r.dispatch(strings.ToLower(command), strings.TrimSpace(args), msg, data)
}

func (r *Registry) dispatch(command, args string, msg MessageContext, data settings.Data) (dispatched bool, err error) {
	command = strings.ToLower(command)
	handler, ok := r.handlers[command]
	if !ok {
		return false, nil
	}

	acl, hasRestrictions := commandACL(data, command)
	in := Invocation{
		Command:         command,
		Category:        CategoryFor(command),
		IsBotOwner:      msg.IsBotOwner,
		IsAdministrator: msg.IsAdministrator,
		ChannelID:       msg.ChannelID,
		MusicChannelID:  data.MusicChannel,
		AuthorUserID:    msg.AuthorUserID,
		AuthorRoleIDs:   msg.AuthorRoleIDs,
		ACL:             acl,
		HasRestrictions: hasRestrictions,
	}
	if err := CheckACL(in); err != nil {
		return true, err
	}

	return true, handler(args)
}

// commandACL looks up the per-command ACL entry, falling back to the
// guild-wide default ("" key) and reporting whether either was explicitly
// configured (design §4.4 rule (d): "no restrictions configured" is its
// own allow path, distinct from an explicit all-allow entry).
func commandACL(data settings.Data, command string) (settings.GenericPermissionSettings, bool) {
	if acl, ok := data.CommandACL[command]; ok {
		return acl, true
	}
	if acl, ok := data.CommandACL[""]; ok {
		return acl, true
	}
	return settings.DefaultGenericPermissionSettings(), false
}

// ErrorReply renders an error for the dispatcher's reply path (design
// §4.4: "sends a reply whose content is the taxonomy's Display string").
func ErrorReply(err error) string {
	if pe, ok := err.(*types.PlayError); ok {
		return pe.Display()
	}
	return "❌ Something went wrong."
}
