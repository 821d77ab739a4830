// Package bot wires every other package into a running Discord session:
// config, store, settings, the resolver chain, the music manager, the
// presenter caches, and the dispatch registry all meet here (design §4.4
// "giving the prefix and slash paths parity by construction" - this is the
// package that proves it by using the same Registry for both).
package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"cracktunes-go/background"
	"cracktunes-go/commands"
	"cracktunes-go/config"
	"cracktunes-go/dispatch"
	"cracktunes-go/music/manager"
	"cracktunes-go/music/presenter"
	"cracktunes-go/music/resolver"
	"cracktunes-go/music/resolver/spotify"
	"cracktunes-go/music/resolver/youtube"
	"cracktunes-go/music/resolver/ytdlp"
	"cracktunes-go/settings"
	"cracktunes-go/store"
)

// Bot owns the live discordgo.Session plus everything commands.Deps needs
// to actually run a command, built once at startup and shared by every
// guild the session is a member of.
type Bot struct {
	Session *discordgo.Session

	deps    commands.Deps
	cameras *background.CameraPolicy
	log     zerolog.Logger
}

// New creates a Discord session (Open connects it) and wires the full dependency graph
// behind it: the resolver chain (kkdai/youtube primary, ytdlp fallback, optional
// Spotify link expansion), the music manager (with its live-queue refresh
// closure wired back through the presenter cache), and the command
// dependencies every handler in commands/ closes over.
func New(cfg *config.Config, st *store.Store, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildVoiceStates

	settingsCache := settings.NewCache(st.Guilds, log)

	ytdlpClient := ytdlp.NewClient(nil)
	primary := youtube.New()
	secondary := ytdlp.NewResolver(ytdlpClient)

	var spotifyExpander *spotify.Expander
	if cfg.HasSpotifyCredentials() {
		spotifyExpander = spotify.NewExpander(cfg.SpotifyID, cfg.SpotifySecret)
	}
	res := resolver.New(primary, secondary, spotifyExpander)

	guildCache := presenter.NewGuildCache()
	lyrics := presenter.NewLyricsProvider()
	sessionAdapter := manager.NewSessionWrapper(dg)

	editor := presenter.Editor(func(channelID, messageID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
		embeds := []*discordgo.MessageEmbed{embed}
		_, err := dg.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    channelID,
			ID:         messageID,
			Embeds:     &embeds,
			Components: &components,
		})
		return err
	})

	// manager.New needs a RefreshFunc at construction time, but the
	// closure it calls needs the *Manager it hasn't been given yet
	// (RefreshFunc only ever fires later, after a track-end transition,
	// by which point mgr is assigned).
	var mgr *manager.Manager
	refresh := manager.RefreshFunc(func(guildID string) {
		if mgr == nil {
			return
		}
		guildCache.Refresh(guildID, mgr.Snapshot(guildID), editor)
	})
	mgr = manager.New(sessionAdapter, settingsCache, res, refresh, log)

	owners := make(map[string]struct{}, len(cfg.Owners))
	for _, id := range cfg.Owners {
		owners[strconv.FormatInt(id, 10)] = struct{}{}
	}

	deps := commands.Deps{
		Manager:     mgr,
		Resolver:    res,
		Settings:    settingsCache,
		Presenter:   guildCache,
		PresenterEd: editor,
		Lyrics:      lyrics,
		Store:       st,
		BotOwnerIDs: owners,
		Log:         log,
	}

	b := &Bot{
		Session: dg,
		deps:    deps,
		cameras: background.NewCameraPolicy(dg, cfg.CamKick, log),
		log:     log,
	}

	dg.AddHandler(b.ready)
	dg.AddHandler(b.messageCreate)
	dg.AddHandler(b.interactionCreate)

	return b, nil
}

// Open starts the Discord connection.
func (b *Bot) Open() error {
	return b.Session.Open()
}

// Close closes the Discord connection.
func (b *Bot) Close() error {
	return b.Session.Close()
}

// Settings returns the guild settings cache, so main can flush it on
// shutdown without reaching into commands.Deps directly.
func (b *Bot) Settings() *settings.Cache {
	return b.deps.Settings
}

// RunCameraPolicy runs the cam_kick enforcement loop until ctx is
// canceled. A config with no cam_kick entries returns immediately.
func (b *Bot) RunCameraPolicy(ctx context.Context) error {
	return b.cameras.Run(ctx)
}

func (b *Bot) ready(s *discordgo.Session, event *discordgo.Ready) {
	b.log.Info().Str("username", event.User.Username).Msg("logged in")
}

// messageCreate implements the prefix-command half of design §4.4: build
// an Invocation closed over this specific message, get a fresh Registry
// for it, and run the shared dispatch pipeline.
func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" || m.Author == nil {
		return
	}

	gs := b.deps.Settings.Get(context.Background(), m.GuildID, b.guildName(m.GuildID))
	data := gs.Snapshot()

	inv := b.invocationForMessage(m)
	reg := commands.Build(inv, b.deps)

	msgCtx := dispatch.MessageContext{
		Content:         m.Content,
		ChannelID:       m.ChannelID,
		AuthorUserID:    m.Author.ID,
		IsAuthorBot:     m.Author.Bot,
		IsBotOwner:      b.deps.IsOwner(m.Author.ID),
		IsAdministrator: b.isAdministrator(m.Author.ID, m.ChannelID),
		BotMentions:     b.mentionForms(),
	}
	if m.Member != nil {
		msgCtx.AuthorRoleIDs = m.Member.Roles
	}

	dispatched, err := reg.DispatchMessage(msgCtx, data)
	if !dispatched {
		return
	}
	if err != nil {
		if _, sendErr := s.ChannelMessageSend(m.ChannelID, dispatch.ErrorReply(err)); sendErr != nil {
			b.log.Warn().Err(sendErr).Msg("failed to send error reply")
		}
	}
}

// interactionCreate routes both slash-command invocations and the
// presenter's queue-navigation button clicks.
func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleSlashCommand(s, i)
	case discordgo.InteractionMessageComponent:
		b.handleMessageComponent(s, i)
	}
}

func (b *Bot) handleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		b.log.Error().Err(err).Str("command", data.Name).Msg("failed to defer interaction")
		return
	}

	inv := b.invocationForInteraction(i)

	if data.Name == "settings" {
		err := commands.HandleSettingsSlash(inv, b.deps, data.Options)
		b.reportError(i, err)
		return
	}

	gs := b.deps.Settings.Get(context.Background(), inv.GuildID, inv.GuildName)
	gsData := gs.Snapshot()

	reg := commands.Build(inv, b.deps)
	msgCtx := dispatch.MessageContext{
		ChannelID:       inv.ChannelID,
		AuthorUserID:    inv.UserID,
		IsBotOwner:      b.deps.IsOwner(inv.UserID),
		IsAdministrator: b.isAdministrator(inv.UserID, inv.ChannelID),
	}
	if i.Member != nil {
		msgCtx.AuthorRoleIDs = i.Member.Roles
	}

	dispatched, err := reg.DispatchSlash(data.Name, slashArgs(data.Options), msgCtx, gsData)
	if !dispatched {
		b.editResponse(i, "❌ Unknown command.")
		return
	}
	b.reportError(i, err)
}

// slashArgs flattens this catalog's single free-text "args" option into the
// same string prefix commands pass to a Handler, giving both paths the
// exact same parsing (SplitMode, resolver.ParseQuery, parseTimestamp, ...).
func slashArgs(options []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range options {
		if opt.Name == "args" {
			if s, ok := opt.Value.(string); ok {
				return s
			}
		}
	}
	return ""
}

func (b *Bot) reportError(i *discordgo.InteractionCreate, err error) {
	if err == nil {
		return
	}
	b.editResponse(i, dispatch.ErrorReply(err))
}

func (b *Bot) editResponse(i *discordgo.InteractionCreate, content string) {
	if _, err := b.Session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		b.log.Warn().Err(err).Msg("failed to edit interaction response")
	}
}

// handleMessageComponent handles a queue-embed nav-button click: read the
// message's current page from its embed footer, apply the button, rebuild
// the embed at the new page, edit the message in place, and record the new
// page via Presenter.SetPage (design §4.7).
func (b *Bot) handleMessageComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	action, ok := presenter.ParseNavCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	guildID := i.GuildID
	tracks := b.deps.Manager.Snapshot(guildID)

	currentPage := 0
	if i.Message != nil && len(i.Message.Embeds) > 0 {
		currentPage = pageFromFooter(i.Message.Embeds[0])
	}
	newPage := presenter.TargetPage(action, currentPage, len(tracks))

	embed := presenter.BuildQueueEmbed(tracks, newPage)
	components := presenter.NavButtons(newPage, presenter.NumPages(len(tracks)))

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to update queue nav message")
		return
	}
	b.deps.Presenter.SetPage(guildID, i.Message.ID, newPage)
}

// pageFromFooter reads the 0-based page back from the "Page N/M · ..."
// footer BuildQueueEmbed writes; it returns 0 when the footer carries no
// page, same as a brand new queue message would.
func pageFromFooter(embed *discordgo.MessageEmbed) int {
	if embed == nil || embed.Footer == nil {
		return 0
	}
	var page, total int
	if _, err := fmt.Sscanf(embed.Footer.Text, "Page %d/%d", &page, &total); err != nil || page < 1 {
		return 0
	}
	return page - 1
}

func (b *Bot) invocationForMessage(m *discordgo.MessageCreate) commands.Invocation {
	voiceChannelID := ""
	if vs, err := b.Session.State.VoiceState(m.GuildID, m.Author.ID); err == nil && vs != nil {
		voiceChannelID = vs.ChannelID
	}

	guildName := b.guildName(m.GuildID)
	username := ""
	if m.Author != nil {
		username = m.Author.Username
	}

	return commands.Invocation{
		GuildID:        m.GuildID,
		GuildName:      guildName,
		ChannelID:      m.ChannelID,
		VoiceChannelID: voiceChannelID,
		UserID:         m.Author.ID,
		Username:       username,
		Reply: func(content string) error {
			_, err := b.Session.ChannelMessageSend(m.ChannelID, content)
			return err
		},
		ReplyEmbed: func(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (*discordgo.Message, error) {
			return b.Session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
				Embeds:     []*discordgo.MessageEmbed{embed},
				Components: components,
			})
		},
		DM: func(content string) error {
			ch, err := b.Session.UserChannelCreate(m.Author.ID)
			if err != nil {
				return err
			}
			_, err = b.Session.ChannelMessageSend(ch.ID, content)
			return err
		},
	}
}

func (b *Bot) invocationForInteraction(i *discordgo.InteractionCreate) commands.Invocation {
	userID, username := interactionAuthor(i)
	voiceChannelID := ""
	if vs, err := b.Session.State.VoiceState(i.GuildID, userID); err == nil && vs != nil {
		voiceChannelID = vs.ChannelID
	}

	return commands.Invocation{
		GuildID:        i.GuildID,
		GuildName:      b.guildName(i.GuildID),
		ChannelID:      i.ChannelID,
		VoiceChannelID: voiceChannelID,
		UserID:         userID,
		Username:       username,
		Reply: func(content string) error {
			b.editResponse(i, content)
			return nil
		},
		ReplyEmbed: func(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (*discordgo.Message, error) {
			return b.Session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
				Embeds:     []*discordgo.MessageEmbed{embed},
				Components: components,
			})
		},
		DM: func(content string) error {
			ch, err := b.Session.UserChannelCreate(userID)
			if err != nil {
				return err
			}
			_, err = b.Session.ChannelMessageSend(ch.ID, content)
			return err
		},
	}
}

func interactionAuthor(i *discordgo.InteractionCreate) (userID, username string) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID, i.Member.User.Username
	}
	if i.User != nil {
		return i.User.ID, i.User.Username
	}
	return "", ""
}

func (b *Bot) guildName(guildID string) string {
	g, err := b.Session.State.Guild(guildID)
	if err != nil || g == nil {
		return ""
	}
	return g.Name
}

// isAdministrator reports whether userID holds ADMINISTRATOR in channelID's
// guild (design §4.4: administrators bypass every ACL restriction).
func (b *Bot) isAdministrator(userID, channelID string) bool {
	perms, err := b.Session.State.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false
	}
	return perms&discordgo.PermissionAdministrator != 0
}

// mentionForms returns the bot's own mention in both forms Discord clients
// send ("<@id>" and "<@!id>"), used by dispatch.Resolve's mention-dispatch
// path.
func (b *Bot) mentionForms() []string {
	if b.Session.State.User == nil {
		return nil
	}
	id := b.Session.State.User.ID
	return []string{"<@" + id + ">", "<@!" + id + ">"}
}
