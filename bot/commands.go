package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// musicArgsOption is the single free-text option every music-catalog slash
// command exposes, mirroring a prefix command's trailing argument string
// exactly (design §4.4: the same Registry backs both paths, so both paths
// must feed it the same shape of input).
func musicArgsOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "args",
		Description: description,
		Required:    false,
	}
}

func musicCommand(name, description string) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
		Options:     []*discordgo.ApplicationCommandOption{musicArgsOption(description)},
	}
}

func boolOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        name,
		Description: description,
	}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func integerOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
	}
}

func numberOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionNumber,
		Name:        name,
		Description: description,
	}
}

// settingsCommand mirrors presenter.SettingsForm's schema tags one-for-one,
// so DecodeSettingsForm can turn the resulting options straight into a
// form (design §4.7).
func settingsCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "settings",
		Description: "View or change this server's bot settings",
		Options: []*discordgo.ApplicationCommandOption{
			stringOption("prefix", "Command prefix for text messages", false),
			numberOption("volume", "Default playback volume (0.0-2.0)"),
			boolOption("autopause", "Pause each new track after the previous one ends"),
			boolOption("autoplay", "Keep playing related tracks when the queue empties"),
			boolOption("self_deafen", "Self-deafen while connected to voice"),
			integerOption("timeout_seconds", "Idle seconds before auto-disconnect"),
			boolOption("allow_all_domains", "Allow resolving from any domain, not just the allow list"),
			stringOption("music_channel", "Channel ID music commands are restricted to", false),
		},
	}
}

// GetCommands returns every global application command this bot registers:
// the music catalog (design §4.4), /settings (design §4.7), and /admin.
func GetCommands() []*discordgo.ApplicationCommand {
	cmds := []*discordgo.ApplicationCommand{
		musicCommand("play", "Play a track or add it to the queue"),
		musicCommand("playnext", "Play a track next"),
		musicCommand("search", "Search and queue by keywords"),
		musicCommand("skip", "Skip the current track, or jump to a position"),
		musicCommand("stop", "Stop playback and clear the queue"),
		musicCommand("pause", "Pause playback"),
		musicCommand("resume", "Resume playback"),
		musicCommand("seek", "Seek to a timestamp in the current track"),
		musicCommand("volume", "Get or set the playback volume"),
		musicCommand("queue", "Show the current queue"),
		musicCommand("nowplaying", "Show the currently playing track"),
		musicCommand("shuffle", "Shuffle the upcoming queue"),
		musicCommand("repeat", "Queue the current track to play again"),
		musicCommand("remove", "Remove a track from the queue by position"),
		musicCommand("clear", "Clear the upcoming queue"),
		musicCommand("grab", "DM yourself the currently playing track"),
		musicCommand("lyrics", "Show lyrics for the current or a named track"),
		musicCommand("leave", "Disconnect from voice"),
		musicCommand("summon", "Join your current voice channel"),
		musicCommand("autopause", "Toggle autopause"),
		musicCommand("autoplay", "Toggle autoplay"),
		musicCommand("voteskip", "Vote to skip the current track"),
		musicCommand("playlog", "Show recent plays for this server"),
		musicCommand("playlist", "Create, save, load, list, or delete a playlist"),
		musicCommand("admin", "Server admin actions: musicchannel, logchannel, authorize"),
		settingsCommand(),
	}
	return cmds
}

// RegisterCommands replaces every global and per-guild application command
// with the current catalog. Run once at startup behind a flag, same as the
// teacher's main.go did, since Discord rate-limits command writes.
func RegisterCommands(s *discordgo.Session) error {
	existing, err := s.ApplicationCommands(s.State.User.ID, "")
	if err != nil {
		return fmt.Errorf("listing existing global commands: %w", err)
	}
	for _, cmd := range existing {
		if err := s.ApplicationCommandDelete(s.State.User.ID, "", cmd.ID); err != nil {
			return fmt.Errorf("deleting global command %q: %w", cmd.Name, err)
		}
	}

	for _, guild := range s.State.Guilds {
		guildCmds, err := s.ApplicationCommands(s.State.User.ID, guild.ID)
		if err != nil {
			continue
		}
		for _, cmd := range guildCmds {
			_ = s.ApplicationCommandDelete(s.State.User.ID, guild.ID, cmd.ID)
		}
	}

	for _, cmd := range GetCommands() {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("creating command %q: %w", cmd.Name, err)
		}
	}
	return nil
}
