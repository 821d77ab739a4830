// Command cracktunes-go runs the bot: load configuration, connect to
// Postgres, wire the Discord session, and block until a shutdown signal
// arrives.
package main

import (
	"context"
	"flag"
	"os"

	"cracktunes-go/background"
	"cracktunes-go/bot"
	"cracktunes-go/config"
	"cracktunes-go/internal/logging"
	"cracktunes-go/store"
)

func main() {
	registerCommands := flag.Bool("register-commands", false, "Register slash commands with Discord, replacing any existing ones")
	logLevel := flag.String("log-level", "info", "zerolog level: debug, info, warn, error")
	prettyLog := flag.Bool("pretty-log", false, "Write human-readable console logs instead of JSON")
	flag.Parse()

	log := logging.Init(*logLevel, *prettyLog)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("opening store")
	}
	st.Writer.Start(ctx)

	b, err := bot.New(cfg, st, log)
	if err != nil {
		log.Fatal().Err(err).Msg("wiring bot")
	}

	if err := b.Open(); err != nil {
		log.Fatal().Err(err).Msg("opening discord connection")
	}

	if *registerCommands {
		if err := bot.RegisterCommands(b.Session); err != nil {
			log.Error().Err(err).Msg("registering slash commands")
		} else {
			log.Info().Int("count", len(bot.GetCommands())).Msg("registered slash commands")
		}
	}

	go func() {
		if err := b.RunCameraPolicy(ctx); err != nil {
			log.Error().Err(err).Msg("camera policy loop exited")
		}
	}()

	log.Info().Msg("bot is running, press CTRL+C to exit")
	sig := background.WaitForSignal()
	log.Info().Stringer("signal", sig).Msg("received shutdown signal")

	cancel()
	background.Shutdown(context.Background(), b.Settings(), st, log)

	if err := b.Close(); err != nil {
		log.Error().Err(err).Msg("closing discord connection")
	}

	os.Exit(0)
}
