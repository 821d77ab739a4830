package background

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"cracktunes-go/settings"
	"cracktunes-go/store"
)

// WaitForSignal blocks until an interrupt or termination signal arrives.
// The teacher's main.go waited on a bare os.Interrupt; SIGTERM is added
// here since that's what container orchestrators send on shutdown.
func WaitForSignal() os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return <-stop
}

// Shutdown flushes every dirty guild's settings and closes the store's
// connection pool (spec §5: nothing dirty may be lost on exit).
func Shutdown(ctx context.Context, cache *settings.Cache, st *store.Store, log zerolog.Logger) {
	log.Info().Msg("shutting down: flushing settings cache")
	cache.FlushAll(ctx)

	log.Info().Msg("shutting down: closing store connection pool")
	st.Close()
}
