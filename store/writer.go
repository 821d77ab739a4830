package store

import (
	"context"

	"github.com/rs/zerolog"

	"cracktunes-go/music/types"
)

// writerChannelCap is the async writer's ingress capacity (design §4.5).
const writerChannelCap = 1024

// MetadataMsg is what the queue engine sends after a track starts playing:
// enough to upsert metadata, the user row, and a play_log entry.
type MetadataMsg struct {
	Metadata  types.AuxMetadata
	UserID    int64
	Username  string
	GuildID   int64
	ChannelID int64
}

// Writer is the single-consumer async writer worker (design §4.5): the
// queue engine enqueues MetadataMsg values and a background goroutine
// performs three upserts per message. Senders block when the channel is
// full rather than dropping messages.
type Writer struct {
	store *Store
	log   zerolog.Logger
	in    chan MetadataMsg
	done  chan struct{}
}

// NewWriter builds a Writer bound to store's repositories. Call Start to
// spawn its consumer goroutine.
func NewWriter(store *Store, log zerolog.Logger) *Writer {
	return &Writer{
		store: store,
		log:   log,
		in:    make(chan MetadataMsg, writerChannelCap),
		done:  make(chan struct{}),
	}
}

// Start spawns the consumer goroutine. Safe to call once.
func (w *Writer) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop closes the ingress channel and waits for the consumer to drain it.
func (w *Writer) Stop() {
	close(w.in)
	<-w.done
}

// Enqueue sends msg to the writer, blocking until the channel has capacity
// or ctx is done. The sender never drops a message (design §4.5
// backpressure).
func (w *Writer) Enqueue(ctx context.Context, msg MetadataMsg) error {
	select {
	case w.in <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run(ctx context.Context) {
	defer close(w.done)
	for msg := range w.in {
		w.write(ctx, msg)
	}
}

// write performs the three upserts for one message. Each step's failure is
// logged but never aborts the remaining steps - best-effort durability of a
// streaming event history, not a transaction.
func (w *Writer) write(ctx context.Context, msg MetadataMsg) {
	metadataID, err := w.store.Guilds.GetOrCreateMetadata(ctx, MetadataRow{
		Title:     msg.Metadata.Title,
		Artist:    msg.Metadata.Artist,
		Album:     msg.Metadata.Album,
		SourceURL: msg.Metadata.SourceURL,
		Thumbnail: msg.Metadata.Thumbnail,
		Channel:   msg.Metadata.Channel,
		Duration:  msg.Metadata.Duration,
		GuildID:   msg.GuildID,
		ChannelID: msg.ChannelID,
	})
	if err != nil {
		w.log.Error().Err(err).Str("source_url", msg.Metadata.SourceURL).Msg("metadata upsert failed")
		return
	}

	if err := w.store.Guilds.InsertOrUpdateUser(ctx, msg.UserID, msg.Username); err != nil {
		w.log.Error().Err(err).Int64("user_id", msg.UserID).Msg("user upsert failed")
	}

	playLogID, err := w.store.PlayLogs.Create(ctx, msg.UserID, msg.GuildID, metadataID)
	if err != nil {
		w.log.Error().Err(err).Int64("guild_id", msg.GuildID).Msg("play_log insert failed")
		return
	}

	if err := w.store.Reactions.Ensure(ctx, playLogID); err != nil {
		w.log.Error().Err(err).Int64("play_log_id", playLogID).Msg("track_reaction ensure failed")
	}
}
