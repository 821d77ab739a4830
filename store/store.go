// Package store is the relational persistence layer: a pgx connection pool,
// per-table repositories, and a bounded-channel async writer for play-log
// events (design §4.5). Nothing above this package touches SQL directly.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Store bundles the connection pool with every repository the core reads
// and writes through, plus the async metadata writer.
type Store struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger

	Guilds       *GuildRepository
	Playlists    *PlaylistRepository
	PlayLogs     *PlayLogRepository
	Reactions    *TrackReactionRepository
	Writer       *Writer
}

// Open connects to Postgres via databaseURL and wires up every repository.
// The returned Store's Writer is not yet started; call Start to spawn its
// consumer goroutine.
func Open(ctx context.Context, databaseURL string, log zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{
		Pool:      pool,
		log:       log,
		Guilds:    &GuildRepository{pool: pool},
		Playlists: &PlaylistRepository{pool: pool},
		PlayLogs:  &PlayLogRepository{pool: pool},
		Reactions: &TrackReactionRepository{pool: pool},
	}
	s.Writer = NewWriter(s, log)
	return s, nil
}

// Close stops the writer and releases the pool. Safe to call once, on
// shutdown after every in-flight command has settled.
func (s *Store) Close() {
	if s.Writer != nil {
		s.Writer.Stop()
	}
	s.Pool.Close()
}
