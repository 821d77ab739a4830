package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// requireLiveDB skips the test unless TEST_DATABASE_URL points at a
// throwaway Postgres instance with the schema from design §4.5 applied.
// Repository methods are thin SQL wrappers; the only way to verify their
// query text is against a real connection, so these stay integration tests
// rather than a hand-rolled pgx fake.
func requireLiveDB(t *testing.T) string {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping store integration test")
	}
	return url
}

func TestStoreOpenAndSettingsRoundTrip(t *testing.T) {
	url := requireLiveDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Open(ctx, url, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Guilds.EnsureGuild(ctx, 42, "test-guild"))
	require.NoError(t, s.Guilds.SaveSettings(ctx, &GuildSettingsRow{
		GuildID: 42, GuildName: "test-guild", Prefix: "!", Volume: 1.0,
	}))
	row, err := s.Guilds.LoadSettings(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, "!", row.Prefix)
}

func TestStoreWriterEndToEnd(t *testing.T) {
	url := requireLiveDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := Open(ctx, url, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()

	s.Writer.Start(ctx)
	require.NoError(t, s.Writer.Enqueue(ctx, testMsg()))
	s.Writer.Stop()

	id, err := s.Guilds.GetOrCreateMetadata(ctx, MetadataRow{SourceURL: testMsg().Metadata.SourceURL})
	require.NoError(t, err)
	require.NotZero(t, id)
}
