package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cracktunes-go/music/types"
)

func testMsg() MetadataMsg {
	return MetadataMsg{
		Metadata: types.AuxMetadata{Title: "x", SourceURL: "https://example.com/x"},
		UserID:   1,
		Username: "tester",
		GuildID:  2,
	}
}

func TestWriterEnqueueSucceedsWithCapacity(t *testing.T) {
	w := NewWriter(&Store{}, zerolog.Nop())
	err := w.Enqueue(context.Background(), testMsg())
	require.NoError(t, err)
	assert.Len(t, w.in, 1)
}

func TestWriterEnqueueRespectsContextCancellation(t *testing.T) {
	w := NewWriter(&Store{}, zerolog.Nop())
	// Fill the channel to capacity without a consumer draining it.
	for i := 0; i < writerChannelCap; i++ {
		require.NoError(t, w.Enqueue(context.Background(), testMsg()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := w.Enqueue(ctx, testMsg())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
