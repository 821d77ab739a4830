package ytdlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoInfoToTrackPicksHighestABR(t *testing.T) {
	info := &VideoInfo{
		Title:     "Some Song",
		URL:       "https://youtube.com/watch?v=abc",
		Available: true,
		Duration:  185.5,
		Formats: []FormatInfo{
			{ACodec: "opus", ABR: 128, URL: "low.webm"},
			{ACodec: "opus", ABR: 256, URL: "high.webm"},
			{ACodec: "none", ABR: 500, URL: "video-only.mp4"},
		},
	}
	track, err := videoInfoToTrack(info)
	require.NoError(t, err)
	assert.Equal(t, "high.webm", track.StreamURL)
	assert.Equal(t, "Some Song", track.Metadata.Title)
}

func TestVideoInfoToTrackUnavailableErrors(t *testing.T) {
	_, err := videoInfoToTrack(&VideoInfo{Available: false})
	assert.Error(t, err)
}

func TestVideoInfoToTrackFallsBackToLastFormatWithoutAudio(t *testing.T) {
	info := &VideoInfo{
		Title:     "Video Only",
		Available: true,
		Formats: []FormatInfo{
			{ACodec: "none", URL: "a.mp4"},
			{ACodec: "none", URL: "b.mp4"},
		},
	}
	track, err := videoInfoToTrack(info)
	require.NoError(t, err)
	assert.Equal(t, "b.mp4", track.StreamURL)
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "3:05", formatSeconds(185))
	assert.Equal(t, "0:09", formatSeconds(9))
}
