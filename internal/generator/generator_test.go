package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnhancePrompt(t *testing.T) {
	assert.Equal(t,
		"a fox, photorealistic, high quality, detailed, professional photography",
		EnhanceImagePrompt("a fox", "realistic"))
	assert.Equal(t,
		"waves, documentary style, natural lighting, realistic, authentic footage",
		EnhanceVideoPrompt("waves", "documentary"))
	assert.Equal(t, "a fox", EnhanceImagePrompt("a fox", "watercolor"))
	assert.Equal(t, "waves", EnhanceVideoPrompt("waves", "realistic"))
}

func TestSimulated(t *testing.T) {
	v, err := Simulated{BaseURL: "https://media.example.com/"}.GenerateVideo(context.Background(), VideoJob{RecordID: 7})
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/video/7.mp4", v.URL)
	assert.Equal(t, "https://media.example.com/thumbnail/7.jpg", v.ThumbnailURL)
	assert.Equal(t, int64(5<<20), v.FileSize)
}

func TestSimulated_HonoursDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := Simulated{Delay: time.Minute}.GenerateVideo(ctx, VideoJob{RecordID: 1})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{Reason: "no worker"}.GenerateVideo(context.Background(), VideoJob{})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "no worker")

	var rejected *RejectedError
	assert.False(t, errors.As(err, &rejected))
}
