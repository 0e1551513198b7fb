package request

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_PromptValidation(t *testing.T) {
	cases := []struct {
		name   string
		prompt string
		want   error
	}{
		{"empty", "", ErrEmptyPrompt},
		{"whitespace", "   \t\n", ErrEmptyPrompt},
		{"one_char", "a", ErrPromptTooShort},
		{"two_chars_padded", "  ab  ", ErrPromptTooShort},
		{"two_runes", "日本", ErrPromptTooShort},
		{"three_chars", "abc", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := DefaultForm()
			form.Prompt = tc.prompt

			_, err := Build(form)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBuild_ImageMode(t *testing.T) {
	form := DefaultForm()
	form.Prompt = "  a majestic dragon  "

	req, err := Build(form)
	require.NoError(t, err)

	assert.Equal(t, ModeImage, req.Mode)
	assert.Equal(t, "a majestic dragon", req.Prompt)
	assert.Equal(t, "realistic", req.Style)
	assert.Equal(t, "512x512", req.Resolution)
	assert.Equal(t, "PNG", req.Format)
	assert.Zero(t, req.FPS)

	payload := req.ImagePayload()
	assert.Equal(t, "a majestic dragon", payload.Prompt)
	assert.Equal(t, "PNG", payload.Format)
}

func TestBuild_VideoMode(t *testing.T) {
	form := DefaultForm()
	form.Mode = ModeVideo
	form.Prompt = "ocean waves"
	form.Video.FPS = "30"

	req, err := Build(form)
	require.NoError(t, err)

	assert.Equal(t, ModeVideo, req.Mode)
	assert.Equal(t, 30, req.FPS)
	assert.Equal(t, "5s", req.Duration)
	assert.Empty(t, req.Format)
	assert.Equal(t, 30, req.VideoPayload().Fps)
}

func TestBuild_MissingOptions(t *testing.T) {
	form := DefaultForm()
	form.Prompt = "a valid prompt"
	form.Image.Format = ""

	_, err := Build(form)
	require.ErrorIs(t, err, ErrMissingOption)
	assert.Contains(t, err.Error(), "format")

	form = DefaultForm()
	form.Mode = ModeVideo
	form.Prompt = "a valid prompt"
	form.Video.Duration = " "

	_, err = Build(form)
	require.ErrorIs(t, err, ErrMissingOption)
	assert.Contains(t, err.Error(), "duration")
}

func TestBuild_InvalidFPS(t *testing.T) {
	for _, fps := range []string{"fast", "0", "-24", "24.5"} {
		form := DefaultForm()
		form.Mode = ModeVideo
		form.Prompt = "a valid prompt"
		form.Video.FPS = fps

		_, err := Build(form)
		assert.ErrorIs(t, err, ErrInvalidFPS, "fps %q", fps)
	}
}

func TestBuild_UnknownMode(t *testing.T) {
	form := DefaultForm()
	form.Mode = "audio"
	form.Prompt = "a valid prompt"

	_, err := Build(form)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestBuildBatch_DropsInvalidPrompts(t *testing.T) {
	batch, err := BuildBatch(DefaultForm(), []string{"", "ab", "a valid prompt", "  "})
	require.NoError(t, err)

	assert.Equal(t, []string{"a valid prompt"}, batch.Prompts)
	assert.Equal(t, ModeImage, batch.Mode)
	assert.Equal(t, []string{"a valid prompt"}, batch.ImagePayload("").Prompts)
}

func TestBuildBatch_KeepsOrderAndTrims(t *testing.T) {
	form := DefaultForm()
	form.Mode = ModeVideo

	batch, err := BuildBatch(form, []string{" first one ", "no", "second one"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first one", "second one"}, batch.Prompts)
	payload := batch.VideoPayload("client-1")
	assert.Equal(t, 24, payload.Fps)
	assert.Equal(t, "client-1", payload.ClientID)
}

func TestBuildBatch_NoValidPrompts(t *testing.T) {
	_, err := BuildBatch(DefaultForm(), []string{"", "x", "  yz "})
	assert.ErrorIs(t, err, ErrNoValidPrompts)

	_, err = BuildBatch(DefaultForm(), nil)
	assert.ErrorIs(t, err, ErrNoValidPrompts)
}

func TestBuildBatch_TooMany(t *testing.T) {
	prompts := []string{"one prompt", "two prompt", "three prompt", "four prompt", "five prompt", "six prompt"}
	_, err := BuildBatch(DefaultForm(), prompts)
	assert.True(t, errors.Is(err, ErrTooManyPrompts))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Video ")
	require.NoError(t, err)
	assert.Equal(t, ModeVideo, m)

	_, err = ParseMode("gif")
	assert.ErrorIs(t, err, ErrUnknownMode)
}
