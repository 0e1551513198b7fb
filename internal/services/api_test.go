package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genstudio/config"
	"genstudio/internal/generator"
	"genstudio/internal/store"
	"genstudio/types"
)

type fakeImages struct {
	mu      sync.Mutex
	url     string
	err     error
	prompts []string
}

func (f *fakeImages) Name() string { return "fake" }

func (f *fakeImages) GenerateImage(_ context.Context, job generator.ImageJob) (generator.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, job.Prompt)
	if f.err != nil {
		return generator.Image{}, f.err
	}
	return generator.Image{URL: f.url}, nil
}

type fakeVideos struct {
	video generator.Video
	err   error
}

func (f *fakeVideos) Name() string { return "fake" }

func (f *fakeVideos) GenerateVideo(context.Context, generator.VideoJob) (generator.Video, error) {
	if f.err != nil {
		return generator.Video{}, f.err
	}
	return f.video, nil
}

type fixture struct {
	cancel context.CancelFunc
	api    *Api
	store  *store.Store
	hub    *Hub
	batch  *BatchService
	images *fakeImages
	videos *fakeVideos
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	st, err := store.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)

	var cfg config.Config
	cfg.Defaults()

	f := &fixture{
		cancel: cancel,
		store:  st,
		hub:    NewHub(),
		images: &fakeImages{url: "https://img.example/cat.png"},
		videos: &fakeVideos{video: generator.Video{
			URL:          "https://vid.example/1.mp4",
			ThumbnailURL: "https://vid.example/1.jpg",
			FileSize:     1024,
		}},
	}
	media := NewMedia(st, Generators{Images: f.images, Videos: f.videos}, time.Second)
	f.batch = NewBatchService(ctx, f.hub, media, cfg.Batch)
	f.api = NewApi(cfg, st, media, f.batch, f.hub)

	t.Cleanup(func() {
		f.batch.Shutdown()
		cancel()
		_ = st.Close()
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.api.server.Test(req, -1)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	resp, out := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 200, out["status"])
}

func TestGenerateImage(t *testing.T) {
	f := newFixture(t)

	resp, out := f.do(t, http.MethodPost, "/generate", map[string]any{
		"prompt": "  a cat  ",
		"style":  "artistic",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "https://img.example/cat.png", out["imageUrl"])
	assert.Equal(t, "a cat", out["prompt"])
	assert.Equal(t, "artistic", out["style"])
	assert.Equal(t, "512x512", out["resolution"])
	assert.Equal(t, "PNG", out["format"])

	require.Len(t, f.images.prompts, 1)
	assert.Equal(t, "a cat, artistic style, creative, expressive, beautiful artwork", f.images.prompts[0])

	page, err := f.store.ListImages(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, types.RecordCompleted, page.Items[0].Status)
	assert.Equal(t, "https://img.example/cat.png", page.Items[0].URL)
}

func TestGenerateImageValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		msg  string
	}{
		{"missing", map[string]any{}, "Prompt is required"},
		{"empty", map[string]any{"prompt": ""}, "Prompt is required"},
		{"blank", map[string]any{"prompt": "    "}, "Prompt must be at least 3 characters long"},
		{"short", map[string]any{"prompt": " ab "}, "Prompt must be at least 3 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			resp, out := f.do(t, http.MethodPost, "/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "error", out["status"])
			assert.Equal(t, tt.msg, out["message"])
			assert.Empty(t, f.images.prompts)
		})
	}
}

func TestGenerateImageFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		msg    string
		stored string
	}{
		{"timeout", generator.ErrTimeout, "Request timed out. Please try again.", "Request timed out"},
		{"rejected", &generator.RejectedError{Message: "NSFW content"}, "NSFW content", "NSFW content"},
		{"unreachable", errors.New("connection refused"), "Failed to connect to image generation service", "API request failed: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.images.err = tt.err

			resp, out := f.do(t, http.MethodPost, "/generate", map[string]any{"prompt": "a cat"})
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, "error", out["status"])
			assert.Equal(t, tt.msg, out["message"])

			page, err := f.store.ListImages(context.Background(), 1, 20)
			require.NoError(t, err)
			require.Len(t, page.Items, 1)
			assert.Equal(t, types.RecordFailed, page.Items[0].Status)
			require.NotNil(t, page.Items[0].ErrorMessage)
			assert.Equal(t, tt.stored, *page.Items[0].ErrorMessage)
		})
	}
}

func TestGenerateVideo(t *testing.T) {
	f := newFixture(t)

	resp, out := f.do(t, http.MethodPost, "/generate_video", map[string]any{"prompt": "waves at dusk"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://vid.example/1.mp4", out["videoUrl"])
	assert.Equal(t, "https://vid.example/1.jpg", out["thumbnailUrl"])
	assert.Equal(t, "cinematic", out["style"])
	assert.Equal(t, "5s", out["duration"])
	assert.Equal(t, "720p", out["resolution"])
	assert.EqualValues(t, 24, out["fps"])
	assert.EqualValues(t, 1024, out["fileSize"])
}

func TestGenerateVideoFailure(t *testing.T) {
	f := newFixture(t)
	f.videos.err = errors.New("worker crashed")

	resp, out := f.do(t, http.MethodPost, "/generate_video", map[string]any{"prompt": "waves at dusk"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to generate video", out["message"])

	page, err := f.store.ListVideos(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].ErrorMessage)
	assert.Equal(t, "Error: worker crashed", *page.Items[0].ErrorMessage)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	for _, p := range []string{"first", "second", "third"} {
		resp, _ := f.do(t, http.MethodPost, "/generate", map[string]any{"prompt": p})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, out := f.do(t, http.MethodGet, "/history?page=1&per_page=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, out["total"])
	assert.EqualValues(t, 2, out["pages"])
	assert.EqualValues(t, 1, out["current_page"])

	images := out["images"].([]any)
	require.Len(t, images, 2)
	assert.Equal(t, "third", images[0].(map[string]any)["prompt"])
	assert.Equal(t, "https://img.example/cat.png", images[0].(map[string]any)["image_url"])
}

func TestVideoHistoryEmpty(t *testing.T) {
	f := newFixture(t)

	resp, out := f.do(t, http.MethodGet, "/video_history", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", out["status"])
	assert.EqualValues(t, 0, out["total"])
}

func TestBatchGenerateValidation(t *testing.T) {
	f := newFixture(t)

	resp, out := f.do(t, http.MethodPost, "/batch_generate", map[string]any{"prompts": []string{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "At least one prompt is required", out["message"])

	resp, out = f.do(t, http.MethodPost, "/batch_generate_video", map[string]any{
		"prompts": []string{"one", "two", "three", "four", "five", "six"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Maximum 5 prompts allowed per batch", out["message"])
}

func TestBatchGenerateSkipsShortPrompts(t *testing.T) {
	f := newFixture(t)

	resp, out := f.do(t, http.MethodPost, "/batch_generate", map[string]any{
		"prompts": []string{"a cat", "", "no", " a dog "},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Batch generation started for 2 images", out["message"])
	assert.NotEmpty(t, out["batchId"])

	results := out["results"].([]any)
	require.Len(t, results, 2)
	assert.Equal(t, "a dog", results[1].(map[string]any)["prompt"])
	assert.Equal(t, "queued", results[1].(map[string]any)["status"])
}

func TestBatchGenerateAllInvalid(t *testing.T) {
	f := newFixture(t)

	resp, out := f.do(t, http.MethodPost, "/batch_generate_video", map[string]any{"prompts": []string{"x", "  "}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Batch generation started for 0 videos", out["message"])
	assert.Empty(t, out["results"])
}

func TestBatchGenerateAfterShutdown(t *testing.T) {
	f := newFixture(t)
	f.batch.Shutdown()

	resp, out := f.do(t, http.MethodPost, "/batch_generate", map[string]any{"prompts": []string{"a cat"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := out["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "failed", results[0].(map[string]any)["status"])

	page, err := f.store.ListImages(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, types.RecordFailed, page.Items[0].Status)
}

func TestUnknownRouteUsesJSONEnvelope(t *testing.T) {
	f := newFixture(t)

	resp, out := f.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "error", out["status"])
}

func TestCheckPrompt(t *testing.T) {
	tests := []struct {
		raw    string
		prompt string
		msg    string
	}{
		{"", "", msgPromptRequired},
		{"   ", "", msgPromptTooShort},
		{"ab", "", msgPromptTooShort},
		{" 日本語 ", "日本語", ""},
		{"  a cat ", "a cat", ""},
	}
	for _, tt := range tests {
		prompt, msg := checkPrompt(tt.raw)
		assert.Equal(t, tt.prompt, prompt, "raw %q", tt.raw)
		assert.Equal(t, tt.msg, msg, "raw %q", tt.raw)

		_, ok := usable(tt.raw)
		assert.Equal(t, tt.msg == "", ok, "raw %q", tt.raw)
	}
}
