package imageapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genstudio/internal/generator"
)

func TestGenerateImage_Success(t *testing.T) {
	var got request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":"success","imageUrl":"https://cdn/1.png"}`))
	}))
	defer srv.Close()

	img, err := NewClient(srv.URL, nil).GenerateImage(context.Background(), generator.ImageJob{Prompt: "a fox, photorealistic"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/1.png", img.URL)
	assert.Equal(t, "a fox, photorealistic", got.Prompt)
}

func TestGenerateImage_Rejected(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"with message", `{"status":"error","message":"quota exceeded"}`, "quota exceeded"},
		{"success without url", `{"status":"success"}`, "Unknown error occurred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, nil).GenerateImage(context.Background(), generator.ImageJob{Prompt: "x"})
			var rejected *generator.RejectedError
			require.ErrorAs(t, err, &rejected)
			assert.Equal(t, tt.msg, rejected.Message)
		})
	}
}

func TestGenerateImage_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).GenerateImage(context.Background(), generator.ImageJob{Prompt: "x"})
	require.Error(t, err)
	var rejected *generator.RejectedError
	assert.False(t, errors.As(err, &rejected))
	assert.NotErrorIs(t, err, generator.ErrTimeout)
}

func TestGenerateImage_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(srv.URL, nil).GenerateImage(ctx, generator.ImageJob{Prompt: "x"})
	assert.ErrorIs(t, err, generator.ErrTimeout)
}

func TestGenerateImage_NotConfigured(t *testing.T) {
	_, err := NewClient("  ", nil).GenerateImage(context.Background(), generator.ImageJob{Prompt: "x"})
	assert.ErrorIs(t, err, generator.ErrUnavailable)
}
