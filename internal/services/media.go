package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"genstudio/internal/generator"
	"genstudio/internal/store"
)

const (
	msgPromptRequired   = "Prompt is required"
	msgPromptTooShort   = "Prompt must be at least 3 characters long"
	msgInvalidBody      = "Invalid request body"
	msgTimeout          = "Request timed out. Please try again."
	msgImageUnreachable = "Failed to connect to image generation service"
	msgVideoFailed      = "Failed to generate video"
	msgUnexpected       = "An unexpected error occurred"
	msgShuttingDown     = "Server is shutting down"
)

// GenerationError carries the message safe to show to API callers next to
// the underlying cause.
type GenerationError struct {
	Public string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Public, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

type Generators struct {
	Images generator.Images
	Videos generator.Videos
}

// Media runs one generation against the configured upstream and settles the
// stored record with the outcome.
type Media struct {
	store   *store.Store
	gens    Generators
	timeout time.Duration
	logger  *log.Logger
}

func NewMedia(st *store.Store, gens Generators, timeout time.Duration) *Media {
	return &Media{
		store:   st,
		gens:    gens,
		timeout: timeout,
		logger:  log.With("component", "media", "images", gens.Images.Name(), "videos", gens.Videos.Name()),
	}
}

// Image generates job.Prompt enhanced by job.Style. The record job.RecordID
// is completed or failed before Image returns.
func (m *Media) Image(ctx context.Context, job generator.ImageJob) (generator.Image, error) {
	upstream := job
	upstream.Prompt = generator.EnhanceImagePrompt(job.Prompt, job.Style)

	gctx, cancel := context.WithTimeout(ctx, m.timeout)
	img, err := m.gens.Images.GenerateImage(gctx, upstream)
	cancel()

	// settle even when the request context is gone
	sctx := context.WithoutCancel(ctx)
	if err != nil {
		stored, public := imageFailure(err)
		m.logger.Error("image generation failed", "recordId", job.RecordID, "err", err)
		if ferr := m.store.FailImage(sctx, job.RecordID, stored); ferr != nil {
			m.logger.Error("error recording failure", "recordId", job.RecordID, "err", ferr)
		}
		return generator.Image{}, &GenerationError{Public: public, Err: err}
	}

	if err := m.store.CompleteImage(sctx, job.RecordID, img.URL); err != nil {
		m.logger.Error("error recording image", "recordId", job.RecordID, "err", err)
		return generator.Image{}, &GenerationError{Public: msgUnexpected, Err: err}
	}
	return img, nil
}

func (m *Media) Video(ctx context.Context, job generator.VideoJob) (generator.Video, error) {
	upstream := job
	upstream.Prompt = generator.EnhanceVideoPrompt(job.Prompt, job.Style)

	gctx, cancel := context.WithTimeout(ctx, m.timeout)
	v, err := m.gens.Videos.GenerateVideo(gctx, upstream)
	cancel()

	sctx := context.WithoutCancel(ctx)
	if err != nil {
		stored, public := videoFailure(err)
		m.logger.Error("video generation failed", "recordId", job.RecordID, "err", err)
		if ferr := m.store.FailVideo(sctx, job.RecordID, stored); ferr != nil {
			m.logger.Error("error recording failure", "recordId", job.RecordID, "err", ferr)
		}
		return generator.Video{}, &GenerationError{Public: public, Err: err}
	}

	if err := m.store.CompleteVideo(sctx, job.RecordID, v.URL, v.ThumbnailURL, v.FileSize); err != nil {
		m.logger.Error("error recording video", "recordId", job.RecordID, "err", err)
		return generator.Video{}, &GenerationError{Public: msgUnexpected, Err: err}
	}
	return v, nil
}

// imageFailure returns the message stored on the record and the one sent to
// the caller.
func imageFailure(err error) (string, string) {
	var rejected *generator.RejectedError
	switch {
	case errors.As(err, &rejected):
		return rejected.Message, rejected.Message
	case isTimeout(err):
		return "Request timed out", msgTimeout
	}
	return "API request failed: " + err.Error(), msgImageUnreachable
}

func videoFailure(err error) (string, string) {
	if isTimeout(err) {
		return "Request timed out", msgTimeout
	}
	return "Error: " + err.Error(), msgVideoFailed
}

func isTimeout(err error) bool {
	return errors.Is(err, generator.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
