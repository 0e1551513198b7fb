// Package generator defines the upstream media generators the API delegates to.
package generator

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrTimeout     = errors.New("generation timed out")
	ErrUnavailable = errors.New("generator unavailable")
)

// RejectedError means the upstream answered but refused to produce media.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "generation rejected: " + e.Message
}

type ImageJob struct {
	// RecordID is the stored record the job settles.
	RecordID   int64
	Prompt     string
	Style      string
	Resolution string
	Format     string
}

type VideoJob struct {
	RecordID   int64
	Prompt     string
	Style      string
	Duration   string
	Resolution string
	Fps        int
}

type Image struct {
	URL string
}

type Video struct {
	URL          string
	ThumbnailURL string
	FileSize     int64
}

type Images interface {
	GenerateImage(ctx context.Context, job ImageJob) (Image, error)
	Name() string
}

type Videos interface {
	GenerateVideo(ctx context.Context, job VideoJob) (Video, error)
	Name() string
}

// Unavailable stands in for a generator that is not configured.
type Unavailable struct {
	Reason string
}

func (u Unavailable) GenerateImage(context.Context, ImageJob) (Image, error) {
	return Image{}, fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}

func (u Unavailable) GenerateVideo(context.Context, VideoJob) (Video, error) {
	return Video{}, fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}

func (u Unavailable) Name() string {
	return "unavailable"
}
