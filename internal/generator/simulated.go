package generator

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Simulated produces placeholder videos after a fixed delay. It is used
// when no media worker is deployed.
type Simulated struct {
	BaseURL  string
	Delay    time.Duration
	FileSize int64
}

func (s Simulated) GenerateVideo(ctx context.Context, job VideoJob) (Video, error) {
	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Video{}, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case <-t.C:
		}
	}

	base := strings.TrimRight(s.BaseURL, "/")
	size := s.FileSize
	if size <= 0 {
		size = 5 << 20
	}
	return Video{
		URL:          fmt.Sprintf("%s/video/%d.mp4", base, job.RecordID),
		ThumbnailURL: fmt.Sprintf("%s/thumbnail/%d.jpg", base, job.RecordID),
		FileSize:     size,
	}, nil
}

func (s Simulated) Name() string {
	return "simulated"
}
