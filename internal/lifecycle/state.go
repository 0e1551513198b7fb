package lifecycle

import (
	"genstudio/internal/request"
	"genstudio/types"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
)

// Content is what the preview shows: a freshly generated item or one
// loaded back from history.
type Content struct {
	Type         request.Mode
	ID           int64
	URL          string
	ThumbnailURL string
	Prompt       string
	Style        string
	Resolution   string
	Format       string
	Duration     string
	FPS          int
	FileSize     int64
}

// State is the controller's UI state. Snapshots are copies; mutating one has
// no effect on the controller.
type State struct {
	IsGenerating bool
	Phase        Phase
	// LastOutcome is Success or Failed once a submission has completed.
	LastOutcome    Phase
	LastMessage    string
	Current        *Content
	ContentMode    request.Mode
	HistoryMode    request.Mode
	HistoryVisible bool
}

func (s State) snapshot() State {
	if s.Current != nil {
		c := *s.Current
		s.Current = &c
	}
	return s
}

func contentFromResponse(req request.GenerationRequest, resp types.GenerationResponse) Content {
	c := Content{
		Type:         req.Mode,
		ID:           resp.ID,
		ThumbnailURL: resp.ThumbnailURL,
		Prompt:       firstNonEmpty(resp.Prompt, req.Prompt),
		Style:        firstNonEmpty(resp.Style, req.Style),
		Resolution:   firstNonEmpty(resp.Resolution, req.Resolution),
		FileSize:     resp.FileSize,
	}
	if req.Mode == request.ModeVideo {
		c.URL = resp.VideoURL
		c.Duration = firstNonEmpty(resp.Duration, req.Duration)
		c.FPS = resp.Fps
		if c.FPS == 0 {
			c.FPS = req.FPS
		}
	} else {
		c.URL = resp.ImageURL
		c.Format = firstNonEmpty(resp.Format, req.Format)
	}
	return c
}

func contentFromHistory(mode request.Mode, item types.HistoryItem) Content {
	c := Content{
		Type:       mode,
		ID:         item.ID,
		Prompt:     item.Prompt,
		Style:      item.Style,
		Resolution: item.Resolution,
		FileSize:   item.FileSize,
	}
	if mode == request.ModeVideo {
		c.URL = item.VideoURL
		c.ThumbnailURL = item.ThumbnailURL
		c.Duration = item.Duration
		c.FPS = item.Fps
	} else {
		c.URL = item.ImageURL
		c.Format = item.Format
	}
	return c
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
