// Package request turns a snapshot of the studio form into a validated
// generation request. It performs no I/O.
package request

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"genstudio/types"
)

type Mode string

const (
	ModeImage Mode = "image"
	ModeVideo Mode = "video"
)

func (m Mode) Valid() bool {
	return m == ModeImage || m == ModeVideo
}

// Noun is the user facing name of the content kind.
func (m Mode) Noun() string {
	if m == ModeVideo {
		return "video"
	}
	return "image"
}

func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

const (
	MinPromptLength = 3
	MaxBatchPrompts = 5
)

var (
	ErrEmptyPrompt    = errors.New("prompt is empty")
	ErrPromptTooShort = errors.New("prompt must be at least 3 characters long")
	ErrNoValidPrompts = errors.New("no valid prompts")
	ErrTooManyPrompts = errors.New("maximum 5 prompts allowed per batch")
	ErrMissingOption  = errors.New("missing option")
	ErrInvalidFPS     = errors.New("fps must be a positive integer")
	ErrUnknownMode    = errors.New("unknown content mode")
)

type ImageOptions struct {
	Style      string
	Resolution string
	Format     string
}

// VideoOptions keeps FPS as entered; it is parsed when a request is built.
type VideoOptions struct {
	Style      string
	Duration   string
	Resolution string
	FPS        string
}

// Form is the full set of selections a user can make. Only the options of
// the active Mode are read by Build.
type Form struct {
	Mode   Mode
	Prompt string
	Image  ImageOptions
	Video  VideoOptions
}

func DefaultForm() Form {
	return Form{
		Mode: ModeImage,
		Image: ImageOptions{
			Style:      "realistic",
			Resolution: "512x512",
			Format:     "PNG",
		},
		Video: VideoOptions{
			Style:      "cinematic",
			Duration:   "5s",
			Resolution: "720p",
			FPS:        "24",
		},
	}
}

type GenerationRequest struct {
	Mode       Mode
	Prompt     string
	Style      string
	Resolution string
	Format     string
	Duration   string
	FPS        int
}

type BatchRequest struct {
	Mode       Mode
	Prompts    []string
	Style      string
	Resolution string
	Format     string
	Duration   string
	FPS        int
}

// ValidatePrompt trims p and checks its length.
func ValidatePrompt(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", ErrEmptyPrompt
	}
	if utf8.RuneCountInString(p) < MinPromptLength {
		return "", ErrPromptTooShort
	}
	return p, nil
}

func Build(form Form) (GenerationRequest, error) {
	prompt, err := ValidatePrompt(form.Prompt)
	if err != nil {
		return GenerationRequest{}, err
	}

	opts, err := buildOptions(form)
	if err != nil {
		return GenerationRequest{}, err
	}

	opts.Prompt = prompt
	return opts, nil
}

// BuildBatch validates every prompt on its own and keeps the valid ones in order.
func BuildBatch(form Form, prompts []string) (BatchRequest, error) {
	valid := make([]string, 0, len(prompts))
	for _, p := range prompts {
		if clean, err := ValidatePrompt(p); err == nil {
			valid = append(valid, clean)
		}
	}
	if len(valid) == 0 {
		return BatchRequest{}, ErrNoValidPrompts
	}
	if len(valid) > MaxBatchPrompts {
		return BatchRequest{}, ErrTooManyPrompts
	}

	opts, err := buildOptions(form)
	if err != nil {
		return BatchRequest{}, err
	}

	return BatchRequest{
		Mode:       opts.Mode,
		Prompts:    valid,
		Style:      opts.Style,
		Resolution: opts.Resolution,
		Format:     opts.Format,
		Duration:   opts.Duration,
		FPS:        opts.FPS,
	}, nil
}

func buildOptions(form Form) (GenerationRequest, error) {
	switch form.Mode {
	case ModeImage:
		o := form.Image
		if err := required("style", o.Style, "resolution", o.Resolution, "format", o.Format); err != nil {
			return GenerationRequest{}, err
		}
		return GenerationRequest{
			Mode:       ModeImage,
			Style:      strings.TrimSpace(o.Style),
			Resolution: strings.TrimSpace(o.Resolution),
			Format:     strings.TrimSpace(o.Format),
		}, nil

	case ModeVideo:
		o := form.Video
		if err := required("style", o.Style, "duration", o.Duration, "resolution", o.Resolution, "fps", o.FPS); err != nil {
			return GenerationRequest{}, err
		}
		fps, err := strconv.Atoi(strings.TrimSpace(o.FPS))
		if err != nil || fps <= 0 {
			return GenerationRequest{}, fmt.Errorf("%w: %q", ErrInvalidFPS, o.FPS)
		}
		return GenerationRequest{
			Mode:       ModeVideo,
			Style:      strings.TrimSpace(o.Style),
			Duration:   strings.TrimSpace(o.Duration),
			Resolution: strings.TrimSpace(o.Resolution),
			FPS:        fps,
		}, nil
	}

	return GenerationRequest{}, fmt.Errorf("%w: %q", ErrUnknownMode, form.Mode)
}

// required takes name/value pairs.
func required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s", ErrMissingOption, pairs[i])
		}
	}
	return nil
}

func (r GenerationRequest) ImagePayload() types.GenerateImageRequest {
	return types.GenerateImageRequest{
		Prompt:     r.Prompt,
		Style:      r.Style,
		Resolution: r.Resolution,
		Format:     r.Format,
	}
}

func (r GenerationRequest) VideoPayload() types.GenerateVideoRequest {
	return types.GenerateVideoRequest{
		Prompt:     r.Prompt,
		Style:      r.Style,
		Duration:   r.Duration,
		Resolution: r.Resolution,
		Fps:        r.FPS,
	}
}

func (r BatchRequest) ImagePayload(clientID string) types.BatchImageRequest {
	return types.BatchImageRequest{
		Prompts:    append([]string(nil), r.Prompts...),
		Style:      r.Style,
		Resolution: r.Resolution,
		Format:     r.Format,
		ClientID:   clientID,
	}
}

func (r BatchRequest) VideoPayload(clientID string) types.BatchVideoRequest {
	return types.BatchVideoRequest{
		Prompts:    append([]string(nil), r.Prompts...),
		Style:      r.Style,
		Duration:   r.Duration,
		Resolution: r.Resolution,
		Fps:        r.FPS,
		ClientID:   clientID,
	}
}
