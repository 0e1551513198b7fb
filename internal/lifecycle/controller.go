// Package lifecycle sequences a generation request from the form to the
// rendered result. A Controller owns the UI state and allows one generation
// in flight at a time.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"genstudio/internal/history"
	"genstudio/internal/notify"
	"genstudio/internal/request"
	"genstudio/types"

	"github.com/charmbracelet/log"
)

const (
	DefaultBatchRefreshDelay = 3 * time.Second
	DefaultRefreshTimeout    = 30 * time.Second
)

// Backend is the generation API.
type Backend interface {
	GenerateImage(ctx context.Context, req types.GenerateImageRequest) (types.GenerationResponse, error)
	GenerateVideo(ctx context.Context, req types.GenerateVideoRequest) (types.GenerationResponse, error)
	BatchGenerate(ctx context.Context, req types.BatchImageRequest) (types.BatchResponse, error)
	BatchGenerateVideo(ctx context.Context, req types.BatchVideoRequest) (types.BatchResponse, error)
}

// Renderer draws controller state. Calls may arrive from background
// goroutines, so implementations must be safe for concurrent use.
type Renderer interface {
	Loading(mode request.Mode)
	Success(c Content)
	Failure(message string)
	Preview(mode request.Mode)
	History(mode request.Mode, items []types.HistoryItem)
	Theme(theme string)
}

type Notifier interface {
	Notify(message string, severity notify.Severity, duration time.Duration) notify.Notification
}

type Downloader interface {
	Download(ctx context.Context, contentURL, dir, fallbackStem, fallbackExt string) (string, error)
}

type ThemeStore interface {
	ToggleTheme() (string, error)
}

type Options struct {
	Backend    Backend
	History    *history.Cache
	Renderer   Renderer
	Notifier   Notifier
	Downloader Downloader
	Themes     ThemeStore

	// Form is the initial form; the zero value means request.DefaultForm().
	Form request.Form
	// ClientID is sent with batch submissions so the API can push item events.
	ClientID          string
	BatchRefreshDelay time.Duration
	RefreshTimeout    time.Duration
}

type Controller struct {
	backend    Backend
	cache      *history.Cache
	render     Renderer
	notifier   Notifier
	downloader Downloader
	themes     ThemeStore

	clientID       string
	batchDelay     time.Duration
	refreshTimeout time.Duration

	mu    sync.Mutex
	state State
	form  request.Form

	bg     sync.WaitGroup
	closed bool
	logger *log.Logger
}

func NewController(opts Options) *Controller {
	form := opts.Form
	if !form.Mode.Valid() {
		form = request.DefaultForm()
	}
	c := &Controller{
		backend:        opts.Backend,
		cache:          opts.History,
		render:         opts.Renderer,
		notifier:       opts.Notifier,
		downloader:     opts.Downloader,
		themes:         opts.Themes,
		clientID:       opts.ClientID,
		batchDelay:     opts.BatchRefreshDelay,
		refreshTimeout: opts.RefreshTimeout,
		form:           form,
		state: State{
			Phase:       PhaseIdle,
			ContentMode: form.Mode,
			HistoryMode: form.Mode,
		},
		logger: log.With("component", "lifecycle"),
	}
	if c.render == nil {
		c.render = nopRenderer{}
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.batchDelay < 0 {
		c.batchDelay = 0
	}
	if c.refreshTimeout <= 0 {
		c.refreshTimeout = DefaultRefreshTimeout
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.snapshot()
}

func (c *Controller) IsGenerating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.IsGenerating
}

func (c *Controller) Form() request.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Controller) SetPrompt(prompt string) {
	c.mu.Lock()
	c.form.Prompt = prompt
	c.mu.Unlock()
}

// SetOption changes one option of the active mode.
func (c *Controller) SetOption(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	value = strings.TrimSpace(value)
	video := c.form.Mode == request.ModeVideo
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "style":
		if video {
			c.form.Video.Style = value
		} else {
			c.form.Image.Style = value
		}
	case "resolution":
		if video {
			c.form.Video.Resolution = value
		} else {
			c.form.Image.Resolution = value
		}
	case "format":
		if video {
			return fmt.Errorf("%w: format applies to images", ErrOptionNotApplicable)
		}
		c.form.Image.Format = strings.ToUpper(value)
	case "duration":
		if !video {
			return fmt.Errorf("%w: duration applies to videos", ErrOptionNotApplicable)
		}
		c.form.Video.Duration = value
	case "fps":
		if !video {
			return fmt.Errorf("%w: fps applies to videos", ErrOptionNotApplicable)
		}
		c.form.Video.FPS = value
	default:
		return fmt.Errorf("unknown option %q", name)
	}
	return nil
}

// Submit validates the form and runs one generation. Validation errors and
// ErrBusy leave the state untouched.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	form := c.form
	req, err := request.Build(form)
	if err != nil {
		c.mu.Unlock()
		c.notifyValidation(err, form.Mode)
		return notified(err)
	}
	if c.state.IsGenerating {
		c.mu.Unlock()
		c.notifier.Notify("Generation already in progress", notify.Info, 0)
		return notified(ErrBusy)
	}
	c.state.IsGenerating = true
	c.state.Phase = PhaseSubmitting
	c.mu.Unlock()

	defer c.finish()

	c.render.Loading(req.Mode)
	c.logger.Info("submitting", "mode", req.Mode, "style", req.Style, "resolution", req.Resolution)

	var resp types.GenerationResponse
	if req.Mode == request.ModeVideo {
		resp, err = c.backend.GenerateVideo(ctx, req.VideoPayload())
	} else {
		resp, err = c.backend.GenerateImage(ctx, req.ImagePayload())
	}

	if err != nil {
		c.logger.Error("generation request failed", "mode", req.Mode, "err", err)
		c.fail(NetworkErrorMessage, "Generation failed")
		return notified(&TransportError{Err: err})
	}

	if resp.Status != types.StatusSuccess {
		msg := resp.Message
		if msg == "" {
			msg = "Failed to generate " + req.Mode.Noun()
		}
		c.logger.Warn("generation rejected", "mode", req.Mode, "status", resp.Status, "message", msg)
		c.fail(msg, msg)
		return notified(&ApplicationError{Message: msg})
	}

	content := contentFromResponse(req, resp)

	c.mu.Lock()
	c.state.Current = &content
	c.state.Phase = PhaseSuccess
	c.state.LastMessage = ""
	c.mu.Unlock()

	c.render.Success(content)
	c.notifier.Notify(capitalize(req.Mode.Noun())+" generated successfully!", notify.Success, 0)
	c.refreshLater(req.Mode, 0)
	return nil
}

func (c *Controller) fail(message, notification string) {
	c.mu.Lock()
	c.state.Phase = PhaseFailed
	c.state.LastMessage = message
	c.mu.Unlock()

	c.render.Failure(message)
	c.notifier.Notify(notification, notify.Error, 0)
}

// finish runs on every exit from Submit, panics included.
func (c *Controller) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == PhaseSubmitting {
		c.state.Phase = PhaseFailed
		c.state.LastMessage = "An unexpected error occurred. Please try again."
	}
	c.state.LastOutcome = c.state.Phase
	c.state.Phase = PhaseIdle
	c.state.IsGenerating = false
}

func (c *Controller) notifyValidation(err error, mode request.Mode) {
	var msg string
	switch {
	case errors.Is(err, request.ErrEmptyPrompt):
		msg = "Please enter a prompt to generate " + mode.Noun()
	case errors.Is(err, request.ErrPromptTooShort):
		msg = "Prompt must be at least 3 characters long"
	case errors.Is(err, request.ErrNoValidPrompts):
		msg = "Please enter at least one valid prompt"
	case errors.Is(err, request.ErrTooManyPrompts):
		msg = "Maximum 5 prompts allowed"
	default:
		msg = err.Error()
	}
	c.notifier.Notify(msg, notify.Warning, 0)
}

// SubmitBatch sends the valid prompts in one call and refreshes history after
// the batch refresh delay. It does not take the single-flight guard.
func (c *Controller) SubmitBatch(ctx context.Context, prompts []string) (types.BatchResponse, error) {
	form := c.Form()

	batch, err := request.BuildBatch(form, prompts)
	if err != nil {
		c.notifyValidation(err, form.Mode)
		return types.BatchResponse{}, notified(err)
	}

	var resp types.BatchResponse
	if batch.Mode == request.ModeVideo {
		resp, err = c.backend.BatchGenerateVideo(ctx, batch.VideoPayload(c.clientID))
	} else {
		resp, err = c.backend.BatchGenerate(ctx, batch.ImagePayload(c.clientID))
	}

	if err != nil {
		c.logger.Error("batch request failed", "mode", batch.Mode, "err", err)
		c.notifier.Notify(BatchNetworkErrorMessage, notify.Error, 0)
		return resp, notified(&TransportError{Err: err})
	}
	if resp.Status != types.StatusSuccess {
		msg := resp.Message
		if msg == "" {
			msg = "Batch generation failed"
		}
		c.notifier.Notify(msg, notify.Error, 0)
		return resp, notified(&ApplicationError{Message: msg})
	}

	c.notifier.Notify(fmt.Sprintf("Batch generation started for %d %ss", len(resp.Results), batch.Mode.Noun()), notify.Success, 0)
	c.refreshLater(batch.Mode, c.batchDelay)
	return resp, nil
}

// refreshLater refreshes the history of mode in the background after delay.
func (c *Controller) refreshLater(mode request.Mode, delay time.Duration) {
	if c.cache == nil {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.bg.Add(1)
	c.mu.Unlock()

	run := func() {
		defer c.bg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
		defer cancel()

		items, err := c.cache.Refresh(ctx, mode)
		if err != nil {
			c.logger.Warn("history refresh failed", "mode", mode, "err", err)
		}

		c.mu.Lock()
		visible := c.state.HistoryVisible && c.state.HistoryMode == mode
		c.mu.Unlock()
		if visible {
			c.render.History(mode, items)
		}
	}

	if delay <= 0 {
		go run()
		return
	}
	time.AfterFunc(delay, run)
}

// Wait blocks until every background history refresh has finished. It must
// not race a Submit or SubmitBatch from another goroutine; use Close for that.
func (c *Controller) Wait() {
	c.bg.Wait()
}

// Close stops scheduling history refreshes and waits for the pending ones.
// Submissions still work afterwards but no longer refresh history.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.bg.Wait()
}

// SwitchMode changes the content mode and clears the preview.
func (c *Controller) SwitchMode(mode request.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", request.ErrUnknownMode, mode)
	}

	c.mu.Lock()
	c.form.Mode = mode
	c.state.ContentMode = mode
	c.state.Current = nil
	c.mu.Unlock()

	c.render.Preview(mode)
	return nil
}

// ShowHistory makes the history panel visible for mode and refreshes it.
func (c *Controller) ShowHistory(ctx context.Context, mode request.Mode) ([]types.HistoryItem, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", request.ErrUnknownMode, mode)
	}
	if c.cache == nil {
		return nil, errors.New("history is not available")
	}

	c.mu.Lock()
	c.state.HistoryMode = mode
	c.state.HistoryVisible = true
	c.mu.Unlock()

	items, err := c.cache.Refresh(ctx, mode)
	if err != nil {
		c.logger.Warn("history refresh failed", "mode", mode, "err", err)
	}
	c.render.History(mode, items)
	return items, err
}

// SelectHistory loads a cached history entry into the preview and the form
// as if it had just been generated.
func (c *Controller) SelectHistory(mode request.Mode, id int64) (Content, error) {
	if c.cache == nil {
		return Content{}, ErrHistoryItemNotFound
	}
	item, ok := c.cache.Find(mode, id)
	if !ok {
		return Content{}, fmt.Errorf("%w: %s #%d", ErrHistoryItemNotFound, mode, id)
	}
	content := contentFromHistory(mode, item)
	if content.URL == "" {
		return Content{}, fmt.Errorf("%w: %s #%d has no %s url", ErrNoContent, mode, id, mode.Noun())
	}

	if c.State().ContentMode != mode {
		if err := c.SwitchMode(mode); err != nil {
			return Content{}, err
		}
	}

	c.mu.Lock()
	c.state.Current = &content
	c.form.Prompt = item.Prompt
	if mode == request.ModeVideo {
		c.form.Video.Style = item.Style
		c.form.Video.Duration = item.Duration
		c.form.Video.Resolution = item.Resolution
		if item.Fps > 0 {
			c.form.Video.FPS = strconv.Itoa(item.Fps)
		}
	} else {
		c.form.Image.Style = item.Style
		c.form.Image.Resolution = item.Resolution
		if item.Format != "" {
			c.form.Image.Format = item.Format
		}
	}
	c.mu.Unlock()

	c.render.Success(content)
	c.notifier.Notify(capitalize(mode.Noun())+" loaded from history", notify.Info, 0)
	return content, nil
}

// Download saves the content currently shown into dir.
func (c *Controller) Download(ctx context.Context, dir string) (string, error) {
	current := c.State().Current
	if current == nil || current.URL == "" {
		c.notifier.Notify("No content to download", notify.Warning, 0)
		return "", notified(ErrNoContent)
	}
	if c.downloader == nil {
		return "", ErrNoDownloader
	}

	stem, ext := "generated-image", "."+strings.ToLower(firstNonEmpty(current.Format, "png"))
	if current.Type == request.ModeVideo {
		stem, ext = "generated-video", ".mp4"
	}

	path, err := c.downloader.Download(ctx, current.URL, dir, stem, ext)
	if err != nil {
		c.logger.Error("download failed", "url", current.URL, "err", err)
		c.notifier.Notify("Download failed", notify.Error, 0)
		return "", notified(err)
	}
	c.notifier.Notify(fmt.Sprintf("%s saved to %s", capitalize(current.Type.Noun()), path), notify.Success, 0)
	return path, nil
}

// ToggleTheme flips and persists the theme preference.
func (c *Controller) ToggleTheme() (string, error) {
	if c.themes == nil {
		return "", ErrNoThemeStore
	}
	theme, err := c.themes.ToggleTheme()
	if err != nil {
		c.notifier.Notify("Failed to save theme", notify.Error, 0)
		return theme, notified(err)
	}
	c.render.Theme(theme)
	return theme, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type nopRenderer struct{}

func (nopRenderer) Loading(request.Mode) {}
func (nopRenderer) Success(Content) {}
func (nopRenderer) Failure(string) {}
func (nopRenderer) Preview(request.Mode) {}
func (nopRenderer) History(request.Mode, []types.HistoryItem) {}
func (nopRenderer) Theme(string) {}

type nopNotifier struct{}

func (nopNotifier) Notify(message string, severity notify.Severity, duration time.Duration) notify.Notification {
	return notify.Notification{Message: message, Severity: severity, Duration: duration}
}
