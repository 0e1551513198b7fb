package services

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"genstudio/internal/request"
	"genstudio/types"
)

// Option defaults applied when a request leaves them empty.
const (
	defaultImageStyle      = "realistic"
	defaultImageResolution = "512x512"
	defaultImageFormat     = "PNG"
	defaultVideoStyle      = "cinematic"
	defaultVideoDuration   = "5s"
	defaultVideoResolution = "720p"
	defaultVideoFps        = 24
)

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func withImageDefaults(r types.GenerateImageRequest) types.GenerateImageRequest {
	r.Style = orDefault(r.Style, defaultImageStyle)
	r.Resolution = orDefault(r.Resolution, defaultImageResolution)
	r.Format = orDefault(r.Format, defaultImageFormat)
	return r
}

func withVideoDefaults(r types.GenerateVideoRequest) types.GenerateVideoRequest {
	r.Style = orDefault(r.Style, defaultVideoStyle)
	r.Duration = orDefault(r.Duration, defaultVideoDuration)
	r.Resolution = orDefault(r.Resolution, defaultVideoResolution)
	if r.Fps <= 0 {
		r.Fps = defaultVideoFps
	}
	return r
}

// checkPrompt returns the trimmed prompt or the message explaining why it
// was refused. A blank but present prompt counts as too short.
func checkPrompt(raw string) (string, string) {
	if raw == "" {
		return "", msgPromptRequired
	}
	p, err := request.ValidatePrompt(raw)
	if err != nil {
		return "", msgPromptTooShort
	}
	return p, ""
}

func usable(prompt string) (string, bool) {
	p, err := request.ValidatePrompt(prompt)
	return p, err == nil
}

func errorJSON(ctx *fiber.Ctx, code int, message string) error {
	return ctx.Status(code).JSON(types.ErrorResponse{
		Status:  types.StatusError,
		Message: message,
	})
}
