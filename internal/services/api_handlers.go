package services

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"genstudio/internal/generator"
	"genstudio/internal/store"
	"genstudio/types"
)

func (a *Api) Health() fiber.Handler {
	return func(ctx *fiber.Ctx) error {

		return ctx.Status(fiber.StatusOK).JSON(types.HealthResponse{
			Status:    fiber.StatusOK,
			TimeStamp: time.Now().Unix(),
		})
	}
}

func (a *Api) GenerateImage() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		logger := HttpLogger("generate_image", ctx)

		var body types.GenerateImageRequest
		if err := ctx.BodyParser(&body); err != nil {
			return errorJSON(ctx, fiber.StatusBadRequest, msgPromptRequired)
		}
		prompt, reason := checkPrompt(body.Prompt)
		if reason != "" {
			return errorJSON(ctx, fiber.StatusBadRequest, reason)
		}
		body = withImageDefaults(body)

		rec, err := a.store.CreateImage(ctx.UserContext(), store.Image{
			Prompt:     prompt,
			Style:      body.Style,
			Resolution: body.Resolution,
			Format:     body.Format,
		})
		if err != nil {
			logger.Error("error creating image record", "err", err)
			return errorJSON(ctx, fiber.StatusInternalServerError, msgUnexpected)
		}

		img, err := a.media.Image(ctx.UserContext(), generator.ImageJob{
			RecordID:   rec.ID,
			Prompt:     prompt,
			Style:      body.Style,
			Resolution: body.Resolution,
			Format:     body.Format,
		})
		if err != nil {
			return errorJSON(ctx, fiber.StatusInternalServerError, publicMessage(err))
		}

		logger.Info("image generated", "id", rec.ID)
		return ctx.Status(fiber.StatusOK).JSON(types.GenerationResponse{
			Status:     types.StatusSuccess,
			ImageURL:   img.URL,
			ID:         rec.ID,
			Prompt:     prompt,
			Style:      body.Style,
			Resolution: body.Resolution,
			Format:     body.Format,
		})
	}
}

func (a *Api) GenerateVideo() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		logger := HttpLogger("generate_video", ctx)

		var body types.GenerateVideoRequest
		if err := ctx.BodyParser(&body); err != nil {
			return errorJSON(ctx, fiber.StatusBadRequest, msgPromptRequired)
		}
		prompt, reason := checkPrompt(body.Prompt)
		if reason != "" {
			return errorJSON(ctx, fiber.StatusBadRequest, reason)
		}
		body = withVideoDefaults(body)

		rec, err := a.store.CreateVideo(ctx.UserContext(), store.Video{
			Prompt:     prompt,
			Style:      body.Style,
			Duration:   body.Duration,
			Resolution: body.Resolution,
			Fps:        body.Fps,
		})
		if err != nil {
			logger.Error("error creating video record", "err", err)
			return errorJSON(ctx, fiber.StatusInternalServerError, msgVideoFailed)
		}

		v, err := a.media.Video(ctx.UserContext(), generator.VideoJob{
			RecordID:   rec.ID,
			Prompt:     prompt,
			Style:      body.Style,
			Duration:   body.Duration,
			Resolution: body.Resolution,
			Fps:        body.Fps,
		})
		if err != nil {
			var ge *GenerationError
			if !errors.As(err, &ge) {
				return errorJSON(ctx, fiber.StatusInternalServerError, msgVideoFailed)
			}
			return errorJSON(ctx, fiber.StatusInternalServerError, ge.Public)
		}

		logger.Info("video generated", "id", rec.ID)
		return ctx.Status(fiber.StatusOK).JSON(types.GenerationResponse{
			Status:       types.StatusSuccess,
			VideoURL:     v.URL,
			ThumbnailURL: v.ThumbnailURL,
			ID:           rec.ID,
			Prompt:       prompt,
			Style:        body.Style,
			Duration:     body.Duration,
			Resolution:   body.Resolution,
			Fps:          body.Fps,
			FileSize:     v.FileSize,
		})
	}
}
