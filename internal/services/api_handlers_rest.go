package services

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"genstudio/internal/generator"
	"genstudio/internal/store"
	"genstudio/types"
)

const (
	msgPromptsRequired = "At least one prompt is required"
	msgBatchFailed     = "Failed to start batch generation"
)

func (a *Api) History() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		logger := HttpLogger("history", ctx)

		page, err := a.store.ListImages(ctx.UserContext(), ctx.QueryInt("page", 1), ctx.QueryInt("per_page", store.DefaultPerPage))
		if err != nil {
			logger.Error("error listing images", "err", err)
			return errorJSON(ctx, fiber.StatusInternalServerError, "Failed to fetch history")
		}

		items := make([]types.HistoryItem, 0, len(page.Items))
		for _, img := range page.Items {
			items = append(items, img.HistoryItem())
		}
		return ctx.Status(fiber.StatusOK).JSON(types.HistoryResponse{
			Status:      types.StatusSuccess,
			Images:      items,
			Total:       page.Total,
			Pages:       page.Pages,
			CurrentPage: page.Page,
		})
	}
}

func (a *Api) VideoHistory() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		logger := HttpLogger("video_history", ctx)

		page, err := a.store.ListVideos(ctx.UserContext(), ctx.QueryInt("page", 1), ctx.QueryInt("per_page", store.DefaultPerPage))
		if err != nil {
			logger.Error("error listing videos", "err", err)
			return errorJSON(ctx, fiber.StatusInternalServerError, "Failed to fetch video history")
		}

		items := make([]types.HistoryItem, 0, len(page.Items))
		for _, v := range page.Items {
			items = append(items, v.HistoryItem())
		}
		return ctx.Status(fiber.StatusOK).JSON(types.HistoryResponse{
			Status:      types.StatusSuccess,
			Videos:      items,
			Total:       page.Total,
			Pages:       page.Pages,
			CurrentPage: page.Page,
		})
	}
}

// BatchGenerate records one queued image per usable prompt and hands them to
// the batch pool. Prompts shorter than the minimum are skipped silently.
func (a *Api) BatchGenerate() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		logger := HttpLogger("batch_generate", ctx)

		var body types.BatchImageRequest
		if err := ctx.BodyParser(&body); err != nil {
			return errorJSON(ctx, fiber.StatusBadRequest, msgInvalidBody)
		}
		if msg := a.checkBatchSize(len(body.Prompts)); msg != "" {
			return errorJSON(ctx, fiber.StatusBadRequest, msg)
		}
		a.checkListener(logger, body.ClientID)
		opts := withImageDefaults(types.GenerateImageRequest{
			Style:      body.Style,
			Resolution: body.Resolution,
			Format:     body.Format,
		})

		batchID := uuid.NewString()
		results := make([]types.BatchItem, 0, len(body.Prompts))
		for _, raw := range body.Prompts {
			prompt, ok := usable(raw)
			if !ok {
				continue
			}
			rec, err := a.store.CreateImage(ctx.UserContext(), store.Image{
				Prompt:     prompt,
				Style:      opts.Style,
				Resolution: opts.Resolution,
				Format:     opts.Format,
				Status:     types.RecordQueued,
			})
			if err != nil {
				logger.Error("error creating image record", "err", err)
				return errorJSON(ctx, fiber.StatusInternalServerError, msgBatchFailed)
			}

			item := types.BatchItem{ID: rec.ID, Prompt: prompt, Status: types.RecordQueued}
			job := BatchJob{
				BatchID:  batchID,
				ClientID: body.ClientID,
				Image: &generator.ImageJob{
					RecordID:   rec.ID,
					Prompt:     prompt,
					Style:      opts.Style,
					Resolution: opts.Resolution,
					Format:     opts.Format,
				},
			}
			if err := a.batch.Enqueue(job); err != nil {
				logger.Warn("batch item not queued", "id", rec.ID, "err", err)
				a.batch.discard(job, err)
				item.Status = types.RecordFailed
			}
			results = append(results, item)
		}

		logger.Info("batch queued", "batchId", batchID, "items", len(results))
		return ctx.Status(fiber.StatusOK).JSON(types.BatchResponse{
			Status:  types.StatusSuccess,
			Message: fmt.Sprintf("Batch generation started for %d images", len(results)),
			BatchID: batchID,
			Results: results,
		})
	}
}

func (a *Api) BatchGenerateVideo() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		logger := HttpLogger("batch_generate_video", ctx)

		var body types.BatchVideoRequest
		if err := ctx.BodyParser(&body); err != nil {
			return errorJSON(ctx, fiber.StatusBadRequest, msgInvalidBody)
		}
		if msg := a.checkBatchSize(len(body.Prompts)); msg != "" {
			return errorJSON(ctx, fiber.StatusBadRequest, msg)
		}
		a.checkListener(logger, body.ClientID)
		opts := withVideoDefaults(types.GenerateVideoRequest{
			Style:      body.Style,
			Duration:   body.Duration,
			Resolution: body.Resolution,
			Fps:        body.Fps,
		})

		batchID := uuid.NewString()
		results := make([]types.BatchItem, 0, len(body.Prompts))
		for _, raw := range body.Prompts {
			prompt, ok := usable(raw)
			if !ok {
				continue
			}
			rec, err := a.store.CreateVideo(ctx.UserContext(), store.Video{
				Prompt:     prompt,
				Style:      opts.Style,
				Duration:   opts.Duration,
				Resolution: opts.Resolution,
				Fps:        opts.Fps,
				Status:     types.RecordQueued,
			})
			if err != nil {
				logger.Error("error creating video record", "err", err)
				return errorJSON(ctx, fiber.StatusInternalServerError, msgBatchFailed)
			}

			item := types.BatchItem{ID: rec.ID, Prompt: prompt, Status: types.RecordQueued}
			job := BatchJob{
				BatchID:  batchID,
				ClientID: body.ClientID,
				Video: &generator.VideoJob{
					RecordID:   rec.ID,
					Prompt:     prompt,
					Style:      opts.Style,
					Duration:   opts.Duration,
					Resolution: opts.Resolution,
					Fps:        opts.Fps,
				},
			}
			if err := a.batch.Enqueue(job); err != nil {
				logger.Warn("batch item not queued", "id", rec.ID, "err", err)
				a.batch.discard(job, err)
				item.Status = types.RecordFailed
			}
			results = append(results, item)
		}

		logger.Info("batch queued", "batchId", batchID, "items", len(results))
		return ctx.Status(fiber.StatusOK).JSON(types.BatchResponse{
			Status:  types.StatusSuccess,
			Message: fmt.Sprintf("Batch generation started for %d videos", len(results)),
			BatchID: batchID,
			Results: results,
		})
	}
}

func (a *Api) checkBatchSize(n int) string {
	switch {
	case n == 0:
		return msgPromptsRequired
	case n > a.maxPrompts:
		return fmt.Sprintf("Maximum %d prompts allowed per batch", a.maxPrompts)
	}
	return ""
}

// checkListener warns when item events have nowhere to go.
func (a *Api) checkListener(logger *log.Logger, clientID string) {
	if clientID != "" && !a.hub.Connected(clientID) {
		logger.Debug("no websocket for client, item events will be dropped", "clientId", clientID)
	}
}
