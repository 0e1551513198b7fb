package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"genstudio/config"
	"genstudio/internal/store"
	"genstudio/types"
)

type Api struct {
	server *fiber.App
	store  *store.Store
	media  *Media
	batch  *BatchService
	hub    *Hub
	logger *log.Logger

	port           string
	allowedOrigins string
	maxPrompts     int
}

func NewApi(config config.Config, st *store.Store, media *Media, batch *BatchService, hub *Hub) *Api {
	if config.Api.AllowedOrigins == "" {
		config.Api.AllowedOrigins = "*"
	}

	a := &Api{
		server: fiber.New(fiber.Config{
			AppName:               "genstudio",
			DisableStartupMessage: true,
			ErrorHandler:          errorHandler,
		}),
		store:          st,
		media:          media,
		batch:          batch,
		hub:            hub,
		logger:         log.With("component", "api"),
		port:           config.Api.Port,
		allowedOrigins: config.Api.AllowedOrigins,
		maxPrompts:     config.Batch.MaxPrompts,
	}

	allowCredentials := a.allowedOrigins != "*"

	a.server.Use(cors.New(cors.Config{
		AllowOrigins:     a.allowedOrigins,
		AllowCredentials: allowCredentials,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,Accept,Origin",
	}))
	a.server.Use(RequestLogger())

	a.addRoutes()
	return a
}

// Start blocks serving HTTP until Shutdown.
func (a *Api) Start() error {
	a.logger.Info("listening", "port", a.port)
	return a.server.Listen(fmt.Sprint(":", a.port))
}

func (a *Api) Shutdown() error {
	return a.server.ShutdownWithTimeout(10 * time.Second)
}

func (a *Api) addRoutes() {
	a.server.Add("GET", "/health", a.Health())
	a.server.Add("POST", "/generate", a.GenerateImage())
	a.server.Add("POST", "/generate_video", a.GenerateVideo())
	a.server.Add("POST", "/batch_generate", a.BatchGenerate())
	a.server.Add("POST", "/batch_generate_video", a.BatchGenerateVideo())
	a.server.Add("GET", "/history", a.History())
	a.server.Add("GET", "/video_history", a.VideoHistory())

	// websocket connection
	a.server.Use("/ws", a.WsUpgrade())
	a.server.Get("/ws/:id", a.Notifications())
}

// errorHandler renders unhandled errors in the API's JSON envelope.
func errorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code != fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}
	return ctx.Status(code).JSON(types.ErrorResponse{
		Status:  types.StatusError,
		Message: msg,
	})
}
