package mediator

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"

	"genstudio/config"
	"genstudio/internal/clients/imageapi"
	"genstudio/internal/dependencies"
	"genstudio/internal/generator"
	"genstudio/internal/services"
	"genstudio/internal/store"
)

const simulatedVideoDelay = 2 * time.Second

type App struct {
	api   *services.Api
	batch *services.BatchService
	hub   *services.Hub
	store *store.Store
	rpc   *dependencies.Rpc
	// settings
	Config *config.Config
}

func NewApp(ctx context.Context, config config.Config) (*App, error) {
	config.Defaults()

	st, err := store.Open(ctx, config.Store.Driver, config.Store.Dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening store: %w", err)
	}

	var rpc *dependencies.Rpc
	if config.Rpc.Peer != "" {
		rpc, err = dependencies.NewRpc(net.JoinHostPort(config.Rpc.Peer, config.Rpc.Port), config.Rpc.Service)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("error creating newapp: %w", err)
		}
	}

	gens := services.Generators{
		Images: imageBackend(config.Generator, rpc),
		Videos: videoBackend(config.Generator, rpc),
	}

	media := services.NewMedia(st, gens, config.Generator.Timeout)
	hub := services.NewHub()
	batch := services.NewBatchService(ctx, hub, media, config.Batch)
	api := services.NewApi(config, st, media, batch, hub)

	return &App{
		api:    api,
		batch:  batch,
		hub:    hub,
		store:  st,
		rpc:    rpc,
		Config: &config,
	}, nil
}

func imageBackend(cfg config.GeneratorConfig, rpc *dependencies.Rpc) generator.Images {
	switch cfg.ImageBackend {
	case "grpc":
		if rpc == nil {
			return generator.Unavailable{Reason: "no media worker configured"}
		}
		return rpc
	default:
		return imageapi.NewClient(cfg.ImageApiUrl, nil)
	}
}

func videoBackend(cfg config.GeneratorConfig, rpc *dependencies.Rpc) generator.Videos {
	switch cfg.VideoBackend {
	case "simulated":
		return generator.Simulated{BaseURL: cfg.SimulatedBaseUrl, Delay: simulatedVideoDelay}
	default:
		if rpc == nil {
			return generator.Unavailable{Reason: "no media worker configured"}
		}
		return rpc
	}
}

// Start runs the batch pool and blocks serving HTTP.
func (a *App) Start() error {
	a.batch.Run()
	return a.api.Start()
}

func (a *App) Shutdown() {
	if err := a.api.Shutdown(); err != nil {
		log.Warn("error shutting down api", "err", err)
	}
	a.batch.Shutdown()
	a.hub.Shutdown()
	if a.rpc != nil {
		a.rpc.Close()
	}
	if err := a.store.Close(); err != nil {
		log.Warn("error closing store", "err", err)
	}
}
