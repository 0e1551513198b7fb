package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/TypeTerrors/gonfig"
	"github.com/charmbracelet/log"

	"genstudio/config"
	"genstudio/internal/mediator"
)

func main() {

	cfg, err := gonfig.Load[config.Config](
		gonfig.WithConfigFile("config/config.yaml"),
		gonfig.WithDotenv(".env"), // ignored if missing
		gonfig.WithStrict(),       // fail if ${VAR} has no value/default
	)
	if err != nil {
		log.Fatal(err)
	}

	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := mediator.NewApp(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errc:
		if err != nil {
			log.Error("server stopped", "err", err)
		}
	}
	app.Shutdown()
}
