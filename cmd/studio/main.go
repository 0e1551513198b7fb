package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"genstudio/internal/clients/studio"
	"genstudio/internal/lifecycle"
)

func main() {
	app := &cli.App{
		Name:  "studio",
		Usage: "generate images and videos from text prompts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "generation API base URL",
				Value:   "http://localhost:8080",
				EnvVars: []string{"GENSTUDIO_SERVER"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-request timeout",
				Value: studio.DefaultTimeout,
			},
			&cli.DurationFlag{
				Name:  "batch-refresh",
				Usage: "delay before history is refreshed after a batch",
				Value: lifecycle.DefaultBatchRefreshDelay,
			},
			&cli.StringFlag{
				Name:  "prefs",
				Usage: "preferences file (default: user config dir)",
			},
			&cli.StringFlag{
				Name:  "notifications",
				Usage: "replace or stack",
				Value: "replace",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "verbose logging",
				EnvVars: []string{"GENSTUDIO_DEBUG"},
			},
		},
		Before: func(c *cli.Context) error {
			log.SetTimeFormat(time.Kitchen)
			if c.Bool("debug") {
				log.SetLevel(log.DebugLevel)
			} else {
				log.SetLevel(log.WarnLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			generateCommand(),
			batchCommand(),
			historyCommand(),
			loadCommand(),
			themeCommand(),
			watchCommand(),
			healthCommand(),
			replCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
