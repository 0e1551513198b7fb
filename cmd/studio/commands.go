package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"genstudio/internal/lifecycle"
	"genstudio/internal/request"
	"genstudio/internal/shell"
	"genstudio/types"
)

// errReported exits non-zero for failures the user has already been shown.
var errReported = cli.Exit("", 1)

// reported passes through errors the controller did not surface itself.
func reported(err error) error {
	if lifecycle.Notified(err) {
		log.Debug("command failed", "err", err)
		return errReported
	}
	return err
}

func optionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "video", Usage: "generate a video instead of an image"},
		&cli.StringFlag{Name: "style", Usage: "realistic, artistic, cartoon, vintage, futuristic (images); cinematic, documentary, animated, artistic, vintage (videos)"},
		&cli.StringFlag{Name: "resolution", Usage: "512x512, 768x768, 1024x1024 (images); 720p, 1080p, 4k (videos)"},
		&cli.StringFlag{Name: "format", Usage: "PNG, JPEG, WEBP (images only)"},
		&cli.StringFlag{Name: "duration", Usage: "5s, 10s, 15s, 30s (videos only)"},
		&cli.StringFlag{Name: "fps", Usage: "24, 30, 60 (videos only)"},
	}
}

// formFromFlags starts from the default form and applies any option flags.
func formFromFlags(c *cli.Context) request.Form {
	form := request.DefaultForm()
	if c.Bool("video") {
		form.Mode = request.ModeVideo
	}
	set := func(dst *string, name string) {
		if v := strings.TrimSpace(c.String(name)); v != "" {
			*dst = v
		}
	}
	if form.Mode == request.ModeVideo {
		set(&form.Video.Style, "style")
		set(&form.Video.Resolution, "resolution")
		set(&form.Video.Duration, "duration")
		set(&form.Video.FPS, "fps")
	} else {
		set(&form.Image.Style, "style")
		set(&form.Image.Resolution, "resolution")
		set(&form.Image.Format, "format")
		form.Image.Format = strings.ToUpper(form.Image.Format)
	}
	return form
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "generate one image or video",
		ArgsUsage: "<prompt>",
		Flags: append(optionFlags(),
			&cli.StringFlag{Name: "download", Usage: "save the result into this directory"},
		),
		Action: func(c *cli.Context) error {
			form := formFromFlags(c)
			form.Prompt = strings.Join(c.Args().Slice(), " ")

			s, err := newSession(c, form)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.ctrl.Submit(c.Context); err != nil {
				return reported(err)
			}
			if dir := c.String("download"); dir != "" {
				if _, err := s.ctrl.Download(c.Context, dir); err != nil {
					return reported(err)
				}
			}
			return nil
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "queue up to five prompts at once",
		ArgsUsage: "<prompt> [prompt...]",
		Flags: append(optionFlags(),
			&cli.BoolFlag{Name: "watch", Usage: "stay attached until every item has settled"},
			&cli.DurationFlag{Name: "wait", Usage: "give up watching after this long", Value: 10 * time.Minute},
		),
		Action: func(c *cli.Context) error {
			s, err := newSession(c, formFromFlags(c))
			if err != nil {
				return err
			}
			defer s.close()

			var events <-chan types.JobEvent
			if c.Bool("watch") {
				ctx, cancel := context.WithTimeout(c.Context, c.Duration("wait"))
				defer cancel()
				events, err = s.client.Subscribe(ctx, s.clientID)
				if err != nil {
					log.Warn("live batch events unavailable", "err", err)
				}
			}

			resp, err := s.ctrl.SubmitBatch(c.Context, c.Args().Slice())
			if err != nil {
				return reported(err)
			}
			for _, item := range resp.Results {
				fmt.Printf("  #%d %-8s %s\n", item.ID, item.Status, item.Prompt)
			}
			if events != nil {
				watchBatch(events, resp)
			}
			return nil
		},
	}
}

// watchBatch prints events for resp until all of its items have settled or
// the stream ends.
func watchBatch(events <-chan types.JobEvent, resp types.BatchResponse) {
	pending := map[int64]bool{}
	for _, item := range resp.Results {
		if item.Status != types.RecordFailed {
			pending[item.ID] = true
		}
	}
	for len(pending) > 0 {
		ev, ok := <-events
		if !ok {
			return
		}
		if resp.BatchID != "" && ev.BatchID != resp.BatchID {
			continue
		}
		printEvent(ev)
		delete(pending, ev.ItemID)
	}
}

func printEvent(ev types.JobEvent) {
	switch ev.Type {
	case types.EventGenerationCompleted:
		fmt.Printf("✓ %s #%d %s\n", ev.Mode, ev.ItemID, ev.URL)
	case types.EventGenerationFailed:
		fmt.Printf("✗ %s #%d %s\n", ev.Mode, ev.ItemID, ev.Message)
	default:
		fmt.Printf("%s %s #%d\n", ev.Type, ev.Mode, ev.ItemID)
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "list recent generations",
		ArgsUsage: "[image|video]",
		Action: func(c *cli.Context) error {
			s, err := newSession(c, request.DefaultForm())
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.ctrl.Dispatch(c.Context, lifecycle.ActionHistory, c.Args().Slice()); err != nil {
				return err
			}
			mode := s.ctrl.State().HistoryMode
			if meta := s.cache.Meta(mode); meta.Pages > 1 {
				fmt.Fprintf(c.App.Writer, "showing %d of %d %ss (page %d/%d)\n",
					len(s.cache.Items(mode)), meta.Total, mode.Noun(), meta.CurrentPage, meta.Pages)
			}
			return nil
		},
	}
}

func loadCommand() *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "show a history entry and optionally download it",
		ArgsUsage: "[image|video] <id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "download", Usage: "save the entry into this directory"},
		},
		Action: func(c *cli.Context) error {
			args := c.Args().Slice()
			mode := request.ModeImage
			if len(args) == 2 {
				m, err := request.ParseMode(args[0])
				if err != nil {
					return err
				}
				mode = m
			}

			s, err := newSession(c, request.DefaultForm())
			if err != nil {
				return err
			}
			defer s.close()

			if _, err := s.cache.Refresh(c.Context, mode); err != nil {
				return err
			}
			if err := s.ctrl.Dispatch(c.Context, lifecycle.ActionLoad, args); err != nil {
				if lifecycle.IsUsageError(err) {
					return err
				}
				return fmt.Errorf("error loading %s: %w", mode.Noun(), err)
			}
			if dir := c.String("download"); dir != "" {
				if _, err := s.ctrl.Download(c.Context, dir); err != nil {
					return reported(err)
				}
			}
			return nil
		},
	}
}

func themeCommand() *cli.Command {
	return &cli.Command{
		Name:  "theme",
		Usage: "toggle between the dark and light theme",
		Action: func(c *cli.Context) error {
			s, err := newSession(c, request.DefaultForm())
			if err != nil {
				return err
			}
			defer s.close()
			return s.ctrl.Dispatch(c.Context, lifecycle.ActionTheme, nil)
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "print batch events pushed to a client id",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "client-id", Usage: "client id the batch was submitted with", Required: true},
		},
		Action: func(c *cli.Context) error {
			s, err := newSession(c, request.DefaultForm())
			if err != nil {
				return err
			}
			defer s.close()

			events, err := s.client.Subscribe(c.Context, c.String("client-id"))
			if err != nil {
				return err
			}
			for ev := range events {
				printEvent(ev)
			}
			return nil
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "check that the API is reachable",
		Action: func(c *cli.Context) error {
			s, err := newSession(c, request.DefaultForm())
			if err != nil {
				return err
			}
			defer s.close()

			h, err := s.client.Health(c.Context)
			if err != nil {
				return fmt.Errorf("%s is unreachable: %w", s.client.BaseURL(), err)
			}
			fmt.Printf("%s ok (%s)\n", s.client.BaseURL(), time.Unix(h.TimeStamp, 0).Format(time.RFC3339))
			return nil
		},
	}
}

func replCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "interactive session",
		Flags: optionFlags(),
		Action: func(c *cli.Context) error {
			s, err := newSession(c, formFromFlags(c))
			if err != nil {
				return err
			}
			defer s.close()

			err = shell.New(s.ctrl, c.App.Reader, c.App.Writer).Run(c.Context)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
