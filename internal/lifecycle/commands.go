package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"genstudio/internal/request"
)

// Action names a user intent, independent of the surface that produced it.
type Action string

const (
	ActionGenerate Action = "generate"
	ActionBatch    Action = "batch"
	ActionMode     Action = "mode"
	ActionHistory  Action = "history"
	ActionLoad     Action = "load"
	ActionDownload Action = "download"
	ActionTheme    Action = "theme"
	ActionPrompt   Action = "prompt"
	ActionSet      Action = "set"
)

type Command func(ctx context.Context, args []string) error

var errUsage = errors.New("usage")

// Commands maps every action to the controller method that serves it.
func (c *Controller) Commands() map[Action]Command {
	return map[Action]Command{
		ActionGenerate: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				c.SetPrompt(strings.Join(args, " "))
			}
			return c.Submit(ctx)
		},
		ActionBatch: func(ctx context.Context, args []string) error {
			_, err := c.SubmitBatch(ctx, args)
			return err
		},
		ActionMode: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: mode image|video", errUsage)
			}
			mode, err := request.ParseMode(args[0])
			if err != nil {
				return err
			}
			return c.SwitchMode(mode)
		},
		ActionHistory: func(ctx context.Context, args []string) error {
			mode := c.State().HistoryMode
			if len(args) > 0 {
				m, err := request.ParseMode(args[0])
				if err != nil {
					return err
				}
				mode = m
			}
			_, err := c.ShowHistory(ctx, mode)
			return err
		},
		ActionLoad: func(ctx context.Context, args []string) error {
			mode := c.State().HistoryMode
			switch len(args) {
			case 1:
			case 2:
				m, err := request.ParseMode(args[0])
				if err != nil {
					return err
				}
				mode = m
				args = args[1:]
			default:
				return fmt.Errorf("%w: load [image|video] <id>", errUsage)
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: invalid id %q", errUsage, args[0])
			}
			_, err = c.SelectHistory(mode, id)
			return err
		},
		ActionDownload: func(ctx context.Context, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			_, err := c.Download(ctx, dir)
			return err
		},
		ActionTheme: func(ctx context.Context, args []string) error {
			_, err := c.ToggleTheme()
			return err
		},
		ActionPrompt: func(ctx context.Context, args []string) error {
			c.SetPrompt(strings.Join(args, " "))
			return nil
		},
		ActionSet: func(ctx context.Context, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("%w: set <option> <value>", errUsage)
			}
			return c.SetOption(args[0], strings.Join(args[1:], " "))
		},
	}
}

// Dispatch runs the command registered for action.
func (c *Controller) Dispatch(ctx context.Context, action Action, args []string) error {
	cmd, ok := c.Commands()[action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return cmd(ctx, args)
}

// IsUsageError reports whether err came from malformed command arguments.
func IsUsageError(err error) bool {
	return errors.Is(err, errUsage)
}
