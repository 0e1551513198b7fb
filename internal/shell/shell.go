// Package shell is the interactive front end of the studio client: it reads
// command lines and hands them to the lifecycle controller.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"genstudio/internal/lifecycle"
)

var (
	ErrQuit      = errors.New("quit")
	ErrEmptyLine = errors.New("empty line")
	errHelp      = errors.New("help")
)

const batchSeparator = "|"

const helpText = `commands:
  generate [prompt]             generate with the current form
  prompt <text>                 set the prompt
  set <option> <value>          style, resolution, format, duration, fps
  mode image|video              switch content mode
  batch <p1> | <p2> | ...       queue up to 5 prompts
  history [image|video]         list recent generations
  load [image|video] <id>       show a history entry
  download [dir]                save the current result
  theme                         toggle dark/light
  help, quit`

type Dispatcher interface {
	Dispatch(ctx context.Context, action lifecycle.Action, args []string) error
}

type Shell struct {
	d      Dispatcher
	in     io.Reader
	out    io.Writer
	prompt string
	logger *log.Logger
}

func New(d Dispatcher, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		d:      d,
		in:     in,
		out:    out,
		prompt: "studio> ",
		logger: log.With("component", "shell"),
	}
}

// Parse splits a command line into an action and its arguments. Batch
// prompts are separated by "|" so they may contain spaces.
func Parse(line string) (lifecycle.Action, []string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil, ErrEmptyLine
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "quit", "exit", "q":
		return "", nil, ErrQuit
	case "help", "?":
		return "", nil, errHelp
	case string(lifecycle.ActionBatch):
		if rest == "" {
			return lifecycle.ActionBatch, nil, nil
		}
		return lifecycle.ActionBatch, strings.Split(rest, batchSeparator), nil
	case string(lifecycle.ActionGenerate), string(lifecycle.ActionPrompt):
		if rest == "" {
			return lifecycle.Action(strings.ToLower(name)), nil, nil
		}
		return lifecycle.Action(strings.ToLower(name)), []string{rest}, nil
	}
	return lifecycle.Action(strings.ToLower(name)), strings.Fields(rest), nil
}

// Run reads lines until EOF, quit or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	sc := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, s.prompt)
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		action, args, err := Parse(sc.Text())
		switch {
		case errors.Is(err, ErrQuit):
			return nil
		case errors.Is(err, ErrEmptyLine):
			continue
		case errors.Is(err, errHelp):
			fmt.Fprintln(s.out, helpText)
			continue
		}

		if err := s.d.Dispatch(ctx, action, args); err != nil {
			s.report(err)
		}
	}
}

// report prints errors the controller has not already surfaced through a
// notification or the renderer.
func (s *Shell) report(err error) {
	switch {
	case lifecycle.IsUsageError(err), errors.Is(err, lifecycle.ErrUnknownAction):
		fmt.Fprintf(s.out, "%v (type help for commands)\n", err)
	case lifecycle.Notified(err):
		s.logger.Debug("command failed", "err", err)
	default:
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
}
