package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"genstudio/internal/clients/studio"
	"genstudio/internal/history"
	"genstudio/internal/lifecycle"
	"genstudio/internal/notify"
	"genstudio/internal/prefs"
	"genstudio/internal/render"
	"genstudio/internal/request"
)

// session wires the client side of the studio for one invocation.
type session struct {
	client   *studio.Client
	cache    *history.Cache
	ctrl     *lifecycle.Controller
	emitter  *notify.Emitter
	clientID string
}

func newSession(c *cli.Context, form request.Form) (*session, error) {
	prefsPath := c.String("prefs")
	if prefsPath == "" {
		p, err := prefs.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("error locating preferences: %w", err)
		}
		prefsPath = p
	}
	store := prefs.NewStore(prefsPath)
	p, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading preferences: %w", err)
	}

	policy := notify.PolicyReplace
	switch strings.ToLower(c.String("notifications")) {
	case "replace", "":
	case "stack":
		policy = notify.PolicyStack
	default:
		return nil, fmt.Errorf("unknown notification policy %q", c.String("notifications"))
	}

	client := studio.NewClient(c.String("server"), studio.WithTimeout(c.Duration("timeout")))
	term := render.NewTerminal(os.Stdout, p.Theme)
	emitter := notify.NewEmitter(term, policy)
	cache := history.NewCache(client, 20)
	clientID := uuid.NewString()

	ctrl := lifecycle.NewController(lifecycle.Options{
		Backend:           client,
		History:           cache,
		Renderer:          term,
		Notifier:          emitter,
		Downloader:        client,
		Themes:            store,
		Form:              form,
		ClientID:          clientID,
		BatchRefreshDelay: c.Duration("batch-refresh"),
	})

	return &session{
		client:   client,
		cache:    cache,
		ctrl:     ctrl,
		emitter:  emitter,
		clientID: clientID,
	}, nil
}

// close waits for background refreshes so their output is not lost on exit.
func (s *session) close() {
	s.ctrl.Close()
	s.emitter.Close()
}
