package studio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"genstudio/types"

	"github.com/fasthttp/websocket"
)

// EventsURL is the websocket address the API pushes batch events to for clientID.
func (c *Client) EventsURL(clientID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/" + url.PathEscape(clientID)
	u.RawQuery = url.Values{"clientId": {clientID}}.Encode()
	return u.String(), nil
}

// Subscribe streams job events for clientID until ctx is done or the server
// closes the connection. The returned channel is closed on exit.
func (c *Client) Subscribe(ctx context.Context, clientID string) (<-chan types.JobEvent, error) {
	wsURL, err := c.EventsURL(clientID)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error subscribing to events: %w", err)
	}

	events := make(chan types.JobEvent, 16)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		defer close(events)
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					c.logger.Debug("event stream closed", "clientId", clientID, "err", err)
				}
				return
			}
			var ev types.JobEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				c.logger.Warn("dropping malformed event", "clientId", clientID, "err", err)
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
