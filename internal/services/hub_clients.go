package services

import (
	"time"

	"github.com/gofiber/contrib/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsSendBuffer = 16
)

// conn is the part of a websocket connection the hub relies on.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type WSClient struct {
	id   string
	conn conn
	send chan []byte
}

func newWSClient(id string, c conn) *WSClient {
	return &WSClient{
		id:   id,
		conn: c,
		send: make(chan []byte, wsSendBuffer),
	}
}

func (c *WSClient) close() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

func (c *WSClient) writeLoop() {
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive until the peer goes away.
func readPump(ws *websocket.Conn, onDone func()) {
	defer onDone()
	ws.SetReadLimit(1 << 20)
	_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
