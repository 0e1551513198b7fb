package services

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func (a *Api) WsUpgrade() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Notifications streams batch events to the client named by ?clientId=,
// falling back to the :id path segment.
func (a *Api) Notifications() fiber.Handler {
	return websocket.New(func(ws *websocket.Conn) {

		clientID := strings.TrimSpace(ws.Query("clientId"))
		if clientID == "" {
			clientID = strings.TrimSpace(ws.Params("id"))
		}
		if clientID == "" {
			_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "missing clientId"))
			_ = ws.Close()
			return
		}

		client := newWSClient(clientID, ws)
		a.hub.Add(client)
		a.logger.Debug("websocket connected", "clientId", clientID)

		go client.writeLoop()
		readPump(ws, func() {
			a.hub.Remove(client)
			a.logger.Debug("websocket disconnected", "clientId", clientID)
		})
	})
}
