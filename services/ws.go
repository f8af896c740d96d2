package services

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rpsarena/rps-backend/game"
	"github.com/rpsarena/rps-backend/utils/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict this in production to your domains
		return true
	},
}

// Gateway upgrades connections and hands them to the engine.
type Gateway struct {
	hub   *Hub
	mm    *game.Matchmaker
	users game.UserDirectory
}

func NewGateway(hub *Hub, mm *game.Matchmaker, users game.UserDirectory) *Gateway {
	return &Gateway{hub: hub, mm: mm, users: users}
}

func (g *Gateway) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("[WS] upgrade error: %v", err)
		return
	}

	client := newClient(g.hub, g.mm, g.users, conn)
	go client.writePump()
	go client.readPump()
}
