package controllers

import (
	"rescueline/utils"
	"rescueline/websocket"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// WebSocketController exposes the control-room live feed.
type WebSocketController struct {
	hub *websocket.Hub
}

func NewWebSocketController(hub *websocket.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// ControlRoom upgrades an authenticated admin connection to the live feed.
func (wc *WebSocketController) ControlRoom(c *gin.Context) {
	subjectID := c.GetString("subjectID")
	if subjectID == "" {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := websocket.ServeWS(wc.hub, c.Writer, c.Request, subjectID); err != nil {
		logrus.Errorf("WebSocket upgrade failed: %v", err)
	}
}
