package routes

import (
	"rescueline/controllers"
	"rescueline/middleware"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
)

// SetupWebSocketRoutes registers the control-room live feed. Tokens arrive
// via the token query parameter since browsers cannot set headers on
// WebSocket upgrades.
func SetupWebSocketRoutes(router *gin.Engine, ctrl *controllers.WebSocketController, auth *middleware.AuthMiddleware) {
	router.GET("/ws/control-room",
		auth.RequireAuth(),
		auth.RequireRole(utils.RoleAdmin),
		ctrl.ControlRoom,
	)
}
