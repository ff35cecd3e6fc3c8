package routes

import (
	"rescueline/controllers"
	"rescueline/middleware"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
)

// SetupEmergencyRoutes registers intake and control-room routes. The public
// intake endpoint is rate limited per IP; it must never require a login.
func SetupEmergencyRoutes(api *gin.RouterGroup, ctrl *controllers.EmergencyController, auth *middleware.AuthMiddleware, limiter *middleware.RateLimiter) {
	emergency := api.Group("/emergency")
	{
		emergency.POST("/request", limiter.PerIP(), ctrl.CreateRequest)

		emergency.POST("/signal",
			auth.RequireAuth(),
			auth.RequireRole(utils.RoleUser),
			limiter.PerSubject(),
			ctrl.SendSignal,
		)

		// Request detail is readable by any authenticated principal, so a
		// notified responder can pull it up from the alert link.
		emergency.GET("/requests/:id", auth.RequireAuth(), ctrl.GetRequest)

		controlRoom := emergency.Group("")
		controlRoom.Use(auth.RequireAuth(), auth.RequireRole(utils.RoleAdmin))
		{
			controlRoom.GET("/requests", ctrl.ListRequests)
			controlRoom.PATCH("/requests/:id/status", ctrl.UpdateStatus)
			controlRoom.GET("/stats", ctrl.GetStats)
		}
	}
}
