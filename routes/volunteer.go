package routes

import (
	"rescueline/controllers"
	"rescueline/middleware"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
)

func SetupVolunteerRoutes(api *gin.RouterGroup, ctrl *controllers.VolunteerController, emergencyCtrl *controllers.EmergencyController, auth *middleware.AuthMiddleware) {
	volunteers := api.Group("/volunteers")
	{
		volunteers.POST("/register", ctrl.Register)
		volunteers.POST("/login", ctrl.Login)
		volunteers.GET("/nearby", ctrl.Nearby)

		me := volunteers.Group("/me")
		me.Use(auth.RequireAuth(), auth.RequireRole(utils.RoleVolunteer))
		{
			me.GET("", ctrl.GetProfile)
			me.PUT("", ctrl.UpdateProfile)
			me.PATCH("/availability", ctrl.UpdateAvailability)
			me.DELETE("", ctrl.Deactivate)

			me.GET("/requests", emergencyCtrl.MyRequests)
			me.POST("/requests/:id/accept", emergencyCtrl.Accept)
			me.POST("/requests/:id/reject", emergencyCtrl.Reject)
		}

		admin := volunteers.Group("")
		admin.Use(auth.RequireAuth(), auth.RequireRole(utils.RoleAdmin))
		{
			admin.GET("", ctrl.List)
			admin.PATCH("/:id/verify", ctrl.Verify)
		}
	}
}
