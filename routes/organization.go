package routes

import (
	"rescueline/controllers"
	"rescueline/middleware"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
)

func SetupOrganizationRoutes(api *gin.RouterGroup, ctrl *controllers.OrganizationController, emergencyCtrl *controllers.EmergencyController, auth *middleware.AuthMiddleware) {
	organizations := api.Group("/organizations")
	{
		organizations.POST("/register", ctrl.Register)
		organizations.POST("/login", ctrl.Login)
		organizations.GET("/nearby", ctrl.Nearby)

		me := organizations.Group("/me")
		me.Use(auth.RequireAuth(), auth.RequireRole(utils.RoleOrganization))
		{
			me.GET("", ctrl.GetProfile)
			me.PUT("", ctrl.UpdateProfile)
			me.PATCH("/availability", ctrl.UpdateAvailability)
			me.DELETE("", ctrl.Deactivate)

			me.GET("/requests", emergencyCtrl.MyRequests)
			me.POST("/requests/:id/accept", emergencyCtrl.Accept)
			me.POST("/requests/:id/reject", emergencyCtrl.Reject)
		}

		admin := organizations.Group("")
		admin.Use(auth.RequireAuth(), auth.RequireRole(utils.RoleAdmin))
		{
			admin.GET("", ctrl.List)
			admin.PATCH("/:id/verify", ctrl.Verify)
		}
	}
}
