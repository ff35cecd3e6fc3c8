package routes

import (
	"rescueline/controllers"
	"rescueline/middleware"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers control-room admin authentication.
func SetupAuthRoutes(api *gin.RouterGroup, ctrl *controllers.AuthController, auth *middleware.AuthMiddleware) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", ctrl.Login)
		authGroup.POST("/refresh", ctrl.RefreshToken)

		protected := authGroup.Group("")
		protected.Use(auth.RequireAuth(), auth.RequireRole(utils.RoleAdmin))
		{
			protected.GET("/me", ctrl.Me)
			protected.POST("/admins", ctrl.CreateAdmin)
		}
	}
}
