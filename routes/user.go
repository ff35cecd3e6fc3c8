package routes

import (
	"rescueline/controllers"
	"rescueline/middleware"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(api *gin.RouterGroup, ctrl *controllers.UserController, auth *middleware.AuthMiddleware) {
	users := api.Group("/users")
	{
		users.POST("/register", ctrl.Register)
		users.POST("/login", ctrl.Login)

		me := users.Group("/me")
		me.Use(auth.RequireAuth(), auth.RequireRole(utils.RoleUser))
		{
			me.GET("", ctrl.GetProfile)
			me.PUT("", ctrl.UpdateProfile)
		}
	}
}
