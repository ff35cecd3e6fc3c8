package controllers

import (
	"rescueline/models"
	"rescueline/services"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserController struct {
	userService *services.UserService
}

func NewUserController(userService *services.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := uc.userService.Register(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("User registration failed: %v", err)
		utils.ServiceErrorResponse(c, err, "Failed to create account")
		return
	}

	utils.CreatedResponse(c, "Account created successfully", response)
}

func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := uc.userService.Login(c.Request.Context(), req)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Login failed")
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.userService.GetProfile(c.Request.Context(), c.GetString("subjectID"))
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to get profile")
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", user)
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	var req models.UpdateUserProfileRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	user, err := uc.userService.UpdateProfile(c.Request.Context(), c.GetString("subjectID"), req)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to update profile")
		return
	}

	utils.SuccessResponse(c, "Profile updated", user)
}
