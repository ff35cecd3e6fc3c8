package controllers

import (
	"rescueline/models"
	"rescueline/services"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthController serves control-room admin authentication and token refresh.
type AuthController struct {
	authService *services.AuthService
}

func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := ac.authService.Login(c.Request.Context(), req)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Login failed")
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

func (ac *AuthController) CreateAdmin(c *gin.Context) {
	var req models.CreateAdminRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	admin, err := ac.authService.CreateAdmin(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Admin creation failed: %v", err)
		utils.ServiceErrorResponse(c, err, "Failed to create admin")
		return
	}

	utils.CreatedResponse(c, "Admin created", admin)
}

func (ac *AuthController) Me(c *gin.Context) {
	admin, err := ac.authService.GetAdmin(c.Request.Context(), c.GetString("subjectID"))
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to get admin profile")
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", admin)
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Refresh token is required")
		return
	}

	tokenPair, err := ac.authService.RefreshToken(req.RefreshToken)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to refresh token")
		return
	}

	utils.SuccessResponse(c, "Token refreshed", tokenPair)
}
