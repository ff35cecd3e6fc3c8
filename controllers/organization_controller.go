package controllers

import (
	"strconv"

	"rescueline/models"
	"rescueline/services"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrganizationController struct {
	orgService      *services.OrganizationService
	locationService *services.LocationService
}

func NewOrganizationController(orgService *services.OrganizationService, locationService *services.LocationService) *OrganizationController {
	return &OrganizationController{
		orgService:      orgService,
		locationService: locationService,
	}
}

// Register handles organization onboarding
// @Summary Register a new responder organization
// @Tags Organizations
// @Accept json
// @Produce json
// @Param request body models.RegisterOrganizationRequest true "Registration data"
// @Success 201 {object} models.APIResponse{data=models.AuthResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse
// @Router /organizations/register [post]
func (oc *OrganizationController) Register(c *gin.Context) {
	var req models.RegisterOrganizationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := oc.orgService.Register(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Organization registration failed: %v", err)
		utils.ServiceErrorResponse(c, err, "Failed to register organization")
		return
	}

	utils.CreatedResponse(c, "Organization registered, pending verification", response)
}

func (oc *OrganizationController) Login(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := oc.orgService.Login(c.Request.Context(), req)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Login failed")
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

func (oc *OrganizationController) GetProfile(c *gin.Context) {
	org, err := oc.orgService.GetProfile(c.Request.Context(), c.GetString("subjectID"))
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to get profile")
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", org)
}

func (oc *OrganizationController) UpdateProfile(c *gin.Context) {
	var req models.UpdateOrganizationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	org, err := oc.orgService.UpdateProfile(c.Request.Context(), c.GetString("subjectID"), req)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to update profile")
		return
	}

	utils.SuccessResponse(c, "Profile updated", org)
}

func (oc *OrganizationController) UpdateAvailability(c *gin.Context) {
	var req struct {
		Availability string `json:"availability"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if err := oc.orgService.UpdateAvailability(c.Request.Context(), c.GetString("subjectID"), req.Availability); err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to update availability")
		return
	}

	utils.SuccessResponse(c, "Availability updated", gin.H{"availability": req.Availability})
}

func (oc *OrganizationController) Deactivate(c *gin.Context) {
	if err := oc.orgService.Deactivate(c.Request.Context(), c.GetString("subjectID")); err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to deactivate account")
		return
	}

	utils.SuccessResponse(c, "Account deactivated", nil)
}

// Nearby is the public directory search around a point.
func (oc *OrganizationController) Nearby(c *gin.Context) {
	latitude, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid or missing latitude")
		return
	}
	longitude, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid or missing longitude")
		return
	}
	radiusKm, _ := strconv.ParseFloat(c.DefaultQuery("radius", "0"), 64)
	service := c.Query("service")

	orgs, err := oc.locationService.NearbyOrganizations(c.Request.Context(), longitude, latitude, radiusKm, service)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to search organizations")
		return
	}

	utils.SuccessResponse(c, "Nearby organizations retrieved", orgs)
}

// ============== ADMIN ==============

func (oc *OrganizationController) List(c *gin.Context) {
	verifiedOnly := c.Query("verified") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	orgs, err := oc.orgService.List(c.Request.Context(), verifiedOnly, limit)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to list organizations")
		return
	}

	utils.SuccessResponse(c, "Organizations retrieved", orgs)
}

func (oc *OrganizationController) Verify(c *gin.Context) {
	var req struct {
		Verified *bool `json:"verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Verified == nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	org, err := oc.orgService.SetVerified(c.Request.Context(), c.Param("id"), *req.Verified)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to update verification")
		return
	}

	utils.SuccessResponse(c, "Verification updated", org)
}
