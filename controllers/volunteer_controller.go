package controllers

import (
	"strconv"

	"rescueline/models"
	"rescueline/services"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type VolunteerController struct {
	volunteerService *services.VolunteerService
	locationService  *services.LocationService
}

func NewVolunteerController(volunteerService *services.VolunteerService, locationService *services.LocationService) *VolunteerController {
	return &VolunteerController{
		volunteerService: volunteerService,
		locationService:  locationService,
	}
}

func (vc *VolunteerController) Register(c *gin.Context) {
	var req models.RegisterVolunteerRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := vc.volunteerService.Register(c.Request.Context(), req)
	if err != nil {
		logrus.Errorf("Volunteer registration failed: %v", err)
		utils.ServiceErrorResponse(c, err, "Failed to register volunteer")
		return
	}

	utils.CreatedResponse(c, "Volunteer registered, pending verification", response)
}

func (vc *VolunteerController) Login(c *gin.Context) {
	var req models.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	response, err := vc.volunteerService.Login(c.Request.Context(), req)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Login failed")
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

func (vc *VolunteerController) GetProfile(c *gin.Context) {
	volunteer, err := vc.volunteerService.GetProfile(c.Request.Context(), c.GetString("subjectID"))
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to get profile")
		return
	}

	utils.SuccessResponse(c, "Profile retrieved", volunteer)
}

func (vc *VolunteerController) UpdateProfile(c *gin.Context) {
	var req models.UpdateVolunteerRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	volunteer, err := vc.volunteerService.UpdateProfile(c.Request.Context(), c.GetString("subjectID"), req)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to update profile")
		return
	}

	utils.SuccessResponse(c, "Profile updated", volunteer)
}

func (vc *VolunteerController) UpdateAvailability(c *gin.Context) {
	var req struct {
		Availability string `json:"availability"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if err := vc.volunteerService.UpdateAvailability(c.Request.Context(), c.GetString("subjectID"), req.Availability); err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to update availability")
		return
	}

	utils.SuccessResponse(c, "Availability updated", gin.H{"availability": req.Availability})
}

func (vc *VolunteerController) Deactivate(c *gin.Context) {
	if err := vc.volunteerService.Deactivate(c.Request.Context(), c.GetString("subjectID")); err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to deactivate account")
		return
	}

	utils.SuccessResponse(c, "Account deactivated", nil)
}

// Nearby is the public directory search around a point.
func (vc *VolunteerController) Nearby(c *gin.Context) {
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

	volunteers, err := vc.locationService.NearbyVolunteers(c.Request.Context(), longitude, latitude, radiusKm)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to search volunteers")
		return
	}

	utils.SuccessResponse(c, "Nearby volunteers retrieved", volunteers)
}

// ============== ADMIN ==============

func (vc *VolunteerController) List(c *gin.Context) {
	verifiedOnly := c.Query("verified") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	volunteers, err := vc.volunteerService.List(c.Request.Context(), verifiedOnly, limit)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to list volunteers")
		return
	}

	utils.SuccessResponse(c, "Volunteers retrieved", volunteers)
}

func (vc *VolunteerController) Verify(c *gin.Context) {
	var req struct {
		Verified *bool `json:"verified"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Verified == nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	volunteer, err := vc.volunteerService.SetVerified(c.Request.Context(), c.Param("id"), *req.Verified)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to update verification")
		return
	}

	utils.SuccessResponse(c, "Verification updated", volunteer)
}
