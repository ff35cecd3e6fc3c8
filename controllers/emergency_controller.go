package controllers

import (
	"strconv"

	"rescueline/models"
	"rescueline/services"
	"rescueline/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmergencyController struct {
	emergencyService *services.EmergencyService
}

func NewEmergencyController(emergencyService *services.EmergencyService) *EmergencyController {
	return &EmergencyController{
		emergencyService: emergencyService,
	}
}

// ============== INTAKE ==============

// CreateRequest handles the public distress intake
// @Summary Create an emergency request
// @Description Record a distress signal and notify nearby responders
// @Tags Emergency
// @Accept json
// @Produce json
// @Param request body models.CreateEmergencyRequestInput true "Emergency details"
// @Success 201 {object} models.APIResponse{data=models.EmergencyIntakeResult}
// @Failure 400 {object} models.APIResponse
// @Router /emergency/request [post]
func (ec *EmergencyController) CreateRequest(c *gin.Context) {
	var input models.CreateEmergencyRequestInput

	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	result, err := ec.emergencyService.CreateRequest(c.Request.Context(), input)
	if err != nil {
		logrus.Errorf("Emergency intake failed: %v", err)
		utils.ServiceErrorResponse(c, err, "Failed to create emergency request")
		return
	}

	utils.CreatedResponse(c, "Emergency request created, responders notified", result)
}

// SendSignal handles the authenticated one-tap signal
// @Summary Send an emergency signal
// @Description Send a distress signal using the stored profile
// @Tags Emergency
// @Accept json
// @Produce json
// @Param request body models.EmergencySignalInput true "Signal details"
// @Success 201 {object} models.APIResponse{data=models.EmergencyIntakeResult}
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /emergency/signal [post]
func (ec *EmergencyController) SendSignal(c *gin.Context) {
	userID := c.GetString("subjectID")
	if userID == "" {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input models.EmergencySignalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	result, err := ec.emergencyService.SendSignal(c.Request.Context(), userID, input)
	if err != nil {
		logrus.Errorf("Emergency signal failed for user %s: %v", userID, err)
		utils.ServiceErrorResponse(c, err, "Failed to send emergency signal")
		return
	}

	utils.CreatedResponse(c, "Emergency signal sent, responders notified", result)
}

// ============== CONTROL ROOM ==============

func (ec *EmergencyController) GetRequest(c *gin.Context) {
	id := c.Param("id")

	request, err := ec.emergencyService.GetRequest(c.Request.Context(), id)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to get emergency request")
		return
	}

	utils.SuccessResponse(c, "Emergency request retrieved", request)
}

func (ec *EmergencyController) ListRequests(c *gin.Context) {
	status := c.Query("status")
	emergencyType := c.Query("type")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	requests, total, err := ec.emergencyService.ListRequests(c.Request.Context(), status, emergencyType, page, limit)
	if err != nil {
		logrus.Errorf("Failed to list emergency requests: %v", err)
		utils.ServiceErrorResponse(c, err, "Failed to list emergency requests")
		return
	}

	meta := utils.CreatePaginationMeta(page, limit, total)
	utils.SuccessResponseWithMeta(c, "Emergency requests retrieved", requests, meta)
}

func (ec *EmergencyController) UpdateStatus(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateEmergencyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	request, err := ec.emergencyService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		logrus.Errorf("Failed to update emergency request %s: %v", id, err)
		utils.ServiceErrorResponse(c, err, "Failed to update emergency request")
		return
	}

	utils.SuccessResponse(c, "Emergency request updated", request)
}

func (ec *EmergencyController) GetStats(c *gin.Context) {
	stats, err := ec.emergencyService.GetStats(c.Request.Context())
	if err != nil {
		logrus.Errorf("Failed to aggregate emergency stats: %v", err)
		utils.ServiceErrorResponse(c, err, "Failed to get emergency stats")
		return
	}

	utils.SuccessResponse(c, "Emergency stats retrieved", stats)
}

// ============== RESPONDER ACTIONS ==============

// Accept records the calling responder's acceptance of a request.
func (ec *EmergencyController) Accept(c *gin.Context) {
	kind, responderID, ok := ec.responderIdentity(c)
	if !ok {
		return
	}

	request, err := ec.emergencyService.Accept(c.Request.Context(), kind, responderID, c.Param("id"))
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to accept emergency request")
		return
	}

	utils.SuccessResponse(c, "Emergency request accepted", request)
}

// Reject records the calling responder's rejection of a request.
func (ec *EmergencyController) Reject(c *gin.Context) {
	kind, responderID, ok := ec.responderIdentity(c)
	if !ok {
		return
	}

	var req models.RejectEmergencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	request, err := ec.emergencyService.Reject(c.Request.Context(), kind, responderID, c.Param("id"), req.Reason)
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to reject emergency request")
		return
	}

	utils.SuccessResponse(c, "Emergency request rejected", request)
}

// MyRequests lists requests the calling responder was notified about.
func (ec *EmergencyController) MyRequests(c *gin.Context) {
	kind, responderID, ok := ec.responderIdentity(c)
	if !ok {
		return
	}

	views, err := ec.emergencyService.RequestsForResponder(c.Request.Context(), kind, responderID, c.Query("status"))
	if err != nil {
		utils.ServiceErrorResponse(c, err, "Failed to list your requests")
		return
	}

	utils.SuccessResponse(c, "Requests retrieved", views)
}

// responderIdentity resolves the calling responder's kind and ID from the
// auth context. The role claim doubles as the responder kind.
func (ec *EmergencyController) responderIdentity(c *gin.Context) (string, primitive.ObjectID, bool) {
	role := c.GetString("role")
	subjectID := c.GetString("subjectID")

	var kind string
	switch role {
	case utils.RoleOrganization:
		kind = models.ResponderKindOrganization
	case utils.RoleVolunteer:
		kind = models.ResponderKindVolunteer
	default:
		utils.ForbiddenResponse(c, "Only responders can perform this action")
		return "", primitive.NilObjectID, false
	}

	responderID, err := primitive.ObjectIDFromHex(subjectID)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return "", primitive.NilObjectID, false
	}

	return kind, responderID, true
}
