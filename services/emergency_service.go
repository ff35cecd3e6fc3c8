package services

import (
	"context"
	"time"

	"rescueline/models"
	"rescueline/repositories"
	"rescueline/utils"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// EmergencyStore is the persistence surface the orchestrator needs.
// *repositories.EmergencyRepository satisfies it.
type EmergencyStore interface {
	Create(ctx context.Context, request *models.EmergencyRequest) error
	GetByID(ctx context.Context, id string) (*models.EmergencyRequest, error)
	Update(ctx context.Context, id string, updateFields bson.M) error
	List(ctx context.Context, status, emergencyType string, page, limit int) ([]models.EmergencyRequest, int64, error)
	FindByNotifiedResponder(ctx context.Context, listField string, responderID primitive.ObjectID, status string) ([]models.EmergencyRequest, error)
	RecordResponse(ctx context.Context, requestID, listField string, responderID primitive.ObjectID, responseStatus, rejectionReason string) (bool, error)
	AcknowledgeIfPending(ctx context.Context, requestID string) (bool, error)
	Stats(ctx context.Context) (*models.EmergencyStatsResponse, error)
}

// HelperFinder is the discovery step; *LocationService satisfies it.
type HelperFinder interface {
	FindNearbyHelpers(ctx context.Context, longitude, latitude float64, emergencyType string, radiusKm float64) (*models.NearbyHelpers, error)
}

// AlertDispatcher is the notification fan-out; *SMSService satisfies it.
type AlertDispatcher interface {
	NotifyAll(ctx context.Context, recipients []AlertRecipient, alert EmergencyAlert) []DeliveryOutcome
}

// RequesterStore resolves authenticated requester profiles.
type RequesterStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// EmergencyBroadcaster pushes lifecycle events to the control-room live
// feed. May be nil when no feed is attached.
type EmergencyBroadcaster interface {
	BroadcastEmergency(event string, request *models.EmergencyRequest)
}

type EmergencyService struct {
	store       EmergencyStore
	userStore   RequesterStore
	helperFind  HelperFinder
	dispatcher  AlertDispatcher
	broadcaster EmergencyBroadcaster
	validator   *utils.ValidationService
}

func NewEmergencyService(
	store EmergencyStore,
	userStore RequesterStore,
	helperFind HelperFinder,
	dispatcher AlertDispatcher,
	broadcaster EmergencyBroadcaster,
) *EmergencyService {
	return &EmergencyService{
		store:       store,
		userStore:   userStore,
		helperFind:  helperFind,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		validator:   utils.NewValidationService(),
	}
}

// =================== INTAKE ===================

// CreateRequest handles the public, unauthenticated intake. The phone number
// doubles as the requester identity.
func (es *EmergencyService) CreateRequest(ctx context.Context, input models.CreateEmergencyRequestInput) (*models.EmergencyIntakeResult, error) {
	if validationErrors := es.validator.ValidateStruct(input); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}
	if !utils.IsValidCoordinate(input.Location.Latitude, input.Location.Longitude) {
		return nil, utils.NewValidationError("Invalid location coordinates")
	}

	request := &models.EmergencyRequest{
		UserID:        input.UserPhone,
		UserName:      input.UserName,
		UserPhone:     input.UserPhone,
		Location:      input.Location.ToGeoPoint(),
		EmergencyType: input.EmergencyType,
		Description:   input.Description,
		Priority:      defaultString(input.Priority, models.PriorityHigh),
		ThreatLevel:   defaultString(input.ThreatLevel, models.ThreatMedium),
		Status:        models.StatusPending,
	}

	return es.intake(ctx, request, nil)
}

// SendSignal handles the authenticated quick signal: requester identity and
// medical details come from the stored profile, everything else defaults so
// a single tap suffices.
func (es *EmergencyService) SendSignal(ctx context.Context, userID string, input models.EmergencySignalInput) (*models.EmergencyIntakeResult, error) {
	user, err := es.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, utils.NewNotFoundError("User")
	}

	if validationErrors := es.validator.ValidateStruct(input); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}
	if !utils.IsValidCoordinate(input.Location.Latitude, input.Location.Longitude) {
		return nil, utils.NewValidationError("Invalid location coordinates")
	}

	location := input.Location
	if location.Address == "" {
		location.Address = "Current Location"
	}

	request := &models.EmergencyRequest{
		UserID:        user.ID.Hex(),
		UserName:      user.Name,
		UserPhone:     user.Phone,
		Location:      location.ToGeoPoint(),
		EmergencyType: defaultString(input.EmergencyType, models.EmergencyTypeMedical),
		Description:   defaultString(input.Description, "Emergency! Need immediate help!"),
		Priority:      defaultString(input.Priority, models.PriorityHigh),
		ThreatLevel:   defaultString(input.ThreatLevel, models.ThreatMedium),
		Status:        models.StatusPending,
		UserMedicalInfo: &models.UserMedicalInfo{
			BloodType:         user.BloodType,
			MedicalConditions: user.MedicalConditions,
			Allergies:         user.Allergies,
		},
		UserEmergencyContacts: user.EmergencyContacts,
	}

	return es.intake(ctx, request, user)
}

// intake is the shared orchestration: persist pending, discover, fan out
// notifications, record outcomes, auto-assign fatal cases. A discovery
// failure degrades the request to a recorded-but-unnotified pending state
// instead of rolling back; an emergency must never be silently dropped.
func (es *EmergencyService) intake(ctx context.Context, request *models.EmergencyRequest, user *models.User) (*models.EmergencyIntakeResult, error) {
	if err := es.store.Create(ctx, request); err != nil {
		return nil, utils.NewDatabaseError("create emergency request", err)
	}

	helpers, err := es.helperFind.FindNearbyHelpers(
		ctx,
		request.Location.Longitude(),
		request.Location.Latitude(),
		request.EmergencyType,
		0,
	)
	if err != nil {
		logrus.Warnf("Helper discovery unavailable for request %s, continuing without notifications: %v", request.ID.Hex(), err)
		es.broadcast("emergency.created", request)
		return es.intakeResult(request, &models.NearbyHelpers{
			Organizations: []models.Organization{},
			Volunteers:    []models.Volunteer{},
		}), nil
	}

	alert := EmergencyAlert{
		UserName:      request.UserName,
		UserPhone:     request.UserPhone,
		EmergencyType: request.EmergencyType,
		Description:   request.Description,
		Address:       request.Location.Address,
		Latitude:      request.Location.Latitude(),
		Longitude:     request.Location.Longitude(),
	}
	if user != nil {
		alert.BloodType = user.BloodType
		alert.MedicalConditions = user.MedicalConditions
	}

	if len(helpers.Organizations) > 0 {
		recipients := make([]AlertRecipient, len(helpers.Organizations))
		for i, org := range helpers.Organizations {
			recipients[i] = AlertRecipient{ID: org.ID, Name: org.OrganizationName, Phone: org.Phone}
		}
		outcomes := es.dispatcher.NotifyAll(ctx, recipients, alert)
		request.NotifiedOrganizations = notificationEntries(outcomes)
	}

	if len(helpers.Volunteers) > 0 {
		recipients := make([]AlertRecipient, len(helpers.Volunteers))
		for i, vol := range helpers.Volunteers {
			recipients[i] = AlertRecipient{ID: vol.ID, Name: vol.Name, Phone: vol.Phone}
		}
		outcomes := es.dispatcher.NotifyAll(ctx, recipients, alert)
		request.NotifiedVolunteers = notificationEntries(outcomes)
	}

	updateFields := bson.M{
		"notifiedOrganizations": request.NotifiedOrganizations,
		"notifiedVolunteers":    request.NotifiedVolunteers,
	}

	// A fatal threat cannot wait for a human response: accept on behalf of
	// the nearest organization, falling back to the nearest volunteer.
	if request.ThreatLevel == models.ThreatFatal {
		if len(helpers.Organizations) > 0 {
			es.autoAssign(request, helpers.Organizations[0].ID, models.ResponderKindOrganization, request.NotifiedOrganizations)
			updateFields["notifiedOrganizations"] = request.NotifiedOrganizations
		} else if len(helpers.Volunteers) > 0 {
			es.autoAssign(request, helpers.Volunteers[0].ID, models.ResponderKindVolunteer, request.NotifiedVolunteers)
			updateFields["notifiedVolunteers"] = request.NotifiedVolunteers
		}
		if request.AssignedTo != nil {
			updateFields["assignedTo"] = request.AssignedTo
			updateFields["status"] = request.Status
		}
	}

	if err := es.store.Update(ctx, request.ID.Hex(), updateFields); err != nil {
		return nil, utils.NewDatabaseError("record notification outcomes", err)
	}

	es.broadcast("emergency.created", request)

	return es.intakeResult(request, helpers), nil
}

func (es *EmergencyService) autoAssign(request *models.EmergencyRequest, responderID primitive.ObjectID, kind string, entries []models.NotifiedResponder) {
	request.AssignedTo = &models.AssignedResponder{ID: responderID, Kind: kind}
	request.Status = models.StatusAcknowledged
	if len(entries) > 0 {
		entries[0].ResponseStatus = models.ResponseAccepted
		entries[0].RespondedAt = time.Now()
	}
}

func (es *EmergencyService) intakeResult(request *models.EmergencyRequest, helpers *models.NearbyHelpers) *models.EmergencyIntakeResult {
	return &models.EmergencyIntakeResult{
		RequestID: request.ID,
		Status:    request.Status,
		NotifiedCount: models.NotifiedCount{
			Organizations: len(request.NotifiedOrganizations),
			Volunteers:    len(request.NotifiedVolunteers),
			Total:         len(request.NotifiedOrganizations) + len(request.NotifiedVolunteers),
		},
		NearbyHelpers: models.NearbyCount{
			Organizations: len(helpers.Organizations),
			Volunteers:    len(helpers.Volunteers),
		},
	}
}

// notificationEntries converts delivery outcomes into notification list
// entries, preserving discovery order.
func notificationEntries(outcomes []DeliveryOutcome) []models.NotifiedResponder {
	entries := make([]models.NotifiedResponder, len(outcomes))
	now := time.Now()
	for i, outcome := range outcomes {
		deliveryStatus := models.DeliveryFailed
		if outcome.Success {
			deliveryStatus = models.DeliverySent
		}
		entries[i] = models.NotifiedResponder{
			ResponderID:    outcome.ResponderID,
			NotifiedAt:     now,
			DeliveryStatus: deliveryStatus,
			ResponseStatus: models.ResponsePending,
		}
	}
	return entries
}

// =================== RESPONDER ACTIONS ===================

// Accept records a responder's acceptance. Only the first acceptance of a
// pending request performs the pending -> acknowledged transition; later
// acceptances still record the responder's own response.
func (es *EmergencyService) Accept(ctx context.Context, kind string, responderID primitive.ObjectID, requestID string) (*models.EmergencyRequest, error) {
	listField, err := listFieldForKind(kind)
	if err != nil {
		return nil, err
	}

	if _, err := es.store.GetByID(ctx, requestID); err != nil {
		return nil, utils.NewNotFoundError("Emergency request")
	}

	matched, err := es.store.RecordResponse(ctx, requestID, listField, responderID, models.ResponseAccepted, "")
	if err != nil {
		return nil, utils.NewDatabaseError("record acceptance", err)
	}
	if !matched {
		return nil, utils.NewNotAuthorizedError("You were not notified about this request")
	}

	transitioned, err := es.store.AcknowledgeIfPending(ctx, requestID)
	if err != nil {
		return nil, utils.NewDatabaseError("acknowledge request", err)
	}

	request, err := es.store.GetByID(ctx, requestID)
	if err != nil {
		return nil, utils.NewDatabaseError("reload request", err)
	}

	if transitioned {
		es.broadcast("emergency.acknowledged", request)
	}

	return request, nil
}

// Reject records a responder's rejection. No status transition occurs;
// repeated rejections are last-write-wins.
func (es *EmergencyService) Reject(ctx context.Context, kind string, responderID primitive.ObjectID, requestID, reason string) (*models.EmergencyRequest, error) {
	listField, err := listFieldForKind(kind)
	if err != nil {
		return nil, err
	}

	if _, err := es.store.GetByID(ctx, requestID); err != nil {
		return nil, utils.NewNotFoundError("Emergency request")
	}

	matched, err := es.store.RecordResponse(ctx, requestID, listField, responderID, models.ResponseRejected, reason)
	if err != nil {
		return nil, utils.NewDatabaseError("record rejection", err)
	}
	if !matched {
		return nil, utils.NewNotAuthorizedError("You were not notified about this request")
	}

	return es.store.GetByID(ctx, requestID)
}

// RequestsForResponder lists requests the responder was notified about,
// annotated with their own response state.
func (es *EmergencyService) RequestsForResponder(ctx context.Context, kind string, responderID primitive.ObjectID, status string) ([]models.ResponderRequestView, error) {
	listField, err := listFieldForKind(kind)
	if err != nil {
		return nil, err
	}

	requests, err := es.store.FindByNotifiedResponder(ctx, listField, responderID, status)
	if err != nil {
		return nil, utils.NewDatabaseError("list responder requests", err)
	}

	views := make([]models.ResponderRequestView, 0, len(requests))
	for _, request := range requests {
		view := models.ResponderRequestView{
			EmergencyRequest: request,
			MyResponseStatus: models.ResponsePending,
		}
		entries := request.NotifiedOrganizations
		if listField == repositories.ListFieldVolunteers {
			entries = request.NotifiedVolunteers
		}
		for _, entry := range entries {
			if entry.ResponderID == responderID {
				view.MyResponseStatus = entry.ResponseStatus
				view.MyRespondedAt = entry.RespondedAt
				break
			}
		}
		views = append(views, view)
	}

	return views, nil
}

// =================== CONTROL ROOM ===================

func (es *EmergencyService) GetRequest(ctx context.Context, id string) (*models.EmergencyRequest, error) {
	request, err := es.store.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("Emergency request")
		}
		return nil, utils.NewDatabaseError("get emergency request", err)
	}
	return request, nil
}

func (es *EmergencyService) ListRequests(ctx context.Context, status, emergencyType string, page, limit int) ([]models.EmergencyRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	requests, total, err := es.store.List(ctx, status, emergencyType, page, limit)
	if err != nil {
		return nil, 0, utils.NewDatabaseError("list emergency requests", err)
	}
	return requests, total, nil
}

// UpdateStatus applies a control-room status/assignment update. resolvedAt
// is stamped when the request reaches resolved.
func (es *EmergencyService) UpdateStatus(ctx context.Context, id string, req models.UpdateEmergencyStatusRequest) (*models.EmergencyRequest, error) {
	if validationErrors := es.validator.ValidateStruct(req); len(validationErrors) > 0 {
		return nil, utils.NewValidationError(validationErrors[0].Message)
	}

	if _, err := es.store.GetByID(ctx, id); err != nil {
		return nil, utils.NewNotFoundError("Emergency request")
	}

	updateFields := bson.M{}
	if req.Status != "" {
		updateFields["status"] = req.Status
		if req.Status == models.StatusResolved {
			updateFields["resolvedAt"] = time.Now()
		}
	}
	if req.Notes != "" {
		updateFields["notes"] = req.Notes
	}
	if req.AssignedTo != "" {
		responderID, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			return nil, utils.NewValidationError("Invalid responder ID")
		}
		updateFields["assignedTo"] = models.AssignedResponder{
			ID:   responderID,
			Kind: defaultString(req.Kind, models.ResponderKindOrganization),
		}
	}

	if len(updateFields) == 0 {
		return nil, utils.NewValidationError("Nothing to update")
	}

	if err := es.store.Update(ctx, id, updateFields); err != nil {
		return nil, utils.NewDatabaseError("update emergency request", err)
	}

	request, err := es.store.GetByID(ctx, id)
	if err != nil {
		return nil, utils.NewDatabaseError("reload request", err)
	}

	es.broadcast("emergency.updated", request)

	return request, nil
}

func (es *EmergencyService) GetStats(ctx context.Context) (*models.EmergencyStatsResponse, error) {
	stats, err := es.store.Stats(ctx)
	if err != nil {
		return nil, utils.NewDatabaseError("aggregate emergency stats", err)
	}
	return stats, nil
}

// =================== HELPERS ===================

func (es *EmergencyService) broadcast(event string, request *models.EmergencyRequest) {
	if es.broadcaster != nil {
		es.broadcaster.BroadcastEmergency(event, request)
	}
}

func listFieldForKind(kind string) (string, error) {
	switch kind {
	case models.ResponderKindOrganization:
		return repositories.ListFieldOrganizations, nil
	case models.ResponderKindVolunteer:
		return repositories.ListFieldVolunteers, nil
	default:
		return "", utils.NewNotAuthorizedError("Unknown responder kind")
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
