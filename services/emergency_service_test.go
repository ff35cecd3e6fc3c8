package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"rescueline/models"
	"rescueline/repositories"
	"rescueline/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// stubEmergencyStore keeps requests in memory and mimics the repository's
// matched-document semantics for RecordResponse and AcknowledgeIfPending.
type stubEmergencyStore struct {
	requests  map[string]*models.EmergencyRequest
	createErr error
	updates   map[string][]bson.M
}

func newStubEmergencyStore() *stubEmergencyStore {
	return &stubEmergencyStore{
		requests: make(map[string]*models.EmergencyRequest),
		updates:  make(map[string][]bson.M),
	}
}

func (s *stubEmergencyStore) Create(ctx context.Context, request *models.EmergencyRequest) error {
	if s.createErr != nil {
		return s.createErr
	}
	request.ID = primitive.NewObjectID()
	request.CreatedAt = time.Now()
	if request.NotifiedOrganizations == nil {
		request.NotifiedOrganizations = []models.NotifiedResponder{}
	}
	if request.NotifiedVolunteers == nil {
		request.NotifiedVolunteers = []models.NotifiedResponder{}
	}
	s.requests[request.ID.Hex()] = request
	return nil
}

func (s *stubEmergencyStore) GetByID(ctx context.Context, id string) (*models.EmergencyRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return request, nil
}

func (s *stubEmergencyStore) Update(ctx context.Context, id string, updateFields bson.M) error {
	s.updates[id] = append(s.updates[id], updateFields)
	request, ok := s.requests[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if status, ok := updateFields["status"].(string); ok {
		request.Status = status
	}
	return nil
}

func (s *stubEmergencyStore) List(ctx context.Context, status, emergencyType string, page, limit int) ([]models.EmergencyRequest, int64, error) {
	var out []models.EmergencyRequest
	for _, request := range s.requests {
		if status != "" && request.Status != status {
			continue
		}
		out = append(out, *request)
	}
	return out, int64(len(out)), nil
}

func (s *stubEmergencyStore) FindByNotifiedResponder(ctx context.Context, listField string, responderID primitive.ObjectID, status string) ([]models.EmergencyRequest, error) {
	var out []models.EmergencyRequest
	for _, request := range s.requests {
		entries := request.NotifiedOrganizations
		if listField == repositories.ListFieldVolunteers {
			entries = request.NotifiedVolunteers
		}
		for _, entry := range entries {
			if entry.ResponderID == responderID {
				out = append(out, *request)
				break
			}
		}
	}
	return out, nil
}

func (s *stubEmergencyStore) RecordResponse(ctx context.Context, requestID, listField string, responderID primitive.ObjectID, responseStatus, rejectionReason string) (bool, error) {
	request, ok := s.requests[requestID]
	if !ok {
		return false, nil
	}
	entries := request.NotifiedOrganizations
	if listField == repositories.ListFieldVolunteers {
		entries = request.NotifiedVolunteers
	}
	for i := range entries {
		if entries[i].ResponderID == responderID {
			entries[i].ResponseStatus = responseStatus
			entries[i].RejectionReason = rejectionReason
			entries[i].RespondedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (s *stubEmergencyStore) AcknowledgeIfPending(ctx context.Context, requestID string) (bool, error) {
	request, ok := s.requests[requestID]
	if !ok {
		return false, nil
	}
	if request.Status != models.StatusPending {
		return false, nil
	}
	request.Status = models.StatusAcknowledged
	return true, nil
}

func (s *stubEmergencyStore) Stats(ctx context.Context) (*models.EmergencyStatsResponse, error) {
	return &models.EmergencyStatsResponse{Total: int64(len(s.requests))}, nil
}

type stubHelperFinder struct {
	helpers *models.NearbyHelpers
	err     error
}

func (f *stubHelperFinder) FindNearbyHelpers(ctx context.Context, longitude, latitude float64, emergencyType string, radiusKm float64) (*models.NearbyHelpers, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.helpers, nil
}

type stubDispatcher struct {
	failPhones map[string]bool
	calls      [][]AlertRecipient
	lastAlert  EmergencyAlert
}

func (d *stubDispatcher) NotifyAll(ctx context.Context, recipients []AlertRecipient, alert EmergencyAlert) []DeliveryOutcome {
	d.calls = append(d.calls, recipients)
	d.lastAlert = alert
	outcomes := make([]DeliveryOutcome, len(recipients))
	for i, recipient := range recipients {
		outcomes[i] = DeliveryOutcome{
			ResponderID: recipient.ID,
			Phone:       recipient.Phone,
			Success:     !d.failPhones[recipient.Phone],
		}
		if d.failPhones[recipient.Phone] {
			outcomes[i].Error = "undeliverable"
		}
	}
	return outcomes
}

type stubUserStore struct {
	users map[string]*models.User
}

func (s *stubUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return user, nil
}

type stubBroadcaster struct {
	events []string
}

func (b *stubBroadcaster) BroadcastEmergency(event string, request *models.EmergencyRequest) {
	b.events = append(b.events, event)
}

func helpersFixture() *models.NearbyHelpers {
	return &models.NearbyHelpers{
		Organizations: []models.Organization{
			{ID: primitive.NewObjectID(), OrganizationName: "City Hospital", Phone: "+911", DistanceKm: 1.0},
			{ID: primitive.NewObjectID(), OrganizationName: "Shelter Trust", Phone: "+912", DistanceKm: 3.0},
		},
		Volunteers: []models.Volunteer{
			{ID: primitive.NewObjectID(), Name: "Ravi", Phone: "+913", DistanceKm: 2.0},
		},
		SearchRadius: 50,
		TotalFound:   3,
	}
}

func validIntakeInput() models.CreateEmergencyRequestInput {
	return models.CreateEmergencyRequestInput{
		UserName:      "Asha",
		UserPhone:     "+91 98765 43210",
		Location:      models.LocationInput{Longitude: 77.5946, Latitude: 12.9716, Address: "12 MG Road"},
		EmergencyType: models.EmergencyTypeMedical,
		Description:   "Severe allergic reaction",
	}
}

func newTestEmergencyService(store *stubEmergencyStore, finder *stubHelperFinder, dispatcher *stubDispatcher, users *stubUserStore, broadcaster *stubBroadcaster) *EmergencyService {
	if users == nil {
		users = &stubUserStore{users: map[string]*models.User{}}
	}
	// A nil *stubBroadcaster must become a nil interface, not a typed nil,
	// or the service's nil guard would call through it.
	var feed EmergencyBroadcaster
	if broadcaster != nil {
		feed = broadcaster
	}
	return NewEmergencyService(store, users, finder, dispatcher, feed)
}

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies organizations and volunteers", func(t *testing.T) {
		store := newStubEmergencyStore()
		dispatcher := &stubDispatcher{}
		broadcaster := &stubBroadcaster{}
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpersFixture()}, dispatcher, nil, broadcaster)

		result, err := es.CreateRequest(ctx, validIntakeInput())
		require.NoError(t, err)

		assert.Equal(t, models.StatusPending, result.Status)
		assert.Equal(t, 2, result.NotifiedCount.Organizations)
		assert.Equal(t, 1, result.NotifiedCount.Volunteers)
		assert.Equal(t, 3, result.NotifiedCount.Total)

		stored := store.requests[result.RequestID.Hex()]
		require.NotNil(t, stored)
		require.Len(t, stored.NotifiedOrganizations, 2)
		require.Len(t, stored.NotifiedVolunteers, 1)
		for _, entry := range stored.NotifiedOrganizations {
			assert.Equal(t, models.DeliverySent, entry.DeliveryStatus)
			assert.Equal(t, models.ResponsePending, entry.ResponseStatus)
			assert.False(t, entry.NotifiedAt.IsZero())
		}

		// One dispatch per responder group.
		require.Len(t, dispatcher.calls, 2)
		assert.Equal(t, "Asha", dispatcher.lastAlert.UserName)
		assert.Equal(t, []string{"emergency.created"}, broadcaster.events)
	})

	t.Run("failed deliveries recorded per recipient", func(t *testing.T) {
		store := newStubEmergencyStore()
		dispatcher := &stubDispatcher{failPhones: map[string]bool{"+912": true}}
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpersFixture()}, dispatcher, nil, nil)

		result, err := es.CreateRequest(ctx, validIntakeInput())
		require.NoError(t, err)

		stored := store.requests[result.RequestID.Hex()]
		assert.Equal(t, models.DeliverySent, stored.NotifiedOrganizations[0].DeliveryStatus)
		assert.Equal(t, models.DeliveryFailed, stored.NotifiedOrganizations[1].DeliveryStatus)

		// A failed delivery still counts as notified.
		assert.Equal(t, 2, result.NotifiedCount.Organizations)
	})

	t.Run("fatal threat auto-assigns nearest organization", func(t *testing.T) {
		store := newStubEmergencyStore()
		helpers := helpersFixture()
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpers}, &stubDispatcher{}, nil, nil)

		input := validIntakeInput()
		input.ThreatLevel = models.ThreatFatal

		result, err := es.CreateRequest(ctx, input)
		require.NoError(t, err)

		assert.Equal(t, models.StatusAcknowledged, result.Status)

		stored := store.requests[result.RequestID.Hex()]
		require.NotNil(t, stored.AssignedTo)
		assert.Equal(t, helpers.Organizations[0].ID, stored.AssignedTo.ID)
		assert.Equal(t, models.ResponderKindOrganization, stored.AssignedTo.Kind)
		assert.Equal(t, models.ResponseAccepted, stored.NotifiedOrganizations[0].ResponseStatus)
		assert.False(t, stored.NotifiedOrganizations[0].RespondedAt.IsZero())
		assert.Equal(t, models.ResponsePending, stored.NotifiedOrganizations[1].ResponseStatus)
	})

	t.Run("fatal threat falls back to nearest volunteer", func(t *testing.T) {
		store := newStubEmergencyStore()
		helpers := helpersFixture()
		helpers.Organizations = []models.Organization{}
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpers}, &stubDispatcher{}, nil, nil)

		input := validIntakeInput()
		input.ThreatLevel = models.ThreatFatal

		result, err := es.CreateRequest(ctx, input)
		require.NoError(t, err)

		stored := store.requests[result.RequestID.Hex()]
		require.NotNil(t, stored.AssignedTo)
		assert.Equal(t, helpers.Volunteers[0].ID, stored.AssignedTo.ID)
		assert.Equal(t, models.ResponderKindVolunteer, stored.AssignedTo.Kind)
		assert.Equal(t, models.ResponseAccepted, stored.NotifiedVolunteers[0].ResponseStatus)
	})

	t.Run("no responders nearby still records the request", func(t *testing.T) {
		store := newStubEmergencyStore()
		empty := &models.NearbyHelpers{
			Organizations: []models.Organization{},
			Volunteers:    []models.Volunteer{},
		}
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: empty}, &stubDispatcher{}, nil, nil)

		result, err := es.CreateRequest(ctx, validIntakeInput())
		require.NoError(t, err)

		assert.Equal(t, models.StatusPending, result.Status)
		assert.Equal(t, 0, result.NotifiedCount.Total)
		assert.Len(t, store.requests, 1)
	})

	t.Run("discovery failure degrades to recorded-but-unnotified", func(t *testing.T) {
		store := newStubEmergencyStore()
		finder := &stubHelperFinder{err: utils.NewDiscoveryUnavailableError(errors.New("mongo down"))}
		broadcaster := &stubBroadcaster{}
		es := newTestEmergencyService(store, finder, &stubDispatcher{}, nil, broadcaster)

		result, err := es.CreateRequest(ctx, validIntakeInput())
		require.NoError(t, err)

		assert.Equal(t, models.StatusPending, result.Status)
		assert.Equal(t, 0, result.NotifiedCount.Total)
		assert.Len(t, store.requests, 1)
		assert.Equal(t, []string{"emergency.created"}, broadcaster.events)
	})

	t.Run("validation failure leaves no trace", func(t *testing.T) {
		store := newStubEmergencyStore()
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpersFixture()}, &stubDispatcher{}, nil, nil)

		input := validIntakeInput()
		input.UserPhone = "bad"

		_, err := es.CreateRequest(ctx, input)
		require.Error(t, err)

		se, ok := utils.GetServiceError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, se.StatusCode)
		assert.Empty(t, store.requests)
	})

	t.Run("defaults applied", func(t *testing.T) {
		store := newStubEmergencyStore()
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpersFixture()}, &stubDispatcher{}, nil, nil)

		result, err := es.CreateRequest(ctx, validIntakeInput())
		require.NoError(t, err)

		stored := store.requests[result.RequestID.Hex()]
		assert.Equal(t, models.PriorityHigh, stored.Priority)
		assert.Equal(t, models.ThreatMedium, stored.ThreatLevel)
	})
}

func TestSendSignal(t *testing.T) {
	ctx := context.Background()

	userID := primitive.NewObjectID()
	user := &models.User{
		ID:                userID,
		Name:              "Asha",
		Phone:             "+91 98765 43210",
		BloodType:         "O-",
		MedicalConditions: "asthma",
	}

	t.Run("pulls identity and medical details from profile", func(t *testing.T) {
		store := newStubEmergencyStore()
		dispatcher := &stubDispatcher{}
		users := &stubUserStore{users: map[string]*models.User{userID.Hex(): user}}
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpersFixture()}, dispatcher, users, nil)

		result, err := es.SendSignal(ctx, userID.Hex(), models.EmergencySignalInput{
			Location: models.LocationInput{Longitude: 77.5946, Latitude: 12.9716},
		})
		require.NoError(t, err)

		stored := store.requests[result.RequestID.Hex()]
		assert.Equal(t, "Asha", stored.UserName)
		assert.Equal(t, user.Phone, stored.UserPhone)
		assert.Equal(t, models.EmergencyTypeMedical, stored.EmergencyType)
		assert.Equal(t, "Emergency! Need immediate help!", stored.Description)
		assert.Equal(t, models.PriorityHigh, stored.Priority)
		require.NotNil(t, stored.UserMedicalInfo)
		assert.Equal(t, "O-", stored.UserMedicalInfo.BloodType)

		assert.Equal(t, "O-", dispatcher.lastAlert.BloodType)
		assert.Equal(t, "asthma", dispatcher.lastAlert.MedicalConditions)
	})

	t.Run("unknown user", func(t *testing.T) {
		store := newStubEmergencyStore()
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpersFixture()}, &stubDispatcher{}, nil, nil)

		_, err := es.SendSignal(ctx, primitive.NewObjectID().Hex(), models.EmergencySignalInput{
			Location: models.LocationInput{Longitude: 77.5946, Latitude: 12.9716},
		})
		require.Error(t, err)

		se, ok := utils.GetServiceError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, se.StatusCode)
	})
}

func TestAcceptReject(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*EmergencyService, *stubEmergencyStore, *models.NearbyHelpers, string) {
		store := newStubEmergencyStore()
		helpers := helpersFixture()
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpers}, &stubDispatcher{}, nil, nil)

		result, err := es.CreateRequest(ctx, validIntakeInput())
		require.NoError(t, err)
		return es, store, helpers, result.RequestID.Hex()
	}

	t.Run("first acceptance acknowledges the request", func(t *testing.T) {
		es, _, helpers, requestID := setup(t)

		request, err := es.Accept(ctx, models.ResponderKindOrganization, helpers.Organizations[0].ID, requestID)
		require.NoError(t, err)

		assert.Equal(t, models.StatusAcknowledged, request.Status)
		assert.Equal(t, models.ResponseAccepted, request.NotifiedOrganizations[0].ResponseStatus)
	})

	t.Run("later acceptances record but do not re-transition", func(t *testing.T) {
		es, store, helpers, requestID := setup(t)

		_, err := es.Accept(ctx, models.ResponderKindOrganization, helpers.Organizations[0].ID, requestID)
		require.NoError(t, err)

		store.requests[requestID].Status = models.StatusInProgress

		request, err := es.Accept(ctx, models.ResponderKindVolunteer, helpers.Volunteers[0].ID, requestID)
		require.NoError(t, err)

		assert.Equal(t, models.StatusInProgress, request.Status)
		assert.Equal(t, models.ResponseAccepted, request.NotifiedVolunteers[0].ResponseStatus)
	})

	t.Run("non-notified responder is rejected", func(t *testing.T) {
		es, _, _, requestID := setup(t)

		_, err := es.Accept(ctx, models.ResponderKindOrganization, primitive.NewObjectID(), requestID)
		require.Error(t, err)

		se, ok := utils.GetServiceError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, se.StatusCode)
	})

	t.Run("unknown request", func(t *testing.T) {
		es, _, helpers, _ := setup(t)

		_, err := es.Accept(ctx, models.ResponderKindOrganization, helpers.Organizations[0].ID, primitive.NewObjectID().Hex())
		require.Error(t, err)

		se, ok := utils.GetServiceError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, se.StatusCode)
	})

	t.Run("reject records reason without transition", func(t *testing.T) {
		es, _, helpers, requestID := setup(t)

		request, err := es.Reject(ctx, models.ResponderKindOrganization, helpers.Organizations[0].ID, requestID, "too far")
		require.NoError(t, err)

		assert.Equal(t, models.StatusPending, request.Status)
		assert.Equal(t, models.ResponseRejected, request.NotifiedOrganizations[0].ResponseStatus)
		assert.Equal(t, "too far", request.NotifiedOrganizations[0].RejectionReason)
	})

	t.Run("reject then accept overwrites", func(t *testing.T) {
		es, _, helpers, requestID := setup(t)

		_, err := es.Reject(ctx, models.ResponderKindOrganization, helpers.Organizations[0].ID, requestID, "busy")
		require.NoError(t, err)

		request, err := es.Accept(ctx, models.ResponderKindOrganization, helpers.Organizations[0].ID, requestID)
		require.NoError(t, err)

		assert.Equal(t, models.ResponseAccepted, request.NotifiedOrganizations[0].ResponseStatus)
		require.Len(t, request.NotifiedOrganizations, 2)
	})

	t.Run("unknown responder kind", func(t *testing.T) {
		es, _, _, requestID := setup(t)

		_, err := es.Accept(ctx, "bystander", primitive.NewObjectID(), requestID)
		require.Error(t, err)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*EmergencyService, *stubEmergencyStore, string) {
		store := newStubEmergencyStore()
		es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpersFixture()}, &stubDispatcher{}, nil, nil)

		result, err := es.CreateRequest(ctx, validIntakeInput())
		require.NoError(t, err)
		return es, store, result.RequestID.Hex()
	}

	t.Run("resolved stamps resolvedAt", func(t *testing.T) {
		es, store, requestID := setup(t)

		_, err := es.UpdateStatus(ctx, requestID, models.UpdateEmergencyStatusRequest{
			Status: models.StatusResolved,
		})
		require.NoError(t, err)

		updates := store.updates[requestID]
		last := updates[len(updates)-1]
		assert.Equal(t, models.StatusResolved, last["status"])
		assert.Contains(t, last, "resolvedAt")
	})

	t.Run("manual assignment", func(t *testing.T) {
		es, store, requestID := setup(t)

		responderID := primitive.NewObjectID()
		_, err := es.UpdateStatus(ctx, requestID, models.UpdateEmergencyStatusRequest{
			Status:     models.StatusInProgress,
			AssignedTo: responderID.Hex(),
			Kind:       models.ResponderKindVolunteer,
		})
		require.NoError(t, err)

		updates := store.updates[requestID]
		last := updates[len(updates)-1]
		assigned, ok := last["assignedTo"].(models.AssignedResponder)
		require.True(t, ok)
		assert.Equal(t, responderID, assigned.ID)
		assert.Equal(t, models.ResponderKindVolunteer, assigned.Kind)
	})

	t.Run("empty update rejected", func(t *testing.T) {
		es, _, requestID := setup(t)

		_, err := es.UpdateStatus(ctx, requestID, models.UpdateEmergencyStatusRequest{})
		require.Error(t, err)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		es, _, requestID := setup(t)

		_, err := es.UpdateStatus(ctx, requestID, models.UpdateEmergencyStatusRequest{Status: "finished"})
		require.Error(t, err)
	})
}

func TestBroadcasterIsOptional(t *testing.T) {
	ctx := context.Background()

	store := newStubEmergencyStore()
	helpers := helpersFixture()
	es := NewEmergencyService(store, &stubUserStore{users: map[string]*models.User{}}, &stubHelperFinder{helpers: helpers}, &stubDispatcher{}, nil)

	input := validIntakeInput()
	input.ThreatLevel = models.ThreatFatal

	result, err := es.CreateRequest(ctx, input)
	require.NoError(t, err)

	_, err = es.Accept(ctx, models.ResponderKindVolunteer, helpers.Volunteers[0].ID, result.RequestID.Hex())
	require.NoError(t, err)

	_, err = es.UpdateStatus(ctx, result.RequestID.Hex(), models.UpdateEmergencyStatusRequest{
		Status: models.StatusResolved,
	})
	require.NoError(t, err)
}

func TestRequestsForResponder(t *testing.T) {
	ctx := context.Background()

	store := newStubEmergencyStore()
	helpers := helpersFixture()
	es := newTestEmergencyService(store, &stubHelperFinder{helpers: helpers}, &stubDispatcher{}, nil, nil)

	result, err := es.CreateRequest(ctx, validIntakeInput())
	require.NoError(t, err)

	_, err = es.Reject(ctx, models.ResponderKindOrganization, helpers.Organizations[1].ID, result.RequestID.Hex(), "at capacity")
	require.NoError(t, err)

	t.Run("annotates own response state", func(t *testing.T) {
		views, err := es.RequestsForResponder(ctx, models.ResponderKindOrganization, helpers.Organizations[1].ID, "")
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, models.ResponseRejected, views[0].MyResponseStatus)
		assert.False(t, views[0].MyRespondedAt.IsZero())
	})

	t.Run("pending for silent responder", func(t *testing.T) {
		views, err := es.RequestsForResponder(ctx, models.ResponderKindOrganization, helpers.Organizations[0].ID, "")
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, models.ResponsePending, views[0].MyResponseStatus)
	})

	t.Run("unrelated responder sees nothing", func(t *testing.T) {
		views, err := es.RequestsForResponder(ctx, models.ResponderKindVolunteer, primitive.NewObjectID(), "")
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}
