package repositories

import (
	"context"
	"errors"
	"time"

	"rescueline/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Notification list field names in the emergency_requests collection.
const (
	ListFieldOrganizations = "notifiedOrganizations"
	ListFieldVolunteers    = "notifiedVolunteers"
)

type EmergencyRepository struct {
	collection *mongo.Collection
}

func NewEmergencyRepository(database *mongo.Database) *EmergencyRepository {
	return &EmergencyRepository{
		collection: database.Collection("emergency_requests"),
	}
}

func (er *EmergencyRepository) Create(ctx context.Context, request *models.EmergencyRequest) error {
	request.ID = primitive.NewObjectID()
	request.CreatedAt = time.Now()
	request.UpdatedAt = time.Now()

	if request.Status == "" {
		request.Status = models.StatusPending
	}
	if request.NotifiedOrganizations == nil {
		request.NotifiedOrganizations = []models.NotifiedResponder{}
	}
	if request.NotifiedVolunteers == nil {
		request.NotifiedVolunteers = []models.NotifiedResponder{}
	}

	_, err := er.collection.InsertOne(ctx, request)
	if err != nil {
		logrus.Errorf("Failed to create emergency request: %v", err)
		return err
	}

	return nil
}

func (er *EmergencyRepository) GetByID(ctx context.Context, id string) (*models.EmergencyRequest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid request ID")
	}

	var request models.EmergencyRequest
	err = er.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, mongo.ErrNoDocuments
		}
		logrus.Errorf("Failed to get emergency request by ID: %v", err)
		return nil, err
	}

	return &request, nil
}

func (er *EmergencyRepository) Update(ctx context.Context, id string, updateFields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid request ID")
	}

	updateFields["updatedAt"] = time.Now()

	result, err := er.collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateFields},
	)
	if err != nil {
		logrus.Errorf("Failed to update emergency request: %v", err)
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

// List returns requests sorted newest-first with optional status and type
// filters, plus the total matching count for pagination.
func (er *EmergencyRepository) List(ctx context.Context, status, emergencyType string, page, limit int) ([]models.EmergencyRequest, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	if emergencyType != "" {
		filter["emergencyType"] = emergencyType
	}

	total, err := er.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64((page - 1) * limit))

	cursor, err := er.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	requests := []models.EmergencyRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// FindByNotifiedResponder returns every request whose notification list of
// the given kind contains the responder.
func (er *EmergencyRepository) FindByNotifiedResponder(ctx context.Context, listField string, responderID primitive.ObjectID, status string) ([]models.EmergencyRequest, error) {
	filter := bson.M{
		listField + ".responderId": responderID,
	}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := er.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.EmergencyRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}

	return requests, nil
}

// RecordResponse updates the responder's own entry in a notification list via
// the positional operator. Accept after reject (and vice versa) overwrites
// the previous response; no duplicate entry is ever created. Returns false
// when the responder is not in the list.
func (er *EmergencyRepository) RecordResponse(ctx context.Context, requestID string, listField string, responderID primitive.ObjectID, responseStatus, rejectionReason string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return false, errors.New("invalid request ID")
	}

	filter := bson.M{
		"_id":                       objectID,
		listField + ".responderId": responderID,
	}
	update := bson.M{
		"$set": bson.M{
			listField + ".$.responseStatus":  responseStatus,
			listField + ".$.respondedAt":     time.Now(),
			listField + ".$.rejectionReason": rejectionReason,
			"updatedAt":                      time.Now(),
		},
	}

	result, err := er.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		logrus.Errorf("Failed to record responder response: %v", err)
		return false, err
	}

	return result.MatchedCount > 0, nil
}

// AcknowledgeIfPending flips a pending request to acknowledged with a
// conditional update, so only the first acceptance wins the race. Returns
// whether this call performed the transition.
func (er *EmergencyRepository) AcknowledgeIfPending(ctx context.Context, requestID string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(requestID)
	if err != nil {
		return false, errors.New("invalid request ID")
	}

	result, err := er.collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID, "status": models.StatusPending},
		bson.M{"$set": bson.M{"status": models.StatusAcknowledged, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount > 0, nil
}

// Stats aggregates the dashboard counters.
func (er *EmergencyRepository) Stats(ctx context.Context) (*models.EmergencyStatsResponse, error) {
	stats := &models.EmergencyStatsResponse{ByType: map[string]int64{}}

	var err error
	if stats.Total, err = er.collection.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if stats.Pending, err = er.collection.CountDocuments(ctx, bson.M{"status": models.StatusPending}); err != nil {
		return nil, err
	}
	if stats.InProgress, err = er.collection.CountDocuments(ctx, bson.M{"status": models.StatusInProgress}); err != nil {
		return nil, err
	}
	if stats.Resolved, err = er.collection.CountDocuments(ctx, bson.M{"status": models.StatusResolved}); err != nil {
		return nil, err
	}

	last24h := time.Now().Add(-24 * time.Hour)
	if stats.Last24Hours, err = er.collection.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": last24h}}); err != nil {
		return nil, err
	}

	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$emergencyType", "count": bson.M{"$sum": 1}}},
	}
	cursor, err := er.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	for _, g := range groups {
		stats.ByType[g.ID] = g.Count
	}

	return stats, nil
}

func (er *EmergencyRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "emergencyType", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "notifiedOrganizations.responderId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "notifiedVolunteers.responderId", Value: 1}},
		},
	}

	_, err := er.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
