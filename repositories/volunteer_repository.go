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

type VolunteerRepository struct {
	collection *mongo.Collection
}

func NewVolunteerRepository(database *mongo.Database) *VolunteerRepository {
	return &VolunteerRepository{
		collection: database.Collection("volunteers"),
	}
}

func (vr *VolunteerRepository) Create(ctx context.Context, volunteer *models.Volunteer) error {
	volunteer.ID = primitive.NewObjectID()
	volunteer.CreatedAt = time.Now()
	volunteer.UpdatedAt = time.Now()
	volunteer.LastActive = time.Now()

	if volunteer.Availability == "" {
		volunteer.Availability = models.AvailabilityAvailable
	}
	if volunteer.AvailableRadius == 0 {
		volunteer.AvailableRadius = 5
	}
	volunteer.IsActive = true

	_, err := vr.collection.InsertOne(ctx, volunteer)
	if err != nil {
		logrus.Errorf("Failed to create volunteer: %v", err)
		return err
	}

	return nil
}

func (vr *VolunteerRepository) GetByID(ctx context.Context, id string) (*models.Volunteer, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid volunteer ID")
	}

	var volunteer models.Volunteer
	err = vr.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&volunteer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, mongo.ErrNoDocuments
		}
		logrus.Errorf("Failed to get volunteer by ID: %v", err)
		return nil, err
	}

	return &volunteer, nil
}

func (vr *VolunteerRepository) GetByEmail(ctx context.Context, email string) (*models.Volunteer, error) {
	var volunteer models.Volunteer
	err := vr.collection.FindOne(ctx, bson.M{"email": email, "isActive": true}).Decode(&volunteer)
	if err != nil {
		return nil, err
	}
	return &volunteer, nil
}

func (vr *VolunteerRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	count, err := vr.collection.CountDocuments(ctx, bson.M{
		"$or": []bson.M{
			{"email": email},
			{"phone": phone},
		},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindNearby runs the proximity query for volunteers. Unlike organizations,
// volunteers must be exactly "available"; busy volunteers are skipped.
func (vr *VolunteerRepository) FindNearby(ctx context.Context, longitude, latitude, radiusKm float64, limit int) ([]models.Volunteer, error) {
	filter := bson.M{
		"isActive":     true,
		"verified":     true,
		"availability": models.AvailabilityAvailable,
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{longitude, latitude},
				},
				"$maxDistance": radiusKm * 1000,
			},
		},
	}

	opts := options.Find().SetLimit(int64(limit))
	cursor, err := vr.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("Failed to find nearby volunteers: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	volunteers := []models.Volunteer{}
	if err := cursor.All(ctx, &volunteers); err != nil {
		return nil, err
	}

	return volunteers, nil
}

func (vr *VolunteerRepository) List(ctx context.Context, filter bson.M, limit int) ([]models.Volunteer, error) {
	if filter == nil {
		filter = bson.M{}
	}
	filter["isActive"] = true

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := vr.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	volunteers := []models.Volunteer{}
	if err := cursor.All(ctx, &volunteers); err != nil {
		return nil, err
	}

	return volunteers, nil
}

func (vr *VolunteerRepository) Update(ctx context.Context, id string, updateFields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid volunteer ID")
	}

	updateFields["updatedAt"] = time.Now()

	result, err := vr.collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateFields},
	)
	if err != nil {
		logrus.Errorf("Failed to update volunteer: %v", err)
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (vr *VolunteerRepository) Deactivate(ctx context.Context, id string) error {
	return vr.Update(ctx, id, bson.M{"isActive": false})
}

func (vr *VolunteerRepository) TouchLastActive(ctx context.Context, id string) error {
	return vr.Update(ctx, id, bson.M{"lastActive": time.Now()})
}

func (vr *VolunteerRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{{Key: "availability", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "skills", Value: 1}},
		},
	}

	_, err := vr.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
