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

type OrganizationRepository struct {
	collection *mongo.Collection
}

func NewOrganizationRepository(database *mongo.Database) *OrganizationRepository {
	return &OrganizationRepository{
		collection: database.Collection("organizations"),
	}
}

func (or *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	org.ID = primitive.NewObjectID()
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()

	if org.Availability == "" {
		org.Availability = models.AvailabilityAvailable
	}
	org.IsActive = true

	_, err := or.collection.InsertOne(ctx, org)
	if err != nil {
		logrus.Errorf("Failed to create organization: %v", err)
		return err
	}

	return nil
}

func (or *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid organization ID")
	}

	var org models.Organization
	err = or.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&org)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, mongo.ErrNoDocuments
		}
		logrus.Errorf("Failed to get organization by ID: %v", err)
		return nil, err
	}

	return &org, nil
}

func (or *OrganizationRepository) GetByEmail(ctx context.Context, email string) (*models.Organization, error) {
	var org models.Organization
	err := or.collection.FindOne(ctx, bson.M{"email": email, "isActive": true}).Decode(&org)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// ExistsByRegistrationOrPhone guards against duplicate registrations.
func (or *OrganizationRepository) ExistsByRegistrationOrPhone(ctx context.Context, registrationNumber, phone string) (bool, error) {
	count, err := or.collection.CountDocuments(ctx, bson.M{
		"$or": []bson.M{
			{"registrationNumber": registrationNumber},
			{"phone": phone},
		},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindNearby runs the proximity query: active, verified, not explicitly
// unavailable, optionally filtered by service tag, within radiusKm of the
// center. $near returns documents ordered nearest-first.
func (or *OrganizationRepository) FindNearby(ctx context.Context, longitude, latitude, radiusKm float64, service string, limit int) ([]models.Organization, error) {
	filter := bson.M{
		"isActive":     true,
		"verified":     true,
		"availability": bson.M{"$ne": models.AvailabilityUnavailable},
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
	if service != "" {
		filter["services"] = service
	}

	opts := options.Find().SetLimit(int64(limit))
	cursor, err := or.collection.Find(ctx, filter, opts)
	if err != nil {
		logrus.Errorf("Failed to find nearby organizations: %v", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	organizations := []models.Organization{}
	if err := cursor.All(ctx, &organizations); err != nil {
		return nil, err
	}

	return organizations, nil
}

func (or *OrganizationRepository) List(ctx context.Context, filter bson.M, limit int) ([]models.Organization, error) {
	if filter == nil {
		filter = bson.M{}
	}
	filter["isActive"] = true

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := or.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	organizations := []models.Organization{}
	if err := cursor.All(ctx, &organizations); err != nil {
		return nil, err
	}

	return organizations, nil
}

func (or *OrganizationRepository) Update(ctx context.Context, id string, updateFields bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid organization ID")
	}

	updateFields["updatedAt"] = time.Now()

	result, err := or.collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateFields},
	)
	if err != nil {
		logrus.Errorf("Failed to update organization: %v", err)
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

// Deactivate soft-deletes an organization. Records stay behind so that
// historical notification references keep resolving.
func (or *OrganizationRepository) Deactivate(ctx context.Context, id string) error {
	return or.Update(ctx, id, bson.M{"isActive": false})
}

func (or *OrganizationRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "registrationNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{{Key: "availability", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "services", Value: 1}},
		},
	}

	_, err := or.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
