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

type AdminRepository struct {
	collection *mongo.Collection
}

func NewAdminRepository(database *mongo.Database) *AdminRepository {
	return &AdminRepository{
		collection: database.Collection("admins"),
	}
}

func (ar *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	admin.ID = primitive.NewObjectID()
	admin.CreatedAt = time.Now()
	admin.UpdatedAt = time.Now()
	admin.IsActive = true

	if admin.Role == "" {
		admin.Role = models.AdminRoleOperator
	}

	_, err := ar.collection.InsertOne(ctx, admin)
	if err != nil {
		logrus.Errorf("Failed to create admin: %v", err)
		return err
	}

	return nil
}

func (ar *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.New("invalid admin ID")
	}

	var admin models.Admin
	err = ar.collection.FindOne(ctx, bson.M{"_id": objectID, "isActive": true}).Decode(&admin)
	if err != nil {
		return nil, err
	}

	return &admin, nil
}

func (ar *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	err := ar.collection.FindOne(ctx, bson.M{"email": email, "isActive": true}).Decode(&admin)
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (ar *AdminRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := ar.collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ar *AdminRepository) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errors.New("invalid admin ID")
	}

	_, err = ar.collection.UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"lastLogin": time.Now(), "updatedAt": time.Now()}},
	)
	return err
}

func (ar *AdminRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := ar.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
