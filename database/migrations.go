package database

import (
	"context"
	"fmt"
	"time"

	"rescueline/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
}

type migrationRecord struct {
	Version   int       `bson:"version"`
	AppliedAt time.Time `bson:"appliedAt"`
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Create users collection with indexes",
		Up:          createUserIndexes,
	},
	{
		Version:     2,
		Description: "Create organizations collection with geospatial indexes",
		Up:          createOrganizationIndexes,
	},
	{
		Version:     3,
		Description: "Create volunteers collection with geospatial indexes",
		Up:          createVolunteerIndexes,
	},
	{
		Version:     4,
		Description: "Create emergency requests collection with indexes",
		Up:          createEmergencyIndexes,
	},
	{
		Version:     5,
		Description: "Create admins collection with indexes",
		Up:          createAdminIndexes,
	},
}

// RunMigrations applies any migrations not yet recorded in the migrations
// collection.
func RunMigrations(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	collection := db.Collection("migrations")

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create migrations index: %w", err)
	}

	for _, migration := range migrations {
		var existing migrationRecord
		err := collection.FindOne(ctx, bson.M{"version": migration.Version}).Decode(&existing)
		if err == nil {
			continue
		}
		if err != mongo.ErrNoDocuments {
			return fmt.Errorf("failed to check migration %d: %w", migration.Version, err)
		}

		logrus.Infof("Applying migration %d: %s", migration.Version, migration.Description)

		if err := migration.Up(db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		_, err = collection.InsertOne(ctx, migrationRecord{
			Version:   migration.Version,
			AppliedAt: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func createUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return repositories.NewUserRepository(db).EnsureIndexes(ctx)
}

func createOrganizationIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return repositories.NewOrganizationRepository(db).EnsureIndexes(ctx)
}

func createVolunteerIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return repositories.NewVolunteerRepository(db).EnsureIndexes(ctx)
}

func createEmergencyIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return repositories.NewEmergencyRepository(db).EnsureIndexes(ctx)
}

func createAdminIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return repositories.NewAdminRepository(db).EnsureIndexes(ctx)
}
