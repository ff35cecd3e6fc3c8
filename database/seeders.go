package database

import (
	"context"
	"time"

	"rescueline/models"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	Name        string
	Description string
	Seed        func(*mongo.Database) error
}

var seeders = []Seeder{
	{
		Name:        "default_admin",
		Description: "Create the default super admin account",
		Seed:        seedDefaultAdmin,
	},
}

// RunSeeders executes seeders that have not yet been recorded.
func RunSeeders(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seedersCol := db.Collection("seeders")

	for _, seeder := range seeders {
		count, err := seedersCol.CountDocuments(ctx, bson.M{"name": seeder.Name})
		if err == nil && count > 0 {
			continue
		}

		logrus.Infof("Running seeder: %s", seeder.Name)

		if err := seeder.Seed(db); err != nil {
			logrus.Errorf("Seeder %s failed: %v", seeder.Name, err)
			continue
		}

		if _, err := seedersCol.InsertOne(ctx, bson.M{
			"name":      seeder.Name,
			"createdAt": time.Now(),
		}); err != nil {
			logrus.Warnf("Failed to record seeder %s: %v", seeder.Name, err)
		}
	}

	return nil
}

// seedDefaultAdmin provisions the first control-room account. The password
// must be changed after first login.
func seedDefaultAdmin(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admins := db.Collection("admins")

	count, err := admins.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := models.Admin{
		Email:     "admin@rescueline.app",
		Password:  string(hashedPassword),
		Name:      "Default Admin",
		Role:      models.AdminRoleSuperAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := admins.InsertOne(ctx, admin); err != nil {
		return err
	}

	logrus.Warn("Default admin created (admin@rescueline.app), change the password immediately")
	return nil
}
