package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client   *mongo.Client
	database *mongo.Database
)

// Connect establishes the MongoDB connection, runs migrations and seeds the
// default admin account.
func Connect(databaseURL string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(databaseURL)
	clientOptions.SetMaxPoolSize(100)
	clientOptions.SetMinPoolSize(5)
	clientOptions.SetMaxConnIdleTime(30 * time.Second)
	clientOptions.SetRetryWrites(true)
	clientOptions.SetRetryReads(true)
	clientOptions.SetReadPreference(readpref.PrimaryPreferred())

	var err error
	client, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	dbName := extractDatabaseName(databaseURL)
	database = client.Database(dbName)

	logrus.Info("Connected to MongoDB")
	logrus.Infof("Database: %s", dbName)

	if err := RunMigrations(database); err != nil {
		logrus.Warnf("Migration warning: %v", err)
	}

	if err := RunSeeders(database); err != nil {
		logrus.Warnf("Seeder warning: %v", err)
	}

	return database, nil
}

// Disconnect closes the MongoDB connection.
func Disconnect() error {
	if client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		logrus.Errorf("Error disconnecting from MongoDB: %v", err)
		return err
	}

	logrus.Info("Disconnected from MongoDB")
	return nil
}

func GetDatabase() *mongo.Database {
	return database
}

// extractDatabaseName pulls the database name from the MongoDB URI path,
// defaulting to rescueline.
func extractDatabaseName(uri string) string {
	defaultDB := "rescueline"

	for i := len(uri) - 1; i >= 0; i-- {
		if uri[i] == '/' {
			if i < len(uri)-1 {
				dbName := uri[i+1:]
				for j, char := range dbName {
					if char == '?' || char == '&' {
						dbName = dbName[:j]
						break
					}
				}
				if dbName != "" && dbName != "admin" {
					return dbName
				}
			}
			break
		}
	}

	return defaultDB
}
