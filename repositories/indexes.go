package repositories

import (
	"context"
	"fmt"

	"coachingportal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection         = "users"
	coursesCollection       = "courses"
	artifactsCollection     = "artifacts"
	notificationsCollection = "notifications"
	photosCollection        = "photos"
)

// EnsureIndexes creates the indexes the query patterns rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "role", Value: 1}, {Key: "enrolled_courses", Value: 1}}},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			// at most one admin
			{Keys: bson.D{{Key: "role", Value: 1}}, Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"role": "admin"}).SetName("single_admin")},
		},
		coursesCollection: {
			{Keys: bson.D{{Key: "course_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		artifactsCollection: {
			{Keys: bson.D{{Key: "course_id", Value: 1}, {Key: "kind", Value: 1}, {Key: "published_at", Value: -1}}},
		},
		photosCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "dedupe_key", Value: 1}, {Key: "recipient_id", Value: 1}}},
		},
	}

	for name, specs := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}

	utils.LogInfo("MongoDB indexes ensured")
	return nil
}
