package repositories

import (
	"context"
	"errors"
	"fmt"

	"coachingportal/models"
	"coachingportal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ArtifactRepository struct {
	collection *mongo.Collection
}

func NewArtifactRepository(db *mongo.Database) *ArtifactRepository {
	return &ArtifactRepository{collection: db.Collection(artifactsCollection)}
}

func (r *ArtifactRepository) Insert(ctx context.Context, artifact *models.Artifact) error {
	if artifact.ID.IsZero() {
		artifact.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, artifact)
	return err
}

func (r *ArtifactRepository) GetByID(ctx context.Context, id string) (*models.Artifact, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", id, services.ErrNotFound)
	}

	var artifact models.Artifact
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&artifact)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("artifact %s: %w", id, services.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

func (r *ArtifactRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("artifact %s: %w", id, services.ErrNotFound)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

func (r *ArtifactRepository) ListByCourse(ctx context.Context, courseID string, kind models.NotificationKind) ([]models.Artifact, error) {
	filter := bson.M{"course_id": courseID}
	if kind != "" {
		filter["kind"] = kind
	}
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	artifacts := []models.Artifact{}
	if err := cursor.All(ctx, &artifacts); err != nil {
		return nil, err
	}
	return artifacts, nil
}
