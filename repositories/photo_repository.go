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

type PhotoRepository struct {
	collection *mongo.Collection
}

func NewPhotoRepository(db *mongo.Database) *PhotoRepository {
	return &PhotoRepository{collection: db.Collection(photosCollection)}
}

func (r *PhotoRepository) Insert(ctx context.Context, photo *models.Photo) error {
	if photo.ID.IsZero() {
		photo.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, photo)
	return err
}

func (r *PhotoRepository) GetByID(ctx context.Context, id string) (*models.Photo, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("photo %s: %w", id, services.ErrNotFound)
	}

	var photo models.Photo
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&photo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("photo %s: %w", id, services.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("photo %s: %w", id, services.ErrNotFound)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

func (r *PhotoRepository) List(ctx context.Context) ([]models.Photo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	photos := []models.Photo{}
	if err := cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}
