package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coachingportal/models"
	"coachingportal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CourseRepository struct {
	collection *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{collection: db.Collection(coursesCollection)}
}

func (r *CourseRepository) Insert(ctx context.Context, course *models.Course) error {
	if course.ID.IsZero() {
		course.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, course)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: course %s", services.ErrConflict, course.CourseID)
	}
	return err
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", id, services.ErrNotFound)
	}
	return r.findOne(ctx, bson.M{"_id": objID}, id)
}

func (r *CourseRepository) GetByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	return r.findOne(ctx, bson.M{"course_id": courseID}, courseID)
}

func (r *CourseRepository) findOne(ctx context.Context, filter bson.M, ref string) (*models.Course, error) {
	var course models.Course
	err := r.collection.FindOne(ctx, filter).Decode(&course)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("course %s: %w", ref, services.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Update(ctx context.Context, id string, fields services.CourseUpdate) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("course %s: %w", id, services.ErrNotFound)
	}

	update := bson.M{"$set": bson.M{
		"title":      fields.Title,
		"slug":       fields.Slug,
		"desc":       fields.Desc,
		"duration":   fields.Duration,
		"highlight":  fields.Highlight,
		"updated_at": fields.UpdatedAt,
	}}
	return r.updateOne(ctx, objID, update)
}

func (r *CourseRepository) Archive(ctx context.Context, id string, at time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("course %s: %w", id, services.ErrNotFound)
	}
	update := bson.M{"$set": bson.M{
		"status":      models.CourseStatusArchived,
		"archived_at": at,
	}}
	return r.updateOne(ctx, objID, update)
}

func (r *CourseRepository) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("course %s: %w", id.Hex(), services.ErrNotFound)
	}
	return nil
}

func (r *CourseRepository) List(ctx context.Context, status string) ([]models.Course, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	courses := []models.Course{}
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}
