package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coachingportal/models"
	"coachingportal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.EnrolledCourses == nil {
		user.EnrolledCourses = []string{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: user %s", services.ErrConflict, user.ID)
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user %s: %w", uid, services.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmailOrMobile(ctx context.Context, email, mobile string) (bool, bool, error) {
	emailTaken, err := r.exists(ctx, bson.M{"email": email})
	if err != nil {
		return false, false, err
	}

	mobileTaken := false
	if mobile != "" {
		if mobileTaken, err = r.exists(ctx, bson.M{"mobile": mobile}); err != nil {
			return false, false, err
		}
	}
	return emailTaken, mobileTaken, nil
}

func (r *UserRepository) AdminExists(ctx context.Context) (bool, error) {
	return r.exists(ctx, bson.M{"role": models.RoleAdmin})
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) AddEnrollment(ctx context.Context, uid, courseID string) error {
	return r.updateEnrollment(ctx, uid, bson.M{
		"$addToSet": bson.M{"enrolled_courses": courseID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *UserRepository) RemoveEnrollment(ctx context.Context, uid, courseID string) error {
	return r.updateEnrollment(ctx, uid, bson.M{
		"$pull": bson.M{"enrolled_courses": courseID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *UserRepository) updateEnrollment(ctx context.Context, uid string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", uid, services.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) ListStudents(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "role": 1, "enrolled_courses": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"role": models.RoleStudent}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) StudentIDsEnrolledIn(ctx context.Context, courseID string) ([]string, error) {
	filter := bson.M{
		"role":             models.RoleStudent,
		"enrolled_courses": courseID, // array membership
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cursor.Err()
}

func (r *UserRepository) Watch(ctx context.Context, uid string) (<-chan struct{}, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": uid}}},
	}
	return watchSignals(ctx, r.collection, pipeline)
}
