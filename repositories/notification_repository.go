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

type NotificationRepository struct {
	client       *mongo.Client
	collection   *mongo.Collection
	transactions bool
}

// NewNotificationRepository builds the store. With transactions enabled each batch
// commits inside one multi-document transaction (requires a replica set).
func NewNotificationRepository(db *mongo.Database, transactions bool) *NotificationRepository {
	return &NotificationRepository{
		client:       db.Client(),
		collection:   db.Collection(notificationsCollection),
		transactions: transactions,
	}
}

func (r *NotificationRepository) InsertBatch(ctx context.Context, batch []models.Notification) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	docs, ids := prepareBatch(batch, time.Now().UTC())
	opts := options.InsertMany().SetOrdered(true)

	if !r.transactions {
		return r.insertWithRollback(ctx, docs, ids, opts)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.collection.InsertMany(sc, docs, opts)
	})
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// insertWithRollback deletes whatever an ordered InsertMany managed to write before it
// failed, so the chunk stays all-or-nothing without a transaction. If the undo fails the
// surviving prefix is counted and returned with the error.
func (r *NotificationRepository) insertWithRollback(ctx context.Context, docs []interface{}, ids []primitive.ObjectID, opts *options.InsertManyOptions) (int, error) {
	_, err := r.collection.InsertMany(ctx, docs, opts)
	if err == nil {
		return len(docs), nil
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": bson.M{"$in": ids}}
	if _, delErr := r.collection.DeleteMany(cleanupCtx, filter); delErr != nil {
		stored := insertedBeforeFailure(err)
		if count, countErr := r.collection.CountDocuments(cleanupCtx, filter); countErr == nil {
			stored = int(count)
		}
		return stored, fmt.Errorf("%w (rollback failed: %v)", err, delErr)
	}
	return 0, err
}

// prepareBatch assigns ids and the shared commit timestamp.
func prepareBatch(batch []models.Notification, now time.Time) ([]interface{}, []primitive.ObjectID) {
	docs := make([]interface{}, 0, len(batch))
	ids := make([]primitive.ObjectID, 0, len(batch))
	for i := range batch {
		n := batch[i]
		n.ID = primitive.NewObjectID()
		n.CreatedAt = now
		docs = append(docs, n)
		ids = append(ids, n.ID)
	}
	return docs, ids
}

// insertedBeforeFailure is the length of the prefix an ordered insert wrote before its
// first write error. Errors without write detail count as nothing written.
func insertedBeforeFailure(err error) int {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return 0
	}
	first := bwe.WriteErrors[0].Index
	for _, we := range bwe.WriteErrors[1:] {
		if we.Index < first {
			first = we.Index
		}
	}
	return first
}

func (r *NotificationRepository) FindByRecipient(ctx context.Context, recipientID string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"recipient_id": recipientID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// ownedFilter matches one record of one recipient. ok is false for malformed ids.
func ownedFilter(id, recipientID string) (bson.M, bool) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": objID, "recipient_id": recipientID}, true
}

// parseObjectIDs drops ids that are not valid hex.
func parseObjectIDs(ids []string) []primitive.ObjectID {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if objID, err := primitive.ObjectIDFromHex(id); err == nil {
			objIDs = append(objIDs, objID)
		}
	}
	return objIDs
}

func (r *NotificationRepository) FindOwned(ctx context.Context, id, recipientID string) (*models.Notification, error) {
	filter, ok := ownedFilter(id, recipientID)
	if !ok {
		return nil, fmt.Errorf("notification %s: %w", id, services.ErrNotFound)
	}

	var n models.Notification
	err := r.collection.FindOne(ctx, filter).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("notification %s: %w", id, services.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteOwned treats malformed and missing ids alike: nothing to delete.
func (r *NotificationRepository) DeleteOwned(ctx context.Context, id, recipientID string) (bool, error) {
	filter, ok := ownedFilter(id, recipientID)
	if !ok {
		return false, nil
	}
	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *NotificationRepository) DeleteManyOwned(ctx context.Context, ids []string, recipientID string) (int64, error) {
	objIDs := parseObjectIDs(ids)
	if len(objIDs) == 0 {
		return 0, nil
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{
		"_id":          bson.M{"$in": objIDs},
		"recipient_id": recipientID,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) (bool, error) {
	filter, ok := ownedFilter(id, recipientID)
	if !ok {
		return false, nil
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *NotificationRepository) RecipientsWithDedupeKey(ctx context.Context, key string, recipients []string) ([]string, error) {
	found, err := r.collection.Distinct(ctx, "recipient_id", bson.M{
		"dedupe_key":   key,
		"recipient_id": bson.M{"$in": recipients},
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(found))
	for _, v := range found {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// Watch signals on inserts and updates for the recipient. Deletes carry no document,
// so every delete on the collection signals and the reader re-queries.
func (r *NotificationRepository) Watch(ctx context.Context, recipientID string) (<-chan struct{}, error) {
	return watchSignals(ctx, r.collection, recipientWatchPipeline(recipientID))
}

func recipientWatchPipeline(recipientID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"fullDocument.recipient_id": recipientID},
			bson.M{"operationType": "delete"},
		}}}},
	}
}
