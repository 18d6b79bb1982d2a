package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"project-pulse/microservices/dashboard-service/models"
)

// MongoActivityRepository only ever inserts and reads; the append-only
// contract is enforced by omission.
type MongoActivityRepository struct {
	coll *mongo.Collection
}

func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{coll: db.Collection(collActivityLog)}
}

func (r *MongoActivityRepository) Append(ctx context.Context, entry *models.ActivityLogEntry) (*models.ActivityLogEntry, error) {
	created := *entry
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	if created.Timestamp.IsZero() {
		created.Timestamp = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		return nil, classifyMongo("activity.append", err)
	}
	return &created, nil
}

func (r *MongoActivityRepository) Recent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	return r.find(ctx, "activity.recent", bson.M{}, limit)
}

func (r *MongoActivityRepository) ByEntity(ctx context.Context, entityType, entityID string, limit int) ([]models.ActivityLogEntry, error) {
	return r.find(ctx, "activity.byEntity", bson.M{"entityType": entityType, "entityId": entityID}, limit)
}

func (r *MongoActivityRepository) ByActor(ctx context.Context, actorID primitive.ObjectID, limit int) ([]models.ActivityLogEntry, error) {
	return r.find(ctx, "activity.byActor", bson.M{"actorId": actorID}, limit)
}

func (r *MongoActivityRepository) find(ctx context.Context, op string, query bson.M, limit int) ([]models.ActivityLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, classifyMongo(op, err)
	}
	defer cursor.Close(ctx)

	var entries []models.ActivityLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, classifyMongo(op, err)
	}
	return entries, nil
}
