package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"project-pulse/microservices/dashboard-service/models"
)

type MongoNotificationRepository struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{coll: db.Collection(collNotifications)}
}

// EnsureIndexes creates the unique event key index. With it in place two
// concurrent dispatches of one event cannot both insert; the loser gets a
// duplicate key error, classified as a conflict.
func (r *MongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "eventKey", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return classifyMongo("notification.ensureIndexes", err)
	}
	return nil
}

func (r *MongoNotificationRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var n models.Notification
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "notification", ID: id.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("notification.get", err)
	}
	return &n, nil
}

func (r *MongoNotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	created := *n
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		return nil, classifyMongo("notification.create", err)
	}
	return &created, nil
}

func (r *MongoNotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, classifyMongo("notification.list", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, classifyMongo("notification.list", err)
	}
	return notifications, nil
}

func (r *MongoNotificationRepository) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID, "isRead": false})
	if err != nil {
		return 0, classifyMongo("notification.unreadCount", err)
	}
	return count, nil
}

func (r *MongoNotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var updated models.Notification
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isRead": true}}, returnUpdated()).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "notification", ID: id.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("notification.markRead", err)
	}
	return &updated, nil
}

func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.coll.UpdateMany(ctx, bson.M{"userId": userID, "isRead": false}, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return 0, classifyMongo("notification.markAllRead", err)
	}
	return result.ModifiedCount, nil
}

func (r *MongoNotificationRepository) ExistsForEvent(ctx context.Context, eventKey string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"eventKey": eventKey}, options.Count().SetLimit(1))
	if err != nil {
		return false, classifyMongo("notification.existsForEvent", err)
	}
	return count > 0, nil
}
