package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"project-pulse/microservices/dashboard-service/models"
)

// MongoWidgetRepository stores one WidgetConfig document per user.
type MongoWidgetRepository struct {
	coll *mongo.Collection
}

func NewMongoWidgetRepository(db *mongo.Database) *MongoWidgetRepository {
	return &MongoWidgetRepository{coll: db.Collection(collWidgetConfigs)}
}

func (r *MongoWidgetRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.WidgetConfig, error) {
	var cfg models.WidgetConfig
	err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "widget config", ID: userID.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("widgetConfig.getByUser", err)
	}
	return &cfg, nil
}

func (r *MongoWidgetRepository) Create(ctx context.Context, cfg *models.WidgetConfig) (*models.WidgetConfig, error) {
	created := *cfg
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	if created.Widgets == nil {
		created.Widgets = []models.Widget{}
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		return nil, classifyMongo("widgetConfig.create", err)
	}
	return &created, nil
}

func (r *MongoWidgetRepository) Replace(ctx context.Context, cfg *models.WidgetConfig) (*models.WidgetConfig, error) {
	replaced := *cfg
	replaced.UpdatedAt = time.Now()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"userId": replaced.UserID}, &replaced)
	if err != nil {
		return nil, classifyMongo("widgetConfig.replace", err)
	}
	if result.MatchedCount == 0 {
		return nil, &NotFoundError{Entity: "widget config", ID: replaced.UserID.Hex()}
	}
	return &replaced, nil
}
