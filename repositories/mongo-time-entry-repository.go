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

type MongoTimeEntryRepository struct {
	coll *mongo.Collection
}

func NewMongoTimeEntryRepository(db *mongo.Database) *MongoTimeEntryRepository {
	return &MongoTimeEntryRepository{coll: db.Collection(collTimeEntries)}
}

func (r *MongoTimeEntryRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "time entry", ID: id.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("timeEntry.get", err)
	}
	return &entry, nil
}

func (r *MongoTimeEntryRepository) List(ctx context.Context, filter TimeEntryFilter) ([]models.TimeEntry, error) {
	query := bson.M{}
	if filter.TaskID != nil {
		query["taskId"] = *filter.TaskID
	}
	if filter.UserID != nil {
		query["userId"] = *filter.UserID
	}
	dateRange := bson.M{}
	if filter.From != nil {
		dateRange["$gte"] = *filter.From
	}
	if filter.To != nil {
		dateRange["$lte"] = *filter.To
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	cursor, err := r.coll.Find(ctx, query, oldestFirst())
	if err != nil {
		return nil, classifyMongo("timeEntry.list", err)
	}
	defer cursor.Close(ctx)

	var entries []models.TimeEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, classifyMongo("timeEntry.list", err)
	}
	return entries, nil
}

func (r *MongoTimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) (*models.TimeEntry, error) {
	created := *entry
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		return nil, classifyMongo("timeEntry.create", err)
	}
	return &created, nil
}

func (r *MongoTimeEntryRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.TimeEntryPatch) (*models.TimeEntry, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Minutes != nil {
		set["minutes"] = *patch.Minutes
	}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}

	var updated models.TimeEntry
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdated()).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "time entry", ID: id.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("timeEntry.update", err)
	}
	return &updated, nil
}

func (r *MongoTimeEntryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classifyMongo("timeEntry.delete", err)
	}
	if result.DeletedCount == 0 {
		return &NotFoundError{Entity: "time entry", ID: id.Hex()}
	}
	return nil
}
