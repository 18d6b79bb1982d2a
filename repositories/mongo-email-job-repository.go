package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"project-pulse/microservices/dashboard-service/models"
)

type MongoEmailJobRepository struct {
	coll *mongo.Collection
}

func NewMongoEmailJobRepository(db *mongo.Database) *MongoEmailJobRepository {
	return &MongoEmailJobRepository{coll: db.Collection(collEmailJobs)}
}

func (r *MongoEmailJobRepository) Get(ctx context.Context, id string) (*models.EmailJob, error) {
	var job models.EmailJob
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "email job", ID: id}
	}
	if err != nil {
		return nil, classifyMongo("emailJob.get", err)
	}
	return &job, nil
}

func (r *MongoEmailJobRepository) Create(ctx context.Context, job *models.EmailJob) (*models.EmailJob, error) {
	created := *job
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Status == "" {
		created.Status = models.EmailQueued
	}

	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		return nil, classifyMongo("emailJob.create", err)
	}
	return &created, nil
}

// SetStatus moves a job through its state machine. Terminal jobs are
// immutable, so the filter refuses to touch sent or failed rows.
func (r *MongoEmailJobRepository) SetStatus(ctx context.Context, id string, status models.EmailJobStatus, attempts int, lastError string) error {
	filter := bson.M{"_id": id, "status": models.EmailQueued}
	set := bson.M{"status": status, "attempts": attempts, "updatedAt": time.Now()}
	if lastError != "" {
		set["lastError"] = lastError
	}

	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return classifyMongo("emailJob.setStatus", err)
	}
	if result.MatchedCount == 0 {
		return &NotFoundError{Entity: "email job", ID: id}
	}
	return nil
}

func (r *MongoEmailJobRepository) ListByStatus(ctx context.Context, status models.EmailJobStatus) ([]models.EmailJob, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, classifyMongo("emailJob.listByStatus", err)
	}
	defer cursor.Close(ctx)

	var jobs []models.EmailJob
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, classifyMongo("emailJob.listByStatus", err)
	}
	return jobs, nil
}
