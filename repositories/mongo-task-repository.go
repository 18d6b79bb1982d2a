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

type MongoTaskRepository struct {
	coll *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{coll: db.Collection(collTasks)}
}

func (r *MongoTaskRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "task", ID: id.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("task.get", err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := bson.M{}
	if filter.ProjectID != nil {
		query["projectId"] = *filter.ProjectID
	}
	if filter.AssigneeID != nil {
		query["assigneeId"] = *filter.AssigneeID
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.DueBefore != nil {
		query["deadline"] = bson.M{"$lte": *filter.DueBefore}
	}

	cursor, err := r.coll.Find(ctx, query, oldestFirst())
	if err != nil {
		return nil, classifyMongo("task.list", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, classifyMongo("task.list", err)
	}
	return tasks, nil
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	created := *task
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	if created.Status == "" {
		created.Status = models.StatusPending
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		return nil, classifyMongo("task.create", err)
	}
	return &created, nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.TaskPatch) (*models.Task, error) {
	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}
	if patch.ClearAssignee {
		unset["assigneeId"] = ""
	} else if patch.AssigneeID != nil {
		set["assigneeId"] = *patch.AssigneeID
	}
	if patch.Deadline != nil {
		set["deadline"] = *patch.Deadline
	}
	if patch.EstimatedHours != nil {
		set["estimatedHours"] = *patch.EstimatedHours
	}
	if patch.ActualHours != nil {
		set["actualHours"] = *patch.ActualHours
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var updated models.Task
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnUpdated()).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "task", ID: id.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("task.update", err)
	}
	return &updated, nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classifyMongo("task.delete", err)
	}
	if result.DeletedCount == 0 {
		return &NotFoundError{Entity: "task", ID: id.Hex()}
	}
	return nil
}
