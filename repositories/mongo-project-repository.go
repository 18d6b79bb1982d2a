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

type MongoProjectRepository struct {
	coll *mongo.Collection
}

func NewMongoProjectRepository(db *mongo.Database) *MongoProjectRepository {
	return &MongoProjectRepository{coll: db.Collection(collProjects)}
}

func (r *MongoProjectRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "project", ID: id.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("project.get", err)
	}
	return &project, nil
}

func (r *MongoProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.ClientID != nil {
		query["clientId"] = *filter.ClientID
	}
	if filter.MemberID != nil {
		query["team"] = *filter.MemberID
	}

	cursor, err := r.coll.Find(ctx, query, oldestFirst())
	if err != nil {
		return nil, classifyMongo("project.list", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, classifyMongo("project.list", err)
	}
	return projects, nil
}

func (r *MongoProjectRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	created := *project
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	if created.Team == nil {
		created.Team = []primitive.ObjectID{}
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		return nil, classifyMongo("project.create", err)
	}
	return &created, nil
}

func (r *MongoProjectRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.ProjectPatch) (*models.Project, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Progress != nil {
		set["progress"] = *patch.Progress
	}
	if patch.Budget != nil {
		set["budget"] = *patch.Budget
	}
	if patch.Spent != nil {
		set["spent"] = *patch.Spent
	}
	if patch.ClientID != nil {
		set["clientId"] = *patch.ClientID
	}
	if patch.Team != nil {
		set["team"] = *patch.Team
	}
	if patch.Priority != nil {
		set["priority"] = *patch.Priority
	}

	var updated models.Project
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdated()).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "project", ID: id.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("project.update", err)
	}
	return &updated, nil
}

func (r *MongoProjectRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classifyMongo("project.delete", err)
	}
	if result.DeletedCount == 0 {
		return &NotFoundError{Entity: "project", ID: id.Hex()}
	}
	return nil
}
