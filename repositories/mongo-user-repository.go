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

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(collUsers)}
}

func (r *MongoUserRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "user", ID: id.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("user.get", err)
	}
	return &user, nil
}

func (r *MongoUserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	query := bson.M{}
	if filter.Role != nil {
		query["role"] = *filter.Role
	}

	cursor, err := r.coll.Find(ctx, query, oldestFirst())
	if err != nil {
		return nil, classifyMongo("user.list", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, classifyMongo("user.list", err)
	}
	return users, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	created := *user
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, &created); err != nil {
		return nil, classifyMongo("user.create", err)
	}
	return &created, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.UserPatch) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.Position != nil {
		set["position"] = *patch.Position
	}
	if patch.Department != nil {
		set["department"] = *patch.Department
	}

	var updated models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdated()).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{Entity: "user", ID: id.Hex()}
	}
	if err != nil {
		return nil, classifyMongo("user.update", err)
	}
	return &updated, nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classifyMongo("user.delete", err)
	}
	if result.DeletedCount == 0 {
		return &NotFoundError{Entity: "user", ID: id.Hex()}
	}
	return nil
}
