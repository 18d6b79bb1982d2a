package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names within the dashboard database.
const (
	collUsers         = "users"
	collProjects      = "projects"
	collTasks         = "tasks"
	collTimeEntries   = "time_entries"
	collActivityLog   = "activity_log"
	collNotifications = "notifications"
	collEmailJobs     = "email_jobs"
	collWidgetConfigs = "widget_configs"
)

// ConnectMongo connects to the durable store and verifies the connection
// with a ping, the way every service in this system bootstraps MongoDB.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, classifyMongo("mongo.connect", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, classifyMongo("mongo.ping", err)
	}
	return client, nil
}

func returnUpdated() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

// oldestFirst matches the in-memory backend's list ordering, so a list
// served by either store comes back in the same order.
func oldestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
}
