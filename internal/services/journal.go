package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rebecca-roussel/ecoride/internal/models"
	"github.com/rebecca-roussel/ecoride/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoJournal appends events to a MongoDB collection. Documents are never
// updated.
type MongoJournal struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoJournal(ctx context.Context, uri, database, collection string) (*MongoJournal, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateMany(connectCtx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "entity", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "at", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "at", Value: -1}}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("create journal indexes: %w", err)
	}

	return &MongoJournal{client: client, collection: coll, timeout: 5 * time.Second}, nil
}

// Record runs on its own deadline so a slow journal cannot hold a request.
func (j *MongoJournal) Record(ctx context.Context, event models.Event) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), j.timeout)
	defer cancel()
	_, err := j.collection.InsertOne(ctx, event)
	return err
}

func (j *MongoJournal) Close(ctx context.Context) error {
	return j.client.Disconnect(ctx)
}

// LogJournal writes events to the application log. Used when no MongoDB
// is configured.
type LogJournal struct {
	log *logger.Logger
}

func NewLogJournal(log *logger.Logger) *LogJournal {
	return &LogJournal{log: log}
}

func (j *LogJournal) Record(_ context.Context, event models.Event) error {
	j.log.WithFields(map[string]interface{}{
		"action":   event.Action,
		"entity":   event.Entity,
		"entityId": event.EntityID,
		"actorId":  event.ActorID,
		"payload":  event.Payload,
	}).Info("journal")
	return nil
}
