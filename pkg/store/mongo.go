package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tagrel/tagrel/pkg/observability"
)

// MongoStore stores snapshots as documents in a MongoDB collection, one
// document per key.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string

	// Database is the database name. Defaults to "tagrel".
	Database string

	// Collection is the collection name. Defaults to "snapshots".
	Collection string
}

// snapshotDoc is the stored document shape.
type snapshotDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	db := cfg.Database
	if db == "" {
		db = "tagrel"
	}
	coll := cfg.Collection
	if coll == "" {
		coll = "snapshots"
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(db).Collection(coll),
	}, nil
}

// Save writes a snapshot under the given key.
func (s *MongoStore) Save(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	doc := snapshotDoc{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		observability.Store().OnError("mongo", "save", err)
		return err
	}
	observability.Store().OnSave("mongo", key, len(data), time.Since(start))
	return nil
}

// Load retrieves a snapshot by key.
func (s *MongoStore) Load(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	var doc snapshotDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		observability.Store().OnError("mongo", "load", err)
		return nil, err
	}
	observability.Store().OnLoad("mongo", key, len(doc.Data), time.Since(start))
	return doc.Data, nil
}

// Delete removes a snapshot. Deleting a missing key is not an error.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		observability.Store().OnError("mongo", "delete", err)
		return err
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
