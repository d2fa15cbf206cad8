// Package mongodb implements the repository interfaces on MongoDB.
//
// The connection is an explicitly constructed handle owned by the server and
// injected into each repository — there is no package-level client. New
// verifies connectivity with a ping and ensures the unique username index
// before the server starts accepting requests.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// DB wraps a mongo client and the application database. UserRepo and
// DriveRepo share it; the server owns its lifecycle.
type DB struct {
	client *mongo.Client
	users  *mongo.Collection
	drives *mongo.Collection
}

// New connects to MongoDB, pings it, and prepares the collections.
func New(ctx context.Context, uri, dbName string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connecting: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: pinging: %w", err)
	}

	database := client.Database(dbName)
	db := &DB{
		client: client,
		users:  database.Collection("users"),
		drives: database.Collection("drives"),
	}

	if err := db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ensuring indexes: %w", err)
	}

	return db, nil
}

// ensureIndexes creates the indexes the repositories rely on. CreateOne is
// idempotent for an identical existing index.
func (db *DB) ensureIndexes(ctx context.Context) error {
	// Usernames are normalized to lowercase before writes, so a plain unique
	// index enforces case-insensitive uniqueness.
	_, err := db.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users username index: %w", err)
	}

	_, err = db.drives.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "companyName", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("drives companyName index: %w", err)
	}

	return nil
}

// Close disconnects the underlying client.
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}
