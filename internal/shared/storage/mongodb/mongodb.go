package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"job-selector/internal/shared/telemetry"
)

// Collection names.
const (
	UsersCollection   = "users"
	ResumesCollection = "resumes"
)

// Connect opens a client for uri, pings it and returns the named database.
// Callers own the client and must Disconnect it on shutdown.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if strings.TrimSpace(database) == "" {
		return nil, nil, fmt.Errorf("mongo database name is empty")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(5 * time.Second)
	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	telemetry.Info("mongo.connected", map[string]any{"database": database})
	return client, client.Database(database), nil
}

// EnsureIndexes creates the indexes the user and resume stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "google_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	}
	if _, err := db.Collection(UsersCollection).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	resumes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "resume_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}
	if _, err := db.Collection(ResumesCollection).Indexes().CreateMany(ctx, resumes); err != nil {
		return fmt.Errorf("create resume indexes: %w", err)
	}
	return nil
}
