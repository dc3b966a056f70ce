package mongodb

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestConnectRequiresURIAndDatabase(t *testing.T) {
	if _, _, err := Connect(context.Background(), "", "job_selector_db"); err == nil {
		t.Fatalf("expected error for empty uri")
	}
	if _, _, err := Connect(context.Background(), "mongodb://localhost:27017", " "); err == nil {
		t.Fatalf("expected error for empty database name")
	}
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates user and resume indexes", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "createdCollectionAutomatically", Value: true}),
			mtest.CreateSuccessResponse(bson.E{Key: "createdCollectionAutomatically", Value: true}),
		)
		if err := EnsureIndexes(context.Background(), mt.DB); err != nil {
			mt.Fatalf("ensure indexes: %v", err)
		}
	})

	mt.Run("surfaces command errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index options conflict",
		}))
		if err := EnsureIndexes(context.Background(), mt.DB); err == nil {
			mt.Fatalf("expected error")
		}
	})
}
