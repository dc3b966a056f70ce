package users

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"job-selector/internal/shared/storage/mongodb"
)

// MongoRepo stores users in the users collection.
type MongoRepo struct {
	Coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{Coll: db.Collection(mongodb.UsersCollection)}
}

var _ Repo = (*MongoRepo)(nil)

// publicProjection hides the internal document id and the password hash.
var publicProjection = bson.D{{Key: "_id", Value: 0}, {Key: "password", Value: 0}}

func (r *MongoRepo) List(ctx context.Context) ([]User, error) {
	return r.find(ctx, bson.D{})
}

func (r *MongoRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.findOne(ctx, bson.D{{Key: "user_id", Value: userID}}, publicProjection)
}

func (r *MongoRepo) ListByRole(ctx context.Context, role string) ([]User, error) {
	pattern := bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(role)},
		{Key: "$options", Value: "i"},
	}
	return r.find(ctx, bson.D{{Key: "role", Value: pattern}})
}

func (r *MongoRepo) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]User, error) {
	window := bson.D{{Key: "$gte", Value: start.UTC()}, {Key: "$lt", Value: end.UTC()}}
	return r.find(ctx, bson.D{{Key: "created_at", Value: window}})
}

func (r *MongoRepo) GetLocalByUsername(ctx context.Context, username string) (User, error) {
	filter := bson.D{
		{Key: "username", Value: username},
		{Key: "auth_provider", Value: string(ProviderLocal)},
	}
	return r.findOne(ctx, filter, bson.D{{Key: "_id", Value: 0}})
}

func (r *MongoRepo) GetByGoogleID(ctx context.Context, googleID string) (User, error) {
	return r.findOne(ctx, bson.D{{Key: "google_id", Value: googleID}}, publicProjection)
}

func (r *MongoRepo) Create(ctx context.Context, user User) error {
	user.CreatedAt = user.CreatedAt.UTC()
	_, err := r.Coll.InsertOne(ctx, user)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "username"):
			return ErrDuplicateUsername
		case strings.Contains(msg, "google_id"):
			return errDuplicateGoogleID
		}
	}
	return err
}

func (r *MongoRepo) Update(ctx context.Context, userID string, changes Changes) (int64, error) {
	set := bson.D{}
	if changes.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *changes.Username})
	}
	if changes.PasswordHash != nil {
		set = append(set, bson.E{Key: "password", Value: *changes.PasswordHash})
	}
	if changes.Role != nil {
		set = append(set, bson.E{Key: "role", Value: *changes.Role})
	}
	if changes.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *changes.Email})
	}
	if changes.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *changes.Name})
	}
	set = append(set, bson.E{Key: "updated_at", Value: changes.UpdatedAt.UTC()})

	res, err := r.Coll.UpdateOne(ctx, bson.D{{Key: "user_id", Value: userID}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, ErrDuplicateUsername
		}
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoRepo) Delete(ctx context.Context, userID string) (int64, error) {
	res, err := r.Coll.DeleteOne(ctx, bson.D{{Key: "user_id", Value: userID}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoRepo) find(ctx context.Context, filter bson.D) ([]User, error) {
	opts := options.Find().
		SetProjection(publicProjection).
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "user_id", Value: 1}})
	cur, err := r.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepo) findOne(ctx context.Context, filter, projection bson.D) (User, error) {
	var user User
	err := r.Coll.FindOne(ctx, filter, options.FindOne().SetProjection(projection)).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}
