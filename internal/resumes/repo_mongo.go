package resumes

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"job-selector/internal/shared/storage/mongodb"
)

// MongoRepo keeps each resume as one flat document: the caller fields next to
// resume_id, user_id, created_at and updated_at.
type MongoRepo struct {
	Coll *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{Coll: db.Collection(mongodb.ResumesCollection)}
}

var _ Repo = (*MongoRepo)(nil)

func (r *MongoRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	return r.find(ctx, bson.D{{Key: keyUserID, Value: userID}})
}

func (r *MongoRepo) GetByID(ctx context.Context, resumeID, userID string) (Resume, error) {
	var doc bson.M
	err := r.Coll.FindOne(ctx, ownerFilter(resumeID, userID)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return fromDocument(doc), nil
}

func (r *MongoRepo) ListByRole(ctx context.Context, role, userID string) ([]Resume, error) {
	pattern := bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(role)},
		{Key: "$options", Value: "i"},
	}
	return r.find(ctx, bson.D{{Key: keyUserID, Value: userID}, {Key: keyJobRole, Value: pattern}})
}

func (r *MongoRepo) ListCreatedBetween(ctx context.Context, userID string, start, end time.Time) ([]Resume, error) {
	window := bson.D{{Key: "$gte", Value: start.UTC()}, {Key: "$lt", Value: end.UTC()}}
	return r.find(ctx, bson.D{{Key: keyUserID, Value: userID}, {Key: keyCreatedAt, Value: window}})
}

func (r *MongoRepo) Create(ctx context.Context, resume Resume) (Resume, error) {
	doc := bson.D{
		{Key: keyResumeID, Value: resume.ResumeID},
		{Key: keyUserID, Value: resume.UserID},
		{Key: keyCreatedAt, Value: resume.CreatedAt.UTC()},
		{Key: keyUpdatedAt, Value: nil},
	}
	for k, v := range resume.Fields {
		doc = append(doc, bson.E{Key: k, Value: v})
	}
	res, err := r.Coll.InsertOne(ctx, doc)
	if err != nil {
		return Resume{}, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		resume.StorageID = oid.Hex()
	}
	return resume, nil
}

func (r *MongoRepo) Update(ctx context.Context, resumeID, userID string, update Update) (int64, error) {
	set := bson.D{}
	for k, v := range update.Fields {
		set = append(set, bson.E{Key: k, Value: v})
	}
	set = append(set, bson.E{Key: keyUpdatedAt, Value: update.UpdatedAt.UTC()})

	res, err := r.Coll.UpdateOne(ctx, ownerFilter(resumeID, userID), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoRepo) Delete(ctx context.Context, resumeID, userID string) (int64, error) {
	res, err := r.Coll.DeleteOne(ctx, ownerFilter(resumeID, userID))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoRepo) find(ctx context.Context, filter bson.D) ([]Resume, error) {
	opts := options.Find().SetSort(bson.D{{Key: keyCreatedAt, Value: 1}, {Key: keyResumeID, Value: 1}})
	cur, err := r.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Resume, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDocument(doc))
	}
	return out, nil
}

func ownerFilter(resumeID, userID string) bson.D {
	return bson.D{{Key: keyResumeID, Value: resumeID}, {Key: keyUserID, Value: userID}}
}

func fromDocument(doc bson.M) Resume {
	resume := Resume{Fields: map[string]any{}}
	for k, v := range doc {
		switch k {
		case keyMongoID:
			if oid, ok := v.(primitive.ObjectID); ok {
				resume.StorageID = oid.Hex()
			}
		case keyResumeID:
			resume.ResumeID, _ = v.(string)
		case keyUserID:
			resume.UserID, _ = v.(string)
		case keyCreatedAt:
			if t, ok := asTime(v); ok {
				resume.CreatedAt = t
			}
		case keyUpdatedAt:
			if t, ok := asTime(v); ok {
				resume.UpdatedAt = &t
			}
		default:
			resume.Fields[k] = normalize(v)
		}
	}
	resume.JobRole, _ = jobRoleOf(resume.Fields)
	return resume
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC(), true
	case time.Time:
		return t.UTC(), true
	}
	return time.Time{}, false
}

// normalize converts driver types into plain JSON-friendly values.
func normalize(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = normalize(inner)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = normalize(inner)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	}
	return v
}
