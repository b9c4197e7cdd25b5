package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Store on a single MongoDB database.
type Mongo struct {
	client     *mongo.Client
	users      *mongo.Collection
	posts      *mongo.Collection
	comments   *mongo.Collection
	statuses   *mongo.Collection
	products   *mongo.Collection
	categories *mongo.Collection
	news       *mongo.Collection
	log        *logrus.Logger
}

var _ Store = (*Mongo)(nil)

// Connect dials MongoDB, pings it and binds the collections.
func Connect(ctx context.Context, uri, dbName string, log *logrus.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(dbName)
	m := &Mongo{
		client:     client,
		users:      db.Collection("users"),
		posts:      db.Collection("posts"),
		comments:   db.Collection("comments"),
		statuses:   db.Collection("statuses"),
		products:   db.Collection("products"),
		categories: db.Collection("categories"),
		news:       db.Collection("news"),
		log:        log,
	}

	log.WithField("database", dbName).Info("Connected to MongoDB successfully")
	return m, nil
}

// EnsureIndexes creates the unique and lookup indexes the accessors rely on.
// Failures are logged, not fatal, so a read-only replica still serves.
func (m *Mongo) EnsureIndexes(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{m.users, mongo.IndexModel{
			Keys:    bson.D{{Key: "clerkId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{m.users, mongo.IndexModel{
			Keys: bson.D{{Key: "nickName", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"nickName": bson.M{"$type": "string", "$gt": ""}}),
		}},
		{m.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}}},
		{m.posts, mongo.IndexModel{Keys: bson.D{{Key: "levelValue", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{m.comments, mongo.IndexModel{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{m.categories, mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
	}
	for _, s := range indexes {
		if _, err := s.coll.Indexes().CreateOne(ctx, s.model); err != nil {
			m.log.WithError(err).WithField("collection", s.coll.Name()).Warn("failed to create index")
		}
	}
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return err
	}
	m.log.Info("Disconnected from MongoDB")
	return nil
}

type sliceFiller interface {
	EnsureSlices()
}

func fill(doc interface{}) {
	if f, ok := doc.(sliceFiller); ok {
		f.EnsureSlices()
	}
}

func objectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return id, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, mapErr(err)
	}
	fill(&out)
	return &out, nil
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, hex string) (*T, error) {
	id, err := objectID(hex)
	if err != nil {
		return nil, err
	}
	return findOne[T](ctx, coll, bson.M{"_id": id})
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	for i := range out {
		fill(&out[i])
	}
	return out, nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	fill(doc)
	_, err := coll.InsertOne(ctx, doc)
	return mapErr(err)
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, doc interface{}) error {
	fill(doc)
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, hex string) error {
	id, err := objectID(hex)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func newest() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

// stamp sets creation metadata on a new document.
func stamp(id *primitive.ObjectID, created, updated *time.Time) {
	now := time.Now().UTC()
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if created.IsZero() {
		*created = now
	}
	*updated = now
}
