package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"broadcast/models"
)

func (m *Mongo) CreatePost(ctx context.Context, p *models.Post) error {
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return insert(ctx, m.posts, p)
}

func (m *Mongo) FindPost(ctx context.Context, id string) (*models.Post, error) {
	return findByID[models.Post](ctx, m.posts, id)
}

func (m *Mongo) ListPosts(ctx context.Context, f PostFilter) ([]models.Post, error) {
	// $ne true also matches legacy documents without the flag
	filter := bson.M{"isDeleted": bson.M{"$ne": true}}
	if f.ByLevel {
		levels := f.Levels
		if levels == nil {
			levels = []string{}
		}
		filter["levelValue"] = bson.M{"$in": levels}
	}
	if f.ExcludeHome {
		filter["levelType"] = bson.M{"$ne": models.LevelHome}
	}
	return findMany[models.Post](ctx, m.posts, filter, newest())
}

func (m *Mongo) UpdatePost(ctx context.Context, p *models.Post) error {
	p.EnsureSlices()
	p.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"userId":      p.UserID,
		"user":        p.User,
		"caption":     p.Caption,
		"media":       p.Media,
		"levelType":   p.LevelType,
		"levelValue":  p.LevelValue,
		"linkPreview": p.LinkPreview,
		"likes":       p.Likes,
		"recasts":     p.Recasts,
		"isDeleted":   p.IsDeleted,
		"updatedAt":   p.UpdatedAt,
	}
	res := m.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if err := res.Decode(p); err != nil {
		return mapErr(err)
	}
	p.EnsureSlices()
	return nil
}

func (m *Mongo) IncrementPostViews(ctx context.Context, id string) (*models.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	res := m.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"views": 1}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var p models.Post
	if err := res.Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	p.EnsureSlices()
	return &p, nil
}

func (m *Mongo) IncrementCommentsCount(ctx context.Context, id string, delta int) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := m.posts.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"commentsCount": delta}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) CommentCounters(ctx context.Context) (map[string]int64, error) {
	type counter struct {
		ID            primitive.ObjectID `bson:"_id"`
		CommentsCount int64              `bson:"commentsCount"`
	}
	opts := options.Find().SetProjection(bson.M{"commentsCount": 1})
	cursor, err := m.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make(map[string]int64)
	for cursor.Next(ctx) {
		var c counter
		if err := cursor.Decode(&c); err != nil {
			return nil, err
		}
		out[c.ID.Hex()] = c.CommentsCount
	}
	return out, cursor.Err()
}

func (m *Mongo) SetCommentsCount(ctx context.Context, id string, expected, n int64) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}
	filter := bson.M{"_id": oid, "commentsCount": expected}
	if expected == 0 {
		// documents written before the counter existed read back as 0
		filter["commentsCount"] = bson.M{"$in": bson.A{0, nil}}
	}
	res, err := m.posts.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"commentsCount": n}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
