package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"broadcast/models"
)

func (m *Mongo) CreateComment(ctx context.Context, c *models.Comment) error {
	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return insert(ctx, m.comments, c)
}

func (m *Mongo) FindComment(ctx context.Context, id string) (*models.Comment, error) {
	return findByID[models.Comment](ctx, m.comments, id)
}

func (m *Mongo) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	filter := bson.M{}
	if postID != "" {
		filter["postId"] = postID
	}
	return findMany[models.Comment](ctx, m.comments, filter, newest())
}

func (m *Mongo) UpdateComment(ctx context.Context, c *models.Comment) error {
	c.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, m.comments, c.ID, c)
}

func (m *Mongo) DeleteComment(ctx context.Context, id string) error {
	return deleteByID(ctx, m.comments, id)
}

func (m *Mongo) CountCommentsByPost(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$postId"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := m.comments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		PostID string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.PostID] = r.Count
	}
	return out, nil
}
