package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"broadcast/models"
)

func (m *Mongo) CreateUser(ctx context.Context, u *models.User) error {
	stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return insert(ctx, m.users, u)
}

func (m *Mongo) FindUserByClerkID(ctx context.Context, clerkID string) (*models.User, error) {
	return findOne[models.User](ctx, m.users, bson.M{"clerkId": clerkID})
}

func (m *Mongo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, m.users, bson.M{"email": email})
}

func (m *Mongo) FindUserByVerifyToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return findOne[models.User](ctx, m.users, bson.M{"verifyToken": token})
}

func (m *Mongo) FindUsersByClerkIDs(ctx context.Context, clerkIDs []string) ([]models.User, error) {
	if len(clerkIDs) == 0 {
		return []models.User{}, nil
	}
	return findMany[models.User](ctx, m.users, bson.M{"clerkId": bson.M{"$in": clerkIDs}})
}

func (m *Mongo) ListUsers(ctx context.Context) ([]models.User, error) {
	return findMany[models.User](ctx, m.users, bson.M{})
}

func (m *Mongo) UpdateUser(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, m.users, u.ID, u)
}
