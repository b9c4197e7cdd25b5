package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"broadcast/models"
)

// Statuses

func (m *Mongo) CreateStatus(ctx context.Context, s *models.Status) error {
	stamp(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return insert(ctx, m.statuses, s)
}

func (m *Mongo) FindStatus(ctx context.Context, id string) (*models.Status, error) {
	return findByID[models.Status](ctx, m.statuses, id)
}

func (m *Mongo) ListStatuses(ctx context.Context) ([]models.Status, error) {
	return findMany[models.Status](ctx, m.statuses, bson.M{}, newest())
}

func (m *Mongo) UpdateStatus(ctx context.Context, s *models.Status) error {
	s.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, m.statuses, s.ID, s)
}

func (m *Mongo) DeleteStatus(ctx context.Context, id string) error {
	return deleteByID(ctx, m.statuses, id)
}

// Products

func (m *Mongo) CreateProduct(ctx context.Context, p *models.Product) error {
	stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return insert(ctx, m.products, p)
}

func (m *Mongo) FindProduct(ctx context.Context, id string) (*models.Product, error) {
	return findByID[models.Product](ctx, m.products, id)
}

func (m *Mongo) ListProducts(ctx context.Context) ([]models.Product, error) {
	return findMany[models.Product](ctx, m.products, bson.M{}, newest())
}

func (m *Mongo) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, m.products, p.ID, p)
}

func (m *Mongo) DeleteProduct(ctx context.Context, id string) error {
	return deleteByID(ctx, m.products, id)
}

// Categories

func (m *Mongo) CreateCategory(ctx context.Context, c *models.Category) error {
	stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return insert(ctx, m.categories, c)
}

func (m *Mongo) FindCategory(ctx context.Context, id string) (*models.Category, error) {
	return findByID[models.Category](ctx, m.categories, id)
}

func (m *Mongo) ListCategories(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return findMany[models.Category](ctx, m.categories, bson.M{}, opts)
}

func (m *Mongo) UpdateCategory(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, m.categories, c.ID, c)
}

func (m *Mongo) DeleteCategory(ctx context.Context, id string) error {
	return deleteByID(ctx, m.categories, id)
}

// News

func (m *Mongo) CreateNews(ctx context.Context, n *models.News) error {
	stamp(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	return insert(ctx, m.news, n)
}

func (m *Mongo) FindNews(ctx context.Context, id string) (*models.News, error) {
	return findByID[models.News](ctx, m.news, id)
}

func (m *Mongo) ListNews(ctx context.Context) ([]models.News, error) {
	return findMany[models.News](ctx, m.news, bson.M{}, newest())
}

func (m *Mongo) UpdateNews(ctx context.Context, n *models.News) error {
	n.UpdatedAt = time.Now().UTC()
	return replaceByID(ctx, m.news, n.ID, n)
}

func (m *Mongo) DeleteNews(ctx context.Context, id string) error {
	return deleteByID(ctx, m.news, id)
}
