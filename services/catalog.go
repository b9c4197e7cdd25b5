package services

import (
	"context"
	"errors"
	"strings"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"broadcast/apperr"
	"broadcast/database"
	"broadcast/models"
)

// CatalogService covers marketplace products, their categories and news
// items.
type CatalogService struct {
	products   database.ProductStore
	categories database.CategoryStore
	news       database.NewsStore
	log        *logrus.Logger
}

func NewCatalogService(products database.ProductStore, categories database.CategoryStore, news database.NewsStore, log *logrus.Logger) *CatalogService {
	return &CatalogService{products: products, categories: categories, news: news, log: log}
}

type CreateProductInput struct {
	Title       string
	Description string
	Price       float64
	Images      []string
	Category    string
	UserID      string
}

// ProductPatch holds the fields of a partial update; nil means unchanged.
type ProductPatch struct {
	Title       *string
	Description *string
	Price       *float64
	Images      []string
	Category    *string
	Status      *string
	Verified    *bool
}

func (s *CatalogService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if in.Title == "" || in.Description == "" || in.Price == 0 || len(in.Images) == 0 || in.Category == "" || in.UserID == "" {
		return nil, apperr.Validation("All fields are required")
	}
	p := &models.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Images:      in.Images,
		Category:    in.Category,
		Status:      models.ProductNew,
		Seller:      in.UserID,
	}
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	out, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.FindProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Images != nil {
		p.Images = patch.Images
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Status != nil {
		if *patch.Status != models.ProductNew && *patch.Status != models.ProductSold {
			return nil, apperr.Validation("Invalid status")
		}
		p.Status = *patch.Status
	}
	if patch.Verified != nil {
		p.Verified = *patch.Verified
	}
	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return nil, storeErr(err, "Product not found")
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return storeErr(err, "Product not found")
	}
	return nil
}

func categoryErr(err error) error {
	if errors.Is(err, database.ErrDuplicate) {
		return apperr.Validation("Category already exists")
	}
	return storeErr(err, "Category not found")
}

func (s *CatalogService) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("Name is required")
	}
	c := &models.Category{Name: name, Slug: slug.Make(name), Description: description}
	if err := s.categories.CreateCategory(ctx, c); err != nil {
		return nil, categoryErr(err)
	}
	return c, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	out, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, categoryErr(err)
	}
	return out, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	c, err := s.categories.FindCategory(ctx, id)
	if err != nil {
		return nil, categoryErr(err)
	}
	return c, nil
}

// UpdateCategory renames or redescribes a category; empty values are left
// as they are.
func (s *CatalogService) UpdateCategory(ctx context.Context, id, name, description string) (*models.Category, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		c.Name = name
		c.Slug = slug.Make(name)
	}
	if description != "" {
		c.Description = description
	}
	if err := s.categories.UpdateCategory(ctx, c); err != nil {
		return nil, categoryErr(err)
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return categoryErr(err)
	}
	return nil
}

func (s *CatalogService) CreateNews(ctx context.Context, title, content, image string) (*models.News, error) {
	if title == "" || content == "" {
		return nil, apperr.Validation("Title and content are required")
	}
	n := &models.News{Title: title, Content: content, Image: image}
	if err := s.news.CreateNews(ctx, n); err != nil {
		return nil, storeErr(err, "News not found")
	}
	return n, nil
}

func (s *CatalogService) ListNews(ctx context.Context) ([]models.News, error) {
	out, err := s.news.ListNews(ctx)
	if err != nil {
		return nil, storeErr(err, "News not found")
	}
	return out, nil
}

func (s *CatalogService) GetNews(ctx context.Context, id string) (*models.News, error) {
	n, err := s.news.FindNews(ctx, id)
	if err != nil {
		return nil, storeErr(err, "News not found")
	}
	return n, nil
}

func (s *CatalogService) UpdateNews(ctx context.Context, id, title, content, image string) (*models.News, error) {
	n, err := s.GetNews(ctx, id)
	if err != nil {
		return nil, err
	}
	applyNonEmpty(&n.Title, title)
	applyNonEmpty(&n.Content, content)
	applyNonEmpty(&n.Image, image)
	if err := s.news.UpdateNews(ctx, n); err != nil {
		return nil, storeErr(err, "News not found")
	}
	return n, nil
}

func (s *CatalogService) DeleteNews(ctx context.Context, id string) error {
	if err := s.news.DeleteNews(ctx, id); err != nil {
		return storeErr(err, "News not found")
	}
	return nil
}
