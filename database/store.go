package database

import (
	"context"
	"errors"

	"broadcast/models"
)

var (
	// ErrNotFound is returned when no document matches, including when the
	// id is not a valid ObjectID.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique field already exists.
	ErrDuplicate = errors.New("duplicate key")
)

// PostFilter selects non-deleted posts for a feed. Results are always sorted
// by creation time, newest first.
type PostFilter struct {
	// ByLevel restricts results to posts whose levelValue is in Levels.
	// An empty Levels with ByLevel set matches nothing.
	ByLevel     bool
	Levels      []string
	ExcludeHome bool
}

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByClerkID(ctx context.Context, clerkID string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByVerifyToken(ctx context.Context, token string) (*models.User, error)
	FindUsersByClerkIDs(ctx context.Context, clerkIDs []string) ([]models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
}

type PostStore interface {
	CreatePost(ctx context.Context, p *models.Post) error
	FindPost(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, f PostFilter) ([]models.Post, error)
	// UpdatePost writes every field except the views and commentsCount
	// counters, which only move through their atomic accessors. p is
	// refreshed from the stored document.
	UpdatePost(ctx context.Context, p *models.Post) error
	// IncrementPostViews adds one view atomically and returns the updated post.
	IncrementPostViews(ctx context.Context, id string) (*models.Post, error)
	// IncrementCommentsCount adjusts the denormalized counter atomically.
	IncrementCommentsCount(ctx context.Context, id string, delta int) error
	// CommentCounters returns every post's stored counter keyed by hex id.
	CommentCounters(ctx context.Context) (map[string]int64, error)
	// SetCommentsCount writes n only while the stored counter still equals
	// expected. It reports whether the write happened; a missing post or a
	// counter that moved both report false.
	SetCommentsCount(ctx context.Context, id string, expected, n int64) (bool, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, c *models.Comment) error
	FindComment(ctx context.Context, id string) (*models.Comment, error)
	// ListComments returns comments newest first. An empty postID lists all.
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	UpdateComment(ctx context.Context, c *models.Comment) error
	DeleteComment(ctx context.Context, id string) error
	// CountCommentsByPost returns the number of comments per post id.
	CountCommentsByPost(ctx context.Context) (map[string]int64, error)
}

type StatusStore interface {
	CreateStatus(ctx context.Context, s *models.Status) error
	FindStatus(ctx context.Context, id string) (*models.Status, error)
	ListStatuses(ctx context.Context) ([]models.Status, error)
	UpdateStatus(ctx context.Context, s *models.Status) error
	DeleteStatus(ctx context.Context, id string) error
}

type ProductStore interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	FindProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	FindCategory(ctx context.Context, id string) (*models.Category, error)
	// ListCategories returns categories sorted by name.
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
}

type NewsStore interface {
	CreateNews(ctx context.Context, n *models.News) error
	FindNews(ctx context.Context, id string) (*models.News, error)
	ListNews(ctx context.Context) ([]models.News, error)
	UpdateNews(ctx context.Context, n *models.News) error
	DeleteNews(ctx context.Context, id string) error
}

// Store bundles every collection accessor.
type Store interface {
	UserStore
	PostStore
	CommentStore
	StatusStore
	ProductStore
	CategoryStore
	NewsStore

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
