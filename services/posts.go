package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"broadcast/apperr"
	"broadcast/database"
	"broadcast/models"
)

type PostService struct {
	posts   database.PostStore
	users   database.UserStore
	regions RegionResolver
	feed    FeedPublisher
	log     *logrus.Logger
}

func NewPostService(posts database.PostStore, users database.UserStore, regions RegionResolver, feed FeedPublisher, log *logrus.Logger) *PostService {
	return &PostService{posts: posts, users: users, regions: regions, feed: feed, log: log}
}

type CreatePostInput struct {
	UserID      string
	Caption     string
	Media       []string
	LevelType   string
	LevelValue  string
	LinkPreview models.LinkPreview
}

type RecastInput struct {
	UserID    string
	Nickname  string
	QuoteText string
}

// List returns the feed for a scope, newest first. The home scope sees every
// live post; any other scope sees non-home posts inside its region.
func (s *PostService) List(ctx context.Context, levelType, levelValue string) ([]models.Post, error) {
	filter := database.PostFilter{}
	if levelType != models.LevelHome {
		filter = database.PostFilter{
			ByLevel:     true,
			Levels:      s.regions.Related(levelType, levelValue),
			ExcludeHome: true,
		}
	}
	posts, err := s.posts.ListPosts(ctx, filter)
	if err != nil {
		return nil, storeErr(err, "Post not found")
	}
	return posts, nil
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == "" {
		return nil, apperr.Validation("Missing userId")
	}
	if !models.ValidLevelType(in.LevelType) {
		return nil, apperr.Validation("Invalid levelType")
	}

	author, err := s.users.FindUserByClerkID(ctx, in.UserID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}

	post := &models.Post{
		UserID:      in.UserID,
		User:        author.Snapshot(),
		Caption:     in.Caption,
		Media:       in.Media,
		LevelType:   in.LevelType,
		LevelValue:  in.LevelValue,
		LinkPreview: in.LinkPreview,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, storeErr(err, "Post not found")
	}

	s.feed.Publish(post.LevelType, post.LevelValue, EventNewPost, post)
	return post, nil
}

func (s *PostService) load(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.FindPost(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Post not found")
	}
	return post, nil
}

// ToggleLike flips userID's membership in the like set.
func (s *PostService) ToggleLike(ctx context.Context, id, userID string) (*models.Post, error) {
	if userID == "" {
		return nil, apperr.Validation("Missing userId")
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	post.ToggleLike(userID)
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, storeErr(err, "Post not found")
	}

	s.feed.Publish(post.LevelType, post.LevelValue, EventUpdatePost, post)
	return post, nil
}

// Recast removes the caller's plain recast when no quote is given, and
// appends a new entry otherwise.
func (s *PostService) Recast(ctx context.Context, id string, in RecastInput) (*models.Post, error) {
	if in.UserID == "" {
		return nil, apperr.Validation("Missing userId")
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	post.ToggleRecast(in.UserID, in.Nickname, in.QuoteText, time.Now().UTC())
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, storeErr(err, "Post not found")
	}

	s.feed.Publish(post.LevelType, post.LevelValue, EventUpdatePost, post)
	return post, nil
}

// View counts one view. Views are not deduplicated per viewer.
func (s *PostService) View(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.IncrementPostViews(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Post not found")
	}
	return post, nil
}

// Delete hides the post. Only the author may do it.
func (s *PostService) Delete(ctx context.Context, id, userID string) error {
	if userID == "" {
		return apperr.Validation("Missing userId")
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return apperr.Forbidden("Unauthorized to delete this post")
	}

	post.IsDeleted = true
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return storeErr(err, "Post not found")
	}

	s.feed.Publish(post.LevelType, post.LevelValue, EventDeletePost, post.ID.Hex())
	return nil
}

// Restore makes a hidden post visible again. Only the author may do it.
func (s *PostService) Restore(ctx context.Context, id, userID string) (*models.Post, error) {
	if userID == "" {
		return nil, apperr.Validation("Missing userId")
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperr.Forbidden("Unauthorized to restore this post")
	}

	post.IsDeleted = false
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, storeErr(err, "Post not found")
	}

	s.feed.Publish(post.LevelType, post.LevelValue, EventRestorePost, post)
	return post, nil
}
