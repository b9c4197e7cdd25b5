package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"broadcast/apperr"
	"broadcast/database"
	"broadcast/models"
)

type CommentService struct {
	comments database.CommentStore
	posts    database.PostStore
	log      *logrus.Logger
}

func NewCommentService(comments database.CommentStore, posts database.PostStore, log *logrus.Logger) *CommentService {
	return &CommentService{comments: comments, posts: posts, log: log}
}

type CreateCommentInput struct {
	PostID   string
	UserID   string
	UserName string
	Text     string
}

type ReplyInput struct {
	UserID   string
	UserName string
	Text     string
}

// ReplyLike is the outcome of a reply like toggle.
type ReplyLike struct {
	Success bool `json:"success"`
	Liked   bool `json:"liked"`
	Likes   int  `json:"likes"`
}

// ReconcileReport summarizes a counter reconciliation pass.
type ReconcileReport struct {
	Checked int `json:"checked"`
	Fixed   int `json:"fixed"`
	// Skipped counts drifted posts whose counter moved during the pass.
	Skipped int `json:"skipped"`
}

// Create stores a top-level comment and bumps the post counter. The counter
// write is independent of the insert; a failed bump is logged, not returned.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.PostID == "" || in.UserID == "" || in.Text == "" {
		return nil, apperr.Validation("Missing required fields")
	}
	if in.UserName == "" {
		in.UserName = "Anonymous"
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		UserID:   in.UserID,
		UserName: in.UserName,
		Text:     in.Text,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, storeErr(err, "Comment not found")
	}

	s.bump(ctx, in.PostID, 1)
	return comment, nil
}

func (s *CommentService) bump(ctx context.Context, postID string, delta int) {
	if err := s.posts.IncrementCommentsCount(ctx, postID, delta); err != nil {
		entry := s.log.WithFields(logrus.Fields{"post_id": postID, "delta": delta})
		if errors.Is(err, database.ErrNotFound) {
			entry.Warn("[comments] counter target missing")
			return
		}
		entry.WithError(err).Error("[comments] counter update failed")
	}
}

// ListForPost returns the post's comments newest first, with each reply
// list also newest first. An empty postID lists every comment.
func (s *CommentService) ListForPost(ctx context.Context, postID string) ([]models.Comment, error) {
	comments, err := s.comments.ListComments(ctx, postID)
	if err != nil {
		return nil, storeErr(err, "Comment not found")
	}
	for i := range comments {
		comments[i].SortReplies()
	}
	return comments, nil
}

func (s *CommentService) load(ctx context.Context, id string) (*models.Comment, error) {
	comment, err := s.comments.FindComment(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Comment not found")
	}
	return comment, nil
}

func (s *CommentService) save(ctx context.Context, comment *models.Comment) error {
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return storeErr(err, "Comment not found")
	}
	return nil
}

func (s *CommentService) ToggleLike(ctx context.Context, id, userID string) (*models.Comment, error) {
	if userID == "" {
		return nil, apperr.Validation("Missing userId")
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	comment.ToggleLike(userID)
	if err := s.save(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) AddReply(ctx context.Context, id string, in ReplyInput) (*models.Comment, error) {
	if in.UserID == "" || in.Text == "" {
		return nil, apperr.Validation("Missing fields")
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	comment.AddReply(in.UserID, in.UserName, in.Text, time.Now().UTC())
	if err := s.save(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteReply removes a reply. Only its author may do it.
func (s *CommentService) DeleteReply(ctx context.Context, id, replyID, userID string) error {
	if userID == "" {
		return apperr.Validation("Missing userId")
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	reply := comment.Reply(replyID)
	if reply == nil {
		return apperr.NotFound("Reply not found")
	}
	if reply.UserID != userID {
		return apperr.Forbidden("Not authorized to delete this reply")
	}
	comment.RemoveReply(replyID)
	return s.save(ctx, comment)
}

func (s *CommentService) ToggleReplyLike(ctx context.Context, id, replyID, userID string) (ReplyLike, error) {
	if userID == "" {
		return ReplyLike{}, apperr.Validation("Missing userId")
	}
	comment, err := s.load(ctx, id)
	if err != nil {
		return ReplyLike{}, err
	}
	liked, likes, ok := comment.ToggleReplyLike(replyID, userID)
	if !ok {
		return ReplyLike{}, apperr.NotFound("Reply not found")
	}
	if err := s.save(ctx, comment); err != nil {
		return ReplyLike{}, err
	}
	return ReplyLike{Success: true, Liked: liked, Likes: likes}, nil
}

// Delete hard-deletes the comment and decrements the post counter.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	comment, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return storeErr(err, "Comment not found")
	}
	s.bump(ctx, comment.PostID, -1)
	return nil
}

// ReconcileCommentCounts recomputes every post's commentsCount from the
// comments collection and rewrites only the counters that drifted. A write
// lands only if the counter still holds the value read at the start of the
// pass, so a concurrent bump is never overwritten; that post is left for the
// next pass.
func (s *CommentService) ReconcileCommentCounts(ctx context.Context) (ReconcileReport, error) {
	stored, err := s.posts.CommentCounters(ctx)
	if err != nil {
		return ReconcileReport{}, apperr.Internal("read post counters", err)
	}
	actual, err := s.comments.CountCommentsByPost(ctx)
	if err != nil {
		return ReconcileReport{}, apperr.Internal("count comments", err)
	}

	report := ReconcileReport{Checked: len(stored)}
	for postID, have := range stored {
		want := actual[postID]
		if have == want {
			continue
		}
		swapped, err := s.posts.SetCommentsCount(ctx, postID, have, want)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			return report, apperr.Internal("write post counter", err)
		}
		if !swapped {
			s.log.WithField("post_id", postID).Debug("[reconcile] counter moved, left for next pass")
			report.Skipped++
			continue
		}
		s.log.WithFields(logrus.Fields{"post_id": postID, "from": have, "to": want}).Info("[reconcile] counter fixed")
		report.Fixed++
	}
	return report, nil
}

// RunReconciler reconciles on every tick until ctx is done.
func (s *CommentService) RunReconciler(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.ReconcileCommentCounts(ctx)
			if err != nil {
				s.log.WithError(err).Error("[reconcile] pass failed")
				continue
			}
			s.log.WithFields(logrus.Fields{"checked": report.Checked, "fixed": report.Fixed}).Debug("[reconcile] pass done")
		}
	}
}
