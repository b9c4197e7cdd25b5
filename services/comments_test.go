package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"broadcast/apperr"
	"broadcast/database/memory"
	"broadcast/models"
)

func TestCommentCreateAndDeleteMoveCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	p := f.post(t, "u1", models.LevelHome, "")
	postID := p.ID.Hex()

	c, err := f.comments.Create(ctx, CreateCommentInput{PostID: postID, UserID: "u2", Text: "nice"})
	require.NoError(t, err)
	assert.Equal(t, "Anonymous", c.UserName)

	_, err = f.comments.Create(ctx, CreateCommentInput{PostID: postID, UserID: "u3", UserName: "Three", Text: "agreed"})
	require.NoError(t, err)

	stored, err := f.store.FindPost(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.CommentsCount)

	require.NoError(t, f.comments.Delete(ctx, c.ID.Hex()))
	stored, err = f.store.FindPost(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stored.CommentsCount)

	list, err := f.comments.ListForPost(ctx, postID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "agreed", list[0].Text)
}

func TestCommentCreateValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.comments.Create(context.Background(), CreateCommentInput{PostID: "x", UserID: "u1"})
	requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "Missing required fields", apperr.Message(err))
}

func TestRepliesNewestFirstAndOwnerDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u1", Text: "top"})
	require.NoError(t, err)
	id := c.ID.Hex()

	_, err = f.comments.AddReply(ctx, id, ReplyInput{UserID: "u2", Text: "first"})
	require.NoError(t, err)
	withTwo, err := f.comments.AddReply(ctx, id, ReplyInput{UserID: "u3", Text: "second"})
	require.NoError(t, err)
	require.Len(t, withTwo.Replies, 2)

	list, err := f.comments.ListForPost(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	replies := list[0].Replies
	require.Len(t, replies, 2)
	assert.False(t, replies[0].CreatedAt.Before(replies[1].CreatedAt))

	first := withTwo.Replies[0].ID.Hex()
	err = f.comments.DeleteReply(ctx, id, first, "u3")
	requireKind(t, err, apperr.KindForbidden)

	err = f.comments.DeleteReply(ctx, id, "missing", "u2")
	requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, "Reply not found", apperr.Message(err))

	require.NoError(t, f.comments.DeleteReply(ctx, id, first, "u2"))
	got, err := f.store.FindComment(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, "second", got.Replies[0].Text)
}

func TestReplyLikeToggles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u1", Text: "top"})
	require.NoError(t, err)
	c, err = f.comments.AddReply(ctx, c.ID.Hex(), ReplyInput{UserID: "u2", Text: "r"})
	require.NoError(t, err)
	replyID := c.Replies[0].ID.Hex()

	res, err := f.comments.ToggleReplyLike(ctx, c.ID.Hex(), replyID, "u9")
	require.NoError(t, err)
	assert.Equal(t, ReplyLike{Success: true, Liked: true, Likes: 1}, res)

	res, err = f.comments.ToggleReplyLike(ctx, c.ID.Hex(), replyID, "u9")
	require.NoError(t, err)
	assert.Equal(t, ReplyLike{Success: true, Liked: false, Likes: 0}, res)

	got, err := f.store.FindComment(ctx, c.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
}

func TestCommentLikeToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u1", Text: "top"})
	require.NoError(t, err)

	liked, err := f.comments.ToggleLike(ctx, c.ID.Hex(), "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, liked.Likes)

	_, err = f.comments.ToggleLike(ctx, c.ID.Hex(), "")
	requireKind(t, err, apperr.KindValidation)
}

func TestReconcileFixesDriftOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	p := f.post(t, "u1", models.LevelHome, "")
	postID := p.ID.Hex()

	for i := 0; i < 2; i++ {
		_, err := f.comments.Create(ctx, CreateCommentInput{PostID: postID, UserID: "u2", Text: "c"})
		require.NoError(t, err)
	}
	swapped, err := f.store.SetCommentsCount(ctx, postID, 2, 7)
	require.NoError(t, err)
	require.True(t, swapped)

	report, err := f.comments.ReconcileCommentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Checked: 1, Fixed: 1}, report)

	stored, err := f.store.FindPost(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stored.CommentsCount)

	report, err = f.comments.ReconcileCommentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Fixed)
}

// bumpingPosts moves a counter right after the reconciler reads them.
type bumpingPosts struct {
	*memory.Store
	postID string
}

func (b bumpingPosts) CommentCounters(ctx context.Context) (map[string]int64, error) {
	out, err := b.Store.CommentCounters(ctx)
	if err != nil {
		return nil, err
	}
	return out, b.Store.IncrementCommentsCount(ctx, b.postID, 1)
}

func TestReconcileKeepsConcurrentBump(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "u1")
	postID := f.post(t, "u1", models.LevelHome, "").ID.Hex()
	_, err := f.comments.Create(ctx, CreateCommentInput{PostID: postID, UserID: "u2", Text: "c"})
	require.NoError(t, err)
	_, err = f.store.SetCommentsCount(ctx, postID, 1, 5)
	require.NoError(t, err)

	racy := NewCommentService(f.store, bumpingPosts{Store: f.store, postID: postID}, quietLogger())
	report, err := racy.ReconcileCommentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Checked: 1, Skipped: 1}, report)

	stored, err := f.store.FindPost(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 6, stored.CommentsCount)

	report, err = f.comments.ReconcileCommentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReconcileReport{Checked: 1, Fixed: 1}, report)
	stored, err = f.store.FindPost(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stored.CommentsCount)
}
