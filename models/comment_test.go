package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyLikeToggle(t *testing.T) {
	c := &Comment{}
	r := c.AddReply("author", "", "nice", time.Now())
	assert.Equal(t, "Anonymous", r.UserName)

	liked, likes, ok := c.ToggleReplyLike(r.ID.Hex(), "u1")
	require.True(t, ok)
	assert.True(t, liked)
	assert.Equal(t, 1, likes)

	liked, likes, ok = c.ToggleReplyLike(r.ID.Hex(), "u1")
	require.True(t, ok)
	assert.False(t, liked)
	assert.Equal(t, 0, likes)

	assert.Empty(t, c.Likes, "reply likes are independent of the comment")
}

func TestReplyLikeUnknownReply(t *testing.T) {
	c := &Comment{}
	_, _, ok := c.ToggleReplyLike("64b7f0c2a1b2c3d4e5f60718", "u1")
	assert.False(t, ok)
}

func TestRemoveReply(t *testing.T) {
	c := &Comment{}
	now := time.Now()
	a := c.AddReply("u1", "one", "a", now)
	b := c.AddReply("u2", "two", "b", now)

	assert.True(t, c.RemoveReply(a.ID.Hex()))
	assert.False(t, c.RemoveReply(a.ID.Hex()))
	require.Len(t, c.Replies, 1)
	assert.Equal(t, b.ID, c.Replies[0].ID)
}

func TestSortRepliesNewestFirst(t *testing.T) {
	c := &Comment{}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.AddReply("u1", "", "old", base)
	c.AddReply("u1", "", "new", base.Add(2*time.Minute))
	c.AddReply("u1", "", "mid", base.Add(time.Minute))

	c.SortReplies()

	texts := []string{c.Replies[0].Text, c.Replies[1].Text, c.Replies[2].Text}
	assert.Equal(t, []string{"new", "mid", "old"}, texts)
}

func TestCommentEnsureSlices(t *testing.T) {
	c := &Comment{Replies: []Reply{{Text: "x"}}}
	c.EnsureSlices()
	assert.NotNil(t, c.Likes)
	assert.NotNil(t, c.Replies[0].Likes)
}
