package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"broadcast/database"
	"broadcast/models"
)

func TestPostsListNewestFirstAndFiltered(t *testing.T) {
	ctx := context.Background()
	s := New()

	home := &models.Post{UserID: "u1", LevelType: models.LevelHome, LevelValue: ""}
	ward := &models.Post{UserID: "u1", LevelType: models.LevelWard, LevelValue: "Tudor"}
	gone := &models.Post{UserID: "u1", LevelType: models.LevelWard, LevelValue: "Tudor", IsDeleted: true}
	for _, p := range []*models.Post{home, ward, gone} {
		require.NoError(t, s.CreatePost(ctx, p))
	}

	all, err := s.ListPosts(ctx, database.PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ward.ID, all[0].ID)
	assert.Equal(t, home.ID, all[1].ID)

	scoped, err := s.ListPosts(ctx, database.PostFilter{ByLevel: true, Levels: []string{"Tudor", ""}, ExcludeHome: true})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, ward.ID, scoped[0].ID)

	none, err := s.ListPosts(ctx, database.PostFilter{ByLevel: true, Levels: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &models.Post{UserID: "u1", LevelType: models.LevelWard, LevelValue: "Likoni"}
	require.NoError(t, s.CreatePost(ctx, p))

	got, err := s.FindPost(ctx, p.ID.Hex())
	require.NoError(t, err)
	got.ToggleLike("u2")

	again, err := s.FindPost(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, again.Likes)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.FindPost(ctx, "not-a-hex-id")
	assert.ErrorIs(t, err, database.ErrNotFound)

	err = s.UpdatePost(ctx, &models.Post{})
	assert.ErrorIs(t, err, database.ErrNotFound)

	err = s.IncrementCommentsCount(ctx, "65a1b2c3d4e5f60718293a4b", 1)
	assert.ErrorIs(t, err, database.ErrNotFound)

	err = s.DeleteComment(ctx, "65a1b2c3d4e5f60718293a4b")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, &models.User{ClerkID: "c1", NickName: "nick"}))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{ClerkID: "c1", NickName: "other"}), database.ErrDuplicate)
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{ClerkID: "c2", NickName: "nick"}), database.ErrDuplicate)
	require.NoError(t, s.CreateUser(ctx, &models.User{ClerkID: "c3"}))
	require.NoError(t, s.CreateUser(ctx, &models.User{ClerkID: "c4"}))

	users, err := s.FindUsersByClerkIDs(ctx, []string{"c1", "c4", "missing"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestCommentCounters(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := &models.Post{UserID: "u1"}
	require.NoError(t, s.CreatePost(ctx, p))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateComment(ctx, &models.Comment{PostID: p.ID.Hex(), UserID: "u2", Text: "hi"}))
	}
	require.NoError(t, s.IncrementCommentsCount(ctx, p.ID.Hex(), 1))

	counts, err := s.CountCommentsByPost(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[p.ID.Hex()])

	stored, err := s.CommentCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored[p.ID.Hex()])
}

func TestCategoriesSortedAndUnique(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateCategory(ctx, &models.Category{Name: "Phones"}))
	require.NoError(t, s.CreateCategory(ctx, &models.Category{Name: "Books"}))
	assert.ErrorIs(t, s.CreateCategory(ctx, &models.Category{Name: "Books"}), database.ErrDuplicate)

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Books", cats[0].Name)
	assert.Equal(t, "Phones", cats[1].Name)
}
