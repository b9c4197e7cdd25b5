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

func TestStatusListEnrichesAuthors(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, &models.User{ClerkID: "c1", Email: "a@x", FirstName: "Ann", NickName: "annie"}))
	require.NoError(t, store.CreateUser(ctx, &models.User{ClerkID: "c2", Email: "b@x", FirstName: "Bo"}))
	svc := NewStatusService(store, store, quietLogger())

	for _, id := range []string{"c1", "c2", "gone"} {
		_, err := svc.Create(ctx, CreateStatusInput{UserID: id, Caption: "hi " + id})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "gone", list[0].UserID)
	assert.Equal(t, "Anonymous", list[0].User.NickName)
	assert.Equal(t, "Bo", list[1].User.NickName)
	assert.Equal(t, "annie", list[2].User.NickName)

	_, err = svc.Create(ctx, CreateStatusInput{})
	requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "userId is required", apperr.Message(err))
}

func TestStatusLikeAndOwnerDelete(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	svc := NewStatusService(store, store, quietLogger())

	st, err := svc.Create(ctx, CreateStatusInput{UserID: "c1"})
	require.NoError(t, err)
	id := st.ID.Hex()

	res, err := svc.ToggleLike(ctx, id, "c2")
	require.NoError(t, err)
	assert.Equal(t, &StatusLike{Success: true, Likes: []string{"c2"}, Liked: true}, res)

	res, err = svc.ToggleLike(ctx, id, "c2")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Empty(t, res.Likes)

	err = svc.Delete(ctx, id, "c2")
	requireKind(t, err, apperr.KindForbidden)
	assert.Equal(t, "Not authorized to delete this status", apperr.Message(err))

	require.NoError(t, svc.Delete(ctx, id, "c1"))
	_, err = store.FindStatus(ctx, id)
	assert.Error(t, err)
}
