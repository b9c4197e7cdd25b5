package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"broadcast/apperr"
	"broadcast/database/memory"
)

func TestSaveCreatesWithDefaultsThenPatches(t *testing.T) {
	svc := NewUserService(memory.New(), &fakeStream{}, quietLogger())
	ctx := context.Background()

	u, created, err := svc.Save(ctx, SaveUserInput{ClerkID: "c1", Email: "a@example.com", FirstName: "Ann"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "google", u.Provider)
	assert.Equal(t, "Personal Account", u.AccountType)
	assert.True(t, strings.HasPrefix(u.NickName, "user_"))
	nick := u.NickName

	u, created, err = svc.Save(ctx, SaveUserInput{ClerkID: "c1", Email: "a@example.com", LastName: "Lee"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Ann", u.FirstName)
	assert.Equal(t, "Lee", u.LastName)
	assert.Equal(t, nick, u.NickName)

	_, _, err = svc.Save(ctx, SaveUserInput{ClerkID: "c1"})
	requireKind(t, err, apperr.KindValidation)
}

func TestSaveRejectsTakenNickname(t *testing.T) {
	svc := NewUserService(memory.New(), &fakeStream{}, quietLogger())
	ctx := context.Background()

	_, _, err := svc.Save(ctx, SaveUserInput{ClerkID: "c1", Email: "a@example.com", NickName: "ann"})
	require.NoError(t, err)
	_, _, err = svc.Save(ctx, SaveUserInput{ClerkID: "c2", Email: "b@example.com", NickName: "ann"})
	requireKind(t, err, apperr.KindValidation)
}

func TestCreateOrGetMintsTokens(t *testing.T) {
	st := &fakeStream{}
	svc := NewUserService(memory.New(), st, quietLogger())
	ctx := context.Background()

	sess, err := svc.CreateOrGet(ctx, SessionInput{ClerkID: "c1", Email: "a@example.com", FirstName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "chat-c1", sess.ChatToken)
	assert.Equal(t, "video-c1", sess.VideoToken)
	require.Len(t, st.upserted, 1)
	assert.Equal(t, "Ann", st.upserted[0].Name)

	again, err := svc.CreateOrGet(ctx, SessionInput{Email: "a@example.com", FirstName: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, again.User.ID)

	_, err = svc.CreateOrGet(ctx, SessionInput{Email: "a@example.com"})
	requireKind(t, err, apperr.KindValidation)
}

func TestCreateOrGetUpstreamFailure(t *testing.T) {
	svc := NewUserService(memory.New(), &fakeStream{err: errBoom}, quietLogger())
	_, err := svc.CreateOrGet(context.Background(), SessionInput{Email: "a@example.com", FirstName: "Ann"})
	requireKind(t, err, apperr.KindUpstream)
}

func TestUpdateLocationAndImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "c1")

	u, err := f.users.UpdateLocation(ctx, "c1", "Mombasa", "Changamwe", "Kipevu")
	require.NoError(t, err)
	assert.Equal(t, "Kipevu", u.Ward)

	_, err = f.users.UpdateLocation(ctx, "", "a", "b", "c")
	requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "clerkId required", apperr.Message(err))

	u, err = f.users.UpdateImage(ctx, "c1", "https://img/x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://img/x.png", u.Image)

	_, err = f.users.UpdateImage(ctx, "ghost", "x")
	requireKind(t, err, apperr.KindNotFound)
}

func TestFollowIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "a")
	f.user(t, "b")

	_, err := f.users.Follow(ctx, "a", "a")
	requireKind(t, err, apperr.KindValidation)

	for i := 0; i < 2; i++ {
		target, err := f.users.Follow(ctx, "a", "b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, target.Followers)
	}
	a, err := f.users.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, a.Following)

	listing, err := f.users.ListFor(ctx, "a")
	require.NoError(t, err)
	following := map[string]bool{}
	for _, l := range listing {
		following[l.ClerkID] = l.IsFollowing
	}
	assert.Equal(t, map[string]bool{"a": false, "b": true}, following)

	target, err := f.users.Unfollow(ctx, "a", "b")
	require.NoError(t, err)
	assert.Empty(t, target.Followers)
	a, err = f.users.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, a.Following)
}
