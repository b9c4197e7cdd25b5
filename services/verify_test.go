package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"broadcast/apperr"
	"broadcast/database/memory"
	"broadcast/models"
)

func newVerifyFixture(t *testing.T, ttl time.Duration) (*VerifyService, *fakeMailer, *memory.Store) {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.CreateUser(context.Background(), &models.User{ClerkID: "c1", Email: "ann@example.com", FirstName: "Ann"}))
	mail := &fakeMailer{}
	svc := NewVerifyService(store, mail, VerifyConfig{
		From:       "noreply@example.com",
		AdminInbox: "admin@example.com",
		BaseURL:    "https://api.example.com/",
		TTL:        ttl,
	}, quietLogger())
	return svc, mail, store
}

func tokenFrom(t *testing.T, html string) string {
	t.Helper()
	const marker = "/api/verify/"
	i := strings.Index(html, marker)
	require.GreaterOrEqual(t, i, 0)
	rest := html[i+len(marker):]
	return rest[:strings.IndexByte(rest, '"')]
}

func TestVerifyRequestMailsAdmin(t *testing.T) {
	svc, mail, store := newVerifyFixture(t, 0)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "ann@example.com"))
	require.Len(t, mail.sent, 1)
	msg := mail.sent[0]
	assert.Equal(t, "admin@example.com", msg.To)
	assert.Equal(t, "ann@example.com", msg.ReplyTo)
	assert.Equal(t, "New Verification Request", msg.Subject)
	assert.Contains(t, msg.HTML, "https://api.example.com/api/verify/")

	token := tokenFrom(t, msg.HTML)
	assert.Len(t, token, 64)

	u, err := store.FindUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, token, u.VerifyToken)
	assert.Nil(t, u.VerifyTokenExpiry)
}

func TestVerifyRequestValidation(t *testing.T) {
	svc, _, _ := newVerifyFixture(t, 0)
	ctx := context.Background()

	err := svc.Request(ctx, "")
	requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "Email required", apperr.Message(err))

	err = svc.Request(ctx, "nobody@example.com")
	requireKind(t, err, apperr.KindNotFound)
	assert.Equal(t, "User not found", apperr.Message(err))
}

func TestConfirmVerifiesOnce(t *testing.T) {
	svc, mail, store := newVerifyFixture(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "ann@example.com"))
	token := tokenFrom(t, mail.sent[0].HTML)

	require.NoError(t, svc.Confirm(ctx, token))
	u, err := store.FindUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.Empty(t, u.VerifyToken)
	assert.Nil(t, u.VerifyTokenExpiry)

	err = svc.Confirm(ctx, token)
	requireKind(t, err, apperr.KindValidation)
	assert.Equal(t, "Invalid or expired token", apperr.Message(err))
}

func TestConfirmRejectsExpiredToken(t *testing.T) {
	svc, mail, _ := newVerifyFixture(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.Request(ctx, "ann@example.com"))
	token := tokenFrom(t, mail.sent[0].HTML)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	err := svc.Confirm(ctx, token)
	requireKind(t, err, apperr.KindValidation)
}

func TestVerifyMailFailureIsInternal(t *testing.T) {
	svc, mail, _ := newVerifyFixture(t, 0)
	mail.err = errBoom
	err := svc.Request(context.Background(), "ann@example.com")
	requireKind(t, err, apperr.KindInternal)
}

func TestVerifyMailEscapesUserFields(t *testing.T) {
	svc, mail, store := newVerifyFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, store.CreateUser(ctx, &models.User{
		ClerkID:   "c2",
		Email:     "eve@example.com",
		FirstName: `<script>alert(1)</script>`,
		LastName:  `<a href="https://evil.example">click</a>`,
	}))

	require.NoError(t, svc.Request(ctx, "eve@example.com"))
	require.Len(t, mail.sent, 1)
	html := mail.sent[0].HTML
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, `href="https://evil.example"`)
	assert.Contains(t, html, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Len(t, tokenFrom(t, html), 64)
}
