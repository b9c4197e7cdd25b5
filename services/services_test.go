package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"broadcast/apperr"
	"broadcast/cfai"
	"broadcast/database/memory"
	"broadcast/mailer"
	"broadcast/models"
	"broadcast/region"
	"broadcast/stream"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type published struct {
	Room    string
	Event   string
	Payload interface{}
}

type feedRecorder struct {
	mu     sync.Mutex
	events []published
}

func (f *feedRecorder) Publish(levelType, levelValue, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{Room: "level-" + levelType + "-" + levelValue, Event: event, Payload: payload})
}

func (f *feedRecorder) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.events...)
}

type fakeStream struct {
	mu       sync.Mutex
	upserted []stream.User
	sent     []string
	err      error
}

func (s *fakeStream) CreateToken(userID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "chat-" + userID, nil
}

func (s *fakeStream) CreateVideoToken(_ context.Context, userID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "video-" + userID, nil
}

func (s *fakeStream) UpsertUsers(_ context.Context, users ...stream.User) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserted = append(s.upserted, users...)
	return nil
}

func (s *fakeStream) SendMessage(_ context.Context, channelType, channelID, userID, text string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, channelType+":"+channelID+":"+userID+":"+text)
	return nil
}

type fakeAI struct {
	reply string
	err   error
	got   []cfai.Message
}

func (a *fakeAI) Run(_ context.Context, messages []cfai.Message) (string, error) {
	a.got = messages
	return a.reply, a.err
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var errBoom = errors.New("boom")

type fixture struct {
	store    *memory.Store
	feed     *feedRecorder
	posts    *PostService
	comments *CommentService
	users    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	regions, err := region.Bundled()
	require.NoError(t, err)

	store := memory.New()
	feed := &feedRecorder{}
	log := quietLogger()
	return &fixture{
		store:    store,
		feed:     feed,
		posts:    NewPostService(store, store, regions, feed, log),
		comments: NewCommentService(store, store, log),
		users:    NewUserService(store, &fakeStream{}, log),
	}
}

func (f *fixture) user(t *testing.T, clerkID string) *models.User {
	t.Helper()
	u, _, err := f.users.Save(context.Background(), SaveUserInput{ClerkID: clerkID, Email: clerkID + "@example.com", FirstName: clerkID})
	require.NoError(t, err)
	return u
}

func (f *fixture) post(t *testing.T, userID, levelType, levelValue string) *models.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), CreatePostInput{UserID: userID, Caption: "hello", LevelType: levelType, LevelValue: levelValue})
	require.NoError(t, err)
	return p
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "error: %v", err)
}
