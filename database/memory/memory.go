// Package memory is an in-process database.Store. Documents are kept
// BSON-encoded so every read returns an independent copy, the same way a
// round trip to MongoDB would.
package memory

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"broadcast/database"
	"broadcast/models"
)

type table map[primitive.ObjectID][]byte

type Store struct {
	mu   sync.RWMutex
	last time.Time

	users      table
	posts      table
	comments   table
	statuses   table
	products   table
	categories table
	news       table
}

var _ database.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:      table{},
		posts:      table{},
		comments:   table{},
		statuses:   table{},
		products:   table{},
		categories: table{},
		news:       table{},
	}
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

// now is strictly increasing at millisecond resolution so newest-first
// ordering is deterministic. Caller holds s.mu.
func (s *Store) now() time.Time {
	t := time.Now().UTC().Truncate(time.Millisecond)
	if !t.After(s.last) {
		t = s.last.Add(time.Millisecond)
	}
	s.last = t
	return t
}

func (s *Store) stamp(id *primitive.ObjectID, created, updated *time.Time) {
	now := s.now()
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

type sliceFiller interface{ EnsureSlices() }

func put(t table, id primitive.ObjectID, doc interface{}) error {
	if f, ok := doc.(sliceFiller); ok {
		f.EnsureSlices()
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	t[id] = raw
	return nil
}

func get[T any](t table, hex string) (*T, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, database.ErrNotFound
	}
	raw, ok := t[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return decode[T](raw)
}

func decode[T any](raw []byte) (*T, error) {
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if f, ok := any(&out).(sliceFiller); ok {
		f.EnsureSlices()
	}
	return &out, nil
}

func all[T any](t table, keep func(*T) bool) ([]T, error) {
	out := make([]T, 0, len(t))
	for _, raw := range t {
		doc, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(doc) {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func replace(t table, id primitive.ObjectID, doc interface{}) error {
	if _, ok := t[id]; !ok {
		return database.ErrNotFound
	}
	return put(t, id, doc)
}

func remove(t table, hex string) error {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return database.ErrNotFound
	}
	if _, ok := t[id]; !ok {
		return database.ErrNotFound
	}
	delete(t, id)
	return nil
}

// newestFirst orders by creation time, then by id, both descending.
func newestFirst(at func(i int) (time.Time, primitive.ObjectID)) func(i, j int) bool {
	return func(i, j int) bool {
		ti, idi := at(i)
		tj, idj := at(j)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return bytes.Compare(idi[:], idj[:]) > 0
	}
}

// Users

func (s *Store) userConflict(u *models.User) bool {
	for id, raw := range s.users {
		if id == u.ID {
			continue
		}
		other, err := decode[models.User](raw)
		if err != nil {
			continue
		}
		if other.ClerkID == u.ClerkID || (u.NickName != "" && other.NickName == u.NickName) {
			return true
		}
	}
	return false
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userConflict(u) {
		return database.ErrDuplicate
	}
	s.stamp(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return put(s.users, u.ID, u)
}

func (s *Store) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users, err := all(s.users, match)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, database.ErrNotFound
	}
	return &users[0], nil
}

func (s *Store) FindUserByClerkID(_ context.Context, clerkID string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.ClerkID == clerkID })
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Email == email })
}

func (s *Store) FindUserByVerifyToken(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, database.ErrNotFound
	}
	return s.findUser(func(u *models.User) bool { return u.VerifyToken == token })
}

func (s *Store) FindUsersByClerkIDs(_ context.Context, clerkIDs []string) ([]models.User, error) {
	want := make(map[string]bool, len(clerkIDs))
	for _, id := range clerkIDs {
		want[id] = true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return all(s.users, func(u *models.User) bool { return want[u.ClerkID] })
}

func (s *Store) ListUsers(context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users, err := all[models.User](s.users, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (s *Store) UpdateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userConflict(u) {
		return database.ErrDuplicate
	}
	u.UpdatedAt = s.now()
	return replace(s.users, u.ID, u)
}

// Posts

func (s *Store) CreatePost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return put(s.posts, p.ID, p)
}

func (s *Store) FindPost(_ context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get[models.Post](s.posts, id)
}

func (s *Store) ListPosts(_ context.Context, f database.PostFilter) ([]models.Post, error) {
	levels := make(map[string]bool, len(f.Levels))
	for _, l := range f.Levels {
		levels[l] = true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts, err := all(s.posts, func(p *models.Post) bool {
		if p.IsDeleted {
			return false
		}
		if f.ByLevel && !levels[p.LevelValue] {
			return false
		}
		return !(f.ExcludeHome && p.LevelType == models.LevelHome)
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(posts, newestFirst(func(i int) (time.Time, primitive.ObjectID) {
		return posts[i].CreatedAt, posts[i].ID
	}))
	return posts, nil
}

func (s *Store) UpdatePost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := get[models.Post](s.posts, p.ID.Hex())
	if err != nil {
		return err
	}
	p.Views = stored.Views
	p.CommentsCount = stored.CommentsCount
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = s.now()
	return put(s.posts, p.ID, p)
}

func (s *Store) IncrementPostViews(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := get[models.Post](s.posts, id)
	if err != nil {
		return nil, err
	}
	p.Views++
	p.UpdatedAt = s.now()
	if err := put(s.posts, p.ID, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) IncrementCommentsCount(_ context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := get[models.Post](s.posts, id)
	if err != nil {
		return err
	}
	p.CommentsCount += int64(delta)
	return put(s.posts, p.ID, p)
}

func (s *Store) CommentCounters(context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	posts, err := all[models.Post](s.posts, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(posts))
	for _, p := range posts {
		out[p.ID.Hex()] = p.CommentsCount
	}
	return out, nil
}

func (s *Store) SetCommentsCount(_ context.Context, id string, expected, n int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := get[models.Post](s.posts, id)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if p.CommentsCount != expected {
		return false, nil
	}
	p.CommentsCount = n
	return true, put(s.posts, p.ID, p)
}

// Comments

func (s *Store) CreateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return put(s.comments, c.ID, c)
}

func (s *Store) FindComment(_ context.Context, id string) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get[models.Comment](s.comments, id)
}

func (s *Store) ListComments(_ context.Context, postID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments, err := all(s.comments, func(c *models.Comment) bool {
		return postID == "" || c.PostID == postID
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(comments, newestFirst(func(i int) (time.Time, primitive.ObjectID) {
		return comments[i].CreatedAt, comments[i].ID
	}))
	return comments, nil
}

func (s *Store) UpdateComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.UpdatedAt = s.now()
	return replace(s.comments, c.ID, c)
}

func (s *Store) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.comments, id)
}

func (s *Store) CountCommentsByPost(context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments, err := all[models.Comment](s.comments, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64)
	for _, c := range comments {
		out[c.PostID]++
	}
	return out, nil
}

// Statuses

func (s *Store) CreateStatus(_ context.Context, st *models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	return put(s.statuses, st.ID, st)
}

func (s *Store) FindStatus(_ context.Context, id string) (*models.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get[models.Status](s.statuses, id)
}

func (s *Store) ListStatuses(context.Context) ([]models.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, err := all[models.Status](s.statuses, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, newestFirst(func(i int) (time.Time, primitive.ObjectID) {
		return out[i].CreatedAt, out[i].ID
	}))
	return out, nil
}

func (s *Store) UpdateStatus(_ context.Context, st *models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.UpdatedAt = s.now()
	return replace(s.statuses, st.ID, st)
}

func (s *Store) DeleteStatus(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.statuses, id)
}

// Products

func (s *Store) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return put(s.products, p.ID, p)
}

func (s *Store) FindProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get[models.Product](s.products, id)
}

func (s *Store) ListProducts(context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, err := all[models.Product](s.products, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, newestFirst(func(i int) (time.Time, primitive.ObjectID) {
		return out[i].CreatedAt, out[i].ID
	}))
	return out, nil
}

func (s *Store) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.UpdatedAt = s.now()
	return replace(s.products, p.ID, p)
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.products, id)
}

// Categories

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := all(s.categories, func(o *models.Category) bool { return o.Name == c.Name })
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return database.ErrDuplicate
	}
	s.stamp(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return put(s.categories, c.ID, c)
}

func (s *Store) FindCategory(_ context.Context, id string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get[models.Category](s.categories, id)
}

func (s *Store) ListCategories(context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, err := all[models.Category](s.categories, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clash, err := all(s.categories, func(o *models.Category) bool { return o.Name == c.Name && o.ID != c.ID })
	if err != nil {
		return err
	}
	if len(clash) > 0 {
		return database.ErrDuplicate
	}
	c.UpdatedAt = s.now()
	return replace(s.categories, c.ID, c)
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.categories, id)
}

// News

func (s *Store) CreateNews(_ context.Context, n *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	return put(s.news, n.ID, n)
}

func (s *Store) FindNews(_ context.Context, id string) (*models.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return get[models.News](s.news, id)
}

func (s *Store) ListNews(context.Context) ([]models.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out, err := all[models.News](s.news, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, newestFirst(func(i int) (time.Time, primitive.ObjectID) {
		return out[i].CreatedAt, out[i].ID
	}))
	return out, nil
}

func (s *Store) UpdateNews(_ context.Context, n *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.UpdatedAt = s.now()
	return replace(s.news, n.ID, n)
}

func (s *Store) DeleteNews(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.news, id)
}
