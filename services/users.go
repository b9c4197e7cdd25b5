package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"

	"broadcast/apperr"
	"broadcast/database"
	"broadcast/models"
	"broadcast/stream"
)

const (
	defaultProvider    = "google"
	defaultAccountType = "Personal Account"
)

// StreamClient is the subset of the Stream API the services call.
type StreamClient interface {
	CreateToken(userID string) (string, error)
	CreateVideoToken(ctx context.Context, userID string) (string, error)
	UpsertUsers(ctx context.Context, users ...stream.User) error
	SendMessage(ctx context.Context, channelType, channelID, userID, text string) error
}

type UserService struct {
	users  database.UserStore
	stream StreamClient
	log    *logrus.Logger
}

func NewUserService(users database.UserStore, stream StreamClient, log *logrus.Logger) *UserService {
	return &UserService{users: users, stream: stream, log: log}
}

type SaveUserInput struct {
	ClerkID     string
	Email       string
	FirstName   string
	LastName    string
	NickName    string
	Image       string
	Provider    string
	AccountType string
}

type SessionInput struct {
	ClerkID   string
	Email     string
	FirstName string
	LastName  string
	NickName  string
	Image     string
}

// Session is a local user plus the Stream credentials for it.
type Session struct {
	User       *models.User `json:"user"`
	ChatToken  string       `json:"chatToken"`
	VideoToken string       `json:"videoToken"`
}

// UserListing is a user as seen by a viewer.
type UserListing struct {
	ID           string   `json:"_id"`
	ClerkID      string   `json:"clerkId"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	NickName     string   `json:"nickName"`
	Image        string   `json:"image"`
	County       string   `json:"county,omitempty"`
	Constituency string   `json:"constituency,omitempty"`
	Ward         string   `json:"ward,omitempty"`
	Followers    []string `json:"followers"`
	Following    []string `json:"following"`
	IsFollowing  bool     `json:"isFollowing"`
}

// NewNickName returns a generated handle of the form user_<unix-millis><suffix>.
func NewNickName() string {
	return fmt.Sprintf("user_%d%s", time.Now().UnixMilli(), gonanoid.MustGenerate("abcdefghijklmnopqrstuvwxyz0123456789", 4))
}

func userErr(err error) error {
	if errors.Is(err, database.ErrDuplicate) {
		return apperr.Validation("Nickname already taken")
	}
	return storeErr(err, "User not found")
}

// Save upserts by clerkId. On update only non-empty fields are applied and
// the existing nickname is kept unless a new one is given. created reports
// whether a new record was inserted.
func (s *UserService) Save(ctx context.Context, in SaveUserInput) (user *models.User, created bool, err error) {
	if in.ClerkID == "" || in.Email == "" {
		return nil, false, apperr.Validation("Missing clerkId or email")
	}

	existing, err := s.users.FindUserByClerkID(ctx, in.ClerkID)
	switch {
	case err == nil:
		applyNonEmpty(&existing.FirstName, in.FirstName)
		applyNonEmpty(&existing.LastName, in.LastName)
		applyNonEmpty(&existing.NickName, in.NickName)
		applyNonEmpty(&existing.Image, in.Image)
		applyNonEmpty(&existing.Provider, in.Provider)
		applyNonEmpty(&existing.AccountType, in.AccountType)
		if existing.NickName == "" {
			existing.NickName = NewNickName()
		}
		if err := s.users.UpdateUser(ctx, existing); err != nil {
			return nil, false, userErr(err)
		}
		return existing, false, nil

	case !errors.Is(err, database.ErrNotFound):
		return nil, false, storeErr(err, "User not found")
	}

	user = &models.User{
		ClerkID:     in.ClerkID,
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		NickName:    in.NickName,
		Image:       in.Image,
		Provider:    orDefault(in.Provider, defaultProvider),
		AccountType: orDefault(in.AccountType, defaultAccountType),
	}
	if user.NickName == "" {
		user.NickName = NewNickName()
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, false, userErr(err)
	}
	return user, true, nil
}

// CreateOrGet finds a user by email, creating one if needed, registers it
// with Stream and mints chat and video tokens.
func (s *UserService) CreateOrGet(ctx context.Context, in SessionInput) (*Session, error) {
	if in.Email == "" || in.FirstName == "" {
		return nil, apperr.Validation("Missing email or firstName")
	}

	user, err := s.users.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, database.ErrNotFound) {
		user = &models.User{
			ClerkID:     orDefault(in.ClerkID, fmt.Sprintf("user_%d", time.Now().UnixMilli())),
			Email:       in.Email,
			FirstName:   in.FirstName,
			LastName:    in.LastName,
			NickName:    orDefault(in.NickName, NewNickName()),
			Image:       in.Image,
			Provider:    defaultProvider,
			AccountType: defaultAccountType,
		}
		err = s.users.CreateUser(ctx, user)
	}
	if err != nil {
		return nil, userErr(err)
	}

	if err := s.stream.UpsertUsers(ctx, stream.User{ID: user.ClerkID, Name: user.FirstName, Image: in.Image}); err != nil {
		return nil, apperr.Upstream("Server error", err)
	}
	chatToken, err := s.stream.CreateToken(user.ClerkID)
	if err != nil {
		return nil, apperr.Upstream("Server error", err)
	}
	videoToken, err := s.stream.CreateVideoToken(ctx, user.ClerkID)
	if err != nil {
		return nil, apperr.Upstream("Server error", err)
	}

	return &Session{User: user, ChatToken: chatToken, VideoToken: videoToken}, nil
}

func (s *UserService) Get(ctx context.Context, clerkID string) (*models.User, error) {
	user, err := s.users.FindUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return user, nil
}

// UpdateLocation overwrites all three location fields.
func (s *UserService) UpdateLocation(ctx context.Context, clerkID, county, constituency, ward string) (*models.User, error) {
	if clerkID == "" {
		return nil, apperr.Validation("clerkId required")
	}
	user, err := s.Get(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	user.County, user.Constituency, user.Ward = county, constituency, ward
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, userErr(err)
	}
	return user, nil
}

func (s *UserService) UpdateImage(ctx context.Context, clerkID, image string) (*models.User, error) {
	if clerkID == "" || image == "" {
		return nil, apperr.Validation("clerkId and image are required")
	}
	user, err := s.Get(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	user.Image = image
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, userErr(err)
	}
	return user, nil
}

func (s *UserService) pair(ctx context.Context, clerkID, targetID string) (*models.User, *models.User, error) {
	user, err := s.Get(ctx, clerkID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	return user, target, nil
}

// Follow records clerkID following targetID on both documents. Repeating a
// follow changes nothing.
func (s *UserService) Follow(ctx context.Context, clerkID, targetID string) (*models.User, error) {
	if clerkID == targetID {
		return nil, apperr.Validation("You cannot follow yourself")
	}
	user, target, err := s.pair(ctx, clerkID, targetID)
	if err != nil {
		return nil, err
	}

	if !hasString(target.Followers, clerkID) {
		target.AddFollower(clerkID)
		if err := s.users.UpdateUser(ctx, target); err != nil {
			return nil, userErr(err)
		}
	}
	if !user.IsFollowing(targetID) {
		user.Follow(targetID)
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, userErr(err)
		}
	}
	return target, nil
}

func (s *UserService) Unfollow(ctx context.Context, clerkID, targetID string) (*models.User, error) {
	user, target, err := s.pair(ctx, clerkID, targetID)
	if err != nil {
		return nil, err
	}

	target.RemoveFollower(clerkID)
	if err := s.users.UpdateUser(ctx, target); err != nil {
		return nil, userErr(err)
	}
	user.Unfollow(targetID)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, userErr(err)
	}
	return target, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	return users, nil
}

// ListFor lists users with isFollowing computed for viewer. An unknown
// viewer follows nobody.
func (s *UserService) ListFor(ctx context.Context, viewer string) ([]UserListing, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var following []string
	for _, u := range users {
		if u.ClerkID == viewer {
			following = u.Following
			break
		}
	}

	out := make([]UserListing, 0, len(users))
	for _, u := range users {
		out = append(out, UserListing{
			ID:           u.ID.Hex(),
			ClerkID:      u.ClerkID,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			NickName:     u.NickName,
			Image:        u.Image,
			County:       u.County,
			Constituency: u.Constituency,
			Ward:         u.Ward,
			Followers:    u.Followers,
			Following:    u.Following,
			IsFollowing:  hasString(following, u.ClerkID),
		})
	}
	return out, nil
}

func applyNonEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func hasString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
