package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location scopes a post or a feed query.
const (
	LevelHome         = "home"
	LevelCounty       = "county"
	LevelConstituency = "constituency"
	LevelWard         = "ward"
)

// ValidLevelType reports whether t is one of the four location scopes.
func ValidLevelType(t string) bool {
	switch t {
	case LevelHome, LevelCounty, LevelConstituency, LevelWard:
		return true
	}
	return false
}

// AuthorSnapshot is copied from the User at post creation and never refreshed.
type AuthorSnapshot struct {
	ClerkID   string `bson:"clerkId" json:"clerkId"`
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	NickName  string `bson:"nickName" json:"nickName"`
	Image     string `bson:"image" json:"image"`
}

// LinkPreview is stored as the client sent it; its keys vary by unfurler.
type LinkPreview = bson.M

var ErrLinkPreviewShape = errors.New("linkPreview must be an object or a URL string")

// NewLinkPreview accepts a decoded JSON value. Objects are kept whole, a bare
// string becomes {"url": s}, and null or "" yields nil.
func NewLinkPreview(v interface{}) (LinkPreview, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		return LinkPreview(t), nil
	case string:
		if t == "" {
			return nil, nil
		}
		return LinkPreview{"url": t}, nil
	}
	return nil, ErrLinkPreviewShape
}

type Recast struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	UserID     string             `bson:"userId" json:"userId"`
	Nickname   string             `bson:"nickname" json:"nickname"`
	Quote      string             `bson:"quote" json:"quote"`
	RecastedAt time.Time          `bson:"recastedAt" json:"recastedAt"`
}

type Post struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID        string             `bson:"userId" json:"userId"`
	User          AuthorSnapshot     `bson:"user" json:"user"`
	Caption       string             `bson:"caption" json:"caption"`
	Media         []string           `bson:"media" json:"media"`
	LevelType     string             `bson:"levelType" json:"levelType"`
	LevelValue    string             `bson:"levelValue" json:"levelValue"`
	LinkPreview   LinkPreview        `bson:"linkPreview" json:"linkPreview"`
	Likes         []string           `bson:"likes" json:"likes"`
	Recasts       []Recast           `bson:"recasts" json:"recasts"`
	IsDeleted     bool               `bson:"isDeleted" json:"isDeleted"`
	Views         int64              `bson:"views" json:"views"`
	CommentsCount int64              `bson:"commentsCount" json:"commentsCount"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ToggleLike adds userID to the like set if absent, removes it otherwise.
// It reports whether the user likes the post afterwards.
func (p *Post) ToggleLike(userID string) bool {
	var liked bool
	p.Likes, liked = toggleMember(p.Likes, userID)
	return liked
}

// ToggleRecast removes the user's quote-less recast when quote is empty and
// one exists. Any other call appends a new entry, so a user may hold one plain
// recast plus any number of quoted ones. It reports whether an entry was added.
func (p *Post) ToggleRecast(userID, nickname, quote string, at time.Time) bool {
	if quote == "" {
		for i, r := range p.Recasts {
			if r.UserID == userID && r.Quote == "" {
				p.Recasts = append(p.Recasts[:i:i], p.Recasts[i+1:]...)
				return false
			}
		}
	}
	if nickname == "" {
		nickname = "Anonymous"
	}
	p.Recasts = append(p.Recasts, Recast{
		ID:         primitive.NewObjectID(),
		UserID:     userID,
		Nickname:   nickname,
		Quote:      quote,
		RecastedAt: at,
	})
	return true
}

// RecastsBy counts recast entries owned by userID.
func (p *Post) RecastsBy(userID string) int {
	n := 0
	for _, r := range p.Recasts {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

// EnsureSlices replaces nil slices so documents encode as empty arrays.
func (p *Post) EnsureSlices() {
	if p.Media == nil {
		p.Media = []string{}
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Recasts == nil {
		p.Recasts = []Recast{}
	}
}
