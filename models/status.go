package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is a short-lived post variant. It is hard-deleted by its owner.
type Status struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID    string               `bson:"userId" json:"userId"`
	UserName  string               `bson:"userName,omitempty" json:"userName,omitempty"`
	FirstName string               `bson:"firstName,omitempty" json:"firstName,omitempty"`
	Nickname  string               `bson:"nickname,omitempty" json:"nickname,omitempty"`
	Caption   string               `bson:"caption" json:"caption"`
	Media     []string             `bson:"media" json:"media"`
	Likes     []string             `bson:"likes" json:"likes"`
	Comments  []primitive.ObjectID `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (s *Status) ToggleLike(userID string) bool {
	var liked bool
	s.Likes, liked = toggleMember(s.Likes, userID)
	return liked
}

func (s *Status) EnsureSlices() {
	if s.Media == nil {
		s.Media = []string{}
	}
	if s.Likes == nil {
		s.Likes = []string{}
	}
	if s.Comments == nil {
		s.Comments = []primitive.ObjectID{}
	}
}

// StatusAuthor is the profile summary attached to statuses on read.
type StatusAuthor struct {
	NickName  string `json:"nickName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Image     string `json:"image,omitempty"`
}

type StatusView struct {
	Status `bson:",inline"`
	User   StatusAuthor `json:"user"`
}
