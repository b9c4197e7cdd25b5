package models

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reply lives inside its parent Comment and is only ever written as part of it.
type Reply struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	UserID    string             `bson:"userId" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	Text      string             `bson:"text" json:"text"`
	Likes     []string           `bson:"likes" json:"likes"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PostID    string             `bson:"postId" json:"postId"`
	UserID    string             `bson:"userId" json:"userId"`
	UserName  string             `bson:"userName" json:"userName"`
	Text      string             `bson:"text" json:"text"`
	Likes     []string           `bson:"likes" json:"likes"`
	Replies   []Reply            `bson:"replies" json:"replies"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (c *Comment) ToggleLike(userID string) bool {
	var liked bool
	c.Likes, liked = toggleMember(c.Likes, userID)
	return liked
}

// AddReply appends a reply with its own identity and an empty like set.
func (c *Comment) AddReply(userID, userName, text string, at time.Time) Reply {
	if userName == "" {
		userName = "Anonymous"
	}
	r := Reply{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		UserName:  userName,
		Text:      text,
		Likes:     []string{},
		CreatedAt: at,
	}
	c.Replies = append(c.Replies, r)
	return r
}

// Reply returns the reply with the given hex id, or nil.
func (c *Comment) Reply(id string) *Reply {
	for i := range c.Replies {
		if c.Replies[i].ID.Hex() == id {
			return &c.Replies[i]
		}
	}
	return nil
}

// RemoveReply drops the reply with the given hex id and reports whether one
// was found.
func (c *Comment) RemoveReply(id string) bool {
	for i := range c.Replies {
		if c.Replies[i].ID.Hex() == id {
			c.Replies = append(c.Replies[:i:i], c.Replies[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleReplyLike flips userID on the reply's own like set. ok is false when
// the reply does not exist.
func (c *Comment) ToggleReplyLike(replyID, userID string) (liked bool, likes int, ok bool) {
	r := c.Reply(replyID)
	if r == nil {
		return false, 0, false
	}
	r.Likes, liked = toggleMember(r.Likes, userID)
	return liked, len(r.Likes), true
}

// SortReplies orders replies newest first. Replies are stored in insertion
// order and sorted only for reads.
func (c *Comment) SortReplies() {
	sort.SliceStable(c.Replies, func(i, j int) bool {
		return c.Replies[i].CreatedAt.After(c.Replies[j].CreatedAt)
	})
}

func (c *Comment) EnsureSlices() {
	if c.Likes == nil {
		c.Likes = []string{}
	}
	if c.Replies == nil {
		c.Replies = []Reply{}
	}
	for i := range c.Replies {
		if c.Replies[i].Likes == nil {
			c.Replies[i].Likes = []string{}
		}
	}
}
