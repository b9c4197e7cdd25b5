package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ClerkID   string             `bson:"clerkId" json:"clerkId"`
	Email     string             `bson:"email" json:"email"`
	FirstName string             `bson:"firstName" json:"firstName"`
	LastName  string             `bson:"lastName" json:"lastName"`
	NickName  string             `bson:"nickName" json:"nickName"`
	Image     string             `bson:"image" json:"image"`

	// IEBC location, each level optional
	County       string `bson:"county,omitempty" json:"county,omitempty"`
	Constituency string `bson:"constituency,omitempty" json:"constituency,omitempty"`
	Ward         string `bson:"ward,omitempty" json:"ward,omitempty"`

	IsVerified        bool       `bson:"isVerified" json:"isVerified"`
	VerifyToken       string     `bson:"verifyToken,omitempty" json:"-"`
	VerifyTokenExpiry *time.Time `bson:"verifyTokenExpiry,omitempty" json:"-"`

	Provider    string `bson:"provider" json:"provider"`
	AccountType string `bson:"accountType,omitempty" json:"accountType,omitempty"`

	// Clerk ids, not document references
	Followers []string `bson:"followers" json:"followers"`
	Following []string `bson:"following" json:"following"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Snapshot copies the profile fields a post carries.
func (u *User) Snapshot() AuthorSnapshot {
	return AuthorSnapshot{
		ClerkID:   u.ClerkID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		NickName:  u.NickName,
		Image:     u.Image,
	}
}

func (u *User) IsFollowing(clerkID string) bool {
	return hasMember(u.Following, clerkID)
}

func (u *User) Follow(clerkID string)         { u.Following = addMember(u.Following, clerkID) }
func (u *User) Unfollow(clerkID string)       { u.Following = removeMember(u.Following, clerkID) }
func (u *User) AddFollower(clerkID string)    { u.Followers = addMember(u.Followers, clerkID) }
func (u *User) RemoveFollower(clerkID string) { u.Followers = removeMember(u.Followers, clerkID) }

// ClearVerification marks the user verified and drops the one-time token.
func (u *User) ClearVerification() {
	u.IsVerified = true
	u.VerifyToken = ""
	u.VerifyTokenExpiry = nil
}

func (u *User) EnsureSlices() {
	if u.Followers == nil {
		u.Followers = []string{}
	}
	if u.Following == nil {
		u.Following = []string{}
	}
}
