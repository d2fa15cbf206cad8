// Package model defines the documents stored in MongoDB and the projections
// returned to API clients.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account in the `users` collection.
//
// Username is normalized (trimmed, lowercased) before it is written, and the
// collection carries a unique index on it. PasswordHash holds the bcrypt hash
// under the legacy `password` field name; it is never serialized to JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password" json:"-"`
	FirstName    string             `bson:"firstName" json:"firstName"`
	LastName     string             `bson:"lastName" json:"lastName"`
	PhoneNumber  string             `bson:"phoneNumber" json:"phoneNumber"`
	LinkedinID   string             `bson:"linkedinId" json:"linkedinId"`
	TeamName     string             `bson:"teamName" json:"teamName"`
	Position     string             `bson:"position" json:"position"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the projection returned by auth and user-listing endpoints.
// It carries no credential material.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	TeamName string `json:"teamName"`
	Position string `json:"position"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID.Hex(),
		Username: u.Username,
		TeamName: u.TeamName,
		Position: u.Position,
	}
}
