package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPicture is the placeholder assigned to every new user.
const DefaultPicture = "./uploads/profil/random-user.png"

// User is a single account stored in the users collection.
type User struct {
	ID        primitive.ObjectID `json:"_id"       bson:"_id,omitempty"`
	FirstName string             `json:"firstName" bson:"firstName"`
	LastName  string             `json:"lastName"  bson:"lastName"`
	Email     string             `json:"email"     bson:"email"`
	Password  string             `json:"-"         bson:"password,omitempty"` // never serialize
	Picture   string             `json:"picture"   bson:"picture"`
	Likes     []string           `json:"likes"     bson:"likes"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RegisterRequest is the JSON body for POST /api/user/register.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate is the JSON body for PUT /api/user/{id}. Empty fields are left untouched.
type UserUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Empty reports whether the update carries no field at all.
func (u UserUpdate) Empty() bool {
	return u.FirstName == "" && u.LastName == "" && u.Email == "" && u.Password == ""
}
