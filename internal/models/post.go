package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a sub-document of Post.comments.
type Comment struct {
	ID          primitive.ObjectID `json:"_id"         bson:"_id"`
	CommenterID primitive.ObjectID `json:"commenterId" bson:"commenterId"`
	Text        string             `json:"text"        bson:"text"`
	Timestamp   time.Time          `json:"timestamp"   bson:"timestamp"`
}

// Post is a single feed entry stored in the posts collection.
type Post struct {
	ID        primitive.ObjectID `json:"_id"       bson:"_id,omitempty"`
	PosterID  primitive.ObjectID `json:"posterId"  bson:"posterId"`
	Message   string             `json:"message"   bson:"message"`
	Picture   string             `json:"picture,omitempty" bson:"picture,omitempty"`
	Likers    []string           `json:"likers"    bson:"likers"`
	Comments  []Comment          `json:"comments"  bson:"comments"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PostUpdate is the JSON body for PUT /api/post/{id}.
type PostUpdate struct {
	Message string `json:"message"`
	Picture string `json:"picture"`
}

// LikeRequest is the JSON body for the like and unlike routes.
type LikeRequest struct {
	UserID string `json:"userId"`
}

// CommentRequest is the JSON body for PATCH /api/post/add-comment/{id}.
type CommentRequest struct {
	CommenterID string `json:"commenterId"`
	Text        string `json:"text"`
}

// CommentEdit is the JSON body for PATCH /api/post/edit-comment/{id}.
type CommentEdit struct {
	CommentID string `json:"commentId"`
	Text      string `json:"text"`
}

// CommentDelete is the JSON body for PATCH /api/post/comment/delete/{id}.
type CommentDelete struct {
	CommentID string `json:"commentId"`
}
