package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/social-feed/backend/internal/models"
)

// PostStore handles post CRUD and the likers/comments sub-resources.
// Every mutation is a single atomic update on one document.
type PostStore struct {
	col *mongo.Collection
}

func NewPostStore(db *mongo.Database) *PostStore {
	return &PostStore{col: db.Collection(postsCollection)}
}

// Create inserts p with empty likers and comments.
func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Likers = []string{}
	p.Comments = []models.Comment{}

	if _, err := s.col.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// List returns every post, newest first.
func (s *PostStore) List(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Update applies the non-empty fields of upd.
func (s *PostStore) Update(ctx context.Context, id primitive.ObjectID, upd models.PostUpdate) (*models.Post, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.Message != "" {
		set["message"] = upd.Message
	}
	if upd.Picture != "" {
		set["picture"] = upd.Picture
	}
	return s.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (s *PostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLiker adds userID to likers unless it is already present.
func (s *PostStore) AddLiker(ctx context.Context, id primitive.ObjectID, userID string) (*models.Post, error) {
	return s.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{"likers": userID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

// RemoveLiker removes userID from likers; absent ids are a no-op.
func (s *PostStore) RemoveLiker(ctx context.Context, id primitive.ObjectID, userID string) (*models.Post, error) {
	return s.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"likers": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// AddComment appends c, assigning its ID and timestamp.
func (s *PostStore) AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Post, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.Timestamp = now
	return s.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updatedAt": now},
	})
}

// EditComment replaces the text of one comment and refreshes its timestamp.
// ErrNotFound covers both a missing post and a missing comment.
func (s *PostStore) EditComment(ctx context.Context, id, commentID primitive.ObjectID, text string) (*models.Post, error) {
	now := time.Now().UTC()
	return s.findAndUpdate(ctx, bson.M{"_id": id, "comments._id": commentID}, bson.M{
		"$set": bson.M{
			"comments.$.text":      text,
			"comments.$.timestamp": now,
			"updatedAt":            now,
		},
	})
}

// DeleteComment pulls the comment from the post. It only fails with
// ErrNotFound when the post itself is missing.
func (s *PostStore) DeleteComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"comments": bson.M{"_id": commentID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostStore) findAndUpdate(ctx context.Context, filter, update bson.M) (*models.Post, error) {
	var p models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}
