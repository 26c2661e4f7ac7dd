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

// withoutPassword is applied to every read that leaves the store.
var withoutPassword = bson.M{"password": 0}

// UserStore handles user CRUD in MongoDB.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection(usersCollection)}
}

// Create inserts u and fills in its ID and timestamps. u.Password must
// already be hashed.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Picture == "" {
		u.Picture = models.DefaultPicture
	}
	if u.Likes == nil {
		u.Likes = []string{}
	}

	if _, err := s.col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByEmail returns the user including the password hash. It is the only
// read that does so and exists for credential checks.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetProjection(withoutPassword))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update sets the non-empty fields of upd on an existing user and returns
// the result. It never creates a document. upd.Password must already be hashed.
func (s *UserStore) Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.FirstName != "" {
		set["firstName"] = upd.FirstName
	}
	if upd.LastName != "" {
		set["lastName"] = upd.LastName
	}
	if upd.Email != "" {
		set["email"] = upd.Email
	}
	if upd.Password != "" {
		set["password"] = upd.Password
	}

	u, err := s.findAndUpdate(ctx, id, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return nil, ErrDuplicateEmail
	}
	return u, err
}

// SetPicture records a new profile picture path.
func (s *UserStore) SetPicture(ctx context.Context, id primitive.ObjectID, picture string) (*models.User, error) {
	return s.findAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"picture":   picture,
		"updatedAt": time.Now().UTC(),
	}})
}

// Delete removes the user and returns the deleted document. Posts authored
// by the user are left in place.
func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	opts := options.FindOneAndDelete().SetProjection(withoutPassword)
	if err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id}, opts).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) findAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.User, error) {
	var u models.User
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutPassword)
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
