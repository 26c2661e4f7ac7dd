package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no document or stored object matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when an insert or update collides with the unique email index.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrInvalidID is returned by ParseID for strings that are not ObjectIDs.
	ErrInvalidID = errors.New("invalid id")
)

// ParseID converts a hex string into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// notFound maps the driver's no-documents error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
