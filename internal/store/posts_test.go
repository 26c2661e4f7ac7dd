package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/social-feed/backend/internal/models"
	"github.com/ayush/social-feed/backend/internal/testutil"
)

func TestPostStore_ListNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := NewPostStore(db)

	poster := primitive.NewObjectID()
	for _, msg := range []string{"first", "second", "third"} {
		require.NoError(t, s.Create(ctx, &models.Post{PosterID: poster, Message: msg}))
		time.Sleep(5 * time.Millisecond)
	}

	posts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "third", posts[0].Message)
	assert.Equal(t, "first", posts[2].Message)
	assert.NotNil(t, posts[0].Likers)
	assert.NotNil(t, posts[0].Comments)
}

func TestPostStore_LikeIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := NewPostStore(db)

	p := &models.Post{PosterID: primitive.NewObjectID(), Message: "hi"}
	require.NoError(t, s.Create(ctx, p))
	liker := primitive.NewObjectID().Hex()

	_, err := s.AddLiker(ctx, p.ID, liker)
	require.NoError(t, err)
	got, err := s.AddLiker(ctx, p.ID, liker)
	require.NoError(t, err)
	assert.Equal(t, []string{liker}, got.Likers)

	got, err = s.RemoveLiker(ctx, p.ID, liker)
	require.NoError(t, err)
	assert.Empty(t, got.Likers)

	got, err = s.RemoveLiker(ctx, p.ID, liker)
	require.NoError(t, err, "removing an absent liker is a no-op")
	assert.Empty(t, got.Likers)

	_, err = s.AddLiker(ctx, primitive.NewObjectID(), liker)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostStore_Comments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := NewPostStore(db)

	p := &models.Post{PosterID: primitive.NewObjectID(), Message: "hi"}
	require.NoError(t, s.Create(ctx, p))

	got, err := s.AddComment(ctx, p.ID, models.Comment{CommenterID: primitive.NewObjectID(), Text: "one"})
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	cid := got.Comments[0].ID
	assert.False(t, cid.IsZero())

	got, err = s.EditComment(ctx, p.ID, cid, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Comments[0].Text)

	_, err = s.EditComment(ctx, p.ID, primitive.NewObjectID(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteComment(ctx, p.ID, cid))
	got, err = s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)

	assert.ErrorIs(t, s.DeleteComment(ctx, primitive.NewObjectID(), cid), ErrNotFound)
}

func TestPostStore_UpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	s := NewPostStore(db)

	p := &models.Post{PosterID: primitive.NewObjectID(), Message: "hi", Picture: "/uploads/posts/a.png"}
	require.NoError(t, s.Create(ctx, p))

	got, err := s.Update(ctx, p.ID, models.PostUpdate{Message: "changed"})
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Message)
	assert.Equal(t, "/uploads/posts/a.png", got.Picture)

	_, err = s.Update(ctx, primitive.NewObjectID(), models.PostUpdate{Message: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, p.ID))
	assert.ErrorIs(t, s.Delete(ctx, p.ID), ErrNotFound)
	_, err = s.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
