// Package posts serves the feed: post CRUD, likes and comments.
package posts

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ayush/social-feed/backend/internal/audit"
	"github.com/ayush/social-feed/backend/internal/httpx"
	"github.com/ayush/social-feed/backend/internal/inputval"
	"github.com/ayush/social-feed/backend/internal/models"
	"github.com/ayush/social-feed/backend/internal/sanitize"
	"github.com/ayush/social-feed/backend/internal/store"
	"github.com/ayush/social-feed/backend/internal/upload"
)

// PostStore defines the post persistence the handlers need.
type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	List(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.PostUpdate) (*models.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddLiker(ctx context.Context, id primitive.ObjectID, userID string) (*models.Post, error)
	RemoveLiker(ctx context.Context, id primitive.ObjectID, userID string) (*models.Post, error)
	AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) (*models.Post, error)
	EditComment(ctx context.Context, id, commentID primitive.ObjectID, text string) (*models.Post, error)
	DeleteComment(ctx context.Context, id, commentID primitive.ObjectID) error
}

const (
	msgPostNotFound    = "Post non trouvé"
	msgCommentNotFound = "Commentaire non trouvé"
)

type Handler struct {
	posts    PostStore
	uploader *upload.Uploader
	audit    *audit.Logger
	log      *zap.Logger
}

func NewHandler(posts PostStore, uploader *upload.Uploader, auditLog *audit.Logger, log *zap.Logger) *Handler {
	return &Handler{posts: posts, uploader: uploader, audit: auditLog, log: log}
}

// CreateRequest is the JSON form of a post without an image.
type CreateRequest struct {
	PosterID string `json:"posterId"`
	Message  string `json:"message"`
}

// Create publishes a post with an optional image.
//
//	@Summary	Create a post
//	@Tags		Posts
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		posterId	formData	string	true	"Author ID"
//	@Param		message		formData	string	false	"Text, 500 characters max"
//	@Param		postImage	formData	file	false	"PNG or JPEG, 500 KB max"
//	@Success	201			{object}	models.Post
//	@Failure	400			{object}	httpx.ErrorBody
//	@Failure	500			{object}	httpx.ErrorBody	"Rejected file or storage failure"
//	@Router		/api/post [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	fh, err := h.uploader.Parse(w, r, upload.FieldPostImage)
	if err != nil && !errors.Is(err, upload.ErrNoFile) {
		upload.WriteError(w, h.log, err)
		return
	}

	req := CreateRequest{PosterID: r.FormValue("posterId"), Message: r.FormValue("message")}
	if isJSON(r) {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, httpx.Validation, "Corps de requête invalide.")
			return
		}
	}

	posterID, err := store.ParseID(req.PosterID)
	if err != nil {
		httpx.WriteError(w, httpx.InvalidID, "ID inconnu : "+req.PosterID)
		return
	}
	message, ok := cleanText(w, req.Message)
	if !ok {
		return
	}

	post := &models.Post{PosterID: posterID, Message: message}
	if fh != nil {
		picture, err := h.uploader.Save(r.Context(), upload.DirPosts, fh)
		if err != nil {
			upload.WriteError(w, h.log, err)
			return
		}
		post.Picture = picture
	}

	if err := h.posts.Create(r.Context(), post); err != nil {
		if post.Picture != "" {
			h.discard(r.Context(), post.Picture)
		}
		h.log.Error("create post", zap.Error(err))
		httpx.WriteError(w, httpx.Internal, "")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, post)
}

// List returns the feed, newest first.
//
//	@Summary	List posts
//	@Tags		Posts
//	@Produce	json
//	@Success	200	{array}		models.Post
//	@Failure	500	{object}	httpx.ErrorBody
//	@Router		/api/post [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		h.log.Error("list posts", zap.Error(err))
		httpx.WriteError(w, httpx.Internal, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, posts)
}

// Get returns one post.
//
//	@Summary	Get a post
//	@Tags		Posts
//	@Produce	json
//	@Param		id	path		string	true	"Post ID"
//	@Success	200	{object}	models.Post
//	@Failure	400	{object}	httpx.ErrorBody
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/api/post/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, httpx.InvalidID)
	if !ok {
		return
	}
	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.storeError(w, "get post", err, msgPostNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

// Update changes the message or picture of a post.
//
//	@Summary	Update a post
//	@Tags		Posts
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Post ID"
//	@Param		body	body		models.PostUpdate	true	"Fields to change"
//	@Success	200		{object}	models.Post
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	404		{object}	httpx.ErrorBody
//	@Router		/api/post/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, httpx.InvalidID)
	if !ok {
		return
	}

	var upd models.PostUpdate
	if err := httpx.DecodeJSON(r, &upd); err != nil {
		httpx.WriteError(w, httpx.Validation, "Corps de requête invalide.")
		return
	}
	if upd.Message, ok = cleanText(w, upd.Message); !ok {
		return
	}
	upd.Picture = strings.TrimSpace(upd.Picture)
	if upd.Picture != "" && !strings.HasPrefix(upd.Picture, upload.PathPrefix+upload.DirPosts+"/") {
		httpx.WriteError(w, httpx.Validation, "Chemin d'image invalide.")
		return
	}
	if upd.Message == "" && upd.Picture == "" {
		httpx.WriteError(w, httpx.Validation, "Aucun champ à mettre à jour.")
		return
	}

	post, err := h.posts.Update(r.Context(), id, upd)
	if err != nil {
		h.storeError(w, "update post", err, msgPostNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

// Delete removes a post and its image.
//
//	@Summary	Delete a post
//	@Tags		Posts
//	@Produce	json
//	@Param		id	path		string	true	"Post ID"
//	@Success	200	{object}	httpx.Message
//	@Failure	400	{object}	httpx.ErrorBody
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/api/post/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, httpx.InvalidID)
	if !ok {
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.storeError(w, "delete post: get", err, msgPostNotFound)
		return
	}
	if err := h.posts.Delete(r.Context(), id); err != nil {
		h.storeError(w, "delete post", err, msgPostNotFound)
		return
	}

	if post.Picture != "" {
		if err := h.uploader.Remove(context.WithoutCancel(r.Context()), post.Picture); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				h.log.Warn("post image already gone", zap.String("picture", post.Picture))
			} else {
				h.log.Error("remove post image", zap.String("picture", post.Picture), zap.Error(err))
			}
		}
	}

	h.audit.Admin(r, audit.EventPostDeleted, post.PosterID.Hex(), map[string]string{"post_id": id.Hex()})
	httpx.WriteJSON(w, http.StatusOK, httpx.Message{Message: "Post et image supprimés avec succès."})
}

// Like adds a user to the likers of a post. Liking twice changes nothing.
//
//	@Summary	Like a post
//	@Tags		Posts
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Post ID"
//	@Param		body	body		models.LikeRequest	true	"Liker"
//	@Success	200		{object}	models.Post
//	@Failure	404		{object}	httpx.ErrorBody	"Unknown or malformed id"
//	@Router		/api/post/like/{id} [patch]
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, httpx.NotFound)
	if !ok {
		return
	}
	var req models.LikeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.Validation, "Corps de requête invalide.")
		return
	}
	userID, err := store.ParseID(req.UserID)
	if err != nil {
		httpx.WriteError(w, httpx.NotFound, "ID inconnu : "+req.UserID)
		return
	}

	post, err := h.posts.AddLiker(r.Context(), id, userID.Hex())
	if err != nil {
		h.storeError(w, "like post", err, msgPostNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

// Unlike removes a user from the likers of a post.
//
//	@Summary	Unlike a post
//	@Tags		Posts
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Post ID"
//	@Param		body	body		models.LikeRequest	true	"Liker"
//	@Success	200		{object}	models.Post
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	404		{object}	httpx.ErrorBody
//	@Router		/api/post/unlike/{id} [patch]
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, httpx.InvalidID)
	if !ok {
		return
	}
	var req models.LikeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.Validation, "Corps de requête invalide.")
		return
	}
	userID, err := store.ParseID(req.UserID)
	if err != nil {
		httpx.WriteError(w, httpx.InvalidID, "ID inconnu : "+req.UserID)
		return
	}

	post, err := h.posts.RemoveLiker(r.Context(), id, userID.Hex())
	if err != nil {
		h.storeError(w, "unlike post", err, msgPostNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

// AddComment appends a comment to a post.
//
//	@Summary	Comment a post
//	@Tags		Comments
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Post ID"
//	@Param		body	body		models.CommentRequest	true	"Comment"
//	@Success	200		{object}	models.Post
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	404		{object}	httpx.ErrorBody
//	@Router		/api/post/add-comment/{id} [patch]
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, httpx.InvalidID)
	if !ok {
		return
	}
	var req models.CommentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.Validation, "Corps de requête invalide.")
		return
	}
	commenterID, err := store.ParseID(req.CommenterID)
	if err != nil {
		httpx.WriteError(w, httpx.InvalidID, "ID inconnu : "+req.CommenterID)
		return
	}
	text, ok := commentText(w, req.Text)
	if !ok {
		return
	}

	post, err := h.posts.AddComment(r.Context(), id, models.Comment{CommenterID: commenterID, Text: text})
	if err != nil {
		h.storeError(w, "add comment", err, msgPostNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

// EditComment replaces the text of a comment.
//
//	@Summary	Edit a comment
//	@Tags		Comments
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Post ID"
//	@Param		body	body		models.CommentEdit	true	"Comment and new text"
//	@Success	200		{object}	models.Post
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	404		{object}	httpx.ErrorBody	"Unknown post or comment"
//	@Router		/api/post/edit-comment/{id} [patch]
func (h *Handler) EditComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, httpx.InvalidID)
	if !ok {
		return
	}
	var req models.CommentEdit
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.Validation, "Corps de requête invalide.")
		return
	}
	commentID, err := store.ParseID(req.CommentID)
	if err != nil {
		httpx.WriteError(w, httpx.InvalidID, "ID inconnu : "+req.CommentID)
		return
	}
	text, ok := commentText(w, req.Text)
	if !ok {
		return
	}

	post, err := h.posts.EditComment(r.Context(), id, commentID, text)
	if err != nil {
		h.storeError(w, "edit comment", err, msgCommentNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, post)
}

// DeleteComment removes a comment from a post.
//
//	@Summary	Delete a comment
//	@Tags		Comments
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Post ID"
//	@Param		body	body		models.CommentDelete	true	"Comment"
//	@Success	200		{object}	httpx.Message
//	@Failure	400		{object}	httpx.ErrorBody
//	@Failure	404		{object}	httpx.ErrorBody
//	@Router		/api/post/comment/delete/{id} [patch]
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, httpx.InvalidID)
	if !ok {
		return
	}
	var req models.CommentDelete
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.Validation, "Corps de requête invalide.")
		return
	}
	commentID, err := store.ParseID(req.CommentID)
	if err != nil {
		httpx.WriteError(w, httpx.InvalidID, "ID inconnu : "+req.CommentID)
		return
	}

	if err := h.posts.DeleteComment(r.Context(), id, commentID); err != nil {
		h.storeError(w, "delete comment", err, msgPostNotFound)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Message{Message: "Successfully deleted comment."})
}

func (h *Handler) discard(ctx context.Context, picture string) {
	if err := h.uploader.Remove(context.WithoutCancel(ctx), picture); err != nil {
		h.log.Warn("remove orphaned upload", zap.String("picture", picture), zap.Error(err))
	}
}

func (h *Handler) storeError(w http.ResponseWriter, op string, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, httpx.NotFound, notFoundMsg)
		return
	}
	h.log.Error(op, zap.Error(err))
	httpx.WriteError(w, httpx.Internal, "")
}

// pathID parses the {id} URL parameter, answering with kind when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, kind httpx.Kind) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := store.ParseID(raw)
	if err != nil {
		httpx.WriteError(w, kind, "ID inconnu : "+raw)
		return primitive.NilObjectID, false
	}
	return id, true
}

// cleanText sanitizes a post message and checks its length.
func cleanText(w http.ResponseWriter, s string) (string, bool) {
	s = sanitize.Text(s)
	if err := inputval.CheckText(s); err != nil {
		httpx.WriteError(w, httpx.Validation, err.Error())
		return "", false
	}
	return s, true
}

func commentText(w http.ResponseWriter, s string) (string, bool) {
	s, ok := cleanText(w, s)
	if ok && s == "" {
		httpx.WriteError(w, httpx.Validation, "Le commentaire ne peut pas être vide.")
		return "", false
	}
	return s, ok
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
