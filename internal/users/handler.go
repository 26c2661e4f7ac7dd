// Package users serves account reads, updates, deletion and profile
// picture uploads.
package users

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ayush/social-feed/backend/internal/audit"
	"github.com/ayush/social-feed/backend/internal/auth"
	"github.com/ayush/social-feed/backend/internal/httpx"
	"github.com/ayush/social-feed/backend/internal/inputval"
	"github.com/ayush/social-feed/backend/internal/models"
	"github.com/ayush/social-feed/backend/internal/store"
	"github.com/ayush/social-feed/backend/internal/upload"
)

// UserStore defines the user persistence the handlers need.
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error)
	SetPicture(ctx context.Context, id primitive.ObjectID, picture string) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Handler struct {
	users    UserStore
	uploader *upload.Uploader
	audit    *audit.Logger
	log      *zap.Logger
}

func NewHandler(users UserStore, uploader *upload.Uploader, auditLog *audit.Logger, log *zap.Logger) *Handler {
	return &Handler{users: users, uploader: uploader, audit: auditLog, log: log}
}

// DeleteResponse is returned by Delete.
type DeleteResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// UploadResponse is returned by UploadProfile.
type UploadResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// List returns every user without password hashes.
//
//	@Summary	List users
//	@Tags		Users
//	@Produce	json
//	@Success	200	{array}		models.User
//	@Failure	500	{object}	httpx.ErrorBody
//	@Router		/api/user [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.log.Error("list users", zap.Error(err))
		httpx.WriteError(w, httpx.Internal, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

// Get returns one user. The route requires a bearer token.
//
//	@Summary	Get a user
//	@Tags		Users
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	models.User
//	@Failure	400	{object}	httpx.ErrorBody	"Malformed id or token"
//	@Failure	401	{object}	httpx.ErrorBody	"No token"
//	@Failure	404	{object}	httpx.ErrorBody
//	@Router		/api/user/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.storeError(w, "get user", err, "Utilisateur non trouvé")
		return
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		h.log.Debug("get user", zap.String("user_id", id.Hex()), zap.String("caller", claims.UserID))
	}
	httpx.WriteJSON(w, http.StatusOK, user)
}

// Update changes the provided fields of a user. Unknown ids are rejected.
//
//	@Summary	Update a user
//	@Tags		Users
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"User ID"
//	@Param		body	body		models.UserUpdate	true	"Fields to change"
//	@Success	200		{object}	models.User
//	@Failure	400		{object}	httpx.ErrorBody	"Malformed id, invalid field or email already used"
//	@Failure	404		{object}	httpx.ErrorBody
//	@Failure	500		{object}	httpx.ErrorBody
//	@Router		/api/user/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var upd models.UserUpdate
	if err := httpx.DecodeJSON(r, &upd); err != nil {
		httpx.WriteError(w, httpx.Validation, "Corps de requête invalide.")
		return
	}
	upd.FirstName = inputval.Name(upd.FirstName)
	upd.LastName = inputval.Name(upd.LastName)
	upd.Email = inputval.Email(upd.Email)
	if upd.Empty() {
		httpx.WriteError(w, httpx.Validation, "Aucun champ à mettre à jour.")
		return
	}
	if err := validateUpdate(upd); err != nil {
		httpx.WriteError(w, httpx.Validation, err.Error())
		return
	}

	var changed []string
	for field, v := range map[string]string{
		"firstName": upd.FirstName, "lastName": upd.LastName, "email": upd.Email, "password": upd.Password,
	} {
		if v != "" {
			changed = append(changed, field)
		}
	}

	if upd.Password != "" {
		hashed, err := auth.HashPassword(upd.Password)
		if err != nil {
			h.log.Error("hash password", zap.Error(err))
			httpx.WriteError(w, httpx.Internal, "")
			return
		}
		upd.Password = hashed
	}

	user, err := h.users.Update(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			httpx.WriteError(w, httpx.Conflict, "")
			return
		}
		h.storeError(w, "update user", err, "Utilisateur non trouvé")
		return
	}

	h.audit.Admin(r, audit.EventUserUpdated, id.Hex(), map[string]string{"fields": joinSorted(changed)})
	httpx.WriteJSON(w, http.StatusOK, user)
}

// Delete removes a user. Their posts are kept.
//
//	@Summary	Delete a user
//	@Tags		Users
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	DeleteResponse
//	@Failure	400	{object}	httpx.ErrorBody
//	@Failure	404	{object}	httpx.ErrorBody
//	@Failure	500	{object}	httpx.ErrorBody
//	@Router		/api/user/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, err := h.users.Delete(r.Context(), id)
	if err != nil {
		h.storeError(w, "delete user", err, "Utilisateur non trouvé")
		return
	}

	h.audit.Admin(r, audit.EventUserDeleted, id.Hex(), map[string]string{"email": user.Email})
	httpx.WriteJSON(w, http.StatusOK, DeleteResponse{Message: "Successfully deleted", User: user})
}

// UploadProfile replaces a user's picture with the uploaded image.
//
//	@Summary	Upload a profile picture
//	@Tags		Users
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		userId			formData	string	true	"User ID"
//	@Param		profileImage	formData	file	true	"PNG or JPEG, 500 KB max"
//	@Success	200				{object}	UploadResponse
//	@Failure	400				{object}	httpx.ErrorBody	"Malformed id or no file"
//	@Failure	404				{object}	httpx.ErrorBody
//	@Failure	500				{object}	httpx.ErrorBody	"Rejected file or storage failure"
//	@Router		/api/user/upload-profil [post]
func (h *Handler) UploadProfile(w http.ResponseWriter, r *http.Request) {
	fh, err := h.uploader.Parse(w, r, upload.FieldProfileImage)
	if err != nil {
		upload.WriteError(w, h.log, err)
		return
	}

	userID := r.FormValue("userId")
	id, err := store.ParseID(userID)
	if err != nil {
		httpx.WriteError(w, httpx.InvalidID, "ID inconnu : "+userID)
		return
	}

	current, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.storeError(w, "upload profile: get user", err, "Utilisateur non trouvé")
		return
	}

	picture, err := h.uploader.Save(r.Context(), upload.DirProfile, fh)
	if err != nil {
		upload.WriteError(w, h.log, err)
		return
	}

	user, err := h.users.SetPicture(r.Context(), id, picture)
	if err != nil {
		h.discard(r.Context(), picture)
		h.storeError(w, "upload profile: set picture", err, "Utilisateur non trouvé")
		return
	}

	if current.Picture != "" && current.Picture != models.DefaultPicture {
		if err := h.uploader.Remove(r.Context(), current.Picture); err != nil {
			h.log.Warn("remove old profile picture",
				zap.String("user_id", id.Hex()), zap.String("picture", current.Picture), zap.Error(err))
		}
	}

	h.audit.Admin(r, audit.EventPictureChanged, id.Hex(), map[string]string{"picture": picture})
	httpx.WriteJSON(w, http.StatusOK, UploadResponse{Message: "Image uploadée avec succès.", User: user})
}

// discard removes a file whose document write failed.
func (h *Handler) discard(ctx context.Context, picture string) {
	if err := h.uploader.Remove(context.WithoutCancel(ctx), picture); err != nil {
		h.log.Warn("remove orphaned upload", zap.String("picture", picture), zap.Error(err))
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := store.ParseID(raw)
	if err != nil {
		httpx.WriteError(w, httpx.InvalidID, "ID inconnu : "+raw)
		return primitive.NilObjectID, false
	}
	return id, true
}

// storeError writes 404 for ErrNotFound and logs anything else as a 500.
func (h *Handler) storeError(w http.ResponseWriter, op string, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteError(w, httpx.NotFound, notFoundMsg)
		return
	}
	h.log.Error(op, zap.Error(err))
	httpx.WriteError(w, httpx.Internal, "")
}

func validateUpdate(upd models.UserUpdate) error {
	if upd.FirstName != "" {
		if err := inputval.CheckName(upd.FirstName); err != nil {
			return err
		}
	}
	if upd.LastName != "" {
		if err := inputval.CheckName(upd.LastName); err != nil {
			return err
		}
	}
	if upd.Email != "" && !inputval.IsValidEmail(upd.Email) {
		return inputval.ErrEmailInvalid
	}
	if upd.Password != "" {
		if err := inputval.CheckPassword(upd.Password); err != nil {
			return err
		}
	}
	return nil
}

func joinSorted(fields []string) string {
	slices.Sort(fields)
	return strings.Join(fields, ",")
}
