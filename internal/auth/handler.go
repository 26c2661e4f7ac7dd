package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayush/social-feed/backend/internal/audit"
	"github.com/ayush/social-feed/backend/internal/httpx"
	"github.com/ayush/social-feed/backend/internal/inputval"
	"github.com/ayush/social-feed/backend/internal/models"
	"github.com/ayush/social-feed/backend/internal/store"
)

// UserStore defines the user persistence the auth handlers need.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users  UserStore
	tokens *Tokens
	audit  *audit.Logger
	log    *zap.Logger
}

func NewHandler(users UserStore, tokens *Tokens, auditLog *audit.Logger, log *zap.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, audit: auditLog, log: log}
}

// RegisterResponse is returned by Register.
type RegisterResponse struct {
	User string `json:"user"`
}

// TokenResponse is returned by Login.
type TokenResponse struct {
	Token string `json:"token"`
}

// Register creates a new user.
//
//	@Summary	Register a user
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		models.RegisterRequest	true	"New account"
//	@Success	201		{object}	RegisterResponse
//	@Failure	400		{object}	httpx.ErrorBody	"Missing/invalid field or email already used"
//	@Failure	500		{object}	httpx.ErrorBody
//	@Router		/api/user/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.Validation, "Corps de requête invalide.")
		return
	}
	req.FirstName = inputval.Name(req.FirstName)
	req.LastName = inputval.Name(req.LastName)
	req.Email = inputval.Email(req.Email)

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, httpx.Validation, "Tous les champs sont requis.")
		return
	}
	if err := validateAccount(req.FirstName, req.LastName, req.Email, req.Password); err != nil {
		httpx.WriteError(w, httpx.Validation, err.Error())
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		h.log.Error("hash password", zap.Error(err))
		httpx.WriteError(w, httpx.Internal, "Erreur lors de l'inscription")
		return
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashed,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			httpx.WriteError(w, httpx.Conflict, "")
			return
		}
		h.log.Error("register: create user", zap.Error(err))
		httpx.WriteError(w, httpx.Internal, "Erreur lors de l'inscription")
		return
	}

	h.audit.Auth(r, audit.EventUserRegistered, user.ID.Hex(), user.Email, true, "")
	httpx.WriteJSON(w, http.StatusCreated, RegisterResponse{User: user.ID.Hex()})
}

// Login checks credentials and issues a token.
//
//	@Summary	Log in
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		models.LoginRequest	true	"Credentials"
//	@Success	200		{object}	TokenResponse
//	@Failure	400		{object}	httpx.ErrorBody	"Wrong password"
//	@Failure	404		{object}	httpx.ErrorBody	"Unknown email"
//	@Failure	500		{object}	httpx.ErrorBody
//	@Router		/api/user/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, httpx.Validation, "Corps de requête invalide.")
		return
	}
	email := inputval.Email(req.Email)

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.audit.Auth(r, audit.EventLoginFailedUserNotFound, "", email, false, "user not found")
			httpx.WriteError(w, httpx.NotFound, "Utilisateur non trouvé")
			return
		}
		h.log.Error("login: get user", zap.Error(err))
		httpx.WriteError(w, httpx.Internal, "")
		return
	}

	if !CheckPassword(user.Password, req.Password) {
		h.audit.Auth(r, audit.EventLoginFailedWrongPassword, user.ID.Hex(), email, false, "wrong password")
		httpx.WriteError(w, httpx.InvalidCredentials, "")
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex(), user.Email)
	if err != nil {
		h.log.Error("login: sign token", zap.Error(err))
		httpx.WriteError(w, httpx.Internal, "")
		return
	}

	h.audit.Auth(r, audit.EventLoginSuccess, user.ID.Hex(), email, true, "")
	httpx.WriteJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// Logout acknowledges the request. Tokens are stateless and stay valid
// until they expire.
//
//	@Summary	Log out
//	@Tags		Auth
//	@Produce	json
//	@Success	200	{object}	httpx.Message
//	@Router		/api/user/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, httpx.Message{Message: "Déconnexion réussie."})
}

// validateAccount checks register fields that are already normalized.
func validateAccount(firstName, lastName, email, password string) error {
	if err := inputval.CheckPassword(password); err != nil {
		return err
	}
	if err := inputval.CheckName(firstName); err != nil {
		return err
	}
	if err := inputval.CheckName(lastName); err != nil {
		return err
	}
	if !inputval.IsValidEmail(email) {
		return inputval.ErrEmailInvalid
	}
	return nil
}
