// Package httpx holds the JSON response helpers and the error taxonomy shared
// by every handler. User-visible messages are short French sentences; Code is
// the stable value clients should match on.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Kind classifies a failure returned to a client.
type Kind int

const (
	Validation Kind = iota
	InvalidID
	Unauthorized
	InvalidToken
	InvalidCredentials
	NotFound
	Conflict
	UploadFailed
	RateLimited
	Internal
)

type kindInfo struct {
	status  int
	code    string
	message string
}

var kinds = map[Kind]kindInfo{
	Validation:         {http.StatusBadRequest, "validation_error", "Données invalides."},
	InvalidID:          {http.StatusBadRequest, "invalid_id", "ID inconnu."},
	Unauthorized:       {http.StatusUnauthorized, "unauthorized", "Accès refusé. Aucun token fourni."},
	InvalidToken:       {http.StatusBadRequest, "invalid_token", "Token invalide"},
	InvalidCredentials: {http.StatusBadRequest, "invalid_credentials", "Mot de passe incorrect"},
	NotFound:           {http.StatusNotFound, "not_found", "Ressource introuvable."},
	Conflict:           {http.StatusBadRequest, "conflict", "Cette adresse email existe déjà!"},
	UploadFailed:       {http.StatusInternalServerError, "upload_error", "Erreur lors de l'upload du fichier."},
	RateLimited:        {http.StatusTooManyRequests, "rate_limited", "Trop de requêtes, réessayez plus tard."},
	Internal:           {http.StatusInternalServerError, "internal_error", "Erreur serveur"},
}

// Status returns the HTTP status code for k.
func (k Kind) Status() int { return kinds[k].status }

// Code returns the machine-readable code for k.
func (k Kind) Code() string { return kinds[k].code }

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the error body for k. An empty msg uses the default
// message of the kind.
func WriteError(w http.ResponseWriter, k Kind, msg string) {
	info := kinds[k]
	if msg == "" {
		msg = info.message
	}
	WriteJSON(w, info.status, ErrorBody{Message: msg, Code: info.code})
}

// WriteErrorDetail is WriteError with an extra detail string, used where the
// client needs to know which rule was broken (upload validation).
func WriteErrorDetail(w http.ResponseWriter, k Kind, msg, detail string) {
	info := kinds[k]
	if msg == "" {
		msg = info.message
	}
	WriteJSON(w, info.status, ErrorBody{Message: msg, Code: info.code, Error: detail})
}

// Message is the body of plain acknowledgements.
type Message struct {
	Message string `json:"message"`
}

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
