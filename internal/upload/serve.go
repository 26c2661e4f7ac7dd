package upload

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ayush/social-feed/backend/internal/httpx"
	"github.com/ayush/social-feed/backend/internal/store"
)

// FileServer serves stored uploads back under PathPrefix.
func (u *Uploader) FileServer(log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := KeyFromPath(r.URL.Path)
		if !ok || !(strings.HasPrefix(key, DirPosts+"/") || strings.HasPrefix(key, DirProfile+"/")) {
			httpx.WriteError(w, httpx.NotFound, "Fichier introuvable.")
			return
		}

		body, contentType, err := u.storage.Open(r.Context(), key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				httpx.WriteError(w, httpx.NotFound, "Fichier introuvable.")
				return
			}
			log.Error("open upload", zap.String("key", key), zap.Error(err))
			httpx.WriteError(w, httpx.Internal, "")
			return
		}
		defer body.Close()

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if _, err := io.Copy(w, body); err != nil {
			log.Warn("stream upload", zap.String("key", key), zap.Error(err))
		}
	})
}

// WriteError maps a Parse or Save failure onto the response: no file is a
// 400, a rejected file or a storage failure a 500.
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	var rejected *Error
	switch {
	case errors.Is(err, ErrNoFile):
		httpx.WriteError(w, httpx.Validation, "Aucun fichier fourni.")
	case errors.As(err, &rejected):
		log.Info("upload rejected", zap.String("reason", rejected.Reason))
		httpx.WriteErrorDetail(w, httpx.UploadFailed, "", RuleMessage)
	default:
		log.Error("upload", zap.Error(err))
		httpx.WriteError(w, httpx.UploadFailed, "")
	}
}
