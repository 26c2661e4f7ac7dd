package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/ayush/social-feed/backend/docs" // swagger docs
	"github.com/ayush/social-feed/backend/internal/auth"
	"github.com/ayush/social-feed/backend/internal/config"
	"github.com/ayush/social-feed/backend/internal/httpx"
	"github.com/ayush/social-feed/backend/internal/middleware"
	"github.com/ayush/social-feed/backend/internal/posts"
	"github.com/ayush/social-feed/backend/internal/ratelimit"
	"github.com/ayush/social-feed/backend/internal/upload"
	"github.com/ayush/social-feed/backend/internal/users"
)

type routerDeps struct {
	cfg      *config.Config
	log      *zap.Logger
	tokens   *auth.Tokens
	limiter  ratelimit.Limiter
	uploader *upload.Uploader
	auth     *auth.Handler
	users    *users.Handler
	posts    *posts.Handler
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if d.cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger(d.log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Stored images
	files := d.uploader.FileServer(d.log)
	r.Get("/uploads/"+upload.DirPosts+"/*", files.ServeHTTP)
	r.Get("/uploads/"+upload.DirProfile+"/*", files.ServeHTTP)

	authLimit := middleware.RateLimit(d.limiter, "auth", d.cfg.AuthRatePerMinute, time.Minute, d.log)

	r.Route("/api/user", func(r chi.Router) {
		r.With(authLimit).Post("/register", d.auth.Register)
		r.With(authLimit).Post("/login", d.auth.Login)
		r.Post("/logout", d.auth.Logout)

		r.Get("/", d.users.List)
		r.With(middleware.VerifyToken(d.tokens)).Get("/{id}", d.users.Get)
		r.Put("/{id}", d.users.Update)
		r.Delete("/{id}", d.users.Delete)
		r.Post("/upload-profil", d.users.UploadProfile)
	})

	r.Route("/api/post", func(r chi.Router) {
		r.Post("/", d.posts.Create)
		r.Get("/", d.posts.List)
		r.Get("/{id}", d.posts.Get)
		r.Put("/{id}", d.posts.Update)
		r.Delete("/{id}", d.posts.Delete)
		r.Patch("/like/{id}", d.posts.Like)
		r.Patch("/unlike/{id}", d.posts.Unlike)
		r.Patch("/add-comment/{id}", d.posts.AddComment)
		r.Patch("/edit-comment/{id}", d.posts.EditComment)
		r.Patch("/comment/delete/{id}", d.posts.DeleteComment)
	})

	return r
}
