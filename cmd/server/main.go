// Command server runs the social feed API.
//
//	@title						Social Feed API
//	@version					1.0
//	@description				Accounts, profile pictures and a post feed with likes and comments.
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayush/social-feed/backend/internal/audit"
	"github.com/ayush/social-feed/backend/internal/auth"
	"github.com/ayush/social-feed/backend/internal/config"
	"github.com/ayush/social-feed/backend/internal/logging"
	"github.com/ayush/social-feed/backend/internal/posts"
	"github.com/ayush/social-feed/backend/internal/ratelimit"
	"github.com/ayush/social-feed/backend/internal/store"
	"github.com/ayush/social-feed/backend/internal/upload"
	"github.com/ayush/social-feed/backend/internal/users"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run returns instead of exiting so every teardown registered so far runs on
// a startup failure as well as on shutdown.
func run(cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()

	// ── MongoDB ──────────────────────────────────────────────
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	mongoClient, err := store.ConnectMongo(connectCtx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			logger.Warn("mongo disconnect", zap.Error(err))
		}
	}()
	mongoDB := mongoClient.Database(cfg.MongoDB)
	if err := store.EnsureIndexes(connectCtx, mongoDB); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	logger.Info("connected to mongo", zap.String("db", cfg.MongoDB))

	// ── PostgreSQL (audit trail, optional) ───────────────────
	var sink audit.Sink
	if cfg.PostgresDSN != "" {
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			return fmt.Errorf("postgres migrate: %w", err)
		}
		sink = pgStore
		logger.Info("audit events persisted to postgres")
	}
	auditLog := audit.New(sink, logger)

	// ── Redis (rate limits, optional) ────────────────────────
	var limiter ratelimit.Limiter = ratelimit.NewMemory()
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedis(rdb, "socialfeed:ratelimit:", logger)
		logger.Info("rate limits shared through redis", zap.String("addr", cfg.RedisAddr))
	}

	// ── Upload storage ───────────────────────────────────────
	var files upload.Storage
	switch cfg.StorageType {
	case config.StorageMinio:
		minioStore, err := store.NewMinioStore(ctx, store.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return err
		}
		files = minioStore
	default:
		files = store.NewDiskStore(cfg.UploadDir)
	}
	uploader := upload.New(files)
	logger.Info("upload storage ready", zap.String("type", cfg.StorageType))

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	userStore := store.NewUserStore(mongoDB)

	r := newRouter(routerDeps{
		cfg:      cfg,
		log:      logger,
		tokens:   tokens,
		limiter:  limiter,
		uploader: uploader,
		auth:     auth.NewHandler(userStore, tokens, auditLog, logger),
		users:    users.NewHandler(userStore, uploader, auditLog, logger),
		posts:    posts.NewHandler(store.NewPostStore(mongoDB), uploader, auditLog, logger),
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("backend listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	logger.Info("shutting down")
	shutCtx, shutCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
