package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"devconnector/auth"
	"devconnector/cache"
	"devconnector/config"
	"devconnector/database"
	"devconnector/github"
	"devconnector/handlers"
	"devconnector/middleware"
	"devconnector/routes"
	"devconnector/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.SetDefault(middleware.NewLogger(os.Stdout, cfg.IsProduction()))
	slog.Info("starting DevConnector API", slog.String("env", cfg.Env))

	ctx := context.Background()

	db, err := database.ConnectWithRetry(ctx, cfg.MongoURI, cfg.MongoDatabase, 3, 2*time.Second)
	if err != nil {
		slog.Error("failed to connect to MongoDB", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		slog.Error("failed to create indexes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var rc *cache.Cache
	if cfg.RedisURL != "" {
		rc, err = cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("Redis unavailable, continuing without cache", slog.String("error", err.Error()))
			rc = nil
		}
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		slog.Error("invalid token settings", slog.String("error", err.Error()))
		os.Exit(1)
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	repos := github.NewClient(github.Options{
		BaseURL:  cfg.GithubAPIURL,
		Token:    cfg.GithubToken,
		Cache:    rc,
		CacheTTL: cfg.GithubCacheTTL,
	})

	users := db.Users()
	authService := services.NewAuthService(users, tokens, hasher)
	profileService := services.NewProfileService(db.Profiles(), users, repos)
	postService := services.NewPostService(db.Posts(), users)

	if cfg.GinMode == gin.ReleaseMode || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.SetupRouter(routes.Deps{
		Auth:     handlers.NewAuthHandler(authService),
		Profiles: handlers.NewProfileHandler(profileService),
		Posts:    handlers.NewPostHandler(postService),
		Tokens:   tokens,
		Origins:  cfg.Origins(),
		Health: func(c *gin.Context) error {
			return db.Ping(c.Request.Context())
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", slog.String("error", err.Error()))
	}
	if err := db.Disconnect(shutdownCtx); err != nil {
		slog.Error("MongoDB disconnect failed", slog.String("error", err.Error()))
	}
	if err := rc.Close(); err != nil {
		slog.Error("Redis close failed", slog.String("error", err.Error()))
	}

	slog.Info("server stopped")
}
