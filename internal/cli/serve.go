package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IrishAnn-code/HomeLibrary/internal/auth"
	"github.com/IrishAnn-code/HomeLibrary/internal/config"
	"github.com/IrishAnn-code/HomeLibrary/internal/handlers"
	"github.com/IrishAnn-code/HomeLibrary/internal/models"
	"github.com/IrishAnn-code/HomeLibrary/internal/services"
	"github.com/IrishAnn-code/HomeLibrary/internal/store"
	"github.com/IrishAnn-code/HomeLibrary/internal/store/cache"
	"github.com/IrishAnn-code/HomeLibrary/internal/store/sqlite"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var cacheClient store.CacheClient
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cache.RedisOptions{Addr: cfg.RedisAddr})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisCache.Close()
		cacheClient = redisCache
		log.Printf("using redis cache at %s", cfg.RedisAddr)
	} else {
		cacheClient = cache.NewMemory()
		log.Printf("REDIS_ADDR not set, using in-process cache")
	}

	handler, err := buildHandler(cfg, db, cacheClient)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s listening on %s", cfg.AppName, cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildHandler(cfg *config.Config, db store.DBAdapter, cacheClient store.CacheClient) (*handlers.Handler, error) {
	userStore, err := store.New[models.User](db, cacheClient)
	if err != nil {
		return nil, err
	}
	libraryStore, err := store.New[models.Library](db, cacheClient)
	if err != nil {
		return nil, err
	}
	membershipStore, err := store.New[models.Membership](db, cacheClient)
	if err != nil {
		return nil, err
	}
	bookStore, err := store.New[models.Book](db, cacheClient)
	if err != nil {
		return nil, err
	}
	commentStore, err := store.New[models.Comment](db, cacheClient)
	if err != nil {
		return nil, err
	}
	statusStore, err := store.New[models.ReadingStatus](db, cacheClient)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager(cfg.SecretKey, cfg.TokenTTL)
	libraries := services.NewLibraries(libraryStore, membershipStore, bookStore)
	users := services.NewUsers(userStore, bookStore, libraryStore, membershipStore, commentStore, statusStore, tokens)
	books := services.NewBooks(bookStore, commentStore, statusStore, libraries)
	comments := services.NewComments(commentStore, bookStore)
	statuses := services.NewStatuses(statusStore, bookStore)

	return handlers.New(cfg, tokens, users, libraries, books, comments, statuses), nil
}
