package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"vaccitrack/internal/api"
	"vaccitrack/internal/app/service"
	"vaccitrack/internal/common/security"
	"vaccitrack/internal/domain/repository"
	"vaccitrack/internal/platform/cache"
	"vaccitrack/internal/platform/config"
	"vaccitrack/internal/platform/database"
	"vaccitrack/internal/platform/logger"
	"vaccitrack/internal/platform/metrics"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	zl := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		FilePath:    cfg.LogFile,
		Environment: cfg.AppEnv,
	})
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Initialize Store
	userRepo, closeStore, err := openUserStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to initialize user store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	// 4. Initialize Redis (optional)
	rdb, err := cache.ConnectRedis(ctx, cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, zl)
	if err != nil {
		zl.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	var statsCache service.SnapshotCache
	if rdb != nil {
		defer rdb.Close()
		statsCache = cache.NewJSONStore(rdb)
	}

	// 5. Initialize Services
	issuer, err := security.NewTokenIssuer(cfg.APISecret, cfg.TokenTTL)
	if err != nil {
		zl.Fatal("Failed to initialize token issuer", zap.Error(err))
	}
	m := metrics.New()
	authService := service.NewAuthService(userRepo, issuer, zl).WithObserver(m)
	statsService := service.NewStatsService(userRepo, statsCache, cfg.StatsCacheTTL, zl)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(api.RouterDeps{
		AuthService:  authService,
		StatsService: statsService,
		UserRepo:     userRepo,
		Issuer:       issuer,
		Metrics:      m,
		Logger:       zl,
		CORSOrigins:  cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zl.Info("Server starting", zap.String("port", cfg.APIPort), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("Could not listen", zap.String("port", cfg.APIPort), zap.Error(err))
		}
	}()

	// 7. Graceful Shutdown
	<-ctx.Done()
	zl.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server shutdown failed", zap.Error(err))
		return
	}
	zl.Info("Server stopped gracefully.")
}

func openUserStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (repository.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, zl)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.EnsureUserIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				zl.Warn("Mongo disconnect failed", zap.Error(err))
			}
		}
		return repository.NewMongoUserRepository(db), closeFn, nil

	default:
		db, err := database.ConnectPostgres(ctx, cfg.DBConnStr, zl)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigratePostgres(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		closeFn := func() {
			if err := db.Close(); err != nil {
				zl.Warn("Postgres close failed", zap.Error(err))
			}
		}
		return repository.NewPgUserRepository(db), closeFn, nil
	}
}
