package app

import (
	"context"
	"log/slog"

	httpapp "photoflow/internal/app/http"
	"photoflow/internal/config"
	"photoflow/internal/lib/cache"
	"photoflow/internal/repository"
	"photoflow/internal/services/auth"
	photoservice "photoflow/internal/services/photo_service"
	sessionservice "photoflow/internal/services/session_service"
	filestorage "photoflow/internal/storage/filestorage"
	redisapp "photoflow/internal/storage/redis"
	httprouters "photoflow/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server

	repo  *repository.Repository
	redis *redisapp.Client
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	repo, err := repository.NewRepository(ctx, cfg.DSN, cfg.PublicDSN)
	if err != nil {
		return nil, err
	}

	redisClient := redisapp.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.HealthCheck(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Storage.BaseDir, cfg.Storage.BaseURL, cfg.Storage.Bucket)
	if err != nil {
		repo.Close()
		_ = redisClient.Close()
		return nil, err
	}

	views := cache.NewPhotoViewCache(cfg.Cache.GalleryTTL)

	sessions := sessionservice.NewSessionService(log, repository.NewRedisSessionRepo(redisClient), cfg.Session.TTL)
	authService := auth.New(log, cfg.Admin, sessions)
	photoService := photoservice.NewPhotoService(log, repo.Photos, repo.PublicPhotos, fileStorage, views, cfg.Storage.MaxUploadSize)

	routers := httprouters.NewRouter(
		log,
		authService,
		photoService,
		cfg.Session.CookieName,
		cfg.Env != "local",
		int(cfg.Session.TTL.Seconds()),
	)

	server := httpapp.New(log, cfg.Session.Secret, cfg.HTTP.Host, cfg.HTTP.Port, cfg.Storage.BaseDir, routers)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		repo:       repo,
		redis:      redisClient,
	}, nil
}

func (a *App) Stop() {
	_ = a.HTTPServer.Stop()
	a.repo.Close()
	_ = a.redis.Close()
}
