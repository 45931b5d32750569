// Package app wires configuration, storage and services into one container.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"evalforge/internal/cache"
	"evalforge/internal/config"
	"evalforge/internal/repository"
	"evalforge/internal/service"
	"evalforge/internal/transport/rest"
	"evalforge/internal/transport/ws"
)

// App holds the connected clients and every service built on them
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Mongo *mongo.Client
	Redis *redis.Client
	Hub   *ws.Hub

	TemplateRepo repository.TemplateRepo
	ResponseRepo repository.ResponseRepo

	AuthService       *service.AuthService
	TemplateService   *service.TemplateService
	EditorService     *service.EditorService
	SuggestionService *service.SuggestionService
	ResponseService   *service.ResponseService
	ReportService     *service.ReportService
}

// New connects to MongoDB and Redis and builds the services
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(connectCtx).Err(); err != nil {
		mongoClient.Disconnect(ctx)
		rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	db := mongoClient.Database(cfg.Mongo.Database)
	a := &App{
		Config:       cfg,
		Logger:       log,
		Mongo:        mongoClient,
		Redis:        rdb,
		TemplateRepo: repository.NewTemplateRepo(db),
		ResponseRepo: repository.NewResponseRepo(db),
	}

	generator, err := service.NewGenerator(ctx, &cfg.AI, log)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	ranking := cache.NewRankingCache(rdb)
	reports := cache.NewReportCache(rdb)

	a.AuthService = service.NewAuthService(cfg.Auth)
	a.TemplateService = service.NewTemplateService(a.TemplateRepo, log)
	a.EditorService = service.NewEditorService(a.TemplateService, cache.NewEditorCache(rdb, cfg.Editor.SessionTTL), log)
	a.SuggestionService = service.NewSuggestionService(generator, cache.NewSuggestionCache(rdb, cfg.AI.SuggestionTTL), log)
	a.ResponseService = service.NewResponseService(a.TemplateService, a.ResponseRepo, ranking, reports, log)
	a.ReportService = service.NewReportService(a.TemplateService, a.ResponseRepo, ranking, reports, log)
	return a, nil
}

// Container starts the websocket hub and returns the dependencies of the HTTP router
func (a *App) Container() *rest.Container {
	if a.Hub == nil {
		a.Hub = ws.NewHub(a.Logger)
		a.EditorService.SetBroadcaster(a.Hub)
	}
	return &rest.Container{
		Config:            a.Config.HTTP,
		Logger:            a.Logger,
		AuthService:       a.AuthService,
		TemplateService:   a.TemplateService,
		EditorService:     a.EditorService,
		SuggestionService: a.SuggestionService,
		ResponseService:   a.ResponseService,
		ReportService:     a.ReportService,
		WSHub:             a.Hub,
	}
}

// Close stops the hub and disconnects from the stores
func (a *App) Close(ctx context.Context) {
	if a.Hub != nil {
		a.Hub.Close()
	}
	if err := a.Redis.Close(); err != nil {
		a.Logger.Warn("redis close failed", zap.Error(err))
	}
	if err := a.Mongo.Disconnect(ctx); err != nil {
		a.Logger.Warn("mongo disconnect failed", zap.Error(err))
	}
}
