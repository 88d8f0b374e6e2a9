package container

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/patrickmn/go-cache"

	database "github.com/koushik8686/GeoGuide-sub000/app/db"
	appMiddleware "github.com/koushik8686/GeoGuide-sub000/app/middleware"
	"github.com/koushik8686/GeoGuide-sub000/config"
	"github.com/koushik8686/GeoGuide-sub000/internal/api/affinity"
	"github.com/koushik8686/GeoGuide-sub000/internal/api/discovery"
	"github.com/koushik8686/GeoGuide-sub000/internal/api/interests"
	"github.com/koushik8686/GeoGuide-sub000/internal/api/places"
	"github.com/koushik8686/GeoGuide-sub000/internal/api/recommend"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	Redis            *redis.Client
	Authenticator    *appMiddleware.Authenticator
	DiscoveryService *discovery.ServiceImpl
	DiscoveryHandler *discovery.HandlerImpl
}

// NewContainer initializes and returns a new dependency container.
// Only the affinity store selected in config is connected.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:        cfg,
		Logger:        logger,
		Authenticator: appMiddleware.NewAuthenticator(cfg.Auth.JWTSecret, logger),
	}

	affinityRepo, err := c.affinityRepository(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	extractor := interests.NewServiceImpl(logger, c.extractionStages(ctx)...)

	placesCfg := cfg.Providers.Places
	provider := places.NewHTTPProvider(places.ProviderConfig{
		BaseURL:         placesCfg.BaseURL,
		APIKey:          placesCfg.APIKey,
		BreakerFailures: placesCfg.BreakerFailures,
		BreakerTimeout:  placesCfg.BreakerTimeout,
	}, &http.Client{}, logger)
	var resultCache *cache.Cache
	if placesCfg.CacheTTL > 0 {
		resultCache = cache.New(placesCfg.CacheTTL, 2*placesCfg.CacheTTL)
	}
	fetcher := places.NewFetcherImpl(provider, resultCache, placesCfg.Timeout, logger)

	recCfg := cfg.Providers.Recommender
	recommender := recommend.NewHTTPRecommender(recCfg.BaseURL, &http.Client{Timeout: recCfg.Timeout}, logger)

	c.DiscoveryService = discovery.NewServiceImpl(
		extractor,
		fetcher,
		affinity.NewServiceImpl(affinityRepo, logger),
		recommender,
		recCfg.TopN,
		logger,
	)
	c.DiscoveryHandler = discovery.NewHandlerImpl(c.DiscoveryService, logger)
	return c, nil
}

func (c *Container) affinityRepository(ctx context.Context) (affinity.Repository, error) {
	switch c.Config.Affinity.Store {
	case "memory":
		c.Logger.Warn("Using in-memory affinity store; counts are lost on restart")
		return affinity.NewMemoryAffinityRepo(), nil

	case "redis":
		redisCfg := c.Config.Repositories.Redis
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Logger.Info("Connected to Redis affinity store", slog.String("addr", redisCfg.Addr))
		return affinity.NewRedisAffinityRepo(c.Redis, c.Logger), nil

	case "postgres":
		dbConfig, err := database.NewDatabaseConfig(c.Config, c.Logger)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(dbConfig.ConnectionURL, c.Logger); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		pool, err := database.Init(dbConfig.ConnectionURL, c.Logger)
		if err != nil {
			return nil, err
		}
		c.Pool = pool
		if !database.WaitForDB(ctx, pool, c.Logger) {
			return nil, fmt.Errorf("database not ready")
		}
		return affinity.NewPostgresAffinityRepo(pool, c.Logger), nil

	default:
		return nil, fmt.Errorf("unknown affinity store %q", c.Config.Affinity.Store)
	}
}

// extractionStages returns the classifier stage when it is enabled and can be
// built, followed by the keyword stage.
func (c *Container) extractionStages(ctx context.Context) []interests.Stage {
	stages := make([]interests.Stage, 0, 2)
	clsCfg := c.Config.Providers.Classifier
	if clsCfg.Enabled {
		classifier, err := interests.NewGeminiClassifier(ctx, clsCfg.APIKey, clsCfg.Model)
		if err != nil {
			c.Logger.Warn("Classifier disabled, using keyword extraction only", slog.Any("error", err))
		} else {
			stages = append(stages, interests.NewClassifierStage(classifier, clsCfg.Timeout, c.Logger))
		}
	}
	return append(stages, interests.KeywordStage{})
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("Failed to close redis client", slog.Any("error", err))
		}
	}
}
