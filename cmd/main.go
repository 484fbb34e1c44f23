package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/wes-estate/internal/cache"
	"github.com/weiawesome/wes-estate/internal/config"
	"github.com/weiawesome/wes-estate/internal/domain"
	"github.com/weiawesome/wes-estate/internal/handler"
	"github.com/weiawesome/wes-estate/internal/idgen"
	"github.com/weiawesome/wes-estate/internal/repository"
	"github.com/weiawesome/wes-estate/internal/service"
	"github.com/weiawesome/wes-estate/pkg/database"
	"github.com/weiawesome/wes-estate/pkg/jwt"
	pkglog "github.com/weiawesome/wes-estate/pkg/log"
	"github.com/weiawesome/wes-estate/pkg/middleware"
	"github.com/weiawesome/wes-estate/pkg/pubsub"
)

const reindexBatchSize = 500

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "wes-estate",
	})
	logger := pkglog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = pkglog.WithLogger(ctx, logger)

	instanceID := uuid.NewString()

	// Connect to database using GORM
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Logger:          pkglog.NewGormLogger(cfg.Log.Level, cfg.Database.SlowThreshold),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	// Metrics and tracing
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := cache.NewMetrics(registry)

	if cfg.Tracing.Enabled {
		tp, err := newTracerProvider()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create tracer provider")
		}
		otel.SetTracerProvider(tp)
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("failed to shut down tracer provider")
			}
		}()
	}

	// Initialize cache store
	store, local, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Cache.Driver).Msg("failed to create cache store")
	}
	defer store.Close()
	logger.Info().Str("driver", cfg.Cache.Driver).Msg("cache store ready")

	opts := []cache.Option{cache.WithMetrics(metrics)}
	if cfg.Cache.SingleFlight {
		opts = append(opts, cache.WithSingleFlight())
	}

	// Peers only need to hear about invalidations when each holds its own
	// in-process entries.
	var bus *cache.Bus
	if local != nil && cfg.PubSub.Driver != "" {
		ps, err := pubsub.NewPubSub(cfg.PubSub, instanceID)
		if err != nil {
			logger.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to create pubsub")
		}
		defer ps.Close()
		bus = cache.NewBus(ps, instanceID, local, metrics)
		opts = append(opts, cache.WithBus(bus))
	}

	c := cache.New(store, cfg.Cache.DefaultTTL, opts...)
	ttls := service.TTLs{
		Property:   cfg.Cache.TTL.Property,
		Properties: cfg.Cache.TTL.Properties,
		Search:     cfg.Cache.TTL.Search,
		TextSearch: cfg.Cache.TTL.TextSearch,
		Favorites:  cfg.Cache.TTL.Favorites,
	}

	// Initialize repositories
	ids := idgen.NewUUIDGenerator()
	userRepo := repository.NewGormUserRepository(db, ids)
	propertyRepo := repository.NewGormPropertyRepository(db, ids)
	favoriteRepo := repository.NewGormFavoriteRepository(db, ids)
	recommendationRepo := repository.NewGormRecommendationRepository(db, ids)

	var (
		textSearcher repository.TextSearcher
		indexer      repository.PropertyIndexer
	)
	if cfg.Search.Backend == "elasticsearch" {
		es, err := newPropertySearch(ctx, cfg.Search, propertyRepo)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to set up elasticsearch")
		}
		textSearcher, indexer = es, es
	}

	// Initialize services
	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	services := handler.Services{
		Users: service.NewUserService(userRepo, tokens, bcrypt.DefaultCost),
		Properties: service.NewPropertyService(service.PropertyDeps{
			Repo:     propertyRepo,
			Cache:    c,
			TTLs:     ttls,
			IDs:      ids,
			Listings: idgen.NewDefaultListingIDGenerator(),
			Indexer:  indexer,
		}),
		Search:          service.NewSearchService(propertyRepo, textSearcher, c, ttls),
		Favorites:       service.NewFavoriteService(favoriteRepo, propertyRepo, c, ttls.Favorites),
		Recommendations: service.NewRecommendationService(recommendationRepo, userRepo, propertyRepo),
	}

	// Initialize HTTP handler
	httpHandler := handler.NewHandler(services, middleware.NewAuthMiddleware(tokens, userRepo))

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	r.GET("/health", handler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := r.Group("/api", middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	httpHandler.RegisterRoutes(api)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("instance", instanceID).Msg("wes-estate starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if bus != nil {
		g.Go(func() error {
			return bus.Run(gctx, nil)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server exited")
}

// newStore builds the configured cache store. local is the in-process tier
// peers invalidate through the bus, nil when the store is shared. An
// unreachable Redis is logged and tolerated: every request then falls back
// to the database until the client reconnects.
func newStore(ctx context.Context, cfg *config.Config) (cache.Store, cache.Store, error) {
	redisStore := func() *cache.RedisStore {
		s := cache.NewRedisStore(cache.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			PoolSize:  cfg.Redis.PoolSize,
			Prefix:    cfg.Cache.Prefix,
			OpTimeout: cfg.Cache.OpTimeout,
		})
		if err := s.Connect(ctx); err != nil {
			l := pkglog.Ctx(ctx)
			l.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("redis unreachable, serving from the database until it recovers")
		}
		return s
	}

	switch cfg.Cache.Driver {
	case "memory":
		m, err := cache.NewMemoryStore(cfg.Cache.L1MaxKeys)
		if err != nil {
			return nil, nil, err
		}
		return m, m, nil
	case "tiered":
		l1, err := cache.NewMemoryStore(cfg.Cache.L1MaxKeys)
		if err != nil {
			return nil, nil, err
		}
		t := cache.NewTieredStore(l1, redisStore(), cfg.Cache.L1TTL)
		return t, t.Local(), nil
	default:
		return redisStore(), nil, nil
	}
}

// newPropertySearch connects to Elasticsearch, makes sure the index exists
// and optionally rebuilds it from the database.
func newPropertySearch(ctx context.Context, cfg config.SearchConfig, repo repository.PropertyRepository) (*repository.ESPropertySearch, error) {
	l := pkglog.Ctx(ctx)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	// Verify ES connection
	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}
	res.Body.Close()
	l.Info().Strs("addresses", cfg.Elasticsearch.Addresses).Msg("elasticsearch connected")

	es := repository.NewESPropertySearch(client, cfg.Elasticsearch.Index)
	if err := es.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	if cfg.ReindexOnStart {
		n, err := es.Reindex(ctx, repo, reindexBatchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to reindex properties: %w", err)
		}
		l.Info().Int("count", n).Str("index", cfg.Elasticsearch.Index).Msg("properties reindexed")
	}
	return es, nil
}

func newTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter)), nil
}
