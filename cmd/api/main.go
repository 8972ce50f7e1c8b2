package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storefront-console/config"
	"storefront-console/internal/delivery/http/middleware"
	v1 "storefront-console/internal/delivery/http/v1"
	"storefront-console/internal/domain"
	"storefront-console/internal/infrastructure/cache"
	"storefront-console/internal/repository/rest"
	"storefront-console/internal/usecase"
	"storefront-console/pkg/logger"
	"storefront-console/pkg/storage"

	"github.com/NYTimes/gziphandler"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const serviceName = "storefront-console"

var version = "dev"

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Remote REST backend
	client := rest.NewClient(cfg.APIBaseURL, cfg.APITimeout, cfg.APIMaxRetries)
	productRepo := rest.NewProductRepository(client)
	categoryRepo := rest.NewCategoryRepository(client)
	brandRepo := rest.NewBrandRepository(client)
	cartRepo := rest.NewCartRepository(client)
	authRepo := rest.NewAuthRepository(client)

	// Default expiration 30m, cleanup every 60m
	memCache := cache.NewMemoryCache(30*time.Minute, 60*time.Minute)

	var draftRepo domain.DraftRepository
	var redisClient *redis.Client
	switch cfg.DraftStore {
	case "redis":
		redisClient = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		draftRepo = cache.NewRedisDraftStore(redisClient, cfg.DraftTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("Draft store: redis")
	default:
		draftRepo = cache.NewMemoryDraftStore(cfg.DraftTTL)
		log.Info().Msg("Draft store: memory")
	}

	imageStore, err := storage.New(context.Background(), storage.Options{
		Driver:            cfg.StorageDriver,
		LocalDir:          cfg.LocalUploadDir,
		LocalURLPrefix:    cfg.LocalUploadURLPrefix,
		R2AccountID:       cfg.R2AccountID,
		R2AccessKeyID:     cfg.R2AccessKeyID,
		R2AccessKeySecret: cfg.R2AccessKeySecret,
		R2BucketName:      cfg.R2BucketName,
		R2PublicURL:       cfg.R2PublicURL,
		UploadTimeout:     cfg.R2UploadTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to initialize image storage")
	}

	// --- Modules Initialization ---
	authUC := usecase.NewAuthUsecase(authRepo, memCache, cfg)
	catalogUC := usecase.NewCatalogUsecase(productRepo, categoryRepo, brandRepo, memCache, cfg)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, cfg)
	draftUC := usecase.NewProductDraftUsecase(draftRepo, productRepo, imageStore, catalogUC, cfg)

	secureCookie := !cfg.IsDevelopment()
	mux := v1.NewRouter(v1.Handlers{
		Auth:         v1.NewAuthHandler(authUC, cfg.SessionCookie, secureCookie),
		Catalog:      v1.NewCatalogHandler(catalogUC),
		AdminCatalog: v1.NewAdminCatalogHandler(catalogUC),
		Drafts:       v1.NewProductDraftHandler(draftUC, cfg.MaxUploadSizeMB),
		Cart:         v1.NewCartHandler(cartUC),
		Upload:       v1.NewUploadHandler(imageStore, cfg.MaxUploadSizeMB),
		Config:       v1.NewConfigHandler(cfg.POSOpenAccess),
	}, cfg.POSOpenAccess)

	if cfg.StorageDriver == "local" {
		prefix := strings.TrimSuffix(cfg.LocalUploadURLPrefix, "/") + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}

	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// Outermost first: gzip, recover, request log, CORS, session, rate limit.
	var handler http.Handler = mux
	handler = rateLimiter.Middleware()(handler)
	handler = middleware.SessionMiddleware(authUC, cfg.SessionCookie, secureCookie)(handler)
	handler = middleware.NewCORSMiddleware(cfg)(handler)
	handler = middleware.RequestLogger(handler)
	handler = chimw.Recoverer(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, version, cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SubmitTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}

	logger.ServiceStop(serviceName)
}
