package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/catalogadmin/backend/docs"
	catalogapp "github.com/catalogadmin/backend/internal/application/catalog"
	mediaapp "github.com/catalogadmin/backend/internal/application/media"
	"github.com/catalogadmin/backend/internal/infrastructure/cache"
	"github.com/catalogadmin/backend/internal/infrastructure/config"
	"github.com/catalogadmin/backend/internal/infrastructure/logger"
	"github.com/catalogadmin/backend/internal/infrastructure/persistence"
	"github.com/catalogadmin/backend/internal/infrastructure/storage"
	"github.com/catalogadmin/backend/internal/interfaces/http/handler"
	"github.com/catalogadmin/backend/internal/interfaces/http/middleware"
	"github.com/catalogadmin/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

//go:generate swag init --dir ../.. --generalInfo cmd/server/main.go --output ../../docs

//	@title			Catalog Admin API
//	@version		1.0
//	@description	Product catalog back office: product records, their images and the legacy media gallery.
//	@description	Any path no route claims is served as a stored image.

//	@BasePath	/

//	@securityDefinitions.basic	BasicAuth

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromConfig(cfg.App, cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting catalog admin",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("cache", cfg.Cache.Backend),
	)

	gormLog := logger.NewGormLogger(log, cfg.Database.LogLevel)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	objectStorage, err := newObjectStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	resolutionCache, cacheCloser, err := cache.NewResolutionCacheFactory(cfg.Redis, cfg.Cache,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to initialize image cache", zap.Error(err))
	}
	defer func() {
		if err := cacheCloser.Close(); err != nil {
			log.Error("Error closing image cache", zap.Error(err))
		}
	}()

	productRepo := persistence.NewGormProductRepository(db.DB)
	mediaRepo := persistence.NewGormMediaRepository(db.DB)

	lifecycleService := catalogapp.NewProductLifecycleService(productRepo, objectStorage, resolutionCache,
		catalogapp.LifecycleConfig{MaxUploadBytes: cfg.Upload.MaxBytes()}, log)
	imageResolver := catalogapp.NewImageResolver(objectStorage, resolutionCache, log)
	mediaService := mediaapp.NewService(mediaRepo, objectStorage, imageResolver, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.Upload.MaxBytes()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var auth gin.HandlerFunc
	if cfg.Auth.Enabled {
		auth = middleware.BasicAuth(cfg.Auth.Username, cfg.Auth.Password)
	} else {
		log.Warn("HTTP basic auth is disabled")
	}

	handlers := router.Handlers{
		Product: handler.NewProductHandler(lifecycleService, cfg.App.RedirectURL()),
		Media:   handler.NewMediaHandler(mediaService),
		Image:   handler.NewImageHandler(imageResolver, ""),
		System:  handler.NewSystemHandler(cfg.App.Name, db),
	}
	if cfg.Swagger.Enabled {
		handlers.Docs = ginSwagger.WrapHandler(swaggerFiles.Handler)
	}
	router.SetupRoutes(engine, handlers, auth)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// newObjectStorage builds the configured blob backend. The in-memory
// backend loses every image on restart and is meant for local development.
func newObjectStorage(cfg *config.Config, log *zap.Logger) (catalogapp.ObjectStorage, error) {
	if cfg.Storage.Backend == "memory" {
		log.Warn("Using in-memory object storage; images are not persisted")
		return storage.NewInMemoryObjectStorage(), nil
	}

	s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log.Named("storage")))
	if err != nil {
		return nil, err
	}

	if cfg.Storage.EnsureBucket {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
	}

	log.Info("Object storage ready", zap.String("bucket", s3Storage.GetBucket()))
	return s3Storage, nil
}
