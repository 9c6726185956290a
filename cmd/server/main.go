package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcAdapter "github.com/kimamovic21/real-estate-marketplace/internal/adapter/grpc"
	"github.com/kimamovic21/real-estate-marketplace/internal/adapter/handler"
	natsAdapter "github.com/kimamovic21/real-estate-marketplace/internal/adapter/messaging/nats"
	"github.com/kimamovic21/real-estate-marketplace/internal/adapter/repository/cache"
	mongoRepo "github.com/kimamovic21/real-estate-marketplace/internal/adapter/repository/mongodb"
	"github.com/kimamovic21/real-estate-marketplace/internal/adapter/storage/s3"
	"github.com/kimamovic21/real-estate-marketplace/internal/auth"
	"github.com/kimamovic21/real-estate-marketplace/internal/config"
	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/imageset"
	"github.com/kimamovic21/real-estate-marketplace/internal/mailer"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/logger"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/metrics"
	"github.com/kimamovic21/real-estate-marketplace/internal/platform/tracer"
	"github.com/kimamovic21/real-estate-marketplace/internal/usecase"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	bootLogger := logger.NewLogger()
	cfg, err := config.LoadConfig(bootLogger)
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	_ = bootLogger.Sync()

	appLogger := logger.New(cfg.LoggerConfig())
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Application starting...",
		zap.String("service_name", cfg.ServiceName),
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.Bool("mongo_uri_set", cfg.MongoURI != ""),
	)

	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// MongoDB
	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		appLogger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := mongoClient.Ping(ctxPing, nil); err != nil {
		cancelPing()
		appLogger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	cancelPing()
	db := mongoClient.Database(cfg.MongoDatabase)

	ctxInit, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()

	userRepo, err := mongoRepo.NewUserRepository(ctxInit, db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize UserRepository", zap.Error(err))
	}
	listingRepo, err := mongoRepo.NewListingRepository(ctxInit, db, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize ListingRepository", zap.Error(err))
	}

	// Optional collaborators stay as nil interfaces when unconfigured.
	var listingCache domain.ListingCache
	var redisCache *cache.ListingCache
	if cfg.RedisAddress != "" {
		redisCache, err = cache.NewListingCache(ctxInit, cfg.RedisAddress, cfg.ListingCacheTTL)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() { _ = redisCache.Close() }()
		listingCache = redisCache
		appLogger.Info("Redis listing cache enabled", zap.String("addr", cfg.RedisAddress))
	}

	var events domain.EventPublisher
	if cfg.NATSURL != "" {
		publisher, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer publisher.Close()
		events = publisher
	}

	var uploads imageset.UploadResolver
	if cfg.MinioEndpoint != "" {
		storage, err := s3.NewS3Storage(ctxInit, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize S3 storage", zap.Error(err))
		}
		uploads = storage
	} else {
		appLogger.Warn("MINIO_ENDPOINT not set, listings with local images will be rejected")
	}

	var notifier domain.ListingNotifier
	if cfg.SMTPHost != "" && cfg.SMTPEmail != "" {
		notifier = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, auth.WithSecureCookie(cfg.CookieSecure))
	if err != nil {
		appLogger.Fatal("Failed to initialize token service", zap.Error(err))
	}

	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)
	images := imageset.NewManager(imageset.Config{
		MaxImages:     cfg.MaxImages,
		MaxImageBytes: cfg.MaxImageBytes,
		UploadTimeout: cfg.UploadTimeout,
	}, appLogger)

	authUsecase := usecase.NewAuthUsecase(userRepo, tokens, nil, events, appLogger)
	listingUsecase := usecase.NewListingUsecase(usecase.ListingDeps{
		Repo:     listingRepo,
		Users:    userRepo,
		Guard:    usecase.NewOwnershipGuard(tokens, listingRepo, appLogger),
		Images:   images,
		Uploads:  uploads,
		Cache:    listingCache,
		Events:   events,
		Notifier: notifier,
	}, appLogger)
	userUsecase := usecase.NewUserUsecase(userRepo, listingRepo, appLogger)

	apiHandler := handler.New(handler.Deps{
		Auth:     authUsecase,
		Listings: listingUsecase,
		Users:    userUsecase,
		Tokens:   tokens,
		Limits:   handler.UploadLimits{MaxImages: cfg.MaxImages, MaxImageBytes: cfg.MaxImageBytes},
		Metrics:  metricsManager,
	}, appLogger)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           apiHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	metricsSrv := metrics.NewMetricsServer(cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry)
	if metricsSrv != nil {
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("Prometheus metrics server failed", zap.Error(err))
			}
		}()
	}

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	var healthSrv *grpcAdapter.HealthServer
	if cfg.GRPCHealthPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCHealthPort)
		if err != nil {
			appLogger.Fatal("Failed to listen for gRPC health", zap.String("port", cfg.GRPCHealthPort), zap.Error(err))
		}
		healthSrv = grpcAdapter.NewHealthServer(cfg.ServiceName, appLogger)
		healthSrv.AddCheck("mongodb", func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) })
		if redisCache != nil {
			healthSrv.AddCheck("redis", redisCache.Ping)
		}
		go func() {
			if err := healthSrv.Serve(lis); err != nil {
				appLogger.Error("gRPC health server failed", zap.Error(err))
			}
		}()
		go healthSrv.Monitor(monitorCtx, 15*time.Second)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	stopMonitor()
	if healthSrv != nil {
		healthSrv.Shutdown()
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpSrv.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctxShutdown); err != nil {
			appLogger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}

	appLogger.Info("Application shutting down...")
}
