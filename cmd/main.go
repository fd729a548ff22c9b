package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-live/overlay-service/internal/assetstore"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/broadcaster"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/config"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/domain"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/handler"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/hub"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/idgen"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/registry"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/repository"
	"github.com/weiawesome/wes-io-live/overlay-service/internal/service"
	pkgconfig "github.com/weiawesome/wes-io-live/overlay-service/pkg/config"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/database"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-live/overlay-service/pkg/log"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/middleware"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/pubsub"
	"github.com/weiawesome/wes-io-live/overlay-service/pkg/storage"
)

const serviceName = "overlay-service"

func main() {
	// Load configuration
	cfg, err := config.Load(pkgconfig.GetEnv("OVERLAY_CONFIG_DIR", "./config"))
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty || cfg.Log.Level == "debug",
		ServiceName: serviceName,
	})
	logger := pkglog.L()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("refusing to start")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage backends
	contentBackend, err := storage.New(ctx, cfg.Storage.ContentBackend())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init asset storage")
	}
	previewBackend, err := storage.New(ctx, cfg.Storage.PreviewBackend())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init preview storage")
	}
	store := assetstore.New(contentBackend, previewBackend)
	logger.Info().Str("driver", cfg.Storage.Driver).Msg("asset storage ready")

	ids, err := idgen.New(cfg.Asset.IDStrategy)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid asset id strategy")
	}

	// Cross-instance relay bus. Every instance needs every event, so Kafka
	// consumers get a group of their own.
	instanceID := uuid.New().String()
	busCfg := cfg.PubSub
	busCfg.Kafka.GroupID = busCfg.Kafka.GroupID + "-" + instanceID
	bus, err := pubsub.NewPubSub(busCfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.PubSub.Driver).Msg("failed to connect to event bus")
	}

	var busPublisher pubsub.Publisher
	if bus != nil {
		busPublisher = bus
		logger.Info().Str("driver", cfg.PubSub.Driver).Str("instance_id", instanceID).Msg("event bus connected")
		if cfg.Storage.Driver != "s3" {
			logger.Warn().Msg("relay enabled with local storage; peers can serve relayed assets only if the asset and preview paths are shared")
		}
	}

	eventHub := hub.New(cfg.WebSocket.SendBuffer)
	events := broadcaster.New(eventHub, busPublisher, broadcaster.Config{
		Origin:         instanceID,
		PublishTimeout: cfg.Relay.PublishTimeout,
	})

	channels := registry.New()
	directory := service.NewDirectoryService(channels, store, events, ids, service.PreviewOptions{
		MaxWidth:  cfg.Preview.MaxWidth,
		MaxHeight: cfg.Preview.MaxHeight,
	})

	// Script assets are optional and need a database.
	var scripts service.ScriptAssetService
	db, err := database.New(&cfg.Database)
	switch {
	case errors.Is(err, database.ErrDisabled):
		logger.Info().Msg("database disabled, script assets unavailable")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect to database")
	default:
		if err := database.AutoMigrate(db, &domain.ScriptAssetModel{}); err != nil {
			logger.Fatal().Err(err).Msg("failed to auto-migrate")
		}
		scripts = service.NewScriptAssetService(repository.NewGormScriptAssetRepository(db), ids)
		logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")
	}

	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.AccessDuration)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler.NewHandler(directory, scripts, store, middleware.NewAuthMiddleware(tokens), cfg.Upload.MaxBytes()).RegisterRoutes(r)
	handler.NewWSHandler(eventHub, cfg.WebSocket).RegisterRoutes(r)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("overlay-service starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if bus != nil {
		relay := broadcaster.NewRelay(eventHub, channels, bus, instanceID, cfg.Relay.RetryDelay)
		g.Go(func() error {
			return relay.Run(pkglog.WithLogger(gCtx, logger))
		})
	}

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down overlay-service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("overlay-service stopped with error")
	}

	events.Close()
	if bus != nil {
		if err := bus.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close event bus")
		}
	}
	closeDB(db)
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if err := database.Close(db); err != nil {
		l := pkglog.L()
		l.Warn().Err(err).Msg("failed to close database")
	}
}
