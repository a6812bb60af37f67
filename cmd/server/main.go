package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kaavalcircle/internal/config"
	handlers "kaavalcircle/internal/handlers/shared"
	"kaavalcircle/internal/middleware"
	"kaavalcircle/internal/repositories/mongodb"
	"kaavalcircle/internal/services"
	"kaavalcircle/pkg/cache"
	"kaavalcircle/pkg/database"
	"kaavalcircle/pkg/logger"
	"kaavalcircle/pkg/maps"
	"kaavalcircle/pkg/metrics"
	"kaavalcircle/pkg/report"
	"kaavalcircle/pkg/sms"
	"kaavalcircle/pkg/storage"
	"kaavalcircle/pkg/websocket"
	"kaavalcircle/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		Output:     "stdout",
		TimeFormat: time.RFC3339,
		Colors:     cfg.App.Debug && cfg.App.LogFormat != "json",
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.WithError(err).Fatal("Server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	// Database
	db, err := database.NewMongoDB(ctx, &database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	log.WithField("database", cfg.Database.Database).Info("Connected to MongoDB")

	if err := database.NewMigrator(db.Database, log).Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Redis backs the user cache and login lockout. Both are skipped when
	// it is disabled or unreachable.
	var cacheBackend services.Cache
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(ctx, &cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, user cache and login lockout disabled")
			redisCache = nil
		} else {
			cacheBackend = redisCache
		}
	}

	// Evidence storage
	provider, err := storage.NewProvider(ctx, storage.Config{
		Provider: cfg.Storage.Provider,
		Local: storage.LocalConfig{
			BasePath: cfg.Storage.Local.BasePath,
			BaseURL:  cfg.Storage.Local.BaseURL,
		},
		S3: storage.S3Config{
			Region:    cfg.Storage.AWS.Region,
			Bucket:    cfg.Storage.AWS.Bucket,
			CDNDomain: cfg.Storage.AWS.CDNDomain,
		},
		GCS: storage.GCSConfig{
			Bucket:          cfg.Storage.GCP.Bucket,
			CredentialsFile: cfg.Storage.GCP.CredentialsFile,
			CDNDomain:       cfg.Storage.GCP.CDNDomain,
		},
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	uploadsDir := ""
	if local, ok := provider.(*storage.LocalStorage); ok {
		uploadsDir = local.BasePath()
	}
	log.WithField("provider", provider.Name()).Info("Evidence storage ready")

	// Optional SOS collaborators
	smsProvider, err := sms.NewProvider(ctx, sms.Config{
		Provider:         cfg.SMS.Provider,
		TwilioAccountSID: cfg.SMS.Twilio.AccountSID,
		TwilioAuthToken:  cfg.SMS.Twilio.AuthToken,
		TwilioFromNumber: cfg.SMS.Twilio.FromNumber,
		AWSRegion:        cfg.SMS.AWS.Region,
	})
	if err != nil {
		log.WithError(err).Warn("SMS dispatch disabled")
		smsProvider = nil
	}

	var geocoder maps.Geocoder
	if cfg.Maps.Provider == "google" {
		google, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey)
		if err != nil {
			log.WithError(err).Warn("Reverse geocoding disabled")
		} else {
			geocoder = google
		}
	}

	// Real-time hub
	hub := websocket.NewHub(websocket.HubConfig{
		SendBufferSize:   cfg.WebSocket.SendBufferSize,
		PublishQueueSize: cfg.WebSocket.PublishQueueSize,
		OnDrop:           metrics.RecordWebSocketDrop,
	}, log)
	go hub.Run(ctx)
	go reportConnections(ctx, hub)

	wsServer := websocket.NewServer(hub, websocket.HandlerConfig{
		ReadBufferSize:   cfg.WebSocket.ReadBufferSize,
		WriteBufferSize:  cfg.WebSocket.WriteBufferSize,
		HandshakeTimeout: cfg.WebSocket.HandshakeTimeout,
		PongTimeout:      cfg.WebSocket.PongTimeout,
		AllowedOrigins:   cfg.WebSocket.AllowedOrigins,
	})

	// Repositories
	userRepo := mongodb.NewUserRepository(db.Database)
	complaintRepo := mongodb.NewComplaintRepository(db.Database)
	sosRepo := mongodb.NewSOSRepository(db.Database)
	analyticsRepo := mongodb.NewAnalyticsRepository(db.Database)

	// Services
	cacheService := services.NewCacheService(cacheBackend, cfg.Redis.UserCacheTTL, log)
	evidenceService := services.NewEvidenceService(provider, cfg.Storage.MaxEvidenceSize, log)
	renderer := report.NewRenderer(report.Config{
		Title:         cfg.Report.Title,
		MaxImageWidth: uint(cfg.Report.MaxImageWidth),
		Location:      cfg.App.Location(),
		FetchTimeout:  cfg.Report.FetchTimeout,
	}, evidenceService, log)

	authService := services.NewAuthService(userRepo, cacheService, evidenceService, services.AuthConfig{
		JWTSecret:        cfg.Security.JWTSecret,
		TokenTTL:         cfg.Security.JWTAccessTokenTTL,
		MaxLoginAttempts: cfg.Security.MaxLoginAttempts,
		LockoutTime:      cfg.Security.LoginLockoutTime,
	}, log)
	complaintService := services.NewComplaintService(complaintRepo, userRepo, evidenceService, renderer, hub, log)
	sosService := services.NewSOSService(sosRepo, userRepo, services.SOSOptions{
		Geocoder:        geocoder,
		GeocodeTimeout:  cfg.Maps.Timeout,
		SMS:             smsProvider,
		DispatchNumbers: cfg.SMS.DispatchNumbers,
		SMSTimeout:      cfg.SMS.SendTimeout,
	}, hub, log)
	analyticsService := services.NewAnalyticsService(analyticsRepo, cfg.App.Location(), log)

	// Router
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}

	limiter := middleware.NewIPRateLimiter(cfg.Security.RateLimitPerMinute, 0)
	go limiter.RunCleanup(ctx)

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.Security.CORSAllowedOrigins))
	router.Use(limiter.Middleware())

	routes.SetupRoutes(router, &routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, log),
		Complaint: handlers.NewComplaintHandler(complaintService, log),
		SOS:       handlers.NewSOSHandler(sosService, log),
		Analytics: handlers.NewAnalyticsHandler(analyticsService, log),
		WebSocket: handlers.NewWebSocketHandler(wsServer, log),
		Health:    handlers.NewHealthHandler(db, cfg.App.Version),
	}, routes.Options{
		JWTSecret:      cfg.Security.JWTSecret,
		WebSocketPath:  cfg.WebSocket.Path,
		UploadsDir:     uploadsDir,
		MetricsHandler: metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("MongoDB disconnect failed")
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.WithError(err).Error("Redis close failed")
		}
	}

	log.Info("Server stopped")
	return nil
}

// reportConnections publishes the connected client count as a gauge.
func reportConnections(ctx context.Context, hub *websocket.Hub) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.SetWebSocketConnections(hub.ClientCount())
		}
	}
}
