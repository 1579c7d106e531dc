// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront-crm/internal/config"
	"storefront-crm/internal/db"
	catalogHandler "storefront-crm/internal/handlers/catalog"
	commerceHandler "storefront-crm/internal/handlers/commerce"
	crmHandler "storefront-crm/internal/handlers/crm"
	sessionHandler "storefront-crm/internal/handlers/session"
	tenantHandler "storefront-crm/internal/handlers/tenant"
	wsHandler "storefront-crm/internal/handlers/websocket"
	"storefront-crm/internal/middleware"
	"storefront-crm/internal/pkg/jwt"
	"storefront-crm/internal/pkg/session"
	crmsvc "storefront-crm/internal/service/crm"
	tenantsvc "storefront-crm/internal/service/tenant"
	"storefront-crm/internal/websocket"
	wsHandlers "storefront-crm/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}
}

// Start wires every dependency, serves HTTP and blocks until ctx is
// cancelled, then drains in-flight requests and the realtime hub.
func (s *Server) Start(ctx context.Context) error {
	logger := s.logger

	// ----- PostgreSQL -----
	if s.cfg.RunMigrations {
		if err := db.MigrateUp(s.cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("migrations applied")
	}

	pool, err := db.ConnectDB(ctx, db.PostgresConfig{
		URL:      s.cfg.DatabaseURL,
		MaxConns: s.cfg.DBMaxConns,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addresses: []string{s.cfg.RedisAddr},
		Password:  s.cfg.RedisPass,
		DB:        s.cfg.RedisDB,
		PoolSize:  10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()
	logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Sessions & Rate Limiter -----
	revocations := session.NewRevocations(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Services & WebSocket Hub -----
	var hub *websocket.Hub
	services := BuildServices(s.cfg, pool, redisClient, func(members *tenantsvc.TenantService) crmsvc.EventPublisher {
		hub = websocket.NewHub(jwtManager.Verifier, members, logger.Named("ws")).
			WithRevocations(revocations)
		members.WithDisconnector(hub)
		return hub
	}, logger)

	hub.RegisterHandler(wsHandlers.NewTimelineHandler(services.CRM))

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(jwtManager.Verifier, services.Tenant).
		WithRevocations(revocations)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.CORSAllowedOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, &Handlers{
		TenantHandler:   tenantHandler.NewTenantHandler(services.Tenant),
		CatalogHandler:  catalogHandler.NewCatalogHandler(services.Catalog),
		CommerceHandler: commerceHandler.NewCommerceHandler(services.Commerce),
		CRMHandler:      crmHandler.NewCRMHandler(services.CRM),
		SessionHandler:  sessionHandler.NewSessionHandler(revocations),
		WSHandler:       wsHandler.NewWebSocketHandler(hub, s.cfg.CORSAllowedOrigins, logger.Named("ws")),
		AuthMiddleware:  authMiddleware,
		RateLimit:       middleware.RateLimitMiddleware(rateLimiter, s.cfg.RateLimitPerMinute, time.Minute, logger),
	})

	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	stopHub()
	logger.Info("server stopped")
	return nil
}
