package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"codemarket/internal/cart"
	"codemarket/internal/config"
	"codemarket/internal/domain"
	"codemarket/internal/kvstore"
	custommiddleware "codemarket/internal/middleware"
	"codemarket/internal/purchase"
	"codemarket/internal/repository"
	"codemarket/internal/service"
	"codemarket/internal/transport"
	"codemarket/internal/wallet"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	store       kvstore.Store
	redis       *redis.Client
	stopJanitor context.CancelFunc
}

// NewServer wires the marketplace onto store and w. redisClient enables rate
// limiting and may be nil.
func NewServer(cfg *config.Config, logger *zap.Logger, store kvstore.Store, w wallet.Collaborator, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	// Add basic middleware
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))
	router.Use(custommiddleware.ValidationMiddleware(logger))

	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)

	if redisClient != nil && cfg.RateLimit.Enabled {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         cfg.Store.KeyPrefix + ":ratelimit:ip",
		}, logger))

		// Connected wallets get their own budget on top of the per-IP one
		walletLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         cfg.Store.KeyPrefix + ":ratelimit:wallet",
		}, logger)
		auth := authMiddleware
		authMiddleware = func(next http.Handler) http.Handler {
			return auth(walletLimit(next))
		}
	}

	// Health check endpoint
	router.Get("/health", healthHandler(cfg.Store.Backend, cfg.Wallet.Backend, store, w, logger))

	// Initialize repositories
	var seeds []domain.Listing
	if cfg.Catalog.Seed {
		seeds = repository.SeedListings(time.Now().UTC())
	}
	listingRepo := repository.NewListingRepository(store, logger, seeds...)
	purchaseRepo := repository.NewPurchaseRepository(store, logger)

	// Per-wallet session state lives in process memory
	carts := cart.NewSessions()
	workflows := purchase.NewRegistry(w, purchaseRepo, logger)

	// Initialize services
	sessionTTL := time.Duration(cfg.JWT.SessionExpiry) * time.Minute
	if sessionTTL <= 0 {
		sessionTTL = service.DefaultSessionExpiration
	}
	sessionService := service.NewSessionService(w, cfg.JWT.Secret, sessionTTL)
	listingService := service.NewListingService(listingRepo, logger)
	cartService := service.NewCartService(listingRepo, carts)
	purchaseService := service.NewPurchaseService(listingRepo, purchaseRepo, carts, workflows)

	// Register routes
	transport.NewWalletHandler(sessionService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewListingHandler(listingService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewCartHandler(cartService, purchaseService, logger).RegisterRoutes(router, authMiddleware)
	transport.NewPurchaseHandler(purchaseService, logger).RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:        fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:     router,
			IdleTimeout: time.Minute,
			ReadTimeout: 10 * time.Second,
			// Confirming a purchase waits on the wallet
			WriteTimeout: cfg.Wallet.Timeout + 30*time.Second,
		},
		config: cfg,
		logger: logger,
		store:  store,
		redis:  redisClient,
	}

	// Carts and idle workflows expire with the session token
	ctx, cancel := context.WithCancel(context.Background())
	server.stopJanitor = cancel
	go pruneSessions(ctx, logger, carts, workflows, sessionTTL)

	return server
}

// pruneSessions drops carts and idle purchase workflows unused for maxIdle
func pruneSessions(ctx context.Context, logger *zap.Logger, carts *cart.Sessions, workflows *purchase.Registry, maxIdle time.Duration) {
	ticker := time.NewTicker(janitorInterval(maxIdle))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c, w := carts.Prune(maxIdle), workflows.Prune(maxIdle)
			if c > 0 || w > 0 {
				logger.Debug("Pruned idle sessions", zap.Int("carts", c), zap.Int("workflows", w))
			}
		}
	}
}

func janitorInterval(maxIdle time.Duration) time.Duration {
	if interval := maxIdle / 4; interval > time.Second {
		return interval
	}
	return time.Second
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")
	s.stopJanitor()

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close key-value store", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
