package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/lezzet-planner/backend/internal/auth"
	"example.com/lezzet-planner/backend/internal/cart"
	"example.com/lezzet-planner/backend/internal/config"
	"example.com/lezzet-planner/backend/internal/delivery"
	"example.com/lezzet-planner/backend/internal/handlers"
	"example.com/lezzet-planner/backend/internal/notifications"
	"example.com/lezzet-planner/backend/internal/plancart"
	"example.com/lezzet-planner/backend/internal/planner"
	"example.com/lezzet-planner/backend/internal/reconcile"
	"example.com/lezzet-planner/backend/internal/repository"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	restaurantRepo := repository.NewRestaurantRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	addressRepo := repository.NewAddressRepository(db)

	notificationHub := notifications.NewHub()
	estimator := delivery.NewEstimator(cfg.Delivery.AverageSpeedKmh, cfg.Delivery.PrepMinutes, cfg.Delivery.Surcharges)
	planService := planner.NewService(documentRepo, notificationHub, logger)
	cartService := cart.NewService(documentRepo, notificationHub, logger)
	stagingBuffer := plancart.NewBuffer(restaurantRepo, logger)
	reconciler := reconcile.New(stagingBuffer, planService, cartService, logger)

	authHandler := handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantRepo)
	planHandler := handlers.NewPlanHandler(planService, stagingBuffer, reconciler)
	cartHandler := handlers.NewCartHandler(cartService, restaurantRepo, orderRepo, addressRepo, estimator, logger)
	orderHandler := handlers.NewOrderHandler(orderRepo)
	addressHandler := handlers.NewAddressHandler(addressRepo)
	deliveryHandler := handlers.NewDeliveryHandler(estimator, restaurantRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)

	registerRoutes(
		e,
		authHandler,
		restaurantHandler,
		planHandler,
		cartHandler,
		orderHandler,
		addressHandler,
		deliveryHandler,
		notificationHandler,
		auth.JWTMiddleware(tokenManager),
		authRateLimiter(cfg.Auth),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func authRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
