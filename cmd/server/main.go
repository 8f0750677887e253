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

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/config"
	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/database"
	"github.com/yukikurage/taskflow/internal/logger"
	"github.com/yukikurage/taskflow/internal/metrics"
	"github.com/yukikurage/taskflow/internal/repository"
	"github.com/yukikurage/taskflow/internal/router"
	"github.com/yukikurage/taskflow/internal/services"
	"github.com/yukikurage/taskflow/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	store, closeStore, err := openStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to open store", "driver", cfg.StoreDriver, "error", err)
	}
	defer closeStore()

	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		appLogger.Fatalw("Failed to create session store", "store", cfg.SessionStore, "error", err)
	}

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	appMetrics := metrics.New()
	weatherClient := &http.Client{Timeout: 10 * time.Second}

	r := router.New(router.Dependencies{
		Logger:             appLogger.WithComponent("http"),
		Metrics:            appMetrics,
		SessionStore:       sessionStore,
		SecureCookies:      cfg.IsProduction(),
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		Accounts:           services.NewAccountService(repository.NewAccountRepository(store), time.Now),
		Sessions:           services.NewSessionService(repository.NewSessionRepository(store), time.Now),
		Tasks: services.NewTaskService(
			repository.NewTaskRepository(store, cfg.Location),
			cfg.Location,
			services.WithMutationObserver(appMetrics),
		),
		Preferences: services.NewPreferenceService(repository.NewPreferenceRepository(store)),
		Weather:     services.NewWeatherService(weatherClient, cfg.WeatherBaseURL, cfg.WeatherAPIKey),
		AI:          aiService,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		appLogger.Infow("Server starting",
			"addr", cfg.HTTPAddr,
			"store", cfg.StoreDriver,
			"sessions", cfg.SessionStore,
			"timezone", cfg.Location.String(),
			"weather", cfg.WeatherAPIKey != "",
			"ai", aiService != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Infow("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("Server forced to shutdown", "error", err)
		return
	}

	appLogger.Infow("Server exited gracefully")
}

// openStore returns the key/value backend named by STORE_DRIVER together
// with a function releasing it.
func openStore(cfg *config.Config, appLogger *logger.Logger) (storage.Store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		appLogger.Warnw("Using the in-memory store; data is lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	case "redis":
		s := storage.NewRedisStore(storage.NewRedisPool(cfg.RedisAddr(), cfg.RedisPassword), cfg.RedisPrefix)
		return s, func() { _ = s.Close() }, nil
	default:
		db, err := database.Connect(cfg, appLogger.WithComponent("database"))
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		return storage.NewGormStore(db), func() { _ = sqlDB.Close() }, nil
	}
}

// newSessionStore backs the session cookie. A cookie store keeps everything
// client side; the redis store keeps only an id in the cookie.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store

	switch cfg.SessionStore {
	case "redis":
		rs, err := redisStore.NewStore(
			10,                        // Redis pool size
			"tcp",                     // network type
			cfg.RedisAddr(),           // Redis address from config
			"",                        // username (empty for default user)
			cfg.RedisPassword,         // password
			[]byte(cfg.SessionSecret), // authentication key
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		// Browser session cookies carry no Max-Age; keep their server side
		// record as long as a remembered cookie would live.
		backend, err := redisStore.GetRedisStore(rs)
		if err != nil {
			return nil, fmt.Errorf("failed to configure Redis store: %w", err)
		}
		backend.DefaultMaxAge = constants.SessionMaxAge
		store = rs
	default:
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
