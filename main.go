package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"character-dialog-service/backend/internal/api"
	"character-dialog-service/backend/internal/service"
	"character-dialog-service/backend/internal/store"
	"character-dialog-service/backend/llm"
	"character-dialog-service/backend/pkg/config"
	"character-dialog-service/backend/pkg/health"
	"character-dialog-service/backend/pkg/logger"
	"character-dialog-service/backend/pkg/observability"
	"character-dialog-service/backend/pkg/secrets"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.New()

	log := logger.New(logger.Config{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.Format == "json",
	})
	logger.SetGlobal(log)

	shutdownTracing, err := observability.SetupTracing("character-dialog-service")
	if err != nil {
		log.Warn("tracing disabled", "error", err)
	}

	meterProvider, err := observability.SetupMetrics()
	if err != nil {
		log.Error("failed to set up metrics", "error", err)
		os.Exit(1)
	}
	metrics, err := observability.NewMetrics(meterProvider)
	if err != nil {
		log.Error("failed to create metrics instruments", "error", err)
		os.Exit(1)
	}

	db, err := setupDatabase(cfg)
	if err != nil {
		log.Error("failed to set up database", "error", err)
		os.Exit(1)
	}

	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	if cfg.Database.SeedFile != "" {
		created, err := st.SeedCharacters(context.Background(), cfg.Database.SeedFile)
		if err != nil {
			log.Error("failed to seed characters", "error", err, "file", cfg.Database.SeedFile)
			os.Exit(1)
		}
		log.Info("characters seeded", "created", created, "file", cfg.Database.SeedFile)
	}

	client, err := buildLLMClient(cfg, log)
	if err != nil {
		log.Error("failed to build completion client", "error", err)
		os.Exit(1)
	}
	log.Info("completion client configured", "vendor", client.Vendor())

	var descriptionCache service.DescriptionCache
	switch {
	case !cfg.Cache.Enabled:
		descriptionCache = service.NewNoopCache()
	case cfg.Cache.RedisURL != "":
		descriptionCache = service.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.TTL)
		log.Info("character cache backed by redis", "addr", cfg.Cache.RedisURL)
	default:
		descriptionCache = service.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.PurgeWindow, cfg.Cache.MaxSize)
	}

	turnService := service.NewTurnService(st, client, descriptionCache, log, metrics)

	checker := health.NewChecker(log)
	checker.RegisterCheck("database", func() (health.Status, string, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			return health.StatusDown, "database unreachable", err
		}
		n, err := st.CountMessages(ctx)
		if err != nil {
			return health.StatusDegraded, "database reachable, count failed", err
		}
		return health.StatusUp, fmt.Sprintf("database reachable, %d messages", n), nil
	})
	checker.RegisterCheck("completion_client", func() (health.Status, string, error) {
		return health.StatusUp, "vendor " + client.Vendor() + " configured", nil
	})

	controller := api.NewTurnController(turnService)
	engine := api.NewRouter(cfg, log, controller, checker)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.LLM.Timeout + 10*time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shut down server", "error", err)
	}
	if shutdownTracing != nil {
		_ = shutdownTracing(ctx)
	}
	log.Info("server shutdown complete")
}

// setupDatabase opens the configured relational store: a local SQLite file
// by default, PostgreSQL when DB_DRIVER=postgres.
func setupDatabase(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "", "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite database %s: %w", cfg.Database.Path, err)
		}
		return db, nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
			cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// buildLLMClient resolves credentials (Vault when configured, environment
// otherwise) and constructs the one configured vendor client.
func buildLLMClient(cfg *config.Config, log *logger.Logger) (llm.Client, error) {
	ctx := context.Background()
	secretManager := secrets.NewManager(log)

	opts := llm.Options{
		Vendor:  cfg.LLM.Vendor,
		Timeout: cfg.LLM.Timeout,
		GigaChat: llm.GigaChatOptions{
			AuthKey:  secretManager.GetSecretWithDefault(ctx, "GIGACHAT_AUTH_KEY", cfg.LLM.GigaChatAuthKey),
			Scope:    cfg.LLM.GigaChatScope,
			OAuthURL: cfg.LLM.GigaChatOAuthURL,
			APIURL:   cfg.LLM.GigaChatAPIURL,
			Model:    cfg.LLM.GigaChatModel,
		},
		OpenRouter: llm.OpenRouterOptions{
			APIKey:  secretManager.GetSecretWithDefault(ctx, "OPENROUTER_API_KEY", cfg.LLM.OpenRouterAPIKey),
			Model:   cfg.LLM.OpenRouterModel,
			BaseURL: cfg.LLM.OpenRouterBaseURL,
			SiteURL: cfg.LLM.OpenRouterSiteURL,
			AppName: cfg.LLM.OpenRouterAppName,
		},
		Groq: llm.GroqOptions{
			APIKey:  secretManager.GetSecretWithDefault(ctx, "GROQ_API_KEY", cfg.LLM.GroqAPIKey),
			Model:   cfg.LLM.GroqModel,
			BaseURL: cfg.LLM.GroqBaseURL,
		},
	}

	return llm.New(opts, log)
}
