package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"zooworld/assistant-api/internal/config"
	"zooworld/assistant-api/internal/domain/assistant"
	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/domain/conversation"
	"zooworld/assistant-api/internal/domain/sandbox"
	"zooworld/assistant-api/internal/infrastructure/auth"
	"zooworld/assistant-api/internal/infrastructure/database"
	"zooworld/assistant-api/internal/infrastructure/logger"
	"zooworld/assistant-api/internal/infrastructure/observability"
	"zooworld/assistant-api/internal/infrastructure/promptcache"
	"zooworld/assistant-api/internal/infrastructure/replygen"
	assistantrepo "zooworld/assistant-api/internal/infrastructure/repository/assistant"
	catalogrepo "zooworld/assistant-api/internal/infrastructure/repository/catalog"
	conversationrepo "zooworld/assistant-api/internal/infrastructure/repository/conversation"
	sandboxrepo "zooworld/assistant-api/internal/infrastructure/repository/sandbox"
	"zooworld/assistant-api/internal/interfaces/httpserver"
)

// @title Assistant API
// @version 1.0
// @description Manages animal ambassador assistants, sandbox drafts, compiled prompts, and visitor conversation sessions.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth validator")
	}

	promptCache, err := newPromptCache(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize prompt cache")
	}

	personalityRepository := catalogrepo.NewPersonalityRepository(db)
	guardrailRepository := catalogrepo.NewGuardrailRepository(db)
	animalRepository := catalogrepo.NewAnimalRepository(db)
	assistantRepository := assistantrepo.NewRepository(db)
	sandboxRepository := sandboxrepo.NewRepository(db)
	conversationRepository := conversationrepo.NewRepository(db)
	generator := replygen.NewClient(cfg.ReplyGeneratorURL)

	catalogService := catalog.NewService(personalityRepository, guardrailRepository, animalRepository, log)
	assistantService := assistant.NewService(assistantRepository, animalRepository, personalityRepository, guardrailRepository, promptCache, log)
	sandboxService := sandbox.NewService(sandboxRepository, assistantRepository, personalityRepository, guardrailRepository, promptCache, generator, cfg.SandboxTTL, cfg.ReplyGeneratorTimeout, log)
	conversationService := conversation.NewService(conversationRepository, assistantService, animalRepository, generator, cfg.DefaultContextTurns, cfg.ReplyGeneratorTimeout, log)

	httpServer := httpserver.New(cfg, log, conversationService, assistantService, sandboxService, catalogService, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func newPromptCache(cfg *config.Config) (assistant.PromptCache, error) {
	opts := []promptcache.StoreOption{promptcache.WithTTL(cfg.PromptCacheTTL)}

	if cfg.PromptCacheDriver == string(promptcache.DriverRedis) {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = append(opts, promptcache.WithRedisClient(redis.NewClient(redisOpts)))
	}

	return promptcache.NewStore(promptcache.Driver(cfg.PromptCacheDriver), opts...)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
