//go:build wireinject

package main

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"zooworld/assistant-api/internal/config"
	"zooworld/assistant-api/internal/domain/assistant"
	"zooworld/assistant-api/internal/domain/catalog"
	"zooworld/assistant-api/internal/domain/conversation"
	replyDomain "zooworld/assistant-api/internal/domain/reply"
	"zooworld/assistant-api/internal/domain/sandbox"
	"zooworld/assistant-api/internal/infrastructure/auth"
	"zooworld/assistant-api/internal/infrastructure/database"
	"zooworld/assistant-api/internal/infrastructure/logger"
	"zooworld/assistant-api/internal/infrastructure/promptcache"
	"zooworld/assistant-api/internal/infrastructure/replygen"
	assistantrepo "zooworld/assistant-api/internal/infrastructure/repository/assistant"
	catalogrepo "zooworld/assistant-api/internal/infrastructure/repository/catalog"
	conversationrepo "zooworld/assistant-api/internal/infrastructure/repository/conversation"
	sandboxrepo "zooworld/assistant-api/internal/infrastructure/repository/sandbox"
	"zooworld/assistant-api/internal/interfaces/httpserver"
)

var domainSet = wire.NewSet(
	catalogrepo.NewPersonalityRepository,
	wire.Bind(new(catalog.PersonalityRepository), new(*catalogrepo.PersonalityRepository)),
	catalogrepo.NewGuardrailRepository,
	wire.Bind(new(catalog.GuardrailRepository), new(*catalogrepo.GuardrailRepository)),
	catalogrepo.NewAnimalRepository,
	wire.Bind(new(catalog.AnimalRepository), new(*catalogrepo.AnimalRepository)),
	assistantrepo.NewRepository,
	wire.Bind(new(assistant.Repository), new(*assistantrepo.Repository)),
	sandboxrepo.NewRepository,
	wire.Bind(new(sandbox.Repository), new(*sandboxrepo.Repository)),
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	newReplyGenerator,
	wire.Bind(new(replyDomain.Generator), new(*replygen.Client)),
	newPromptCacheStore,
	catalog.NewService,
	assistant.NewService,
	newSandboxService,
	newConversationService,
)

// BuildApplication assembles the assistant service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		newAuthValidator,
		domainSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(cfg database.Config) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

func newReplyGenerator(cfg *config.Config) *replygen.Client {
	return replygen.NewClient(cfg.ReplyGeneratorURL)
}

func newPromptCacheStore(cfg *config.Config) (assistant.PromptCache, error) {
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

func newSandboxService(
	repo sandbox.Repository,
	assistants assistant.Repository,
	personalities catalog.PersonalityRepository,
	guardrails catalog.GuardrailRepository,
	promptCache assistant.PromptCache,
	generator replyDomain.Generator,
	cfg *config.Config,
	log zerolog.Logger,
) sandbox.Service {
	return sandbox.NewService(repo, assistants, personalities, guardrails, promptCache, generator, cfg.SandboxTTL, cfg.ReplyGeneratorTimeout, log)
}

func newConversationService(
	repo conversation.Repository,
	assistants assistant.Service,
	animals catalog.AnimalRepository,
	generator replyDomain.Generator,
	cfg *config.Config,
	log zerolog.Logger,
) conversation.Service {
	return conversation.NewService(repo, assistants, animals, generator, cfg.DefaultContextTurns, cfg.ReplyGeneratorTimeout, log)
}
