package bootstrap

import (
	"context"
	"fmt"
	"io"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"plantid/internal/ai"
	"plantid/internal/config"
	"plantid/internal/logging"
	mysqlClient "plantid/internal/platform/mysql"
	postgresClient "plantid/internal/platform/postgres"
	rabbitmqClient "plantid/internal/platform/rabbitmq"
	redisClient "plantid/internal/platform/redis"
	sentryClient "plantid/internal/platform/sentry"
	"plantid/internal/repository"
	"plantid/internal/session"
	"plantid/internal/storage"
	"plantid/internal/worker"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Store     repository.Store
	Sessions  *session.Manager
	Inference ai.Client
	Images    storage.ImageStore

	ContactPublisher *rabbitmqClient.ContactPublisher
	ContactWorker    *worker.ContactNotifyWorker

	SentryEnabled bool
	StartedAt     time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	logging.Setup(cfg.App.Env)

	a := &App{Config: cfg, StartedAt: time.Now()}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	sentryOn, err := sentryClient.Init(cfg.Sentry.DSN, cfg.App.Env, cfg.App.Name, cfg.Sentry.TracesSampleRate)
	if err != nil {
		log.Warn().Err(err).Msg("sentry disabled")
	}
	a.SentryEnabled = sentryOn

	switch cfg.Database.Driver {
	case "postgres":
		a.DB, err = postgresClient.New(ctx, cfg.Database.PostgresDSN)
	default:
		a.DB, err = mysqlClient.New(ctx, cfg.MySQLDSN())
	}
	if err != nil {
		return err
	}
	if err := repository.AutoMigrate(a.DB); err != nil {
		return err
	}
	a.Store = repository.NewGormStore(a.DB)

	a.Redis, err = redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	a.Sessions = session.NewManager(session.NewRedisStore(a.Redis), cfg.Auth.SessionSecret, cfg.SessionTTL())

	if cfg.RabbitMQ.Enabled {
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		a.ContactPublisher = rabbitmqClient.NewContactPublisher(a.MQConn, cfg.RabbitMQ.ContactQueue)
		a.ContactWorker = worker.NewContactNotifyWorker(a.MQConn, worker.LogNotifier{}, cfg.RabbitMQ.ContactQueue)
		if err := a.ContactWorker.Start(ctx); err != nil {
			return fmt.Errorf("start contact worker failed: %w", err)
		}
	}

	a.Inference, err = newInferenceClient(ctx, cfg)
	if err != nil {
		return err
	}

	a.Images, err = newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	log.Info().
		Str("db", cfg.Database.Driver).
		Str("inference", cfg.Inference.Provider).
		Str("storage", cfg.Storage.Driver).
		Bool("rabbitmq", cfg.RabbitMQ.Enabled).
		Bool("sentry", a.SentryEnabled).
		Msg("dependencies ready")
	return nil
}

func newInferenceClient(ctx context.Context, cfg *config.Config) (ai.Client, error) {
	if cfg.Inference.APIKey == "" {
		log.Warn().Msg("inference api key is empty; analyze requests will fail with 401")
	}
	switch cfg.Inference.Provider {
	case "openai":
		return ai.NewOpenAICompatibleClient(ai.OpenAIConfig{
			BaseURL: cfg.Inference.BaseURL,
			APIKey:  cfg.Inference.APIKey,
			Model:   cfg.Inference.Model,
			Timeout: cfg.InferenceTimeout(),
		}), nil
	default:
		client, err := ai.NewGeminiClient(ctx, cfg.Inference.APIKey, cfg.Inference.Model, cfg.InferenceTimeout())
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.Storage.Driver {
	case "gcs":
		store, err := storage.NewGCSStore(ctx, cfg.Storage.GCSBucket, cfg.Storage.GCSPrefix, cfg.Storage.GCSCredentials)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.PublicPrefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.ContactWorker != nil {
		a.ContactWorker.Close()
	}
	if a.ContactPublisher != nil {
		if err := a.ContactPublisher.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if closer, ok := a.Images.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.SentryEnabled {
		sentryClient.Flush()
	}
	return closeErr
}
