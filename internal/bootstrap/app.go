package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"accel-catalog/internal/config"
	"accel-catalog/internal/extract"
	rabbitmqClient "accel-catalog/internal/platform/rabbitmq"
	redisClient "accel-catalog/internal/platform/redis"
	"accel-catalog/internal/store"
	"accel-catalog/internal/worker"
)

type App struct {
	Config      *config.Config
	Docs        *store.Documents
	Extractor   extract.Extractor
	Redis       *redis.Client
	MQConn      *amqp.Connection
	AuditWorker *worker.AuditWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	for _, dir := range []string{cfg.Data.Dir, cfg.PresentationsDir(), cfg.SlidesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s failed: %w", dir, err)
		}
	}

	docs := store.NewDocuments(cfg.Data.Dir)

	extractor := extract.New(extract.Options{
		Python:         cfg.Extract.Python,
		VenvPython:     cfg.Extract.VenvPython,
		MaxOutputBytes: int64(cfg.Extract.MaxOutputMB) << 20,
	})

	var redisCli *redis.Client
	if cfg.Redis.Addr != "" {
		redisCli, err = redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
	} else {
		log.Printf("redis not configured, content cache disabled")
	}

	var mqConn *amqp.Connection
	var auditWorker *worker.AuditWorker
	if cfg.RabbitMQ.URL != "" {
		mqConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		auditWorker = worker.NewAuditWorker(mqConn, store.NewAudit(docs), cfg.RabbitMQ.EventQueue)
		if err := auditWorker.Start(ctx); err != nil {
			return nil, fmt.Errorf("start audit worker failed: %w", err)
		}
	} else {
		log.Printf("rabbitmq not configured, catalog events disabled")
	}

	return &App{
		Config:      cfg,
		Docs:        docs,
		Extractor:   extractor,
		Redis:       redisCli,
		MQConn:      mqConn,
		AuditWorker: auditWorker,
		StartedAt:   time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.AuditWorker != nil {
		a.AuditWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
