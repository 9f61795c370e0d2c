package bootstrap

import (
	"context"
	"time"

	"github.com/Jaysins/yoghurt-backend/configs"
	"github.com/Jaysins/yoghurt-backend/internal/adapter/cache"
	httpadapter "github.com/Jaysins/yoghurt-backend/internal/adapter/http"
	"github.com/Jaysins/yoghurt-backend/internal/adapter/mail"
	"github.com/Jaysins/yoghurt-backend/internal/adapter/repo"
	"github.com/Jaysins/yoghurt-backend/internal/logging"
	"github.com/Jaysins/yoghurt-backend/internal/notify"
	"github.com/Jaysins/yoghurt-backend/internal/storage"
	"github.com/Jaysins/yoghurt-backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	// init database
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Postgres.MaxConns > 0 {
		poolCfg.MaxConns = cfg.Postgres.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := repo.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	// init redis (optional; without it create idempotency is disabled)
	var rdb *redis.Client
	var idem usecase.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			pool.Close()
			return nil, nil, err
		}
		idem = cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	} else {
		log.Warn("redis not configured, create idempotency disabled")
	}

	uploads, err := storage.NewUploadStore(cfg.Uploads.Dir, cfg.Uploads.MaxSizeBytes, cfg.Uploads.AllowedExts)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	// notification path: mode is re-derived from config on every dispatch
	notifyCfg := notify.ConfigSourceFunc(func() notify.Config {
		return notify.Config{
			DelegatedEnabled: cfg.Notify.DelegatedEnabled,
			DelegatedBaseURL: cfg.Notify.DelegatedURL,
			SMTP: notify.SMTPConfig{
				Host:     cfg.Mail.Host,
				Port:     cfg.Mail.Port,
				Username: cfg.Mail.Username,
				Password: cfg.Mail.Password,
				UseTLS:   cfg.Mail.UseTLS,
				Sender:   cfg.Mail.Sender,
			},
			AdminEmail: cfg.Mail.AdminEmail,
		}
	})
	dispatcher := notify.NewDispatcher(
		notifyCfg,
		mail.NewGomailSender(logging.New("mail")),
		notify.NewDelegatedClient(),
		notify.NewProbe(logging.New("probe")),
		logging.New("notify"),
	)

	// infra + use cases
	orderRepo := repo.NewPostgresOrderRepo(pool)
	codes := usecase.NewCodeGenerator(orderRepo)
	createUC := usecase.NewCreateOrder(orderRepo, codes, idem, logging.New("create_order"))
	updateUC := usecase.NewUpdateOrder(orderRepo, logging.New("update_order"))
	finalizeUC := usecase.NewFinalizeOrder(orderRepo, dispatcher, uploads, logging.New("finalize_order"))

	h := httpadapter.NewOrderHandler(createUC, updateUC, finalizeUC, orderRepo, uploads)
	router := httpadapter.NewRouter(h, cfg.Uploads.MaxSizeBytes)

	cleanup := func() {
		pool.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
	}

	return &App{Router: router}, cleanup, nil
}
