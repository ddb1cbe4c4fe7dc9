package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/hoteldesk/internal/api"
	"github.com/hugh/hoteldesk/internal/auth"
	"github.com/hugh/hoteldesk/internal/notify"
	"github.com/hugh/hoteldesk/internal/records"
	"github.com/hugh/hoteldesk/internal/store"
	"github.com/hugh/hoteldesk/internal/tasks"
	"github.com/hugh/hoteldesk/pkg/config"
	"github.com/hugh/hoteldesk/pkg/queue"
	"github.com/redis/go-redis/v9"
)

// App holds the wired HTTP handler and the resources it owns.
type App struct {
	Handler http.Handler
	Store   store.Store

	asynqClient *asynq.Client
}

// New opens the store, picks a mail sender and builds the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	opts, err := cfg.KV.RedisOptions()
	if err != nil {
		return nil, err
	}

	// An unreachable store is not fatal: liveness keeps answering and
	// /api/ready reports 503 until the store comes back.
	st := store.NewRedisStore(redis.NewClient(opts))
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := st.Ping(pingCtx); err != nil {
		logger.Warn("failed to connect to key-value store", "addr", opts.Addr, "error", err)
	} else {
		logger.Info("connected to key-value store", "addr", opts.Addr, "db", opts.DB)
	}
	cancel()

	a := &App{Store: st}

	mailer, err := a.newMailer(cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if cfg.Mail.AdminEmail == "" {
		logger.Warn("ADMIN_EMAIL not set, approval requests will have no recipient")
	}
	if cfg.JWT.Secret == "change-me-in-production" && !cfg.Server.IsDevelopment() {
		logger.Warn("JWT_SECRET is the built-in default")
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(st, jwtService, mailer, cfg.Mail.AdminEmail, logger)
	recordService := records.NewService(st, logger)

	a.Handler = api.NewRouter(api.RouterConfig{
		Store:         st,
		Logger:        logger,
		JWTService:    jwtService,
		AuthService:   authService,
		RecordService: recordService,
		CORSOrigin:    cfg.Server.CORSOrigin,
		PublicBaseURL: cfg.Mail.PublicBaseURL,
		Development:   cfg.Server.IsDevelopment(),
	})

	return a, nil
}

func (a *App) newMailer(cfg *config.Config, logger *slog.Logger) (notify.Sender, error) {
	switch {
	case cfg.Mail.Queued():
		client, err := queue.NewClient(&cfg.KV)
		if err != nil {
			return nil, err
		}
		a.asynqClient = client
		logger.Info("mail delivery queued to worker")
		return tasks.NewQueueSender(client), nil

	case cfg.SMTP.Enabled():
		sender, err := notify.NewSMTPSender(&cfg.SMTP)
		if err != nil {
			return nil, fmt.Errorf("mail: %w", err)
		}
		logger.Info("mail delivery over smtp", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)
		return sender, nil

	default:
		if cfg.Server.IsDevelopment() {
			logger.Warn("SMTP_HOST not set, outgoing mail is written to the debug log")
		} else {
			logger.Warn("SMTP_HOST not set, outgoing mail will fail")
		}
		return notify.NewLogSender(logger, cfg.Server.IsDevelopment()), nil
	}
}

func (a *App) Close() error {
	var errs []error
	if a.asynqClient != nil {
		errs = append(errs, a.asynqClient.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
