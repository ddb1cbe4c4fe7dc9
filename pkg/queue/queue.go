package queue

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/hugh/hoteldesk/pkg/config"
)

// RedisOpt derives asynq connection options from the KV store settings so
// the queue shares the same Redis instance.
func RedisOpt(cfg *config.KVConfig) (asynq.RedisClientOpt, error) {
	opts, err := cfg.RedisOptions()
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}, nil
}

func NewClient(cfg *config.KVConfig) (*asynq.Client, error) {
	opt, err := RedisOpt(cfg)
	if err != nil {
		return nil, fmt.Errorf("queue client: %w", err)
	}
	return asynq.NewClient(opt), nil
}

func NewServer(cfg *config.KVConfig, concurrency int) (*asynq.Server, error) {
	if concurrency <= 0 {
		concurrency = 10
	}

	opt, err := RedisOpt(cfg)
	if err != nil {
		return nil, fmt.Errorf("queue server: %w", err)
	}

	return asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	), nil
}

func NewInspector(cfg *config.KVConfig) (*asynq.Inspector, error) {
	opt, err := RedisOpt(cfg)
	if err != nil {
		return nil, fmt.Errorf("queue inspector: %w", err)
	}
	return asynq.NewInspector(opt), nil
}
