package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultMaxRetries = 10

// RedisStore keeps each key as a plain string value and uses WATCH/MULTI/EXEC
// for Update, so concurrent read-modify-write cycles never lose each other's writes.
type RedisStore struct {
	client     *redis.Client
	maxRetries int
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, maxRetries: defaultMaxRetries}
}

// Connect dials the backend described by opts and verifies it answers.
func Connect(ctx context.Context, opts *redis.Options, log *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	log.Info("connected to key-value store", "addr", opts.Addr, "db", opts.DB)

	return NewRedisStore(client), nil
}

// WithMaxRetries sets how many optimistic attempts Update makes before giving up.
func (s *RedisStore) WithMaxRetries(n int) *RedisStore {
	if n > 0 {
		s.maxRetries = n
	}
	return s
}

func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	return b, nil
}

func (s *RedisStore) Update(ctx context.Context, fn func(Txn) error, keys ...string) error {
	txf := func(tx *redis.Tx) error {
		t := &redisTxn{ctx: ctx, tx: tx, writes: make(map[string][]byte)}
		if err := fn(t); err != nil {
			return err
		}
		if len(t.order) == 0 {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, key := range t.order {
				pipe.Set(ctx, key, t.writes[key], 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrConflict
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type redisTxn struct {
	ctx    context.Context
	tx     *redis.Tx
	writes map[string][]byte
	order  []string
}

func (t *redisTxn) Get(key string) ([]byte, error) {
	if v, ok := t.writes[key]; ok {
		return v, nil
	}
	b, err := t.tx.Get(t.ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %s: %w", key, err)
	}
	return b, nil
}

func (t *redisTxn) Set(key string, value []byte) {
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
	t.writes[key] = value
}
