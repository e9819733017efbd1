package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis persiste o material de sessão em Redis. É o backend usado nos
// terminais compartilhados da portaria, onde a sessão pertence ao posto e
// não ao aparelho.
type Redis struct {
	client  redisCommander
	prefixo string
}

// NewRedis cria o store usando o cliente informado. O prefixo isola os
// postos de um mesmo condomínio (ex.: "portaria:entrada-a").
func NewRedis(client *redis.Client, prefixo string) *Redis {
	return &Redis{client: client, prefixo: prefixo}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.chave(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNaoEncontrado
	}
	if err != nil {
		return "", fmt.Errorf("store redis: get: %w", err)
	}
	return val, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.chave(key), value, 0).Err(); err != nil {
		return fmt.Errorf("store redis: set: %w", err)
	}
	return nil
}

func (r *Redis) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, r.chave(key))
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("store redis: del: %w", err)
	}
	return nil
}

func (r *Redis) chave(key string) string {
	if r.prefixo == "" {
		return key
	}
	return r.prefixo + ":" + key
}
