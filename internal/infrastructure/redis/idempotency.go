// Package redis guarda las claves de idempotencia de POST /api/movements.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/strategic-ledger/internal/application/ledger"
)

const (
	keyPrefix         = "ledger:idem:"
	pendingValue      = "pending"
	defaultPendingTTL = time.Minute
)

var _ ledger.IdempotencyStore = (*IdempotencyStore)(nil)

// NewClient abre un cliente a partir de REDIS_URL y comprueba la conexión.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := goredis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// IdempotencyStore guarda ledger:idem:<usuario>:<clave> = "pending" | <id de movimiento>.
// Una reserva pendiente caduca antes (pendingTTL) para que un proceso caído no bloquee
// la clave durante todo el TTL.
type IdempotencyStore struct {
	rdb        *goredis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewIdempotencyStore construye el almacén. ttl es la vida de una clave completada.
func NewIdempotencyStore(rdb *goredis.Client, ttl time.Duration) *IdempotencyStore {
	pending := defaultPendingTTL
	if ttl > 0 && ttl < pending {
		pending = ttl
	}
	return &IdempotencyStore{rdb: rdb, ttl: ttl, pendingTTL: pending}
}

// key escapa ambas partes para que ":" dentro del usuario o la clave no produzca colisiones.
func key(scope, k string) string {
	return keyPrefix + url.QueryEscape(scope) + ":" + url.QueryEscape(k)
}

// Reserve intenta tomar la clave. Ver ledger.IdempotencyStore para el significado del resultado.
func (s *IdempotencyStore) Reserve(ctx context.Context, scope, k string) (string, bool, error) {
	redisKey := key(scope, k)
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.rdb.SetNX(ctx, redisKey, pendingValue, s.pendingTTL).Result()
		if err != nil {
			return "", false, fmt.Errorf("setnx %s: %w", redisKey, err)
		}
		if ok {
			return "", true, nil
		}
		val, err := s.rdb.Get(ctx, redisKey).Result()
		if errors.Is(err, goredis.Nil) {
			// Caducó entre SETNX y GET: reintentar la reserva.
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("get %s: %w", redisKey, err)
		}
		if val == pendingValue {
			return "", false, nil
		}
		return val, false, nil
	}
	return "", false, nil
}

// Complete asocia la clave al movimiento creado.
func (s *IdempotencyStore) Complete(ctx context.Context, scope, k, movementID string) error {
	if err := s.rdb.Set(ctx, key(scope, k), movementID, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key(scope, k), err)
	}
	return nil
}

// Release borra una reserva pendiente tras un fallo. No toca claves ya completadas.
func (s *IdempotencyStore) Release(ctx context.Context, scope, k string) error {
	redisKey := key(scope, k)
	val, err := s.rdb.Get(ctx, redisKey).Result()
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", redisKey, err)
	}
	if val != pendingValue {
		return nil
	}
	if err := s.rdb.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("del %s: %w", redisKey, err)
	}
	return nil
}
