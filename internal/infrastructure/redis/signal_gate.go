package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

var _ inventory.SignalGate = (*SignalGate)(nil)

const signalKeyPrefix = "stock-ledger:reorder-signal:"

type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// SignalGate deja pasar una señal de reorden por clave una vez por ttl.
// Solo guarda marcas de tiempo; los contadores viven en el ledger.
type SignalGate struct {
	rdb setNXer
	ttl time.Duration
	now func() time.Time
}

// NewSignalGate construye el gate sobre un cliente redis.
func NewSignalGate(rdb setNXer, ttl time.Duration) *SignalGate {
	return &SignalGate{rdb: rdb, ttl: ttl, now: time.Now}
}

// Allow devuelve true la primera vez que ve key dentro de la ventana.
func (g *SignalGate) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, signalKeyPrefix+key, g.now().Unix(), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return ok, nil
}
