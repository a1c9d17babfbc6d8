package inventory

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
)

// RetryPolicy reintentos acotados ante conflictos de concurrencia (deadlock, serialización, lock timeout).
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy valores usados si la configuración no define otros.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 5, BaseDelay: 20 * time.Millisecond}

// run ejecuta fn y la repite solo si el error es domain.ErrConflict.
// Tras MaxAttempts intentos devuelve ErrConflict; nunca bloquea sin límite.
func (p RetryPolicy) run(ctx context.Context, op string, fn func() error) error {
	attempts := max(p.MaxAttempts, 1)
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		metrics.ConflictRetries.WithLabelValues(op).Inc()
		if i == attempts-1 {
			break
		}
		delay := p.BaseDelay << i
		if delay > 0 {
			delay += time.Duration(rand.Int63n(int64(delay)))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s tras %d intentos: %w", op, attempts, err)
}
