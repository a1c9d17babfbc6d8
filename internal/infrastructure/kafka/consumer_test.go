package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanReader entrega mensajes desde un canal; al vaciarse bloquea hasta que ctx se cancele.
type chanReader struct {
	mu        sync.Mutex
	ch        chan kafka.Message
	committed []int64
}

func (r *chanReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.ch:
		return m, nil
	}
}

func (r *chanReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *chanReader) Close() error { return nil }

func (r *chanReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func fastConsumer(r MessageReader) *Consumer {
	c := NewConsumer(r, nil)
	c.backoff = time.Millisecond
	c.maxBackoff = 5 * time.Millisecond
	return c
}

func TestConsumer_ReintentaElMismoMensajeAntesDeAvanzar(t *testing.T) {
	r := &chanReader{ch: make(chan kafka.Message, 3)}
	r.ch <- kafka.Message{Offset: 1, Value: []byte("ok")}
	r.ch <- kafka.Message{Offset: 2, Value: []byte("falla")}
	r.ch <- kafka.Message{Offset: 3, Value: []byte("ok")}

	ctx, cancel := context.WithCancel(context.Background())
	var (
		seen     []int64
		failures int
	)
	done := make(chan error, 1)
	go func() {
		done <- fastConsumer(r).Start(ctx, func(_ context.Context, msg kafka.Message) error {
			seen = append(seen, msg.Offset)
			if string(msg.Value) == "falla" && failures < 2 {
				failures++
				return errors.New("transitorio")
			}
			if msg.Offset == 3 {
				defer cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("el consumidor no terminó")
	}
	assert.Equal(t, []int64{1, 2, 2, 2, 3}, seen)
	assert.Eventually(t, func() bool { return len(r.Committed()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int64{1, 2, 3}, r.Committed())
}

func TestConsumer_FallaPersistenteNoConfirmaPosteriores(t *testing.T) {
	r := &chanReader{ch: make(chan kafka.Message, 3)}
	r.ch <- kafka.Message{Offset: 1, Value: []byte("ok")}
	r.ch <- kafka.Message{Offset: 2, Value: []byte("falla")}
	r.ch <- kafka.Message{Offset: 3, Value: []byte("ok")}

	ctx, cancel := context.WithCancel(context.Background())
	var attempts int
	done := make(chan error, 1)
	go func() {
		done <- fastConsumer(r).Start(ctx, func(_ context.Context, msg kafka.Message) error {
			if string(msg.Value) != "falla" {
				return nil
			}
			attempts++
			if attempts == 5 {
				cancel()
			}
			return errors.New("caído")
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("el consumidor no terminó")
	}
	assert.Equal(t, 5, attempts)
	require.Equal(t, []int64{1}, r.Committed())
	assert.Len(t, r.ch, 1, "el offset 3 nunca se leyó")
}
