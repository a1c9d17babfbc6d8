package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// MessageReader lo que se usa de *kafka.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewReader crea un reader de grupo para topic.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
}

// MessageHandler procesa un mensaje. Un error hace que el mismo mensaje se reintente.
type MessageHandler func(ctx context.Context, msg kafka.Message) error

// Consumer loop de lectura con commit manual.
type Consumer struct {
	reader     MessageReader
	log        *logger.Logger
	backoff    time.Duration
	maxBackoff time.Duration
}

// NewConsumer construye el consumidor.
func NewConsumer(reader MessageReader, log *logger.Logger) *Consumer {
	if log == nil {
		log = logger.Nop()
	}
	return &Consumer{reader: reader, log: log, backoff: time.Second, maxBackoff: 30 * time.Second}
}

// Start lee hasta que ctx se cancele. Si handler falla se reintenta el mismo mensaje con
// backoff y no se lee el siguiente: confirmar un offset posterior saltaría el fallido.
func (c *Consumer) Start(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			c.log.Error().Err(err).Msg("leer mensaje de kafka")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
			continue
		}

		if err := c.handle(ctx, handler, msg); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error().Err(err).Int64("offset", msg.Offset).Msg("confirmar mensaje")
		}
	}
}

// handle insiste sobre msg hasta que handler lo acepte. Solo devuelve error si ctx se cancela.
func (c *Consumer) handle(ctx context.Context, handler MessageHandler, msg kafka.Message) error {
	delay := c.backoff
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg)
		if err == nil {
			return nil
		}
		c.log.Error().Err(err).
			Str("topic", msg.Topic).
			Int("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Int("attempt", attempt).
			Msg("procesar mensaje, se reintenta")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, c.maxBackoff)
	}
}

// Close cierra el reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
