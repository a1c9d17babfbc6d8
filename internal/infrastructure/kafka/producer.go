package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/segmentio/kafka-go"
)

var (
	_ inventory.EventPublisher = (*Publisher)(nil)
	_ inventory.EventPublisher = (*LogPublisher)(nil)
)

// MessageWriter lo que se usa de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter crea un writer para topic con acks de todas las réplicas.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
}

// Publisher publica movimientos y señales de reorden en kafka.
type Publisher struct {
	movements MessageWriter
	reorder   MessageWriter
	topics    [2]string
	log       *logger.Logger
}

// NewPublisher construye el publicador con un writer por tópico.
func NewPublisher(movements, reorder MessageWriter, movementsTopic, reorderTopic string, log *logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{movements: movements, reorder: reorder, topics: [2]string{movementsTopic, reorderTopic}, log: log}
}

// PublishMovements un mensaje por movimiento, todos en una sola escritura.
func (p *Publisher) PublishMovements(ctx context.Context, movs []*entity.StockMovement) error {
	msgs := make([]kafka.Message, 0, len(movs))
	for _, m := range movs {
		value, err := json.Marshal(newMovementEvent(m))
		if err != nil {
			return fmt.Errorf("marshal movement event: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(m.InventoryItemID), Value: value, Time: m.PerformedAt})
	}
	return p.write(ctx, p.movements, p.topics[0], msgs)
}

// PublishReorderSignal publica la señal con clave inventory_item_id.
func (p *Publisher) PublishReorderSignal(ctx context.Context, s inventory.ReorderSignal) error {
	value, err := json.Marshal(struct {
		EventType string `json:"event_type"`
		inventory.ReorderSignal
	}{EventReorderSignal, s})
	if err != nil {
		return fmt.Errorf("marshal reorder signal: %w", err)
	}
	return p.write(ctx, p.reorder, p.topics[1], []kafka.Message{{Key: []byte(s.InventoryItemID), Value: value, Time: s.EvaluatedAt}})
}

func (p *Publisher) write(ctx context.Context, w MessageWriter, topic string, msgs []kafka.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := w.WriteMessages(ctx, msgs...); err != nil {
		metrics.EventsPublished.WithLabelValues(topic, "error").Add(float64(len(msgs)))
		return fmt.Errorf("write to kafka %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic, "ok").Add(float64(len(msgs)))
	p.log.Debug().Str("topic", topic).Int("count", len(msgs)).Msg("eventos publicados")
	return nil
}

// Close cierra ambos writers.
func (p *Publisher) Close() error {
	errM := p.movements.Close()
	errR := p.reorder.Close()
	if errM != nil {
		return errM
	}
	return errR
}

// LogPublisher se usa cuando no hay brokers: deja los eventos en el log.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher construye el publicador de respaldo.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishMovements(_ context.Context, movs []*entity.StockMovement) error {
	for _, m := range movs {
		p.log.Debug().
			Str("movement_id", m.ID).
			Str("item_id", m.InventoryItemID).
			Str("type", string(m.Type)).
			Int64("change", m.QuantityChange).
			Msg("movimiento (sin kafka)")
	}
	return nil
}

func (p *LogPublisher) PublishReorderSignal(_ context.Context, s inventory.ReorderSignal) error {
	p.log.Info().
		Str("item_id", s.InventoryItemID).
		Int64("available", s.QuantityAvailable).
		Int64("suggested", s.SuggestedReorderQty).
		Msg("señal de reorden (sin kafka)")
	return nil
}
