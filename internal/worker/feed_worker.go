package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/kafka"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	kafkago "github.com/segmentio/kafka-go"
)

// BulkApplier lo que el worker necesita del caso de uso de sincronización.
type BulkApplier interface {
	ApplyBulkUpdate(ctx context.Context, entries []inventory.BulkSyncEntry, reason, performedBy string) (*inventory.BulkSyncReport, error)
}

// FeedWorker consume el tópico de feeds de proveedores y aplica cada lote con bulk sync.
type FeedWorker struct {
	consumer *kafka.Consumer
	bulk     BulkApplier
	log      *logger.Logger
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

// NewFeedWorker construye el worker.
func NewFeedWorker(consumer *kafka.Consumer, bulk BulkApplier, log *logger.Logger) *FeedWorker {
	if log == nil {
		log = logger.Nop()
	}
	return &FeedWorker{consumer: consumer, bulk: bulk, log: log.Component("feed_worker")}
}

// Start lanza el loop de consumo en segundo plano.
func (w *FeedWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.log.Info().Msg("feed worker iniciado")
		if err := w.consumer.Start(ctx, w.Handle); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Error().Err(err).Msg("feed worker terminó con error")
		}
	}()
}

// Stop cancela el loop, espera a que termine y cierra el consumidor.
func (w *FeedWorker) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.log.Info().Msg("feed worker detenido")
	return w.consumer.Close()
}

// Handle procesa un mensaje. Los mensajes malformados se descartan (nil) para no bloquear la partición;
// un error devuelto hace que el consumidor reintente el mismo mensaje.
func (w *FeedWorker) Handle(ctx context.Context, msg kafkago.Message) error {
	var feed kafka.FeedMessage
	if err := json.Unmarshal(msg.Value, &feed); err != nil {
		metrics.FeedMessages.WithLabelValues("poison").Inc()
		w.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("feed malformado, se descarta")
		return nil
	}

	entries := make([]inventory.BulkSyncEntry, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		entries = append(entries, inventory.BulkSyncEntry{
			SKU:            e.SKU,
			WarehouseCode:  e.WarehouseCode,
			QuantityOnHand: e.QuantityOnHand,
			AverageCost:    e.AverageCost,
		})
	}
	performedBy := feed.PerformedBy
	if performedBy == "" {
		performedBy = "feed:" + feed.FeedID
	}
	if feed.FeedID == "" && feed.PerformedBy == "" {
		metrics.FeedMessages.WithLabelValues("poison").Inc()
		w.log.Warn().Int64("offset", msg.Offset).Msg("feed sin id ni autor, se descarta")
		return nil
	}

	report, err := w.bulk.ApplyBulkUpdate(ctx, entries, feed.Reason, performedBy)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			metrics.FeedMessages.WithLabelValues("poison").Inc()
			w.log.Warn().Err(err).Str("feed_id", feed.FeedID).Msg("feed inválido, se descarta")
			return nil
		}
		metrics.FeedMessages.WithLabelValues("error").Inc()
		return fmt.Errorf("aplicar feed %s: %w", feed.FeedID, err)
	}

	metrics.FeedMessages.WithLabelValues("applied").Inc()
	w.log.Info().
		Str("feed_id", feed.FeedID).
		Int("applied", report.Applied).
		Int("unchanged", report.Unchanged).
		Int("failed", report.Failed).
		Msg("feed aplicado")
	return nil
}
