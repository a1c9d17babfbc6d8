package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Notifier corre después del commit: publica movimientos y evalúa reorden de los ítems tocados.
// Sus fallas se registran y no se devuelven; el ledger ya quedó confirmado.
type Notifier struct {
	publisher EventPublisher
	gate      SignalGate
	log       *logger.Logger
	now       func() time.Time
}

// NewNotifier construye el notificador. publisher y gate pueden ser nil.
func NewNotifier(publisher EventPublisher, gate SignalGate, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{publisher: publisher, gate: gate, log: log, now: time.Now}
}

// MovementsCommitted publica los movimientos y revisa reorden de los ítems afectados.
func (n *Notifier) MovementsCommitted(ctx context.Context, movements []*entity.StockMovement, items ...*entity.InventoryItem) {
	if n == nil {
		return
	}
	if n.publisher != nil && len(movements) > 0 {
		if err := n.publisher.PublishMovements(ctx, movements); err != nil {
			n.log.Error().Err(err).Int("count", len(movements)).Msg("publicar movimientos")
		}
	}
	n.ItemsChanged(ctx, items...)
}

// ItemsChanged evalúa reorden y emite señal si el ítem quedó bajo o agotado.
func (n *Notifier) ItemsChanged(ctx context.Context, items ...*entity.InventoryItem) {
	if n == nil {
		return
	}
	for _, item := range items {
		if item == nil {
			continue
		}
		ev := inventory.Evaluate(item)
		if !ev.WarrantsSignal() {
			continue
		}
		kind := "low_stock"
		if ev.IsOutOfStock {
			kind = "out_of_stock"
		}
		if n.gate != nil {
			ok, err := n.gate.Allow(ctx, item.ID+":"+kind)
			if err != nil {
				n.log.Warn().Err(err).Str("item_id", item.ID).Msg("gate de señales no disponible, se emite igual")
			} else if !ok {
				continue
			}
		}
		metrics.ReorderSignals.WithLabelValues(kind).Inc()
		signal := ReorderSignal{
			InventoryItemID:     item.ID,
			ProductID:           item.ProductID,
			ProductVariantID:    item.ProductVariantID,
			WarehouseID:         item.WarehouseID,
			QuantityAvailable:   ev.QuantityAvailable,
			IsLowStock:          ev.IsLowStock,
			IsOutOfStock:        ev.IsOutOfStock,
			SuggestedReorderQty: ev.SuggestedReorderQty,
			LeadTimeDays:        item.LeadTimeDays,
			EvaluatedAt:         n.now(),
		}
		n.log.Info().
			Str("item_id", item.ID).
			Str("warehouse_id", item.WarehouseID).
			Int64("available", ev.QuantityAvailable).
			Int64("suggested", ev.SuggestedReorderQty).
			Str("kind", kind).
			Msg("señal de reorden")
		if n.publisher == nil {
			continue
		}
		if err := n.publisher.PublishReorderSignal(ctx, signal); err != nil {
			n.log.Error().Err(err).Str("item_id", item.ID).Msg("publicar señal de reorden")
		}
	}
}
