package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// ProvisionUseCase alta explícita de ítems y cambios de configuración (nunca de contadores).
type ProvisionUseCase struct {
	txRunner TxRunner
	items    repository.InventoryItemRepository
	notifier *Notifier
	retry    RetryPolicy
	log      *logger.Logger
}

// NewProvisionUseCase construye el caso de uso.
func NewProvisionUseCase(txRunner TxRunner, items repository.InventoryItemRepository, notifier *Notifier, retry RetryPolicy, log *logger.Logger) *ProvisionUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProvisionUseCase{txRunner: txRunner, items: items, notifier: notifier, retry: retry, log: log}
}

// newItem arma un ítem vacío y activo para la tripleta.
func newItem(key entity.ItemKey, settings entity.ItemSettings, now time.Time) *entity.InventoryItem {
	item := &entity.InventoryItem{
		ID:               uuid.New().String(),
		ProductID:        key.ProductID,
		ProductVariantID: key.ProductVariantID,
		WarehouseID:      key.WarehouseID,
		AverageCost:      decimal.Zero,
		LastPurchaseCost: decimal.Zero,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	settings.Apply(item)
	return item
}

func validateSettings(s entity.ItemSettings) error {
	for _, v := range []*int64{s.MinimumStock, s.MaximumStock, s.ReorderQuantity} {
		if v != nil && *v < 0 {
			return domain.ErrInvalidInput
		}
	}
	if s.LeadTimeDays != nil && *s.LeadTimeDays < 0 {
		return domain.ErrInvalidInput
	}
	if s.MinimumStock != nil && s.MaximumStock != nil && *s.MaximumStock < *s.MinimumStock {
		return domain.ErrInvalidInput
	}
	return nil
}

// ProvisionItem crea el ítem si la tripleta no existe; si existe lo devuelve tal cual.
func (uc *ProvisionUseCase) ProvisionItem(ctx context.Context, key entity.ItemKey, settings entity.ItemSettings) (*entity.InventoryItem, error) {
	if key.ProductID == "" || key.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if key.ProductVariantID != nil && *key.ProductVariantID == "" {
		key.ProductVariantID = nil
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	item, err := uc.items.CreateIfAbsent(ctx, newItem(key, settings, time.Now()))
	if err != nil {
		return nil, err
	}
	uc.log.Debug().Str("item_id", item.ID).Str("product_id", key.ProductID).Str("warehouse_id", key.WarehouseID).Msg("ítem provisionado")
	return item, nil
}

// UpdateSettings cambia reorden y lote bajo bloqueo de fila.
func (uc *ProvisionUseCase) UpdateSettings(ctx context.Context, itemID string, settings entity.ItemSettings) (*entity.InventoryItem, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	return uc.update(ctx, "update_settings", itemID, func(item *entity.InventoryItem) error {
		merged := entity.ItemSettings{MinimumStock: item.MinimumStock, MaximumStock: item.MaximumStock}
		if settings.MinimumStock != nil {
			merged.MinimumStock = settings.MinimumStock
		}
		if settings.MaximumStock != nil {
			merged.MaximumStock = settings.MaximumStock
		}
		if err := validateSettings(merged); err != nil {
			return domain.NewStockError(domain.ErrInvalidInput, item)
		}
		settings.Apply(item)
		return nil
	})
}

// SetActive activa o desactiva el ítem. Nunca se borra.
func (uc *ProvisionUseCase) SetActive(ctx context.Context, itemID string, active bool) (*entity.InventoryItem, error) {
	return uc.update(ctx, "set_active", itemID, func(item *entity.InventoryItem) error {
		item.IsActive = active
		return nil
	})
}

func (uc *ProvisionUseCase) update(ctx context.Context, op, itemID string, fn func(*entity.InventoryItem) error) (*entity.InventoryItem, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.InventoryItem
	err := uc.retry.run(ctx, op, func() error {
		return uc.txRunner.Run(ctx, func(
			items repository.InventoryItemRepository,
			_ repository.StockMovementRepository,
			_ repository.StockTransferRepository,
		) error {
			item, err := items.GetForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.NewStockError(domain.ErrItemNotFound, nil)
			}
			if err := fn(item); err != nil {
				return err
			}
			item.UpdatedAt = time.Now()
			if err := items.UpdateSettings(ctx, item); err != nil {
				return err
			}
			updated = item
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.notifier.ItemsChanged(ctx, updated)
	return updated, nil
}
