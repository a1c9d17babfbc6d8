package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ItemSettingsRequest configuración de reorden y lote. Los campos ausentes no se tocan.
type ItemSettingsRequest struct {
	MinimumStock      *int64     `json:"minimum_stock,omitempty"`
	MaximumStock      *int64     `json:"maximum_stock,omitempty"`
	ReorderQuantity   *int64     `json:"reorder_quantity,omitempty"`
	LeadTimeDays      *int       `json:"lead_time_days,omitempty"`
	BatchNumber       *string    `json:"batch_number,omitempty"`
	ExpirationDate    *time.Time `json:"expiration_date,omitempty"`
	ManufacturingDate *time.Time `json:"manufacturing_date,omitempty"`
}

// ToSettings convierte al tipo de dominio.
func (r ItemSettingsRequest) ToSettings() entity.ItemSettings {
	return entity.ItemSettings{
		MinimumStock:      r.MinimumStock,
		MaximumStock:      r.MaximumStock,
		ReorderQuantity:   r.ReorderQuantity,
		LeadTimeDays:      r.LeadTimeDays,
		BatchNumber:       r.BatchNumber,
		ExpirationDate:    r.ExpirationDate,
		ManufacturingDate: r.ManufacturingDate,
	}
}

// ProvisionItemRequest body para POST /api/inventory/items.
type ProvisionItemRequest struct {
	ProductID        string  `json:"product_id"`
	ProductVariantID *string `json:"product_variant_id,omitempty"`
	WarehouseID      string  `json:"warehouse_id"`
	ItemSettingsRequest
}

// RecordMovementRequest body para POST /api/inventory/items/:id/movements.
type RecordMovementRequest struct {
	Type           string           `json:"type"`
	QuantityChange int64            `json:"quantity_change"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference      *string          `json:"reference,omitempty"`
	Reason         string           `json:"reason"`
	Notes          *string          `json:"notes,omitempty"`
}

// QuantityRequest body para reserve / release / commit / uncommit.
type QuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// FulfillRequest body para POST /api/inventory/items/:id/fulfill.
type FulfillRequest struct {
	Quantity  int64   `json:"quantity"`
	Reference *string `json:"reference,omitempty"`
	Reason    string  `json:"reason"`
	Notes     *string `json:"notes,omitempty"`
}

// TransferLineRequest línea de un traslado.
type TransferLineRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
	Quantity        int64  `json:"quantity"`
	Reason          string `json:"reason"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	SourceWarehouseID      string                `json:"source_warehouse_id"`
	DestinationWarehouseID string                `json:"destination_warehouse_id"`
	Items                  []TransferLineRequest `json:"items"`
	Reference              *string               `json:"reference,omitempty"`
	Notes                  *string               `json:"notes,omitempty"`
}

// BulkSyncEntryRequest corrección absoluta para (sku, bodega).
type BulkSyncEntryRequest struct {
	SKU            string           `json:"sku"`
	WarehouseCode  string           `json:"warehouse_code"`
	QuantityOnHand *int64           `json:"quantity_on_hand,omitempty"`
	AverageCost    *decimal.Decimal `json:"average_cost,omitempty"`
}

// BulkSyncRequest body para POST /api/inventory/bulk-sync.
type BulkSyncRequest struct {
	Reason  string                 `json:"reason"`
	Entries []BulkSyncEntryRequest `json:"entries"`
}

// ToEntries convierte al tipo del caso de uso.
func (r BulkSyncRequest) ToEntries() []inventory.BulkSyncEntry {
	out := make([]inventory.BulkSyncEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, inventory.BulkSyncEntry{
			SKU:            e.SKU,
			WarehouseCode:  e.WarehouseCode,
			QuantityOnHand: e.QuantityOnHand,
			AverageCost:    e.AverageCost,
		})
	}
	return out
}

// ItemResponse contadores y configuración de un ítem. quantity_available es derivado.
type ItemResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	ProductVariantID  *string         `json:"product_variant_id,omitempty"`
	WarehouseID       string          `json:"warehouse_id"`
	QuantityOnHand    int64           `json:"quantity_on_hand"`
	QuantityReserved  int64           `json:"quantity_reserved"`
	QuantityCommitted int64           `json:"quantity_committed"`
	QuantityAvailable int64           `json:"quantity_available"`
	MinimumStock      *int64          `json:"minimum_stock,omitempty"`
	MaximumStock      *int64          `json:"maximum_stock,omitempty"`
	ReorderQuantity   *int64          `json:"reorder_quantity,omitempty"`
	LeadTimeDays      *int            `json:"lead_time_days,omitempty"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	LastPurchaseCost  decimal.Decimal `json:"last_purchase_cost"`
	BatchNumber       *string         `json:"batch_number,omitempty"`
	ExpirationDate    *time.Time      `json:"expiration_date,omitempty"`
	ManufacturingDate *time.Time      `json:"manufacturing_date,omitempty"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// NewItemResponse arma la respuesta; nil si item es nil.
func NewItemResponse(item *entity.InventoryItem) *ItemResponse {
	if item == nil {
		return nil
	}
	return &ItemResponse{
		ID:                item.ID,
		ProductID:         item.ProductID,
		ProductVariantID:  item.ProductVariantID,
		WarehouseID:       item.WarehouseID,
		QuantityOnHand:    item.QuantityOnHand,
		QuantityReserved:  item.QuantityReserved,
		QuantityCommitted: item.QuantityCommitted,
		QuantityAvailable: item.QuantityAvailable(),
		MinimumStock:      item.MinimumStock,
		MaximumStock:      item.MaximumStock,
		ReorderQuantity:   item.ReorderQuantity,
		LeadTimeDays:      item.LeadTimeDays,
		AverageCost:       item.AverageCost,
		LastPurchaseCost:  item.LastPurchaseCost,
		BatchNumber:       item.BatchNumber,
		ExpirationDate:    item.ExpirationDate,
		ManufacturingDate: item.ManufacturingDate,
		IsActive:          item.IsActive,
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}
}

// MovementResponse fila del ledger.
type MovementResponse struct {
	ID              string           `json:"id"`
	InventoryItemID string           `json:"inventory_item_id"`
	Type            string           `json:"type"`
	QuantityChange  int64            `json:"quantity_change"`
	QuantityBefore  int64            `json:"quantity_before"`
	QuantityAfter   int64            `json:"quantity_after"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference       *string          `json:"reference,omitempty"`
	PerformedBy     string           `json:"performed_by"`
	PerformedAt     time.Time        `json:"performed_at"`
	Reason          string           `json:"reason"`
	Notes           *string          `json:"notes,omitempty"`
}

// NewMovementResponse convierte un movimiento.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		InventoryItemID: m.InventoryItemID,
		Type:            string(m.Type),
		QuantityChange:  m.QuantityChange,
		QuantityBefore:  m.QuantityBefore,
		QuantityAfter:   m.QuantityAfter,
		UnitCost:        m.UnitCost,
		Reference:       m.Reference,
		PerformedBy:     m.PerformedBy,
		PerformedAt:     m.PerformedAt,
		Reason:          m.Reason,
		Notes:           m.Notes,
	}
}

// MovementResultResponse movimiento registrado y estado del ítem tras el commit.
type MovementResultResponse struct {
	Movement MovementResponse `json:"movement"`
	Item     *ItemResponse    `json:"item"`
}

// MovementPageResponse página de movimientos.
type MovementPageResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// TransferLineResponse estado de una línea.
type TransferLineResponse struct {
	LineNo                     int    `json:"line_no"`
	InventoryItemID            string `json:"inventory_item_id"`
	DestinationInventoryItemID string `json:"destination_inventory_item_id,omitempty"`
	Quantity                   int64  `json:"quantity"`
	Reason                     string `json:"reason,omitempty"`
	Status                     string `json:"status"`
	Error                      string `json:"error,omitempty"`
}

// TransferResponse traslado con detalle por línea.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	SourceWarehouseID      string                 `json:"source_warehouse_id"`
	DestinationWarehouseID string                 `json:"destination_warehouse_id"`
	Reference              *string                `json:"reference,omitempty"`
	Notes                  *string                `json:"notes,omitempty"`
	Status                 string                 `json:"status"`
	PerformedBy            string                 `json:"performed_by"`
	Items                  []TransferLineResponse `json:"items"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

// NewTransferResponse convierte un traslado.
func NewTransferResponse(t *entity.StockTransfer) TransferResponse {
	out := TransferResponse{
		ID:                     t.ID,
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		Reference:              t.Reference,
		Notes:                  t.Notes,
		Status:                 string(t.Status),
		PerformedBy:            t.PerformedBy,
		Items:                  make([]TransferLineResponse, 0, len(t.Items)),
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
	for _, l := range t.Items {
		out.Items = append(out.Items, TransferLineResponse{
			LineNo:                     l.LineNo,
			InventoryItemID:            l.InventoryItemID,
			DestinationInventoryItemID: l.DestinationInventoryItem,
			Quantity:                   l.Quantity,
			Reason:                     l.Reason,
			Status:                     string(l.Status),
			Error:                      l.Error,
		})
	}
	return out
}

// ReorderResponse resultado del evaluador de reorden.
type ReorderResponse struct {
	InventoryItemID     string `json:"inventory_item_id"`
	WarehouseID         string `json:"warehouse_id"`
	QuantityAvailable   int64  `json:"quantity_available"`
	MinimumStock        *int64 `json:"minimum_stock,omitempty"`
	IsLowStock          bool   `json:"is_low_stock"`
	IsOutOfStock        bool   `json:"is_out_of_stock"`
	SuggestedReorderQty int64  `json:"suggested_reorder_qty"`
	LeadTimeDays        *int   `json:"lead_time_days,omitempty"`
}

// NewReorderResponse combina el ítem con su evaluación.
func NewReorderResponse(item *entity.InventoryItem, ev domaininv.ReorderEvaluation) ReorderResponse {
	return ReorderResponse{
		InventoryItemID:     item.ID,
		WarehouseID:         item.WarehouseID,
		QuantityAvailable:   ev.QuantityAvailable,
		MinimumStock:        item.MinimumStock,
		IsLowStock:          ev.IsLowStock,
		IsOutOfStock:        ev.IsOutOfStock,
		SuggestedReorderQty: ev.SuggestedReorderQty,
		LeadTimeDays:        item.LeadTimeDays,
	}
}

// LedgerCheckResponse resultado de reproducir el ledger de un ítem.
type LedgerCheckResponse struct {
	InventoryItemID string `json:"inventory_item_id"`
	Movements       int    `json:"movements"`
	ReplayedOnHand  int64  `json:"replayed_on_hand"`
	CurrentOnHand   int64  `json:"current_on_hand"`
	BrokenAt        int    `json:"broken_at"`
	Consistent      bool   `json:"consistent"`
}

// NewLedgerCheckResponse convierte el resultado de la verificación.
func NewLedgerCheckResponse(c *domaininv.LedgerCheck) LedgerCheckResponse {
	return LedgerCheckResponse{
		InventoryItemID: c.InventoryItemID,
		Movements:       c.Movements,
		ReplayedOnHand:  c.ReplayedOnHand,
		CurrentOnHand:   c.CurrentOnHand,
		BrokenAt:        c.BrokenAt,
		Consistent:      c.Consistent,
	}
}

// ProductRefRequest body para PUT /api/inventory/catalog/products.
type ProductRefRequest struct {
	SKU              string  `json:"sku"`
	ProductID        string  `json:"product_id"`
	ProductVariantID *string `json:"product_variant_id,omitempty"`
}

// WarehouseRequest body para PUT /api/inventory/catalog/warehouses.
type WarehouseRequest struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
