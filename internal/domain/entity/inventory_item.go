package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem es el stock de un producto (o variante) en una bodega.
// Identidad natural: (ProductID, ProductVariantID, WarehouseID), única.
// Nunca se borra; se desactiva con IsActive=false porque los movimientos lo referencian.
type InventoryItem struct {
	ID               string
	ProductID        string
	ProductVariantID *string
	WarehouseID      string

	QuantityOnHand    int64 // unidades físicas
	QuantityReserved  int64 // apartadas para pedidos sin confirmar
	QuantityCommitted int64 // apartadas para pedidos confirmados

	// Configuración de reorden (opcional).
	MinimumStock    *int64
	MaximumStock    *int64
	ReorderQuantity *int64
	LeadTimeDays    *int

	AverageCost      decimal.Decimal // costo promedio ponderado
	LastPurchaseCost decimal.Decimal

	// Lote (opcional).
	BatchNumber       *string
	ExpirationDate    *time.Time
	ManufacturingDate *time.Time

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuantityAvailable es derivado: on-hand menos lo prometido. Nunca se persiste.
func (i *InventoryItem) QuantityAvailable() int64 {
	return i.QuantityOnHand - i.QuantityReserved - i.QuantityCommitted
}

// Key devuelve la identidad natural del ítem.
func (i *InventoryItem) Key() ItemKey {
	return ItemKey{ProductID: i.ProductID, ProductVariantID: i.ProductVariantID, WarehouseID: i.WarehouseID}
}

// ItemKey identifica un ítem por producto, variante y bodega.
type ItemKey struct {
	ProductID        string
	ProductVariantID *string
	WarehouseID      string
}

// Variant devuelve la variante o "" si no aplica.
func (k ItemKey) Variant() string {
	if k.ProductVariantID == nil {
		return ""
	}
	return *k.ProductVariantID
}

// ItemSettings datos no contables de un ítem: reorden y lote.
type ItemSettings struct {
	MinimumStock      *int64
	MaximumStock      *int64
	ReorderQuantity   *int64
	LeadTimeDays      *int
	BatchNumber       *string
	ExpirationDate    *time.Time
	ManufacturingDate *time.Time
}

// Apply copia sobre el ítem los campos presentes.
func (s ItemSettings) Apply(item *InventoryItem) {
	if s.MinimumStock != nil {
		item.MinimumStock = s.MinimumStock
	}
	if s.MaximumStock != nil {
		item.MaximumStock = s.MaximumStock
	}
	if s.ReorderQuantity != nil {
		item.ReorderQuantity = s.ReorderQuantity
	}
	if s.LeadTimeDays != nil {
		item.LeadTimeDays = s.LeadTimeDays
	}
	if s.BatchNumber != nil {
		item.BatchNumber = s.BatchNumber
	}
	if s.ExpirationDate != nil {
		item.ExpirationDate = s.ExpirationDate
	}
	if s.ManufacturingDate != nil {
		item.ManufacturingDate = s.ManufacturingDate
	}
}
