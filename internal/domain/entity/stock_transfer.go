package entity

import "time"

// TransferStatus estado de un traslado.
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferFailed    TransferStatus = "FAILED"
)

// StockTransfer agrupa los pares TRANSFER_OUT / TRANSFER_IN de un traslado entre bodegas.
type StockTransfer struct {
	ID                     string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Items                  []TransferLine
	Reference              *string
	Notes                  *string
	Status                 TransferStatus
	PerformedBy            string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TransferLine línea de un traslado. Cada línea es atómica por sí misma.
type TransferLine struct {
	LineNo                   int
	InventoryItemID          string
	DestinationInventoryItem string
	Quantity                 int64
	Reason                   string
	Status                   TransferStatus
	Error                    string
}

// FailedLines devuelve las líneas que no se aplicaron.
func (t *StockTransfer) FailedLines() []TransferLine {
	var out []TransferLine
	for _, l := range t.Items {
		if l.Status == TransferFailed {
			out = append(out, l)
		}
	}
	return out
}
