package entity

// Warehouse referencia a una bodega externa. El ledger solo usa ID como clave de partición
// y Code para resolver los feeds de proveedores.
type Warehouse struct {
	ID   string
	Code string
	Name string
}
