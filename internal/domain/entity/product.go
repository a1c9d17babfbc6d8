package entity

// ProductRef referencia de catálogo: el SKU de un comerciante resuelto a producto/variante.
// El catálogo es externo; aquí solo se guarda el mapeo que usa la sincronización masiva.
type ProductRef struct {
	SKU              string
	ProductID        string
	ProductVariantID *string
}
